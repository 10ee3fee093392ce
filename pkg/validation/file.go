package validation

import "bytes"

// Magic byte signatures for the artifact types we accept.
var (
	zipMagic = [][]byte{
		{0x50, 0x4B, 0x03, 0x04}, // standard archive
		{0x50, 0x4B, 0x05, 0x06}, // empty archive
	}
	imageMagic = [][]byte{
		{0xFF, 0xD8, 0xFF},                                 // JPEG
		{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, // PNG
	}
)

// IsZIPArchive verifies the content is actually a ZIP archive. The
// source-code artifact must pass this regardless of its claimed
// filename or content type.
func IsZIPArchive(data []byte) bool {
	return hasAnyPrefix(data, zipMagic)
}

// IsSupportedImage verifies the content starts like a JPEG or PNG,
// the formats the profile-picture pipeline can decode.
func IsSupportedImage(data []byte) bool {
	return hasAnyPrefix(data, imageMagic)
}

func hasAnyPrefix(data []byte, magics [][]byte) bool {
	for _, m := range magics {
		if bytes.HasPrefix(data, m) {
			return true
		}
	}
	return false
}
