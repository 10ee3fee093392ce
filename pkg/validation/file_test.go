package validation_test

import (
	"testing"

	"moondev-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
)

func TestIsZIPArchive(t *testing.T) {
	t.Run("Standard archive magic is accepted", func(t *testing.T) {
		assert.True(t, validation.IsZIPArchive([]byte{0x50, 0x4B, 0x03, 0x04, 0x00}))
	})

	t.Run("Empty archive magic is accepted", func(t *testing.T) {
		assert.True(t, validation.IsZIPArchive([]byte{0x50, 0x4B, 0x05, 0x06}))
	})

	t.Run("Renamed non-archive is rejected", func(t *testing.T) {
		assert.False(t, validation.IsZIPArchive([]byte("#!/bin/sh\nrm -rf /")))
		assert.False(t, validation.IsZIPArchive(nil))
	})
}

func TestIsSupportedImage(t *testing.T) {
	t.Run("JPEG and PNG magic are accepted", func(t *testing.T) {
		assert.True(t, validation.IsSupportedImage([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
		assert.True(t, validation.IsSupportedImage([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}))
	})

	t.Run("GIF and truncated headers are rejected", func(t *testing.T) {
		assert.False(t, validation.IsSupportedImage([]byte("GIF89a")))
		assert.False(t, validation.IsSupportedImage([]byte{0x89, 0x50}))
	})
}
