package domain

import "errors"

var (
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateSubmission: a submission already exists for the user.
	// Creation is one-shot per userId.
	ErrDuplicateSubmission = errors.New("submission already exists for this user")

	// ErrAlreadyDecided: the conditional decision update matched no row
	// because another evaluator decided first. The caller must re-fetch
	// instead of retrying.
	ErrAlreadyDecided = errors.New("submission has already been decided")
)
