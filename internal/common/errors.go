package common

import "errors"

var (
	// Sealing errors for values persisted at rest.
	ErrSealedValueCorrupted = errors.New("sealed value corrupted")

	// Validation errors.
	ErrorEmptyUsername = errors.New("username must not be empty")
	ErrorInvalidFormat = errors.New("invalid format")
)
