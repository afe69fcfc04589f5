package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicatePhoneNumber is returned when trying to create a user with an existing phone number
	ErrDuplicatePhoneNumber = errors.New("user with this phone number already exists")

	// ErrDuplicateToken is returned when a generated token value collides with an
	// existing one. Token values are generated, not user-supplied, so callers
	// should regenerate and retry.
	ErrDuplicateToken = errors.New("token with this value already exists")

	// ErrDuplicateLinkedAccount is returned when trying to link the same external account twice
	ErrDuplicateLinkedAccount = errors.New("linked account already exists")
)
