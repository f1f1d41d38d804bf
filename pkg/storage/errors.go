package storage

import "errors"

// ErrSignatureRequestNotFound is returned when no signature request matches the given safe address and message hash.
var ErrSignatureRequestNotFound = errors.New("signature request not found")

// ErrInvalidUser is returned when a user is missing its address or chain ID.
var ErrInvalidUser = errors.New("user must have an address and a chain ID")
