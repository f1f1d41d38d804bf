package commands

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity classifies failures caused by the request's own data.
var ErrDataIntegrity = errors.New("data integrity")

var (
	// ErrUnexpectedMessageType is returned when the Safe message is not EIP-712 typed data.
	ErrUnexpectedMessageType = fmt.Errorf("%w: unexpected message type: not EIP712TypedData", ErrDataIntegrity)
	// ErrUnexpectedMessageFormat is returned when the typed message is not a user update.
	ErrUnexpectedMessageFormat = fmt.Errorf("%w: unexpected message format", ErrDataIntegrity)
	// ErrUserNotUpserted is returned when the store reports zero affected users.
	ErrUserNotUpserted = fmt.Errorf("%w: error adding or updating user", ErrDataIntegrity)
)

// IsDataIntegrity reports whether err is a data-integrity failure.
func IsDataIntegrity(err error) bool {
	return errors.Is(err, ErrDataIntegrity)
}
