package safe

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the service has no record of the safe or message.
	ErrNotFound = errors.New("safe service: not found")
	// ErrRateLimited is returned when the service keeps answering 429 after retries.
	ErrRateLimited = errors.New("safe service: rate limited")
	// ErrUnavailable is returned for network failures and 5xx responses.
	ErrUnavailable = errors.New("safe service: unavailable")
	// ErrUnsupportedChain is returned when no transaction service is known for a chain.
	ErrUnsupportedChain = errors.New("safe service: unsupported chain")
	// ErrInvalidAddress is returned for addresses that are not 20-byte hex strings.
	ErrInvalidAddress = errors.New("safe service: invalid address")
)

// APIError is a non-2xx response from the transaction service.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("safe service returned status %d for %s: %s", e.StatusCode, e.Path, e.Body)
}

// Is maps status codes onto the package sentinels so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}
