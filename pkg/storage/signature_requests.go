package storage

import (
	"context"

	"github.com/chris/safe-signature-processor/pkg/models"
)

// SignatureRequestReader defines the interface for reading signature requests.
type SignatureRequestReader interface {
	// GetSignatureRequest retrieves a signature request by safe address and message hash.
	// It returns ErrSignatureRequestNotFound if no such request exists.
	GetSignatureRequest(ctx context.Context, safeAddress, messageHash string) (*models.SignatureRequest, error)

	// ListPendingSignatureRequests retrieves all requests still in the 'pending' state.
	// An empty purpose disables purpose filtering.
	ListPendingSignatureRequests(ctx context.Context, purpose models.SignatureRequestPurpose) ([]models.SignatureRequest, error)
}

// SignatureRequestWriter defines the interface for transitioning signature requests.
type SignatureRequestWriter interface {
	// UpdateSignatureRequestStatus atomically sets the status of a single request.
	UpdateSignatureRequestStatus(ctx context.Context, safeAddress, messageHash string, status models.SignatureRequestStatus) error
}

// SignatureRequestStore combines the reader and writer interfaces.
type SignatureRequestStore interface {
	SignatureRequestReader
	SignatureRequestWriter
}
