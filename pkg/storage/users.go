package storage

import (
	"context"

	"github.com/chris/safe-signature-processor/pkg/models"
)

// UserStore defines the interface for managing user profiles.
type UserStore interface {
	// UpsertUser creates or updates the user keyed by (address, chain ID) and
	// returns the number of affected records.
	UpsertUser(ctx context.Context, user *models.User) (int64, error)
}
