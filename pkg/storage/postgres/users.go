package postgres

import (
	"context"
	"fmt"

	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/storage"
)

// UpsertUser inserts or updates the user keyed by (address, chain_id).
// A NULL display name or avatar keeps the stored value.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) (int64, error) {
	if user == nil || user.Address == "" || user.ChainID == 0 {
		return 0, storage.ErrInvalidUser
	}

	tag, err := s.DB.Exec(ctx, `INSERT INTO users (address, chain_id, display_name, avatar)
VALUES ($1, $2, $3, $4)
ON CONFLICT (address, chain_id) DO UPDATE SET
	display_name = COALESCE(EXCLUDED.display_name, users.display_name),
	avatar = COALESCE(EXCLUDED.avatar, users.avatar),
	updated_at = now()`, user.Address, user.ChainID, user.DisplayName, user.Avatar)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert user in postgres: %w", err)
	}
	return tag.RowsAffected(), nil
}
