package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/storage"
	"github.com/jackc/pgx/v5"
)

const signatureRequestColumns = `safe_address, message_hash, chain_id, message, purpose, status, created_at, updated_at`

func scanSignatureRequest(row pgx.Row) (*models.SignatureRequest, error) {
	var (
		req       models.SignatureRequest
		purpose   string
		status    string
		updatedAt *time.Time
	)
	if err := row.Scan(&req.SafeAddress, &req.MessageHash, &req.ChainID, &req.Message, &purpose, &status, &req.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	req.Purpose = models.SignatureRequestPurpose(purpose)
	req.Status = models.SignatureRequestStatus(status)
	if updatedAt != nil {
		req.UpdatedAt = *updatedAt
	}
	return &req, nil
}

// GetSignatureRequest retrieves a signature request by safe address and message hash.
func (s *Store) GetSignatureRequest(ctx context.Context, safeAddress, messageHash string) (*models.SignatureRequest, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+signatureRequestColumns+`
FROM signature_requests
WHERE safe_address = $1 AND message_hash = $2`, safeAddress, messageHash)

	req, err := scanSignatureRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s-%s", storage.ErrSignatureRequestNotFound, safeAddress, messageHash)
		}
		return nil, fmt.Errorf("failed to get signature request from postgres: %w", err)
	}
	return req, nil
}

// ListPendingSignatureRequests returns pending requests, oldest first.
func (s *Store) ListPendingSignatureRequests(ctx context.Context, purpose models.SignatureRequestPurpose) ([]models.SignatureRequest, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+signatureRequestColumns+`
FROM signature_requests
WHERE status = $1 AND ($2 = '' OR purpose = $2)
ORDER BY created_at ASC`, string(models.PENDING), string(purpose))
	if err != nil {
		return nil, fmt.Errorf("failed to query for pending signature requests: %w", err)
	}
	defer rows.Close()

	var out []models.SignatureRequest
	for rows.Next() {
		req, err := scanSignatureRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending signature request: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending signature requests: %w", err)
	}
	return out, nil
}

// UpdateSignatureRequestStatus sets the status of a single request.
func (s *Store) UpdateSignatureRequestStatus(ctx context.Context, safeAddress, messageHash string, status models.SignatureRequestStatus) error {
	tag, err := s.DB.Exec(ctx, `UPDATE signature_requests
SET status = $3, updated_at = now()
WHERE safe_address = $1 AND message_hash = $2`, safeAddress, messageHash, string(status))
	if err != nil {
		return fmt.Errorf("failed to update signature request status in postgres: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s-%s", storage.ErrSignatureRequestNotFound, safeAddress, messageHash)
	}
	return nil
}
