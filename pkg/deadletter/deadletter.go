// Package deadletter moves signature requests whose payload keeps failing
// validation out of the pending set.
package deadletter

import (
	"context"
	"time"

	"github.com/chris/safe-signature-processor/pkg/models"
)

// Entry is the record published for a dead-lettered request.
type Entry struct {
	ID          string    `json:"id"`
	SafeAddress string    `json:"safe_address"`
	MessageHash string    `json:"message_hash"`
	ChainID     int64     `json:"chain_id"`
	Attempts    int       `json:"attempts"`
	Error       string    `json:"error"`
	FailedAt    time.Time `json:"failed_at"`
}

// Key returns the identity of the request the entry refers to.
func (e Entry) Key() models.RequestKey {
	return models.RequestKey{SafeAddress: e.SafeAddress, MessageHash: e.MessageHash, ChainID: e.ChainID}
}

// Publisher delivers dead-letter entries somewhere an operator can inspect them.
type Publisher interface {
	Publish(ctx context.Context, entry Entry) error
}
