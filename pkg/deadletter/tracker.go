package deadletter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/safe-signature-processor/pkg/commands"
	"github.com/chris/safe-signature-processor/pkg/metrics"
	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/scheduler"
	"github.com/chris/safe-signature-processor/pkg/storage"
	"github.com/google/uuid"
)

type keyed interface {
	Key() models.RequestKey
}

// Tracker counts data-integrity failures per request. Once a request reaches
// MaxAttempts it is published and its status set to canceled so the poller
// stops picking it up. MaxAttempts of zero disables dead-lettering.
type Tracker struct {
	MaxAttempts int

	publisher Publisher
	store     storage.SignatureRequestWriter
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	failures map[string]int
}

// NewTracker creates a Tracker. A nil publisher only cancels the request.
func NewTracker(maxAttempts int, publisher Publisher, store storage.SignatureRequestWriter, m *metrics.Collector, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		MaxAttempts: maxAttempts,
		publisher:   publisher,
		store:       store,
		metrics:     m,
		logger:      logger.With("component", "deadletter"),
		now:         time.Now,
		failures:    make(map[string]int),
	}
}

var _ scheduler.FailureHandler = (*Tracker)(nil).HandleFailure

// HandleFailure is a scheduler.FailureHandler.
func (t *Tracker) HandleFailure(ctx context.Context, cmd scheduler.Command, err error) {
	if t.MaxAttempts <= 0 || !commands.IsDataIntegrity(err) {
		return
	}
	k, ok := cmd.(keyed)
	if !ok {
		return
	}
	key := k.Key()

	attempts := t.record(key.ID())
	if attempts < t.MaxAttempts {
		t.logger.Warn("data integrity failure", "command_id", key.ID(), "attempts", attempts, "max_attempts", t.MaxAttempts)
		return
	}

	entry := Entry{
		ID:          uuid.NewString(),
		SafeAddress: key.SafeAddress,
		MessageHash: key.MessageHash,
		ChainID:     key.ChainID,
		Attempts:    attempts,
		Error:       err.Error(),
		FailedAt:    t.now().UTC(),
	}
	if t.publisher != nil {
		if perr := t.publisher.Publish(ctx, entry); perr != nil {
			t.logger.Error("failed to publish dead-letter entry", "command_id", key.ID(), "error", perr)
			return
		}
	}
	if uerr := t.store.UpdateSignatureRequestStatus(ctx, key.SafeAddress, key.MessageHash, models.CANCELED); uerr != nil {
		t.logger.Error("failed to cancel dead-lettered request", "command_id", key.ID(), "error", uerr)
		return
	}

	t.forget(key.ID())
	t.metrics.RequestDeadLettered()
	t.logger.Warn("signature request dead-lettered", "command_id", key.ID(), "entry_id", entry.ID, "attempts", attempts)
}

var _ scheduler.SuccessHandler = (*Tracker)(nil).HandleSuccess

// HandleSuccess is a scheduler.SuccessHandler. A command that completes
// without error clears its failure count.
func (t *Tracker) HandleSuccess(_ context.Context, cmd scheduler.Command) {
	t.forget(cmd.ID())
}

// Retain drops the failure counts of requests that are no longer pending.
func (t *Tracker) Retain(_ context.Context, pending []models.SignatureRequest) {
	keep := make(map[string]struct{}, len(pending))
	for _, req := range pending {
		keep[req.Key().ID()] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.failures {
		if _, ok := keep[id]; !ok {
			delete(t.failures, id)
		}
	}
}

// Attempts returns the failures recorded for id.
func (t *Tracker) Attempts(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[id]
}

func (t *Tracker) record(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[id]++
	return t.failures[id]
}

func (t *Tracker) forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, id)
}
