// Package processor discovers pending signature requests and hands them to the
// command queue.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chris/safe-signature-processor/pkg/commands"
	"github.com/chris/safe-signature-processor/pkg/metrics"
	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/safe"
	"github.com/chris/safe-signature-processor/pkg/scheduler"
	"github.com/chris/safe-signature-processor/pkg/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Queue is the part of the scheduler the processor needs.
type Queue interface {
	Enqueue(cmd scheduler.Command) bool
	HasCommand(id string) bool
}

// CommandFactory builds the command for a pending request.
type CommandFactory func(req models.SignatureRequest) scheduler.Command

// UserUpsertFactory returns a CommandFactory producing user upsert commands.
func UserUpsertFactory(store commands.UserUpsertStore, provider safe.ClientProvider, logger *slog.Logger) CommandFactory {
	return func(req models.SignatureRequest) scheduler.Command {
		return commands.NewUserUpsertCommand(req.SafeAddress, req.MessageHash, req.ChainID, store, provider, logger)
	}
}

// Result summarises one poll cycle.
type Result struct {
	CycleID  string `json:"cycle_id"`
	Found    int    `json:"found"`
	Enqueued int    `json:"enqueued"`
	Skipped  int    `json:"skipped"`
}

// Option configures a Processor.
type Option func(*Processor)

func WithMetrics(c *metrics.Collector) Option {
	return func(p *Processor) {
		p.metrics = c
	}
}

// CycleHook observes the pending requests listed by a poll cycle.
type CycleHook func(ctx context.Context, pending []models.SignatureRequest)

// WithCycleHook registers fn to run after every successful listing.
func WithCycleHook(fn CycleHook) Option {
	return func(p *Processor) {
		p.onCycle = fn
	}
}

// Processor polls the store for pending requests.
type Processor struct {
	store   storage.SignatureRequestReader
	queue   Queue
	factory CommandFactory
	metrics *metrics.Collector
	logger  *slog.Logger
	onCycle CycleHook
}

// New creates a Processor.
func New(store storage.SignatureRequestReader, queue Queue, factory CommandFactory, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		store:   store,
		queue:   queue,
		factory: factory,
		logger:  logger.With("component", "processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessPendingRequests enqueues a command for every pending user data
// request the queue does not already hold. It is safe to call repeatedly.
func (p *Processor) ProcessPendingRequests(ctx context.Context) (Result, error) {
	res := Result{CycleID: uuid.NewString()}
	logger := p.logger.With("cycle_id", res.CycleID)

	requests, err := p.store.ListPendingSignatureRequests(ctx, "")
	if err != nil {
		p.metrics.PollCycle("error")
		return res, fmt.Errorf("failed to list pending signature requests: %w", err)
	}
	res.Found = len(requests)
	logger.Info("found pending requests", "count", res.Found)
	if p.onCycle != nil {
		p.onCycle(ctx, requests)
	}

	for _, req := range requests {
		id := req.Key().ID()

		if req.Purpose != models.UPDATE_USER_DATA {
			res.Skipped++
			continue
		}
		if !common.IsHexAddress(req.SafeAddress) {
			logger.Warn("skipping request with invalid safe address", "command_id", id)
			res.Skipped++
			continue
		}
		if p.queue.HasCommand(id) {
			res.Skipped++
			continue
		}

		logger.Debug("processing signature request", "command_id", id)
		if p.queue.Enqueue(p.factory(req)) {
			res.Enqueued++
		} else {
			res.Skipped++
		}
	}

	p.metrics.PollCycle("ok")
	p.metrics.PollRequest("enqueued", res.Enqueued)
	p.metrics.PollRequest("skipped", res.Skipped)
	logger.Info("poll cycle complete", "enqueued", res.Enqueued, "skipped", res.Skipped)
	return res, nil
}
