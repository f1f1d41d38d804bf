// Package worker assembles the store, Safe client provider, queue and poller
// from configuration. Both the long-running host and the Lambda use it.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/safe-signature-processor/pkg/config"
	"github.com/chris/safe-signature-processor/pkg/deadletter"
	"github.com/chris/safe-signature-processor/pkg/metrics"
	"github.com/chris/safe-signature-processor/pkg/processor"
	"github.com/chris/safe-signature-processor/pkg/safe"
	"github.com/chris/safe-signature-processor/pkg/scheduler"
	"github.com/chris/safe-signature-processor/pkg/storage"
	dydbstore "github.com/chris/safe-signature-processor/pkg/storage/dynamodb"
	pgstore "github.com/chris/safe-signature-processor/pkg/storage/postgres"
)

// Worker is a fully wired processing pipeline.
type Worker struct {
	Store     storage.Storage
	Provider  *safe.Provider
	Scheduler *scheduler.Scheduler
	Processor *processor.Processor
	Tracker   *deadletter.Tracker
	Metrics   *metrics.Collector

	closers []func()
}

// New builds a Worker. awsCfg is only used for the DynamoDB backend and the
// dead-letter queue.
func New(ctx context.Context, cfg *config.Config, awsCfg aws.Config, m *metrics.Collector, logger *slog.Logger) (*Worker, error) {
	w := &Worker{Metrics: m}

	store, err := w.openStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	w.Store = store

	w.Provider = safe.NewProvider(cfg.SafeServiceURLs,
		safe.WithTimeout(cfg.SafeHTTPTimeout),
		safe.WithRetries(cfg.SafeHTTPRetries),
		safe.WithAPIKey(cfg.SafeAPIKey),
	)

	var publisher deadletter.Publisher
	if cfg.DeadLetterQueueURL != "" {
		publisher = deadletter.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.DeadLetterQueueURL)
	}
	w.Tracker = deadletter.NewTracker(cfg.DeadLetterMaxAttempts, publisher, store, m, logger)

	w.Scheduler = scheduler.New(scheduler.Config{
		RateLimit:      cfg.QueueRateLimit,
		MaxConcurrent:  cfg.QueueMaxConcurrent,
		IdleInterval:   cfg.QueueIdleInterval,
		CommandTimeout: cfg.CommandTimeout,
	}, logger,
		scheduler.WithMetrics(m),
		scheduler.WithFailureHandler(w.Tracker.HandleFailure),
		scheduler.WithSuccessHandler(w.Tracker.HandleSuccess),
	)

	w.Processor = processor.New(store, w.Scheduler,
		processor.UserUpsertFactory(store, w.Provider, logger),
		logger,
		processor.WithMetrics(m),
		processor.WithCycleHook(w.Tracker.Retain),
	)

	return w, nil
}

func (w *Worker) openStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (storage.Storage, error) {
	switch cfg.StoreBackend {
	case config.BackendDynamoDB:
		return dydbstore.New(dynamodb.NewFromConfig(awsCfg), cfg.SignatureRequestsTable, cfg.UsersTable), nil
	case config.BackendPostgres:
		pool, err := pgstore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, pool.Close)

		store := pgstore.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

// RunOnce runs a single poll cycle and waits for every enqueued command to finish.
func (w *Worker) RunOnce(ctx context.Context) (processor.Result, error) {
	res, err := w.Processor.ProcessPendingRequests(ctx)
	if err != nil {
		return res, err
	}
	if err := w.Scheduler.Wait(ctx); err != nil {
		return res, fmt.Errorf("failed waiting for commands to finish: %w", err)
	}
	return res, nil
}

// Close stops the queue and releases the store.
func (w *Worker) Close() {
	w.Scheduler.Close()
	for _, c := range w.closers {
		c()
	}
}
