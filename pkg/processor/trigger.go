package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

const DefaultSchedule = "@every 30s"

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// Trigger runs poll cycles on a cron schedule. A cycle that is still running
// when the next one is due causes that run to be skipped.
type Trigger struct {
	cron *cron.Cron
}

// NewTrigger schedules p.ProcessPendingRequests. schedule accepts standard
// five-field expressions and descriptors such as "@every 30s".
func NewTrigger(p *Processor, schedule string, logger *slog.Logger) (*Trigger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	cl := cronLogger{logger: logger.With("component", "trigger")}

	c := cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc(schedule, func() {
		if _, err := p.ProcessPendingRequests(context.Background()); err != nil {
			cl.logger.Error("poll cycle failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return &Trigger{cron: c}, nil
}

func (t *Trigger) Start() {
	t.cron.Start()
}

// Stop halts the schedule and blocks until a running cycle returns or ctx is done.
func (t *Trigger) Stop(ctx context.Context) error {
	done := t.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
