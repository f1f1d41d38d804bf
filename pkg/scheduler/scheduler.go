// Package scheduler runs commands under a token-bucket rate limit and a cap on
// concurrent executions. Commands are deduplicated by ID against both the
// pending set and the executing set, so an identity is never run twice at once.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/safe-signature-processor/pkg/metrics"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	DefaultRateLimit      = 5
	DefaultMaxConcurrent  = 5
	DefaultIdleInterval   = 50 * time.Millisecond
	DefaultCommandTimeout = 30 * time.Second
)

// ErrPanic wraps a value recovered from a panicking command.
var ErrPanic = errors.New("command panicked")

// Command is a unit of work identified by ID.
type Command interface {
	ID() string
	Execute(ctx context.Context) error
}

// FailureHandler is called after a command returns an error.
type FailureHandler func(ctx context.Context, cmd Command, err error)

// SuccessHandler is called after a command returns nil.
type SuccessHandler func(ctx context.Context, cmd Command)

// Config controls admission. Zero values take the defaults.
type Config struct {
	// RateLimit is both the refill rate in commands per second and the bucket size.
	RateLimit      int
	MaxConcurrent  int
	IdleInterval   time.Duration
	CommandTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = DefaultIdleInterval
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = DefaultCommandTimeout
	}
	return c
}

// Stats is a point-in-time view of the queue.
type Stats struct {
	Pending int     `json:"pending"`
	Active  int     `json:"active"`
	Running bool    `json:"running"`
	Tokens  float64 `json:"tokens"`
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMetrics records queue activity on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Scheduler) {
		s.metrics = c
	}
}

// WithFailureHandler registers fn to be called for every failed command.
func WithFailureHandler(fn FailureHandler) Option {
	return func(s *Scheduler) {
		s.onFailure = fn
	}
}

// WithSuccessHandler registers fn to be called for every command that succeeds.
func WithSuccessHandler(fn SuccessHandler) Option {
	return func(s *Scheduler) {
		s.onSuccess = fn
	}
}

// WithClock replaces the clock used for token accounting.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// Scheduler is an in-memory command queue. It must be created with New.
type Scheduler struct {
	cfg       Config
	logger    *slog.Logger
	metrics   *metrics.Collector
	onFailure FailureHandler
	onSuccess SuccessHandler
	now       func() time.Time

	limiter *rate.Limiter
	slots   *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]Command
	active  map[string]struct{}
	running bool
	closed  bool
	idle    chan struct{}

	wake chan struct{}
	done chan string
}

// New creates a Scheduler. The drain loop is started lazily by Enqueue.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Scheduler {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	s := &Scheduler{
		cfg:     cfg,
		logger:  logger.With("component", "scheduler"),
		now:     time.Now,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		slots:   semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]Command),
		active:  make(map[string]struct{}),
		idle:    idle,
		wake:    make(chan struct{}, 1),
		done:    make(chan string, cfg.MaxConcurrent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue adds cmd unless its ID is already pending or executing, or the
// scheduler is closed. It never blocks on execution and reports whether cmd
// was accepted.
func (s *Scheduler) Enqueue(cmd Command) bool {
	id := cmd.ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if _, ok := s.pending[id]; ok {
		s.metrics.CommandDeduplicated()
		return false
	}
	if _, ok := s.active[id]; ok {
		s.metrics.CommandDeduplicated()
		return false
	}

	s.pending[id] = cmd
	s.metrics.CommandEnqueued()
	s.metrics.QueueDepth(len(s.pending), len(s.active))

	if !s.running {
		s.running = true
		s.idle = make(chan struct{})
		go s.run()
		return true
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// HasCommand reports whether id is waiting for admission. Executing commands
// are not reported.
func (s *Scheduler) HasCommand(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// Stats returns the current queue state.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Pending: len(s.pending),
		Active:  len(s.active),
		Running: s.running,
		Tokens:  s.tokens(),
	}
}

func (s *Scheduler) tokens() float64 {
	t := s.limiter.TokensAt(s.now())
	if t < 0 {
		return 0
	}
	return t
}

// Wait blocks until nothing is pending or executing, or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops pending commands and cancels the context of executing ones.
// Later Enqueue calls are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	dropped := len(s.pending)
	s.pending = make(map[string]Command)
	s.metrics.QueueDepth(0, len(s.active))
	s.mu.Unlock()

	s.cancel()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	if dropped > 0 {
		s.logger.Warn("scheduler closed with pending commands", "dropped", dropped)
	}
}

func (s *Scheduler) run() {
	s.logger.Debug("drain loop started")
	for {
		s.collect()

		s.mu.Lock()
		if len(s.pending) == 0 && len(s.active) == 0 {
			s.running = false
			close(s.idle)
			s.mu.Unlock()
			s.logger.Debug("drain loop stopped")
			return
		}
		admitted := s.admit()
		s.mu.Unlock()

		if admitted == 0 {
			s.sleep()
		}
	}
}

// admit starts as many pending commands as slots and tokens allow. Pending is
// a map, so admission order is unspecified. Caller holds s.mu.
func (s *Scheduler) admit() int {
	admitted := 0
	for id, cmd := range s.pending {
		if !s.slots.TryAcquire(1) {
			break
		}
		if !s.limiter.AllowN(s.now(), 1) {
			s.slots.Release(1)
			break
		}
		delete(s.pending, id)
		s.active[id] = struct{}{}
		admitted++
		go s.execute(cmd)
	}
	if admitted > 0 {
		s.metrics.QueueDepth(len(s.pending), len(s.active))
	}
	return admitted
}

// collect drains finished commands without blocking.
func (s *Scheduler) collect() {
	for {
		select {
		case id := <-s.done:
			s.finish(id)
		default:
			return
		}
	}
}

func (s *Scheduler) finish(id string) {
	s.mu.Lock()
	delete(s.active, id)
	s.metrics.QueueDepth(len(s.pending), len(s.active))
	s.mu.Unlock()
	s.slots.Release(1)
}

func (s *Scheduler) sleep() {
	timer := time.NewTimer(s.cfg.IdleInterval)
	defer timer.Stop()

	select {
	case id := <-s.done:
		s.finish(id)
	case <-s.wake:
	case <-timer.C:
	}
}

func (s *Scheduler) execute(cmd Command) {
	id := cmd.ID()
	defer func() {
		s.done <- id
	}()

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.CommandTimeout)
	defer cancel()

	start := time.Now()
	err := invoke(ctx, cmd)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeSucceeded
	switch {
	case err == nil:
	case errors.Is(err, ErrPanic):
		outcome = metrics.OutcomePanicked
	case errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeTimedOut
	default:
		outcome = metrics.OutcomeFailed
	}
	s.metrics.CommandCompleted(outcome, elapsed.Seconds())

	if err == nil {
		if s.onSuccess != nil {
			s.onSuccess(ctx, cmd)
		}
		return
	}
	s.logger.Error("command failed", "command_id", id, "outcome", outcome, "duration", elapsed.String(), "error", err)

	if s.onFailure != nil {
		hctx, hcancel := context.WithTimeout(s.ctx, s.cfg.CommandTimeout)
		defer hcancel()
		s.onFailure(hctx, cmd, err)
	}
}

func invoke(ctx context.Context, cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return cmd.Execute(ctx)
}
