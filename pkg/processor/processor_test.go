package processor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chris/safe-signature-processor/pkg/commands"
	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/processor/mocks"
	"github.com/chris/safe-signature-processor/pkg/scheduler"
	storagemocks "github.com/chris/safe-signature-processor/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	safeA = "0x4f2083f5fBede34C2714aFfb3105539775f7FE64"
	safeB = "0x1D1a5Fa2ff4F0d1C9E2a8fB1C0a7a3a0A6a9d111"
)

func request(safe, hash string, purpose models.SignatureRequestPurpose) models.SignatureRequest {
	return models.SignatureRequest{
		SafeAddress: safe,
		MessageHash: hash,
		ChainID:     10,
		Purpose:     purpose,
		Status:      models.PENDING,
	}
}

type blockingCommand struct {
	id      string
	release chan struct{}
}

func (c *blockingCommand) ID() string { return c.id }

func (c *blockingCommand) Execute(ctx context.Context) error {
	select {
	case <-c.release:
	case <-ctx.Done():
	}
	return nil
}

func TestProcessPendingRequests(t *testing.T) {
	t.Run("Enqueues Eligible Requests", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		queue := mocks.NewQueue(t)
		store.On("ListPendingSignatureRequests", mock.Anything, models.SignatureRequestPurpose("")).Return([]models.SignatureRequest{
			request(safeA, "0x01", models.UPDATE_USER_DATA),
			request(safeB, "0x02", models.SignatureRequestPurpose("transfer_ownership")),
			request("not-an-address", "0x03", models.UPDATE_USER_DATA),
			request(safeB, "0x04", models.UPDATE_USER_DATA),
			request(safeB, "0x05", models.UPDATE_USER_DATA),
		}, nil)
		queue.On("HasCommand", safeA+"-0x01").Return(false)
		queue.On("HasCommand", safeB+"-0x04").Return(true)
		queue.On("HasCommand", safeB+"-0x05").Return(false)
		queue.On("Enqueue", mock.MatchedBy(func(cmd scheduler.Command) bool { return cmd.ID() == safeA+"-0x01" })).Return(true)
		// Executing commands are not visible through HasCommand; Enqueue drops them.
		queue.On("Enqueue", mock.MatchedBy(func(cmd scheduler.Command) bool { return cmd.ID() == safeB+"-0x05" })).Return(false)

		p := New(store, queue, UserUpsertFactory(store, nil, nil), nil)
		res, err := p.ProcessPendingRequests(context.Background())

		require.NoError(t, err)
		assert.NotEmpty(t, res.CycleID)
		assert.Equal(t, 5, res.Found)
		assert.Equal(t, 1, res.Enqueued)
		assert.Equal(t, 4, res.Skipped)
		queue.AssertNotCalled(t, "HasCommand", safeB+"-0x02")
		queue.AssertNotCalled(t, "HasCommand", "not-an-address-0x03")
	})

	t.Run("Builds User Upsert Commands", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		queue := mocks.NewQueue(t)
		store.On("ListPendingSignatureRequests", mock.Anything, models.SignatureRequestPurpose("")).Return([]models.SignatureRequest{
			request(safeA, "0x01", models.UPDATE_USER_DATA),
		}, nil)
		queue.On("HasCommand", mock.Anything).Return(false)
		queue.On("Enqueue", mock.MatchedBy(func(cmd scheduler.Command) bool {
			c, ok := cmd.(*commands.UserUpsertCommand)
			return ok && c.Key().ChainID == 10 && c.State() == commands.StateCreated
		})).Once().Return(true)

		p := New(store, queue, UserUpsertFactory(store, nil, nil), nil)
		_, err := p.ProcessPendingRequests(context.Background())

		require.NoError(t, err)
	})

	t.Run("Store Error Propagates", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		queue := mocks.NewQueue(t)
		store.On("ListPendingSignatureRequests", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		p := New(store, queue, UserUpsertFactory(store, nil, nil), nil)
		_, err := p.ProcessPendingRequests(context.Background())

		assert.ErrorContains(t, err, "connection refused")
		queue.AssertNotCalled(t, "Enqueue", mock.Anything)
	})

	t.Run("Repeated Calls Do Not Duplicate Work", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		store.On("ListPendingSignatureRequests", mock.Anything, mock.Anything).Return([]models.SignatureRequest{
			request(safeA, "0x01", models.UPDATE_USER_DATA),
			request(safeA, "0x02", models.UPDATE_USER_DATA),
			request(safeB, "0x03", models.UPDATE_USER_DATA),
		}, nil)

		release := make(chan struct{})
		var built atomic.Int32
		factory := func(req models.SignatureRequest) scheduler.Command {
			built.Add(1)
			return &blockingCommand{id: req.Key().ID(), release: release}
		}
		sched := scheduler.New(scheduler.Config{RateLimit: 100, MaxConcurrent: 2, IdleInterval: time.Millisecond}, nil)
		defer sched.Close()

		p := New(store, sched, factory, nil)

		first, err := p.ProcessPendingRequests(context.Background())
		require.NoError(t, err)
		second, err := p.ProcessPendingRequests(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 3, first.Enqueued)
		assert.Equal(t, 0, second.Enqueued)
		assert.Equal(t, 3, second.Skipped)

		close(release)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, sched.Wait(ctx))
		assert.LessOrEqual(t, built.Load(), int32(6))
	})

	t.Run("Cycle Hook Sees Listed Requests", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		queue := mocks.NewQueue(t)
		listed := []models.SignatureRequest{
			request(safeA, "0x01", models.UPDATE_USER_DATA),
			request(safeB, "0x02", models.SignatureRequestPurpose("transfer_ownership")),
		}
		store.On("ListPendingSignatureRequests", mock.Anything, mock.Anything).Return(listed, nil)
		queue.On("HasCommand", mock.Anything).Return(false)
		queue.On("Enqueue", mock.Anything).Return(true)

		var seen []models.SignatureRequest
		p := New(store, queue, UserUpsertFactory(store, nil, nil), nil,
			WithCycleHook(func(_ context.Context, pending []models.SignatureRequest) {
				seen = pending
			}))
		_, err := p.ProcessPendingRequests(context.Background())

		require.NoError(t, err)
		assert.Equal(t, listed, seen)
	})

	t.Run("Cycle Hook Not Called On Store Error", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		queue := mocks.NewQueue(t)
		store.On("ListPendingSignatureRequests", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		called := false
		p := New(store, queue, UserUpsertFactory(store, nil, nil), nil,
			WithCycleHook(func(context.Context, []models.SignatureRequest) { called = true }))
		_, err := p.ProcessPendingRequests(context.Background())

		assert.Error(t, err)
		assert.False(t, called)
	})
}

func TestTrigger(t *testing.T) {
	t.Run("Invalid Schedule", func(t *testing.T) {
		_, err := NewTrigger(New(nil, nil, nil, nil), "every now and then", nil)

		assert.ErrorContains(t, err, "invalid poll schedule")
	})

	t.Run("Runs Poll Cycles", func(t *testing.T) {
		store := storagemocks.NewStorage(t)
		queue := mocks.NewQueue(t)
		var cycles atomic.Int32
		store.On("ListPendingSignatureRequests", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cycles.Add(1) }).
			Return([]models.SignatureRequest{}, nil)

		trigger, err := NewTrigger(New(store, queue, nil, nil), "@every 1s", nil)
		require.NoError(t, err)

		trigger.Start()
		require.Eventually(t, func() bool { return cycles.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, trigger.Stop(ctx))
	})
}
