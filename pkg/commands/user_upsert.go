package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/safe"
	"github.com/chris/safe-signature-processor/pkg/storage"
)

// UserUpsertStore is the storage the user upsert command needs.
type UserUpsertStore interface {
	storage.SignatureRequestStore
	storage.UserStore
}

// UserUpsertCommand applies an approved user data update for a Safe.
//
// Execute walks Created -> Fetched -> Validated -> Committed. A request that is
// no longer pending or lacks confirmations ends Rejected without error; bad
// payloads and store failures end Failed with the request left pending.
type UserUpsertCommand struct {
	SafeCommand

	store    UserUpsertStore
	provider safe.ClientProvider
	logger   *slog.Logger
	state    atomic.Int32
}

// NewUserUpsertCommand creates a command for one signature request.
func NewUserUpsertCommand(safeAddress, messageHash string, chainID int64, store UserUpsertStore, provider safe.ClientProvider, logger *slog.Logger) *UserUpsertCommand {
	if logger == nil {
		logger = slog.Default()
	}
	c := &UserUpsertCommand{
		SafeCommand: NewSafeCommand(safeAddress, messageHash, chainID),
		store:       store,
		provider:    provider,
	}
	c.logger = logger.With("command_id", c.ID(), "chain_id", chainID)
	return c
}

// State returns the command's current lifecycle state.
func (c *UserUpsertCommand) State() State {
	return State(c.state.Load())
}

func (c *UserUpsertCommand) transition(s State) {
	c.state.Store(int32(s))
}

func (c *UserUpsertCommand) fail(err error) error {
	c.transition(StateFailed)
	return err
}

// Execute performs the fetch, validate, commit sequence for the request.
func (c *UserUpsertCommand) Execute(ctx context.Context) error {
	key := c.Key()

	req, err := c.store.GetSignatureRequest(ctx, key.SafeAddress, key.MessageHash)
	if err != nil {
		if errors.Is(err, storage.ErrSignatureRequestNotFound) {
			c.logger.Debug("signature request no longer exists")
			c.transition(StateRejected)
			return nil
		}
		return c.fail(fmt.Errorf("failed to get signature request: %w", err))
	}
	if req.Status != models.PENDING {
		c.logger.Debug("signature request already handled", "status", req.Status)
		c.transition(StateRejected)
		return nil
	}

	api, err := c.provider.ForChain(key.ChainID)
	if err != nil {
		return c.fail(err)
	}
	info, err := api.GetSafeInfo(ctx, key.SafeAddress)
	if err != nil {
		return c.fail(err)
	}
	msg, err := api.GetMessage(ctx, key.MessageHash)
	if err != nil {
		return c.fail(err)
	}
	c.transition(StateFetched)

	if len(msg.Confirmations) < info.Threshold {
		c.logger.Debug("not enough confirmations yet", "confirmations", len(msg.Confirmations), "threshold", info.Threshold)
		c.transition(StateRejected)
		return nil
	}

	if !msg.Message.IsTyped() {
		return c.fail(ErrUnexpectedMessageType)
	}
	update, err := ParseUserUpdateMessage(msg.Message.Typed.Message)
	if err != nil {
		c.logger.Warn("unexpected message format", "error", err)
		return c.fail(err)
	}
	c.transition(StateValidated)

	affected, err := c.store.UpsertUser(ctx, &models.User{
		Address:     key.SafeAddress,
		ChainID:     req.ChainID,
		DisplayName: update.User.DisplayName,
		Avatar:      update.User.Avatar,
	})
	if err != nil {
		return c.fail(fmt.Errorf("failed to upsert user: %w", err))
	}
	if affected == 0 {
		return c.fail(ErrUserNotUpserted)
	}

	if err := c.store.UpdateSignatureRequestStatus(ctx, key.SafeAddress, key.MessageHash, models.EXECUTED); err != nil {
		return c.fail(fmt.Errorf("failed to mark signature request executed: %w", err))
	}
	c.transition(StateCommitted)

	c.logger.Info("signature request executed")
	return nil
}
