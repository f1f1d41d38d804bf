package commands

import (
	"github.com/chris/safe-signature-processor/pkg/models"
)

// SafeCommand carries the identity shared by every command that acts on a Safe
// signature request. Concrete commands embed it and add Execute.
type SafeCommand struct {
	key models.RequestKey
}

// NewSafeCommand creates the identity part of a command.
func NewSafeCommand(safeAddress, messageHash string, chainID int64) SafeCommand {
	return SafeCommand{key: models.RequestKey{
		SafeAddress: safeAddress,
		MessageHash: messageHash,
		ChainID:     chainID,
	}}
}

// ID returns the dedup key "<safeAddress>-<messageHash>".
func (c SafeCommand) ID() string {
	return c.key.ID()
}

// Key returns the full identity, including the chain.
func (c SafeCommand) Key() models.RequestKey {
	return c.key
}
