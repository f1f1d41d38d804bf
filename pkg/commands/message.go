package commands

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// UserUpdateMessage is the typed-data body a Safe signs to change its profile.
type UserUpdateMessage struct {
	Metadata map[string]any `json:"metadata,omitempty"`
	User     *struct {
		DisplayName *string `json:"displayName,omitempty"`
		Avatar      *string `json:"avatar,omitempty"`
	} `json:"user"`
}

// ParseUserUpdateMessage validates the message part of typed data against the
// user update shape. Unknown members are ignored; wrong types are rejected.
func ParseUserUpdateMessage(message apitypes.TypedDataMessage) (*UserUpdateMessage, error) {
	if message == nil {
		return nil, fmt.Errorf("%w: empty message", ErrUnexpectedMessageFormat)
	}

	buf, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedMessageFormat, err)
	}

	var out UserUpdateMessage
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedMessageFormat, err)
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: missing user", ErrUnexpectedMessageFormat)
	}
	return &out, nil
}
