package safe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// SafeInfo is the subset of the Safe Transaction Service safe resource we rely on.
type SafeInfo struct {
	Address   string   `json:"address"`
	Threshold int      `json:"threshold"`
	Owners    []string `json:"owners"`
	Version   string   `json:"version"`
}

// Confirmation is a single owner signature on a Safe message.
type Confirmation struct {
	Created       time.Time `json:"created"`
	Owner         string    `json:"owner"`
	Signature     string    `json:"signature"`
	SignatureType string    `json:"signatureType"`
}

// Message is an off-chain Safe message and the confirmations collected for it.
type Message struct {
	Created       time.Time      `json:"created"`
	Modified      time.Time      `json:"modified"`
	Safe          string         `json:"safe"`
	MessageHash   string         `json:"messageHash"`
	Message       Payload        `json:"message"`
	ProposedBy    string         `json:"proposedBy"`
	Confirmations []Confirmation `json:"confirmations"`
}

// Payload is the message body of a Safe message. The service returns either a
// plain string or an EIP-712 typed data object.
type Payload struct {
	// Typed is set when the payload is an EIP-712 typed data object.
	Typed *apitypes.TypedData
	// Text is set when the payload is a plain string.
	Text string

	raw json.RawMessage
}

// IsTyped reports whether the payload is EIP-712 typed data.
func (p Payload) IsTyped() bool {
	return p.Typed != nil
}

// Raw returns the payload exactly as received.
func (p Payload) Raw() json.RawMessage {
	return p.raw
}

// MarshalJSON writes the payload back out unchanged.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	if p.Typed != nil {
		return json.Marshal(p.Typed)
	}
	return json.Marshal(p.Text)
}

// UnmarshalJSON decodes a string or an object. Only objects carrying a "types"
// member are typed data; any other object is kept as raw, untyped content.
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = Payload{raw: append(json.RawMessage(nil), data...)}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &p.Text)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return fmt.Errorf("failed to decode message payload: %w", err)
		}
		if _, ok := fields["types"]; !ok {
			return nil
		}
		p.Typed = decodeTypedData(fields)
		return nil
	default:
		return nil
	}
}

// decodeTypedData keeps an object carrying "types" as typed data even when its
// members have the wrong shape. Members that do not decode are left empty and
// the original bytes stay available through Raw.
func decodeTypedData(fields map[string]json.RawMessage) *apitypes.TypedData {
	var typed apitypes.TypedData
	if err := json.Unmarshal(fields["types"], &typed.Types); err != nil {
		typed.Types = nil
	}
	if raw, ok := fields["primaryType"]; ok {
		_ = json.Unmarshal(raw, &typed.PrimaryType)
	}
	if raw, ok := fields["message"]; ok {
		if err := json.Unmarshal(raw, &typed.Message); err != nil {
			typed.Message = nil
		}
	}
	// chainId may be a number or a hex string.
	if raw, ok := fields["domain"]; ok {
		_ = json.Unmarshal(raw, &typed.Domain)
	}
	return &typed
}
