package models

import (
	"encoding/json"
	"time"
)

// SignatureRequestStatus defines the possible states of a signature request.
type SignatureRequestStatus string

const (
	PENDING  SignatureRequestStatus = "pending"
	EXECUTED SignatureRequestStatus = "executed"
	CANCELED SignatureRequestStatus = "canceled"
)

// SignatureRequestPurpose defines what a signature request is meant to change once approved.
type SignatureRequestPurpose string

const (
	UPDATE_USER_DATA SignatureRequestPurpose = "update_user_data"
)

// SignatureRequest is an off-chain approval request for a Safe message.
// It is identified by the pair (safe address, message hash) and tagged for
// both DynamoDB and JSON marshalling.
type SignatureRequest struct {
	SafeAddress string                  `json:"safe_address" dynamodbav:"safe_address"`
	MessageHash string                  `json:"message_hash" dynamodbav:"message_hash"`
	ChainID     int64                   `json:"chain_id" dynamodbav:"chain_id"`
	Message     json.RawMessage         `json:"message,omitempty" dynamodbav:"message,omitempty"`
	Purpose     SignatureRequestPurpose `json:"purpose" dynamodbav:"purpose"`
	Status      SignatureRequestStatus  `json:"status" dynamodbav:"status"`
	CreatedAt   time.Time               `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at,omitempty" dynamodbav:"updated_at,omitempty"`
}

// Key returns the identity of the request.
func (r *SignatureRequest) Key() RequestKey {
	return RequestKey{
		SafeAddress: r.SafeAddress,
		MessageHash: r.MessageHash,
		ChainID:     r.ChainID,
	}
}

// RequestKey identifies one logical unit of work.
type RequestKey struct {
	SafeAddress string
	MessageHash string
	ChainID     int64
}

// ID is the dedup key for the request. The chain is not part of it.
func (k RequestKey) ID() string {
	return k.SafeAddress + "-" + k.MessageHash
}

// User is the profile record updated once a multisig approves a user data change.
// Nil DisplayName or Avatar leave the stored value untouched on upsert.
type User struct {
	Address     string    `json:"address" dynamodbav:"address"`
	ChainID     int64     `json:"chain_id" dynamodbav:"chain_id"`
	DisplayName *string   `json:"display_name,omitempty" dynamodbav:"display_name,omitempty"`
	Avatar      *string   `json:"avatar,omitempty" dynamodbav:"avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}
