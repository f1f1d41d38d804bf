package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/storage"
)

const statusCreatedAtGSI = "status-created_at-index"

func signatureRequestKey(safeAddress, messageHash string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"safe_address": &types.AttributeValueMemberS{Value: safeAddress},
		"message_hash": &types.AttributeValueMemberS{Value: messageHash},
	}
}

// signatureRequestItem is the stored shape of a signature request. The message
// attribute may be written as a map, a JSON string or binary JSON.
type signatureRequestItem struct {
	models.SignatureRequest
	Message any `dynamodbav:"message,omitempty"`
}

func (i signatureRequestItem) toModel() models.SignatureRequest {
	req := i.SignatureRequest
	req.Message = rawMessage(i.Message)
	return req
}

func rawMessage(v any) json.RawMessage {
	switch m := v.(type) {
	case nil:
		return nil
	case []byte:
		if json.Valid(m) {
			return m
		}
	case string:
		if json.Valid([]byte(m)) {
			return json.RawMessage(m)
		}
	}
	// Anything else is re-encoded; the command rejects what it cannot parse.
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// GetSignatureRequest retrieves a signature request from DynamoDB by safe address and message hash.
func (s *Store) GetSignatureRequest(ctx context.Context, safeAddress, messageHash string) (*models.SignatureRequest, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.SignatureRequestsTableName),
		Key:            signatureRequestKey(safeAddress, messageHash),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature request from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s-%s", storage.ErrSignatureRequestNotFound, safeAddress, messageHash)
	}

	var item signatureRequestItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signature request: %w", err)
	}

	req := item.toModel()
	return &req, nil
}

// ListPendingSignatureRequests queries the status GSI for every pending request,
// following LastEvaluatedKey until the result set is exhausted.
func (s *Store) ListPendingSignatureRequests(ctx context.Context, purpose models.SignatureRequestPurpose) ([]models.SignatureRequest, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.SignatureRequestsTableName),
		IndexName:              aws.String(statusCreatedAtGSI),
		KeyConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.PENDING)},
		},
	}
	if purpose != "" {
		input.FilterExpression = aws.String("#purpose = :purpose")
		input.ExpressionAttributeNames["#purpose"] = "purpose"
		input.ExpressionAttributeValues[":purpose"] = &types.AttributeValueMemberS{Value: string(purpose)}
	}

	var requests []models.SignatureRequest
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query for pending signature requests: %w", err)
		}

		var page []signatureRequestItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pending signature requests: %w", err)
		}
		for _, item := range page {
			requests = append(requests, item.toModel())
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return requests, nil
}

// UpdateSignatureRequestStatus sets the status of an existing request.
// The condition on the key attribute keeps the update from creating a new item.
func (s *Store) UpdateSignatureRequestStatus(ctx context.Context, safeAddress, messageHash string, status models.SignatureRequestStatus) error {
	nowAV, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for status update: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.SignatureRequestsTableName),
		Key:                 signatureRequestKey(safeAddress, messageHash),
		UpdateExpression:    aws.String("SET #status = :status, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(safe_address)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":now":    nowAV,
		},
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("%w: %s-%s", storage.ErrSignatureRequestNotFound, safeAddress, messageHash)
		}
		return fmt.Errorf("failed to update signature request status in DynamoDB: %w", err)
	}

	return nil
}
