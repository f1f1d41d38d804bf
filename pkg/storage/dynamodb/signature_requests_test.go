package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/storage"
	"github.com/chris/safe-signature-processor/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSafe = "0x4f2083f5fBede34C2714aFfb3105539775f7FE64"
	testHash = "0x8a2ea5d7b2cf0e6ec7e1f2d6b8c7e0a2f0f1b4c4b4c7f9a0d1e2f3a4b5c6d7e8"
)

func TestGetSignatureRequest(t *testing.T) {
	req := &models.SignatureRequest{
		SafeAddress: testSafe,
		MessageHash: testHash,
		ChainID:     11155111,
		Purpose:     models.UPDATE_USER_DATA,
		Status:      models.PENDING,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		reqAV, err := attributevalue.MarshalMap(req)
		require.NoError(t, err)
		mockClient.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return *in.TableName == "signature_requests" && *in.ConsistentRead
		})).Return(&dynamodb.GetItemOutput{Item: reqAV}, nil)

		result, err := store.GetSignatureRequest(context.Background(), testSafe, testHash)

		assert.NoError(t, err)
		assert.Equal(t, req, result)
		mockClient.AssertExpectations(t)
	})

	t.Run("Message Encodings", func(t *testing.T) {
		tests := []struct {
			name    string
			message types.AttributeValue
			want    string
		}{
			{
				name: "Map",
				message: &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
					"displayName": &types.AttributeValueMemberS{Value: "alice"},
					"nonce":       &types.AttributeValueMemberN{Value: "7"},
				}},
				want: `{"displayName":"alice","nonce":7}`,
			},
			{
				name:    "Binary JSON",
				message: &types.AttributeValueMemberB{Value: []byte(`{"displayName":"alice"}`)},
				want:    `{"displayName":"alice"}`,
			},
			{
				name:    "JSON String",
				message: &types.AttributeValueMemberS{Value: `{"displayName":"alice"}`},
				want:    `{"displayName":"alice"}`,
			},
			{
				name:    "Plain String",
				message: &types.AttributeValueMemberS{Value: "hello"},
				want:    `"hello"`,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockClient := new(mocks.DynamoDBAPI)
				store := New(mockClient, "signature_requests", "users")

				reqAV, err := attributevalue.MarshalMap(req)
				require.NoError(t, err)
				reqAV["message"] = tt.message
				mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: reqAV}, nil)

				result, err := store.GetSignatureRequest(context.Background(), testSafe, testHash)

				require.NoError(t, err)
				assert.JSONEq(t, tt.want, string(result.Message))
				assert.Equal(t, req.Key(), result.Key())
				assert.Equal(t, models.PENDING, result.Status)
			})
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		_, err := store.GetSignatureRequest(context.Background(), testSafe, testHash)

		assert.ErrorIs(t, err, storage.ErrSignatureRequestNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("get item failed"))

		_, err := store.GetSignatureRequest(context.Background(), testSafe, testHash)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get signature request from DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestListPendingSignatureRequests(t *testing.T) {
	first := models.SignatureRequest{SafeAddress: testSafe, MessageHash: "0x01", ChainID: 10, Purpose: models.UPDATE_USER_DATA, Status: models.PENDING}
	second := models.SignatureRequest{SafeAddress: testSafe, MessageHash: "0x02", ChainID: 10, Purpose: models.UPDATE_USER_DATA, Status: models.PENDING}

	t.Run("Follows Pagination", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		firstAV, _ := attributevalue.MarshalMap(first)
		secondAV, _ := attributevalue.MarshalMap(second)
		lastKey := map[string]types.AttributeValue{"safe_address": &types.AttributeValueMemberS{Value: testSafe}}

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return in.ExclusiveStartKey == nil
		})).Once().Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{firstAV}, LastEvaluatedKey: lastKey}, nil)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return in.ExclusiveStartKey != nil
		})).Once().Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{secondAV}}, nil)

		result, err := store.ListPendingSignatureRequests(context.Background(), models.UPDATE_USER_DATA)

		assert.NoError(t, err)
		assert.Equal(t, []models.SignatureRequest{first, second}, result)
		mockClient.AssertExpectations(t)
	})

	t.Run("Map Encoded Message Does Not Abort The Page", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		firstAV, _ := attributevalue.MarshalMap(first)
		firstAV["message"] = &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"avatar": &types.AttributeValueMemberS{Value: "ipfs://avatar"},
		}}
		secondAV, _ := attributevalue.MarshalMap(second)
		secondAV["message"] = &types.AttributeValueMemberB{Value: []byte(`{"displayName":"bob"}`)}

		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{firstAV, secondAV},
		}, nil)

		result, err := store.ListPendingSignatureRequests(context.Background(), "")

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.JSONEq(t, `{"avatar":"ipfs://avatar"}`, string(result[0].Message))
		assert.JSONEq(t, `{"displayName":"bob"}`, string(result[1].Message))
		assert.Equal(t, "0x02", result[1].MessageHash)
		mockClient.AssertExpectations(t)
	})

	t.Run("Filters By Purpose", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			purpose, ok := in.ExpressionAttributeValues[":purpose"].(*types.AttributeValueMemberS)
			return *in.IndexName == statusCreatedAtGSI && in.FilterExpression != nil && ok && purpose.Value == "update_user_data"
		})).Return(&dynamodb.QueryOutput{}, nil)

		result, err := store.ListPendingSignatureRequests(context.Background(), models.UPDATE_USER_DATA)

		assert.NoError(t, err)
		assert.Empty(t, result)
		mockClient.AssertExpectations(t)
	})

	t.Run("No Purpose Filter", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return in.FilterExpression == nil
		})).Return(&dynamodb.QueryOutput{}, nil)

		_, err := store.ListPendingSignatureRequests(context.Background(), "")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Query Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		_, err := store.ListPendingSignatureRequests(context.Background(), models.UPDATE_USER_DATA)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query for pending signature requests")
		mockClient.AssertExpectations(t)
	})
}

func TestUpdateSignatureRequestStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			status := in.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS)
			return status.Value == "executed" && *in.ConditionExpression == "attribute_exists(safe_address)"
		})).Return(&dynamodb.UpdateItemOutput{}, nil)

		err := store.UpdateSignatureRequestStatus(context.Background(), testSafe, testHash, models.EXECUTED)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		err := store.UpdateSignatureRequestStatus(context.Background(), testSafe, testHash, models.EXECUTED)

		assert.ErrorIs(t, err, storage.ErrSignatureRequestNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "signature_requests", "users")

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errors.New("update failed"))

		err := store.UpdateSignatureRequestStatus(context.Background(), testSafe, testHash, models.EXECUTED)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrSignatureRequestNotFound)
		mockClient.AssertExpectations(t)
	})
}
