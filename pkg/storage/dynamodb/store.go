package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/safe-signature-processor/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                     DynamoDBAPI
	SignatureRequestsTableName string
	UsersTableName             string
}

// New creates a new Store.
func New(client DynamoDBAPI, signatureRequestsTable, usersTable string) *Store {
	return &Store{
		Client:                     client,
		SignatureRequestsTableName: signatureRequestsTable,
		UsersTableName:             usersTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// Make sure the real client satisfies the subset we depend on
var _ DynamoDBAPI = (*dynamodb.Client)(nil)
