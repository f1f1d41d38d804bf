package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/storage"
)

// UpsertUser creates the user if missing and otherwise updates the provided profile fields.
// Nil fields are not part of the update expression, so existing values survive.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) (int64, error) {
	if user == nil || user.Address == "" || user.ChainID == 0 {
		return 0, storage.ErrInvalidUser
	}

	nowAV, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to marshal timestamp for user upsert: %w", err)
	}

	sets := []string{"updated_at = :now", "created_at = if_not_exists(created_at, :now)"}
	values := map[string]types.AttributeValue{":now": nowAV}
	if user.DisplayName != nil {
		sets = append(sets, "display_name = :display_name")
		values[":display_name"] = &types.AttributeValueMemberS{Value: *user.DisplayName}
	}
	if user.Avatar != nil {
		sets = append(sets, "avatar = :avatar")
		values[":avatar"] = &types.AttributeValueMemberS{Value: *user.Avatar}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.UsersTableName),
		Key: map[string]types.AttributeValue{
			"address":  &types.AttributeValueMemberS{Value: user.Address},
			"chain_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(user.ChainID, 10)},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert user in DynamoDB: %w", err)
	}

	if len(result.Attributes) == 0 {
		return 0, nil
	}

	var stored models.User
	if err := attributevalue.UnmarshalMap(result.Attributes, &stored); err != nil {
		return 0, fmt.Errorf("failed to unmarshal upserted user: %w", err)
	}
	*user = stored

	return 1, nil
}
