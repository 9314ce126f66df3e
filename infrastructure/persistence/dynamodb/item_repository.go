package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/core/entities"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
	"github.com/hoangngo-sudo/the-morytale/pkg/utils"
)

// ItemRepository implements ports.ItemRepository using DynamoDB.
// Items live in the single table under PK USER#<id> with a time-ordered
// sort key, so the daily quota count is one key-condition query.
type ItemRepository struct {
	client    *dynamodb.Client
	tableName string
	idIndex   string
	logger    *zap.Logger
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(client *dynamodb.Client, tableName, idIndex string, logger *zap.Logger) ports.ItemRepository {
	return &ItemRepository{
		client:    client,
		tableName: tableName,
		idIndex:   idIndex,
		logger:    logger,
	}
}

// itemRecord represents the DynamoDB item structure for a content item
type itemRecord struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI2PK      string `dynamodbav:"GSI2PK"`
	GSI2SK      string `dynamodbav:"GSI2SK"`
	EntityType  string `dynamodbav:"EntityType"`
	ItemID      string `dynamodbav:"ItemID"`
	UserID      string `dynamodbav:"UserID"`
	Kind        string `dynamodbav:"Kind"`
	ContentURL  string `dynamodbav:"ContentURL,omitempty"`
	Text        string `dynamodbav:"Text,omitempty"`
	Caption     string `dynamodbav:"Caption,omitempty"`
	Description string `dynamodbav:"Description,omitempty"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
}

// Save persists an item
func (r *ItemRepository) Save(ctx context.Context, item *entities.ContentItem) error {
	record := itemRecord{
		PK:          userPK(item.UserID()),
		SK:          fmt.Sprintf("ITEM#%s#%s", utils.SortableTimestamp(item.CreatedAt()), item.ID().String()),
		GSI2PK:      fmt.Sprintf("ITEM#%s", item.ID().String()),
		GSI2SK:      "METADATA",
		EntityType:  "ITEM",
		ItemID:      item.ID().String(),
		UserID:      item.UserID(),
		Kind:        string(item.Content().Kind()),
		ContentURL:  item.Content().ContentURL(),
		Text:        item.Content().Text(),
		Caption:     item.Content().Caption(),
		Description: item.Description(),
		CreatedAt:   utils.SortableTimestamp(item.CreatedAt()),
	}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal item", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("save item", err)
	}

	return nil
}

// GetByID retrieves an item by its ID via the entity-id index
func (r *ItemRepository) GetByID(ctx context.Context, id valueobjects.ItemID) (*entities.ContentItem, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(fmt.Sprintf("ITEM#%s", id.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build item query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.idIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get item", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("item")
	}

	var record itemRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal item", err)
	}

	return hydrateItem(record)
}

// CountCreatedBetween counts a user's items created in [from, to)
func (r *ItemRepository) CountCreatedBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").Between(
			expression.Value(fmt.Sprintf("ITEM#%s", utils.SortableTimestamp(from))),
			expression.Value(fmt.Sprintf("ITEM#%s", utils.SortableTimestamp(to))),
		))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("build count query", err)
	}

	count := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Select:                    types.SelectCount,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("count items", err)
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return count, nil
}

// hydrateItem rebuilds the domain entity from a stored record
func hydrateItem(record itemRecord) (*entities.ContentItem, error) {
	id, err := valueobjects.NewItemIDFromString(record.ItemID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate item id", err)
	}

	var content valueobjects.ItemContent
	switch valueobjects.ContentKind(record.Kind) {
	case valueobjects.KindImage:
		content, err = valueobjects.NewImageContent(record.ContentURL, record.Caption)
	default:
		content, err = valueobjects.NewTextContent(record.Text, record.Caption)
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate item content", err)
	}

	createdAt, err := utils.ParseSortableTimestamp(record.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate item timestamp", err)
	}

	return entities.ReconstructContentItem(id, record.UserID, content, record.Description, createdAt)
}

// userPK builds the partition key for a user's entities
func userPK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}
