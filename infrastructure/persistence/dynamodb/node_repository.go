package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/core/entities"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
	"github.com/hoangngo-sudo/the-morytale/pkg/utils"
)

// NodeRepository implements ports.NodeRepository using DynamoDB.
// The sort key embeds a sortable timestamp, so "latest node" is a
// descending query with Limit 1 rather than a scan.
type NodeRepository struct {
	client    *dynamodb.Client
	tableName string
	idIndex   string
	logger    *zap.Logger
}

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(client *dynamodb.Client, tableName, idIndex string, logger *zap.Logger) ports.NodeRepository {
	return &NodeRepository{
		client:    client,
		tableName: tableName,
		idIndex:   idIndex,
		logger:    logger,
	}
}

// nodeRecord represents the DynamoDB item structure for a chain node
type nodeRecord struct {
	PK             string  `dynamodbav:"PK"`
	SK             string  `dynamodbav:"SK"`
	GSI2PK         string  `dynamodbav:"GSI2PK"`
	GSI2SK         string  `dynamodbav:"GSI2SK"`
	EntityType     string  `dynamodbav:"EntityType"`
	NodeID         string  `dynamodbav:"NodeID"`
	UserID         string  `dynamodbav:"UserID"`
	ItemID         string  `dynamodbav:"ItemID"`
	PreviousNodeID *string `dynamodbav:"PreviousNodeID,omitempty"`
	RecapSentence  string  `dynamodbav:"RecapSentence,omitempty"`
	WeekID         string  `dynamodbav:"WeekID"`
	CreatedAt      string  `dynamodbav:"CreatedAt"`
}

// Save persists a node
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	record := nodeRecord{
		PK:            userPK(node.UserID()),
		SK:            fmt.Sprintf("NODE#%s#%s", utils.SortableTimestamp(node.CreatedAt()), node.ID().String()),
		GSI2PK:        fmt.Sprintf("NODE#%s", node.ID().String()),
		GSI2SK:        "METADATA",
		EntityType:    "NODE",
		NodeID:        node.ID().String(),
		UserID:        node.UserID(),
		ItemID:        node.ItemID().String(),
		RecapSentence: node.RecapSentence(),
		WeekID:        node.WeekID().String(),
		CreatedAt:     utils.SortableTimestamp(node.CreatedAt()),
	}
	if prev := node.PreviousNodeID(); prev != nil {
		s := prev.String()
		record.PreviousNodeID = &s
	}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal node", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("save node", err)
	}

	return nil
}

// GetByID retrieves a node by its ID via the entity-id index
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(fmt.Sprintf("NODE#%s", id.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build node query", err)
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
		return nil, pkgerrors.NewDatabaseError("get node", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	var record nodeRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal node", err)
	}

	return hydrateNode(record)
}

// GetByUserID retrieves a user's nodes, newest first
func (r *NodeRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*entities.Node, error) {
	out, err := r.queryUserNodes(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	nodes := make([]*entities.Node, 0, len(out.Items))
	for _, item := range out.Items {
		var record nodeRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal node", err)
		}
		node, err := hydrateNode(record)
		if err != nil {
			r.logger.Warn("skipping malformed node record",
				zap.String("node_id", record.NodeID),
				zap.Error(err))
			continue
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// FindLatestByUser returns the user's most recent node, or nil when the
// user has never posted
func (r *NodeRepository) FindLatestByUser(ctx context.Context, userID string) (*entities.Node, error) {
	out, err := r.queryUserNodes(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var record nodeRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal node", err)
	}

	return hydrateNode(record)
}

func (r *NodeRepository) queryUserNodes(ctx context.Context, userID string, limit int) (*dynamodb.QueryOutput, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith("NODE#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build node query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query nodes", err)
	}
	return out, nil
}

// hydrateNode rebuilds the domain entity from a stored record
func hydrateNode(record nodeRecord) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(record.NodeID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate node id", err)
	}
	itemID, err := valueobjects.NewItemIDFromString(record.ItemID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate node item id", err)
	}
	weekID, err := valueobjects.NewWeekIDFromString(record.WeekID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate node week id", err)
	}

	var previous *valueobjects.NodeID
	if record.PreviousNodeID != nil && *record.PreviousNodeID != "" {
		p, err := valueobjects.NewNodeIDFromString(*record.PreviousNodeID)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("hydrate previous node id", err)
		}
		previous = &p
	}

	createdAt, err := utils.ParseSortableTimestamp(record.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate node timestamp", err)
	}

	return entities.ReconstructNode(id, record.UserID, itemID, previous, record.RecapSentence, weekID, createdAt)
}
