package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/core/aggregates"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
	"github.com/hoangngo-sudo/the-morytale/pkg/utils"
)

// TrackRepository implements ports.TrackRepository using DynamoDB.
// Tracks share the user partition with items and nodes; the week index
// (GSI1) serves the cross-user story lookup that feeds conclusions.
type TrackRepository struct {
	client    *dynamodb.Client
	tableName string
	weekIndex string
	idIndex   string
	logger    *zap.Logger
}

// NewTrackRepository creates a new TrackRepository
func NewTrackRepository(client *dynamodb.Client, tableName, weekIndex, idIndex string, logger *zap.Logger) ports.TrackRepository {
	return &TrackRepository{
		client:    client,
		tableName: tableName,
		weekIndex: weekIndex,
		idIndex:   idIndex,
		logger:    logger,
	}
}

// trackRecord represents the DynamoDB item structure for a track
type trackRecord struct {
	PK                  string   `dynamodbav:"PK"`
	SK                  string   `dynamodbav:"SK"`
	GSI1PK              string   `dynamodbav:"GSI1PK"`
	GSI1SK              string   `dynamodbav:"GSI1SK"`
	GSI2PK              string   `dynamodbav:"GSI2PK"`
	GSI2SK              string   `dynamodbav:"GSI2SK"`
	EntityType          string   `dynamodbav:"EntityType"`
	TrackID             string   `dynamodbav:"TrackID"`
	UserID              string   `dynamodbav:"UserID"`
	WeekID              string   `dynamodbav:"WeekID"`
	NodeIDs             []string `dynamodbav:"NodeIDs"`
	Story               string   `dynamodbav:"Story,omitempty"`
	CommunityReflection string   `dynamodbav:"CommunityReflection,omitempty"`
	Status              string   `dynamodbav:"Status"`
	CreatedAt           string   `dynamodbav:"CreatedAt"`
	UpdatedAt           string   `dynamodbav:"UpdatedAt"`
}

// Save persists a track, create or update. The sort key is derived from
// the creation timestamp, so updates overwrite the same item.
func (r *TrackRepository) Save(ctx context.Context, track *aggregates.Track) error {
	nodeIDs := make([]string, 0, track.NodeCount())
	for _, id := range track.NodeIDs() {
		nodeIDs = append(nodeIDs, id.String())
	}

	record := trackRecord{
		PK:                  userPK(track.UserID()),
		SK:                  trackSK(track),
		GSI1PK:              fmt.Sprintf("WEEK#%s", track.WeekID().String()),
		GSI1SK:              fmt.Sprintf("TRACK#%s", utils.SortableTimestamp(track.CreatedAt())),
		GSI2PK:              fmt.Sprintf("TRACK#%s", track.ID().String()),
		GSI2SK:              "METADATA",
		EntityType:          "TRACK",
		TrackID:             track.ID().String(),
		UserID:              track.UserID(),
		WeekID:              track.WeekID().String(),
		NodeIDs:             nodeIDs,
		Story:               track.Story(),
		CommunityReflection: track.CommunityReflection(),
		Status:              string(track.Status()),
		CreatedAt:           utils.SortableTimestamp(track.CreatedAt()),
		UpdatedAt:           utils.SortableTimestamp(track.UpdatedAt()),
	}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal track", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("save track", err)
	}

	return nil
}

// GetByID retrieves a track by its ID via the entity-id index
func (r *TrackRepository) GetByID(ctx context.Context, id valueobjects.TrackID) (*aggregates.Track, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(fmt.Sprintf("TRACK#%s", id.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build track query", err)
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
		return nil, pkgerrors.NewDatabaseError("get track", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("track")
	}

	var record trackRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal track", err)
	}

	return hydrateTrack(record)
}

// FindActive returns the user's unconcluded track for the given week, or
// nil when there is none
func (r *TrackRepository) FindActive(ctx context.Context, userID string, week valueobjects.WeekID) (*aggregates.Track, error) {
	filter := expression.Name("Status").Equal(expression.Value(string(aggregates.StatusActive))).
		And(expression.Name("WeekID").Equal(expression.Value(week.String())))

	tracks, err := r.queryUserTracks(ctx, userID, &filter, 0, false)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return tracks[0], nil
}

// FindOrCreateActive returns the user's unconcluded track for the week,
// creating one when none exists. Two racing callers can both create a
// track; the user partition keeps both visible and the next call returns
// the oldest, so the duplicate is harmless.
func (r *TrackRepository) FindOrCreateActive(ctx context.Context, userID string, week valueobjects.WeekID) (*aggregates.Track, error) {
	track, err := r.FindActive(ctx, userID, week)
	if err != nil {
		return nil, err
	}
	if track != nil {
		return track, nil
	}

	track, err = aggregates.NewTrack(userID, week)
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, track); err != nil {
		return nil, err
	}

	r.logger.Debug("created track",
		zap.String("user_id", userID),
		zap.String("week_id", week.String()),
		zap.String("track_id", track.ID().String()))

	return track, nil
}

// FindUnconcludedByUser returns all of the user's unconcluded tracks,
// any week
func (r *TrackRepository) FindUnconcludedByUser(ctx context.Context, userID string) ([]*aggregates.Track, error) {
	filter := expression.Name("Status").Equal(expression.Value(string(aggregates.StatusActive)))
	return r.queryUserTracks(ctx, userID, &filter, 0, false)
}

// FindWeekStories returns up to limit non-empty stories from other users'
// tracks in the same week
func (r *TrackRepository) FindWeekStories(ctx context.Context, week valueobjects.WeekID, excludeUserID string, limit int) ([]string, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("WEEK#%s", week.String())))
	filter := expression.Name("UserID").NotEqual(expression.Value(excludeUserID)).
		And(expression.Name("Story").AttributeExists()).
		And(expression.Name("Story").NotEqual(expression.Value("")))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build week stories query", err)
	}

	stories := make([]string, 0, limit)
	var startKey map[string]types.AttributeValue
	for len(stories) < limit {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.weekIndex),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query week stories", err)
		}

		for _, item := range out.Items {
			var record trackRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal track", err)
			}
			stories = append(stories, record.Story)
			if len(stories) == limit {
				break
			}
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return stories, nil
}

// GetHistoryByUser returns the user's tracks, newest first
func (r *TrackRepository) GetHistoryByUser(ctx context.Context, userID string, limit int) ([]*aggregates.Track, error) {
	return r.queryUserTracks(ctx, userID, nil, limit, true)
}

func (r *TrackRepository) queryUserTracks(ctx context.Context, userID string, filter *expression.ConditionBuilder, limit int, newestFirst bool) ([]*aggregates.Track, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith("TRACK#"))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build track query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!newestFirst),
	}

	tracks := []*aggregates.Track{}
	var startKey map[string]types.AttributeValue
	for {
		input.ExclusiveStartKey = startKey
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query tracks", err)
		}

		for _, item := range out.Items {
			var record trackRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal track", err)
			}
			track, err := hydrateTrack(record)
			if err != nil {
				r.logger.Warn("skipping malformed track record",
					zap.String("track_id", record.TrackID),
					zap.Error(err))
				continue
			}
			tracks = append(tracks, track)
			if limit > 0 && len(tracks) == limit {
				return tracks, nil
			}
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return tracks, nil
}

// hydrateTrack rebuilds the aggregate from a stored record
func hydrateTrack(record trackRecord) (*aggregates.Track, error) {
	id, err := valueobjects.NewTrackIDFromString(record.TrackID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate track id", err)
	}
	weekID, err := valueobjects.NewWeekIDFromString(record.WeekID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate track week id", err)
	}

	nodeIDs := make([]valueobjects.NodeID, 0, len(record.NodeIDs))
	for _, raw := range record.NodeIDs {
		nodeID, err := valueobjects.NewNodeIDFromString(raw)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("hydrate track node id", err)
		}
		nodeIDs = append(nodeIDs, nodeID)
	}

	createdAt, err := utils.ParseSortableTimestamp(record.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate track created timestamp", err)
	}
	updatedAt, err := utils.ParseSortableTimestamp(record.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("hydrate track updated timestamp", err)
	}

	return aggregates.ReconstructTrack(
		id,
		record.UserID,
		weekID,
		nodeIDs,
		record.Story,
		record.CommunityReflection,
		aggregates.TrackStatus(record.Status),
		createdAt,
		updatedAt,
	)
}

func trackSK(track *aggregates.Track) string {
	return fmt.Sprintf("TRACK#%s#%s", utils.SortableTimestamp(track.CreatedAt()), track.ID().String())
}
