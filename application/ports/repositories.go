package ports

import (
	"context"
	"time"

	"github.com/hoangngo-sudo/the-morytale/domain/core/aggregates"
	"github.com/hoangngo-sudo/the-morytale/domain/core/entities"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
)

// ItemRepository defines the interface for content item persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type ItemRepository interface {
	// Save persists an item
	Save(ctx context.Context, item *entities.ContentItem) error

	// GetByID retrieves an item by its ID; returns a NotFoundError when
	// no such item exists
	GetByID(ctx context.Context, id valueobjects.ItemID) (*entities.ContentItem, error)

	// CountCreatedBetween counts a user's items created in [from, to).
	// Backs the daily submission quota.
	CountCreatedBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// NodeRepository defines the interface for node persistence
type NodeRepository interface {
	// Save persists a node
	Save(ctx context.Context, node *entities.Node) error

	// GetByID retrieves a node by its ID; returns a NotFoundError when
	// no such node exists
	GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error)

	// GetByUserID retrieves a user's nodes, newest first
	GetByUserID(ctx context.Context, userID string, limit int) ([]*entities.Node, error)

	// FindLatestByUser returns the user's most recently created node across
	// all weeks, or nil when the user has never submitted
	FindLatestByUser(ctx context.Context, userID string) (*entities.Node, error)
}

// TrackRepository defines the interface for track persistence
type TrackRepository interface {
	// Save persists a track (create or update)
	Save(ctx context.Context, track *aggregates.Track) error

	// GetByID retrieves a track by its ID; returns a NotFoundError when
	// no such track exists
	GetByID(ctx context.Context, id valueobjects.TrackID) (*aggregates.Track, error)

	// FindActive returns the user's unconcluded track for the given week,
	// or nil when there is none
	FindActive(ctx context.Context, userID string, week valueobjects.WeekID) (*aggregates.Track, error)

	// FindOrCreateActive returns the user's unconcluded track for the given
	// week, creating and persisting a fresh one when none exists. The
	// check-then-act is an explicit repository method so a backend wanting
	// stronger guarantees can implement it as a conditional upsert.
	FindOrCreateActive(ctx context.Context, userID string, week valueobjects.WeekID) (*aggregates.Track, error)

	// FindUnconcludedByUser returns all of the user's unconcluded tracks,
	// any week. Feeds the lazy expiry sweep.
	FindUnconcludedByUser(ctx context.Context, userID string) ([]*aggregates.Track, error)

	// FindWeekStories returns up to limit non-empty stories from other
	// users' tracks in the same week, concluded or not
	FindWeekStories(ctx context.Context, week valueobjects.WeekID, excludeUserID string, limit int) ([]string, error)

	// GetHistoryByUser returns the user's tracks, newest first
	GetHistoryByUser(ctx context.Context, userID string, limit int) ([]*aggregates.Track, error)
}
