package events

import (
	"time"

	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
)

// Source identifies this service on the event bus
const Source = "morytale.api"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// ItemCreated is raised when a submission produces a new content item
type ItemCreated struct {
	BaseEvent
	ItemID valueobjects.ItemID      `json:"item_id"`
	UserID string                   `json:"user_id"`
	Kind   valueobjects.ContentKind `json:"kind"`
}

// NewItemCreated creates an ItemCreated event
func NewItemCreated(itemID valueobjects.ItemID, userID string, kind valueobjects.ContentKind, timestamp time.Time) ItemCreated {
	return ItemCreated{
		BaseEvent: BaseEvent{
			AggregateID: itemID.String(),
			EventType:   "item.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		ItemID: itemID,
		UserID: userID,
		Kind:   kind,
	}
}

// NodeLinked is raised when a new node is appended to a user's chain
type NodeLinked struct {
	BaseEvent
	NodeID         valueobjects.NodeID  `json:"node_id"`
	PreviousNodeID *valueobjects.NodeID `json:"previous_node_id,omitempty"`
	UserID         string               `json:"user_id"`
	WeekID         string               `json:"week_id"`
}

// NewNodeLinked creates a NodeLinked event
func NewNodeLinked(nodeID valueobjects.NodeID, previous *valueobjects.NodeID, userID string, week valueobjects.WeekID, timestamp time.Time) NodeLinked {
	return NodeLinked{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.linked",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:         nodeID,
		PreviousNodeID: previous,
		UserID:         userID,
		WeekID:         week.String(),
	}
}

// TrackConcluded is raised when a track transitions to its terminal state
type TrackConcluded struct {
	BaseEvent
	TrackID   valueobjects.TrackID `json:"track_id"`
	UserID    string               `json:"user_id"`
	WeekID    string               `json:"week_id"`
	NodeCount int                  `json:"node_count"`
}

// NewTrackConcluded creates a TrackConcluded event
func NewTrackConcluded(trackID valueobjects.TrackID, userID string, week valueobjects.WeekID, nodeCount int, timestamp time.Time) TrackConcluded {
	return TrackConcluded{
		BaseEvent: BaseEvent{
			AggregateID: trackID.String(),
			EventType:   "track.concluded",
			Timestamp:   timestamp,
			Version:     1,
		},
		TrackID:   trackID,
		UserID:    userID,
		WeekID:    week.String(),
		NodeCount: nodeCount,
	}
}
