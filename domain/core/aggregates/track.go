package aggregates

import (
	"strings"
	"time"

	"github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	"github.com/hoangngo-sudo/the-morytale/domain/events"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// TrackStatus represents the lifecycle state of a track
type TrackStatus string

const (
	StatusActive    TrackStatus = "active"
	StatusConcluded TrackStatus = "concluded"
)

// Track is a user's per-week narrative container. It accumulates node
// references and story text during the week and concludes terminally: once
// concluded, the only mutation still allowed is an explicit story edit by
// the owner.
type Track struct {
	id                  valueobjects.TrackID
	userID              string
	weekID              valueobjects.WeekID
	nodeIDs             []valueobjects.NodeID
	story               string
	communityReflection string
	status              TrackStatus
	createdAt           time.Time
	updatedAt           time.Time

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewTrack creates an empty active track for the given user and week
func NewTrack(userID string, weekID valueobjects.WeekID) (*Track, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if weekID.IsZero() {
		return nil, pkgerrors.NewValidationError("weekID cannot be empty")
	}

	now := time.Now()
	return &Track{
		id:        valueobjects.NewTrackID(),
		userID:    userID,
		weekID:    weekID,
		nodeIDs:   []valueobjects.NodeID{},
		story:     "",
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}, nil
}

// ReconstructTrack rebuilds a track from repository data with its original
// timestamps preserved
func ReconstructTrack(
	id valueobjects.TrackID,
	userID string,
	weekID valueobjects.WeekID,
	nodeIDs []valueobjects.NodeID,
	story string,
	communityReflection string,
	status TrackStatus,
	createdAt, updatedAt time.Time,
) (*Track, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if weekID.IsZero() {
		return nil, pkgerrors.NewValidationError("weekID cannot be empty")
	}
	if nodeIDs == nil {
		nodeIDs = []valueobjects.NodeID{}
	}

	return &Track{
		id:                  id,
		userID:              userID,
		weekID:              weekID,
		nodeIDs:             nodeIDs,
		story:               story,
		communityReflection: communityReflection,
		status:              status,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
		events:              []events.DomainEvent{},
	}, nil
}

// AppendNode adds a node reference and extends the story with the node's
// narrative fragment
func (t *Track) AppendNode(nodeID valueobjects.NodeID, storySegment string) error {
	return t.AppendNodeWithConfig(nodeID, storySegment, config.DefaultDomainConfig())
}

// AppendNodeWithConfig adds a node reference with explicit configuration
func (t *Track) AppendNodeWithConfig(nodeID valueobjects.NodeID, storySegment string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if t.status == StatusConcluded {
		return pkgerrors.NewConflictError("track already concluded")
	}
	if nodeID.IsZero() {
		return pkgerrors.NewValidationError("nodeID cannot be empty")
	}
	if len(t.nodeIDs) >= cfg.TrackNodeLimit {
		return pkgerrors.NewConflictError("track is at capacity")
	}

	t.nodeIDs = append(t.nodeIDs, nodeID)
	t.story = strings.TrimSpace(t.story + " " + storySegment)
	t.updatedAt = time.Now()

	return nil
}

// Conclude transitions the track to its terminal state, appending the
// closing text when the generator produced one. An empty closing still
// concludes: enrichment is best effort, termination is guaranteed.
func (t *Track) Conclude(closingText, communityReflection string) error {
	if t.status == StatusConcluded {
		return pkgerrors.NewConflictError("track already concluded")
	}

	if closingText != "" {
		t.story = t.story + "\n\n" + closingText
	}
	if communityReflection != "" {
		t.communityReflection = communityReflection
	}

	t.status = StatusConcluded
	t.updatedAt = time.Now()

	t.addEvent(events.NewTrackConcluded(t.id, t.userID, t.weekID, len(t.nodeIDs), t.updatedAt))

	return nil
}

// ForceConclude concludes without any enrichment. Used by the expiry sweep
// when the conclusion engine itself errored, so the sweep can never wedge on
// one broken track.
func (t *Track) ForceConclude() {
	if t.status == StatusConcluded {
		return
	}
	t.status = StatusConcluded
	t.updatedAt = time.Now()
	t.addEvent(events.NewTrackConcluded(t.id, t.userID, t.weekID, len(t.nodeIDs), t.updatedAt))
}

// EditStory replaces the story text. Explicit user edits are the one
// mutation permitted after conclusion.
func (t *Track) EditStory(story string) {
	t.story = story
	t.updatedAt = time.Now()
}

// IsConcluded reports whether the track reached its terminal state
func (t *Track) IsConcluded() bool {
	return t.status == StatusConcluded
}

// IsExpired reports whether the track has outlived maxAge at the given time
func (t *Track) IsExpired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(t.createdAt) >= maxAge
}

// IsAtCapacity reports whether the track holds at least limit nodes
func (t *Track) IsAtCapacity(limit int) bool {
	return len(t.nodeIDs) >= limit
}

// HasContent reports whether the track accumulated any story text or nodes.
// Empty tracks cannot be concluded manually.
func (t *Track) HasContent() bool {
	return t.story != "" || len(t.nodeIDs) > 0
}

// IsOwnedBy checks track ownership
func (t *Track) IsOwnedBy(userID string) bool {
	return t.userID == userID
}

// ID returns the track's unique identifier
func (t *Track) ID() valueobjects.TrackID {
	return t.id
}

// UserID returns the owner's ID
func (t *Track) UserID() string {
	return t.userID
}

// WeekID returns the week bucket this track belongs to
func (t *Track) WeekID() valueobjects.WeekID {
	return t.weekID
}

// NodeIDs returns the ordered node references
func (t *Track) NodeIDs() []valueobjects.NodeID {
	// Return a copy to maintain encapsulation
	ids := make([]valueobjects.NodeID, len(t.nodeIDs))
	copy(ids, t.nodeIDs)
	return ids
}

// NodeCount returns the number of nodes on the track
func (t *Track) NodeCount() int {
	return len(t.nodeIDs)
}

// Story returns the accumulated narrative text
func (t *Track) Story() string {
	return t.story
}

// CommunityReflection returns the reflection text produced at conclusion
func (t *Track) CommunityReflection() string {
	return t.communityReflection
}

// Status returns the track's current lifecycle state
func (t *Track) Status() TrackStatus {
	return t.status
}

// CreatedAt returns when the track was created
func (t *Track) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt returns when the track was last updated
func (t *Track) UpdatedAt() time.Time {
	return t.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (t *Track) GetUncommittedEvents() []events.DomainEvent {
	return t.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (t *Track) MarkEventsAsCommitted() {
	t.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (t *Track) addEvent(event events.DomainEvent) {
	t.events = append(t.events, event)
}
