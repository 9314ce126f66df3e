package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// ItemID is a value object identifying one content item
type ItemID struct {
	value string
}

// NewItemID creates a new random ItemID
func NewItemID() ItemID {
	return ItemID{value: uuid.New().String()}
}

// NewItemIDFromString creates an ItemID from an existing string
func NewItemIDFromString(id string) (ItemID, error) {
	if id == "" {
		return ItemID{}, errors.New("item ID cannot be empty")
	}
	if !isValidUUID(id) {
		return ItemID{}, errors.New("item ID must be a valid UUID")
	}
	return ItemID{value: id}, nil
}

func (id ItemID) String() string        { return id.value }
func (id ItemID) Equals(o ItemID) bool  { return id.value == o.value }
func (id ItemID) IsZero() bool          { return id.value == "" }

// NodeID is a value object identifying one link in a user's chain
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	if !isValidUUID(id) {
		return NodeID{}, errors.New("node ID must be a valid UUID")
	}
	return NodeID{value: id}, nil
}

func (id NodeID) String() string       { return id.value }
func (id NodeID) Equals(o NodeID) bool { return id.value == o.value }
func (id NodeID) IsZero() bool         { return id.value == "" }

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NodeID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// TrackID is a value object identifying one weekly track
type TrackID struct {
	value string
}

// NewTrackID creates a new random TrackID
func NewTrackID() TrackID {
	return TrackID{value: uuid.New().String()}
}

// NewTrackIDFromString creates a TrackID from an existing string
func NewTrackIDFromString(id string) (TrackID, error) {
	if id == "" {
		return TrackID{}, errors.New("track ID cannot be empty")
	}
	if !isValidUUID(id) {
		return TrackID{}, errors.New("track ID must be a valid UUID")
	}
	return TrackID{value: id}, nil
}

func (id TrackID) String() string        { return id.value }
func (id TrackID) Equals(o TrackID) bool { return id.value == o.value }
func (id TrackID) IsZero() bool          { return id.value == "" }

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
