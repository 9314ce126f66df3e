package entities

import (
	"time"

	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// Node is one link in a user's personal chain. Every node references the
// item it was created from and the user's immediately preceding node,
// regardless of week boundaries: the chain is global per user, while track
// membership is a separate week-scoped grouping of the same nodes.
type Node struct {
	id             valueobjects.NodeID
	userID         string
	itemID         valueobjects.ItemID
	previousNodeID *valueobjects.NodeID
	recapSentence  string
	weekID         valueobjects.WeekID
	createdAt      time.Time
}

// NewNode creates a new node linked to the user's previous node.
// previousNodeID is nil for the first node a user ever creates.
func NewNode(
	userID string,
	itemID valueobjects.ItemID,
	previousNodeID *valueobjects.NodeID,
	recapSentence string,
	weekID valueobjects.WeekID,
) (*Node, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if itemID.IsZero() {
		return nil, pkgerrors.NewValidationError("itemID cannot be empty")
	}
	if weekID.IsZero() {
		return nil, pkgerrors.NewValidationError("weekID cannot be empty")
	}

	return &Node{
		id:             valueobjects.NewNodeID(),
		userID:         userID,
		itemID:         itemID,
		previousNodeID: previousNodeID,
		recapSentence:  recapSentence,
		weekID:         weekID,
		createdAt:      time.Now(),
	}, nil
}

// ReconstructNode rebuilds a node from repository data with its original
// timestamp preserved
func ReconstructNode(
	id valueobjects.NodeID,
	userID string,
	itemID valueobjects.ItemID,
	previousNodeID *valueobjects.NodeID,
	recapSentence string,
	weekID valueobjects.WeekID,
	createdAt time.Time,
) (*Node, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if itemID.IsZero() {
		return nil, pkgerrors.NewValidationError("itemID cannot be empty")
	}

	return &Node{
		id:             id,
		userID:         userID,
		itemID:         itemID,
		previousNodeID: previousNodeID,
		recapSentence:  recapSentence,
		weekID:         weekID,
		createdAt:      createdAt,
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// UserID returns the owner's ID
func (n *Node) UserID() string {
	return n.userID
}

// ItemID returns the content item this node was created from
func (n *Node) ItemID() valueobjects.ItemID {
	return n.itemID
}

// PreviousNodeID returns the preceding node in the user's chain, or nil for
// the user's very first node
func (n *Node) PreviousNodeID() *valueobjects.NodeID {
	return n.previousNodeID
}

// RecapSentence returns the narrative fragment generated for this node
func (n *Node) RecapSentence() string {
	return n.recapSentence
}

// WeekID returns the week identifier current at creation time
func (n *Node) WeekID() valueobjects.WeekID {
	return n.weekID
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}
