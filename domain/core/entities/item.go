package entities

import (
	"time"

	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// ContentItem is one immutable user submission: either a text note or an
// uploaded image, plus the description generated for it. Items are created
// once by the submission pipeline and never re-linked.
type ContentItem struct {
	id          valueobjects.ItemID
	userID      string
	content     valueobjects.ItemContent
	description string
	createdAt   time.Time
}

// NewContentItem creates a new item with validation
func NewContentItem(userID string, content valueobjects.ItemContent, description string) (*ContentItem, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}

	return &ContentItem{
		id:          valueobjects.NewItemID(),
		userID:      userID,
		content:     content,
		description: description,
		createdAt:   time.Now(),
	}, nil
}

// ReconstructContentItem rebuilds an item from repository data with its
// original timestamp preserved
func ReconstructContentItem(
	id valueobjects.ItemID,
	userID string,
	content valueobjects.ItemContent,
	description string,
	createdAt time.Time,
) (*ContentItem, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}

	return &ContentItem{
		id:          id,
		userID:      userID,
		content:     content,
		description: description,
		createdAt:   createdAt,
	}, nil
}

// ID returns the item's unique identifier
func (i *ContentItem) ID() valueobjects.ItemID {
	return i.id
}

// UserID returns the owner's ID
func (i *ContentItem) UserID() string {
	return i.userID
}

// Content returns the submitted content
func (i *ContentItem) Content() valueobjects.ItemContent {
	return i.content
}

// Description returns the generated description
func (i *ContentItem) Description() string {
	return i.description
}

// CreatedAt returns when the item was created
func (i *ContentItem) CreatedAt() time.Time {
	return i.createdAt
}
