package handlers

import (
	"time"

	"github.com/hoangngo-sudo/the-morytale/domain/core/aggregates"
	"github.com/hoangngo-sudo/the-morytale/domain/core/entities"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
)

// ItemResponse is the wire representation of a content item
type ItemResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Text        string `json:"text,omitempty"`
	ContentURL  string `json:"contentUrl,omitempty"`
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// NodeResponse is the wire representation of a chain node
type NodeResponse struct {
	ID             string `json:"id"`
	ItemID         string `json:"itemId"`
	PreviousNodeID string `json:"previousNodeId,omitempty"`
	RecapSentence  string `json:"recapSentence,omitempty"`
	WeekID         string `json:"weekId"`
	CreatedAt      string `json:"createdAt"`
}

// TrackResponse is the wire representation of a track
type TrackResponse struct {
	ID                  string   `json:"id"`
	WeekID              string   `json:"weekId"`
	Status              string   `json:"status"`
	NodeIDs             []string `json:"nodeIds"`
	NodeCount           int      `json:"nodeCount"`
	Story               string   `json:"story,omitempty"`
	CommunityReflection string   `json:"communityReflection,omitempty"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

// SubmitResponse is returned after a successful submission
type SubmitResponse struct {
	Item      ItemResponse  `json:"item"`
	Node      NodeResponse  `json:"node"`
	Track     TrackResponse `json:"track"`
	Remaining int           `json:"remaining"`
}

func newItemResponse(item *entities.ContentItem) ItemResponse {
	return ItemResponse{
		ID:          item.ID().String(),
		Kind:        string(item.Content().Kind()),
		Text:        item.Content().Text(),
		ContentURL:  item.Content().ContentURL(),
		Caption:     item.Content().Caption(),
		Description: item.Description(),
		CreatedAt:   formatTime(item.CreatedAt()),
	}
}

func newNodeResponse(node *entities.Node) NodeResponse {
	resp := NodeResponse{
		ID:            node.ID().String(),
		ItemID:        node.ItemID().String(),
		RecapSentence: node.RecapSentence(),
		WeekID:        node.WeekID().String(),
		CreatedAt:     formatTime(node.CreatedAt()),
	}
	if prev := node.PreviousNodeID(); prev != nil {
		resp.PreviousNodeID = prev.String()
	}
	return resp
}

func newTrackResponse(track *aggregates.Track) TrackResponse {
	return TrackResponse{
		ID:                  track.ID().String(),
		WeekID:              track.WeekID().String(),
		Status:              string(track.Status()),
		NodeIDs:             nodeIDStrings(track.NodeIDs()),
		NodeCount:           track.NodeCount(),
		Story:               track.Story(),
		CommunityReflection: track.CommunityReflection(),
		CreatedAt:           formatTime(track.CreatedAt()),
		UpdatedAt:           formatTime(track.UpdatedAt()),
	}
}

func nodeIDStrings(ids []valueobjects.NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
