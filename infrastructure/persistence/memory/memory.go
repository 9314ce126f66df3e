// Package memory provides in-memory repository implementations used by
// tests and local development. Semantics mirror the DynamoDB
// implementations, including ordering guarantees.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/core/aggregates"
	"github.com/hoangngo-sudo/the-morytale/domain/core/entities"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

var (
	_ ports.ItemRepository  = (*ItemRepository)(nil)
	_ ports.NodeRepository  = (*NodeRepository)(nil)
	_ ports.TrackRepository = (*TrackRepository)(nil)
)

// ItemRepository is an in-memory ports.ItemRepository.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[string]*entities.ContentItem
}

// NewItemRepository creates an empty in-memory item repository
func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[string]*entities.ContentItem)}
}

func (r *ItemRepository) Save(ctx context.Context, item *entities.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID().String()] = item
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id valueobjects.ItemID) (*entities.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("item")
	}
	return item, nil
}

func (r *ItemRepository) CountCreatedBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, item := range r.items {
		if item.UserID() != userID {
			continue
		}
		created := item.CreatedAt()
		if !created.Before(from) && created.Before(to) {
			count++
		}
	}
	return count, nil
}

// NodeRepository is an in-memory ports.NodeRepository.
type NodeRepository struct {
	mu    sync.RWMutex
	nodes map[string]*entities.Node
}

// NewNodeRepository creates an empty in-memory node repository
func NewNodeRepository() *NodeRepository {
	return &NodeRepository{nodes: make(map[string]*entities.Node)}
}

func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[node.ID().String()] = node
	return nil
}

func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	node, ok := r.nodes[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

func (r *NodeRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*entities.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nodes := []*entities.Node{}
	for _, node := range r.nodes {
		if node.UserID() == userID {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].CreatedAt().After(nodes[j].CreatedAt())
	})
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes, nil
}

func (r *NodeRepository) FindLatestByUser(ctx context.Context, userID string) (*entities.Node, error) {
	nodes, err := r.GetByUserID(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// TrackRepository is an in-memory ports.TrackRepository.
type TrackRepository struct {
	mu     sync.RWMutex
	tracks map[string]*aggregates.Track
}

// NewTrackRepository creates an empty in-memory track repository
func NewTrackRepository() *TrackRepository {
	return &TrackRepository{tracks: make(map[string]*aggregates.Track)}
}

func (r *TrackRepository) Save(ctx context.Context, track *aggregates.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks[track.ID().String()] = track
	return nil
}

func (r *TrackRepository) GetByID(ctx context.Context, id valueobjects.TrackID) (*aggregates.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	track, ok := r.tracks[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("track")
	}
	return track, nil
}

func (r *TrackRepository) FindActive(ctx context.Context, userID string, week valueobjects.WeekID) (*aggregates.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *aggregates.Track
	for _, track := range r.tracks {
		if track.UserID() != userID || track.IsConcluded() || !track.WeekID().Equals(week) {
			continue
		}
		if found == nil || track.CreatedAt().Before(found.CreatedAt()) {
			found = track
		}
	}
	return found, nil
}

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
	return track, nil
}

func (r *TrackRepository) FindUnconcludedByUser(ctx context.Context, userID string) ([]*aggregates.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tracks := []*aggregates.Track{}
	for _, track := range r.tracks {
		if track.UserID() == userID && !track.IsConcluded() {
			tracks = append(tracks, track)
		}
	}
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].CreatedAt().Before(tracks[j].CreatedAt())
	})
	return tracks, nil
}

func (r *TrackRepository) FindWeekStories(ctx context.Context, week valueobjects.WeekID, excludeUserID string, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	candidates := []*aggregates.Track{}
	for _, track := range r.tracks {
		if track.UserID() == excludeUserID || !track.WeekID().Equals(week) || track.Story() == "" {
			continue
		}
		candidates = append(candidates, track)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt().Before(candidates[j].CreatedAt())
	})
	stories := make([]string, 0, limit)
	for _, track := range candidates {
		stories = append(stories, track.Story())
		if len(stories) == limit {
			break
		}
	}
	return stories, nil
}

func (r *TrackRepository) GetHistoryByUser(ctx context.Context, userID string, limit int) ([]*aggregates.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tracks := []*aggregates.Track{}
	for _, track := range r.tracks {
		if track.UserID() == userID {
			tracks = append(tracks, track)
		}
	}
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].CreatedAt().After(tracks[j].CreatedAt())
	})
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}
