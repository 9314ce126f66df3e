package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/core/aggregates"
	"github.com/hoangngo-sudo/the-morytale/domain/core/entities"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	"github.com/hoangngo-sudo/the-morytale/domain/events"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// Fallback text substituted when the narrative generator is unavailable.
// Deterministic so a degraded week still reads coherently.
const (
	FallbackImageDescription = "An image captured in the moment."
	FallbackImageSegment     = "A moment was captured, but the words escape me."
	FallbackTextDescription  = "A note."
)

// SubmitRequest is one typed submission, tagged by kind. Image submissions
// carry either the raw binary or a pre-existing reference URL; text
// submissions carry the text itself.
type SubmitRequest struct {
	Kind      valueobjects.ContentKind
	Text      string
	Caption   string
	ImageData []byte
	Filename  string
	MediaType string
	ImageURL  string
}

// SubmitResult is the outcome of a successful submission
type SubmitResult struct {
	Item      *entities.ContentItem
	Node      *entities.Node
	Track     *aggregates.Track
	Remaining int
}

// SubmissionService runs the per-request pipeline: quota gate, validation,
// active-track resolution, upload and narrative generation (with fallbacks),
// item and node persistence, story extension, and the capacity check. The
// steps are sequential and not transactional; a failure partway leaves
// earlier writes in place, matching the upstream contract.
type SubmissionService struct {
	items     ports.ItemRepository
	nodes     ports.NodeRepository
	tracks    ports.TrackRepository
	store     ports.ObjectStore
	generator ports.StoryGenerator
	publisher ports.EventPublisher
	quota     *QuotaService
	trackSvc  *TrackService
	logger    *zap.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	items ports.ItemRepository,
	nodes ports.NodeRepository,
	tracks ports.TrackRepository,
	store ports.ObjectStore,
	generator ports.StoryGenerator,
	publisher ports.EventPublisher,
	quota *QuotaService,
	trackSvc *TrackService,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		items:     items,
		nodes:     nodes,
		tracks:    tracks,
		store:     store,
		generator: generator,
		publisher: publisher,
		quota:     quota,
		trackSvc:  trackSvc,
		logger:    logger,
	}
}

// Submit runs the full pipeline for one submission
func (s *SubmissionService) Submit(ctx context.Context, userID string, req SubmitRequest) (*SubmitResult, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	// Quota gate runs before any mutation
	status, err := s.quota.CheckDailyLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, pkgerrors.NewRateLimitError(s.quota.Limit(), "day").
			WithDetails(map[string]interface{}{"remaining": 0})
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	track, err := s.trackSvc.GetActiveTrack(ctx, userID)
	if err != nil {
		return nil, err
	}
	storySoFar := track.Story()

	var content valueobjects.ItemContent
	var description, storySegment string

	switch req.Kind {
	case valueobjects.KindImage:
		content, description, storySegment, err = s.handleImage(ctx, req, storySoFar)
	case valueobjects.KindText:
		content, description, storySegment, err = s.handleText(ctx, req, storySoFar)
	}
	if err != nil {
		return nil, err
	}

	item, err := entities.NewContentItem(userID, content, description)
	if err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}

	// Link the new node to the user's previous one, across week boundaries
	var previousID *valueobjects.NodeID
	previous, err := s.nodes.FindLatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		id := previous.ID()
		previousID = &id
	}

	week := valueobjects.WeekOf(time.Now())
	node, err := entities.NewNode(userID, item.ID(), previousID, storySegment, week)
	if err != nil {
		return nil, err
	}
	if err := s.nodes.Save(ctx, node); err != nil {
		return nil, err
	}

	if err := track.AppendNodeWithConfig(node.ID(), storySegment, s.trackSvc.cfg); err != nil {
		return nil, err
	}
	if err := s.tracks.Save(ctx, track); err != nil {
		return nil, err
	}

	s.logger.Info("Submission stored",
		zap.String("userID", userID),
		zap.String("itemID", item.ID().String()),
		zap.String("nodeID", node.ID().String()),
		zap.Int("trackNodes", track.NodeCount()),
	)

	if _, err := s.trackSvc.CheckAutoConclusion(ctx, track); err != nil {
		// The submission itself succeeded; the next getActiveTrack sweep
		// picks the track up again.
		s.logger.Error("Auto-conclusion failed",
			zap.String("trackID", track.ID().String()),
			zap.Error(err),
		)
	}

	s.publish(ctx,
		events.NewItemCreated(item.ID(), userID, content.Kind(), item.CreatedAt()),
		events.NewNodeLinked(node.ID(), previousID, userID, week, node.CreatedAt()),
	)

	return &SubmitResult{
		Item:      item,
		Node:      node,
		Track:     track,
		Remaining: status.Remaining - 1,
	}, nil
}

// handleImage uploads the binary (hard failure) and generates the narrative
// fragment (soft failure with fallback). A submission referencing an
// already-hosted URL skips both the upload and the generator.
func (s *SubmissionService) handleImage(ctx context.Context, req SubmitRequest, storySoFar string) (valueobjects.ItemContent, string, string, error) {
	if len(req.ImageData) == 0 {
		content, err := valueobjects.NewImageContent(req.ImageURL, req.Caption)
		return content, "", "", err
	}

	url, err := s.store.Upload(ctx, req.ImageData, req.MediaType)
	if err != nil {
		return valueobjects.ItemContent{}, "", "", pkgerrors.NewExternalError("object storage", err)
	}

	content, err := valueobjects.NewImageContent(url, req.Caption)
	if err != nil {
		return valueobjects.ItemContent{}, "", "", err
	}

	description, segment := FallbackImageDescription, FallbackImageSegment
	result, err := s.generator.StoryFromImage(ctx, req.ImageData, req.Filename, storySoFar, req.MediaType)
	if err != nil {
		s.logger.Warn("Image story generation failed, using fallback", zap.Error(err))
	} else {
		description, segment = result.Description, result.StorySegment
	}

	return content, description, segment, nil
}

// handleText generates the narrative fragment for a text submission. On
// generator failure the raw text itself becomes the story segment.
func (s *SubmissionService) handleText(ctx context.Context, req SubmitRequest, storySoFar string) (valueobjects.ItemContent, string, string, error) {
	content, err := valueobjects.NewTextContent(req.Text, req.Caption)
	if err != nil {
		return valueobjects.ItemContent{}, "", "", err
	}

	description, segment := FallbackTextDescription, content.Text()
	result, err := s.generator.StoryFromText(ctx, content.Text(), storySoFar)
	if err != nil {
		s.logger.Warn("Text story generation failed, using fallback", zap.Error(err))
	} else {
		description, segment = result.Description, result.StorySegment
	}

	return content, description, segment, nil
}

// validateRequest checks the kind tag and kind-specific required fields
// before any mutation happens
func validateRequest(req SubmitRequest) error {
	switch req.Kind {
	case valueobjects.KindText:
		if strings.TrimSpace(req.Text) == "" {
			return pkgerrors.NewValidationError("text content is required for text items")
		}
	case valueobjects.KindImage:
		if len(req.ImageData) == 0 && strings.TrimSpace(req.ImageURL) == "" {
			return pkgerrors.NewValidationError("image file or URL is required for image items")
		}
		if len(req.ImageData) > 0 && !strings.HasPrefix(req.MediaType, "image/") {
			return pkgerrors.NewValidationError("only image files are accepted")
		}
	default:
		return pkgerrors.NewValidationError(`content kind must be "text" or "image"`)
	}
	return nil
}

// publish sends domain events best effort; failures are logged, never
// surfaced to the submitter
func (s *SubmissionService) publish(ctx context.Context, evts ...events.DomainEvent) {
	if err := s.publisher.PublishBatch(ctx, evts); err != nil {
		s.logger.Warn("Failed to publish submission events", zap.Error(err))
	}
}
