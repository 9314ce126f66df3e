package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/domain/core/aggregates"
)

// ConclusionEngine closes a track, enriching it with generated closing text
// when the generator cooperates. Generator failure is absorbed: a track
// always ends up concluded, with or without enrichment.
type ConclusionEngine struct {
	tracks    ports.TrackRepository
	generator ports.StoryGenerator
	publisher ports.EventPublisher
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewConclusionEngine creates a new conclusion engine
func NewConclusionEngine(
	tracks ports.TrackRepository,
	generator ports.StoryGenerator,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ConclusionEngine {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ConclusionEngine{
		tracks:    tracks,
		generator: generator,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Conclude transitions the track to CONCLUDED and persists it. When the
// track has accumulated story text, it gathers a comparison set of other
// users' stories from the same week and asks the generator for closing text
// and a community reflection; on any generator failure it logs and concludes
// without enrichment. The external service is never called for an empty
// story.
func (e *ConclusionEngine) Conclude(ctx context.Context, track *aggregates.Track) error {
	story := track.Story()

	if story == "" {
		// Nothing to synthesize
		if err := track.Conclude("", ""); err != nil {
			return err
		}
		return e.save(ctx, track)
	}

	comparison, err := e.tracks.FindWeekStories(ctx, track.WeekID(), track.UserID(), e.cfg.ConclusionCandidateLimit)
	if err != nil {
		e.logger.Warn("Failed to gather comparison stories, concluding without them",
			zap.String("trackID", track.ID().String()),
			zap.Error(err),
		)
		comparison = nil
	}
	if len(comparison) > e.cfg.ConclusionComparisonLimit {
		comparison = comparison[:e.cfg.ConclusionComparisonLimit]
	}

	closing, reflection := "", ""
	result, err := e.generator.GenerateConclusion(ctx, story, comparison)
	if err != nil {
		e.logger.Warn("Conclusion generation failed, concluding without it",
			zap.String("trackID", track.ID().String()),
			zap.Error(err),
		)
	} else {
		closing = result.Conclusion
		reflection = result.CommunityReflection
	}

	if err := track.Conclude(closing, reflection); err != nil {
		return err
	}

	return e.save(ctx, track)
}

func (e *ConclusionEngine) save(ctx context.Context, track *aggregates.Track) error {
	if err := e.tracks.Save(ctx, track); err != nil {
		return err
	}

	e.logger.Info("Track concluded",
		zap.String("trackID", track.ID().String()),
		zap.String("userID", track.UserID()),
		zap.String("weekID", track.WeekID().String()),
		zap.Int("nodeCount", track.NodeCount()),
	)

	// Event publication is best effort
	if events := track.GetUncommittedEvents(); len(events) > 0 {
		if err := e.publisher.PublishBatch(ctx, events); err != nil {
			e.logger.Warn("Failed to publish track events", zap.Error(err))
		}
		track.MarkEventsAsCommitted()
	}

	return nil
}
