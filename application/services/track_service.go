package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/domain/core/aggregates"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// TrackService owns the track lifecycle: the get-or-create-active protocol,
// the lazy expiry sweep, capacity auto-conclusion, and the manual conclude
// path. Expiry is discovered only when a user's active track is requested;
// there is no background timer.
type TrackService struct {
	tracks ports.TrackRepository
	engine *ConclusionEngine
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewTrackService creates a new track service
func NewTrackService(
	tracks ports.TrackRepository,
	engine *ConclusionEngine,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *TrackService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &TrackService{
		tracks: tracks,
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
}

// GetActiveTrack returns the user's unconcluded track for the current week,
// creating one when none exists. Any of the user's unconcluded tracks that
// outlived the maximum age are concluded first, so read paths also advance
// the lifecycle.
func (s *TrackService) GetActiveTrack(ctx context.Context, userID string) (*aggregates.Track, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	s.concludeExpired(ctx, userID)

	week := valueobjects.WeekOf(time.Now())
	return s.tracks.FindOrCreateActive(ctx, userID, week)
}

// concludeExpired sweeps the user's unconcluded tracks and closes any that
// outlived the configured maximum age. Engine errors are swallowed by
// force-concluding, so one broken track can never wedge the sweep.
func (s *TrackService) concludeExpired(ctx context.Context, userID string) {
	stale, err := s.tracks.FindUnconcludedByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Expiry sweep failed to load tracks", zap.String("userID", userID), zap.Error(err))
		return
	}

	now := time.Now()
	for _, track := range stale {
		if !track.IsExpired(now, s.cfg.TrackMaxAge) {
			continue
		}

		s.logger.Info("Track expired, auto-concluding",
			zap.String("trackID", track.ID().String()),
			zap.String("userID", userID),
		)

		if err := s.engine.Conclude(ctx, track); err != nil {
			s.logger.Error("Failed to auto-conclude expired track, forcing",
				zap.String("trackID", track.ID().String()),
				zap.Error(err),
			)
			track.ForceConclude()
			if saveErr := s.tracks.Save(ctx, track); saveErr != nil {
				s.logger.Error("Failed to persist forced conclusion",
					zap.String("trackID", track.ID().String()),
					zap.Error(saveErr),
				)
			}
		}
	}
}

// CheckAutoConclusion concludes the track synchronously when it has reached
// node capacity. Returns true when a conclusion happened.
func (s *TrackService) CheckAutoConclusion(ctx context.Context, track *aggregates.Track) (bool, error) {
	if track.IsConcluded() || !track.IsAtCapacity(s.cfg.TrackNodeLimit) {
		return false, nil
	}

	s.logger.Info("Track reached node capacity, auto-concluding",
		zap.String("trackID", track.ID().String()),
		zap.Int("nodeCount", track.NodeCount()),
	)

	if err := s.engine.Conclude(ctx, track); err != nil {
		return false, err
	}
	return true, nil
}

// ConcludeManually closes a track at the owner's request. The track must
// exist, belong to the caller, still be active, and have accumulated either
// story text or at least one node.
func (s *TrackService) ConcludeManually(ctx context.Context, trackID valueobjects.TrackID, userID string) (*aggregates.Track, error) {
	track, err := s.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if !track.IsOwnedBy(userID) {
		return nil, pkgerrors.NewForbiddenError("not authorized to conclude this track")
	}
	if track.IsConcluded() {
		return nil, pkgerrors.NewConflictError("track already concluded")
	}
	if !track.HasContent() {
		return nil, pkgerrors.NewConflictError("cannot conclude an empty track")
	}

	if err := s.engine.Conclude(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

// GetTrack fetches a track by id
func (s *TrackService) GetTrack(ctx context.Context, trackID valueobjects.TrackID) (*aggregates.Track, error) {
	return s.tracks.GetByID(ctx, trackID)
}

// GetHistory returns the user's most recent tracks, newest first
func (s *TrackService) GetHistory(ctx context.Context, userID string) ([]*aggregates.Track, error) {
	return s.tracks.GetHistoryByUser(ctx, userID, s.cfg.TrackHistoryLimit)
}

// EditStory replaces a track's story text at the owner's request. Allowed
// even on concluded tracks.
func (s *TrackService) EditStory(ctx context.Context, trackID valueobjects.TrackID, userID, story string) (*aggregates.Track, error) {
	track, err := s.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if !track.IsOwnedBy(userID) {
		return nil, pkgerrors.NewForbiddenError("not authorized to update this track")
	}

	track.EditStory(story)
	if err := s.tracks.Save(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}
