package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/services"
	"github.com/hoangngo-sudo/the-morytale/domain/core/aggregates"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	"github.com/hoangngo-sudo/the-morytale/pkg/auth"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
	"github.com/hoangngo-sudo/the-morytale/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// TrackHandler handles track lifecycle HTTP requests
type TrackHandler struct {
	tracks *services.TrackService
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(tracks *services.TrackService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *TrackHandler {
	return &TrackHandler{
		tracks: tracks,
		errors: errorHandler,
		logger: logger,
	}
}

// updateTrackRequest is the request body for editing a track's story
type updateTrackRequest struct {
	Story string `json:"story" validate:"required"`
}

// storyResponse is the response body for the story view of a track
type storyResponse struct {
	Story               string `json:"story"`
	CommunityReflection string `json:"communityReflection,omitempty"`
	Status              string `json:"status"`
}

// GetCurrent handles GET /tracks/current. Resolving the current track
// runs the expiry sweep, so a stale week gets concluded here before the
// fresh track is returned.
func (h *TrackHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	track, err := h.tracks.GetActiveTrack(r.Context(), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, newTrackResponse(track))
}

// GetHistory handles GET /tracks/history
func (h *TrackHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	tracks, err := h.tracks.GetHistory(r.Context(), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	responses := make([]TrackResponse, 0, len(tracks))
	for _, track := range tracks {
		responses = append(responses, newTrackResponse(track))
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"tracks": responses,
		"count":  len(responses),
	})
}

// GetTrack handles GET /tracks/{trackID}
func (h *TrackHandler) GetTrack(w http.ResponseWriter, r *http.Request) {
	track, ok := h.loadOwnedTrack(w, r)
	if !ok {
		return
	}

	h.respondJSON(w, http.StatusOK, newTrackResponse(track))
}

// GetStory handles GET /tracks/{trackID}/story
func (h *TrackHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	track, ok := h.loadOwnedTrack(w, r)
	if !ok {
		return
	}

	story := track.Story()
	if story == "" {
		story = "Story not yet generated. Check back at the end of the week!"
	}

	h.respondJSON(w, http.StatusOK, storyResponse{
		Story:               story,
		CommunityReflection: track.CommunityReflection(),
		Status:              string(track.Status()),
	})
}

// UpdateTrack handles PUT /tracks/{trackID}
func (h *TrackHandler) UpdateTrack(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	trackID, err := valueobjects.NewTrackIDFromString(chi.URLParam(r, "trackID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var body updateTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(body); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	track, err := h.tracks.EditStory(r.Context(), trackID, userCtx.UserID, body.Story)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, newTrackResponse(track))
}

// ConcludeTrack handles POST /tracks/{trackID}/conclude
func (h *TrackHandler) ConcludeTrack(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	trackID, err := valueobjects.NewTrackIDFromString(chi.URLParam(r, "trackID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	track, err := h.tracks.ConcludeManually(r.Context(), trackID, userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, newTrackResponse(track))
}

func (h *TrackHandler) loadOwnedTrack(w http.ResponseWriter, r *http.Request) (*aggregates.Track, bool) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}

	trackID, err := valueobjects.NewTrackIDFromString(chi.URLParam(r, "trackID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}

	track, err := h.tracks.GetTrack(r.Context(), trackID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}
	if !track.IsOwnedBy(userCtx.UserID) {
		h.errors.Handle(w, r, pkgerrors.NewForbiddenError("track belongs to another user"))
		return nil, false
	}

	return track, true
}

func (h *TrackHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
