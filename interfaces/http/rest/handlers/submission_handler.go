package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/application/services"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	"github.com/hoangngo-sudo/the-morytale/pkg/auth"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
	"github.com/hoangngo-sudo/the-morytale/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps image uploads at 10 MiB
const maxUploadBytes = 10 << 20

// SubmissionHandler handles item submission and retrieval
type SubmissionHandler struct {
	submissions *services.SubmissionService
	items       ports.ItemRepository
	errors      *pkgerrors.ErrorHandler
	logger      *zap.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(
	submissions *services.SubmissionService,
	items ports.ItemRepository,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		items:       items,
		errors:      errorHandler,
		logger:      logger,
	}
}

// createItemRequest is the JSON request body for text and URL-only image
// submissions
type createItemRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=text image"`
	Text       string `json:"text,omitempty"`
	Caption    string `json:"caption,omitempty"`
	ContentURL string `json:"contentUrl,omitempty" validate:"omitempty,url"`
}

// CreateItem handles POST /items. Image uploads arrive as multipart form
// data; text and URL-only image submissions arrive as JSON.
func (h *SubmissionHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req services.SubmitRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		req, err = h.parseMultipart(r)
	} else {
		req, err = h.parseJSON(r)
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.submissions.Submit(r.Context(), userCtx.UserID, req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, SubmitResponse{
		Item:      newItemResponse(result.Item),
		Node:      newNodeResponse(result.Node),
		Track:     newTrackResponse(result.Track),
		Remaining: result.Remaining,
	})
}

// GetItem handles GET /items/{itemID}
func (h *SubmissionHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	itemID, err := valueobjects.NewItemIDFromString(chi.URLParam(r, "itemID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	item, err := h.items.GetByID(r.Context(), itemID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if item.UserID() != userCtx.UserID {
		h.errors.Handle(w, r, pkgerrors.NewForbiddenError("item belongs to another user"))
		return
	}

	h.respondJSON(w, http.StatusOK, newItemResponse(item))
}

func (h *SubmissionHandler) parseJSON(r *http.Request) (services.SubmitRequest, error) {
	var body createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return services.SubmitRequest{}, pkgerrors.NewValidationError("invalid request body: " + err.Error())
	}
	if err := utils.ValidateStruct(body); err != nil {
		return services.SubmitRequest{}, pkgerrors.NewValidationError(err.Error())
	}

	kind, err := valueobjects.ParseContentKind(body.Kind)
	if err != nil {
		return services.SubmitRequest{}, err
	}

	return services.SubmitRequest{
		Kind:     kind,
		Text:     body.Text,
		Caption:  body.Caption,
		ImageURL: body.ContentURL,
	}, nil
}

// parseMultipart streams the form parts. The first file part is the
// image; later file parts are skipped.
func (h *SubmissionHandler) parseMultipart(r *http.Request) (services.SubmitRequest, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes+(1<<20))

	reader, err := r.MultipartReader()
	if err != nil {
		return services.SubmitRequest{}, pkgerrors.NewValidationError("invalid multipart body: " + err.Error())
	}

	req := services.SubmitRequest{Kind: valueobjects.KindImage}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return services.SubmitRequest{}, pkgerrors.NewValidationError("invalid multipart body: " + err.Error())
		}

		if part.FileName() != "" {
			if req.ImageData == nil {
				data, err := io.ReadAll(io.LimitReader(part, maxUploadBytes+1))
				if err != nil {
					part.Close()
					return services.SubmitRequest{}, pkgerrors.NewValidationError("failed to read upload: " + err.Error())
				}
				if len(data) > maxUploadBytes {
					part.Close()
					return services.SubmitRequest{}, pkgerrors.NewValidationError("uploaded file exceeds the size limit")
				}
				req.ImageData = data
				req.Filename = part.FileName()
				req.MediaType = part.Header.Get("Content-Type")
			}
			part.Close()
			continue
		}

		value, err := io.ReadAll(io.LimitReader(part, 64<<10))
		part.Close()
		if err != nil {
			return services.SubmitRequest{}, pkgerrors.NewValidationError("failed to read form field: " + err.Error())
		}

		switch part.FormName() {
		case "kind":
			kind, err := valueobjects.ParseContentKind(string(value))
			if err != nil {
				return services.SubmitRequest{}, err
			}
			req.Kind = kind
		case "text":
			req.Text = string(value)
		case "caption":
			req.Caption = string(value)
		case "contentUrl":
			req.ImageURL = string(value)
		}
	}

	return req, nil
}

func (h *SubmissionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
