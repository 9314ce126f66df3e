package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	domainconfig "github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	"github.com/hoangngo-sudo/the-morytale/pkg/auth"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"

	"github.com/go-chi/chi/v5"
)

// NodeHandler handles node retrieval HTTP requests
type NodeHandler struct {
	nodes  ports.NodeRepository
	cfg    *domainconfig.DomainConfig
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	nodes ports.NodeRepository,
	cfg *domainconfig.DomainConfig,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	if cfg == nil {
		cfg = domainconfig.DefaultDomainConfig()
	}
	return &NodeHandler{
		nodes:  nodes,
		cfg:    cfg,
		errors: errorHandler,
		logger: logger,
	}
}

// ListNodes handles GET /nodes. Returns the caller's chain, newest first.
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	limit := h.cfg.NodeListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("limit must be a positive integer"))
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	nodes, err := h.nodes.GetByUserID(r.Context(), userCtx.UserID, limit)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	responses := make([]NodeResponse, 0, len(nodes))
	for _, node := range nodes {
		responses = append(responses, newNodeResponse(node))
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"nodes": responses,
		"count": len(responses),
	})
}

// GetNode handles GET /nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	nodeID, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	node, err := h.nodes.GetByID(r.Context(), nodeID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if node.UserID() != userCtx.UserID {
		h.errors.Handle(w, r, pkgerrors.NewForbiddenError("node belongs to another user"))
		return
	}

	h.respondJSON(w, http.StatusOK, newNodeResponse(node))
}

func (h *NodeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
