package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devfoliohq/boltgen/internal/core/llm"
	"github.com/devfoliohq/boltgen/internal/services"
)

// WorkspaceHandler owns the workspace lifecycle: creation from a first build
// prompt, reads, orchestrated user turns, and export.
type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
	turns      *services.TurnService
	logger     *zap.Logger
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService, turns *services.TurnService, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces, turns: turns, logger: logger}
}

type createWorkspaceRequest struct {
	Message string `json:"message"`
}

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req createWorkspaceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}

	ws, err := h.workspaces.Create(r.Context(), userID, req.Message)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	list, err := h.workspaces.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	ws, err := h.workspaces.Get(r.Context(), chi.URLParam(r, "workspaceID"), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

type postMessageRequest struct {
	Content string `json:"content"`
}

// PostMessage submits one user turn and blocks until it is fully processed:
// classified, answered by the matching backend, merged and debited.
func (h *WorkspaceHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req postMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}

	result, err := h.turns.HandleUserTurn(r.Context(), chi.URLParam(r, "workspaceID"), userID, req.Content)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *WorkspaceHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	url, err := h.workspaces.Export(r.Context(), chi.URLParam(r, "workspaceID"), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *WorkspaceHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message content is required", "")
	case errors.Is(err, services.ErrWorkspaceNotFound):
		writeError(w, http.StatusNotFound, "workspace not found", "")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not have access to this workspace", "")
	case errors.Is(err, services.ErrTurnInFlight):
		writeError(w, http.StatusConflict, "a turn is already being processed for this workspace", "")
	case errors.Is(err, services.ErrExportUnavailable):
		writeError(w, http.StatusServiceUnavailable, "workspace export is not configured", "")
	case llm.IsQuota(err):
		writeError(w, http.StatusTooManyRequests, "API quota exceeded. Please try again later.", err.Error())
	case llm.IsSafety(err):
		writeError(w, http.StatusBadRequest, "Request was blocked by content safety filters. Please rephrase your request.", err.Error())
	default:
		h.logger.Error("workspace request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "request failed", err.Error())
	}
}
