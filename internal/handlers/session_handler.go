package handlers

import (
	"context"
	"net/http"

	"github.com/coursepath/backend/internal/player"
	"github.com/coursepath/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionService is the interface that wraps lesson player session operations
type SessionService interface {
	// Mount creates a session from a fresh plan
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	//
	// Returns the session ID with its plan and an error if any.
	Mount(ctx context.Context, slug string, userID int) (*services.MountedSession, error)
	// Get retrieves a session owned by the user
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "id" is the ID of the session.
	//
	// Returns the state and an error if any.
	Get(ctx context.Context, userID int, id string) (player.State, error)
	// SetCurrent points the session at a lesson step or unit quiz
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "id" is the ID of the session.
	// "req" is the requested lesson and step.
	//
	// Returns the new state and an error if any.
	SetCurrent(ctx context.Context, userID int, id string, req services.SetCurrentRequest) (player.State, error)
	// UpdateProgress merges a progress patch into the session
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "id" is the ID of the session.
	// "patch" holds the server-provided values.
	//
	// Returns the new state and an error if any.
	UpdateProgress(ctx context.Context, userID int, id string, patch player.UpdateProgress) (player.State, error)
	// Unmount deletes a session
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "id" is the ID of the session.
	//
	// Returns an error if any.
	Unmount(ctx context.Context, userID int, id string) error
}

// SessionHandler handles HTTP requests for lesson player sessions
type SessionHandler struct {
	BaseHandler
	service SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/courses/{slug}/learn/sessions", h.Mount)
		r.Get("/sessions/{sid}", h.Get)
		r.Delete("/sessions/{sid}", h.Unmount)
		r.Put("/sessions/{sid}/current", h.SetCurrent)
		r.Patch("/sessions/{sid}/progress", h.UpdateProgress)
	})
}

// Mount handles POST /courses/{slug}/learn/sessions
// @Summary Mount a session
// @Description Build the lesson player plan and store its state as a new session
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Success 201 {object} services.MountedSession "Session"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/learn/sessions [post]
func (h *SessionHandler) Mount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	mounted, err := h.service.Mount(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		h.respondWriteError(w, r, "failed to mount session", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, mounted)
}

// Get handles GET /sessions/{sid}
// @Summary Get a session
// @Description Get the current state of a session
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param sid path string true "Session ID"
// @Success 200 {object} player.State "Session state"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Session of another user"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/{sid} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	state, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "sid"))
	if err != nil {
		h.respondWriteError(w, r, "failed to get session", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, state)
}

// SetCurrent handles PUT /sessions/{sid}/current
// @Summary Set the current lesson
// @Description Point the session at a lesson step or a unit quiz
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sid path string true "Session ID"
// @Param request body services.SetCurrentRequest true "Lesson and step"
// @Success 200 {object} player.State "Session state"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Session of another user"
// @Failure 404 {object} map[string]string "Session or lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/{sid}/current [put]
func (h *SessionHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req services.SetCurrentRequest
	if !h.decode(w, r, &req) {
		return
	}

	state, err := h.service.SetCurrent(r.Context(), userID, chi.URLParam(r, "sid"), req)
	if err != nil {
		h.respondWriteError(w, r, "failed to set current lesson", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, state)
}

// UpdateProgress handles PATCH /sessions/{sid}/progress
// @Summary Update session progress
// @Description Merge server-provided progress values into the session
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sid path string true "Session ID"
// @Param request body player.UpdateProgress true "Progress values"
// @Success 200 {object} player.State "Session state"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Session of another user"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/{sid}/progress [patch]
func (h *SessionHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var patch player.UpdateProgress
	if !h.decode(w, r, &patch) {
		return
	}

	state, err := h.service.UpdateProgress(r.Context(), userID, chi.URLParam(r, "sid"), patch)
	if err != nil {
		h.respondWriteError(w, r, "failed to update session progress", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, state)
}

// Unmount handles DELETE /sessions/{sid}
// @Summary Unmount a session
// @Description Delete a session
// @Tags sessions
// @Security ApiKeyAuth
// @Param sid path string true "Session ID"
// @Success 204 "Deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Session of another user"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sessions/{sid} [delete]
func (h *SessionHandler) Unmount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Unmount(r.Context(), userID, chi.URLParam(r, "sid")); err != nil {
		h.respondWriteError(w, r, "failed to unmount session", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
