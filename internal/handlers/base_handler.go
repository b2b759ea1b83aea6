package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/coursepath/backend/internal/auth/middleware"
	"github.com/coursepath/backend/internal/models"
	"github.com/coursepath/backend/internal/player"
	"github.com/coursepath/backend/internal/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// APIPrefix is where the handlers are mounted
const APIPrefix = "/api/v1"

// SessionHeader carries the optional lesson player session of a write
const SessionHeader = "X-Session-ID"

var validate = validator.New()

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// userID extracts the authenticated user and answers 401 when there is none
func (h *BaseHandler) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
		return 0, false
	}
	return userID, true
}

// intParam parses a positive integer URL parameter and answers 400 when it is not one
func (h *BaseHandler) intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		h.RespondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return v, true
}

// decode reads a JSON body into dst and validates it, answering 400 on failure
func (h *BaseHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.RespondError(w, http.StatusBadRequest, fmt.Sprintf("validation failed: %v", err))
		return false
	}
	return true
}

// respondPageError answers a failed page read. Learners who may not see the
// course are sent back to its landing page.
func (h *BaseHandler) respondPageError(w http.ResponseWriter, r *http.Request, slug string, err error) {
	switch {
	case errors.Is(err, models.ErrNotEnrolled), errors.Is(err, models.ErrAccessDenied):
		http.Redirect(w, r, player.CoursePath(slug), http.StatusFound)
	case errors.Is(err, models.ErrNotFound):
		h.RespondError(w, http.StatusNotFound, "not found")
	default:
		h.Logger.Error("failed to load page", zap.String("path", r.URL.Path), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to load page")
	}
}

// respondWriteError answers a failed write with a message the learner can act on
func (h *BaseHandler) respondWriteError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		h.RespondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrNotEnrolled), errors.Is(err, models.ErrAccessDenied):
		h.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrAlreadyClaimed):
		h.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sessions.ErrConflict):
		h.RespondError(w, http.StatusConflict, "session changed concurrently, retry")
	case errors.Is(err, models.ErrUnitIncomplete), errors.Is(err, models.ErrInvalidAnswers):
		h.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.Logger.Error(message, zap.String("path", r.URL.Path), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, message)
	}
}
