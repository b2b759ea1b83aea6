package handlers

import (
	"context"
	"net/http"

	"github.com/coursepath/backend/internal/models"
	"github.com/coursepath/backend/internal/player"
	"github.com/coursepath/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps learner progress writes
type ProgressService interface {
	// SaveContentProgress stores the progress of a content block
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	// "contentID" is the ID of the content block.
	// "req" is the progress to store.
	//
	// Returns the progress result and an error if any.
	SaveContentProgress(ctx context.Context, slug string, userID, lessonID, contentID int, req models.ContentProgressRequest) (*models.ProgressResult, error)
	// SubmitLessonQuiz grades and stores a lesson quiz attempt
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	// "req" holds the chosen options.
	//
	// Returns the graded result and an error if any.
	SubmitLessonQuiz(ctx context.Context, slug string, userID, lessonID int, req models.SubmitQuizRequest) (*models.QuizResult, error)
	// SubmitUnitQuiz grades and stores a unit quiz attempt
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "unitID" is the ID of the unit.
	// "req" holds the chosen options.
	//
	// Returns the graded result and an error if any.
	SubmitUnitQuiz(ctx context.Context, slug string, userID, unitID int, req models.SubmitQuizRequest) (*models.QuizResult, error)
	// ClaimUnitXP rewards a complete unit
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "unitID" is the ID of the unit.
	//
	// Returns the progress result and an error if any.
	ClaimUnitXP(ctx context.Context, slug string, userID, unitID int) (*models.ProgressResult, error)
	// ClaimUnitContentXP rewards a complete unit-content group
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "group" is the name of the group.
	//
	// Returns the progress result and an error if any.
	ClaimUnitContentXP(ctx context.Context, slug string, userID int, group string) (*models.ProgressResult, error)
}

// SessionPatcher is the interface that wraps session updates following a write
type SessionPatcher interface {
	// Patch applies events to a session; failures are logged and yield nil
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "id" is the ID of the session, empty when the request has none.
	// "events" are the transitions to apply.
	//
	// Returns the new state or nil.
	Patch(ctx context.Context, userID int, id string, events ...player.Event) *player.State
	// Optimistic applies event before commit runs and restores the session when commit fails
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "id" is the ID of the session, empty when the request has none.
	// "event" is the transition expected to follow the write, nil for none.
	// "commit" performs the write.
	//
	// Returns the session state or nil, and the error of commit.
	Optimistic(ctx context.Context, userID int, id string, event player.Event, commit func(ctx context.Context) error) (*player.State, error)
}

// WriteResponse is the body returned by every progress write
type WriteResponse struct {
	Result  any           `json:"result"`
	Session *player.State `json:"session,omitempty"`
}

// ProgressHandler handles HTTP requests for learner progress writes
type ProgressHandler struct {
	BaseHandler
	service  ProgressService
	sessions SessionPatcher
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, sessions SessionPatcher, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:     svc,
		sessions:    sessions,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/courses/{slug}/lessons/{id}/content/{contentId}/progress", h.SaveContentProgress)
		r.Post("/courses/{slug}/lessons/{id}/quiz/attempts", h.SubmitLessonQuiz)
		r.Post("/courses/{slug}/units/{id}/quiz/attempts", h.SubmitUnitQuiz)
		r.Post("/courses/{slug}/units/{id}/claim", h.ClaimUnitXP)
		r.Post("/courses/{slug}/unit-content/{group}/claim", h.ClaimUnitContentXP)
	})
}

// SaveContentProgress handles POST /courses/{slug}/lessons/{id}/content/{contentId}/progress
// @Summary Save content progress
// @Description Store watch progress or completion of a content block. The first completion of a theory or example block awards XP and may complete the lesson.
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param id path int true "Lesson ID"
// @Param contentId path int true "Content block ID"
// @Param X-Session-ID header string false "Lesson player session to update"
// @Param request body models.ContentProgressRequest true "Progress"
// @Success 200 {object} WriteResponse "Progress result"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Lesson or block not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/lessons/{id}/content/{contentId}/progress [post]
func (h *ProgressHandler) SaveContentProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	lessonID, ok := h.intParam(w, r, "id")
	if !ok {
		return
	}
	contentID, ok := h.intParam(w, r, "contentId")
	if !ok {
		return
	}

	var req models.ContentProgressRequest
	if !h.decode(w, r, &req) {
		return
	}

	// The step is known before the write, so the session shows it at once
	var event player.Event
	if req.Completed && req.Step != "" {
		if step, err := player.ParseStep(req.Step); err == nil {
			event = player.MarkStepComplete{LessonID: lessonID, Step: step}
		}
	}

	sessionID := r.Header.Get(SessionHeader)
	var result *models.ProgressResult
	state, err := h.sessions.Optimistic(r.Context(), userID, sessionID, event, func(ctx context.Context) error {
		var err error
		result, err = h.service.SaveContentProgress(ctx, slug, userID, lessonID, contentID, req)
		return err
	})
	if err != nil {
		h.respondWriteError(w, r, "failed to save progress", err)
		return
	}

	h.respondWrite(w, r, userID, sessionID, state, result, services.FollowUpEvents(lessonID, result))
}

// SubmitLessonQuiz handles POST /courses/{slug}/lessons/{id}/quiz/attempts
// @Summary Submit a lesson quiz
// @Description Grade a lesson quiz attempt. The first pass awards XP and may complete the lesson.
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param id path int true "Lesson ID"
// @Param X-Session-ID header string false "Lesson player session to update"
// @Param request body models.SubmitQuizRequest true "Answers"
// @Success 200 {object} WriteResponse "Quiz result"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Lesson quiz not found"
// @Failure 422 {object} map[string]string "Answers do not belong to the quiz"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/lessons/{id}/quiz/attempts [post]
func (h *ProgressHandler) SubmitLessonQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.intParam(w, r, "id")
	if !ok {
		return
	}

	var req models.SubmitQuizRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.SubmitLessonQuiz(r.Context(), chi.URLParam(r, "slug"), userID, lessonID, req)
	if err != nil {
		h.respondWriteError(w, r, "failed to submit quiz", err)
		return
	}

	h.respondWrite(w, r, userID, r.Header.Get(SessionHeader), nil, result, services.FollowUpEvents(lessonID, &result.ProgressResult))
}

// SubmitUnitQuiz handles POST /courses/{slug}/units/{id}/quiz/attempts
// @Summary Submit a unit quiz
// @Description Grade a unit quiz attempt. A pass updates course progress and rewards a completed unit.
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param id path int true "Unit ID"
// @Param X-Session-ID header string false "Lesson player session to update"
// @Param request body models.SubmitQuizRequest true "Answers"
// @Success 200 {object} WriteResponse "Quiz result"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Unit quiz not found"
// @Failure 422 {object} map[string]string "Answers do not belong to the quiz"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/units/{id}/quiz/attempts [post]
func (h *ProgressHandler) SubmitUnitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	unitID, ok := h.intParam(w, r, "id")
	if !ok {
		return
	}

	var req models.SubmitQuizRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.SubmitUnitQuiz(r.Context(), chi.URLParam(r, "slug"), userID, unitID, req)
	if err != nil {
		h.respondWriteError(w, r, "failed to submit quiz", err)
		return
	}

	h.respondWrite(w, r, userID, r.Header.Get(SessionHeader), nil, result, services.FollowUpEvents(0, &result.ProgressResult))
}

// ClaimUnitXP handles POST /courses/{slug}/units/{id}/claim
// @Summary Claim unit XP
// @Description Award the completion reward of a complete unit once
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param id path int true "Unit ID"
// @Param X-Session-ID header string false "Lesson player session to update"
// @Success 200 {object} WriteResponse "Claim result"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Unit not found"
// @Failure 409 {object} map[string]string "Already claimed"
// @Failure 422 {object} map[string]string "Unit not complete"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/units/{id}/claim [post]
func (h *ProgressHandler) ClaimUnitXP(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	unitID, ok := h.intParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.ClaimUnitXP(r.Context(), chi.URLParam(r, "slug"), userID, unitID)
	if err != nil {
		h.respondWriteError(w, r, "failed to claim unit reward", err)
		return
	}

	h.respondWrite(w, r, userID, r.Header.Get(SessionHeader), nil, result, services.FollowUpEvents(0, result))
}

// ClaimUnitContentXP handles POST /courses/{slug}/unit-content/{group}/claim
// @Summary Claim unit content XP
// @Description Award the reward of a unit-content group once all of its units are complete
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param group path string true "Unit content group"
// @Param X-Session-ID header string false "Lesson player session to update"
// @Success 200 {object} WriteResponse "Claim result"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 409 {object} map[string]string "Already claimed"
// @Failure 422 {object} map[string]string "Group not complete"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/unit-content/{group}/claim [post]
func (h *ProgressHandler) ClaimUnitContentXP(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	group := chi.URLParam(r, "group")
	if group == "" {
		h.RespondError(w, http.StatusBadRequest, "group is required")
		return
	}

	result, err := h.service.ClaimUnitContentXP(r.Context(), chi.URLParam(r, "slug"), userID, group)
	if err != nil {
		h.respondWriteError(w, r, "failed to claim unit content reward", err)
		return
	}

	h.respondWrite(w, r, userID, r.Header.Get(SessionHeader), nil, result, services.FollowUpEvents(0, result))
}

// respondWrite applies the follow-up events to the session and sends the result with the latest state
func (h *ProgressHandler) respondWrite(w http.ResponseWriter, r *http.Request, userID int, sessionID string, state *player.State, result any, events []player.Event) {
	if patched := h.sessions.Patch(r.Context(), userID, sessionID, events...); patched != nil {
		state = patched
	}
	h.RespondJSON(w, http.StatusOK, WriteResponse{Result: result, Session: state})
}
