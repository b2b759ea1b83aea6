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

// PlayerService is the interface that wraps the lesson player read operations
type PlayerService interface {
	// BuildPlan loads the lesson layout data and the initial session state
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	//
	// Returns the plan and an error if any.
	BuildPlan(ctx context.Context, slug string, userID int) (*services.LearnPlan, error)
	// LessonEntry decides where the bare lesson path leads
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the decision and an error if any.
	LessonEntry(ctx context.Context, slug string, userID, lessonID int) (player.Decision, error)
	// StepPage resolves and loads a lesson step page
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	// "step" is the requested step.
	//
	// Returns the page when the decision is Render, the decision, and an error if any.
	StepPage(ctx context.Context, slug string, userID, lessonID int, step player.Step) (*models.StepPage, player.Decision, error)
	// UnitQuizPage loads the unit quiz page
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "unitID" is the ID of the unit.
	//
	// Returns the page and an error if any.
	UnitQuizPage(ctx context.Context, slug string, userID, unitID int) (*models.UnitQuizPage, error)
	// ContinueURL is where "continue learning" leads
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	//
	// Returns the page path and an error if any.
	ContinueURL(ctx context.Context, slug string, userID int) (string, error)
	// StepCompletion reports which steps of a lesson the learner finished
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the status and an error if any.
	StepCompletion(ctx context.Context, slug string, userID, lessonID int) (models.StepCompletionStatus, error)
}

// PlayerHandler handles HTTP requests for lesson player pages
type PlayerHandler struct {
	BaseHandler
	service PlayerService
}

// NewPlayerHandler creates a new lesson player handler
func NewPlayerHandler(svc PlayerService, logger *zap.Logger) *PlayerHandler {
	return &PlayerHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all lesson player routes
func (h *PlayerHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/courses/{slug}/continue", h.GetContinueURL)
		r.Get("/courses/{slug}/learn/plan", h.GetPlan)
		r.Get("/courses/{slug}/learn/lesson/{id}", h.GetLesson)
		r.Get("/courses/{slug}/learn/lesson/{id}/unit-quiz", h.GetUnitQuiz)
		r.Get("/courses/{slug}/learn/lesson/{id}/steps/status", h.GetStepStatus)
		r.Get("/courses/{slug}/learn/lesson/{id}/{step}", h.GetStep)
	})
}

// GetContinueURL handles GET /courses/{slug}/continue
// @Summary Continue learning
// @Description Get the page of the next uncompleted lesson or unit quiz
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} map[string]string "Continue URL"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/continue [get]
func (h *PlayerHandler) GetContinueURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	url, err := h.service.ContinueURL(r.Context(), slug, userID)
	if err != nil {
		h.respondPageError(w, r, slug, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// GetPlan handles GET /courses/{slug}/learn/plan
// @Summary Get the lesson player plan
// @Description Get the course structure, sidebar and initial session state without creating a session
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} services.LearnPlan "Plan"
// @Failure 302 {string} string "Not enrolled, redirected to the course page"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/learn/plan [get]
func (h *PlayerHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	plan, err := h.service.BuildPlan(r.Context(), slug, userID)
	if err != nil {
		h.respondPageError(w, r, slug, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, plan)
}

// GetLesson handles GET /courses/{slug}/learn/lesson/{id}
// @Summary Enter a lesson
// @Description Redirect to the first available step of a lesson
// @Tags player
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param id path int true "Lesson ID"
// @Success 302 {string} string "Redirect to the first step"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found or without steps"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/learn/lesson/{id} [get]
func (h *PlayerHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	lessonID, ok := h.intParam(w, r, "id")
	if !ok {
		return
	}

	decision, err := h.service.LessonEntry(r.Context(), slug, userID, lessonID)
	if err != nil {
		h.respondPageError(w, r, slug, err)
		return
	}
	h.respondDecision(w, r, slug, lessonID, decision, nil)
}

// GetStep handles GET /courses/{slug}/learn/lesson/{id}/{step}
// @Summary Get a lesson step
// @Description Render a lesson step, redirect to the first available step when the lesson lacks it, or 404 when the lesson has no steps
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param id path int true "Lesson ID"
// @Param step path string true "Step: theory, example or test"
// @Success 200 {object} models.StepPage "Step page"
// @Success 302 {string} string "Redirect to the first available step"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found or without steps"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/learn/lesson/{id}/{step} [get]
func (h *PlayerHandler) GetStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	lessonID, ok := h.intParam(w, r, "id")
	if !ok {
		return
	}

	// An unknown step name is a request for a missing step
	step, _ := player.StepFromPath(r.URL.Path)

	page, decision, err := h.service.StepPage(r.Context(), slug, userID, lessonID, step)
	if err != nil {
		h.respondPageError(w, r, slug, err)
		return
	}
	h.respondDecision(w, r, slug, lessonID, decision, page)
}

// GetUnitQuiz handles GET /courses/{slug}/learn/lesson/{id}/unit-quiz
// @Summary Get a unit quiz
// @Description Get the quiz page of a unit; the id is a unit id
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param id path int true "Unit ID"
// @Success 200 {object} models.UnitQuizPage "Unit quiz page"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unit quiz not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/learn/lesson/{id}/unit-quiz [get]
func (h *PlayerHandler) GetUnitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	unitID, ok := h.intParam(w, r, "id")
	if !ok {
		return
	}

	page, err := h.service.UnitQuizPage(r.Context(), slug, userID, unitID)
	if err != nil {
		h.respondPageError(w, r, slug, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// GetStepStatus handles GET /courses/{slug}/learn/lesson/{id}/steps/status
// @Summary Get step completion
// @Description Get which steps of a lesson the learner finished
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "Course slug"
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.StepCompletionStatus "Step completion"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{slug}/learn/lesson/{id}/steps/status [get]
func (h *PlayerHandler) GetStepStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	lessonID, ok := h.intParam(w, r, "id")
	if !ok {
		return
	}

	status, err := h.service.StepCompletion(r.Context(), slug, userID, lessonID)
	if err != nil {
		h.respondPageError(w, r, slug, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, status)
}

// respondDecision renders page, redirects to the decided step or answers 404
func (h *PlayerHandler) respondDecision(w http.ResponseWriter, r *http.Request, slug string, lessonID int, decision player.Decision, page *models.StepPage) {
	switch decision.Action {
	case player.ActionRedirect:
		http.Redirect(w, r, APIPrefix+player.StepPath(slug, lessonID, decision.Step), http.StatusFound)
	case player.ActionRender:
		if page == nil {
			h.RespondError(w, http.StatusNotFound, "lesson not found")
			return
		}
		h.RespondJSON(w, http.StatusOK, page)
	default:
		h.RespondError(w, http.StatusNotFound, "lesson not found")
	}
}
