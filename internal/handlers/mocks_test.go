package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coursepath/backend/internal/auth/middleware"
	"github.com/coursepath/backend/internal/models"
	"github.com/coursepath/backend/internal/player"
	"github.com/coursepath/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUserID = 4

// mockPlayerService is a mock implementation of PlayerService
type mockPlayerService struct {
	plan       *services.LearnPlan
	decision   player.Decision
	page       *models.StepPage
	quizPage   *models.UnitQuizPage
	url        string
	completion models.StepCompletionStatus
	err        error

	gotSlug   string
	gotUserID int
	gotID     int
	gotStep   player.Step
}

func (m *mockPlayerService) BuildPlan(ctx context.Context, slug string, userID int) (*services.LearnPlan, error) {
	m.gotSlug, m.gotUserID = slug, userID
	if m.err != nil {
		return nil, m.err
	}
	return m.plan, nil
}

func (m *mockPlayerService) LessonEntry(ctx context.Context, slug string, userID, lessonID int) (player.Decision, error) {
	m.gotSlug, m.gotUserID, m.gotID = slug, userID, lessonID
	if m.err != nil {
		return player.Decision{}, m.err
	}
	return m.decision, nil
}

func (m *mockPlayerService) StepPage(ctx context.Context, slug string, userID, lessonID int, step player.Step) (*models.StepPage, player.Decision, error) {
	m.gotSlug, m.gotUserID, m.gotID, m.gotStep = slug, userID, lessonID, step
	if m.err != nil {
		return nil, player.Decision{}, m.err
	}
	return m.page, m.decision, nil
}

func (m *mockPlayerService) UnitQuizPage(ctx context.Context, slug string, userID, unitID int) (*models.UnitQuizPage, error) {
	m.gotSlug, m.gotUserID, m.gotID = slug, userID, unitID
	if m.err != nil {
		return nil, m.err
	}
	return m.quizPage, nil
}

func (m *mockPlayerService) ContinueURL(ctx context.Context, slug string, userID int) (string, error) {
	m.gotSlug, m.gotUserID = slug, userID
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

func (m *mockPlayerService) StepCompletion(ctx context.Context, slug string, userID, lessonID int) (models.StepCompletionStatus, error) {
	m.gotSlug, m.gotUserID, m.gotID = slug, userID, lessonID
	if m.err != nil {
		return models.StepCompletionStatus{}, m.err
	}
	return m.completion, nil
}

// mockSessionService is a mock implementation of SessionService
type mockSessionService struct {
	mounted *services.MountedSession
	state   player.State
	err     error

	gotID      string
	gotCurrent services.SetCurrentRequest
	gotPatch   player.UpdateProgress
	unmounted  bool
}

func (m *mockSessionService) Mount(ctx context.Context, slug string, userID int) (*services.MountedSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.mounted, nil
}

func (m *mockSessionService) Get(ctx context.Context, userID int, id string) (player.State, error) {
	m.gotID = id
	if m.err != nil {
		return player.State{}, m.err
	}
	return m.state, nil
}

func (m *mockSessionService) SetCurrent(ctx context.Context, userID int, id string, req services.SetCurrentRequest) (player.State, error) {
	m.gotID, m.gotCurrent = id, req
	if m.err != nil {
		return player.State{}, m.err
	}
	return m.state, nil
}

func (m *mockSessionService) UpdateProgress(ctx context.Context, userID int, id string, patch player.UpdateProgress) (player.State, error) {
	m.gotID, m.gotPatch = id, patch
	if m.err != nil {
		return player.State{}, m.err
	}
	return m.state, nil
}

func (m *mockSessionService) Unmount(ctx context.Context, userID int, id string) error {
	m.gotID = id
	if m.err != nil {
		return m.err
	}
	m.unmounted = true
	return nil
}

// mockProgressService is a mock implementation of ProgressService
type mockProgressService struct {
	result     *models.ProgressResult
	quizResult *models.QuizResult
	err        error

	gotSlug      string
	gotID        int
	gotContentID int
	gotGroup     string
	gotProgress  models.ContentProgressRequest
	gotQuiz      models.SubmitQuizRequest
	calls        int
}

func (m *mockProgressService) SaveContentProgress(ctx context.Context, slug string, userID, lessonID, contentID int, req models.ContentProgressRequest) (*models.ProgressResult, error) {
	m.calls++
	m.gotSlug, m.gotID, m.gotContentID, m.gotProgress = slug, lessonID, contentID, req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockProgressService) SubmitLessonQuiz(ctx context.Context, slug string, userID, lessonID int, req models.SubmitQuizRequest) (*models.QuizResult, error) {
	m.calls++
	m.gotSlug, m.gotID, m.gotQuiz = slug, lessonID, req
	if m.err != nil {
		return nil, m.err
	}
	return m.quizResult, nil
}

func (m *mockProgressService) SubmitUnitQuiz(ctx context.Context, slug string, userID, unitID int, req models.SubmitQuizRequest) (*models.QuizResult, error) {
	m.calls++
	m.gotSlug, m.gotID, m.gotQuiz = slug, unitID, req
	if m.err != nil {
		return nil, m.err
	}
	return m.quizResult, nil
}

func (m *mockProgressService) ClaimUnitXP(ctx context.Context, slug string, userID, unitID int) (*models.ProgressResult, error) {
	m.calls++
	m.gotSlug, m.gotID = slug, unitID
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockProgressService) ClaimUnitContentXP(ctx context.Context, slug string, userID int, group string) (*models.ProgressResult, error) {
	m.calls++
	m.gotSlug, m.gotGroup = slug, group
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockSessionPatcher records session updates and runs commits directly
type mockSessionPatcher struct {
	optimisticState *player.State
	patchState      *player.State

	optimisticEvent player.Event
	optimisticID    string
	patchEvents     []player.Event
	patchID         string
}

func (m *mockSessionPatcher) Patch(ctx context.Context, userID int, id string, events ...player.Event) *player.State {
	m.patchID, m.patchEvents = id, events
	if id == "" || len(events) == 0 {
		return nil
	}
	return m.patchState
}

func (m *mockSessionPatcher) Optimistic(ctx context.Context, userID int, id string, event player.Event, commit func(ctx context.Context) error) (*player.State, error) {
	m.optimisticID, m.optimisticEvent = id, event
	if err := commit(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	return m.optimisticState, nil
}

// testAuth authenticates every request as testUserID unless the
// X-Anonymous header is set
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Anonymous") != "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), testUserID)))
	})
}

// routeRegistrar is implemented by every handler
type routeRegistrar interface {
	RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler)
}

// newTestRouter mounts h under APIPrefix the way main does
func newTestRouter(h routeRegistrar) chi.Router {
	r := chi.NewRouter()
	r.Route(APIPrefix, func(r chi.Router) {
		h.RegisterRoutes(r, testAuth)
	})
	return r
}

// serve sends a request through router and returns the recorded response
func serve(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, APIPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody decodes a JSON response body into v
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
