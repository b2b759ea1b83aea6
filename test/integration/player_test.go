package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/coursepath/backend/internal/auth/middleware"
	"github.com/coursepath/backend/internal/auth/service"
	"github.com/coursepath/backend/internal/config"
	"github.com/coursepath/backend/internal/content"
	"github.com/coursepath/backend/internal/handlers"
	"github.com/coursepath/backend/internal/models"
	"github.com/coursepath/backend/internal/player"
	"github.com/coursepath/backend/internal/repositories"
	"github.com/coursepath/backend/internal/services"
	"github.com/coursepath/backend/internal/sessions"
	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testUserID = 7
	testSecret = "test-secret-key-for-integration-tests"
)

var (
	testDB     *sql.DB
	testRouter chi.Router
	testLogger *zap.Logger
	testToken  string
)

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	dsn := cfg.DSN()
	if dsn == "" {
		dsn = "root:password@tcp(localhost:3306)/coursepath_learn_test?parseTime=true&charset=utf8mb4&multiStatements=true"
	}

	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	// Test connection
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	if err := migrateUp(testDB); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}

	tokens := service.NewTokenGenerator(testSecret, time.Hour)
	testToken, err = tokens.GenerateAccessToken(testUserID, 1)
	if err != nil {
		panic(fmt.Sprintf("Failed to generate token: %v", err))
	}

	store := sessionStore(cfg)
	testRouter = setupTestRouter(testDB, store, tokens, testLogger)

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

// migrateUp applies the service migrations
func migrateUp(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{MigrationsTable: "learn_schema_migrations"})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// sessionStore uses Redis when TEST_REDIS_ADDR is set
func sessionStore(cfg *config.Config) services.SessionStore {
	if cfg.Redis.Addr == "" {
		return sessions.NewMemoryStore()
	}
	rdb, err := sessions.Connect(context.Background(), cfg.Redis.Addr, "", 0)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test redis: %v", err))
	}
	return sessions.NewRedisStore(rdb)
}

// setupTestRouter creates a test router with all handlers
func setupTestRouter(db *sql.DB, store services.SessionStore, tokens *service.TokenGenerator, logger *zap.Logger) chi.Router {
	repos := services.Repositories{
		Courses:     repositories.NewCourseRepository(db),
		Units:       repositories.NewUnitRepository(db),
		Lessons:     repositories.NewLessonRepository(db),
		Quizzes:     repositories.NewQuizRepository(db),
		Enrollments: repositories.NewEnrollmentRepository(db),
		Progress:    repositories.NewProgressRepository(db),
		XP:          repositories.NewXPRepository(db),
	}
	rules := config.DefaultXPRules()

	playerSvc := services.NewPlayerService(repos, content.NewRenderer(), rules, logger)
	progressSvc := services.NewProgressService(repos, rules, logger)
	sessionSvc := services.NewSessionService(store, playerSvc, time.Hour, logger)

	authMiddleware := middleware.AuthMiddleware(tokens)

	r := chi.NewRouter()
	// Scope router to the API prefix to match main.go setup
	r.Route(handlers.APIPrefix, func(r chi.Router) {
		handlers.NewPlayerHandler(playerSvc, logger).RegisterRoutes(r, authMiddleware)
		handlers.NewSessionHandler(sessionSvc, logger).RegisterRoutes(r, authMiddleware)
		handlers.NewProgressHandler(progressSvc, sessionSvc, logger).RegisterRoutes(r, authMiddleware)
	})
	return r
}

var seedTables = []string{
	"quiz_answers", "quiz_attempts", "xp_transactions", "profiles",
	"content_progress", "lesson_progress", "enrollment_claims", "enrollments",
	"quiz_options", "quiz_questions", "lesson_content", "lessons", "units", "courses",
}

// seedTestData inserts one course of one unit with two lessons.
// Lesson 1 has theory, example and a quiz; lesson 2 has theory only.
// The unit has its own quiz.
func seedTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	cleanupTestData(t, db)

	statements := []string{
		`INSERT INTO courses (id, slug, title, short_summary, is_published) VALUES (1, 'go', 'Go', 'Learn Go', TRUE)`,
		`INSERT INTO units (id, course_id, title, order_index, unit_content) VALUES (1, 1, 'Basics', 0, 'fundamentals')`,
		`INSERT INTO lessons (id, course_id, unit_id, title, order_index, order_in_unit) VALUES
			(1, 1, 1, 'Variables', 0, 0),
			(2, 1, 1, 'Loops', 1, 1)`,
		`INSERT INTO lesson_content (id, lesson_id, content_type, title, content, order_index) VALUES
			(1, 1, 'theory', 'Declaring', '# var', 0),
			(2, 1, 'example', 'In practice', 'x := 1', 1),
			(3, 2, 'theory', 'For', '# for', 0)`,
		`INSERT INTO quiz_questions (id, lesson_id, unit_id, question, explanation, points) VALUES
			(1, 1, NULL, 'Short declaration?', ':= declares', 1),
			(2, NULL, 1, 'Only loop keyword?', 'for is the only loop', 1)`,
		`INSERT INTO quiz_options (id, question_id, option_text, is_correct, order_index) VALUES
			(1, 1, ':=', TRUE, 0),
			(2, 1, '=', FALSE, 1),
			(3, 2, 'for', TRUE, 0),
			(4, 2, 'while', FALSE, 1)`,
		fmt.Sprintf(`INSERT INTO enrollments (id, user_id, course_id) VALUES (1, %d, 1)`, testUserID),
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "Failed to seed: %s", stmt)
	}
}

// cleanupTestData removes all test data
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range seedTables {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "Failed to clear %s", table)
	}
}

// do sends an authenticated request to the test router
func do(t *testing.T, method, path string, body any, sessionID string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, handlers.APIPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	if sessionID != "" {
		req.Header.Set(handlers.SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

// writeResponse mirrors handlers.WriteResponse with a typed result
type writeResponse[T any] struct {
	Result  T             `json:"result"`
	Session *player.State `json:"session"`
}

func decodeWrite[T any](t *testing.T, w *httptest.ResponseRecorder) writeResponse[T] {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp writeResponse[T]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestIntegration_StepNavigation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	tests := []struct {
		name             string
		path             string
		expectedStatus   int
		expectedLocation string
		validateFunc     func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:             "lesson entry goes to first step",
			path:             "/courses/go/learn/lesson/1",
			expectedStatus:   http.StatusFound,
			expectedLocation: handlers.APIPrefix + "/courses/go/learn/lesson/1/theory",
		},
		{
			name:             "missing example redirects to theory",
			path:             "/courses/go/learn/lesson/2/example",
			expectedStatus:   http.StatusFound,
			expectedLocation: handlers.APIPrefix + "/courses/go/learn/lesson/2/theory",
		},
		{
			name:             "missing test redirects to theory",
			path:             "/courses/go/learn/lesson/2/test",
			expectedStatus:   http.StatusFound,
			expectedLocation: handlers.APIPrefix + "/courses/go/learn/lesson/2/theory",
		},
		{
			name:           "present step renders",
			path:           "/courses/go/learn/lesson/1/example",
			expectedStatus: http.StatusOK,
			validateFunc: func(t *testing.T, w *httptest.ResponseRecorder) {
				var page models.StepPage
				require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
				assert.Equal(t, "example", page.Step)
				assert.Equal(t, []string{"theory", "example", "test"}, page.AvailableSteps)
				require.NotNil(t, page.Next)
				assert.Equal(t, 2, page.Next.ID)
				assert.Nil(t, page.Previous)
			},
		},
		{
			name:           "unit quiz page by unit id",
			path:           "/courses/go/learn/lesson/1/unit-quiz",
			expectedStatus: http.StatusOK,
			validateFunc: func(t *testing.T, w *httptest.ResponseRecorder) {
				var page models.UnitQuizPage
				require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
				assert.Equal(t, "Basics", page.Unit.Title)
				assert.Len(t, page.Questions, 1)
				assert.False(t, page.Passed)
			},
		},
		{
			name:           "lesson of no course",
			path:           "/courses/go/learn/lesson/99/theory",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown course",
			path:           "/courses/rust/learn/plan",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, http.MethodGet, tt.path, nil, "")

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedLocation != "" {
				assert.Equal(t, tt.expectedLocation, w.Header().Get("Location"))
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, w)
			}
		})
	}
}

func TestIntegration_LearningFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	// Continue starts at the first lesson
	w := do(t, http.MethodGet, "/courses/go/continue", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var cont map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cont))
	assert.Equal(t, "/courses/go/learn/lesson/1", cont["url"])

	// Mount a session
	w = do(t, http.MethodPost, "/courses/go/learn/sessions", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var mounted services.MountedSession
	require.NoError(t, json.NewDecoder(w.Body).Decode(&mounted))
	require.NotEmpty(t, mounted.ID)
	sid := mounted.ID
	assert.Equal(t, 0, mounted.Plan.State.Progress.Completed)
	assert.Equal(t, 3, mounted.Plan.State.Progress.Total)

	// Point the session at the theory step
	w = do(t, http.MethodPut, "/sessions/"+sid+"/current", map[string]any{"lessonId": 1, "step": "theory"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Theory block
	theory := decodeWrite[models.ProgressResult](t, do(t, http.MethodPost,
		"/courses/go/lessons/1/content/1/progress", map[string]any{"completed": true, "step": "theory"}, sid))
	assert.Equal(t, 10, theory.Result.XPAwarded)
	assert.False(t, theory.Result.LessonComplete)
	require.NotNil(t, theory.Session)
	assert.Contains(t, theory.Session.CompletedSteps[1], player.StepTheory)

	// Rewatching awards nothing
	rewatch := decodeWrite[models.ProgressResult](t, do(t, http.MethodPost,
		"/courses/go/lessons/1/content/1/progress", map[string]any{"completed": true, "step": "theory"}, sid))
	assert.True(t, rewatch.Result.IsRewatch)
	assert.Equal(t, 0, rewatch.Result.XPAwarded)

	// Example block
	example := decodeWrite[models.ProgressResult](t, do(t, http.MethodPost,
		"/courses/go/lessons/1/content/2/progress", map[string]any{"completed": true, "step": "example"}, sid))
	assert.Equal(t, 10, example.Result.XPAwarded)
	assert.False(t, example.Result.LessonComplete, "quiz still open")

	// Lesson quiz pass completes lesson 1
	quiz := decodeWrite[models.QuizResult](t, do(t, http.MethodPost,
		"/courses/go/lessons/1/quiz/attempts", map[string]any{"answers": []map[string]int{{"questionId": 1, "optionId": 1}}}, sid))
	assert.True(t, quiz.Result.Passed)
	assert.True(t, quiz.Result.LessonComplete)
	require.NotNil(t, quiz.Result.Progress)
	assert.Equal(t, 1, quiz.Result.Progress.Completed)
	require.NotNil(t, quiz.Session)
	assert.Equal(t, 1, quiz.Session.Progress.Completed)

	w = do(t, http.MethodGet, "/courses/go/learn/lesson/1/steps/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var status models.StepCompletionStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, models.StepCompletionStatus{Theory: true, Example: true, Test: true}, status)

	// Lesson 2 has no quiz and completes on its theory block
	loops := decodeWrite[models.ProgressResult](t, do(t, http.MethodPost,
		"/courses/go/lessons/2/content/3/progress", map[string]any{"completed": true, "step": "theory"}, sid))
	assert.True(t, loops.Result.LessonComplete)
	require.NotNil(t, loops.Session)
	assert.Equal(t, 2, loops.Session.Progress.Completed)

	// Continue moves to the unit quiz
	w = do(t, http.MethodGet, "/courses/go/continue", nil, "")
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cont))
	assert.Equal(t, "/courses/go/learn/lesson/1/unit-quiz", cont["url"])

	// Unit quiz pass finishes the course and claims the unit
	unitQuiz := decodeWrite[models.QuizResult](t, do(t, http.MethodPost,
		"/courses/go/units/1/quiz/attempts", map[string]any{"answers": []map[string]int{{"questionId": 2, "optionId": 3}}}, sid))
	assert.True(t, unitQuiz.Result.UnitQuizPassed)
	require.NotNil(t, unitQuiz.Result.Progress)
	assert.Equal(t, 100, unitQuiz.Result.Progress.Percentage)
	require.NotNil(t, unitQuiz.Session)
	assert.Equal(t, 100, unitQuiz.Session.Progress.Percentage)

	w = do(t, http.MethodPost, "/courses/go/units/1/claim", nil, sid)
	assert.Equal(t, http.StatusConflict, w.Code)

	group := decodeWrite[models.ProgressResult](t, do(t, http.MethodPost, "/courses/go/unit-content/fundamentals/claim", nil, sid))
	assert.Equal(t, config.DefaultXPRules().UnitContentReward(0), group.Result.XPAwarded)

	// Every award landed in the profile
	var totalXP int
	require.NoError(t, testDB.QueryRow("SELECT total_xp FROM profiles WHERE user_id = ?", testUserID).Scan(&totalXP))
	require.NotNil(t, group.Result.TotalXP)
	assert.Equal(t, totalXP, *group.Result.TotalXP)

	// Unmount
	w = do(t, http.MethodDelete, "/sessions/"+sid, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, http.MethodGet, "/sessions/"+sid, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_NotEnrolled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	_, err := testDB.Exec("DELETE FROM enrollments")
	require.NoError(t, err)

	w := do(t, http.MethodGet, "/courses/go/learn/lesson/1/theory", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/courses/go", w.Header().Get("Location"))

	w = do(t, http.MethodPost, "/courses/go/lessons/1/content/1/progress", map[string]any{"completed": true}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
