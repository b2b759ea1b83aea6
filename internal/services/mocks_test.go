package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/coursepath/backend/internal/models"
	"go.uber.org/zap"
)

// mockCourseRepository is a mock implementation of CourseRepository
type mockCourseRepository struct {
	course   *models.Course
	stats    *models.CourseStats
	err      error
	statsErr error
}

func (m *mockCourseRepository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.course == nil || m.course.Slug != slug {
		return nil, fmt.Errorf("course not found: %w", models.ErrNotFound)
	}
	return m.course, nil
}

func (m *mockCourseRepository) GetStats(ctx context.Context, courseID int) (*models.CourseStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

// mockUnitRepository is a mock implementation of UnitRepository
type mockUnitRepository struct {
	units   []models.UnitWithLessons
	flat    []models.Lesson
	err     error
	flatErr error
}

func (m *mockUnitRepository) ListWithLessons(ctx context.Context, courseID int) ([]models.UnitWithLessons, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.units, nil
}

func (m *mockUnitRepository) FlatLessons(ctx context.Context, courseID int) ([]models.Lesson, error) {
	if m.flatErr != nil {
		return nil, m.flatErr
	}
	return m.flat, nil
}

func (m *mockUnitRepository) GetUnit(ctx context.Context, courseID, unitID int) (*models.Unit, error) {
	for _, u := range m.units {
		if u.ID == unitID && u.CourseID == courseID {
			unit := u.Unit
			return &unit, nil
		}
	}
	return nil, fmt.Errorf("unit not found: %w", models.ErrNotFound)
}

// mockLessonRepository is a mock implementation of LessonRepository
type mockLessonRepository struct {
	lessons map[int]*models.LessonWithContent
	err     error
}

func (m *mockLessonRepository) GetWithContent(ctx context.Context, courseID, lessonID int) (*models.LessonWithContent, error) {
	if m.err != nil {
		return nil, m.err
	}
	lesson, ok := m.lessons[lessonID]
	if !ok || lesson.CourseID != courseID {
		return nil, fmt.Errorf("lesson not found: %w", models.ErrNotFound)
	}
	return lesson, nil
}

// mockQuizRepository is a mock implementation of QuizRepository.
// Stored attempts update the passed sets like the database would.
type mockQuizRepository struct {
	lessonQuestions map[int][]models.QuizQuestion
	unitQuestions   map[int][]models.QuizQuestion
	best            *models.QuizAttempt
	passedLessons   map[int]bool
	passedUnits     map[int]bool
	attempts        []models.QuizAttempt
	err             error
	hasQuizErr      error
	createErr       error
}

func (m *mockQuizRepository) LessonQuestions(ctx context.Context, lessonID int) ([]models.QuizQuestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessonQuestions[lessonID], nil
}

func (m *mockQuizRepository) UnitQuestions(ctx context.Context, unitID int) ([]models.QuizQuestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.unitQuestions[unitID], nil
}

func (m *mockQuizRepository) HasLessonQuiz(ctx context.Context, lessonID int) (bool, error) {
	if m.hasQuizErr != nil {
		return false, m.hasQuizErr
	}
	return len(m.lessonQuestions[lessonID]) > 0, nil
}

func (m *mockQuizRepository) UnitQuestionCounts(ctx context.Context, courseID int) (map[int]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := map[int]int{}
	for unitID, qs := range m.unitQuestions {
		if len(qs) > 0 {
			counts[unitID] = len(qs)
		}
	}
	return counts, nil
}

func (m *mockQuizRepository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt, answers []models.QuizAnswer) (int, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.attempts = append(m.attempts, *attempt)
	if attempt.Passed && attempt.LessonID != nil {
		m.passedLessons[*attempt.LessonID] = true
	}
	if attempt.Passed && attempt.UnitID != nil {
		m.passedUnits[*attempt.UnitID] = true
	}
	return len(m.attempts), nil
}

func (m *mockQuizRepository) BestLessonAttempt(ctx context.Context, userID, lessonID int) (*models.QuizAttempt, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.best, nil
}

func (m *mockQuizRepository) PassedLessonQuiz(ctx context.Context, userID, lessonID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.passedLessons[lessonID], nil
}

func (m *mockQuizRepository) PassedUnitQuizIDs(ctx context.Context, userID, courseID int) (map[int]bool, error) {
	if m.err != nil {
		return nil, m.err
	}
	passed := map[int]bool{}
	for id, ok := range m.passedUnits {
		passed[id] = ok
	}
	return passed, nil
}

// mockEnrollmentRepository is a mock implementation of EnrollmentRepository
type mockEnrollmentRepository struct {
	enrollment       *models.Enrollment
	claims           models.Claims
	completedCourses int
	progressUpdates  []int
	removedClaims    []string
	err              error
	updateErr        error
}

func (m *mockEnrollmentRepository) Get(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.enrollment == nil || m.enrollment.UserID != userID {
		return nil, models.ErrNotEnrolled
	}
	return m.enrollment, nil
}

func (m *mockEnrollmentRepository) UpdateProgress(ctx context.Context, enrollmentID, percentage int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.progressUpdates = append(m.progressUpdates, percentage)
	if percentage >= 100 {
		m.completedCourses++
	}
	return nil
}

func (m *mockEnrollmentRepository) CountCompletedCourses(ctx context.Context, userID int) (int, error) {
	return m.completedCourses, nil
}

func (m *mockEnrollmentRepository) Claims(ctx context.Context, enrollmentID int) (models.Claims, error) {
	claims := models.Claims{Units: map[int]bool{}, UnitContents: map[string]bool{}}
	for id, ok := range m.claims.Units {
		claims.Units[id] = ok
	}
	for name, ok := range m.claims.UnitContents {
		claims.UnitContents[name] = ok
	}
	return claims, nil
}

func (m *mockEnrollmentRepository) AddClaim(ctx context.Context, enrollmentID int, kind models.ClaimKind, key string) (bool, error) {
	switch kind {
	case models.ClaimKindUnit:
		id, _ := strconv.Atoi(key)
		if m.claims.Units[id] {
			return false, nil
		}
		m.claims.Units[id] = true
	case models.ClaimKindUnitContent:
		if m.claims.UnitContents[key] {
			return false, nil
		}
		m.claims.UnitContents[key] = true
	}
	return true, nil
}

func (m *mockEnrollmentRepository) RemoveClaim(ctx context.Context, enrollmentID int, kind models.ClaimKind, key string) error {
	m.removedClaims = append(m.removedClaims, string(kind)+":"+key)
	switch kind {
	case models.ClaimKindUnit:
		id, _ := strconv.Atoi(key)
		delete(m.claims.Units, id)
	case models.ClaimKindUnitContent:
		delete(m.claims.UnitContents, key)
	}
	return nil
}

// mockProgressRepository is a mock implementation of ProgressRepository
type mockProgressRepository struct {
	completedLessons map[int]bool
	content          map[int]models.ContentProgress
	started          []int
	err              error
	saveErr          error
}

func (m *mockProgressRepository) CompletedLessonIDs(ctx context.Context, enrollmentID int) (map[int]bool, error) {
	if m.err != nil {
		return nil, m.err
	}
	completed := map[int]bool{}
	for id, ok := range m.completedLessons {
		completed[id] = ok
	}
	return completed, nil
}

func (m *mockProgressRepository) MarkLessonStarted(ctx context.Context, enrollmentID, lessonID int) error {
	m.started = append(m.started, lessonID)
	return nil
}

func (m *mockProgressRepository) MarkLessonCompleted(ctx context.Context, enrollmentID, lessonID int) (bool, error) {
	if m.completedLessons[lessonID] {
		return false, nil
	}
	m.completedLessons[lessonID] = true
	return true, nil
}

func (m *mockProgressRepository) GetContentProgress(ctx context.Context, enrollmentID, contentID int) (*models.ContentProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.content[contentID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockProgressRepository) SaveContentProgress(ctx context.Context, p models.ContentProgress) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if old, ok := m.content[p.LessonContentID]; ok {
		p.Completed = p.Completed || old.Completed
		p.WatchedSeconds = max(p.WatchedSeconds, old.WatchedSeconds)
	}
	m.content[p.LessonContentID] = p
	return nil
}

func (m *mockProgressRepository) CompletedContentIDs(ctx context.Context, enrollmentID, lessonID int) (map[int]bool, error) {
	if m.err != nil {
		return nil, m.err
	}
	completed := map[int]bool{}
	for id, p := range m.content {
		if p.Completed {
			completed[id] = true
		}
	}
	return completed, nil
}

// mockXPRepository is a mock implementation of XPRepository
type mockXPRepository struct {
	profile  models.Profile
	awards   map[string]models.XPTransaction
	err      error
	awardErr error
}

func (m *mockXPRepository) Award(ctx context.Context, t models.XPTransaction) (bool, error) {
	if m.awardErr != nil {
		return false, m.awardErr
	}
	key := string(t.SourceType) + ":" + t.SourceID
	if _, ok := m.awards[key]; ok {
		return false, nil
	}
	m.awards[key] = t
	m.profile.TotalXP += t.Amount
	return true, nil
}

func (m *mockXPRepository) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p := m.profile
	return &p, nil
}

func (m *mockXPRepository) UpdateStreak(ctx context.Context, userID, current, longest int, day time.Time) error {
	m.profile.CurrentStreak = current
	m.profile.LongestStreak = longest
	d := day
	m.profile.LastActivityDate = &d
	return nil
}

// mockRenderer is a mock implementation of ContentRenderer
type mockRenderer struct {
	err error
}

func (m *mockRenderer) RenderBlocks(blocks []models.LessonContent, completed map[int]bool) ([]models.RenderedBlock, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.RenderedBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, models.RenderedBlock{
			ID:          b.ID,
			ContentType: b.ContentType,
			Title:       b.Title,
			HTML:        "<p>" + b.Content + "</p>",
			Completed:   completed[b.ID],
		})
	}
	return out, nil
}

// testCourse holds the mocks behind a course "go" (id 1) with learner 4 enrolled (enrollment 3):
//
//	unit 10 "Basics" (group "fundamentals"): lesson 101 (theory 1, example 2, quiz), lesson 102 (theory 3), unit quiz
//	unit 20 "Next" (group "fundamentals"): lesson 201 (no content)
type testCourse struct {
	courses     *mockCourseRepository
	units       *mockUnitRepository
	lessons     *mockLessonRepository
	quizzes     *mockQuizRepository
	enrollments *mockEnrollmentRepository
	progress    *mockProgressRepository
	xp          *mockXPRepository
}

func intPtr(v int) *int { return &v }

func question(id, correctOption, wrongOption int) models.QuizQuestion {
	return models.QuizQuestion{
		ID:          id,
		Question:    fmt.Sprintf("Question %d", id),
		Explanation: "because",
		Points:      1,
		Options: []models.QuizOption{
			{ID: correctOption, QuestionID: id, Text: "right", IsCorrect: true},
			{ID: wrongOption, QuestionID: id, Text: "wrong"},
		},
	}
}

func newTestCourse() *testCourse {
	lesson := func(id, unitID, inUnit, inCourse int, title string) models.Lesson {
		return models.Lesson{ID: id, CourseID: 1, UnitID: intPtr(unitID), Title: title, OrderIndex: inCourse, OrderInUnit: inUnit}
	}
	l101 := lesson(101, 10, 0, 0, "Variables")
	l102 := lesson(102, 10, 1, 1, "Loops")
	l201 := lesson(201, 20, 0, 2, "Functions")

	lessonQuiz := []models.QuizQuestion{question(1, 11, 12), question(2, 21, 22)}
	unitQuiz := []models.QuizQuestion{question(5, 51, 52)}

	return &testCourse{
		courses: &mockCourseRepository{
			course: &models.Course{ID: 1, Slug: "go", Title: "Go", IsPublished: true},
			stats:  &models.CourseStats{LessonCount: 3, ExerciseCount: 1, RewardedBlocks: 3, UnitCount: 2},
		},
		units: &mockUnitRepository{
			units: []models.UnitWithLessons{
				{Unit: models.Unit{ID: 20, CourseID: 1, Title: "Next", OrderIndex: 1, ContentGroup: "fundamentals"}, Lessons: []models.Lesson{l201}},
				{Unit: models.Unit{ID: 10, CourseID: 1, Title: "Basics", OrderIndex: 0, ContentGroup: "fundamentals"}, Lessons: []models.Lesson{l102, l101}},
			},
			flat: []models.Lesson{l201, l101, l102},
		},
		lessons: &mockLessonRepository{lessons: map[int]*models.LessonWithContent{
			101: {Lesson: l101, Content: []models.LessonContent{
				{ID: 1, LessonID: 101, ContentType: models.ContentTypeTheory, Title: "Intro", Content: "theory"},
				{ID: 2, LessonID: 101, ContentType: models.ContentTypeExample, Title: "Demo", Content: "example"},
			}},
			102: {Lesson: l102, Content: []models.LessonContent{
				{ID: 3, LessonID: 102, ContentType: models.ContentTypeTheory, Title: "For", Content: "loops"},
			}},
			201: {Lesson: l201, Content: []models.LessonContent{}},
		}},
		quizzes: &mockQuizRepository{
			lessonQuestions: map[int][]models.QuizQuestion{101: lessonQuiz},
			unitQuestions:   map[int][]models.QuizQuestion{10: unitQuiz},
			passedLessons:   map[int]bool{},
			passedUnits:     map[int]bool{},
		},
		enrollments: &mockEnrollmentRepository{
			enrollment: &models.Enrollment{ID: 3, UserID: 4, CourseID: 1},
			claims:     models.Claims{Units: map[int]bool{}, UnitContents: map[string]bool{}},
		},
		progress: &mockProgressRepository{
			completedLessons: map[int]bool{},
			content:          map[int]models.ContentProgress{},
		},
		xp: &mockXPRepository{
			profile: models.Profile{UserID: 4},
			awards:  map[string]models.XPTransaction{},
		},
	}
}

func (c *testCourse) repos() Repositories {
	return Repositories{
		Courses:     c.courses,
		Units:       c.units,
		Lessons:     c.lessons,
		Quizzes:     c.quizzes,
		Enrollments: c.enrollments,
		Progress:    c.progress,
		XP:          c.xp,
	}
}

func (c *testCourse) completeContent(ids ...int) {
	for _, id := range ids {
		c.progress.content[id] = models.ContentProgress{EnrollmentID: 3, LessonContentID: id, Completed: true}
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
