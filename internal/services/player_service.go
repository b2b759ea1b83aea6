package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursepath/backend/internal/config"
	"github.com/coursepath/backend/internal/models"
	"github.com/coursepath/backend/internal/observability"
	"github.com/coursepath/backend/internal/player"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ContentRenderer turns lesson content blocks into page blocks
type ContentRenderer interface {
	// RenderBlocks renders blocks in order
	//
	// "blocks" are the content blocks to render.
	// "completed" is the set of completed block IDs.
	//
	// Returns the rendered blocks and an error if any.
	RenderBlocks(blocks []models.LessonContent, completed map[int]bool) ([]models.RenderedBlock, error)
}

// LearnPlan is the data the lesson layout is built from
type LearnPlan struct {
	Course        models.Course         `json:"course"`
	Stats         models.CourseStats    `json:"stats"`
	State         player.State          `json:"state"`
	Sidebar       []player.UnitSection  `json:"sidebar"`
	ContentGroups []player.ContentGroup `json:"contentGroups"`
	Level         int                   `json:"level"`
	ContinueURL   string                `json:"continueUrl"`
}

// SetCurrentRequest points a session at a lesson step or a unit quiz
type SetCurrentRequest struct {
	LessonID   int         `json:"lessonId" validate:"required,gt=0"`
	Step       player.Step `json:"step"`
	IsUnitQuiz bool        `json:"isUnitQuiz"`
}

type playerService struct {
	loader   *courseLoader
	repos    Repositories
	renderer ContentRenderer
	rules    config.XPRules
	logger   *zap.Logger
}

// NewPlayerService creates a new lesson player service
func NewPlayerService(repos Repositories, renderer ContentRenderer, rules config.XPRules, logger *zap.Logger) *playerService {
	return &playerService{
		loader:   &courseLoader{repos: repos, logger: logger},
		repos:    repos,
		renderer: renderer,
		rules:    rules,
		logger:   logger,
	}
}

// BuildPlan loads everything the lesson layout needs and builds the initial session state.
// Reads other than the course and the enrollment degrade to empty on failure.
func (s *playerService) BuildPlan(ctx context.Context, slug string, userID int) (*LearnPlan, error) {
	ctx, span := observability.Tracer().Start(ctx, "player.BuildPlan")
	defer span.End()
	span.SetAttributes(attribute.String("course.slug", slug), attribute.Int("user.id", userID))

	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	view, err := s.loader.load(ctx, course, enrollment, userID, false)
	if err != nil {
		return nil, err
	}

	state := player.NewState(view.plan(userID))
	sidebar := player.BuildSidebar(view.units, state.Items, view.claims.Units)

	plan := &LearnPlan{
		Course:        *course,
		State:         state,
		Sidebar:       sidebar,
		ContentGroups: player.ContentGroups(sidebar, view.claims.UnitContents),
		Level:         1,
		ContinueURL:   continuePath(course.Slug, state.Items),
	}
	if view.stats != nil {
		plan.Stats = *view.stats
		plan.Stats.TotalXP = totalXP(view.stats, s.rules)
	}
	if view.profile != nil {
		plan.Level = s.rules.Level(view.profile.TotalXP)
	}
	return plan, nil
}

// LessonEntry decides where the bare lesson path goes: the first available step or not found
func (s *playerService) LessonEntry(ctx context.Context, slug string, userID, lessonID int) (player.Decision, error) {
	course, _, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return player.Decision{}, err
	}

	lesson, err := s.repos.Lessons.GetWithContent(ctx, course.ID, lessonID)
	if err != nil {
		return player.Decision{}, err
	}

	steps := player.AvailableSteps(lesson.Content, s.hasQuiz(ctx, lessonID))
	return player.FirstStep(steps), nil
}

// StepPage resolves a requested step. When the decision is not Render the page is nil.
func (s *playerService) StepPage(ctx context.Context, slug string, userID, lessonID int, step player.Step) (*models.StepPage, player.Decision, error) {
	ctx, span := observability.Tracer().Start(ctx, "player.StepPage")
	defer span.End()
	span.SetAttributes(attribute.Int("lesson.id", lessonID), attribute.String("step", step.String()))

	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return nil, player.Decision{}, err
	}

	lesson, err := s.repos.Lessons.GetWithContent(ctx, course.ID, lessonID)
	if err != nil {
		return nil, player.Decision{}, err
	}

	steps := player.AvailableSteps(lesson.Content, s.hasQuiz(ctx, lessonID))
	decision := player.Resolve(step, steps)
	if decision.Action != player.ActionRender {
		return nil, decision, nil
	}

	completed, err := s.repos.Progress.CompletedContentIDs(ctx, enrollment.ID, lessonID)
	if err != nil {
		s.logger.Warn("failed to load content progress", zap.Int("lesson_id", lessonID), zap.Error(err))
		completed = map[int]bool{}
	}

	page := &models.StepPage{
		CourseSlug:     course.Slug,
		Lesson:         lesson.Lesson,
		Step:           step.String(),
		AvailableSteps: player.StepNames(steps),
		Completion:     s.completion(ctx, userID, lesson.Content, completed, lessonID),
	}

	switch step {
	case player.StepTheory, player.StepExample:
		var blocks []models.LessonContent
		for _, b := range lesson.Content {
			if player.ContentStep(b.ContentType) == step {
				blocks = append(blocks, b)
			}
		}
		page.Blocks, err = s.renderer.RenderBlocks(blocks, completed)
		if err != nil {
			return nil, player.Decision{}, fmt.Errorf("failed to render lesson content: %w", err)
		}
	case player.StepTest:
		page.Questions, err = s.repos.Quizzes.LessonQuestions(ctx, lessonID)
		if err != nil {
			return nil, player.Decision{}, fmt.Errorf("failed to get lesson quiz: %w", err)
		}
	}

	view, err := s.loader.load(ctx, course, enrollment, userID, false)
	if err != nil {
		return nil, player.Decision{}, err
	}
	prev, next := player.Neighbors(view.items(), player.LessonKey(lessonID))
	page.Previous = navLink(course.Slug, prev)
	page.Next = navLink(course.Slug, next)

	return page, decision, nil
}

// UnitQuizPage builds the unit quiz page. A unit of another course or a unit
// without quiz questions is not found.
func (s *playerService) UnitQuizPage(ctx context.Context, slug string, userID, unitID int) (*models.UnitQuizPage, error) {
	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	unit, err := s.repos.Units.GetUnit(ctx, course.ID, unitID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repos.Quizzes.UnitQuestions(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit quiz: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("unit quiz not found: %w", models.ErrNotFound)
	}

	view, err := s.loader.load(ctx, course, enrollment, userID, false)
	if err != nil {
		return nil, err
	}
	prev, next := player.Neighbors(view.items(), player.UnitQuizKey(unitID))

	return &models.UnitQuizPage{
		CourseSlug: course.Slug,
		Unit:       *unit,
		Questions:  questions,
		Passed:     view.passedUnitQuizzes[unitID],
		Previous:   navLink(course.Slug, prev),
		Next:       navLink(course.Slug, next),
	}, nil
}

// ContinueURL is where the "continue learning" button leads. Learners go to the
// next uncompleted item, visitors to the first lesson, and an empty course
// leads back to the course page.
func (s *playerService) ContinueURL(ctx context.Context, slug string, userID int) (string, error) {
	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil && !errors.Is(err, models.ErrNotEnrolled) {
		return "", err
	}

	view, err := s.loader.load(ctx, course, enrollment, userID, false)
	if err != nil {
		return "", err
	}
	return continuePath(course.Slug, view.items()), nil
}

// StepCompletion reports which steps of a lesson the learner finished
func (s *playerService) StepCompletion(ctx context.Context, slug string, userID, lessonID int) (models.StepCompletionStatus, error) {
	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return models.StepCompletionStatus{}, err
	}

	lesson, err := s.repos.Lessons.GetWithContent(ctx, course.ID, lessonID)
	if err != nil {
		return models.StepCompletionStatus{}, err
	}

	completed, err := s.repos.Progress.CompletedContentIDs(ctx, enrollment.ID, lessonID)
	if err != nil {
		return models.StepCompletionStatus{}, fmt.Errorf("failed to get content progress: %w", err)
	}

	return s.completion(ctx, userID, lesson.Content, completed, lessonID), nil
}

// CurrentLesson resolves the event that points a session at a lesson step or a unit quiz
func (s *playerService) CurrentLesson(ctx context.Context, slug string, userID int, req SetCurrentRequest) (player.SetCurrentLesson, error) {
	course, _, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return player.SetCurrentLesson{}, err
	}

	if req.IsUnitQuiz {
		unit, err := s.repos.Units.GetUnit(ctx, course.ID, req.LessonID)
		if err != nil {
			return player.SetCurrentLesson{}, err
		}
		return player.SetCurrentLesson{
			LessonID:       unit.ID,
			Step:           player.StepUnitQuiz,
			AvailableSteps: []player.Step{},
			IsUnitQuiz:     true,
			Lesson:         player.LessonInfo{Title: unit.Title, UnitID: unit.ID, UnitTitle: unit.Title},
		}, nil
	}

	lesson, err := s.repos.Lessons.GetWithContent(ctx, course.ID, req.LessonID)
	if err != nil {
		return player.SetCurrentLesson{}, err
	}
	steps := player.AvailableSteps(lesson.Content, s.hasQuiz(ctx, lesson.ID))
	step := req.Step
	if d := player.Resolve(step, steps); d.Action != player.ActionRender {
		step = d.Step
	}

	info := player.LessonInfo{Title: lesson.Title}
	if lesson.UnitID != nil {
		info.UnitID = *lesson.UnitID
		if unit, err := s.repos.Units.GetUnit(ctx, course.ID, *lesson.UnitID); err == nil {
			info.UnitTitle = unit.Title
		} else {
			s.logger.Warn("failed to load unit of lesson", zap.Int("lesson_id", lesson.ID), zap.Error(err))
		}
	}

	return player.SetCurrentLesson{
		LessonID:       lesson.ID,
		Step:           step,
		AvailableSteps: steps,
		Lesson:         info,
	}, nil
}

// hasQuiz reports quiz presence; a failed read counts as no quiz
func (s *playerService) hasQuiz(ctx context.Context, lessonID int) bool {
	has, err := s.repos.Quizzes.HasLessonQuiz(ctx, lessonID)
	if err != nil {
		s.logger.Warn("failed to check lesson quiz", zap.Int("lesson_id", lessonID), zap.Error(err))
		return false
	}
	return has
}

// completion computes the step completion status of a lesson. A step without
// blocks is complete; the test step needs a best attempt at the pass mark.
func (s *playerService) completion(ctx context.Context, userID int, blocks []models.LessonContent, completed map[int]bool, lessonID int) models.StepCompletionStatus {
	status := models.StepCompletionStatus{
		Theory:  stepBlocksDone(blocks, completed, player.StepTheory),
		Example: stepBlocksDone(blocks, completed, player.StepExample),
	}

	best, err := s.repos.Quizzes.BestLessonAttempt(ctx, userID, lessonID)
	if err != nil {
		s.logger.Warn("failed to load best quiz attempt", zap.Int("lesson_id", lessonID), zap.Error(err))
		return status
	}
	if best != nil {
		status.Test = s.rules.QuizPassed(best.Score, best.TotalPoints)
	}
	return status
}

func stepBlocksDone(blocks []models.LessonContent, completed map[int]bool, step player.Step) bool {
	for _, b := range blocks {
		if player.ContentStep(b.ContentType) == step && !completed[b.ID] {
			return false
		}
	}
	return true
}

func continuePath(slug string, items []player.NavigationItem) string {
	next := player.NextUncompleted(items)
	if next == nil {
		return player.CoursePath(slug)
	}
	return player.ItemPath(slug, *next)
}

func navLink(slug string, it *player.NavigationItem) *models.NavLink {
	if it == nil {
		return nil
	}
	return &models.NavLink{
		ID:         it.ID,
		Title:      it.Title,
		IsUnitQuiz: it.IsUnitQuiz,
		URL:        player.ItemPath(slug, *it),
	}
}
