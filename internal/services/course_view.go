package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursepath/backend/internal/config"
	"github.com/coursepath/backend/internal/models"
	"github.com/coursepath/backend/internal/observability"
	"github.com/coursepath/backend/internal/player"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CourseRepository defines methods for course data access
type CourseRepository interface {
	// GetBySlug retrieves a published course by slug
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	//
	// Returns the course or an error wrapping models.ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*models.Course, error)
	// GetStats computes the course aggregate
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns the course stats and an error if any.
	GetStats(ctx context.Context, courseID int) (*models.CourseStats, error)
}

// UnitRepository defines methods for unit data access
type UnitRepository interface {
	// ListWithLessons retrieves the units of a course with their lessons
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of units and an error if any.
	ListWithLessons(ctx context.Context, courseID int) ([]models.UnitWithLessons, error)
	// FlatLessons retrieves all lessons of a course ordered by their course-level index
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of lessons and an error if any.
	FlatLessons(ctx context.Context, courseID int) ([]models.Lesson, error)
	// GetUnit retrieves a unit that belongs to the course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "unitID" is the ID of the unit.
	//
	// Returns the unit or an error wrapping models.ErrNotFound.
	GetUnit(ctx context.Context, courseID, unitID int) (*models.Unit, error)
}

// LessonRepository defines methods for lesson data access
type LessonRepository interface {
	// GetWithContent retrieves a lesson of the course with its content blocks
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the lesson or an error wrapping models.ErrNotFound.
	GetWithContent(ctx context.Context, courseID, lessonID int) (*models.LessonWithContent, error)
}

// QuizRepository defines methods for quiz data access
type QuizRepository interface {
	// LessonQuestions retrieves the quiz of a lesson
	//
	// "ctx" is the context for the request.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the questions with their options and an error if any.
	LessonQuestions(ctx context.Context, lessonID int) ([]models.QuizQuestion, error)
	// UnitQuestions retrieves the quiz of a unit
	//
	// "ctx" is the context for the request.
	// "unitID" is the ID of the unit.
	//
	// Returns the questions with their options and an error if any.
	UnitQuestions(ctx context.Context, unitID int) ([]models.QuizQuestion, error)
	// HasLessonQuiz checks if a lesson owns quiz questions
	//
	// "ctx" is the context for the request.
	// "lessonID" is the ID of the lesson.
	//
	// Returns a boolean and an error if any.
	HasLessonQuiz(ctx context.Context, lessonID int) (bool, error)
	// UnitQuestionCounts counts the quiz questions per unit of a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a map of unit ID to question count and an error if any.
	UnitQuestionCounts(ctx context.Context, courseID int) (map[int]int, error)
	// CreateAttempt stores a graded attempt with its answers
	//
	// "ctx" is the context for the request.
	// "attempt" is the graded attempt.
	// "answers" are the graded answers.
	//
	// Returns the ID of the attempt and an error if any.
	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt, answers []models.QuizAnswer) (int, error)
	// BestLessonAttempt retrieves the best attempt of a lesson quiz
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the attempt, nil when there is none, and an error if any.
	BestLessonAttempt(ctx context.Context, userID, lessonID int) (*models.QuizAttempt, error)
	// PassedLessonQuiz checks if the user passed the lesson quiz
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns a boolean and an error if any.
	PassedLessonQuiz(ctx context.Context, userID, lessonID int) (bool, error)
	// PassedUnitQuizIDs retrieves the course units whose quiz the user passed
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns a set of unit IDs and an error if any.
	PassedUnitQuizIDs(ctx context.Context, userID, courseID int) (map[int]bool, error)
}

// EnrollmentRepository defines methods for enrollment data access
type EnrollmentRepository interface {
	// Get retrieves the enrollment of a user in a course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns the enrollment or models.ErrNotEnrolled.
	Get(ctx context.Context, userID, courseID int) (*models.Enrollment, error)
	// UpdateProgress stores the course progress percentage
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	// "percentage" is the new progress percentage.
	//
	// Returns an error if any.
	UpdateProgress(ctx context.Context, enrollmentID, percentage int) error
	// CountCompletedCourses counts the courses the user completed
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns the number of completed courses and an error if any.
	CountCompletedCourses(ctx context.Context, userID int) (int, error)
	// Claims retrieves the claimed rewards of an enrollment
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	//
	// Returns the claims and an error if any.
	Claims(ctx context.Context, enrollmentID int) (models.Claims, error)
	// AddClaim records a claim
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	// "kind" is the kind of the claim.
	// "key" is the claimed unit ID or unit-content group.
	//
	// Returns false when the claim already existed and an error if any.
	AddClaim(ctx context.Context, enrollmentID int, kind models.ClaimKind, key string) (bool, error)
	// RemoveClaim deletes a claim
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	// "kind" is the kind of the claim.
	// "key" is the claimed unit ID or unit-content group.
	//
	// Returns an error if any.
	RemoveClaim(ctx context.Context, enrollmentID int, kind models.ClaimKind, key string) error
}

// ProgressRepository defines methods for lesson and content progress data access
type ProgressRepository interface {
	// CompletedLessonIDs retrieves the lessons the enrollment completed
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	//
	// Returns a set of lesson IDs and an error if any.
	CompletedLessonIDs(ctx context.Context, enrollmentID int) (map[int]bool, error)
	// MarkLessonStarted creates an in-progress lesson row if there is none
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	// "lessonID" is the ID of the lesson.
	//
	// Returns an error if any.
	MarkLessonStarted(ctx context.Context, enrollmentID, lessonID int) error
	// MarkLessonCompleted completes a lesson
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	// "lessonID" is the ID of the lesson.
	//
	// Returns false when the lesson was already completed and an error if any.
	MarkLessonCompleted(ctx context.Context, enrollmentID, lessonID int) (bool, error)
	// GetContentProgress retrieves the progress of a content block
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	// "contentID" is the ID of the content block.
	//
	// Returns the progress, nil when there is none, and an error if any.
	GetContentProgress(ctx context.Context, enrollmentID, contentID int) (*models.ContentProgress, error)
	// SaveContentProgress upserts the progress of a content block
	//
	// "ctx" is the context for the request.
	// "p" is the progress to store.
	//
	// Returns an error if any.
	SaveContentProgress(ctx context.Context, p models.ContentProgress) error
	// CompletedContentIDs retrieves the completed content blocks of a lesson
	//
	// "ctx" is the context for the request.
	// "enrollmentID" is the ID of the enrollment.
	// "lessonID" is the ID of the lesson.
	//
	// Returns a set of content block IDs and an error if any.
	CompletedContentIDs(ctx context.Context, enrollmentID, lessonID int) (map[int]bool, error)
}

// XPRepository defines methods for XP and profile data access
type XPRepository interface {
	// Award records an XP transaction once per source
	//
	// "ctx" is the context for the request.
	// "t" is the transaction to record.
	//
	// Returns false when the source was already rewarded and an error if any.
	Award(ctx context.Context, t models.XPTransaction) (bool, error)
	// GetProfile retrieves the gamification profile of a user
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns the profile and an error if any.
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
	// UpdateStreak stores the streak counters
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "current" is the current streak in days.
	// "longest" is the longest streak in days.
	// "day" is the day of the activity.
	//
	// Returns an error if any.
	UpdateStreak(ctx context.Context, userID, current, longest int, day time.Time) error
}

// Repositories bundles the data access the services share
type Repositories struct {
	Courses     CourseRepository
	Units       UnitRepository
	Lessons     LessonRepository
	Quizzes     QuizRepository
	Enrollments EnrollmentRepository
	Progress    ProgressRepository
	XP          XPRepository
}

// courseView is everything known about a course for one learner
type courseView struct {
	course            *models.Course
	enrollment        *models.Enrollment
	units             []models.UnitWithLessons
	flatLessons       []models.Lesson
	unitQuestions     map[int]int
	completedLessons  map[int]bool
	passedUnitQuizzes map[int]bool
	claims            models.Claims
	stats             *models.CourseStats
	profile           *models.Profile
}

func (v *courseView) unitsWithQuiz() map[int]bool {
	ids := make([]int, 0, len(v.units))
	for _, u := range v.units {
		ids = append(ids, u.ID)
	}
	return player.UnitsWithQuiz(ids, v.unitQuestions)
}

func (v *courseView) plan(userID int) player.Plan {
	p := player.Plan{
		UserID:            userID,
		CourseID:          v.course.ID,
		CourseSlug:        v.course.Slug,
		Units:             v.units,
		FlatLessons:       v.flatLessons,
		UnitsWithQuiz:     v.unitsWithQuiz(),
		CompletedLessons:  v.completedLessons,
		PassedUnitQuizzes: v.passedUnitQuizzes,
	}
	if v.stats != nil {
		p.LessonCount = v.stats.LessonCount
	}
	if v.profile != nil {
		p.TotalXP = v.profile.TotalXP
		streak := v.profile.CurrentStreak
		p.Streak = &streak
	}
	return p
}

func (v *courseView) items() []player.NavigationItem {
	return player.ApplyCompletion(
		player.Navigation(v.units, v.flatLessons, v.unitsWithQuiz()),
		v.completedLessons,
		v.passedUnitQuizzes,
	)
}

func (v *courseView) sidebar(items []player.NavigationItem) []player.UnitSection {
	return player.BuildSidebar(v.units, items, v.claims.Units)
}

func (v *courseView) lessonCount() int {
	if v.stats == nil {
		return 0
	}
	return v.stats.LessonCount
}

// courseLoader gates access to a course and loads a courseView
type courseLoader struct {
	repos  Repositories
	logger *zap.Logger
}

// enrolled resolves the course and the learner's enrollment.
// A missing enrollment is returned as models.ErrNotEnrolled.
func (l *courseLoader) enrolled(ctx context.Context, slug string, userID int) (*models.Course, *models.Enrollment, error) {
	course, err := l.repos.Courses.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	enrollment, err := l.repos.Enrollments.Get(ctx, userID, course.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotEnrolled) {
			return course, nil, err
		}
		return nil, nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return course, enrollment, nil
}

// load reads the course structure and learner progress in parallel. A read that
// fails leaves its part empty and is logged, unless strict is set, in which case
// the first failure is returned. enrollment may be nil for a visitor.
func (l *courseLoader) load(ctx context.Context, course *models.Course, enrollment *models.Enrollment, userID int, strict bool) (*courseView, error) {
	ctx, span := observability.Tracer().Start(ctx, "courseLoader.load")
	defer span.End()
	span.SetAttributes(
		attribute.Int("course.id", course.ID),
		attribute.Bool("strict", strict),
	)

	v := &courseView{
		course:            course,
		enrollment:        enrollment,
		units:             []models.UnitWithLessons{},
		unitQuestions:     map[int]int{},
		completedLessons:  map[int]bool{},
		passedUnitQuizzes: map[int]bool{},
		claims:            models.Claims{Units: map[int]bool{}, UnitContents: map[string]bool{}},
	}

	g, gctx := errgroup.WithContext(ctx)
	read := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			err := fn(gctx)
			if err == nil {
				return nil
			}
			if strict {
				return fmt.Errorf("failed to load %s: %w", name, err)
			}
			l.logger.Warn("course read failed, continuing without it",
				zap.String("read", name),
				zap.Int("course_id", course.ID),
				zap.Error(err),
			)
			return nil
		})
	}

	read("units", func(ctx context.Context) error {
		units, err := l.repos.Units.ListWithLessons(ctx, course.ID)
		if err == nil {
			v.units = units
		}
		return err
	})
	read("lessons", func(ctx context.Context) error {
		lessons, err := l.repos.Units.FlatLessons(ctx, course.ID)
		if err == nil {
			v.flatLessons = lessons
		}
		return err
	})
	read("unit quizzes", func(ctx context.Context) error {
		counts, err := l.repos.Quizzes.UnitQuestionCounts(ctx, course.ID)
		if err == nil {
			v.unitQuestions = counts
		}
		return err
	})
	read("stats", func(ctx context.Context) error {
		stats, err := l.repos.Courses.GetStats(ctx, course.ID)
		if err == nil {
			v.stats = stats
		}
		return err
	})
	if enrollment != nil {
		read("lesson progress", func(ctx context.Context) error {
			completed, err := l.repos.Progress.CompletedLessonIDs(ctx, enrollment.ID)
			if err == nil {
				v.completedLessons = completed
			}
			return err
		})
		read("passed unit quizzes", func(ctx context.Context) error {
			passed, err := l.repos.Quizzes.PassedUnitQuizIDs(ctx, userID, course.ID)
			if err == nil {
				v.passedUnitQuizzes = passed
			}
			return err
		})
		read("claims", func(ctx context.Context) error {
			claims, err := l.repos.Enrollments.Claims(ctx, enrollment.ID)
			if err == nil {
				v.claims = claims
			}
			return err
		})
		read("profile", func(ctx context.Context) error {
			profile, err := l.repos.XP.GetProfile(ctx, userID)
			if err == nil {
				v.profile = profile
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return v, nil
}

// totalXP estimates the XP a course can award
func totalXP(stats *models.CourseStats, rules config.XPRules) int {
	if stats == nil {
		return 0
	}
	total := stats.RewardedBlocks*rules.ContentCompletion + stats.UnitCount*rules.UnitCompletion
	for _, m := range rules.CourseMilestones {
		total += m.XP
	}
	return total
}
