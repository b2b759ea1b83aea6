package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/coursepath/backend/internal/config"
	"github.com/coursepath/backend/internal/models"
	"github.com/coursepath/backend/internal/observability"
	"github.com/coursepath/backend/internal/player"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type progressService struct {
	loader *courseLoader
	repos  Repositories
	rules  config.XPRules
	logger *zap.Logger
	now    func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(repos Repositories, rules config.XPRules, logger *zap.Logger) *progressService {
	return &progressService{
		loader: &courseLoader{repos: repos, logger: logger},
		repos:  repos,
		rules:  rules,
		logger: logger,
		now:    time.Now,
	}
}

// SaveContentProgress stores the progress of a content block. The first completion
// of a theory or example block is rewarded, and completing a block may complete
// the lesson.
func (s *progressService) SaveContentProgress(ctx context.Context, slug string, userID, lessonID, contentID int, req models.ContentProgressRequest) (*models.ProgressResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "progress.SaveContentProgress")
	defer span.End()
	span.SetAttributes(attribute.Int("lesson.id", lessonID), attribute.Int("content.id", contentID))

	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	lesson, err := s.repos.Lessons.GetWithContent(ctx, course.ID, lessonID)
	if err != nil {
		return nil, err
	}
	block, ok := findBlock(lesson.Content, contentID)
	if !ok {
		return nil, fmt.Errorf("lesson content not found: %w", models.ErrNotFound)
	}

	existing, err := s.repos.Progress.GetContentProgress(ctx, enrollment.ID, contentID)
	if err != nil {
		return nil, err
	}
	wasCompleted := existing != nil && existing.Completed

	err = s.repos.Progress.SaveContentProgress(ctx, models.ContentProgress{
		EnrollmentID:    enrollment.ID,
		LessonContentID: contentID,
		WatchedSeconds:  req.WatchedSeconds,
		Completed:       req.Completed,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repos.Progress.MarkLessonStarted(ctx, enrollment.ID, lessonID); err != nil {
		s.logger.Warn("failed to mark lesson started", zap.Int("lesson_id", lessonID), zap.Error(err))
	}

	result := &models.ProgressResult{Success: true, LessonID: lessonID, Message: "Progress saved"}
	if !req.Completed {
		return result, nil
	}

	if step := player.ContentStep(block.ContentType); step.Valid() {
		result.StepCompleted = step.String()
	}

	if wasCompleted {
		result.IsRewatch = true
		result.Message = "Already completed"
	} else if block.ContentType.AwardsXP() {
		if err := s.award(ctx, result, models.XPTransaction{
			UserID:      userID,
			Amount:      s.rules.ContentCompletion,
			SourceType:  models.XPSourceContent,
			SourceID:    strconv.Itoa(contentID),
			Description: fmt.Sprintf("Completed %q", block.Title),
		}); err != nil {
			return nil, err
		}
		result.Message = fmt.Sprintf("You earned %d XP!", result.XPAwarded)
	}

	if err := s.completeLessonIfDone(ctx, course, enrollment, userID, lesson, result); err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitLessonQuiz grades a lesson quiz, stores the attempt and on a pass
// completes the lesson when its content is complete
func (s *progressService) SubmitLessonQuiz(ctx context.Context, slug string, userID, lessonID int, req models.SubmitQuizRequest) (*models.QuizResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "progress.SubmitLessonQuiz")
	defer span.End()
	span.SetAttributes(attribute.Int("lesson.id", lessonID))

	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	lesson, err := s.repos.Lessons.GetWithContent(ctx, course.ID, lessonID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repos.Quizzes.LessonQuestions(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson quiz: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("lesson quiz not found: %w", models.ErrNotFound)
	}

	passedBefore, err := s.repos.Quizzes.PassedLessonQuiz(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	result, answers, err := s.grade(questions, req.Answers)
	if err != nil {
		return nil, err
	}
	result.LessonID = lessonID

	attempt := &models.QuizAttempt{
		UserID:      userID,
		LessonID:    &lessonID,
		Score:       result.Score,
		TotalPoints: result.TotalPoints,
		Passed:      result.Passed,
	}
	attemptID, err := s.repos.Quizzes.CreateAttempt(ctx, attempt, answers)
	if err != nil {
		return nil, err
	}

	if !result.Passed {
		result.Message = fmt.Sprintf("You need %d%% to pass. Try again!", s.rules.QuizPassPercent)
		return result, nil
	}

	result.StepCompleted = player.StepTest.String()
	result.Message = "Quiz passed!"
	if !passedBefore {
		if amount := s.rules.LessonQuizXP(result.Score, result.TotalPoints); amount > 0 {
			err := s.award(ctx, &result.ProgressResult, models.XPTransaction{
				UserID:      userID,
				Amount:      amount,
				SourceType:  models.XPSourceQuiz,
				SourceID:    strconv.Itoa(lessonID),
				Description: fmt.Sprintf("Passed quiz %q (attempt %d)", lesson.Title, attemptID),
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if err := s.completeLessonIfDone(ctx, course, enrollment, userID, lesson, &result.ProgressResult); err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitUnitQuiz grades a unit quiz and stores the attempt. A pass runs the
// course progress side effects, which also reward a unit that became complete.
func (s *progressService) SubmitUnitQuiz(ctx context.Context, slug string, userID, unitID int, req models.SubmitQuizRequest) (*models.QuizResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "progress.SubmitUnitQuiz")
	defer span.End()
	span.SetAttributes(attribute.Int("unit.id", unitID))

	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.Units.GetUnit(ctx, course.ID, unitID); err != nil {
		return nil, err
	}

	questions, err := s.repos.Quizzes.UnitQuestions(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit quiz: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("unit quiz not found: %w", models.ErrNotFound)
	}

	result, answers, err := s.grade(questions, req.Answers)
	if err != nil {
		return nil, err
	}
	result.UnitID = unitID

	attempt := &models.QuizAttempt{
		UserID:      userID,
		UnitID:      &unitID,
		Score:       result.Score,
		TotalPoints: result.TotalPoints,
		Passed:      result.Passed,
	}
	if _, err := s.repos.Quizzes.CreateAttempt(ctx, attempt, answers); err != nil {
		return nil, err
	}

	if !result.Passed {
		result.Message = fmt.Sprintf("You need %d%% to pass. Try again!", s.rules.QuizPassPercent)
		return result, nil
	}

	result.UnitQuizPassed = true
	result.Message = "Unit quiz passed!"
	if err := s.afterProgress(ctx, course, enrollment, userID, unitID, &result.ProgressResult); err != nil {
		return nil, err
	}
	return result, nil
}

// ClaimUnitXP rewards a complete unit once
func (s *progressService) ClaimUnitXP(ctx context.Context, slug string, userID, unitID int) (*models.ProgressResult, error) {
	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	view, err := s.loader.load(ctx, course, enrollment, userID, true)
	if err != nil {
		return nil, err
	}
	section, ok := player.FindSection(view.sidebar(view.items()), unitID)
	if !ok {
		return nil, fmt.Errorf("unit not found: %w", models.ErrNotFound)
	}
	if section.Claimed {
		return nil, models.ErrAlreadyClaimed
	}
	if !section.Complete {
		return nil, models.ErrUnitIncomplete
	}

	result := &models.ProgressResult{Success: true, UnitID: unitID}
	if err := s.claimUnit(ctx, enrollment, userID, section, result); err != nil {
		return nil, err
	}
	result.Message = fmt.Sprintf("Unit completed! You earned %d XP!", result.XPAwarded)
	s.attachTotals(ctx, userID, result)
	return result, nil
}

// ClaimUnitContentXP rewards a unit-content group once all of its units are complete.
// The reward grows with the number of groups already claimed in the course.
func (s *progressService) ClaimUnitContentXP(ctx context.Context, slug string, userID int, group string) (*models.ProgressResult, error) {
	course, enrollment, err := s.loader.enrolled(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	view, err := s.loader.load(ctx, course, enrollment, userID, true)
	if err != nil {
		return nil, err
	}

	var found *player.ContentGroup
	for _, g := range player.ContentGroups(view.sidebar(view.items()), view.claims.UnitContents) {
		if g.Name == group {
			found = &g
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("unit content group not found: %w", models.ErrNotFound)
	}
	if found.Claimed {
		return nil, models.ErrAlreadyClaimed
	}
	if !found.Complete {
		return nil, models.ErrUnitIncomplete
	}

	added, err := s.repos.Enrollments.AddClaim(ctx, enrollment.ID, models.ClaimKindUnitContent, group)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, models.ErrAlreadyClaimed
	}

	result := &models.ProgressResult{Success: true}
	err = s.award(ctx, result, models.XPTransaction{
		UserID:      userID,
		Amount:      s.rules.UnitContentReward(len(view.claims.UnitContents)),
		SourceType:  models.XPSourceUnitContent,
		SourceID:    fmt.Sprintf("%d-%s", course.ID, group),
		Description: fmt.Sprintf("Completed %s", group),
	})
	if err != nil {
		s.releaseClaim(ctx, enrollment.ID, models.ClaimKindUnitContent, group)
		return nil, err
	}
	result.Message = fmt.Sprintf("You earned %d XP!", result.XPAwarded)
	s.attachTotals(ctx, userID, result)
	return result, nil
}

// completeLessonIfDone completes the lesson when every theory and example block
// is complete and its quiz, if any, is passed
func (s *progressService) completeLessonIfDone(ctx context.Context, course *models.Course, enrollment *models.Enrollment, userID int, lesson *models.LessonWithContent, result *models.ProgressResult) error {
	completed, err := s.repos.Progress.CompletedContentIDs(ctx, enrollment.ID, lesson.ID)
	if err != nil {
		return err
	}
	for _, b := range lesson.Content {
		if b.ContentType.AwardsXP() && !completed[b.ID] {
			s.attachTotals(ctx, userID, result)
			return nil
		}
	}

	hasQuiz, err := s.repos.Quizzes.HasLessonQuiz(ctx, lesson.ID)
	if err != nil {
		return err
	}
	if hasQuiz {
		passed, err := s.repos.Quizzes.PassedLessonQuiz(ctx, userID, lesson.ID)
		if err != nil {
			return err
		}
		if !passed {
			s.attachTotals(ctx, userID, result)
			return nil
		}
	}

	first, err := s.repos.Progress.MarkLessonCompleted(ctx, enrollment.ID, lesson.ID)
	if err != nil {
		return err
	}
	result.LessonComplete = true
	if !first {
		s.attachTotals(ctx, userID, result)
		return nil
	}

	unitID := 0
	if lesson.UnitID != nil {
		unitID = *lesson.UnitID
	}
	return s.afterProgress(ctx, course, enrollment, userID, unitID, result)
}

// afterProgress runs the side effects of a completed lesson or a passed unit
// quiz: course progress, milestones, achievements, unit reward and streak
func (s *progressService) afterProgress(ctx context.Context, course *models.Course, enrollment *models.Enrollment, userID, unitID int, result *models.ProgressResult) error {
	view, err := s.loader.load(ctx, course, enrollment, userID, true)
	if err != nil {
		return err
	}

	items := view.items()
	progress := player.RecomputeProgress(items, view.lessonCount())
	cp := progress.ToCourseProgress()
	result.Progress = &cp

	if err := s.repos.Enrollments.UpdateProgress(ctx, enrollment.ID, progress.Percentage); err != nil {
		return err
	}

	for _, m := range s.rules.CourseMilestones {
		if progress.Percentage < m.At {
			continue
		}
		awarded, err := s.awardOnce(ctx, result, models.XPTransaction{
			UserID:      userID,
			Amount:      m.XP,
			SourceType:  models.XPSourceMilestone,
			SourceID:    fmt.Sprintf("%d-%d", course.ID, m.At),
			Description: fmt.Sprintf("%s: %s", course.Title, m.Label),
		})
		if err != nil {
			return err
		}
		if awarded {
			result.MilestoneResults = append(result.MilestoneResults, models.MilestoneResult{
				Threshold: m.At,
				XP:        m.XP,
				Message:   m.Label,
			})
		}
	}

	if progress.Percentage >= 100 {
		if err := s.awardAchievements(ctx, userID, result); err != nil {
			return err
		}
	}

	if unitID != 0 && !view.claims.Units[unitID] {
		section, ok := player.FindSection(view.sidebar(items), unitID)
		if ok && section.Complete {
			err := s.claimUnit(ctx, enrollment, userID, section, result)
			if err != nil && !errors.Is(err, models.ErrAlreadyClaimed) {
				return err
			}
		}
	}

	if err := s.updateStreak(ctx, userID, result); err != nil {
		s.logger.Warn("failed to update streak", zap.Int("user_id", userID), zap.Error(err))
	}

	s.attachTotals(ctx, userID, result)
	return nil
}

func (s *progressService) awardAchievements(ctx context.Context, userID int, result *models.ProgressResult) error {
	count, err := s.repos.Enrollments.CountCompletedCourses(ctx, userID)
	if err != nil {
		return err
	}
	for _, a := range s.rules.CourseAchievements {
		if count < a.At {
			continue
		}
		if _, err := s.awardOnce(ctx, result, models.XPTransaction{
			UserID:      userID,
			Amount:      a.XP,
			SourceType:  models.XPSourceAchievement,
			SourceID:    fmt.Sprintf("courses-%d", a.At),
			Description: a.Label,
		}); err != nil {
			return err
		}
	}
	return nil
}

// claimUnit records the unit claim and awards the unit reward. A failed award
// releases the claim so it can be retried.
func (s *progressService) claimUnit(ctx context.Context, enrollment *models.Enrollment, userID int, section player.UnitSection, result *models.ProgressResult) error {
	key := strconv.Itoa(section.UnitID)
	added, err := s.repos.Enrollments.AddClaim(ctx, enrollment.ID, models.ClaimKindUnit, key)
	if err != nil {
		return err
	}
	if !added {
		return models.ErrAlreadyClaimed
	}

	err = s.award(ctx, result, models.XPTransaction{
		UserID:      userID,
		Amount:      s.rules.UnitCompletion,
		SourceType:  models.XPSourceUnit,
		SourceID:    key,
		Description: fmt.Sprintf("Completed unit %q", section.Title),
	})
	if err != nil {
		s.releaseClaim(ctx, enrollment.ID, models.ClaimKindUnit, key)
		return err
	}
	return nil
}

func (s *progressService) releaseClaim(ctx context.Context, enrollmentID int, kind models.ClaimKind, key string) {
	if err := s.repos.Enrollments.RemoveClaim(ctx, enrollmentID, kind, key); err != nil {
		s.logger.Error("failed to release claim",
			zap.Int("enrollment_id", enrollmentID),
			zap.String("kind", string(kind)),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// updateStreak advances the daily streak and awards a streak milestone reached today
func (s *progressService) updateStreak(ctx context.Context, userID int, result *models.ProgressResult) error {
	profile, err := s.repos.XP.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	today := s.now().UTC()
	current, changed := nextStreak(profile.LastActivityDate, profile.CurrentStreak, today)
	result.CurrentStreak = &current
	if !changed {
		return nil
	}

	longest := max(profile.LongestStreak, current)
	if err := s.repos.XP.UpdateStreak(ctx, userID, current, longest, today); err != nil {
		return err
	}

	if th, ok := s.rules.StreakMilestone(current); ok {
		awarded, err := s.awardOnce(ctx, result, models.XPTransaction{
			UserID:      userID,
			Amount:      th.XP,
			SourceType:  models.XPSourceStreak,
			SourceID:    fmt.Sprintf("streak-%d-%d", userID, current),
			Description: th.Label,
		})
		if err != nil {
			return err
		}
		if awarded {
			result.StreakBonusAwarded = th.XP
			result.StreakBonusMessage = fmt.Sprintf("%s! +%d XP", th.Label, th.XP)
		}
	}
	return nil
}

// nextStreak returns the streak after activity on today and whether it changed.
// Activity on the same day keeps the streak, the day after extends it and any
// later day restarts it at 1.
func nextStreak(last *time.Time, current int, today time.Time) (int, bool) {
	day := truncateDay(today)
	if last == nil {
		return 1, true
	}
	lastDay := truncateDay(*last)
	switch {
	case lastDay.Equal(day):
		if current < 1 {
			return 1, true
		}
		return current, false
	case lastDay.AddDate(0, 0, 1).Equal(day):
		return current + 1, true
	default:
		return 1, true
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// award records t and adds its amount to the result when it was not awarded before
func (s *progressService) award(ctx context.Context, result *models.ProgressResult, t models.XPTransaction) error {
	_, err := s.awardOnce(ctx, result, t)
	return err
}

func (s *progressService) awardOnce(ctx context.Context, result *models.ProgressResult, t models.XPTransaction) (bool, error) {
	if t.Amount <= 0 {
		return false, nil
	}
	awarded, err := s.repos.XP.Award(ctx, t)
	if err != nil {
		return false, err
	}
	if awarded {
		result.XPAwarded += t.Amount
		s.logger.Info("xp awarded",
			zap.Int("user_id", t.UserID),
			zap.String("source_type", string(t.SourceType)),
			zap.String("source_id", t.SourceID),
			zap.Int("amount", t.Amount),
		)
	}
	return awarded, nil
}

// attachTotals adds the learner's XP total and streak to the result
func (s *progressService) attachTotals(ctx context.Context, userID int, result *models.ProgressResult) {
	profile, err := s.repos.XP.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load profile", zap.Int("user_id", userID), zap.Error(err))
		return
	}
	total := profile.TotalXP
	result.TotalXP = &total
	if result.CurrentStreak == nil {
		streak := profile.CurrentStreak
		result.CurrentStreak = &streak
	}
}

// grade scores answers against the stored options. Every answer must reference a
// question of the quiz and one of its options; unanswered questions score zero.
func (s *progressService) grade(questions []models.QuizQuestion, submitted []models.SubmittedAnswer) (*models.QuizResult, []models.QuizAnswer, error) {
	chosen := make(map[int]int, len(submitted))
	for _, a := range submitted {
		chosen[a.QuestionID] = a.OptionID
	}

	byID := make(map[int]models.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for questionID, optionID := range chosen {
		q, ok := byID[questionID]
		if !ok {
			return nil, nil, fmt.Errorf("question %d is not part of this quiz: %w", questionID, models.ErrInvalidAnswers)
		}
		if _, ok := findOption(q.Options, optionID); !ok {
			return nil, nil, fmt.Errorf("option %d does not belong to question %d: %w", optionID, questionID, models.ErrInvalidAnswers)
		}
	}

	result := &models.QuizResult{ProgressResult: models.ProgressResult{Success: true}}
	answers := make([]models.QuizAnswer, 0, len(chosen))
	for _, q := range questions {
		points := max(q.Points, 1)
		result.TotalPoints += points

		fb := models.QuestionFeedback{QuestionID: q.ID, Explanation: q.Explanation}
		for _, o := range q.Options {
			if o.IsCorrect {
				fb.CorrectOptionID = o.ID
				break
			}
		}

		if optionID, ok := chosen[q.ID]; ok {
			opt, _ := findOption(q.Options, optionID)
			fb.Correct = opt.IsCorrect
			answers = append(answers, models.QuizAnswer{QuestionID: q.ID, OptionID: optionID, IsCorrect: opt.IsCorrect})
			if opt.IsCorrect {
				result.Score += points
			}
		}
		result.Feedback = append(result.Feedback, fb)
	}

	result.Passed = s.rules.QuizPassed(result.Score, result.TotalPoints)
	return result, answers, nil
}

func findOption(options []models.QuizOption, id int) (models.QuizOption, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return models.QuizOption{}, false
}

func findBlock(blocks []models.LessonContent, id int) (models.LessonContent, bool) {
	for _, b := range blocks {
		if b.ID == id {
			return b, true
		}
	}
	return models.LessonContent{}, false
}
