package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursepath/backend/internal/models"
	"github.com/coursepath/backend/internal/player"
	"github.com/coursepath/backend/internal/sessions"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxApplyAttempts = 3

// SessionStore defines methods for session state storage
type SessionStore interface {
	// Get retrieves a session
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the session.
	//
	// Returns the state or sessions.ErrNotFound.
	Get(ctx context.Context, id string) (player.State, error)
	// Create stores a new session
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the session.
	// "state" is the initial state.
	// "ttl" is the lifetime of the session.
	//
	// Returns an error if any.
	Create(ctx context.Context, id string, state player.State, ttl time.Duration) error
	// Replace stores a state if the stored version still matches
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the session.
	// "expectedVersion" is the version the state was derived from.
	// "state" is the new state.
	// "ttl" is the renewed lifetime of the session.
	//
	// Returns sessions.ErrConflict when the session changed meanwhile.
	Replace(ctx context.Context, id string, expectedVersion int64, state player.State, ttl time.Duration) error
	// Delete removes a session
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the session.
	//
	// Returns an error if any.
	Delete(ctx context.Context, id string) error
}

// PlanBuilder defines the player operations sessions are built from
type PlanBuilder interface {
	// BuildPlan loads the course plan of a learner
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	//
	// Returns the plan and an error if any.
	BuildPlan(ctx context.Context, slug string, userID int) (*LearnPlan, error)
	// CurrentLesson resolves the event that points a session at a lesson
	//
	// "ctx" is the context for the request.
	// "slug" is the slug of the course.
	// "userID" is the ID of the user.
	// "req" is the requested lesson and step.
	//
	// Returns the event and an error if any.
	CurrentLesson(ctx context.Context, slug string, userID int, req SetCurrentRequest) (player.SetCurrentLesson, error)
}

// MountedSession is a newly created session
type MountedSession struct {
	ID   string     `json:"id"`
	Plan *LearnPlan `json:"plan"`
}

type sessionService struct {
	store   SessionStore
	planner PlanBuilder
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(store SessionStore, planner PlanBuilder, ttl time.Duration, logger *zap.Logger) *sessionService {
	return &sessionService{
		store:   store,
		planner: planner,
		ttl:     ttl,
		logger:  logger,
	}
}

// Mount builds a fresh plan and stores its state under a new session id
func (s *sessionService) Mount(ctx context.Context, slug string, userID int) (*MountedSession, error) {
	plan, err := s.planner.BuildPlan(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if err := s.store.Create(ctx, id, plan.State, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &MountedSession{ID: id, Plan: plan}, nil
}

// Get retrieves a session owned by the user
func (s *sessionService) Get(ctx context.Context, userID int, id string) (player.State, error) {
	state, err := s.store.Get(ctx, id)
	if errors.Is(err, sessions.ErrNotFound) {
		return player.State{}, fmt.Errorf("session not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return player.State{}, err
	}
	if state.UserID != userID {
		return player.State{}, models.ErrAccessDenied
	}
	return state, nil
}

// SetCurrent points the session at a lesson step or unit quiz. Available steps
// are resolved on the server; a step the lesson lacks becomes its first step.
func (s *sessionService) SetCurrent(ctx context.Context, userID int, id string, req SetCurrentRequest) (player.State, error) {
	state, err := s.Get(ctx, userID, id)
	if err != nil {
		return player.State{}, err
	}
	event, err := s.planner.CurrentLesson(ctx, state.CourseSlug, userID, req)
	if err != nil {
		return player.State{}, err
	}
	return s.Apply(ctx, userID, id, event)
}

// UpdateProgress merges a progress patch into the session
func (s *sessionService) UpdateProgress(ctx context.Context, userID int, id string, patch player.UpdateProgress) (player.State, error) {
	return s.Apply(ctx, userID, id, patch)
}

// Apply reduces events over the stored state and stores the result. A concurrent
// change is retried against the newer state.
func (s *sessionService) Apply(ctx context.Context, userID int, id string, events ...player.Event) (player.State, error) {
	for attempt := 0; ; attempt++ {
		current, err := s.Get(ctx, userID, id)
		if err != nil {
			return player.State{}, err
		}

		next := current
		for _, e := range events {
			next = player.Reduce(next, e)
		}
		if next.Version == current.Version {
			return current, nil
		}

		err = s.store.Replace(ctx, id, current.Version, next, s.ttl)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, sessions.ErrConflict) || attempt+1 >= maxApplyAttempts {
			return player.State{}, fmt.Errorf("failed to store session: %w", err)
		}
	}
}

// Patch is Apply for write paths: session problems are logged and yield nil
// because the session is a cache and must not fail a committed write
func (s *sessionService) Patch(ctx context.Context, userID int, id string, events ...player.Event) *player.State {
	if id == "" || len(events) == 0 {
		return nil
	}
	state, err := s.Apply(ctx, userID, id, events...)
	if err != nil {
		s.logger.Warn("failed to patch session", zap.String("session_id", id), zap.Error(err))
		return nil
	}
	return &state
}

// Optimistic applies event to the session before commit runs so readers see the
// change immediately. When commit fails the pre-apply snapshot is restored,
// unless the session moved on in the meantime. The returned error is commit's;
// session failures are logged and yield a nil state.
func (s *sessionService) Optimistic(ctx context.Context, userID int, id string, event player.Event, commit func(ctx context.Context) error) (*player.State, error) {
	if id == "" || event == nil {
		return nil, commit(ctx)
	}

	before, err := s.Get(ctx, userID, id)
	if err != nil {
		s.logger.Warn("session unavailable for optimistic update", zap.String("session_id", id), zap.Error(err))
		return nil, commit(ctx)
	}

	tentative := player.Reduce(before, event)
	applied := false
	if tentative.Version != before.Version {
		if err := s.store.Replace(ctx, id, before.Version, tentative, s.ttl); err != nil {
			s.logger.Warn("failed to apply optimistic update", zap.String("session_id", id), zap.Error(err))
		} else {
			applied = true
		}
	}

	if err := commit(ctx); err != nil {
		if applied {
			s.rollback(ctx, id, before, tentative)
		}
		return nil, err
	}

	if !applied {
		return &before, nil
	}
	return &tentative, nil
}

// rollback restores before if the stored session is still tentative. The
// restored state gets a newer version so readers of tentative notice the change.
func (s *sessionService) rollback(ctx context.Context, id string, before, tentative player.State) {
	restored := before
	restored.Version = tentative.Version + 1
	err := s.store.Replace(ctx, id, tentative.Version, restored, s.ttl)
	switch {
	case err == nil:
		s.logger.Info("optimistic update rolled back", zap.String("session_id", id))
	case errors.Is(err, sessions.ErrConflict):
		s.logger.Warn("session changed before rollback, keeping newer state", zap.String("session_id", id))
	default:
		s.logger.Error("failed to roll back session", zap.String("session_id", id), zap.Error(err))
	}
}

// Unmount deletes a session owned by the user
func (s *sessionService) Unmount(ctx context.Context, userID int, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// FollowUpEvents are the session transitions implied by a committed progress write
func FollowUpEvents(lessonID int, result *models.ProgressResult) []player.Event {
	if result == nil || !result.Success {
		return nil
	}

	var events []player.Event
	if result.StepCompleted != "" {
		if step, err := player.ParseStep(result.StepCompleted); err == nil && lessonID != 0 {
			events = append(events, player.MarkStepComplete{LessonID: lessonID, Step: step})
		}
	}
	if result.LessonComplete && lessonID != 0 {
		events = append(events, player.MarkLessonComplete{LessonID: lessonID})
	}
	if result.UnitQuizPassed && result.UnitID != 0 {
		events = append(events, player.MarkLessonComplete{LessonID: result.UnitID, IsUnitQuiz: true})
	}

	patch := player.UpdateProgress{TotalXP: result.TotalXP, Streak: result.CurrentStreak}
	if result.Progress != nil {
		completed, total := result.Progress.Completed, result.Progress.Total
		patch.Completed = &completed
		patch.Total = &total
	}
	if patch.TotalXP != nil || patch.Streak != nil || patch.Completed != nil {
		events = append(events, patch)
	}
	return events
}
