package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout bounds a single expiry run
const runTimeout = 2 * time.Minute

// StreakRepository defines the profile operations used by the streak expiry job
type StreakRepository interface {
	// ResetStaleStreaks zeroes streaks whose last activity is before day
	ResetStaleStreaks(ctx context.Context, day time.Time) (int64, error)
}

// StreakExpiry zeroes learning streaks of users who skipped a day.
// Streaks are otherwise only updated when the user earns progress, so a
// profile page would keep showing a broken streak until the next lesson.
type StreakExpiry struct {
	repo     StreakRepository
	logger   *zap.Logger
	schedule cron.Schedule
	now      func() time.Time
	stopChan chan struct{}
	done     chan struct{}
}

// NewStreakExpiry creates a streak expiry job running on the given standard
// cron expression, evaluated in UTC
func NewStreakExpiry(expr string, repo StreakRepository, logger *zap.Logger) (*StreakExpiry, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return &StreakExpiry{
		repo:     repo,
		logger:   logger,
		schedule: schedule,
		now:      func() time.Time { return time.Now().UTC() },
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start starts the job loop
func (j *StreakExpiry) Start() {
	j.logger.Info("Streak expiry job started", zap.Time("next_run", j.NextRun()))
	go j.run()
}

// Stop stops the job loop and waits for a running expiry to finish
func (j *StreakExpiry) Stop() {
	close(j.stopChan)
	<-j.done
	j.logger.Info("Streak expiry job stopped")
}

// NextRun returns the next scheduled run after the current time
func (j *StreakExpiry) NextRun() time.Time {
	return j.schedule.Next(j.now())
}

func (j *StreakExpiry) run() {
	defer close(j.done)

	for {
		timer := time.NewTimer(time.Until(j.NextRun()))
		select {
		case <-timer.C:
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			_, _ = j.RunOnce(ctx)
			cancel()
		case <-j.stopChan:
			timer.Stop()
			return
		}
	}
}

// RunOnce resets every streak whose last activity is older than yesterday
// (UTC). A user active yesterday still has today to keep the streak.
func (j *StreakExpiry) RunOnce(ctx context.Context) (int64, error) {
	y, m, d := j.now().Date()
	cutoff := time.Date(y, m, d-1, 0, 0, 0, 0, time.UTC)

	reset, err := j.repo.ResetStaleStreaks(ctx, cutoff)
	if err != nil {
		j.logger.Error("Failed to reset stale streaks", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}
	if reset > 0 {
		j.logger.Info("Reset stale streaks", zap.Int64("count", reset), zap.Time("cutoff", cutoff))
	}
	return reset, nil
}
