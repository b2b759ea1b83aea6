package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockStreakRepository is a mock implementation of StreakRepository
type mockStreakRepository struct {
	reset int64
	err   error

	gotDay time.Time
	calls  int
}

func (m *mockStreakRepository) ResetStaleStreaks(ctx context.Context, day time.Time) (int64, error) {
	m.calls++
	m.gotDay = day
	if m.err != nil {
		return 0, m.err
	}
	return m.reset, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewStreakExpiry(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		expectedErr bool
	}{
		{name: "nightly", expr: "10 0 * * *"},
		{name: "descriptor", expr: "@daily"},
		{name: "too few fields", expr: "10 0 *", expectedErr: true},
		{name: "garbage", expr: "whenever", expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := NewStreakExpiry(tt.expr, &mockStreakRepository{}, zap.NewNop())

			if tt.expectedErr {
				assert.Error(t, err)
				assert.Nil(t, job)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, job)
		})
	}
}

func TestStreakExpiry_NextRun(t *testing.T) {
	job, err := NewStreakExpiry("10 0 * * *", &mockStreakRepository{}, zap.NewNop())
	require.NoError(t, err)
	job.now = fixedClock(time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2026, 3, 15, 0, 10, 0, 0, time.UTC), job.NextRun())
}

func TestStreakExpiry_RunOnce(t *testing.T) {
	tests := []struct {
		name           string
		now            time.Time
		repo           *mockStreakRepository
		expectedCutoff time.Time
		expectedReset  int64
		expectedErr    bool
	}{
		{
			name:           "resets streaks older than yesterday",
			now:            time.Date(2026, 3, 15, 0, 10, 0, 0, time.UTC),
			repo:           &mockStreakRepository{reset: 12},
			expectedCutoff: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			expectedReset:  12,
		},
		{
			name:           "month boundary",
			now:            time.Date(2026, 3, 1, 0, 10, 0, 0, time.UTC),
			repo:           &mockStreakRepository{},
			expectedCutoff: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "repository error",
			now:            time.Date(2026, 3, 15, 0, 10, 0, 0, time.UTC),
			repo:           &mockStreakRepository{err: errors.New("database down")},
			expectedCutoff: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			expectedErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := NewStreakExpiry("10 0 * * *", tt.repo, zap.NewNop())
			require.NoError(t, err)
			job.now = fixedClock(tt.now)

			reset, err := job.RunOnce(context.Background())

			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedReset, reset)
			assert.Equal(t, 1, tt.repo.calls)
			assert.Equal(t, tt.expectedCutoff, tt.repo.gotDay)
		})
	}
}

func TestStreakExpiry_StartStop(t *testing.T) {
	repo := &mockStreakRepository{}
	job, err := NewStreakExpiry("0 0 1 1 *", repo, zap.NewNop())
	require.NoError(t, err)

	job.Start()
	job.Stop()

	assert.Equal(t, 0, repo.calls)
}
