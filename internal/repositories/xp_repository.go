package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coursepath/backend/internal/models"
)

type xpRepository struct {
	db *sql.DB
}

// NewXPRepository creates a new XP repository
func NewXPRepository(db *sql.DB) *xpRepository {
	return &xpRepository{
		db: db,
	}
}

// Award records an XP transaction and adds it to the profile total.
// (user, source type, source id) is unique, so repeating an award is a no-op
// that returns false.
func (r *xpRepository) Award(ctx context.Context, t models.XPTransaction) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT IGNORE INTO xp_transactions (user_id, amount, source_type, source_id, description)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query, t.UserID, t.Amount, t.SourceType, t.SourceID, t.Description)
	if err != nil {
		return false, fmt.Errorf("failed to insert xp transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	query = `
		INSERT INTO profiles (user_id, total_xp)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE total_xp = total_xp + VALUES(total_xp)
	`
	if _, err := tx.ExecContext(ctx, query, t.UserID, t.Amount); err != nil {
		return false, fmt.Errorf("failed to update profile xp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// GetProfile retrieves the gamification profile of a user.
// A user without a profile row gets an empty profile.
func (r *xpRepository) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	query := `
		SELECT user_id, total_xp, current_streak, longest_streak, last_activity_date
		FROM profiles
		WHERE user_id = ?
		LIMIT 1
	`

	var (
		p    models.Profile
		last sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.TotalXP,
		&p.CurrentStreak,
		&p.LongestStreak,
		&last,
	)

	if err == sql.ErrNoRows {
		return &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if last.Valid {
		p.LastActivityDate = &last.Time
	}
	return &p, nil
}

// UpdateStreak stores the streak counters and the day of the last activity
func (r *xpRepository) UpdateStreak(ctx context.Context, userID, current, longest int, day time.Time) error {
	query := `
		INSERT INTO profiles (user_id, current_streak, longest_streak, last_activity_date)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			current_streak = VALUES(current_streak),
			longest_streak = VALUES(longest_streak),
			last_activity_date = VALUES(last_activity_date)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, current, longest, day.Format(time.DateOnly)); err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}

// ResetStaleStreaks zeroes the current streak of every profile whose last
// activity is before day
//
// Returns the number of profiles reset.
func (r *xpRepository) ResetStaleStreaks(ctx context.Context, day time.Time) (int64, error) {
	query := `
		UPDATE profiles
		SET current_streak = 0
		WHERE current_streak > 0 AND last_activity_date < ?
	`

	result, err := r.db.ExecContext(ctx, query, day.Format(time.DateOnly))
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale streaks: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
