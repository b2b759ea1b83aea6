package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursepath/backend/internal/models"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// CompletedLessonIDs returns the ids of lessons the enrollment completed
func (r *progressRepository) CompletedLessonIDs(ctx context.Context, enrollmentID int) (map[int]bool, error) {
	query := `
		SELECT lesson_id
		FROM lesson_progress
		WHERE enrollment_id = ? AND status = 'completed'
	`

	rows, err := r.db.QueryContext(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	completed := make(map[int]bool)
	for rows.Next() {
		var lessonID int
		if err := rows.Scan(&lessonID); err != nil {
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		completed[lessonID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return completed, nil
}

// MarkLessonStarted creates an in-progress row unless the lesson already has one
func (r *progressRepository) MarkLessonStarted(ctx context.Context, enrollmentID, lessonID int) error {
	query := `
		INSERT IGNORE INTO lesson_progress (enrollment_id, lesson_id, status)
		VALUES (?, ?, 'in_progress')
	`
	if _, err := r.db.ExecContext(ctx, query, enrollmentID, lessonID); err != nil {
		return fmt.Errorf("failed to mark lesson started: %w", err)
	}
	return nil
}

// MarkLessonCompleted completes a lesson. It returns false when the lesson was already completed.
func (r *progressRepository) MarkLessonCompleted(ctx context.Context, enrollmentID, lessonID int) (bool, error) {
	query := `
		INSERT INTO lesson_progress (enrollment_id, lesson_id, status, completed_at)
		VALUES (?, ?, 'completed', NOW())
		ON DUPLICATE KEY UPDATE
			completed_at = IF(status = 'completed', completed_at, NOW()),
			status = 'completed'
	`

	result, err := r.db.ExecContext(ctx, query, enrollmentID, lessonID)
	if err != nil {
		return false, fmt.Errorf("failed to mark lesson completed: %w", err)
	}

	// MySQL reports 1 for an insert, 2 for a changed row and 0 when nothing changed
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetContentProgress retrieves the progress of a content block, nil when there is none
func (r *progressRepository) GetContentProgress(ctx context.Context, enrollmentID, contentID int) (*models.ContentProgress, error) {
	query := `
		SELECT enrollment_id, lesson_content_id, watched_seconds, completed
		FROM content_progress
		WHERE enrollment_id = ? AND lesson_content_id = ?
		LIMIT 1
	`

	var p models.ContentProgress
	err := r.db.QueryRowContext(ctx, query, enrollmentID, contentID).Scan(
		&p.EnrollmentID,
		&p.LessonContentID,
		&p.WatchedSeconds,
		&p.Completed,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content progress: %w", err)
	}

	return &p, nil
}

// SaveContentProgress upserts the progress of a content block.
// Watched seconds never go down and a completed block stays completed.
func (r *progressRepository) SaveContentProgress(ctx context.Context, p models.ContentProgress) error {
	query := `
		INSERT INTO content_progress (enrollment_id, lesson_content_id, watched_seconds, completed, completed_at)
		VALUES (?, ?, ?, ?, IF(?, NOW(), NULL))
		ON DUPLICATE KEY UPDATE
			watched_seconds = GREATEST(watched_seconds, VALUES(watched_seconds)),
			completed_at = COALESCE(completed_at, VALUES(completed_at)),
			completed = completed OR VALUES(completed)
	`

	_, err := r.db.ExecContext(ctx, query, p.EnrollmentID, p.LessonContentID, p.WatchedSeconds, p.Completed, p.Completed)
	if err != nil {
		return fmt.Errorf("failed to save content progress: %w", err)
	}
	return nil
}

// CompletedContentIDs returns the completed content block ids of a lesson
func (r *progressRepository) CompletedContentIDs(ctx context.Context, enrollmentID, lessonID int) (map[int]bool, error) {
	query := `
		SELECT cp.lesson_content_id
		FROM content_progress cp
		JOIN lesson_content c ON c.id = cp.lesson_content_id
		WHERE cp.enrollment_id = ? AND c.lesson_id = ? AND cp.completed = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query, enrollmentID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query content progress: %w", err)
	}
	defer rows.Close()

	completed := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan content progress: %w", err)
		}
		completed[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return completed, nil
}
