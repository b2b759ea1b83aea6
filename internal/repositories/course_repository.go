package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursepath/backend/internal/models"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

// GetBySlug retrieves a published course by its slug
func (r *courseRepository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	query := `
		SELECT id, slug, title, short_summary, is_published
		FROM courses
		WHERE slug = ? AND is_published = TRUE
		LIMIT 1
	`

	var course models.Course
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&course.ID,
		&course.Slug,
		&course.Title,
		&course.ShortSummary,
		&course.IsPublished,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by slug: %w", err)
	}

	return &course, nil
}

// GetStats computes the course aggregate in a single query.
// A lesson counts as an exercise when it owns at least one quiz question.
func (r *courseRepository) GetStats(ctx context.Context, courseID int) (*models.CourseStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM lessons WHERE course_id = ?) AS lesson_count,
			(SELECT COALESCE(SUM(duration_seconds), 0) FROM lessons WHERE course_id = ?) AS total_duration,
			(SELECT COUNT(*) FROM lessons l
				WHERE l.course_id = ?
				AND EXISTS (SELECT 1 FROM quiz_questions q WHERE q.lesson_id = l.id)) AS exercise_count,
			(SELECT COUNT(*) FROM lesson_content c
				JOIN lessons l ON l.id = c.lesson_id
				WHERE l.course_id = ? AND c.content_type IN ('theory', 'example')) AS rewarded_blocks,
			(SELECT COUNT(*) FROM units WHERE course_id = ?) AS unit_count
	`

	var stats models.CourseStats
	err := r.db.QueryRowContext(ctx, query, courseID, courseID, courseID, courseID, courseID).Scan(
		&stats.LessonCount,
		&stats.TotalDurationSeconds,
		&stats.ExerciseCount,
		&stats.RewardedBlocks,
		&stats.UnitCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get course stats: %w", err)
	}

	return &stats, nil
}
