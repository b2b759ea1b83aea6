package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coursepath/backend/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// GetWithContent retrieves a lesson of the course with its ordered content blocks
func (r *lessonRepository) GetWithContent(ctx context.Context, courseID, lessonID int) (*models.LessonWithContent, error) {
	query := `
		SELECT id, course_id, unit_id, title, order_index, order_in_unit, duration_seconds
		FROM lessons
		WHERE id = ? AND course_id = ?
		LIMIT 1
	`

	lesson, err := scanLesson(r.db.QueryRowContext(ctx, query, lessonID, courseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	content, err := r.contentByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	return &models.LessonWithContent{Lesson: lesson, Content: content}, nil
}

func (r *lessonRepository) contentByLesson(ctx context.Context, lessonID int) ([]models.LessonContent, error) {
	query := `
		SELECT id, lesson_id, content_type, title, content, video_url, order_index
		FROM lesson_content
		WHERE lesson_id = ?
		ORDER BY order_index, id
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson content: %w", err)
	}
	defer rows.Close()

	content := []models.LessonContent{}
	for rows.Next() {
		block, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		content = append(content, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return content, nil
}

func scanContent(row rowScanner) (models.LessonContent, error) {
	var block models.LessonContent
	err := row.Scan(
		&block.ID,
		&block.LessonID,
		&block.ContentType,
		&block.Title,
		&block.Content,
		&block.VideoURL,
		&block.OrderIndex,
	)
	if err != nil {
		return models.LessonContent{}, fmt.Errorf("failed to scan lesson content: %w", err)
	}
	return block, nil
}
