package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursepath/backend/internal/models"
)

type unitRepository struct {
	db *sql.DB
}

// NewUnitRepository creates a new unit repository
func NewUnitRepository(db *sql.DB) *unitRepository {
	return &unitRepository{
		db: db,
	}
}

// ListWithLessons retrieves the units of a course with their lessons.
// Units without lessons are returned with an empty lesson list.
func (r *unitRepository) ListWithLessons(ctx context.Context, courseID int) ([]models.UnitWithLessons, error) {
	query := `
		SELECT
			u.id, u.course_id, u.title, u.order_index, COALESCE(u.unit_content, ''),
			l.id, l.title, l.order_index, l.order_in_unit, l.duration_seconds
		FROM units u
		LEFT JOIN lessons l ON l.unit_id = u.id
		WHERE u.course_id = ?
		ORDER BY u.order_index, u.id, l.order_in_unit, l.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	units := []models.UnitWithLessons{}
	index := make(map[int]int)
	for rows.Next() {
		var (
			unit                          models.Unit
			lessonID, orderIndex, orderIn sql.NullInt64
			duration                      sql.NullInt64
			lessonTitle                   sql.NullString
		)
		err := rows.Scan(
			&unit.ID,
			&unit.CourseID,
			&unit.Title,
			&unit.OrderIndex,
			&unit.ContentGroup,
			&lessonID,
			&lessonTitle,
			&orderIndex,
			&orderIn,
			&duration,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}

		i, ok := index[unit.ID]
		if !ok {
			i = len(units)
			index[unit.ID] = i
			units = append(units, models.UnitWithLessons{Unit: unit, Lessons: []models.Lesson{}})
		}
		if !lessonID.Valid {
			continue
		}
		unitID := unit.ID
		units[i].Lessons = append(units[i].Lessons, models.Lesson{
			ID:              int(lessonID.Int64),
			CourseID:        unit.CourseID,
			UnitID:          &unitID,
			Title:           lessonTitle.String,
			OrderIndex:      int(orderIndex.Int64),
			OrderInUnit:     int(orderIn.Int64),
			DurationSeconds: int(duration.Int64),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return units, nil
}

// FlatLessons retrieves all lessons of a course ordered by their course-level index
func (r *unitRepository) FlatLessons(ctx context.Context, courseID int) ([]models.Lesson, error) {
	query := `
		SELECT id, course_id, unit_id, title, order_index, order_in_unit, duration_seconds
		FROM lessons
		WHERE course_id = ?
		ORDER BY order_index, id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// GetUnit retrieves a unit that belongs to the course
func (r *unitRepository) GetUnit(ctx context.Context, courseID, unitID int) (*models.Unit, error) {
	query := `
		SELECT id, course_id, title, order_index, COALESCE(unit_content, '')
		FROM units
		WHERE id = ? AND course_id = ?
		LIMIT 1
	`

	var unit models.Unit
	err := r.db.QueryRowContext(ctx, query, unitID, courseID).Scan(
		&unit.ID,
		&unit.CourseID,
		&unit.Title,
		&unit.OrderIndex,
		&unit.ContentGroup,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unit not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	return &unit, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (models.Lesson, error) {
	var (
		lesson models.Lesson
		unitID sql.NullInt64
	)
	err := row.Scan(
		&lesson.ID,
		&lesson.CourseID,
		&unitID,
		&lesson.Title,
		&lesson.OrderIndex,
		&lesson.OrderInUnit,
		&lesson.DurationSeconds,
	)
	if err != nil {
		return models.Lesson{}, fmt.Errorf("failed to scan lesson: %w", err)
	}
	if unitID.Valid {
		id := int(unitID.Int64)
		lesson.UnitID = &id
	}
	return lesson, nil
}
