package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/coursepath/backend/internal/models"
)

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

// Get retrieves the enrollment of a user in a course
func (r *enrollmentRepository) Get(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, progress_percentage, completed_at
		FROM enrollments
		WHERE user_id = ? AND course_id = ?
		LIMIT 1
	`

	var (
		e           models.Enrollment
		completedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(
		&e.ID,
		&e.UserID,
		&e.CourseID,
		&e.ProgressPercentage,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	return &e, nil
}

// UpdateProgress stores the course progress percentage.
// The first time it reaches 100 the enrollment is stamped as completed.
func (r *enrollmentRepository) UpdateProgress(ctx context.Context, enrollmentID, percentage int) error {
	query := `
		UPDATE enrollments
		SET progress_percentage = ?,
			completed_at = CASE WHEN ? >= 100 AND completed_at IS NULL THEN NOW() ELSE completed_at END
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, percentage, percentage, enrollmentID); err != nil {
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}
	return nil
}

// CountCompletedCourses counts the courses the user completed
func (r *enrollmentRepository) CountCompletedCourses(ctx context.Context, userID int) (int, error) {
	query := "SELECT COUNT(*) FROM enrollments WHERE user_id = ? AND completed_at IS NOT NULL"
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed courses: %w", err)
	}
	return count, nil
}

// Claims retrieves the claimed units and unit-content groups of an enrollment
func (r *enrollmentRepository) Claims(ctx context.Context, enrollmentID int) (models.Claims, error) {
	query := `
		SELECT kind, claim_key
		FROM enrollment_claims
		WHERE enrollment_id = ?
	`

	claims := models.Claims{Units: map[int]bool{}, UnitContents: map[string]bool{}}
	rows, err := r.db.QueryContext(ctx, query, enrollmentID)
	if err != nil {
		return claims, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind models.ClaimKind
			key  string
		)
		if err := rows.Scan(&kind, &key); err != nil {
			return claims, fmt.Errorf("failed to scan claim: %w", err)
		}
		switch kind {
		case models.ClaimKindUnit:
			if unitID, err := strconv.Atoi(key); err == nil {
				claims.Units[unitID] = true
			}
		case models.ClaimKindUnitContent:
			claims.UnitContents[key] = true
		}
	}

	if err := rows.Err(); err != nil {
		return claims, fmt.Errorf("error iterating rows: %w", err)
	}

	return claims, nil
}

// AddClaim records a claim. It returns false when the claim already existed.
func (r *enrollmentRepository) AddClaim(ctx context.Context, enrollmentID int, kind models.ClaimKind, key string) (bool, error) {
	query := `
		INSERT IGNORE INTO enrollment_claims (enrollment_id, kind, claim_key)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, enrollmentID, kind, key)
	if err != nil {
		return false, fmt.Errorf("failed to add claim: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// RemoveClaim deletes a claim so it can be retried after a failed award
func (r *enrollmentRepository) RemoveClaim(ctx context.Context, enrollmentID int, kind models.ClaimKind, key string) error {
	query := "DELETE FROM enrollment_claims WHERE enrollment_id = ? AND kind = ? AND claim_key = ?"
	if _, err := r.db.ExecContext(ctx, query, enrollmentID, kind, key); err != nil {
		return fmt.Errorf("failed to remove claim: %w", err)
	}
	return nil
}
