package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coursepath/backend/internal/models"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

// LessonQuestions retrieves the quiz of a lesson with its options
func (r *quizRepository) LessonQuestions(ctx context.Context, lessonID int) ([]models.QuizQuestion, error) {
	return r.questions(ctx, "q.lesson_id = ?", lessonID)
}

// UnitQuestions retrieves the quiz of a unit with its options
func (r *quizRepository) UnitQuestions(ctx context.Context, unitID int) ([]models.QuizQuestion, error) {
	return r.questions(ctx, "q.unit_id = ?", unitID)
}

func (r *quizRepository) questions(ctx context.Context, where string, id int) ([]models.QuizQuestion, error) {
	query := `
		SELECT
			q.id, q.lesson_id, q.unit_id, q.question, q.explanation, q.points, q.order_index,
			o.id, o.option_text, o.is_correct, o.order_index
		FROM quiz_questions q
		LEFT JOIN quiz_options o ON o.question_id = q.id
		WHERE ` + where + `
		ORDER BY q.order_index, q.id, o.order_index, o.id
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	questions := []models.QuizQuestion{}
	index := make(map[int]int)
	for rows.Next() {
		var (
			q                  models.QuizQuestion
			lessonID, unitID   sql.NullInt64
			optionID, optOrder sql.NullInt64
			optionText         sql.NullString
			isCorrect          sql.NullBool
		)
		err := rows.Scan(
			&q.ID,
			&lessonID,
			&unitID,
			&q.Question,
			&q.Explanation,
			&q.Points,
			&q.OrderIndex,
			&optionID,
			&optionText,
			&isCorrect,
			&optOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}

		i, ok := index[q.ID]
		if !ok {
			q.LessonID = nullIntPtr(lessonID)
			q.UnitID = nullIntPtr(unitID)
			q.Options = []models.QuizOption{}
			i = len(questions)
			index[q.ID] = i
			questions = append(questions, q)
		}
		if optionID.Valid {
			questions[i].Options = append(questions[i].Options, models.QuizOption{
				ID:         int(optionID.Int64),
				QuestionID: q.ID,
				Text:       optionText.String,
				IsCorrect:  isCorrect.Bool,
				OrderIndex: int(optOrder.Int64),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}

// HasLessonQuiz checks if a lesson owns at least one quiz question
func (r *quizRepository) HasLessonQuiz(ctx context.Context, lessonID int) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM quiz_questions WHERE lesson_id = ?)"
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, lessonID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check lesson quiz: %w", err)
	}
	return exists, nil
}

// UnitQuestionCounts returns the number of quiz questions per unit of a course.
// Units without questions are absent from the map.
func (r *quizRepository) UnitQuestionCounts(ctx context.Context, courseID int) (map[int]int, error) {
	query := `
		SELECT q.unit_id, COUNT(*)
		FROM quiz_questions q
		JOIN units u ON u.id = q.unit_id
		WHERE u.course_id = ?
		GROUP BY q.unit_id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unit quiz counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var unitID, count int
		if err := rows.Scan(&unitID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unit quiz count: %w", err)
		}
		counts[unitID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// CreateAttempt stores a graded attempt together with its answers and returns the attempt id
func (r *quizRepository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt, answers []models.QuizAnswer) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO quiz_attempts (user_id, lesson_id, unit_id, score, total_points, passed)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		attempt.UserID, intPtrArg(attempt.LessonID), intPtrArg(attempt.UnitID),
		attempt.Score, attempt.TotalPoints, attempt.Passed)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quiz attempt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if len(answers) > 0 {
		placeholders := make([]string, len(answers))
		args := make([]any, 0, len(answers)*4)
		for i, a := range answers {
			placeholders[i] = "(?, ?, ?, ?)"
			args = append(args, id, a.QuestionID, a.OptionID, a.IsCorrect)
		}
		query := fmt.Sprintf(`
			INSERT INTO quiz_answers (attempt_id, question_id, option_id, is_correct)
			VALUES %s
		`, strings.Join(placeholders, ","))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("failed to insert quiz answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return int(id), nil
}

// BestLessonAttempt retrieves the highest scoring attempt of a lesson quiz, nil when there is none
func (r *quizRepository) BestLessonAttempt(ctx context.Context, userID, lessonID int) (*models.QuizAttempt, error) {
	query := `
		SELECT id, user_id, score, total_points, passed
		FROM quiz_attempts
		WHERE user_id = ? AND lesson_id = ? AND total_points > 0
		ORDER BY score * 100 / total_points DESC, id DESC
		LIMIT 1
	`

	attempt := models.QuizAttempt{LessonID: &lessonID}
	err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(
		&attempt.ID,
		&attempt.UserID,
		&attempt.Score,
		&attempt.TotalPoints,
		&attempt.Passed,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get best attempt: %w", err)
	}

	return &attempt, nil
}

// PassedLessonQuiz checks if the user has a passing attempt for the lesson quiz
func (r *quizRepository) PassedLessonQuiz(ctx context.Context, userID, lessonID int) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM quiz_attempts WHERE user_id = ? AND lesson_id = ? AND passed = TRUE)"
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check lesson quiz pass: %w", err)
	}
	return exists, nil
}

// PassedUnitQuizIDs returns the ids of course units whose quiz the user passed
func (r *quizRepository) PassedUnitQuizIDs(ctx context.Context, userID, courseID int) (map[int]bool, error) {
	query := `
		SELECT DISTINCT a.unit_id
		FROM quiz_attempts a
		JOIN units u ON u.id = a.unit_id
		WHERE a.user_id = ? AND u.course_id = ? AND a.passed = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query passed unit quizzes: %w", err)
	}
	defer rows.Close()

	passed := make(map[int]bool)
	for rows.Next() {
		var unitID int
		if err := rows.Scan(&unitID); err != nil {
			return nil, fmt.Errorf("failed to scan unit id: %w", err)
		}
		passed[unitID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return passed, nil
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func intPtrArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
