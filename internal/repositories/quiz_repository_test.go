package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursepath/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupQuizTestRepository creates a quiz repository with a mock database
func setupQuizTestRepository(t *testing.T) (*quizRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewQuizRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewQuizRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewQuizRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

var questionColumns = []string{
	"id", "lesson_id", "unit_id", "question", "explanation", "points", "order_index",
	"o.id", "option_text", "is_correct", "o.order_index",
}

func TestQuizRepository_LessonQuestions(t *testing.T) {
	repo, mock, cleanup := setupQuizTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows(questionColumns).
		AddRow(1, 101, nil, "2+2?", "basic math", 1, 0, 11, "4", true, 0).
		AddRow(1, 101, nil, "2+2?", "basic math", 1, 0, 12, "5", false, 1).
		AddRow(2, 101, nil, "Empty?", "", 2, 1, nil, nil, nil, nil)
	mock.ExpectQuery(`SELECT.*FROM quiz_questions q.*LEFT JOIN quiz_options o.*WHERE q.lesson_id = \?`).
		WithArgs(101).
		WillReturnRows(rows)

	questions, err := repo.LessonQuestions(context.Background(), 101)

	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.NotNil(t, questions[0].LessonID)
	assert.Equal(t, 101, *questions[0].LessonID)
	assert.Nil(t, questions[0].UnitID)
	require.Len(t, questions[0].Options, 2)
	assert.True(t, questions[0].Options[0].IsCorrect)
	assert.Equal(t, 1, questions[0].Options[1].QuestionID)
	assert.NotNil(t, questions[1].Options)
	assert.Empty(t, questions[1].Options)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepository_UnitQuestions(t *testing.T) {
	repo, mock, cleanup := setupQuizTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT.*FROM quiz_questions q.*WHERE q.unit_id = \?`).
		WithArgs(10).
		WillReturnError(errors.New("database error"))

	questions, err := repo.UnitQuestions(context.Background(), 10)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query quiz questions")
	assert.Nil(t, questions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepository_HasLessonQuiz(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expected      bool
		expectedError bool
	}{
		{
			name: "has quiz",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM quiz_questions WHERE lesson_id = \?\)`).
					WithArgs(101).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			expected: true,
		},
		{
			name: "no quiz",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(101).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(101).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupQuizTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			has, err := repo.HasLessonQuiz(context.Background(), 101)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, has)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQuizRepository_UnitQuestionCounts(t *testing.T) {
	repo, mock, cleanup := setupQuizTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT q.unit_id, COUNT\(\*\).*GROUP BY q.unit_id`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"unit_id", "count"}).AddRow(10, 3).AddRow(30, 1))

	counts, err := repo.UnitQuestionCounts(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, map[int]int{10: 3, 30: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepository_CreateAttempt(t *testing.T) {
	lessonID := 101
	attempt := &models.QuizAttempt{UserID: 4, LessonID: &lessonID, Score: 1, TotalPoints: 2, Passed: false}
	answers := []models.QuizAnswer{
		{QuestionID: 1, OptionID: 11, IsCorrect: true},
		{QuestionID: 2, OptionID: 21, IsCorrect: false},
	}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedID    int
		errorContains string
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO quiz_attempts`).
					WithArgs(4, 101, nil, 1, 2, false).
					WillReturnResult(sqlmock.NewResult(55, 1))
				mock.ExpectExec(`INSERT INTO quiz_answers \(attempt_id, question_id, option_id, is_correct\) VALUES \(\?, \?, \?, \?\),\(\?, \?, \?, \?\)`).
					WithArgs(55, 1, 11, true, 55, 2, 21, false).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
			expectedID: 55,
		},
		{
			name: "begin error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("transaction error"))
			},
			errorContains: "failed to begin transaction",
		},
		{
			name: "answers insert error rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO quiz_attempts`).
					WillReturnResult(sqlmock.NewResult(55, 1))
				mock.ExpectExec(`INSERT INTO quiz_answers`).
					WillReturnError(errors.New("database error"))
				mock.ExpectRollback()
			},
			errorContains: "failed to insert quiz answers",
		},
		{
			name: "commit error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO quiz_attempts`).
					WillReturnResult(sqlmock.NewResult(55, 1))
				mock.ExpectExec(`INSERT INTO quiz_answers`).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit().WillReturnError(errors.New("commit error"))
			},
			errorContains: "failed to commit transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupQuizTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			id, err := repo.CreateAttempt(context.Background(), attempt, answers)

			if tt.errorContains != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQuizRepository_BestLessonAttempt(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := setupQuizTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT.*FROM quiz_attempts.*WHERE user_id = \? AND lesson_id = \?.*ORDER BY`).
			WithArgs(4, 101).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "score", "total_points", "passed"}).AddRow(9, 4, 4, 5, true))

		attempt, err := repo.BestLessonAttempt(context.Background(), 4, 101)

		require.NoError(t, err)
		require.NotNil(t, attempt)
		assert.Equal(t, 4, attempt.Score)
		assert.Equal(t, 101, *attempt.LessonID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no attempts", func(t *testing.T) {
		repo, mock, cleanup := setupQuizTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT.*FROM quiz_attempts`).
			WithArgs(4, 101).
			WillReturnError(sql.ErrNoRows)

		attempt, err := repo.BestLessonAttempt(context.Background(), 4, 101)

		assert.NoError(t, err)
		assert.Nil(t, attempt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQuizRepository_PassedLessonQuiz(t *testing.T) {
	repo, mock, cleanup := setupQuizTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM quiz_attempts WHERE user_id = \? AND lesson_id = \? AND passed = TRUE\)`).
		WithArgs(4, 101).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	passed, err := repo.PassedLessonQuiz(context.Background(), 4, 101)

	require.NoError(t, err)
	assert.True(t, passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepository_PassedUnitQuizIDs(t *testing.T) {
	repo, mock, cleanup := setupQuizTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT DISTINCT a.unit_id.*WHERE a.user_id = \? AND u.course_id = \? AND a.passed = TRUE`).
		WithArgs(4, 1).
		WillReturnRows(sqlmock.NewRows([]string{"unit_id"}).AddRow(10).AddRow(20))

	passed, err := repo.PassedUnitQuizIDs(context.Background(), 4, 1)

	require.NoError(t, err)
	assert.Equal(t, map[int]bool{10: true, 20: true}, passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
