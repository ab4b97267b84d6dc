package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

func newQuestionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestQuestionRepositoryListMappedToCO(t *testing.T) {
	db, mock, cleanup := newQuestionRepoMock(t)
	defer cleanup()

	repo := NewQuestionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "assessment_id", "number", "max_marks", "assessment_type", "assessment_weightage"}).
		AddRow("q-1", "asm-a", "1a", 10.0, models.AssessmentTypeExam, 60.0).
		AddRow("q-2", "asm-b", "2", 5.0, models.AssessmentTypeQuiz, 40.0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT q.id, q.assessment_id, q.number, q.max_marks")).
		WithArgs("co-1", "course-1").
		WillReturnRows(rows)

	questions, err := repo.ListMappedToCO(context.Background(), "co-1", "course-1", "")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, models.AssessmentTypeExam, questions[0].AssessmentType)
	require.Equal(t, 60.0, questions[0].AssessmentWeightage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepositoryListMappedToCOSectionScoped(t *testing.T) {
	db, mock, cleanup := newQuestionRepoMock(t)
	defer cleanup()

	repo := NewQuestionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "assessment_id", "number", "max_marks", "assessment_type", "assessment_weightage"}).
		AddRow("q-1", "asm-a", "1", 10.0, models.AssessmentTypeExam, 100.0)
	mock.ExpectQuery(regexp.QuoteMeta("AND (a.section_id IS NULL OR a.section_id = $3)")).
		WithArgs("co-1", "course-1", "sec-a").
		WillReturnRows(rows)

	questions, err := repo.ListMappedToCO(context.Background(), "co-1", "course-1", "sec-a")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepositoryListCOMappings(t *testing.T) {
	db, mock, cleanup := newQuestionRepoMock(t)
	defer cleanup()

	repo := NewQuestionRepository(db)
	rows := sqlmock.NewRows([]string{"question_id", "co_id"}).
		AddRow("q-1", "co-1").
		AddRow("q-1", "co-2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT m.question_id, m.co_id")).
		WithArgs("course-1").
		WillReturnRows(rows)

	mappings, err := repo.ListCOMappings(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
