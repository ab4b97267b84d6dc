package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMarkRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMarkRepositoryDistinguishesAbsentAndNull(t *testing.T) {
	db, mock, cleanup := newMarkRepoMock(t)
	defer cleanup()

	repo := NewMarkRepository(db)
	// q-1 has marks, q-2 exists with NULL obtained_marks, q-3 has no row.
	rows := sqlmock.NewRows([]string{"question_id", "obtained_marks"}).
		AddRow("q-1", 7.5).
		AddRow("q-2", nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT question_id, obtained_marks FROM student_marks")).
		WithArgs("stu-1", "q-1", "q-2", "q-3").
		WillReturnRows(rows)

	attempts, err := repo.ListByStudentAndQuestions(context.Background(), "stu-1", []string{"q-1", "q-2", "q-3"})
	require.NoError(t, err)
	require.Len(t, attempts, 3)

	require.True(t, attempts["q-1"].Attempted)
	require.Equal(t, 7.5, attempts["q-1"].Obtained)
	require.False(t, attempts["q-2"].Attempted)
	require.False(t, attempts["q-3"].Attempted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryEmptyQuestionSet(t *testing.T) {
	db, _, cleanup := newMarkRepoMock(t)
	defer cleanup()

	repo := NewMarkRepository(db)
	attempts, err := repo.ListByStudentAndQuestions(context.Background(), "stu-1", nil)
	require.NoError(t, err)
	require.Empty(t, attempts)
}
