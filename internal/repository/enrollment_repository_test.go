package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryListActiveByCourse(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "section_id", "academic_year", "status", "joined_at"}).
		AddRow("enr-1", "stu-1", "course-1", "sec-a", "2025-26", models.EnrollmentStatusActive, time.Now()).
		AddRow("enr-2", "stu-2", "course-1", "sec-a", "2025-26", models.EnrollmentStatusActive, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, course_id, section_id, academic_year, status, joined_at")).
		WithArgs("course-1", string(models.EnrollmentStatusActive), "sec-a").
		WillReturnRows(rows)

	enrollments, err := repo.ListActiveByCourse(context.Background(), "course-1", "sec-a")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	require.Equal(t, "stu-1", enrollments[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListActiveWholeCourse(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "section_id", "academic_year", "status", "joined_at"}).
		AddRow("enr-1", "stu-1", "course-1", "sec-a", "2025-26", models.EnrollmentStatusActive, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, course_id, section_id, academic_year, status, joined_at")).
		WithArgs("course-1", string(models.EnrollmentStatusActive)).
		WillReturnRows(rows)

	enrollments, err := repo.ListActiveByCourse(context.Background(), "course-1", "")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryIsEnrolled(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM enrollments")).
		WithArgs("stu-1", "course-1", string(models.EnrollmentStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	enrolled, err := repo.IsEnrolled(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.True(t, enrolled)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM enrollments")).
		WithArgs("stu-9", "course-1", string(models.EnrollmentStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	enrolled, err = repo.IsEnrolled(context.Background(), "stu-9", "course-1")
	require.NoError(t, err)
	require.False(t, enrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListSections(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT section_id FROM enrollments")).
		WithArgs("course-1", string(models.EnrollmentStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"section_id"}).AddRow("sec-a").AddRow("sec-b"))

	sections, err := repo.ListSections(context.Background(), "course-1")
	require.NoError(t, err)
	require.Equal(t, []string{"sec-a", "sec-b"}, sections)
	require.NoError(t, mock.ExpectationsWereMet())
}
