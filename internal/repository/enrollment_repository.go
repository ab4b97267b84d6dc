package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// EnrollmentRepository reads course enrollments and section rosters.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListActiveByCourse returns active enrollments of a course, optionally
// restricted to one section.
func (r *EnrollmentRepository) ListActiveByCourse(ctx context.Context, courseID, sectionID string) ([]models.Enrollment, error) {
	query := `SELECT id, student_id, course_id, section_id, academic_year, status, joined_at
        FROM enrollments WHERE course_id = $1 AND status = $2`
	args := []interface{}{courseID, models.EnrollmentStatusActive}
	if sectionID != "" {
		query += ` AND section_id = $3`
		args = append(args, sectionID)
	}
	query += ` ORDER BY student_id`

	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return enrollments, nil
}

// IsEnrolled reports whether the student holds an active enrollment in the
// course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT COUNT(1) FROM enrollments
        WHERE student_id = $1 AND course_id = $2 AND status = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, courseID, models.EnrollmentStatusActive); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

// ListSections returns the distinct sections holding active enrollments of
// the course.
func (r *EnrollmentRepository) ListSections(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT DISTINCT section_id FROM enrollments
        WHERE course_id = $1 AND status = $2 ORDER BY section_id`
	var sections []string
	if err := r.db.SelectContext(ctx, &sections, query, courseID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list course sections: %w", err)
	}
	return sections, nil
}
