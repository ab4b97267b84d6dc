package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// AttainmentRepository persists computed attainment rows. Rows are derived
// data: the upsert keyed by (course, section, co, student, academic year)
// keeps recomputation idempotent.
type AttainmentRepository struct {
	db *sqlx.DB
}

// NewAttainmentRepository constructs repository.
func NewAttainmentRepository(db *sqlx.DB) *AttainmentRepository {
	return &AttainmentRepository{db: db}
}

const upsertStudentCOQuery = `INSERT INTO student_co_attainments
    (id, course_id, section_id, co_id, student_id, academic_year, percentage, weighted_percentage, met_target, calculated_at)
    VALUES (:id, :course_id, :section_id, :co_id, :student_id, :academic_year, :percentage, :weighted_percentage, :met_target, :calculated_at)
    ON CONFLICT (course_id, section_id, co_id, student_id, academic_year)
    DO UPDATE SET percentage = EXCLUDED.percentage,
        weighted_percentage = EXCLUDED.weighted_percentage,
        met_target = EXCLUDED.met_target,
        calculated_at = EXCLUDED.calculated_at`

// UpsertStudentCO writes one student-CO attainment row in place.
func (r *AttainmentRepository) UpsertStudentCO(ctx context.Context, row models.StudentCOAttainmentRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CalculatedAt.IsZero() {
		row.CalculatedAt = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx, upsertStudentCOQuery, row); err != nil {
		return fmt.Errorf("upsert student co attainment: %w", err)
	}
	return nil
}

// BulkUpsertStudentCO writes a batch of rows in one transaction. The batch
// shares a single calculated_at so an audit read sees one recomputation.
func (r *AttainmentRepository) BulkUpsertStudentCO(ctx context.Context, rows []models.StudentCOAttainmentRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if rows[i].CalculatedAt.IsZero() {
			rows[i].CalculatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, upsertStudentCOQuery, rows[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert student co attainment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit student co attainments: %w", err)
	}
	return nil
}

// FetchStudentCO returns the persisted rows for one course scope, for audit
// reads and retry tooling.
func (r *AttainmentRepository) FetchStudentCO(ctx context.Context, courseID, academicYear string) ([]models.StudentCOAttainmentRow, error) {
	const query = `SELECT id, course_id, section_id, co_id, student_id, academic_year,
        percentage, weighted_percentage, met_target, calculated_at
        FROM student_co_attainments
        WHERE course_id = $1 AND academic_year = $2
        ORDER BY co_id, section_id, student_id`
	var rows []models.StudentCOAttainmentRow
	if err := r.db.SelectContext(ctx, &rows, query, courseID, academicYear); err != nil {
		return nil, fmt.Errorf("fetch student co attainments: %w", err)
	}
	return rows, nil
}
