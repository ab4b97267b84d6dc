package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// OutcomeRepository reads course/program outcomes and their mappings.
type OutcomeRepository struct {
	db *sqlx.DB
}

// NewOutcomeRepository constructs repository.
func NewOutcomeRepository(db *sqlx.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// FindCO returns one course outcome.
func (r *OutcomeRepository) FindCO(ctx context.Context, id string) (*models.CourseOutcome, error) {
	const query = `SELECT id, course_id, code, description FROM course_outcomes WHERE id = $1`
	var co models.CourseOutcome
	if err := r.db.GetContext(ctx, &co, query, id); err != nil {
		return nil, err
	}
	return &co, nil
}

// ListCOsByCourse returns every CO defined for a course.
func (r *OutcomeRepository) ListCOsByCourse(ctx context.Context, courseID string) ([]models.CourseOutcome, error) {
	const query = `SELECT id, course_id, code, description FROM course_outcomes
        WHERE course_id = $1 ORDER BY code`
	var cos []models.CourseOutcome
	if err := r.db.SelectContext(ctx, &cos, query, courseID); err != nil {
		return nil, fmt.Errorf("list course outcomes: %w", err)
	}
	return cos, nil
}

// ListPOsByProgram returns every PO defined for a program.
func (r *OutcomeRepository) ListPOsByProgram(ctx context.Context, programID string) ([]models.ProgramOutcome, error) {
	const query = `SELECT id, program_id, code, description FROM program_outcomes
        WHERE program_id = $1 ORDER BY code`
	var pos []models.ProgramOutcome
	if err := r.db.SelectContext(ctx, &pos, query, programID); err != nil {
		return nil, fmt.Errorf("list program outcomes: %w", err)
	}
	return pos, nil
}

// ListCOPOMappings returns the CO-PO edges for every course offered under
// the program, with their correlation levels.
func (r *OutcomeRepository) ListCOPOMappings(ctx context.Context, programID string) ([]models.COPOMapping, error) {
	const query = `SELECT m.co_id, m.po_id, co.course_id, m.level
        FROM co_po_mappings m
        JOIN course_outcomes co ON co.id = m.co_id
        JOIN courses c ON c.id = co.course_id
        WHERE c.program_id = $1`
	var mappings []models.COPOMapping
	if err := r.db.SelectContext(ctx, &mappings, query, programID); err != nil {
		return nil, fmt.Errorf("list co-po mappings: %w", err)
	}
	return mappings, nil
}

// ListCOPOMappingsByBatch scopes the CO-PO edges to courses of one batch.
func (r *OutcomeRepository) ListCOPOMappingsByBatch(ctx context.Context, batchID string) ([]models.COPOMapping, error) {
	const query = `SELECT m.co_id, m.po_id, co.course_id, m.level
        FROM co_po_mappings m
        JOIN course_outcomes co ON co.id = m.co_id
        JOIN courses c ON c.id = co.course_id
        WHERE c.batch_id = $1`
	var mappings []models.COPOMapping
	if err := r.db.SelectContext(ctx, &mappings, query, batchID); err != nil {
		return nil, fmt.Errorf("list co-po mappings by batch: %w", err)
	}
	return mappings, nil
}
