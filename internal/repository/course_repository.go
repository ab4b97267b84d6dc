package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// CourseRepository reads courses and their threshold configuration.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, program_id, batch_id, code, name, academic_year, created_at, updated_at
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Thresholds returns the course target configuration.
func (r *CourseRepository) Thresholds(ctx context.Context, courseID string) (*models.ThresholdConfig, error) {
	const query = `SELECT target_percentage, level1_threshold, level2_threshold, level3_threshold
        FROM courses WHERE id = $1`
	var thresholds models.ThresholdConfig
	if err := r.db.GetContext(ctx, &thresholds, query, courseID); err != nil {
		return nil, err
	}
	return &thresholds, nil
}

// ListByProgram returns all courses offered under a program.
func (r *CourseRepository) ListByProgram(ctx context.Context, programID string) ([]models.Course, error) {
	const query = `SELECT id, program_id, batch_id, code, name, academic_year, created_at, updated_at
        FROM courses WHERE program_id = $1 ORDER BY code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, programID); err != nil {
		return nil, fmt.Errorf("list courses by program: %w", err)
	}
	return courses, nil
}

// ListByBatch returns all courses of one batch.
func (r *CourseRepository) ListByBatch(ctx context.Context, batchID string) ([]models.Course, error) {
	const query = `SELECT id, program_id, batch_id, code, name, academic_year, created_at, updated_at
        FROM courses WHERE batch_id = $1 ORDER BY code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, batchID); err != nil {
		return nil, fmt.Errorf("list courses by batch: %w", err)
	}
	return courses, nil
}

// FindBatch returns a batch by id.
func (r *CourseRepository) FindBatch(ctx context.Context, id string) (*models.Batch, error) {
	const query = `SELECT id, program_id, name, academic_year FROM batches WHERE id = $1`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}
