package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// QuestionRepository resolves questions through their CO mappings.
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository constructs repository.
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListMappedToCO returns the questions mapped to a CO whose owning
// assessment belongs to the course and is active. When sectionID is
// non-empty only assessments scoped to that section (or unscoped) match.
func (r *QuestionRepository) ListMappedToCO(ctx context.Context, coID, courseID, sectionID string) ([]models.Question, error) {
	query := `SELECT q.id, q.assessment_id, q.number, q.max_marks,
        a.type AS assessment_type, a.weightage AS assessment_weightage
        FROM questions q
        JOIN question_co_mappings m ON m.question_id = q.id
        JOIN assessments a ON a.id = q.assessment_id
        WHERE m.co_id = $1 AND a.course_id = $2 AND a.active = TRUE`
	args := []interface{}{coID, courseID}
	if sectionID != "" {
		query += ` AND (a.section_id IS NULL OR a.section_id = $3)`
		args = append(args, sectionID)
	}
	query += ` ORDER BY a.id, q.number`

	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, fmt.Errorf("list questions for co: %w", err)
	}
	return questions, nil
}

// ListCOMappings returns the raw question-CO edges for a course.
func (r *QuestionRepository) ListCOMappings(ctx context.Context, courseID string) ([]models.QuestionCOMapping, error) {
	const query = `SELECT m.question_id, m.co_id
        FROM question_co_mappings m
        JOIN questions q ON q.id = m.question_id
        JOIN assessments a ON a.id = q.assessment_id
        WHERE a.course_id = $1`
	var mappings []models.QuestionCOMapping
	if err := r.db.SelectContext(ctx, &mappings, query, courseID); err != nil {
		return nil, fmt.Errorf("list question co mappings: %w", err)
	}
	return mappings, nil
}
