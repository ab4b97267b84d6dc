package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// MarkRepository is the read-only view over raw per-question student marks.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// ListByStudentAndQuestions returns one MarkAttempt per requested question.
// A missing row or a NULL obtained_marks both surface as the NotAttempted
// variant, so callers never see the storage-level ambiguity.
func (r *MarkRepository) ListByStudentAndQuestions(ctx context.Context, studentID string, questionIDs []string) (map[string]models.MarkAttempt, error) {
	attempts := make(map[string]models.MarkAttempt, len(questionIDs))
	for _, id := range questionIDs {
		attempts[id] = models.NotAttempted(id)
	}
	if len(questionIDs) == 0 {
		return attempts, nil
	}

	placeholders := make([]string, len(questionIDs))
	args := make([]interface{}, len(questionIDs)+1)
	args[0] = studentID
	for i, id := range questionIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args[i+1] = id
	}
	query := fmt.Sprintf(`SELECT question_id, obtained_marks FROM student_marks
        WHERE student_id = $1 AND question_id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list student marks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var questionID string
		var obtained sql.NullFloat64
		if err := rows.Scan(&questionID, &obtained); err != nil {
			return nil, fmt.Errorf("scan student mark: %w", err)
		}
		if obtained.Valid {
			attempts[questionID] = models.Attempted(questionID, obtained.Float64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student marks: %w", err)
	}
	return attempts, nil
}
