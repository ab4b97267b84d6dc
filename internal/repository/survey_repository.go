package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SurveyRepository reads indirect attainment figures produced by the survey
// and exit-feedback instruments. The engine consumes them as opaque numbers
// on the 0-3 scale; it never computes them.
type SurveyRepository struct {
	db *sqlx.DB
}

// NewSurveyRepository constructs repository.
func NewSurveyRepository(db *sqlx.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// IndirectPOAttainment returns the indirect attainment per PO for a program
// and academic year. POs without a survey figure are absent from the map.
func (r *SurveyRepository) IndirectPOAttainment(ctx context.Context, programID, academicYear string) (map[string]float64, error) {
	query := `SELECT po_id, attainment FROM survey_po_attainments WHERE program_id = $1`
	args := []interface{}{programID}
	if academicYear != "" {
		query += ` AND academic_year = $2`
		args = append(args, academicYear)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("indirect po attainment: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var poID string
		var attainment float64
		if err := rows.Scan(&poID, &attainment); err != nil {
			return nil, fmt.Errorf("scan indirect attainment: %w", err)
		}
		result[poID] = attainment
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indirect attainment: %w", err)
	}
	return result, nil
}
