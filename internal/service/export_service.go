package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	"github.com/noah-isme/obe-attainment-api/pkg/export"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

type attainmentAuditReader interface {
	FetchStudentCO(ctx context.Context, courseID, academicYear string) ([]models.StudentCOAttainmentRow, error)
}

// ExportService renders persisted attainment rows as downloadable audit
// artifacts for accreditation reviews.
type ExportService struct {
	attainments attainmentAuditReader
	csv         *export.CSVExporter
	logger      *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(attainments attainmentAuditReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{attainments: attainments, csv: export.NewCSVExporter(), logger: logger}
}

// CourseAuditCSV exports the persisted student-CO rows of one course as
// CSV. Section id '' rows are labelled 'course' to keep the two scopes
// distinguishable in spreadsheets.
func (s *ExportService) CourseAuditCSV(ctx context.Context, courseID, academicYear string) ([]byte, string, error) {
	rows, err := s.attainments.FetchStudentCO(ctx, courseID, academicYear)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch attainment rows")
	}

	table := export.Table{
		Columns: []string{"course_id", "section_id", "co_id", "student_id", "academic_year", "percentage", "weighted_percentage", "met_target", "calculated_at"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		scope := row.SectionID
		if scope == "" {
			scope = "course"
		}
		table.Rows = append(table.Rows, []string{
			row.CourseID,
			scope,
			row.COID,
			row.StudentID,
			row.AcademicYear,
			strconv.FormatFloat(row.Percentage, 'f', 2, 64),
			strconv.FormatFloat(row.WeightedPercentage, 'f', 2, 64),
			strconv.FormatBool(row.MetTarget),
			row.CalculatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	payload, err := s.csv.Render(table)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	filename := fmt.Sprintf("attainment-%s.csv", courseID)
	if academicYear != "" {
		filename = fmt.Sprintf("attainment-%s-%s.csv", courseID, academicYear)
	}
	return payload, filename, nil
}
