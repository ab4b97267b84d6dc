package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

type mockAuditReader struct {
	rows []models.StudentCOAttainmentRow
}

func (m *mockAuditReader) FetchStudentCO(ctx context.Context, courseID, academicYear string) ([]models.StudentCOAttainmentRow, error) {
	return m.rows, nil
}

func TestCourseAuditCSV(t *testing.T) {
	calculatedAt := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := NewExportService(&mockAuditReader{rows: []models.StudentCOAttainmentRow{
		{CourseID: "course-1", SectionID: "sec-a", COID: "co-1", StudentID: "stu-1", AcademicYear: "2025-26", Percentage: 70, WeightedPercentage: 72.5, MetTarget: true, CalculatedAt: calculatedAt},
		{CourseID: "course-1", SectionID: "", COID: "co-1", StudentID: "stu-1", AcademicYear: "2025-26", Percentage: 70, WeightedPercentage: 72.5, MetTarget: true, CalculatedAt: calculatedAt},
	}}, nil)

	payload, filename, err := svc.CourseAuditCSV(context.Background(), "course-1", "2025-26")
	require.NoError(t, err)
	assert.Equal(t, "attainment-course-1-2025-26.csv", filename)

	lines := strings.Split(strings.TrimRight(string(payload), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "course_id,section_id,co_id,student_id,academic_year,percentage,weighted_percentage,met_target,calculated_at", lines[0])
	assert.Contains(t, lines[1], "sec-a")
	// Course-scope rows carry the 'course' label instead of an empty cell.
	assert.Contains(t, lines[2], ",course,")
	assert.Contains(t, lines[1], "72.50")
	assert.Contains(t, lines[1], "2026-05-10T12:00:00Z")
}

func TestCourseAuditCSVEmptyCourse(t *testing.T) {
	svc := NewExportService(&mockAuditReader{}, nil)

	payload, filename, err := svc.CourseAuditCSV(context.Background(), "course-9", "")
	require.NoError(t, err)
	assert.Equal(t, "attainment-course-9.csv", filename)
	assert.Equal(t, 1, strings.Count(string(payload), "\n"))
}
