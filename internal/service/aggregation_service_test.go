package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

type mockRosterCalculator struct {
	thresholds models.ThresholdConfig
	rosters    map[string][]models.StudentCOAttainment
}

func rosterKey(coID, sectionID string) string {
	return coID + "|" + sectionID
}

func (m *mockRosterCalculator) Thresholds(ctx context.Context, courseID string) (*models.ThresholdConfig, error) {
	thresholds := m.thresholds
	return &thresholds, nil
}

func (m *mockRosterCalculator) ComputeRoster(ctx context.Context, courseID, coID, sectionID string, thresholds models.ThresholdConfig, enrollments []models.Enrollment) ([]models.StudentCOAttainment, error) {
	return m.rosters[rosterKey(coID, sectionID)], nil
}

type mockEnrollmentLister struct {
	sections    []string
	enrollments map[string][]models.Enrollment
}

func (m *mockEnrollmentLister) ListActiveByCourse(ctx context.Context, courseID, sectionID string) ([]models.Enrollment, error) {
	return m.enrollments[sectionID], nil
}

func (m *mockEnrollmentLister) ListSections(ctx context.Context, courseID string) ([]string, error) {
	return m.sections, nil
}

type mockOutcomeLister struct {
	cos []models.CourseOutcome
}

func (m *mockOutcomeLister) FindCO(ctx context.Context, id string) (*models.CourseOutcome, error) {
	for _, co := range m.cos {
		if co.ID == id {
			found := co
			return &found, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockOutcomeLister) ListCOsByCourse(ctx context.Context, courseID string) ([]models.CourseOutcome, error) {
	return m.cos, nil
}

type mockAttainmentWriter struct {
	rows     []models.StudentCOAttainmentRow
	failMsgs map[string]string
}

func (m *mockAttainmentWriter) UpsertStudentCO(ctx context.Context, row models.StudentCOAttainmentRow) error {
	if msg, ok := m.failMsgs[row.StudentID+"|"+row.SectionID]; ok {
		return errors.New(msg)
	}
	m.rows = append(m.rows, row)
	return nil
}

// cohort builds total student results of which met scored above target.
func cohort(courseID, coID, sectionID string, met, total int) []models.StudentCOAttainment {
	students := make([]models.StudentCOAttainment, 0, total)
	for i := 0; i < total; i++ {
		student := models.StudentCOAttainment{
			StudentID:          fmt.Sprintf("%s-stu-%d", sectionID, i),
			CourseID:           courseID,
			SectionID:          sectionID,
			COID:               coID,
			Percentage:         40,
			WeightedPercentage: 40,
		}
		if i < met {
			student.Percentage = 80
			student.WeightedPercentage = 80
			student.MetTarget = true
		}
		students = append(students, student)
	}
	return students
}

func newTestAggregationService(roster *mockRosterCalculator, enrollments *mockEnrollmentLister, outcomes *mockOutcomeLister, courses *mockCourseRepo, writer *mockAttainmentWriter) *AggregationService {
	return NewAggregationService(roster, enrollments, outcomes, courses, writer, nil, nil, nil)
}

func TestAggregateSectionLevels(t *testing.T) {
	roster := &mockRosterCalculator{
		thresholds: validThresholds(),
		rosters: map[string][]models.StudentCOAttainment{
			rosterKey("co-1", "sec-a"): cohort("course-1", "co-1", "sec-a", 6, 10),
		},
	}
	svc := newTestAggregationService(roster,
		&mockEnrollmentLister{enrollments: map[string][]models.Enrollment{"sec-a": make([]models.Enrollment, 10)}},
		&mockOutcomeLister{cos: []models.CourseOutcome{{ID: "co-1", Code: "CO1", CourseID: "course-1"}}},
		&mockCourseRepo{},
		&mockAttainmentWriter{},
	)

	section, err := svc.AggregateSection(context.Background(), "course-1", "co-1", "sec-a")
	require.NoError(t, err)
	assert.Equal(t, 10, section.TotalStudents)
	assert.Equal(t, 6, section.StudentsMeetingTarget)
	assert.Equal(t, 60.0, section.PercentageMeetingTarget)
	// 60% clears the level-1 threshold (50) but not level 2 (70).
	assert.Equal(t, 1, section.AttainmentLevel)
	assert.Equal(t, "CO1", section.COCode)
}

func TestAggregateSectionNoMappedQuestions(t *testing.T) {
	svc := newTestAggregationService(
		&mockRosterCalculator{thresholds: validThresholds(), rosters: map[string][]models.StudentCOAttainment{}},
		&mockEnrollmentLister{},
		&mockOutcomeLister{cos: []models.CourseOutcome{{ID: "co-1", Code: "CO1"}}},
		&mockCourseRepo{},
		&mockAttainmentWriter{},
	)

	_, err := svc.AggregateSection(context.Background(), "course-1", "co-1", "sec-a")
	require.Error(t, err)
	assert.True(t, appErrors.IsNoData(err))
}

func TestAggregateCoursePoolsDisjointSections(t *testing.T) {
	roster := &mockRosterCalculator{
		thresholds: validThresholds(),
		rosters: map[string][]models.StudentCOAttainment{
			// sec-a: 100% meeting -> level 3; sec-b: 8/10 = 80% -> level 2.
			rosterKey("co-1", "sec-a"): cohort("course-1", "co-1", "sec-a", 10, 10),
			rosterKey("co-1", "sec-b"): cohort("course-1", "co-1", "sec-b", 8, 10),
		},
	}
	svc := newTestAggregationService(roster,
		&mockEnrollmentLister{sections: []string{"sec-a", "sec-b"}},
		&mockOutcomeLister{cos: []models.CourseOutcome{{ID: "co-1", Code: "CO1"}}},
		&mockCourseRepo{},
		&mockAttainmentWriter{},
	)

	course, err := svc.AggregateCourse(context.Background(), "course-1", "co-1")
	require.NoError(t, err)
	require.Len(t, course.Sections, 2)
	assert.Equal(t, 20, course.TotalStudents)
	assert.Equal(t, 18, course.StudentsMeetingTarget)
	assert.Equal(t, 90.0, course.PercentageMeetingTarget)
	// Pooled 90% clears the level-3 threshold (85).
	assert.Equal(t, 3, course.AttainmentLevel)
	// Fractional figure is the mean of section levels: (3+2)/2.
	assert.Equal(t, 2.5, course.AttainmentValue)

	// Sections combine in listing order regardless of fan-out scheduling.
	assert.Equal(t, "sec-a", course.Sections[0].SectionID)
	assert.Equal(t, "sec-b", course.Sections[1].SectionID)
}

func TestAggregateCourseSkipsEmptySections(t *testing.T) {
	roster := &mockRosterCalculator{
		thresholds: validThresholds(),
		rosters: map[string][]models.StudentCOAttainment{
			rosterKey("co-1", "sec-b"): cohort("course-1", "co-1", "sec-b", 5, 10),
		},
	}
	svc := newTestAggregationService(roster,
		&mockEnrollmentLister{sections: []string{"sec-a", "sec-b"}},
		&mockOutcomeLister{cos: []models.CourseOutcome{{ID: "co-1", Code: "CO1"}}},
		&mockCourseRepo{},
		&mockAttainmentWriter{},
	)

	course, err := svc.AggregateCourse(context.Background(), "course-1", "co-1")
	require.NoError(t, err)
	require.Len(t, course.Sections, 1)
	assert.Equal(t, 10, course.TotalStudents)
}

func TestCalculateCourseCOAttainmentSkipsUncomputableCOs(t *testing.T) {
	roster := &mockRosterCalculator{
		thresholds: validThresholds(),
		rosters: map[string][]models.StudentCOAttainment{
			rosterKey("co-1", "sec-a"): cohort("course-1", "co-1", "sec-a", 9, 10),
		},
	}
	svc := newTestAggregationService(roster,
		&mockEnrollmentLister{sections: []string{"sec-a"}},
		&mockOutcomeLister{cos: []models.CourseOutcome{
			{ID: "co-1", Code: "CO1"},
			{ID: "co-2", Code: "CO2"}, // no mapped questions anywhere
		}},
		&mockCourseRepo{},
		&mockAttainmentWriter{},
	)

	results, err := svc.CalculateCourseCOAttainment(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "co-1", results[0].COID)
}

func TestCalculateComprehensivePersistsBothScopes(t *testing.T) {
	roster := &mockRosterCalculator{
		thresholds: validThresholds(),
		rosters: map[string][]models.StudentCOAttainment{
			rosterKey("co-1", "sec-a"): cohort("course-1", "co-1", "sec-a", 2, 3),
		},
	}
	writer := &mockAttainmentWriter{}
	svc := newTestAggregationService(roster,
		&mockEnrollmentLister{sections: []string{"sec-a"}},
		&mockOutcomeLister{cos: []models.CourseOutcome{{ID: "co-1", Code: "CO1"}}},
		&mockCourseRepo{courses: map[string]models.Course{
			"course-1": {ID: "course-1", ProgramID: "prog-1", AcademicYear: "2025-26"},
		}},
		writer,
	)

	result, err := svc.CalculateComprehensiveCOAttainment(context.Background(), "course-1", true)
	require.NoError(t, err)
	require.NotNil(t, result.SaveReport)
	// One section-scope row plus one course-scope row per student.
	assert.Equal(t, 6, result.SaveReport.Saved)
	assert.Empty(t, result.SaveReport.Failures)
	assert.Equal(t, "2025-26", result.AcademicYear)

	sectionRows, courseRows := 0, 0
	for _, row := range writer.rows {
		assert.Equal(t, "2025-26", row.AcademicYear)
		if row.SectionID == "" {
			courseRows++
		} else {
			sectionRows++
		}
	}
	assert.Equal(t, 3, sectionRows)
	assert.Equal(t, 3, courseRows)
}

func TestCalculateComprehensiveRecordsRowFailures(t *testing.T) {
	roster := &mockRosterCalculator{
		thresholds: validThresholds(),
		rosters: map[string][]models.StudentCOAttainment{
			rosterKey("co-1", "sec-a"): cohort("course-1", "co-1", "sec-a", 2, 3),
		},
	}
	writer := &mockAttainmentWriter{failMsgs: map[string]string{
		"sec-a-stu-1|sec-a": "connection reset",
	}}
	svc := newTestAggregationService(roster,
		&mockEnrollmentLister{sections: []string{"sec-a"}},
		&mockOutcomeLister{cos: []models.CourseOutcome{{ID: "co-1", Code: "CO1"}}},
		&mockCourseRepo{courses: map[string]models.Course{
			"course-1": {ID: "course-1", ProgramID: "prog-1", AcademicYear: "2025-26"},
		}},
		writer,
	)

	result, err := svc.CalculateComprehensiveCOAttainment(context.Background(), "course-1", true)
	require.NoError(t, err)
	require.NotNil(t, result.SaveReport)
	// The failed student loses both rows; the other two students save fully.
	assert.Equal(t, 4, result.SaveReport.Saved)
	require.Len(t, result.SaveReport.Failures, 1)
	assert.Equal(t, "sec-a-stu-1", result.SaveReport.Failures[0].StudentID)
	assert.Equal(t, "connection reset", result.SaveReport.Failures[0].Reason)
}

func TestCalculateComprehensiveIsDeterministic(t *testing.T) {
	roster := &mockRosterCalculator{
		thresholds: validThresholds(),
		rosters: map[string][]models.StudentCOAttainment{
			rosterKey("co-1", "sec-a"): cohort("course-1", "co-1", "sec-a", 7, 10),
			rosterKey("co-1", "sec-b"): cohort("course-1", "co-1", "sec-b", 4, 10),
			rosterKey("co-2", "sec-a"): cohort("course-1", "co-2", "sec-a", 10, 10),
		},
	}
	svc := newTestAggregationService(roster,
		&mockEnrollmentLister{sections: []string{"sec-a", "sec-b"}},
		&mockOutcomeLister{cos: []models.CourseOutcome{{ID: "co-1", Code: "CO1"}, {ID: "co-2", Code: "CO2"}}},
		&mockCourseRepo{courses: map[string]models.Course{
			"course-1": {ID: "course-1", AcademicYear: "2025-26"},
		}},
		&mockAttainmentWriter{},
	)

	first, err := svc.CalculateComprehensiveCOAttainment(context.Background(), "course-1", false)
	require.NoError(t, err)
	second, err := svc.CalculateComprehensiveCOAttainment(context.Background(), "course-1", false)
	require.NoError(t, err)
	assert.Equal(t, first.Outcomes, second.Outcomes)
}

func TestClassifyLevelLadder(t *testing.T) {
	thresholds := validThresholds()
	assert.Equal(t, 3, classifyLevel(85, thresholds))
	assert.Equal(t, 2, classifyLevel(84.99, thresholds))
	assert.Equal(t, 2, classifyLevel(70, thresholds))
	assert.Equal(t, 1, classifyLevel(50, thresholds))
	assert.Equal(t, 0, classifyLevel(49.99, thresholds))
	assert.Equal(t, 0, classifyLevel(0, thresholds))
}

func TestClassifyLevelMonotonicInThresholds(t *testing.T) {
	// Raising any threshold can only hold or lower the classified level.
	base := validThresholds()
	for _, pct := range []float64{0, 49.99, 50, 60, 70, 84.99, 85, 100} {
		before := classifyLevel(pct, base)

		raised := base
		raised.Level1Threshold += 5
		assert.LessOrEqual(t, classifyLevel(pct, raised), before)

		raised = base
		raised.Level2Threshold += 5
		assert.LessOrEqual(t, classifyLevel(pct, raised), before)

		raised = base
		raised.Level3Threshold += 5
		assert.LessOrEqual(t, classifyLevel(pct, raised), before)
	}
}
