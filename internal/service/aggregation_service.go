package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
	"github.com/noah-isme/obe-attainment-api/pkg/jobs"
)

// sectionFanOut bounds concurrent per-section computations.
const sectionFanOut = 4

type sectionOutcome struct {
	section  models.SectionCOAttainment
	students []models.StudentCOAttainment
}

type rosterCalculator interface {
	Thresholds(ctx context.Context, courseID string) (*models.ThresholdConfig, error)
	ComputeRoster(ctx context.Context, courseID, coID, sectionID string, thresholds models.ThresholdConfig, enrollments []models.Enrollment) ([]models.StudentCOAttainment, error)
}

type enrollmentLister interface {
	ListActiveByCourse(ctx context.Context, courseID, sectionID string) ([]models.Enrollment, error)
	ListSections(ctx context.Context, courseID string) ([]string, error)
}

type outcomeLister interface {
	FindCO(ctx context.Context, id string) (*models.CourseOutcome, error)
	ListCOsByCourse(ctx context.Context, courseID string) ([]models.CourseOutcome, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type attainmentWriter interface {
	UpsertStudentCO(ctx context.Context, row models.StudentCOAttainmentRow) error
}

// AggregationService rolls per-student CO results up to section and course
// level and persists the derived rows.
type AggregationService struct {
	students    rosterCalculator
	enrollments enrollmentLister
	outcomes    outcomeLister
	courses     courseFinder
	attainments attainmentWriter
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger

	mu          sync.Mutex
	courseLocks map[string]*sync.Mutex
}

// NewAggregationService constructs AggregationService.
func NewAggregationService(students rosterCalculator, enrollments enrollmentLister, outcomes outcomeLister, courses courseFinder, attainments attainmentWriter, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregationService{
		students:    students,
		enrollments: enrollments,
		outcomes:    outcomes,
		courses:     courses,
		attainments: attainments,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		courseLocks: make(map[string]*sync.Mutex),
	}
}

// lockCourse serialises recomputation per course so concurrent requests for
// the same course do not interleave writes.
func (s *AggregationService) lockCourse(courseID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.courseLocks[courseID]
	if !ok {
		lock = &sync.Mutex{}
		s.courseLocks[courseID] = lock
	}
	return lock
}

// AggregateSection computes one section's attainment of one CO.
func (s *AggregationService) AggregateSection(ctx context.Context, courseID, coID, sectionID string) (*models.SectionCOAttainment, error) {
	thresholds, err := s.students.Thresholds(ctx, courseID)
	if err != nil {
		return nil, err
	}
	co, err := s.findCO(ctx, coID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListActiveByCourse(ctx, courseID, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	students, err := s.students.ComputeRoster(ctx, courseID, coID, sectionID, *thresholds, enrollments)
	if err != nil {
		return nil, err
	}
	if students == nil {
		return nil, appErrors.Clone(appErrors.ErrNoData, "")
	}
	section := s.aggregateStudents(courseID, coID, co.Code, sectionID, *thresholds, students)
	return &section, nil
}

// AggregateCourse pools all sections of the course for one CO. The course
// figure concatenates the per-section student lists; section rosters are
// disjoint, so every student counts exactly once.
func (s *AggregationService) AggregateCourse(ctx context.Context, courseID, coID string) (*models.CourseCOAttainment, error) {
	thresholds, err := s.students.Thresholds(ctx, courseID)
	if err != nil {
		return nil, err
	}
	co, err := s.findCO(ctx, coID)
	if err != nil {
		return nil, err
	}
	return s.aggregateCourse(ctx, courseID, *co, *thresholds)
}

func (s *AggregationService) aggregateCourse(ctx context.Context, courseID string, co models.CourseOutcome, thresholds models.ThresholdConfig) (*models.CourseCOAttainment, error) {
	sectionIDs, err := s.enrollments.ListSections(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	// Sections are independent, so they fan out; each task writes only
	// its own slot and results combine in section order, keeping the
	// output deterministic.
	computed := make([]*sectionOutcome, len(sectionIDs))
	tasks := make([]jobs.Task, 0, len(sectionIDs))
	for i, sectionID := range sectionIDs {
		i, sectionID := i, sectionID
		tasks = append(tasks, func(ctx context.Context) error {
			enrollments, err := s.enrollments.ListActiveByCourse(ctx, courseID, sectionID)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
			}
			students, err := s.students.ComputeRoster(ctx, courseID, co.ID, sectionID, thresholds, enrollments)
			if err != nil {
				return err
			}
			if students == nil {
				return nil
			}
			section := s.aggregateStudents(courseID, co.ID, co.Code, sectionID, thresholds, students)
			computed[i] = &sectionOutcome{section: section, students: students}
			return nil
		})
	}
	if err := jobs.Run(ctx, sectionFanOut, tasks); err != nil {
		return nil, err
	}

	sections := make([]models.SectionCOAttainment, 0, len(sectionIDs))
	var pooled []models.StudentCOAttainment
	for _, outcome := range computed {
		if outcome == nil {
			continue
		}
		sections = append(sections, outcome.section)
		pooled = append(pooled, outcome.students...)
	}
	if len(sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "")
	}

	course := models.CourseCOAttainment{
		CourseID: courseID,
		COID:     co.ID,
		COCode:   co.Code,
		Sections: sections,
	}
	fillCohortStats(&course.TotalStudents, &course.StudentsMeetingTarget, &course.PercentageMeetingTarget,
		&course.AverageAttainment, &course.WeightedAverageAttainment, pooled)
	course.AttainmentLevel = classifyLevel(course.PercentageMeetingTarget, thresholds)
	course.AttainmentValue = sectionLevelMean(sections, course.AttainmentLevel)
	return &course, nil
}

// CalculateCourseCOAttainment computes the course-level attainment of every
// CO of the course. COs with no mapped questions are absent from the result
// rather than reported as zero.
func (s *AggregationService) CalculateCourseCOAttainment(ctx context.Context, courseID string) ([]models.CourseCOAttainment, error) {
	thresholds, err := s.students.Thresholds(ctx, courseID)
	if err != nil {
		return nil, err
	}
	cos, err := s.outcomes.ListCOsByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course outcomes")
	}

	results := make([]models.CourseCOAttainment, 0, len(cos))
	for _, co := range cos {
		course, err := s.aggregateCourse(ctx, courseID, co, *thresholds)
		if err != nil {
			if appErrors.IsNoData(err) {
				continue
			}
			return nil, err
		}
		results = append(results, *course)
	}
	return results, nil
}

// CalculateComprehensiveCOAttainment recomputes the full course result tree
// and persists every student-CO row, recording a per-row outcome so callers
// can retry only failed rows. Recomputation is serialised per course.
func (s *AggregationService) CalculateComprehensiveCOAttainment(ctx context.Context, courseID string, persist bool) (*models.ComprehensiveCOAttainment, error) {
	lock := s.lockCourse(courseID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	outcomes, err := s.CalculateCourseCOAttainment(ctx, courseID)
	if err != nil {
		return nil, err
	}

	result := &models.ComprehensiveCOAttainment{
		CourseID:     courseID,
		AcademicYear: course.AcademicYear,
		Outcomes:     outcomes,
		CalculatedAt: time.Now().UTC(),
	}

	if persist {
		result.SaveReport = s.persist(ctx, course, outcomes)
		if s.cache != nil {
			pattern := fmt.Sprintf("attainment:po:%s:*", course.ProgramID)
			if err := s.cache.Invalidate(ctx, pattern); err != nil {
				s.logger.Warn("invalidate po cache", zap.String("course_id", courseID), zap.Error(err))
			}
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveCalculation("comprehensive_co", time.Since(start))
	}
	return result, nil
}

// persist writes section-scope rows for every student result plus a
// course-scope row (section id '') per student and CO. Failures do not
// abort the batch.
func (s *AggregationService) persist(ctx context.Context, course *models.Course, outcomes []models.CourseCOAttainment) *models.SaveReport {
	report := &models.SaveReport{}
	calculatedAt := time.Now().UTC()
	for _, outcome := range outcomes {
		for _, section := range outcome.Sections {
			for _, student := range section.Students {
				row := models.StudentCOAttainmentRow{
					CourseID:           course.ID,
					SectionID:          section.SectionID,
					COID:               outcome.COID,
					StudentID:          student.StudentID,
					AcademicYear:       course.AcademicYear,
					Percentage:         student.Percentage,
					WeightedPercentage: student.WeightedPercentage,
					MetTarget:          student.MetTarget,
					CalculatedAt:       calculatedAt,
				}
				if err := s.attainments.UpsertStudentCO(ctx, row); err != nil {
					report.Failures = append(report.Failures, models.SaveFailure{
						COID:      outcome.COID,
						SectionID: section.SectionID,
						StudentID: student.StudentID,
						Reason:    err.Error(),
					})
					continue
				}
				report.Saved++

				row.SectionID = ""
				if err := s.attainments.UpsertStudentCO(ctx, row); err != nil {
					report.Failures = append(report.Failures, models.SaveFailure{
						COID:      outcome.COID,
						StudentID: student.StudentID,
						Reason:    err.Error(),
					})
					continue
				}
				report.Saved++
			}
		}
	}
	if len(report.Failures) > 0 {
		s.logger.Warn("attainment persistence incomplete",
			zap.String("course_id", course.ID),
			zap.Int("saved", report.Saved),
			zap.Int("failed", len(report.Failures)))
	}
	return report
}

func (s *AggregationService) findCO(ctx context.Context, coID string) (*models.CourseOutcome, error) {
	co, err := s.outcomes.FindCO(ctx, coID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course outcome not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course outcome")
	}
	return co, nil
}

func (s *AggregationService) aggregateStudents(courseID, coID, coCode, sectionID string, thresholds models.ThresholdConfig, students []models.StudentCOAttainment) models.SectionCOAttainment {
	section := models.SectionCOAttainment{
		CourseID:  courseID,
		SectionID: sectionID,
		COID:      coID,
		COCode:    coCode,
		Students:  students,
	}
	fillCohortStats(&section.TotalStudents, &section.StudentsMeetingTarget, &section.PercentageMeetingTarget,
		&section.AverageAttainment, &section.WeightedAverageAttainment, students)
	section.AttainmentLevel = classifyLevel(section.PercentageMeetingTarget, thresholds)
	return section
}

func fillCohortStats(total, meeting *int, pctMeeting, avg, weightedAvg *float64, students []models.StudentCOAttainment) {
	*total = len(students)
	if len(students) == 0 {
		return
	}
	met := 0
	sumPct := 0.0
	sumWeighted := 0.0
	for _, student := range students {
		if student.MetTarget {
			met++
		}
		sumPct += student.Percentage
		sumWeighted += student.WeightedPercentage
	}
	*meeting = met
	*pctMeeting = round2(float64(met) / float64(len(students)) * 100)
	*avg = round2(sumPct / float64(len(students)))
	*weightedAvg = round2(sumWeighted / float64(len(students)))
}

// classifyLevel maps the percentage of students meeting target onto the
// discrete 0-3 scale, checked high to low.
func classifyLevel(percentageMeetingTarget float64, thresholds models.ThresholdConfig) int {
	switch {
	case percentageMeetingTarget >= thresholds.Level3Threshold:
		return 3
	case percentageMeetingTarget >= thresholds.Level2Threshold:
		return 2
	case percentageMeetingTarget >= thresholds.Level1Threshold:
		return 1
	default:
		return 0
	}
}

// sectionLevelMean is the fractional 0-3 course figure consumed by PO
// roll-up: the mean of per-section levels, or the pooled level when the
// course has no per-section breakdown.
func sectionLevelMean(sections []models.SectionCOAttainment, pooledLevel int) float64 {
	if len(sections) == 0 {
		return float64(pooledLevel)
	}
	sum := 0
	for _, section := range sections {
		sum += section.AttainmentLevel
	}
	return round2(float64(sum) / float64(len(sections)))
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
