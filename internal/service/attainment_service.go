package service

import (
	"context"
	"database/sql"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

type questionReader interface {
	ListMappedToCO(ctx context.Context, coID, courseID, sectionID string) ([]models.Question, error)
}

type markReader interface {
	ListByStudentAndQuestions(ctx context.Context, studentID string, questionIDs []string) (map[string]models.MarkAttempt, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Thresholds(ctx context.Context, courseID string) (*models.ThresholdConfig, error)
}

type enrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
}

// Calculation notes carried on student results for audit reads.
const (
	noteWeighted       = "weighted"
	noteNoWeightData   = "no weight data; simple percentage used"
	noteNothingAttempt = "no questions attempted"
)

// AttainmentService computes one student's attainment of one course
// outcome from raw per-question marks.
type AttainmentService struct {
	questions   questionReader
	marks       markReader
	courses     courseReader
	enrollments enrollmentChecker
	logger      *zap.Logger
	round       func(float64) float64
}

// NewAttainmentService constructs AttainmentService.
func NewAttainmentService(questions questionReader, marks markReader, courses courseReader, enrollments enrollmentChecker, logger *zap.Logger) *AttainmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttainmentService{
		questions:   questions,
		marks:       marks,
		courses:     courses,
		enrollments: enrollments,
		logger:      logger,
		round:       func(v float64) float64 { return math.RoundToEven(v*100) / 100 },
	}
}

// MetTarget is the target evaluation: the weighted percentage is the
// canonical attainment figure and the boundary counts as met.
func (s *AttainmentService) MetTarget(weightedPercentage, targetPercentage float64) bool {
	return weightedPercentage >= targetPercentage
}

// Thresholds loads and validates a course's target configuration.
func (s *AttainmentService) Thresholds(ctx context.Context, courseID string) (*models.ThresholdConfig, error) {
	thresholds, err := s.courses.Thresholds(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course thresholds")
	}
	if !thresholds.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidThresholds, "")
	}
	return thresholds, nil
}

// ComputeStudentCO computes one enrolled student's attainment of one CO.
// It fails with NOT_ENROLLED before any calculation when the student holds
// no active enrollment, and with NO_DATA when the CO has no mapped active
// questions in scope.
func (s *AttainmentService) ComputeStudentCO(ctx context.Context, courseID, coID, studentID, sectionID string) (*models.StudentCOAttainment, error) {
	enrolled, err := s.enrollments.IsEnrolled(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrNotEnrolled, "")
	}

	thresholds, err := s.Thresholds(ctx, courseID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListMappedToCO(ctx, coID, courseID, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mapped questions")
	}
	if len(questions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "")
	}

	result, err := s.computeFromQuestions(ctx, courseID, coID, studentID, sectionID, questions)
	if err != nil {
		return nil, err
	}
	result.MetTarget = s.MetTarget(result.WeightedPercentage, thresholds.TargetPercentage)
	return result, nil
}

// ComputeRoster computes every enrolled student's attainment of one CO,
// resolving the mapped question set once. It returns nil (not an error)
// when the CO has no mapped questions: the CO is not yet computable.
func (s *AttainmentService) ComputeRoster(ctx context.Context, courseID, coID, sectionID string, thresholds models.ThresholdConfig, enrollments []models.Enrollment) ([]models.StudentCOAttainment, error) {
	questions, err := s.questions.ListMappedToCO(ctx, coID, courseID, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mapped questions")
	}
	if len(questions) == 0 {
		return nil, nil
	}

	results := make([]models.StudentCOAttainment, 0, len(enrollments))
	for _, enrollment := range enrollments {
		result, err := s.computeFromQuestions(ctx, courseID, coID, enrollment.StudentID, enrollment.SectionID, questions)
		if err != nil {
			return nil, err
		}
		result.MetTarget = s.MetTarget(result.WeightedPercentage, thresholds.TargetPercentage)
		results = append(results, *result)
	}
	return results, nil
}

func (s *AttainmentService) computeFromQuestions(ctx context.Context, courseID, coID, studentID, sectionID string, questions []models.Question) (*models.StudentCOAttainment, error) {
	questionIDs := make([]string, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}
	attempts, err := s.marks.ListByStudentAndQuestions(ctx, studentID, questionIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student marks")
	}

	result := s.calculate(questions, attempts)
	result.StudentID = studentID
	result.CourseID = courseID
	result.COID = coID
	result.SectionID = sectionID
	return result, nil
}

type assessmentGroup struct {
	id          string
	kind        models.AssessmentType
	weightage   float64
	obtainedSum float64
	maxSum      float64
	attempted   int
}

// calculate is the pure core of the student calculator: it partitions the
// mapped questions by owning assessment and sums marks over attempted
// questions only, at both the simple and the per-group level. Weightages
// are normalised over the weight that actually contributed.
func (s *AttainmentService) calculate(questions []models.Question, attempts map[string]models.MarkAttempt) *models.StudentCOAttainment {
	groups := make(map[string]*assessmentGroup)
	order := make([]string, 0)
	attemptedCount := 0
	totalObtained := 0.0
	totalMax := 0.0

	for _, q := range questions {
		group, ok := groups[q.AssessmentID]
		if !ok {
			group = &assessmentGroup{id: q.AssessmentID, kind: q.AssessmentType, weightage: q.AssessmentWeightage}
			groups[q.AssessmentID] = group
			order = append(order, q.AssessmentID)
		}
		attempt, ok := attempts[q.ID]
		if !ok || !attempt.Attempted {
			continue
		}
		group.obtainedSum += attempt.Obtained
		group.maxSum += q.MaxMarks
		group.attempted++
		attemptedCount++
		totalObtained += attempt.Obtained
		totalMax += q.MaxMarks
	}
	sort.Strings(order)

	result := &models.StudentCOAttainment{
		TotalQuestions:     len(questions),
		AttemptedQuestions: attemptedCount,
		ObtainedMarks:      s.round(totalObtained),
		MaxMarks:           s.round(totalMax),
	}

	if attemptedCount == 0 || totalMax == 0 {
		// An enrolled student who skipped every mapped question is an
		// informative zero, not missing data.
		result.CalculationNote = noteNothingAttempt
		return result
	}

	simple := totalObtained / totalMax * 100
	result.Percentage = s.round(simple)

	weightNum := 0.0
	weightDen := 0.0
	for _, id := range order {
		group := groups[id]
		if group.attempted == 0 || group.maxSum == 0 {
			continue
		}
		groupScore := group.obtainedSum / group.maxSum
		weightNum += groupScore * group.weightage / 100
		weightDen += group.weightage / 100
	}

	if weightDen == 0 {
		result.WeightedPercentage = result.Percentage
		result.CalculationNote = noteNoWeightData
	} else {
		result.WeightedPercentage = s.round(weightNum / weightDen * 100)
		result.CalculationNote = noteWeighted
	}

	for _, id := range order {
		group := groups[id]
		if group.attempted == 0 || group.maxSum == 0 {
			continue
		}
		groupPct := group.obtainedSum / group.maxSum * 100
		contribution := 0.0
		if weightDen > 0 {
			contribution = (group.weightage / 100 / weightDen) * groupPct
		}
		result.Contributions = append(result.Contributions, models.AssessmentContribution{
			AssessmentID:   group.id,
			AssessmentType: group.kind,
			Weightage:      group.weightage,
			ObtainedMarks:  s.round(group.obtainedSum),
			MaxMarks:       s.round(group.maxSum),
			Percentage:     s.round(groupPct),
			Contribution:   s.round(contribution),
		})
	}

	return result
}
