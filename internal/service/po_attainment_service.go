package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

type coAttainmentProvider interface {
	CalculateCourseCOAttainment(ctx context.Context, courseID string) ([]models.CourseCOAttainment, error)
}

type courseLister interface {
	ListByProgram(ctx context.Context, programID string) ([]models.Course, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.Course, error)
	FindBatch(ctx context.Context, id string) (*models.Batch, error)
}

type poMappingReader interface {
	ListPOsByProgram(ctx context.Context, programID string) ([]models.ProgramOutcome, error)
	ListCOPOMappings(ctx context.Context, programID string) ([]models.COPOMapping, error)
	ListCOPOMappingsByBatch(ctx context.Context, batchID string) ([]models.COPOMapping, error)
}

type indirectReader interface {
	IndirectPOAttainment(ctx context.Context, programID, academicYear string) (map[string]float64, error)
}

// POAttainmentService rolls course-level CO attainment up into program
// outcome attainment, blending direct and indirect measures.
type POAttainmentService struct {
	outcomes   poMappingReader
	courses    courseLister
	attainment coAttainmentProvider
	surveys    indirectReader
	cache      *CacheService
	metrics    *MetricsService
	weights    models.WeightConfig
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewPOAttainmentService constructs POAttainmentService. The weight
// configuration is injected as a value so calculations stay pure.
func NewPOAttainmentService(outcomes poMappingReader, courses courseLister, attainment coAttainmentProvider, surveys indirectReader, cache *CacheService, metrics *MetricsService, weights models.WeightConfig, logger *zap.Logger) *POAttainmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &POAttainmentService{
		outcomes:   outcomes,
		courses:    courses,
		attainment: attainment,
		surveys:    surveys,
		cache:      cache,
		metrics:    metrics,
		weights:    weights,
		validator:  validator.New(),
		logger:     logger,
	}
}

// CalculateProgramPOAttainment computes per-PO attainment across every
// course offered under the program, optionally filtered to one academic
// year. The boolean indicates whether the result came from cache.
func (s *POAttainmentService) CalculateProgramPOAttainment(ctx context.Context, programID, academicYear string) (*models.ProgramPOAttainmentSummary, bool, error) {
	cacheKey := fmt.Sprintf("attainment:po:%s:%s:program", programID, academicYear)
	if s.cache != nil {
		var cached models.ProgramPOAttainmentSummary
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read po cache")
		} else if hit {
			return &cached, true, nil
		}
	}

	mappings, err := s.outcomes.ListCOPOMappings(ctx, programID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list co-po mappings")
	}
	courses, err := s.courses.ListByProgram(ctx, programID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program courses")
	}
	if academicYear != "" {
		filtered := courses[:0]
		for _, course := range courses {
			if course.AcademicYear == academicYear {
				filtered = append(filtered, course)
			}
		}
		courses = filtered
	}

	summary, err := s.summarise(ctx, programID, "", academicYear, mappings, courses)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, 0); err != nil {
			s.logger.Warn("cache po summary", zap.String("program_id", programID), zap.Error(err))
		}
	}
	return summary, false, nil
}

// CalculateBatchPOAttainment is the batch-scoped variant: only CO-PO edges
// whose course belongs to the batch contribute.
func (s *POAttainmentService) CalculateBatchPOAttainment(ctx context.Context, batchID string) (*models.ProgramPOAttainmentSummary, bool, error) {
	batch, err := s.courses.FindBatch(ctx, batchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	cacheKey := fmt.Sprintf("attainment:po:%s:%s:batch:%s", batch.ProgramID, batch.AcademicYear, batchID)
	if s.cache != nil {
		var cached models.ProgramPOAttainmentSummary
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read po cache")
		} else if hit {
			return &cached, true, nil
		}
	}

	mappings, err := s.outcomes.ListCOPOMappingsByBatch(ctx, batchID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list co-po mappings")
	}
	courses, err := s.courses.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch courses")
	}

	summary, err := s.summarise(ctx, batch.ProgramID, batchID, batch.AcademicYear, mappings, courses)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, 0); err != nil {
			s.logger.Warn("cache batch po summary", zap.String("batch_id", batchID), zap.Error(err))
		}
	}
	return summary, false, nil
}

func (s *POAttainmentService) summarise(ctx context.Context, programID, batchID, academicYear string, mappings []models.COPOMapping, courses []models.Course) (*models.ProgramPOAttainmentSummary, error) {
	start := time.Now()

	if err := s.validator.Struct(s.weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "invalid attainment weight configuration")
	}

	pos, err := s.outcomes.ListPOsByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program outcomes")
	}

	courseInScope := make(map[string]bool, len(courses))
	coValues := make(map[string]float64)
	for _, course := range courses {
		courseInScope[course.ID] = true
		outcomes, err := s.attainment.CalculateCourseCOAttainment(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		for _, outcome := range outcomes {
			coValues[outcome.COID] = outcome.AttainmentValue
		}
	}

	indirect, err := s.surveys.IndirectPOAttainment(ctx, programID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read indirect attainment")
	}

	byPO := make(map[string][]models.COPOMapping)
	for _, mapping := range mappings {
		if !courseInScope[mapping.CourseID] {
			continue
		}
		byPO[mapping.POID] = append(byPO[mapping.POID], mapping)
	}

	summary := &models.ProgramPOAttainmentSummary{
		ProgramID:      programID,
		BatchID:        batchID,
		AcademicYear:   academicYear,
		DirectWeight:   s.weights.DirectWeight,
		IndirectWeight: s.weights.IndirectWeight,
		Outcomes:       make([]models.POAttainment, 0, len(pos)),
		CalculatedAt:   time.Now().UTC(),
	}

	attainedCount := 0
	for _, po := range pos {
		result, err := s.calculatePO(po, byPO[po.ID], coValues, indirect)
		if err != nil {
			return nil, err
		}
		if result.Attained {
			attainedCount++
		}
		summary.Outcomes = append(summary.Outcomes, result)
	}

	if len(summary.Outcomes) > 0 {
		ratio := float64(attainedCount) / float64(len(summary.Outcomes))
		summary.ComplianceScore = round2(ratio * 100)
		summary.IsCompliant = ratio >= s.weights.ComplianceMinRatio
	}

	if s.metrics != nil {
		s.metrics.ObserveCalculation("po_attainment", time.Since(start))
	}
	return summary, nil
}

// calculatePO blends the correlation-weighted direct figure with the
// survey-sourced indirect figure. Both operands live on the 0-3 scale; an
// indirect figure outside it is a configuration fault, not data.
func (s *POAttainmentService) calculatePO(po models.ProgramOutcome, mappings []models.COPOMapping, coValues map[string]float64, indirect map[string]float64) (models.POAttainment, error) {
	result := models.POAttainment{
		POID:        po.ID,
		POCode:      po.Code,
		TargetLevel: s.weights.POTargetLevel,
		Status:      models.POStatusNotAttained,
	}

	weightedSum := 0.0
	weightTotal := 0.0
	for _, mapping := range mappings {
		value, ok := coValues[mapping.COID]
		if !ok {
			continue
		}
		level := mapping.Level
		if level < 1 {
			level = 1
		} else if level > 3 {
			level = 3
		}
		weightedSum += value * float64(level)
		weightTotal += float64(level)
		result.MappedCOCount++
	}
	if weightTotal > 0 {
		result.DirectAttainment = round2(weightedSum / weightTotal)
	}

	final := result.DirectAttainment
	if value, ok := indirect[po.ID]; ok {
		if value < 0 || value > 3 {
			return models.POAttainment{}, appErrors.Clone(appErrors.ErrIndirectScale,
				fmt.Sprintf("indirect attainment %.2f for %s outside the 0-3 scale", value, po.Code))
		}
		result.IndirectAttainment = round2(value)
		final = s.weights.DirectWeight*result.DirectAttainment + s.weights.IndirectWeight*result.IndirectAttainment
	}
	result.FinalAttainment = round2(final)

	result.AttainmentLevel = classifyScaleLevel(result.FinalAttainment)
	result.Attained = result.FinalAttainment >= s.weights.POTargetLevel
	if result.Attained {
		switch result.AttainmentLevel {
		case 3:
			result.Status = models.POStatusLevel3
		case 2:
			result.Status = models.POStatusLevel2
		default:
			result.Status = models.POStatusLevel1
		}
	}
	return result, nil
}

// classifyScaleLevel maps a 0-3 figure onto the discrete level ladder. This
// is the 0-3 counterpart of the percentage-based course thresholds; the two
// scales never mix.
func classifyScaleLevel(value float64) int {
	switch {
	case value >= 2.5:
		return 3
	case value >= 1.5:
		return 2
	case value >= 0.5:
		return 1
	default:
		return 0
	}
}
