package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	"github.com/noah-isme/obe-attainment-api/pkg/response"
)

type studentAttainmentCalculator interface {
	ComputeStudentCO(ctx context.Context, courseID, coID, studentID, sectionID string) (*models.StudentCOAttainment, error)
}

type courseAggregator interface {
	AggregateSection(ctx context.Context, courseID, coID, sectionID string) (*models.SectionCOAttainment, error)
	AggregateCourse(ctx context.Context, courseID, coID string) (*models.CourseCOAttainment, error)
	CalculateCourseCOAttainment(ctx context.Context, courseID string) ([]models.CourseCOAttainment, error)
	CalculateComprehensiveCOAttainment(ctx context.Context, courseID string, persist bool) (*models.ComprehensiveCOAttainment, error)
}

// AttainmentHandler exposes CO attainment endpoints.
type AttainmentHandler struct {
	students   studentAttainmentCalculator
	aggregates courseAggregator
}

// NewAttainmentHandler constructs handler.
func NewAttainmentHandler(students studentAttainmentCalculator, aggregates courseAggregator) *AttainmentHandler {
	return &AttainmentHandler{students: students, aggregates: aggregates}
}

// CourseAttainment godoc
// @Summary Course-level attainment of every CO
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/attainment [get]
func (h *AttainmentHandler) CourseAttainment(c *gin.Context) {
	results, err := h.aggregates.CalculateCourseCOAttainment(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results)
}

// CourseCOAttainment godoc
// @Summary Course-level attainment of one CO
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course id"
// @Param coId path string true "Course outcome id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/attainment/{coId} [get]
func (h *AttainmentHandler) CourseCOAttainment(c *gin.Context) {
	result, err := h.aggregates.AggregateCourse(c.Request.Context(), c.Param("courseId"), c.Param("coId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// SectionCOAttainment godoc
// @Summary Section-level attainment of one CO
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course id"
// @Param sectionId path string true "Section id"
// @Param coId path string true "Course outcome id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/sections/{sectionId}/attainment/{coId} [get]
func (h *AttainmentHandler) SectionCOAttainment(c *gin.Context) {
	result, err := h.aggregates.AggregateSection(c.Request.Context(), c.Param("courseId"), c.Param("coId"), c.Param("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// StudentCOAttainment godoc
// @Summary One student's attainment of one CO
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course id"
// @Param studentId path string true "Student id"
// @Param coId path string true "Course outcome id"
// @Param sectionId query string false "Restrict to section-scoped assessments"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/students/{studentId}/attainment/{coId} [get]
func (h *AttainmentHandler) StudentCOAttainment(c *gin.Context) {
	result, err := h.students.ComputeStudentCO(c.Request.Context(), c.Param("courseId"), c.Param("coId"), c.Param("studentId"), c.Query("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Recalculate godoc
// @Summary Recompute and persist the full course attainment tree
// @Tags Attainment
// @Produce json
// @Param courseId path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/attainment [post]
func (h *AttainmentHandler) Recalculate(c *gin.Context) {
	result, err := h.aggregates.CalculateComprehensiveCOAttainment(c.Request.Context(), c.Param("courseId"), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
