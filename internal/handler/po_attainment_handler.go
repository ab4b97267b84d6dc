package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	"github.com/noah-isme/obe-attainment-api/pkg/response"
)

type poCalculator interface {
	CalculateProgramPOAttainment(ctx context.Context, programID, academicYear string) (*models.ProgramPOAttainmentSummary, bool, error)
	CalculateBatchPOAttainment(ctx context.Context, batchID string) (*models.ProgramPOAttainmentSummary, bool, error)
}

// POAttainmentHandler exposes program outcome attainment endpoints.
type POAttainmentHandler struct {
	calculator poCalculator
}

// NewPOAttainmentHandler constructs handler.
func NewPOAttainmentHandler(calculator poCalculator) *POAttainmentHandler {
	return &POAttainmentHandler{calculator: calculator}
}

// Program godoc
// @Summary Program-scope PO attainment summary
// @Tags PO Attainment
// @Produce json
// @Param programId path string true "Program id"
// @Param academicYear query string false "Restrict to one academic year"
// @Success 200 {object} response.Envelope
// @Router /programs/{programId}/po-attainment [get]
func (h *POAttainmentHandler) Program(c *gin.Context) {
	summary, cached, err := h.calculator.CalculateProgramPOAttainment(c.Request.Context(), c.Param("programId"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, map[string]interface{}{"cached": cached})
}

// Batch godoc
// @Summary Batch-scope PO attainment summary
// @Tags PO Attainment
// @Produce json
// @Param batchId path string true "Batch id"
// @Success 200 {object} response.Envelope
// @Router /batches/{batchId}/po-attainment [get]
func (h *POAttainmentHandler) Batch(c *gin.Context) {
	summary, cached, err := h.calculator.CalculateBatchPOAttainment(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, map[string]interface{}{"cached": cached})
}
