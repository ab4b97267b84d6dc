package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/obe-attainment-api/pkg/response"
)

type auditExporter interface {
	CourseAuditCSV(ctx context.Context, courseID, academicYear string) ([]byte, string, error)
}

// ExportHandler serves attainment audit downloads.
type ExportHandler struct {
	exports auditExporter
}

// NewExportHandler constructs handler.
func NewExportHandler(exports auditExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// CourseAuditCSV godoc
// @Summary Download persisted student-CO attainment rows as CSV
// @Tags Attainment
// @Produce text/csv
// @Param courseId path string true "Course id"
// @Param academicYear query string false "Restrict to one academic year"
// @Success 200 {string} string "CSV payload"
// @Router /courses/{courseId}/attainment-export [get]
func (h *ExportHandler) CourseAuditCSV(c *gin.Context) {
	payload, filename, err := h.exports.CourseAuditCSV(c.Request.Context(), c.Param("courseId"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
