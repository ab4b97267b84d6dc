package handler

import "github.com/gin-gonic/gin"

// Routers groups the handlers participating in route registration.
type Routers struct {
	Attainment   *AttainmentHandler
	POAttainment *POAttainmentHandler
	Export       *ExportHandler
	Metrics      *MetricsHandler
}

// Register wires every endpoint under the provided API group.
func Register(api *gin.RouterGroup, r Routers) {
	if r.Attainment != nil {
		api.GET("/courses/:courseId/attainment", r.Attainment.CourseAttainment)
		api.POST("/courses/:courseId/attainment", r.Attainment.Recalculate)
		api.GET("/courses/:courseId/attainment/:coId", r.Attainment.CourseCOAttainment)
		api.GET("/courses/:courseId/sections/:sectionId/attainment/:coId", r.Attainment.SectionCOAttainment)
		api.GET("/courses/:courseId/students/:studentId/attainment/:coId", r.Attainment.StudentCOAttainment)
	}
	if r.Export != nil {
		api.GET("/courses/:courseId/attainment-export", r.Export.CourseAuditCSV)
	}
	if r.POAttainment != nil {
		api.GET("/programs/:programId/po-attainment", r.POAttainment.Program)
		api.GET("/batches/:batchId/po-attainment", r.POAttainment.Batch)
	}
	if r.Metrics != nil {
		api.GET("/metrics", r.Metrics.Prometheus)
	}
}
