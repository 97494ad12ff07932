package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// ReportController serves analytics and CSV/PDF downloads
type ReportController struct {
	analyticsService services.AnalyticsService
	exportService    services.ExportService
	logger           zerolog.Logger
}

// NewReportController creates a new ReportController
func NewReportController(analyticsService services.AnalyticsService, exportService services.ExportService, logger zerolog.Logger) *ReportController {
	return &ReportController{
		analyticsService: analyticsService,
		exportService:    exportService,
		logger:           logger,
	}
}

// Analytics godoc
// @Summary Attendance and performance analytics
// @Description Academy-wide for staff, coaches and admins; students only see their own figures
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Limit to one student"
// @Success 200 {object} dto.APIResponse{data=dto.AnalyticsReport}
// @Router /analytics [get]
func (c *ReportController) Analytics(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.StudentQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}
	studentID, ok := optionalUUID(ctx, q.StudentID, "studentId")
	if !ok {
		return
	}

	report, err := c.analyticsService.Report(ctx.Request.Context(), p, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, report)
}

// ExportAnalytics godoc
// @Summary Analytics as PDF or CSV
// @Tags analytics
// @Produce application/pdf,text/csv
// @Security BearerAuth
// @Param studentId query string false "Limit to one student"
// @Param format query string false "pdf (default) or csv"
// @Success 200 {file} file
// @Router /analytics/export [get]
func (c *ReportController) ExportAnalytics(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.AnalyticsExportQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}
	studentID, ok := optionalUUID(ctx, q.StudentID, "studentId")
	if !ok {
		return
	}

	file, err := c.exportService.Analytics(ctx.Request.Context(), p, studentID, q.Format)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.sendFile(ctx, file)
}

// ExportTrainingAttendance godoc
// @Summary Training attendance as CSV or PDF
// @Tags attendance
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /trainings/{id}/attendance/export [get]
func (c *ReportController) ExportTrainingAttendance(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Training")
	if !ok {
		return
	}
	var q dto.ExportQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}

	file, err := c.exportService.TrainingAttendance(ctx.Request.Context(), p, id, q.Format)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.sendFile(ctx, file)
}

// ExportPerformanceNotes godoc
// @Summary Performance notes as CSV or PDF
// @Tags performance
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param studentId query string false "Limit to one student"
// @Success 200 {file} file
// @Router /performance-notes/export [get]
func (c *ReportController) ExportPerformanceNotes(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.ExportQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}
	studentID, ok := optionalUUID(ctx, q.StudentID, "studentId")
	if !ok {
		return
	}

	file, err := c.exportService.PerformanceNotes(ctx.Request.Context(), p, studentID, q.Format)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.sendFile(ctx, file)
}

func (c *ReportController) sendFile(ctx *gin.Context, file *services.ExportFile) {
	c.logger.Debug().Str("filename", file.Filename).Int("bytes", len(file.Data)).Msg("Serving export")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	ctx.Data(http.StatusOK, file.ContentType, file.Data)
}
