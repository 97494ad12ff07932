package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// TrainingController handles training sessions and their attendance
type TrainingController struct {
	trainingService services.TrainingService
	logger          zerolog.Logger
}

// NewTrainingController creates a new TrainingController
func NewTrainingController(trainingService services.TrainingService, logger zerolog.Logger) *TrainingController {
	return &TrainingController{
		trainingService: trainingService,
		logger:          logger,
	}
}

// ListTrainings godoc
// @Summary List trainings
// @Description Trainings ordered by date, optionally limited to a day range
// @Tags trainings
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=[]models.Training}
// @Router /trainings [get]
func (c *TrainingController) ListTrainings(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.DateRangeQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}

	trainings, err := c.trainingService.List(ctx.Request.Context(), p, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, trainings)
}

// GetTraining godoc
// @Summary Get training
// @Description Training with its attendance list
// @Tags trainings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 200 {object} dto.APIResponse{data=models.Training}
// @Failure 404 {object} dto.ErrorResponse "Training not found"
// @Router /trainings/{id} [get]
func (c *TrainingController) GetTraining(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Training")
	if !ok {
		return
	}

	training, err := c.trainingService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, training)
}

// CreateTraining godoc
// @Summary Create training
// @Tags trainings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTrainingRequest true "Training"
// @Success 201 {object} dto.APIResponse{data=models.Training}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Coach or admin only"
// @Router /trainings [post]
func (c *TrainingController) CreateTraining(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateTrainingRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	training, err := c.trainingService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("trainingID", training.ID.String()).Str("userID", p.UserID.String()).Msg("Training created")
	respond(ctx, http.StatusCreated, training)
}

// UpdateTraining godoc
// @Summary Update training
// @Description Partial update; date and time must be given together
// @Tags trainings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Param request body dto.UpdateTrainingRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Training}
// @Failure 409 {object} dto.ErrorResponse "Modified concurrently"
// @Router /trainings/{id} [patch]
func (c *TrainingController) UpdateTraining(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Training")
	if !ok {
		return
	}
	var req dto.UpdateTrainingRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	training, err := c.trainingService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, training)
}

// DeleteTraining godoc
// @Summary Delete training
// @Tags trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 204
// @Router /trainings/{id} [delete]
func (c *TrainingController) DeleteTraining(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Training")
	if !ok {
		return
	}

	if err := c.trainingService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("trainingID", id.String()).Msg("Training deleted")
	ctx.Status(http.StatusNoContent)
}

// JoinTraining godoc
// @Summary Join training
// @Tags trainings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 201 {object} dto.APIResponse{data=models.TrainingAttendee}
// @Failure 409 {object} dto.ErrorResponse "Already joined or training full"
// @Router /trainings/{id}/join [post]
func (c *TrainingController) JoinTraining(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Training")
	if !ok {
		return
	}

	attendee, err := c.trainingService.Join(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, attendee)
}

// LeaveTraining godoc
// @Summary Leave training
// @Tags trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 204
// @Router /trainings/{id}/join [delete]
func (c *TrainingController) LeaveTraining(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Training")
	if !ok {
		return
	}

	if err := c.trainingService.Leave(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// MarkAttendance godoc
// @Summary Mark one student's attendance
// @Description Upsert keyed by training and student. Not allowed before the training day.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Param request body dto.MarkAttendanceRequest true "Attendance"
// @Success 200 {object} dto.APIResponse{data=models.TrainingAttendee}
// @Failure 422 {object} dto.ErrorResponse "Training day not reached"
// @Router /trainings/{id}/attendance [post]
func (c *TrainingController) MarkAttendance(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Training")
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	attendee, err := c.trainingService.MarkAttendance(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, attendee)
}

// BulkMarkAttendance godoc
// @Summary Mark attendance for several students
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Param request body dto.BulkMarkAttendanceRequest true "Attendance records"
// @Success 200 {object} dto.APIResponse{data=[]models.TrainingAttendee}
// @Failure 422 {object} dto.ErrorResponse "Training day not reached"
// @Router /trainings/{id}/attendance [put]
func (c *TrainingController) BulkMarkAttendance(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Training")
	if !ok {
		return
	}
	var req dto.BulkMarkAttendanceRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	rows, err := c.trainingService.BulkMarkAttendance(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("trainingID", id.String()).Int("records", len(rows)).Msg("Training attendance saved")
	respond(ctx, http.StatusOK, rows)
}
