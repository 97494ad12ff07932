package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// AssignmentController handles coach/student assignments
type AssignmentController struct {
	assignmentService services.AssignmentService
	logger            zerolog.Logger
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(assignmentService services.AssignmentService, logger zerolog.Logger) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// ListAssignments godoc
// @Summary List all assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.CoachStudentAssignment}
// @Router /assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	assignments, err := c.assignmentService.List(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, assignments)
}

// ListMyStudents godoc
// @Summary Students assigned to the calling coach
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.CoachStudentAssignment}
// @Router /assignments/mine [get]
func (c *AssignmentController) ListMyStudents(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	assignments, err := c.assignmentService.ListMine(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, assignments)
}

// Assign godoc
// @Summary Assign a coach to a student
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAssignmentRequest true "Coach and student"
// @Success 201 {object} dto.APIResponse{data=models.CoachStudentAssignment}
// @Failure 409 {object} dto.ErrorResponse "Already assigned"
// @Router /assignments [post]
func (c *AssignmentController) Assign(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	assignment, err := c.assignmentService.Assign(ctx.Request.Context(), p, &req)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("coachID", req.CoachID.String()).
			Str("studentID", req.StudentID.String()).
			Msg("Assignment failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, assignment)
}

// Unassign godoc
// @Summary Remove an assignment
// @Tags assignments
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (c *AssignmentController) Unassign(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Assignment")
	if !ok {
		return
	}

	if err := c.assignmentService.Unassign(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
