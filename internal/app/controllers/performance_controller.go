package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// PerformanceController handles coach assessments of students
type PerformanceController struct {
	noteService services.PerformanceNoteService
	logger      zerolog.Logger
}

// NewPerformanceController creates a new PerformanceController
func NewPerformanceController(noteService services.PerformanceNoteService, logger zerolog.Logger) *PerformanceController {
	return &PerformanceController{
		noteService: noteService,
		logger:      logger,
	}
}

// ListNotes godoc
// @Summary List performance notes
// @Tags performance
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Only this student"
// @Success 200 {object} dto.APIResponse{data=[]models.PerformanceNote}
// @Router /performance-notes [get]
func (c *PerformanceController) ListNotes(ctx *gin.Context) {
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

	notes, err := c.noteService.List(ctx.Request.Context(), p, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, notes)
}

// MyNotes godoc
// @Summary Performance notes about the calling student
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.PerformanceNote}
// @Router /me/performance-notes [get]
func (c *PerformanceController) MyNotes(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	notes, err := c.noteService.ListMine(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, notes)
}

// CreateNote godoc
// @Summary Record a performance note
// @Tags performance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePerformanceNoteRequest true "Note"
// @Success 201 {object} dto.APIResponse{data=models.PerformanceNote}
// @Router /performance-notes [post]
func (c *PerformanceController) CreateNote(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreatePerformanceNoteRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	note, err := c.noteService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, note)
}

// DeleteNote godoc
// @Summary Delete a performance note
// @Tags performance
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 204
// @Router /performance-notes/{id} [delete]
func (c *PerformanceController) DeleteNote(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Note")
	if !ok {
		return
	}

	if err := c.noteService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
