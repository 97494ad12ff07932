package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// MatchController handles matches, rosters and match attendance
type MatchController struct {
	matchService services.MatchService
	logger       zerolog.Logger
}

// NewMatchController creates a new MatchController
func NewMatchController(matchService services.MatchService, logger zerolog.Logger) *MatchController {
	return &MatchController{
		matchService: matchService,
		logger:       logger,
	}
}

// ListMatches godoc
// @Summary List matches
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=[]models.Match}
// @Router /matches [get]
func (c *MatchController) ListMatches(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.DateRangeQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}

	matches, err := c.matchService.List(ctx.Request.Context(), p, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, matches)
}

// GetMatch godoc
// @Summary Get match with roster
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Success 200 {object} dto.APIResponse{data=models.Match}
// @Failure 404 {object} dto.ErrorResponse "Match not found"
// @Router /matches/{id} [get]
func (c *MatchController) GetMatch(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}

	match, err := c.matchService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, match)
}

// CreateMatch godoc
// @Summary Create match
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMatchRequest true "Match"
// @Success 201 {object} dto.APIResponse{data=models.Match}
// @Router /matches [post]
func (c *MatchController) CreateMatch(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateMatchRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	match, err := c.matchService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("matchID", match.ID.String()).Str("userID", p.UserID.String()).Msg("Match created")
	respond(ctx, http.StatusCreated, match)
}

// UpdateMatch godoc
// @Summary Update match
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param request body dto.UpdateMatchRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Match}
// @Router /matches/{id} [patch]
func (c *MatchController) UpdateMatch(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}
	var req dto.UpdateMatchRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	match, err := c.matchService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, match)
}

// SetResult godoc
// @Summary Record the final score
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param request body dto.MatchResultRequest true "Result"
// @Success 200 {object} dto.APIResponse{data=models.Match}
// @Router /matches/{id}/result [put]
func (c *MatchController) SetResult(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}
	var req dto.MatchResultRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	match, err := c.matchService.SetResult(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, match)
}

// DeleteMatch godoc
// @Summary Delete match
// @Tags matches
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Success 204
// @Router /matches/{id} [delete]
func (c *MatchController) DeleteMatch(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}

	if err := c.matchService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("matchID", id.String()).Msg("Match deleted")
	ctx.Status(http.StatusNoContent)
}

// JoinMatch godoc
// @Summary Join match roster
// @Tags roster
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param request body dto.JoinMatchRequest false "Jersey number and position"
// @Success 201 {object} dto.APIResponse{data=models.RosterEntry}
// @Failure 409 {object} dto.ErrorResponse "Already on roster or roster full"
// @Router /matches/{id}/join [post]
func (c *MatchController) JoinMatch(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}

	var req dto.JoinMatchRequest
	if ctx.Request.ContentLength > 0 && !bindJSON(ctx, c.logger, &req) {
		return
	}

	entry, err := c.matchService.Join(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, entry)
}

// LeaveMatch godoc
// @Summary Leave match roster
// @Tags roster
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Success 204
// @Router /matches/{id}/join [delete]
func (c *MatchController) LeaveMatch(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}

	if err := c.matchService.Leave(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UpdateRosterEntry godoc
// @Summary Annotate a roster entry
// @Tags roster
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param studentId path string true "Student ID"
// @Param request body dto.UpdateRosterEntryRequest true "Roster fields"
// @Success 200 {object} dto.APIResponse{data=models.RosterEntry}
// @Router /matches/{id}/roster/{studentId} [patch]
func (c *MatchController) UpdateRosterEntry(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}
	studentID, ok := uuidParam(ctx, "studentId", "Student")
	if !ok {
		return
	}
	var req dto.UpdateRosterEntryRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	entry, err := c.matchService.UpdateRosterEntry(ctx.Request.Context(), p, id, studentID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, entry)
}

// BulkMarkAttendance godoc
// @Summary Save match attendance
// @Description All-or-nothing upsert; every student must be on the roster
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param request body dto.BulkMatchAttendanceRequest true "Attendance records"
// @Success 200 {object} dto.APIResponse{data=[]models.MatchAttendance}
// @Failure 422 {object} dto.ErrorResponse "Match day not reached"
// @Router /matches/{id}/attendance [put]
func (c *MatchController) BulkMarkAttendance(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}
	var req dto.BulkMatchAttendanceRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	rows, err := c.matchService.BulkMarkAttendance(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("matchID", id.String()).Int("records", len(rows)).Msg("Match attendance saved")
	respond(ctx, http.StatusOK, rows)
}

// GetAttendance godoc
// @Summary Match attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Success 200 {object} dto.APIResponse{data=[]models.MatchAttendance}
// @Router /matches/{id}/attendance [get]
func (c *MatchController) GetAttendance(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Match")
	if !ok {
		return
	}

	rows, err := c.matchService.GetAttendance(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rows)
}
