package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// AnnouncementController handles the announcement board
type AnnouncementController struct {
	announcementService services.AnnouncementService
	logger              zerolog.Logger
}

// NewAnnouncementController creates a new AnnouncementController
func NewAnnouncementController(announcementService services.AnnouncementService, logger zerolog.Logger) *AnnouncementController {
	return &AnnouncementController{
		announcementService: announcementService,
		logger:              logger,
	}
}

// ListAnnouncements godoc
// @Summary List announcements visible to the caller
// @Description Expired announcements are hidden unless includeExpired is set by staff, coaches or admins
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param includeExpired query bool false "Include expired announcements"
// @Success 200 {object} dto.APIResponse{data=[]dto.AnnouncementView}
// @Router /announcements [get]
func (c *AnnouncementController) ListAnnouncements(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.AnnouncementListQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}

	views, err := c.announcementService.List(ctx.Request.Context(), p, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, views)
}

// GetAnnouncement godoc
// @Summary Get announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementView}
// @Failure 404 {object} dto.ErrorResponse "Not found or not visible"
// @Router /announcements/{id} [get]
func (c *AnnouncementController) GetAnnouncement(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Announcement")
	if !ok {
		return
	}

	view, err := c.announcementService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, view)
}

// Unread godoc
// @Summary Latest unread announcements
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadAnnouncementsResponse}
// @Router /announcements/unread [get]
func (c *AnnouncementController) Unread(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	unread, err := c.announcementService.Unread(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, unread)
}

// MarkRead godoc
// @Summary Mark announcement as read
// @Tags announcements
// @Security BearerAuth
// @Param id path string true "Announcement ID"
// @Success 204
// @Router /announcements/{id}/read [post]
func (c *AnnouncementController) MarkRead(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Announcement")
	if !ok {
		return
	}

	if err := c.announcementService.MarkRead(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateAnnouncement godoc
// @Summary Publish announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} dto.APIResponse{data=models.Announcement}
// @Failure 403 {object} dto.ErrorResponse "Staff, coach or admin only"
// @Router /announcements [post]
func (c *AnnouncementController) CreateAnnouncement(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateAnnouncementRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	announcement, err := c.announcementService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("announcementID", announcement.ID.String()).
		Str("audience", string(announcement.TargetAudience)).
		Msg("Announcement published")
	respond(ctx, http.StatusCreated, announcement)
}

// UpdateAnnouncement godoc
// @Summary Update announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID"
// @Param request body dto.UpdateAnnouncementRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Announcement}
// @Router /announcements/{id} [patch]
func (c *AnnouncementController) UpdateAnnouncement(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Announcement")
	if !ok {
		return
	}
	var req dto.UpdateAnnouncementRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	announcement, err := c.announcementService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, announcement)
}

// DeleteAnnouncement godoc
// @Summary Delete announcement
// @Tags announcements
// @Security BearerAuth
// @Param id path string true "Announcement ID"
// @Success 204
// @Router /announcements/{id} [delete]
func (c *AnnouncementController) DeleteAnnouncement(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Announcement")
	if !ok {
		return
	}

	if err := c.announcementService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
