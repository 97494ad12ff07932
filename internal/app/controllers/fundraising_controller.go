package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// FundraisingController handles campaigns and sponsorship applications
type FundraisingController struct {
	fundraisingService services.FundraisingService
	logger             zerolog.Logger
}

// NewFundraisingController creates a new FundraisingController
func NewFundraisingController(fundraisingService services.FundraisingService, logger zerolog.Logger) *FundraisingController {
	return &FundraisingController{
		fundraisingService: fundraisingService,
		logger:             logger,
	}
}

// ListCampaigns godoc
// @Summary List campaigns
// @Tags fundraising
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, completed or cancelled"
// @Success 200 {object} dto.APIResponse{data=[]dto.CampaignResponse}
// @Router /campaigns [get]
func (c *FundraisingController) ListCampaigns(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var status *models.CampaignStatus
	if raw := ctx.Query("status"); raw != "" {
		s := models.CampaignStatus(raw)
		status = &s
	}

	campaigns, err := c.fundraisingService.ListCampaigns(ctx.Request.Context(), p, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewCampaignResponses(campaigns))
}

// GetCampaign godoc
// @Summary Get campaign
// @Tags fundraising
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignResponse}
// @Router /campaigns/{id} [get]
func (c *FundraisingController) GetCampaign(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Campaign")
	if !ok {
		return
	}

	campaign, err := c.fundraisingService.GetCampaign(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewCampaignResponse(campaign))
}

// CreateCampaign godoc
// @Summary Create campaign
// @Tags fundraising
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCampaignRequest true "Campaign"
// @Success 201 {object} dto.APIResponse{data=dto.CampaignResponse}
// @Router /campaigns [post]
func (c *FundraisingController) CreateCampaign(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateCampaignRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	campaign, err := c.fundraisingService.CreateCampaign(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("campaignID", campaign.ID.String()).Float64("goal", campaign.GoalAmount).Msg("Campaign created")
	respond(ctx, http.StatusCreated, dto.NewCampaignResponse(campaign))
}

// UpdateCampaign godoc
// @Summary Update campaign
// @Description Status may only move from active to completed or cancelled
// @Tags fundraising
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body dto.UpdateCampaignRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignResponse}
// @Failure 409 {object} dto.ErrorResponse "Invalid status change or concurrent modification"
// @Router /campaigns/{id} [patch]
func (c *FundraisingController) UpdateCampaign(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Campaign")
	if !ok {
		return
	}
	var req dto.UpdateCampaignRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	campaign, err := c.fundraisingService.UpdateCampaign(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewCampaignResponse(campaign))
}

// DeleteCampaign godoc
// @Summary Delete campaign
// @Tags fundraising
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 204
// @Router /campaigns/{id} [delete]
func (c *FundraisingController) DeleteCampaign(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Campaign")
	if !ok {
		return
	}

	if err := c.fundraisingService.DeleteCampaign(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SubmitSponsorship godoc
// @Summary Apply for sponsorship
// @Description Public form, no authentication required
// @Tags sponsorships
// @Accept json
// @Produce json
// @Param request body dto.SubmitSponsorshipRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.SponsorshipSubmission}
// @Router /sponsorships [post]
func (c *FundraisingController) SubmitSponsorship(ctx *gin.Context) {
	var req dto.SubmitSponsorshipRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	submission, err := c.fundraisingService.SubmitSponsorship(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().
		Str("submissionID", submission.ID.String()).
		Str("company", submission.CompanyName).
		Msg("Sponsorship application received")
	respond(ctx, http.StatusCreated, submission)
}

// ListSponsorships godoc
// @Summary List sponsorship applications
// @Tags sponsorships
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} dto.APIResponse{data=[]models.SponsorshipSubmission}
// @Router /sponsorships [get]
func (c *FundraisingController) ListSponsorships(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.SponsorshipListQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}

	submissions, err := c.fundraisingService.ListSponsorships(ctx.Request.Context(), p, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, submissions)
}

// ReviewSponsorship godoc
// @Summary Approve or reject a pending application
// @Tags sponsorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param request body dto.UpdateSponsorshipStatusRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.SponsorshipSubmission}
// @Failure 409 {object} dto.ErrorResponse "Already reviewed"
// @Router /sponsorships/{id}/status [put]
func (c *FundraisingController) ReviewSponsorship(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "Sponsorship")
	if !ok {
		return
	}
	var req dto.UpdateSponsorshipStatusRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	submission, err := c.fundraisingService.UpdateSponsorshipStatus(ctx.Request.Context(), p, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, submission)
}
