package dto

import (
	"math"
	"time"

	"github.com/yigit/academy/internal/app/models"
)

// CreateCampaignRequest represents fundraising campaign creation data
type CreateCampaignRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"required"`
	GoalAmount  float64 `json:"goalAmount" binding:"required,gt=0" example:"1000"`
	StartDate   string  `json:"startDate" binding:"required,isodate" example:"2025-05-01"`
	EndDate     string  `json:"endDate" binding:"required,isodate" example:"2025-06-30"`
}

// UpdateCampaignRequest represents a partial campaign update
type UpdateCampaignRequest struct {
	Title             *string                `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description       *string                `json:"description,omitempty"`
	GoalAmount        *float64               `json:"goalAmount,omitempty" binding:"omitempty,gt=0"`
	CurrentAmount     *float64               `json:"currentAmount,omitempty" binding:"omitempty,gte=0"`
	StartDate         *string                `json:"startDate,omitempty" binding:"omitempty,isodate"`
	EndDate           *string                `json:"endDate,omitempty" binding:"omitempty,isodate"`
	Status            *models.CampaignStatus `json:"status,omitempty" binding:"omitempty,oneof=active completed cancelled"`
	ExpectedUpdatedAt *time.Time             `json:"expectedUpdatedAt,omitempty"`
}

// CampaignResponse is a campaign with its derived progress
type CampaignResponse struct {
	*models.FundraisingCampaign
	Progress        float64 `json:"progress" example:"0.25"`
	ProgressPercent int     `json:"progressPercent" example:"25"`
}

// NewCampaignResponse attaches the clamped progress to a campaign
func NewCampaignResponse(c *models.FundraisingCampaign) CampaignResponse {
	p := c.Progress()
	return CampaignResponse{
		FundraisingCampaign: c,
		Progress:            p,
		ProgressPercent:     int(math.Round(p * 100)),
	}
}

// NewCampaignResponses maps a list of campaigns
func NewCampaignResponses(list []*models.FundraisingCampaign) []CampaignResponse {
	out := make([]CampaignResponse, 0, len(list))
	for _, c := range list {
		out = append(out, NewCampaignResponse(c))
	}
	return out
}

// SubmitSponsorshipRequest is the public sponsorship application form
type SubmitSponsorshipRequest struct {
	CompanyName        string                 `json:"companyName" binding:"required,max=200"`
	ContactName        string                 `json:"contactName" binding:"required,max=200"`
	ContactEmail       string                 `json:"contactEmail" binding:"required,email"`
	ContactPhone       *string                `json:"contactPhone,omitempty" binding:"omitempty,max=30"`
	SponsorshipType    models.SponsorshipType `json:"sponsorshipType" binding:"required,oneof=bronze silver gold platinum"`
	Message            *string                `json:"message,omitempty" binding:"omitempty,max=2000"`
	ContributionAmount *float64               `json:"contributionAmount,omitempty" binding:"omitempty,gte=0"`
	LogoURL            *string                `json:"logoUrl,omitempty" binding:"omitempty,url"`
}

// UpdateSponsorshipStatusRequest records an admin review decision
type UpdateSponsorshipStatusRequest struct {
	Status models.SponsorshipStatus `json:"status" binding:"required,oneof=approved rejected"`
}

// SponsorshipListQuery filters sponsorship submissions
type SponsorshipListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}
