package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// FundraisingService manages campaigns and sponsorship submissions
type FundraisingService interface {
	CreateCampaign(ctx context.Context, p auth.Principal, req *dto.CreateCampaignRequest) (*models.FundraisingCampaign, error)
	UpdateCampaign(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.UpdateCampaignRequest) (*models.FundraisingCampaign, error)
	DeleteCampaign(ctx context.Context, p auth.Principal, id uuid.UUID) error
	GetCampaign(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.FundraisingCampaign, error)
	ListCampaigns(ctx context.Context, p auth.Principal, status *models.CampaignStatus) ([]*models.FundraisingCampaign, error)
	// CloseExpiredCampaigns completes active campaigns whose end date has passed
	CloseExpiredCampaigns(ctx context.Context) (int64, error)

	SubmitSponsorship(ctx context.Context, req *dto.SubmitSponsorshipRequest) (*models.SponsorshipSubmission, error)
	ListSponsorships(ctx context.Context, p auth.Principal, q *dto.SponsorshipListQuery) ([]*models.SponsorshipSubmission, error)
	UpdateSponsorshipStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status models.SponsorshipStatus) (*models.SponsorshipSubmission, error)
}

type fundraisingServiceImpl struct {
	campaigns     CampaignStore
	sponsorships  SponsorshipStore
	users         UserStore
	notifications NotificationService
	loc           *time.Location
	now           func() time.Time
	logger        zerolog.Logger
}

// NewFundraisingService creates a new FundraisingService
func NewFundraisingService(
	campaigns CampaignStore,
	sponsorships SponsorshipStore,
	users UserStore,
	notifications NotificationService,
	loc *time.Location,
	logger zerolog.Logger,
) FundraisingService {
	if loc == nil {
		loc = time.UTC
	}
	return &fundraisingServiceImpl{
		campaigns:     campaigns,
		sponsorships:  sponsorships,
		users:         users,
		notifications: notifications,
		loc:           loc,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *fundraisingServiceImpl) parseDay(value, field string) (time.Time, error) {
	d, err := helpers.ParseDate(value, s.loc)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field + " must be a YYYY-MM-DD date")
	}
	return d, nil
}

func validateCampaign(c *models.FundraisingCampaign) error {
	if c.GoalAmount <= 0 {
		return apperrors.NewValidationError("goalAmount must be greater than zero")
	}
	if c.CurrentAmount < 0 {
		return apperrors.NewValidationError("currentAmount cannot be negative")
	}
	if c.EndDate.Before(c.StartDate) {
		return apperrors.NewValidationError("startDate must not be after endDate")
	}
	return nil
}

func (s *fundraisingServiceImpl) CreateCampaign(ctx context.Context, p auth.Principal, req *dto.CreateCampaignRequest) (*models.FundraisingCampaign, error) {
	if err := auth.Authorize(p, auth.OpCampaignManage); err != nil {
		return nil, err
	}

	title, err := requiredText(req.Title, "title")
	if err != nil {
		return nil, err
	}
	start, err := s.parseDay(req.StartDate, "startDate")
	if err != nil {
		return nil, err
	}
	end, err := s.parseDay(req.EndDate, "endDate")
	if err != nil {
		return nil, err
	}

	c := &models.FundraisingCampaign{
		CreatedBy:     p.UserID,
		Title:         title,
		Description:   strings.TrimSpace(req.Description),
		GoalAmount:    req.GoalAmount,
		CurrentAmount: 0,
		StartDate:     start,
		EndDate:       end,
		Status:        models.CampaignActive,
	}
	if err := validateCampaign(c); err != nil {
		return nil, err
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().Str("campaignID", c.ID.String()).Float64("goal", c.GoalAmount).Msg("Fundraising campaign created")
	return c, nil
}

// UpdateCampaign edits a campaign. Status may only leave active, towards completed or cancelled.
func (s *fundraisingServiceImpl) UpdateCampaign(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.UpdateCampaignRequest) (*models.FundraisingCampaign, error) {
	if err := auth.Authorize(p, auth.OpCampaignManage); err != nil {
		return nil, err
	}

	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := updateText(&c.Title, req.Title, "title"); err != nil {
		return nil, err
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
	}
	if req.GoalAmount != nil {
		c.GoalAmount = *req.GoalAmount
	}
	if req.CurrentAmount != nil {
		c.CurrentAmount = *req.CurrentAmount
	}
	if req.StartDate != nil {
		if c.StartDate, err = s.parseDay(*req.StartDate, "startDate"); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if c.EndDate, err = s.parseDay(*req.EndDate, "endDate"); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		next := *req.Status
		if !next.Valid() {
			return nil, apperrors.NewValidationError("status must be active, completed or cancelled")
		}
		if !c.Status.CanTransitionTo(next) {
			return nil, apperrors.NewStateTransitionError(fmt.Sprintf("campaign is %s and cannot become %s", c.Status, next))
		}
		c.Status = next
	}
	if err := validateCampaign(c); err != nil {
		return nil, err
	}

	if err := s.campaigns.Update(ctx, c, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *fundraisingServiceImpl) DeleteCampaign(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.OpCampaignManage); err != nil {
		return err
	}
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("campaignID", id.String()).Msg("Fundraising campaign deleted")
	return nil
}

func (s *fundraisingServiceImpl) GetCampaign(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.FundraisingCampaign, error) {
	if err := auth.Authorize(p, auth.OpFundraisingView); err != nil {
		return nil, err
	}
	return s.campaigns.GetByID(ctx, id)
}

func (s *fundraisingServiceImpl) ListCampaigns(ctx context.Context, p auth.Principal, status *models.CampaignStatus) ([]*models.FundraisingCampaign, error) {
	if err := auth.Authorize(p, auth.OpFundraisingView); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError("status must be active, completed or cancelled")
	}
	return nonNil(s.campaigns.List(ctx, status))
}

func (s *fundraisingServiceImpl) CloseExpiredCampaigns(ctx context.Context) (int64, error) {
	today := helpers.StartOfDay(s.now(), s.loc)
	n, err := s.campaigns.CompleteExpired(ctx, today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("Expired campaigns completed")
	}
	return n, nil
}

// SubmitSponsorship stores a public sponsorship application and tells the admins about it
func (s *fundraisingServiceImpl) SubmitSponsorship(ctx context.Context, req *dto.SubmitSponsorshipRequest) (*models.SponsorshipSubmission, error) {
	company, err := requiredText(req.CompanyName, "companyName")
	if err != nil {
		return nil, err
	}
	contact, err := requiredText(req.ContactName, "contactName")
	if err != nil {
		return nil, err
	}
	if !req.SponsorshipType.Valid() {
		return nil, apperrors.NewValidationError("sponsorshipType must be bronze, silver, gold or platinum")
	}
	if req.ContributionAmount != nil && *req.ContributionAmount < 0 {
		return nil, apperrors.NewValidationError("contributionAmount cannot be negative")
	}

	sub := &models.SponsorshipSubmission{
		CompanyName:        company,
		ContactName:        contact,
		ContactEmail:       helpers.NormalizeEmail(req.ContactEmail),
		ContactPhone:       helpers.TrimmedOrNil(req.ContactPhone),
		SponsorshipType:    req.SponsorshipType,
		Message:            helpers.TrimmedOrNil(req.Message),
		ContributionAmount: req.ContributionAmount,
		LogoURL:            helpers.TrimmedOrNil(req.LogoURL),
	}
	if err := s.sponsorships.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info().Str("sponsorshipID", sub.ID.String()).Str("company", company).Msg("Sponsorship submitted")

	admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load admins for sponsorship notification")
		return sub, nil
	}
	link := "/fundraising/sponsorships/" + sub.ID.String()
	for _, admin := range admins {
		notifyQuietly(ctx, s.notifications, s.logger, admin.ID, models.NotificationSponsorship,
			"New sponsorship application",
			fmt.Sprintf("%s applied for a %s sponsorship.", company, sub.SponsorshipType),
			&link)
	}
	return sub, nil
}

func (s *fundraisingServiceImpl) ListSponsorships(ctx context.Context, p auth.Principal, q *dto.SponsorshipListQuery) ([]*models.SponsorshipSubmission, error) {
	if err := auth.Authorize(p, auth.OpFundraisingView); err != nil {
		return nil, err
	}
	var status *models.SponsorshipStatus
	if q != nil && q.Status != "" {
		st := models.SponsorshipStatus(q.Status)
		if !st.Valid() {
			return nil, apperrors.NewValidationError("status must be pending, approved or rejected")
		}
		status = &st
	}
	return nonNil(s.sponsorships.List(ctx, status))
}

// UpdateSponsorshipStatus reviews a pending submission. Reviewed submissions are final.
func (s *fundraisingServiceImpl) UpdateSponsorshipStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status models.SponsorshipStatus) (*models.SponsorshipSubmission, error) {
	if err := auth.Authorize(p, auth.OpSponsorshipReview); err != nil {
		return nil, err
	}
	if !status.IsTerminal() {
		return nil, apperrors.NewValidationError("status must be approved or rejected")
	}

	sub, err := s.sponsorships.ReviewPending(ctx, id, status, p.UserID, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("sponsorshipID", id.String()).
		Str("status", string(status)).
		Str("by", p.UserID.String()).
		Msg("Sponsorship reviewed")
	return sub, nil
}
