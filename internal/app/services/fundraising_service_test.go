package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

type fundraisingFixture struct {
	svc           *fundraisingServiceImpl
	users         *fakeUsers
	campaigns     *fakeCampaigns
	sponsorships  *fakeSponsorships
	notifications *fakeNotifications
	clock         time.Time
}

func newFundraisingFixture() *fundraisingFixture {
	f := &fundraisingFixture{
		users:         newFakeUsers(),
		campaigns:     newFakeCampaigns(),
		sponsorships:  newFakeSponsorships(),
		notifications: &fakeNotifications{},
		clock:         time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone),
	}
	notify := NewNotificationService(f.notifications, nil, testLogger)
	f.svc = NewFundraisingService(f.campaigns, f.sponsorships, f.users, notify, academyZone, testLogger).(*fundraisingServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func campaignRequest(start, end string) *dto.CreateCampaignRequest {
	return &dto.CreateCampaignRequest{
		Title:       "New goals",
		Description: "Replace the training goals",
		GoalAmount:  1000,
		StartDate:   start,
		EndDate:     end,
	}
}

func TestCampaignLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFundraisingFixture()
	admin := f.users.add(models.RoleAdmin, "Admin")
	staff := f.users.add(models.RoleStaff, "Staff")

	c, err := f.svc.CreateCampaign(ctx, principal(admin), campaignRequest("2025-05-01", "2025-06-30"))
	require.NoError(t, err)
	assert.Equal(t, models.CampaignActive, c.Status)
	assert.Zero(t, c.CurrentAmount)

	raised := 1500.0
	updated, err := f.svc.UpdateCampaign(ctx, principal(admin), c.ID, &dto.UpdateCampaignRequest{CurrentAmount: &raised})
	require.NoError(t, err)
	assert.Equal(t, 1.0, dto.NewCampaignResponse(updated).Progress)

	_, err = f.svc.UpdateCampaign(ctx, principal(admin), c.ID, &dto.UpdateCampaignRequest{CurrentAmount: &raised, ExpectedUpdatedAt: &c.UpdatedAt})
	assert.True(t, errors.Is(err, apperrors.ErrStaleUpdate))

	cancelled := models.CampaignCancelled
	_, err = f.svc.UpdateCampaign(ctx, principal(admin), c.ID, &dto.UpdateCampaignRequest{Status: &cancelled})
	require.NoError(t, err)

	active := models.CampaignActive
	_, err = f.svc.UpdateCampaign(ctx, principal(admin), c.ID, &dto.UpdateCampaignRequest{Status: &active})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStateTransition))

	_, err = f.svc.CreateCampaign(ctx, principal(staff), campaignRequest("2025-05-01", "2025-06-30"))
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	list, err := f.svc.ListCampaigns(ctx, principal(staff), &cancelled)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateCampaignValidation(t *testing.T) {
	ctx := context.Background()
	f := newFundraisingFixture()
	admin := f.users.add(models.RoleAdmin, "Admin")

	_, err := f.svc.CreateCampaign(ctx, principal(admin), campaignRequest("2025-06-30", "2025-05-01"))
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	req := campaignRequest("2025-05-01", "2025-06-30")
	req.GoalAmount = 0
	_, err = f.svc.CreateCampaign(ctx, principal(admin), req)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	// a one-day campaign is fine
	_, err = f.svc.CreateCampaign(ctx, principal(admin), campaignRequest("2025-05-01", "2025-05-01"))
	assert.NoError(t, err)
}

func TestCloseExpiredCampaigns(t *testing.T) {
	ctx := context.Background()
	f := newFundraisingFixture()
	admin := f.users.add(models.RoleAdmin, "Admin")

	ending, err := f.svc.CreateCampaign(ctx, principal(admin), campaignRequest("2025-05-01", "2025-05-10"))
	require.NoError(t, err)
	_, err = f.svc.CreateCampaign(ctx, principal(admin), campaignRequest("2025-05-01", "2025-06-30"))
	require.NoError(t, err)

	f.clock = time.Date(2025, 5, 10, 23, 0, 0, 0, academyZone)
	n, err := f.svc.CloseExpiredCampaigns(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock = time.Date(2025, 5, 11, 0, 30, 0, 0, academyZone)
	n, err = f.svc.CloseExpiredCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.svc.GetCampaign(ctx, principal(admin), ending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignCompleted, got.Status)
}

func TestSponsorshipReview(t *testing.T) {
	ctx := context.Background()
	f := newFundraisingFixture()
	admin := f.users.add(models.RoleAdmin, "Admin")
	staff := f.users.add(models.RoleStaff, "Staff")

	sub, err := f.svc.SubmitSponsorship(ctx, &dto.SubmitSponsorshipRequest{
		CompanyName:     "Acme Boots",
		ContactName:     "Ada",
		ContactEmail:    "Ada@Acme.test",
		SponsorshipType: models.SponsorshipGold,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SponsorshipPending, sub.Status)
	assert.Equal(t, "ada@acme.test", sub.ContactEmail)

	received := f.notifications.forUser(admin.ID)
	require.Len(t, received, 1)
	assert.Equal(t, models.NotificationSponsorship, received[0].Type)
	require.NotNil(t, received[0].Link)
	assert.Contains(t, *received[0].Link, sub.ID.String())
	assert.Empty(t, f.notifications.forUser(staff.ID))

	_, err = f.svc.UpdateSponsorshipStatus(ctx, principal(staff), sub.ID, models.SponsorshipApproved)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.svc.UpdateSponsorshipStatus(ctx, principal(admin), sub.ID, models.SponsorshipPending)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	reviewed, err := f.svc.UpdateSponsorshipStatus(ctx, principal(admin), sub.ID, models.SponsorshipRejected)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, *reviewed.ReviewedBy)

	_, err = f.svc.UpdateSponsorshipStatus(ctx, principal(admin), sub.ID, models.SponsorshipApproved)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStateTransition))

	pending, err := f.svc.ListSponsorships(ctx, principal(staff), &dto.SponsorshipListQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.NotNil(t, pending)
}

func TestSubmitSponsorshipValidation(t *testing.T) {
	f := newFundraisingFixture()
	negative := -5.0
	_, err := f.svc.SubmitSponsorship(context.Background(), &dto.SubmitSponsorshipRequest{
		CompanyName:        "Acme",
		ContactName:        "Ada",
		ContactEmail:       "ada@acme.test",
		SponsorshipType:    models.SponsorshipBronze,
		ContributionAmount: &negative,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Empty(t, f.sponsorships.rows)
}
