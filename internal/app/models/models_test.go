package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCampaignProgressClamps(t *testing.T) {
	c := &FundraisingCampaign{GoalAmount: 1000, CurrentAmount: 1200}
	assert.Equal(t, 1.0, c.Progress())

	c.CurrentAmount = 250
	assert.InDelta(t, 0.25, c.Progress(), 1e-9)

	assert.Equal(t, 0.0, CampaignProgress(100, 0))
	assert.Equal(t, 0.0, CampaignProgress(-5, 100))
}

func TestCampaignStatusTransitions(t *testing.T) {
	assert.True(t, CampaignActive.CanTransitionTo(CampaignCompleted))
	assert.True(t, CampaignActive.CanTransitionTo(CampaignCancelled))
	assert.True(t, CampaignCompleted.CanTransitionTo(CampaignCompleted))
	assert.False(t, CampaignCompleted.CanTransitionTo(CampaignActive))
	assert.False(t, CampaignCancelled.CanTransitionTo(CampaignCompleted))
}

func TestAudienceIncludes(t *testing.T) {
	assert.True(t, AudienceEveryone.Includes(RoleStaff))
	assert.True(t, AudienceStudentsCoaches.Includes(RoleCoach))
	assert.False(t, AudienceStudentsCoaches.Includes(RoleStaff))
	assert.False(t, AudienceCoaches.Includes(RoleStudent))
	assert.ElementsMatch(t, []Audience{AudienceEveryone, AudienceStudents, AudienceStudentsCoaches}, AudiencesFor(RoleStudent))
}

func TestAudienceRecipients(t *testing.T) {
	assert.ElementsMatch(t, AllRoles, AudienceEveryone.Recipients())
	assert.ElementsMatch(t, []Role{RoleStudent, RoleCoach, RoleAdmin}, AudienceStudentsCoaches.Recipients())
	assert.ElementsMatch(t, []Role{RoleStaff, RoleAdmin}, AudienceStaff.Recipients())
	// the audience table itself is not modified
	assert.Equal(t, []Role{RoleStaff}, AudienceStaff.Roles())
}

func TestAnnouncementVisibilityAndExpiry(t *testing.T) {
	author := uuid.New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	a := &Announcement{AuthorID: author, TargetAudience: AudienceCoaches, ExpiresAt: &past}

	assert.True(t, a.VisibleTo(author, RoleStaff))
	assert.True(t, a.VisibleTo(uuid.New(), RoleAdmin))
	assert.True(t, a.VisibleTo(uuid.New(), RoleCoach))
	assert.False(t, a.VisibleTo(uuid.New(), RoleStudent))
	assert.True(t, a.IsExpired(now))

	a.ExpiresAt = nil
	assert.False(t, a.IsExpired(now))
}

func TestStatusSets(t *testing.T) {
	assert.False(t, AttendanceRegistered.Markable())
	assert.True(t, AttendanceLate.Markable())
	assert.True(t, MatchAttendanceExcused.Valid())
	assert.False(t, MatchAttendanceStatus("registered").Valid())
	assert.True(t, SponsorshipRejected.IsTerminal())
	assert.False(t, SponsorshipPending.IsTerminal())

	_, ok := ParseRole("instructor")
	assert.False(t, ok)
	r, ok := ParseRole("coach")
	assert.True(t, ok)
	assert.Equal(t, RoleCoach, r)
}
