package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle state of a fundraising campaign
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Valid reports whether s is a known campaign status
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignActive, CampaignCompleted, CampaignCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a campaign may move from s to next.
// Only active campaigns change status; staying put is always allowed.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	if s == next {
		return true
	}
	return s == CampaignActive && (next == CampaignCompleted || next == CampaignCancelled)
}

// FundraisingCampaign is a row of the 'fundraising_campaigns' table
type FundraisingCampaign struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	CreatedBy     uuid.UUID      `json:"createdBy" db:"created_by"`
	Title         string         `json:"title" db:"title"`
	Description   string         `json:"description" db:"description"`
	GoalAmount    float64        `json:"goalAmount" db:"goal_amount" example:"1000"`
	CurrentAmount float64        `json:"currentAmount" db:"current_amount" example:"250"`
	StartDate     time.Time      `json:"startDate" db:"start_date"`
	EndDate       time.Time      `json:"endDate" db:"end_date"`
	Status        CampaignStatus `json:"status" db:"status" example:"active"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
	Creator       *UserSummary   `json:"creator,omitempty"`
}

// Progress returns current/goal clamped to [0, 1]. A non-positive goal yields 0.
func (c *FundraisingCampaign) Progress() float64 {
	return CampaignProgress(c.CurrentAmount, c.GoalAmount)
}

// CampaignProgress returns current/goal clamped to [0, 1]
func CampaignProgress(current, goal float64) float64 {
	if goal <= 0 || current <= 0 {
		return 0
	}
	return math.Min(current/goal, 1.0)
}

// SponsorshipType is the tier a sponsor applies for
type SponsorshipType string

const (
	SponsorshipBronze   SponsorshipType = "bronze"
	SponsorshipSilver   SponsorshipType = "silver"
	SponsorshipGold     SponsorshipType = "gold"
	SponsorshipPlatinum SponsorshipType = "platinum"
)

// Valid reports whether t is a known tier
func (t SponsorshipType) Valid() bool {
	switch t {
	case SponsorshipBronze, SponsorshipSilver, SponsorshipGold, SponsorshipPlatinum:
		return true
	}
	return false
}

// SponsorshipStatus is the review state of a submission
type SponsorshipStatus string

const (
	SponsorshipPending  SponsorshipStatus = "pending"
	SponsorshipApproved SponsorshipStatus = "approved"
	SponsorshipRejected SponsorshipStatus = "rejected"
)

// Valid reports whether s is a known review state
func (s SponsorshipStatus) Valid() bool {
	switch s {
	case SponsorshipPending, SponsorshipApproved, SponsorshipRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further review is possible
func (s SponsorshipStatus) IsTerminal() bool {
	return s == SponsorshipApproved || s == SponsorshipRejected
}

// SponsorshipSubmission is a row of the 'sponsorship_submissions' table
type SponsorshipSubmission struct {
	ID                 uuid.UUID         `json:"id" db:"id"`
	CompanyName        string            `json:"companyName" db:"company_name"`
	ContactName        string            `json:"contactName" db:"contact_name"`
	ContactEmail       string            `json:"contactEmail" db:"contact_email"`
	ContactPhone       *string           `json:"contactPhone,omitempty" db:"contact_phone"`
	SponsorshipType    SponsorshipType   `json:"sponsorshipType" db:"sponsorship_type" example:"bronze"`
	Message            *string           `json:"message,omitempty" db:"message"`
	ContributionAmount *float64          `json:"contributionAmount,omitempty" db:"contribution_amount"`
	LogoURL            *string           `json:"logoUrl,omitempty" db:"logo_url"`
	Status             SponsorshipStatus `json:"status" db:"status" example:"pending"`
	SubmittedAt        time.Time         `json:"submittedAt" db:"submitted_at"`
	ReviewedAt         *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ReviewedBy         *uuid.UUID        `json:"reviewedBy,omitempty" db:"reviewed_by"`
}
