package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/academy/internal/app/models"
)

// CreateTrainingRequest represents training creation data.
// Date and Time are combined in the academy timezone.
type CreateTrainingRequest struct {
	Title           string     `json:"title" binding:"required,max=200" example:"Dribbling"`
	Description     *string    `json:"description,omitempty"`
	Date            string     `json:"date" binding:"required,isodate" example:"2025-05-01"`
	Time            string     `json:"time" binding:"required,hhmm" example:"17:30"`
	DurationMinutes int        `json:"durationMinutes" binding:"required,gt=0" example:"60"`
	Location        string     `json:"location" binding:"required,max=200" example:"Pitch A"`
	MaxParticipants *int       `json:"maxParticipants,omitempty" binding:"omitempty,gt=0"`
	CoachID         *uuid.UUID `json:"coachId,omitempty"`
}

// UpdateTrainingRequest represents a partial training update
type UpdateTrainingRequest struct {
	Title             *string    `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description       *string    `json:"description,omitempty"`
	Date              *string    `json:"date,omitempty" binding:"omitempty,isodate"`
	Time              *string    `json:"time,omitempty" binding:"omitempty,hhmm"`
	DurationMinutes   *int       `json:"durationMinutes,omitempty" binding:"omitempty,gt=0"`
	Location          *string    `json:"location,omitempty" binding:"omitempty,min=1,max=200"`
	MaxParticipants   *int       `json:"maxParticipants,omitempty" binding:"omitempty,gt=0"`
	// ClearMaxParticipants removes the limit and wins over MaxParticipants
	ClearMaxParticipants bool       `json:"clearMaxParticipants,omitempty"`
	ExpectedUpdatedAt    *time.Time `json:"expectedUpdatedAt,omitempty"`
}

// CreateMatchRequest represents match creation data
type CreateMatchRequest struct {
	Title         string           `json:"title" binding:"required,max=200" example:"Derby"`
	Description   *string          `json:"description,omitempty"`
	Opponent      string           `json:"opponent" binding:"required,max=200" example:"Rovers U15"`
	Date          string           `json:"date" binding:"required,isodate"`
	Time          string           `json:"time" binding:"required,hhmm"`
	Location      string           `json:"location" binding:"required,max=200"`
	MatchType     models.MatchType `json:"matchType" binding:"required,oneof=friendly league tournament cup"`
	MaxRosterSize *int             `json:"maxRosterSize,omitempty" binding:"omitempty,gt=0"`
	CoachID       *uuid.UUID       `json:"coachId,omitempty"`
}

// UpdateMatchRequest represents a partial match update
type UpdateMatchRequest struct {
	Title             *string           `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description       *string           `json:"description,omitempty"`
	Opponent          *string           `json:"opponent,omitempty" binding:"omitempty,min=1,max=200"`
	Date              *string           `json:"date,omitempty" binding:"omitempty,isodate"`
	Time              *string           `json:"time,omitempty" binding:"omitempty,hhmm"`
	Location          *string           `json:"location,omitempty" binding:"omitempty,min=1,max=200"`
	MatchType         *models.MatchType `json:"matchType,omitempty" binding:"omitempty,oneof=friendly league tournament cup"`
	MaxRosterSize     *int              `json:"maxRosterSize,omitempty" binding:"omitempty,gt=0"`
	Result            *string           `json:"result,omitempty" binding:"omitempty,max=50"`
	// the clear flags win over the matching value fields
	ClearMaxRosterSize bool       `json:"clearMaxRosterSize,omitempty"`
	ClearResult        bool       `json:"clearResult,omitempty"`
	ExpectedUpdatedAt  *time.Time `json:"expectedUpdatedAt,omitempty"`
}

// MatchResultRequest records the final score of a match
type MatchResultRequest struct {
	Result string `json:"result" binding:"required,max=50" example:"2-1"`
}

// DateRangeQuery filters listings by event day
type DateRangeQuery struct {
	From string `form:"from" binding:"omitempty,isodate"`
	To   string `form:"to" binding:"omitempty,isodate"`
}

// Calendar event kinds
const (
	CalendarKindTraining     = "training"
	CalendarKindMatch        = "match"
	CalendarKindAnnouncement = "announcement"
)

// CalendarEvent is one entry of the merged calendar. Announcements sit on
// their publication time and carry no location or coach.
type CalendarEvent struct {
	Kind            string                       `json:"kind" example:"training"`
	ID              uuid.UUID                    `json:"id"`
	Title           string                       `json:"title"`
	Date            time.Time                    `json:"date"`
	Location        string                       `json:"location,omitempty"`
	CoachID         *uuid.UUID                   `json:"coachId,omitempty"`
	Coach           *models.UserSummary          `json:"coach,omitempty"`
	DurationMinutes *int                         `json:"durationMinutes,omitempty"`
	Opponent        *string                      `json:"opponent,omitempty"`
	MatchType       *models.MatchType            `json:"matchType,omitempty"`
	Author          *models.UserSummary          `json:"author,omitempty"`
	Priority        *models.AnnouncementPriority `json:"priority,omitempty"`
	Category        *models.AnnouncementCategory `json:"category,omitempty"`
}
