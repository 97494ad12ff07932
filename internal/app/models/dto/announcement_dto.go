package dto

import (
	"time"

	"github.com/yigit/academy/internal/app/models"
)

// CreateAnnouncementRequest represents announcement creation data
type CreateAnnouncementRequest struct {
	Title          string                      `json:"title" binding:"required,max=200"`
	Content        string                      `json:"content" binding:"required"`
	Priority       models.AnnouncementPriority `json:"priority,omitempty" binding:"omitempty,oneof=low normal high urgent"`
	Category       models.AnnouncementCategory `json:"category,omitempty" binding:"omitempty,oneof=general training match event emergency"`
	TargetAudience models.Audience             `json:"targetAudience,omitempty" binding:"omitempty,oneof=everyone students coaches staff students_coaches"`
	PublishedAt    *time.Time                  `json:"publishedAt,omitempty"`
	ExpiresAt      *time.Time                  `json:"expiresAt,omitempty"`
}

// UpdateAnnouncementRequest represents a partial announcement update
type UpdateAnnouncementRequest struct {
	Title          *string                      `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Content        *string                      `json:"content,omitempty" binding:"omitempty,min=1"`
	Priority       *models.AnnouncementPriority `json:"priority,omitempty" binding:"omitempty,oneof=low normal high urgent"`
	Category       *models.AnnouncementCategory `json:"category,omitempty" binding:"omitempty,oneof=general training match event emergency"`
	TargetAudience *models.Audience             `json:"targetAudience,omitempty" binding:"omitempty,oneof=everyone students coaches staff students_coaches"`
	ExpiresAt      *time.Time                   `json:"expiresAt,omitempty"`
	ClearExpiry    bool                         `json:"clearExpiry,omitempty"`
}

// AnnouncementListQuery filters the announcement board
type AnnouncementListQuery struct {
	IncludeExpired bool `form:"includeExpired"`
}

// AnnouncementView is an announcement plus the caller's read state
type AnnouncementView struct {
	*models.Announcement
	Read    bool `json:"read"`
	Expired bool `json:"expired"`
}

// UnreadAnnouncementsResponse feeds the notification bell
type UnreadAnnouncementsResponse struct {
	Count int                    `json:"count"`
	Items []*models.Announcement `json:"items"`
}
