package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types raised by the system
const (
	NotificationGeneral      = "general"
	NotificationAssignment   = "assignment"
	NotificationAnnouncement = "announcement"
	NotificationTraining     = "training"
	NotificationMatch        = "match"
	NotificationSponsorship  = "sponsorship"
)

// Notification is a per-user message (table 'notifications')
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Type      string    `json:"type" db:"type" example:"assignment"`
	Link      *string   `json:"link,omitempty" db:"link"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// AnnouncementRead is a durable read receipt (table 'announcement_reads')
type AnnouncementRead struct {
	UserID         uuid.UUID `json:"userId" db:"user_id"`
	AnnouncementID uuid.UUID `json:"announcementId" db:"announcement_id"`
	ReadAt         time.Time `json:"readAt" db:"read_at"`
}
