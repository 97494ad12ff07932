package dto

import "github.com/google/uuid"

// CreateNotificationRequest lets admins message a user directly
type CreateNotificationRequest struct {
	UserID  uuid.UUID `json:"userId" binding:"required"`
	Title   string    `json:"title" binding:"required,max=200"`
	Message string    `json:"message" binding:"required,max=2000"`
	Type    string    `json:"type,omitempty" binding:"omitempty,max=50"`
	Link    *string   `json:"link,omitempty" binding:"omitempty,max=500"`
}

// MarkAllReadResponse reports how many notifications were updated
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
