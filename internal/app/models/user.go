package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the profile model based on the 'profiles' table
type User struct {
	ID                      uuid.UUID       `json:"id" db:"id"`
	Email                   string          `json:"email" db:"email" example:"coach@academy.test"`
	PasswordHash            string          `json:"-" db:"password_hash"`
	FullName                string          `json:"fullName" db:"full_name" example:"Jane Doe"`
	Phone                   *string         `json:"phone,omitempty" db:"phone" example:"+90 555 000 0000"`
	Role                    Role            `json:"role" db:"role" example:"student"`
	ProfilePictureURL       *string         `json:"profilePictureUrl,omitempty" db:"profile_picture_url"`
	NotificationPreferences map[string]bool `json:"notificationPreferences" db:"notification_preferences"`
	LanguagePreference      *string         `json:"languagePreference,omitempty" db:"language_preference" example:"en"`
	CreatedAt               time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt               time.Time       `json:"updatedAt" db:"updated_at"`
}

// Summary projects the user onto its display fields
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		FullName:          u.FullName,
		Email:             u.Email,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// DefaultNotificationPreferences is applied to new accounts
func DefaultNotificationPreferences() map[string]bool {
	return map[string]bool{
		"email":         true,
		"announcements": true,
		"trainings":     true,
		"matches":       true,
	}
}
