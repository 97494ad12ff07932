package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of academy roles
type Role string

const (
	RoleStudent Role = "student"
	RoleCoach   Role = "coach"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// AllRoles lists every role in display order
var AllRoles = []Role{RoleStudent, RoleCoach, RoleStaff, RoleAdmin}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCoach, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts user input into a Role
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// UserSummary is the display projection of a user joined onto other records
type UserSummary struct {
	ID                uuid.UUID `json:"id" db:"id"`
	FullName          string    `json:"fullName" db:"full_name" example:"Jane Doe"`
	Email             string    `json:"email" db:"email" example:"jane@academy.test"`
	ProfilePictureURL *string   `json:"profilePictureUrl,omitempty" db:"profile_picture_url"`
}

// DateRange bounds calendar queries; zero values mean unbounded
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}
