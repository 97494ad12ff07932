package dto

import (
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
)

// UpdateProfileRequest represents the fields a user may change on their own profile.
// Role and email are not editable here.
type UpdateProfileRequest struct {
	FullName                *string         `json:"fullName,omitempty" binding:"omitempty,min=2,max=100"`
	Phone                   *string         `json:"phone,omitempty" binding:"omitempty,max=30"`
	LanguagePreference      *string         `json:"languagePreference,omitempty" binding:"omitempty,oneof=en tr"`
	NotificationPreferences map[string]bool `json:"notificationPreferences,omitempty"`
}

// AvatarResponse is returned after a profile picture upload
type AvatarResponse struct {
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// NavigationResponse lists the pages available to the caller's role
type NavigationResponse struct {
	Role    models.Role     `json:"role"`
	Entries []auth.NavEntry `json:"entries"`
}

// UserFilterRequest represents user filtering parameters
type UserFilterRequest struct {
	Role     string `form:"role" binding:"omitempty,role"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=10" binding:"min=1,max=100"`
}

// DirectoryQuery picks which directory to list
type DirectoryQuery struct {
	Role string `form:"role" binding:"required,oneof=student coach"`
}

// CreateUserRequest is used by admins to provision accounts
type CreateUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	FullName string      `json:"fullName" binding:"required,min=2,max=100"`
	Phone    *string     `json:"phone,omitempty" binding:"omitempty,max=30"`
	Role     models.Role `json:"role" binding:"required,oneof=student coach staff"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required,role"`
}

// UserListResponse represents a list of users
type UserListResponse struct {
	Users []*models.User `json:"users"`
}
