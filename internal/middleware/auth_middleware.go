package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// ProfileLookup loads the current profile of an authenticated user
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	profiles   ProfileLookup
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. When profiles is set the role is
// read from the stored profile, so role changes and deletions apply before the token expires.
func NewAuthMiddleware(jwtService *auth.JWTService, profiles ProfileLookup, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		profiles:   profiles,
		logger:     logger,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth middleware for JWT token validation.
// The token comes from the Authorization header, or the token query parameter for websocket clients.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
			return
		}

		claims, userID, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code, details := dto.ErrorCodeInvalidToken, "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				code, details = dto.ErrorCodeExpiredToken, "Token has expired"
			} else if errors.Is(err, auth.ErrInvalidFormat) {
				details = "Invalid token format"
			}
			abortUnauthorized(c, code, details)
			return
		}

		role := claims.Role
		if m.profiles != nil {
			profile, err := m.profiles.GetByID(c.Request.Context(), userID)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) || errors.Is(err, apperrors.ErrResourceNotFound) {
					abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Account no longer exists")
					return
				}
				m.logger.Error().Err(err).Str("userID", userID.String()).Msg("Failed to load profile for request")
				HandleAPIError(c, err)
				c.Abort()
				return
			}
			role = profile.Role
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, role)

		c.Next()
	}
}

// Require admits the request only when the caller's role may perform op
func (m *AuthMiddleware) Require(op appauth.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		var role *models.Role
		if raw, ok := c.Get(ContextRole); ok {
			if r, ok := raw.(models.Role); ok {
				role = &r
			}
		}
		if role == nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		if !appauth.Can(role, op) {
			m.logger.Debug().Str("role", string(*role)).Str("operation", string(op)).Msg("Access denied by policy")
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// Principal returns the authenticated caller stored by JWTAuth
func Principal(c *gin.Context) (appauth.Principal, bool) {
	rawID, okID := c.Get(ContextUserID)
	rawRole, okRole := c.Get(ContextRole)
	if !okID || !okRole {
		return appauth.Principal{}, false
	}
	userID, okID := rawID.(uuid.UUID)
	role, okRole := rawRole.(models.Role)
	if !okID || !okRole {
		return appauth.Principal{}, false
	}
	return appauth.Principal{UserID: userID, Role: role}, true
}
