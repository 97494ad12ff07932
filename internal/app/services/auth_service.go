package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/email"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// passwordResetTTL is how long an emailed reset link stays valid
const passwordResetTTL = time.Hour

// AuthService handles signup, sessions and password recovery
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

type authServiceImpl struct {
	users        UserStore
	tokens       RefreshTokenStore
	resetTokens  PasswordResetStore
	jwtService   *auth.JWTService
	emailService email.EmailService
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	tokens RefreshTokenStore,
	resetTokens PasswordResetStore,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		users:        users,
		tokens:       tokens,
		resetTokens:  resetTokens,
		jwtService:   jwtService,
		emailService: emailService,
		logger:       logger,
		now:          time.Now,
	}
}

// Signup always creates a student account
func (s *authServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if len(req.Password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:                   helpers.NormalizeEmail(req.Email),
		PasswordHash:            hash,
		FullName:                strings.TrimSpace(req.FullName),
		Phone:                   helpers.TrimmedOrNil(req.Phone),
		Role:                    models.RoleStudent,
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewAlreadyExistsError("email already registered")
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("New student signed up")
	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.FullName); err != nil {
			s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Failed to send welcome email")
		}
	}

	return s.authResponse(ctx, user)
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, helpers.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.authResponse(ctx, user)
}

// RefreshToken rotates the refresh token: the presented one is revoked and a new pair issued
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, err := s.tokens.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateTokenResponse(ctx, user)
}

func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.ErrTokenInvalid
	}
	return s.tokens.RevokeToken(ctx, refreshToken)
}

// ForgotPassword never reveals whether the email is registered
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, helpers.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Info().Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := s.resetTokens.CreateToken(ctx, user.ID, token, s.now().Add(passwordResetTTL)); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := s.emailService.SendPasswordResetEmail(user.Email, user.FullName, token); err != nil {
			s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to send password reset email")
		}
	}
	return nil
}

// ResetPassword sets a new password and ends every session of the user
func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if len(req.NewPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	userID, expiresAt, used, err := s.resetTokens.GetTokenInfo(ctx, req.Token)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return apperrors.ErrInvalidPasswordResetToken
		}
		return err
	}
	if used {
		return apperrors.ErrPasswordResetTokenUsed
	}
	if !expiresAt.After(s.now()) {
		return apperrors.ErrInvalidPasswordResetToken
	}

	if err := s.resetTokens.MarkTokenAsUsed(ctx, req.Token); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Failed to revoke sessions after password reset")
	}
	s.logger.Info().Str("userID", userID.String()).Msg("Password reset completed")
	return nil
}

// CleanupExpiredTokens removes stale refresh and reset tokens
func (s *authServiceImpl) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	refresh, err := s.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		return 0, err
	}
	reset, err := s.resetTokens.DeleteExpiredTokens(ctx, s.now())
	if err != nil {
		return refresh, err
	}
	return refresh + reset, nil
}

func (s *authServiceImpl) authResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	token, err := s.generateTokenResponse(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, User: user}, nil
}

// generateTokenResponse issues a token pair and stores the refresh half
func (s *authServiceImpl) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokens.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("refresh token save error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}
