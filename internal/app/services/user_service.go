package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	pkgauth "github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/filestorage"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// UserService defines the interface for profile and account management
type UserService interface {
	GetProfile(ctx context.Context, p auth.Principal) (*models.User, error)
	UpdateProfile(ctx context.Context, p auth.Principal, req *dto.UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, p auth.Principal, image io.Reader) (*models.User, error)
	Navigation(p auth.Principal) *dto.NavigationResponse
	Directory(ctx context.Context, p auth.Principal, role models.Role) ([]models.UserSummary, error)

	// Admin operations
	ListUsers(ctx context.Context, p auth.Principal, filter *dto.UserFilterRequest) ([]*models.User, int64, error)
	GetUser(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, p auth.Principal, req *dto.CreateUserRequest) (*models.User, error)
	UpdateRole(ctx context.Context, p auth.Principal, id uuid.UUID, role models.Role) (*models.User, error)
	DeleteUser(ctx context.Context, p auth.Principal, id uuid.UUID) error
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	users       UserStore
	fileStorage filestorage.FileStorage
	avatarSize  int
	logger      zerolog.Logger
	now         func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, fileStorage filestorage.FileStorage, avatarSize int, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		users:       users,
		fileStorage: fileStorage,
		avatarSize:  avatarSize,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, p auth.Principal) (*models.User, error) {
	return s.users.GetByID(ctx, p.UserID)
}

// UpdateProfile applies the self-editable fields. Role and email stay as they are.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, p auth.Principal, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, apperrors.NewValidationError("full name cannot be empty")
		}
		user.FullName = name
	}
	if req.Phone != nil {
		user.Phone = helpers.TrimmedOrNil(req.Phone)
	}
	if req.LanguagePreference != nil {
		user.LanguagePreference = helpers.TrimmedOrNil(req.LanguagePreference)
	}
	if req.NotificationPreferences != nil {
		if user.NotificationPreferences == nil {
			user.NotificationPreferences = models.DefaultNotificationPreferences()
		}
		for k, v := range req.NotificationPreferences {
			user.NotificationPreferences[k] = v
		}
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar crops the image to a square JPEG, stores it and replaces the previous picture
func (s *userServiceImpl) UploadAvatar(ctx context.Context, p auth.Principal, image io.Reader) (*models.User, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	data, err := filestorage.NormalizeAvatar(image, s.avatarSize)
	if err != nil {
		return nil, apperrors.NewValidationError("uploaded file is not a supported image")
	}

	relPath := fmt.Sprintf("avatars/%s/%s-%d.jpg", user.ID, user.ID, s.now().Unix())
	url, err := s.fileStorage.SaveBytes(relPath, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	if err := s.users.UpdateProfilePicture(ctx, user.ID, url); err != nil {
		if delErr := s.fileStorage.DeleteFile(url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to clean up avatar after update error")
		}
		return nil, err
	}

	if user.ProfilePictureURL != nil && *user.ProfilePictureURL != url {
		if err := s.fileStorage.DeleteFile(*user.ProfilePictureURL); err != nil {
			s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Failed to delete previous avatar")
		}
	}

	user.ProfilePictureURL = &url
	return user, nil
}

func (s *userServiceImpl) Navigation(p auth.Principal) *dto.NavigationResponse {
	return &dto.NavigationResponse{Role: p.Role, Entries: auth.NavigationFor(p.Role)}
}

// Directory lists students or coaches by name for staff-side pickers
func (s *userServiceImpl) Directory(ctx context.Context, p auth.Principal, role models.Role) ([]models.UserSummary, error) {
	if err := auth.Authorize(p, auth.OpDirectoryView); err != nil {
		return nil, err
	}
	if role != models.RoleStudent && role != models.RoleCoach {
		return nil, apperrors.NewValidationError("directory role must be student or coach")
	}

	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context, p auth.Principal, filter *dto.UserFilterRequest) ([]*models.User, int64, error) {
	if err := auth.Authorize(p, auth.OpUsersManage); err != nil {
		return nil, 0, err
	}

	var role *models.Role
	if filter.Role != "" {
		r, ok := models.ParseRole(filter.Role)
		if !ok {
			return nil, 0, apperrors.NewValidationError("unknown role")
		}
		role = &r
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	users, total, err := s.users.List(ctx, role, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, total, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.User, error) {
	if err := auth.Authorize(p, auth.OpUsersManage); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// CreateUser provisions an account with a chosen role. Admin accounts are not created here.
func (s *userServiceImpl) CreateUser(ctx context.Context, p auth.Principal, req *dto.CreateUserRequest) (*models.User, error) {
	if err := auth.Authorize(p, auth.OpUsersManage); err != nil {
		return nil, err
	}
	if !req.Role.Valid() || req.Role == models.RoleAdmin {
		return nil, apperrors.NewValidationError("role must be student, coach or staff")
	}
	if len(req.Password) < pkgauth.MinPasswordLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", pkgauth.MinPasswordLength))
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:                   helpers.NormalizeEmail(req.Email),
		PasswordHash:            hash,
		FullName:                strings.TrimSpace(req.FullName),
		Phone:                   helpers.TrimmedOrNil(req.Phone),
		Role:                    req.Role,
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewAlreadyExistsError("email already registered")
		}
		return nil, err
	}

	s.logger.Info().
		Str("userID", user.ID.String()).
		Str("role", string(user.Role)).
		Str("by", p.UserID.String()).
		Msg("User created by admin")
	return user, nil
}

// UpdateRole changes a user's role. Admins cannot demote themselves.
func (s *userServiceImpl) UpdateRole(ctx context.Context, p auth.Principal, id uuid.UUID, role models.Role) (*models.User, error) {
	if err := auth.Authorize(p, auth.OpUsersManage); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role")
	}
	if id == p.UserID && role != models.RoleAdmin {
		return nil, apperrors.NewBadRequestError("admins cannot change their own role")
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.logger.Info().Str("userID", id.String()).Str("role", string(role)).Msg("User role changed")
	return s.users.GetByID(ctx, id)
}

// DeleteUser removes an account and everything it owns. Admin accounts are protected.
func (s *userServiceImpl) DeleteUser(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.OpUsersManage); err != nil {
		return err
	}
	if id == p.UserID {
		return apperrors.NewForbiddenError("admins cannot delete their own account")
	}

	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == models.RoleAdmin {
		return apperrors.NewForbiddenError("admin accounts cannot be deleted")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	if target.ProfilePictureURL != nil {
		if err := s.fileStorage.DeleteFile(*target.ProfilePictureURL); err != nil {
			s.logger.Warn().Err(err).Str("userID", id.String()).Msg("Failed to delete avatar of removed user")
		}
	}
	s.logger.Info().Str("userID", id.String()).Str("by", p.UserID.String()).Msg("User deleted")
	return nil
}
