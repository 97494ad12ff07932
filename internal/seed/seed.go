package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// AdminStore is the subset of the user repository the seeder needs
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// AdminAccount describes the bootstrap administrator
type AdminAccount struct {
	Email    string
	Password string
	FullName string
}

// EnsureDefaultAdmin creates the administrator account when no user owns its email.
// An existing account is left untouched, whatever its role.
func EnsureDefaultAdmin(ctx context.Context, users AdminStore, account AdminAccount, lgr zerolog.Logger) error {
	if account.Email == "" || account.Password == "" {
		lgr.Warn().Msg("Default admin credentials not configured, skipping admin seed")
		return nil
	}
	email := helpers.NormalizeEmail(account.Email)

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			lgr.Warn().Str("email", email).Str("role", string(existing.Role)).
				Msg("Default admin email belongs to a non-admin account")
		}
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound) && !errors.Is(err, apperrors.ErrResourceNotFound):
		return fmt.Errorf("looking up default admin: %w", err)
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("hashing default admin password: %w", err)
	}

	fullName := account.FullName
	if fullName == "" {
		fullName = "Academy Admin"
	}
	admin := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) || errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return nil
		}
		return fmt.Errorf("creating default admin: %w", err)
	}

	lgr.Info().Str("email", email).Str("userID", admin.ID.String()).Msg("Default admin account created")
	return nil
}
