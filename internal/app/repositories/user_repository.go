package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/dberrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

var userColumns = []string{
	"id", "email", "password_hash", "full_name", "phone", "role",
	"profile_picture_url", "notification_preferences", "language_preference",
	"created_at", "updated_at",
}

// UserRepository handles profile database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: newBuilder(),
	}
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role,
		&u.ProfilePictureURL, &u.NotificationPreferences, &u.LanguagePreference,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new profile and fills its generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.NotificationPreferences == nil {
		user.NotificationPreferences = models.DefaultNotificationPreferences()
	}

	sql, args, err := r.sb.Insert("profiles").
		Columns("email", "password_hash", "full_name", "phone", "role", "notification_preferences", "language_preference").
		Values(user.Email, user.PasswordHash, user.FullName, user.Phone, string(user.Role), user.NotificationPreferences, user.LanguagePreference).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "profiles_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("profiles").Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a profile by id
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a profile by its normalised email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// List returns a page of profiles, newest first, with the total count
func (r *UserRepository) List(ctx context.Context, role *models.Role, offset uint64, limit int) ([]*models.User, int64, error) {
	filter := squirrel.And{}
	if role != nil {
		filter = append(filter, squirrel.Eq{"role": string(*role)})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("profiles").Where(filter).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count users SQL")
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	sql, args, err := r.sb.Select(userColumns...).From("profiles").Where(filter).
		OrderBy("created_at DESC", "id").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}
	return users, total, nil
}

// ListByRole returns every profile with the given role ordered by name
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("profiles").
		Where(squirrel.Eq{"role": string(role)}).
		OrderBy("full_name", "id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users by role SQL")
		return nil, fmt.Errorf("failed to build list users by role query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users by role: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) update(ctx context.Context, id uuid.UUID, what string, set map[string]any) error {
	set["updated_at"] = squirrel.Expr("now()")
	sql, args, err := r.sb.Update("profiles").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("field", what).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update %s query: %w", what, err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", id.String()).Str("field", what).Msg("Error executing update user query")
		return fmt.Errorf("error updating %s: %w", what, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateProfile writes the self-editable profile fields. Role and email are never touched here.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.update(ctx, user.ID, "profile", map[string]any{
		"full_name":                user.FullName,
		"phone":                    user.Phone,
		"language_preference":      user.LanguagePreference,
		"notification_preferences": user.NotificationPreferences,
	})
}

// UpdateRole changes a profile's role
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return r.update(ctx, id, "role", map[string]any{"role": string(role)})
}

// UpdatePassword replaces the stored bcrypt hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(ctx, id, "password", map[string]any{"password_hash": passwordHash})
}

// UpdateProfilePicture stores the public avatar URL
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) error {
	return r.update(ctx, id, "profile picture", map[string]any{"profile_picture_url": url})
}

// Delete removes a profile; dependent rows cascade
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("profiles").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete user SQL")
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error executing delete user query")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
