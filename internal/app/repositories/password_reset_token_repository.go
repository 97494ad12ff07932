package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(db *pgxpool.Pool) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{
		db: db,
		sb: newBuilder(),
	}
}

// CreateToken stores a new password reset token
func (r *PasswordResetTokenRepository) CreateToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("password_reset_tokens").
		Columns("user_id", "token", "expires_at").
		Values(userID, token, expiresAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create reset token SQL")
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

// GetTokenInfo returns the owner, expiry and used flag of a token
func (r *PasswordResetTokenRepository) GetTokenInfo(ctx context.Context, token string) (uuid.UUID, time.Time, bool, error) {
	sql, args, err := r.sb.Select("user_id", "expires_at", "used").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get reset token SQL")
		return uuid.Nil, time.Time{}, false, fmt.Errorf("failed to build get reset token query: %w", err)
	}

	var (
		userID    uuid.UUID
		expiresAt time.Time
		used      bool
	)
	err = r.db.QueryRow(ctx, sql, args...).Scan(&userID, &expiresAt, &used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, false, apperrors.ErrTokenNotFound
		}
		return uuid.Nil, time.Time{}, false, fmt.Errorf("error retrieving password reset token: %w", err)
	}
	return userID, expiresAt, used, nil
}

// MarkTokenAsUsed flips the used flag once. A second call reports ErrPasswordResetTokenUsed.
func (r *PasswordResetTokenRepository) MarkTokenAsUsed(ctx context.Context, token string) error {
	sql, args, err := r.sb.Update("password_reset_tokens").
		Set("used", true).
		Where(squirrel.Eq{"token": token, "used": false}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building mark reset token SQL")
		return fmt.Errorf("failed to build mark reset token query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking token as used: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrPasswordResetTokenUsed
	}
	return nil
}

// DeleteExpiredTokens removes tokens past their expiry or already used
func (r *PasswordResetTokenRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sb.Delete("password_reset_tokens").
		Where(squirrel.Or{squirrel.Lt{"expires_at": now}, squirrel.Eq{"used": true}}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete expired reset tokens SQL")
		return 0, fmt.Errorf("failed to build delete expired reset tokens query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired password reset tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
