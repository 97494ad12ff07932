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
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/dberrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

var campaignColumns = []string{
	"id", "created_by", "title", "description", "goal_amount", "current_amount",
	"start_date", "end_date", "status", "created_at", "updated_at",
}

// CampaignRepository handles fundraising campaign database operations
type CampaignRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{
		db: db,
		sb: newBuilder(),
	}
}

func scanCampaign(row rowScanner) (*models.FundraisingCampaign, error) {
	c := &models.FundraisingCampaign{}
	err := row.Scan(&c.ID, &c.CreatedBy, &c.Title, &c.Description, &c.GoalAmount, &c.CurrentAmount,
		&c.StartDate, &c.EndDate, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// campaignConstraintError maps CHECK violations onto validation errors
func campaignConstraintError(err error) error {
	if dberrors.IsCheckViolation(err) {
		return apperrors.NewValidationError("goal must be positive, current amount non-negative and start on or before end")
	}
	return nil
}

// Create inserts a campaign and fills its generated fields
func (r *CampaignRepository) Create(ctx context.Context, c *models.FundraisingCampaign) error {
	sql, args, err := r.sb.Insert("fundraising_campaigns").
		Columns("created_by", "title", "description", "goal_amount", "current_amount", "start_date", "end_date", "status").
		Values(c.CreatedBy, c.Title, c.Description, c.GoalAmount, c.CurrentAmount, c.StartDate, c.EndDate, string(c.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create campaign SQL")
		return fmt.Errorf("failed to build create campaign query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if mapped := campaignConstraintError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Msg("Error executing create campaign query")
		return fmt.Errorf("error creating campaign: %w", err)
	}
	return nil
}

// GetByID retrieves a campaign
func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FundraisingCampaign, error) {
	sql, args, err := r.sb.Select(campaignColumns...).From("fundraising_campaigns").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get campaign SQL")
		return nil, fmt.Errorf("failed to build get campaign query: %w", err)
	}

	c, err := scanCampaign(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("campaign not found")
		}
		return nil, fmt.Errorf("error retrieving campaign: %w", err)
	}
	return c, nil
}

// List returns campaigns newest first, optionally filtered by status
func (r *CampaignRepository) List(ctx context.Context, status *models.CampaignStatus) ([]*models.FundraisingCampaign, error) {
	q := r.sb.Select(campaignColumns...).From("fundraising_campaigns").OrderBy("created_at DESC", "id")
	if status != nil {
		q = q.Where(squirrel.Eq{"status": string(*status)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list campaigns SQL")
		return nil, fmt.Errorf("failed to build list campaigns query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list campaigns query")
		return nil, fmt.Errorf("error listing campaigns: %w", err)
	}
	defer rows.Close()

	var out []*models.FundraisingCampaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning campaign row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update writes every editable field. expected behaves as in TrainingRepository.Update.
func (r *CampaignRepository) Update(ctx context.Context, c *models.FundraisingCampaign, expected *time.Time) error {
	where := squirrel.And{squirrel.Eq{"id": c.ID}}
	if expected != nil {
		where = append(where, squirrel.Eq{"updated_at": *expected})
	}

	sql, args, err := r.sb.Update("fundraising_campaigns").
		SetMap(map[string]any{
			"title":          c.Title,
			"description":    c.Description,
			"goal_amount":    c.GoalAmount,
			"current_amount": c.CurrentAmount,
			"start_date":     c.StartDate,
			"end_date":       c.EndDate,
			"status":         string(c.Status),
			"updated_at":     squirrel.Expr("now()"),
		}).
		Where(where).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update campaign SQL")
		return fmt.Errorf("failed to build update campaign query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.UpdatedAt)
	if err == nil {
		return nil
	}
	if mapped := campaignConstraintError(err); mapped != nil {
		return mapped
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Str("campaignID", c.ID.String()).Msg("Error executing update campaign query")
		return fmt.Errorf("error updating campaign: %w", err)
	}
	if expected != nil {
		exists, existsErr := rowExists(ctx, r.db, r.sb, "fundraising_campaigns", c.ID)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			return apperrors.ErrStaleUpdate
		}
	}
	return apperrors.NewResourceNotFoundError("campaign not found")
}

// Delete removes a campaign
func (r *CampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("fundraising_campaigns").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete campaign SQL")
		return fmt.Errorf("failed to build delete campaign query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting campaign: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("campaign not found")
	}
	return nil
}

// CompleteExpired marks active campaigns that ended before today as completed
func (r *CampaignRepository) CompleteExpired(ctx context.Context, today time.Time) (int64, error) {
	sql, args, err := r.sb.Update("fundraising_campaigns").
		Set("status", string(models.CampaignCompleted)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": string(models.CampaignActive)}).
		Where(squirrel.Lt{"end_date": today}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building complete expired campaigns SQL")
		return 0, fmt.Errorf("failed to build complete expired campaigns query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing complete expired campaigns query")
		return 0, fmt.Errorf("error completing expired campaigns: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
