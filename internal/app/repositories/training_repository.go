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

// TrainingRepository handles training database operations
type TrainingRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTrainingRepository creates a new TrainingRepository
func NewTrainingRepository(db *pgxpool.Pool) *TrainingRepository {
	return &TrainingRepository{
		db: db,
		sb: newBuilder(),
	}
}

// dateRangeFilter turns a calendar window into a predicate on column
func dateRangeFilter(column string, r models.DateRange) squirrel.And {
	filter := squirrel.And{}
	if !r.From.IsZero() {
		filter = append(filter, squirrel.GtOrEq{column: r.From})
	}
	if !r.To.IsZero() {
		filter = append(filter, squirrel.LtOrEq{column: r.To})
	}
	return filter
}

// Create inserts a training and fills its generated fields
func (r *TrainingRepository) Create(ctx context.Context, t *models.Training) error {
	sql, args, err := r.sb.Insert("trainings").
		Columns("coach_id", "title", "description", "date", "duration_minutes", "location", "max_participants").
		Values(t.CoachID, t.Title, t.Description, t.Date, t.DurationMinutes, t.Location, t.MaxParticipants).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create training SQL")
		return fmt.Errorf("failed to build create training query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("coach does not exist")
		}
		logger.Error().Err(err).Str("coachID", t.CoachID.String()).Msg("Error executing create training query")
		return fmt.Errorf("error creating training: %w", err)
	}
	return nil
}

func (r *TrainingRepository) selectJoined() squirrel.SelectBuilder {
	cols := []string{
		"t.id", "t.coach_id", "t.title", "t.description", "t.date", "t.duration_minutes",
		"t.location", "t.max_participants", "t.created_at", "t.updated_at",
	}
	cols = append(cols, summaryColumns("c")...)
	return r.sb.Select(cols...).
		From("trainings t").
		Join("profiles c ON c.id = t.coach_id")
}

func scanTraining(row rowScanner) (*models.Training, error) {
	t := &models.Training{Coach: &models.UserSummary{}}
	dest := []any{
		&t.ID, &t.CoachID, &t.Title, &t.Description, &t.Date, &t.DurationMinutes,
		&t.Location, &t.MaxParticipants, &t.CreatedAt, &t.UpdatedAt,
	}
	dest = append(dest, summaryTargets(t.Coach)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID retrieves a training with its coach summary
func (r *TrainingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	sql, args, err := r.selectJoined().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get training SQL")
		return nil, fmt.Errorf("failed to build get training query: %w", err)
	}

	t, err := scanTraining(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("training not found")
		}
		logger.Error().Err(err).Str("trainingID", id.String()).Msg("Error scanning training row")
		return nil, fmt.Errorf("error retrieving training: %w", err)
	}
	return t, nil
}

// List returns trainings ordered by date ascending, optionally bounded
func (r *TrainingRepository) List(ctx context.Context, window models.DateRange) ([]*models.Training, error) {
	sql, args, err := r.selectJoined().
		Where(dateRangeFilter("t.date", window)).
		OrderBy("t.date", "t.id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list trainings SQL")
		return nil, fmt.Errorf("failed to build list trainings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list trainings query")
		return nil, fmt.Errorf("error listing trainings: %w", err)
	}
	defer rows.Close()

	var out []*models.Training
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning training row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update writes the mutable fields. When expected is set the write only applies
// to the version the caller read; a mismatch yields ErrStaleUpdate.
func (r *TrainingRepository) Update(ctx context.Context, t *models.Training, expected *time.Time) error {
	where := squirrel.And{squirrel.Eq{"id": t.ID}}
	if expected != nil {
		where = append(where, squirrel.Eq{"updated_at": *expected})
	}

	sql, args, err := r.sb.Update("trainings").
		SetMap(map[string]any{
			"title":            t.Title,
			"description":      t.Description,
			"date":             t.Date,
			"duration_minutes": t.DurationMinutes,
			"location":         t.Location,
			"max_participants": t.MaxParticipants,
			"updated_at":       squirrel.Expr("now()"),
		}).
		Where(where).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update training SQL")
		return fmt.Errorf("failed to build update training query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Str("trainingID", t.ID.String()).Msg("Error executing update training query")
		return fmt.Errorf("error updating training: %w", err)
	}
	if expected != nil {
		exists, existsErr := rowExists(ctx, r.db, r.sb, "trainings", t.ID)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			return apperrors.ErrStaleUpdate
		}
	}
	return apperrors.NewResourceNotFoundError("training not found")
}

// Delete removes a training; its attendance rows cascade
func (r *TrainingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("trainings").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete training SQL")
		return fmt.Errorf("failed to build delete training query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("trainingID", id.String()).Msg("Error executing delete training query")
		return fmt.Errorf("error deleting training: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("training not found")
	}
	return nil
}

// Count returns the number of trainings in the window
func (r *TrainingRepository) Count(ctx context.Context, window models.DateRange) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("trainings t").Where(dateRangeFilter("t.date", window)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count trainings query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting trainings: %w", err)
	}
	return n, nil
}
