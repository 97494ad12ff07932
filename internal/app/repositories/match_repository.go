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

// MatchRepository handles match database operations
type MatchRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMatchRepository creates a new MatchRepository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{
		db: db,
		sb: newBuilder(),
	}
}

// Create inserts a match and fills its generated fields
func (r *MatchRepository) Create(ctx context.Context, m *models.Match) error {
	sql, args, err := r.sb.Insert("matches").
		Columns("coach_id", "title", "description", "opponent", "date", "location", "match_type", "max_roster_size", "result").
		Values(m.CoachID, m.Title, m.Description, m.Opponent, m.Date, m.Location, string(m.MatchType), m.MaxRosterSize, m.Result).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create match SQL")
		return fmt.Errorf("failed to build create match query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("coach does not exist")
		}
		logger.Error().Err(err).Str("coachID", m.CoachID.String()).Msg("Error executing create match query")
		return fmt.Errorf("error creating match: %w", err)
	}
	return nil
}

func (r *MatchRepository) selectJoined() squirrel.SelectBuilder {
	cols := []string{
		"m.id", "m.coach_id", "m.title", "m.description", "m.opponent", "m.date", "m.location",
		"m.match_type", "m.max_roster_size", "m.result", "m.created_at", "m.updated_at",
	}
	cols = append(cols, summaryColumns("c")...)
	return r.sb.Select(cols...).
		From("matches m").
		Join("profiles c ON c.id = m.coach_id")
}

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{Coach: &models.UserSummary{}}
	dest := []any{
		&m.ID, &m.CoachID, &m.Title, &m.Description, &m.Opponent, &m.Date, &m.Location,
		&m.MatchType, &m.MaxRosterSize, &m.Result, &m.CreatedAt, &m.UpdatedAt,
	}
	dest = append(dest, summaryTargets(m.Coach)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return m, nil
}

// GetByID retrieves a match with its coach summary
func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	sql, args, err := r.selectJoined().Where(squirrel.Eq{"m.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get match SQL")
		return nil, fmt.Errorf("failed to build get match query: %w", err)
	}

	m, err := scanMatch(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("match not found")
		}
		logger.Error().Err(err).Str("matchID", id.String()).Msg("Error scanning match row")
		return nil, fmt.Errorf("error retrieving match: %w", err)
	}
	return m, nil
}

// List returns matches ordered by date ascending, optionally bounded
func (r *MatchRepository) List(ctx context.Context, window models.DateRange) ([]*models.Match, error) {
	sql, args, err := r.selectJoined().
		Where(dateRangeFilter("m.date", window)).
		OrderBy("m.date", "m.id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list matches SQL")
		return nil, fmt.Errorf("failed to build list matches query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list matches query")
		return nil, fmt.Errorf("error listing matches: %w", err)
	}
	defer rows.Close()

	var out []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning match row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update writes the mutable fields, honouring expected like TrainingRepository.Update
func (r *MatchRepository) Update(ctx context.Context, m *models.Match, expected *time.Time) error {
	where := squirrel.And{squirrel.Eq{"id": m.ID}}
	if expected != nil {
		where = append(where, squirrel.Eq{"updated_at": *expected})
	}

	sql, args, err := r.sb.Update("matches").
		SetMap(map[string]any{
			"title":           m.Title,
			"description":     m.Description,
			"opponent":        m.Opponent,
			"date":            m.Date,
			"location":        m.Location,
			"match_type":      string(m.MatchType),
			"max_roster_size": m.MaxRosterSize,
			"result":          m.Result,
			"updated_at":      squirrel.Expr("now()"),
		}).
		Where(where).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update match SQL")
		return fmt.Errorf("failed to build update match query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Str("matchID", m.ID.String()).Msg("Error executing update match query")
		return fmt.Errorf("error updating match: %w", err)
	}
	if expected != nil {
		exists, existsErr := rowExists(ctx, r.db, r.sb, "matches", m.ID)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			return apperrors.ErrStaleUpdate
		}
	}
	return apperrors.NewResourceNotFoundError("match not found")
}

// Delete removes a match; roster and attendance rows cascade
func (r *MatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("matches").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete match SQL")
		return fmt.Errorf("failed to build delete match query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("matchID", id.String()).Msg("Error executing delete match query")
		return fmt.Errorf("error deleting match: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("match not found")
	}
	return nil
}
