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
	"github.com/yigit/academy/internal/db"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/dberrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

const rosterReturning = "RETURNING id, match_id, student_id, jersey_number, position, performance_notes, joined_at"

// RosterRepository handles match roster rows
type RosterRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRosterRepository creates a new RosterRepository
func NewRosterRepository(db *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{
		db: db,
		sb: newBuilder(),
	}
}

func scanRosterEntry(row rowScanner) (*models.RosterEntry, error) {
	e := &models.RosterEntry{}
	if err := row.Scan(&e.ID, &e.MatchID, &e.StudentID, &e.JerseyNumber, &e.Position, &e.PerformanceNotes, &e.JoinedAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Join adds a student to a match roster. The roster size limit is checked under
// a row lock on the match. An existing roster entry wins over a full match.
func (r *RosterRepository) Join(ctx context.Context, entry *models.RosterEntry) error {
	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		st, err := lockSeats(ctx, tx, r.sb, matchCapacity, entry.MatchID)
		if err != nil {
			return err
		}
		if st.taken[entry.StudentID] {
			return apperrors.NewAlreadyExistsError("already on the roster for this match")
		}
		if err := st.admit(matchCapacity, []uuid.UUID{entry.StudentID}); err != nil {
			return err
		}

		sql, args, err := r.sb.Insert("match_roster").
			Columns("match_id", "student_id", "jersey_number", "position").
			Values(entry.MatchID, entry.StudentID, entry.JerseyNumber, entry.Position).
			Suffix(rosterReturning).
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building join match SQL")
			return fmt.Errorf("failed to build join match query: %w", err)
		}

		saved, err := scanRosterEntry(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "match_roster_match_id_student_id_key") {
				return apperrors.NewAlreadyExistsError("already on the roster for this match")
			}
			return fmt.Errorf("error joining match: %w", err)
		}
		*entry = *saved
		return nil
	})
}

// Leave removes a student from a roster. Leaving twice is not an error.
func (r *RosterRepository) Leave(ctx context.Context, matchID, studentID uuid.UUID) error {
	sql, args, err := r.sb.Delete("match_roster").
		Where(squirrel.Eq{"match_id": matchID, "student_id": studentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building leave match SQL")
		return fmt.Errorf("failed to build leave match query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("matchID", matchID.String()).Msg("Error executing leave match query")
		return fmt.Errorf("error leaving match: %w", err)
	}
	return nil
}

// Update changes the coach-managed fields of one roster entry
func (r *RosterRepository) Update(ctx context.Context, matchID, studentID uuid.UUID, upd models.RosterUpdate) (*models.RosterEntry, error) {
	set := map[string]any{}
	if upd.JerseyNumber != nil {
		set["jersey_number"] = *upd.JerseyNumber
	}
	if upd.Position != nil {
		set["position"] = *upd.Position
	}
	if upd.PerformanceNotes != nil {
		set["performance_notes"] = *upd.PerformanceNotes
	}
	if len(set) == 0 {
		return nil, apperrors.NewValidationError("no roster fields to update")
	}

	sql, args, err := r.sb.Update("match_roster").
		SetMap(set).
		Where(squirrel.Eq{"match_id": matchID, "student_id": studentID}).
		Suffix(rosterReturning).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update roster SQL")
		return nil, fmt.Errorf("failed to build update roster query: %w", err)
	}

	entry, err := scanRosterEntry(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("student is not on this match roster")
		}
		return nil, fmt.Errorf("error updating roster entry: %w", err)
	}
	return entry, nil
}

// ListByMatch returns the roster with student summaries, in join order
func (r *RosterRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.RosterEntry, error) {
	cols := []string{"mr.id", "mr.match_id", "mr.student_id", "mr.jersey_number", "mr.position", "mr.performance_notes", "mr.joined_at"}
	cols = append(cols, summaryColumns("s")...)
	sql, args, err := r.sb.Select(cols...).
		From("match_roster mr").
		Join("profiles s ON s.id = mr.student_id").
		Where(squirrel.Eq{"mr.match_id": matchID}).
		OrderBy("mr.joined_at", "mr.id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list roster SQL")
		return nil, fmt.Errorf("failed to build list roster query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("matchID", matchID.String()).Msg("Error executing list roster query")
		return nil, fmt.Errorf("error listing roster: %w", err)
	}
	defer rows.Close()

	var out []models.RosterEntry
	for rows.Next() {
		e := models.RosterEntry{Student: &models.UserSummary{}}
		dest := []any{&e.ID, &e.MatchID, &e.StudentID, &e.JerseyNumber, &e.Position, &e.PerformanceNotes, &e.JoinedAt}
		dest = append(dest, summaryTargets(e.Student)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning roster row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
