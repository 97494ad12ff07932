package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/db"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

const matchAttendanceReturning = "RETURNING id, match_id, student_id, status, notes, created_at, updated_at"

// MatchAttendanceRepository handles the match attendance ledger
type MatchAttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMatchAttendanceRepository creates a new MatchAttendanceRepository
func NewMatchAttendanceRepository(db *pgxpool.Pool) *MatchAttendanceRepository {
	return &MatchAttendanceRepository{
		db: db,
		sb: newBuilder(),
	}
}

// matchAttendanceUpsert builds one INSERT ... ON CONFLICT statement for the batch
func matchAttendanceUpsert(sb squirrel.StatementBuilderType, matchID uuid.UUID, marks []models.MatchAttendanceMark) squirrel.InsertBuilder {
	q := sb.Insert("match_attendance").Columns("match_id", "student_id", "status", "notes")
	for _, m := range marks {
		q = q.Values(matchID, m.StudentID, string(m.Status), m.Notes)
	}
	return q.Suffix("ON CONFLICT (match_id, student_id) DO UPDATE SET " +
		"status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = now() " + matchAttendanceReturning)
}

// BulkUpsert records the whole batch or nothing. Every student must already be
// on the match roster.
func (r *MatchAttendanceRepository) BulkUpsert(ctx context.Context, matchID uuid.UUID, marks []models.MatchAttendanceMark) ([]*models.MatchAttendance, error) {
	if len(marks) == 0 {
		return nil, nil
	}
	marks = lastMarkPerStudent(marks, func(m models.MatchAttendanceMark) uuid.UUID { return m.StudentID })

	var saved []*models.MatchAttendance
	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.requireRostered(ctx, tx, matchID, marks); err != nil {
			return err
		}

		sql, args, err := matchAttendanceUpsert(r.sb, matchID, marks).ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building upsert match attendance SQL")
			return fmt.Errorf("failed to build upsert match attendance query: %w", err)
		}

		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error recording match attendance: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			a := &models.MatchAttendance{}
			if err := rows.Scan(&a.ID, &a.MatchID, &a.StudentID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
				return fmt.Errorf("error scanning match attendance row: %w", err)
			}
			saved = append(saved, a)
		}
		return rows.Err()
	})
	if err != nil {
		logger.Error().Err(err).Str("matchID", matchID.String()).Int("records", len(marks)).Msg("Match attendance batch rejected")
		return nil, err
	}
	return saved, nil
}

func (r *MatchAttendanceRepository) requireRostered(ctx context.Context, tx pgx.Tx, matchID uuid.UUID, marks []models.MatchAttendanceMark) error {
	ids := make([]uuid.UUID, len(marks))
	for i, m := range marks {
		ids[i] = m.StudentID
	}

	sql, args, err := r.sb.Select("student_id").From("match_roster").
		Where(squirrel.Eq{"match_id": matchID, "student_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build roster membership query: %w", err)
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error checking roster membership: %w", err)
	}
	defer rows.Close()

	onRoster := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("error scanning roster membership: %w", err)
		}
		onRoster[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error checking roster membership: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if !onRoster[id] {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("students not on the match roster: " + strings.Join(missing, ", "))
	}
	return nil
}

func (r *MatchAttendanceRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.MatchAttendance, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list match attendance SQL")
		return nil, fmt.Errorf("failed to build list match attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list match attendance query")
		return nil, fmt.Errorf("error listing match attendance: %w", err)
	}
	defer rows.Close()

	var out []models.MatchAttendance
	for rows.Next() {
		a := models.MatchAttendance{Student: &models.UserSummary{}}
		dest := []any{&a.ID, &a.MatchID, &a.StudentID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt}
		dest = append(dest, summaryTargets(a.Student)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning match attendance row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *MatchAttendanceRepository) selectJoined() squirrel.SelectBuilder {
	cols := []string{"ma.id", "ma.match_id", "ma.student_id", "ma.status", "ma.notes", "ma.created_at", "ma.updated_at"}
	cols = append(cols, summaryColumns("s")...)
	return r.sb.Select(cols...).
		From("match_attendance ma").
		Join("profiles s ON s.id = ma.student_id")
}

// ListByMatch returns a match's attendance joined with student summaries
func (r *MatchAttendanceRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.MatchAttendance, error) {
	return r.query(ctx, r.selectJoined().
		Where(squirrel.Eq{"ma.match_id": matchID}).
		OrderBy("s.full_name", "ma.id"))
}

// ListAll returns match attendance across matches, optionally for one student
func (r *MatchAttendanceRepository) ListAll(ctx context.Context, studentID *uuid.UUID) ([]models.MatchAttendance, error) {
	q := r.selectJoined().OrderBy("ma.created_at", "ma.id")
	if studentID != nil {
		q = q.Where(squirrel.Eq{"ma.student_id": *studentID})
	}
	return r.query(ctx, q)
}
