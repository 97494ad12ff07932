package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/dberrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

// PerformanceNoteRepository handles coach assessments of students
type PerformanceNoteRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPerformanceNoteRepository creates a new PerformanceNoteRepository
func NewPerformanceNoteRepository(db *pgxpool.Pool) *PerformanceNoteRepository {
	return &PerformanceNoteRepository{
		db: db,
		sb: newBuilder(),
	}
}

// Create stores a note
func (r *PerformanceNoteRepository) Create(ctx context.Context, n *models.PerformanceNote) error {
	sql, args, err := r.sb.Insert("performance_notes").
		Columns("student_id", "coach_id", "category", "rating", "note").
		Values(n.StudentID, n.CoachID, n.Category, n.Rating, n.Note).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create performance note SQL")
		return fmt.Errorf("failed to build create performance note query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("student does not exist")
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError("rating must be between 1 and 10")
		}
		logger.Error().Err(err).Str("studentID", n.StudentID.String()).Msg("Error executing create performance note query")
		return fmt.Errorf("error creating performance note: %w", err)
	}
	return nil
}

// List returns notes newest first with student and coach summaries, optionally for one student
func (r *PerformanceNoteRepository) List(ctx context.Context, studentID *uuid.UUID) ([]*models.PerformanceNote, error) {
	cols := []string{"n.id", "n.student_id", "n.coach_id", "n.category", "n.rating", "n.note", "n.created_at"}
	cols = append(cols, summaryColumns("s")...)
	cols = append(cols, summaryColumns("c")...)
	q := r.sb.Select(cols...).
		From("performance_notes n").
		Join("profiles s ON s.id = n.student_id").
		Join("profiles c ON c.id = n.coach_id").
		OrderBy("n.created_at DESC", "n.id")
	if studentID != nil {
		q = q.Where(squirrel.Eq{"n.student_id": *studentID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list performance notes SQL")
		return nil, fmt.Errorf("failed to build list performance notes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list performance notes query")
		return nil, fmt.Errorf("error listing performance notes: %w", err)
	}
	defer rows.Close()

	var out []*models.PerformanceNote
	for rows.Next() {
		n := &models.PerformanceNote{Student: &models.UserSummary{}, Coach: &models.UserSummary{}}
		dest := []any{&n.ID, &n.StudentID, &n.CoachID, &n.Category, &n.Rating, &n.Note, &n.CreatedAt}
		dest = append(dest, summaryTargets(n.Student)...)
		dest = append(dest, summaryTargets(n.Coach)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning performance note row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete removes a note. A non-nil coachID restricts the delete to that coach's notes.
func (r *PerformanceNoteRepository) Delete(ctx context.Context, id uuid.UUID, coachID *uuid.UUID) error {
	where := squirrel.Eq{"id": id}
	if coachID != nil {
		where["coach_id"] = *coachID
	}
	sql, args, err := r.sb.Delete("performance_notes").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete performance note SQL")
		return fmt.Errorf("failed to build delete performance note query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting performance note: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("performance note not found")
	}
	return nil
}
