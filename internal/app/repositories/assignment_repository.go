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

// AssignmentRepository handles coach/student relationship rows
type AssignmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{
		db: db,
		sb: newBuilder(),
	}
}

// Create inserts the pair. The unique constraint, not a prior lookup, detects duplicates.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.CoachStudentAssignment) error {
	sql, args, err := r.sb.Insert("coach_students").
		Columns("coach_id", "student_id").
		Values(a.CoachID, a.StudentID).
		Suffix("RETURNING id, assigned_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create assignment SQL")
		return fmt.Errorf("failed to build create assignment query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.AssignedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "coach_students_coach_id_student_id_key") {
			return apperrors.ErrDuplicateAssignment
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("coach or student does not exist")
		}
		logger.Error().Err(err).
			Str("coachID", a.CoachID.String()).
			Str("studentID", a.StudentID.String()).
			Msg("Error executing create assignment query")
		return fmt.Errorf("error creating assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment. Deleting a missing row is not an error.
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("coach_students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete assignment SQL")
		return fmt.Errorf("failed to build delete assignment query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("assignmentID", id.String()).Msg("Error executing delete assignment query")
		return fmt.Errorf("error deleting assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) selectJoined() squirrel.SelectBuilder {
	cols := []string{"cs.id", "cs.coach_id", "cs.student_id", "cs.assigned_at"}
	cols = append(cols, summaryColumns("c")...)
	cols = append(cols, summaryColumns("s")...)
	return r.sb.Select(cols...).
		From("coach_students cs").
		Join("profiles c ON c.id = cs.coach_id").
		Join("profiles s ON s.id = cs.student_id").
		OrderBy("cs.assigned_at", "cs.id")
}

func (r *AssignmentRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.CoachStudentAssignment, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list assignments SQL")
		return nil, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list assignments query")
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	var out []*models.CoachStudentAssignment
	for rows.Next() {
		a := &models.CoachStudentAssignment{Coach: &models.UserSummary{}, Student: &models.UserSummary{}}
		dest := []any{&a.ID, &a.CoachID, &a.StudentID, &a.AssignedAt}
		dest = append(dest, summaryTargets(a.Coach)...)
		dest = append(dest, summaryTargets(a.Student)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning assignment row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// List returns every assignment in insertion order with both parties' summaries
func (r *AssignmentRepository) List(ctx context.Context) ([]*models.CoachStudentAssignment, error) {
	return r.query(ctx, r.selectJoined())
}

// ListByCoach returns the assignments of one coach
func (r *AssignmentRepository) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.CoachStudentAssignment, error) {
	return r.query(ctx, r.selectJoined().Where(squirrel.Eq{"cs.coach_id": coachID}))
}
