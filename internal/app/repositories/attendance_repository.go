package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const attendanceReturning = "RETURNING id, training_id, student_id, status, notes, created_at, updated_at"

// AttendanceRepository handles the training attendance ledger
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: db,
		sb: newBuilder(),
	}
}

// capacitySpec describes a parent event whose children are limited by a nullable column
type capacitySpec struct {
	parent   string // parent table
	capacity string // nullable capacity column on parent
	child    string // child table
	fk       string // child column referencing parent
	noun     string
}

var (
	trainingCapacity = capacitySpec{parent: "trainings", capacity: "max_participants", child: "attendance", fk: "training_id", noun: "training"}
	matchCapacity    = capacitySpec{parent: "matches", capacity: "max_roster_size", child: "match_roster", fk: "match_id", noun: "match"}
)

// seats is the state of a capacity-limited event inside a locking transaction
type seats struct {
	capacity *int
	taken    map[uuid.UUID]bool
}

// newcomers counts the distinct ids that do not hold a row yet
func (s seats) newcomers(ids []uuid.UUID) int {
	seen := make(map[uuid.UUID]bool, len(ids))
	n := 0
	for _, id := range ids {
		if s.taken[id] || seen[id] {
			continue
		}
		seen[id] = true
		n++
	}
	return n
}

// admit fails when giving rows to ids would overflow the capacity
func (s seats) admit(spec capacitySpec, ids []uuid.UUID) error {
	if s.capacity == nil {
		return nil
	}
	n := s.newcomers(ids)
	if n == 0 {
		return nil
	}
	if len(s.taken)+n > *s.capacity {
		return apperrors.NewCapacityError(fmt.Sprintf("%s is full (%d/%d)", spec.noun, len(s.taken), *s.capacity))
	}
	return nil
}

// lockSeats locks the parent row for the rest of tx and loads its capacity
// together with the students already holding a row
func lockSeats(ctx context.Context, tx pgx.Tx, sb squirrel.StatementBuilderType, spec capacitySpec, parentID uuid.UUID) (seats, error) {
	lockSQL, lockArgs, err := sb.Select(spec.capacity).From(spec.parent).
		Where(squirrel.Eq{"id": parentID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return seats{}, fmt.Errorf("failed to build %s lock query: %w", spec.noun, err)
	}

	var st seats
	if err := tx.QueryRow(ctx, lockSQL, lockArgs...).Scan(&st.capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return seats{}, apperrors.NewResourceNotFoundError(spec.noun + " not found")
		}
		return seats{}, fmt.Errorf("error locking %s: %w", spec.noun, err)
	}

	takenSQL, takenArgs, err := sb.Select("student_id").From(spec.child).Where(squirrel.Eq{spec.fk: parentID}).ToSql()
	if err != nil {
		return seats{}, fmt.Errorf("failed to build %s participants query: %w", spec.noun, err)
	}
	rows, err := tx.Query(ctx, takenSQL, takenArgs...)
	if err != nil {
		return seats{}, fmt.Errorf("error loading %s participants: %w", spec.noun, err)
	}
	defer rows.Close()

	st.taken = map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return seats{}, fmt.Errorf("error scanning %s participant: %w", spec.noun, err)
		}
		st.taken[id] = true
	}
	if err := rows.Err(); err != nil {
		return seats{}, fmt.Errorf("error loading %s participants: %w", spec.noun, err)
	}
	return st, nil
}

// requireStudents fails unless every id belongs to a student profile
func requireStudents(ctx context.Context, tx pgx.Tx, sb squirrel.StatementBuilderType, ids []uuid.UUID) error {
	sql, args, err := sb.Select("id").From("profiles").
		Where(squirrel.Eq{"id": ids, "role": string(models.RoleStudent)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build student check query: %w", err)
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error checking students: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("error scanning student id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error checking students: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("not student accounts: " + strings.Join(missing, ", "))
	}
	return nil
}

func scanAttendee(row rowScanner) (*models.TrainingAttendee, error) {
	a := &models.TrainingAttendee{}
	if err := row.Scan(&a.ID, &a.TrainingID, &a.StudentID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// Join registers a student for a training. Capacity is checked under a row lock
// on the training so concurrent joins cannot overbook it. An existing
// registration wins over a full training.
func (r *AttendanceRepository) Join(ctx context.Context, trainingID, studentID uuid.UUID) (*models.TrainingAttendee, error) {
	var attendee *models.TrainingAttendee
	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		st, err := lockSeats(ctx, tx, r.sb, trainingCapacity, trainingID)
		if err != nil {
			return err
		}
		if st.taken[studentID] {
			return apperrors.NewAlreadyExistsError("already registered for this training")
		}
		if err := st.admit(trainingCapacity, []uuid.UUID{studentID}); err != nil {
			return err
		}

		sql, args, err := r.sb.Insert("attendance").
			Columns("training_id", "student_id", "status").
			Values(trainingID, studentID, string(models.AttendanceRegistered)).
			Suffix(attendanceReturning).
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building join training SQL")
			return fmt.Errorf("failed to build join training query: %w", err)
		}

		attendee, err = scanAttendee(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "attendance_training_id_student_id_key") {
				return apperrors.NewAlreadyExistsError("already registered for this training")
			}
			return fmt.Errorf("error joining training: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attendee, nil
}

// Leave removes a student's row. Leaving twice is not an error.
func (r *AttendanceRepository) Leave(ctx context.Context, trainingID, studentID uuid.UUID) error {
	sql, args, err := r.sb.Delete("attendance").
		Where(squirrel.Eq{"training_id": trainingID, "student_id": studentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building leave training SQL")
		return fmt.Errorf("failed to build leave training query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("trainingID", trainingID.String()).Msg("Error executing leave training query")
		return fmt.Errorf("error leaving training: %w", err)
	}
	return nil
}

// lastMarkPerStudent keeps the last mark given for each student, in first-seen order.
// A single upsert may not touch the same conflict key twice.
func lastMarkPerStudent[T any](marks []T, key func(T) uuid.UUID) []T {
	index := make(map[uuid.UUID]int, len(marks))
	out := make([]T, 0, len(marks))
	for _, m := range marks {
		if i, ok := index[key(m)]; ok {
			out[i] = m
			continue
		}
		index[key(m)] = len(out)
		out = append(out, m)
	}
	return out
}

// attendanceUpsert builds one INSERT ... ON CONFLICT statement for the whole batch
func attendanceUpsert(sb squirrel.StatementBuilderType, trainingID uuid.UUID, marks []models.AttendanceMark) squirrel.InsertBuilder {
	q := sb.Insert("attendance").Columns("training_id", "student_id", "status", "notes")
	for _, m := range lastMarkPerStudent(marks, func(m models.AttendanceMark) uuid.UUID { return m.StudentID }) {
		q = q.Values(trainingID, m.StudentID, string(m.Status), m.Notes)
	}
	return q.Suffix("ON CONFLICT (training_id, student_id) DO UPDATE SET " +
		"status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = now() " + attendanceReturning)
}

func markedStudents(marks []models.AttendanceMark) []uuid.UUID {
	ids := make([]uuid.UUID, len(marks))
	for i, m := range marks {
		ids[i] = m.StudentID
	}
	return ids
}

// Upsert records attendance for one or more students in a single statement.
// Every target must be a student, and students without a registration take a
// seat, so the batch is rejected when it would overflow max_participants.
func (r *AttendanceRepository) Upsert(ctx context.Context, trainingID uuid.UUID, marks []models.AttendanceMark) ([]*models.TrainingAttendee, error) {
	if len(marks) == 0 {
		return nil, nil
	}

	sql, args, err := attendanceUpsert(r.sb, trainingID, marks).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert attendance SQL")
		return nil, fmt.Errorf("failed to build upsert attendance query: %w", err)
	}

	var out []*models.TrainingAttendee
	err = db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		ids := markedStudents(marks)
		st, err := lockSeats(ctx, tx, r.sb, trainingCapacity, trainingID)
		if err != nil {
			return err
		}
		if err := requireStudents(ctx, tx, r.sb, ids); err != nil {
			return err
		}
		if err := st.admit(trainingCapacity, ids); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error recording attendance: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAttendee(rows)
			if err != nil {
				return fmt.Errorf("error scanning attendance row: %w", err)
			}
			out = append(out, a)
		}
		if err := rows.Err(); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.NewValidationError("attendance references an unknown training or student")
			}
			return fmt.Errorf("error recording attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("trainingID", trainingID.String()).Int("records", len(marks)).Msg("Attendance batch rejected")
		return nil, err
	}
	return out, nil
}

func (r *AttendanceRepository) selectJoined() squirrel.SelectBuilder {
	cols := []string{"a.id", "a.training_id", "a.student_id", "a.status", "a.notes", "a.created_at", "a.updated_at"}
	cols = append(cols, summaryColumns("s")...)
	return r.sb.Select(cols...).
		From("attendance a").
		Join("profiles s ON s.id = a.student_id")
}

func (r *AttendanceRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.TrainingAttendee, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list attendance SQL")
		return nil, fmt.Errorf("failed to build list attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list attendance query")
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}
	defer rows.Close()

	var out []models.TrainingAttendee
	for rows.Next() {
		a := models.TrainingAttendee{Student: &models.UserSummary{}}
		dest := []any{&a.ID, &a.TrainingID, &a.StudentID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt}
		dest = append(dest, summaryTargets(a.Student)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListByTraining returns a training's attendance rows ordered by student name
func (r *AttendanceRepository) ListByTraining(ctx context.Context, trainingID uuid.UUID) ([]models.TrainingAttendee, error) {
	return r.query(ctx, r.selectJoined().
		Where(squirrel.Eq{"a.training_id": trainingID}).
		OrderBy("s.full_name", "a.id"))
}

// ListAll returns attendance rows across trainings, optionally for one student
func (r *AttendanceRepository) ListAll(ctx context.Context, studentID *uuid.UUID) ([]models.TrainingAttendee, error) {
	q := r.selectJoined().OrderBy("a.created_at", "a.id")
	if studentID != nil {
		q = q.Where(squirrel.Eq{"a.student_id": *studentID})
	}
	return r.query(ctx, q)
}
