package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

func TestAttendanceUpsertIsSingleStatement(t *testing.T) {
	training := uuid.New()
	s1, s2 := uuid.New(), uuid.New()
	late := "bus delayed"

	sql, args, err := attendanceUpsert(newBuilder(), training, []models.AttendanceMark{
		{StudentID: s1, Status: models.AttendancePresent},
		{StudentID: s2, Status: models.AttendanceLate, Notes: &late},
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO attendance (training_id,student_id,status,notes) VALUES ($1,$2,$3,$4),($5,$6,$7,$8)")
	assert.Contains(t, sql, "ON CONFLICT (training_id, student_id) DO UPDATE SET status = EXCLUDED.status")
	assert.Contains(t, sql, "updated_at = now()")
	assert.Contains(t, sql, "RETURNING id")
	assert.Len(t, args, 8)
	assert.Equal(t, "late", args[6])
}

func TestAttendanceUpsertKeepsLastMarkPerStudent(t *testing.T) {
	student := uuid.New()
	other := uuid.New()

	_, args, err := attendanceUpsert(newBuilder(), uuid.New(), []models.AttendanceMark{
		{StudentID: student, Status: models.AttendanceAbsent},
		{StudentID: other, Status: models.AttendancePresent},
		{StudentID: student, Status: models.AttendanceLate},
	}).ToSql()
	require.NoError(t, err)

	require.Len(t, args, 8)
	assert.Equal(t, "late", args[2])
	assert.Equal(t, "present", args[6])
}

func TestMatchAttendanceUpsertConflictKey(t *testing.T) {
	sql, args, err := matchAttendanceUpsert(newBuilder(), uuid.New(), []models.MatchAttendanceMark{
		{StudentID: uuid.New(), Status: models.MatchAttendanceExcused},
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO match_attendance")
	assert.Contains(t, sql, "ON CONFLICT (match_id, student_id) DO UPDATE SET status = EXCLUDED.status")
	assert.Len(t, args, 4)
	assert.Equal(t, "excused", args[2])
}

func TestDateRangeFilter(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)

	sql, args, err := dateRangeFilter("t.date", models.DateRange{From: from, To: to}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(t.date >= ? AND t.date <= ?)", sql)
	assert.Equal(t, []any{from, to}, args)

	sql, args, err = dateRangeFilter("t.date", models.DateRange{}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(1=1)", sql)
	assert.Empty(t, args)
}

func TestAnnouncementVisibility(t *testing.T) {
	r := &AnnouncementRepository{sb: newBuilder()}
	viewer := uuid.New()
	now := time.Now()

	sql, _, err := r.visibility(AnnouncementFilter{
		ViewerID:   viewer,
		Audiences:  models.AudiencesFor(models.RoleCoach),
		Now:        now,
		UnreadOnly: true,
	}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "a.target_audience IN (?,?,?)")
	assert.Contains(t, sql, "a.author_id = ?")
	assert.Contains(t, sql, "a.expires_at IS NULL OR a.expires_at > ?")
	assert.Contains(t, sql, "NOT EXISTS (SELECT 1 FROM announcement_reads")

	sql, args, err := r.visibility(AnnouncementFilter{IncludeExpired: true}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(1=1)", sql)
	assert.Empty(t, args)
}

func TestLastMarkPerStudentKeepsFirstSeenOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := lastMarkPerStudent([]models.AttendanceMark{
		{StudentID: a, Status: models.AttendancePresent},
		{StudentID: b, Status: models.AttendancePresent},
		{StudentID: a, Status: models.AttendanceAbsent},
	}, func(m models.AttendanceMark) uuid.UUID { return m.StudentID })

	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].StudentID)
	assert.Equal(t, models.AttendanceAbsent, got[0].Status)
	assert.Equal(t, b, got[1].StudentID)
}

func TestSeatsAdmit(t *testing.T) {
	held, other := uuid.New(), uuid.New()
	limit := 1
	st := seats{capacity: &limit, taken: map[uuid.UUID]bool{held: true}}

	assert.NoError(t, st.admit(trainingCapacity, []uuid.UUID{held, held}))
	assert.Equal(t, 1, st.newcomers([]uuid.UUID{held, other, other}))

	err := st.admit(trainingCapacity, []uuid.UUID{held, other})
	assert.True(t, errors.Is(err, apperrors.ErrCapacityExceeded))

	unlimited := seats{taken: map[uuid.UUID]bool{held: true}}
	assert.NoError(t, unlimited.admit(matchCapacity, []uuid.UUID{other, uuid.New()}))
}
