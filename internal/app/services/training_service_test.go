package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

var academyZone = time.FixedZone("TRT", 3*60*60)

type trainingFixture struct {
	svc        *trainingServiceImpl
	users      *fakeUsers
	trainings  *fakeTrainings
	attendance *fakeAttendance
	clock      time.Time
}

func newTrainingFixture(now time.Time) *trainingFixture {
	f := &trainingFixture{users: newFakeUsers(), trainings: newFakeTrainings(), clock: now}
	f.attendance = newFakeAttendance(f.trainings)
	f.svc = NewTrainingService(f.trainings, f.attendance, f.users, academyZone, testLogger).(*trainingServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func trainingRequest(date string) *dto.CreateTrainingRequest {
	return &dto.CreateTrainingRequest{
		Title:           "Dribbling",
		Date:            date,
		Time:            "17:30",
		DurationMinutes: 60,
		Location:        "Pitch A",
	}
}

func TestTrainingAttendanceOpensOnEventDay(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 10, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	student := f.users.add(models.RoleStudent, "Student")

	training, err := f.svc.Create(ctx, principal(coach), trainingRequest("2025-05-11"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 11, 17, 30, 0, 0, academyZone).Unix(), training.Date.Unix())
	assert.Equal(t, coach.ID, training.CoachID)

	joined, err := f.svc.Join(ctx, principal(student), training.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceRegistered, joined.Status)

	mark := &dto.MarkAttendanceRequest{StudentID: student.ID, Status: models.AttendancePresent}
	_, err = f.svc.MarkAttendance(ctx, principal(coach), training.ID, mark)
	assert.True(t, errors.Is(err, apperrors.ErrAttendanceNotOpen))

	// same calendar day, before the training starts
	f.clock = time.Date(2025, 5, 11, 8, 0, 0, 0, academyZone)
	row, err := f.svc.MarkAttendance(ctx, principal(coach), training.ID, mark)
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, row.Status)

	got, err := f.svc.Get(ctx, principal(student), training.ID)
	require.NoError(t, err)
	require.Len(t, got.Attendance, 1)
	assert.Equal(t, models.AttendancePresent, got.Attendance[0].Status)
}

func TestBulkMarkAttendanceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 11, 20, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	s1 := f.users.add(models.RoleStudent, "One")
	s2 := f.users.add(models.RoleStudent, "Two")

	training, err := f.svc.Create(ctx, principal(coach), trainingRequest("2025-05-11"))
	require.NoError(t, err)

	req := &dto.BulkMarkAttendanceRequest{Records: []dto.MarkAttendanceRequest{
		{StudentID: s1.ID, Status: models.AttendancePresent},
		{StudentID: s2.ID, Status: models.AttendanceLate},
	}}
	for i := 0; i < 2; i++ {
		rows, err := f.svc.BulkMarkAttendance(ctx, principal(coach), training.ID, req)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	}

	got, err := f.svc.Get(ctx, principal(coach), training.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attendance, 2)
}

func TestMarkAttendanceRejectsRegisteredStatus(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 11, 20, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	student := f.users.add(models.RoleStudent, "Student")
	training, err := f.svc.Create(ctx, principal(coach), trainingRequest("2025-05-11"))
	require.NoError(t, err)

	_, err = f.svc.MarkAttendance(ctx, principal(coach), training.ID, &dto.MarkAttendanceRequest{
		StudentID: student.ID, Status: models.AttendanceRegistered,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestJoinLeaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	student := f.users.add(models.RoleStudent, "Student")
	training, err := f.svc.Create(ctx, principal(coach), trainingRequest("2025-05-11"))
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, principal(student), training.ID)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, principal(student), training.ID)
	assert.True(t, errors.Is(err, apperrors.ErrResourceAlreadyExists))

	require.NoError(t, f.svc.Leave(ctx, principal(student), training.ID))
	require.NoError(t, f.svc.Leave(ctx, principal(student), training.ID))

	got, err := f.svc.Get(ctx, principal(student), training.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Attendance)

	_, err = f.svc.Join(ctx, principal(student), training.ID)
	assert.NoError(t, err)
}

func TestJoinRespectsMaxParticipants(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	req := trainingRequest("2025-05-11")
	limit := 1
	req.MaxParticipants = &limit
	training, err := f.svc.Create(ctx, principal(coach), req)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, principal(f.users.add(models.RoleStudent, "A")), training.ID)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, principal(f.users.add(models.RoleStudent, "B")), training.ID)
	assert.True(t, errors.Is(err, apperrors.ErrCapacityExceeded))
}

func TestFullTrainingReportsExistingRegistration(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	req := trainingRequest("2025-05-11")
	limit := 1
	req.MaxParticipants = &limit
	training, err := f.svc.Create(ctx, principal(coach), req)
	require.NoError(t, err)

	student := f.users.add(models.RoleStudent, "A")
	_, err = f.svc.Join(ctx, principal(student), training.ID)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, principal(student), training.ID)
	assert.True(t, errors.Is(err, apperrors.ErrResourceAlreadyExists))
	assert.False(t, errors.Is(err, apperrors.ErrCapacityExceeded))
}

func TestMarkAttendanceOnlyForStudents(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 11, 20, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	otherCoach := f.users.add(models.RoleCoach, "Other")
	training, err := f.svc.Create(ctx, principal(coach), trainingRequest("2025-05-11"))
	require.NoError(t, err)

	_, err = f.svc.MarkAttendance(ctx, principal(coach), training.ID, &dto.MarkAttendanceRequest{
		StudentID: otherCoach.ID, Status: models.AttendancePresent,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = f.svc.MarkAttendance(ctx, principal(coach), training.ID, &dto.MarkAttendanceRequest{
		StudentID: uuid.New(), Status: models.AttendancePresent,
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	got, err := f.svc.Get(ctx, principal(coach), training.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Attendance)
}

func TestMarkAttendanceRespectsMaxParticipants(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 11, 20, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	req := trainingRequest("2025-05-11")
	limit := 1
	req.MaxParticipants = &limit
	training, err := f.svc.Create(ctx, principal(coach), req)
	require.NoError(t, err)

	registered := f.users.add(models.RoleStudent, "Registered")
	walkIn := f.users.add(models.RoleStudent, "Walk-in")
	_, err = f.svc.Join(ctx, principal(registered), training.ID)
	require.NoError(t, err)

	// registered students can always be marked
	row, err := f.svc.MarkAttendance(ctx, principal(coach), training.ID, &dto.MarkAttendanceRequest{
		StudentID: registered.ID, Status: models.AttendancePresent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, row.Status)

	_, err = f.svc.MarkAttendance(ctx, principal(coach), training.ID, &dto.MarkAttendanceRequest{
		StudentID: walkIn.ID, Status: models.AttendancePresent,
	})
	assert.True(t, errors.Is(err, apperrors.ErrCapacityExceeded))

	got, err := f.svc.Get(ctx, principal(coach), training.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attendance, 1)
}

func TestOnlyStudentsJoin(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	training, err := f.svc.Create(ctx, principal(coach), trainingRequest("2025-05-11"))
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, principal(coach), training.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestTrainingOwnership(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	owner := f.users.add(models.RoleCoach, "Owner")
	other := f.users.add(models.RoleCoach, "Other")
	admin := f.users.add(models.RoleAdmin, "Admin")

	training, err := f.svc.Create(ctx, principal(owner), trainingRequest("2025-05-11"))
	require.NoError(t, err)

	title := "Renamed"
	_, err = f.svc.Update(ctx, principal(other), training.ID, &dto.UpdateTrainingRequest{Title: &title})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	assert.True(t, errors.Is(f.svc.Delete(ctx, principal(other), training.ID), apperrors.ErrPermissionDenied))

	updated, err := f.svc.Update(ctx, principal(admin), training.ID, &dto.UpdateTrainingRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, owner.ID, updated.CoachID)

	require.NoError(t, f.svc.Delete(ctx, principal(owner), training.ID))
	_, err = f.svc.Get(ctx, principal(owner), training.ID)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestCoachCannotScheduleForAnotherCoach(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	other := f.users.add(models.RoleCoach, "Other")
	admin := f.users.add(models.RoleAdmin, "Admin")
	student := f.users.add(models.RoleStudent, "Student")

	req := trainingRequest("2025-05-11")
	req.CoachID = &other.ID
	_, err := f.svc.Create(ctx, principal(coach), req)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	created, err := f.svc.Create(ctx, principal(admin), req)
	require.NoError(t, err)
	assert.Equal(t, other.ID, created.CoachID)

	req.CoachID = &student.ID
	_, err = f.svc.Create(ctx, principal(admin), req)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestUpdateRequiresDateAndTimeTogether(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	training, err := f.svc.Create(ctx, principal(coach), trainingRequest("2025-05-11"))
	require.NoError(t, err)

	date := "2025-05-12"
	_, err = f.svc.Update(ctx, principal(coach), training.ID, &dto.UpdateTrainingRequest{Date: &date})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	clock := "09:15"
	updated, err := f.svc.Update(ctx, principal(coach), training.ID, &dto.UpdateTrainingRequest{Date: &date, Time: &clock})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 12, 9, 15, 0, 0, academyZone).Unix(), updated.Date.Unix())
}

func TestUpdateWithStaleExpectedTimestamp(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	training, err := f.svc.Create(ctx, principal(coach), trainingRequest("2025-05-11"))
	require.NoError(t, err)
	seen := training.UpdatedAt

	title := "First"
	_, err = f.svc.Update(ctx, principal(coach), training.ID, &dto.UpdateTrainingRequest{Title: &title, ExpectedUpdatedAt: &seen})
	require.NoError(t, err)

	title = "Second"
	_, err = f.svc.Update(ctx, principal(coach), training.ID, &dto.UpdateTrainingRequest{Title: &title, ExpectedUpdatedAt: &seen})
	assert.True(t, errors.Is(err, apperrors.ErrStaleUpdate))
}

func TestUpdateClearsMaxParticipants(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	req := trainingRequest("2025-05-11")
	limit := 8
	req.MaxParticipants = &limit
	training, err := f.svc.Create(ctx, principal(coach), req)
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, principal(coach), training.ID, &dto.UpdateTrainingRequest{ClearMaxParticipants: true})
	require.NoError(t, err)
	assert.Nil(t, updated.MaxParticipants)
}

func TestListTrainingsWindow(t *testing.T) {
	ctx := context.Background()
	f := newTrainingFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	for _, d := range []string{"2025-05-20", "2025-05-02", "2025-06-01"} {
		_, err := f.svc.Create(ctx, principal(coach), trainingRequest(d))
		require.NoError(t, err)
	}

	all, err := f.svc.List(ctx, principal(coach), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.Before(all[1].Date))

	may, err := f.svc.List(ctx, principal(coach), &dto.DateRangeQuery{From: "2025-05-01", To: "2025-05-31"})
	require.NoError(t, err)
	assert.Len(t, may, 2)

	_, err = f.svc.List(ctx, principal(coach), &dto.DateRangeQuery{From: "2025-06-01", To: "2025-05-01"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}
