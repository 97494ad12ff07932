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

type matchFixture struct {
	svc     *matchServiceImpl
	users   *fakeUsers
	matches *fakeMatches
	roster  *fakeRoster
	played  *fakeMatchAttendance
	clock   time.Time
}

func newMatchFixture(now time.Time) *matchFixture {
	f := &matchFixture{users: newFakeUsers(), matches: newFakeMatches(), clock: now}
	f.roster = newFakeRoster(f.matches)
	f.played = newFakeMatchAttendance(f.roster)
	f.svc = NewMatchService(f.matches, f.roster, f.played, f.users, academyZone, testLogger).(*matchServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func matchRequest(date string, rosterSize *int) *dto.CreateMatchRequest {
	return &dto.CreateMatchRequest{
		Title:         "Derby",
		Opponent:      "Rovers U15",
		Date:          date,
		Time:          "11:00",
		Location:      "Home ground",
		MatchType:     models.MatchLeague,
		MaxRosterSize: rosterSize,
	}
}

func TestRosterCapacity(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	size := 2
	match, err := f.svc.Create(ctx, principal(coach), matchRequest("2025-05-10", &size))
	require.NoError(t, err)

	for _, name := range []string{"A", "B"} {
		_, err := f.svc.Join(ctx, principal(f.users.add(models.RoleStudent, name)), match.ID, nil)
		require.NoError(t, err)
	}

	third := f.users.add(models.RoleStudent, "C")
	_, err = f.svc.Join(ctx, principal(third), match.ID, nil)
	assert.True(t, errors.Is(err, apperrors.ErrCapacityExceeded))

	got, err := f.svc.Get(ctx, principal(coach), match.ID)
	require.NoError(t, err)
	assert.Len(t, got.Roster, 2)
}

func TestJoinMatchTwice(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	student := f.users.add(models.RoleStudent, "Student")
	match, err := f.svc.Create(ctx, principal(coach), matchRequest("2025-05-10", nil))
	require.NoError(t, err)

	jersey := 9
	entry, err := f.svc.Join(ctx, principal(student), match.ID, &dto.JoinMatchRequest{JerseyNumber: &jersey})
	require.NoError(t, err)
	assert.Equal(t, 9, *entry.JerseyNumber)

	_, err = f.svc.Join(ctx, principal(student), match.ID, nil)
	assert.True(t, errors.Is(err, apperrors.ErrResourceAlreadyExists))

	require.NoError(t, f.svc.Leave(ctx, principal(student), match.ID))
	_, err = f.svc.Join(ctx, principal(student), match.ID, nil)
	assert.NoError(t, err)
}

func TestFullMatchReportsExistingRosterEntry(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	size := 1
	match, err := f.svc.Create(ctx, principal(coach), matchRequest("2025-05-10", &size))
	require.NoError(t, err)

	student := f.users.add(models.RoleStudent, "Student")
	_, err = f.svc.Join(ctx, principal(student), match.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, principal(student), match.ID, nil)
	assert.True(t, errors.Is(err, apperrors.ErrResourceAlreadyExists))
	assert.False(t, errors.Is(err, apperrors.ErrCapacityExceeded))
}

func TestUpdateMatchClearsLimitAndResult(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	size := 11
	match, err := f.svc.Create(ctx, principal(coach), matchRequest("2025-05-10", &size))
	require.NoError(t, err)
	_, err = f.svc.SetResult(ctx, principal(coach), match.ID, &dto.MatchResultRequest{Result: "1-1"})
	require.NoError(t, err)

	// a value sent next to its clear flag is ignored
	other := 15
	updated, err := f.svc.Update(ctx, principal(coach), match.ID, &dto.UpdateMatchRequest{
		MaxRosterSize:      &other,
		ClearMaxRosterSize: true,
		ClearResult:        true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.MaxRosterSize)
	assert.Nil(t, updated.Result)

	got, err := f.svc.Get(ctx, principal(coach), match.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MaxRosterSize)
	assert.Nil(t, got.Result)
}

func TestBulkMatchAttendance(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(time.Date(2025, 5, 9, 12, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	rostered := f.users.add(models.RoleStudent, "Rostered")
	match, err := f.svc.Create(ctx, principal(coach), matchRequest("2025-05-10", nil))
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, principal(rostered), match.ID, nil)
	require.NoError(t, err)

	req := &dto.BulkMatchAttendanceRequest{Records: []dto.MatchAttendanceRecord{
		{StudentID: rostered.ID, Status: models.MatchAttendanceExcused},
	}}

	_, err = f.svc.BulkMarkAttendance(ctx, principal(coach), match.ID, req)
	assert.True(t, errors.Is(err, apperrors.ErrAttendanceNotOpen))

	f.clock = time.Date(2025, 5, 10, 0, 5, 0, 0, academyZone)
	rows, err := f.svc.BulkMarkAttendance(ctx, principal(coach), match.ID, req)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.MatchAttendanceExcused, rows[0].Status)

	req.Records = append(req.Records, dto.MatchAttendanceRecord{StudentID: uuid.New(), Status: models.MatchAttendancePresent})
	_, err = f.svc.BulkMarkAttendance(ctx, principal(coach), match.ID, req)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	list, err := f.svc.GetAttendance(ctx, principal(coach), match.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.MatchAttendanceExcused, list[0].Status)
}

func TestSetResultAndRosterNotes(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	student := f.users.add(models.RoleStudent, "Student")
	match, err := f.svc.Create(ctx, principal(coach), matchRequest("2025-05-10", nil))
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, principal(student), match.ID, nil)
	require.NoError(t, err)

	updated, err := f.svc.SetResult(ctx, principal(coach), match.ID, &dto.MatchResultRequest{Result: " 2-1 "})
	require.NoError(t, err)
	assert.Equal(t, "2-1", *updated.Result)

	notes := "Strong first half"
	entry, err := f.svc.UpdateRosterEntry(ctx, principal(coach), match.ID, student.ID, &dto.UpdateRosterEntryRequest{PerformanceNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, *entry.PerformanceNotes)

	_, err = f.svc.UpdateRosterEntry(ctx, principal(student), match.ID, student.ID, &dto.UpdateRosterEntryRequest{PerformanceNotes: &notes})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestCreateMatchValidation(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone))
	coach := f.users.add(models.RoleCoach, "Coach")
	staff := f.users.add(models.RoleStaff, "Staff")

	bad := matchRequest("2025-05-10", nil)
	bad.MatchType = "exhibition"
	_, err := f.svc.Create(ctx, principal(coach), bad)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	bad = matchRequest("2025-13-40", nil)
	_, err = f.svc.Create(ctx, principal(coach), bad)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = f.svc.Create(ctx, principal(staff), matchRequest("2025-05-10", nil))
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestCalendarMergesEventsByDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, academyZone)
	tf := newTrainingFixture(now)
	mf := newMatchFixture(now)
	coach := tf.users.add(models.RoleCoach, "Coach")

	_, err := tf.svc.Create(ctx, principal(coach), trainingRequest("2025-05-12"))
	require.NoError(t, err)
	_, err = mf.svc.Create(ctx, principal(coach), matchRequest("2025-05-10", nil))
	require.NoError(t, err)
	_, err = tf.svc.Create(ctx, principal(coach), trainingRequest("2025-05-03"))
	require.NoError(t, err)

	board := newFakeAnnouncements()
	author := tf.users.add(models.RoleStaff, "Office")
	post := func(title string, audience models.Audience, published time.Time, expires *time.Time) {
		require.NoError(t, board.Create(ctx, &models.Announcement{
			AuthorID: author.ID, Title: title, Content: "-",
			Priority: models.PriorityHigh, Category: models.CategoryEvent,
			TargetAudience: audience, PublishedAt: published, ExpiresAt: expires,
		}))
	}
	expired := time.Date(2025, 5, 4, 0, 0, 0, 0, academyZone)
	post("Kit day", models.AudienceEveryone, time.Date(2025, 5, 11, 9, 0, 0, 0, academyZone), nil)
	post("Old notice", models.AudienceCoaches, time.Date(2025, 5, 3, 18, 0, 0, 0, academyZone), &expired)
	post("Parents evening", models.AudienceStudents, time.Date(2025, 5, 5, 9, 0, 0, 0, academyZone), nil)
	post("Outside window", models.AudienceEveryone, time.Date(2025, 6, 20, 9, 0, 0, 0, academyZone), nil)

	cal := NewCalendarService(tf.trainings, mf.matches, board, academyZone)
	events, err := cal.Events(ctx, principal(coach), &dto.DateRangeQuery{From: "2025-05-01", To: "2025-05-31"})
	require.NoError(t, err)
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	// students-only post is hidden from a coach; the expired one keeps its day
	assert.Equal(t, []string{
		dto.CalendarKindTraining, dto.CalendarKindAnnouncement, dto.CalendarKindMatch,
		dto.CalendarKindAnnouncement, dto.CalendarKindTraining,
	}, kinds)
	assert.Equal(t, "Old notice", events[1].Title)
	assert.Equal(t, "Rovers U15", *events[2].Opponent)
	assert.Equal(t, "Kit day", events[3].Title)
	assert.Equal(t, models.PriorityHigh, *events[3].Priority)
	assert.Nil(t, events[3].CoachID)
	assert.Equal(t, 60, *events[0].DurationMinutes)
	assert.Equal(t, coach.ID, *events[0].CoachID)
}
