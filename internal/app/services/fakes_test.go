package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

var testLogger = zerolog.Nop()

func principal(u *models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role}
}

// ---- users ----

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*models.User
	order []uuid.UUID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) add(role models.Role, name string) *models.User {
	u := &models.User{
		Email:    fmt.Sprintf("%s@academy.test", uuid.NewString()[:8]),
		FullName: name,
		Role:     role,
	}
	if err := f.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.byID[user.ID] = &stored
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) List(ctx context.Context, role *models.Role, offset uint64, limit int) ([]*models.User, int64, error) {
	all, _ := f.filter(role)
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return nil, total, nil
	}
	end := int(offset) + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeUsers) filter(role *models.Role) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range f.order {
		u, ok := f.byID[id]
		if !ok || (role != nil && u.Role != *role) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsers) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return f.filter(&role)
}

func (f *fakeUsers) update(id uuid.UUID, fn func(u *models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, user *models.User) error {
	return f.update(user.ID, func(u *models.User) {
		u.FullName = user.FullName
		u.Phone = user.Phone
		u.LanguagePreference = user.LanguagePreference
		u.NotificationPreferences = user.NotificationPreferences
	})
}

func (f *fakeUsers) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return f.update(id, func(u *models.User) { u.Role = role })
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return f.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (f *fakeUsers) UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) error {
	return f.update(id, func(u *models.User) { u.ProfilePictureURL = &url })
}

func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

// ---- tokens ----

type fakeRefreshToken struct {
	userID  uuid.UUID
	expiry  time.Time
	revoked bool
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]*fakeRefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*fakeRefreshToken{}}
}

func (f *fakeTokens) CreateToken(ctx context.Context, token string, userID uuid.UUID, expiryDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &fakeRefreshToken{userID: userID, expiry: expiryDate}
	return nil
}

func (f *fakeTokens) GetTokenByValue(ctx context.Context, token string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	switch {
	case !ok:
		return uuid.Nil, apperrors.ErrTokenNotFound
	case t.revoked:
		return uuid.Nil, apperrors.ErrTokenRevoked
	case !t.expiry.After(time.Now()):
		return uuid.Nil, apperrors.ErrTokenExpired
	}
	return t.userID, nil
}

func (f *fakeTokens) RevokeToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (f *fakeTokens) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (f *fakeTokens) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.tokens {
		if t.revoked || !t.expiry.After(time.Now()) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeResetToken struct {
	userID  uuid.UUID
	expires time.Time
	used    bool
}

type fakeResets struct {
	mu     sync.Mutex
	tokens map[string]*fakeResetToken
}

func newFakeResets() *fakeResets {
	return &fakeResets{tokens: map[string]*fakeResetToken{}}
}

func (f *fakeResets) CreateToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &fakeResetToken{userID: userID, expires: expiresAt}
	return nil
}

func (f *fakeResets) GetTokenInfo(ctx context.Context, token string) (uuid.UUID, time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return uuid.Nil, time.Time{}, false, apperrors.ErrTokenNotFound
	}
	return t.userID, t.expires, t.used, nil
}

func (f *fakeResets) MarkTokenAsUsed(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok || t.used {
		return apperrors.ErrPasswordResetTokenUsed
	}
	t.used = true
	return nil
}

func (f *fakeResets) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.tokens {
		if !t.expires.After(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

// ---- assignments ----

type fakeAssignments struct {
	mu   sync.Mutex
	rows []*models.CoachStudentAssignment
}

func (f *fakeAssignments) Create(ctx context.Context, a *models.CoachStudentAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.CoachID == a.CoachID && r.StudentID == a.StudentID {
			return apperrors.ErrDuplicateAssignment
		}
	}
	a.ID = uuid.New()
	a.AssignedAt = time.Now()
	cp := *a
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeAssignments) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAssignments) List(ctx context.Context) ([]*models.CoachStudentAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.CoachStudentAssignment(nil), f.rows...), nil
}

func (f *fakeAssignments) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.CoachStudentAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.CoachStudentAssignment
	for _, r := range f.rows {
		if r.CoachID == coachID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ---- trainings and attendance ----

func inWindow(t time.Time, w models.DateRange) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

type fakeTrainings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Training
}

func newFakeTrainings() *fakeTrainings {
	return &fakeTrainings{rows: map[uuid.UUID]*models.Training{}}
}

func (f *fakeTrainings) Create(ctx context.Context, t *models.Training) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	f.rows[t.ID] = &cp
	return nil
}

func (f *fakeTrainings) GetByID(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("training not found")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTrainings) List(ctx context.Context, window models.DateRange) ([]*models.Training, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Training
	for _, t := range f.rows {
		if inWindow(t.Date, window) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeTrainings) Update(ctx context.Context, t *models.Training, expected *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[t.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("training not found")
	}
	if expected != nil && !cur.UpdatedAt.Equal(*expected) {
		return apperrors.ErrStaleUpdate
	}
	t.UpdatedAt = cur.UpdatedAt.Add(time.Second)
	cp := *t
	f.rows[t.ID] = &cp
	return nil
}

func (f *fakeTrainings) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("training not found")
	}
	delete(f.rows, id)
	return nil
}

type ledgerKey struct {
	event   uuid.UUID
	student uuid.UUID
}

type fakeAttendance struct {
	mu        sync.Mutex
	trainings *fakeTrainings
	rows      map[ledgerKey]*models.TrainingAttendee
}

func newFakeAttendance(trainings *fakeTrainings) *fakeAttendance {
	return &fakeAttendance{trainings: trainings, rows: map[ledgerKey]*models.TrainingAttendee{}}
}

func (f *fakeAttendance) count(trainingID uuid.UUID) int {
	n := 0
	for k := range f.rows {
		if k.event == trainingID {
			n++
		}
	}
	return n
}

func (f *fakeAttendance) Join(ctx context.Context, trainingID, studentID uuid.UUID) (*models.TrainingAttendee, error) {
	t, err := f.trainings.GetByID(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ledgerKey{trainingID, studentID}
	if _, ok := f.rows[key]; ok {
		return nil, apperrors.NewAlreadyExistsError("already registered for this training")
	}
	if t.MaxParticipants != nil && f.count(trainingID) >= *t.MaxParticipants {
		return nil, apperrors.NewCapacityError("training is full")
	}
	row := &models.TrainingAttendee{
		ID: uuid.New(), TrainingID: trainingID, StudentID: studentID,
		Status: models.AttendanceRegistered, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.rows[key] = row
	cp := *row
	return &cp, nil
}

func (f *fakeAttendance) Leave(ctx context.Context, trainingID, studentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, ledgerKey{trainingID, studentID})
	return nil
}

func (f *fakeAttendance) Upsert(ctx context.Context, trainingID uuid.UUID, marks []models.AttendanceMark) ([]*models.TrainingAttendee, error) {
	t, err := f.trainings.GetByID(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.MaxParticipants != nil {
		fresh := map[uuid.UUID]bool{}
		for _, m := range marks {
			if _, ok := f.rows[ledgerKey{trainingID, m.StudentID}]; !ok {
				fresh[m.StudentID] = true
			}
		}
		if len(fresh) > 0 && f.count(trainingID)+len(fresh) > *t.MaxParticipants {
			return nil, apperrors.NewCapacityError("training is full")
		}
	}
	var out []*models.TrainingAttendee
	for _, m := range marks {
		key := ledgerKey{trainingID, m.StudentID}
		row, ok := f.rows[key]
		if !ok {
			row = &models.TrainingAttendee{ID: uuid.New(), TrainingID: trainingID, StudentID: m.StudentID, CreatedAt: time.Now()}
			f.rows[key] = row
		}
		row.Status = m.Status
		row.Notes = m.Notes
		row.UpdatedAt = time.Now()
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAttendance) ListByTraining(ctx context.Context, trainingID uuid.UUID) ([]models.TrainingAttendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TrainingAttendee
	for k, r := range f.rows {
		if k.event == trainingID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeAttendance) ListAll(ctx context.Context, studentID *uuid.UUID) ([]models.TrainingAttendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TrainingAttendee
	for k, r := range f.rows {
		if studentID == nil || k.student == *studentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ---- matches, roster and match attendance ----

type fakeMatches struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Match
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{rows: map[uuid.UUID]*models.Match{}}
}

func (f *fakeMatches) Create(ctx context.Context, m *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	f.rows[m.ID] = &cp
	return nil
}

func (f *fakeMatches) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("match not found")
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatches) List(ctx context.Context, window models.DateRange) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Match
	for _, m := range f.rows {
		if inWindow(m.Date, window) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeMatches) Update(ctx context.Context, m *models.Match, expected *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[m.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("match not found")
	}
	if expected != nil && !cur.UpdatedAt.Equal(*expected) {
		return apperrors.ErrStaleUpdate
	}
	m.UpdatedAt = cur.UpdatedAt.Add(time.Second)
	cp := *m
	f.rows[m.ID] = &cp
	return nil
}

func (f *fakeMatches) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

type fakeRoster struct {
	mu      sync.Mutex
	matches *fakeMatches
	rows    map[ledgerKey]*models.RosterEntry
}

func newFakeRoster(matches *fakeMatches) *fakeRoster {
	return &fakeRoster{matches: matches, rows: map[ledgerKey]*models.RosterEntry{}}
}

func (f *fakeRoster) Join(ctx context.Context, entry *models.RosterEntry) error {
	m, err := f.matches.GetByID(ctx, entry.MatchID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.rows {
		if k.event == entry.MatchID {
			n++
		}
	}
	key := ledgerKey{entry.MatchID, entry.StudentID}
	if _, ok := f.rows[key]; ok {
		return apperrors.NewAlreadyExistsError("already on the roster")
	}
	if m.MaxRosterSize != nil && n >= *m.MaxRosterSize {
		return apperrors.NewCapacityError("match is full")
	}
	entry.ID = uuid.New()
	entry.JoinedAt = time.Now()
	cp := *entry
	f.rows[key] = &cp
	return nil
}

func (f *fakeRoster) Leave(ctx context.Context, matchID, studentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, ledgerKey{matchID, studentID})
	return nil
}

func (f *fakeRoster) Update(ctx context.Context, matchID, studentID uuid.UUID, upd models.RosterUpdate) (*models.RosterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if upd.JerseyNumber == nil && upd.Position == nil && upd.PerformanceNotes == nil {
		return nil, apperrors.NewValidationError("nothing to update")
	}
	row, ok := f.rows[ledgerKey{matchID, studentID}]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("roster entry not found")
	}
	if upd.JerseyNumber != nil {
		row.JerseyNumber = upd.JerseyNumber
	}
	if upd.Position != nil {
		row.Position = upd.Position
	}
	if upd.PerformanceNotes != nil {
		row.PerformanceNotes = upd.PerformanceNotes
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRoster) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.RosterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RosterEntry
	for k, r := range f.rows {
		if k.event == matchID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRoster) has(matchID, studentID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[ledgerKey{matchID, studentID}]
	return ok
}

type fakeMatchAttendance struct {
	mu     sync.Mutex
	roster *fakeRoster
	rows   map[ledgerKey]*models.MatchAttendance
}

func newFakeMatchAttendance(roster *fakeRoster) *fakeMatchAttendance {
	return &fakeMatchAttendance{roster: roster, rows: map[ledgerKey]*models.MatchAttendance{}}
}

func (f *fakeMatchAttendance) BulkUpsert(ctx context.Context, matchID uuid.UUID, marks []models.MatchAttendanceMark) ([]*models.MatchAttendance, error) {
	for _, m := range marks {
		if !f.roster.has(matchID, m.StudentID) {
			return nil, apperrors.NewValidationError("student is not on the roster")
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MatchAttendance
	for _, m := range marks {
		key := ledgerKey{matchID, m.StudentID}
		row, ok := f.rows[key]
		if !ok {
			row = &models.MatchAttendance{ID: uuid.New(), MatchID: matchID, StudentID: m.StudentID, CreatedAt: time.Now()}
			f.rows[key] = row
		}
		row.Status = m.Status
		row.Notes = m.Notes
		row.UpdatedAt = time.Now()
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeMatchAttendance) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.MatchAttendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MatchAttendance
	for k, r := range f.rows {
		if k.event == matchID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeMatchAttendance) ListAll(ctx context.Context, studentID *uuid.UUID) ([]models.MatchAttendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MatchAttendance
	for k, r := range f.rows {
		if studentID == nil || k.student == *studentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ---- announcements ----

type fakeAnnouncements struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*models.Announcement
	reads map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeAnnouncements() *fakeAnnouncements {
	return &fakeAnnouncements{
		rows:  map[uuid.UUID]*models.Announcement{},
		reads: map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (f *fakeAnnouncements) Create(ctx context.Context, a *models.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncements) GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("announcement not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnnouncements) matches(a *models.Announcement, flt repositories.AnnouncementFilter) bool {
	if flt.Audiences != nil && a.AuthorID != flt.ViewerID {
		ok := false
		for _, aud := range flt.Audiences {
			if aud == a.TargetAudience {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if !flt.IncludeExpired && a.IsExpired(flt.Now) {
		return false
	}
	if flt.UnreadOnly && f.reads[flt.ViewerID][a.ID] {
		return false
	}
	return inWindow(a.PublishedAt, flt.Published)
}

func (f *fakeAnnouncements) List(ctx context.Context, flt repositories.AnnouncementFilter) ([]*models.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Announcement
	for _, a := range f.rows {
		if f.matches(a, flt) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	if flt.Limit > 0 && uint64(len(out)) > flt.Limit {
		out = out[:flt.Limit]
	}
	return out, nil
}

func (f *fakeAnnouncements) Count(ctx context.Context, flt repositories.AnnouncementFilter) (int64, error) {
	flt.Limit = 0
	list, err := f.List(ctx, flt)
	return int64(len(list)), err
}

func (f *fakeAnnouncements) Update(ctx context.Context, a *models.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[a.ID]; !ok {
		return apperrors.NewResourceNotFoundError("announcement not found")
	}
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncements) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("announcement not found")
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeAnnouncements) MarkRead(ctx context.Context, userID, announcementID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reads[userID] == nil {
		f.reads[userID] = map[uuid.UUID]bool{}
	}
	f.reads[userID][announcementID] = true
	return nil
}

func (f *fakeAnnouncements) ReadSet(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]bool{}
	for id := range f.reads[userID] {
		out[id] = true
	}
	return out, nil
}

// ---- fundraising ----

type fakeCampaigns struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.FundraisingCampaign
}

func newFakeCampaigns() *fakeCampaigns {
	return &fakeCampaigns{rows: map[uuid.UUID]*models.FundraisingCampaign{}}
}

func (f *fakeCampaigns) Create(ctx context.Context, c *models.FundraisingCampaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCampaigns) GetByID(ctx context.Context, id uuid.UUID) (*models.FundraisingCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("campaign not found")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaigns) List(ctx context.Context, status *models.CampaignStatus) ([]*models.FundraisingCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.FundraisingCampaign
	for _, c := range f.rows {
		if status == nil || c.Status == *status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCampaigns) Update(ctx context.Context, c *models.FundraisingCampaign, expected *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[c.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("campaign not found")
	}
	if expected != nil && !cur.UpdatedAt.Equal(*expected) {
		return apperrors.ErrStaleUpdate
	}
	c.UpdatedAt = cur.UpdatedAt.Add(time.Second)
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCampaigns) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError("campaign not found")
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeCampaigns) CompleteExpired(ctx context.Context, today time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.rows {
		if c.Status == models.CampaignActive && c.EndDate.Before(today) {
			c.Status = models.CampaignCompleted
			n++
		}
	}
	return n, nil
}

type fakeSponsorships struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.SponsorshipSubmission
}

func newFakeSponsorships() *fakeSponsorships {
	return &fakeSponsorships{rows: map[uuid.UUID]*models.SponsorshipSubmission{}}
}

func (f *fakeSponsorships) Create(ctx context.Context, s *models.SponsorshipSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.Status = models.SponsorshipPending
	s.SubmittedAt = time.Now()
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSponsorships) GetByID(ctx context.Context, id uuid.UUID) (*models.SponsorshipSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("sponsorship submission not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSponsorships) List(ctx context.Context, status *models.SponsorshipStatus) ([]*models.SponsorshipSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SponsorshipSubmission
	for _, s := range f.rows {
		if status == nil || s.Status == *status {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSponsorships) ReviewPending(ctx context.Context, id uuid.UUID, status models.SponsorshipStatus, reviewer uuid.UUID, at time.Time) (*models.SponsorshipSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("sponsorship submission not found")
	}
	if s.Status != models.SponsorshipPending {
		return nil, apperrors.NewStateTransitionError(fmt.Sprintf("sponsorship is already %s and cannot become %s", s.Status, status))
	}
	s.Status = status
	s.ReviewedBy = &reviewer
	s.ReviewedAt = &at
	cp := *s
	return &cp, nil
}

// ---- notifications and performance notes ----

type fakeNotifications struct {
	mu   sync.Mutex
	rows []*models.Notification
}

func (f *fakeNotifications) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	cp := *n
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeNotifications) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit uint64) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for i := len(f.rows) - 1; i >= 0; i-- {
		n := f.rows[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("notification not found")
}

func (f *fakeNotifications) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.Read {
			row.Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) forUser(userID uuid.UUID) []*models.Notification {
	list, _ := f.ListByUser(context.Background(), userID, false, 0)
	return list
}

type fakeNotes struct {
	mu   sync.Mutex
	rows []*models.PerformanceNote
}

func (f *fakeNotes) Create(ctx context.Context, n *models.PerformanceNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	cp := *n
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeNotes) List(ctx context.Context, studentID *uuid.UUID) ([]*models.PerformanceNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PerformanceNote
	for _, n := range f.rows {
		if studentID == nil || n.StudentID == *studentID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeNotes) Delete(ctx context.Context, id uuid.UUID, coachID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.ID == id && (coachID == nil || n.CoachID == *coachID) {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("performance note not found")
}

// ---- realtime ----

type publishedEvent struct {
	userID    uuid.UUID
	roles     []models.Role
	eventType string
	payload   interface{}
}

type fakeRealtime struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeRealtime) SendToUser(userID uuid.UUID, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{userID: userID, eventType: eventType, payload: payload})
}

func (f *fakeRealtime) SendToRoles(roles []models.Role, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{roles: roles, eventType: eventType, payload: payload})
}

var (
	_ UserStore            = (*fakeUsers)(nil)
	_ RefreshTokenStore    = (*fakeTokens)(nil)
	_ PasswordResetStore   = (*fakeResets)(nil)
	_ AssignmentStore      = (*fakeAssignments)(nil)
	_ TrainingStore        = (*fakeTrainings)(nil)
	_ AttendanceStore      = (*fakeAttendance)(nil)
	_ MatchStore           = (*fakeMatches)(nil)
	_ RosterStore          = (*fakeRoster)(nil)
	_ MatchAttendanceStore = (*fakeMatchAttendance)(nil)
	_ AnnouncementStore    = (*fakeAnnouncements)(nil)
	_ CampaignStore        = (*fakeCampaigns)(nil)
	_ SponsorshipStore     = (*fakeSponsorships)(nil)
	_ NotificationStore    = (*fakeNotifications)(nil)
	_ PerformanceNoteStore = (*fakeNotes)(nil)
	_ RealtimePublisher    = (*fakeRealtime)(nil)
)
