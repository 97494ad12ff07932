package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// MatchService defines the interface for matches, rosters and match attendance
type MatchService interface {
	Create(ctx context.Context, p auth.Principal, req *dto.CreateMatchRequest) (*models.Match, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.UpdateMatchRequest) (*models.Match, error)
	SetResult(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.MatchResultRequest) (*models.Match, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
	List(ctx context.Context, p auth.Principal, q *dto.DateRangeQuery) ([]*models.Match, error)
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Match, error)

	Join(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.JoinMatchRequest) (*models.RosterEntry, error)
	Leave(ctx context.Context, p auth.Principal, id uuid.UUID) error
	UpdateRosterEntry(ctx context.Context, p auth.Principal, id, studentID uuid.UUID, req *dto.UpdateRosterEntryRequest) (*models.RosterEntry, error)

	BulkMarkAttendance(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.BulkMatchAttendanceRequest) ([]*models.MatchAttendance, error)
	GetAttendance(ctx context.Context, p auth.Principal, id uuid.UUID) ([]models.MatchAttendance, error)
}

type matchServiceImpl struct {
	matches    MatchStore
	roster     RosterStore
	attendance MatchAttendanceStore
	users      UserStore
	loc        *time.Location
	now        func() time.Time
	logger     zerolog.Logger
}

// NewMatchService creates a new MatchService. loc is the academy timezone.
func NewMatchService(matches MatchStore, roster RosterStore, attendance MatchAttendanceStore, users UserStore, loc *time.Location, logger zerolog.Logger) MatchService {
	if loc == nil {
		loc = time.UTC
	}
	return &matchServiceImpl{
		matches:    matches,
		roster:     roster,
		attendance: attendance,
		users:      users,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *matchServiceImpl) Create(ctx context.Context, p auth.Principal, req *dto.CreateMatchRequest) (*models.Match, error) {
	if err := auth.Authorize(p, auth.OpMatchCreate); err != nil {
		return nil, err
	}

	title, err := requiredText(req.Title, "title")
	if err != nil {
		return nil, err
	}
	opponent, err := requiredText(req.Opponent, "opponent")
	if err != nil {
		return nil, err
	}
	location, err := requiredText(req.Location, "location")
	if err != nil {
		return nil, err
	}
	if !req.MatchType.Valid() {
		return nil, apperrors.NewValidationError("matchType must be friendly, league, tournament or cup")
	}
	date, err := eventTime(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, err
	}
	coachID, err := eventOwner(ctx, s.users, p, req.CoachID)
	if err != nil {
		return nil, err
	}

	m := &models.Match{
		CoachID:       coachID,
		Title:         title,
		Description:   helpers.TrimmedOrNil(req.Description),
		Opponent:      opponent,
		Date:          date,
		Location:      location,
		MatchType:     req.MatchType,
		MaxRosterSize: req.MaxRosterSize,
	}
	if err := s.matches.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info().Str("matchID", m.ID.String()).Str("coachID", coachID.String()).Msg("Match created")
	return s.matches.GetByID(ctx, m.ID)
}

func (s *matchServiceImpl) Update(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.UpdateMatchRequest) (*models.Match, error) {
	m, err := s.ownedMatch(ctx, p, auth.OpMatchUpdate, id)
	if err != nil {
		return nil, err
	}

	if err := updateText(&m.Title, req.Title, "title"); err != nil {
		return nil, err
	}
	if err := updateText(&m.Opponent, req.Opponent, "opponent"); err != nil {
		return nil, err
	}
	if err := updateText(&m.Location, req.Location, "location"); err != nil {
		return nil, err
	}
	if req.Description != nil {
		m.Description = helpers.TrimmedOrNil(req.Description)
	}
	if req.MatchType != nil {
		if !req.MatchType.Valid() {
			return nil, apperrors.NewValidationError("matchType must be friendly, league, tournament or cup")
		}
		m.MatchType = *req.MatchType
	}
	switch {
	case req.ClearMaxRosterSize:
		m.MaxRosterSize = nil
	case req.MaxRosterSize != nil:
		m.MaxRosterSize = req.MaxRosterSize
	}
	switch {
	case req.ClearResult:
		m.Result = nil
	case req.Result != nil:
		m.Result = helpers.TrimmedOrNil(req.Result)
	}
	if m.Date, err = rescheduled(m.Date, req.Date, req.Time, s.loc); err != nil {
		return nil, err
	}

	if err := s.matches.Update(ctx, m, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

// SetResult records the final score
func (s *matchServiceImpl) SetResult(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.MatchResultRequest) (*models.Match, error) {
	m, err := s.ownedMatch(ctx, p, auth.OpMatchUpdate, id)
	if err != nil {
		return nil, err
	}
	result, err := requiredText(req.Result, "result")
	if err != nil {
		return nil, err
	}
	m.Result = &result
	if err := s.matches.Update(ctx, m, nil); err != nil {
		return nil, err
	}
	s.logger.Info().Str("matchID", id.String()).Str("result", result).Msg("Match result recorded")
	return m, nil
}

func (s *matchServiceImpl) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if _, err := s.ownedMatch(ctx, p, auth.OpMatchDelete, id); err != nil {
		return err
	}
	if err := s.matches.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("matchID", id.String()).Str("by", p.UserID.String()).Msg("Match deleted")
	return nil
}

// ownedMatch loads a match the principal may change under op
func (s *matchServiceImpl) ownedMatch(ctx context.Context, p auth.Principal, op auth.Operation, id uuid.UUID) (*models.Match, error) {
	if err := auth.Authorize(p, op); err != nil {
		return nil, err
	}
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwned(p, op, m.CoachID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *matchServiceImpl) List(ctx context.Context, p auth.Principal, q *dto.DateRangeQuery) ([]*models.Match, error) {
	window, err := parseWindow(q, s.loc)
	if err != nil {
		return nil, err
	}
	return nonNil(s.matches.List(ctx, window))
}

// Get returns the match with its roster
func (s *matchServiceImpl) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Match, error) {
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.ListByMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if roster == nil {
		roster = []models.RosterEntry{}
	}
	m.Roster = roster
	return m, nil
}

// Join puts the calling student on the roster
func (s *matchServiceImpl) Join(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.JoinMatchRequest) (*models.RosterEntry, error) {
	if err := auth.Authorize(p, auth.OpMatchJoin); err != nil {
		return nil, err
	}
	entry := &models.RosterEntry{MatchID: id, StudentID: p.UserID}
	if req != nil {
		entry.JerseyNumber = req.JerseyNumber
		entry.Position = helpers.TrimmedOrNil(req.Position)
	}
	if err := s.roster.Join(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("matchID", id.String()).Str("studentID", p.UserID.String()).Msg("Student joined match roster")
	return entry, nil
}

func (s *matchServiceImpl) Leave(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.OpMatchLeave); err != nil {
		return err
	}
	return s.roster.Leave(ctx, id, p.UserID)
}

func (s *matchServiceImpl) UpdateRosterEntry(ctx context.Context, p auth.Principal, id, studentID uuid.UUID, req *dto.UpdateRosterEntryRequest) (*models.RosterEntry, error) {
	if err := auth.Authorize(p, auth.OpRosterManage); err != nil {
		return nil, err
	}
	upd := models.RosterUpdate{JerseyNumber: req.JerseyNumber}
	if req.Position != nil {
		v := strings.TrimSpace(*req.Position)
		upd.Position = &v
	}
	if req.PerformanceNotes != nil {
		v := strings.TrimSpace(*req.PerformanceNotes)
		upd.PerformanceNotes = &v
	}
	return s.roster.Update(ctx, id, studentID, upd)
}

// BulkMarkAttendance records match attendance for rostered students as one all-or-nothing batch
func (s *matchServiceImpl) BulkMarkAttendance(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.BulkMatchAttendanceRequest) ([]*models.MatchAttendance, error) {
	if err := auth.Authorize(p, auth.OpMatchAttendanceMark); err != nil {
		return nil, err
	}
	if len(req.Records) == 0 {
		return nil, apperrors.NewValidationError("at least one attendance record is required")
	}

	marks := make([]models.MatchAttendanceMark, 0, len(req.Records))
	for _, rec := range req.Records {
		if !rec.Status.Valid() {
			return nil, apperrors.NewValidationError("status must be present, absent, late or excused")
		}
		marks = append(marks, models.MatchAttendanceMark{
			StudentID: rec.StudentID,
			Status:    rec.Status,
			Notes:     helpers.TrimmedOrNil(rec.Notes),
		})
	}

	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireEventDay(m.Date, s.now(), s.loc); err != nil {
		return nil, err
	}

	rows, err := s.attendance.BulkUpsert(ctx, id, marks)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("matchID", id.String()).
		Int("records", len(rows)).
		Str("by", p.UserID.String()).
		Msg("Match attendance marked")
	return rows, nil
}

func (s *matchServiceImpl) GetAttendance(ctx context.Context, p auth.Principal, id uuid.UUID) ([]models.MatchAttendance, error) {
	if _, err := s.matches.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nonNil(s.attendance.ListByMatch(ctx, id))
}
