package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// TrainingService defines the interface for trainings and their attendance
type TrainingService interface {
	Create(ctx context.Context, p auth.Principal, req *dto.CreateTrainingRequest) (*models.Training, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.UpdateTrainingRequest) (*models.Training, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
	List(ctx context.Context, p auth.Principal, q *dto.DateRangeQuery) ([]*models.Training, error)
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Training, error)

	Join(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.TrainingAttendee, error)
	Leave(ctx context.Context, p auth.Principal, id uuid.UUID) error
	MarkAttendance(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.MarkAttendanceRequest) (*models.TrainingAttendee, error)
	BulkMarkAttendance(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.BulkMarkAttendanceRequest) ([]*models.TrainingAttendee, error)
}

type trainingServiceImpl struct {
	trainings  TrainingStore
	attendance AttendanceStore
	users      UserStore
	loc        *time.Location
	now        func() time.Time
	logger     zerolog.Logger
}

// NewTrainingService creates a new TrainingService. loc is the academy timezone.
func NewTrainingService(trainings TrainingStore, attendance AttendanceStore, users UserStore, loc *time.Location, logger zerolog.Logger) TrainingService {
	if loc == nil {
		loc = time.UTC
	}
	return &trainingServiceImpl{
		trainings:  trainings,
		attendance: attendance,
		users:      users,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *trainingServiceImpl) Create(ctx context.Context, p auth.Principal, req *dto.CreateTrainingRequest) (*models.Training, error) {
	if err := auth.Authorize(p, auth.OpTrainingCreate); err != nil {
		return nil, err
	}

	title, err := requiredText(req.Title, "title")
	if err != nil {
		return nil, err
	}
	location, err := requiredText(req.Location, "location")
	if err != nil {
		return nil, err
	}
	if req.DurationMinutes <= 0 {
		return nil, apperrors.NewValidationError("durationMinutes must be positive")
	}
	date, err := eventTime(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, err
	}
	coachID, err := eventOwner(ctx, s.users, p, req.CoachID)
	if err != nil {
		return nil, err
	}

	t := &models.Training{
		CoachID:         coachID,
		Title:           title,
		Description:     helpers.TrimmedOrNil(req.Description),
		Date:            date,
		DurationMinutes: req.DurationMinutes,
		Location:        location,
		MaxParticipants: req.MaxParticipants,
	}
	if err := s.trainings.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info().Str("trainingID", t.ID.String()).Str("coachID", coachID.String()).Msg("Training created")
	return s.trainings.GetByID(ctx, t.ID)
}

func (s *trainingServiceImpl) Update(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.UpdateTrainingRequest) (*models.Training, error) {
	if err := auth.Authorize(p, auth.OpTrainingUpdate); err != nil {
		return nil, err
	}

	t, err := s.trainings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwned(p, auth.OpTrainingUpdate, t.CoachID); err != nil {
		return nil, err
	}

	if err := updateText(&t.Title, req.Title, "title"); err != nil {
		return nil, err
	}
	if err := updateText(&t.Location, req.Location, "location"); err != nil {
		return nil, err
	}
	if req.Description != nil {
		t.Description = helpers.TrimmedOrNil(req.Description)
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, apperrors.NewValidationError("durationMinutes must be positive")
		}
		t.DurationMinutes = *req.DurationMinutes
	}
	switch {
	case req.ClearMaxParticipants:
		t.MaxParticipants = nil
	case req.MaxParticipants != nil:
		t.MaxParticipants = req.MaxParticipants
	}
	if t.Date, err = rescheduled(t.Date, req.Date, req.Time, s.loc); err != nil {
		return nil, err
	}

	if err := s.trainings.Update(ctx, t, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the training together with its attendance rows
func (s *trainingServiceImpl) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.OpTrainingDelete); err != nil {
		return err
	}

	t, err := s.trainings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeOwned(p, auth.OpTrainingDelete, t.CoachID); err != nil {
		return err
	}

	if err := s.trainings.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("trainingID", id.String()).Str("by", p.UserID.String()).Msg("Training deleted")
	return nil
}

func (s *trainingServiceImpl) List(ctx context.Context, p auth.Principal, q *dto.DateRangeQuery) ([]*models.Training, error) {
	window, err := parseWindow(q, s.loc)
	if err != nil {
		return nil, err
	}
	return nonNil(s.trainings.List(ctx, window))
}

// Get returns the training with its attendance list
func (s *trainingServiceImpl) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Training, error) {
	t, err := s.trainings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attendance, err := s.attendance.ListByTraining(ctx, id)
	if err != nil {
		return nil, err
	}
	if attendance == nil {
		attendance = []models.TrainingAttendee{}
	}
	t.Attendance = attendance
	return t, nil
}

// Join registers the calling student for the training
func (s *trainingServiceImpl) Join(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.TrainingAttendee, error) {
	if err := auth.Authorize(p, auth.OpTrainingJoin); err != nil {
		return nil, err
	}
	row, err := s.attendance.Join(ctx, id, p.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("trainingID", id.String()).Str("studentID", p.UserID.String()).Msg("Student joined training")
	return row, nil
}

func (s *trainingServiceImpl) Leave(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.OpTrainingLeave); err != nil {
		return err
	}
	return s.attendance.Leave(ctx, id, p.UserID)
}

func (s *trainingServiceImpl) MarkAttendance(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.MarkAttendanceRequest) (*models.TrainingAttendee, error) {
	rows, err := s.BulkMarkAttendance(ctx, p, id, &dto.BulkMarkAttendanceRequest{
		Records: []dto.MarkAttendanceRequest{*req},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewResourceNotFoundError("attendance record not found")
	}
	return rows[0], nil
}

// BulkMarkAttendance upserts the whole batch in one statement once the training day has come
func (s *trainingServiceImpl) BulkMarkAttendance(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.BulkMarkAttendanceRequest) ([]*models.TrainingAttendee, error) {
	if err := auth.Authorize(p, auth.OpAttendanceMark); err != nil {
		return nil, err
	}
	if len(req.Records) == 0 {
		return nil, apperrors.NewValidationError("at least one attendance record is required")
	}

	marks := make([]models.AttendanceMark, 0, len(req.Records))
	for _, rec := range req.Records {
		if !rec.Status.Markable() {
			return nil, apperrors.NewValidationError("status must be present, absent or late")
		}
		marks = append(marks, models.AttendanceMark{
			StudentID: rec.StudentID,
			Status:    rec.Status,
			Notes:     helpers.TrimmedOrNil(rec.Notes),
		})
	}

	t, err := s.trainings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireEventDay(t.Date, s.now(), s.loc); err != nil {
		return nil, err
	}
	if err := s.requireStudents(ctx, marks); err != nil {
		return nil, err
	}

	rows, err := s.attendance.Upsert(ctx, id, marks)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("trainingID", id.String()).
		Int("records", len(rows)).
		Str("by", p.UserID.String()).
		Msg("Training attendance marked")
	return rows, nil
}

// requireStudents rejects marks whose target is not a student account
func (s *trainingServiceImpl) requireStudents(ctx context.Context, marks []models.AttendanceMark) error {
	checked := make(map[uuid.UUID]bool, len(marks))
	for _, m := range marks {
		if checked[m.StudentID] {
			continue
		}
		checked[m.StudentID] = true

		u, err := s.users.GetByID(ctx, m.StudentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) || errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewValidationError("attendance target " + m.StudentID.String() + " does not exist")
			}
			return err
		}
		if u.Role != models.RoleStudent {
			return apperrors.NewValidationError("attendance can only be recorded for students")
		}
	}
	return nil
}
