package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

// PerformanceNoteService manages coach assessments of students
type PerformanceNoteService interface {
	Create(ctx context.Context, p auth.Principal, req *dto.CreatePerformanceNoteRequest) (*models.PerformanceNote, error)
	List(ctx context.Context, p auth.Principal, studentID *uuid.UUID) ([]*models.PerformanceNote, error)
	ListMine(ctx context.Context, p auth.Principal) ([]*models.PerformanceNote, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
}

type performanceNoteServiceImpl struct {
	notes  PerformanceNoteStore
	users  UserStore
	logger zerolog.Logger
}

// NewPerformanceNoteService creates a new PerformanceNoteService
func NewPerformanceNoteService(notes PerformanceNoteStore, users UserStore, logger zerolog.Logger) PerformanceNoteService {
	return &performanceNoteServiceImpl{notes: notes, users: users, logger: logger}
}

func (s *performanceNoteServiceImpl) Create(ctx context.Context, p auth.Principal, req *dto.CreatePerformanceNoteRequest) (*models.PerformanceNote, error) {
	if err := auth.Authorize(p, auth.OpPerformanceWrite); err != nil {
		return nil, err
	}

	category, err := requiredText(req.Category, "category")
	if err != nil {
		return nil, err
	}
	text, err := requiredText(req.Note, "note")
	if err != nil {
		return nil, err
	}
	if req.Rating != nil && (*req.Rating < models.MinRating || *req.Rating > models.MaxRating) {
		return nil, apperrors.NewValidationError("rating must be between 1 and 10")
	}

	student, err := s.users.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewValidationError("student does not exist")
		}
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, apperrors.NewValidationError("performance notes can only be written for students")
	}

	n := &models.PerformanceNote{
		StudentID: student.ID,
		CoachID:   p.UserID,
		Category:  category,
		Rating:    req.Rating,
		Note:      text,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, err
	}
	summary := student.Summary()
	n.Student = &summary

	s.logger.Info().Str("noteID", n.ID.String()).Str("studentID", student.ID.String()).Msg("Performance note created")
	return n, nil
}

func (s *performanceNoteServiceImpl) List(ctx context.Context, p auth.Principal, studentID *uuid.UUID) ([]*models.PerformanceNote, error) {
	if err := auth.Authorize(p, auth.OpPerformanceRead); err != nil {
		return nil, err
	}
	return nonNil(s.notes.List(ctx, studentID))
}

// ListMine returns the notes written about the calling student
func (s *performanceNoteServiceImpl) ListMine(ctx context.Context, p auth.Principal) ([]*models.PerformanceNote, error) {
	id := p.UserID
	return nonNil(s.notes.List(ctx, &id))
}

// Delete removes a note. Coaches may only remove their own.
func (s *performanceNoteServiceImpl) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.OpPerformanceWrite); err != nil {
		return err
	}
	var owner *uuid.UUID
	if p.Role != models.RoleAdmin {
		owner = &p.UserID
	}
	return s.notes.Delete(ctx, id, owner)
}
