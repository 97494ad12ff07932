package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

// AssignmentService manages the coach/student relationship ledger
type AssignmentService interface {
	Assign(ctx context.Context, p auth.Principal, req *dto.CreateAssignmentRequest) (*models.CoachStudentAssignment, error)
	Unassign(ctx context.Context, p auth.Principal, id uuid.UUID) error
	List(ctx context.Context, p auth.Principal) ([]*models.CoachStudentAssignment, error)
	// ListMine returns the students assigned to the calling coach
	ListMine(ctx context.Context, p auth.Principal) ([]*models.CoachStudentAssignment, error)
}

type assignmentServiceImpl struct {
	assignments   AssignmentStore
	users         UserStore
	notifications NotificationService
	logger        zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(assignments AssignmentStore, users UserStore, notifications NotificationService, logger zerolog.Logger) AssignmentService {
	return &assignmentServiceImpl{
		assignments:   assignments,
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *assignmentServiceImpl) Assign(ctx context.Context, p auth.Principal, req *dto.CreateAssignmentRequest) (*models.CoachStudentAssignment, error) {
	if err := auth.Authorize(p, auth.OpAssignmentsManage); err != nil {
		return nil, err
	}

	coach, err := s.requireRole(ctx, req.CoachID, models.RoleCoach)
	if err != nil {
		return nil, err
	}
	student, err := s.requireRole(ctx, req.StudentID, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	a := &models.CoachStudentAssignment{CoachID: coach.ID, StudentID: student.ID}
	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	coachSummary, studentSummary := coach.Summary(), student.Summary()
	a.Coach, a.Student = &coachSummary, &studentSummary

	s.logger.Info().
		Str("coachID", coach.ID.String()).
		Str("studentID", student.ID.String()).
		Msg("Coach assigned to student")

	notifyQuietly(ctx, s.notifications, s.logger, student.ID, models.NotificationAssignment,
		"New coach assigned",
		fmt.Sprintf("%s is now your coach.", coach.FullName),
		nil)
	return a, nil
}

// requireRole loads id and checks it holds role
func (s *assignmentServiceImpl) requireRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("%s %s does not exist", role, id))
		}
		return nil, err
	}
	if user.Role != role {
		return nil, apperrors.NewValidationError(fmt.Sprintf("user %s is not a %s", id, role))
	}
	return user, nil
}

func (s *assignmentServiceImpl) Unassign(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.OpAssignmentsManage); err != nil {
		return err
	}
	return s.assignments.Delete(ctx, id)
}

func (s *assignmentServiceImpl) List(ctx context.Context, p auth.Principal) ([]*models.CoachStudentAssignment, error) {
	if err := auth.Authorize(p, auth.OpAssignmentsManage); err != nil {
		return nil, err
	}
	return nonNil(s.assignments.List(ctx))
}

func (s *assignmentServiceImpl) ListMine(ctx context.Context, p auth.Principal) ([]*models.CoachStudentAssignment, error) {
	if err := auth.Authorize(p, auth.OpAssignmentsOwn); err != nil {
		return nil, err
	}
	return nonNil(s.assignments.ListByCoach(ctx, p.UserID))
}

// nonNil turns a nil slice into an empty one so JSON encodes [] instead of null
func nonNil[T any](list []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}
