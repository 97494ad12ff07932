package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/websocket"
)

// unreadBellLimit is how many unread announcements the bell shows
const unreadBellLimit = 10

// AnnouncementService defines the interface for the announcement board
type AnnouncementService interface {
	Create(ctx context.Context, p auth.Principal, req *dto.CreateAnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.UpdateAnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
	List(ctx context.Context, p auth.Principal, q *dto.AnnouncementListQuery) ([]dto.AnnouncementView, error)
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*dto.AnnouncementView, error)
	MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error
	Unread(ctx context.Context, p auth.Principal) (*dto.UnreadAnnouncementsResponse, error)
}

type announcementServiceImpl struct {
	announcements AnnouncementStore
	realtime      RealtimePublisher
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAnnouncementService creates a new AnnouncementService. realtime may be nil.
func NewAnnouncementService(announcements AnnouncementStore, realtime RealtimePublisher, logger zerolog.Logger) AnnouncementService {
	return &announcementServiceImpl{
		announcements: announcements,
		realtime:      realtime,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *announcementServiceImpl) Create(ctx context.Context, p auth.Principal, req *dto.CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := auth.Authorize(p, auth.OpAnnouncementCreate); err != nil {
		return nil, err
	}

	title, err := requiredText(req.Title, "title")
	if err != nil {
		return nil, err
	}
	content, err := requiredText(req.Content, "content")
	if err != nil {
		return nil, err
	}

	a := &models.Announcement{
		AuthorID:       p.UserID,
		Title:          title,
		Content:        content,
		Priority:       models.PriorityNormal,
		Category:       models.CategoryGeneral,
		TargetAudience: models.AudienceEveryone,
		PublishedAt:    s.now(),
		ExpiresAt:      req.ExpiresAt,
	}
	if req.Priority != "" {
		a.Priority = req.Priority
	}
	if req.Category != "" {
		a.Category = req.Category
	}
	if req.TargetAudience != "" {
		a.TargetAudience = req.TargetAudience
	}
	if req.PublishedAt != nil {
		a.PublishedAt = *req.PublishedAt
	}
	if err := validateAnnouncement(a); err != nil {
		return nil, err
	}

	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("announcementID", a.ID.String()).
		Str("audience", string(a.TargetAudience)).
		Msg("Announcement published")
	if s.realtime != nil {
		s.realtime.SendToRoles(a.TargetAudience.Recipients(), websocket.EventAnnouncement, a)
	}
	return a, nil
}

func validateAnnouncement(a *models.Announcement) error {
	if !a.Priority.Valid() {
		return apperrors.NewValidationError("priority must be low, normal, high or urgent")
	}
	if !a.Category.Valid() {
		return apperrors.NewValidationError("unknown announcement category")
	}
	if !a.TargetAudience.Valid() {
		return apperrors.NewValidationError("unknown target audience")
	}
	if a.ExpiresAt != nil && !a.ExpiresAt.After(a.PublishedAt) {
		return apperrors.NewValidationError("expiresAt must be after publishedAt")
	}
	return nil
}

func (s *announcementServiceImpl) Update(ctx context.Context, p auth.Principal, id uuid.UUID, req *dto.UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := auth.Authorize(p, auth.OpAnnouncementUpdate); err != nil {
		return nil, err
	}

	a, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := updateText(&a.Title, req.Title, "title"); err != nil {
		return nil, err
	}
	if err := updateText(&a.Content, req.Content, "content"); err != nil {
		return nil, err
	}
	if req.Priority != nil {
		a.Priority = *req.Priority
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.TargetAudience != nil {
		a.TargetAudience = *req.TargetAudience
	}
	switch {
	case req.ClearExpiry:
		a.ExpiresAt = nil
	case req.ExpiresAt != nil:
		a.ExpiresAt = req.ExpiresAt
	}
	if err := validateAnnouncement(a); err != nil {
		return nil, err
	}

	if err := s.announcements.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *announcementServiceImpl) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(p, auth.OpAnnouncementDelete); err != nil {
		return err
	}
	if err := s.announcements.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("announcementID", id.String()).Str("by", p.UserID.String()).Msg("Announcement deleted")
	return nil
}

func (s *announcementServiceImpl) filterFor(p auth.Principal) repositories.AnnouncementFilter {
	return announcementFilter(p, s.now())
}

// announcementFilter builds the visibility filter of p. Admins see every audience.
func announcementFilter(p auth.Principal, now time.Time) repositories.AnnouncementFilter {
	f := repositories.AnnouncementFilter{ViewerID: p.UserID, Now: now}
	if p.Role != models.RoleAdmin {
		f.Audiences = models.AudiencesFor(p.Role)
	}
	return f
}

// List returns the visible announcements newest first with the caller's read state.
// Expired ones are included only on request and only for roles that manage the board.
func (s *announcementServiceImpl) List(ctx context.Context, p auth.Principal, q *dto.AnnouncementListQuery) ([]dto.AnnouncementView, error) {
	f := s.filterFor(p)
	if q != nil && q.IncludeExpired {
		if err := auth.Authorize(p, auth.OpAnnouncementExpired); err != nil {
			return nil, err
		}
		f.IncludeExpired = true
	}

	list, err := s.announcements.List(ctx, f)
	if err != nil {
		return nil, err
	}
	readSet, err := s.announcements.ReadSet(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.AnnouncementView, 0, len(list))
	for _, a := range list {
		views = append(views, dto.AnnouncementView{
			Announcement: a,
			Read:         readSet[a.ID],
			Expired:      a.IsExpired(f.Now),
		})
	}
	return views, nil
}

// Get hides announcements outside the caller's audience as not found
func (s *announcementServiceImpl) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*dto.AnnouncementView, error) {
	a, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	readSet, err := s.announcements.ReadSet(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.AnnouncementView{Announcement: a, Read: readSet[a.ID], Expired: a.IsExpired(s.now())}, nil
}

func (s *announcementServiceImpl) visible(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Announcement, error) {
	a, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.VisibleTo(p.UserID, p.Role) {
		return nil, apperrors.NewResourceNotFoundError("announcement not found")
	}
	return a, nil
}

// MarkRead stores a read receipt. Marking twice is a no-op.
func (s *announcementServiceImpl) MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if _, err := s.visible(ctx, p, id); err != nil {
		return err
	}
	return s.announcements.MarkRead(ctx, p.UserID, id)
}

func (s *announcementServiceImpl) Unread(ctx context.Context, p auth.Principal) (*dto.UnreadAnnouncementsResponse, error) {
	f := s.filterFor(p)
	f.UnreadOnly = true

	count, err := s.announcements.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	f.Limit = unreadBellLimit
	items, err := nonNil(s.announcements.List(ctx, f))
	if err != nil {
		return nil, err
	}
	return &dto.UnreadAnnouncementsResponse{Count: int(count), Items: items}, nil
}
