package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/websocket"
)

// notificationListLimit caps a single listing
const notificationListLimit = 100

// NotificationService defines the interface for per-user notifications
type NotificationService interface {
	// Notify stores a notification raised by the system and pushes it to the user
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string, link *string) (*models.Notification, error)
	Create(ctx context.Context, p auth.Principal, req *dto.CreateNotificationRequest) (*models.Notification, error)
	List(ctx context.Context, p auth.Principal, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error
	MarkReadForUser(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, p auth.Principal) (int64, error)
}

type notificationServiceImpl struct {
	notifications NotificationStore
	realtime      RealtimePublisher
	logger        zerolog.Logger
}

// NewNotificationService creates a new NotificationService. realtime may be nil.
func NewNotificationService(notifications NotificationStore, realtime RealtimePublisher, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		notifications: notifications,
		realtime:      realtime,
		logger:        logger,
	}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, userID uuid.UUID, kind, title, message string, link *string) (*models.Notification, error) {
	if strings.TrimSpace(kind) == "" {
		kind = models.NotificationGeneral
	}
	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		Link:    link,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.realtime != nil {
		s.realtime.SendToUser(userID, websocket.EventNotification, n)
	}
	s.logger.Debug().Str("userID", userID.String()).Str("type", kind).Msg("Notification created")
	return n, nil
}

// notifyQuietly raises a side-effect notification; failures are logged, not returned
func notifyQuietly(ctx context.Context, svc NotificationService, logger zerolog.Logger, userID uuid.UUID, kind, title, message string, link *string) {
	if svc == nil {
		return
	}
	if _, err := svc.Notify(ctx, userID, kind, title, message, link); err != nil {
		logger.Warn().Err(err).Str("userID", userID.String()).Str("type", kind).Msg("Failed to create notification")
	}
}

func (s *notificationServiceImpl) Create(ctx context.Context, p auth.Principal, req *dto.CreateNotificationRequest) (*models.Notification, error) {
	if err := auth.Authorize(p, auth.OpNotificationCreate); err != nil {
		return nil, err
	}
	return s.Notify(ctx, req.UserID, req.Type, req.Title, req.Message, req.Link)
}

func (s *notificationServiceImpl) List(ctx context.Context, p auth.Principal, unreadOnly bool) ([]*models.Notification, error) {
	list, err := s.notifications.ListByUser(ctx, p.UserID, unreadOnly, notificationListLimit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Notification{}
	}
	return list, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	return s.MarkReadForUser(ctx, p.UserID, id)
}

// MarkReadForUser is also the websocket entry point for inbound read acknowledgements
func (s *notificationServiceImpl) MarkReadForUser(ctx context.Context, userID, id uuid.UUID) error {
	return s.notifications.MarkRead(ctx, id, userID)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, p auth.Principal) (int64, error) {
	return s.notifications.MarkAllRead(ctx, p.UserID)
}
