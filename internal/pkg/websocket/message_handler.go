package websocket

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Inbound frame types
const (
	InboundPing             = "ping"
	InboundNotificationRead = "notification.read"
)

// NotificationMarker marks a user's notification as read
type NotificationMarker interface {
	MarkReadForUser(ctx context.Context, userID, notificationID uuid.UUID) error
}

// MessageHandler acts on control frames sent by clients
type MessageHandler struct {
	marker NotificationMarker
	hub    *Hub
	logger zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(marker NotificationMarker, hub *Hub, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		marker: marker,
		hub:    hub,
		logger: logger,
	}
}

// Start processes inbound frames until ctx is cancelled
func (h *MessageHandler) Start(ctx context.Context) {
	messages := make(chan *Inbound, 64)
	h.hub.AddMessageListener(messages)

	go func() {
		defer h.hub.RemoveMessageListener(messages)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-messages:
				h.handle(ctx, msg)
			}
		}
	}()
}

func (h *MessageHandler) handle(ctx context.Context, msg *Inbound) {
	switch msg.Type {
	case InboundPing:
		h.hub.SendToUser(msg.UserID, EventPong, nil)
	case InboundNotificationRead:
		var body struct {
			ID uuid.UUID `json:"id"`
		}
		if err := json.Unmarshal(msg.Payload, &body); err != nil || body.ID == uuid.Nil {
			h.logger.Debug().Str("userID", msg.UserID.String()).Msg("Invalid notification.read frame")
			return
		}
		if err := h.marker.MarkReadForUser(ctx, msg.UserID, body.ID); err != nil {
			h.logger.Warn().Err(err).Str("userID", msg.UserID.String()).Str("notificationID", body.ID.String()).Msg("Failed to mark notification read")
			return
		}
		h.hub.SendToUser(msg.UserID, EventNotificationRead, body)
	default:
		h.logger.Debug().Str("type", msg.Type).Msg("Unknown client frame")
	}
}
