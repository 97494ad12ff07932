package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models"
)

// Outbound event types
const (
	EventNotification     = "notification"
	EventNotificationRead = "notification.read"
	EventAnnouncement     = "announcement"
	EventPong             = "pong"
)

// Envelope is the frame pushed to clients
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Inbound is a frame received from a client, stamped with the sender's identity
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	UserID  uuid.UUID       `json:"-"`
	Role    models.Role     `json:"-"`
}

type delivery struct {
	match func(*Client) bool
	data  []byte
}

// Hub maintains the set of active clients and routes events to them by user or role
type Hub struct {
	// Registered clients organized by user ID. Only the Run goroutine writes it.
	clients map[uuid.UUID]map[*Client]struct{}

	outbound   chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Mutex for concurrent reads of the clients map
	mu sync.RWMutex

	listenersMu      sync.RWMutex
	messageListeners []chan *Inbound

	logger zerolog.Logger
	now    func() time.Time
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		outbound:   make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
}

// Run handles registrations and deliveries until ctx is cancelled.
// On exit every client's send channel is closed so its writer hangs up.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case d := <-h.outbound:
			h.deliver(d)
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
	h.logger.Info().Msg("Websocket hub stopped")
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.userID] = set
	}
	set[client] = struct{}{}

	h.logger.Debug().
		Str("userID", client.userID.String()).
		Str("role", string(client.role)).
		Int("connections", len(set)).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug().Str("userID", client.userID.String()).Msg("Client unregistered")
}

func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for _, set := range h.clients {
		for client := range set {
			if !d.match(client) {
				continue
			}
			select {
			case client.send <- d.data:
				sent++
			default:
				// slow consumer; drop the connection rather than block the hub
				h.logger.Warn().Str("userID", client.userID.String()).Msg("Client send buffer full, disconnecting")
				h.removeLocked(client)
			}
		}
	}
	h.logger.Debug().Int("clients", sent).Msg("Event delivered")
}

func (h *Hub) enqueue(match func(*Client) bool, eventType string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload, Timestamp: h.now()})
	if err != nil {
		h.logger.Error().Err(err).Str("type", eventType).Msg("Failed to marshal websocket event")
		return
	}
	select {
	case h.outbound <- delivery{match: match, data: data}:
	case <-h.done:
	}
}

// SendToUser pushes an event to every connection of userID
func (h *Hub) SendToUser(userID uuid.UUID, eventType string, payload interface{}) {
	h.enqueue(func(c *Client) bool { return c.userID == userID }, eventType, payload)
}

// SendToRoles pushes an event to every connection whose role is listed
func (h *Hub) SendToRoles(roles []models.Role, eventType string, payload interface{}) {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	h.enqueue(func(c *Client) bool {
		_, ok := allowed[c.role]
		return ok
	}, eventType, payload)
}

// ClientCount returns the number of open connections for userID
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// dispatch hands an inbound frame to the registered listeners
func (h *Hub) dispatch(msg *Inbound) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.messageListeners {
		select {
		case listener <- msg:
		default:
			h.logger.Warn().Str("type", msg.Type).Msg("Skipped slow message listener")
		}
	}
}

// AddMessageListener registers a channel to receive inbound client frames
func (h *Hub) AddMessageListener(listener chan *Inbound) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.messageListeners = append(h.messageListeners, listener)
}

// RemoveMessageListener removes a listener from the hub
func (h *Hub) RemoveMessageListener(listener chan *Inbound) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.messageListeners {
		if l == listener {
			h.messageListeners[i] = h.messageListeners[len(h.messageListeners)-1]
			h.messageListeners = h.messageListeners[:len(h.messageListeners)-1]
			break
		}
	}
}
