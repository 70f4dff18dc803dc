package realtime

import (
	"sync"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/dto"
	"github.com/iliyamo/cineclub/internal/model"
)

const clientBuffer = 32

// Client is one open stream.
type Client struct {
	ID          string
	UserID      uint64
	ChatEnabled bool
	ConnectedAt time.Time
	Events      chan Event
}

// Hub tracks open streams.  Delivery never blocks: a client whose
// buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool
	now     func() time.Time
	logger  *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{clients: make(map[string]*Client), now: time.Now, logger: logger}
}

// Connect registers a stream for userID.  It returns nil once the hub
// is closed.
func (h *Hub) Connect(userID uint64, chatEnabled bool) *Client {
	c := &Client{
		ID:          xid.New().String(),
		UserID:      userID,
		ChatEnabled: chatEnabled,
		ConnectedAt: h.now(),
		Events:      make(chan Event, clientBuffer),
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.clients[c.ID] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Infow("stream client connected", "client_id", c.ID, "user_id", userID, "total_clients", total)
	return c
}

// Disconnect removes the client and closes its channel.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.Events)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Infow("stream client disconnected", "client_id", id, "duration", time.Since(c.ConnectedAt), "total_clients", total)
	}
}

// Publish delivers ev to every matching client and reports how many
// received it.
func (h *Hub) Publish(ev Event) int {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = h.now()
	}
	var delivered, dropped int
	h.mu.RLock()
	for _, c := range h.clients {
		if ev.UserID != 0 && ev.UserID != c.UserID {
			continue
		}
		if ev.ChatOnly && !c.ChatEnabled {
			continue
		}
		select {
		case c.Events <- ev:
			delivered++
		default:
			dropped++
			h.logger.Warnw("dropped event for slow client", "client_id", c.ID, "event_type", ev.Type)
		}
	}
	h.mu.RUnlock()
	if ev.Type != EventHeartbeat {
		h.logger.Debugw("event broadcast", "event_type", ev.Type, "delivered", delivered, "dropped", dropped)
	}
	return delivered
}

func (h *Hub) PublishMovie(m model.Movie) {
	h.Publish(Event{Type: EventMovieCreated, Data: MovieCreated{ID: m.ID, Title: m.Title, CreatedBy: m.CreatedBy}})
}

func (h *Hub) PublishNotification(n model.Notification) {
	h.Publish(Event{Type: EventNotification, UserID: n.UserID, Data: dto.FromNotification(n)})
}

func (h *Hub) PublishMessage(m model.ChatMessage) {
	h.Publish(Event{Type: EventChatMessage, ChatOnly: true, Data: dto.FromMessage(m)})
}

// Clients returns the number of open streams.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.Events)
	}
	h.mu.Unlock()
	h.logger.Info("stream hub closed")
}
