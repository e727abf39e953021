package notification

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16
)

// Message is what realtime clients receive. Type is always "refetch" for
// change signals: clients reload the channel rather than merge state.
type Message struct {
	Type     string `json:"type"`
	Channel  string `json:"channel,omitempty"`
	ClientID string `json:"client_id,omitempty"`
}

// ClientMessage subscribes to or unsubscribes from a channel.
type ClientMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

var channels = map[string]string{
	events.EventTypeEmployeeChanged:      "employees",
	events.EventTypeWorkPermitChanged:    "work_permits",
	events.EventTypeLeaveBalanceChanged:  "leave",
	events.EventTypeFeatureChanged:       "features",
	events.EventTypePermissionsSaved:     "permissions",
	events.EventTypeManualChanged:        "manual",
	events.EventTypeConsentChanged:       "feedback",
	events.EventTypePolicyChanged:        "feedback",
	events.EventTypeNotificationCreated:  "notifications",
	events.EventTypeNotificationRead:     "notifications",
	events.EventTypeAccessRequestChanged: "access_requests",
	events.EventTypeRegistryReloaded:     "registry",
}

// ChannelFor maps an event type onto the realtime channel it invalidates.
func ChannelFor(eventType string) string {
	if ch, ok := channels[eventType]; ok {
		return ch
	}
	if i := strings.Index(eventType, "."); i > 0 {
		return eventType[:i]
	}
	return eventType
}

type client struct {
	id       string
	userID   int64
	conn     *websocket.Conn
	send     chan Message
	mu       sync.RWMutex
	channels map[string]bool
}

func (c *client) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channels[channel]
}

type Hub struct {
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	logger       *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub accepts upgrades from the listed origins; "*" or an empty list allows any.
func NewHub(origins []string, pingInterval time.Duration, logger *slog.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
		pingInterval: pingInterval,
		logger:       logger,
		clients:      make(map[*client]struct{}),
	}
}

// Attach forwards every bus event to subscribed clients.
func (h *Hub) Attach(bus *events.EventBus) {
	bus.Subscribe(events.Wildcard, func(_ context.Context, e events.Event) error {
		h.Broadcast(ChannelFor(e.EventType()), events.RecipientOf(e))
		return nil
	})
}

// Broadcast signals clients subscribed to channel. A non-zero userID limits
// delivery to that user's connections. Slow clients miss signals rather than
// block the hub.
func (h *Hub) Broadcast(channel string, userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	msg := Message{Type: "refetch", Channel: channel}
	for c := range h.clients {
		if userID != 0 && c.userID != userID {
			continue
		}
		if !c.subscribed(channel) {
			continue
		}
		select {
		case c.send <- msg:
			delivered++
		default:
			h.logger.Debug("realtime client buffer full", "client_id", c.id)
		}
	}
	return delivered
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and runs the connection until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket", "error", err)
		return
	}

	c := &client{
		id:       uuid.New().String(),
		userID:   userID,
		conn:     conn,
		send:     make(chan Message, sendBuffer),
		channels: map[string]bool{},
	}
	h.register(c)
	h.logger.Info("realtime client connected", "client_id", c.id, "user_id", userID)

	c.send <- Message{Type: "connected", ClientID: c.id}
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.logger.Info("realtime client disconnected", "client_id", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		channel := strings.TrimSpace(msg.Channel)
		if channel == "" {
			continue
		}
		c.mu.Lock()
		switch msg.Action {
		case "subscribe":
			c.channels[channel] = true
		case "unsubscribe":
			delete(c.channels, channel)
		}
		c.mu.Unlock()
		if msg.Action == "subscribe" {
			select {
			case c.send <- Message{Type: "subscribed", Channel: channel}:
			default:
			}
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client; each read loop then unregisters itself.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.conn.Close()
	}
}
