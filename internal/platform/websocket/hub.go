// Package websocket pushes record change notifications to subscribed
// clients. Clients subscribe to topics; a write to record <id> of resource
// <R> is broadcast on topic "<R>" and on topic "<R>/<id>".
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Event is one change notification.
type Event struct {
	Op           string    `json:"op"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Topics returns the topics the event is broadcast on.
func (e Event) Topics() []string {
	if e.ResourceID == "" {
		return []string{e.ResourceType}
	}
	return []string{e.ResourceType, e.ResourceType + "/" + e.ResourceID}
}

// ClientMessage is an inbound subscription change.
type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

type client struct {
	id     string
	topics map[string]struct{}
	send   chan []byte
}

// Hub tracks connected clients and their topic subscriptions.
type Hub struct {
	resourceType string
	logger       zerolog.Logger
	now          func() time.Time

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub publishing changes of resourceType.
func NewHub(resourceType string, logger zerolog.Logger) *Hub {
	return &Hub{
		resourceType: resourceType,
		logger:       logger.With().Str("component", "websocket.hub").Logger(),
		now:          time.Now,
		clients:      make(map[*client]struct{}),
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) process(c *client, msg ClientMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range msg.Topics {
		switch msg.Action {
		case "subscribe":
			c.topics[t] = struct{}{}
		case "unsubscribe":
			delete(c.topics, t)
		}
	}
}

// Notify broadcasts a change of the record id. It never blocks: clients
// whose buffer is full miss the event.
func (h *Hub) Notify(_ context.Context, op, id string) {
	h.Broadcast(Event{
		Op:           op,
		ResourceType: h.resourceType,
		ResourceID:   id,
		Timestamp:    h.now().UTC(),
	})
}

// Broadcast sends ev to every client subscribed to one of its topics.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal event")
		return
	}
	topics := ev.Topics()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.subscribed(topics) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn().Str("client", c.id).Str("op", ev.Op).Msg("client buffer full, event dropped")
		}
	}
}

func (c *client) subscribed(topics []string) bool {
	for _, t := range topics {
		if _, ok := c.topics[t]; ok {
			return true
		}
	}
	return false
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the HTTP middleware chain
	},
}

// RegisterRoutes mounts the upgrade endpoint at /ws on g.
func (h *Hub) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.HandleConnect)
}

// HandleConnect upgrades the request and starts the pumps. Initial topics
// come from the comma separated "topics" query parameter and default to the
// whole resource.
func (h *Hub) HandleConnect(c echo.Context) error {
	topics := map[string]struct{}{}
	for _, t := range strings.Split(c.QueryParam("topics"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics[t] = struct{}{}
		}
	}
	if len(topics) == 0 {
		topics[h.resourceType] = struct{}{}
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{
		id:     uuid.NewString(),
		topics: topics,
		send:   make(chan []byte, 64),
	}
	h.register(cl)
	h.logger.Debug().Str("client", cl.id).Msg("client connected")

	go h.writePump(cl, ws)
	go h.readPump(cl, ws)
	return nil
}

func (h *Hub) readPump(cl *client, ws *gorillawebsocket.Conn) {
	defer func() {
		h.unregister(cl)
		ws.Close()
		h.logger.Debug().Str("client", cl.id).Msg("client disconnected")
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		h.process(cl, msg)
	}
}

func (h *Hub) writePump(cl *client, ws *gorillawebsocket.Conn) {
	defer ws.Close()
	for message := range cl.send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			return
		}
	}
	ws.WriteMessage(gorillawebsocket.CloseMessage, gorillawebsocket.FormatCloseMessage(gorillawebsocket.CloseNormalClosure, ""))
}
