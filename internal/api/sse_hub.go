package api

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dataview/domain/core"
	"dataview/domain/explorer"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID core.SessionID
	Channel   chan explorer.Event
}

// SSEHub fans session events out to the clients streaming them
type SSEHub struct {
	clients    map[core.SessionID]map[chan explorer.Event]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan explorer.Event
	done       chan struct{}
	closeOnce  sync.Once
	logger     *zap.Logger

	// Heartbeat is how long a quiet stream waits before sending a ping.
	Heartbeat time.Duration
}

// NewSSEHub creates a new SSE hub
func NewSSEHub(logger *zap.Logger) *SSEHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := &SSEHub{
		clients:    make(map[core.SessionID]map[chan explorer.Event]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan explorer.Event, 100),
		done:       make(chan struct{}),
		logger:     logger.With(zap.String("component", "sse")),
		Heartbeat:  30 * time.Second,
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan explorer.Event]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			h.logger.Debug("client registered",
				zap.String("session_id", client.SessionID.String()),
				zap.Int("clients", len(h.clients[client.SessionID])))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists && clients[client.Channel] {
				delete(clients, client.Channel)
				close(client.Channel)
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			if event.Kind == explorer.EventClosed {
				h.closeSession(event)
				continue
			}
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.SessionID] {
				select {
				case clientChan <- event:
				default:
					h.logger.Warn("client channel full, skipping event",
						zap.String("session_id", event.SessionID.String()),
						zap.String("kind", string(event.Kind)))
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// closeSession delivers the terminal event and drops every client of the
// session. Closing the client channels ends their streams even when the
// event did not fit.
func (h *SSEHub) closeSession(event explorer.Event) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for clientChan := range h.clients[event.SessionID] {
		select {
		case clientChan <- event:
		default:
			h.logger.Warn("client channel full, ending stream without closed event",
				zap.String("session_id", event.SessionID.String()))
		}
		close(clientChan)
	}
	delete(h.clients, event.SessionID)
}

// Publish queues an event for every client of its session. Update events
// are dropped when the hub is saturated; a Closed event waits for room.
func (h *SSEHub) Publish(event explorer.Event) {
	if event.Kind == explorer.EventClosed {
		select {
		case h.broadcast <- event:
		case <-h.done:
		}
		return
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event", zap.String("kind", string(event.Kind)))
	}
}

// Subscribe registers a client for sessionID. The returned function
// unregisters it and closes the channel.
func (h *SSEHub) Subscribe(sessionID core.SessionID) (<-chan explorer.Event, func()) {
	client := SSEClient{SessionID: sessionID, Channel: make(chan explorer.Event, 10)}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Channel)
		return client.Channel, func() {}
	}

	var once sync.Once
	return client.Channel, func() {
		once.Do(func() {
			select {
			case h.unregister <- client:
			case <-h.done:
			}
		})
	}
}

// HandleSSE streams the events of sessionID until the client leaves or the
// session closes.
func (h *SSEHub) HandleSSE(c *gin.Context, sessionID core.SessionID) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	events, cancel := h.Subscribe(sessionID)
	defer cancel()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Kind), event)
			return event.Kind != explorer.EventClosed

		case <-time.After(h.Heartbeat):
			c.SSEvent("ping", gin.H{"timestamp": core.Now()})
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetClientCount returns the number of active clients for a session
func (h *SSEHub) GetClientCount(sessionID core.SessionID) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}

// Close stops the hub. Open streams stop receiving events and end when their
// client leaves.
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
