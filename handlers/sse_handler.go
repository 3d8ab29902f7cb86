package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"streakpick-go/logging"
	"streakpick-go/middleware"
	"streakpick-go/services"

	"github.com/google/uuid"
)

// sseClient represents one connected event stream
type sseClient struct {
	id      string
	userKey string
	channel chan string
}

// SSEHandler streams session events to connected clients over Server-Sent
// Events. Events are scoped to their owning user; a client only receives
// events for the identity it connected with.
type SSEHandler struct {
	mu        sync.RWMutex
	clients   map[*sseClient]bool
	stopHeart chan struct{}
	logger    *logging.Logger
}

// NewSSEHandler creates the handler and starts its heartbeat loop
func NewSSEHandler() *SSEHandler {
	h := &SSEHandler{
		clients:   make(map[*sseClient]bool),
		stopHeart: make(chan struct{}),
		logger:    logging.WithPrefix("SSE"),
	}
	go h.heartbeatLoop()
	return h
}

// Handle upgrades the request to an event stream
func (h *SSEHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r)
	if identity == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &sseClient{
		id:      uuid.NewString(),
		userKey: identity.UserKey,
		channel: make(chan string, 100),
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Infof("Client %s connected from %s (user %s)", client.id, r.RemoteAddr, identity.UserKey)

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		h.logger.Infof("Client %s disconnected", client.id)
	}()

	fmt.Fprintf(w, "event: connection\ndata: established\n\n")
	flusher.Flush()

	for {
		select {
		case message := <-client.channel:
			fmt.Fprint(w, message)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// Broadcast delivers a session event to every client connected as userKey.
// Slow clients with a full buffer are skipped rather than blocked on.
func (h *SSEHandler) Broadcast(userKey string, event services.SessionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("Failed to encode event %s: %v", event.Type, err)
		return
	}
	message := fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.userKey != userKey {
			continue
		}
		select {
		case client.channel <- message:
		default:
			h.logger.Warnf("Dropping event for slow client %s", client.id)
		}
	}
}

// heartbeatLoop keeps idle connections alive through proxies
func (h *SSEHandler) heartbeatLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			message := fmt.Sprintf("event: heartbeat\ndata: %d\n\n", time.Now().Unix())
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.channel <- message:
				default:
				}
			}
			h.mu.RUnlock()
		case <-h.stopHeart:
			return
		}
	}
}

// Close stops the heartbeat loop
func (h *SSEHandler) Close() {
	close(h.stopHeart)
}
