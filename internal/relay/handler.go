// ABOUTME: WebSocket endpoint: upgrades connections and dispatches inbound events.
// ABOUTME: One reader goroutine per connection processes events in arrival order.

package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/parleyhq/parley/internal/conversation"
	"github.com/parleyhq/parley/internal/mode"
)

// Inbound event type discriminators.
const (
	eventInitSession = "init-session"
	eventChangeMode  = "change-mode"
	eventTextMessage = "text-message"
	eventStopAI      = "stop-ai"
)

// maxMessageBytes bounds inbound frames.
const maxMessageBytes = 64 * 1024

// ClientEvent is one inbound message from a client.
type ClientEvent struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Mode      string      `json:"mode,omitempty"`
	Config    mode.Config `json:"config,omitempty"`
	Text      string      `json:"text,omitempty"`
}

// Handler serves the /ws/{clientId} endpoint.
type Handler struct {
	registry    *Registry
	coordinator *conversation.Coordinator
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewHandler creates the WebSocket handler. checkOrigin decides whether a
// handshake's Origin header is acceptable; nil allows all origins.
func NewHandler(registry *Registry, coordinator *conversation.Coordinator, checkOrigin func(*http.Request) bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		registry:    registry,
		coordinator: coordinator,
		upgrader:    websocket.Upgrader{CheckOrigin: checkOrigin},
		logger:      logger.With("component", "ws"),
	}
}

// ServeHTTP upgrades the connection and runs its event loop until the
// client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if clientID == "" || strings.Contains(clientID, "/") {
		http.Error(w, "client id required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	wc := &wsConn{conn: conn}
	h.registry.Connect(clientID, wc)
	defer h.registry.Disconnect(clientID)
	defer conn.Close()

	h.readLoop(r.Context(), clientID, conn)
}

// readLoop dispatches inbound events strictly in arrival order. A decode
// failure on one frame is logged and skipped; a read error ends the loop.
func (h *Handler) readLoop(ctx context.Context, clientID string, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("read failed", "connection_id", clientID, "error", err)
			}
			return
		}

		var ev ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			h.logger.Debug("bad client frame", "connection_id", clientID, "error", err)
			continue
		}

		h.dispatch(ctx, clientID, ev)
	}
}

// dispatch routes one inbound event to the coordinator and pushes the
// resulting events back through the registry.
func (h *Handler) dispatch(ctx context.Context, clientID string, ev ClientEvent) {
	switch ev.Type {
	case eventInitSession:
		m := mode.Normalize(ev.Mode)
		sessionID, events := h.coordinator.HandleInit(ctx, ev.SessionID, m, ev.Config)
		h.registry.BindSession(clientID, sessionID)
		h.pushAll(clientID, events)

	case eventChangeMode:
		sessionID, ok := h.registry.SessionFor(clientID)
		if !ok {
			h.registry.Push(clientID, conversation.NewError("No active session", ""))
			return
		}
		m := mode.Normalize(ev.Mode)
		h.pushAll(clientID, h.coordinator.HandleModeChange(ctx, sessionID, m, ev.Config))

	case eventTextMessage:
		sessionID, ok := h.registry.SessionFor(clientID)
		if !ok {
			return
		}
		if strings.TrimSpace(ev.Text) == "" {
			return
		}
		h.registry.Push(clientID, conversation.NewThinking())
		h.pushAll(clientID, h.coordinator.HandleTurn(ctx, sessionID, ev.Text))

	case eventStopAI:
		// Acknowledgment only; in-flight generation is not cancelled.
		h.registry.Push(clientID, conversation.NewStopped())

	default:
		h.logger.Debug("unknown event type", "connection_id", clientID, "type", ev.Type)
	}
}

func (h *Handler) pushAll(clientID string, events []conversation.Event) {
	for _, ev := range events {
		h.registry.Push(clientID, ev)
	}
}

// wsConn wraps a websocket connection as a Pusher. gorilla/websocket
// allows one concurrent writer, so writes are serialized by a mutex.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) Push(event conversation.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(event)
}
