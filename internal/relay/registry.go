// ABOUTME: Registry tracks live connections, their sessions, and push handles.
// ABOUTME: All operations are idempotent; pushing to a gone connection no-ops.

package relay

import (
	"log/slog"
	"sync"

	"github.com/parleyhq/parley/internal/conversation"
)

// Pusher delivers one outbound event to a connected client.
type Pusher interface {
	Push(event conversation.Event) error
}

// Registry coordinates connection bookkeeping. A connection carries no
// conversation state of its own; the bound session id is the only link.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]Pusher
	sessions map[string]string // connection id -> session id
	logger   *slog.Logger
}

// NewRegistry creates a Registry. Pass nil logger for the default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		conns:    make(map[string]Pusher),
		sessions: make(map[string]string),
		logger:   logger.With("component", "relay"),
	}
}

// Connect registers a connection's push handle. Reconnecting with the
// same id replaces the previous handle.
func (r *Registry) Connect(connID string, p Pusher) {
	r.mu.Lock()
	r.conns[connID] = p
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Info("client connected", "connection_id", connID, "total_connections", total)
}

// Disconnect releases both the push handle and the session binding.
// Safe to call at any time, including repeatedly or mid-turn.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	_, had := r.conns[connID]
	delete(r.conns, connID)
	sessionID := r.sessions[connID]
	delete(r.sessions, connID)
	total := len(r.conns)
	r.mu.Unlock()

	if had {
		r.logger.Info("client disconnected",
			"connection_id", connID,
			"session_id", sessionID,
			"total_connections", total)
	}
}

// BindSession associates a connection with a session id.
func (r *Registry) BindSession(connID, sessionID string) {
	r.mu.Lock()
	r.sessions[connID] = sessionID
	r.mu.Unlock()
}

// SessionFor returns the session bound to a connection, if any.
func (r *Registry) SessionFor(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.sessions[connID]
	return id, ok
}

// Push delivers an event to a connection. A connection that has already
// disconnected is a silent no-op, not an error.
func (r *Registry) Push(connID string, event conversation.Event) {
	r.mu.RLock()
	p, ok := r.conns[connID]
	r.mu.RUnlock()

	if !ok {
		return
	}
	if err := p.Push(event); err != nil {
		r.logger.Debug("push failed", "connection_id", connID, "error", err)
	}
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
