// ABOUTME: Thread-safe in-memory session store with a lifecycle-owned reaper.
// ABOUTME: One coarse mutex serializes every mutation across all sessions.

package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/mode"
)

// Store defaults.
const (
	DefaultHistoryLimit = 30
	DefaultMaxAge       = time.Hour
	DefaultReapInterval = 10 * time.Minute
)

// Options tunes store behavior. Zero values select the defaults.
type Options struct {
	HistoryLimit int
	MaxAge       time.Duration
	ReapInterval time.Duration
}

// Store maps session ids to live session state. All methods are safe for
// concurrent use; mutating operations on the store and on any individual
// session are mutually exclusive.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	engine       *mode.Engine
	historyLimit int
	maxAge       time.Duration
	logger       *slog.Logger

	done   chan struct{}
	closed bool
}

// NewStore creates a store and starts its background reaper. Close stops
// the reaper. Pass nil logger for the default.
func NewStore(engine *mode.Engine, logger *slog.Logger, opts Options) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = DefaultReapInterval
	}

	s := &Store{
		sessions:     make(map[string]*Session),
		engine:       engine,
		historyLimit: opts.HistoryLimit,
		maxAge:       opts.MaxAge,
		logger:       logger.With("component", "session-store"),
		done:         make(chan struct{}),
	}
	go s.reapLoop(opts.ReapInterval)
	return s
}

// Create allocates a fresh session in the given mode and returns its id.
func (s *Store) Create(m mode.Mode, cfg mode.Config) string {
	id := uuid.New().String()
	now := time.Now()

	sess := &Session{
		ID:           id,
		Mode:         m,
		History:      []Turn{},
		Context:      s.engine.InitialContext(m, cfg),
		CreatedAt:    now,
		LastActivity: now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", id, "mode", m)
	return id
}

// Get returns a snapshot of the session, or ok=false if it is unknown.
// Absence is not an error; callers branch on ok.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return sess.snapshot(), true
}

// AppendTurn appends one turn to the session's history, evicting the
// oldest turns beyond the history limit. No-op if the session is unknown.
func (s *Store) AppendTurn(id string, role Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.logger.Debug("append on unknown session", "session_id", id)
		return
	}

	sess.History = append(sess.History, Turn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
	if n := len(sess.History); n > s.historyLimit {
		sess.History = append([]Turn(nil), sess.History[n-s.historyLimit:]...)
	}
	s.touchLocked(sess)
}

// ChangeMode switches the session's mode and replaces its context
// wholesale; nothing from the old context survives. No-op if unknown.
func (s *Store) ChangeMode(id string, m mode.Mode, cfg mode.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.logger.Debug("mode change on unknown session", "session_id", id)
		return
	}

	sess.Mode = m
	sess.Context = s.engine.InitialContext(m, cfg)
	s.touchLocked(sess)
	s.logger.Info("session mode changed", "session_id", id, "mode", m)
}

// MergeContext shallow-merges a patch into the session's mode context.
// No-op if the session is unknown.
func (s *Store) MergeContext(id string, patch mode.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.Context.Apply(patch)
	s.touchLocked(sess)
}

// Delete removes the session. No-op if unknown.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ReapExpired removes every session idle strictly longer than maxAge and
// returns how many were removed. The boundary is exclusive: idle time
// equal to maxAge survives.
func (s *Store) ReapExpired(maxAge time.Duration) int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var reaped int
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > maxAge {
			delete(s.sessions, id)
			reaped++
			s.logger.Info("reaped idle session", "session_id", id, "mode", sess.Mode)
		}
	}
	return reaped
}

// Close stops the background reaper. Safe to call multiple times.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.done)
		s.closed = true
	}
}

// touchLocked bumps last activity. Must hold mu. The timestamp is
// monotonically non-decreasing even if the wall clock steps backwards.
func (s *Store) touchLocked(sess *Session) {
	if now := time.Now(); now.After(sess.LastActivity) {
		sess.LastActivity = now
	}
}

// reapLoop runs until Close, reaping on a fixed interval.
func (s *Store) reapLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ReapExpired(s.maxAge)
		case <-s.done:
			return
		}
	}
}
