// ABOUTME: Session and Turn data model for the conversational relay.
// ABOUTME: Turns are immutable once appended; history is bounded FIFO.

package session

import (
	"time"

	"github.com/parleyhq/parley/internal/mode"
)

// Role tags a turn's author.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Turn is one utterance in a session's history. Immutable once appended;
// it is only ever evicted, never edited.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the unit of stateful conversation. The Store is the only
// owner of live Session records; everything handed to callers is a copy.
type Session struct {
	ID           string       `json:"sessionId"`
	Mode         mode.Mode    `json:"mode"`
	History      []Turn       `json:"history"`
	Context      mode.Context `json:"context"`
	CreatedAt    time.Time    `json:"createdAt"`
	LastActivity time.Time    `json:"lastActivity"`
}

// snapshot returns a copy safe to hand outside the store lock.
func (s *Session) snapshot() Session {
	out := *s
	out.History = append([]Turn(nil), s.History...)
	out.Context = s.Context.Clone()
	return out
}

// RecentHistory returns up to n of the most recent turns, oldest first.
func (s *Session) RecentHistory(n int) []Turn {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
