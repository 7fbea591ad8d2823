// ABOUTME: Outbound event types pushed to clients over the transport.
// ABOUTME: One Event struct with a type discriminator, JSON-shaped for the wire.

package conversation

import (
	"time"

	"github.com/parleyhq/parley/internal/mode"
	"github.com/parleyhq/parley/internal/tts"
)

// Outbound event type discriminators.
const (
	EventSessionReady = "session-ready"
	EventAIResponse   = "ai-response"
	EventModeChanged  = "mode-changed"
	EventAIThinking   = "ai-thinking"
	EventAIStopped    = "ai-stopped"
	EventError        = "error"
)

// Event is one outbound message to a client. Which fields are populated
// depends on Type.
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Mode      mode.Mode   `json:"mode,omitempty"`
	Greeting  string      `json:"greeting,omitempty"`
	Text      string      `json:"text,omitempty"`
	Audio     *tts.Audio  `json:"audio,omitempty"`
	ModeData  *mode.Patch `json:"modeData,omitempty"`
	Message   string      `json:"message,omitempty"`
	Status    string      `json:"status,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"` // unix ms
}

// NewAIResponse builds an ai-response event carrying the reply text,
// its speech metadata, and an optional mode-context patch.
func NewAIResponse(text string, audio tts.Audio, patch *mode.Patch) Event {
	return Event{
		Type:      EventAIResponse,
		Text:      text,
		Audio:     &audio,
		ModeData:  patch,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewError builds an error event with a human-readable message and an
// optional underlying cause.
func NewError(message, cause string) Event {
	return Event{Type: EventError, Message: message, Error: cause}
}

// NewThinking builds the ai-thinking status event emitted while a reply
// is being generated.
func NewThinking() Event {
	return Event{Type: EventAIThinking, Status: "generating"}
}

// NewStopped builds the ai-stopped acknowledgment. Stopping does not
// cancel in-flight generation server-side; it only notifies the client.
func NewStopped() Event {
	return Event{Type: EventAIStopped}
}
