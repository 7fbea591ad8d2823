// ABOUTME: Coordinator drives one conversation turn end to end.
// ABOUTME: Snapshot from store, call collaborators lock-free, write back, emit events.

package conversation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/mode"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/tts"
)

// recentTurns is how many trailing history turns are sent to the LLM.
const recentTurns = 10

// Completer defines what the coordinator needs from the LLM collaborator.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []llm.Message, userText string) (string, error)
	CompleteSeed(ctx context.Context, systemPrompt, seed string) (string, error)
}

// Synthesizer defines what the coordinator needs from the TTS collaborator.
type Synthesizer interface {
	Synthesize(text string) tts.Audio
}

// Coordinator orchestrates turns between the session store, the mode
// engine, and the external collaborators. It never mutates session state
// directly; every write goes through the store.
type Coordinator struct {
	store  *session.Store
	engine *mode.Engine
	llm    Completer
	tts    Synthesizer
	logger *slog.Logger
}

// New creates a Coordinator. Pass nil logger for the default.
func New(store *session.Store, engine *mode.Engine, completer Completer, synth Synthesizer, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:  store,
		engine: engine,
		llm:    completer,
		tts:    synth,
		logger: logger.With("component", "conversation"),
	}
}

// HandleInit resolves or creates a session, generates the opening
// greeting, and returns the session id plus the two ordered events the
// transport contract requires: session-ready, then ai-response.
//
// A failed greeting call falls back to the mode's canned utterance rather
// than surfacing an error; a fresh session always greets.
func (c *Coordinator) HandleInit(ctx context.Context, sessionID string, m mode.Mode, cfg mode.Config) (string, []Event) {
	if _, ok := c.store.Get(sessionID); sessionID == "" || !ok {
		sessionID = c.store.Create(m, cfg)
	}

	greeting := c.generateGreeting(ctx, m, cfg)
	c.store.AppendTurn(sessionID, session.RoleAI, greeting)

	audio := c.tts.Synthesize(greeting)

	c.logger.Info("session initialized", "session_id", sessionID, "mode", m)

	return sessionID, []Event{
		{Type: EventSessionReady, SessionID: sessionID, Mode: m, Greeting: greeting},
		NewAIResponse(greeting, audio, nil),
	}
}

// HandleTurn processes one user utterance. Empty input after trimming is
// ignored entirely: no turn recorded, no events emitted.
func (c *Coordinator) HandleTurn(ctx context.Context, sessionID, userText string) []Event {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil
	}

	c.store.AppendTurn(sessionID, session.RoleUser, userText)

	// Snapshot after the append so the history handed to the LLM includes
	// the new user turn. The store lock is not held past this point.
	sess, ok := c.store.Get(sessionID)
	if !ok {
		return []Event{NewError("session not found", "")}
	}

	systemPrompt := c.engine.SystemPrompt(sess.Mode, sess.Context)
	history := toMessages(sess.RecentHistory(recentTurns))

	reply, err := c.llm.Complete(ctx, systemPrompt, history, userText)
	if err != nil {
		c.logger.Error("completion failed", "session_id", sessionID, "error", err)
		return []Event{NewError("Error processing your message", err.Error())}
	}

	patch := c.engine.PostTurnUpdate(sess.Mode, sess.Context, userText, reply)
	var modeData *mode.Patch
	if !patch.IsZero() {
		c.store.MergeContext(sessionID, patch)
		modeData = &patch
	}
	c.store.AppendTurn(sessionID, session.RoleAI, reply)

	audio := c.tts.Synthesize(reply)

	c.logger.Debug("turn completed", "session_id", sessionID, "mode", sess.Mode)

	return []Event{NewAIResponse(reply, audio, modeData)}
}

// HandleModeChange switches an existing session to a new mode and emits
// mode-changed followed by ai-response. An unknown session yields a single
// error event and mutates nothing.
func (c *Coordinator) HandleModeChange(ctx context.Context, sessionID string, m mode.Mode, cfg mode.Config) []Event {
	if _, ok := c.store.Get(sessionID); !ok {
		return []Event{NewError("session not found", "")}
	}

	c.store.ChangeMode(sessionID, m, cfg)

	transition := c.engine.TransitionMessage(m, cfg)
	c.store.AppendTurn(sessionID, session.RoleAI, transition)

	audio := c.tts.Synthesize(transition)

	return []Event{
		{Type: EventModeChanged, Mode: m, Message: transition},
		NewAIResponse(transition, audio, nil),
	}
}

// generateGreeting asks the LLM for an opening utterance, falling back to
// the mode's canned greeting when the call fails or the client is not
// configured.
func (c *Coordinator) generateGreeting(ctx context.Context, m mode.Mode, cfg mode.Config) string {
	systemPrompt := c.engine.SystemPrompt(m, c.engine.InitialContext(m, cfg))
	greeting, err := c.llm.CompleteSeed(ctx, systemPrompt, c.engine.GreetingPrompt(m, cfg))
	if err != nil || greeting == "" {
		if err != nil {
			c.logger.Warn("greeting generation failed, using fallback", "mode", m, "error", err)
		}
		return c.engine.GreetingFallback(m, cfg)
	}
	return greeting
}

// toMessages converts history turns to LLM wire messages.
func toMessages(turns []session.Turn) []llm.Message {
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := "assistant"
		if t.Role == session.RoleUser {
			role = "user"
		}
		out = append(out, llm.Message{Role: role, Content: t.Text})
	}
	return out
}
