// ABOUTME: WebSocket handler tests: full event round-trips against an
// ABOUTME: httptest server using the gorilla dialer as the client.

package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/internal/conversation"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/mode"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/tts"
)

// scriptedLLM returns fixed replies for the handler tests.
type scriptedLLM struct {
	reply string
	err   error
}

func (s *scriptedLLM) Complete(context.Context, string, []llm.Message, string) (string, error) {
	return s.reply, s.err
}

func (s *scriptedLLM) CompleteSeed(context.Context, string, string) (string, error) {
	return "Hello from the test greeter!", nil
}

type wsFixture struct {
	store *session.Store
	srv   *httptest.Server
	conn  *websocket.Conn
}

func newWSFixture(t *testing.T, fake *scriptedLLM) *wsFixture {
	t.Helper()

	engine := mode.NewEngine()
	store := session.NewStore(engine, nil, session.Options{})
	t.Cleanup(store.Close)

	coord := conversation.New(store, engine, fake, tts.New(), nil)
	reg := NewRegistry(nil)
	handler := NewHandler(reg, coord, nil, nil)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/test-client"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &wsFixture{store: store, srv: srv, conn: conn}
}

func (f *wsFixture) send(t *testing.T, ev ClientEvent) {
	t.Helper()
	require.NoError(t, f.conn.WriteJSON(ev))
}

func (f *wsFixture) recv(t *testing.T) conversation.Event {
	t.Helper()
	f.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev conversation.Event
	require.NoError(t, f.conn.ReadJSON(&ev))
	return ev
}

func TestHandler_RejectsMissingClientID(t *testing.T) {
	handler := NewHandler(NewRegistry(nil), nil, nil, nil)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_InitSession(t *testing.T) {
	f := newWSFixture(t, &scriptedLLM{reply: "ok"})

	f.send(t, ClientEvent{Type: "init-session", Mode: "interview", Config: mode.Config{Role: "SRE"}})

	ready := f.recv(t)
	assert.Equal(t, conversation.EventSessionReady, ready.Type)
	assert.NotEmpty(t, ready.SessionID)
	assert.Equal(t, mode.Interview, ready.Mode)
	assert.Equal(t, "Hello from the test greeter!", ready.Greeting)

	response := f.recv(t)
	assert.Equal(t, conversation.EventAIResponse, response.Type)
	assert.Equal(t, ready.Greeting, response.Text)

	_, ok := f.store.Get(ready.SessionID)
	assert.True(t, ok)
}

func TestHandler_TextMessageFlow(t *testing.T) {
	f := newWSFixture(t, &scriptedLLM{reply: "A fine question!"})

	f.send(t, ClientEvent{Type: "init-session", Mode: "chat"})
	f.recv(t) // session-ready
	f.recv(t) // greeting ai-response

	f.send(t, ClientEvent{Type: "text-message", Text: "what do you think?"})

	thinking := f.recv(t)
	assert.Equal(t, conversation.EventAIThinking, thinking.Type)
	assert.Equal(t, "generating", thinking.Status)

	response := f.recv(t)
	assert.Equal(t, conversation.EventAIResponse, response.Type)
	assert.Equal(t, "A fine question!", response.Text)
	require.NotNil(t, response.Audio)
	assert.Equal(t, "text", response.Audio.Format)
}

func TestHandler_TextMessageWithoutSessionIgnored(t *testing.T) {
	f := newWSFixture(t, &scriptedLLM{reply: "never"})

	f.send(t, ClientEvent{Type: "text-message", Text: "hello?"})
	f.send(t, ClientEvent{Type: "stop-ai"})

	// Only the stop acknowledgment arrives; the orphan text was dropped
	ev := f.recv(t)
	assert.Equal(t, conversation.EventAIStopped, ev.Type)
}

func TestHandler_BlankTextIgnored(t *testing.T) {
	f := newWSFixture(t, &scriptedLLM{reply: "never"})

	f.send(t, ClientEvent{Type: "init-session", Mode: "chat"})
	f.recv(t)
	f.recv(t)

	f.send(t, ClientEvent{Type: "text-message", Text: "   "})
	f.send(t, ClientEvent{Type: "stop-ai"})

	// No ai-thinking for the blank send
	ev := f.recv(t)
	assert.Equal(t, conversation.EventAIStopped, ev.Type)
}

func TestHandler_ChangeMode(t *testing.T) {
	f := newWSFixture(t, &scriptedLLM{reply: "ok"})

	f.send(t, ClientEvent{Type: "init-session", Mode: "chat"})
	f.recv(t)
	f.recv(t)

	f.send(t, ClientEvent{Type: "change-mode", Mode: "debate", Config: mode.Config{Topic: "AI art"}})

	changed := f.recv(t)
	assert.Equal(t, conversation.EventModeChanged, changed.Type)
	assert.Equal(t, mode.Debate, changed.Mode)
	assert.Contains(t, changed.Message, "AI art")

	response := f.recv(t)
	assert.Equal(t, conversation.EventAIResponse, response.Type)
}

func TestHandler_ChangeModeWithoutSession(t *testing.T) {
	f := newWSFixture(t, &scriptedLLM{})

	f.send(t, ClientEvent{Type: "change-mode", Mode: "debate"})

	ev := f.recv(t)
	assert.Equal(t, conversation.EventError, ev.Type)
	assert.Equal(t, "No active session", ev.Message)
}

func TestHandler_LLMFailureEmitsErrorEvent(t *testing.T) {
	fake := &scriptedLLM{err: errors.New("upstream exploded")}
	f := newWSFixture(t, fake)

	f.send(t, ClientEvent{Type: "init-session", Mode: "chat"})
	ready := f.recv(t)
	f.recv(t)

	f.send(t, ClientEvent{Type: "text-message", Text: "hi"})
	f.recv(t) // ai-thinking

	ev := f.recv(t)
	assert.Equal(t, conversation.EventError, ev.Type)
	assert.Contains(t, ev.Error, "upstream exploded")

	// User turn recorded, no AI turn
	sess, ok := f.store.Get(ready.SessionID)
	require.True(t, ok)
	require.Len(t, sess.History, 2) // greeting + user turn
	assert.Equal(t, session.RoleUser, sess.History[1].Role)
}

func TestHandler_MalformedFrameSkipped(t *testing.T) {
	f := newWSFixture(t, &scriptedLLM{})

	require.NoError(t, f.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	f.send(t, ClientEvent{Type: "stop-ai"})

	ev := f.recv(t)
	assert.Equal(t, conversation.EventAIStopped, ev.Type)
}

func TestHandler_UnknownEventIgnored(t *testing.T) {
	f := newWSFixture(t, &scriptedLLM{})

	f.send(t, ClientEvent{Type: "jazz-hands"})
	f.send(t, ClientEvent{Type: "stop-ai"})

	ev := f.recv(t)
	assert.Equal(t, conversation.EventAIStopped, ev.Type)
}
