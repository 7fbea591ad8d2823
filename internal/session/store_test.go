// ABOUTME: Tests for the session store: history cap, mode switches, reaper,
// ABOUTME: absent-session no-ops, and concurrency safety.

package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/internal/mode"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s := NewStore(mode.NewEngine(), nil, opts)
	t.Cleanup(s.Close)
	return s
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t, Options{})

	id := store.Create(mode.Chat, mode.Config{})
	require.NotEmpty(t, id)

	sess, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, mode.Chat, sess.Mode)
	assert.NotNil(t, sess.Context.Chat)
	assert.Empty(t, sess.History)
	assert.False(t, sess.CreatedAt.IsZero())
	assert.Equal(t, sess.CreatedAt, sess.LastActivity)
}

func TestStore_Get_Unknown(t *testing.T) {
	store := newTestStore(t, Options{})

	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestStore_Get_ReturnsSnapshot(t *testing.T) {
	store := newTestStore(t, Options{})
	id := store.Create(mode.Chat, mode.Config{})
	store.AppendTurn(id, RoleUser, "hello")

	snap, ok := store.Get(id)
	require.True(t, ok)

	// Mutating the snapshot must not affect the stored session
	snap.History[0].Text = "tampered"
	snap.Context.Chat.EmotionalTone = "grumpy"

	fresh, _ := store.Get(id)
	assert.Equal(t, "hello", fresh.History[0].Text)
	assert.Equal(t, "friendly", fresh.Context.Chat.EmotionalTone)
}

func TestStore_AppendTurn_HistoryCap(t *testing.T) {
	store := newTestStore(t, Options{})
	id := store.Create(mode.Chat, mode.Config{})

	for i := 0; i < 40; i++ {
		store.AppendTurn(id, RoleUser, fmt.Sprintf("turn-%d", i))
	}

	sess, ok := store.Get(id)
	require.True(t, ok)
	require.Len(t, sess.History, DefaultHistoryLimit)

	// Most recent 30 in original relative order
	for i, turn := range sess.History {
		assert.Equal(t, fmt.Sprintf("turn-%d", i+10), turn.Text)
	}
}

func TestStore_AppendTurn_UnknownSessionNoOp(t *testing.T) {
	store := newTestStore(t, Options{})

	assert.NotPanics(t, func() {
		store.AppendTurn("ghost", RoleAI, "hello?")
	})
}

func TestStore_AppendTurn_BumpsLastActivity(t *testing.T) {
	store := newTestStore(t, Options{})
	id := store.Create(mode.Chat, mode.Config{})

	before, _ := store.Get(id)
	time.Sleep(2 * time.Millisecond)
	store.AppendTurn(id, RoleUser, "ping")

	after, _ := store.Get(id)
	assert.True(t, after.LastActivity.After(before.LastActivity))
}

func TestStore_ChangeMode_DiscardsContext(t *testing.T) {
	store := newTestStore(t, Options{})
	id := store.Create(mode.Chat, mode.Config{Preferences: map[string]string{"name": "Sam"}})
	store.AppendTurn(id, RoleUser, "hi")

	store.ChangeMode(id, mode.Debate, mode.Config{Topic: "X"})

	sess, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, mode.Debate, sess.Mode)
	require.NotNil(t, sess.Context.Debate)
	assert.Equal(t, "X", sess.Context.Debate.Topic)

	// No residual chat fields
	assert.Nil(t, sess.Context.Chat)
	assert.Nil(t, sess.Context.Interview)

	// History survives a mode change
	assert.Len(t, sess.History, 1)
}

func TestStore_ChangeMode_UnknownSessionNoOp(t *testing.T) {
	store := newTestStore(t, Options{})

	assert.NotPanics(t, func() {
		store.ChangeMode("ghost", mode.Interview, mode.Config{})
	})
}

func TestStore_MergeContext(t *testing.T) {
	store := newTestStore(t, Options{})
	id := store.Create(mode.Interview, mode.Config{TotalQuestions: 5})

	two := 2
	store.MergeContext(id, mode.Patch{QuestionIndex: &two})

	sess, _ := store.Get(id)
	require.NotNil(t, sess.Context.Interview)
	assert.Equal(t, 2, sess.Context.Interview.QuestionIndex)

	// Untouched fields survive the merge
	assert.Equal(t, 5, sess.Context.Interview.TotalQuestions)
}

func TestStore_MergeContext_UnknownSessionNoOp(t *testing.T) {
	store := newTestStore(t, Options{})

	one := 1
	assert.NotPanics(t, func() {
		store.MergeContext("ghost", mode.Patch{QuestionIndex: &one})
	})
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t, Options{})
	id := store.Create(mode.Chat, mode.Config{})

	store.Delete(id)

	_, ok := store.Get(id)
	assert.False(t, ok)

	// Deleting again is a no-op
	assert.NotPanics(t, func() { store.Delete(id) })
}

func TestStore_OperationsAfterDeleteNoOp(t *testing.T) {
	store := newTestStore(t, Options{})
	id := store.Create(mode.Chat, mode.Config{})
	store.Delete(id)

	assert.NotPanics(t, func() {
		store.AppendTurn(id, RoleUser, "anyone there?")
		store.ChangeMode(id, mode.Debate, mode.Config{})
		store.MergeContext(id, mode.Patch{})
	})
	_, ok := store.Get(id)
	assert.False(t, ok)
}

func TestStore_ReapExpired(t *testing.T) {
	store := newTestStore(t, Options{ReapInterval: time.Hour})

	oldID := store.Create(mode.Chat, mode.Config{})
	youngID := store.Create(mode.Chat, mode.Config{})

	// Age the first session directly under the lock
	store.mu.Lock()
	store.sessions[oldID].LastActivity = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	reaped := store.ReapExpired(time.Hour)
	assert.Equal(t, 1, reaped)

	_, ok := store.Get(oldID)
	assert.False(t, ok)
	_, ok = store.Get(youngID)
	assert.True(t, ok)
}

func TestStore_ReapExpired_BoundaryExclusive(t *testing.T) {
	store := newTestStore(t, Options{ReapInterval: time.Hour})
	id := store.Create(mode.Chat, mode.Config{})

	// The boundary is exclusive: idle time equal to maxAge survives.
	// A small margin absorbs the clock reads between here and the reap.
	maxAge := time.Hour
	store.mu.Lock()
	store.sessions[id].LastActivity = time.Now().Add(-maxAge + 50*time.Millisecond)
	store.mu.Unlock()

	reaped := store.ReapExpired(maxAge)
	assert.Zero(t, reaped)

	_, ok := store.Get(id)
	assert.True(t, ok)
}

func TestStore_ReapLoop_RunsAutonomously(t *testing.T) {
	store := newTestStore(t, Options{MaxAge: 20 * time.Millisecond, ReapInterval: 10 * time.Millisecond})
	id := store.Create(mode.Chat, mode.Config{})

	assert.Eventually(t, func() bool {
		_, ok := store.Get(id)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestStore_Close_Idempotent(t *testing.T) {
	store := NewStore(mode.NewEngine(), nil, Options{})

	assert.NotPanics(t, func() {
		store.Close()
		store.Close()
	})
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := newTestStore(t, Options{})
	id := store.Create(mode.Chat, mode.Config{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				store.AppendTurn(id, RoleUser, fmt.Sprintf("g%d-%d", n, j))
				store.Get(id)
			}
		}(i)
	}
	wg.Wait()

	sess, ok := store.Get(id)
	require.True(t, ok)
	assert.Len(t, sess.History, DefaultHistoryLimit)
}

func TestRecentHistory(t *testing.T) {
	sess := Session{}
	for i := 0; i < 15; i++ {
		sess.History = append(sess.History, Turn{Role: RoleUser, Text: fmt.Sprintf("t%d", i)})
	}

	recent := sess.RecentHistory(10)
	require.Len(t, recent, 10)
	assert.Equal(t, "t5", recent[0].Text)
	assert.Equal(t, "t14", recent[9].Text)

	// Shorter history is returned whole
	short := Session{History: []Turn{{Text: "only"}}}
	assert.Len(t, short.RecentHistory(10), 1)
}
