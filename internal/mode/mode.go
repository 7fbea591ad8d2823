// ABOUTME: Conversation mode enum and the per-mode context variants.
// ABOUTME: Context is a tagged union; exactly one variant is set at a time.

package mode

// Mode identifies a conversation mode.
type Mode string

const (
	Chat      Mode = "chat"
	Interview Mode = "interview"
	Debate    Mode = "debate"
)

// Normalize maps a client-supplied mode string to a known Mode.
// Unknown or empty values fall back to Chat, matching the behavior
// clients already depend on.
func Normalize(s string) Mode {
	switch Mode(s) {
	case Interview:
		return Interview
	case Debate:
		return Debate
	default:
		return Chat
	}
}

// Config carries the recognized per-mode options a client may send when
// creating a session or switching modes. Fields irrelevant to the target
// mode are ignored.
type Config struct {
	Role           string            `json:"role,omitempty"`
	Company        string            `json:"company,omitempty"`
	TotalQuestions int               `json:"totalQuestions,omitempty"`
	Topic          string            `json:"topic,omitempty"`
	Stance         string            `json:"stance,omitempty"`
	Preferences    map[string]string `json:"preferences,omitempty"`
}

// Context is the mode-specific session context. Exactly one variant is
// non-nil, and which one is always consistent with the session's mode.
type Context struct {
	Chat      *ChatContext      `json:"chat,omitempty"`
	Interview *InterviewContext `json:"interview,omitempty"`
	Debate    *DebateContext    `json:"debate,omitempty"`
}

// ChatContext is free-form companion state with no progression logic.
type ChatContext struct {
	Preferences   map[string]string `json:"preferences,omitempty"`
	EmotionalTone string            `json:"emotionalTone"`
}

// InterviewContext tracks progress through a fixed number of questions.
// QuestionIndex only ever increases and is clamped at TotalQuestions.
type InterviewContext struct {
	Role           string   `json:"role"`
	Company        string   `json:"company"`
	QuestionIndex  int      `json:"questionIndex"`
	TotalQuestions int      `json:"totalQuestions"`
	Scores         []int    `json:"scores"`
	Evaluations    []string `json:"evaluations"`
}

// DebateContext tracks the debate topic, the AI's stance, and a running
// log of argument previews (one entry per AI turn).
type DebateContext struct {
	Topic            string   `json:"topic"`
	Stance           string   `json:"stance"`
	ArgumentsMade    []string `json:"argumentsMade"`
	CounterArguments []string `json:"counterArguments"`
}

// Clone returns a deep copy of the context so callers can hand out
// snapshots without aliasing store-owned state.
func (c Context) Clone() Context {
	var out Context
	if c.Chat != nil {
		cc := *c.Chat
		cc.Preferences = cloneStringMap(c.Chat.Preferences)
		out.Chat = &cc
	}
	if c.Interview != nil {
		ic := *c.Interview
		ic.Scores = append([]int(nil), c.Interview.Scores...)
		ic.Evaluations = append([]string(nil), c.Interview.Evaluations...)
		out.Interview = &ic
	}
	if c.Debate != nil {
		dc := *c.Debate
		dc.ArgumentsMade = append([]string(nil), c.Debate.ArgumentsMade...)
		dc.CounterArguments = append([]string(nil), c.Debate.CounterArguments...)
		out.Debate = &dc
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Patch is a partial context update produced after a turn. Zero-value
// fields are left untouched when the patch is applied; it is a shallow
// merge, never a wholesale replacement.
type Patch struct {
	QuestionIndex *int     `json:"questionIndex,omitempty"`
	ArgumentsMade []string `json:"argumentsMade,omitempty"`
}

// IsZero reports whether applying the patch would change nothing.
func (p Patch) IsZero() bool {
	return p.QuestionIndex == nil && p.ArgumentsMade == nil
}

// Apply merges the patch into the context. Fields that do not belong to
// the active variant are ignored, so a stale patch racing a mode switch
// cannot corrupt the new context.
func (c *Context) Apply(p Patch) {
	if c.Interview != nil && p.QuestionIndex != nil {
		c.Interview.QuestionIndex = *p.QuestionIndex
	}
	if c.Debate != nil && p.ArgumentsMade != nil {
		c.Debate.ArgumentsMade = append([]string(nil), p.ArgumentsMade...)
	}
}
