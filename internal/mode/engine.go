// ABOUTME: Engine builds initial mode contexts and computes post-turn patches.
// ABOUTME: PostTurnUpdate is pure; all session mutation happens in the store.

package mode

import "strings"

// Defaults used when a client config omits an option.
const (
	DefaultRole           = "Software Engineer"
	DefaultCompany        = "a leading tech company"
	DefaultTotalQuestions = 5
	DefaultTopic          = "AI in society"
	DefaultStance         = "PRO"
)

// DefaultArgumentPreviewLen is how many characters of an AI debate reply
// are kept in the ArgumentsMade log. A display heuristic, not an invariant.
const DefaultArgumentPreviewLen = 50

// Engine holds the mode policy: initial context shapes, prompt templates,
// and the post-turn update rules.
type Engine struct {
	// ArgumentPreviewLen overrides DefaultArgumentPreviewLen when > 0.
	ArgumentPreviewLen int
}

// NewEngine returns an Engine with default policy.
func NewEngine() *Engine {
	return &Engine{ArgumentPreviewLen: DefaultArgumentPreviewLen}
}

// InitialContext builds the context variant for a mode from a client config,
// filling in documented defaults for missing options.
func (e *Engine) InitialContext(m Mode, cfg Config) Context {
	switch m {
	case Interview:
		return Context{Interview: &InterviewContext{
			Role:           orDefault(cfg.Role, DefaultRole),
			Company:        orDefault(cfg.Company, DefaultCompany),
			QuestionIndex:  0,
			TotalQuestions: orDefaultInt(cfg.TotalQuestions, DefaultTotalQuestions),
			Scores:         []int{},
			Evaluations:    []string{},
		}}
	case Debate:
		return Context{Debate: &DebateContext{
			Topic:            orDefault(cfg.Topic, DefaultTopic),
			Stance:           orDefault(cfg.Stance, DefaultStance),
			ArgumentsMade:    []string{},
			CounterArguments: []string{},
		}}
	default:
		return Context{Chat: &ChatContext{
			Preferences:   cloneStringMap(cfg.Preferences),
			EmotionalTone: "friendly",
		}}
	}
}

// PostTurnUpdate computes the context patch for one completed turn. It has
// no side effects; the caller decides whether and where to apply the patch.
//
// Policy: interview advances the question index by one when the AI reply
// contains a question mark, clamped at the total; debate logs a truncated
// preview of the AI reply; chat has no progression.
func (e *Engine) PostTurnUpdate(m Mode, ctx Context, userText, aiText string) Patch {
	switch m {
	case Interview:
		if ctx.Interview == nil || !strings.Contains(aiText, "?") {
			return Patch{}
		}
		next := ctx.Interview.QuestionIndex + 1
		if next > ctx.Interview.TotalQuestions {
			next = ctx.Interview.TotalQuestions
		}
		return Patch{QuestionIndex: &next}
	case Debate:
		if ctx.Debate == nil {
			return Patch{}
		}
		made := append([]string(nil), ctx.Debate.ArgumentsMade...)
		made = append(made, truncate(aiText, e.previewLen()))
		return Patch{ArgumentsMade: made}
	default:
		return Patch{}
	}
}

func (e *Engine) previewLen() int {
	if e.ArgumentPreviewLen > 0 {
		return e.ArgumentPreviewLen
	}
	return DefaultArgumentPreviewLen
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
