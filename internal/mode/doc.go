// Package mode defines the conversation modes and the engine that drives them.
//
// A session is always in exactly one of three modes: chat, interview, or
// debate. Each mode carries its own context variant (Context is a tagged
// union with one pointer per variant) and its own prompt templates.
//
// The Engine is stateless. It builds the initial context for a mode from a
// client-supplied Config, produces the system prompt sent to the LLM, and
// computes the pure post-turn context patch:
//
//	engine := mode.NewEngine()
//	ctx := engine.InitialContext(mode.Interview, cfg)
//	patch := engine.PostTurnUpdate(mode.Interview, ctx, userText, aiText)
//
// Mode switches always replace the context wholesale; variants are never
// merged across mode types.
package mode
