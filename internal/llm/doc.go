// Package llm is the Groq LLM collaborator.
//
// Groq exposes an OpenAI-compatible chat completions API, so the client is
// a thin HTTP wrapper: system prompt plus recent history in, one reply
// string out. Failures are explicit error returns; the coordinator
// handles them at the call site, nothing propagates as a process fault.
//
// Every call carries a bounded timeout so a stalled upstream cannot wedge
// a connection's turn processing. There is no retry; a failed call is
// reported once and the turn is simply not recorded.
package llm
