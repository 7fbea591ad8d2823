// Package conversation orchestrates single conversation turns.
//
// The Coordinator sits between the transport layer and the session store.
// For each inbound client event it reads a session snapshot, calls the LLM
// and TTS collaborators with no store lock held, writes results back, and
// assembles the ordered outbound events the transport pushes to the client.
//
// Key operations:
//
//   - HandleInit: create or resume a session and produce the greeting
//   - HandleTurn: one user utterance in, one AI reply (or error event) out
//   - HandleModeChange: switch modes and produce the transition utterance
//
// Failure isolation: an LLM error becomes a single error outbound event.
// The failed turn leaves no partial writes: the user's turn is kept, no
// AI turn is appended, and the mode context is untouched.
package conversation
