// Package gateway wires the HTTP surface and owns the server lifecycle.
//
// Two surfaces share one listener:
//
//   - the stateless REST control plane: health probe, session creation,
//     mode change, and history fetch
//   - the WebSocket endpoint at /ws/{clientId} handled by internal/relay
//
// Run blocks until the context is cancelled, then shuts the HTTP server
// down gracefully and closes the session store (which stops the reaper).
package gateway
