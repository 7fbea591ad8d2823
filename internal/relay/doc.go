// Package relay manages live client connections and the WebSocket
// transport.
//
// # Registry
//
// The Registry maps a connection id to the session it is bound to and to
// the push handle used to deliver outbound events. Connect and Disconnect
// are idempotent bookkeeping; Push on a connection that is already gone is
// a silent no-op, so pushes racing a disconnect never fail.
//
// # Transport
//
// The Handler upgrades /ws/{clientId} requests and runs one reader
// goroutine per connection. A connection's inbound events are dispatched
// strictly in arrival order; no two turns for the same connection run
// concurrently. Writes are serialized per connection by the push handle.
package relay
