// Package session owns all conversation session state.
//
// # Store
//
// The Store is the single owner of every Session record. All access goes
// through its methods under one coarse mutex; no other component ever
// holds a live reference to a Session, only its id. Reads hand out
// snapshot copies.
//
//	store := session.NewStore(engine, logger, session.Options{})
//	defer store.Close()
//
//	id := store.Create(mode.Chat, mode.Config{})
//	store.AppendTurn(id, session.RoleUser, "hello")
//
// Operations on an unknown or deleted session id are silent no-ops, never
// errors. Callers that need to distinguish absence branch on the second
// return value of Get.
//
// # Reaper
//
// NewStore starts a background reaper that removes sessions idle beyond
// the configured max age. The reaper is owned by the store lifecycle:
// Close stops it. The staleness boundary is exclusive: a session whose
// idle time equals the max age exactly is retained.
package session
