// Package catalog holds the authoritative in-memory property collection for a
// browsing session.
//
// # Overview
//
// Three producers feed the Store and one consumer reads it:
//
//	Producers:                         Consumer (UI):
//	┌──────────────────────┐          ┌───────────────────┐
//	│ HydrateFromCache()   │          │                   │
//	│ LoadFromRemote(ctx)  │─────────→│ store.Snapshot()  │
//	│ ApplyAdded/Updated/  │  (mutex) │ store.Lookup(id)  │
//	│   Deleted(raw)       │          │                   │
//	└──────────────────────┘          └───────────────────┘
//
// Every mutation takes the write lock, so mutations never interleave and
// apply in the order they reach the store. A remote load does its network I/O
// outside the lock and only takes it to swap the result in.
//
// # Mutation Semantics
//
//	HydrateFromCache  adopt the cached snapshot if nothing newer exists
//	LoadFromRemote    replace the whole snapshot on success, keep it on error
//	ApplyAdded        prepend, duplicates allowed
//	ApplyUpdated      replace matching entries in place, ignore unknown ids
//	ApplyDeleted      remove matching entries, no-op when absent
//
// Each applied mutation bumps Snapshot.Version and writes the full collection
// to the Mirror. Mirror failures are the Mirror's business and never reach the
// caller.
//
// # Known Race
//
// A push event that arrives while a remote load is in flight is applied
// immediately. When the load completes it replaces the snapshot wholesale,
// so the pushed change is lost unless the backend already included it. This
// is accepted: the remote collection is the source of truth and the next
// push for that listing repairs the view.
//
// # Change Notification
//
// Subscribe hands out a buffered channel that carries the latest version
// after each change. The UI uses it to re-render without polling; a reader
// that falls behind only ever sees the newest version.
package catalog
