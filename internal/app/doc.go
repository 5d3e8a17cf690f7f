// Package app is the composition root for nestview.
//
// # Overview
//
// Open builds a Runtime holding every long-lived collaborator of a session;
// Run wraps it with a file logger and the Bubble Tea UI. Subcommands that only
// need a piece of the runtime (the API client or the cache) construct it
// directly instead.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> logging.New()            Rotating file logger (+ Fluentd)
//	       ├─────> Open()
//	       │         ├─> metrics.New/Serve  /metrics when metrics_addr is set
//	       │         ├─> cache.OpenBackend  file, sqlite or memory
//	       │         ├─> catalog.New        Store mirrored by the cache
//	       │         ├─> HydrateFromCache   Paint from the last session
//	       │         ├─> LoadFromRemote     One background load, no retry
//	       │         ├─> live.NewHub        Socket.IO or AMQP transport
//	       │         └─> subscribeEvents    Push events into the store
//	       └─────> ui.Run()                 Blocks until quit
//
// # Teardown
//
// Runtime.Close unsubscribes every handler, closes the shared push
// connection and then the cache backend. Run flushes the Fluentd sink last.
//
// # Degradation
//
// Only a malformed API URL or log configuration stops startup. An unusable
// cache directory falls back to an in-memory backend, and an unusable push
// endpoint leaves the catalog static for the session.
package app
