package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nestingglobal/nestview/internal/catalog"
)

const remoteLoadTimeout = 15 * time.Second

// loadInBackground runs the one initial remote load without blocking
// startup. The returned channel receives its result and is never closed.
func loadInBackground(ctx context.Context, store *catalog.Store, logger *slog.Logger) <-chan error {
	done := make(chan error, 1)
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, remoteLoadTimeout)
		defer cancel()
		start := time.Now()
		err := store.LoadFromRemote(loadCtx)
		logger.Debug("initial remote load finished", "elapsed", time.Since(start).Round(time.Millisecond), "ok", err == nil)
		done <- err
	}()
	return done
}
