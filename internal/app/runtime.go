package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nestingglobal/nestview/internal/cache"
	"github.com/nestingglobal/nestview/internal/catalog"
	"github.com/nestingglobal/nestview/internal/config"
	"github.com/nestingglobal/nestview/internal/live"
	"github.com/nestingglobal/nestview/internal/metrics"
	"github.com/nestingglobal/nestview/internal/nestapi"
)

// contactBuffer bounds live contacts waiting for the UI.
const contactBuffer = 16

// OpenOptions tune Open.
type OpenOptions struct {
	Logger *slog.Logger
	// PushEndpoint overrides the endpoint derived from the config.
	PushEndpoint string
	// Transport replaces the transport NewTransport would pick.
	Transport live.Transport
	// SkipRemoteLoad leaves the snapshot as hydrated from the cache.
	SkipRemoteLoad bool
}

// Runtime owns every long-lived collaborator of a session.
type Runtime struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Collector
	Backend  cache.Backend
	Cache    *cache.Cache
	Client   *nestapi.Client
	Store    *catalog.Store
	Hub      *live.Hub
	Contacts <-chan nestapi.Contact

	// Loaded yields the result of the initial remote load once.
	Loaded <-chan error

	unsubscribe []func()
}

// Open wires the session in dependency order: metrics, cache backend, store
// (hydrated from the cache), background remote load, live hub and event
// subscriptions. Failures of the cache or push channel degrade the session
// rather than abort it.
func Open(ctx context.Context, cfg config.Config, opts OpenOptions) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rt := &Runtime{Config: cfg, Logger: logger}

	rt.Metrics = metrics.New()
	rt.Metrics.Serve(ctx, cfg.MetricsAddr, logger)

	backend, err := cache.OpenBackend(cfg.CacheBackend, cfg.CacheDir)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", "backend", cfg.CacheBackend, "error", err)
		backend = cache.NewMemoryBackend()
	}
	rt.Backend = backend
	rt.Cache = cache.New(backend, cache.Options{
		Compress: cfg.CacheCompress,
		Logger:   logger,
		Metrics:  rt.Metrics,
	})

	client, err := nestapi.NewClient(cfg.APIURL)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	rt.Client = client

	rt.Store = catalog.New(catalog.Options{
		Fetcher: client,
		Mirror:  rt.Cache,
		Logger:  logger,
		Metrics: rt.Metrics,
	})
	rt.Store.HydrateFromCache()

	if opts.SkipRemoteLoad {
		done := make(chan error, 1)
		done <- nil
		rt.Loaded = done
	} else {
		rt.Loaded = loadInBackground(ctx, rt.Store, logger)
	}

	transport := opts.Transport
	if transport == nil {
		endpoint := live.ResolveEndpoint(opts.PushEndpoint, cfg.PushEndpoint(), cfg.APIURL)
		transport, err = live.NewTransport(endpoint, live.TransportOptions{Logger: logger})
		if err != nil {
			logger.Warn("live updates disabled", "error", err)
		}
	}

	contacts := make(chan nestapi.Contact, contactBuffer)
	rt.Contacts = contacts
	if transport != nil {
		rt.Hub = live.NewHub(transport, live.HubOptions{Logger: logger, Metrics: rt.Metrics})
		rt.unsubscribe = subscribeEvents(rt.Hub, rt.Store, rt.Metrics, contacts, logger)
		rt.Hub.Start(ctx)
	}
	return rt, nil
}

// Close tears the session down in reverse: subscriptions, the push
// connection, then the cache backend.
func (rt *Runtime) Close() error {
	if rt == nil {
		return nil
	}
	for _, unsubscribe := range rt.unsubscribe {
		unsubscribe()
	}
	rt.unsubscribe = nil

	var errs []error
	if rt.Hub != nil {
		if err := rt.Hub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close push connection: %w", err))
		}
	}
	if rt.Backend != nil {
		if err := rt.Backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	return errors.Join(errs...)
}
