package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nestingglobal/nestview/internal/listing"
	"github.com/nestingglobal/nestview/internal/metrics"
)

// Source records where the current snapshot came from.
type Source string

const (
	SourceNone   Source = ""
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
	SourceLive   Source = "live"
)

// Snapshot is a read-only view of the catalog at one version.
type Snapshot struct {
	Listings            []listing.Listing
	Version             uint64
	Source              Source
	LastUpdated         time.Time
	LastError           error
	Loading             bool
	ConsecutiveFailures int
}

// IsOffline reports whether the last two remote loads failed.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Fetcher loads the full remote collection.
type Fetcher interface {
	FetchProperties(ctx context.Context) ([]listing.Listing, int, error)
}

// Mirror persists full snapshots. *cache.Cache implements it.
type Mirror interface {
	Save(items []listing.Listing)
	Load() []listing.Listing
}

// Outcome is the effect of a push event on the snapshot.
type Outcome int

const (
	Applied Outcome = iota
	Ignored
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Ignored:
		return "ignored"
	default:
		return "dropped"
	}
}

// ErrNoFetcher is returned by LoadFromRemote when the store has no Fetcher.
var ErrNoFetcher = errors.New("catalog has no fetcher")

// Options configure a Store.
type Options struct {
	Fetcher Fetcher
	Mirror  Mirror
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// Store is the single owner of the catalog snapshot. Mutations run one at a
// time under mu in the order they arrive; readers get copies.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot

	fetcher Fetcher
	mirror  Mirror
	logger  *slog.Logger
	metrics *metrics.Collector

	subsMu sync.Mutex
	subs   map[chan uint64]struct{}
}

// New creates an empty Store.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		fetcher: opts.Fetcher,
		mirror:  opts.Mirror,
		logger:  logger.With("component", "catalog"),
		metrics: opts.Metrics,
		subs:    make(map[chan uint64]struct{}),
	}
}

// HydrateFromCache adopts the mirrored snapshot when one exists and nothing
// newer has been applied yet. It returns the number of listings adopted.
func (s *Store) HydrateFromCache() int {
	if s.mirror == nil {
		return 0
	}
	items := s.mirror.Load()
	if len(items) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Version > 0 {
		s.logger.Debug("skipping cache hydration, snapshot already populated", "version", s.snapshot.Version)
		return 0
	}
	s.snapshot.Listings = items
	s.commitLocked(SourceCache, false)
	s.logger.Info("hydrated catalog from cache", "count", len(items))
	return len(items)
}

// LoadFromRemote fetches the remote collection and replaces the snapshot with
// it. On failure the snapshot is left as it was and the error is recorded and
// returned for diagnostics. There is no retry.
func (s *Store) LoadFromRemote(ctx context.Context) error {
	if s.fetcher == nil {
		return ErrNoFetcher
	}

	s.mu.Lock()
	s.snapshot.Loading = true
	s.mu.Unlock()
	s.notify(s.Version())

	items, dropped, err := s.fetcher.FetchProperties(ctx)
	s.metrics.FetchAttempted(err)
	s.metrics.RecordsDropped("remote", dropped)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Loading = false
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		s.logger.Warn("remote catalog load failed", "error", err, "failures", s.snapshot.ConsecutiveFailures)
		s.notifyLocked()
		return fmt.Errorf("load remote catalog: %w", err)
	}
	if items == nil {
		items = []listing.Listing{}
	}
	s.snapshot.Listings = items
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.commitLocked(SourceRemote, true)
	s.logger.Info("loaded remote catalog", "count", len(items), "dropped", dropped, "version", s.snapshot.Version)
	return nil
}

// ApplyAdded prepends the record. Identifiers already present are not
// de-duplicated.
func (s *Store) ApplyAdded(raw json.RawMessage) Outcome {
	l, err := listing.Canonicalize(raw)
	if err != nil {
		return s.drop("propertyAdded", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]listing.Listing, 0, len(s.snapshot.Listings)+1)
	next = append(next, l)
	next = append(next, s.snapshot.Listings...)
	s.snapshot.Listings = next
	s.commitLocked(SourceLive, true)
	return Applied
}

// ApplyUpdated replaces every entry sharing the record's identifier, in
// place. Records for unknown identifiers are ignored.
func (s *Store) ApplyUpdated(raw json.RawMessage) Outcome {
	l, err := listing.Canonicalize(raw)
	if err != nil {
		return s.drop("propertyUpdated", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	matched := false
	next := make([]listing.Listing, len(s.snapshot.Listings))
	for i, existing := range s.snapshot.Listings {
		if existing.ID == l.ID {
			next[i] = l.Clone()
			matched = true
			continue
		}
		next[i] = existing
	}
	if !matched {
		s.logger.Debug("update for unknown listing ignored", "id", l.ID)
		return Ignored
	}
	s.snapshot.Listings = next
	s.commitLocked(SourceLive, true)
	return Applied
}

// ApplyDeleted removes every entry with the payload's identifier.
func (s *Store) ApplyDeleted(raw json.RawMessage) Outcome {
	id, err := listing.Identify(raw)
	if err != nil {
		return s.drop("propertyDeleted", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]listing.Listing, 0, len(s.snapshot.Listings))
	for _, existing := range s.snapshot.Listings {
		if existing.ID != id {
			next = append(next, existing)
		}
	}
	if len(next) == len(s.snapshot.Listings) {
		return Ignored
	}
	s.snapshot.Listings = next
	s.commitLocked(SourceLive, true)
	return Applied
}

// Snapshot returns a deep copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Listings = listing.CloneAll(s.snapshot.Listings)
	return snap
}

// Version returns the current snapshot version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Version
}

// Lookup resolves one listing by identifier. With duplicates the first
// (newest) entry wins.
func (s *Store) Lookup(id string) (listing.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.snapshot.Listings {
		if l.ID == id {
			return l.Clone(), true
		}
	}
	return listing.Listing{}, false
}

// Subscribe returns a channel that receives the snapshot version after each
// change. Slow readers only see the latest version. The returned func stops
// delivery and closes the channel.
func (s *Store) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, ch)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

// commitLocked bumps the version, stamps the snapshot and, when persist is
// set, mirrors the full collection. Callers hold mu.
func (s *Store) commitLocked(source Source, persist bool) {
	s.snapshot.Version++
	s.snapshot.Source = source
	s.snapshot.LastUpdated = time.Now()
	if persist && s.mirror != nil {
		s.mirror.Save(s.snapshot.Listings)
	}
	s.metrics.CatalogChanged(len(s.snapshot.Listings), s.snapshot.Version)
	s.notifyLocked()
}

func (s *Store) notifyLocked() {
	s.notify(s.snapshot.Version)
}

func (s *Store) notify(version uint64) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- version:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- version:
			default:
			}
		}
	}
}

func (s *Store) drop(event string, err error) Outcome {
	s.logger.Debug("dropping malformed push payload", "event", event, "error", err)
	s.metrics.RecordsDropped("live", 1)
	return Dropped
}
