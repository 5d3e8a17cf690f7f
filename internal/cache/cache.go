// Package cache mirrors the latest catalog snapshot to durable local storage
// so the next session can paint before the network answers.
//
// Save and Load never fail visibly. Storage errors, unknown record versions
// and corrupt payloads all read as an empty cache.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/nestingglobal/nestview/internal/listing"
	"github.com/nestingglobal/nestview/internal/metrics"
)

// RecordKey names the single catalog record.
const RecordKey = "nestview.catalog"

// RecordVersion is bumped whenever the serialized Listing shape changes.
// Records with any other version are discarded.
const RecordVersion = 2

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type record struct {
	Version  int             `json:"version"`
	SavedAt  time.Time       `json:"savedAt"`
	Listings json.RawMessage `json:"listings"`
}

// Options configure a Cache.
type Options struct {
	Compress bool
	Logger   *slog.Logger
	Metrics  *metrics.Collector
}

// Cache reads and writes the catalog record through a Backend.
type Cache struct {
	backend  Backend
	compress bool
	logger   *slog.Logger
	metrics  *metrics.Collector
	now      func() time.Time
}

// New wraps backend. A nil backend yields a cache that stores nothing.
func New(backend Backend, opts Options) *Cache {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		backend:  backend,
		compress: opts.Compress,
		logger:   logger.With("component", "cache"),
		metrics:  opts.Metrics,
		now:      time.Now,
	}
}

// Save replaces the stored record with items.
func (c *Cache) Save(items []listing.Listing) {
	if c == nil || c.backend == nil {
		return
	}
	data, err := c.encode(items)
	if err != nil {
		c.fail("save", err)
		return
	}
	if err := c.backend.Put(RecordKey, data); err != nil {
		c.fail("save", err)
	}
}

// Load returns the stored snapshot, or nil when there is none or it cannot be
// used.
func (c *Cache) Load() []listing.Listing {
	if c == nil || c.backend == nil {
		return nil
	}
	data, err := c.backend.Get(RecordKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.fail("load", err)
		}
		return nil
	}
	rec, err := decodeRecord(data)
	if err != nil {
		c.fail("load", err)
		return nil
	}
	var items []listing.Listing
	if err := json.Unmarshal(rec.Listings, &items); err != nil {
		c.fail("load", fmt.Errorf("decode listings: %w", err))
		return nil
	}
	return items
}

// Info describes the stored record.
type Info struct {
	Present bool
	Version int
	SavedAt time.Time
	Count   int
	Bytes   int
}

// Inspect reports on the stored record without applying version checks.
func (c *Cache) Inspect() (Info, error) {
	if c == nil || c.backend == nil {
		return Info{}, nil
	}
	data, err := c.backend.Get(RecordKey)
	if errors.Is(err, ErrNotFound) {
		return Info{}, nil
	}
	if err != nil {
		return Info{}, err
	}
	info := Info{Present: true, Bytes: len(data)}
	plain, err := decompress(data)
	if err != nil {
		return info, err
	}
	var rec record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return info, fmt.Errorf("decode record: %w", err)
	}
	info.Version = rec.Version
	info.SavedAt = rec.SavedAt
	var raws []json.RawMessage
	if err := json.Unmarshal(rec.Listings, &raws); err == nil {
		info.Count = len(raws)
	}
	return info, nil
}

// Clear removes the stored record.
func (c *Cache) Clear() error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.Delete(RecordKey)
}

func (c *Cache) fail(op string, err error) {
	c.logger.Debug("cache "+op+" failed", "error", err)
	c.metrics.CacheFailed(op)
}

func (c *Cache) encode(items []listing.Listing) ([]byte, error) {
	if items == nil {
		items = []listing.Listing{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal listings: %w", err)
	}
	data, err := json.Marshal(record{Version: RecordVersion, SavedAt: c.now().UTC(), Listings: body})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if !c.compress {
		return data, nil
	}
	enc, err := encoder()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(data, nil), nil
}

func decodeRecord(data []byte) (record, error) {
	plain, err := decompress(data)
	if err != nil {
		return record{}, err
	}
	plain = bytes.TrimSpace(plain)
	if len(plain) == 0 || plain[0] != '{' {
		return record{}, errors.New("record is not a versioned envelope")
	}
	var rec record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return record{}, fmt.Errorf("decode record: %w", err)
	}
	if rec.Version != RecordVersion {
		return record{}, fmt.Errorf("record version %d, want %d", rec.Version, RecordVersion)
	}
	listings := bytes.TrimSpace(rec.Listings)
	if len(listings) == 0 || listings[0] != '[' {
		return record{}, errors.New("record listings is not an array")
	}
	return rec, nil
}

func decompress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	dec, err := decoder()
	if err != nil {
		return nil, err
	}
	plain, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress record: %w", err)
	}
	return plain, nil
}

var encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
})

var decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil)
})
