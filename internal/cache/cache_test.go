package cache

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nestingglobal/nestview/internal/listing"
)

type brokenBackend struct{}

func (brokenBackend) Get(string) ([]byte, error) { return nil, errors.New("storage unavailable") }
func (brokenBackend) Put(string, []byte) error   { return errors.New("quota exceeded") }
func (brokenBackend) Delete(string) error        { return errors.New("storage unavailable") }
func (brokenBackend) Close() error               { return nil }

func sampleListings() []listing.Listing {
	return []listing.Listing{
		{
			ID:          "p1",
			Title:       "Marina Loft",
			Location:    "Dubai Marina",
			Price:       listing.NewNumber(1_250_000),
			Bedrooms:    listing.NewNumber(2),
			Bathrooms:   listing.Number{Raw: "2.5 baths"},
			Area:        listing.NewNumber(1100),
			Category:    listing.CategoryApartment,
			Status:      listing.StatusNew,
			Images:      []string{"a.jpg", "b.jpg"},
			Description: "Bright",
			Amenities:   []string{"Pool"},
			Agent:       listing.Agent{Name: "Omar", Image: "omar.jpg"},
			Coordinates: listing.Coordinates{Lat: 25.08, Lng: 55.14},
			CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		{ID: "p2", Title: "Villa", Price: listing.NewNumber(9_000_000)},
	}
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()
	file, err := NewFileBackend(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	db, err := OpenSQLite(filepath.Join(dir, "db", "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return map[string]Backend{
		"file":   file,
		"sqlite": db,
		"memory": NewMemoryBackend(),
	}
}

func TestCache_RoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		for _, compress := range []bool{false, true} {
			c := New(backend, Options{Compress: compress})
			want := sampleListings()
			c.Save(want)
			got := c.Load()
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("%s compress=%v: Load = %#v, want %#v", name, compress, got, want)
			}
		}
	}
}

func TestCache_SavesRecordWithNonNumericText(t *testing.T) {
	item, err := listing.Canonicalize([]byte(`{"id":"p2","title":"Plot","price":"NaN","area":"Infinity"}`))
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}
	c := New(NewMemoryBackend(), Options{})
	first := sampleListings()[:1]
	c.Save(first)
	c.Save([]listing.Listing{item, first[0]})

	got := c.Load()
	if len(got) != 2 || got[0].ID != "p2" || got[1].ID != "p1" {
		t.Fatalf("Load = %v, want [p2 p1]", got)
	}
	if got[0].Price.Valid || got[0].Price.Raw != "NaN" || got[0].Area.Raw != "Infinity" {
		t.Fatalf("reloaded numbers = %#v / %#v", got[0].Price, got[0].Area)
	}
}

func TestCache_SaveReplacesWholeRecord(t *testing.T) {
	c := New(NewMemoryBackend(), Options{})
	c.Save(sampleListings())
	c.Save(sampleListings()[1:])
	got := c.Load()
	if len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("Load = %#v, want only p2", got)
	}
}

func TestCache_EmptySnapshotRoundTrips(t *testing.T) {
	c := New(NewMemoryBackend(), Options{})
	c.Save(nil)
	got := c.Load()
	if got == nil || len(got) != 0 {
		t.Fatalf("Load = %#v, want empty non-nil", got)
	}
}

func TestCache_LoadDiscardsUnusableRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "legacy bare array", raw: `[{"id":"p1"}]`},
		{name: "string", raw: `"hello"`},
		{name: "object without version", raw: `{"listings":[{"id":"p1"}]}`},
		{name: "old version", raw: `{"version":1,"listings":[{"id":"p1"}]}`},
		{name: "listings not array", raw: `{"version":2,"listings":{"id":"p1"}}`},
		{name: "truncated", raw: `{"version":2,"listings":[{"id":`},
		{name: "garbage compressed header", raw: string([]byte{0x28, 0xb5, 0x2f, 0xfd, 0x00})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			_ = backend.Put(RecordKey, []byte(tt.raw))
			if got := New(backend, Options{}).Load(); got != nil {
				t.Fatalf("Load = %#v, want nil", got)
			}
		})
	}
}

func TestCache_MissingRecord(t *testing.T) {
	if got := New(NewMemoryBackend(), Options{}).Load(); got != nil {
		t.Fatalf("Load = %#v, want nil", got)
	}
}

func TestCache_BrokenBackendNeverFails(t *testing.T) {
	c := New(brokenBackend{}, Options{})
	c.Save(sampleListings())
	if got := c.Load(); got != nil {
		t.Fatalf("Load = %#v, want nil", got)
	}

	var nilCache *Cache
	nilCache.Save(sampleListings())
	if nilCache.Load() != nil {
		t.Fatalf("nil cache should load nothing")
	}
}

func TestCache_InspectAndClear(t *testing.T) {
	c := New(NewMemoryBackend(), Options{Compress: true})
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	c.Save(sampleListings())

	info, err := c.Inspect()
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if !info.Present || info.Version != RecordVersion || info.Count != 2 || !info.SavedAt.Equal(fixed) {
		t.Fatalf("Inspect = %+v", info)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	info, err = c.Inspect()
	if err != nil || info.Present {
		t.Fatalf("Inspect after Clear = %+v, %v", info, err)
	}
}

func TestFileBackend_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := b.Put("k", []byte{byte(i)}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want 1", len(entries))
	}
	got, err := b.Get("k")
	if err != nil || len(got) != 1 || got[0] != 2 {
		t.Fatalf("Get = %v, %v; want [2]", got, err)
	}
	if _, err := b.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{"", KindFile, KindSQLite, KindMemory} {
		b, err := OpenBackend(kind, dir)
		if err != nil {
			t.Fatalf("OpenBackend(%q): %v", kind, err)
		}
		_ = b.Close()
	}
	if _, err := OpenBackend("redis", dir); err == nil {
		t.Fatalf("OpenBackend should reject unknown kinds")
	}
}
