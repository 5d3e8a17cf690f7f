package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector
	c.EventReceived("propertyAdded", "applied")
	c.RecordsDropped("remote", 3)
	c.FetchAttempted(errors.New("boom"))
	c.CacheFailed("save")
	c.CatalogChanged(1, 1)
	if c.Registry() != nil {
		t.Fatalf("nil collector should have no registry")
	}
}

func TestCollector_Counts(t *testing.T) {
	c := New()
	c.EventReceived("propertyAdded", "applied")
	c.EventReceived("propertyAdded", "applied")
	c.RecordsDropped("remote", 2)
	c.FetchAttempted(nil)
	c.FetchAttempted(errors.New("offline"))
	c.CatalogChanged(7, 3)

	if got := testutil.ToFloat64(c.events.WithLabelValues("propertyAdded", "applied")); got != 2 {
		t.Fatalf("events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.dropped.WithLabelValues("remote")); got != 2 {
		t.Fatalf("dropped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.fetches); got != 2 {
		t.Fatalf("fetches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.fetchFailures); got != 1 {
		t.Fatalf("fetch failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.catalogSize); got != 7 {
		t.Fatalf("catalog size = %v, want 7", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.CacheFailed("load")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `nestview_cache_failures_total{op="load"} 1`) {
		t.Fatalf("metrics output missing cache failure counter:\n%s", rec.Body.String())
	}
}

func TestCollector_Router(t *testing.T) {
	c := New()
	router := c.Router()

	tests := []struct {
		method, path string
		code         int
		body         string
	}{
		{"GET", "/healthz", 200, "ok"},
		{"GET", "/metrics", 200, "nestview_catalog_listings"},
		{"POST", "/metrics", 405, ""},
		{"GET", "/missing", 404, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.code {
			t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.code)
		}
		if tt.body != "" && !strings.Contains(rec.Body.String(), tt.body) {
			t.Fatalf("%s %s body missing %q", tt.method, tt.path, tt.body)
		}
	}
}
