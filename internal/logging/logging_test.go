package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type fakePoster struct {
	mu    sync.Mutex
	tags  []string
	posts []map[string]any
}

func (f *fakePoster) Post(tag string, message any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)
	f.posts = append(f.posts, message.(map[string]any))
	return errors.New("ignored")
}

func (f *fakePoster) Close() error { return nil }

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "debug", Format: FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = closeFn() })

	logger.Debug("catalog loaded", "count", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "catalog loaded" || rec["count"] != float64(3) {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestNew_TextAndPrettyFormats(t *testing.T) {
	for _, format := range []string{FormatText, FormatPretty} {
		var buf bytes.Buffer
		logger, _, err := New(Options{Format: format, Writer: &buf, NoColor: true})
		if err != nil {
			t.Fatalf("New(%s) returned error: %v", format, err)
		}
		logger.Info("hello", "listing", "p1")
		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "p1") {
			t.Fatalf("%s output missing message or attr: %q", format, buf.String())
		}
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatalf("New should reject unknown format")
	}
}

func TestFluentHandler_PostsStructuredRecords(t *testing.T) {
	fake := &fakePoster{}
	logger := slog.New(NewFluentHandler(fake, slog.LevelInfo, "nestview")).With("component", "catalog")

	logger.Debug("skipped")
	logger.Warn("fetch failed", "error", errors.New("timeout"), "attempt", 2)

	if len(fake.posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(fake.posts))
	}
	if fake.tags[0] != "nestview.warn" {
		t.Fatalf("tag = %q, want nestview.warn", fake.tags[0])
	}
	got := fake.posts[0]
	if got["message"] != "fetch failed" || got["error"] != "timeout" || got["component"] != "catalog" {
		t.Fatalf("unexpected data: %#v", got)
	}
	if got["attempt"] != int64(2) {
		t.Fatalf("attempt = %#v, want int64(2)", got["attempt"])
	}
	if _, ok := got["timestamp"]; !ok {
		t.Fatalf("timestamp missing")
	}
}

func TestFanout_DeliversToEnabledHandlers(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := Fanout(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h)
	logger.Debug("detail")

	if infoBuf.Len() != 0 {
		t.Fatalf("info handler received debug record: %q", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "detail") {
		t.Fatalf("debug handler missing record: %q", debugBuf.String())
	}
}

func TestOpenFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "nestview.log")
	w, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	if _, err := io.WriteString(w, "first line\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "first line\n" {
		t.Fatalf("log file = %q, %v", data, err)
	}
}

func TestOpenFile_RejectsEmptyPath(t *testing.T) {
	if _, err := OpenFile("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
