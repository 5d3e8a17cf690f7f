package nestapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("default url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("example.com:5000/api?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:5000" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL accepted url without host")
	}
}

func TestClient_FetchPropertiesAcceptsEveryShape(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"array":      `[{"_id":"a","title":"One"},{"title":"no id"},{"id":"b"}]`,
		"properties": `{"properties":[{"_id":"a","title":"One"},{"title":"no id"},{"id":"b"}]}`,
		"data":       `{"data":[{"_id":"a","title":"One"},{"title":"no id"},{"id":"b"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/properties" {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, body)
			}))
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			items, dropped, err := c.FetchProperties(context.Background())
			if err != nil {
				t.Fatalf("FetchProperties returned error: %v", err)
			}
			if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
				t.Fatalf("FetchProperties items = %#v, want a and b", items)
			}
			if dropped != 1 {
				t.Fatalf("dropped = %d, want 1", dropped)
			}
		})
	}
}

func TestClient_HeadersAndContacts(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"_id":"65f0c1d2e3a4b5c6d7e8f901","FullName":"Sara","Email":"sara@example.com","createdAt":"2024-05-01T10:00:00.000Z"}]}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	contacts, err := c.FetchContacts(ctx)
	if err != nil {
		t.Fatalf("FetchContacts returned error: %v", err)
	}
	if len(contacts) != 1 || contacts[0].FullName != "Sara" || contacts[0].ShortID() != "65f0c1d2" {
		t.Fatalf("FetchContacts = %#v", contacts)
	}
	if contacts[0].CreatedAt.IsZero() {
		t.Fatalf("createdAt not parsed")
	}
	if !strings.HasPrefix(gotUserAgent, "nestview/") {
		t.Fatalf("User-Agent = %q, want nestview/*", gotUserAgent)
	}
	if _, err := uuid.Parse(gotRequestID); err != nil {
		t.Fatalf("X-Request-ID = %q, want uuid: %v", gotRequestID, err)
	}
}

func TestClient_SubmitInquiry(t *testing.T) {
	t.Parallel()

	var got Inquiry
	var method, contentType string
	var status atomic.Int32
	status.Store(http.StatusCreated)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(int(status.Load()))
		_, _ = io.WriteString(w, "not json at all")
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	want := Inquiry{FullName: "Sara", Email: "sara@example.com", Message: "Viewing?", PropertyID: "p1"}
	if err := c.SubmitInquiry(context.Background(), want); err != nil {
		t.Fatalf("SubmitInquiry returned error: %v", err)
	}
	if method != http.MethodPost || contentType != "application/json" {
		t.Fatalf("request = %s %s", method, contentType)
	}
	if got != want {
		t.Fatalf("posted %#v, want %#v", got, want)
	}

	status.Store(http.StatusBadRequest)
	err = c.SubmitInquiry(context.Background(), want)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadRequest {
		t.Fatalf("SubmitInquiry error = %v, want StatusError 400", err)
	}
}

func TestClient_DownloadExport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/download-excel":
			_, _ = io.WriteString(w, "properties-xlsx")
		case "/api/download-contact-excel":
			_, _ = io.WriteString(w, "contacts-xlsx")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	for kind, want := range map[ExportKind]string{ExportProperties: "properties-xlsx", ExportContacts: "contacts-xlsx"} {
		var buf bytes.Buffer
		n, err := c.DownloadExport(context.Background(), kind, &buf)
		if err != nil {
			t.Fatalf("DownloadExport(%s) returned error: %v", kind, err)
		}
		if buf.String() != want || n != int64(len(want)) {
			t.Fatalf("DownloadExport(%s) = %q (%d bytes)", kind, buf.String(), n)
		}
	}
	if _, err := c.DownloadExport(context.Background(), ExportKind("bogus"), io.Discard); err == nil {
		t.Fatalf("DownloadExport accepted unknown kind")
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/properties":
			http.Error(w, "nope", http.StatusInternalServerError)
		case "/api/contact":
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, _, err = c.FetchProperties(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchProperties error = %v, want status 500 error", err)
	}

	_, err = c.FetchContacts(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchContacts error = %v, want decode response error", err)
	}
}
