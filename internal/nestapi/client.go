package nestapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nestingglobal/nestview/internal/listing"
)

// CatalogAPI is the part of the backend the TUI talks to.
type CatalogAPI interface {
	FetchProperties(ctx context.Context) ([]listing.Listing, int, error)
	FetchContacts(ctx context.Context) ([]Contact, error)
	SubmitInquiry(ctx context.Context, inquiry Inquiry) error
	DownloadExport(ctx context.Context, kind ExportKind, w io.Writer) (int64, error)
}

var _ CatalogAPI = (*Client)(nil)

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Client talks to the listings backend over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL   = "http://127.0.0.1:5000"
	defaultUserAgent = "nestview/0.1"
	requestTimeout   = 10 * time.Second
	exportTimeout    = 2 * time.Minute
	maxBodyBytes     = 32 << 20
)

// NewClient builds a Client for baseURL. Bare host:port values are treated as
// http.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchProperties retrieves and canonicalizes the whole collection. The int
// result counts records dropped as malformed.
func (c *Client) FetchProperties(ctx context.Context) ([]listing.Listing, int, error) {
	if c == nil {
		return nil, 0, fmt.Errorf("client is nil")
	}
	body, err := c.get(ctx, "/api/properties")
	if err != nil {
		return nil, 0, err
	}
	items, dropped, err := listing.DecodeCollection(body)
	if err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}
	return items, dropped, nil
}

// FetchContacts retrieves submitted contacts.
func (c *Client) FetchContacts(ctx context.Context) ([]Contact, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, err := c.get(ctx, "/api/contact")
	if err != nil {
		return nil, err
	}
	var payload ContactListResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.Data, nil
}

// SubmitInquiry posts a lead. Any 2xx status counts as success; the response
// body is not inspected.
func (c *Client) SubmitInquiry(ctx context.Context, inquiry Inquiry) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	payload, err := json.Marshal(inquiry)
	if err != nil {
		return fmt.Errorf("encode inquiry: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/contact", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
	return nil
}

// DownloadExport streams a spreadsheet export into w and returns the number
// of bytes written.
func (c *Client) DownloadExport(ctx context.Context, kind ExportKind, w io.Writer) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	path, ok := kind.path()
	if !ok {
		return 0, fmt.Errorf("unknown export %q", kind)
	}
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	download := *c
	download.http = &http.Client{Transport: c.http.Transport}
	resp, err := download.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("write export: %w", err)
	}
	return n, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// send executes a request and returns the response when the status is below
// 400. The caller closes the body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, &StatusError{Path: rel.String(), Code: resp.StatusCode}
	}
	return resp, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
