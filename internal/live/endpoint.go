package live

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ResolveEndpoint returns the first non-blank of explicit, configured and
// origin.
func ResolveEndpoint(explicit, configured, origin string) string {
	for _, candidate := range []string{explicit, configured, origin} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}

// TransportOptions are shared by the transport constructors.
type TransportOptions struct {
	Logger *slog.Logger
	// Exchange is the AMQP topic exchange. Defaults to DefaultExchange.
	Exchange string
	// Events are bound as AMQP routing keys. Defaults to Events().
	Events []string
}

// NewTransport picks a transport by URL scheme: amqp and amqps use the
// broker, http, https, ws and wss use Socket.IO.
func NewTransport(endpoint string, opts TransportOptions) (Transport, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("push endpoint is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse push endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse push endpoint %q: missing host", endpoint)
	}
	switch strings.ToLower(u.Scheme) {
	case "amqp", "amqps":
		return NewAMQPTransport(u.String(), opts), nil
	case "http", "https", "ws", "wss":
		return NewSocketTransport(u, opts), nil
	default:
		return nil, fmt.Errorf("unsupported push endpoint scheme %q", u.Scheme)
	}
}
