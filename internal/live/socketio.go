package live

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Engine.IO v4 packet types, and the Socket.IO types carried in messages.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'

	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

const (
	handshakeTimeout   = 10 * time.Second
	defaultPingWindow  = 45 * time.Second
	socketWriteTimeout = 5 * time.Second
)

// SocketTransport speaks Socket.IO over a websocket, without polling
// fallback.
type SocketTransport struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewSocketTransport targets the Socket.IO endpoint at base.
func NewSocketTransport(base *url.URL, opts TransportOptions) *SocketTransport {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SocketTransport{
		url:    socketURL(base),
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout, Proxy: http.ProxyFromEnvironment},
		logger: logger.With("transport", "socket.io"),
	}
}

// URL returns the websocket URL that Run dials.
func (t *SocketTransport) URL() string { return t.url }

func socketURL(base *url.URL) string {
	u := *base
	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/socket.io/"
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	u.Fragment = ""
	return u.String()
}

type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// Run dials, joins the default namespace and delivers events until the
// connection ends.
func (t *SocketTransport) Run(ctx context.Context, deliver DeliverFunc) error {
	conn, _, err := t.dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		if ctx.Err() != nil {
			return context.Canceled
		}
		return fmt.Errorf("dial %s: %w", t.url, err)
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = conn.Close()
		return context.Canceled
	}
	t.conn = conn
	t.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer t.release(conn)

	window := defaultPingWindow
	for {
		_ = conn.SetReadDeadline(time.Now().Add(window))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || t.isClosed() {
				return context.Canceled
			}
			return fmt.Errorf("read socket: %w", err)
		}
		if len(data) == 0 {
			continue
		}
		switch data[0] {
		case eioOpen:
			var open openPacket
			if err := json.Unmarshal(data[1:], &open); err == nil && open.PingInterval > 0 {
				window = time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond
			}
			t.logger.Debug("socket opened", "sid", open.SID)
			if err := t.write(conn, "40"); err != nil {
				return err
			}
		case eioPing:
			if err := t.write(conn, string(eioPong)+string(data[1:])); err != nil {
				return err
			}
		case eioClose:
			return errors.New("server closed the socket")
		case eioMessage:
			if err := t.handleMessage(data[1:], deliver); err != nil {
				return err
			}
		}
	}
}

func (t *SocketTransport) handleMessage(msg []byte, deliver DeliverFunc) error {
	if len(msg) == 0 {
		return nil
	}
	switch msg[0] {
	case sioConnect:
		t.logger.Info("push channel connected", "url", t.url)
	case sioDisconnect:
		return errors.New("server disconnected the namespace")
	case sioConnectError:
		return fmt.Errorf("namespace connect refused: %s", bytes.TrimSpace(msg[1:]))
	case sioEvent:
		event, payload, err := decodeEvent(msg[1:])
		if err != nil {
			t.logger.Debug("ignoring malformed socket event", "error", err)
			return nil
		}
		deliver(event, payload)
	}
	return nil
}

// decodeEvent parses the body of an event packet, skipping an optional
// namespace and ack id, into the event name and its first argument.
func decodeEvent(body []byte) (string, json.RawMessage, error) {
	if len(body) > 0 && body[0] == '/' {
		idx := bytes.IndexByte(body, ',')
		if idx < 0 {
			return "", nil, errors.New("namespace without separator")
		}
		body = body[idx+1:]
	}
	for len(body) > 0 && body[0] >= '0' && body[0] <= '9' {
		body = body[1:]
	}
	var args []json.RawMessage
	if err := json.Unmarshal(body, &args); err != nil {
		return "", nil, fmt.Errorf("decode event: %w", err)
	}
	if len(args) == 0 {
		return "", nil, errors.New("event without name")
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("decode event name: %w", err)
	}
	if len(args) < 2 {
		return name, json.RawMessage("null"), nil
	}
	return name, args[1], nil
}

func (t *SocketTransport) write(conn *websocket.Conn, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("write socket: %w", err)
	}
	return nil
}

func (t *SocketTransport) release(conn *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == conn {
		t.conn = nil
	}
	_ = conn.Close()
}

func (t *SocketTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close ends Run. It is safe to call before Run.
func (t *SocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.conn == nil {
		return nil
	}
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return t.conn.Close()
}
