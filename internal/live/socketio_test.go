package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantEvent   string
		wantPayload string
		wantErr     bool
	}{
		{name: "plain", body: `["propertyAdded",{"id":"p1"}]`, wantEvent: "propertyAdded", wantPayload: `{"id":"p1"}`},
		{name: "namespace and ack", body: `/admin,12["newContact",{"_id":"c1"}]`, wantEvent: "newContact", wantPayload: `{"_id":"c1"}`},
		{name: "no payload", body: `["propertyDeleted"]`, wantEvent: "propertyDeleted", wantPayload: `null`},
		{name: "empty array", body: `[]`, wantErr: true},
		{name: "not json", body: `nope`, wantErr: true},
		{name: "name not string", body: `[1,2]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, payload, err := decodeEvent([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeEvent returned nil error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeEvent returned error: %v", err)
			}
			if event != tt.wantEvent || string(payload) != tt.wantPayload {
				t.Fatalf("decodeEvent = %q %s, want %q %s", event, payload, tt.wantEvent, tt.wantPayload)
			}
		})
	}
}

type received struct {
	event   string
	payload string
}

func TestSocketTransport_HandshakePingAndEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotConnect := make(chan string, 1)
	gotPong := make(chan string, 1)
	gotQuery := make(chan url.Values, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery <- r.URL.Query()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"abc","pingInterval":25000,"pingTimeout":20000}`))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		gotConnect <- string(msg)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"ns1"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`2`))
		_, msg, err = conn.ReadMessage()
		if err != nil {
			return
		}
		gotPong <- string(msg)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`42["propertyAdded",{"id":"p1"}]`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`42["propertyDeleted","p9"]`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`42garbage`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`1`))
	}))
	t.Cleanup(server.Close)

	base, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	transport := NewSocketTransport(base, TransportOptions{})

	events := make(chan received, 4)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	err = transport.Run(ctx, func(event string, payload json.RawMessage) {
		events <- received{event: event, payload: string(payload)}
	})
	if err == nil {
		t.Fatalf("Run returned nil error after server close packet")
	}

	if q := <-gotQuery; q.Get("EIO") != "4" || q.Get("transport") != "websocket" {
		t.Fatalf("query = %v", q)
	}
	if msg := <-gotConnect; msg != "40" {
		t.Fatalf("namespace connect = %q, want 40", msg)
	}
	if msg := <-gotPong; msg != "3" {
		t.Fatalf("pong = %q, want 3", msg)
	}
	close(events)
	var got []received
	for ev := range events {
		got = append(got, ev)
	}
	want := []received{{"propertyAdded", `{"id":"p1"}`}, {"propertyDeleted", `"p9"`}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestSocketTransport_CloseEndsRun(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	base, _ := url.Parse(server.URL)
	transport := NewSocketTransport(base, TransportOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- transport.Run(ctx, func(string, json.RawMessage) {}) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}
