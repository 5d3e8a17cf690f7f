package live

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeTransport struct {
	started chan DeliverFunc
	stop    chan struct{}
	runErr  error

	mu     sync.Mutex
	closes int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{started: make(chan DeliverFunc, 1), stop: make(chan struct{})}
}

func (f *fakeTransport) Run(ctx context.Context, deliver DeliverFunc) error {
	f.started <- deliver
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.stop:
		return f.runErr
	}
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeTransport) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func startHub(t *testing.T) (*Hub, *fakeTransport, DeliverFunc) {
	t.Helper()
	transport := newFakeTransport()
	hub := NewHub(transport, HubOptions{})
	hub.Start(context.Background())
	select {
	case deliver := <-transport.started:
		return hub, transport, deliver
	case <-time.After(2 * time.Second):
		t.Fatalf("transport never started")
		return nil, nil, nil
	}
}

func TestHub_RoutesByEventName(t *testing.T) {
	hub, _, deliver := startHub(t)
	t.Cleanup(func() { _ = hub.Close() })

	var added, updated []string
	hub.Subscribe(EventPropertyAdded, func(p json.RawMessage) { added = append(added, string(p)) })
	hub.Subscribe(EventPropertyUpdated, func(p json.RawMessage) { updated = append(updated, string(p)) })

	deliver(EventPropertyAdded, json.RawMessage(`1`))
	deliver(EventPropertyUpdated, json.RawMessage(`2`))
	deliver(EventPropertyAdded, json.RawMessage(`3`))
	deliver("somethingElse", json.RawMessage(`4`))

	if len(added) != 2 || added[0] != "1" || added[1] != "3" {
		t.Fatalf("added = %v, want [1 3]", added)
	}
	if len(updated) != 1 || updated[0] != "2" {
		t.Fatalf("updated = %v, want [2]", updated)
	}
}

func TestHub_UnsubscribeIsIdempotentAndKeepsConnection(t *testing.T) {
	hub, transport, deliver := startHub(t)
	t.Cleanup(func() { _ = hub.Close() })

	var first, second int
	unsubFirst := hub.Subscribe(EventPropertyDeleted, func(json.RawMessage) { first++ })
	hub.Subscribe(EventPropertyDeleted, func(json.RawMessage) { second++ })

	unsubFirst()
	unsubFirst()
	if got := hub.Subscribers(EventPropertyDeleted); got != 1 {
		t.Fatalf("Subscribers = %d, want 1", got)
	}
	deliver(EventPropertyDeleted, json.RawMessage(`"p1"`))
	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d, want 0 and 1", first, second)
	}
	if transport.closeCount() != 0 {
		t.Fatalf("unsubscribe closed the shared transport")
	}
}

func TestHub_CloseStopsTransport(t *testing.T) {
	hub, transport, _ := startHub(t)
	if err := hub.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := hub.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if transport.closeCount() != 1 {
		t.Fatalf("transport closed %d times, want 1", transport.closeCount())
	}
}

func TestHub_CloseReportsConnectionFailure(t *testing.T) {
	transport := newFakeTransport()
	transport.runErr = errors.New("connection refused")
	hub := NewHub(transport, HubOptions{})
	hub.Start(context.Background())
	<-transport.started
	close(transport.stop)

	if err := hub.Close(); err == nil || err.Error() != "connection refused" {
		t.Fatalf("Close error = %v, want connection refused", err)
	}
}

func TestHub_CloseWithoutStart(t *testing.T) {
	transport := newFakeTransport()
	hub := NewHub(transport, HubOptions{})
	if err := hub.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	hub.Start(context.Background())
	select {
	case <-transport.started:
		t.Fatalf("Start after Close should not run the transport")
	default:
	}
}
