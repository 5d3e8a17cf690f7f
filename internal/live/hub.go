package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/nestingglobal/nestview/internal/metrics"
)

// Event names delivered by the backend.
const (
	EventPropertyAdded   = "propertyAdded"
	EventPropertyUpdated = "propertyUpdated"
	EventPropertyDeleted = "propertyDeleted"
	EventNewContact      = "newContact"
)

// Events lists every event name the hub knows how to route.
func Events() []string {
	return []string{EventPropertyAdded, EventPropertyUpdated, EventPropertyDeleted, EventNewContact}
}

// Handler receives one event payload. Handlers run on the transport's
// delivery goroutine and must not block for long.
type Handler func(payload json.RawMessage)

// DeliverFunc is how a Transport hands events to the hub.
type DeliverFunc func(event string, payload json.RawMessage)

// Transport is one push connection.
type Transport interface {
	// Run connects and delivers events until ctx is done, Close is called or
	// the connection fails. It does not reconnect.
	Run(ctx context.Context, deliver DeliverFunc) error
	Close() error
}

// HubOptions configure a Hub.
type HubOptions struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

type subscription struct {
	id      uint64
	handler Handler
}

// Hub multiplexes one shared Transport across any number of subscribers.
// Unsubscribing never closes the connection; only Close does.
type Hub struct {
	transport Transport
	logger    *slog.Logger
	metrics   *metrics.Collector

	mu       sync.RWMutex
	handlers map[string][]subscription
	nextID   uint64

	startOnce sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
}

// NewHub wraps transport. The connection is opened by Start.
func NewHub(transport Transport, opts HubOptions) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		transport: transport,
		logger:    logger.With("component", "live"),
		metrics:   opts.Metrics,
		handlers:  make(map[string][]subscription),
		done:      make(chan struct{}),
	}
}

// Start opens the shared connection in the background. Calling it more than
// once has no effect.
func (h *Hub) Start(ctx context.Context) {
	h.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		h.cancel = cancel
		go func() {
			defer close(h.done)
			err := h.transport.Run(runCtx, h.dispatch)
			if err != nil && !errors.Is(err, context.Canceled) {
				h.logger.Warn("push connection ended", "error", err)
			} else {
				h.logger.Debug("push connection closed")
			}
			h.err = err
		}()
	})
}

// Subscribe registers handler for event and returns a func that removes it.
// The returned func may be called any number of times.
func (h *Hub) Subscribe(event string, handler Handler) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.handlers[event] = append(h.handlers[event], subscription{id: id, handler: handler})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			subs := h.handlers[event]
			for i, sub := range subs {
				if sub.id == id {
					h.handlers[event] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(h.handlers[event]) == 0 {
				delete(h.handlers, event)
			}
		})
	}
}

// Subscribers reports how many handlers are registered for event.
func (h *Hub) Subscribers(event string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers[event])
}

// Close tears down the shared connection and waits for the delivery loop to
// exit. It returns the error that ended the connection, if any.
func (h *Hub) Close() error {
	var err error
	h.closeOnce.Do(func() {
		started := false
		h.startOnce.Do(func() { close(h.done) })
		if h.cancel != nil {
			started = true
			h.cancel()
		}
		if cerr := h.transport.Close(); cerr != nil {
			h.logger.Debug("closing push transport failed", "error", cerr)
		}
		<-h.done
		if started && h.err != nil && !errors.Is(h.err, context.Canceled) {
			err = h.err
		}
	})
	return err
}

func (h *Hub) dispatch(event string, payload json.RawMessage) {
	h.mu.RLock()
	subs := append([]subscription(nil), h.handlers[event]...)
	h.mu.RUnlock()

	if len(subs) == 0 {
		h.logger.Debug("ignoring event without handlers", "event", event)
		h.metrics.EventReceived(event, "unhandled")
		return
	}
	for _, sub := range subs {
		sub.handler(payload)
	}
}
