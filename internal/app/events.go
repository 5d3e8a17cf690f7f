package app

import (
	"encoding/json"
	"log/slog"

	"github.com/nestingglobal/nestview/internal/catalog"
	"github.com/nestingglobal/nestview/internal/live"
	"github.com/nestingglobal/nestview/internal/metrics"
	"github.com/nestingglobal/nestview/internal/nestapi"
)

// subscribeEvents routes push events into the store and the contacts
// channel. It returns the unsubscribe funcs in registration order.
func subscribeEvents(hub *live.Hub, store *catalog.Store, m *metrics.Collector, contacts chan<- nestapi.Contact, logger *slog.Logger) []func() {
	apply := func(event string, fn func(json.RawMessage) catalog.Outcome) live.Handler {
		return func(payload json.RawMessage) {
			outcome := fn(payload)
			m.EventReceived(event, outcome.String())
		}
	}

	return []func(){
		hub.Subscribe(live.EventPropertyAdded, apply(live.EventPropertyAdded, store.ApplyAdded)),
		hub.Subscribe(live.EventPropertyUpdated, apply(live.EventPropertyUpdated, store.ApplyUpdated)),
		hub.Subscribe(live.EventPropertyDeleted, apply(live.EventPropertyDeleted, store.ApplyDeleted)),
		hub.Subscribe(live.EventNewContact, func(payload json.RawMessage) {
			var c nestapi.Contact
			if err := json.Unmarshal(payload, &c); err != nil {
				logger.Debug("dropping malformed contact", "error", err)
				m.EventReceived(live.EventNewContact, catalog.Dropped.String())
				return
			}
			select {
			case contacts <- c:
				m.EventReceived(live.EventNewContact, catalog.Applied.String())
			default:
				logger.Debug("contact buffer full, dropping", "id", c.ID)
				m.EventReceived(live.EventNewContact, catalog.Ignored.String())
			}
		}),
	}
}
