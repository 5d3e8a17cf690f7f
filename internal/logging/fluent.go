package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// FluentOptions configure the optional Fluentd/Fluent Bit sink.
type FluentOptions struct {
	Host      string
	Port      int
	TagPrefix string
}

// Enabled reports whether a host was configured.
func (o FluentOptions) Enabled() bool {
	return strings.TrimSpace(o.Host) != ""
}

func (o FluentOptions) tag() string {
	if strings.TrimSpace(o.TagPrefix) == "" {
		return "nestview"
	}
	return o.TagPrefix
}

// poster is the part of *fluent.Fluent the handler uses.
type poster interface {
	Post(tag string, message any) error
	Close() error
}

func dialFluent(opts FluentOptions) (*fluent.Fluent, error) {
	port := opts.Port
	if port == 0 {
		port = 24224
	}
	client, err := fluent.New(fluent.Config{
		FluentHost: opts.Host,
		FluentPort: port,
		Async:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("create fluent client: %w", err)
	}
	return client, nil
}

// FluentHandler forwards records to Fluentd with the level as the tag suffix.
type FluentHandler struct {
	client poster
	level  slog.Leveler
	prefix string
	attrs  []slog.Attr
	groups []string
}

// NewFluentHandler wraps client. Post errors are ignored so that logging never
// fails the caller.
func NewFluentHandler(client poster, level slog.Leveler, tagPrefix string) *FluentHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FluentHandler{client: client, level: level, prefix: tagPrefix}
}

// Enabled implements slog.Handler.
func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]any, len(h.attrs)+r.NumAttrs()+3)
	for _, a := range h.attrs {
		h.put(data, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.put(data, a)
		return true
	})
	level := strings.ToLower(r.Level.String())
	data["level"] = level
	data["message"] = r.Message
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	data["timestamp"] = ts.UTC().Format(time.RFC3339Nano)

	_ = h.client.Post(h.prefix+"."+level, data)
	return nil
}

func (h *FluentHandler) put(data map[string]any, a slog.Attr) {
	if a.Key == "" {
		return
	}
	key := a.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
		data[key] = v.Any()
	case slog.KindTime:
		data[key] = v.Time().UTC().Format(time.RFC3339Nano)
	default:
		if err, ok := v.Any().(error); ok {
			data[key] = err.Error()
			return
		}
		data[key] = v.String()
	}
}

// WithAttrs implements slog.Handler.
func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	dup := *h
	dup.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &dup
}

// WithGroup implements slog.Handler.
func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	dup := *h
	dup.groups = append(append([]string{}, h.groups...), name)
	return &dup
}
