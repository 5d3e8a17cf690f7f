package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoIdentifier is returned when a record carries neither id nor _id.
	ErrNoIdentifier = errors.New("listing has no identifier")
	// ErrMalformed is returned when a record does not have the listing shape.
	ErrMalformed = errors.New("malformed listing")
	// ErrUnexpectedShape is returned when a collection body is neither an
	// array nor an envelope holding one.
	ErrUnexpectedShape = errors.New("unexpected collection shape")
)

// envelopeFields are checked in order when a collection arrives wrapped.
var envelopeFields = []string{"properties", "data"}

type wireListing struct {
	ID          json.RawMessage `json:"id"`
	AltID       json.RawMessage `json:"_id"`
	Title       *string         `json:"title"`
	Location    *string         `json:"location"`
	Price       Number          `json:"price"`
	Bedrooms    Number          `json:"bedrooms"`
	Bathrooms   Number          `json:"bathrooms"`
	Area        Number          `json:"area"`
	Category    *string         `json:"type"`
	Status      *string         `json:"status"`
	Images      []string        `json:"images"`
	Description *string         `json:"description"`
	Amenities   []string        `json:"amenities"`
	Agent       *struct {
		Name  *string `json:"name"`
		Image *string `json:"image"`
	} `json:"agent"`
	Coordinates *struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	} `json:"coordinates"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// Canonicalize validates a raw record and converts it to a Listing. The
// identifier is taken from id when present, otherwise from _id.
func Canonicalize(raw json.RawMessage) (Listing, error) {
	if err := Validate(raw); err != nil {
		return Listing{}, err
	}

	var wire wireListing
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Listing{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	id, err := resolveID(wire.ID, wire.AltID)
	if err != nil {
		return Listing{}, err
	}

	l := Listing{
		ID:          id,
		Title:       deref(wire.Title),
		Location:    deref(wire.Location),
		Price:       wire.Price,
		Bedrooms:    wire.Bedrooms,
		Bathrooms:   wire.Bathrooms,
		Area:        wire.Area,
		Category:    Category(deref(wire.Category)),
		Status:      Status(deref(wire.Status)),
		Images:      wire.Images,
		Description: deref(wire.Description),
		Amenities:   wire.Amenities,
		CreatedAt:   parseCreatedAt(wire.CreatedAt),
	}
	if wire.Agent != nil {
		l.Agent = Agent{Name: deref(wire.Agent.Name), Image: deref(wire.Agent.Image)}
	}
	if wire.Coordinates != nil {
		if wire.Coordinates.Lat != nil {
			l.Coordinates.Lat = *wire.Coordinates.Lat
		}
		if wire.Coordinates.Lng != nil {
			l.Coordinates.Lng = *wire.Coordinates.Lng
		}
	}
	return l, nil
}

// Identify extracts only the canonical identifier from a payload. It accepts a
// record object or a bare string id, which is how deletions are announced.
func Identify(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", ErrNoIdentifier
	}
	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if strings.TrimSpace(id) == "" {
			return "", ErrNoIdentifier
		}
		return strings.TrimSpace(id), nil
	}
	var ids struct {
		ID    json.RawMessage `json:"id"`
		AltID json.RawMessage `json:"_id"`
	}
	if err := json.Unmarshal(trimmed, &ids); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return resolveID(ids.ID, ids.AltID)
}

// DecodeCollection parses a remote collection body. It accepts a bare array of
// records or an object exposing the array under a known field. Records that
// fail canonicalization are skipped and counted in dropped.
func DecodeCollection(body []byte) (items []Listing, dropped int, err error) {
	raws, err := splitCollection(body)
	if err != nil {
		return nil, 0, err
	}
	items = make([]Listing, 0, len(raws))
	for _, raw := range raws {
		l, err := Canonicalize(raw)
		if err != nil {
			dropped++
			continue
		}
		items = append(items, l)
	}
	return items, dropped, nil
}

func splitCollection(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedShape
	}
	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		return raws, nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		for _, field := range envelopeFields {
			inner, ok := envelope[field]
			if !ok {
				continue
			}
			inner = bytes.TrimSpace(inner)
			if len(inner) == 0 || inner[0] != '[' {
				return nil, fmt.Errorf("%w: field %q is not an array", ErrUnexpectedShape, field)
			}
			var raws []json.RawMessage
			if err := json.Unmarshal(inner, &raws); err != nil {
				return nil, fmt.Errorf("decode %s: %w", field, err)
			}
			return raws, nil
		}
		return nil, fmt.Errorf("%w: no %s field", ErrUnexpectedShape, strings.Join(envelopeFields, " or "))
	default:
		return nil, ErrUnexpectedShape
	}
}

func resolveID(primary, alias json.RawMessage) (string, error) {
	if id := rawID(primary); id != "" {
		return id, nil
	}
	if id := rawID(alias); id != "" {
		return id, nil
	}
	return "", ErrNoIdentifier
}

// rawID reads a string, an integer or a {"$oid": "..."} document.
func rawID(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{':
		var oid struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(trimmed, &oid); err != nil {
			return ""
		}
		return strings.TrimSpace(oid.OID)
	default:
		if n, err := strconv.ParseInt(string(trimmed), 10, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
		return ""
	}
}

// parseCreatedAt accepts RFC 3339 text or epoch milliseconds.
func parseCreatedAt(raw json.RawMessage) time.Time {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return time.Time{}
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return time.Time{}
		}
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	}
	ms, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
