package listing

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestCanonicalize_PrefersIDOverAlias(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "primary", raw: `{"id":"p1","_id":"abc"}`, want: "p1"},
		{name: "alias only", raw: `{"_id":"abc"}`, want: "abc"},
		{name: "integer id", raw: `{"id":42}`, want: "42"},
		{name: "object id", raw: `{"_id":{"$oid":"65f0c0ffee"}}`, want: "65f0c0ffee"},
		{name: "blank primary falls back", raw: `{"id":"  ","_id":"abc"}`, want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Canonicalize(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("Canonicalize returned error: %v", err)
			}
			if l.ID != tt.want {
				t.Fatalf("ID = %q, want %q", l.ID, tt.want)
			}
		})
	}
}

func TestCanonicalize_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no identifier", raw: `{"title":"Loft"}`},
		{name: "not an object", raw: `[1,2,3]`},
		{name: "images not array", raw: `{"id":"x","images":"a.jpg"}`},
		{name: "invalid json", raw: `{"id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Canonicalize(json.RawMessage(tt.raw))
			if err == nil {
				t.Fatalf("Canonicalize(%s) returned nil error", tt.raw)
			}
			if !errors.Is(err, ErrMalformed) && !errors.Is(err, ErrNoIdentifier) {
				t.Fatalf("error = %v, want ErrMalformed or ErrNoIdentifier", err)
			}
		})
	}
}

func TestCanonicalize_FullRecord(t *testing.T) {
	raw := `{
		"_id": "p7",
		"title": "Marina Penthouse",
		"location": "Dubai Marina",
		"price": "12500000",
		"bedrooms": 4,
		"bathrooms": "five",
		"area": 5400,
		"type": "Penthouse",
		"status": "Featured",
		"images": ["a.jpg", "b.jpg"],
		"description": "Sea views",
		"amenities": ["Pool", "Gym"],
		"agent": {"name": "Layla", "image": "layla.jpg"},
		"coordinates": {"lat": 25.08, "lng": 55.14},
		"createdAt": "2024-03-01T10:00:00Z"
	}`
	l, err := Canonicalize(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}
	if l.ID != "p7" || l.Title != "Marina Penthouse" || l.Category != CategoryPenthouse {
		t.Fatalf("unexpected listing: %#v", l)
	}
	if !l.Price.Valid || l.Price.Value != 12500000 {
		t.Fatalf("Price = %#v, want valid 12500000", l.Price)
	}
	if l.Bathrooms.Valid || l.Bathrooms.Raw != "five" {
		t.Fatalf("Bathrooms = %#v, want invalid raw five", l.Bathrooms)
	}
	if want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC); !l.CreatedAt.Equal(want) {
		t.Fatalf("CreatedAt = %v, want %v", l.CreatedAt, want)
	}
	if l.Agent.Name != "Layla" || len(l.Amenities) != 2 {
		t.Fatalf("nested fields not decoded: %#v", l)
	}
	if l.Geohash() == "" {
		t.Fatalf("Geohash should be set for known coordinates")
	}
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: `{"_id":"abc"}`, want: "abc"},
		{raw: `{"id":"p1","_id":"abc"}`, want: "p1"},
		{raw: `"p9"`, want: "p9"},
		{raw: `{}`, wantErr: true},
		{raw: ``, wantErr: true},
	}
	for _, tt := range tests {
		got, err := Identify(json.RawMessage(tt.raw))
		if tt.wantErr {
			if err == nil {
				t.Fatalf("Identify(%q) = %q, want error", tt.raw, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("Identify(%q) = %q, %v; want %q", tt.raw, got, err, tt.want)
		}
	}
}

func TestDecodeCollection_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantIDs     []string
		wantDropped int
		wantErr     bool
	}{
		{name: "bare array", body: `[{"id":"a"},{"_id":"b"}]`, wantIDs: []string{"a", "b"}},
		{name: "properties envelope", body: `{"properties":[{"id":"a"}]}`, wantIDs: []string{"a"}},
		{name: "data envelope", body: `{"data":[{"_id":"z"}]}`, wantIDs: []string{"z"}},
		{name: "drops malformed", body: `[{"id":"a"},{"title":"no id"},42]`, wantIDs: []string{"a"}, wantDropped: 2},
		{name: "empty array", body: `[]`, wantIDs: []string{}},
		{name: "envelope without array", body: `{"properties":{"id":"a"}}`, wantErr: true},
		{name: "unknown envelope", body: `{"items":[]}`, wantErr: true},
		{name: "scalar", body: `"nope"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, dropped, err := DecodeCollection([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeCollection returned nil error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeCollection returned error: %v", err)
			}
			if dropped != tt.wantDropped {
				t.Fatalf("dropped = %d, want %d", dropped, tt.wantDropped)
			}
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if items[i].ID != id {
					t.Fatalf("items[%d].ID = %q, want %q", i, items[i].ID, id)
				}
			}
		})
	}
}

func TestNumber_JSON(t *testing.T) {
	tests := []struct {
		in        string
		wantValid bool
		wantValue float64
		wantOut   string
	}{
		{in: `1500000`, wantValid: true, wantValue: 1500000, wantOut: `1500000`},
		{in: `"2,500,000"`, wantValid: true, wantValue: 2500000, wantOut: `2500000`},
		{in: `"5+"`, wantValid: false, wantOut: `"5+"`},
		{in: `null`, wantValid: false, wantOut: `null`},
		{in: `"NaN"`, wantValid: false, wantOut: `"NaN"`},
		{in: `"nan"`, wantValid: false, wantOut: `"nan"`},
		{in: `"Infinity"`, wantValid: false, wantOut: `"Infinity"`},
		{in: `"-Inf"`, wantValid: false, wantOut: `"-Inf"`},
		{in: `1e999`, wantValid: false, wantOut: `"1e999"`},
	}
	for _, tt := range tests {
		var n Number
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", tt.in, err)
		}
		if n.Valid != tt.wantValid || (tt.wantValid && n.Value != tt.wantValue) {
			t.Fatalf("Unmarshal(%s) = %#v", tt.in, n)
		}
		out, err := json.Marshal(n)
		if err != nil {
			t.Fatalf("Marshal returned error: %v", err)
		}
		if string(out) != tt.wantOut {
			t.Fatalf("Marshal(%s) = %s, want %s", tt.in, out, tt.wantOut)
		}
	}
}

func TestNumber_MarshalNonFiniteValue(t *testing.T) {
	out, err := json.Marshal(Number{Value: math.Inf(1), Valid: true})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(out) != `null` {
		t.Fatalf("Marshal(+Inf) = %s, want null", out)
	}
}

func TestClone_DoesNotShareSlices(t *testing.T) {
	orig := Listing{ID: "a", Images: []string{"1.jpg"}, Amenities: []string{"Pool"}}
	dup := orig.Clone()
	dup.Images[0] = "changed.jpg"
	dup.Amenities[0] = "Spa"
	if orig.Images[0] != "1.jpg" || orig.Amenities[0] != "Pool" {
		t.Fatalf("Clone shares slices with original: %#v", orig)
	}
}
