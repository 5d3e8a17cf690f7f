package ui

import (
	"testing"
	"time"

	"github.com/nestingglobal/nestview/internal/listing"
	"github.com/nestingglobal/nestview/internal/query"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name string
		in   listing.Number
		want string
	}{
		{name: "million", in: listing.NewNumber(1_000_000), want: "AED 1,000,000"},
		{name: "small", in: listing.NewNumber(950), want: "AED 950"},
		{name: "rounds", in: listing.NewNumber(2_500_000.6), want: "AED 2,500,001"},
		{name: "raw text kept", in: listing.Number{Raw: "On request"}, want: "On request"},
		{name: "missing", in: listing.Number{}, want: "Price on request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPrice(tt.in); got != tt.want {
				t.Fatalf("formatPrice = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatPriceCeiling(t *testing.T) {
	if got := formatPriceCeiling(query.DefaultPriceCeiling); got != "Up to AED 100,000,000" {
		t.Fatalf("formatPriceCeiling = %q", got)
	}
}

func TestFormatRoomsAndArea(t *testing.T) {
	if got := formatRooms(listing.NewNumber(3), "bd"); got != "3 bd" {
		t.Fatalf("formatRooms = %q", got)
	}
	if got := formatRooms(listing.NewNumber(2), ""); got != "2" {
		t.Fatalf("formatRooms without unit = %q", got)
	}
	if got := formatRooms(listing.Number{Raw: "studio"}, "bd"); got != "studio" {
		t.Fatalf("formatRooms raw = %q", got)
	}
	if got := formatArea(listing.NewNumber(12500)); got != "12,500 sqft" {
		t.Fatalf("formatArea = %q", got)
	}
}

func TestRoomFilterLabel(t *testing.T) {
	tests := map[int]string{0: "Any", 1: "1+", 4: "4+", 5: "5+", 9: "5+"}
	for in, want := range tests {
		if got := roomFilterLabel(in); got != want {
			t.Fatalf("roomFilterLabel(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCoordinates(t *testing.T) {
	if got := formatCoordinates(listing.Listing{}); got != "Not provided" {
		t.Fatalf("formatCoordinates(zero) = %q", got)
	}
	l := listing.Listing{Coordinates: listing.Coordinates{Lat: 25.2048, Lng: 55.2708}}
	want := "25.20480, 55.27080 (geohash " + l.Geohash() + ")"
	if got := formatCoordinates(l); got != want {
		t.Fatalf("formatCoordinates = %q, want %q", got, want)
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	tests := []struct {
		at   time.Time
		want string
	}{
		{at: time.Time{}, want: ""},
		{at: now.Add(-10 * time.Second), want: "11:59:50 (now)"},
		{at: now.Add(-5 * time.Minute), want: "11:55:00 (5m ago)"},
		{at: now.Add(-3 * time.Hour), want: "09:00:00 (3h ago)"},
		{at: now.Add(-48 * time.Hour), want: "2025-02-27 12:00"},
	}
	for _, tt := range tests {
		if got := formatTimestamp(tt.at, now); got != tt.want {
			t.Fatalf("formatTimestamp(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{in: "Marina Loft", limit: 20, want: "Marina Loft"},
		{in: "Marina Loft", limit: 6, want: "Marin…"},
		{in: "  padded  ", limit: 0, want: "padded"},
		{in: "Villa", limit: 1, want: "V"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
	if got := truncateMiddle("/home/user/.local/state/nestview.log", 15); got != "/home/u…iew.log" {
		t.Fatalf("truncateMiddle = %q", got)
	}
}

func TestFitColumn(t *testing.T) {
	if got := fitColumn("multi\nline   text", 12); got != "multi line …" {
		t.Fatalf("fitColumn = %q", got)
	}
	if got := fitColumn("ab", 4); got != "ab  " {
		t.Fatalf("fitColumn pad = %q", got)
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		selected, n, visible, want int
	}{
		{selected: 0, n: 5, visible: 10, want: 0},
		{selected: 3, n: 20, visible: 5, want: 0},
		{selected: 9, n: 20, visible: 5, want: 5},
		{selected: 19, n: 20, visible: 5, want: 15},
	}
	for _, tt := range tests {
		if got := scrollWindow(tt.selected, tt.n, tt.visible); got != tt.want {
			t.Fatalf("scrollWindow(%d, %d, %d) = %d, want %d", tt.selected, tt.n, tt.visible, got, tt.want)
		}
	}
}
