package ui

import (
	"testing"

	"github.com/nestingglobal/nestview/internal/listing"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	tests := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for current, want := range tests {
		if got := NextTheme(current); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", current, got, want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
	if got := GetTheme("missing").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(missing).Name = %q, want Nightfox", got)
	}
}

func TestThemesColorEveryStatus(t *testing.T) {
	statuses := []listing.Status{listing.StatusFeatured, listing.StatusNew, listing.StatusForSale}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, s := range statuses {
			if th.StatusColors[string(s)] == "" {
				t.Fatalf("theme %s has no color for status %q", name, s)
			}
		}
		if th.Favorite == "" {
			t.Fatalf("theme %s has no favorite color", name)
		}
	}
}

func TestColorForStatusFallsBackToMuted(t *testing.T) {
	m := New(Options{})
	if got := m.colorForStatus("Sold"); got != m.theme.Muted {
		t.Fatalf("colorForStatus(Sold) = %q, want muted %q", got, m.theme.Muted)
	}
	if got := m.colorForStatus(listing.StatusNew); got != m.theme.StatusColors["New"] {
		t.Fatalf("colorForStatus(New) = %q", got)
	}
}
