package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nestingglobal/nestview/internal/listing"
)

var printer = message.NewPrinter(language.English)

// formatAmount groups digits with commas: 1000000 -> "1,000,000".
func formatAmount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// formatPrice renders a listing price as "AED 1,000,000". Non-numeric prices
// keep their original text.
func formatPrice(n listing.Number) string {
	if !n.Valid {
		if raw := strings.TrimSpace(n.Raw); raw != "" {
			return raw
		}
		return "Price on request"
	}
	return "AED " + formatAmount(n.Value)
}

// formatPriceCeiling renders the max-price filter.
func formatPriceCeiling(v float64) string {
	return "Up to AED " + formatAmount(v)
}

// formatRooms renders a bedroom or bathroom count with its unit.
func formatRooms(n listing.Number, unit string) string {
	if !n.Valid {
		if raw := strings.TrimSpace(n.Raw); raw != "" {
			return raw
		}
		return "–"
	}
	return strings.TrimSpace(n.String() + " " + unit)
}

// formatArea renders an area in square feet.
func formatArea(n listing.Number) string {
	if !n.Valid {
		if raw := strings.TrimSpace(n.Raw); raw != "" {
			return raw
		}
		return "–"
	}
	return formatAmount(n.Value) + " sqft"
}

// roomFilterLabel renders a bedroom/bathroom minimum as the selector shows it.
func roomFilterLabel(n int) string {
	switch {
	case n <= 0:
		return "Any"
	case n >= MaxRoomFilter:
		return fmt.Sprintf("%d+", MaxRoomFilter)
	default:
		return fmt.Sprintf("%d+", n)
	}
}

// formatCoordinates renders a position with its geohash.
func formatCoordinates(l listing.Listing) string {
	if l.Coordinates.IsZero() {
		return "Not provided"
	}
	return fmt.Sprintf("%.5f, %.5f (geohash %s)", l.Coordinates.Lat, l.Coordinates.Lng, l.Geohash())
}

// formatTimestamp formats a time with a relative indicator.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	since := now.Sub(t)
	out := t.Local().Format("15:04:05")

	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	default:
		out = t.Local().Format("2006-01-02 15:04")
	}
	return out
}

// formatDate renders a creation date, or a dash when unknown.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "–"
	}
	return t.Local().Format("2006-01-02")
}

// classifyError returns a short label for a remote failure.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "UNREACHABLE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "returned status"):
		return "HTTP ERROR"
	default:
		return "ERROR"
	}
}
