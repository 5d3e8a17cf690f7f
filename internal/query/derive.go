package query

import (
	"slices"
	"strings"

	"github.com/nestingglobal/nestview/internal/listing"
)

// Stats summarizes a collection for the admin header.
type Stats struct {
	Total    int
	Featured int
}

// Summarize counts listings and featured listings.
func Summarize(items []listing.Listing) Stats {
	stats := Stats{Total: len(items)}
	for _, item := range items {
		if item.Status == listing.StatusFeatured {
			stats.Featured++
		}
	}
	return stats
}

// Locations returns the distinct non-empty locations, sorted.
func Locations(items []listing.Listing) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		loc := strings.TrimSpace(item.Location)
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	slices.Sort(out)
	return out
}

// Similar returns up to limit listings sharing target's category, excluding
// target itself, in collection order.
func Similar(items []listing.Listing, target listing.Listing, limit int) []listing.Listing {
	if limit <= 0 {
		return nil
	}
	var out []listing.Listing
	for _, item := range items {
		if item.ID == target.ID || item.Category != target.Category {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Featured returns the listings marked Featured, in collection order.
func Featured(items []listing.Listing) []listing.Listing {
	var out []listing.Listing
	for _, item := range items {
		if item.Status == listing.StatusFeatured {
			out = append(out, item)
		}
	}
	return out
}

// NextOption cycles through All followed by options.
func NextOption(current string, options []string) string {
	if current == All {
		if len(options) == 0 {
			return All
		}
		return options[0]
	}
	for i, opt := range options {
		if opt == current && i+1 < len(options) {
			return options[i+1]
		}
	}
	return All
}

// CategoryOptions returns the category selector values.
func CategoryOptions() []string {
	cats := listing.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
