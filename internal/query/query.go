// Package query derives the visible subset of the catalog from a snapshot and
// a filter/sort/search query. It holds no state.
package query

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/nestingglobal/nestview/internal/listing"
)

// All selects every location or category.
const All = "All"

// Any disables a bedroom or bathroom minimum.
const Any = 0

// Price selector bounds.
const (
	MinPriceCeiling     = 1_000_000
	DefaultPriceCeiling = 100_000_000
	PriceStep           = 1_000_000
)

// ErrInvalidSpec reports a structurally invalid query.
var ErrInvalidSpec = errors.New("invalid query spec")

// SortMode orders the filtered result.
type SortMode int

const (
	NewestFirst SortMode = iota
	PriceAsc
	PriceDesc
)

// SortModes lists the modes in selector order.
func SortModes() []SortMode {
	return []SortMode{NewestFirst, PriceAsc, PriceDesc}
}

func (m SortMode) String() string {
	switch m {
	case NewestFirst:
		return "Newest First"
	case PriceAsc:
		return "Price (Low to High)"
	case PriceDesc:
		return "Price (High to Low)"
	default:
		return fmt.Sprintf("SortMode(%d)", int(m))
	}
}

// Next returns the following mode in selector order.
func (m SortMode) Next() SortMode {
	modes := SortModes()
	for i, mode := range modes {
		if mode == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return NewestFirst
}

// Spec is the filter/sort/search state of the catalog view.
type Spec struct {
	Location     string
	Category     string
	MaxPrice     float64
	MinBedrooms  int
	MinBathrooms int
	Search       string
	Sort         SortMode
}

// DefaultSpec returns the initial catalog query.
func DefaultSpec() Spec {
	return Spec{
		Location: All,
		Category: All,
		MaxPrice: DefaultPriceCeiling,
		Sort:     NewestFirst,
	}
}

// Validate reports contract violations. A zero Location or Category is not
// valid; callers start from DefaultSpec.
func (s Spec) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Location) == "" {
		problems = append(problems, "location is empty")
	}
	if strings.TrimSpace(s.Category) == "" {
		problems = append(problems, "category is empty")
	}
	if s.MaxPrice < 0 {
		problems = append(problems, "max price is negative")
	}
	if s.MinBedrooms < 0 {
		problems = append(problems, "min bedrooms is negative")
	}
	if s.MinBathrooms < 0 {
		problems = append(problems, "min bathrooms is negative")
	}
	switch s.Sort {
	case NewestFirst, PriceAsc, PriceDesc:
	default:
		problems = append(problems, fmt.Sprintf("unknown sort mode %d", int(s.Sort)))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSpec, strings.Join(problems, ", "))
	}
	return nil
}

// Apply filters and sorts items according to spec. The input is not
// modified. An invalid spec is returned as an error before any filtering.
func Apply(items []listing.Listing, spec Spec) ([]listing.Listing, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(spec.Search))

	out := make([]listing.Listing, 0, len(items))
	for _, item := range items {
		if spec.Location != All && item.Location != spec.Location {
			continue
		}
		if spec.Category != All && string(item.Category) != spec.Category {
			continue
		}
		if !item.Price.Valid || item.Price.Value > spec.MaxPrice {
			continue
		}
		if !atLeast(item.Bedrooms, spec.MinBedrooms) {
			continue
		}
		if !atLeast(item.Bathrooms, spec.MinBathrooms) {
			continue
		}
		if needle != "" &&
			!strings.Contains(folder.String(item.Title), needle) &&
			!strings.Contains(folder.String(item.Location), needle) {
			continue
		}
		out = append(out, item)
	}

	sortListings(out, spec.Sort)
	return out, nil
}

func atLeast(n listing.Number, minimum int) bool {
	if minimum == Any {
		return true
	}
	return n.Valid && n.Value >= float64(minimum)
}

func sortListings(items []listing.Listing, mode SortMode) {
	switch mode {
	case PriceAsc:
		slices.SortStableFunc(items, func(a, b listing.Listing) int {
			return cmp.Compare(a.Price.Value, b.Price.Value)
		})
	case PriceDesc:
		slices.SortStableFunc(items, func(a, b listing.Listing) int {
			return cmp.Compare(b.Price.Value, a.Price.Value)
		})
	default:
		slices.SortStableFunc(items, func(a, b listing.Listing) int {
			switch {
			case newerThan(a, b):
				return -1
			case newerThan(b, a):
				return 1
			}
			return 0
		})
	}
}

// newerThan orders by CreatedAt, then by the numeric suffix of the id for
// records that predate the createdAt field. Records with neither sort last.
func newerThan(a, b listing.Listing) bool {
	at, bt := a.CreatedAt, b.CreatedAt
	switch {
	case !at.IsZero() && !bt.IsZero():
		return at.After(bt)
	case !at.IsZero():
		return true
	case !bt.IsZero():
		return false
	}
	an, aok := idSuffix(a.ID)
	bn, bok := idSuffix(b.ID)
	switch {
	case aok && bok:
		return an > bn
	case aok:
		return true
	default:
		return false
	}
}

// idSuffix parses the trailing run of digits in id, e.g. "p12" -> 12.
func idSuffix(id string) (int64, bool) {
	end := len(id)
	start := end
	for start > 0 && unicode.IsDigit(rune(id[start-1])) {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.ParseInt(id[start:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
