package listing

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Category is the property type shown in the catalog.
type Category string

const (
	CategoryApartment  Category = "Apartment"
	CategoryVilla      Category = "Villa"
	CategoryPenthouse  Category = "Penthouse"
	CategoryCommercial Category = "Commercial"
	CategoryOffPlan    Category = "Off-Plan"
)

// Categories lists the known categories in display order.
func Categories() []Category {
	return []Category{CategoryApartment, CategoryVilla, CategoryPenthouse, CategoryCommercial, CategoryOffPlan}
}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the marketing status of a listing.
type Status string

const (
	StatusFeatured Status = "Featured"
	StatusNew      Status = "New"
	StatusForSale  Status = "For Sale"
)

// Agent is the contact person attached to a listing.
type Agent struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Coordinates locate a listing on a map.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether no position was supplied.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Listing is one property in the catalog. ID never changes once assigned;
// every other field is replaced wholesale on update.
type Listing struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Price       Number      `json:"price"`
	Bedrooms    Number      `json:"bedrooms"`
	Bathrooms   Number      `json:"bathrooms"`
	Area        Number      `json:"area"`
	Category    Category    `json:"type"`
	Status      Status      `json:"status"`
	Images      []string    `json:"images"`
	Description string      `json:"description"`
	Amenities   []string    `json:"amenities"`
	Agent       Agent       `json:"agent"`
	Coordinates Coordinates `json:"coordinates"`
	CreatedAt   time.Time   `json:"createdAt,omitzero"`
}

// Clone returns a copy that shares no slices with l.
func (l Listing) Clone() Listing {
	dup := l
	if l.Images != nil {
		dup.Images = append([]string(nil), l.Images...)
	}
	if l.Amenities != nil {
		dup.Amenities = append([]string(nil), l.Amenities...)
	}
	return dup
}

// CloneAll copies a collection element by element.
func CloneAll(items []Listing) []Listing {
	if items == nil {
		return nil
	}
	dup := make([]Listing, len(items))
	for i, item := range items {
		dup[i] = item.Clone()
	}
	return dup
}

// Number is a numeric attribute that may arrive as a JSON number or a numeric
// string. Values that are neither keep their raw text and report !Valid.
type Number struct {
	Value float64
	Valid bool
	Raw   string
}

// NewNumber returns a valid Number.
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Int returns the value truncated to an int and whether it is usable.
func (n Number) Int() (int, bool) {
	if !n.Valid {
		return 0, false
	}
	return int(n.Value), true
}

// String renders the number for display.
func (n Number) String() string {
	if !n.Valid {
		return n.Raw
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		n.setText(s)
		return nil
	}
	if v, ok := parseFinite(string(trimmed)); ok {
		n.Value = v
		n.Valid = true
		return nil
	}
	n.Raw = string(trimmed)
	return nil
}

func (n *Number) setText(s string) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if v, ok := parseFinite(clean); ok {
		n.Value = v
		n.Valid = true
		return
	}
	n.Raw = s
}

// parseFinite parses a decimal number. NaN and the infinities are rejected:
// they compare false against every bound and have no JSON encoding.
func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.Valid && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0) {
		return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
	}
	if n.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(n.Raw)
}
