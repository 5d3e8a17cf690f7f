package listing

import "github.com/mmcloughlin/geohash"

// Geohash returns the geohash cell for the listing's coordinates, or "" when
// no position is known.
func (l Listing) Geohash() string {
	if l.Coordinates.IsZero() {
		return ""
	}
	return geohash.EncodeWithPrecision(l.Coordinates.Lat, l.Coordinates.Lng, 9)
}
