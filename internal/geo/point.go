// Package geo holds the degree-based geometry used for georeferencing:
// points, bounding boxes, great-circle math and antimeridian-aware
// bounding box intersection. Everything here is a pure function over
// value types and is safe for concurrent use.
package geo

import (
	"math"
	"strconv"
)

// Point is a longitude/latitude pair in degrees, independent of any
// coordinate reference system. Points are values; operations return new ones.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// NewPoint returns the point at the given longitude and latitude.
func NewPoint(lng, lat float64) Point {
	return Point{Lng: lng, Lat: lat}
}

// IsValid reports whether the coordinates are within the usual ranges.
// Validity is advisory; nothing in this package rejects invalid points.
func (p Point) IsValid() bool {
	return math.Abs(p.Lat) <= 90 && math.Abs(p.Lng) <= 180
}

// Less orders points by latitude, then longitude.
func (p Point) Less(o Point) bool {
	if p.Lat != o.Lat {
		return p.Lat < o.Lat
	}
	return p.Lng < o.Lng
}

func (p Point) String() string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
