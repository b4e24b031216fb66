package geo

import "math"

// BoundingBox is a degree-based rectangle given by its north-west and
// south-east corners. A box may span the antimeridian, in which case its
// west edge is numerically greater than its east edge.
type BoundingBox struct {
	NW Point `json:"nw"`
	SE Point `json:"se"`
}

// NewBoundingBox builds a box from feature extents.
func NewBoundingBox(xmin, ymax, xmax, ymin float64) BoundingBox {
	return BoundingBox{NW: Point{Lng: xmin, Lat: ymax}, SE: Point{Lng: xmax, Lat: ymin}}
}

// BoundingBoxFromPointRadius returns the square box whose edges lie radius
// meters north, south, east and west of center.
func BoundingBoxFromPointRadius(center Point, radius float64) BoundingBox {
	n := Destination(center, radius, 0)
	e := Destination(center, radius, 90)
	s := Destination(center, radius, 180)
	w := Destination(center, radius, 270)
	return BoundingBox{
		NW: Point{Lng: w.Lng, Lat: n.Lat},
		SE: Point{Lng: e.Lng, Lat: s.Lat},
	}
}

func (b BoundingBox) North() float64 { return b.NW.Lat }
func (b BoundingBox) South() float64 { return b.SE.Lat }
func (b BoundingBox) West() float64  { return b.NW.Lng }
func (b BoundingBox) East() float64  { return b.SE.Lng }

// IsValid reports whether both corners are valid points.
func (b BoundingBox) IsValid() bool {
	return b.NW.IsValid() && b.SE.IsValid()
}

// SpansAntimeridian reports whether the box crosses longitude ±180.
func (b BoundingBox) SpansAntimeridian() bool {
	return Lng180(b.West()) > Lng180(b.East())
}

// Center returns the midpoint of the box, travelling east from the west edge.
func (b BoundingBox) Center() Point {
	width := LngDistance(b.West(), b.East())
	return Point{
		Lng: Lng180(Lng180(b.West()) + width/2),
		Lat: (b.North() + b.South()) / 2,
	}
}

// Extent returns the distance in meters from the center of the box to its
// farthest corner.
func (b BoundingBox) Extent() float64 {
	c := b.Center()
	corners := [4]Point{
		b.NW,
		{Lng: b.East(), Lat: b.North()},
		b.SE,
		{Lng: b.West(), Lat: b.South()},
	}
	var extent float64
	for _, corner := range corners {
		extent = math.Max(extent, GreatCircleDistance(c, corner))
	}
	return extent
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	if p.Lat > b.North() || p.Lat < b.South() {
		return false
	}
	return IsLongitudeBetween(p.Lng, b.West(), b.East())
}

// Less orders boxes by their north-west corner, then their south-east corner.
func (b BoundingBox) Less(o BoundingBox) bool {
	if b.NW != o.NW {
		return b.NW.Less(o.NW)
	}
	return b.SE.Less(o.SE)
}

func (b BoundingBox) String() string {
	return b.NW.String() + "|" + b.SE.String()
}
