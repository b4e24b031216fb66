package domain

import (
	"fmt"
	"math"

	"github.com/couchcryptid/locality-georef/internal/geo"
)

// DirectionError grows a starting error by the uncertainty of travelling
// offset meters along a heading whose bearing is only known to within the
// heading's angular error. All distances are in meters.
func DirectionError(startError, offset float64, heading Heading) float64 {
	rad := heading.Error * math.Pi / 180
	x := offset * math.Cos(rad)
	y := offset * math.Sin(rad)
	return math.Hypot(offset+startError-x, y)
}

// FeatureOffsetHeadingError returns the radius in meters that covers the
// feature's extent, the precision of the written offset and the heading's
// angular error.
func FeatureOffsetHeadingError(extent float64, offset string, unit DistanceUnit, heading Heading) (float64, error) {
	_, value, ok := parseDistance(offset)
	if !ok {
		return 0, fmt.Errorf("offset %q: %w", offset, ErrIndeterminatePrecision)
	}
	precision, ok := DistancePrecision(offset)
	if !ok {
		return 0, fmt.Errorf("offset %q: %w", offset, ErrIndeterminatePrecision)
	}
	start := extent + precision*unit.ToMeters
	return DirectionError(start, value*unit.ToMeters, heading), nil
}

// ProjectWithError moves from the center of anchor by offset along the
// heading and returns the square box whose half-width is the combined error.
func ProjectWithError(anchor geo.BoundingBox, offset string, unit DistanceUnit, heading Heading) (geo.BoundingBox, error) {
	center := anchor.Center()
	radius, err := FeatureOffsetHeadingError(anchor.Extent(), offset, unit, heading)
	if err != nil {
		return geo.BoundingBox{}, err
	}
	_, value, _ := parseDistance(offset)
	point := geo.Destination(center, value*unit.ToMeters, heading.Bearing)
	return geo.BoundingBoxFromPointRadius(point, radius), nil
}

// Project applies a complete feature-offset-heading parse to the box of its
// anchor feature.
func (p ParsedLocality) Project(anchor geo.BoundingBox) (geo.BoundingBox, error) {
	if p.Type != FeatureOffsetHeading || !p.Complete() {
		return geo.BoundingBox{}, fmt.Errorf("%q (%s): %w", p.Verbatim, p.Status, ErrIncompleteLocality)
	}
	unit, ok := LookupUnit(p.OffsetUnit)
	if !ok {
		return geo.BoundingBox{}, fmt.Errorf("%q: %w", p.OffsetUnit, ErrUnknownUnit)
	}
	heading, ok := LookupHeading(p.Heading)
	if !ok {
		return geo.BoundingBox{}, fmt.Errorf("%q: %w", p.Heading, ErrUnknownHeading)
	}
	return ProjectWithError(anchor, p.OffsetValue, unit, heading)
}

// ExtentPolicy chooses the radius of a geocoded point that comes without
// bounds. It is a policy, not a measurement.
type ExtentPolicy struct {
	RooftopRadiusM float64
	DefaultRadiusM float64
}

// DefaultExtentPolicy uses 100 m for rooftop matches and 1000 m otherwise.
func DefaultExtentPolicy() ExtentPolicy {
	return ExtentPolicy{RooftopRadiusM: 100, DefaultRadiusM: 1000}
}

// Radius returns the fallback radius for a point of the given location type.
func (p ExtentPolicy) Radius(locationType string) float64 {
	if locationType == LocationTypeRooftop {
		return p.RooftopRadiusM
	}
	return p.DefaultRadiusM
}

// PaperMapPoint returns the point reached from corner by moving north or
// south and east or west along the grid of a paper map, as in
// "2 mi N and 3 mi E of the SW corner". Exactly one of north/south and one
// of east/west must be given; distances are literals in unit.
func PaperMapPoint(corner geo.Point, unit, north, south, east, west string) (geo.Point, error) {
	u, ok := LookupUnit(unit)
	if !ok {
		return geo.Point{}, fmt.Errorf("%q: %w", unit, ErrUnknownUnit)
	}

	nsText, nsBearing := north, 0.0
	if nsText == "" {
		nsText, nsBearing = south, 180
	}
	ewText, ewBearing := east, 90.0
	if ewText == "" {
		ewText, ewBearing = west, 270
	}
	if nsText == "" || ewText == "" {
		return geo.Point{}, fmt.Errorf("paper map offsets need a north/south and an east/west distance: %w", ErrIncompleteLocality)
	}

	_, ns, ok := parseDistance(nsText)
	if !ok {
		return geo.Point{}, fmt.Errorf("north/south distance %q: %w", nsText, ErrInvalidDistance)
	}
	_, ew, ok := parseDistance(ewText)
	if !ok {
		return geo.Point{}, fmt.Errorf("east/west distance %q: %w", ewText, ErrInvalidDistance)
	}

	nsPoint := geo.Destination(corner, ns*u.ToMeters, nsBearing)
	ewPoint := geo.Destination(corner, ew*u.ToMeters, ewBearing)
	return geo.Point{Lng: ewPoint.Lng, Lat: nsPoint.Lat}, nil
}
