package geo

import (
	"math"
	"strconv"
	"strings"
)

// Georeference is a point plus a radius of positional uncertainty in meters.
type Georeference struct {
	Point Point   `json:"point"`
	Error float64 `json:"error"`
}

// GeoreferenceFromBox describes a box by its center and extent.
func GeoreferenceFromBox(b BoundingBox) Georeference {
	return Georeference{Point: b.Center(), Error: b.Extent()}
}

// BoundingBox returns the square box of half-width Error around Point.
func (g Georeference) BoundingBox() BoundingBox {
	return BoundingBoxFromPointRadius(g.Point, g.Error)
}

// FormattedPoint returns the point truncated to DegreeDigits decimal places.
func (g Georeference) FormattedPoint() Point {
	return Point{Lng: truncateDegrees(g.Point.Lng), Lat: truncateDegrees(g.Point.Lat)}
}

// FormattedError returns the error rounded up to the next whole meter.
// Uncertainty is never under-reported.
func (g Georeference) FormattedError() int {
	return int(math.Ceil(g.Error))
}

// FormatDegrees renders a coordinate truncated to at most DegreeDigits
// decimal places with no trailing zeros, e.g. 60 -> "60",
// 0.96666666667 -> "0.9666666".
func FormatDegrees(deg float64) string {
	s := truncatedDecimal(deg)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// truncatedDecimal cuts the shortest decimal form of deg after DegreeDigits
// fraction digits. Working on the decimal text keeps values such as 37.1
// from losing a digit to binary representation error.
func truncatedDecimal(deg float64) string {
	s := strconv.FormatFloat(deg, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > DegreeDigits {
		s = s[:i+1+DegreeDigits]
	}
	return s
}

func truncateDegrees(deg float64) float64 {
	v, err := strconv.ParseFloat(truncatedDecimal(deg), 64)
	if err != nil {
		return deg
	}
	if v == 0 {
		return 0
	}
	return v
}
