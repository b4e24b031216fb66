package geo

import "math"

// Lng180 maps a longitude in degrees into (-180, 180].
func Lng180(lng float64) float64 {
	l := math.Mod(lng, 360)
	switch {
	case l <= -180:
		l += 360
	case l > 180:
		l -= 360
	}
	return l
}

// LngDistance returns the number of degrees travelled eastward from west to
// east. Equal longitudes mean the whole circle (360), not zero.
func LngDistance(west, east float64) float64 {
	w := Lng180(west)
	e := Lng180(east)
	if w == e {
		return 360
	}
	if w > e {
		return 360 + e - w
	}
	return e - w
}

// IsLongitudeBetween reports whether, travelling east from west, lng is
// reached no later than east. Both edges are inclusive.
func IsLongitudeBetween(lng, west, east float64) bool {
	if Lng180(lng) == Lng180(east) {
		return true
	}
	return LngDistance(west, east) >= LngDistance(lng, east)
}

// Intersection returns the overlap of a and b. The second result is false
// when the boxes do not overlap on either axis.
func Intersection(a, b BoundingBox) (BoundingBox, bool) {
	var n, s, w, e float64

	switch {
	case a.South() <= b.North() && b.North() <= a.North():
		n = b.North()
	case b.South() <= a.North() && a.North() <= b.North():
		n = a.North()
	default:
		return BoundingBox{}, false
	}

	switch {
	case a.South() <= b.South() && b.South() <= a.North():
		s = b.South()
	case b.South() <= a.South() && a.South() <= b.North():
		s = a.South()
	default:
		return BoundingBox{}, false
	}

	switch {
	case IsLongitudeBetween(b.West(), a.West(), a.East()):
		w = b.West()
	case IsLongitudeBetween(a.West(), b.West(), b.East()):
		w = a.West()
	default:
		return BoundingBox{}, false
	}

	switch {
	case IsLongitudeBetween(b.East(), a.West(), a.East()):
		e = b.East()
	case IsLongitudeBetween(a.East(), b.West(), b.East()):
		e = a.East()
	default:
		return BoundingBox{}, false
	}

	return BoundingBox{NW: Point{Lng: w, Lat: n}, SE: Point{Lng: e, Lat: s}}, true
}

// IntersectAll folds Intersection over boxes from left to right. An empty
// slice has no intersection and a single box is returned unchanged.
func IntersectAll(boxes []BoundingBox) (BoundingBox, bool) {
	if len(boxes) == 0 {
		return BoundingBox{}, false
	}
	result := boxes[0]
	for _, b := range boxes[1:] {
		var ok bool
		result, ok = Intersection(result, b)
		if !ok {
			return BoundingBox{}, false
		}
	}
	return result, true
}
