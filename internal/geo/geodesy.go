package geo

import "math"

// EarthRadius is the WGS84 equatorial radius in meters. The spherical
// approximation is good enough at the sub-kilometer precision targeted here.
const EarthRadius = 6378137.0

// DegreeDigits is the number of digits kept after the decimal point when
// rendering coordinates. Seven digits keeps round trips between coordinate
// systems below one meter.
const DegreeDigits = 7

// Destination returns the point reached by travelling distance meters from
// origin along the initial bearing (degrees clockwise from true north).
func Destination(origin Point, distance, bearing float64) Point {
	theta := toRad(normalizeBearing(bearing))
	delta := distance / EarthRadius
	phi1 := toRad(origin.Lat)
	lambda1 := toRad(origin.Lng)

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(clamp(sinPhi2, -1, 1))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*sinPhi2,
	)

	return Point{Lng: Lng180(toDeg(lambda2)), Lat: toDeg(phi2)}
}

// GreatCircleDistance returns the haversine distance between a and b in meters.
func GreatCircleDistance(a, b Point) float64 {
	phi1 := toRad(a.Lat)
	phi2 := toRad(b.Lat)
	dPhi := toRad(b.Lat - a.Lat)
	dLambda := toRad(b.Lng - a.Lng)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// normalizeBearing reduces a bearing into [0, 360).
func normalizeBearing(bearing float64) float64 {
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func toDeg(rad float64) float64 { return rad * 180 / math.Pi }
