package domain

import (
	"context"
	"strings"

	"github.com/couchcryptid/locality-georef/internal/geo"
)

// LocationTypeRooftop marks a geocoded point precise to a single address.
const LocationTypeRooftop = "ROOFTOP"

// GeocodeCandidate is one place returned by a geocoding provider for a
// feature name. Bounds is nil when the provider only supplied a point.
type GeocodeCandidate struct {
	Name             string           `json:"name"`
	FormattedAddress string           `json:"formatted_address,omitempty"`
	Names            []string         `json:"names,omitempty"` // alternative and component names
	Location         geo.Point        `json:"location"`
	Bounds           *geo.BoundingBox `json:"bounds,omitempty"`
	LocationType     string           `json:"location_type,omitempty"`
	Source           string           `json:"source,omitempty"` // "mapbox", "google"
}

// BoundingBox returns the candidate's bounds, or a square around its point
// sized by policy when the provider gave no bounds.
func (c GeocodeCandidate) BoundingBox(policy ExtentPolicy) geo.BoundingBox {
	if c.Bounds != nil {
		return *c.Bounds
	}
	return geo.BoundingBoxFromPointRadius(c.Location, policy.Radius(c.LocationType))
}

// Matches reports whether the candidate is named feature, ignoring case.
func (c GeocodeCandidate) Matches(feature string) bool {
	feature = strings.TrimSpace(feature)
	if feature == "" {
		return false
	}
	if strings.EqualFold(c.Name, feature) {
		return true
	}
	for _, n := range c.Names {
		if strings.EqualFold(n, feature) {
			return true
		}
	}
	return false
}

// MatchingCandidates keeps the candidates named feature. Providers return
// fuzzy matches ("Berkeley" for "Berkley Springs"); those are dropped.
func MatchingCandidates(feature string, candidates []GeocodeCandidate) []GeocodeCandidate {
	var out []GeocodeCandidate
	for _, c := range candidates {
		if c.Matches(feature) {
			out = append(out, c)
		}
	}
	return out
}

// Geocoder resolves a feature name to candidate places.
type Geocoder interface {
	// Geocode returns every candidate the provider knows for feature. An
	// unknown feature yields no candidates and no error.
	Geocode(ctx context.Context, feature string) ([]GeocodeCandidate, error)
}
