package domain

import (
	"slices"
	"strings"

	"github.com/couchcryptid/locality-georef/internal/geo"
)

// SplitLocalities splits a location on commas and semicolons into trimmed,
// non-empty, distinct sub-localities in order of first appearance.
func SplitLocalities(location string) []string {
	parts := strings.FieldsFunc(location, func(r rune) bool { return r == ',' || r == ';' })
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Georef is the rendered form of a georeference: the center rounded to
// seven decimal places, the uncertainty rounded up to whole meters and the
// box the georeference was derived from.
type Georef struct {
	Lng         float64         `json:"lng"`
	Lat         float64         `json:"lat"`
	Uncertainty int             `json:"uncertainty"`
	BoundingBox geo.BoundingBox `json:"bounding_box"`
}

// NewGeoref describes b by its center and extent.
func NewGeoref(b geo.BoundingBox) Georef {
	g := geo.GeoreferenceFromBox(b)
	p := g.FormattedPoint()
	return Georef{Lng: p.Lng, Lat: p.Lat, Uncertainty: g.FormattedError(), BoundingBox: b}
}

func georefsFromBoxes(boxes []geo.BoundingBox) []Georef {
	if len(boxes) == 0 {
		return nil
	}
	out := make([]Georef, len(boxes))
	for i, b := range boxes {
		out[i] = NewGeoref(b)
	}
	return out
}

// Locality is one sub-locality of a location as it moves through
// classification, parsing, geocoding and georeferencing.
type Locality struct {
	Name       string                        `json:"name"`
	Type       LocalityType                  `json:"locality_type"`
	TypeScores map[string]float64            `json:"type_scores,omitempty"`
	Parts      ParsedLocality                `json:"parts"`
	Geocodes   map[string][]GeocodeCandidate `json:"feature_geocodes,omitempty"`
	Georefs    []Georef                      `json:"georefs,omitempty"`
}

// Boxes returns the boxes of the locality's georeferences.
func (l Locality) Boxes() []geo.BoundingBox {
	out := make([]geo.BoundingBox, len(l.Georefs))
	for i, g := range l.Georefs {
		out[i] = g.BoundingBox
	}
	return out
}

// CombineGeorefs intersects the candidate boxes of several sub-localities.
// Each list holds the alternatives for one sub-locality; a region survives
// if it overlaps one alternative of every list. Empty lists are dropped
// rather than emptying the result. The result is de-duplicated and sorted.
func CombineGeorefs(lists [][]geo.BoundingBox) []geo.BoundingBox {
	var results []geo.BoundingBox
	started := false
	for _, next := range lists {
		if len(next) == 0 {
			continue
		}
		if !started {
			results = uniqueBoxes(next)
			started = true
			continue
		}
		var merged []geo.BoundingBox
		for _, r := range results {
			for _, n := range next {
				if b, ok := geo.Intersection(r, n); ok {
					merged = append(merged, b)
				}
			}
		}
		results = uniqueBoxes(merged)
		if len(results) == 0 {
			return nil
		}
	}
	return results
}

func uniqueBoxes(boxes []geo.BoundingBox) []geo.BoundingBox {
	out := slices.Clone(boxes)
	slices.SortFunc(out, compareBoxes)
	return slices.Compact(out)
}

func compareBoxes(a, b geo.BoundingBox) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
