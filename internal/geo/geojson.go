package geo

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Geometry converts the box to a polygon. Boxes spanning the antimeridian
// are split at ±180 into a two-part multipolygon so GeoJSON consumers do not
// draw them the long way round.
func (b BoundingBox) Geometry() geom.T {
	w, e := Lng180(b.West()), Lng180(b.East())
	n, s := b.North(), b.South()
	if w <= e {
		return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring(w, s, e, n)})
	}
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{ring(w, s, 180, n)},
		{ring(-180, s, e, n)},
	})
}

func ring(w, s, e, n float64) []geom.Coord {
	return []geom.Coord{{w, s}, {e, s}, {e, n}, {w, n}, {w, s}}
}

// Feature renders the box as a GeoJSON feature. Its properties carry the
// equivalent georeference: the formatted center and the error radius
// rounded up to whole meters.
func (b BoundingBox) Feature(id string) *geojson.Feature {
	g := GeoreferenceFromBox(b)
	p := g.FormattedPoint()
	return &geojson.Feature{
		ID:       id,
		Geometry: b.Geometry(),
		Properties: map[string]any{
			"lng":         p.Lng,
			"lat":         p.Lat,
			"uncertainty": g.FormattedError(),
		},
	}
}

// FeatureCollection renders boxes as a GeoJSON feature collection with
// ids "<prefix>-<n>".
func FeatureCollection(prefix string, boxes []BoundingBox) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(boxes))}
	for i, b := range boxes {
		fc.Features = append(fc.Features, b.Feature(fmt.Sprintf("%s-%d", prefix, i+1)))
	}
	return fc
}
