package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/locality-georef/internal/geo"
)

// Result statuses carried on output messages.
const (
	ResultStatusOK      = "ok"
	ResultStatusNoMatch = "no_georeference"
)

// GeorefResult is the outcome of georeferencing one location.
type GeorefResult struct {
	ID          string     `json:"id"`
	Location    string     `json:"location"`
	Status      string     `json:"status"`
	Localities  []Locality `json:"localities"`
	Georefs     []Georef   `json:"georefs"`
	ProcessedAt time.Time  `json:"processed_at"`
}

// Boxes returns the boxes of the combined georeferences.
func (r GeorefResult) Boxes() []geo.BoundingBox {
	out := make([]geo.BoundingBox, len(r.Georefs))
	for i, g := range r.Georefs {
		out[i] = g.BoundingBox
	}
	return out
}

// defaultGeocodeConcurrency bounds parallel geocoder calls per request.
const defaultGeocodeConcurrency = 4

// Georeferencer turns a free-text location into georeferences: split into
// sub-localities, classify, parse, geocode each distinct feature once,
// derive candidate boxes and intersect them across sub-localities.
type Georeferencer struct {
	classifier  Classifier
	geocoder    Geocoder
	policy      ExtentPolicy
	logger      *slog.Logger
	concurrency int
}

// NewGeoreferencer creates a Georeferencer. A nil classifier falls back to
// RuleClassifier; a nil geocoder yields localities without georeferences.
func NewGeoreferencer(classifier Classifier, geocoder Geocoder, policy ExtentPolicy, logger *slog.Logger) *Georeferencer {
	if classifier == nil {
		classifier = RuleClassifier{}
	}
	return &Georeferencer{
		classifier:  classifier,
		geocoder:    geocoder,
		policy:      policy,
		logger:      logger,
		concurrency: defaultGeocodeConcurrency,
	}
}

// Georeference georeferences location. Failures of the classifier or the
// geocoder for one sub-locality degrade that sub-locality only; an error is
// returned only for an empty location or a cancelled context.
func (g *Georeferencer) Georeference(ctx context.Context, id, location string) (GeorefResult, error) {
	names := SplitLocalities(location)
	if len(names) == 0 {
		return GeorefResult{}, fmt.Errorf("georeference %q: %w", id, ErrEmptyLocation)
	}
	g.logger.Debug("georeferencing", "id", id, "location", location, "localities", names)

	localities := make([]Locality, len(names))
	for i, name := range names {
		localities[i] = g.parse(ctx, name)
	}

	geocodes, err := g.geocodeFeatures(ctx, localities)
	if err != nil {
		return GeorefResult{}, err
	}

	lists := make([][]geo.BoundingBox, len(localities))
	for i := range localities {
		lists[i] = g.localityBoxes(&localities[i], geocodes)
	}

	result := GeorefResult{
		ID:          id,
		Location:    location,
		Localities:  localities,
		Georefs:     georefsFromBoxes(CombineGeorefs(lists)),
		ProcessedAt: clock.Now(),
	}
	result.Status = ResultStatusOK
	if len(result.Georefs) == 0 {
		result.Status = ResultStatusNoMatch
	}
	return result, nil
}

func (g *Georeferencer) parse(ctx context.Context, name string) Locality {
	class, err := g.classifier.Classify(ctx, name)
	if err != nil {
		g.logger.Warn("locality classification failed, using rules", "locality", name, "error", err)
		class, _ = RuleClassifier{}.Classify(ctx, name)
	}
	parts := Parse(name, class.Type)
	if !parts.Complete() {
		g.logger.Info("locality incomplete", "locality", name, "type", class.Type, "status", parts.Status)
	}
	return Locality{
		Name:       name,
		Type:       parts.Type,
		TypeScores: class.Scores,
		Parts:      parts,
	}
}

// geocodeFeatures looks up every distinct feature of the complete
// localities once.
func (g *Georeferencer) geocodeFeatures(ctx context.Context, localities []Locality) (map[string][]GeocodeCandidate, error) {
	var features []string
	seen := make(map[string]bool)
	for _, loc := range localities {
		if !loc.Parts.Complete() {
			continue
		}
		for _, f := range loc.Parts.Features {
			key := strings.ToLower(f)
			if seen[key] {
				continue
			}
			seen[key] = true
			features = append(features, f)
		}
	}

	out := make(map[string][]GeocodeCandidate, len(features))
	if g.geocoder == nil || len(features) == 0 {
		return out, nil
	}

	results := make([][]GeocodeCandidate, len(features))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, f := range features {
		eg.Go(func() error {
			candidates, err := g.geocoder.Geocode(egCtx, f)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				g.logger.Warn("geocoding failed", "feature", f, "error", err)
				return nil
			}
			results[i] = candidates
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("geocode features: %w", err)
	}

	for i, f := range features {
		out[strings.ToLower(f)] = results[i]
	}
	return out, nil
}

// localityBoxes derives the candidate boxes of one locality and records
// them on it.
func (g *Georeferencer) localityBoxes(loc *Locality, geocodes map[string][]GeocodeCandidate) []geo.BoundingBox {
	if !loc.Parts.Complete() {
		return nil
	}

	var boxes []geo.BoundingBox
	loc.Geocodes = make(map[string][]GeocodeCandidate, len(loc.Parts.Features))
	for _, feature := range loc.Parts.Features {
		candidates := MatchingCandidates(feature, geocodes[strings.ToLower(feature)])
		loc.Geocodes[feature] = candidates
		for _, c := range candidates {
			anchor := c.BoundingBox(g.policy)
			if loc.Type == FeatureOnly {
				boxes = append(boxes, anchor)
				continue
			}
			b, err := loc.Parts.Project(anchor)
			if err != nil {
				g.logger.Warn("offset projection failed", "locality", loc.Name, "feature", feature, "error", err)
				continue
			}
			boxes = append(boxes, b)
		}
	}
	if len(boxes) == 0 {
		g.logger.Info("locality has no georeference", "locality", loc.Name)
	}
	loc.Georefs = georefsFromBoxes(boxes)
	return boxes
}
