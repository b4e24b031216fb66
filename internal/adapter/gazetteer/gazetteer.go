// Package gazetteer is an offline geocoder over a fixed list of places read
// from a JSON file. It serves local runs of the service and the CLI without
// provider credentials.
package gazetteer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/locality-georef/internal/domain"
)

// Gazetteer implements domain.Geocoder over an in-memory place list.
type Gazetteer struct {
	byName map[string][]domain.GeocodeCandidate
	size   int
}

// New indexes places by their name and alternative names.
func New(places []domain.GeocodeCandidate) *Gazetteer {
	g := &Gazetteer{byName: make(map[string][]domain.GeocodeCandidate), size: len(places)}
	for _, p := range places {
		if p.Source == "" {
			p.Source = "gazetteer"
		}
		seen := make(map[string]bool)
		for _, n := range append([]string{p.Name}, p.Names...) {
			key := normalize(n)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			g.byName[key] = append(g.byName[key], p)
		}
	}
	return g
}

// Load reads a JSON array of places from r.
func Load(r io.Reader) (*Gazetteer, error) {
	var places []domain.GeocodeCandidate
	if err := json.NewDecoder(r).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode gazetteer: %w", err)
	}
	return New(places), nil
}

// LoadFile reads a JSON array of places from path.
func LoadFile(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gazetteer: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of places.
func (g *Gazetteer) Len() int { return g.size }

func (g *Gazetteer) Geocode(_ context.Context, feature string) ([]domain.GeocodeCandidate, error) {
	matches := g.byName[normalize(feature)]
	if len(matches) == 0 {
		return nil, nil
	}
	out := make([]domain.GeocodeCandidate, len(matches))
	copy(out, matches)
	return out, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
