package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/locality-georef/internal/adapter/gazetteer"
	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/geo"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func runParse(args []string, stdout io.Writer) error {
	fs := newFlagSet("parse")
	typ := fs.String("type", "", "locality type f or foh; classified by rules when empty")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: locality text required", errUsage)
	}

	var locType domain.LocalityType
	if *typ == "" {
		class, err := domain.RuleClassifier{}.Classify(context.Background(), text)
		if err != nil {
			return err
		}
		locType = class.Type
	} else {
		t, err := domain.ParseLocalityType(*typ)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		locType = t
	}
	return writeJSON(stdout, domain.Parse(text, locType))
}

type precisionOutput struct {
	Distance   string  `json:"distance"`
	Precision  float64 `json:"precision"`
	Unit       string  `json:"unit,omitempty"`
	PrecisionM float64 `json:"precision_m,omitempty"`
}

func runPrecision(args []string, stdout io.Writer) error {
	fs := newFlagSet("precision")
	unitName := fs.String("unit", "", "distance unit, reports the precision in meters as well")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: exactly one distance required", errUsage)
	}

	text := fs.Arg(0)
	precision, ok := domain.DistancePrecision(text)
	if !ok {
		return fmt.Errorf("%q: %w", text, domain.ErrIndeterminatePrecision)
	}
	out := precisionOutput{Distance: text, Precision: precision}
	if *unitName != "" {
		unit, ok := domain.LookupUnit(*unitName)
		if !ok {
			return fmt.Errorf("%q: %w", *unitName, domain.ErrUnknownUnit)
		}
		out.Unit = unit.Name
		out.PrecisionM = precision * unit.ToMeters
	}
	return writeJSON(stdout, out)
}

// runIntersect takes no flags: western longitudes start with "-" and would
// be read as flags.
func runIntersect(args []string, stdout io.Writer) error {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one box required", errUsage)
	}

	boxes := make([]geo.BoundingBox, len(args))
	for i, s := range args {
		b, err := parseBox(s)
		if err != nil {
			return err
		}
		boxes[i] = b
	}
	b, ok := geo.IntersectAll(boxes)
	if !ok {
		return errors.New("boxes do not intersect")
	}
	return writeJSON(stdout, domain.NewGeoref(b))
}

func runPaperMap(args []string, stdout io.Writer) error {
	fs := newFlagSet("papermap")
	corner := fs.String("corner", "", "corner point lng,lat")
	unit := fs.String("unit", "mi", "distance unit")
	north := fs.String("north", "", "distance north of the corner")
	south := fs.String("south", "", "distance south of the corner")
	east := fs.String("east", "", "distance east of the corner")
	west := fs.String("west", "", "distance west of the corner")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *corner == "" {
		return fmt.Errorf("%w: -corner required", errUsage)
	}

	c, err := parsePoint(*corner)
	if err != nil {
		return err
	}
	p, err := domain.PaperMapPoint(c, *unit, *north, *south, *east, *west)
	if err != nil {
		return err
	}
	return writeJSON(stdout, p)
}

func runGeoref(args []string, stdout io.Writer) error {
	fs := newFlagSet("georef")
	path := fs.String("gazetteer", "", "JSON file of places")
	in := fs.String("in", "", "JSON file of requests [{\"id\",\"location\"}] instead of a location argument")
	asGeoJSON := fs.Bool("geojson", false, "write the combined boxes as a GeoJSON feature collection")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("%w: -gazetteer required", errUsage)
	}

	reqs, err := georefRequests(*in, fs.Args())
	if err != nil {
		return err
	}
	places, err := gazetteer.LoadFile(*path)
	if err != nil {
		return err
	}
	g := domain.NewGeoreferencer(nil, places, domain.DefaultExtentPolicy(), stderrLogger())

	results := make([]domain.GeorefResult, 0, len(reqs))
	for _, r := range reqs {
		result, err := g.Georeference(context.Background(), r.ID, r.Location)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	if *asGeoJSON {
		var boxes []geo.BoundingBox
		for _, r := range results {
			boxes = append(boxes, r.Boxes()...)
		}
		return writeJSON(stdout, geo.FeatureCollection("georef", boxes))
	}
	if *in == "" {
		return writeJSON(stdout, results[0])
	}
	return writeJSON(stdout, results)
}

// georefRequests reads requests from file, or makes one from args.
func georefRequests(file string, args []string) ([]domain.LocalityRequest, error) {
	if file == "" {
		location := strings.Join(args, " ")
		if strings.TrimSpace(location) == "" {
			return nil, fmt.Errorf("%w: location or -in required", errUsage)
		}
		return []domain.LocalityRequest{{ID: domain.RequestID(location), Location: location}}, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}
	var reqs []domain.LocalityRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	for i := range reqs {
		if reqs[i].ID == "" {
			reqs[i].ID = domain.RequestID(reqs[i].Location)
		}
	}
	return reqs, nil
}

func stderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
