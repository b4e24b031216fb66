// Command geotool exposes the georeferencing primitives on the command line
// without Kafka or provider credentials.
//
// Usage:
//
//	geotool parse [-type f|foh] "5 mi N Berkeley"
//	geotool precision [-unit mi] 1.50
//	geotool intersect "-122.4,37.9,-122.2,37.8" "-122.3,37.88,-122.1,37.6"
//	geotool papermap -corner "-122.3,37.8" -unit mi -north 2 -east 0.5
//	geotool georef -gazetteer data/mock/gazetteer.json [-geojson] "Berkeley; Oakland"
//	geotool validate -gazetteer data/mock/gazetteer.json -requests data/mock/requests.json
//
// Boxes are written west,north,east,south and points lng,lat.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/locality-georef/internal/geo"
)

// errUsage marks bad arguments; run prints usage and exits 2.
var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer) error
}

func commands() []command {
	return []command{
		{name: "parse", summary: "split a locality into offset, unit, heading and feature", run: runParse},
		{name: "precision", summary: "precision of a written distance", run: runPrecision},
		{name: "intersect", summary: "intersect bounding boxes", run: runIntersect},
		{name: "papermap", summary: "point at orthogonal offsets from a map corner", run: runPaperMap},
		{name: "georef", summary: "georeference locations against a gazetteer file", run: runGeoref},
		{name: "validate", summary: "check mock requests against their expected results", run: runValidate},
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	for _, c := range commands() {
		if c.name != args[0] {
			continue
		}
		err := c.run(args[1:], stdout)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "geotool %s: %v\n", c.name, err)
			return 2
		default:
			fmt.Fprintf(stderr, "geotool %s: %v\n", c.name, err)
			return 1
		}
	}
	fmt.Fprintf(stderr, "geotool: unknown command %q\n", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: geotool <command> [flags] [args]")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseBox reads "west,north,east,south".
func parseBox(s string) (geo.BoundingBox, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return geo.BoundingBox{}, fmt.Errorf("box %q: %w", s, err)
	}
	return geo.NewBoundingBox(v[0], v[1], v[2], v[3]), nil
}

// parsePoint reads "lng,lat".
func parsePoint(s string) (geo.Point, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return geo.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geo.NewPoint(v[0], v[1]), nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d comma-separated numbers", errUsage, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errUsage, p)
		}
		out[i] = f
	}
	return out, nil
}
