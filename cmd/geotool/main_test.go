package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/geo"
)

var (
	mockGazetteer = filepath.Join("..", "..", "data", "mock", "gazetteer.json")
	mockRequests  = filepath.Join("..", "..", "data", "mock", "requests.json")
)

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCmd(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: geotool")

	code, _, stderr = runCmd(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)
}

func TestParse(t *testing.T) {
	code, stdout, _ := runCmd(t, "parse", "5", "mi", "N", "Berkeley")
	require.Equal(t, 0, code)

	var p domain.ParsedLocality
	require.NoError(t, json.Unmarshal([]byte(stdout), &p))
	assert.Equal(t, domain.FeatureOffsetHeading, p.Type)
	assert.Equal(t, "5", p.OffsetValue)
	assert.Equal(t, "mi", p.OffsetUnit)
	assert.Equal(t, "N", p.Heading)
	assert.Equal(t, []string{"Berkeley"}, p.Features)
	assert.True(t, p.Complete())
}

func TestParse_ExplicitType(t *testing.T) {
	code, stdout, _ := runCmd(t, "parse", "-type", "f", "5 mi N Berkeley")
	require.Equal(t, 0, code)

	var p domain.ParsedLocality
	require.NoError(t, json.Unmarshal([]byte(stdout), &p))
	assert.Equal(t, domain.FeatureOnly, p.Type)
	assert.Equal(t, []string{"5 mi N Berkeley"}, p.Features)

	code, _, stderr := runCmd(t, "parse", "-type", "paper", "Berkeley")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "paper")

	code, _, _ = runCmd(t, "parse")
	assert.Equal(t, 2, code)
}

func TestPrecision(t *testing.T) {
	code, stdout, _ := runCmd(t, "precision", "-unit", "miles", "1.50")
	require.Equal(t, 0, code)

	var out precisionOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "1.50", out.Distance)
	assert.InDelta(t, 0.005, out.Precision, 1e-12)
	assert.Equal(t, "mi", out.Unit)
	assert.InDelta(t, 8.04672, out.PrecisionM, 1e-9)

	code, stdout, _ = runCmd(t, "precision", "10")
	require.Equal(t, 0, code)
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.InDelta(t, 5, out.Precision, 0)
}

func TestPrecision_Errors(t *testing.T) {
	code, _, stderr := runCmd(t, "precision", "ten")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ten")

	code, _, _ = runCmd(t, "precision", "-unit", "league", "10")
	assert.Equal(t, 1, code)

	code, _, _ = runCmd(t, "precision")
	assert.Equal(t, 2, code)
}

func TestIntersect(t *testing.T) {
	code, stdout, _ := runCmd(t, "intersect", "-122.4,37.9,-122.2,37.8", "-122.3,37.88,-122.1,37.6")
	require.Equal(t, 0, code)

	var g domain.Georef
	require.NoError(t, json.Unmarshal([]byte(stdout), &g))
	assert.Equal(t, geo.NewBoundingBox(-122.3, 37.88, -122.2, 37.8), g.BoundingBox)
	assert.Positive(t, g.Uncertainty)
}

func TestIntersect_Antimeridian(t *testing.T) {
	code, stdout, _ := runCmd(t, "intersect", "--", "170,10,-170,-10", "175,5,180,-5")
	require.Equal(t, 0, code)

	var g domain.Georef
	require.NoError(t, json.Unmarshal([]byte(stdout), &g))
	assert.InDelta(t, 5, g.BoundingBox.North(), 1e-9)
	assert.InDelta(t, -5, g.BoundingBox.South(), 1e-9)
}

func TestIntersect_Errors(t *testing.T) {
	code, _, stderr := runCmd(t, "intersect", "0,1,1,0", "5,6,6,5")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "do not intersect")

	code, _, _ = runCmd(t, "intersect", "0,1,1")
	assert.Equal(t, 2, code)

	code, _, _ = runCmd(t, "intersect")
	assert.Equal(t, 2, code)
}

func TestPaperMap(t *testing.T) {
	code, stdout, _ := runCmd(t, "papermap", "-corner", "0,0", "-unit", "km", "-south", "3", "-west", "4")
	require.Equal(t, 0, code)

	var p geo.Point
	require.NoError(t, json.Unmarshal([]byte(stdout), &p))
	assert.Negative(t, p.Lat)
	assert.Negative(t, p.Lng)

	code, _, _ = runCmd(t, "papermap", "-corner", "0,0", "-north", "1")
	assert.Equal(t, 1, code)

	code, _, _ = runCmd(t, "papermap", "-north", "1", "-east", "1")
	assert.Equal(t, 2, code)
}

func TestGeoref(t *testing.T) {
	code, stdout, _ := runCmd(t, "georef", "-gazetteer", mockGazetteer, "Berkeley;", "Oakland")
	require.Equal(t, 0, code)

	var result domain.GeorefResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "Berkeley; Oakland", result.Location)
	assert.Equal(t, domain.ResultStatusOK, result.Status)
	assert.Len(t, result.Georefs, 1)
}

func TestGeoref_File(t *testing.T) {
	in := filepath.Join(t.TempDir(), "requests.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"id":"a","location":"Berkeley"},{"location":"Atlantis"}]`), 0o600))

	code, stdout, _ := runCmd(t, "georef", "-gazetteer", mockGazetteer, "-in", in)
	require.Equal(t, 0, code)

	var results []domain.GeorefResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Len(t, results[0].Georefs, 2)
	assert.Equal(t, domain.RequestID("Atlantis"), results[1].ID)
	assert.Equal(t, domain.ResultStatusNoMatch, results[1].Status)
}

func TestGeoref_GeoJSON(t *testing.T) {
	code, stdout, _ := runCmd(t, "georef", "-gazetteer", mockGazetteer, "-geojson", "Berkeley")
	require.Equal(t, 0, code)

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 2)
}

func TestGeoref_Errors(t *testing.T) {
	code, _, _ := runCmd(t, "georef", "Berkeley")
	assert.Equal(t, 2, code)

	code, _, _ = runCmd(t, "georef", "-gazetteer", mockGazetteer)
	assert.Equal(t, 2, code)

	code, _, stderr := runCmd(t, "georef", "-gazetteer", filepath.Join(t.TempDir(), "missing.json"), "Berkeley")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "open gazetteer")
}

func TestValidate_MockData(t *testing.T) {
	code, stdout, stderr := runCmd(t, "validate", "-gazetteer", mockGazetteer, "-requests", mockRequests)
	require.Equal(t, 0, code, stdout+stderr)
	assert.Contains(t, stdout, "fixture consistency")
	assert.NotContains(t, stdout, "FAIL")
}

func TestValidate_ReportsMismatches(t *testing.T) {
	reqs := filepath.Join(t.TempDir(), "requests.json")
	require.NoError(t, os.WriteFile(reqs, []byte(`[
		{"id":"x","location":"Berkeley","expected_status":"ok","expected_georefs":1},
		{"id":"x","location":"Atlantis","expected_status":"ok","expected_georefs":0}
	]`), 0o600))

	code, stdout, _ := runCmd(t, "validate", "-gazetteer", mockGazetteer, "-requests", reqs)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "FAIL")
	assert.Contains(t, stdout, `duplicate id "x"`)
	assert.Contains(t, stdout, "x: 2 georeferences, want 1")
	assert.Contains(t, stdout, "x: status no_georeference, want ok")
}
