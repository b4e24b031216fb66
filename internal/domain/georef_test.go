package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/locality-georef/internal/geo"
)

// --- mocks ---

type mockGeocoder struct {
	mu      sync.Mutex
	results map[string][]GeocodeCandidate
	errs    map[string]error
	calls   map[string]int
}

func newMockGeocoder() *mockGeocoder {
	return &mockGeocoder{
		results: make(map[string][]GeocodeCandidate),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (m *mockGeocoder) withBox(name string, b geo.BoundingBox) *mockGeocoder {
	m.results[name] = append(m.results[name], GeocodeCandidate{Name: name, Location: b.Center(), Bounds: &b})
	return m
}

func (m *mockGeocoder) Geocode(ctx context.Context, feature string) ([]GeocodeCandidate, error) {
	m.mu.Lock()
	m.calls[feature]++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.errs[feature]; err != nil {
		return nil, err
	}
	return m.results[feature], nil
}

type mockClassifier struct {
	types map[string]LocalityType
	err   error
}

func (m *mockClassifier) Classify(_ context.Context, name string) (Classification, error) {
	if m.err != nil {
		return Classification{}, m.err
	}
	return Classification{Type: m.types[name], Scores: map[string]float64{string(m.types[name]): 0.9}}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestGeoreferencer_FeatureOnlyIntersection(t *testing.T) {
	geocoder := newMockGeocoder().
		withBox("Berkeley", berkeleyBox).
		withBox("California", californiaBox)
	classifier := &mockClassifier{types: map[string]LocalityType{
		"Berkeley":   FeatureOnly,
		"California": FeatureOnly,
	}}
	g := NewGeoreferencer(classifier, geocoder, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-1", "Berkeley, California")
	require.NoError(t, err)

	assert.Equal(t, "req-1", result.ID)
	assert.Equal(t, "Berkeley, California", result.Location)
	assert.Equal(t, ResultStatusOK, result.Status)
	require.Len(t, result.Localities, 2)
	assert.Equal(t, "Berkeley", result.Localities[0].Name)
	assert.Equal(t, FeatureOnly, result.Localities[0].Type)
	assert.Equal(t, 0.9, result.Localities[0].TypeScores["f"])
	require.Len(t, result.Localities[0].Georefs, 1)

	require.Len(t, result.Georefs, 1)
	assert.Equal(t, berkeleyBox, result.Georefs[0].BoundingBox)
	assert.Equal(t, []geo.BoundingBox{berkeleyBox}, result.Boxes())
}

func TestGeoreferencer_OffsetHeading(t *testing.T) {
	geocoder := newMockGeocoder().withBox("Berkeley", berkeleyBox)
	g := NewGeoreferencer(nil, geocoder, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-2", "5 mi N Berkeley")
	require.NoError(t, err)

	want, err := ProjectWithError(berkeleyBox, "5", mustUnit(t, "mi"), mustHeading(t, "N"))
	require.NoError(t, err)

	require.Len(t, result.Localities, 1)
	loc := result.Localities[0]
	assert.Equal(t, FeatureOffsetHeading, loc.Type)
	assert.Equal(t, "5 mi N Berkeley", loc.Parts.InterpretedLoc)
	assert.Len(t, loc.Geocodes["Berkeley"], 1)

	require.Len(t, result.Georefs, 1)
	assert.Equal(t, want, result.Georefs[0].BoundingBox)
	assert.Equal(t, NewGeoref(want), result.Georefs[0])
}

func TestGeoreferencer_GeocodesEachFeatureOnce(t *testing.T) {
	geocoder := newMockGeocoder().withBox("Berkeley", berkeleyBox)
	g := NewGeoreferencer(nil, geocoder, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-3", "Berkeley; 5 mi N Berkeley")
	require.NoError(t, err)

	assert.Equal(t, 1, geocoder.calls["Berkeley"])
	require.Len(t, result.Localities, 2)
	assert.Equal(t, FeatureOnly, result.Localities[0].Type)
	assert.Equal(t, FeatureOffsetHeading, result.Localities[1].Type)
	assert.Len(t, result.Georefs, 1)
}

func TestGeoreferencer_GeocoderErrorDegrades(t *testing.T) {
	geocoder := newMockGeocoder().withBox("Berkeley", berkeleyBox)
	geocoder.errs["Nowhere"] = errors.New("upstream 503")
	g := NewGeoreferencer(nil, geocoder, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-4", "Berkeley, Nowhere")
	require.NoError(t, err)

	assert.Equal(t, ResultStatusOK, result.Status)
	require.Len(t, result.Georefs, 1)
	assert.Equal(t, berkeleyBox, result.Georefs[0].BoundingBox)
	assert.Empty(t, result.Localities[1].Georefs)
}

func TestGeoreferencer_ClassifierErrorFallsBackToRules(t *testing.T) {
	geocoder := newMockGeocoder().withBox("Berkeley", berkeleyBox)
	classifier := &mockClassifier{err: errors.New("prediction service down")}
	g := NewGeoreferencer(classifier, geocoder, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-5", "5 mi N Berkeley")
	require.NoError(t, err)

	require.Len(t, result.Localities, 1)
	assert.Equal(t, FeatureOffsetHeading, result.Localities[0].Type)
	assert.Len(t, result.Georefs, 1)
}

func TestGeoreferencer_IncompleteLocalitySkipsGeocoding(t *testing.T) {
	geocoder := newMockGeocoder().withBox("Berkeley", berkeleyBox)
	classifier := &mockClassifier{types: map[string]LocalityType{"10 mi Berkeley": FeatureOffsetHeading}}
	g := NewGeoreferencer(classifier, geocoder, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-6", "10 mi Berkeley")
	require.NoError(t, err)

	assert.Zero(t, geocoder.calls["Berkeley"])
	assert.Equal(t, "no heading", result.Localities[0].Parts.Status)
	assert.Equal(t, ResultStatusNoMatch, result.Status)
	assert.Empty(t, result.Georefs)
}

func TestGeoreferencer_UnmatchedNamesAreDropped(t *testing.T) {
	geocoder := newMockGeocoder()
	geocoder.results["Berkley"] = []GeocodeCandidate{{Name: "Berkeley", Bounds: &berkeleyBox}}
	g := NewGeoreferencer(nil, geocoder, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-7", "Berkley")
	require.NoError(t, err)

	assert.Equal(t, ResultStatusNoMatch, result.Status)
	assert.Empty(t, result.Georefs)
}

func TestGeoreferencer_DisjointLocalities(t *testing.T) {
	geocoder := newMockGeocoder().
		withBox("Berkeley", berkeleyBox).
		withBox("Alameda", alamedaBox)
	g := NewGeoreferencer(nil, geocoder, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-8", "Berkeley; Alameda")
	require.NoError(t, err)

	assert.Equal(t, ResultStatusNoMatch, result.Status)
	assert.Len(t, result.Localities[0].Georefs, 1)
	assert.Len(t, result.Localities[1].Georefs, 1)
}

func TestGeoreferencer_NilGeocoder(t *testing.T) {
	g := NewGeoreferencer(nil, nil, DefaultExtentPolicy(), discardLogger())

	result, err := g.Georeference(context.Background(), "req-9", "Berkeley")
	require.NoError(t, err)
	assert.Equal(t, ResultStatusNoMatch, result.Status)
}

func TestGeoreferencer_EmptyLocation(t *testing.T) {
	g := NewGeoreferencer(nil, newMockGeocoder(), DefaultExtentPolicy(), discardLogger())

	_, err := g.Georeference(context.Background(), "req-10", " ;, ")
	assert.ErrorIs(t, err, ErrEmptyLocation)
}

func TestGeoreferencer_CancelledContext(t *testing.T) {
	g := NewGeoreferencer(nil, newMockGeocoder(), DefaultExtentPolicy(), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Georeference(ctx, "req-11", "Berkeley")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeoreferencer_ProcessedAt(t *testing.T) {
	fixed := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	g := NewGeoreferencer(nil, newMockGeocoder(), DefaultExtentPolicy(), discardLogger())
	result, err := g.Georeference(context.Background(), "req-12", "Berkeley")
	require.NoError(t, err)
	assert.Equal(t, fixed, result.ProcessedAt)
}
