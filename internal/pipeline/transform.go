package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/observability"
)

// Georeferencer resolves a free-text location. *domain.Georeferencer
// implements it.
type Georeferencer interface {
	Georeference(ctx context.Context, id, location string) (domain.GeorefResult, error)
}

// GeorefTransformer implements Transformer: it decodes a locality request,
// georeferences it, and serializes the result.
type GeorefTransformer struct {
	georeferencer Georeferencer
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewTransformer creates a GeorefTransformer.
func NewTransformer(g Georeferencer, metrics *observability.Metrics, logger *slog.Logger) *GeorefTransformer {
	return &GeorefTransformer{
		georeferencer: g,
		metrics:       metrics,
		logger:        logger,
	}
}

func (t *GeorefTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseLocalityRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	result, err := t.georeferencer.Georeference(ctx, req.ID, req.Location)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	t.metrics.RecordResult(result)

	t.logger.Debug("location georeferenced",
		"id", result.ID,
		"status", result.Status,
		"georefs", len(result.Georefs),
	)
	return domain.SerializeResult(result)
}
