package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw locality requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw locality request into a serialized result.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes serialized results to the sink.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline reads locality requests in batches, georeferences each one and
// publishes the results. Offsets are committed only after a successful load,
// except for requests that cannot be georeferenced at all, which are
// committed immediately so they are not redelivered.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	ready       atomic.Bool
	backoff     time.Duration
}

// New creates a Pipeline.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		backoff:     initialBackoff,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// result.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no locality requests georeferenced yet")
	}
	return nil
}

// Run georeferences batches until the context is cancelled. It only returns
// nil; source and sink failures are retried with exponential backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for ctx.Err() == nil {
		if !p.step(ctx) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// step handles one batch. It reports false when the pipeline should stop.
func (p *Pipeline) step(ctx context.Context) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.wait(ctx)
	}
	if len(batch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	p.backoff = initialBackoff

	results, pending, skipped, ok := p.georeferenceBatch(ctx, batch)
	if !ok {
		return false
	}
	if len(results) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, results); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(results))
		return p.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(results)))
	for _, raw := range pending {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Debug("batch georeferenced",
		"published", len(results),
		"skipped", skipped,
		"duration", time.Since(start),
	)
	return true
}

// georeferenceBatch transforms every request in the batch. Requests that fail
// are committed and counted as skipped; the rest are returned with the raw
// events whose offsets must be committed after the load. A failure caused by
// cancellation stops the batch with nothing committed, so the remaining
// requests are redelivered; ok is false in that case.
func (p *Pipeline) georeferenceBatch(ctx context.Context, batch []domain.RawEvent) (results []domain.OutputEvent, pending []domain.RawEvent, skipped int, ok bool) {
	results = make([]domain.OutputEvent, 0, len(batch))
	pending = make([]domain.RawEvent, 0, len(batch))

	for _, raw := range batch {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("batch interrupted, leaving offsets uncommitted",
					"topic", raw.Topic,
					"partition", raw.Partition,
					"offset", raw.Offset,
				)
				return nil, nil, skipped, false
			}
			p.logger.Warn("skipping locality request",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			skipped++
			continue
		}
		results = append(results, out)
		pending = append(pending, raw)
	}
	return results, pending, skipped, true
}

// wait sleeps for the current backoff and doubles it. It reports false if the
// context ends first.
func (p *Pipeline) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, p.backoff) {
		return false
	}
	p.backoff = retry.NextBackoff(p.backoff, maxBackoff)
	return true
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
