package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/storm-vortex-etl/internal/domain"
	"github.com/couchcryptid/storm-vortex-etl/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw request into a serialized cylindrical event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes cylindrical events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline moves vortex requests from the extractor through the transformer
// to the loader. Run must not be called concurrently.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int

	ready   atomic.Bool
	backoff time.Duration
}

// New creates a Pipeline with the given stages and observability.
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

// Ready reports whether at least one batch has been loaded.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// CheckReadiness reports readiness for /readyz: nil once a batch has been
// loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not produced any cylindrical events yet")
	}
	return nil
}

// Run executes the batch loop until ctx is cancelled. Extract and load
// failures back off exponentially from 200ms up to 5s.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for ctx.Err() == nil && p.step(ctx) {
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// batch is the transformed half of one extracted batch.
type batch struct {
	events  []domain.OutputEvent
	sources []domain.RawEvent
	skipped int
}

// step runs one extract, transform, load and commit cycle. It returns false
// when the loop should stop.
func (p *Pipeline) step(ctx context.Context) bool {
	start := time.Now()

	raws, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	switch {
	case err != nil && ctx.Err() != nil:
		return false
	case err != nil:
		p.logger.Error("extract batch failed", "error", err)
		return p.wait(ctx)
	case len(raws) == 0:
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))
	p.backoff = initialBackoff

	b := p.transformAll(ctx, raws)
	if len(b.events) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, b.events); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(b.events))
		return p.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(b.events)))
	for _, raw := range b.sources {
		p.commit(ctx, raw)
	}

	elapsed := time.Since(start)
	p.metrics.BatchProcessingDuration.Observe(elapsed.Seconds())
	p.ready.Store(true)
	p.logger.Debug("batch loaded",
		"requests", len(raws),
		"produced", len(b.events),
		"skipped", b.skipped,
		"duration", elapsed,
	)
	return true
}

// transformAll transforms every request. A request that fails is logged,
// counted and committed so it is not redelivered.
func (p *Pipeline) transformAll(ctx context.Context, raws []domain.RawEvent) batch {
	b := batch{
		events:  make([]domain.OutputEvent, 0, len(raws)),
		sources: make([]domain.RawEvent, 0, len(raws)),
	}
	for _, raw := range raws {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping request",
				"error", err,
				"key", string(raw.Key),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			b.skipped++
			continue
		}
		b.events = append(b.events, out)
		b.sources = append(b.sources, raw)
	}
	return b
}

// wait sleeps for the current backoff and doubles it. It returns false if
// ctx ends first.
func (p *Pipeline) wait(ctx context.Context) bool {
	if ctx.Err() != nil || !retry.SleepWithContext(ctx, p.backoff) {
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
