package enrich

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/mediaprobe"
	"marquee/internal/translate"
)

const defaultWorkers = 5

// MediaResolver is the slice of the media prober the pipeline needs.
type MediaResolver interface {
	Resolve(ctx context.Context, pointer string) *mediaprobe.Resolved
}

// Pipeline enriches raw catalog records with bounded concurrency.
type Pipeline struct {
	translator translate.Translator
	resolver   MediaResolver
	targetLang string
	workers    int
	logger     *slog.Logger
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithWorkers bounds how many items are enriched in parallel.
func WithWorkers(workers int) PipelineOption {
	return func(p *Pipeline) {
		if workers > 0 {
			p.workers = workers
		}
	}
}

// WithLogger attaches a logger for degraded-path diagnostics.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "enrich")
		}
	}
}

// NewPipeline builds an enrichment pipeline. translator may be a
// translate.Noop when translation is disabled.
func NewPipeline(translator translate.Translator, resolver MediaResolver, targetLang string, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		translator: translator,
		resolver:   resolver,
		targetLang: targetLang,
		workers:    defaultWorkers,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enrich processes raws concurrently and returns the enriched items in input
// order. Per-item sub-step failures degrade fields instead of failing the
// item. When ctx expires mid-run, items still in flight are abandoned and the
// completed prefix-preserving subset is returned; the caller decides whether
// a partial set is worth committing.
func (p *Pipeline) Enrich(ctx context.Context, raws []catalog.RawItem) []*Item {
	if len(raws) == 0 {
		return nil
	}

	results := make([]*Item, len(raws))
	completed := make([]atomic.Bool, len(raws))

	g := &errgroup.Group{}
	g.SetLimit(p.workers)

	for i := range raws {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			item := p.enrichOne(ctx, raws[i])
			// A deadline hit mid-item leaves half-done fields; drop the
			// item rather than commit a misleading result.
			if ctx.Err() != nil {
				return nil
			}
			results[i] = item
			completed[i].Store(true)
			return nil
		})
	}
	_ = g.Wait()

	items := make([]*Item, 0, len(raws))
	for i := range results {
		if completed[i].Load() {
			items = append(items, results[i])
		}
	}
	return items
}

// enrichOne runs the three sub-steps for a single record in parallel.
func (p *Pipeline) enrichOne(ctx context.Context, raw catalog.RawItem) *Item {
	item := &Item{
		Raw:     raw,
		Summary: raw.Summary,
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		item.Summary = p.translateSummary(ctx, raw)
	}()
	go func() {
		defer wg.Done()
		item.Media = p.resolver.Resolve(ctx, raw.PosterPath)
	}()
	go func() {
		defer wg.Done()
		item.TrailerURL = TrailerURL(raw.Links)
	}()

	wg.Wait()
	return item
}

// translateSummary returns the translated summary, degrading to the original
// text when translation is unnecessary or fails.
func (p *Pipeline) translateSummary(ctx context.Context, raw catalog.RawItem) string {
	if !translate.Needed(raw.Summary, raw.Language, p.targetLang) {
		return raw.Summary
	}
	translated, err := p.translator.Translate(ctx, raw.Summary, p.targetLang)
	if err != nil {
		p.logger.Warn("translation degraded to original text",
			logging.Int64(logging.FieldItemID, raw.ID),
			logging.Error(err))
		return raw.Summary
	}
	return translated
}
