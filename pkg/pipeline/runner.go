package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forestplot/pkg/cache"
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Parse
	src := source(opts)
	observability.Pipeline().OnParseStart(ctx, src)
	parseStart := time.Now()
	spec, err := Parse(opts)
	result.Stats.ParseTime = time.Since(parseStart)
	if spec != nil {
		result.Stats.RowCount = len(spec.Data.Rows)
		result.Stats.ColumnCount = countColumns(spec)
	}
	observability.Pipeline().OnParseComplete(ctx, src, result.Stats.RowCount, result.Stats.ParseTime, err)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Spec = spec

	// Hash the canonical encoding, not the raw file, so formatting
	// differences in the source do not split the cache.
	canonical, err := spec.Marshal()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.SpecHash = cache.Hash(canonical)

	opts.Logger.Info("parsed spec",
		"rows", result.Stats.RowCount,
		"columns", result.Stats.ColumnCount,
		"duration", result.Stats.ParseTime)

	// Stage 2+3: Layout and render, with per-format artifact caching
	artifacts, hits, stats, err := r.renderCached(ctx, spec, result.SpecHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hits
	result.Stats.LayoutTime = stats.LayoutTime
	result.Stats.RenderTime = stats.RenderTime

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", result.CacheInfo.Hit(),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse runs the standalone parse stage: read, decode, validate.
func (r *Runner) Parse(ctx context.Context, opts Options) (*forest.Spec, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	return Parse(opts)
}

// RenderWithCacheInfo renders artifacts for an already parsed spec and
// reports, per format, whether the bytes came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, spec *forest.Spec, opts Options) (map[string][]byte, map[string]bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, nil, err
	}
	r.applyLogger(&opts)

	canonical, err := spec.Marshal()
	if err != nil {
		return nil, nil, err
	}
	artifacts, hits, _, err := r.renderCached(ctx, spec, cache.Hash(canonical), opts)
	return artifacts, hits, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, spec *forest.Spec, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, spec, opts)
	return artifacts, err
}

// renderStats carries the stage timings renderCached observed.
type renderStats struct {
	LayoutTime time.Duration
	RenderTime time.Duration
}

// renderCached serves every format it can from the artifact cache and
// composes the layout only when at least one format misses. Cache failures
// are treated as misses; a broken cache degrades to rendering, never to an
// error.
func (r *Runner) renderCached(ctx context.Context, spec *forest.Spec, specHash string, opts Options) (map[string][]byte, map[string]bool, renderStats, error) {
	artifacts := make(map[string][]byte)
	hits := make(map[string]bool, len(opts.Formats))
	var stats renderStats

	var missing []string
	for _, format := range opts.Formats {
		hits[format] = false
		if opts.NoCache {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(specHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.cacheGet(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			hits[format] = true
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, hits, stats, nil
	}

	// Stage 2: Layout
	observability.Pipeline().OnLayoutStart(ctx, len(spec.Data.Rows), countColumns(spec))
	layoutStart := time.Now()
	l, th, m, err := Compose(spec, opts)
	stats.LayoutTime = time.Since(layoutStart)
	observability.Pipeline().OnLayoutComplete(ctx, stats.LayoutTime, err)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("layout: %w", err)
	}

	opts.Logger.Info("composed layout",
		"rows", len(l.Rows),
		"width", l.Width,
		"height", l.Height,
		"duration", stats.LayoutTime)

	// Stage 3: Render the formats the cache did not cover
	observability.Pipeline().OnRenderStart(ctx, missing)
	renderStart := time.Now()
	rendered, err := RenderFromLayout(l, spec, &th, m, opts, missing)
	stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, missing, stats.RenderTime, err)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("render: %w", err)
	}

	for format, data := range rendered {
		artifacts[format] = data
		if opts.NoCache {
			continue
		}
		key := r.Keyer.ArtifactKey(specHash, opts.ArtifactKeyOpts(format))
		if err := r.cacheSet(ctx, key, data); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, hits, stats, nil
}

// cacheGet reads one artifact, retrying the transient backend failures
// network caches mark as retryable. Local caches fail fast.
func (r *Runner) cacheGet(ctx context.Context, key string) (data []byte, hit bool, err error) {
	err = cache.RetryWithBackoff(ctx, func() error {
		var getErr error
		data, hit, getErr = r.Cache.Get(ctx, key)
		return getErr
	})
	return data, hit, err
}

func (r *Runner) cacheSet(ctx context.Context, key string, data []byte) error {
	return cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	})
}

// countColumns counts leaf columns across both positions, the number a
// reader sees as table columns.
func countColumns(spec *forest.Spec) int {
	n := 0
	cols := spec.EffectiveColumns()
	for i := range cols {
		n += len(cols[i].Leaves(nil))
	}
	return n
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
