package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/goalnet/pkg/cache"
	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/network"
	"github.com/matzehuels/goalnet/pkg/observability"
	"github.com/matzehuels/goalnet/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching and persistence behave the same.
//
// The Runner is stateless except for its collaborators - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // nil disables Load and Persist
	Styler layout.NodeStyler
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
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
		Store:  st,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → persist → render pipeline for
// one user's stored network.
func (r *Runner) Execute(ctx context.Context, userID int64, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	g, err := r.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	result, err := r.Run(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.UserID = userID
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Run lays out, persists and renders a network that is already in memory.
func (r *Runner) Run(ctx context.Context, g *network.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "network is nil")
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Graph:     g,
		Artifacts: make(map[string][]byte),
	}
	logger := r.Logger.With("run", result.RunID[:8])
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Stage 1: Layout
	layoutStart := time.Now()
	res, hit, err := r.ComputeLayout(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.GraphHash = graphHash(g)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	logger.Info("computed layout",
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Persist
	if !opts.SkipSave {
		saveStart := time.Now()
		res.Saves = r.Persist(ctx, res, opts)
		result.Stats.SaveTime = time.Since(saveStart)
		if !res.Saves.OK() {
			logger.Warn("some positions were not saved",
				"saved", len(res.Saves.Saved),
				"failed", len(res.Saves.Failed))
		}
	}

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Load reads a user's network from the store.
func (r *Runner) Load(ctx context.Context, userID int64) (*network.Graph, error) {
	if r.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidOption, "no store configured")
	}
	g, err := r.Store.Network(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded network", "user", userID, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// ComputeLayout computes a layout with caching and reports whether it came
// from the cache. Nothing is saved.
func (r *Runner) ComputeLayout(ctx context.Context, g *network.Graph, opts Options) (*layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.LayoutKey(graphHash(g), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := layout.ReadResult(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	engine := &layout.Engine{Styler: r.Styler, Logger: r.Logger}
	res, err := engine.Compute(ctx, g, opts.LayoutOptions())
	if err != nil {
		return nil, false, err
	}

	if data, err := layout.MarshalResult(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Debug("layout cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return res, false, nil
}

// Persist saves every computed (non-pinned) position of res to the store
// and waits for all saves to settle. Failures are reported, not returned.
func (r *Runner) Persist(ctx context.Context, res *layout.Result, opts Options) layout.SaveReport {
	if r.Store == nil {
		r.Logger.Debug("no store configured, skipping save")
		return layout.SaveReport{}
	}
	engine := &layout.Engine{Saver: r.Store, Logger: r.Logger}
	return engine.Save(ctx, res, opts.LayoutOptions())
}

// RenderWithCacheInfo renders the requested formats with caching and
// reports whether every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *layout.Result, opts Options) (map[string][]byte, bool, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	hash, err := layoutHash(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
			observability.Cache().OnCacheHit(ctx, "artifact")
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, res, missing, opts.Detailed)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		cacheKey := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Close releases resources held by the runner (the cache and the store).
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

func graphHash(g *network.Graph) string {
	data, _ := network.MarshalGraph(g)
	return cache.Hash(data)
}

// layoutHash hashes a result without its save report, which differs
// between otherwise identical runs.
func layoutHash(res *layout.Result) (string, error) {
	c := *res
	c.Saves = layout.SaveReport{}
	data, err := layout.MarshalResult(&c)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
