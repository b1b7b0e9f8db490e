// Package pipeline provides the goal network pipeline shared by the CLI and
// the API server.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read a user's network from a [store.Store]
//  2. Layout: Compute positions and styling (cached by content hash)
//  3. Persist: Save newly computed positions back to the store
//  4. Render: Produce JSON, DOT or SVG artifacts (cached per format)
//
// Each stage can be run on its own. A network that does not come from a
// store, such as a JSON file on disk, enters at the layout stage via
// [Runner.Run].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, st, logger)
//	result, err := runner.Execute(ctx, userID, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/goalnet/pkg/cache"
	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/network"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	BaseSpacing float64 `json:"base_spacing,omitempty"`
	Algorithm   string  `json:"algorithm,omitempty"`
	Iterations  int     `json:"iterations,omitempty"`
	Damping     float64 `json:"damping,omitempty"`
	Refresh     bool    `json:"refresh,omitempty"` // Bypass the layout cache

	// Persist options
	SkipSave        bool `json:"skip_save,omitempty"`
	SaveConcurrency int  `json:"save_concurrency,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID tags the log lines of one run.
	RunID string

	// UserID is the owner of the network, zero for file input.
	UserID int64

	// Graph is the network that was laid out.
	Graph *network.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout contains positions and styling.
	Layout *layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	SaveTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidOption, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks every option.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.SaveConcurrency < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "save_concurrency must not be negative: %d", o.SaveConcurrency)
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.BaseSpacing == 0 {
		o.BaseSpacing = layout.DefaultBaseSpacing
	}
	if o.Algorithm == "" {
		o.Algorithm = string(layout.AlgorithmGreedy)
	}
	if o.Iterations == 0 {
		o.Iterations = layout.DefaultIterations
	}
	if o.Damping == 0 {
		o.Damping = layout.DefaultDamping
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.LayoutOptions().Validate()
}

// LayoutOptions returns the engine options for this run.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		BaseSpacing:     o.BaseSpacing,
		Algorithm:       layout.Algorithm(o.Algorithm),
		Iterations:      o.Iterations,
		Damping:         o.Damping,
		SkipSave:        o.SkipSave,
		SaveConcurrency: o.SaveConcurrency,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
// Simulation parameters only take part for the force algorithm.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Algorithm:   o.Algorithm,
		BaseSpacing: o.BaseSpacing,
	}
	if layout.Algorithm(o.Algorithm) == layout.AlgorithmForce {
		k.Iterations = o.Iterations
		k.Damping = o.Damping
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == FormatSVG {
		k.Engine = "neato"
	}
	if o.Detailed && format != FormatJSON {
		k.Format += "+detailed"
	}
	return k
}
