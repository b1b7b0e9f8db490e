package layout

import (
	"fmt"

	"github.com/matzehuels/goalnet/pkg/errors"
)

// Algorithm selects how positions are refined after the greedy pass.
type Algorithm string

const (
	// AlgorithmGreedy places each node once using centrality-weighted
	// neighbour averaging and local repulsion. Cheap; adequate for sparse
	// networks.
	AlgorithmGreedy Algorithm = "greedy"

	// AlgorithmForce seeds positions with the greedy pass, then runs a
	// bounded force simulation. Slower (O(iterations × n²)); better on
	// dense networks.
	AlgorithmForce Algorithm = "force"
)

// Default values shared by the CLI, the API and the pipeline.
const (
	// DefaultBaseSpacing is the unit distance between related nodes.
	DefaultBaseSpacing = 400.0

	// DefaultIterations is the force simulation step budget.
	DefaultIterations = 500

	// DefaultDamping is the velocity damping factor of the force simulation.
	DefaultDamping = 0.85

	// MaxIterations caps user-supplied iteration counts.
	MaxIterations = 5000
)

// Options configures a layout run. The zero value is valid and selects the
// greedy algorithm with default spacing and persistence enabled.
type Options struct {
	// BaseSpacing is the unit distance used throughout placement.
	// Zero means DefaultBaseSpacing.
	BaseSpacing float64 `json:"base_spacing,omitempty" toml:"base_spacing"`

	// Algorithm is AlgorithmGreedy (default) or AlgorithmForce.
	Algorithm Algorithm `json:"algorithm,omitempty" toml:"algorithm"`

	// Iterations bounds the force simulation. Zero means DefaultIterations.
	// Ignored by the greedy algorithm.
	Iterations int `json:"iterations,omitempty" toml:"iterations"`

	// Damping is applied to velocities each simulation step; must be in (0, 1).
	// Zero means DefaultDamping.
	Damping float64 `json:"damping,omitempty" toml:"damping"`

	// SkipSave disables persistence of newly computed positions
	// (default false = save).
	SkipSave bool `json:"skip_save,omitempty" toml:"skip_save"`

	// SaveConcurrency bounds the number of in-flight saves. Zero means unbounded.
	SaveConcurrency int `json:"save_concurrency,omitempty" toml:"save_concurrency"`
}

// WithDefaults returns a copy of o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.BaseSpacing == 0 {
		o.BaseSpacing = DefaultBaseSpacing
	}
	if o.Algorithm == "" {
		o.Algorithm = AlgorithmGreedy
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Damping == 0 {
		o.Damping = DefaultDamping
	}
	return o
}

// Validate checks option ranges. Call it on the result of WithDefaults.
func (o Options) Validate() error {
	if err := errors.ValidateSpacing(o.BaseSpacing); err != nil {
		return err
	}
	switch o.Algorithm {
	case AlgorithmGreedy, AlgorithmForce:
	default:
		return errors.New(errors.ErrCodeInvalidOption, "unknown algorithm %q (must be one of: greedy, force)", o.Algorithm)
	}
	if o.Iterations < 0 || o.Iterations > MaxIterations {
		return errors.New(errors.ErrCodeInvalidOption, "iterations must be between 0 and %d, got %d", MaxIterations, o.Iterations)
	}
	if !(o.Damping > 0 && o.Damping < 1) {
		return errors.New(errors.ErrCodeInvalidOption, "damping must be in (0, 1), got %v", o.Damping)
	}
	if o.SaveConcurrency < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "save concurrency must not be negative, got %d", o.SaveConcurrency)
	}
	return nil
}

// ParseAlgorithm converts a flag or config value to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "", AlgorithmGreedy:
		return AlgorithmGreedy, nil
	case AlgorithmForce:
		return a, nil
	default:
		return "", fmt.Errorf("invalid algorithm: %q (must be one of: greedy, force)", s)
	}
}
