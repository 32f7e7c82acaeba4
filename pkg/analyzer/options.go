package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/layout"
)

// Options selects what to analyse.
type Options struct {
	Dir      string   `json:"dir"`
	Patterns []string `json:"patterns,omitempty"`
	Function string   `json:"function,omitempty"`
	Tests    bool     `json:"tests,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"` // bypass the analysis cache

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults: the
// current directory and the "." pattern. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	if len(o.Patterns) == 0 {
		o.Patterns = []string{"."}
	}
	if o.Function != "" {
		if err := errors.ValidateFunctionName(o.Function); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ValidateRelative additionally requires Dir to be a relative path without
// traversal and resolves it against root. Patterns must stay inside Dir:
// ".", "./sub" or either with a "/..." suffix. The server calls it on request
// input before ValidateAndSetDefaults.
func (o *Options) ValidateRelative(root string) error {
	for _, p := range o.Patterns {
		if err := validatePattern(p); err != nil {
			return err
		}
	}
	if o.Dir == "" {
		o.Dir = root
		return nil
	}
	if err := errors.ValidatePath(o.Dir); err != nil {
		return err
	}
	o.Dir = filepath.Join(root, o.Dir)
	return nil
}

func validatePattern(p string) error {
	rel := strings.TrimSuffix(p, "/...")
	if rel != "." && !strings.HasPrefix(rel, "./") {
		return errors.New(errors.ErrCodeInvalidPath, "pattern %q must start with ./", p)
	}
	return errors.ValidatePath(rel)
}

func (o *Options) keyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{Patterns: o.Patterns, Function: o.Function, Tests: o.Tests}
}

// LayoutOptions selects and tunes a layout algorithm. Zero values take the
// engine defaults.
type LayoutOptions struct {
	Algorithm  string  `json:"algorithm,omitempty"`
	Collapse   bool    `json:"collapse,omitempty"` // condense cycles in hierarchical layouts
	Iterations int     `json:"iterations,omitempty"`
	Seed       uint64  `json:"seed,omitempty"`
	Radius     float64 `json:"radius,omitempty"`
}

// engine converts the options for layout.Compute.
func (o LayoutOptions) engine() (layout.Options, error) {
	algo, err := layout.ParseAlgorithm(o.Algorithm)
	if err != nil {
		return layout.Options{}, err
	}
	if o.Iterations < 0 {
		return layout.Options{}, errors.New(errors.ErrCodeInvalidInput, "iterations must not be negative")
	}
	if o.Radius < 0 {
		return layout.Options{}, errors.New(errors.ErrCodeInvalidInput, "radius must not be negative")
	}
	opts := layout.Options{
		Algorithm: algo,
		Force:     layout.ForceOptions{Iterations: o.Iterations, Seed: o.Seed},
		Circular:  layout.CircularOptions{Radius: o.Radius},
	}
	if o.Collapse {
		opts.Hierarchical.Cycles = layout.Collapse
	}
	return opts, nil
}

func (o LayoutOptions) keyOpts(kind string, algo layout.Algorithm) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Kind:       kind,
		Algorithm:  string(algo),
		Collapse:   o.Collapse,
		Iterations: o.Iterations,
		Seed:       o.Seed,
		Radius:     o.Radius,
	}
}
