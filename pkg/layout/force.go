package layout

import (
	"math"
	"math/rand/v2"
)

// Default force-directed parameters.
const (
	DefaultIterations      = 50
	DefaultRepulsion       = 6000
	DefaultAttraction      = 0.06
	DefaultMaxDisplacement = 30
	DefaultSpread          = 400
	DefaultSeed            = 1
)

// ForceOptions configures [ForceDirected].
type ForceOptions struct {
	Iterations      int     // simulation steps (default 50)
	Repulsion       float64 // pairwise repulsion constant (default 6000)
	Attraction      float64 // spring constant per edge (default 0.06)
	MaxDisplacement float64 // per-node step bound per iteration (default 30)

	// Seed drives the initial placement when no initial positions are given.
	// Zero selects DefaultSeed, so runs are reproducible unless the caller
	// varies it.
	Seed uint64
	// Spread is the side of the square the initial placement is drawn from,
	// centered on the origin (default 400).
	Spread float64

	// Trace, when set, is called for every node step with the iteration
	// number and the length of the displacement that was applied.
	Trace func(iteration int, step float64)
}

func (o ForceOptions) withDefaults() ForceOptions {
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Repulsion == 0 {
		o.Repulsion = DefaultRepulsion
	}
	if o.Attraction == 0 {
		o.Attraction = DefaultAttraction
	}
	if o.MaxDisplacement == 0 {
		o.MaxDisplacement = DefaultMaxDisplacement
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Spread == 0 {
		o.Spread = DefaultSpread
	}
	return o
}

// ForceDirected runs a spring simulation. Every pair of nodes repels with
// force Repulsion/d, d floored at 1; every edge pulls its ends together with
// force Attraction·d. Each iteration moves a node by its net force, clamped to
// MaxDisplacement.
//
// initial seeds the simulation; nodes missing from it (or all nodes when it is
// nil) start at pseudo-random positions drawn from opts.Seed.
func ForceDirected[K comparable](v View[K], opts ForceOptions, initial Positions[K]) Positions[K] {
	opts = opts.withDefaults()
	a := index(v)
	n := len(a.nodes)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	pos := make([]Point, n)
	for i, k := range a.nodes {
		if p, ok := initial[k]; ok {
			pos[i] = p
			continue
		}
		pos[i] = Point{
			X: (rng.Float64() - 0.5) * opts.Spread,
			Y: (rng.Float64() - 0.5) * opts.Spread,
		}
	}

	force := make([]Point, n)
	for iter := range opts.Iterations {
		clear(force)

		for i := range n {
			for j := range n {
				if i == j {
					continue
				}
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				d := math.Max(1, math.Hypot(dx, dy))
				f := opts.Repulsion / d
				force[i].X += dx / d * f
				force[i].Y += dy / d * f
			}
		}

		for from, cs := range a.children {
			for _, to := range cs {
				dx, dy := pos[from].X-pos[to].X, pos[from].Y-pos[to].Y
				force[from].X -= dx * opts.Attraction
				force[from].Y -= dy * opts.Attraction
				force[to].X += dx * opts.Attraction
				force[to].Y += dy * opts.Attraction
			}
		}

		for i := range n {
			d := math.Hypot(force[i].X, force[i].Y)
			if d == 0 {
				if opts.Trace != nil {
					opts.Trace(iter, 0)
				}
				continue
			}
			scale := math.Min(opts.MaxDisplacement, d) / d
			pos[i].X += force[i].X * scale
			pos[i].Y += force[i].Y * scale
			if opts.Trace != nil {
				opts.Trace(iter, d*scale)
			}
		}
	}

	out := make(Positions[K], len(a.index))
	for k, i := range a.index {
		out[k] = pos[i]
	}
	return out
}
