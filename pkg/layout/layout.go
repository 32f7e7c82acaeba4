package layout

import (
	"errors"
	"math"

	flerrors "github.com/matzehuels/flowlens/pkg/errors"
)

// ErrUnknownAlgorithm is returned by [Compute] and [ParseAlgorithm].
var ErrUnknownAlgorithm = errors.New("unknown layout algorithm")

// Point is a 2D position in layout units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a directed edge between two node keys.
type Edge[K comparable] struct {
	From K
	To   K
}

// View is the abstract graph the algorithms operate on.
type View[K comparable] interface {
	// Nodes returns the node keys in a stable order.
	Nodes() []K
	// Edges returns the directed edges. Edges that mention keys not in
	// Nodes are ignored.
	Edges() []Edge[K]
}

// Static is a literal [View].
type Static[K comparable] struct {
	NodeList []K
	EdgeList []Edge[K]
}

func (s Static[K]) Nodes() []K       { return s.NodeList }
func (s Static[K]) Edges() []Edge[K] { return s.EdgeList }

// Positions maps node keys to coordinates.
type Positions[K comparable] map[K]Point

// Algorithm names a layout algorithm.
type Algorithm string

const (
	AlgorithmHierarchical Algorithm = "hierarchical"
	AlgorithmForce        Algorithm = "force"
	AlgorithmCircular     Algorithm = "circular"
)

// Algorithms lists the supported algorithms.
var Algorithms = []Algorithm{AlgorithmHierarchical, AlgorithmForce, AlgorithmCircular}

// ParseAlgorithm validates a user-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case AlgorithmHierarchical, AlgorithmForce, AlgorithmCircular:
		return a, nil
	case "":
		return AlgorithmHierarchical, nil
	}
	return "", flerrors.Wrap(flerrors.ErrCodeInvalidAlgorithm, ErrUnknownAlgorithm, "algorithm %q", s)
}

// Options selects and configures an algorithm for [Compute].
type Options struct {
	Algorithm    Algorithm
	Hierarchical HierarchicalOptions
	Force        ForceOptions
	Circular     CircularOptions
}

// Compute runs the algorithm named in opts over v. Zero-valued option fields
// take their documented defaults.
func Compute[K comparable](v View[K], opts Options) (Positions[K], error) {
	switch opts.Algorithm {
	case AlgorithmHierarchical, "":
		return Hierarchical(v, opts.Hierarchical), nil
	case AlgorithmForce:
		return ForceDirected(v, opts.Force, nil), nil
	case AlgorithmCircular:
		return Circular(v, opts.Circular), nil
	}
	return nil, flerrors.Wrap(flerrors.ErrCodeInvalidAlgorithm, ErrUnknownAlgorithm, "algorithm %q", opts.Algorithm)
}

// Bounds returns the bounding box of p. Both points are zero for an empty map.
func Bounds[K comparable](p Positions[K]) (lo, hi Point) {
	first := true
	for _, pt := range p {
		if first {
			lo, hi = pt, pt
			first = false
			continue
		}
		lo.X, lo.Y = math.Min(lo.X, pt.X), math.Min(lo.Y, pt.Y)
		hi.X, hi.Y = math.Max(hi.X, pt.X), math.Max(hi.Y, pt.Y)
	}
	return lo, hi
}

// CurveControl returns the control point of a quadratic curve from a to b,
// offset to the left of the direction of travel by a quarter of its length.
func CurveControl(a, b Point) Point {
	return Point{
		X: (a.X+b.X)/2 + (b.Y-a.Y)/4,
		Y: (a.Y+b.Y)/2 - (b.X-a.X)/4,
	}
}

// adjacency indexes v once for the algorithms.
type adjacency[K comparable] struct {
	nodes    []K
	index    map[K]int
	children [][]int
	parents  [][]int
}

func index[K comparable](v View[K]) adjacency[K] {
	nodes := v.Nodes()
	a := adjacency[K]{
		nodes:    nodes,
		index:    make(map[K]int, len(nodes)),
		children: make([][]int, len(nodes)),
		parents:  make([][]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := a.index[n]; !dup {
			a.index[n] = i
		}
	}
	seen := make(map[[2]int]struct{})
	for _, e := range v.Edges() {
		from, ok1 := a.index[e.From]
		to, ok2 := a.index[e.To]
		if !ok1 || !ok2 {
			continue
		}
		if _, dup := seen[[2]int{from, to}]; dup {
			continue
		}
		seen[[2]int{from, to}] = struct{}{}
		a.children[from] = append(a.children[from], to)
		a.parents[to] = append(a.parents[to], from)
	}
	return a
}
