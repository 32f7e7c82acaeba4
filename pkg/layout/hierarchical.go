package layout

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CyclePolicy selects how [Hierarchical] treats cycles.
type CyclePolicy int

const (
	// Truncate lets a node on the current search path contribute 0.
	Truncate CyclePolicy = iota
	// Collapse condenses strongly connected components before levelling.
	Collapse
)

// Default hierarchical spacing.
const (
	DefaultLevelHeight = 100
	DefaultNodeSpacing = 120
)

// HierarchicalOptions configures [Hierarchical].
type HierarchicalOptions struct {
	LevelHeight float64 // vertical distance between levels (default 100)
	NodeSpacing float64 // horizontal distance between slots (default 120)
	Cycles      CyclePolicy
}

func (o HierarchicalOptions) withDefaults() HierarchicalOptions {
	if o.LevelHeight == 0 {
		o.LevelHeight = DefaultLevelHeight
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	return o
}

// Hierarchical places nodes by level: y = level × LevelHeight, and within a
// level x = (slot − (count−1)/2) × NodeSpacing, slots following view order.
func Hierarchical[K comparable](v View[K], opts HierarchicalOptions) Positions[K] {
	opts = opts.withDefaults()
	a := index(v)
	levels, group := assignLevels(a, opts.Cycles)

	buckets := make(map[int][]int)
	for i := range a.nodes {
		if a.index[a.nodes[i]] != i {
			continue
		}
		buckets[levels[i]] = append(buckets[levels[i]], i)
	}

	out := make(Positions[K], len(a.index))
	for level, members := range buckets {
		slices.SortStableFunc(members, func(x, y int) int {
			return cmp.Or(cmp.Compare(group[x], group[y]), cmp.Compare(x, y))
		})
		count := float64(len(members))
		for slot, i := range members {
			out[a.nodes[i]] = Point{
				X: (float64(slot) - (count-1)/2) * opts.NodeSpacing,
				Y: float64(level) * opts.LevelHeight,
			}
		}
	}
	return out
}

// Levels returns the level of every node in v under the given cycle policy.
func Levels[K comparable](v View[K], policy CyclePolicy) map[K]int {
	a := index(v)
	levels, _ := assignLevels(a, policy)
	out := make(map[K]int, len(a.index))
	for k, i := range a.index {
		out[k] = levels[i]
	}
	return out
}

// assignLevels returns per-index levels and a grouping key (the smallest
// member index of a node's component) used to keep components adjacent.
func assignLevels[K comparable](a adjacency[K], policy CyclePolicy) (levels, group []int) {
	n := len(a.nodes)
	group = make([]int, n)
	for i := range group {
		group[i] = i
	}
	if policy != Collapse {
		return truncatedLevels(a.children, a.parents, n), group
	}

	comp, members := components(a)
	cn := len(members)
	cchildren := make([][]int, cn)
	cparents := make([][]int, cn)
	seen := make(map[[2]int]struct{})
	for from := range a.children {
		for _, to := range a.children[from] {
			cf, ct := comp[from], comp[to]
			if cf == ct {
				continue
			}
			if _, dup := seen[[2]int{cf, ct}]; dup {
				continue
			}
			seen[[2]int{cf, ct}] = struct{}{}
			cchildren[cf] = append(cchildren[cf], ct)
			cparents[ct] = append(cparents[ct], cf)
		}
	}
	clevels := truncatedLevels(cchildren, cparents, cn)

	levels = make([]int, n)
	for i := range levels {
		levels[i] = clevels[comp[i]]
		group[i] = members[comp[i]][0]
	}
	return levels, group
}

// truncatedLevels computes level(n) = 1 + max(level(child)) by depth-first
// search from the roots. A child still on the search path counts as 0.
func truncatedLevels(children, parents [][]int, n int) []int {
	const (
		white = iota
		gray
		black
	)
	state := make([]int, n)
	levels := make([]int, n)

	var visit func(int) int
	visit = func(u int) int {
		switch state[u] {
		case gray:
			return 0
		case black:
			return levels[u]
		}
		state[u] = gray
		deepest := 0
		for _, c := range children[u] {
			deepest = max(deepest, visit(c))
		}
		levels[u] = deepest + 1
		state[u] = black
		return levels[u]
	}

	for u := range n {
		if len(parents[u]) == 0 {
			visit(u)
		}
	}
	// Without roots every node is a root; nodes on cycles that no root
	// reaches are picked up the same way.
	for u := range n {
		if state[u] == white {
			visit(u)
		}
	}
	return levels
}

// components returns the strongly connected component of each node index and
// the sorted member indices of each component, components ordered by their
// smallest member.
func components[K comparable](a adjacency[K]) (comp []int, members [][]int) {
	dg := simple.NewDirectedGraph()
	for i := range a.nodes {
		dg.AddNode(simple.Node(int64(i)))
	}
	for from, cs := range a.children {
		for _, to := range cs {
			if from != to {
				dg.SetEdge(dg.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
			}
		}
	}

	for _, scc := range topo.TarjanSCC(dg) {
		m := make([]int, len(scc))
		for i, node := range scc {
			m[i] = int(node.ID())
		}
		slices.Sort(m)
		members = append(members, m)
	}
	slices.SortFunc(members, func(x, y []int) int { return cmp.Compare(x[0], y[0]) })

	comp = make([]int, len(a.nodes))
	for c, m := range members {
		for _, i := range m {
			comp[i] = c
		}
	}
	return comp, members
}
