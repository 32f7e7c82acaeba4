package callgraph

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Cycles returns the groups of mutually recursive functions. Each group is
// sorted, and groups are ordered by their first member. A directly recursive
// function forms a group of one.
func (g *Graph) Cycles() [][]string {
	names := g.Functions()
	index := make(map[string]int64, len(names))
	dg := simple.NewDirectedGraph()
	for i, name := range names {
		index[name] = int64(i)
		dg.AddNode(simple.Node(int64(i)))
	}

	var cycles [][]string
	for _, caller := range g.Callers() {
		for _, callee := range g.Callees(caller) {
			if caller == callee {
				cycles = append(cycles, []string{caller})
				continue
			}
			dg.SetEdge(dg.NewEdge(simple.Node(index[caller]), simple.Node(index[callee])))
		}
	}

	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) < 2 {
			continue
		}
		group := make([]string, len(scc))
		for i, n := range scc {
			group[i] = names[n.ID()]
		}
		slices.Sort(group)
		cycles = append(cycles, group)
	}

	slices.SortFunc(cycles, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return cycles
}
