package layout

import (
	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg"
)

type cfgView struct{ g *cfg.Graph }

// CFG adapts a control-flow graph. Nodes are ordered by id.
func CFG(g *cfg.Graph) View[int] { return cfgView{g} }

func (v cfgView) Nodes() []int { return v.g.IDs() }

func (v cfgView) Edges() []Edge[int] {
	edges := v.g.Edges()
	out := make([]Edge[int], len(edges))
	for i, e := range edges {
		out[i] = Edge[int]{From: e.From, To: e.To}
	}
	return out
}

type callsView struct{ g *callgraph.Graph }

// Calls adapts a call-dependency graph. Nodes are every function name in
// sorted order; edges run from caller to callee.
func Calls(g *callgraph.Graph) View[string] { return callsView{g} }

func (v callsView) Nodes() []string { return v.g.Functions() }

func (v callsView) Edges() []Edge[string] {
	var out []Edge[string]
	for _, caller := range v.g.Callers() {
		for _, callee := range v.g.Callees(caller) {
			out = append(out, Edge[string]{From: caller, To: callee})
		}
	}
	return out
}
