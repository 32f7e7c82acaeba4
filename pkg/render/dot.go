package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/flowlens/pkg/graph"
)

// LayoutDOT writes the nodes and edges of l as DOT for Graphviz. Positions
// are dropped: Graphviz lays the graph out again with its own engine. Try
// blocks are filled light blue, throwing blocks get a red border and
// exception edges are dashed red, as in the built-in renderer.
func LayoutDOT(l graph.Layout) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("  node [shape=box, fontname=\"Helvetica\"];\n")
	for _, n := range l.Nodes {
		attrs := []string{"label=" + strconv.Quote(n.Label)}
		if n.Try {
			attrs = append(attrs, "style=filled", "fillcolor=lightblue")
		}
		if n.Throwing {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		fmt.Fprintf(&b, "  %s [%s];\n", strconv.Quote(n.ID), strings.Join(attrs, ", "))
	}
	for _, e := range l.Edges {
		fmt.Fprintf(&b, "  %s -> %s", strconv.Quote(e.From), strconv.Quote(e.To))
		if e.Exception {
			b.WriteString(" [color=red, style=dashed]")
		}
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}
