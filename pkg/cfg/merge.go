package cfg

// Merge copies src into g with every id shifted so that the copy is disjoint
// from the nodes already in g. It returns the offset that was added to src
// ids. Labels, statements, function names, edges and marks are all carried
// over.
//
// Per-function graphs number their blocks from zero, so merging them into a
// single graph always needs renumbering.
func (g *Graph) Merge(src *Graph) int {
	if src == g {
		src = New()
		src.Merge(g)
	}
	offset := 0
	if g.NodeCount() > 0 && src.NodeCount() > 0 {
		if lo := minID(src); lo <= g.MaxID() {
			offset = g.MaxID() + 1 - lo
		}
	}

	for _, id := range src.IDs() {
		b := src.blocks[id]
		nid := id + offset
		nb := g.ensure(nid)
		if b.label != "" {
			nb.label = b.label
		}
		if b.function != "" {
			nb.function = b.function
		}
		nb.statements = append(nb.statements, b.statements...)
		for to := range b.succs {
			g.AddEdge(nid, to+offset)
		}
	}
	for k := range src.exceptions {
		g.AddExceptionEdge(k.from+offset, k.to+offset)
	}
	for id := range src.tryBlocks {
		g.MarkTryBlock(id + offset)
	}
	for id := range src.throwing {
		g.MarkThrowing(id + offset)
	}
	return offset
}

func minID(g *Graph) int {
	ids := g.IDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

// Function returns the sub-graph of nodes belonging to the named function.
// Edges are kept when both ends belong to the function. Ids are preserved.
// The result is empty when no node carries the name.
func (g *Graph) Function(name string) *Graph {
	out := New()
	for id, b := range g.blocks {
		if b.function != name {
			continue
		}
		nb := out.ensure(id)
		nb.label = b.label
		nb.function = b.function
		nb.statements = append(nb.statements, b.statements...)
	}
	for id := range out.blocks {
		for to := range g.blocks[id].succs {
			if !out.HasNode(to) {
				continue
			}
			if g.IsExceptionEdge(id, to) {
				out.AddExceptionEdge(id, to)
			} else {
				out.AddEdge(id, to)
			}
		}
		if g.IsTryBlock(id) {
			out.MarkTryBlock(id)
		}
		if g.IsThrowing(id) {
			out.MarkThrowing(id)
		}
	}
	return out
}
