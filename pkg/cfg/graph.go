package cfg

import (
	"fmt"
	"maps"
	"slices"
)

// Node is a read-only snapshot of a basic block.
type Node struct {
	ID           int      // Block id, unique within the graph
	Label        string   // Display label (empty when never set)
	FunctionName string   // Enclosing function, empty when unknown
	Statements   []string // Statement text in source order
	Successors   []int    // Successor ids, ascending
}

// Edge is a directed successor edge. Exception is true when the edge is also
// in the exception-edge set.
type Edge struct {
	From      int
	To        int
	Exception bool
}

type block struct {
	label      string
	function   string
	statements []string
	succs      map[int]struct{}
}

type edgeKey struct{ from, to int }

// Graph is a control-flow graph. The zero value is not usable; use [New].
type Graph struct {
	blocks     map[int]*block
	exceptions map[edgeKey]struct{}
	tryBlocks  map[int]struct{}
	throwing   map[int]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		blocks:     make(map[int]*block),
		exceptions: make(map[edgeKey]struct{}),
		tryBlocks:  make(map[int]struct{}),
		throwing:   make(map[int]struct{}),
	}
}

// =============================================================================
// Mutation
// =============================================================================

func (g *Graph) ensure(id int) *block {
	b, ok := g.blocks[id]
	if !ok {
		b = &block{succs: make(map[int]struct{})}
		g.blocks[id] = b
	}
	return b
}

// AddNode registers id. It is a no-op when the node already exists.
func (g *Graph) AddNode(id int) {
	g.ensure(id)
}

// AddLabeledNode registers id and sets its label, replacing any previous one.
func (g *Graph) AddLabeledNode(id int, label string) {
	g.ensure(id).label = label
}

// SetFunctionName records the function the block belongs to.
func (g *Graph) SetFunctionName(id int, name string) {
	g.ensure(id).function = name
}

// AddStatement appends text to the statements of id.
func (g *Graph) AddStatement(id int, text string) {
	b := g.ensure(id)
	b.statements = append(b.statements, text)
}

// AddEdge adds the successor edge from -> to, creating both ends as needed.
func (g *Graph) AddEdge(from, to int) {
	g.ensure(to)
	g.ensure(from).succs[to] = struct{}{}
}

// AddExceptionEdge marks from -> to as an exception edge. The plain edge is
// added as well.
func (g *Graph) AddExceptionEdge(from, to int) {
	g.AddEdge(from, to)
	g.exceptions[edgeKey{from, to}] = struct{}{}
}

// MarkTryBlock marks id as opening a protected region.
func (g *Graph) MarkTryBlock(id int) {
	g.ensure(id)
	g.tryBlocks[id] = struct{}{}
}

// MarkThrowing marks id as raising an exception.
func (g *Graph) MarkThrowing(id int) {
	g.ensure(id)
	g.throwing[id] = struct{}{}
}

// =============================================================================
// Queries
// =============================================================================

// HasNode reports whether id exists.
func (g *Graph) HasNode(id int) bool {
	_, ok := g.blocks[id]
	return ok
}

// HasEdge reports whether from -> to is a successor edge.
func (g *Graph) HasEdge(from, to int) bool {
	b, ok := g.blocks[from]
	if !ok {
		return false
	}
	_, ok = b.succs[to]
	return ok
}

// IsExceptionEdge reports whether from -> to is marked as an exception edge.
func (g *Graph) IsExceptionEdge(from, to int) bool {
	_, ok := g.exceptions[edgeKey{from, to}]
	return ok
}

// IsTryBlock reports whether id is marked as a try block.
func (g *Graph) IsTryBlock(id int) bool {
	_, ok := g.tryBlocks[id]
	return ok
}

// IsThrowing reports whether id is marked as throwing.
func (g *Graph) IsThrowing(id int) bool {
	_, ok := g.throwing[id]
	return ok
}

// DefaultLabel is the placeholder used for blocks without a label and for
// ids that do not exist.
func DefaultLabel(id int) string {
	return fmt.Sprintf("Block %d", id)
}

// Label returns the label of id, or [DefaultLabel] when the label is empty or
// the node does not exist.
func (g *Graph) Label(id int) string {
	if b, ok := g.blocks[id]; ok && b.label != "" {
		return b.label
	}
	return DefaultLabel(id)
}

// FunctionName returns the function id belongs to, or "".
func (g *Graph) FunctionName(id int) string {
	if b, ok := g.blocks[id]; ok {
		return b.function
	}
	return ""
}

// Statements returns a copy of the statements of id.
func (g *Graph) Statements(id int) []string {
	if b, ok := g.blocks[id]; ok {
		return slices.Clone(b.statements)
	}
	return nil
}

// Successors returns the successor ids of id in ascending order.
func (g *Graph) Successors(id int) []int {
	if b, ok := g.blocks[id]; ok {
		return slices.Sorted(maps.Keys(b.succs))
	}
	return nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.blocks) }

// EdgeCount returns the number of successor edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, b := range g.blocks {
		n += len(b.succs)
	}
	return n
}

// IDs returns all node ids in ascending order.
func (g *Graph) IDs() []int {
	return slices.Sorted(maps.Keys(g.blocks))
}

// Node returns a snapshot of id.
func (g *Graph) Node(id int) (Node, bool) {
	b, ok := g.blocks[id]
	if !ok {
		return Node{}, false
	}
	return g.snapshot(id, b), true
}

// Nodes returns snapshots of all nodes ordered by id.
func (g *Graph) Nodes() []Node {
	ids := g.IDs()
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = g.snapshot(id, g.blocks[id])
	}
	return out
}

func (g *Graph) snapshot(id int, b *block) Node {
	return Node{
		ID:           id,
		Label:        b.label,
		FunctionName: b.function,
		Statements:   slices.Clone(b.statements),
		Successors:   slices.Sorted(maps.Keys(b.succs)),
	}
}

// Edges returns every successor edge ordered by source id, then target id.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, from := range g.IDs() {
		for _, to := range g.Successors(from) {
			out = append(out, Edge{From: from, To: to, Exception: g.IsExceptionEdge(from, to)})
		}
	}
	return out
}

// ExceptionEdges returns the exception edges in (from, to) order.
func (g *Graph) ExceptionEdges() []Edge {
	out := make([]Edge, 0, len(g.exceptions))
	for k := range g.exceptions {
		out = append(out, Edge{From: k.from, To: k.to, Exception: true})
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// TryBlocks returns the ids marked as try blocks in ascending order.
func (g *Graph) TryBlocks() []int {
	return slices.Sorted(maps.Keys(g.tryBlocks))
}

// ThrowingBlocks returns the ids marked as throwing in ascending order.
func (g *Graph) ThrowingBlocks() []int {
	return slices.Sorted(maps.Keys(g.throwing))
}

// FunctionNames returns the distinct non-empty function names, sorted.
func (g *Graph) FunctionNames() []string {
	seen := make(map[string]struct{})
	for _, b := range g.blocks {
		if b.function != "" {
			seen[b.function] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// MaxID returns the largest node id, or -1 for an empty graph.
func (g *Graph) MaxID() int {
	if len(g.blocks) == 0 {
		return -1
	}
	return slices.Max(slices.Collect(maps.Keys(g.blocks)))
}

func compareEdges(a, b Edge) int {
	if a.From != b.From {
		return a.From - b.From
	}
	return a.To - b.To
}
