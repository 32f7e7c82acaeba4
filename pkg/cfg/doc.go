// Package cfg provides the in-memory control-flow graph model.
//
// # Overview
//
// A [Graph] holds the basic blocks of one or more functions. Each block is a
// [Node] identified by an integer id and carries a label, the name of the
// function it belongs to, its statements in source order and a set of
// successor ids. On top of the plain successor edges the graph keeps three
// kinds of marks:
//
//   - exception edges, a marked subset of the successor edges
//   - try blocks, blocks that open a protected region
//   - throwing blocks, blocks that raise (in Go: panic)
//
// # Construction
//
// Graphs are built monotonically. Nodes are created the first time any
// operation references them, edges are deduplicated and nothing is ever
// removed:
//
//	g := cfg.New()
//	g.AddLabeledNode(0, "entry")
//	g.AddStatement(0, "x := 1")
//	g.AddEdge(0, 1)
//	g.AddExceptionEdge(0, 2) // also adds the plain edge 0 -> 2
//	g.MarkTryBlock(0)
//
// None of the mutating or query methods fail. Queries for ids that were never
// created return zero values, and [Graph.Label] returns the placeholder
// "Block <id>". This keeps the model usable from best-effort parsers where
// partial input is the norm. Callers that need strict validation use the
// builder in [github.com/matzehuels/flowlens/pkg/cfg/build], which rejects
// unresolved references before they reach the graph.
//
// # Invariants
//
//   - Every exception edge is also a successor edge. [Graph.AddExceptionEdge]
//     adds the plain edge itself, so the invariant cannot be broken through
//     the public API.
//   - Successors form a set: adding the same edge twice changes nothing.
//   - [Graph.EdgeCount] is the sum of the successor set sizes.
//
// # Concurrency
//
// A Graph has exactly one writer while it is being constructed. Once handed
// off it is read-only and may be shared between goroutines; the query methods
// do not mutate internal state. Graph does no locking of its own.
package cfg
