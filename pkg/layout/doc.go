// Package layout computes 2D coordinates for directed graphs.
//
// # Views
//
// Algorithms work on a [View]: an ordered list of node keys plus a list of
// directed edges between them. Keys are any comparable type. [CFG] adapts a
// control-flow graph (int keys) and [Calls] adapts a call-dependency graph
// (string keys), so the same algorithms serve both. [Static] is a literal
// view for callers that already hold nodes and edges.
//
// # Algorithms
//
//   - [Hierarchical] assigns each node a level, buckets nodes by level and
//     centers each bucket horizontally.
//   - [ForceDirected] runs a bounded spring simulation.
//   - [Circular] places nodes evenly around a circle in view order.
//
// [Compute] selects an algorithm by name.
//
// # Levels and cycles
//
// The level of a node is one more than the largest level among its children,
// so sinks sit at level 1 and roots at the top of their chain. Levels are
// computed by depth-first search from the roots (nodes without incoming
// edges, or every node if there are none). With [Truncate], a child that is
// still on the current search path contributes 0. This is an approximation:
// on cyclic graphs the result depends on the order in which roots are
// visited and is not a longest-path computation. [Collapse] instead condenses
// each strongly connected component to a single vertex before levelling, so
// that cyclic graphs get a well-defined result; members of a component share
// a level and sit next to each other.
//
// # Guarantees
//
// Output is a key → [Point] mapping and nothing more. Hierarchical layouts
// never place two nodes of the same level at the same x coordinate. Force
// and circular layouts make no overlap guarantee. All algorithms are
// deterministic for a fixed view, options and seed.
package layout
