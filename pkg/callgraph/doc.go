// Package callgraph records caller → callee dependencies between functions.
//
// A [Graph] maps each caller to the distinct set of functions it calls
// directly. It is built from call observations made while walking a
// compiled unit, one [Graph.Record] per call site. Recursion is not
// resolved: a recursive function simply calls itself and mutually recursive
// functions form a cycle. Layout code truncates such cycles and [Graph.Cycles]
// reports them.
//
// Three presentations are provided: a plain-text report ([Graph.Report]), a
// Graphviz DOT document ([Graph.ToDOT]) and, in package graph, a flat JSON
// export.
package callgraph
