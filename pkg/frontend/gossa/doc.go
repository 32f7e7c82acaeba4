// Package gossa is the Go front end: it loads packages with
// golang.org/x/tools/go/packages, builds their SSA form and turns every
// function into a block stream for [build.Builder] plus a list of static
// calls for [callgraph.Graph].
//
// # Mapping
//
// Each SSA basic block becomes one [build.Block] with the block index as id
// and the printed instructions as statements. Go has no try/catch, so the
// exception marks are derived from panics and deferred recovery:
//
//   - a block containing a panic instruction throws;
//   - a block containing a defer is a try block whose handler is the
//     function's recover block, the block control reaches after a recovered
//     panic.
//
// Synthetic functions (wrappers, package initializers) and functions without
// a body are skipped. Anonymous functions follow their parent and are named
// the way SSA prints them, e.g. "Run$1".
//
// # Calls
//
// Only statically resolved callees are recorded. Calls through interfaces or
// function values produce no edge.
//
// Callers and callees share one naming scheme. Loading a single package
// names its functions relative to it ("Run", "(*T).M") and foreign callees
// by import path ("strings.Cut"). Loading several packages qualifies every
// name ("example.com/m/b.Run"), so functions of different packages never
// merge and a call across packages lands on its callee's own node.
package gossa
