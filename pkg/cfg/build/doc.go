// Package build turns a per-function basic-block stream into a [cfg.Graph].
//
// # Input
//
// A front end describes each function as a [Function]: an ordered list of
// [Block] values, each carrying its statements and successor ids. A
// statement that opens a protected region lists the ids of its handler
// statements in [Statement.Handlers]; a statement that raises sets
// [Statement.Throws].
//
// # Algorithm
//
// [Builder.Build] makes two passes over the blocks. The first declares every
// block and indexes statement ids by owning block. The second, for each block
// in order:
//
//  1. registers the block (idempotent)
//  2. appends its statements in order
//  3. marks try blocks and adds an exception edge to each handler's block
//  4. marks throwing blocks
//  5. adds a plain edge to every successor
//
// Unlike the graph model, the builder is strict: a successor that was never
// declared or a handler that does not resolve is an error. Blocks without
// statements are valid.
//
// # Preconditions
//
// Functions without a body never reach the builder; front ends skip them.
// [Builder.Build] still reports an empty block list as [ErrEmptyFunction] so
// the caller can tell "nothing to build" apart from a malformed stream.
//
// # Statement cache
//
// Statement text is interned through a [StmtCache] owned by one construction
// pass. Front ends produce many identical statement strings (returns, jumps,
// phi nodes), and interning keeps one copy of each.
package build
