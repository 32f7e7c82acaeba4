// Package dot reads and writes control-flow graphs in a DOT-like text format.
//
// # Writing
//
// [Write] and [ToDOT] emit nodes in id order, then edges ordered by source
// and target id. Styling encodes the graph marks:
//
//	5 [label="recover", shape=box, style=filled, fillcolor=lightblue]; // try block
//	6 [label="panic", color=red];                                       // throwing
//	5 -> 6 [color=red, style=dashed, label="exception"];                // exception edge
//
// A node that is both a try block and throwing carries both attributes. The
// writer never emits a global shape default, because the parser would read it
// as "every node is a try block".
//
// # Parsing
//
// [Parse] is line oriented and best effort. It understands node statements,
// edge statements (including chains such as a -> b -> c), global
// node/edge/graph attribute lists and bare key=value graph attributes.
// Statements may also be separated by semicolons on one line. The mark
// policy mirrors the writer:
//
//   - color=red on a node marks it throwing
//   - shape=box on a node marks it a try block
//   - color=red or a label containing "exception" on an edge marks an
//     exception edge
//
// This is a convention of this package, not a DOT semantic.
//
// Lines the parser does not understand are skipped and reported as
// [Diagnostic] values on the [Result]. Parsing only fails when nothing at
// all matched, with [ErrNoStatements].
//
// Node ids are integers. Quoted integers are accepted, and names such as
// node5 or B5 map to the first digit run they contain. Names without digits
// are given negative ids starting at -1 and keep the name as their label.
package dot
