// Package render turns graphs and layouts into pictures.
//
// Two paths exist:
//
//   - [Graphviz] hands DOT text to the embedded Graphviz library
//     (github.com/goccy/go-graphviz) and lets one of its engines place the
//     nodes. Output is SVG or PNG.
//   - [LayoutSVG] draws a [graph.Layout] whose positions were computed by
//     pkg/layout. Nothing is re-laid out; what the engine computed is what
//     you see.
//
// Both are deterministic for a given input.
package render
