// Package pkg holds the libraries behind flowlens, a tool that extracts
// control-flow graphs and call dependencies from Go code and draws them.
//
// # Data flow
//
//	Go packages
//	     ↓
//	[frontend/gossa] (load, build SSA, emit block streams and calls)
//	     ↓
//	[cfg/build] → [cfg] (one graph per function)   [callgraph]
//	     ↓                                           ↓
//	[dot] / [graph] (text and JSON codecs)          [graph] (call export)
//	     ↓
//	[layout] (hierarchical, force, circular)
//	     ↓
//	[render] (SVG, DOT, PNG via Graphviz)
//
// [analyzer] strings these steps together with caching ([cache]) and
// lifecycle hooks ([observability]). [server] exposes the same flow over
// HTTP, [watcher] reruns it on file changes and [config] loads settings
// from flowlens.toml, the environment and flags.
//
// # Quick start
//
//	a := analyzer.New(nil, nil, nil)
//	res, err := a.Analyze(ctx, analyzer.Options{Dir: "."})
//	if err != nil {
//	    return err
//	}
//	l, _, err := a.LayoutCFG(ctx, res.Graph, analyzer.LayoutOptions{})
//	if err != nil {
//	    return err
//	}
//	svg, err := a.Render(ctx, analyzer.RenderRequest{Layout: l})
//
// Errors returned across package boundaries are [errors.Error] values
// carrying a stable code; use [errors.GetCode] to branch on them.
package pkg
