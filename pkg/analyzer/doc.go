// Package analyzer runs the whole flow: load Go packages, build the
// control-flow and call graphs, lay them out and render them.
//
// An [Analyzer] is shared by the CLI, the HTTP server and the file watcher.
// It owns the caches and serializes analyses: at most one analysis runs
// through an Analyzer at a time. [Analyzer.Analyze] waits for its turn,
// [Analyzer.TryAnalyze] fails fast with a BUSY error instead, which is what
// the server wants. Finished results are read-only and may be shared freely.
//
// Layout and rendering do not take the lock; they only read the graphs.
//
//	a := analyzer.New(c, nil, logger)
//	res, err := a.Analyze(ctx, analyzer.Options{Dir: "./myproj", Patterns: []string{"./..."}})
//	l, _, err := a.LayoutCFG(ctx, res.Graph, analyzer.LayoutOptions{Algorithm: "force"})
//	svg, err := a.Render(ctx, analyzer.RenderRequest{Layout: l, Format: render.FormatSVG})
package analyzer
