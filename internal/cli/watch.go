package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/analyzer"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/graph"
	"github.com/matzehuels/flowlens/pkg/watcher"
)

func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags  analyzeFlags
		output string
		render bool
	)
	cmd := &cobra.Command{
		Use:   "watch [packages...]",
		Short: "Re-analyse whenever a Go source file changes",
		Long: `Watch analyses once, then again after every batch of changes to .go files,
go.mod or go.sum below --dir. Each run rewrites the JSON document and, with
--render, an SVG of the configured layout. Failed runs are reported and
watching continues. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			debounce, err := c.Config.Watch.DebounceDuration()
			if err != nil {
				return err
			}
			a, err := c.newAnalyzer(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			w, err := watcher.New(flags.dir, watcher.Options{Debounce: debounce, Logger: c.Logger})
			if err != nil {
				return err
			}
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			opts := flags.options(c, args)
			run := func() {
				if err := c.watchRun(ctx, a, opts, output, render); err != nil {
					printError("%s", describe(err))
				}
			}
			run()
			printInfo("Watching %s", StyleHighlight.Render(flags.dir))
			for ev := range w.Events() {
				printInfo("%d file(s) changed: %s", len(ev.Paths), summarizePaths(ev.Paths, 3))
				run()
			}
			return <-done
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "cfg.json", "JSON document rewritten on every run")
	cmd.Flags().BoolVar(&render, "render", false, "also write an SVG next to the document")
	cmd.Flags().String("debounce", "300ms", "quiet period before re-analysing")
	registerLayoutFlags(cmd)
	return cmd
}

func (c *CLI) watchRun(ctx context.Context, a *analyzer.Analyzer, opts analyzer.Options, output string, render bool) error {
	prog := newProgress(c.Logger)
	res, err := a.Analyze(ctx, opts)
	if err != nil {
		return err
	}
	if err := graph.WriteDocumentFile(output, res.Document); err != nil {
		return err
	}
	prog.done("Analyzed")
	printStats(res.CacheHit, stat{res.Stats.Functions, "functions"}, stat{res.Stats.Nodes, "blocks"})
	if !render {
		return nil
	}
	l, _, err := a.LayoutCFG(ctx, res.Graph, c.layoutOptions())
	if err != nil {
		return err
	}
	svg, err := a.Render(ctx, analyzer.RenderRequest{Layout: l})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	path := withExt(output, ".svg")
	if err := writeOutput(path, svg); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// summarizePaths lists the first n paths and counts the rest.
func summarizePaths(paths []string, n int) string {
	if len(paths) <= n {
		return strings.Join(paths, ", ")
	}
	return strings.Join(paths[:n], ", ") + StyleDim.Render(" and more")
}
