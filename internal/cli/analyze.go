package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/analyzer"
	"github.com/matzehuels/flowlens/pkg/dot"
	"github.com/matzehuels/flowlens/pkg/graph"
)

type analyzeFlags struct {
	dir      string
	function string
	refresh  bool
	output   string
	dotOut   string
	callsOut string
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dir, "dir", "C", ".", "module directory to analyse")
	cmd.Flags().StringVarP(&f.function, "function", "f", "", "only analyse this function (e.g. main, (*Server).Run)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().Bool("tests", false, "include test files")
}

func (f *analyzeFlags) options(c *CLI, patterns []string) analyzer.Options {
	if len(patterns) == 0 {
		patterns = c.Config.Analysis.Patterns
	}
	return analyzer.Options{
		Dir:      f.dir,
		Patterns: patterns,
		Function: f.function,
		Tests:    c.Config.Analysis.Tests,
		Refresh:  f.refresh,
	}
}

func (c *CLI) analyzeCommand() *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [packages...]",
		Short: "Build control-flow and call graphs of Go packages",
		Long: `Analyze loads the given packages (default from the config, ./...), builds
one control-flow graph per function and the call-dependency graph, and writes
them as a JSON document. Block ids of all functions share one id space.

Panics mark their block as throwing. A deferred call in a function that
recovers opens a try block whose exception edge leads to the recover block.`,
		Example: `  flowlens analyze ./...
  flowlens analyze -C ../service -f "(*Server).Run" -o run.json --dot run.dot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newAnalyzer(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			spin := newSpinnerWithContext(ctx, "Analyzing "+flags.dir)
			spin.Start()
			res, err := a.Analyze(ctx, flags.options(c, args))
			spin.Stop()
			if err != nil {
				return err
			}

			printSuccess("Analyzed %s", StyleHighlight.Render(flags.dir))
			printStats(res.CacheHit,
				stat{res.Stats.Functions, "functions"},
				stat{res.Stats.Nodes, "blocks"},
				stat{res.Stats.Edges, "edges"},
				stat{res.Stats.Calls, "calls"})

			if err := graph.WriteDocumentFile(flags.output, res.Document); err != nil {
				return err
			}
			printFile(flags.output)
			if flags.dotOut != "" {
				opts := dot.Options{Name: "CFG", Statements: c.Config.Render.Statements}
				if err := dot.WriteFile(flags.dotOut, res.Graph, opts); err != nil {
					return err
				}
				printFile(flags.dotOut)
			}
			if flags.callsOut != "" {
				if err := graph.WriteCallGraphFile(flags.callsOut, res.CallExport); err != nil {
					return err
				}
				printFile(flags.callsOut)
			}
			printNextStep("Draw it", "flowlens render "+flags.output)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "cfg.json", "JSON document output")
	cmd.Flags().StringVar(&flags.dotOut, "dot", "", "also write the graph as DOT")
	cmd.Flags().StringVar(&flags.callsOut, "calls", "", "also write the call graph as JSON")
	cmd.Flags().Bool("statements", false, "include statements in DOT labels")
	return cmd
}
