package cli

import (
	"bytes"
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/analyzer"
	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg"
	"github.com/matzehuels/flowlens/pkg/dot"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/graph"
)

// graphInput is a graph read from disk: a CFG, or a call graph when kind is
// calls.
type graphInput struct {
	kind  string
	cfg   *cfg.Graph
	calls *callgraph.Graph
}

type inputFlags struct {
	kind     string
	function string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", graph.KindCFG, "input kind: cfg (JSON document or DOT) or calls (call graph JSON)")
	cmd.Flags().StringVarP(&f.function, "function", "f", "", "restrict a CFG to the blocks of one function")
}

// readGraph loads path according to the flags.
func (f *inputFlags) readGraph(ctx context.Context, path string) (graphInput, error) {
	switch f.kind {
	case graph.KindCalls:
		cg, err := graph.ReadCallGraphFile(path)
		if err != nil {
			return graphInput{}, err
		}
		return graphInput{kind: graph.KindCalls, calls: graph.ToCallGraph(cg)}, nil
	case graph.KindCFG:
	default:
		return graphInput{}, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q (want cfg or calls)", f.kind)
	}

	var g *cfg.Graph
	if isDOT(path) {
		res, err := dot.ParseFile(path, dot.WithLogger(loggerFromContext(ctx)))
		if err != nil {
			return graphInput{}, err
		}
		g = res.Graph
	} else {
		var err error
		if g, _, err = graph.ReadCFGFile(path); err != nil {
			return graphInput{}, err
		}
	}
	if f.function != "" {
		g = g.Function(f.function)
		if g.NodeCount() == 0 {
			return graphInput{}, errors.New(errors.ErrCodeFunctionNotFound, "no blocks of function %q in %s", f.function, path)
		}
	}
	return graphInput{kind: graph.KindCFG, cfg: g}, nil
}

// layout runs the configured algorithm over in.
func (c *CLI) layout(ctx context.Context, a *analyzer.Analyzer, in graphInput) (graph.Layout, bool, error) {
	if in.kind == graph.KindCalls {
		return a.LayoutCalls(ctx, in.calls, c.layoutOptions())
	}
	return a.LayoutCFG(ctx, in.cfg, c.layoutOptions())
}

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		in     inputFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "layout <graph>",
		Short: "Compute node positions for a graph",
		Long: `Layout places the nodes of a graph with one of three algorithms:

  hierarchical  nodes in levels by longest path from the roots; cycles are
                truncated, or condensed with --collapse
  force         spring embedding with a fixed seed, reproducible per input
  circular      nodes evenly on a circle

The result is a JSON layout that render accepts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := in.readGraph(ctx, args[0])
			if err != nil {
				return err
			}
			a, err := c.newAnalyzer(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			prog := newProgress(c.Logger)
			l, hit, err := c.layout(ctx, a, g)
			if err != nil {
				return err
			}
			prog.done("Laid out " + l.Algorithm)

			if output == "" {
				output = withExt(args[0], ".layout.json")
			}
			data, err := graph.MarshalLayout(l)
			if err != nil {
				return err
			}
			if err := writeOutput(output, append(data, '\n')); err != nil {
				return err
			}
			printSuccess("Computed %s layout", StyleHighlight.Render(l.Algorithm))
			printStats(hit, stat{len(l.Nodes), "nodes"}, stat{len(l.Edges), "edges"})
			printFile(output)
			printNextStep("Render it", "flowlens render "+output)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input>.layout.json, - for stdout)")
	registerLayoutFlags(cmd)
	return cmd
}

// registerLayoutFlags declares the flags config.FlagKeys maps onto the
// layout section.
func registerLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("algorithm", "a", "hierarchical", "hierarchical, force or circular")
	cmd.Flags().Bool("collapse", false, "condense cycles before assigning levels")
	cmd.Flags().Int("iterations", 0, "force-directed iterations (0: default)")
	cmd.Flags().Uint64("seed", 0, "force-directed seed (0: default)")
	cmd.Flags().Float64("radius", 0, "circular radius (0: default)")
}

// isLayoutFile reports whether data is a serialized layout rather than a
// graph document.
func isLayoutFile(path string) (graph.Layout, bool) {
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Contains(data, []byte(`"kind"`)) {
		return graph.Layout{}, false
	}
	l, err := graph.UnmarshalLayout(data)
	return l, err == nil
}
