package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/graph"
)

func (c *CLI) depsCommand() *cobra.Command {
	var (
		flags  analyzeFlags
		input  string
		output string
		asDOT  bool
		cycles bool
	)
	cmd := &cobra.Command{
		Use:   "deps [packages...]",
		Short: "Print which function calls which",
		Long: `Deps prints the call-dependency report of the analysed packages: every
caller followed by the functions it calls directly. Only static calls are
recorded; calls through interfaces and function values are not.

With --input the report is read from a call graph JSON file instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var g *callgraph.Graph
			var export graph.CallGraph
			if input != "" {
				cg, err := graph.ReadCallGraphFile(input)
				if err != nil {
					return err
				}
				export, g = cg, graph.ToCallGraph(cg)
			} else {
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
				export, g = res.CallExport, res.Calls
			}

			out := cmd.OutOrStdout()
			if asDOT {
				fmt.Fprint(out, g.ToDOT())
			} else if err := g.Report(out); err != nil {
				return err
			}

			if cycles {
				groups := g.Cycles()
				if len(groups) == 0 {
					printInfo("No recursion")
				}
				for _, grp := range groups {
					printWarning("recursive: %s", strings.Join(grp, " → "))
				}
			}
			if output != "" {
				if err := graph.WriteCallGraphFile(output, export); err != nil {
					return err
				}
				fmt.Fprintln(os.Stderr)
				printFile(output)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "read a call graph JSON file instead of analysing")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the call graph as JSON")
	cmd.Flags().BoolVar(&asDOT, "dot", false, "print DOT instead of the text report")
	cmd.Flags().BoolVar(&cycles, "cycles", false, "list groups of mutually recursive functions")
	return cmd
}
