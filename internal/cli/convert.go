package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/dot"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/graph"
)

const maxDiagnostics = 10

func (c *CLI) convertCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a graph between DOT and JSON",
		Long: `Convert reads a .dot/.gv file and writes the JSON document form, or reads a
JSON document and writes DOT. Malformed DOT lines are skipped and listed.
The output defaults to the input name with the other extension.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if len(args) == 2 {
				output = args[1]
			}
			if isDOT(in) {
				return c.dotToJSON(cmd, in, output)
			}
			return c.jsonToDOT(in, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout)")
	cmd.Flags().Bool("statements", false, "include statements in DOT labels")
	return cmd
}

func (c *CLI) dotToJSON(cmd *cobra.Command, in, out string) error {
	if out == "" {
		out = withExt(in, ".json")
	}
	res, err := dot.ParseFile(in, dot.WithLogger(loggerFromContext(cmd.Context())))
	if err != nil {
		return err
	}
	diags := make([]string, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		diags[i] = d.String()
	}
	printDiagnostics(diags, maxDiagnostics)

	if out == "-" {
		return graph.WriteCFG(os.Stdout, res.Graph, graph.Aux{})
	}
	if err := graph.WriteCFGFile(out, res.Graph, graph.Aux{}); err != nil {
		return err
	}
	printSuccess("Converted %d blocks, %d edges", res.Graph.NodeCount(), res.Graph.EdgeCount())
	printFile(out)
	return nil
}

func (c *CLI) jsonToDOT(in, out string) error {
	if out == "" {
		out = withExt(in, ".dot")
	}
	g, doc, err := graph.ReadCFGFile(in)
	if err != nil {
		return err
	}
	if doc.Skipped > 0 {
		printWarning("%d malformed node or edge entries skipped", doc.Skipped)
	}
	opts := dot.Options{Name: "CFG", Statements: c.Config.Render.Statements}
	if out == "-" {
		return dot.Write(os.Stdout, g, opts)
	}
	if err := dot.WriteFile(out, g, opts); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", out)
	}
	printSuccess("Converted %d blocks, %d edges", g.NodeCount(), g.EdgeCount())
	printFile(out)
	return nil
}
