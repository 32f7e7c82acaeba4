package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/analyzer"
	"github.com/matzehuels/flowlens/pkg/dot"
	"github.com/matzehuels/flowlens/pkg/render"
)

func (c *CLI) renderCommand() *cobra.Command {
	var (
		in      inputFlags
		formats string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "render <graph-or-layout>",
		Short: "Draw a graph or a layout",
		Long: `Render draws a layout file, or lays out a graph first and draws that.

Formats: svg (built-in renderer, or Graphviz with --graphviz), png (Graphviz),
dot and json (the layout). Try blocks are filled light blue, throwing blocks
get a red border and exception edges are drawn dashed red.`,
		Example: `  flowlens render cfg.json
  flowlens render cfg.json -f "(*Server).Run" --format svg,png -a force
  flowlens render calls.json --kind calls -a circular -o calls`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fs, err := c.parseFormats(formats)
			if err != nil {
				return err
			}
			a, err := c.newAnalyzer(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var dotSrc string
			l, isLayout := isLayoutFile(args[0])
			if !isLayout {
				g, err := in.readGraph(ctx, args[0])
				if err != nil {
					return err
				}
				if l, _, err = c.layout(ctx, a, g); err != nil {
					return err
				}
				if g.cfg != nil && c.Config.Render.Statements {
					dotSrc = dot.ToDOT(g.cfg, dot.Options{Name: "CFG", Statements: true})
				}
			}

			base := output
			if base == "" {
				base = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				base = strings.TrimSuffix(base, ".layout")
			}
			prog := newProgress(c.Logger)
			for _, f := range fs {
				out, err := a.Render(ctx, analyzer.RenderRequest{
					Layout:     l,
					Format:     f,
					Graphviz:   c.Config.Render.Graphviz,
					DOT:        dotSrc,
					Statements: dotSrc != "",
				})
				if err != nil {
					return err
				}
				path := base + "." + string(f)
				if err := writeOutput(path, out); err != nil {
					return err
				}
				printFile(path)
			}
			prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(fs)))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&formats, "format", "", "comma-separated formats: "+formatList())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base name (extension is added per format)")
	cmd.Flags().Bool("graphviz", false, "draw SVG with Graphviz instead of the built-in renderer")
	cmd.Flags().Bool("statements", false, "show statements in Graphviz labels")
	registerLayoutFlags(cmd)
	return cmd
}

func formatList() string {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
