package cli

import (
	"regexp"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/analyzer"
	"github.com/matzehuels/flowlens/pkg/render"
)

func (c *CLI) pickCommand() *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "pick [packages...]",
		Short: "Choose a function interactively and draw its control-flow graph",
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

			final, err := tea.NewProgram(NewFunctionPicker(functionEntries(res)), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			picked := final.(FunctionPicker).Selected
			if picked == nil {
				printInfo("Nothing selected")
				return nil
			}

			sub := res.Graph.Function(picked.Name)
			l, _, err := a.LayoutCFG(ctx, sub, c.layoutOptions())
			if err != nil {
				return err
			}
			svg, err := a.Render(ctx, analyzer.RenderRequest{Layout: l, Format: render.FormatSVG, Graphviz: c.Config.Render.Graphviz})
			if err != nil {
				return err
			}
			path := fileSafe(picked.Name) + ".svg"
			if err := writeOutput(path, svg); err != nil {
				return err
			}
			printSuccess("Drew %s", StyleHighlight.Render(picked.Name))
			printStats(false, stat{sub.NodeCount(), "blocks"}, stat{sub.EdgeCount(), "edges"})
			printFile(path)
			return nil
		},
	}
	flags.register(cmd)
	registerLayoutFlags(cmd)
	return cmd
}

// functionEntries lists the analysed functions in name order.
func functionEntries(res *analyzer.Result) []FunctionEntry {
	blocks := make(map[string]int)
	throwing := make(map[string]bool)
	for _, n := range res.Graph.Nodes() {
		blocks[n.FunctionName]++
	}
	for _, id := range res.Graph.ThrowingBlocks() {
		throwing[res.Graph.FunctionName(id)] = true
	}
	entries := make([]FunctionEntry, 0, len(res.Offsets))
	for name := range res.Offsets {
		entries = append(entries, FunctionEntry{
			Name:     name,
			Blocks:   blocks[name],
			Calls:    len(res.Calls.Callees(name)),
			Throwing: throwing[name],
		})
	}
	slices.SortFunc(entries, func(a, b FunctionEntry) int { return strings.Compare(a.Name, b.Name) })
	return entries
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// fileSafe turns "(*Server).Run$1" into "Server_.Run_1".
func fileSafe(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_")
	if s == "" {
		return "function"
	}
	return s
}
