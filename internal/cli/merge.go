package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/dot"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/graph"
)

func (c *CLI) mergeCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge <file>...",
		Short: "Merge several graphs into one JSON document",
		Long: `Merge renumbers the blocks of each input past those already merged and
writes one document. Inputs may be JSON documents or DOT files; empty inputs
are skipped. The ast and functionCalls fields of the first input that has
them are kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]graph.Document, 0, len(args))
			for _, path := range args {
				doc, err := readAnyDocument(path)
				if errors.IsNoData(err) {
					printWarning("%s has no graph, skipped", path)
					continue
				}
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			merged, err := graph.MergeDocuments(docs...)
			if err != nil {
				return err
			}
			if err := graph.WriteDocumentFile(output, merged); err != nil {
				return err
			}
			printSuccess("Merged %d inputs into %d blocks", len(docs), len(merged.Nodes))
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "merged.json", "output document")
	return cmd
}

// readAnyDocument reads a JSON document, or parses a DOT file into one.
func readAnyDocument(path string) (graph.Document, error) {
	if isDOT(path) {
		res, err := dot.ParseFile(path)
		if err != nil {
			return graph.Document{}, err
		}
		return graph.FromCFG(res.Graph, graph.Aux{}), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return graph.Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return graph.Document{}, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return graph.ReadDocument(f)
}
