package dot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/flowlens/pkg/cfg"
	"github.com/matzehuels/flowlens/pkg/errors"
)

// DefaultName is the graph name used when [Options.Name] is empty.
const DefaultName = "CFG"

// Options configures DOT output.
type Options struct {
	// Name is the digraph name.
	Name string
	// Statements appends each block's statements to its label.
	Statements bool
	// RankDir sets the graph rank direction (TB, LR). Empty omits it.
	RankDir string
}

// ToDOT returns the DOT text of g.
func ToDOT(g *cfg.Graph, opts Options) string {
	var buf bytes.Buffer
	_ = Write(&buf, g, opts)
	return buf.String()
}

// Write writes g to w in DOT format.
func Write(w io.Writer, g *cfg.Graph, opts Options) error {
	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", quote(name))
	if opts.RankDir != "" {
		fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.RankDir)
	}
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontsize=9];\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(nodeAttrs(g, n, opts), ", "))
	}
	for _, e := range g.Edges() {
		if e.Exception {
			fmt.Fprintf(&buf, "  %d -> %d [color=red, style=dashed, label=\"exception\"];\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %d -> %d;\n", e.From, e.To)
		}
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes g to path in DOT format.
func WriteFile(path string, g *cfg.Graph, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if err := Write(f, g, opts); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}

func nodeAttrs(g *cfg.Graph, n cfg.Node, opts Options) []string {
	label := g.Label(n.ID)
	if opts.Statements && len(n.Statements) > 0 {
		label += "\n" + strings.Join(n.Statements, "\n")
	}
	attrs := []string{"label=" + quote(label)}
	if g.IsTryBlock(n.ID) {
		attrs = append(attrs, "shape=box", "style=filled", "fillcolor=lightblue")
	}
	if g.IsThrowing(n.ID) {
		attrs = append(attrs, "color=red")
	}
	return attrs
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func quote(s string) string {
	return `"` + labelEscaper.Replace(s) + `"`
}
