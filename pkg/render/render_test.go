package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flowlens/pkg/cfg"
	"github.com/matzehuels/flowlens/pkg/dot"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/graph"
	"github.com/matzehuels/flowlens/pkg/layout"
)

func sampleGraph() *cfg.Graph {
	g := cfg.New()
	g.AddLabeledNode(0, "entry")
	g.AddEdge(0, 1)
	g.AddExceptionEdge(0, 2)
	g.MarkTryBlock(0)
	g.MarkThrowing(2)
	return g
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatSVG, false},
		{"png", FormatPNG, false},
		{"dot", FormatDOT, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestEngineFor(t *testing.T) {
	if EngineFor(layout.AlgorithmHierarchical) != EngineDot ||
		EngineFor(layout.AlgorithmForce) != EngineFDP ||
		EngineFor(layout.AlgorithmCircular) != EngineCirco {
		t.Error("unexpected engine mapping")
	}
}

func TestGraphvizSVG(t *testing.T) {
	src := dot.ToDOT(sampleGraph(), dot.Options{})
	svg, err := Graphviz(context.Background(), src, FormatSVG, "")
	if err != nil {
		t.Fatalf("Graphviz: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, `viewBox="0 0 `) {
		t.Errorf("viewBox not normalized: %.200s", out)
	}
	if !strings.Contains(out, "entry") {
		t.Error("label missing from SVG")
	}
}

func TestGraphvizRejectsTextFormats(t *testing.T) {
	_, err := Graphviz(context.Background(), "digraph G {}", FormatJSON, "")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("got %s", got)
	}
	if plain := []byte("<svg></svg>"); string(normalizeViewBox(plain)) != "<svg></svg>" {
		t.Error("svg without viewBox modified")
	}
}

func TestLayoutSVG(t *testing.T) {
	g := sampleGraph()
	pos := layout.Hierarchical(layout.CFG(g), layout.HierarchicalOptions{})
	l := graph.LayoutFromCFG(g, layout.AlgorithmHierarchical, pos)

	out := string(LayoutSVG(l, WithTitle("demo <cfg>")))
	for _, want := range []string{
		`<title>demo &lt;cfg&gt;</title>`,
		`class="node try" id="node-0"`,
		`class="node throwing" id="node-2"`,
		`class="edge exception" data-from="0" data-to="2"`,
		`>entry</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s", want)
		}
	}
	if strings.Contains(out, " Q") {
		t.Error("hierarchical edges should be straight")
	}
}

func TestLayoutSVGCircularCurves(t *testing.T) {
	g := sampleGraph()
	pos := layout.Circular(layout.CFG(g), layout.CircularOptions{})
	out := string(LayoutSVG(graph.LayoutFromCFG(g, layout.AlgorithmCircular, pos)))
	if !strings.Contains(out, " Q") {
		t.Error("circular edges should be curved")
	}
}

func TestClip(t *testing.T) {
	got := clip(layout.Point{}, layout.Point{X: 200})
	if got != (layout.Point{X: nodeWidth / 2}) {
		t.Errorf("clip horizontal = %v", got)
	}
	got = clip(layout.Point{}, layout.Point{Y: 100})
	if got != (layout.Point{Y: nodeHeight / 2}) {
		t.Errorf("clip vertical = %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if truncate("short", 14) != "short" {
		t.Error("short label changed")
	}
	if got := truncate("a very long block label", 8); got != "a very …" {
		t.Errorf("got %q", got)
	}
}
