package dot

import (
	stderrors "errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowlens/pkg/cfg"
	"github.com/matzehuels/flowlens/pkg/errors"
)

func TestParse_AutoCreatesTarget(t *testing.T) {
	res, err := ParseString("5 [label=\"Block 5\"];\n5 -> 6;\n")
	require.NoError(t, err)

	g := res.Graph
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, []int{5, 6}, g.IDs())
	assert.True(t, g.HasEdge(5, 6))
	assert.Equal(t, 1, g.EdgeCount())
	assert.Empty(t, g.ExceptionEdges())
	assert.Equal(t, "Block 6", g.Label(6))
	assert.Equal(t, 2, res.Matched)
}

func TestParse_RoundTrip(t *testing.T) {
	g := cfg.New()
	for id := 0; id < 3; id++ {
		g.AddNode(id)
	}
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(0, 2)

	res, err := ParseString(ToDOT(g, Options{}))
	require.NoError(t, err)

	got := res.Graph
	assert.Equal(t, 3, got.NodeCount())
	assert.Equal(t, 3, got.EdgeCount())
	for _, id := range g.IDs() {
		assert.Equal(t, g.Successors(id), got.Successors(id), "successors of %d", id)
	}
	assert.Empty(t, got.TryBlocks())
	assert.Empty(t, got.ThrowingBlocks())
	assert.Empty(t, res.Diagnostics)
}

func TestParse_RoundTripMarks(t *testing.T) {
	g := cfg.New()
	g.AddLabeledNode(0, `entry "main"`)
	g.MarkTryBlock(0)
	g.MarkThrowing(0)
	g.AddExceptionEdge(0, 2)
	g.AddEdge(0, 1)
	g.MarkThrowing(2)

	res, err := ParseString(ToDOT(g, Options{}))
	require.NoError(t, err)

	got := res.Graph
	assert.Equal(t, g.TryBlocks(), got.TryBlocks())
	assert.Equal(t, g.ThrowingBlocks(), got.ThrowingBlocks())
	assert.Equal(t, g.ExceptionEdges(), got.ExceptionEdges())
	assert.Equal(t, g.Edges(), got.Edges())
	assert.Equal(t, `entry "main"`, got.Label(0))
	assert.Equal(t, "CFG", res.Name)
}

func TestParse_HandWritten(t *testing.T) {
	input := `// generated elsewhere
digraph "cfg of main" {
  rankdir=TB;
  node [shape=ellipse];
  edge [color=black];
  0 [label=entry];
  1 [label="body", shape=box];
  2 [label='broken];
  3 [color=RED];
  0 -> 1 -> 3;
  1 -> 2 [label="Exception: io"];
  this is not dot
}
`
	res, err := ParseString(input)
	require.NoError(t, err)

	g := res.Graph
	assert.Equal(t, "cfg of main", res.Name)
	assert.Equal(t, "entry", g.Label(0))
	assert.Equal(t, []int{1}, g.TryBlocks())
	assert.Equal(t, []int{3}, g.ThrowingBlocks())
	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 3))
	assert.True(t, g.IsExceptionEdge(1, 2))
	assert.False(t, g.IsExceptionEdge(0, 1))
	assert.Equal(t, "TB", res.Defaults["graph"]["rankdir"])

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 12, res.Diagnostics[0].Line)
	assert.Equal(t, "this is not dot", res.Diagnostics[0].Text)
}

func TestParse_GlobalDefaultsApply(t *testing.T) {
	input := "node [color=red];\n1;\n2 [color=black];\nedge [color=red];\n1 -> 2;\n"

	res, err := ParseString(input)
	require.NoError(t, err)

	g := res.Graph
	assert.True(t, g.IsThrowing(1))
	assert.False(t, g.IsThrowing(2))
	assert.True(t, g.IsExceptionEdge(1, 2))
}

func TestParse_NodeNameLabel(t *testing.T) {
	input := "node [label=\"\\N\"];\n7 [label=\"\\N\"];\n8;\n9 [label=\"a\\nb\"];\n"

	res, err := ParseString(input)
	require.NoError(t, err)

	g := res.Graph
	assert.Equal(t, "Block 7", g.Label(7))
	assert.Equal(t, "Block 8", g.Label(8))
	assert.Equal(t, "a\nb", g.Label(9))
}

func TestParse_AttributeContinuationLine(t *testing.T) {
	input := "digraph G {\n  5 [label=\"x\",\n  color=red]\n  5 -> 6;\n}\n"

	res, err := ParseString(input)
	require.NoError(t, err)

	assert.NotContains(t, res.Defaults["graph"], "color")
	assert.Len(t, res.Diagnostics, 2)
	assert.False(t, res.Graph.IsThrowing(5))
	assert.True(t, res.Graph.HasEdge(5, 6))

	res, err = ParseString("rankdir=LR;\nsplines=\"ortho\";\n0 -> 1;\n")
	require.NoError(t, err)
	assert.Equal(t, "LR", res.Defaults["graph"]["rankdir"])
	assert.Equal(t, "ortho", res.Defaults["graph"]["splines"])
	assert.Empty(t, res.Diagnostics)
}

func TestParse_SingleLine(t *testing.T) {
	res, err := ParseString(`digraph G { 0 -> 1; 1 -> 2 [color=red]; 2 [shape=box] }`)
	require.NoError(t, err)

	g := res.Graph
	assert.Equal(t, "G", res.Name)
	assert.Equal(t, 3, g.NodeCount())
	assert.True(t, g.IsExceptionEdge(1, 2))
	assert.True(t, g.IsTryBlock(2))
}

func TestParse_NodeNames(t *testing.T) {
	input := `
"node5" -> "node6";
"0 entry" -> "1 if.then";
start -> stop;
start -> node5;
`
	res, err := ParseString(input)
	require.NoError(t, err)

	g := res.Graph
	assert.True(t, g.HasEdge(5, 6))
	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(-1, -2))
	assert.True(t, g.HasEdge(-1, 5))
	assert.Equal(t, "start", g.Label(-1))
	assert.Equal(t, "stop", g.Label(-2))
	assert.Equal(t, 6, g.NodeCount())
}

func TestParse_NoStatements(t *testing.T) {
	inputs := []string{
		"",
		"// only a comment\n",
		"digraph G {\n}\n",
		"garbage line\nmore garbage\n",
	}
	for _, input := range inputs {
		res, err := ParseString(input)
		assert.Nil(t, res, "input %q", input)
		assert.True(t, errors.Is(err, errors.ErrCodeNoData), "input %q: %v", input, err)
		assert.True(t, stderrors.Is(err, ErrNoStatements), "input %q: %v", input, err)
	}
}

func TestParse_PartialInputKeepsGraph(t *testing.T) {
	input := strings.Join([]string{
		"0 -> 1;",
		"0 -> [color=red];",
		"1 [label=\"unterminated];",
		"-> 3;",
		"1 -> 2;",
	}, "\n")

	res, err := ParseString(input)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Graph.EdgeCount())
	assert.GreaterOrEqual(t, len(res.Diagnostics), 2)

	lines := make([]int, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		lines = append(lines, d.Line)
	}
	assert.True(t, slices.IsSorted(lines))
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("does/not/exist.dot")
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "error = %v", err)
}

func TestUnescape(t *testing.T) {
	tests := []struct{ in, want string }{
		{`plain`, "plain"},
		{`a\"b`, `a"b`},
		{`line\nnext`, "line\nnext"},
		{`left\l`, "left\n"},
		{`back\\slash`, `back\slash`},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		if got := unescape(tt.in); got != tt.want {
			t.Errorf("unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
