package callgraph

import (
	"slices"
	"strings"
	"testing"
)

func sample() *Graph {
	return FromCalls([]Call{
		{"main", "parse"},
		{"main", "render"},
		{"main", "parse"},
		{"parse", "lex"},
		{"render", "lex"},
	})
}

func TestRecordIdempotent(t *testing.T) {
	g := sample()

	if g.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", g.EdgeCount())
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
	if got := g.Callees("main"); !slices.Equal(got, []string{"parse", "render"}) {
		t.Errorf("Callees(main) = %v", got)
	}
	if got := g.Functions(); !slices.Equal(got, []string{"lex", "main", "parse", "render"}) {
		t.Errorf("Functions() = %v", got)
	}
	if !g.Calls("parse", "lex") || g.Calls("lex", "parse") {
		t.Error("Calls() direction wrong")
	}
}

func TestBuilder(t *testing.T) {
	var b Builder
	if b.Graph().Len() != 0 {
		t.Fatal("zero Builder should yield an empty graph")
	}
	b.Observe(Call{"main", "parse"})
	b.Collect(slices.Values([]Call{{"main", "parse"}, {"parse", "lex"}, {"", "lex"}}))

	if b.Observed() != 4 {
		t.Errorf("Observed() = %d, want 4", b.Observed())
	}
	if g := b.Graph(); g.EdgeCount() != 2 || !g.Calls("parse", "lex") {
		t.Errorf("Graph() has %d edges, want 2", g.EdgeCount())
	}
}

func TestRecordIgnoresEmptyNames(t *testing.T) {
	g := New()
	g.Record("", "f")
	g.Record("f", "")
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
}

func TestReport(t *testing.T) {
	g := sample()
	g.AddFunction("idle")

	want := "Function Dependencies:\n" +
		"main calls:\n  - parse\n  - render\n" +
		"parse calls:\n  - lex\n" +
		"render calls:\n  - lex\n"
	if got := g.ReportString(); got != want {
		t.Errorf("ReportString() =\n%s\nwant\n%s", got, want)
	}
}

func TestToDOT(t *testing.T) {
	dot := sample().ToDOT()

	for _, want := range []string{
		"rankdir=LR;",
		"shape=rectangle",
		"fillcolor=lightblue",
		`"main" -> "parse";`,
		`"render" -> "lex";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q", want)
		}
	}
}

func TestMerge(t *testing.T) {
	g := sample()
	other := FromCalls([]Call{{"main", "exit"}, {"lex", "next"}})
	g.Merge(other)

	if g.EdgeCount() != 6 {
		t.Errorf("EdgeCount() = %d, want 6", g.EdgeCount())
	}
	if !g.Calls("lex", "next") {
		t.Error("merged dependency missing")
	}
}

func TestCycles(t *testing.T) {
	g := FromCalls([]Call{
		{"a", "b"},
		{"b", "c"},
		{"c", "a"},
		{"fact", "fact"},
		{"main", "a"},
		{"main", "fact"},
	})

	got := g.Cycles()
	want := [][]string{{"a", "b", "c"}, {"fact"}}
	if !slices.EqualFunc(got, want, slices.Equal[[]string]) {
		t.Errorf("Cycles() = %v, want %v", got, want)
	}

	if got := sample().Cycles(); len(got) != 0 {
		t.Errorf("Cycles() on acyclic graph = %v", got)
	}
}
