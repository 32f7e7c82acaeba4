package cfg

import (
	"slices"
	"testing"
)

func function(name string) *Graph {
	g := New()
	for id := 0; id < 3; id++ {
		g.SetFunctionName(id, name)
		g.AddStatement(id, name)
	}
	g.AddEdge(0, 1)
	g.AddExceptionEdge(0, 2)
	g.MarkTryBlock(0)
	g.MarkThrowing(1)
	return g
}

func TestMerge(t *testing.T) {
	g := function("main")
	offset := g.Merge(function("helper"))

	if offset != 3 {
		t.Fatalf("Merge() offset = %d, want 3", offset)
	}
	if g.NodeCount() != 6 {
		t.Errorf("NodeCount() = %d, want 6", g.NodeCount())
	}
	if g.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", g.EdgeCount())
	}
	if !g.IsExceptionEdge(3, 5) {
		t.Error("IsExceptionEdge(3,5) = false, want true")
	}
	if !g.IsTryBlock(3) || !g.IsThrowing(4) {
		t.Error("marks not shifted")
	}
	if got := g.FunctionName(4); got != "helper" {
		t.Errorf("FunctionName(4) = %q, want helper", got)
	}
	if got := g.FunctionName(1); got != "main" {
		t.Errorf("FunctionName(1) = %q, want main", got)
	}
}

func TestMergeIntoEmpty(t *testing.T) {
	g := New()
	if offset := g.Merge(function("main")); offset != 0 {
		t.Errorf("Merge() offset = %d, want 0", offset)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
}

func TestMergeSelf(t *testing.T) {
	g := function("main")
	offset := g.Merge(g)

	if offset != 3 {
		t.Fatalf("Merge() offset = %d, want 3", offset)
	}
	if g.NodeCount() != 6 || g.EdgeCount() != 4 {
		t.Errorf("NodeCount(), EdgeCount() = %d, %d, want 6, 4", g.NodeCount(), g.EdgeCount())
	}
	want := []Edge{{From: 0, To: 2, Exception: true}, {From: 3, To: 5, Exception: true}}
	if got := g.ExceptionEdges(); !slices.Equal(got, want) {
		t.Errorf("ExceptionEdges() = %v, want %v", got, want)
	}
	if got := g.TryBlocks(); !slices.Equal(got, []int{0, 3}) {
		t.Errorf("TryBlocks() = %v, want [0 3]", got)
	}
	if got := g.ThrowingBlocks(); !slices.Equal(got, []int{1, 4}) {
		t.Errorf("ThrowingBlocks() = %v, want [1 4]", got)
	}
}

func TestFunction(t *testing.T) {
	g := function("main")
	g.Merge(function("helper"))
	g.AddEdge(2, 3)

	sub := g.Function("helper")

	if !slices.Equal(sub.IDs(), []int{3, 4, 5}) {
		t.Errorf("IDs() = %v, want [3 4 5]", sub.IDs())
	}
	if sub.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", sub.EdgeCount())
	}
	if !sub.IsExceptionEdge(3, 5) {
		t.Error("exception edge lost")
	}
	if sub.HasNode(2) {
		t.Error("cross-function edge pulled in node 2")
	}

	if empty := g.Function("missing"); empty.NodeCount() != 0 {
		t.Errorf("Function(missing).NodeCount() = %d, want 0", empty.NodeCount())
	}
}
