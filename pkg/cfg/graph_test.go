package cfg

import (
	"slices"
	"testing"
)

func TestAddEdgeIdempotent(t *testing.T) {
	pairs := [][2]int{{0, 1}, {1, 1}, {3, 0}, {7, 2}}
	for _, p := range pairs {
		once := New()
		once.AddEdge(p[0], p[1])

		twice := New()
		twice.AddEdge(p[0], p[1])
		twice.AddEdge(p[0], p[1])

		if once.EdgeCount() != twice.EdgeCount() {
			t.Errorf("AddEdge(%d,%d) twice: EdgeCount() = %d, want %d", p[0], p[1], twice.EdgeCount(), once.EdgeCount())
		}
	}
}

func TestAddEdgeCreatesBothEnds(t *testing.T) {
	g := New()
	g.AddEdge(5, 6)

	if !g.HasNode(5) || !g.HasNode(6) {
		t.Fatalf("HasNode(5)=%v HasNode(6)=%v, want both true", g.HasNode(5), g.HasNode(6))
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if got := g.Label(6); got != "Block 6" {
		t.Errorf("Label(6) = %q, want %q", got, "Block 6")
	}
}

func TestAddStatementCreatesNode(t *testing.T) {
	g := New()
	g.AddStatement(3, "x := 1")
	g.AddStatement(3, "y := x")

	if got := g.Statements(3); !slices.Equal(got, []string{"x := 1", "y := x"}) {
		t.Errorf("Statements(3) = %v", got)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestExceptionEdgeInvariant(t *testing.T) {
	g := New()
	g.AddExceptionEdge(1, 2)
	g.AddExceptionEdge(4, 1)
	g.AddEdge(2, 3)
	g.AddExceptionEdge(2, 3)

	for _, e := range g.ExceptionEdges() {
		if !g.HasEdge(e.From, e.To) {
			t.Errorf("exception edge %d->%d missing from successors", e.From, e.To)
		}
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if g.IsExceptionEdge(3, 2) {
		t.Error("IsExceptionEdge(3,2) = true, want false")
	}
}

func TestMarksAreIndependent(t *testing.T) {
	g := New()
	g.AddStatement(5, "defer recover()")
	g.AddEdge(5, 6)

	g.MarkTryBlock(5)
	g.MarkThrowing(5)

	if !g.IsTryBlock(5) {
		t.Error("IsTryBlock(5) = false, want true")
	}
	if !g.IsThrowing(5) {
		t.Error("IsThrowing(5) = false, want true")
	}
	if got := g.Successors(5); !slices.Equal(got, []int{6}) {
		t.Errorf("Successors(5) = %v, want [6]", got)
	}
	if got := g.Statements(5); !slices.Equal(got, []string{"defer recover()"}) {
		t.Errorf("Statements(5) = %v", got)
	}
	if g.IsTryBlock(6) || g.IsThrowing(6) {
		t.Error("marks leaked to node 6")
	}
}

func TestAbsentIDDefaults(t *testing.T) {
	g := New()

	if g.HasNode(42) {
		t.Error("HasNode(42) = true on empty graph")
	}
	if got := g.Label(42); got != DefaultLabel(42) {
		t.Errorf("Label(42) = %q, want %q", got, DefaultLabel(42))
	}
	if got := g.Statements(42); got != nil {
		t.Errorf("Statements(42) = %v, want nil", got)
	}
	if got := g.Successors(42); got != nil {
		t.Errorf("Successors(42) = %v, want nil", got)
	}
	if _, ok := g.Node(42); ok {
		t.Error("Node(42) ok = true, want false")
	}
	if g.HasEdge(42, 43) {
		t.Error("HasEdge(42,43) = true")
	}
	if g.MaxID() != -1 {
		t.Errorf("MaxID() = %d, want -1", g.MaxID())
	}
}

func TestLabel(t *testing.T) {
	g := New()
	g.AddNode(1)
	g.AddLabeledNode(2, "entry")
	g.AddLabeledNode(2, "entry block")

	tests := []struct {
		id   int
		want string
	}{
		{1, "Block 1"},
		{2, "entry block"},
		{9, "Block 9"},
	}
	for _, tt := range tests {
		if got := g.Label(tt.id); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNodesOrderedByID(t *testing.T) {
	g := New()
	for _, id := range []int{9, 2, 5, 0} {
		g.AddNode(id)
	}
	g.AddEdge(5, 2)
	g.AddEdge(5, 0)

	var ids []int
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	if !slices.Equal(ids, []int{0, 2, 5, 9}) {
		t.Errorf("Nodes() ids = %v, want [0 2 5 9]", ids)
	}

	n, _ := g.Node(5)
	if !slices.Equal(n.Successors, []int{0, 2}) {
		t.Errorf("Node(5).Successors = %v, want [0 2]", n.Successors)
	}
}

func TestEdges(t *testing.T) {
	g := New()
	g.AddEdge(2, 1)
	g.AddEdge(0, 2)
	g.AddExceptionEdge(0, 1)

	want := []Edge{
		{From: 0, To: 1, Exception: true},
		{From: 0, To: 2},
		{From: 2, To: 1},
	}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}

func TestNodeSnapshotIsCopy(t *testing.T) {
	g := New()
	g.AddStatement(0, "a")

	n, _ := g.Node(0)
	n.Statements[0] = "mutated"

	if got := g.Statements(0)[0]; got != "a" {
		t.Errorf("graph statement changed through snapshot: %q", got)
	}
}

func TestFunctionNames(t *testing.T) {
	g := New()
	g.SetFunctionName(0, "main")
	g.SetFunctionName(1, "main")
	g.SetFunctionName(2, "helper")
	g.AddNode(3)

	if got := g.FunctionNames(); !slices.Equal(got, []string{"helper", "main"}) {
		t.Errorf("FunctionNames() = %v", got)
	}
}
