package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg"
	flerrors "github.com/matzehuels/flowlens/pkg/errors"
)

func static(nodes []int, edges ...[2]int) Static[int] {
	s := Static[int]{NodeList: nodes}
	for _, e := range edges {
		s.EdgeList = append(s.EdgeList, Edge[int]{From: e[0], To: e[1]})
	}
	return s
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLevelsDiamond(t *testing.T) {
	v := static([]int{1, 2, 3, 4}, [2]int{1, 2}, [2]int{1, 3}, [2]int{2, 4}, [2]int{3, 4})
	got := Levels[int](v, Truncate)
	want := map[int]int{1: 3, 2: 2, 3: 2, 4: 1}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("level(%d) = %d, want %d", k, got[k], w)
		}
	}
}

func TestHierarchicalDistinctSlots(t *testing.T) {
	v := static([]int{1, 2, 3, 4, 5},
		[2]int{1, 2}, [2]int{1, 3}, [2]int{1, 4}, [2]int{2, 5}, [2]int{3, 5}, [2]int{4, 5})
	pos := Hierarchical[int](v, HierarchicalOptions{})
	if len(pos) != 5 {
		t.Fatalf("got %d positions, want 5", len(pos))
	}

	byY := make(map[float64]map[float64]int)
	for k, p := range pos {
		if byY[p.Y] == nil {
			byY[p.Y] = make(map[float64]int)
		}
		if other, dup := byY[p.Y][p.X]; dup {
			t.Errorf("nodes %d and %d share position %v", k, other, p)
		}
		byY[p.Y][p.X] = k
	}

	if p := pos[5]; p.Y != DefaultLevelHeight || p.X != 0 {
		t.Errorf("leaf at %v, want (0, %d)", p, DefaultLevelHeight)
	}
	// Three siblings on level 2 are centered around zero.
	if pos[2].X != -DefaultNodeSpacing || pos[3].X != 0 || pos[4].X != DefaultNodeSpacing {
		t.Errorf("siblings at %v %v %v", pos[2], pos[3], pos[4])
	}
}

func TestCyclePolicies(t *testing.T) {
	v := static([]int{1, 2, 3}, [2]int{1, 2}, [2]int{2, 1}, [2]int{2, 3})

	truncated := Levels[int](v, Truncate)
	if truncated[1] != 3 || truncated[2] != 2 || truncated[3] != 1 {
		t.Errorf("truncate: %v", truncated)
	}

	collapsed := Levels[int](v, Collapse)
	if collapsed[1] != collapsed[2] {
		t.Errorf("collapse: cycle members on levels %d and %d", collapsed[1], collapsed[2])
	}
	if collapsed[1] != 2 || collapsed[3] != 1 {
		t.Errorf("collapse: %v", collapsed)
	}

	pos := Hierarchical[int](v, HierarchicalOptions{Cycles: Collapse})
	if pos[1].Y != pos[2].Y || pos[1].X == pos[2].X {
		t.Errorf("collapse: cycle members at %v and %v", pos[1], pos[2])
	}
}

func TestSelfLoop(t *testing.T) {
	v := static([]int{7}, [2]int{7, 7})
	for _, policy := range []CyclePolicy{Truncate, Collapse} {
		if got := Levels[int](v, policy)[7]; got != 1 {
			t.Errorf("policy %v: level = %d, want 1", policy, got)
		}
	}
}

func TestUnknownEdgeEndpointsIgnored(t *testing.T) {
	v := static([]int{1}, [2]int{1, 99})
	pos := Hierarchical[int](v, HierarchicalOptions{})
	if len(pos) != 1 {
		t.Fatalf("got %d positions, want 1", len(pos))
	}
	if pos[1].Y != DefaultLevelHeight {
		t.Errorf("y = %v, want %d", pos[1].Y, DefaultLevelHeight)
	}
}

func TestCircular(t *testing.T) {
	v := static([]int{10, 20, 30, 40})
	pos := Circular[int](v, CircularOptions{})

	want := map[int]Point{
		10: {X: 200, Y: 0},
		20: {X: 0, Y: 200},
		30: {X: -200, Y: 0},
		40: {X: 0, Y: -200},
	}
	for k, w := range want {
		p := pos[k]
		if !near(p.X, w.X) || !near(p.Y, w.Y) {
			t.Errorf("node %d at %v, want %v", k, p, w)
		}
	}

	shifted := Circular[int](v, CircularOptions{Radius: 10, Center: Point{X: 5, Y: 5}})
	for k, p := range shifted {
		if d := math.Hypot(p.X-5, p.Y-5); !near(d, 10) {
			t.Errorf("node %d at distance %v, want 10", k, d)
		}
	}
}

func TestForceDirectedBoundedSteps(t *testing.T) {
	v := static([]int{1, 2, 3, 4}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 1})
	steps := 0
	pos := ForceDirected[int](v, ForceOptions{
		Trace: func(_ int, step float64) {
			steps++
			if step > DefaultMaxDisplacement+1e-9 {
				t.Errorf("step %v exceeds bound", step)
			}
		},
	}, nil)
	if len(pos) != 4 {
		t.Fatalf("got %d positions, want 4", len(pos))
	}
	if steps != 4*DefaultIterations {
		t.Errorf("traced %d steps, want %d", steps, 4*DefaultIterations)
	}
	for k, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Errorf("node %d at %v", k, p)
		}
	}
}

func TestForceDirectedRepulsionStep(t *testing.T) {
	tests := []struct {
		name string
		gap  float64
		want float64
	}{
		{"far", 1000, DefaultRepulsion / 1000.0},
		{"near clamps", 100, DefaultMaxDisplacement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := static([]int{1, 2})
			initial := Positions[int]{1: {X: 0}, 2: {X: tt.gap}}
			var steps []float64
			pos := ForceDirected[int](v, ForceOptions{
				Iterations: 1,
				Trace:      func(_ int, step float64) { steps = append(steps, step) },
			}, initial)
			if len(steps) != 2 {
				t.Fatalf("traced %d steps, want 2", len(steps))
			}
			for i, s := range steps {
				if !near(s, tt.want) {
					t.Errorf("step %d = %v, want %v", i, s, tt.want)
				}
			}
			if !near(pos[1].X, -tt.want) || !near(pos[2].X, tt.gap+tt.want) {
				t.Errorf("got %v, want nodes pushed apart by %v", pos, tt.want)
			}
		})
	}
}

func TestForceDirectedDeterministic(t *testing.T) {
	v := static([]int{1, 2, 3}, [2]int{1, 2}, [2]int{2, 3})
	a := ForceDirected[int](v, ForceOptions{Seed: 42}, nil)
	b := ForceDirected[int](v, ForceOptions{Seed: 42}, nil)
	for k := range a {
		if a[k] != b[k] {
			t.Errorf("node %d: %v != %v", k, a[k], b[k])
		}
	}
}

func TestForceDirectedCoincidentStart(t *testing.T) {
	v := static([]int{1, 2})
	initial := Positions[int]{1: {}, 2: {}}
	pos := ForceDirected[int](v, ForceOptions{Iterations: 1}, initial)
	// Zero distance gives zero direction, so neither node moves.
	if pos[1] != (Point{}) || pos[2] != (Point{}) {
		t.Errorf("got %v", pos)
	}
}

func TestComputeAndParseAlgorithm(t *testing.T) {
	v := static([]int{1, 2}, [2]int{1, 2})
	for _, a := range Algorithms {
		pos, err := Compute[int](v, Options{Algorithm: a})
		if err != nil {
			t.Fatalf("%s: %v", a, err)
		}
		if len(pos) != 2 {
			t.Errorf("%s: got %d positions", a, len(pos))
		}
	}

	if _, err := Compute[int](v, Options{Algorithm: "spiral"}); !flerrors.Is(err, flerrors.ErrCodeInvalidAlgorithm) {
		t.Errorf("Compute(spiral) error = %v", err)
	}

	if a, err := ParseAlgorithm(""); err != nil || a != AlgorithmHierarchical {
		t.Errorf("ParseAlgorithm(\"\") = %q, %v", a, err)
	}
	if _, err := ParseAlgorithm("spiral"); err == nil {
		t.Error("ParseAlgorithm(spiral) succeeded")
	}
}

func TestBoundsAndCurveControl(t *testing.T) {
	lo, hi := Bounds(Positions[string]{"a": {X: -1, Y: 4}, "b": {X: 3, Y: -2}})
	if lo != (Point{X: -1, Y: -2}) || hi != (Point{X: 3, Y: 4}) {
		t.Errorf("Bounds = %v, %v", lo, hi)
	}
	if c := CurveControl(Point{}, Point{X: 4}); c != (Point{X: 2, Y: -1}) {
		t.Errorf("CurveControl = %v", c)
	}
}

func TestAdapters(t *testing.T) {
	g := cfg.New()
	g.AddEdge(0, 1)
	g.AddExceptionEdge(1, 2)
	pos := Hierarchical(CFG(g), HierarchicalOptions{})
	if pos[0].Y != 3*DefaultLevelHeight || pos[2].Y != DefaultLevelHeight {
		t.Errorf("cfg positions %v", pos)
	}

	calls := callgraph.FromCalls([]callgraph.Call{{Caller: "main", Callee: "run"}, {Caller: "run", Callee: "step"}})
	cp := Hierarchical(Calls(calls), HierarchicalOptions{})
	if len(cp) != 3 || cp["main"].Y <= cp["step"].Y {
		t.Errorf("call positions %v", cp)
	}
}
