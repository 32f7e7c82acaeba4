package callgraph

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Call is one observed call site.
type Call struct {
	Caller string // enclosing function
	Callee string // direct call target
}

// Graph maps callers to their distinct callees.
// The zero value is not usable; use [New].
type Graph struct {
	deps map[string]map[string]struct{}
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{deps: make(map[string]map[string]struct{})}
}

// FromCalls builds a graph from a slice of call observations.
func FromCalls(calls []Call) *Graph {
	var b Builder
	b.Collect(slices.Values(calls))
	return b.Graph()
}

// Builder accumulates call observations as a front end reports them.
// The zero value is ready to use. It is not safe for concurrent use.
type Builder struct {
	g        *Graph
	observed int
}

// Observe records one call site. Calls with an empty caller or callee are
// counted but add nothing.
func (b *Builder) Observe(c Call) {
	if b.g == nil {
		b.g = New()
	}
	b.observed++
	b.g.Record(c.Caller, c.Callee)
}

// Collect observes every call of seq.
func (b *Builder) Collect(seq iter.Seq[Call]) {
	for c := range seq {
		b.Observe(c)
	}
}

// Observed returns the number of call sites seen, duplicates included.
func (b *Builder) Observed() int { return b.observed }

// Graph returns the graph built so far. Later observations keep adding to
// the same graph.
func (b *Builder) Graph() *Graph {
	if b.g == nil {
		b.g = New()
	}
	return b.g
}

// AddFunction registers name as a caller even if it makes no calls.
func (g *Graph) AddFunction(name string) {
	if name == "" {
		return
	}
	if _, ok := g.deps[name]; !ok {
		g.deps[name] = make(map[string]struct{})
	}
}

// Record adds the dependency caller → callee. Recording the same pair again
// has no effect. Empty names are ignored.
func (g *Graph) Record(caller, callee string) {
	if caller == "" || callee == "" {
		return
	}
	g.AddFunction(caller)
	g.deps[caller][callee] = struct{}{}
}

// Merge records every dependency of other in g.
func (g *Graph) Merge(other *Graph) {
	for caller, callees := range other.deps {
		g.AddFunction(caller)
		for callee := range callees {
			g.deps[caller][callee] = struct{}{}
		}
	}
}

// Calls reports whether caller directly calls callee.
func (g *Graph) Calls(caller, callee string) bool {
	_, ok := g.deps[caller][callee]
	return ok
}

// Callees returns the sorted callees of caller.
func (g *Graph) Callees(caller string) []string {
	return slices.Sorted(maps.Keys(g.deps[caller]))
}

// Callers returns every function that was registered as a caller, sorted.
func (g *Graph) Callers() []string {
	return slices.Sorted(maps.Keys(g.deps))
}

// Functions returns every function that appears as caller or callee, sorted.
func (g *Graph) Functions() []string {
	seen := make(map[string]struct{}, len(g.deps))
	for caller, callees := range g.deps {
		seen[caller] = struct{}{}
		for callee := range callees {
			seen[callee] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Len returns the number of callers.
func (g *Graph) Len() int { return len(g.deps) }

// EdgeCount returns the number of distinct caller → callee pairs.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, callees := range g.deps {
		n += len(callees)
	}
	return n
}

// Report writes the plain-text dependency report:
//
//	Function Dependencies:
//	main calls:
//	  - helper
//
// Callers without callees are omitted.
func (g *Graph) Report(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("Function Dependencies:\n")
	for _, caller := range g.Callers() {
		callees := g.Callees(caller)
		if len(callees) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "%s calls:\n", caller)
		for _, callee := range callees {
			fmt.Fprintf(&buf, "  - %s\n", callee)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ReportString returns the report as a string.
func (g *Graph) ReportString() string {
	var sb strings.Builder
	_ = g.Report(&sb)
	return sb.String()
}

// ToDOT returns a left-to-right Graphviz document of the dependencies.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph FunctionDependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=rectangle, style=filled, fillcolor=lightblue];\n")
	for _, fn := range g.Functions() {
		fmt.Fprintf(&buf, "  %q;\n", fn)
	}
	for _, caller := range g.Callers() {
		for _, callee := range g.Callees(caller) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", caller, callee)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}
