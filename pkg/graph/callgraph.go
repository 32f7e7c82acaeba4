package graph

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/flowlens/pkg/callgraph"
	flerrors "github.com/matzehuels/flowlens/pkg/errors"
)

// TimestampLayout is the layout of CallGraph.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// CallGraph is the flat JSON export of a call-dependency graph.
type CallGraph struct {
	Filename  string     `json:"filename"`
	Timestamp string     `json:"timestamp"`
	Functions []Function `json:"functions"`
}

// Function lists the direct callees of one caller.
type Function struct {
	Name  string   `json:"name"`
	Calls []string `json:"calls"`
}

// FromCallGraph exports every caller of g in sorted order. Functions that
// only ever appear as callees are not listed.
func FromCallGraph(g *callgraph.Graph, filename string, at time.Time) CallGraph {
	out := CallGraph{
		Filename:  filename,
		Timestamp: at.Format(TimestampLayout),
		Functions: []Function{},
	}
	for _, caller := range g.Callers() {
		calls := g.Callees(caller)
		if calls == nil {
			calls = []string{}
		}
		out.Functions = append(out.Functions, Function{Name: caller, Calls: calls})
	}
	return out
}

// ToCallGraph rebuilds the dependency map. Entries without a name are ignored.
func ToCallGraph(cg CallGraph) *callgraph.Graph {
	g := callgraph.New()
	for _, fn := range cg.Functions {
		if fn.Name == "" {
			continue
		}
		g.AddFunction(fn.Name)
		for _, callee := range fn.Calls {
			g.Record(fn.Name, callee)
		}
	}
	return g
}

// Time parses the timestamp in the local time zone.
func (cg CallGraph) Time() (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, cg.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, flerrors.Wrap(flerrors.ErrCodeInvalidFormat, err, "timestamp %q", cg.Timestamp)
	}
	return t, nil
}

// WriteCallGraphFile writes cg as indented JSON to path.
func WriteCallGraphFile(path string, cg CallGraph) error {
	return writeFile(path, cg)
}

// ReadCallGraphFile reads a call-graph export.
func ReadCallGraphFile(path string) (CallGraph, error) {
	f, err := openFile(path)
	if err != nil {
		return CallGraph{}, err
	}
	defer f.Close()

	var cg CallGraph
	if err := json.NewDecoder(f).Decode(&cg); err != nil {
		return CallGraph{}, flerrors.Wrap(flerrors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return cg, nil
}
