package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg"
	flerrors "github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/layout"
)

// Layout kinds.
const (
	KindCFG   = "cfg"
	KindCalls = "calls"
)

// =============================================================================
// Layout - Positioned Graph
// =============================================================================

// Layout is the serialized result of a layout pass: every node with its
// position plus the edges to draw between them.
//
// Origin and Width/Height describe the bounding box of the node centers.
// Renderers add their own margins.
type Layout struct {
	Kind      string       `json:"kind"`
	Algorithm string       `json:"algorithm"`
	Origin    layout.Point `json:"origin"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Nodes     []PlacedNode `json:"nodes"`
	Edges     []PlacedEdge `json:"edges"`
}

// PlacedNode is a node with its center position. IDs are strings so CFG and
// call layouts share the type; CFG ids are decimal.
type PlacedNode struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Try      bool    `json:"try,omitempty"`
	Throwing bool    `json:"throwing,omitempty"`
}

// PlacedEdge connects two placed nodes.
type PlacedEdge struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Exception bool   `json:"exception,omitempty"`
}

// IsCFG reports whether the layout was computed for a control-flow graph.
func (l *Layout) IsCFG() bool { return l.Kind == KindCFG }

// IsCalls reports whether the layout was computed for a call graph.
func (l *Layout) IsCalls() bool { return l.Kind == KindCalls }

// Node returns the placed node with the given id.
func (l *Layout) Node(id string) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// LayoutFromCFG combines g with positions computed for [layout.CFG].
func LayoutFromCFG(g *cfg.Graph, algo layout.Algorithm, pos layout.Positions[int]) Layout {
	l := Layout{Kind: KindCFG, Algorithm: string(algo)}
	for _, id := range g.IDs() {
		p := pos[id]
		l.Nodes = append(l.Nodes, PlacedNode{
			ID:       strconv.Itoa(id),
			Label:    g.Label(id),
			X:        p.X,
			Y:        p.Y,
			Try:      g.IsTryBlock(id),
			Throwing: g.IsThrowing(id),
		})
	}
	for _, e := range g.Edges() {
		l.Edges = append(l.Edges, PlacedEdge{
			From:      strconv.Itoa(e.From),
			To:        strconv.Itoa(e.To),
			Exception: e.Exception,
		})
	}
	setBounds(&l, pos)
	return l
}

// LayoutFromCalls combines g with positions computed for [layout.Calls].
func LayoutFromCalls(g *callgraph.Graph, algo layout.Algorithm, pos layout.Positions[string]) Layout {
	l := Layout{Kind: KindCalls, Algorithm: string(algo)}
	for _, fn := range g.Functions() {
		p := pos[fn]
		l.Nodes = append(l.Nodes, PlacedNode{ID: fn, Label: fn, X: p.X, Y: p.Y})
	}
	for _, caller := range g.Callers() {
		for _, callee := range g.Callees(caller) {
			l.Edges = append(l.Edges, PlacedEdge{From: caller, To: callee})
		}
	}
	setBounds(&l, pos)
	return l
}

func setBounds[K comparable](l *Layout, pos layout.Positions[K]) {
	lo, hi := layout.Bounds(pos)
	l.Origin = lo
	l.Width = hi.X - lo.X
	l.Height = hi.Y - lo.Y
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a Layout and checks that it names a known kind and
// that every edge refers to a placed node.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, flerrors.Wrap(flerrors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if !l.IsCFG() && !l.IsCalls() {
		return Layout{}, flerrors.New(flerrors.ErrCodeInvalidFormat, "unknown layout kind %q", l.Kind)
	}
	ids := make(map[string]struct{}, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = struct{}{}
	}
	for _, e := range l.Edges {
		if _, ok := ids[e.From]; !ok {
			return Layout{}, flerrors.New(flerrors.ErrCodeInvalidFormat, "edge %s -> %s: %s", e.From, e.To, missing(e.From))
		}
		if _, ok := ids[e.To]; !ok {
			return Layout{}, flerrors.New(flerrors.ErrCodeInvalidFormat, "edge %s -> %s: %s", e.From, e.To, missing(e.To))
		}
	}
	return l, nil
}

func missing(id string) string { return fmt.Sprintf("node %q is not placed", id) }

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return flerrors.Wrap(flerrors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, flerrors.Wrap(flerrors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Layout{}, flerrors.Wrap(flerrors.ErrCodeIO, err, "read %s", path)
	}
	return UnmarshalLayout(data)
}
