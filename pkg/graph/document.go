package graph

import (
	"bytes"
	"cmp"
	"encoding/json"
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/flowlens/pkg/cfg"
	flerrors "github.com/matzehuels/flowlens/pkg/errors"
)

// Top-level keys the codec interprets. Anything else lands in Document.Extra.
const (
	keyNodes         = "nodes"
	keyEdges         = "edges"
	keyAST           = "ast"
	keyFunctionCalls = "functionCalls"
)

// =============================================================================
// Document - CFG Serialization
// =============================================================================

// Document is the JSON form of a control-flow graph.
//
// Nodes are written as an object keyed by decimal id, in ascending id order.
// AST and FunctionCalls are carried verbatim; the codec never looks inside
// them. Unknown top-level fields survive a decode/encode cycle through Extra.
type Document struct {
	Nodes         []Node
	Edges         []Edge
	AST           json.RawMessage
	FunctionCalls json.RawMessage
	Extra         map[string]json.RawMessage

	// Skipped counts node and edge entries dropped while decoding because they
	// were malformed. It is never written.
	Skipped int
}

// Node is one basic block.
type Node struct {
	ID                  int      `json:"id"`
	Label               string   `json:"label"`
	FunctionName        string   `json:"functionName"`
	Statements          []string `json:"statements"`
	IsTryBlock          bool     `json:"isTryBlock"`
	IsThrowingException bool     `json:"isThrowingException"`
}

// Edge is one successor edge.
type Edge struct {
	Source          int  `json:"source"`
	Target          int  `json:"target"`
	IsExceptionEdge bool `json:"isExceptionEdge"`
}

// Aux holds the opaque companions of a CFG document.
type Aux struct {
	AST           json.RawMessage
	FunctionCalls json.RawMessage
}

// FromCFG converts g to its serialized form. Labels are resolved, so blocks
// without one carry the "Block <id>" placeholder.
func FromCFG(g *cfg.Graph, aux Aux) Document {
	doc := Document{
		Nodes:         make([]Node, 0, g.NodeCount()),
		AST:           aux.AST,
		FunctionCalls: aux.FunctionCalls,
	}
	for _, n := range g.Nodes() {
		stmts := n.Statements
		if stmts == nil {
			stmts = []string{}
		}
		doc.Nodes = append(doc.Nodes, Node{
			ID:                  n.ID,
			Label:               g.Label(n.ID),
			FunctionName:        n.FunctionName,
			Statements:          stmts,
			IsTryBlock:          g.IsTryBlock(n.ID),
			IsThrowingException: g.IsThrowing(n.ID),
		})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, Edge{Source: e.From, Target: e.To, IsExceptionEdge: e.Exception})
	}
	return doc
}

// ToCFG rebuilds a graph from doc. Edges may reference nodes that have no
// entry; those nodes are created with defaults. A document with neither nodes
// nor edges is a NO_DATA error.
func ToCFG(doc Document) (*cfg.Graph, error) {
	if len(doc.Nodes) == 0 && len(doc.Edges) == 0 {
		return nil, flerrors.New(flerrors.ErrCodeNoData, "document has no nodes")
	}

	g := cfg.New()
	for _, n := range doc.Nodes {
		label := n.Label
		if label == cfg.DefaultLabel(n.ID) {
			label = ""
		}
		g.AddLabeledNode(n.ID, label)
		if n.FunctionName != "" {
			g.SetFunctionName(n.ID, n.FunctionName)
		}
		for _, s := range n.Statements {
			g.AddStatement(n.ID, s)
		}
		if n.IsTryBlock {
			g.MarkTryBlock(n.ID)
		}
		if n.IsThrowingException {
			g.MarkThrowing(n.ID)
		}
	}
	for _, e := range doc.Edges {
		if e.IsExceptionEdge {
			g.AddExceptionEdge(e.Source, e.Target)
		} else {
			g.AddEdge(e.Source, e.Target)
		}
	}
	return g, nil
}

// MergeDocuments combines several documents into one graph. Each document is
// renumbered past the ids already merged. The aux fields of the first document
// that has them are kept.
func MergeDocuments(docs ...Document) (Document, error) {
	merged := cfg.New()
	var aux Aux
	for _, d := range docs {
		g, err := ToCFG(d)
		if flerrors.IsNoData(err) {
			continue
		}
		if err != nil {
			return Document{}, err
		}
		merged.Merge(g)
		if aux.AST == nil && !isNull(d.AST) {
			aux.AST = d.AST
		}
		if aux.FunctionCalls == nil && !isNull(d.FunctionCalls) {
			aux.FunctionCalls = d.FunctionCalls
		}
	}
	if merged.NodeCount() == 0 {
		return Document{}, flerrors.New(flerrors.ErrCodeNoData, "no documents with nodes to merge")
	}
	return FromCFG(merged, aux), nil
}

// =============================================================================
// JSON
// =============================================================================

// MarshalJSON writes nodes as an id-keyed object in numeric order followed by
// edges, the aux fields and any extra fields in key order.
func (d Document) MarshalJSON() ([]byte, error) {
	nodes := slices.Clone(d.Nodes)
	slices.SortStableFunc(nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })

	var buf bytes.Buffer
	buf.WriteString(`{"nodes":{`)
	for i, n := range nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if n.Statements == nil {
			n.Statements = []string{}
		}
		data, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(n.ID)))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteString(`},"edges":`)

	edges := d.Edges
	if edges == nil {
		edges = []Edge{}
	}
	data, err := json.Marshal(edges)
	if err != nil {
		return nil, err
	}
	buf.Write(data)

	writeRaw(&buf, keyAST, d.AST)
	writeRaw(&buf, keyFunctionCalls, d.FunctionCalls)
	for _, k := range slices.Sorted(maps.Keys(d.Extra)) {
		writeRaw(&buf, k, d.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeRaw(buf *bytes.Buffer, key string, raw json.RawMessage) {
	buf.WriteByte(',')
	buf.WriteString(strconv.Quote(key))
	buf.WriteByte(':')
	if len(bytes.TrimSpace(raw)) == 0 {
		buf.WriteString("null")
		return
	}
	buf.Write(raw)
}

// wireNode distinguishes a missing id from id 0.
type wireNode struct {
	ID                  *int     `json:"id"`
	Label               string   `json:"label"`
	FunctionName        string   `json:"functionName"`
	Statements          []string `json:"statements"`
	IsTryBlock          bool     `json:"isTryBlock"`
	IsThrowingException bool     `json:"isThrowingException"`
}

type wireEdge struct {
	Source          *int `json:"source"`
	Target          *int `json:"target"`
	IsExceptionEdge bool `json:"isExceptionEdge"`
}

// UnmarshalJSON accepts nodes as an id-keyed object or as an array. Entries
// that do not decode, or that carry no usable id, are skipped and counted in
// Skipped. Only a top level that is not a JSON object is an error.
func (d *Document) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return flerrors.Wrap(flerrors.ErrCodeInvalidFormat, err, "decode document")
	}

	*d = Document{}
	for k, raw := range top {
		switch k {
		case keyNodes:
			d.decodeNodes(raw)
		case keyEdges:
			d.decodeEdges(raw)
		case keyAST:
			d.AST = raw
		case keyFunctionCalls:
			d.FunctionCalls = raw
		default:
			if d.Extra == nil {
				d.Extra = make(map[string]json.RawMessage)
			}
			d.Extra[k] = raw
		}
	}
	slices.SortStableFunc(d.Nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })
	return nil
}

func (d *Document) decodeNodes(raw json.RawMessage) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return
	}

	if raw[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			d.Skipped++
			return
		}
		for _, e := range entries {
			d.addNode("", e)
		}
		return
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		d.Skipped++
		return
	}
	keys := slices.Collect(maps.Keys(entries))
	slices.Sort(keys)
	for _, k := range keys {
		d.addNode(k, entries[k])
	}
}

// addNode decodes one node entry. key is the object key, used when the entry
// itself has no id.
func (d *Document) addNode(key string, raw json.RawMessage) {
	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		d.Skipped++
		return
	}
	if w.ID == nil {
		id, err := strconv.Atoi(key)
		if err != nil {
			d.Skipped++
			return
		}
		w.ID = &id
	}
	d.Nodes = append(d.Nodes, Node{
		ID:                  *w.ID,
		Label:               w.Label,
		FunctionName:        w.FunctionName,
		Statements:          w.Statements,
		IsTryBlock:          w.IsTryBlock,
		IsThrowingException: w.IsThrowingException,
	})
}

func (d *Document) decodeEdges(raw json.RawMessage) {
	if isNull(raw) {
		return
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		d.Skipped++
		return
	}
	for _, e := range entries {
		var w wireEdge
		if err := json.Unmarshal(e, &w); err != nil || w.Source == nil || w.Target == nil {
			d.Skipped++
			continue
		}
		d.Edges = append(d.Edges, Edge{Source: *w.Source, Target: *w.Target, IsExceptionEdge: w.IsExceptionEdge})
	}
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
