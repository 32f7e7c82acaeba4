// Package graph provides the JSON wire formats for control-flow graphs, call
// graphs and computed layouts.
//
// The package sits at the serialization boundary: [cfg.Graph],
// [callgraph.Graph] and [layout.Positions] are the in-memory forms, the types
// here are what lands in files, HTTP responses and the layout cache.
//
// # CFG Documents
//
// A [Document] carries the graph plus two opaque companions, the AST summary
// and the call list, which the codec passes through untouched:
//
//	{
//	  "nodes": {
//	    "0": {"id": 0, "label": "entry", "functionName": "main",
//	          "statements": ["x := 1"], "isTryBlock": false,
//	          "isThrowingException": false}
//	  },
//	  "edges": [{"source": 0, "target": 1, "isExceptionEdge": false}],
//	  "ast": {...},
//	  "functionCalls": [...]
//	}
//
// Decoding also accepts "nodes" as an array. Malformed node or edge entries
// are skipped and counted in [Document.Skipped]; unknown top-level keys are
// kept in [Document.Extra] and written back out.
//
//	g, doc, err := graph.ReadCFGFile("cfg.json")
//	err = graph.WriteCFGFile("out.json", g, graph.Aux{AST: doc.AST})
//
// # Call Graphs
//
// [CallGraph] is the flat export used by the dependency view:
//
//	{"filename": "main.go", "timestamp": "2024-05-01 12:00:00",
//	 "functions": [{"name": "main", "calls": ["run"]}]}
//
// # Layouts
//
// [Layout] holds placed nodes and edges for either kind of graph, as produced
// by [LayoutFromCFG] and [LayoutFromCalls].
//
// # Errors
//
// File and decode failures carry codes from pkg/errors: FILE_NOT_FOUND,
// IO_ERROR, INVALID_FORMAT, and NO_DATA for a document with nothing in it.
package graph
