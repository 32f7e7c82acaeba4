package graph_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/flowlens/pkg/cfg"
	"github.com/matzehuels/flowlens/pkg/graph"
)

func ExampleWriteCFG() {
	g := cfg.New()
	g.AddLabeledNode(0, "entry")
	g.AddStatement(0, "return")
	g.AddEdge(0, 1)

	_ = graph.WriteCFG(os.Stdout, g, graph.Aux{})
	// Output:
	// {
	//   "nodes": {
	//     "0": {
	//       "id": 0,
	//       "label": "entry",
	//       "functionName": "",
	//       "statements": [
	//         "return"
	//       ],
	//       "isTryBlock": false,
	//       "isThrowingException": false
	//     },
	//     "1": {
	//       "id": 1,
	//       "label": "Block 1",
	//       "functionName": "",
	//       "statements": [],
	//       "isTryBlock": false,
	//       "isThrowingException": false
	//     }
	//   },
	//   "edges": [
	//     {
	//       "source": 0,
	//       "target": 1,
	//       "isExceptionEdge": false
	//     }
	//   ],
	//   "ast": null,
	//   "functionCalls": null
	// }
}

func ExampleReadCFG() {
	input := `{"nodes": [{"id": 2, "label": "loop"}], "edges": [{"source": 2, "target": 2}]}`

	g, doc, err := graph.ReadCFG(strings.NewReader(input))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(g.Label(2), g.Successors(2), doc.Skipped)
	// Output: loop [2] 0
}
