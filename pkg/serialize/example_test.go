package serialize_test

import (
	"os"

	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/serialize"
)

func ExampleYARSPG() {
	g := graph.New()
	g.AddNode(graph.Node{ID: "xboole_0", Kind: graph.KindArticle, Label: "Article",
		Attrs: graph.Attributes{{Key: "name", Value: "xboole_0"}}})
	g.AddNode(graph.Node{ID: "xboole_0Nx1", Kind: graph.KindConstruct, Label: "Text-Proper"})
	g.AddEdge(graph.Edge{Source: "xboole_0Nx1", Target: "xboole_0", Label: "MEMBER"})

	s, _ := serialize.New(serialize.FormatYARSPG)
	s.Serialize(os.Stdout, g)
	// Output:
	// # begin file
	// # START OF xboole_0
	// (xboole_0 {"Article"}["name": "xboole_0"])
	// (xboole_0Nx1 {"Text-Proper"})
	// (xboole_0Nx1)-({"MEMBER"})->(xboole_0)
	// # end file
}
