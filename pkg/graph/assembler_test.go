package graph

import (
	"slices"
	"testing"

	"github.com/mmlkg/mizgra/pkg/category"
)

func construct(id string, attrs ...Attr) Node {
	return Node{ID: id, Kind: KindConstruct, Label: "Item", Attrs: attrs, Category: category.Nodes}
}

func member(src, dst string) Edge {
	return Edge{Source: src, Target: dst, Label: "MEMBER", Category: category.MemberRelations}
}

func nodeIDs(g *Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func edgePairs(g *Graph) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, e.Source+"-"+e.Label+"->"+e.Target)
	}
	return out
}

func TestAssemblerFirstWriterWins(t *testing.T) {
	a := NewAssembler(nil)
	a.AddNode(construct("n1", Attr{"a", "1"}, Attr{"b", "2"}))
	a.AddNode(construct("n1", Attr{"b", "changed"}, Attr{"c", "3"}))

	g, r := a.Finish()
	n, ok := g.Node("n1")
	if !ok {
		t.Fatal("node n1 missing")
	}
	want := Attributes{{"a", "1"}, {"b", "2"}, {"c", "3"}}
	if !n.Attrs.Equal(want) {
		t.Errorf("Attrs = %v, want %v", n.Attrs, want)
	}
	if r.AttributeConflicts != 1 {
		t.Errorf("AttributeConflicts = %d, want 1", r.AttributeConflicts)
	}
	if r.MergedNodes != 1 {
		t.Errorf("MergedNodes = %d, want 1", r.MergedNodes)
	}
}

func TestAssemblerKindCollision(t *testing.T) {
	a := NewAssembler(nil)
	a.AddNode(construct("x"))
	a.AddNode(Node{ID: "x", Kind: KindMetadata, Label: "Other", Category: category.Metadata})

	g, r := a.Finish()
	n, _ := g.Node("x")
	if n.Kind != KindConstruct || n.Label != "Item" {
		t.Errorf("node = %+v, want first kind and label kept", n)
	}
	if r.KindCollisions != 1 {
		t.Errorf("KindCollisions = %d, want 1", r.KindCollisions)
	}
}

func TestAssemblerWeakNodes(t *testing.T) {
	a := NewAssembler(nil)
	a.AddNode(Node{ID: "w1", Kind: KindCSVEntity, Label: "Entity", Weak: true, Category: category.CSVRelations,
		Attrs: Attributes{{Key: "stub", Value: "1"}}})
	a.AddNode(Node{ID: "w2", Kind: KindCSVEntity, Label: "Entity", Weak: true, Category: category.CSVRelations})
	a.AddNode(construct("w1"))
	a.AddNode(construct("c"))
	a.AddNode(Node{ID: "c", Kind: KindCSVEntity, Weak: true, Attrs: Attributes{{Key: "stub", Value: "1"}}})
	a.AddEdge(Edge{Source: "c", Target: "w1", Label: "uses", Category: category.CSVRelations})

	g, r := a.Finish()
	if got := nodeIDs(g); !slices.Equal(got, []string{"w1", "c"}) {
		t.Errorf("nodes = %v, want [w1 c]", got)
	}
	n, _ := g.Node("w1")
	if n.Weak || n.Kind != KindConstruct || n.Category != category.Nodes {
		t.Errorf("w1 = %+v, want regular node to take over the weak one", n)
	}
	if _, ok := n.Attrs.Get("stub"); ok {
		t.Errorf("w1 attrs = %v, stub attributes must not survive a takeover", n.Attrs)
	}
	if c, _ := g.Node("c"); len(c.Attrs) != 0 {
		t.Errorf("c attrs = %v, a late stub must not add attributes", c.Attrs)
	}
	if r.KindCollisions != 0 {
		t.Errorf("KindCollisions = %d, weak takeover must not count", r.KindCollisions)
	}
	if r.WeakDropped != 1 {
		t.Errorf("WeakDropped = %d, want 1", r.WeakDropped)
	}
}

func TestAssemblerLateNodeSatisfiesEdge(t *testing.T) {
	a := NewAssembler(nil)
	a.AddEdge(member("a", "b"))
	a.AddNode(construct("a"))
	a.AddNode(construct("b"))

	g, r := a.Finish()
	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if r.DanglingEdges != 0 {
		t.Errorf("DanglingEdges = %d, want 0", r.DanglingEdges)
	}
}

func TestAssemblerDanglingEdges(t *testing.T) {
	a := NewAssembler(nil)
	a.AddNode(construct("a"))
	a.AddEdge(member("a", "missing"))
	a.AddEdge(member("missing", "a"))

	g, r := a.Finish()
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
	}
	if r.DanglingEdges != 2 {
		t.Errorf("DanglingEdges = %d, want 2", r.DanglingEdges)
	}
	for _, e := range g.Edges() {
		if _, ok := g.Node(e.Source); !ok {
			t.Errorf("edge source %s missing", e.Source)
		}
	}
}

func TestAssemblerDuplicateEdges(t *testing.T) {
	a := NewAssembler(nil)
	a.AddNode(construct("a"))
	a.AddNode(construct("b"))
	a.AddEdge(Edge{Source: "a", Target: "b", Label: "RELATED", Category: category.UsagesRelations})
	a.AddEdge(Edge{Source: "a", Target: "b", Label: "RELATED", Category: category.UsagesRelations,
		Attrs: Attributes{{"lang", "en"}}})
	// Same endpoints, different relation type: not a duplicate.
	a.AddEdge(Edge{Source: "a", Target: "b", Label: "RELATED", Category: category.LocalRefRelations})

	g, r := a.Finish()
	if g.EdgeCount() != 2 {
		t.Fatalf("EdgeCount = %d, want 2", g.EdgeCount())
	}
	if r.DuplicateEdges != 1 {
		t.Errorf("DuplicateEdges = %d, want 1", r.DuplicateEdges)
	}
	if v, _ := g.Edges()[0].Attrs.Get("lang"); v != "en" {
		t.Errorf("merged edge attrs = %v, want lang=en", g.Edges()[0].Attrs)
	}
}

func TestAssemblerAliases(t *testing.T) {
	ref := Ref("notion", "group")
	a := NewAssembler(nil)
	a.AddEdge(Edge{Source: ref, Target: "r1", Label: "label", Category: category.RDFRelations})
	a.AddEdge(Edge{Source: Ref("notion", "absent"), Target: "r1", Label: "label", Category: category.RDFRelations})
	a.AddNode(Node{ID: "r1", Kind: KindRDFResource, Label: "rdfResource", Weak: true, Category: category.RDFRelations})
	a.AddNode(construct("n2"))
	a.AddNode(construct("n1"))
	a.AddAlias(Alias{Ref: ref, Node: "n2", Category: category.RDFRelations})
	a.AddAlias(Alias{Ref: ref, Node: "n1", Category: category.RDFRelations})
	a.AddAlias(Alias{Ref: ref, Node: "n2", Category: category.RDFRelations})

	g, r := a.Finish()
	want := []string{"n2-label->r1", "n1-label->r1"}
	if got := edgePairs(g); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v (registration order)", got, want)
	}
	if r.UnresolvedRefs != 1 {
		t.Errorf("UnresolvedRefs = %d, want 1", r.UnresolvedRefs)
	}
	if _, ok := g.Node("r1"); !ok {
		t.Error("weak node referenced by a resolved edge must survive")
	}
}

func TestAssemblerRejectsBadIDs(t *testing.T) {
	a := NewAssembler(nil)
	a.AddNode(Node{ID: ""})
	a.AddNode(Node{ID: Ref("notion", "x")})
	a.AddEdge(Edge{Source: "", Target: "b"})
	a.AddAlias(Alias{Ref: "plain", Node: "b"})

	g, r := a.Finish()
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("graph = %d nodes %d edges, want empty", g.NodeCount(), g.EdgeCount())
	}
	if r.Rejected != 4 {
		t.Errorf("Rejected = %d, want 4", r.Rejected)
	}
}

func TestAssemblerCountsGraphRefusals(t *testing.T) {
	a := NewAssembler(nil)
	a.AddNode(construct("a"))
	a.AddNode(construct("b"))
	a.AddEdge(Edge{Source: "a", Target: "b", Label: "MEMBER"})
	// A second entry under a stored id is refused by Graph.AddNode.
	a.nodes = append(a.nodes, &Node{ID: "a", Kind: KindConstruct, Label: "Item"})

	g, r := a.Finish()
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("graph = %d nodes %d edges, want 2 and 1", g.NodeCount(), g.EdgeCount())
	}
	if r.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", r.Rejected)
	}
}

func TestAssemblerIdempotentMerge(t *testing.T) {
	items := []Item{
		NodeItem(construct("a", Attr{"k", "v"})),
		NodeItem(construct("b")),
		EdgeItem(member("a", "b")),
		AliasItem(Alias{Ref: Ref("usage", "b"), Node: "b", Category: category.UsagesRelations}),
		EdgeItem(Edge{Source: "a", Target: Ref("usage", "b"), Label: "RELATED", Category: category.UsagesRelations}),
	}

	once := NewAssembler(nil)
	for _, it := range items {
		once.Add(it)
	}
	g1, _ := once.Finish()

	twice := NewAssembler(nil)
	for range 2 {
		for _, it := range items {
			twice.Add(it)
		}
	}
	g2, r2 := twice.Finish()

	if !slices.Equal(nodeIDs(g1), nodeIDs(g2)) {
		t.Errorf("nodes differ: %v vs %v", nodeIDs(g1), nodeIDs(g2))
	}
	if !slices.Equal(edgePairs(g1), edgePairs(g2)) {
		t.Errorf("edges differ: %v vs %v", edgePairs(g1), edgePairs(g2))
	}
	for _, n := range g2.Nodes() {
		m, _ := g1.Node(n.ID)
		if !n.Attrs.Equal(m.Attrs) {
			t.Errorf("node %s attrs = %v, want %v", n.ID, n.Attrs, m.Attrs)
		}
	}
	if r2.AttributeConflicts != 0 {
		t.Errorf("AttributeConflicts = %d, identical values must not conflict", r2.AttributeConflicts)
	}
	if r2.DuplicateEdges != 2 {
		t.Errorf("DuplicateEdges = %d, want 2", r2.DuplicateEdges)
	}
}

func TestAssemblerInputNotAliased(t *testing.T) {
	attrs := Attributes{{"k", "v"}}
	a := NewAssembler(nil)
	a.AddNode(construct("a", attrs...))
	attrs[0].Value = "mutated"

	g, _ := a.Finish()
	n, _ := g.Node("a")
	if v, _ := n.Attrs.Get("k"); v != "v" {
		t.Errorf("stored attribute = %q, assembler must copy inputs", v)
	}
}
