package graph

import (
	"errors"
	"strings"

	"github.com/mmlkg/mizgra/pkg/category"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty or is a reference alias.
	ErrInvalidNodeID = errors.New("node ID must not be empty or a reference")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Kind classifies a node by the source that produced it.
type Kind string

const (
	KindArticle     Kind = "article"
	KindConstruct   Kind = "construct"
	KindCSVEntity   Kind = "csv-entity"
	KindRDFResource Kind = "rdf-resource"
	KindMetadata    Kind = "metadata"
)

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value string
}

// Attributes is an ordered attribute list. Keys are unique.
type Attributes []Attr

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	for _, kv := range a {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Add appends key=value unless key is already present. It reports whether
// the value was stored.
func (a *Attributes) Add(key, value string) bool {
	if _, ok := a.Get(key); ok {
		return false
	}
	*a = append(*a, Attr{Key: key, Value: value})
	return true
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// Equal reports whether a and b hold the same pairs in the same order.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Node is a vertex of the property graph.
type Node struct {
	ID       string
	Kind     Kind
	Label    string
	Attrs    Attributes
	Category category.Category

	// Weak nodes are dropped unless an edge keeps them alive.
	Weak bool
}

// Edge is a directed, labelled relation. Source and Target are node ids, or
// reference aliases while the edge is still inside the assembler.
type Edge struct {
	Source   string
	Target   string
	Label    string
	Attrs    Attributes
	Category category.Category
}

// key identifies an edge for duplicate detection.
func (e Edge) key() edgeKey {
	return edgeKey{e.Source, e.Target, e.Category, e.Label}
}

type edgeKey struct {
	source, target string
	cat            category.Category
	label          string
}

// Alias binds a reference key to a node. Several aliases may share a key;
// an edge endpoint naming the key then fans out to every bound node.
type Alias struct {
	Ref      string
	Node     string
	Category category.Category
}

// refPrefix marks reference aliases in edge endpoints.
const refPrefix = "@"

// Ref builds a reference alias from a namespace and a key.
func Ref(namespace, key string) string {
	return refPrefix + namespace + ":" + key
}

// IsRef reports whether id is a reference alias rather than a node id.
func IsRef(id string) bool {
	return strings.HasPrefix(id, refPrefix)
}

// Item is the tagged variant produced by normalizers. Exactly one field is set.
type Item struct {
	Node  *Node
	Edge  *Edge
	Alias *Alias
}

// NodeItem wraps n as an Item.
func NodeItem(n Node) Item { return Item{Node: &n} }

// EdgeItem wraps e as an Item.
func EdgeItem(e Edge) Item { return Item{Edge: &e} }

// AliasItem wraps a as an Item.
func AliasItem(a Alias) Item { return Item{Alias: &a} }

// Category returns the category of the wrapped element.
func (it Item) Category() category.Category {
	switch {
	case it.Node != nil:
		return it.Node.Category
	case it.Edge != nil:
		return it.Edge.Category
	case it.Alias != nil:
		return it.Alias.Category
	}
	return ""
}

// Graph is an assembled property graph. Nodes and edges keep insertion order.
// The zero value is not usable; use [New].
type Graph struct {
	nodes []Node
	index map[string]int
	edges []Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode appends n. The id must be non-empty and unique.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" || IsRef(n.ID) {
		return ErrInvalidNodeID
	}
	if _, ok := g.index[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return nil
}

// AddEdge appends e. Both endpoints must already exist.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.index[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.index[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edges in insertion order. The slice must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
