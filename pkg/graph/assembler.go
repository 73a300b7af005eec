package graph

import (
	"io"

	"github.com/charmbracelet/log"
)

// Report summarizes integrity findings of one assembly run.
type Report struct {
	Nodes int // nodes in the finished graph
	Edges int // edges in the finished graph

	MergedNodes        int // node additions folded into an existing id
	KindCollisions     int // merges where the kinds disagreed
	AttributeConflicts int // attribute values ignored under first-writer-wins
	DuplicateEdges     int // edges collapsed into an earlier identical edge
	DanglingEdges      int // edges pruned because an endpoint was missing
	UnresolvedRefs     int // edges dropped because a reference had no alias
	WeakDropped        int // weak nodes no surviving edge referenced
	Rejected           int // items with an empty or malformed id, or refused by the graph
}

// Warnings returns the number of findings worth surfacing to the user.
func (r Report) Warnings() int {
	return r.KindCollisions + r.DanglingEdges + r.UnresolvedRefs
}

// Assembler merges items into one graph. It is not safe for concurrent use.
// The zero value is not usable; use [NewAssembler].
type Assembler struct {
	logger *log.Logger

	nodes []*Node
	index map[string]int
	edges []Edge

	aliases   map[string][]string
	aliasSeen map[Alias]bool

	report Report
}

// NewAssembler creates an empty assembler. A nil logger discards diagnostics.
func NewAssembler(logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Assembler{
		logger:    logger,
		index:     make(map[string]int),
		aliases:   make(map[string][]string),
		aliasSeen: make(map[Alias]bool),
	}
}

// Add dispatches an item to AddNode, AddEdge or AddAlias.
func (a *Assembler) Add(it Item) {
	switch {
	case it.Node != nil:
		a.AddNode(*it.Node)
	case it.Edge != nil:
		a.AddEdge(*it.Edge)
	case it.Alias != nil:
		a.AddAlias(*it.Alias)
	}
}

// AddNode inserts n or merges it into the node already stored under n.ID.
func (a *Assembler) AddNode(n Node) {
	if n.ID == "" || IsRef(n.ID) {
		a.report.Rejected++
		a.logger.Debug("rejected node", "id", n.ID, "label", n.Label)
		return
	}
	i, ok := a.index[n.ID]
	if !ok {
		n.Attrs = n.Attrs.Clone()
		a.index[n.ID] = len(a.nodes)
		a.nodes = append(a.nodes, &n)
		return
	}

	cur := a.nodes[i]
	a.report.MergedNodes++
	switch {
	case cur.Weak && !n.Weak:
		// A regular node replaces the stub entirely.
		n.Attrs = n.Attrs.Clone()
		*cur = n
		return
	case n.Weak && !cur.Weak:
		return
	case cur.Kind != n.Kind:
		a.report.KindCollisions++
		a.logger.Warn("node kind collision", "id", n.ID, "kept", cur.Kind, "ignored", n.Kind)
	}
	a.mergeAttrs(n.ID, &cur.Attrs, n.Attrs)
}

// AddEdge records e. Endpoints may be node ids or reference aliases; both
// are resolved in Finish.
func (a *Assembler) AddEdge(e Edge) {
	if e.Source == "" || e.Target == "" {
		a.report.Rejected++
		a.logger.Debug("rejected edge", "source", e.Source, "target", e.Target, "label", e.Label)
		return
	}
	e.Attrs = e.Attrs.Clone()
	a.edges = append(a.edges, e)
}

// AddAlias binds al.Ref to al.Node. Repeated bindings are ignored.
func (a *Assembler) AddAlias(al Alias) {
	if !IsRef(al.Ref) || al.Node == "" {
		a.report.Rejected++
		a.logger.Debug("rejected alias", "ref", al.Ref, "node", al.Node)
		return
	}
	key := Alias{Ref: al.Ref, Node: al.Node}
	if a.aliasSeen[key] {
		return
	}
	a.aliasSeen[key] = true
	a.aliases[al.Ref] = append(a.aliases[al.Ref], al.Node)
}

func (a *Assembler) mergeAttrs(owner string, dst *Attributes, src Attributes) {
	for _, kv := range src {
		if old, ok := dst.Get(kv.Key); ok {
			if old != kv.Value {
				a.report.AttributeConflicts++
				a.logger.Debug("attribute ignored", "owner", owner, "key", kv.Key, "kept", old, "ignored", kv.Value)
			}
			continue
		}
		*dst = append(*dst, kv)
	}
}

func (a *Assembler) resolve(id string) []string {
	if !IsRef(id) {
		return []string{id}
	}
	return a.aliases[id]
}

// Finish expands aliases, collapses duplicate edges, prunes dangling edges,
// drops unreferenced weak nodes and returns the finished graph. The
// assembler must not be used afterwards.
func (a *Assembler) Finish() (*Graph, Report) {
	// Expand references and collapse duplicates, first-seen order.
	var expanded []Edge
	seen := make(map[edgeKey]int)
	for _, e := range a.edges {
		sources, targets := a.resolve(e.Source), a.resolve(e.Target)
		if len(sources) == 0 || len(targets) == 0 {
			a.report.UnresolvedRefs++
			a.logger.Debug("unresolved reference", "source", e.Source, "target", e.Target, "label", e.Label)
			continue
		}
		for _, s := range sources {
			for _, t := range targets {
				ne := e
				ne.Source, ne.Target = s, t
				k := ne.key()
				if j, dup := seen[k]; dup {
					a.report.DuplicateEdges++
					a.mergeAttrs(s+"->"+t, &expanded[j].Attrs, ne.Attrs)
					continue
				}
				ne.Attrs = ne.Attrs.Clone()
				seen[k] = len(expanded)
				expanded = append(expanded, ne)
			}
		}
	}

	// Prune dangling edges.
	kept := expanded[:0]
	referenced := make(map[string]bool)
	for _, e := range expanded {
		_, okS := a.index[e.Source]
		_, okT := a.index[e.Target]
		if !okS || !okT {
			a.report.DanglingEdges++
			a.logger.Debug("dangling edge pruned", "source", e.Source, "target", e.Target, "label", e.Label)
			continue
		}
		referenced[e.Source] = true
		referenced[e.Target] = true
		kept = append(kept, e)
	}

	g := New()
	for _, n := range a.nodes {
		if n.Weak && !referenced[n.ID] {
			a.report.WeakDropped++
			continue
		}
		if err := g.AddNode(*n); err != nil {
			a.report.Rejected++
			a.logger.Warn("node not added", "id", n.ID, "err", err)
		}
	}
	for _, e := range kept {
		if err := g.AddEdge(e); err != nil {
			a.report.Rejected++
			a.logger.Warn("edge not added", "source", e.Source, "target", e.Target, "label", e.Label, "err", err)
		}
	}

	a.report.Nodes = g.NodeCount()
	a.report.Edges = g.EdgeCount()
	return g, a.report
}
