package esx

import (
	"iter"
	"strconv"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/source"
)

// Relation labels emitted for ESX articles.
const (
	LabelMember  = "MEMBER"
	LabelRelated = "RELATED"
	LabelBroader = "BROADER"
)

// Element tags with built-in meaning.
const (
	tagLabel          = "Label"
	tagLocalReference = "Local-Reference"
	tagNotionName     = "Notion-Name"
)

// Attributes added to every construct node.
const (
	attrXMLID    = "xmlid"
	attrNotation = "notation"
	attrUUID     = "uuid"
)

// Categories lists every category an ESX article can contribute to.
var Categories = []category.Category{
	category.Nodes,
	category.MemberRelations,
	category.LocalRefRelations,
	category.UsagesRelations,
	category.BroaderRelations,
	category.RDFRelations,
}

type usageRule struct {
	UsageRule
	target path
}

type broaderRule struct {
	source, target path
	attr           string
}

// Normalizer turns parsed articles into graph items. It holds no state
// between articles.
type Normalizer struct {
	cats    category.Set
	usages  []usageRule
	broader []broaderRule
}

// NewNormalizer prepares rules for repeated use.
func NewNormalizer(rules Rules, cats category.Set) *Normalizer {
	n := &Normalizer{cats: cats}
	for _, u := range rules.Usages {
		n.usages = append(n.usages, usageRule{UsageRule: u, target: parsePath(u.Target)})
	}
	for _, b := range rules.Broader {
		n.broader = append(n.broader, broaderRule{
			source: parsePath(b.Source),
			target: parsePath(b.Target),
			attr:   b.Attribute,
		})
	}
	return n
}

// Normalize yields the items of one article in document order.
func (n *Normalizer) Normalize(a *Article) iter.Seq[graph.Item] {
	return func(yield func(graph.Item) bool) {
		ids := make(map[*Element]string)
		labels := make(map[string]string)
		ordinal := 0

		for el := range a.Root.Walk() {
			ordinal++
			id := elementID(a.Name, el, ordinal)
			ids[el] = id

			for _, it := range n.element(a, el, id, ids, labels) {
				if !yield(it) {
					return
				}
			}
		}
	}
}

// elementID keys an element by its xmlid when that is safe inside a node id,
// else by its position.
func elementID(article string, el *Element, ordinal int) string {
	if xmlid := el.Attr(attrXMLID); errors.IsIdentifier(xmlid) {
		return source.ConstructID(article, xmlid)
	}
	return source.AnonymousConstructID(article, ordinal)
}

func (n *Normalizer) element(a *Article, el *Element, id string, ids map[*Element]string, labels map[string]string) []graph.Item {
	var items []graph.Item

	if n.cats.Has(category.Nodes) {
		items = append(items, graph.NodeItem(graph.Node{
			ID:       id,
			Kind:     graph.KindConstruct,
			Label:    el.Tag,
			Attrs:    constructAttrs(a, el, id),
			Category: category.Nodes,
		}))
	}

	if n.cats.Has(category.MemberRelations) {
		parent := source.ArticleID(a.Name)
		if el.Parent != nil {
			parent = ids[el.Parent]
		}
		items = append(items, edge(id, parent, LabelMember, category.MemberRelations))
	}

	if n.cats.Has(category.LocalRefRelations) {
		switch el.Tag {
		case tagLabel:
			if nr := el.Attr("serialnr"); nr != "" {
				if _, ok := labels[nr]; !ok {
					labels[nr] = id
				}
			}
		case tagLocalReference:
			if target, ok := labels[el.Attr("serialnr")]; ok {
				items = append(items, edge(id, target, LabelRelated, category.LocalRefRelations))
			}
		}
	}

	if n.cats.Has(category.UsagesRelations) {
		items = n.usageItems(items, a, el, id)
	}

	if n.cats.Has(category.BroaderRelations) {
		items = n.broaderItems(items, el, id)
	}

	if n.cats.Has(category.RDFRelations) && el.Tag == tagNotionName {
		if key := source.NotionKey(el.Attr("inscription")); key != "" {
			items = append(items, graph.AliasItem(graph.Alias{
				Ref:      source.NotionRef(key),
				Node:     id,
				Category: category.RDFRelations,
			}))
		}
	}

	return items
}

// constructAttrs copies the XML attributes and appends notation and uuid,
// which replace any attributes of the same name.
func constructAttrs(a *Article, el *Element, id string) graph.Attributes {
	attrs := make(graph.Attributes, 0, len(el.Attrs)+2)
	for _, kv := range el.Attrs {
		if kv.Key == attrNotation || kv.Key == attrUUID {
			continue
		}
		attrs = append(attrs, kv)
	}
	attrs = append(attrs,
		graph.Attr{Key: attrNotation, Value: "m." + strconv.Itoa(a.Order) + "." + strconv.Itoa(el.Line)},
		graph.Attr{Key: attrUUID, Value: source.NodeUUID(id)},
	)
	return attrs
}

func (n *Normalizer) usageItems(items []graph.Item, a *Article, el *Element, id string) []graph.Item {
	registered := make(map[string]bool)
	for _, r := range n.usages {
		// Source side: point at whatever the value names.
		if el.Tag == r.Source {
			if v := el.Attr(r.Attribute); v != "" {
				items = append(items, edge(id, source.UsageRef(r.Target, r.Attribute, v), LabelRelated, category.UsagesRelations))
			}
		}
		// Target side: register this element if it lives where the value says.
		if r.target.matches(el) {
			v := el.Attr(r.Attribute)
			if v == "" || source.ArticleFromMMLID(v) != a.Name {
				continue
			}
			ref := source.UsageRef(r.Target, r.Attribute, v)
			if registered[ref] {
				continue
			}
			registered[ref] = true
			items = append(items, graph.AliasItem(graph.Alias{Ref: ref, Node: id, Category: category.UsagesRelations}))
		}
	}
	return items
}

func (n *Normalizer) broaderItems(items []graph.Item, el *Element, id string) []graph.Item {
	for i, r := range n.broader {
		if !r.source.matches(el) {
			continue
		}
		if v := el.Attr(r.attr); v != "" {
			items = append(items, graph.AliasItem(graph.Alias{
				Ref:      source.BroaderRef(i, v),
				Node:     id,
				Category: category.BroaderRelations,
			}))
		}

		scope := el.Parent
		if scope == nil {
			scope = el
		}
		for d := range scope.Walk() {
			if d == scope || !r.target.matches(d) {
				continue
			}
			if w := d.Attr(r.attr); w != "" {
				items = append(items, edge(id, source.BroaderRef(i, w), LabelBroader, category.BroaderRelations))
			}
		}
	}
	return items
}

func edge(src, dst, label string, c category.Category) graph.Item {
	return graph.EdgeItem(graph.Edge{Source: src, Target: dst, Label: label, Category: c})
}
