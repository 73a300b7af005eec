// Package rdf loads external RDF statements and attaches them to the notions
// declared in the library.
//
// A statement's subject is matched to Notion-Name elements by its local name
// (the IRI fragment, else the last path segment), normalized like notion
// inscriptions. The object becomes a resource node and the predicate's local
// name labels the edge:
//
//	<http://x.org/onto#Set> <http://x.org/onto#see_also> "Menge"@de .
//	=> (notion "set") -[see also {lang: de}]-> (rdfResource {value: Menge})
package rdf

import (
	"strings"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/source"
)

// ResourceLabel is the label of resource nodes.
const ResourceLabel = "rdfResource"

// LocalName returns the fragment of an IRI, or its last path segment.
func LocalName(iri string) string {
	base, frag, _ := strings.Cut(iri, "#")
	if frag != "" {
		return frag
	}
	trimmed := strings.TrimRight(base, "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// PredicateLabel returns the edge label of a predicate IRI.
func PredicateLabel(predicate string) string {
	return strings.TrimSpace(strings.ReplaceAll(LocalName(predicate), "_", " "))
}

// Normalize turns a statement into a weak resource node and an edge from
// every notion the subject names. It returns nil for statements that cannot
// be attached: no notion key, no predicate label, or text the output
// formats cannot carry.
func Normalize(t Triple) []graph.Item {
	key := source.NotionKey(LocalName(t.Subject))
	label := PredicateLabel(t.Predicate)
	if key == "" || label == "" {
		return nil
	}
	if !errors.IsText(label) || !errors.IsText(t.Object) || !errors.IsText(t.Lang) {
		return nil
	}

	id := source.RDFResourceID(t.Object)
	e := graph.Edge{
		Source:   source.NotionRef(key),
		Target:   id,
		Label:    label,
		Category: category.RDFRelations,
	}
	if t.ObjectKind == KindLiteral && t.Lang != "" {
		e.Attrs = graph.Attributes{{Key: "lang", Value: t.Lang}}
	}

	return []graph.Item{
		graph.NodeItem(graph.Node{
			ID:       id,
			Kind:     graph.KindRDFResource,
			Label:    ResourceLabel,
			Attrs:    graph.Attributes{{Key: "value", Value: t.Object}},
			Category: category.RDFRelations,
			Weak:     true,
		}),
		graph.EdgeItem(e),
	}
}
