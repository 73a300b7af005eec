package serialize

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"

	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
)

const graphMLHeader = `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns"
xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
xsi:schemaLocation="http://graphml.graphdrawing.org/xmlns http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd">
`

const graphMLFooter = "</graph>\n</graphml>\n"

// Reserved attribute names that carry node and edge labels.
const (
	nodeLabelKey = "labels"
	edgeLabelKey = "label"
)

// GraphML writes GraphML 1.0. Node labels use the Neo4j convention of a
// "labels" attribute with a leading colon.
type GraphML struct{}

// Format implements [Serializer].
func (GraphML) Format() Format { return FormatGraphML }

// Serialize implements [Serializer].
func (GraphML) Serialize(w io.Writer, g *graph.Graph) error {
	keys, err := graphMLKeys(g)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(graphMLHeader)
	for _, k := range keys.decls {
		bw.WriteString(`<key id="`)
		escapeXML(bw, k.id)
		bw.WriteString(`" for="` + k.scope + `" attr.name="`)
		escapeXML(bw, k.name)
		bw.WriteString("\" attr.type=\"string\"/>\n")
	}
	bw.WriteString("<graph id=\"G\" edgedefault=\"directed\">\n")

	for _, n := range g.Nodes() {
		if n.Kind == graph.KindArticle {
			bw.WriteString("<!-- " + articleComment + n.ID + " -->\n")
		}
		bw.WriteString(`<node id="`)
		escapeXML(bw, n.ID)
		bw.WriteString(`" labels=":`)
		escapeXML(bw, n.Label)
		bw.WriteString("\">\n")
		writeData(bw, nodeLabelKey, ":"+n.Label)
		for _, a := range n.Attrs {
			writeData(bw, keys.node[a.Key], a.Value)
		}
		bw.WriteString("</node>\n")
	}

	for _, e := range g.Edges() {
		bw.WriteString(`<edge source="`)
		escapeXML(bw, e.Source)
		bw.WriteString(`" target="`)
		escapeXML(bw, e.Target)
		bw.WriteString(`" label="`)
		escapeXML(bw, e.Label)
		bw.WriteString("\">\n")
		writeData(bw, keys.edge[edgeLabelKey], e.Label)
		for _, a := range e.Attrs {
			writeData(bw, keys.edge[a.Key], a.Value)
		}
		bw.WriteString("</edge>\n")
	}

	bw.WriteString(graphMLFooter)
	return bw.Flush()
}

func writeData(bw *bufio.Writer, key, value string) {
	bw.WriteString(`<data key="`)
	escapeXML(bw, key)
	bw.WriteString(`">`)
	escapeXML(bw, value)
	bw.WriteString("</data>\n")
}

// escapeXML writes s with XML special characters and line breaks escaped, so
// values survive attribute normalization on the way back in.
func escapeXML(w io.Writer, s string) {
	xml.EscapeText(w, []byte(s))
}

type keyDecl struct {
	id, scope, name string
}

// keyTable maps attribute names to GraphML key ids, per scope.
type keyTable struct {
	decls []keyDecl
	node  map[string]string
	edge  map[string]string
}

// graphMLKeys validates g and collects its attribute names in first-seen
// order. Edge keys whose name is already a node key id get an "edge_"
// prefix, since key ids share one namespace.
func graphMLKeys(g *graph.Graph) (*keyTable, error) {
	t := &keyTable{node: make(map[string]string), edge: make(map[string]string)}
	taken := make(map[string]bool)
	declare := func(scope, name string, ids map[string]string) {
		if _, ok := ids[name]; ok {
			return
		}
		id := name
		for taken[id] {
			id = "edge_" + id
		}
		taken[id] = true
		ids[name] = id
		t.decls = append(t.decls, keyDecl{id: id, scope: scope, name: name})
	}

	declare("node", nodeLabelKey, t.node)
	for _, n := range g.Nodes() {
		if err := checkXML("node id", n.ID); err != nil {
			return nil, err
		}
		if err := checkXML("node label", n.Label); err != nil {
			return nil, err
		}
		if n.Kind == graph.KindArticle && (strings.Contains(n.ID, "--") || strings.HasSuffix(n.ID, "-")) {
			return nil, invalid(FormatGraphML, "article id", n.ID)
		}
		for _, a := range n.Attrs {
			if err := checkAttr(a, nodeLabelKey); err != nil {
				return nil, err
			}
			declare("node", a.Key, t.node)
		}
	}

	declare("edge", edgeLabelKey, t.edge)
	for _, e := range g.Edges() {
		if err := checkXML("edge label", e.Label); err != nil {
			return nil, err
		}
		for _, a := range e.Attrs {
			if err := checkAttr(a, edgeLabelKey); err != nil {
				return nil, err
			}
			declare("edge", a.Key, t.edge)
		}
	}
	return t, nil
}

func checkAttr(a graph.Attr, reserved string) error {
	if a.Key == "" || a.Key == reserved {
		return invalid(FormatGraphML, "attribute name", a.Key)
	}
	if err := checkXML("attribute name", a.Key); err != nil {
		return err
	}
	return checkXML("attribute value", a.Value)
}

// checkXML rejects text the output formats cannot carry. Empty values are
// allowed only for attribute values.
func checkXML(what, s string) error {
	if s == "" && what != "attribute value" {
		return invalid(FormatGraphML, what, s)
	}
	if !errors.IsText(s) {
		return invalid(FormatGraphML, what, s)
	}
	return nil
}
