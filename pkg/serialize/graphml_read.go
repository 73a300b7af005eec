package serialize

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/mmlkg/mizgra/pkg/graph"
)

type graphMLKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type graphMLNode struct {
	ID     string        `xml:"id,attr"`
	Labels string        `xml:"labels,attr"`
	Data   []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Label  string        `xml:"label,attr"`
	Data   []graphMLData `xml:"data"`
}

// ReadGraphML parses GraphML written by [GraphML] into a graph. Nodes marked
// by an article comment get [graph.KindArticle]; other kinds are not stored
// in the output and are left empty.
func ReadGraphML(r io.Reader) (*graph.Graph, error) {
	d := xml.NewDecoder(r)
	g := graph.New()
	names := map[string]string{}
	var nodeLabelID, edgeLabelID, article string

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, fmt.Errorf("graphml: %w", err)
		}

		switch t := tok.(type) {
		case xml.Comment:
			if name, ok := strings.CutPrefix(strings.TrimSpace(string(t)), articleComment); ok {
				article = name
			}

		case xml.StartElement:
			switch t.Name.Local {
			case "key":
				var k graphMLKey
				if err := d.DecodeElement(&k, &t); err != nil {
					return nil, fmt.Errorf("graphml key: %w", err)
				}
				names[k.ID] = k.Name
				switch {
				case k.For == "node" && k.Name == nodeLabelKey:
					nodeLabelID = k.ID
				case k.For == "edge" && k.Name == edgeLabelKey:
					edgeLabelID = k.ID
				}

			case "node":
				var raw graphMLNode
				if err := d.DecodeElement(&raw, &t); err != nil {
					return nil, fmt.Errorf("graphml node: %w", err)
				}
				n := graph.Node{ID: raw.ID, Label: strings.TrimPrefix(raw.Labels, ":")}
				if article != "" && article == raw.ID {
					n.Kind = graph.KindArticle
				}
				article = ""
				n.Attrs = readData(raw.Data, nodeLabelID, names)
				if err := g.AddNode(n); err != nil {
					return nil, fmt.Errorf("graphml node %s: %w", raw.ID, err)
				}

			case "edge":
				var raw graphMLEdge
				if err := d.DecodeElement(&raw, &t); err != nil {
					return nil, fmt.Errorf("graphml edge: %w", err)
				}
				e := graph.Edge{
					Source: raw.Source,
					Target: raw.Target,
					Label:  raw.Label,
					Attrs:  readData(raw.Data, edgeLabelID, names),
				}
				if err := g.AddEdge(e); err != nil {
					return nil, fmt.Errorf("graphml edge %s->%s: %w", raw.Source, raw.Target, err)
				}
			}
		}
	}
}

func readData(data []graphMLData, labelID string, names map[string]string) graph.Attributes {
	var attrs graph.Attributes
	for _, d := range data {
		if d.Key == labelID {
			continue
		}
		name, ok := names[d.Key]
		if !ok {
			name = d.Key
		}
		attrs.Add(name, d.Value)
	}
	return attrs
}
