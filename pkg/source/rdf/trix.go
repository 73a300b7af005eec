package rdf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"strings"
)

// trixTerm is one child of a TriX <triple>: <uri>, <id>, <plainLiteral> or
// <typedLiteral>.
type trixTerm struct {
	XMLName xml.Name
	Lang    string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Value   string `xml:",chardata"`
}

type trixTriple struct {
	Terms []trixTerm `xml:",any"`
}

// decodeTriX streams the <triple> elements of a TriX document. Graph names
// are ignored.
func decodeTriX(data []byte) iter.Seq2[Triple, error] {
	return func(yield func(Triple, error) bool) {
		d := xml.NewDecoder(bytes.NewReader(data))
		for {
			tok, err := d.Token()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Triple{}, err)
				return
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != "triple" {
				continue
			}

			var raw trixTriple
			if err := d.DecodeElement(&raw, &se); err != nil {
				yield(Triple{}, err)
				return
			}
			t, err := raw.triple()
			if !yield(t, err) {
				return
			}
		}
	}
}

func (raw trixTriple) triple() (Triple, error) {
	if len(raw.Terms) != 3 {
		return Triple{}, fmt.Errorf("trix triple has %d terms, want 3", len(raw.Terms))
	}
	s, p, o := raw.Terms[0], raw.Terms[1], raw.Terms[2]
	if p.XMLName.Local != "uri" {
		return Triple{}, fmt.Errorf("trix predicate must be a uri, got <%s>", p.XMLName.Local)
	}

	t := Triple{Subject: strings.TrimSpace(s.Value), Predicate: strings.TrimSpace(p.Value), Object: o.Value}
	switch o.XMLName.Local {
	case "uri":
		t.ObjectKind = KindIRI
		t.Object = strings.TrimSpace(o.Value)
	case "id":
		t.ObjectKind = KindBlank
		t.Object = strings.TrimSpace(o.Value)
	case "plainLiteral", "typedLiteral":
		t.ObjectKind = KindLiteral
		t.Lang = o.Lang
	default:
		return Triple{}, fmt.Errorf("unknown trix term <%s>", o.XMLName.Local)
	}
	return t, nil
}
