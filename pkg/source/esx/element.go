package esx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"

	mizerrors "github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
)

var (
	// ErrNoRoot is returned by [Parse] for a document without elements.
	ErrNoRoot = errors.New("document has no root element")

	// ErrMultipleRoots is returned by [Parse] when elements follow the root.
	ErrMultipleRoots = errors.New("document has more than one root element")

	// ErrUnwritableText is returned by [Parse] for an attribute value holding
	// control characters no output format can carry.
	ErrUnwritableText = errors.New("attribute value contains control characters")
)

// Element is one node of a parsed ESX document.
type Element struct {
	Tag      string
	Attrs    graph.Attributes // XML attributes in source order
	Line     int              // line of the start tag
	Parent   *Element
	Children []*Element
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	v, _ := e.Attrs.Get(name)
	return v
}

// Walk yields e and all its descendants in document order.
func (e *Element) Walk() iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		e.walk(yield)
	}
}

func (e *Element) walk(yield func(*Element) bool) bool {
	if !yield(e) {
		return false
	}
	for _, c := range e.Children {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}

// Parse reads one XML document into an element tree. Namespace prefixes are
// dropped from tag and attribute names; namespace declarations are skipped.
func Parse(r io.Reader) (*Element, error) {
	d := xml.NewDecoder(r)

	var root, cur *Element
	for {
		// The offset before Token is the start of the next token.
		line, _ := d.InputPos()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Tag: t.Name.Local, Line: line, Parent: cur}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				if !mizerrors.IsText(a.Value) {
					return nil, fmt.Errorf("line %d: %s of <%s>: %w", line, a.Name.Local, t.Name.Local, ErrUnwritableText)
				}
				el.Attrs.Add(a.Name.Local, a.Value)
			}
			if cur == nil {
				if root != nil {
					return nil, ErrMultipleRoots
				}
				root = el
			} else {
				cur.Children = append(cur.Children, el)
			}
			cur = el
		case xml.EndElement:
			cur = cur.Parent
		}
	}
	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}
