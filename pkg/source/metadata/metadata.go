// Package metadata reads the dataset metadata document and normalizes it
// into a GraphMetadata node with one entry node per top-level element.
package metadata

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/source"
)

//go:embed default.xml
var defaultDocument []byte

// DefaultName is the file name the embedded document is reported under.
const DefaultName = "metadata.xml"

const (
	// GraphLabel is the label of the document node.
	GraphLabel = "GraphMetadata"
	// LabelHas links the document node to its entries.
	LabelHas = "HAS"

	// CurrentDate is replaced by the run date inside dcterms:date.
	CurrentDate = "CURRENT_DATE"
	// DateLayout formats the run date.
	DateLayout = "2006-01-02"

	dctermsNS = "http://purl.org/dc/terms/"
)

// Entry is one child element of the document root.
type Entry struct {
	Space string // namespace URI
	Name  string // local name
	Value string // trimmed text content
	Line  int
}

// Document is a parsed metadata file.
type Document struct {
	Stem    string
	Entries []Entry
	Skipped int // entries dropped for text the output cannot carry
}

// Read parses the metadata file at path, or the embedded default when path
// is empty.
func Read(path string, today time.Time) (*Document, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultDocument), Stem(DefaultName), today)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "metadata %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "metadata %s", path)
	}
	defer f.Close()

	doc, err := Parse(f, Stem(path), today)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "metadata %s", path)
	}
	return doc, nil
}

// Stem derives the document node id from a file path: the base name up to
// the first dot, with characters outside [A-Za-z0-9_-] replaced by '_'.
func Stem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, base)
	if stem == "" {
		return "metadata"
	}
	return stem
}

// Parse reads the children of the document root. Nested elements contribute
// their text to the enclosing entry.
func Parse(r io.Reader, stem string, today time.Time) (*Document, error) {
	d := xml.NewDecoder(r)
	doc := &Document{Stem: stem}

	depth, roots := 0, 0
	var cur *Entry
	var text strings.Builder
	for {
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
			depth++
			if depth == 1 {
				roots++
			}
			if depth == 2 {
				cur = &Entry{Space: t.Name.Space, Name: t.Name.Local, Line: line}
				text.Reset()
			}
		case xml.CharData:
			if cur != nil {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 2 && cur != nil {
				cur.Value = strings.TrimSpace(text.String())
				if cur.Space == dctermsNS && cur.Name == "date" && cur.Value == CurrentDate {
					cur.Value = today.Format(DateLayout)
				}
				if errors.IsText(cur.Value) {
					doc.Entries = append(doc.Entries, *cur)
				} else {
					doc.Skipped++
				}
				cur = nil
			}
			depth--
		}
	}
	if depth != 0 || roots == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return doc, nil
}

// Normalize turns a document into its nodes and HAS edges.
func Normalize(doc *Document) []graph.Item {
	root := source.MetadataID(doc.Stem)
	items := []graph.Item{graph.NodeItem(graph.Node{
		ID:       root,
		Kind:     graph.KindMetadata,
		Label:    GraphLabel,
		Category: category.Metadata,
	})}

	for _, e := range doc.Entries {
		id := source.MetadataEntryID(doc.Stem, e.Line)
		var attrs graph.Attributes
		if e.Value != "" {
			attrs.Add("value", e.Value)
		}
		items = append(items,
			graph.NodeItem(graph.Node{
				ID:       id,
				Kind:     graph.KindMetadata,
				Label:    e.Name,
				Attrs:    attrs,
				Category: category.Metadata,
			}),
			graph.EdgeItem(graph.Edge{Source: root, Target: id, Label: LabelHas, Category: category.Metadata}),
		)
	}
	return items
}
