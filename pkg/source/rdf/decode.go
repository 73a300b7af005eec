package rdf

import (
	"bufio"
	"bytes"
	"io"
	"iter"

	"github.com/knakk/rdf"
)

// TermKind tells IRIs, blank nodes and literals apart.
type TermKind uint8

const (
	KindIRI TermKind = iota
	KindBlank
	KindLiteral
)

// Triple is one statement in a format-independent shape. Graph names of
// quad formats are dropped.
type Triple struct {
	Subject    string
	Predicate  string
	Object     string
	ObjectKind TermKind
	Lang       string // language tag of a literal object
}

// Decode yields the triples of data in the given format. A statement that
// fails to parse is reported through the error value; line-based formats
// continue with the next line, the others stop at the first error.
func Decode(data []byte, f Format) iter.Seq2[Triple, error] {
	switch f {
	case FormatNT:
		return decodeLines(data, rdf.NTriples, false)
	case FormatNQuads:
		return decodeLines(data, rdf.NQuads, true)
	case FormatTurtle, FormatN3:
		return decodeTriples(data, rdf.Turtle)
	case FormatXML:
		return decodeTriples(data, rdf.RDFXML)
	case FormatJSONLD:
		return decodeJSONLD(data)
	case FormatHext:
		return decodeHext(data)
	case FormatTriX:
		return decodeTriX(data)
	}
	return func(yield func(Triple, error) bool) {}
}

func fromKnakk(t rdf.Triple) Triple {
	out := Triple{
		Subject:   t.Subj.String(),
		Predicate: t.Pred.String(),
		Object:    t.Obj.String(),
	}
	switch t.Obj.Type() {
	case rdf.TermBlank:
		out.ObjectKind = KindBlank
	case rdf.TermLiteral:
		out.ObjectKind = KindLiteral
		if lit, ok := t.Obj.(rdf.Literal); ok {
			out.Lang = lit.Lang()
		}
	}
	return out
}

// decodeTriples streams a whole document through one decoder.
func decodeTriples(data []byte, f rdf.Format) iter.Seq2[Triple, error] {
	return func(yield func(Triple, error) bool) {
		dec := rdf.NewTripleDecoder(bytes.NewReader(data), f)
		for {
			t, err := dec.Decode()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Triple{}, err)
				return
			}
			if !yield(fromKnakk(t), nil) {
				return
			}
		}
	}
}

// decodeLines parses one statement per line so that a bad line costs only
// itself.
func decodeLines(data []byte, f rdf.Format, quads bool) iter.Seq2[Triple, error] {
	return func(yield func(Triple, error) bool) {
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 || line[0] == '#' {
				continue
			}
			t, err := decodeLine(line, f, quads)
			if err == io.EOF {
				continue
			}
			if !yield(t, err) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(Triple{}, err)
		}
	}
}

func decodeLine(line []byte, f rdf.Format, quads bool) (Triple, error) {
	r := bytes.NewReader(append(bytes.Clone(line), '\n'))
	if quads {
		q, err := rdf.NewQuadDecoder(r, f).Decode()
		if err != nil {
			return Triple{}, err
		}
		return fromKnakk(q.Triple), nil
	}
	t, err := rdf.NewTripleDecoder(r, f).Decode()
	if err != nil {
		return Triple{}, err
	}
	return fromKnakk(t), nil
}
