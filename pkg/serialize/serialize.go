// Package serialize writes assembled property graphs as GraphML or YARS-PG
// and reads the engine's own output back.
//
// # Formats
//
// Both backends implement [Serializer] and are selected with [New]:
//
//	s, err := serialize.New(serialize.FormatYARSPG)
//	if err != nil {
//	    return err
//	}
//	err = s.Serialize(os.Stdout, g)
//
// Nodes are written first, in graph order, followed by the edges. Each article
// node is preceded by a "START OF <article>" comment, which the readers use to
// restore the article kind.
//
// # Validation
//
// A serializer checks the whole graph before the first byte is written, so a
// graph that cannot be expressed in the target syntax produces an error and
// no output. Writes go through a [bufio.Writer], one element at a time.
//
// # Reading
//
// [ReadGraphML] and [ReadYARSPG] parse output produced by this package into a
// [graph.Graph]. Re-serializing the result reproduces the input byte for byte.
// They are not general-purpose parsers for either format.
package serialize

import (
	"io"
	"strings"

	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
)

// Format names an output syntax.
type Format string

const (
	FormatGraphML Format = "graphml"
	FormatYARSPG  Format = "yarspg"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatGraphML

// Formats lists the supported output formats.
var Formats = []Format{FormatGraphML, FormatYARSPG}

// FormatNames returns the format names for help text and completion.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unknown output format %q (valid: %s)", s, strings.Join(FormatNames(), ", "))
}

// Serializer writes a graph in one output syntax.
type Serializer interface {
	// Serialize validates g and writes it to w. Nothing is written when
	// validation fails.
	Serialize(w io.Writer, g *graph.Graph) error

	// Format returns the syntax this serializer writes.
	Format() Format
}

// New returns the serializer for f.
func New(f Format) (Serializer, error) {
	switch f {
	case FormatGraphML:
		return GraphML{}, nil
	case FormatYARSPG:
		return YARSPG{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", f)
}

// articleComment is the text of the comment that precedes each article node.
const articleComment = "START OF "

func invalid(format Format, what, value string) error {
	return errors.New(errors.ErrCodeInvalidRecord, "%s: %s %q cannot be written", format, what, value)
}
