package rdf

import (
	"bufio"
	"bytes"
	"encoding/json"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/mmlkg/mizgra/pkg/errors"
)

// Format is an RDF serialization.
type Format string

const (
	FormatJSONLD Format = "json-ld"
	FormatHext   Format = "hext"
	FormatN3     Format = "n3"
	FormatNQuads Format = "nquads"
	FormatNT     Format = "nt"
	FormatTriX   Format = "trix"
	FormatTurtle Format = "turtle"
	FormatXML    Format = "xml"
)

// Formats lists every supported format in a stable order.
var Formats = []Format{FormatJSONLD, FormatHext, FormatN3, FormatNQuads, FormatNT, FormatTriX, FormatTurtle, FormatXML}

// FormatNames returns the format names for help text and completion.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// ParseFormat validates a format hint. The empty hint means auto-detect.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unknown RDF format %q (valid: %s)", s, strings.Join(FormatNames(), ", "))
}

var extensions = map[string]Format{
	".jsonld":  FormatJSONLD,
	".json-ld": FormatJSONLD,
	".hext":    FormatHext,
	".n3":      FormatN3,
	".nq":      FormatNQuads,
	".nquads":  FormatNQuads,
	".nt":      FormatNT,
	".trix":    FormatTriX,
	".ttl":     FormatTurtle,
	".turtle":  FormatTurtle,
	".rdf":     FormatXML,
	".owl":     FormatXML,
	".xml":     FormatXML,
}

// FromExtension infers the format from the extension of a path or of the
// path component of a URL.
func FromExtension(location string) (Format, bool) {
	p := location
	if errors.IsURL(location) {
		u, err := url.Parse(location)
		if err != nil {
			return "", false
		}
		p = path.Base(u.Path)
	}
	f, ok := extensions[strings.ToLower(filepath.Ext(p))]
	return f, ok
}

var mediaTypes = map[string]Format{
	"application/ld+json":   FormatJSONLD,
	"application/x-ndjson":  FormatHext,
	"text/n3":               FormatN3,
	"text/rdf+n3":           FormatN3,
	"application/n-quads":   FormatNQuads,
	"application/n-triples": FormatNT,
	"application/trix":      FormatTriX,
	"text/turtle":           FormatTurtle,
	"application/x-turtle":  FormatTurtle,
	"application/rdf+xml":   FormatXML,
}

// FromContentType maps an HTTP Content-Type to a format.
func FromContentType(ct string) (Format, bool) {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", false
	}
	f, ok := mediaTypes[mt]
	return f, ok
}

// Sniff guesses the format from the first bytes of a document.
func Sniff(data []byte) (Format, bool) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", false
	}

	switch trimmed[0] {
	case '{':
		return FormatJSONLD, true
	case '[':
		first, _, _ := bytes.Cut(trimmed, []byte("\n"))
		var row []json.RawMessage
		if json.Unmarshal(first, &row) == nil && len(row) == hextColumns {
			return FormatHext, true
		}
		return FormatJSONLD, true
	case '<':
		head := trimmed[:min(len(trimmed), 1024)]
		switch {
		case bytes.Contains(head, []byte("<TriX")):
			return FormatTriX, true
		case bytes.Contains(head, []byte("rdf:RDF")), bytes.HasPrefix(head, []byte("<?xml")):
			return FormatXML, true
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "@prefix") || strings.HasPrefix(lower, "@base") ||
			strings.HasPrefix(lower, "prefix ") || strings.HasPrefix(lower, "base ") {
			return FormatTurtle, true
		}
		switch countTerms(line) {
		case 3:
			return FormatNT, true
		case 4:
			return FormatNQuads, true
		}
		return "", false
	}
	return "", false
}

// countTerms counts the terms of an N-Triples style statement, or returns 0
// when line is not one.
func countTerms(line string) int {
	line = strings.TrimSpace(line)
	if !strings.HasSuffix(line, ".") {
		return 0
	}
	line = strings.TrimSpace(strings.TrimSuffix(line, "."))

	n := 0
	for line != "" {
		var rest string
		switch line[0] {
		case '<':
			end := strings.IndexByte(line, '>')
			if end < 0 {
				return 0
			}
			rest = line[end+1:]
		case '_':
			end := strings.IndexAny(line, " \t")
			if end < 0 {
				end = len(line)
			}
			rest = line[end:]
		case '"':
			end := closingQuote(line)
			if end < 0 {
				return 0
			}
			rest = line[end+1:]
			// Datatype or language tag.
			if strings.HasPrefix(rest, "^^<") {
				gt := strings.IndexByte(rest, '>')
				if gt < 0 {
					return 0
				}
				rest = rest[gt+1:]
			} else if strings.HasPrefix(rest, "@") {
				end := strings.IndexAny(rest, " \t")
				if end < 0 {
					end = len(rest)
				}
				rest = rest[end:]
			}
		default:
			return 0
		}
		n++
		line = strings.TrimSpace(rest)
	}
	return n
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
