package rdf

import (
	"encoding/json"
	"fmt"
	"iter"
	"net/http"

	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"
)

// contextClient fetches remote @context documents referenced by JSON-LD
// input. The loader reuses it so context fetches share the source timeout.
var contextClient = &http.Client{Timeout: DefaultTimeout}

// decodeJSONLD expands a JSON-LD document to N-Quads and decodes those.
func decodeJSONLD(data []byte) iter.Seq2[Triple, error] {
	return func(yield func(Triple, error) bool) {
		nquads, err := jsonLDToNQuads(data)
		if err != nil {
			yield(Triple{}, err)
			return
		}
		for t, err := range decodeLines([]byte(nquads), rdf.NQuads, true) {
			if !yield(t, err) {
				return
			}
		}
	}
}

func jsonLDToNQuads(data []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("json-ld: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	opts.DocumentLoader = ld.NewDefaultDocumentLoader(contextClient)

	out, err := proc.ToRDF(doc, opts)
	if err != nil {
		return "", fmt.Errorf("json-ld: %w", err)
	}
	s, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("json-ld: unexpected %T from serializer", out)
	}
	return s, nil
}
