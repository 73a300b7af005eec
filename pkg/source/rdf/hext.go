package rdf

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// hextColumns is the width of a Hextuples row:
// subject, predicate, value, datatype, language, graph.
const hextColumns = 6

// Hextuples datatype markers for non-literal values.
const (
	hextIRI   = "globalId"
	hextBlank = "localId"
)

// decodeHext reads newline-delimited Hextuples. Each line is one statement.
func decodeHext(data []byte) iter.Seq2[Triple, error] {
	return func(yield func(Triple, error) bool) {
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
		line := 0
		for sc.Scan() {
			line++
			raw := bytes.TrimSpace(sc.Bytes())
			if len(raw) == 0 {
				continue
			}
			t, err := parseHextRow(raw)
			if err != nil {
				err = fmt.Errorf("line %d: %w", line, err)
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

func parseHextRow(raw []byte) (Triple, error) {
	var row []string
	if err := json.Unmarshal(raw, &row); err != nil {
		return Triple{}, err
	}
	if len(row) != hextColumns {
		return Triple{}, fmt.Errorf("expected %d columns, got %d", hextColumns, len(row))
	}
	if row[0] == "" || row[1] == "" {
		return Triple{}, fmt.Errorf("empty subject or predicate")
	}

	t := Triple{Subject: row[0], Predicate: row[1], Object: row[2]}
	switch row[3] {
	case hextIRI:
		t.ObjectKind = KindIRI
	case hextBlank:
		t.ObjectKind = KindBlank
	default:
		t.ObjectKind = KindLiteral
		t.Lang = row[4]
	}
	return t, nil
}
