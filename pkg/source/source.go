// Package source holds what every input reader shares: record statistics and
// the canonical node id scheme.
//
// The readers live in subpackages, one per input kind:
//
//   - manifest: the mml.lar article list
//   - esx: per-article ESX MML records
//   - metadata: the dataset metadata XML
//   - csvrel: CSV relation tables
//   - rdf: external RDF triples from a file or URL
//
// Each reader yields raw records lazily and pairs with a normalizer that turns
// one record into [graph.Item] values. Normalizers consult no other source;
// cross-source joins go through reference aliases resolved by the assembler.
package source

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Stats counts what a reader saw.
type Stats struct {
	Name    string // source name used in logs and summaries
	Read    int    // records handed downstream
	Skipped int    // malformed records dropped
	Failed  bool   // the source as a whole contributed nothing
}

// Skip counts a dropped record and logs why.
func (s *Stats) Skip(logger *log.Logger, msg string, keyvals ...any) {
	s.Skipped++
	if logger != nil {
		logger.Warn(msg, append([]any{"source", s.Name}, keyvals...)...)
	}
}

// String renders the counters for summaries.
func (s Stats) String() string {
	if s.Failed {
		return fmt.Sprintf("%s: failed", s.Name)
	}
	if s.Skipped == 0 {
		return fmt.Sprintf("%s: %d read", s.Name, s.Read)
	}
	return fmt.Sprintf("%s: %d read, %d skipped", s.Name, s.Read, s.Skipped)
}

func keepAlnum(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return r
	}
	return -1
}

// NotionKey normalizes a notion inscription or RDF resource name for
// matching: lower case, ASCII letters and digits only.
func NotionKey(s string) string {
	return strings.Map(keepAlnum, strings.ToLower(s))
}
