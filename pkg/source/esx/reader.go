// Package esx reads ESX MML article records and normalizes their elements
// into construct nodes and relations.
package esx

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mmlkg/mizgra/pkg/source"
)

// Extension is the file extension of article records.
const Extension = ".esx"

// Article is one parsed article record.
type Article struct {
	Name  string
	Order int // 1-based library position
	Root  *Element
}

// Reader loads article records from a directory.
type Reader struct {
	Dir    string
	Logger *log.Logger
	Stats  source.Stats
}

// NewReader creates a reader for the records in dir.
func NewReader(dir string, logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reader{Dir: dir, Logger: logger, Stats: source.Stats{Name: "esx"}}
}

// Path returns the record file of an article.
func (r *Reader) Path(article string) string {
	return filepath.Join(r.Dir, article+Extension)
}

// Article parses the record of one article. It returns nil, after counting
// and logging the skip, when the record is missing or malformed.
func (r *Reader) Article(name string, order int) *Article {
	root, err := r.load(name)
	if err != nil {
		r.Stats.Skip(r.Logger, "skipping article", "article", name, "err", err)
		return nil
	}
	r.Stats.Read++
	r.Logger.Debug("parsed article", "article", name, "order", order, "line", root.Line)
	return &Article{Name: name, Order: order, Root: root}
}

func (r *Reader) load(article string) (*Element, error) {
	f, err := os.Open(r.Path(article))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
