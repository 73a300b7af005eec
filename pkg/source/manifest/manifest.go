// Package manifest reads the mml.lar library manifest: one article name per
// line, in library order.
package manifest

import (
	"bufio"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/source"
)

// ArticleLabel is the node label of article nodes.
const ArticleLabel = "Article"

// Manifest is the ordered article list.
type Manifest struct {
	Articles []string
	Stats    source.Stats

	order map[string]int
}

// Read parses the manifest at path. An unreadable manifest, or one without
// a single usable article name, is a fatal error.
func Read(path string, logger *log.Logger) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
	}
	defer f.Close()

	m, err := Parse(f, logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "manifest %s", path)
	}
	return m, nil
}

// Parse reads article names from r. Blank lines are ignored, repeated names
// keep their first position, and names unfit for file names or node ids are
// skipped and counted.
func Parse(r io.Reader, logger *log.Logger) (*Manifest, error) {
	m := &Manifest{Stats: source.Stats{Name: "manifest"}, order: make(map[string]int)}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		if err := errors.ValidateArticleName(name); err != nil {
			m.Stats.Skip(logger, "skipping manifest entry", "line", line, "err", err)
			continue
		}
		if _, dup := m.order[name]; dup {
			m.Stats.Skipped++
			continue
		}
		m.Articles = append(m.Articles, name)
		m.order[name] = len(m.Articles)
		m.Stats.Read++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(m.Articles) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "no articles listed")
	}
	return m, nil
}

// Len returns the number of articles.
func (m *Manifest) Len() int { return len(m.Articles) }

// Order returns the 1-based library position of article.
func (m *Manifest) Order(article string) (int, bool) {
	i, ok := m.order[article]
	return i, ok
}

// Contains reports whether article is listed.
func (m *Manifest) Contains(article string) bool {
	_, ok := m.order[article]
	return ok
}

// All yields the articles with their 1-based position.
func (m *Manifest) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, name := range m.Articles {
			if !yield(i+1, name) {
				return
			}
		}
	}
}

// Normalize returns the article node for one manifest entry.
func Normalize(article string, order int, cats category.Set) []graph.Item {
	if !cats.Has(category.Filenames) {
		return nil
	}
	return []graph.Item{graph.NodeItem(graph.Node{
		ID:       source.ArticleID(article),
		Kind:     graph.KindArticle,
		Label:    ArticleLabel,
		Category: category.Filenames,
		Attrs: graph.Attributes{
			{Key: "name", Value: article},
			{Key: "order", Value: strconv.Itoa(order)},
		},
	})}
}
