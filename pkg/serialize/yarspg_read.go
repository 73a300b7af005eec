package serialize

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mmlkg/mizgra/pkg/graph"
)

// ReadYARSPG parses YARS-PG written by [YARSPG] into a graph. Nodes marked by
// an article comment get [graph.KindArticle].
func ReadYARSPG(r io.Reader) (*graph.Graph, error) {
	g := graph.New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)

	var article string
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		switch {
		case text == "":
			continue
		case strings.HasPrefix(text, "#"):
			if name, ok := strings.CutPrefix(text, "# "+articleComment); ok {
				article = name
			}
			continue
		}

		p := &yarsParser{s: text}
		n, e, err := p.statement()
		if err != nil {
			return nil, fmt.Errorf("yarspg line %d: %w", line, err)
		}
		if n != nil {
			if article != "" && article == n.ID {
				n.Kind = graph.KindArticle
			}
			article = ""
			err = g.AddNode(*n)
		} else {
			err = g.AddEdge(*e)
		}
		if err != nil {
			return nil, fmt.Errorf("yarspg line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("yarspg: %w", err)
	}
	return g, nil
}

// yarsParser consumes one statement line.
type yarsParser struct {
	s string
	i int
}

// statement parses a node line or an edge line; exactly one result is set.
func (p *yarsParser) statement() (*graph.Node, *graph.Edge, error) {
	if err := p.expect("("); err != nil {
		return nil, nil, err
	}
	id := p.ident()
	if id == "" {
		return nil, nil, fmt.Errorf("missing id at column %d", p.i+1)
	}

	if p.peek(" {") {
		n := &graph.Node{ID: id}
		var err error
		if err = p.expect(" {"); err == nil {
			n.Label, err = p.quoted()
		}
		if err == nil {
			err = p.expect("}")
		}
		if err == nil {
			n.Attrs, err = p.props()
		}
		if err == nil {
			err = p.expect(")")
		}
		if err == nil {
			err = p.end()
		}
		if err != nil {
			return nil, nil, err
		}
		return n, nil, nil
	}

	e := &graph.Edge{Source: id}
	var err error
	if err = p.expect(")-({"); err == nil {
		e.Label, err = p.quoted()
	}
	if err == nil {
		err = p.expect("}")
	}
	if err == nil {
		e.Attrs, err = p.props()
	}
	if err == nil {
		err = p.expect(")->(")
	}
	if err == nil {
		if e.Target = p.ident(); e.Target == "" {
			err = fmt.Errorf("missing target at column %d", p.i+1)
		}
	}
	if err == nil {
		err = p.expect(")")
	}
	if err == nil {
		err = p.end()
	}
	if err != nil {
		return nil, nil, err
	}
	return nil, e, nil
}

func (p *yarsParser) peek(lit string) bool {
	return strings.HasPrefix(p.s[p.i:], lit)
}

func (p *yarsParser) expect(lit string) error {
	if !p.peek(lit) {
		return fmt.Errorf("expected %q at column %d", lit, p.i+1)
	}
	p.i += len(lit)
	return nil
}

func (p *yarsParser) end() error {
	if p.i != len(p.s) {
		return fmt.Errorf("unexpected %q at column %d", p.s[p.i:], p.i+1)
	}
	return nil
}

func (p *yarsParser) ident() string {
	start := p.i
	for p.i < len(p.s) && p.s[p.i] != ' ' && p.s[p.i] != ')' {
		p.i++
	}
	return p.s[start:p.i]
}

func (p *yarsParser) quoted() (string, error) {
	if err := p.expect(`"`); err != nil {
		return "", err
	}
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		p.i++
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if p.i >= len(p.s) {
				return "", fmt.Errorf("dangling escape")
			}
			esc := p.s[p.i]
			p.i++
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '\\', '"':
				b.WriteByte(esc)
			default:
				return "", fmt.Errorf("unknown escape \\%c at column %d", esc, p.i)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *yarsParser) props() (graph.Attributes, error) {
	if !p.peek("[") {
		return nil, nil
	}
	p.i++
	var attrs graph.Attributes
	for {
		key, err := p.quoted()
		if err != nil {
			return nil, err
		}
		if err := p.expect(": "); err != nil {
			return nil, err
		}
		value, err := p.quoted()
		if err != nil {
			return nil, err
		}
		attrs.Add(key, value)
		if p.peek(", ") {
			p.i += 2
			continue
		}
		return attrs, p.expect("]")
	}
}
