package esx

import (
	"fmt"
	"strings"
)

// UsageRule links every element tagged Source to the elements matching
// Target whose Attribute carries the same value. The value names the article
// that holds the target (see source.ArticleFromMMLID).
type UsageRule struct {
	Source    string `toml:"source"`
	Attribute string `toml:"attribute"`
	Target    string `toml:"target"`
}

// BroaderRule links an element matching Source to the Source elements named
// by the Target elements found under Source's parent.
type BroaderRule struct {
	Source    string `toml:"source"`
	Attribute string `toml:"attribute"`
	Target    string `toml:"target"`
}

// Rules is the relation rule set applied to every article.
type Rules struct {
	Usages  []UsageRule   `toml:"usages"`
	Broader []BroaderRule `toml:"broader"`
}

// Validate checks every rule for empty fields and malformed paths.
func (r Rules) Validate() error {
	for i, u := range r.Usages {
		if err := checkRule(u.Source, u.Attribute, u.Target); err != nil {
			return fmt.Errorf("usages rule %d: %w", i, err)
		}
		if strings.Contains(u.Source, "/") {
			return fmt.Errorf("usages rule %d: source must be a tag name, got %q", i, u.Source)
		}
	}
	for i, b := range r.Broader {
		if err := checkRule(b.Source, b.Attribute, b.Target); err != nil {
			return fmt.Errorf("broader rule %d: %w", i, err)
		}
	}
	return nil
}

func checkRule(src, attr, target string) error {
	if src == "" || attr == "" || target == "" {
		return fmt.Errorf("source, attribute and target are required")
	}
	for _, p := range []string{src, target} {
		if strings.Count(p, "/") > 1 || strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
			return fmt.Errorf("path %q must be tag or parent/tag", p)
		}
	}
	return nil
}

// path matches an element by tag and, optionally, its parent's tag.
type path struct {
	parent string
	tag    string
}

func parsePath(s string) path {
	if parent, tag, ok := strings.Cut(s, "/"); ok {
		return path{parent: parent, tag: tag}
	}
	return path{tag: s}
}

func (p path) matches(e *Element) bool {
	if e.Tag != p.tag {
		return false
	}
	if p.parent == "" {
		return true
	}
	return e.Parent != nil && e.Parent.Tag == p.parent
}
