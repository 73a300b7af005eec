// Package category defines the closed vocabulary of output categories and
// resolves the show/disable selection into a filter set.
//
// Every normalized node, edge and reference alias carries exactly one
// [Category]. The pipeline resolves the user's selection once with [Resolve]
// and passes the resulting [Set] to every normalizer and to the filter that
// guards the assembler.
//
// Resolution rules:
//   - the base set is the explicit show list when one is given, otherwise
//     [Defaults] (everything except the local-ref, usages and broader
//     relations, which CSV relation tables supersede)
//   - every category in the disable list is then removed, so a category that
//     is both shown and disabled ends up disabled
package category

import (
	"slices"
	"strings"

	"github.com/mmlkg/mizgra/pkg/errors"
)

// Category names one class of graph elements.
type Category string

const (
	Filenames         Category = "filenames"
	Nodes             Category = "nodes"
	Metadata          Category = "metadata"
	MemberRelations   Category = "member-relations"
	LocalRefRelations Category = "local-ref-relations"
	UsagesRelations   Category = "usages-relations"
	BroaderRelations  Category = "broader-relations"
	CSVRelations      Category = "csv-relations"
	RDFRelations      Category = "rdf-relations"
)

// All lists every category in canonical order.
var All = []Category{
	Filenames,
	Nodes,
	Metadata,
	MemberRelations,
	LocalRefRelations,
	UsagesRelations,
	BroaderRelations,
	CSVRelations,
	RDFRelations,
}

// DisabledByDefault lists the categories left out unless explicitly shown.
var DisabledByDefault = []Category{LocalRefRelations, UsagesRelations, BroaderRelations}

// Valid reports whether c belongs to the vocabulary.
func (c Category) Valid() bool {
	return slices.Contains(All, c)
}

// Parse converts a name into a Category.
func Parse(name string) (Category, error) {
	c := Category(strings.TrimSpace(name))
	if !c.Valid() {
		return "", errors.New(errors.ErrCodeInvalidCategory,
			"unknown category %q (must be one of: %s)", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the names of all categories in canonical order.
func Names() []string {
	names := make([]string, len(All))
	for i, c := range All {
		names[i] = string(c)
	}
	return names
}

// Set is an immutable membership set of categories. The zero value is empty.
type Set struct {
	bits uint16
}

func bit(c Category) uint16 {
	i := slices.Index(All, c)
	if i < 0 {
		return 0
	}
	return 1 << i
}

// NewSet builds a set from the given categories.
func NewSet(cs ...Category) Set {
	var s Set
	for _, c := range cs {
		s.bits |= bit(c)
	}
	return s
}

// Defaults returns the default-enabled set.
func Defaults() Set {
	s := NewSet(All...)
	for _, c := range DisabledByDefault {
		s.bits &^= bit(c)
	}
	return s
}

// Has reports whether c is in the set.
func (s Set) Has(c Category) bool {
	b := bit(c)
	return b != 0 && s.bits&b != 0
}

// Any reports whether at least one of cs is in the set.
func (s Set) Any(cs ...Category) bool {
	for _, c := range cs {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Empty reports whether the set has no members.
func (s Set) Empty() bool { return s.bits == 0 }

// Without returns a copy of s with cs removed.
func (s Set) Without(cs ...Category) Set {
	for _, c := range cs {
		s.bits &^= bit(c)
	}
	return s
}

// List returns the members in canonical order.
func (s Set) List() []Category {
	var out []Category
	for _, c := range All {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String joins the member names with commas.
func (s Set) String() string {
	list := s.List()
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

// Resolve computes the effective set from the show and disable lists.
// Entries may be comma-separated. Unknown names are an error.
func Resolve(show, disable []string) (Set, error) {
	shown, err := parseList(show)
	if err != nil {
		return Set{}, err
	}
	disabled, err := parseList(disable)
	if err != nil {
		return Set{}, err
	}

	base := Defaults()
	if len(shown) > 0 {
		base = NewSet(shown...)
	}
	return base.Without(disabled...), nil
}

func parseList(values []string) ([]Category, error) {
	var out []Category
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			c, err := Parse(name)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}
