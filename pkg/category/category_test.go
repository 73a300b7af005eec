package category

import (
	"testing"

	"github.com/mmlkg/mizgra/pkg/errors"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	for _, c := range DisabledByDefault {
		if d.Has(c) {
			t.Errorf("Defaults() has %s, want it disabled", c)
		}
	}
	for _, c := range []Category{Filenames, Nodes, Metadata, MemberRelations, CSVRelations, RDFRelations} {
		if !d.Has(c) {
			t.Errorf("Defaults() missing %s", c)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		show    []string
		disable []string
		want    string
	}{
		{
			name: "defaults",
			want: "filenames,nodes,metadata,member-relations,csv-relations,rdf-relations",
		},
		{
			name: "show overrides defaults",
			show: []string{"metadata", "member-relations"},
			want: "metadata,member-relations",
		},
		{
			name: "show comma separated",
			show: []string{"metadata,member-relations"},
			want: "metadata,member-relations",
		},
		{
			name: "show default-disabled category",
			show: []string{"usages-relations"},
			want: "usages-relations",
		},
		{
			name:    "disable from defaults",
			disable: []string{"nodes", "rdf-relations"},
			want:    "filenames,metadata,member-relations,csv-relations",
		},
		{
			name:    "disable wins over show",
			show:    []string{"nodes", "broader-relations"},
			disable: []string{"broader-relations"},
			want:    "nodes",
		},
		{
			name:    "everything disabled",
			show:    []string{"nodes"},
			disable: []string{"nodes"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.show, tt.disable)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Resolve() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve([]string{"nodes", "edges"}, nil)
	if err == nil {
		t.Fatal("Resolve() with unknown category should fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidCategory) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidCategory)
	}

	if _, err := Resolve(nil, []string{"Nodes"}); err == nil {
		t.Error("category names should be case-sensitive")
	}
}

func TestSetOperations(t *testing.T) {
	s := NewSet(Nodes, CSVRelations)

	if !s.Has(Nodes) || !s.Has(CSVRelations) {
		t.Errorf("NewSet() = %v, missing members", s)
	}
	if s.Has(Metadata) {
		t.Error("Has(metadata) = true, want false")
	}
	if s.Has(Category("bogus")) {
		t.Error("Has(bogus) = true, want false")
	}
	if !s.Any(Metadata, Nodes) {
		t.Error("Any(metadata, nodes) = false, want true")
	}
	if s.Any(Metadata, Filenames) {
		t.Error("Any(metadata, filenames) = true, want false")
	}

	w := s.Without(Nodes)
	if w.Has(Nodes) {
		t.Error("Without(nodes) still has nodes")
	}
	if !s.Has(Nodes) {
		t.Error("Without must not modify the receiver")
	}
	if !NewSet().Empty() {
		t.Error("NewSet() should be empty")
	}
}

func TestParse(t *testing.T) {
	for _, name := range Names() {
		c, err := Parse(name)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", name, err)
		}
		if string(c) != name {
			t.Errorf("Parse(%q) = %q", name, c)
		}
	}
	if _, err := Parse(" nodes "); err != nil {
		t.Errorf("Parse should trim whitespace: %v", err)
	}
}
