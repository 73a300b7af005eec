package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
)

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader("tarski\r\n\nxboole_0\n  boole  \ntarski\n"), nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []string{"tarski", "xboole_0", "boole"}
	if !slices.Equal(m.Articles, want) {
		t.Errorf("Articles = %v, want %v", m.Articles, want)
	}
	if m.Stats.Read != 3 || m.Stats.Skipped != 1 {
		t.Errorf("Stats = %+v, want 3 read 1 skipped", m.Stats)
	}
	if i, ok := m.Order("boole"); !ok || i != 3 {
		t.Errorf("Order(boole) = %d, %v, want 3", i, ok)
	}
	if m.Contains("absent") {
		t.Error("Contains(absent) = true")
	}

	var seen []string
	for i, name := range m.All() {
		if j, _ := m.Order(name); j != i {
			t.Errorf("All() yielded %d for %s, want %d", i, name, j)
		}
		seen = append(seen, name)
	}
	if !slices.Equal(seen, want) {
		t.Errorf("All() = %v, want %v", seen, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only blank lines", "\n  \n\n"},
		{"only unsafe names", "../secret\ntar ski\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), nil)
			if !errors.Is(err, errors.ErrCodeInvalidManifest) {
				t.Errorf("Parse() error = %v, want %s", err, errors.ErrCodeInvalidManifest)
			}
		})
	}
}

func TestParseSkipsUnsafeNames(t *testing.T) {
	in := "tarski\n../secret\ntar ski\nnew:art\na--b\nxboole_0\n"
	m, err := Parse(strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if want := []string{"tarski", "xboole_0"}; !slices.Equal(m.Articles, want) {
		t.Errorf("Articles = %v, want %v", m.Articles, want)
	}
	if m.Stats.Read != 2 || m.Stats.Skipped != 4 {
		t.Errorf("Stats = %+v, want 2 read 4 skipped", m.Stats)
	}
	if i, _ := m.Order("xboole_0"); i != 2 {
		t.Errorf("Order(xboole_0) = %d, want 2", i)
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mml.lar")
	if err := os.WriteFile(path, []byte("tarski\nxboole_0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Read(path, nil)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	_, err = Read(filepath.Join(dir, "missing.lar"), nil)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Read(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
	if !strings.Contains(err.Error(), "missing.lar") {
		t.Errorf("error %q should name the path", err)
	}
}

func TestNormalize(t *testing.T) {
	items := Normalize("tarski", 1, category.Defaults())
	if len(items) != 1 || items[0].Node == nil {
		t.Fatalf("Normalize() = %v, want one node", items)
	}
	n := items[0].Node
	if n.ID != "tarski" || n.Kind != graph.KindArticle || n.Category != category.Filenames {
		t.Errorf("node = %+v", n)
	}
	if v, _ := n.Attrs.Get("order"); v != "1" {
		t.Errorf("order = %q, want 1", v)
	}

	if items := Normalize("tarski", 1, category.NewSet(category.Nodes)); len(items) != 0 {
		t.Errorf("Normalize() without filenames = %v, want none", items)
	}
}
