package esx

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/source/manifest"
)

const tarskiESX = `<?xml version="1.0" encoding="UTF-8"?>
<Text-Proper articleid="TARSKI" xmlid="x1">
  <Item kind="Definition-Item" xmlid="x2">
    <Label serialnr="1" xmlid="x3"/>
    <Notion-Name inscription="Set" xmlid="x4"/>
  </Item>
  <Item kind="Theorem-Item" xmlid="x5">
    <Theorem-Item MMLId="TARSKI:1" xmlid="x6"/>
    <Local-Reference serialnr="1" xmlid="x7"/>
    <Theorem-Reference MMLId="TARSKI:1" xmlid="x8"/>
  </Item>
  <Pragma/>
</Text-Proper>
`

const structESX = `<Text-Proper xmlid="x1">
<Structure-Definition xmlid="x2">
<Ancestors xmlid="x3"><Struct-Type absolutepatternMMLId="STRUCT_0:1" xmlid="x4"/></Ancestors>
<Structure-Pattern absolutepatternMMLId="STRUCT_0:2" xmlid="x5"/>
</Structure-Definition>
<Structure-Definition xmlid="x6">
<Structure-Pattern absolutepatternMMLId="STRUCT_0:1" xmlid="x7"/>
</Structure-Definition>
</Text-Proper>`

var testRules = Rules{
	Usages: []UsageRule{{Source: "Theorem-Reference", Attribute: "MMLId", Target: "Theorem-Item"}},
	Broader: []BroaderRule{{
		Source:    "Structure-Definition/Structure-Pattern",
		Attribute: "absolutepatternMMLId",
		Target:    "Ancestors/Struct-Type",
	}},
}

func parseArticle(t *testing.T, name, doc string) *Article {
	t.Helper()
	root, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse(%s) error: %v", name, err)
	}
	return &Article{Name: name, Order: 1, Root: root}
}

func assemble(items ...[]graph.Item) (*graph.Graph, graph.Report) {
	asm := graph.NewAssembler(nil)
	for _, list := range items {
		for _, it := range list {
			asm.Add(it)
		}
	}
	return asm.Finish()
}

func edgesWithLabel(g *graph.Graph, label string) []string {
	var out []string
	for _, e := range g.Edges() {
		if e.Label == label {
			out = append(out, e.Source+"->"+e.Target)
		}
	}
	return out
}

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(tarskiESX))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if root.Tag != "Text-Proper" || root.Line != 2 {
		t.Errorf("root = %s line %d, want Text-Proper line 2", root.Tag, root.Line)
	}
	if len(root.Children) != 3 {
		t.Fatalf("root children = %d, want 3", len(root.Children))
	}
	label := root.Children[0].Children[0]
	if label.Tag != "Label" || label.Line != 4 || label.Attr("serialnr") != "1" {
		t.Errorf("label = %+v", label)
	}
	if label.Parent != root.Children[0] {
		t.Error("parent link not set")
	}

	var tags []string
	for el := range root.Walk() {
		tags = append(tags, el.Tag)
	}
	want := []string{"Text-Proper", "Item", "Label", "Notion-Name", "Item", "Theorem-Item", "Local-Reference", "Theorem-Reference", "Pragma"}
	if !slices.Equal(tags, want) {
		t.Errorf("Walk() = %v, want %v", tags, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"unclosed":       "<a><b></a>",
		"multiple roots": "<a/><b/>",
		"text only":      "hello",
		"control char":   `<a k="x&#127;"/>`,
	}
	for name, doc := range tests {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Errorf("Parse(%s) succeeded, want error", name)
		}
	}

	_, err := Parse(strings.NewReader(`<a><b k="v&#127;"/></a>`))
	if !errors.Is(err, ErrUnwritableText) {
		t.Errorf("Parse() error = %v, want ErrUnwritableText", err)
	}
}

func TestNormalizeUnsafeXMLID(t *testing.T) {
	a := parseArticle(t, "tarski", `<Text-Proper xmlid="x1"><Item xmlid="new:x2"/><Item xmlid=""/></Text-Proper>`)
	n := NewNormalizer(testRules, category.NewSet(category.Nodes))

	var ids []string
	for it := range n.Normalize(a) {
		if it.Node != nil {
			ids = append(ids, it.Node.ID)
		}
	}
	want := []string{"tarskiNx1", "tarskiN_2", "tarskiN_3"}
	if !slices.Equal(ids, want) {
		t.Errorf("node ids = %v, want %v", ids, want)
	}
}

func TestNormalizeNodesAndMembers(t *testing.T) {
	a := parseArticle(t, "tarski", tarskiESX)
	n := NewNormalizer(testRules, category.NewSet(category.Nodes, category.MemberRelations))
	items := slices.Collect(n.Normalize(a))

	var root *graph.Node
	var nodes int
	for _, it := range items {
		if it.Node != nil {
			nodes++
			if it.Node.ID == "tarskiNx1" {
				root = it.Node
			}
		}
	}
	if nodes != 9 {
		t.Errorf("nodes = %d, want 9", nodes)
	}
	if root == nil {
		t.Fatal("root node tarskiNx1 missing")
	}
	wantAttrs := []string{"articleid", "xmlid", "notation", "uuid"}
	var got []string
	for _, kv := range root.Attrs {
		got = append(got, kv.Key)
	}
	if !slices.Equal(got, wantAttrs) {
		t.Errorf("root attrs = %v, want %v", got, wantAttrs)
	}
	if v, _ := root.Attrs.Get("notation"); v != "m.1.2" {
		t.Errorf("notation = %q, want m.1.2", v)
	}

	g, _ := assemble(items, []graph.Item{graph.NodeItem(graph.Node{ID: "tarski", Kind: graph.KindArticle, Category: category.Filenames})})
	members := edgesWithLabel(g, LabelMember)
	if len(members) != 9 {
		t.Errorf("MEMBER edges = %d, want 9: %v", len(members), members)
	}
	if members[0] != "tarskiNx1->tarski" {
		t.Errorf("first MEMBER = %s, want root linked to its article", members[0])
	}
	if !slices.Contains(members, "tarskiN_9->tarskiNx1") {
		t.Errorf("anonymous element edge missing: %v", members)
	}
}

func TestNormalizeRespectsCategories(t *testing.T) {
	a := parseArticle(t, "tarski", tarskiESX)
	n := NewNormalizer(testRules, category.Defaults())
	for it := range n.Normalize(a) {
		c := it.Category()
		if c == category.LocalRefRelations || c == category.UsagesRelations || c == category.BroaderRelations {
			t.Errorf("default categories produced %s item", c)
		}
	}

	none := NewNormalizer(testRules, category.NewSet(category.Metadata))
	if items := slices.Collect(none.Normalize(a)); len(items) != 0 {
		t.Errorf("unrelated categories produced %d items", len(items))
	}
}

func TestNormalizeLocalReferences(t *testing.T) {
	a := parseArticle(t, "tarski", tarskiESX)
	n := NewNormalizer(testRules, category.NewSet(category.Nodes, category.LocalRefRelations))
	g, _ := assemble(slices.Collect(n.Normalize(a)))

	got := edgesWithLabel(g, LabelRelated)
	if !slices.Equal(got, []string{"tarskiNx7->tarskiNx3"}) {
		t.Errorf("RELATED = %v, want [tarskiNx7->tarskiNx3]", got)
	}
}

func TestNormalizeUsages(t *testing.T) {
	a := parseArticle(t, "tarski", tarskiESX)
	n := NewNormalizer(testRules, category.NewSet(category.Nodes, category.UsagesRelations))
	g, r := assemble(slices.Collect(n.Normalize(a)))

	got := edgesWithLabel(g, LabelRelated)
	if !slices.Equal(got, []string{"tarskiNx8->tarskiNx6"}) {
		t.Errorf("RELATED = %v, want [tarskiNx8->tarskiNx6]", got)
	}
	if r.UnresolvedRefs != 0 {
		t.Errorf("UnresolvedRefs = %d", r.UnresolvedRefs)
	}

	// The same record under another article name holds no TARSKI targets.
	other := parseArticle(t, "boole", tarskiESX)
	g, _ = assemble(slices.Collect(n.Normalize(other)))
	if got := edgesWithLabel(g, LabelRelated); len(got) != 0 {
		t.Errorf("RELATED across wrong article = %v, want none", got)
	}
}

func TestNormalizeBroader(t *testing.T) {
	a := parseArticle(t, "struct_0", structESX)
	n := NewNormalizer(testRules, category.NewSet(category.Nodes, category.BroaderRelations))
	g, _ := assemble(slices.Collect(n.Normalize(a)))

	got := edgesWithLabel(g, LabelBroader)
	if !slices.Equal(got, []string{"struct_0Nx5->struct_0Nx7"}) {
		t.Errorf("BROADER = %v, want [struct_0Nx5->struct_0Nx7]", got)
	}
}

func TestNormalizeNotionAlias(t *testing.T) {
	a := parseArticle(t, "tarski", tarskiESX)
	n := NewNormalizer(testRules, category.NewSet(category.RDFRelations))
	items := slices.Collect(n.Normalize(a))
	if len(items) != 1 || items[0].Alias == nil {
		t.Fatalf("items = %v, want one alias", items)
	}
	if al := items[0].Alias; al.Ref != "@notion:set" || al.Node != "tarskiNx4" {
		t.Errorf("alias = %+v", al)
	}
}

func TestReader(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name+Extension), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("tarski", tarskiESX)
	write("broken", "<Text-Proper><Item></Text-Proper>")

	m, err := manifest.Parse(strings.NewReader("tarski\nbroken\nmissing\n"), nil)
	if err != nil {
		t.Fatal(err)
	}

	r := NewReader(dir, nil)
	var names []string
	for order, name := range m.All() {
		a := r.Article(name, order)
		if a == nil {
			continue
		}
		names = append(names, a.Name)
		if a.Order != 1 {
			t.Errorf("order of %s = %d, want 1", a.Name, a.Order)
		}
	}
	if !slices.Equal(names, []string{"tarski"}) {
		t.Errorf("articles = %v, want [tarski]", names)
	}
	if r.Stats.Read != 1 || r.Stats.Skipped != 2 {
		t.Errorf("Stats = %+v, want 1 read 2 skipped", r.Stats)
	}
}

func TestRulesValidate(t *testing.T) {
	if err := testRules.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	bad := []Rules{
		{Usages: []UsageRule{{Source: "A", Attribute: "", Target: "B"}}},
		{Usages: []UsageRule{{Source: "P/A", Attribute: "x", Target: "B"}}},
		{Broader: []BroaderRule{{Source: "a/b/c", Attribute: "x", Target: "B"}}},
		{Broader: []BroaderRule{{Source: "A", Attribute: "x", Target: "/B"}}},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("rules %d: Validate() succeeded, want error", i)
		}
	}
}
