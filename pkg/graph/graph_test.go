package graph

import (
	"errors"
	"testing"

	"github.com/mmlkg/mizgra/pkg/category"
)

func TestGraphAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) error: %v", err)
	}

	tests := []struct {
		name string
		node Node
		want error
	}{
		{"empty id", Node{}, ErrInvalidNodeID},
		{"reference id", Node{ID: Ref("notion", "a")}, ErrInvalidNodeID},
		{"duplicate", Node{ID: "a"}, ErrDuplicateNodeID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddNode(tt.node); !errors.Is(err, tt.want) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.want)
			}
		})
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", g.NodeCount())
	}
}

func TestGraphAddEdge(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	if err := g.AddEdge(Edge{Source: "a", Target: "b"}); err != nil {
		t.Errorf("AddEdge(a, b) error: %v", err)
	}
	if err := g.AddEdge(Edge{Source: "x", Target: "b"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x, b) error = %v, want %v", err, ErrUnknownSourceNode)
	}
	if err := g.AddEdge(Edge{Source: "a", Target: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a, x) error = %v, want %v", err, ErrUnknownTargetNode)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
}

func TestAttributes(t *testing.T) {
	var a Attributes
	if !a.Add("k", "v") {
		t.Error("Add(k) on empty list = false")
	}
	if a.Add("k", "other") {
		t.Error("Add(k) twice = true, want false")
	}
	if v, ok := a.Get("k"); !ok || v != "v" {
		t.Errorf("Get(k) = %q, %v", v, ok)
	}
	if _, ok := a.Get("missing"); ok {
		t.Error("Get(missing) found a value")
	}

	c := a.Clone()
	c[0].Value = "changed"
	if a[0].Value != "v" {
		t.Error("Clone shares storage with the original")
	}
	if a.Equal(c) {
		t.Error("Equal() = true for different values")
	}
	if Attributes(nil).Clone() != nil {
		t.Error("Clone(nil) should stay nil")
	}
}

func TestItemCategory(t *testing.T) {
	tests := []struct {
		item Item
		want category.Category
	}{
		{NodeItem(Node{ID: "a", Category: category.Nodes}), category.Nodes},
		{EdgeItem(Edge{Category: category.CSVRelations}), category.CSVRelations},
		{AliasItem(Alias{Category: category.RDFRelations}), category.RDFRelations},
		{Item{}, ""},
	}
	for _, tt := range tests {
		if got := tt.item.Category(); got != tt.want {
			t.Errorf("Category() = %q, want %q", got, tt.want)
		}
	}
}

func TestRef(t *testing.T) {
	r := Ref("usage", "Theorem-Item|MMLId|TARSKI:1")
	if r != "@usage:Theorem-Item|MMLId|TARSKI:1" {
		t.Errorf("Ref() = %q", r)
	}
	if !IsRef(r) || IsRef("tarskiNx1") {
		t.Error("IsRef misclassifies ids")
	}
}
