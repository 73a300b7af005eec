// Package graph provides the unified property graph model and the assembler
// that merges normalized items from every source into one graph.
//
// # Core Types
//
//   - [Node]: an article, library construct, CSV entity, RDF resource or
//     metadata entry with an ordered attribute list
//   - [Edge]: a directed, labelled relation between two node ids
//   - [Alias]: a named reference that edges can point at before the node
//     that satisfies it has been seen
//   - [Item]: the tagged variant produced by normalizers
//   - [Graph]: the immutable result, nodes and edges in first-seen order
//
// # Assembly
//
// An [Assembler] receives items one at a time. Nodes with an id already present
// are merged (first writer wins per attribute key, the first kind is kept).
// Edges may name reference aliases ("@namespace:key") instead of node ids;
// aliases are expanded, duplicates collapsed and dangling edges pruned in
// [Assembler.Finish], after every source has been added, so a node added late
// still satisfies an edge added early.
//
//	asm := graph.NewAssembler(logger)
//	for it := range items {
//	    asm.Add(it)
//	}
//	g, report := asm.Finish()
//
// Weak nodes exist only to serve edges: they are dropped when no surviving
// edge references them, and a regular node with the same id absorbs them.
package graph
