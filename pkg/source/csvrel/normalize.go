package csvrel

import (
	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/source"
)

// EntityLabel is the label of weak endpoint nodes.
const EntityLabel = "CSV-Entity"

// Normalize turns a row into its relation edge. With entities set, weak
// nodes for both endpoints come first; a construct node with the same id
// from the articles replaces them.
func Normalize(row Row, entities bool) []graph.Item {
	src := source.ConstructID(row.SourceFile, row.SourceXMLID)
	dst := source.ConstructID(row.TargetFile, row.TargetXMLID)

	var items []graph.Item
	if entities {
		items = append(items,
			entity(src, row.SourceFile, row.SourceXMLID),
			entity(dst, row.TargetFile, row.TargetXMLID),
		)
	}
	return append(items, graph.EdgeItem(graph.Edge{
		Source:   src,
		Target:   dst,
		Label:    row.Relation,
		Category: category.CSVRelations,
	}))
}

func entity(id, article, xmlid string) graph.Item {
	return graph.NodeItem(graph.Node{
		ID:    id,
		Kind:  graph.KindCSVEntity,
		Label: EntityLabel,
		Attrs: graph.Attributes{
			{Key: "article", Value: article},
			{Key: "xmlid", Value: xmlid},
		},
		Category: category.CSVRelations,
		Weak:     true,
	})
}
