// Package pkg holds the mizgra libraries.
//
// # Overview
//
// mizgra turns the Mizar Mathematical Library, exported as ESX XML files,
// into a property graph. The libraries are organized by stage:
//
//  1. [source] and its subpackages read the inputs (manifest, ESX
//     articles, metadata, CSV relation tables, RDF) and normalize each
//     record into graph items.
//  2. [category] decides which items are kept.
//  3. [graph] merges the items into one deduplicated graph.
//  4. [serialize] writes the graph as GraphML or YARS-PG.
//  5. [pipeline] runs the stages in a fixed order.
//
// Supporting packages: [config] (TOML settings and relation rules), [cache]
// (remote RDF sources), [errors], [observability] and [buildinfo].
//
// # Architecture
//
//	mml.lar ─┐
//	ESX MML ─┼─→ normalize ─→ category filter ─→ assemble ─→ GraphML / YARS-PG
//	CSV/RDF ─┘
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, os.Stdout, pipeline.Options{
//	    ESXDir:   "esx_mml",
//	    Manifest: "mml.lar",
//	})
package pkg
