// Package pipeline composes the mizgra conversion: read sources, normalize
// records, filter by category, assemble the graph, serialize it.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Build: read the manifest, the ESX records and the optional metadata,
//     CSV and RDF sources; normalize each record into graph items; drop the
//     items whose category is excluded; merge the rest into one graph.
//  2. Serialize: write the graph as GraphML or YARS-PG.
//
// Sources are read in a fixed order (metadata, articles in library order,
// CSV, RDF), so the same inputs always produce the same output.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	opts := pipeline.Options{
//	    ESXDir:   "mml/esx",
//	    Manifest: "mml/mml.lar",
//	    Format:   serialize.FormatYARSPG,
//	}
//	result, err := runner.Execute(ctx, os.Stdout, opts)
//
// Build alone returns the graph without writing it:
//
//	result, err := runner.Build(ctx, opts)
//	fmt.Println(result.Report.Nodes, result.Report.Edges)
package pipeline

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/config"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/serialize"
	"github.com/mmlkg/mizgra/pkg/source"
	"github.com/mmlkg/mizgra/pkg/source/esx"
	"github.com/mmlkg/mizgra/pkg/source/rdf"
)

// =============================================================================
// Options
// =============================================================================

// Options configures one conversion run.
type Options struct {
	// Required inputs
	ESXDir   string // directory of <article>.esx records
	Manifest string // mml.lar

	// Output
	Format  serialize.Format
	Show    []string // categories to show; empty means the defaults
	Disable []string // categories to remove; wins over Show

	// Optional sources
	Metadata    string   // metadata XML; empty uses the embedded document
	CSV         []string // CSV files or directories
	CSVValidate bool
	CSVEntities bool
	RDF         string     // file path or http(s) URL
	RDFFormat   rdf.Format // empty means auto-detect

	// Today replaces CURRENT_DATE in metadata. Zero means the current date.
	Today time.Time

	// Rules are the usages and broader relation rules. Nil uses the
	// embedded defaults.
	Rules *esx.Rules

	Logger *log.Logger

	categories category.Set
	validated  bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. All
// conditions that abort a run are detected here, before any source is read.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.ESXDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "ESX directory is required")
	}
	if err := checkPath(o.ESXDir, true); err != nil {
		return err
	}
	if o.Manifest == "" {
		return errors.New(errors.ErrCodeInvalidInput, "manifest is required")
	}
	if err := checkPath(o.Manifest, false); err != nil {
		return err
	}

	if o.Format == "" {
		o.Format = serialize.DefaultFormat
	}
	f, err := serialize.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f

	if o.categories, err = category.Resolve(o.Show, o.Disable); err != nil {
		return err
	}
	if o.categories.Empty() {
		return errors.New(errors.ErrCodeInvalidCategory, "every category is disabled, nothing to do")
	}

	if o.RDFFormat != "" {
		if o.RDFFormat, err = rdf.ParseFormat(string(o.RDFFormat)); err != nil {
			return err
		}
	}
	if errors.IsURL(o.RDF) {
		if err := errors.ValidateURL(o.RDF); err != nil {
			return err
		}
	}

	if o.Today.IsZero() {
		o.Today = time.Now()
	}
	if o.Rules == nil {
		rules := config.Default().Rules()
		o.Rules = &rules
	}
	if err := o.Rules.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "relation rules")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Categories returns the resolved category set. It is empty until
// ValidateAndSetDefaults succeeds.
func (o *Options) Categories() category.Set {
	return o.categories
}

func checkPath(path string, dir bool) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "%s", path)
	}
	if info.IsDir() != dir {
		if dir {
			return errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", path)
		}
		return errors.New(errors.ErrCodeInvalidPath, "%s is a directory", path)
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the assembled graph.
	Graph *graph.Graph

	// Report holds the assembler's integrity counters.
	Report graph.Report

	// Sources lists per-source record counts in reading order.
	Sources []source.Stats

	// Filtered counts items dropped by the category filter.
	Filtered int

	Stats Stats
}

// Stats contains timing and size information.
type Stats struct {
	BuildTime     time.Duration
	SerializeTime time.Duration
	Bytes         int64
}
