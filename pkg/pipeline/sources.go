package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/observability"
	"github.com/mmlkg/mizgra/pkg/source"
	"github.com/mmlkg/mizgra/pkg/source/csvrel"
	"github.com/mmlkg/mizgra/pkg/source/esx"
	"github.com/mmlkg/mizgra/pkg/source/manifest"
	"github.com/mmlkg/mizgra/pkg/source/metadata"
	"github.com/mmlkg/mizgra/pkg/source/rdf"
)

// build is the state of one Build call: the assembler plus the category
// filter in front of it.
type build struct {
	ctx    context.Context
	opts   *Options
	cats   category.Set
	logger *log.Logger
	hooks  observability.PipelineHooks
	asm    *graph.Assembler

	stats    []source.Stats
	filtered int
}

func newBuild(ctx context.Context, opts *Options) *build {
	return &build{
		ctx:    ctx,
		opts:   opts,
		cats:   opts.Categories(),
		logger: opts.Logger,
		hooks:  observability.Pipeline(),
		asm:    graph.NewAssembler(opts.Logger),
	}
}

// add passes the items of enabled categories to the assembler.
func (b *build) add(items ...graph.Item) {
	for _, it := range items {
		if !b.cats.Has(it.Category()) {
			b.filtered++
			continue
		}
		b.asm.Add(it)
	}
}

// begin reports the start of a source and returns the matching completion
// callback.
func (b *build) begin(name string) func(source.Stats, error) {
	b.hooks.OnSourceStart(b.ctx, name)
	start := time.Now()
	return func(st source.Stats, err error) {
		elapsed := time.Since(start)
		b.hooks.OnSourceComplete(b.ctx, name, st.Read, st.Skipped, elapsed, err)
		b.stats = append(b.stats, st)
		b.logger.Debug("source done", "source", name, "read", st.Read, "skipped", st.Skipped, "duration", elapsed)
	}
}

func (b *build) metadata() {
	if !b.cats.Has(category.Metadata) {
		return
	}
	done := b.begin("metadata")
	st := source.Stats{Name: "metadata"}

	doc, err := metadata.Read(b.opts.Metadata, b.opts.Today)
	if err != nil {
		b.logger.Warn("skipping metadata", "path", b.opts.Metadata, "err", err)
		st.Failed = true
		done(st, err)
		return
	}
	st.Read = len(doc.Entries)
	if doc.Skipped > 0 {
		st.Skipped = doc.Skipped
		b.logger.Warn("skipped metadata entries with unwritable text", "path", b.opts.Metadata, "count", doc.Skipped)
	}
	b.add(metadata.Normalize(doc)...)
	done(st, nil)
}

// articles emits each article node followed by the items of its record, in
// library order. Records are not opened when no ESX category is enabled.
func (b *build) articles(m *manifest.Manifest) {
	var reader *esx.Reader
	var norm *esx.Normalizer
	if b.cats.Any(esx.Categories...) {
		reader = esx.NewReader(b.opts.ESXDir, b.logger)
		norm = esx.NewNormalizer(*b.opts.Rules, b.cats)
	}

	done := b.begin("esx")
	for order, name := range m.All() {
		if b.ctx.Err() != nil {
			break
		}
		b.add(manifest.Normalize(name, order, b.cats)...)
		if reader == nil {
			continue
		}
		if a := reader.Article(name, order); a != nil {
			for it := range norm.Normalize(a) {
				b.add(it)
			}
		}
	}
	if reader != nil {
		done(reader.Stats, b.ctx.Err())
	} else {
		done(source.Stats{Name: "esx"}, b.ctx.Err())
	}
}

func (b *build) csv(m *manifest.Manifest) {
	if len(b.opts.CSV) == 0 || !b.cats.Has(category.CSVRelations) {
		return
	}
	done := b.begin("csv")

	r := csvrel.NewReader(b.opts.CSV, b.logger)
	r.Validate = b.opts.CSVValidate
	r.Manifest = m
	for row := range r.Rows(b.ctx) {
		b.add(csvrel.Normalize(row, b.opts.CSVEntities)...)
	}
	done(r.Stats, b.ctx.Err())
}

// rdf normalizes the statements of a loaded RDF document. A load failure
// marks the source failed and contributes nothing.
func (b *build) rdf(doc *rdf.Document, loadErr error) {
	done := b.begin("rdf")
	st := source.Stats{Name: "rdf"}
	if loadErr != nil {
		st.Failed = true
		done(st, loadErr)
		return
	}

	for t, err := range rdf.Decode(doc.Data, doc.Format) {
		if b.ctx.Err() != nil {
			break
		}
		if err != nil {
			st.Skip(b.logger, "skipping RDF statement", "location", doc.Location, "err", err)
			continue
		}
		items := rdf.Normalize(t)
		if items == nil {
			st.Skip(b.logger, "skipping RDF statement that cannot be attached", "subject", t.Subject, "predicate", t.Predicate)
			continue
		}
		st.Read++
		b.add(items...)
	}
	done(st, b.ctx.Err())
}
