package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mmlkg/mizgra/pkg/cache"
	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/observability"
	"github.com/mmlkg/mizgra/pkg/serialize"
	"github.com/mmlkg/mizgra/pkg/source/manifest"
	"github.com/mmlkg/mizgra/pkg/source/rdf"
)

// Runner executes conversions. The cache only serves RDF sources fetched
// from URLs; a run is otherwise stateless.
//
// A Runner holds no per-run state, so one Runner may serve several runs,
// one after another or concurrently.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute builds the graph and writes it to w in opts.Format. Nothing is
// written when the build fails.
func (r *Runner) Execute(ctx context.Context, w io.Writer, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result, err := r.Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	n, err := r.Serialize(ctx, w, result.Graph, opts.Format)
	if err != nil {
		return nil, err
	}
	result.Stats.Bytes = n
	result.Stats.SerializeTime = time.Since(start)

	opts.Logger.Info("wrote graph",
		"format", opts.Format,
		"bytes", n,
		"duration", result.Stats.SerializeTime)
	return result, nil
}

// Build reads every enabled source and assembles the graph.
func (r *Runner) Build(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	logger := opts.Logger
	cats := opts.Categories()
	logger.Debug("categories", "enabled", cats.String())

	m, err := manifest.Read(opts.Manifest, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("read manifest", "path", opts.Manifest, "articles", m.Len())

	// The RDF source is loaded up front: an undeterminable format aborts the
	// run before any article is parsed.
	var doc *rdf.Document
	var rdfErr error
	rdfWanted := opts.RDF != "" && cats.Has(category.RDFRelations)
	if rdfWanted {
		doc, rdfErr = r.loadRDF(ctx, &opts)
		if errors.Is(rdfErr, errors.ErrCodeInvalidFormat) {
			return nil, rdfErr
		}
		if rdfErr != nil {
			logger.Warn("RDF source unavailable, continuing without it", "location", opts.RDF, "err", rdfErr)
		}
	}

	b := newBuild(ctx, &opts)
	b.stats = append(b.stats, m.Stats)
	b.metadata()
	b.articles(m)
	b.csv(m)
	if rdfWanted {
		b.rdf(doc, rdfErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, report := b.asm.Finish()
	elapsed := time.Since(start)
	observability.Pipeline().OnAssembleComplete(ctx, report.Nodes, report.Edges, report.Warnings(), elapsed)

	logger.Info("assembled graph",
		"nodes", report.Nodes,
		"edges", report.Edges,
		"warnings", report.Warnings(),
		"duration", elapsed)

	return &Result{
		Graph:    g,
		Report:   report,
		Sources:  b.stats,
		Filtered: b.filtered,
		Stats:    Stats{BuildTime: elapsed},
	}, nil
}

// Serialize writes g to w and returns the number of bytes written.
func (r *Runner) Serialize(ctx context.Context, w io.Writer, g *graph.Graph, format serialize.Format) (int64, error) {
	s, err := serialize.New(format)
	if err != nil {
		return 0, err
	}

	hooks := observability.Pipeline()
	hooks.OnSerializeStart(ctx, string(format), g.NodeCount(), g.EdgeCount())
	start := time.Now()

	cw := &countingWriter{w: w}
	err = s.Serialize(cw, g)
	hooks.OnSerializeComplete(ctx, string(format), cw.n, time.Since(start), err)
	return cw.n, err
}

// loadRDF fetches the RDF source through the runner's cache.
func (r *Runner) loadRDF(ctx context.Context, opts *Options) (*rdf.Document, error) {
	l := rdf.NewLoader(opts.Logger)
	l.Cache = cache.Observe(r.Cache, "rdf")
	l.Keyer = r.Keyer
	l.TTL = r.TTL
	return l.Load(ctx, opts.RDF, opts.RDFFormat)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// countingWriter tracks the size of the serialized output.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
