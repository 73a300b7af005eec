package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/config"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/pipeline"
	"github.com/mmlkg/mizgra/pkg/serialize"
	"github.com/mmlkg/mizgra/pkg/source/rdf"
)

// convertFlags holds the flag values of one invocation. Only flags the user
// sets override the config file.
type convertFlags struct {
	format      string
	out         string
	show        []string
	disable     []string
	metadata    string
	csv         []string
	csvValidate bool
	csvEntities bool
	rdf         string
	rdfFormat   string
	date        string
	config      string
	cacheDir    string
	redis       string
}

// convertCommand creates the conversion command. RootCommand turns it into
// the mizgra root.
func (c *CLI) convertCommand() *cobra.Command {
	flags := convertFlags{}

	cmd := &cobra.Command{
		Use:   "mizgra [flags] ESXMML MMLLAR",
		Short: "Convert the Mizar ESX MML into a property graph",
		Long: `Convert the Mizar Mathematical Library into a property graph.

ESXMML is the directory of ESX article files (<article>.esx) and MMLLAR the
mml.lar manifest that lists the articles in library order. The graph is
written as GraphML or YARS-PG to stdout or to --out.

Categories:
  ` + strings.Join(category.Names(), ", ") + `
By default every category except ` + strings.Join(categoryNames(category.DisabledByDefault), ", ") + ` is shown.
--show and --disable take a comma-separated list or repeat:
  -s metadata,member-relations
  -s metadata -s member-relations
Space-separated values are read as positional arguments.`,
		Example: `  # GraphML of the whole library
  mizgra esx_mml mml.lar > mml.graphml

  # YARS-PG with usages relations and a CSV relation table
  mizgra -o yarspg -s nodes,usages-relations -c relations.csv --csv-validate esx_mml mml.lar

  # Attach notions from a remote RDF vocabulary, cached for a day
  mizgra -r https://example.org/notions.ttl --cache-dir ~/.cache/mizgra esx_mml mml.lar`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, &flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.format, "output", "o", string(serialize.DefaultFormat), "output format: "+strings.Join(serialize.FormatNames(), ", "))
	f.StringVar(&flags.out, "out", "", "output file (default stdout)")
	f.StringSliceVarP(&flags.show, "show", "s", nil, "categories to show (repeat or comma-separate)")
	f.StringSliceVarP(&flags.disable, "disable", "d", nil, "categories to disable; wins over --show")
	f.StringVarP(&flags.metadata, "metadata", "m", "", "metadata XML file (default: embedded document)")
	f.StringSliceVarP(&flags.csv, "csv", "c", nil, "CSV relation files or directories")
	f.BoolVar(&flags.csvValidate, "csv-validate", false, "validate CSV files and rows against the manifest")
	f.BoolVar(&flags.csvEntities, "csv-entities", false, "create nodes for CSV endpoints missing from the records")
	f.StringVarP(&flags.rdf, "rdf", "r", "", "RDF file or http(s) URL")
	f.StringVar(&flags.rdfFormat, "rdf-format", "", "RDF format: "+strings.Join(rdf.FormatNames(), ", ")+" (default: detect)")
	f.StringVar(&flags.date, "date", "", "date for CURRENT_DATE in metadata, YYYY-MM-DD (default today)")
	f.StringVar(&flags.config, "config", "", "TOML config file (default ~/.config/mizgra/config.toml if present)")
	f.StringVar(&flags.cacheDir, "cache-dir", "", "cache RDF downloads in this directory")
	f.StringVar(&flags.redis, "redis", "", "cache RDF downloads in redis (redis://host:port/db)")

	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(serialize.FormatNames(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("show", cobra.FixedCompletions(category.Names(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("disable", cobra.FixedCompletions(category.Names(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("rdf-format", cobra.FixedCompletions(rdf.FormatNames(), cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, flags *convertFlags, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	if err := flags.overlay(cmd, cfg); err != nil {
		return err
	}
	opts, err := flags.options(cfg, args)
	if err != nil {
		return err
	}
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := c.newRunner(ctx, cfg.Cache)
	defer runner.Close()

	var w io.Writer = c.Stdout
	var out *atomicFile
	if flags.out != "" {
		if out, err = createAtomic(flags.out); err != nil {
			return err
		}
		defer out.Abort()
		w = out
	}

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, w, opts)
	if err != nil {
		return err
	}
	if out != nil {
		if err := out.Commit(); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Converted %d nodes and %d edges", result.Report.Nodes, result.Report.Edges))

	printSummary(c.Stderr, result, opts.Format, flags.out)
	return nil
}

// loadConfig reads the config file. Without --config, the default location
// is used when a file exists there.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if def, err := configPath(); err == nil {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}
	return config.Load(path)
}

// overlay copies the flags the user set into cfg, then validates the result.
func (f *convertFlags) overlay(cmd *cobra.Command, cfg *config.Config) error {
	set := cmd.Flags().Changed

	if set("output") {
		cfg.Output.Format = f.format
	}
	if set("show") {
		cfg.Output.Show = f.show
	}
	if set("disable") {
		cfg.Output.Disable = f.disable
	}
	if set("metadata") {
		cfg.Sources.Metadata = f.metadata
	}
	if set("csv") {
		cfg.Sources.CSV = f.csv
	}
	if set("csv-validate") {
		cfg.Sources.CSVValidate = f.csvValidate
	}
	if set("csv-entities") {
		cfg.Sources.CSVEntities = f.csvEntities
	}
	if set("rdf") {
		cfg.Sources.RDF = f.rdf
	}
	if set("rdf-format") {
		cfg.Sources.RDFFormat = f.rdfFormat
	}
	if set("cache-dir") {
		cfg.Cache.Dir = f.cacheDir
	}
	if set("redis") {
		cfg.Cache.Redis = f.redis
	}
	return cfg.Validate()
}

// options builds the pipeline options from the merged configuration.
func (f *convertFlags) options(cfg *config.Config, args []string) (pipeline.Options, error) {
	rules := cfg.Rules()
	opts := pipeline.Options{
		ESXDir:      args[0],
		Manifest:    args[1],
		Format:      serialize.Format(cfg.Output.Format),
		Show:        cfg.Output.Show,
		Disable:     cfg.Output.Disable,
		Metadata:    cfg.Sources.Metadata,
		CSV:         cfg.Sources.CSV,
		CSVValidate: cfg.Sources.CSVValidate,
		CSVEntities: cfg.Sources.CSVEntities,
		RDF:         cfg.Sources.RDF,
		RDFFormat:   rdf.Format(cfg.Sources.RDFFormat),
		Rules:       &rules,
	}
	if f.date != "" {
		day, err := time.Parse(time.DateOnly, f.date)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "--date must be YYYY-MM-DD")
		}
		opts.Today = day
	}
	return opts, nil
}

func categoryNames(cs []category.Category) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return names
}
