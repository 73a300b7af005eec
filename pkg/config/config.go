// Package config loads mizgra settings from TOML.
//
// The embedded defaults.toml holds the default flag values and the relation
// rules. A user config file is overlaid key by key: a key that the file sets
// replaces the default, everything else keeps its default value. Command-line
// flags are applied on top by the CLI.
//
//	[output]
//	format = "yarspg"
//	show = ["nodes", "member-relations", "usages-relations"]
//
//	[[usages]]
//	source = "Theorem-Reference"
//	attribute = "MMLId"
//	target = "Theorem-Item"
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mmlkg/mizgra/pkg/category"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/serialize"
	"github.com/mmlkg/mizgra/pkg/source/esx"
	"github.com/mmlkg/mizgra/pkg/source/rdf"
)

//go:embed defaults.toml
var defaultsTOML string

// Config is the complete set of file-configurable settings.
type Config struct {
	Output  Output            `toml:"output"`
	Sources Sources           `toml:"sources"`
	Cache   Cache             `toml:"cache"`
	Usages  []esx.UsageRule   `toml:"usages"`
	Broader []esx.BroaderRule `toml:"broader"`
}

// Output selects the output syntax and the categories to emit.
type Output struct {
	Format  string   `toml:"format"`
	Show    []string `toml:"show"`
	Disable []string `toml:"disable"`
}

// Sources names the optional auxiliary inputs.
type Sources struct {
	Metadata    string   `toml:"metadata"`
	CSV         []string `toml:"csv"`
	CSVValidate bool     `toml:"csv_validate"`
	CSVEntities bool     `toml:"csv_entities"`
	RDF         string   `toml:"rdf"`
	RDFFormat   string   `toml:"rdf_format"`
}

// Cache configures the response cache for RDF URLs. Both Dir and Redis empty
// disables caching.
type Cache struct {
	Dir    string   `toml:"dir"`
	Redis  string   `toml:"redis"`
	Prefix string   `toml:"prefix"`
	TTL    Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("24h", "90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the embedded defaults.
func Default() *Config {
	var c Config
	if _, err := toml.Decode(defaultsTOML, &c); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return &c
}

// Load returns the defaults overlaid with the file at path. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "config %s", path)
	}
	if err := c.merge(string(data)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return c, nil
}

// merge decodes doc and copies every key it defines into c.
func (c *Config) merge(doc string) error {
	var f Config
	md, err := toml.Decode(doc, &f)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}

	pick(md, &c.Output.Format, f.Output.Format, "output", "format")
	pick(md, &c.Output.Show, f.Output.Show, "output", "show")
	pick(md, &c.Output.Disable, f.Output.Disable, "output", "disable")

	pick(md, &c.Sources.Metadata, f.Sources.Metadata, "sources", "metadata")
	pick(md, &c.Sources.CSV, f.Sources.CSV, "sources", "csv")
	pick(md, &c.Sources.CSVValidate, f.Sources.CSVValidate, "sources", "csv_validate")
	pick(md, &c.Sources.CSVEntities, f.Sources.CSVEntities, "sources", "csv_entities")
	pick(md, &c.Sources.RDF, f.Sources.RDF, "sources", "rdf")
	pick(md, &c.Sources.RDFFormat, f.Sources.RDFFormat, "sources", "rdf_format")

	pick(md, &c.Cache.Dir, f.Cache.Dir, "cache", "dir")
	pick(md, &c.Cache.Redis, f.Cache.Redis, "cache", "redis")
	pick(md, &c.Cache.Prefix, f.Cache.Prefix, "cache", "prefix")
	pick(md, &c.Cache.TTL, f.Cache.TTL, "cache", "ttl")

	pick(md, &c.Usages, f.Usages, "usages")
	pick(md, &c.Broader, f.Broader, "broader")
	return nil
}

func pick[T any](md toml.MetaData, dst *T, v T, key ...string) {
	if md.IsDefined(key...) {
		*dst = v
	}
}

// Rules returns the relation rules.
func (c *Config) Rules() esx.Rules {
	return esx.Rules{Usages: c.Usages, Broader: c.Broader}
}

// Validate checks values that the type system cannot.
func (c *Config) Validate() error {
	if _, err := serialize.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := category.Resolve(c.Output.Show, c.Output.Disable); err != nil {
		return err
	}
	if c.Sources.RDFFormat != "" {
		if _, err := rdf.ParseFormat(c.Sources.RDFFormat); err != nil {
			return err
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	return c.Rules().Validate()
}
