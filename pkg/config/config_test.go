package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmlkg/mizgra/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mizgra.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Output.Format != "graphml" {
		t.Errorf("Format = %q, want graphml", c.Output.Format)
	}
	if len(c.Usages) != 13 {
		t.Errorf("usages rules = %d, want 13", len(c.Usages))
	}
	if len(c.Broader) != 1 || c.Broader[0].Target != "Ancestors/Struct-Type" {
		t.Errorf("broader rules = %+v", c.Broader)
	}
	if c.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("TTL = %s, want 24h", c.Cache.TTL)
	}
	if c.Cache.Prefix != "mizgra:" {
		t.Errorf("Prefix = %q", c.Cache.Prefix)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if len(c.Usages) != 13 {
		t.Errorf("usages rules = %d, want the defaults", len(c.Usages))
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeConfig(t, `
[output]
format = "yarspg"
disable = ["metadata"]

[sources]
csv_validate = true

[cache]
ttl = "90m"

[[usages]]
source = "Theorem-Reference"
attribute = "MMLId"
target = "Theorem-Item"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if c.Output.Format != "yarspg" {
		t.Errorf("Format = %q, want yarspg", c.Output.Format)
	}
	if len(c.Output.Disable) != 1 || c.Output.Disable[0] != "metadata" {
		t.Errorf("Disable = %v", c.Output.Disable)
	}
	if !c.Sources.CSVValidate || c.Sources.CSVEntities {
		t.Errorf("Sources = %+v", c.Sources)
	}
	if c.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %s, want 1h30m", c.Cache.TTL)
	}
	// Untouched keys keep their defaults.
	if c.Cache.Prefix != "mizgra:" {
		t.Errorf("Prefix = %q, want the default", c.Cache.Prefix)
	}
	if len(c.Usages) != 1 {
		t.Errorf("usages rules = %d, want the file's single rule", len(c.Usages))
	}
	if len(c.Broader) != 1 {
		t.Errorf("broader rules = %d, want the default rule", len(c.Broader))
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[output\nformat = 1", errors.ErrCodeInvalidConfig},
		{"unknown key", "[output]\ncolour = \"red\"", errors.ErrCodeInvalidConfig},
		{"bad format", "[output]\nformat = \"dot\"", errors.ErrCodeInvalidConfig},
		{"bad category", "[output]\nshow = [\"edges\"]", errors.ErrCodeInvalidConfig},
		{"bad rdf format", "[sources]\nrdf_format = \"rdfa\"", errors.ErrCodeInvalidConfig},
		{"bad ttl", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidConfig},
		{"negative ttl", "[cache]\nttl = \"-1h\"", errors.ErrCodeInvalidConfig},
		{"bad rule", "[[broader]]\nsource = \"a/b/c\"\nattribute = \"x\"\ntarget = \"t\"", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(absent) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestRules(t *testing.T) {
	r := Default().Rules()
	if len(r.Usages) != 13 || len(r.Broader) != 1 {
		t.Errorf("Rules() = %d usages, %d broader", len(r.Usages), len(r.Broader))
	}
	if err := r.Validate(); err != nil {
		t.Errorf("default rules invalid: %v", err)
	}
}
