// Package csvrel reads relation tables exported as CSV. Each row names two
// constructs by article and xmlid plus the relation between them:
//
//	source_file,source_xmlid,target_file,target_xmlid,relation
//	xboole_0,x12,tarski,x3,RELATED
//
// A header row with those column names is optional.
package csvrel

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/source"
	"github.com/mmlkg/mizgra/pkg/source/manifest"
)

// Extension selects the files read from a directory.
const Extension = ".csv"

// Columns is the number of fields in a row.
const Columns = 5

var header = [Columns]string{"source_file", "source_xmlid", "target_file", "target_xmlid", "relation"}

// Row is one relation record.
type Row struct {
	SourceFile  string
	SourceXMLID string
	TargetFile  string
	TargetXMLID string
	Relation    string

	File string // originating CSV file
	Line int
}

// Reader loads relation rows from files and directories.
type Reader struct {
	Paths  []string
	Logger *log.Logger
	Stats  source.Stats

	// Validate enables the pre-flight file check and the manifest checks on
	// every row. Manifest must be set when Validate is.
	Validate bool
	Manifest *manifest.Manifest
}

// NewReader creates a reader over paths. A nil logger discards warnings.
func NewReader(paths []string, logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reader{Paths: paths, Logger: logger, Stats: source.Stats{Name: "csv"}}
}

// Files expands the configured paths: files are kept as given, directories
// contribute their *.csv entries in name order. Unreadable paths are skipped
// and counted.
func (r *Reader) Files() []string {
	var files []string
	for _, p := range r.Paths {
		info, err := os.Stat(p)
		if err != nil {
			r.Stats.Skip(r.Logger, "skipping CSV path", "path", p, "err", err)
			continue
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			r.Stats.Skip(r.Logger, "skipping CSV directory", "path", p, "err", err)
			continue
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), Extension) {
				names = append(names, e.Name())
			}
		}
		slices.Sort(names)
		for _, n := range names {
			files = append(files, filepath.Join(p, n))
		}
	}
	return files
}

// Rows yields the well-formed rows of every file in order. Iteration stops
// when ctx is cancelled.
func (r *Reader) Rows(ctx context.Context) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, file := range r.Files() {
			if ctx.Err() != nil {
				return
			}
			data, err := os.ReadFile(file)
			if err != nil {
				r.Stats.Skip(r.Logger, "skipping CSV file", "file", file, "err", err)
				continue
			}
			if r.Validate {
				if err := Preflight(data); err != nil {
					r.Stats.Skip(r.Logger, "rejecting CSV file", "file", file, "err", err)
					continue
				}
			}
			r.Logger.Debug("reading CSV file", "file", file, "validate", r.Validate)
			if !r.rows(ctx, file, data, yield) {
				return
			}
		}
	}
}

func (r *Reader) rows(ctx context.Context, file string, data []byte, yield func(Row) bool) bool {
	cr := newCSVReader(data)
	first := true
	for {
		if ctx.Err() != nil {
			return false
		}
		rec, err := cr.Read()
		if err == io.EOF {
			return true
		}
		if err != nil {
			// A quoting error leaves the reader at the next record.
			var pe *csv.ParseError
			if stderrors.As(err, &pe) {
				r.Stats.Skip(r.Logger, "skipping CSV row", "file", file, "line", pe.StartLine, "err", pe.Err)
				continue
			}
			r.Stats.Skip(r.Logger, "skipping rest of CSV file", "file", file, "err", err)
			return true
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}

		row, err := parseRow(rec)
		if err == nil && r.Validate {
			err = r.check(row)
		}
		if err != nil {
			r.Stats.Skip(r.Logger, "skipping CSV row", "file", file, "line", line, "err", err)
			continue
		}
		row.File, row.Line = file, line
		r.Stats.Read++
		if !yield(row) {
			return false
		}
	}
}

func newCSVReader(data []byte) *csv.Reader {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

func isHeader(rec []string) bool {
	if len(rec) != Columns {
		return false
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), h) {
			return false
		}
	}
	return true
}

// parseRow checks the shape of a record: five columns, identifier-safe
// article and xmlid fields and a non-empty, writable relation.
func parseRow(rec []string) (Row, error) {
	if len(rec) != Columns {
		return Row{}, errors.New(errors.ErrCodeInvalidRecord, "expected %d columns, got %d", Columns, len(rec))
	}
	row := Row{
		SourceFile:  strings.TrimSpace(rec[0]),
		SourceXMLID: strings.TrimSpace(rec[1]),
		TargetFile:  strings.TrimSpace(rec[2]),
		TargetXMLID: strings.TrimSpace(rec[3]),
		Relation:    strings.TrimSpace(rec[4]),
	}
	for _, f := range []struct{ name, value string }{
		{"source_file", row.SourceFile},
		{"source_xmlid", row.SourceXMLID},
		{"target_file", row.TargetFile},
		{"target_xmlid", row.TargetXMLID},
	} {
		if err := errors.ValidateIdentifier(f.name, f.value); err != nil {
			return Row{}, err
		}
	}
	if row.Relation == "" {
		return Row{}, errors.New(errors.ErrCodeInvalidRecord, "relation is empty")
	}
	if err := errors.ValidateText("relation", row.Relation); err != nil {
		return Row{}, err
	}
	return row, nil
}

// Preflight checks a whole file before any row is used: valid UTF-8, not
// empty, and at least one well-formed row.
func Preflight(data []byte) error {
	if !utf8.Valid(data) {
		return errors.New(errors.ErrCodeInvalidRecord, "file is not valid UTF-8")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New(errors.ErrCodeInvalidRecord, "file is empty")
	}
	cr := newCSVReader(data)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return errors.New(errors.ErrCodeInvalidRecord, "no well-formed row")
		}
		if err != nil {
			var pe *csv.ParseError
			if stderrors.As(err, &pe) {
				continue
			}
			return errors.Wrap(errors.ErrCodeInvalidRecord, err, "read")
		}
		if isHeader(rec) {
			continue
		}
		if _, err := parseRow(rec); err == nil {
			return nil
		}
	}
}

// check applies the manifest rules to a validated row.
func (r *Reader) check(row Row) error {
	m := r.Manifest
	if m == nil {
		return errors.New(errors.ErrCodeInternal, "validation needs the manifest")
	}
	var problems []string
	srcOrder, okSrc := m.Order(row.SourceFile)
	dstOrder, okDst := m.Order(row.TargetFile)
	if !okSrc {
		problems = append(problems, fmt.Sprintf("source file %q not in manifest", row.SourceFile))
	}
	if !okDst {
		problems = append(problems, fmt.Sprintf("target file %q not in manifest", row.TargetFile))
	}
	srcNr, errSrc := xmlidNumber(row.SourceXMLID)
	dstNr, errDst := xmlidNumber(row.TargetXMLID)
	if errSrc != nil || errDst != nil {
		problems = append(problems, fmt.Sprintf("xmlids %q and %q must look like x307", row.SourceXMLID, row.TargetXMLID))
	}
	if okSrc && okDst && srcOrder < dstOrder {
		problems = append(problems, fmt.Sprintf("source file %q comes before target file %q", row.SourceFile, row.TargetFile))
	}
	if row.SourceFile == row.TargetFile && errSrc == nil && errDst == nil && srcNr < dstNr {
		problems = append(problems, fmt.Sprintf("source xmlid %q comes before target xmlid %q", row.SourceXMLID, row.TargetXMLID))
	}
	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidRecord, "%s", strings.Join(problems, "; "))
	}
	return nil
}

func xmlidNumber(xmlid string) (int, error) {
	if err := errors.ValidateXMLID(xmlid); err != nil {
		return 0, err
	}
	return strconv.Atoi(xmlid[1:])
}
