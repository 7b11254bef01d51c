package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
)

// Option configures a load.
type Option func(*loadConfig)

type loadConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report ignored columns and load
// statistics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *loadConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newLoadConfig(opts []Option) *loadConfig {
	c := &loadConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadFile reads and parses the CSV file at path.
func LoadFile(path string, opts ...Option) (*mission.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		code := CodeReadFailed
		msg := "cannot read dataset"
		if errors.Is(err, fs.ErrNotExist) {
			code = CodeNotFound
			msg = "dataset file not found"
		}
		return nil, &DataLoadError{Code: code, Source: path, Message: msg, Err: err}
	}
	return Parse(raw, path, opts...)
}

// Load reads everything from r and parses it. source names r in errors.
func Load(r io.Reader, source string, opts ...Option) (*mission.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DataLoadError{Code: CodeReadFailed, Source: source, Message: "cannot read dataset", Err: err}
	}
	return Parse(raw, source, opts...)
}

// Parse builds a Dataset from raw CSV bytes. The fingerprint is computed
// over raw exactly as given, before BOM stripping.
func Parse(raw []byte, source string, opts ...Option) (*mission.Dataset, error) {
	cfg := newLoadConfig(opts)

	data, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return nil, &DataLoadError{Code: CodeReadFailed, Source: source, Message: "invalid text encoding", Err: err}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataLoadError{Code: CodeEmpty, Source: source, Message: "no header row"}
	}
	if err != nil {
		return nil, csvError(source, err)
	}

	cols, err := bindColumns(header, source, cfg.logger)
	if err != nil {
		return nil, err
	}

	var records []mission.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(source, err)
		}
		line, _ := r.FieldPos(0)
		if len(row) != len(header) {
			return nil, &DataLoadError{
				Code:    CodeMalformedRow,
				Source:  source,
				Line:    line,
				Message: fmt.Sprintf("expected %d fields, got %d", len(header), len(row)),
			}
		}
		rec, err := cols.record(row, line, source)
		if err != nil {
			return nil, err
		}
		rec.Seq = len(records) + 1
		records = append(records, rec)
	}

	ds := mission.NewDataset(records, source, ir.DatasetFingerprint(raw))
	cfg.logger.Debug("dataset loaded",
		"source", source,
		"records", ds.Len(),
		"fingerprint", ds.Fingerprint(),
	)
	return ds, nil
}

func csvError(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &DataLoadError{
			Code:    CodeMalformedRow,
			Source:  source,
			Line:    pe.Line,
			Message: pe.Err.Error(),
			Err:     err,
		}
	}
	return &DataLoadError{Code: CodeReadFailed, Source: source, Message: err.Error(), Err: err}
}

// binding ties a source field to its position in the header.
type binding struct {
	field  mission.Field
	index  int
	header string
}

type columns []binding

func bindColumns(header []string, source string, logger *slog.Logger) (columns, error) {
	seen := make(map[string]int)
	var cols columns
	for i, h := range header {
		name := clean(h)
		f, ok := mission.LookupField(name)
		if !ok || f.Derived() {
			logger.Debug("ignoring column", "source", source, "column", name)
			continue
		}
		if prev, dup := seen[f.Name]; dup {
			return nil, &DataLoadError{
				Code:    CodeMalformedRow,
				Source:  source,
				Line:    1,
				Column:  name,
				Message: fmt.Sprintf("duplicate column for field %s (also column %d)", f.Name, prev+1),
			}
		}
		seen[f.Name] = i
		cols = append(cols, binding{field: f, index: i, header: name})
	}

	for _, f := range mission.SourceFields() {
		if _, ok := seen[f.Name]; !ok && f.Required {
			return nil, &DataLoadError{
				Code:    CodeMissingColumn,
				Source:  source,
				Line:    1,
				Column:  f.Column,
				Message: "required column is missing",
			}
		}
	}
	return cols, nil
}

func (cols columns) record(row []string, line int, source string) (mission.Record, error) {
	var rec mission.Record
	for _, b := range cols {
		cell := clean(row[b.index])
		invalid := func(format string, args ...any) error {
			return &DataLoadError{
				Code:    CodeInvalidValue,
				Source:  source,
				Line:    line,
				Column:  b.header,
				Message: fmt.Sprintf(format, args...),
			}
		}
		if cell == "" {
			if b.field.Required {
				return rec, invalid("required value is empty")
			}
			continue
		}

		switch b.field.Name {
		case "company":
			rec.Company = cell
		case "location":
			rec.Location = cell
		case "date":
			d, err := parseDate(cell)
			if err != nil {
				return rec, invalid("invalid date %q", cell)
			}
			rec.Date = d
		case "time":
			if !validTime(cell) {
				return rec, invalid("invalid time %q", cell)
			}
			rec.Time = cell
		case "rocket":
			rec.Rocket = cell
		case "mission":
			rec.Mission = cell
		case "rocket_status":
			rec.RocketStatus = cell
		case "price":
			amount, err := ir.ParseIRDecimal(cell)
			if err != nil {
				return rec, invalid("invalid price %q", cell)
			}
			if amount < 0 {
				return rec, invalid("negative price %q", cell)
			}
			rec.Price = mission.Price{Amount: amount, Valid: true}
		case "status":
			o, err := mission.ParseOutcome(cell)
			if err != nil {
				return rec, invalid("unknown mission status %q", cell)
			}
			rec.Status = o
		}
	}
	return rec, nil
}

// parseDate accepts YYYY-MM-DD, optionally followed by a time of day as
// some exports of the dataset carry ("2020-08-07 05:12:00").
func parseDate(s string) (ir.IRDate, error) {
	if i := strings.IndexAny(s, " T"); i == len(ir.DateLayout) {
		s = s[:i]
	}
	return ir.ParseIRDate(s)
}

func validTime(s string) bool {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
