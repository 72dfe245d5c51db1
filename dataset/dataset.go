// Package dataset loads tabular csv data with a header row and exposes named columns as feature
// matrices and target vectors. Exclusive filters remove matching rows from every later read.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	mat_ "github.com/aouyang1/go-extrapolate/mat"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoHeader        = errors.New("csv has no header row")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrNoXFeatures     = errors.New("no input features set")
	ErrNoYFeature      = errors.New("no target feature set")
	ErrNotNumeric      = errors.New("value is not numeric")
)

// Dataset is an in memory table of string cells. Rows hidden by exclusive filters are skipped by
// every accessor so row indices returned by the accessors refer to the filtered view.
type Dataset struct {
	name    string
	columns []string
	colIdx  map[string]int
	records [][]string

	// view holds the record indices surviving exclusive filters
	view []int

	xFeatures []string
	yFeature  string
}

// Load reads a csv file from disk
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open dataset %s, %w", path, err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse dataset %s, %w", path, err)
	}
	ds.name = path
	return ds, nil
}

// Parse reads csv data whose first row names the columns
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("unable to read header, %w", err)
	}

	ds := &Dataset{
		columns: make([]string, len(header)),
		colIdx:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, exists := ds.colIdx[name]; exists {
			return nil, fmt.Errorf("%q, %w", name, ErrDuplicateColumn)
		}
		ds.columns[i] = name
		ds.colIdx[name] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read records, %w", err)
	}
	ds.records = records
	ds.view = make([]int, len(records))
	for i := range ds.view {
		ds.view[i] = i
	}
	return ds, nil
}

// Name is the path the dataset was loaded from, if any
func (d *Dataset) Name() string {
	return d.name
}

// Columns returns the column names in file order
func (d *Dataset) Columns() []string {
	c := make([]string, len(d.columns))
	copy(c, d.columns)
	return c
}

// HasColumn reports whether the dataset carries the named column
func (d *Dataset) HasColumn(name string) bool {
	_, exists := d.colIdx[name]
	return exists
}

// Len is the number of rows surviving exclusive filters
func (d *Dataset) Len() int {
	return len(d.view)
}

// SetXFeatures sets the input feature columns in the order they form matrix columns
func (d *Dataset) SetXFeatures(features ...string) error {
	for _, f := range features {
		if !d.HasColumn(f) {
			return fmt.Errorf("input feature %q, %w", f, ErrUnknownColumn)
		}
	}
	d.xFeatures = append([]string(nil), features...)
	return nil
}

// SetYFeature sets the target column
func (d *Dataset) SetYFeature(feature string) error {
	if !d.HasColumn(feature) {
		return fmt.Errorf("target feature %q, %w", feature, ErrUnknownColumn)
	}
	d.yFeature = feature
	return nil
}

// XFeatures returns the input feature columns
func (d *Dataset) XFeatures() []string {
	return append([]string(nil), d.xFeatures...)
}

// YFeature returns the target column
func (d *Dataset) YFeature() string {
	return d.yFeature
}

// Column returns the raw values of a column
func (d *Dataset) Column(name string) ([]string, error) {
	ci, exists := d.colIdx[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownColumn)
	}
	out := make([]string, len(d.view))
	for i, r := range d.view {
		out[i] = d.cell(r, ci)
	}
	return out, nil
}

// FloatColumn returns a column parsed as floating point numbers
func (d *Dataset) FloatColumn(name string) ([]float64, error) {
	ci, exists := d.colIdx[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownColumn)
	}
	out := make([]float64, len(d.view))
	for i, r := range d.view {
		v, err := strconv.ParseFloat(d.cell(r, ci), 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d value %q, %w", name, i, d.cell(r, ci), ErrNotNumeric)
		}
		out[i] = v
	}
	return out, nil
}

// XData returns the input features as a matrix with one row per sample
func (d *Dataset) XData() (*mat.Dense, error) {
	if len(d.xFeatures) == 0 {
		return nil, ErrNoXFeatures
	}
	if len(d.view) == 0 {
		return nil, mat_.ErrNoRows
	}
	cols := make([][]float64, len(d.xFeatures))
	for j, f := range d.xFeatures {
		c, err := d.FloatColumn(f)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}

	x := mat.NewDense(len(d.view), len(cols), nil)
	for j, c := range cols {
		x.SetCol(j, c)
	}
	return x, nil
}

// YData returns the target column
func (d *Dataset) YData() ([]float64, error) {
	if d.yFeature == "" {
		return nil, ErrNoYFeature
	}
	return d.FloatColumn(d.yFeature)
}

// AddExclusiveFilter removes every row the filter matches from the dataset view. Filtering is
// cumulative and cannot be undone.
func (d *Dataset) AddExclusiveFilter(f Filter) error {
	ci, exists := d.colIdx[f.Field]
	if !exists {
		return fmt.Errorf("filter on %q, %w", f.Field, ErrUnknownColumn)
	}
	view := make([]int, 0, len(d.view))
	for _, r := range d.view {
		if f.Match(d.cell(r, ci)) {
			continue
		}
		view = append(view, r)
	}
	slog.Debug("applied exclusive filter",
		"dataset", d.name,
		"filter", f.String(),
		"removed", len(d.view)-len(view),
		"remaining", len(view),
	)
	d.view = view
	return nil
}

// Surviving returns the row indices, relative to the current view, that no filter matches. The
// dataset itself is left untouched.
func (d *Dataset) Surviving(filters ...Filter) ([]int, error) {
	cis := make([]int, len(filters))
	for i, f := range filters {
		ci, exists := d.colIdx[f.Field]
		if !exists {
			return nil, fmt.Errorf("filter on %q, %w", f.Field, ErrUnknownColumn)
		}
		cis[i] = ci
	}

	rows := make([]int, 0, len(d.view))
	for i, r := range d.view {
		excluded := false
		for fi, f := range filters {
			if f.Match(d.cell(r, cis[fi])) {
				excluded = true
				break
			}
		}
		if !excluded {
			rows = append(rows, i)
		}
	}
	return rows, nil
}

func (d *Dataset) cell(record, col int) string {
	rec := d.records[record]
	if col >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[col])
}
