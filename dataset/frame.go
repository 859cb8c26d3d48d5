// Package dataset provides a typed column frame over CSV data. A Frame is an
// ordered collection of named columns, each either numeric or categorical,
// with missing values represented as NaN. Frames are immutable: Drop, Select,
// AsCategorical, and InjectMissing return new frames.
package dataset

import (
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// Kind distinguishes numeric columns from categorical ones.
type Kind int

const (
	// KindNumeric columns hold float64 measurements.
	KindNumeric Kind = iota
	// KindCategorical columns hold level codes into a level table.
	KindCategorical
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is one named column of a Frame. Values always holds float64: the
// measurement itself for numeric columns, the level code (index into Levels)
// for categorical columns, and NaN for missing cells of either kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []float64
	// Levels is the sorted level table of a categorical column. Numeric
	// columns have no levels. An all-missing categorical column has an
	// empty table.
	Levels []string
}

// NumLevels returns the size of the level table.
func (c *Column) NumLevels() int {
	return len(c.Levels)
}

// IsMissing reports whether row i holds a missing value.
func (c *Column) IsMissing(i int) bool {
	return math.IsNaN(c.Values[i])
}

// CountMissing returns the number of missing cells.
func (c *Column) CountMissing() int {
	n := 0
	for _, v := range c.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// LevelName returns the level string for row i of a categorical column, or
// "" for missing cells.
func (c *Column) LevelName(i int) string {
	if c.Kind != KindCategorical || math.IsNaN(c.Values[i]) {
		return ""
	}
	idx := int(c.Values[i])
	if idx < 0 || idx >= len(c.Levels) {
		return ""
	}
	return c.Levels[idx]
}

// clone deep-copies the column.
func (c *Column) clone() Column {
	out := Column{
		Name:   c.Name,
		Kind:   c.Kind,
		Values: make([]float64, len(c.Values)),
	}
	copy(out.Values, c.Values)
	if c.Levels != nil {
		out.Levels = make([]string, len(c.Levels))
		copy(out.Levels, c.Levels)
	}
	return out
}

// Frame is an ordered collection of equal-length columns.
type Frame struct {
	cols  []Column
	index map[string]int
	nrows int
}

// newFrame builds a frame from columns, validating lengths and name
// uniqueness.
func newFrame(cols []Column) (*Frame, error) {
	if len(cols) == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "dataset: no columns")
	}

	nrows := len(cols[0].Values)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if len(c.Values) != nrows {
			return nil, tabErrors.NewDimensionError("dataset.newFrame", nrows, len(c.Values), 0)
		}
		if _, dup := index[c.Name]; dup {
			return nil, tabErrors.NewValidationError("column", "duplicate column name", c.Name)
		}
		index[c.Name] = i
	}

	return &Frame{cols: cols, index: index, nrows: nrows}, nil
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return f.nrows }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// Names returns the column names in frame order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column.
func (f *Frame) Column(name string) (*Column, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, tabErrors.NewValueError("dataset.Column", "unknown column: "+name)
	}
	return &f.cols[i], nil
}

// Levels returns the level table of a categorical column.
func (f *Frame) Levels(name string) ([]string, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != KindCategorical {
		return nil, tabErrors.NewValueError("dataset.Levels", "column is not categorical: "+name)
	}
	levels := make([]string, len(col.Levels))
	copy(levels, col.Levels)
	return levels, nil
}

// Drop returns a new frame without the named columns. Dropping an unknown
// column is an error; dropping every column is an error.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if !f.HasColumn(name) {
			return nil, tabErrors.NewValueError("dataset.Drop", "unknown column: "+name)
		}
		drop[name] = true
	}

	kept := make([]Column, 0, len(f.cols)-len(drop))
	for _, c := range f.cols {
		if !drop[c.Name] {
			kept = append(kept, c.clone())
		}
	}
	if len(kept) == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "dataset.Drop: all columns dropped")
	}
	return newFrame(kept)
}

// Select returns a new frame holding exactly the named columns, in the given
// order.
func (f *Frame) Select(names []string) (*Frame, error) {
	if len(names) == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "dataset.Select: no columns")
	}
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		col, err := f.Column(name)
		if err != nil {
			return nil, tabErrors.Wrap(err, "dataset.Select")
		}
		cols = append(cols, col.clone())
	}
	return newFrame(cols)
}

// AsCategorical returns a new frame where each named numeric column is
// reinterpreted as categorical. The level table holds the distinct formatted
// values in sorted order; missing cells stay missing. Columns that are
// already categorical pass through unchanged.
func (f *Frame) AsCategorical(names ...string) (*Frame, error) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if !f.HasColumn(name) {
			return nil, tabErrors.NewValueError("dataset.AsCategorical", "unknown column: "+name)
		}
		want[name] = true
	}

	cols := make([]Column, 0, len(f.cols))
	for _, c := range f.cols {
		if !want[c.Name] || c.Kind == KindCategorical {
			cols = append(cols, c.clone())
			continue
		}

		records := make([]string, len(c.Values))
		for i, v := range c.Values {
			if math.IsNaN(v) {
				records[i] = ""
			} else {
				records[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		cols = append(cols, categoricalColumn(c.Name, records, defaultNAValues))
	}
	return newFrame(cols)
}

// Slice returns a new frame holding rows [from, to).
func (f *Frame) Slice(from, to int) (*Frame, error) {
	if from < 0 || to > f.nrows || from >= to {
		return nil, tabErrors.NewValueError("dataset.Slice",
			"invalid row range ["+strconv.Itoa(from)+", "+strconv.Itoa(to)+")")
	}
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cut := c.clone()
		cut.Values = cut.Values[from:to]
		cols[i] = cut
	}
	return newFrame(cols)
}

// clone deep-copies the frame.
func (f *Frame) clone() *Frame {
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.clone()
	}
	out, _ := newFrame(cols)
	return out
}

// ToDataFrame converts the frame back to a gota DataFrame, mainly for
// rendering and export. Missing cells become NaN for numeric columns and NA
// records for categorical ones.
func (f *Frame) ToDataFrame() dataframe.DataFrame {
	ss := make([]series.Series, len(f.cols))
	for i, c := range f.cols {
		switch c.Kind {
		case KindCategorical:
			records := make([]string, len(c.Values))
			for j := range c.Values {
				if c.IsMissing(j) {
					records[j] = "NA"
				} else {
					records[j] = c.LevelName(j)
				}
			}
			ss[i] = series.New(records, series.String, c.Name)
		default:
			ss[i] = series.New(c.Values, series.Float, c.Name)
		}
	}
	return dataframe.New(ss...)
}

// Head renders the first n rows as a table.
func (f *Frame) Head(n int) string {
	if n > f.nrows {
		n = f.nrows
	}
	if n <= 0 {
		return ""
	}
	head, err := f.Slice(0, n)
	if err != nil {
		return ""
	}
	return head.ToDataFrame().String()
}

// Describe renders per-column summary statistics.
func (f *Frame) Describe() string {
	return f.ToDataFrame().Describe().String()
}
