package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// defaultNAValues are the cell contents treated as missing on load.
var defaultNAValues = []string{"", "NA", "NaN", "nan", "<nil>"}

type loadConfig struct {
	naValues    []string
	categorical map[string]bool
}

// Option configures Load.
type Option func(*loadConfig)

// WithNAValues replaces the set of cell contents treated as missing.
func WithNAValues(values ...string) Option {
	return func(cfg *loadConfig) {
		cfg.naValues = values
	}
}

// WithCategorical forces the named columns to be categorical even when every
// cell parses as a number.
func WithCategorical(names ...string) Option {
	return func(cfg *loadConfig) {
		for _, name := range names {
			cfg.categorical[name] = true
		}
	}
}

// Load reads CSV data into a Frame. The first record is the header. Columns
// whose non-missing cells all parse as numbers become numeric; everything
// else becomes categorical with a sorted level table. Missing markers (see
// WithNAValues) become NaN in either kind.
func Load(r io.Reader, opts ...Option) (*Frame, error) {
	cfg := &loadConfig{
		naValues:    defaultNAValues,
		categorical: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(cfg.naValues),
	)
	if df.Err != nil {
		return nil, tabErrors.Wrap(df.Err, "dataset.Load: build dataframe")
	}

	return fromDataFrame(df, cfg)
}

// LoadFile opens path and loads it through Load.
func LoadFile(path string, opts ...Option) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, tabErrors.Wrap(err, "dataset.LoadFile")
	}
	defer f.Close()
	return Load(f, opts...)
}

// FromDataFrame converts a gota DataFrame into a Frame. Float, int, and bool
// series become numeric columns; string series become categorical.
func FromDataFrame(df dataframe.DataFrame) (*Frame, error) {
	return fromDataFrame(df, &loadConfig{
		naValues:    defaultNAValues,
		categorical: make(map[string]bool),
	})
}

// readRecords pulls all CSV records, checking shape before gota sees them so
// ragged and empty inputs surface as typed errors.
func readRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, tabErrors.Wrap(err, "dataset.Load: read csv")
	}
	if len(records) == 0 || len(records) == 1 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "dataset.Load")
	}

	width := len(records[0])
	for _, rec := range records[1:] {
		if len(rec) != width {
			return nil, tabErrors.NewDimensionError("dataset.Load", width, len(rec), 1)
		}
	}

	seen := make(map[string]bool, width)
	for _, name := range records[0] {
		if seen[name] {
			return nil, tabErrors.NewValidationError("column", "duplicate column name", name)
		}
		seen[name] = true
	}

	return records, nil
}

func fromDataFrame(df dataframe.DataFrame, cfg *loadConfig) (*Frame, error) {
	if df.Err != nil {
		return nil, tabErrors.Wrap(df.Err, "dataset.FromDataFrame")
	}
	nrows, ncols := df.Dims()
	if nrows == 0 || ncols == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "dataset.FromDataFrame")
	}

	names := df.Names()
	types := df.Types()

	// gota loaders rewrite every matched NA marker to the literal "NaN"
	// before records reach us, so the categorical path must match that
	// spelling regardless of the configured marker list.
	markers := append(append([]string(nil), cfg.naValues...), "NaN")

	cols := make([]Column, 0, ncols)
	for j, name := range names {
		col := df.Col(name)
		if cfg.categorical[name] || types[j] == series.String {
			cols = append(cols, categoricalColumn(name, col.Records(), markers))
			continue
		}
		cols = append(cols, Column{Name: name, Kind: KindNumeric, Values: col.Float()})
	}

	return newFrame(cols)
}

// categoricalColumn builds a categorical column from raw records. The level
// table holds the distinct non-missing records in sorted order; each cell
// becomes its level code, or NaN when the record is a missing marker.
func categoricalColumn(name string, records []string, naValues []string) Column {
	missing := make(map[string]bool, len(naValues))
	for _, v := range naValues {
		missing[v] = true
	}

	codes := make(map[string]int)
	for _, rec := range records {
		rec = strings.TrimSpace(rec)
		if !missing[rec] {
			codes[rec] = 0
		}
	}
	levels := make([]string, 0, len(codes))
	for level := range codes {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for i, level := range levels {
		codes[level] = i
	}

	values := make([]float64, len(records))
	for i, rec := range records {
		rec = strings.TrimSpace(rec)
		if missing[rec] {
			values[i] = math.NaN()
		} else {
			values[i] = float64(codes[rec])
		}
	}

	return Column{Name: name, Kind: KindCategorical, Values: values, Levels: levels}
}
