package design

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tabml/tabprep/dataset"
	"github.com/tabml/tabprep/encoding"
	"github.com/tabml/tabprep/formula"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// Builder expands frames into design matrices. The strategy name picks the
// categorical encoding for every categorical term; the NA mode decides what
// missing cells become. A Builder is stateless across builds and safe to
// reuse.
type Builder struct {
	strategyName string
	naMode       encoding.NAMode
}

// NewBuilder creates a builder for the named strategy. The name must be
// registered with the encoding package.
func NewBuilder(strategyName string, naMode encoding.NAMode) (*Builder, error) {
	if _, err := encoding.Lookup(strategyName); err != nil {
		return nil, err
	}
	return &Builder{strategyName: strategyName, naMode: naMode}, nil
}

// StrategyName returns the encoding strategy name.
func (b *Builder) StrategyName() string { return b.strategyName }

// NAMode returns the missing-value mode.
func (b *Builder) NAMode() encoding.NAMode { return b.naMode }

// Build resolves f against frame and assembles the design matrix. The
// response must be a numeric column. Numeric terms are copied as-is,
// categorical terms expand through a freshly fitted strategy per column,
// and an intercept column of ones is prepended unless the formula drops it.
//
// Missing predictor cells become zero under zero-fill and NaN under
// propagate. Zero-fill builds raise a DataConversionWarning counting the
// converted cells, since those zeros are indistinguishable from observed
// zeros. Use Validate to check the result before training.
func (b *Builder) Build(frame *dataset.Frame, f *formula.Formula) (*Matrix, error) {
	terms, err := f.Terms(frame)
	if err != nil {
		return nil, tabErrors.Wrap(err, "design.Build")
	}

	response, err := frame.Column(f.Response())
	if err != nil {
		return nil, tabErrors.Wrap(err, "design.Build")
	}
	if response.Kind != dataset.KindNumeric {
		return nil, tabErrors.NewValueError("design.Build",
			"response must be numeric: "+f.Response())
	}

	type block struct {
		col   *dataset.Column
		strat encoding.Strategy
	}

	names := make([]string, 0, len(terms)+1)
	if f.HasIntercept() {
		names = append(names, InterceptName)
	}

	blocks := make([]block, 0, len(terms))
	for _, term := range terms {
		col, err := frame.Column(term)
		if err != nil {
			return nil, tabErrors.Wrap(err, "design.Build")
		}
		if col.Kind == dataset.KindNumeric {
			blocks = append(blocks, block{col: col})
			names = append(names, term)
			continue
		}

		strat, err := encoding.Lookup(b.strategyName)
		if err != nil {
			return nil, err
		}
		if err := strat.Fit(col.Levels); err != nil {
			return nil, tabErrors.Wrapf(err, "design.Build: fit %s on %q", b.strategyName, term)
		}
		colNames, err := strat.ColumnNames(term)
		if err != nil {
			return nil, tabErrors.Wrap(err, "design.Build")
		}
		blocks = append(blocks, block{col: col, strat: strat})
		names = append(names, colNames...)
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, tabErrors.NewValidationError("column", "duplicate design column", name)
		}
		seen[name] = true
	}
	if len(names) == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "design.Build: formula produced no columns")
	}

	nrows := frame.NumRows()
	X := mat.NewDense(nrows, len(names), nil)

	colIdx := 0
	if f.HasIntercept() {
		for i := 0; i < nrows; i++ {
			X.Set(i, 0, 1)
		}
		colIdx = 1
	}

	zeroFilled := 0
	for _, blk := range blocks {
		if blk.strat == nil {
			for i := 0; i < nrows; i++ {
				v := blk.col.Values[i]
				if math.IsNaN(v) && b.naMode == encoding.NAZeroFill {
					v = 0
					zeroFilled++
				}
				X.Set(i, colIdx, v)
			}
			colIdx++
			continue
		}

		width := blk.strat.Width()
		if width == 0 {
			continue
		}
		buf := make([]float64, width)
		for i := 0; i < nrows; i++ {
			if blk.col.IsMissing(i) {
				if err := blk.strat.EncodeMissing(buf, b.naMode); err != nil {
					return nil, tabErrors.Wrapf(err, "design.Build: column %q row %d", blk.col.Name, i)
				}
				if b.naMode == encoding.NAZeroFill {
					zeroFilled += width
				}
			} else {
				if err := blk.strat.Encode(int(blk.col.Values[i]), buf); err != nil {
					return nil, tabErrors.Wrapf(err, "design.Build: column %q row %d", blk.col.Name, i)
				}
			}
			for j, v := range buf {
				X.Set(i, colIdx+j, v)
			}
		}
		colIdx += width
	}

	if zeroFilled > 0 {
		tabErrors.Warn(tabErrors.NewDataConversionWarning("missing", "zero",
			fmt.Sprintf("%d missing cells zero-filled in design matrix; they are indistinguishable from observed zeros", zeroFilled)))
	}

	yvals := make([]float64, nrows)
	copy(yvals, response.Values)

	return &Matrix{
		X:                 X,
		Y:                 mat.NewVecDense(nrows, yvals),
		ColumnNames:       names,
		Formula:           f.String(),
		Encoding:          b.strategyName,
		NAMode:            b.naMode,
		SourceFingerprint: frame.Fingerprint(),
	}, nil
}
