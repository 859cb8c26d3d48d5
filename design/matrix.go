// Package design assembles numeric design matrices from frames and formulas.
// A Builder resolves a formula against a frame, expands categorical columns
// through an encoding strategy, and handles missing cells according to an NA
// mode. The resulting Matrix carries the response vector, the expanded
// column names, and enough provenance to key a cache entry.
package design

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tabml/tabprep/encoding"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// InterceptName is the column name of the intercept.
const InterceptName = "(Intercept)"

// Matrix is a built design matrix. X holds one row per observation and one
// column per expanded term, Y holds the response. All fields are exported so
// a Matrix round-trips through gob.
type Matrix struct {
	X           *mat.Dense
	Y           *mat.VecDense
	ColumnNames []string

	// provenance of the build
	Formula           string
	Encoding          string
	NAMode            encoding.NAMode
	SourceFingerprint string
}

// Dims returns the number of rows and columns of X.
func (m *Matrix) Dims() (rows, cols int) {
	if m.X == nil {
		return 0, 0
	}
	return m.X.Dims()
}

// NumRows returns the number of observations.
func (m *Matrix) NumRows() int {
	r, _ := m.Dims()
	return r
}

// NumColumns returns the number of expanded columns.
func (m *Matrix) NumColumns() int {
	_, c := m.Dims()
	return c
}

// HasIntercept reports whether the first column is the intercept.
func (m *Matrix) HasIntercept() bool {
	return len(m.ColumnNames) > 0 && m.ColumnNames[0] == InterceptName
}

// Column returns a copy of the named column of X.
func (m *Matrix) Column(name string) ([]float64, error) {
	for j, col := range m.ColumnNames {
		if col == name {
			out := make([]float64, m.NumRows())
			mat.Col(out, j, m.X)
			return out, nil
		}
	}
	return nil, tabErrors.NewValueError("design.Column", "unknown column: "+name)
}

// Response returns a copy of the response vector.
func (m *Matrix) Response() []float64 {
	out := make([]float64, m.Y.Len())
	for i := range out {
		out[i] = m.Y.AtVec(i)
	}
	return out
}

// FeatureNames returns the column names without the intercept.
func (m *Matrix) FeatureNames() []string {
	if m.HasIntercept() {
		return m.ColumnNames[1:]
	}
	return m.ColumnNames
}

// Validate checks the matrix for internal consistency: shapes agree with the
// column names, names are unique, the response is finite, and X contains no
// Inf anywhere nor NaN when the matrix was built with zero-fill. A matrix
// built with propagate may carry NaN cells.
func (m *Matrix) Validate() error {
	if m.X == nil || m.Y == nil {
		return tabErrors.NewValueError("design.Validate", "matrix is missing X or Y")
	}

	rows, cols := m.X.Dims()
	if cols != len(m.ColumnNames) {
		return tabErrors.NewDimensionError("design.Validate", len(m.ColumnNames), cols, 1)
	}
	if m.Y.Len() != rows {
		return tabErrors.NewDimensionError("design.Validate", rows, m.Y.Len(), 0)
	}

	seen := make(map[string]bool, len(m.ColumnNames))
	for _, name := range m.ColumnNames {
		if seen[name] {
			return tabErrors.NewValidationError("column", "duplicate design column", name)
		}
		seen[name] = true
	}

	for i := 0; i < rows; i++ {
		if v := m.Y.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return tabErrors.NewValueError("design.Validate",
				fmt.Sprintf("response contains non-finite value at row %d", i))
		}
	}

	if m.NAMode == encoding.NAZeroFill {
		if err := tabErrors.CheckMatrix("design.Validate", m.X, rows, cols, -1); err != nil {
			return err
		}
		return nil
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsInf(m.X.At(i, j), 0) {
				return tabErrors.NewValueError("design.Validate",
					fmt.Sprintf("design matrix contains Inf at row %d, column %q", i, m.ColumnNames[j]))
			}
		}
	}
	return nil
}

// CountMissing returns the number of NaN cells in X. It is always zero for
// zero-fill builds.
func (m *Matrix) CountMissing() int {
	rows, cols := m.Dims()
	n := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(m.X.At(i, j)) {
				n++
			}
		}
	}
	return n
}

// String returns a short description of the matrix.
func (m *Matrix) String() string {
	rows, cols := m.Dims()
	return fmt.Sprintf("design.Matrix(%d×%d, formula=%q, encoding=%s, na=%s)",
		rows, cols, m.Formula, m.Encoding, m.NAMode)
}
