package boost

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tabml/tabprep/design"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// Dataset is the training view the booster consumes: a feature matrix,
// a label vector and the feature names carried through to the fitted
// model. Construct one directly or wrap a built design matrix with
// FromDesign.
type Dataset struct {
	x            *mat.Dense
	y            []float64
	featureNames []string
	fingerprint  string
}

// NewDataset builds a dataset from a feature matrix and labels. The
// inputs are retained, not copied.
func NewDataset(x *mat.Dense, y []float64, featureNames []string) (*Dataset, error) {
	if x == nil {
		return nil, tabErrors.NewValueError("boost.NewDataset", "feature matrix is nil")
	}
	rows, cols := x.Dims()
	if rows == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "boost.NewDataset")
	}
	if len(y) != rows {
		return nil, tabErrors.NewDimensionError("boost.NewDataset", rows, len(y), 0)
	}
	if len(featureNames) != cols {
		return nil, tabErrors.NewDimensionError("boost.NewDataset", cols, len(featureNames), 1)
	}
	return &Dataset{x: x, y: y, featureNames: featureNames}, nil
}

// FromDesign wraps a design matrix for training. The matrix is
// validated first and shared by reference afterwards, so treat it as
// read-only while the dataset is in use. All design columns become
// features; an intercept column is harmless since a constant column
// can never produce a split, but formulas written for tree models
// usually drop it with "- 1".
func FromDesign(m *design.Matrix) (*Dataset, error) {
	if m == nil {
		return nil, tabErrors.NewValueError("boost.FromDesign", "design matrix is nil")
	}
	if err := m.Validate(); err != nil {
		return nil, tabErrors.Wrap(err, "boost.FromDesign")
	}
	names := make([]string, len(m.ColumnNames))
	copy(names, m.ColumnNames)
	return &Dataset{
		x:            m.X,
		y:            m.Response(),
		featureNames: names,
		fingerprint:  m.SourceFingerprint,
	}, nil
}

// NumRows returns the number of samples.
func (d *Dataset) NumRows() int {
	rows, _ := d.x.Dims()
	return rows
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	_, cols := d.x.Dims()
	return cols
}

// FeatureNames returns the feature names in column order.
func (d *Dataset) FeatureNames() []string {
	return d.featureNames
}

// Features returns the underlying feature matrix.
func (d *Dataset) Features() *mat.Dense {
	return d.x
}

// Labels returns a copy of the label vector.
func (d *Dataset) Labels() []float64 {
	out := make([]float64, len(d.y))
	copy(out, d.y)
	return out
}

// Label returns the label of row i.
func (d *Dataset) Label(i int) float64 {
	return d.y[i]
}

// Row copies the features of row i into dst, which must have
// NumFeatures capacity.
func (d *Dataset) Row(i int, dst []float64) {
	mat.Row(dst, i, d.x)
}

// SourceFingerprint returns the fingerprint of the frame the design
// matrix was built from, or the empty string for directly constructed
// datasets.
func (d *Dataset) SourceFingerprint() string {
	return d.fingerprint
}

// Subset returns a new dataset holding copies of the given rows, in
// the given order. Used to materialize cross-validation folds.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	if len(indices) == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "boost.Subset")
	}
	rows := d.NumRows()
	cols := d.NumFeatures()
	x := mat.NewDense(len(indices), cols, nil)
	y := make([]float64, len(indices))
	buf := make([]float64, cols)
	for to, from := range indices {
		if from < 0 || from >= rows {
			return nil, tabErrors.NewValueError("boost.Subset",
				fmt.Sprintf("row index %d out of range [0, %d)", from, rows))
		}
		d.Row(from, buf)
		x.SetRow(to, buf)
		y[to] = d.y[from]
	}
	return &Dataset{x: x, y: y, featureNames: d.featureNames, fingerprint: d.fingerprint}, nil
}

// String describes the dataset shape.
func (d *Dataset) String() string {
	return fmt.Sprintf("boost.Dataset(%d×%d)", d.NumRows(), d.NumFeatures())
}
