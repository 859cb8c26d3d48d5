// Package linear provides an ordinary least squares baseline for
// design matrices. It exists to sanity-check the boosted models: a
// formula that cannot beat OLS rarely justifies a tree ensemble.
package linear

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/tabml/tabprep/core/model"
	"github.com/tabml/tabprep/core/parallel"
	"github.com/tabml/tabprep/design"
	"github.com/tabml/tabprep/metrics"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

const parallelThreshold = 1000

var (
	_ model.Regressor   = (*LinearRegression)(nil)
	_ model.LinearModel = (*LinearRegression)(nil)
	_ model.Persistable = (*LinearRegression)(nil)
)

// LinearRegression fits ordinary least squares through the normal
// equations w = (XᵀX)⁻¹Xᵀy. The zero value is not usable; construct
// with NewLinearRegression.
type LinearRegression struct {
	model.BaseEstimator
	weights      *mat.VecDense
	intercept    float64
	nFeatures    int
	columnNames  []string
	fitIntercept bool
}

// NewLinearRegression returns an unfitted model. By default an
// intercept is estimated; disable it with WithFitIntercept(false).
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{fitIntercept: true}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit estimates the coefficients from a feature matrix and a column
// vector of targets. X must not contain an intercept column; when the
// model is configured to fit one, a ones column is prepended
// internally.
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return tabErrors.NewModelError("LinearRegression.Fit", "empty data", tabErrors.ErrEmptyData)
	}
	if ry != r {
		return tabErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return tabErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	lr.columnNames = nil
	return lr.fit(X, yVec, lr.fitIntercept)
}

// FitDesign estimates the coefficients from a built design matrix.
// Whether an intercept is fitted follows the matrix itself: a design
// built from a formula with "- 1" has no intercept column and gets
// none here. The matrix must be free of missing values; least squares
// has no default direction for a NaN cell, so propagate-mode matrices
// with missing data are rejected rather than silently zero-filled.
func (lr *LinearRegression) FitDesign(m *design.Matrix) error {
	if m == nil {
		return tabErrors.NewValueError("LinearRegression.FitDesign", "design matrix is nil")
	}
	if err := m.Validate(); err != nil {
		return tabErrors.Wrap(err, "LinearRegression.FitDesign")
	}
	if missing := m.CountMissing(); missing > 0 {
		return tabErrors.NewValueError("LinearRegression.FitDesign",
			fmt.Sprintf("design matrix has %d missing cells; impute or rebuild with zero_fill before fitting least squares", missing))
	}

	lr.columnNames = m.FeatureNames()
	return lr.fit(featureView(m), m.Y, m.HasIntercept())
}

// featureView returns the non-intercept columns of a design matrix.
// The intercept column is always first when present.
func featureView(m *design.Matrix) mat.Matrix {
	rows, cols := m.Dims()
	if !m.HasIntercept() {
		return m.X
	}
	return m.X.Slice(0, rows, 1, cols)
}

func (lr *LinearRegression) fit(X mat.Matrix, y *mat.VecDense, withIntercept bool) error {
	r, c := X.Dims()

	solveOn := X
	if withIntercept {
		augmented := mat.NewDense(r, c+1, nil)
		parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				augmented.Set(i, 0, 1.0)
				for j := 0; j < c; j++ {
					augmented.Set(i, j+1, X.At(i, j))
				}
			}
		})
		solveOn = augmented
	}

	w, err := solveNormalEquations(solveOn, y)
	if err != nil {
		return err
	}

	if withIntercept {
		lr.intercept = w.AtVec(0)
		lr.weights = mat.NewVecDense(c, nil)
		for j := 0; j < c; j++ {
			lr.weights.SetVec(j, w.AtVec(j+1))
		}
	} else {
		lr.intercept = 0
		lr.weights = w
	}
	lr.nFeatures = c
	lr.fitIntercept = withIntercept
	lr.SetFitted()
	return nil
}

func solveNormalEquations(X mat.Matrix, y *mat.VecDense) (*mat.VecDense, error) {
	var xt mat.Dense
	xt.CloneFrom(X.T())

	var xtx mat.Dense
	xtx.Mul(&xt, X)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, tabErrors.NewModelError("LinearRegression.Fit",
			"singular design matrix (collinear columns, often one-hot encoding alongside an intercept)",
			tabErrors.ErrSingularMatrix)
	}

	var xty mat.VecDense
	xty.MulVec(&xt, y)

	_, c := X.Dims()
	w := mat.NewVecDense(c, nil)
	w.MulVec(&inv, &xty)
	return w, nil
}

// Predict returns an r×1 matrix of fitted values. X carries feature
// columns only; the intercept is added internally.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, tabErrors.NewNotFittedError("LinearRegression", "Predict")
	}
	r, c := X.Dims()
	if c != lr.nFeatures {
		return nil, tabErrors.NewDimensionError("LinearRegression.Predict", lr.nFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.intercept
			for j := 0; j < c; j++ {
				pred += X.At(i, j) * lr.weights.AtVec(j)
			}
			predictions.Set(i, 0, pred)
		}
	})
	return predictions, nil
}

// PredictDesign returns fitted values for a design matrix built the
// same way as the training matrix.
func (lr *LinearRegression) PredictDesign(m *design.Matrix) (mat.Matrix, error) {
	if m == nil {
		return nil, tabErrors.NewValueError("LinearRegression.PredictDesign", "design matrix is nil")
	}
	return lr.Predict(featureView(m))
}

// Score returns the coefficient of determination R² on X against y.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, tabErrors.NewNotFittedError("LinearRegression", "Score")
	}
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

// ScoreDesign returns R² of the model on a design matrix against its
// own response column.
func (lr *LinearRegression) ScoreDesign(m *design.Matrix) (float64, error) {
	if m == nil {
		return 0, tabErrors.NewValueError("LinearRegression.ScoreDesign", "design matrix is nil")
	}
	yPred, err := lr.PredictDesign(m)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(m.Y, yPred)
}

// Weights returns a copy of the learned coefficients, excluding the
// intercept.
func (lr *LinearRegression) Weights() []float64 {
	if lr.weights == nil {
		return nil
	}
	weights := make([]float64, lr.weights.Len())
	for i := range weights {
		weights[i] = lr.weights.AtVec(i)
	}
	return weights
}

// Intercept returns the learned intercept, zero when the model was fit
// without one.
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// Coefficient pairs a design column name with its learned weight.
type Coefficient struct {
	Name  string
	Value float64
}

// Coefficients returns named weights in design column order. Models
// fitted through Fit rather than FitDesign fall back to positional
// names.
func (lr *LinearRegression) Coefficients() []Coefficient {
	if lr.weights == nil {
		return nil
	}
	coefs := make([]Coefficient, lr.weights.Len())
	for i := range coefs {
		name := fmt.Sprintf("x%d", i)
		if i < len(lr.columnNames) {
			name = lr.columnNames[i]
		}
		coefs[i] = Coefficient{Name: name, Value: lr.weights.AtVec(i)}
	}
	return coefs
}

// ExportWeights returns the model parameters in their serialization
// form.
func (lr *LinearRegression) ExportWeights() (*model.ModelWeights, error) {
	if !lr.IsFitted() {
		return nil, tabErrors.NewNotFittedError("LinearRegression", "ExportWeights")
	}
	return &model.ModelWeights{
		ModelType:    "LinearRegression",
		Version:      "1.0",
		Coefficients: lr.Weights(),
		Intercept:    lr.intercept,
		Features:     append([]string(nil), lr.columnNames...),
		Hyperparameters: map[string]interface{}{
			"fit_intercept": lr.fitIntercept,
		},
		IsFitted: true,
	}, nil
}

// ImportWeights restores model parameters from their serialization
// form.
func (lr *LinearRegression) ImportWeights(mw *model.ModelWeights) error {
	if mw == nil {
		return tabErrors.NewValueError("LinearRegression.ImportWeights", "weights are nil")
	}
	if err := mw.Validate(); err != nil {
		return tabErrors.Wrap(err, "LinearRegression.ImportWeights")
	}
	if mw.ModelType != "LinearRegression" {
		return tabErrors.NewValueError("LinearRegression.ImportWeights",
			fmt.Sprintf("unexpected model type: %s", mw.ModelType))
	}

	lr.weights = mat.NewVecDense(len(mw.Coefficients), append([]float64(nil), mw.Coefficients...))
	lr.intercept = mw.Intercept
	lr.nFeatures = len(mw.Coefficients)
	lr.columnNames = append([]string(nil), mw.Features...)
	if v, ok := mw.Hyperparameters["fit_intercept"].(bool); ok {
		lr.fitIntercept = v
	}
	lr.SetFitted()
	return nil
}

// Save writes the model weights as JSON to path.
func (lr *LinearRegression) Save(path string) error {
	mw, err := lr.ExportWeights()
	if err != nil {
		return err
	}
	data, err := mw.ToJSON()
	if err != nil {
		return tabErrors.Wrap(err, "LinearRegression.Save")
	}
	return os.WriteFile(path, data, 0o600)
}

// Load restores a model previously written by Save.
func (lr *LinearRegression) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return tabErrors.Wrap(err, "LinearRegression.Load")
	}
	var mw model.ModelWeights
	if err := mw.FromJSON(data); err != nil {
		return tabErrors.Wrap(err, "LinearRegression.Load")
	}
	return lr.ImportWeights(&mw)
}

// String describes the fitted model.
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return "linear.LinearRegression(unfitted)"
	}
	return fmt.Sprintf("linear.LinearRegression(features=%d, intercept=%.4g)", lr.nFeatures, lr.intercept)
}
