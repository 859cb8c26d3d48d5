package linear

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tabml/tabprep/dataset"
	"github.com/tabml/tabprep/design"
	"github.com/tabml/tabprep/encoding"
	"github.com/tabml/tabprep/formula"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

func motorTrendDesign(t *testing.T, formulaStr, strategy string) *design.Matrix {
	t.Helper()
	frame, err := dataset.SampleMotorTrend().Drop("model")
	require.NoError(t, err)
	if strategy != "numeric" {
		frame, err = frame.AsCategorical("gear")
		require.NoError(t, err)
	}
	builder, err := design.NewBuilder(strategy, encoding.NAPropagate)
	require.NoError(t, err)
	m, err := builder.Build(frame, formula.MustParse(formulaStr))
	require.NoError(t, err)
	return m
}

func TestFitSimpleLine(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	require.True(t, lr.IsFitted())

	assert.InDelta(t, 1.0, lr.Intercept(), 1e-9)
	weights := lr.Weights()
	require.Len(t, weights, 1)
	assert.InDelta(t, 2.0, weights[0], 1e-9)

	preds, err := lr.Predict(mat.NewDense(2, 1, []float64{5, 6}))
	require.NoError(t, err)
	assert.InDelta(t, 11.0, preds.At(0, 0), 1e-9)
	assert.InDelta(t, 13.0, preds.At(1, 0), 1e-9)

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-12)
}

func TestFitWithoutIntercept(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{2, 4, 6})

	lr := NewLinearRegression(WithFitIntercept(false))
	require.NoError(t, lr.Fit(X, y))

	assert.Zero(t, lr.Intercept())
	assert.InDelta(t, 2.0, lr.Weights()[0], 1e-9)
}

func TestFitValidation(t *testing.T) {
	lr := NewLinearRegression()

	err := lr.Fit(mat.NewDense(3, 1, nil), mat.NewDense(2, 1, nil))
	var dimErr *tabErrors.DimensionError
	require.ErrorAs(t, err, &dimErr)

	err = lr.Fit(mat.NewDense(3, 1, nil), mat.NewDense(3, 2, nil))
	var valErr *tabErrors.ValueError
	require.ErrorAs(t, err, &valErr)
}

func TestFitDesignMotorTrend(t *testing.T) {
	m := motorTrendDesign(t, "mpg ~ wt", "numeric")

	lr := NewLinearRegression()
	require.NoError(t, lr.FitDesign(m))

	// The canonical simple regression of mpg on weight.
	assert.InDelta(t, 37.2851, lr.Intercept(), 1e-3)
	coefs := lr.Coefficients()
	require.Len(t, coefs, 1)
	assert.Equal(t, "wt", coefs[0].Name)
	assert.InDelta(t, -5.3445, coefs[0].Value, 1e-3)

	score, err := lr.ScoreDesign(m)
	require.NoError(t, err)
	assert.InDelta(t, 0.7528, score, 1e-3)
}

func TestFitDesignTwoPredictors(t *testing.T) {
	m := motorTrendDesign(t, "mpg ~ wt + hp", "numeric")

	lr := NewLinearRegression()
	require.NoError(t, lr.FitDesign(m))

	assert.InDelta(t, 37.2273, lr.Intercept(), 1e-3)
	coefs := lr.Coefficients()
	require.Len(t, coefs, 2)
	assert.Equal(t, "wt", coefs[0].Name)
	assert.InDelta(t, -3.8778, coefs[0].Value, 1e-3)
	assert.Equal(t, "hp", coefs[1].Name)
	assert.InDelta(t, -0.0318, coefs[1].Value, 1e-3)

	score, err := lr.ScoreDesign(m)
	require.NoError(t, err)
	assert.InDelta(t, 0.8268, score, 1e-3)
}

func TestFitDesignWithoutIntercept(t *testing.T) {
	m := motorTrendDesign(t, "mpg ~ wt - 1", "numeric")
	require.False(t, m.HasIntercept())

	lr := NewLinearRegression()
	require.NoError(t, lr.FitDesign(m))

	assert.Zero(t, lr.Intercept())
	coefs := lr.Coefficients()
	require.Len(t, coefs, 1)
	assert.Positive(t, coefs[0].Value, "through the origin both variables move together")
}

func TestFitDesignRejectsMissing(t *testing.T) {
	frame, err := dataset.SampleMotorTrend().Drop("model")
	require.NoError(t, err)
	frame, _, err = frame.InjectMissing(0.2, 7, "wt")
	require.NoError(t, err)

	builder, err := design.NewBuilder("numeric", encoding.NAPropagate)
	require.NoError(t, err)
	m, err := builder.Build(frame, formula.MustParse("mpg ~ wt + hp"))
	require.NoError(t, err)
	require.Positive(t, m.CountMissing())

	lr := NewLinearRegression()
	err = lr.FitDesign(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestFitSingularMatrix(t *testing.T) {
	// Two identical columns make XᵀX singular.
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	err := NewLinearRegression().Fit(X, y)
	require.Error(t, err)
	assert.ErrorIs(t, err, tabErrors.ErrSingularMatrix)
}

func TestOneHotWithInterceptIsSingular(t *testing.T) {
	// One-hot dummies sum to the intercept column, the classic dummy
	// variable trap.
	m := motorTrendDesign(t, "mpg ~ gear", "onehot")
	require.True(t, m.HasIntercept())

	err := NewLinearRegression().FitDesign(m)
	require.Error(t, err)
	assert.ErrorIs(t, err, tabErrors.ErrSingularMatrix)
}

func TestBinaryEncodingAvoidsTheTrap(t *testing.T) {
	// Dropping the reference level restores full rank.
	m := motorTrendDesign(t, "mpg ~ gear", "binary")

	lr := NewLinearRegression()
	require.NoError(t, lr.FitDesign(m))

	coefs := lr.Coefficients()
	require.Len(t, coefs, 2)
	assert.Equal(t, "gear_4", coefs[0].Name)
	assert.Equal(t, "gear_5", coefs[1].Name)
}

func TestPredictValidation(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(2, 1, nil))
	var nfErr *tabErrors.NotFittedError
	require.ErrorAs(t, err, &nfErr)

	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})
	require.NoError(t, lr.Fit(X, y))

	_, err = lr.Predict(mat.NewDense(2, 3, nil))
	var dimErr *tabErrors.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := motorTrendDesign(t, "mpg ~ wt + hp", "numeric")
	lr := NewLinearRegression()
	require.NoError(t, lr.FitDesign(m))

	path := filepath.Join(t.TempDir(), "ols.json")
	require.NoError(t, lr.Save(path))

	restored := NewLinearRegression()
	require.NoError(t, restored.Load(path))
	require.True(t, restored.IsFitted())

	assert.InDelta(t, lr.Intercept(), restored.Intercept(), 1e-12)
	assert.Equal(t, lr.Coefficients(), restored.Coefficients())

	want, err := lr.PredictDesign(m)
	require.NoError(t, err)
	got, err := restored.PredictDesign(m)
	require.NoError(t, err)
	for i := 0; i < 32; i++ {
		assert.InDelta(t, want.At(i, 0), got.At(i, 0), 1e-12)
	}
}

func TestExportImportWeights(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.ExportWeights()
	var nfErr *tabErrors.NotFittedError
	require.ErrorAs(t, err, &nfErr)

	m := motorTrendDesign(t, "mpg ~ wt", "numeric")
	require.NoError(t, lr.FitDesign(m))

	mw, err := lr.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, "LinearRegression", mw.ModelType)
	assert.Equal(t, []string{"wt"}, mw.Features)
	require.NoError(t, mw.Validate())

	mw.ModelType = "RandomForest"
	err = NewLinearRegression().ImportWeights(mw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected model type")
}

func TestCoefficientsPositionalNames(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 2, 1, 3, 5})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	coefs := lr.Coefficients()
	require.Len(t, coefs, 2)
	assert.Equal(t, "x0", coefs[0].Name)
	assert.Equal(t, "x1", coefs[1].Name)
}
