package boost

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// separableDataset builds 20 rows with a constant first feature and a
// perfectly separating second feature: x=0 maps to y=0, x=1 to y=10.
func separableDataset(t *testing.T) *Dataset {
	t.Helper()
	n := 20
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1.0)
		if i < n/2 {
			x.Set(i, 1, 0.0)
			y[i] = 0.0
		} else {
			x.Set(i, 1, 1.0)
			y[i] = 10.0
		}
	}
	ds, err := NewDataset(x, y, []string{"constant", "signal"})
	require.NoError(t, err)
	return ds
}

func separableParams() TrainingParams {
	params := DefaultParams()
	params.NumIterations = 20
	params.LearningRate = 0.5
	params.MinDataInLeaf = 5
	return params
}

func TestTrainerFitsSeparableData(t *testing.T) {
	ds := separableDataset(t)
	trainer := NewTrainer(separableParams())
	require.NoError(t, trainer.Fit(ds))

	m := trainer.GetModel()
	require.NotNil(t, m)
	assert.Equal(t, 20, m.NumTrees())
	assert.Equal(t, 2, m.NumFeatures)
	assert.Equal(t, []string{"constant", "signal"}, m.FeatureNames)
	assert.InDelta(t, 5.0, m.InitScore, 1e-12)

	low, err := m.PredictSingle([]float64{1, 0})
	require.NoError(t, err)
	high, err := m.PredictSingle([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, low, 0.1)
	assert.InDelta(t, 10.0, high, 0.1)
}

func TestTrainerLearnsMissingDirection(t *testing.T) {
	// Observed x 1..12 with y=0 below 7 and y=10 above. Six extra rows
	// carry NaN in x and y=10, so the gain-maximizing split sends
	// missing rows right.
	n := 18
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < 12; i++ {
		x.Set(i, 0, float64(i+1))
		if i < 6 {
			y[i] = 0.0
		} else {
			y[i] = 10.0
		}
	}
	for i := 12; i < n; i++ {
		x.Set(i, 0, math.NaN())
		y[i] = 10.0
	}
	ds, err := NewDataset(x, y, []string{"x"})
	require.NoError(t, err)

	params := DefaultParams()
	params.NumIterations = 30
	params.LearningRate = 0.5
	params.MinDataInLeaf = 3
	params.MaxDepth = 1

	trainer := NewTrainer(params)
	require.NoError(t, trainer.Fit(ds))
	m := trainer.GetModel()

	root := m.Trees[0].Nodes[0]
	require.Equal(t, NumericalNode, root.NodeType)
	assert.InDelta(t, 6.5, root.Threshold, 1e-12)
	assert.False(t, root.DefaultLeft, "missing rows share the high-response side")

	missing, err := m.PredictSingle([]float64{math.NaN()})
	require.NoError(t, err)
	low, err := m.PredictSingle([]float64{3})
	require.NoError(t, err)
	high, err := m.PredictSingle([]float64{9})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, missing, 0.2)
	assert.InDelta(t, 0.0, low, 0.2)
	assert.InDelta(t, 10.0, high, 0.2)
}

func TestTrainerDefaultDirectionWithoutMissing(t *testing.T) {
	// No NaN in training, so the default direction follows the side
	// with more hessian mass: 15 low rows versus 5 high rows.
	n := 20
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < 15 {
			x.Set(i, 0, 0.0)
			y[i] = 0.0
		} else {
			x.Set(i, 0, 1.0)
			y[i] = 10.0
		}
	}
	ds, err := NewDataset(x, y, []string{"x"})
	require.NoError(t, err)

	params := separableParams()
	params.MinDataInLeaf = 2
	trainer := NewTrainer(params)
	require.NoError(t, trainer.Fit(ds))
	m := trainer.GetModel()

	root := m.Trees[0].Nodes[0]
	require.Equal(t, NumericalNode, root.NodeType)
	assert.True(t, root.DefaultLeft)

	missing, err := m.PredictSingle([]float64{math.NaN()})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, missing, 0.2, "unseen NaN lands on the heavier side")
}

func TestTrainerConstantFeatureWarns(t *testing.T) {
	var warned []error
	tabErrors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer tabErrors.SetWarningHandler(nil)

	n := 10
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1.0)
		y[i] = float64(i + 1)
	}
	ds, err := NewDataset(x, y, []string{"flat"})
	require.NoError(t, err)

	params := DefaultParams()
	params.NumIterations = 5
	params.MinDataInLeaf = 1

	trainer := NewTrainer(params)
	require.NoError(t, trainer.Fit(ds))

	require.Len(t, warned, 1)
	var convErr *tabErrors.ConvergenceWarning
	assert.ErrorAs(t, warned[0], &convErr)

	pred, err := trainer.GetModel().PredictSingle([]float64{1.0})
	require.NoError(t, err)
	assert.InDelta(t, 5.5, pred, 1e-12, "baseline model predicts the mean")
}

func TestTrainerMinDataInLeafBlocksSplit(t *testing.T) {
	var warned []error
	tabErrors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer tabErrors.SetWarningHandler(nil)

	ds := separableDataset(t)
	params := separableParams()
	params.MinDataInLeaf = 20

	trainer := NewTrainer(params)
	require.NoError(t, trainer.Fit(ds))
	require.Len(t, warned, 1)

	pred, err := trainer.GetModel().PredictSingle([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, pred, 1e-12)
}

func TestTrainerMotorTrend(t *testing.T) {
	m := motorTrendMatrix(t, "mpg ~ . - 1")
	ds, err := FromDesign(m)
	require.NoError(t, err)
	require.Equal(t, 10, ds.NumFeatures())

	params := DefaultParams()
	params.NumIterations = 50
	params.MinDataInLeaf = 3

	trainer := NewTrainer(params)
	require.NoError(t, trainer.Fit(ds))
	model := trainer.GetModel()
	require.NotNil(t, model)
	assert.Equal(t, 50, model.NumTrees())
	assert.Contains(t, model.FeatureNames, "wt")

	residuals, err := Residuals(model, ds)
	require.NoError(t, err)
	require.Len(t, residuals, 32)

	sse := 0.0
	for _, r := range residuals {
		sse += r * r
	}
	trainRMSE := math.Sqrt(sse / float64(len(residuals)))
	assert.Less(t, trainRMSE, 3.0, "boosted fit beats the 6 mpg baseline spread")
}

func TestTrainerRefitKeepsEarlierModel(t *testing.T) {
	ds := separableDataset(t)
	trainer := NewTrainer(separableParams())
	require.NoError(t, trainer.Fit(ds))
	first := trainer.GetModel()
	firstPred, err := first.PredictSingle([]float64{1, 1})
	require.NoError(t, err)

	require.NoError(t, trainer.Fit(ds))
	assert.Equal(t, 20, first.NumTrees())
	again, err := first.PredictSingle([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, firstPred, again)
}

func TestTrainerValidation(t *testing.T) {
	ds := separableDataset(t)

	bad := DefaultParams()
	bad.LearningRate = -1
	err := NewTrainer(bad).Fit(ds)
	var valErr *tabErrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "learning_rate", valErr.ParamName)

	err = NewTrainer(DefaultParams()).Fit(nil)
	assert.ErrorIs(t, err, tabErrors.ErrEmptyData)

	assert.Nil(t, NewTrainer(DefaultParams()).GetModel())
}

func TestTrainerUnknownObjective(t *testing.T) {
	params := DefaultParams()
	params.Objective = "quantile"
	err := NewTrainer(params).Fit(separableDataset(t))
	require.Error(t, err)
}

func TestModelSaveLoadRoundTrip(t *testing.T) {
	ds := separableDataset(t)
	trainer := NewTrainer(separableParams())
	require.NoError(t, trainer.Fit(ds))
	m := trainer.GetModel()

	path := filepath.Join(t.TempDir(), "boost.gob")
	require.NoError(t, m.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.FeatureNames, loaded.FeatureNames)
	assert.Equal(t, m.NumTrees(), loaded.NumTrees())
	assert.Equal(t, m.Objective, loaded.Objective)

	for _, row := range [][]float64{{1, 0}, {1, 1}} {
		want, err := m.PredictSingle(row)
		require.NoError(t, err)
		got, err := loaded.PredictSingle(row)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12)
	}
}

func TestFeatureImportance(t *testing.T) {
	ds := separableDataset(t)
	trainer := NewTrainer(separableParams())
	require.NoError(t, trainer.Fit(ds))
	m := trainer.GetModel()

	for _, importanceType := range []string{"split", "gain"} {
		importance, err := m.GetFeatureImportance(importanceType)
		require.NoError(t, err)
		require.Len(t, importance, 2)
		assert.Zero(t, importance[0], "constant feature never splits (%s)", importanceType)
		assert.InDelta(t, 1.0, importance[1], 1e-12, "all importance on the signal feature (%s)", importanceType)
	}

	_, err := m.GetFeatureImportance("cover")
	require.Error(t, err)

	ranked, err := m.RankedFeatures("split")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "signal", ranked[0].Name)
	assert.Equal(t, "constant", ranked[1].Name)
}

func TestPredictorShapeChecks(t *testing.T) {
	ds := separableDataset(t)
	trainer := NewTrainer(separableParams())
	require.NoError(t, trainer.Fit(ds))
	m := trainer.GetModel()

	_, err := m.Predict(mat.NewDense(4, 3, nil))
	var shapeErr *tabErrors.InputShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, []int{4, 2}, shapeErr.Expected)
	assert.Equal(t, []int{4, 3}, shapeErr.Got)

	_, err = m.PredictSingle([]float64{1})
	require.ErrorAs(t, err, &shapeErr)

	var notFitted Model
	_, err = notFitted.PredictSingle([]float64{1})
	var nfErr *tabErrors.NotFittedError
	assert.ErrorAs(t, err, &nfErr)
}

func TestPredictMatchesPredictSingle(t *testing.T) {
	ds := separableDataset(t)
	trainer := NewTrainer(separableParams())
	require.NoError(t, trainer.Fit(ds))
	m := trainer.GetModel()

	preds, err := m.Predict(ds.Features())
	require.NoError(t, err)
	rows, cols := preds.Dims()
	require.Equal(t, 20, rows)
	require.Equal(t, 1, cols)

	buf := make([]float64, ds.NumFeatures())
	for i := 0; i < rows; i++ {
		ds.Row(i, buf)
		want, err := m.PredictSingle(buf)
		require.NoError(t, err)
		assert.InDelta(t, want, preds.At(i, 0), 1e-12)
	}
}

func TestPredictBinaryObjective(t *testing.T) {
	n := 20
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < n/2 {
			x.Set(i, 0, 0.0)
			y[i] = 0.0
		} else {
			x.Set(i, 0, 1.0)
			y[i] = 1.0
		}
	}
	ds, err := NewDataset(x, y, []string{"x"})
	require.NoError(t, err)

	params := DefaultParams()
	params.Objective = "binary"
	params.NumIterations = 20
	params.LearningRate = 0.5
	params.MinDataInLeaf = 5

	trainer := NewTrainer(params)
	require.NoError(t, trainer.Fit(ds))
	m := trainer.GetModel()
	assert.Equal(t, "binary", m.Objective)

	neg, err := m.PredictSingle([]float64{0})
	require.NoError(t, err)
	pos, err := m.PredictSingle([]float64{1})
	require.NoError(t, err)
	assert.Less(t, neg, 0.1)
	assert.Greater(t, pos, 0.9)

	preds, err := m.Predict(ds.Features())
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		p := preds.At(i, 0)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestBestIterationCapsPrediction(t *testing.T) {
	ds := separableDataset(t)
	trainer := NewTrainer(separableParams())
	require.NoError(t, trainer.Fit(ds))
	m := trainer.GetModel()

	full, err := m.PredictSingle([]float64{1, 1})
	require.NoError(t, err)

	m.BestIteration = 1
	capped, err := m.PredictSingle([]float64{1, 1})
	require.NoError(t, err)

	// One tree moves the estimate halfway from the 5.0 baseline.
	assert.InDelta(t, 7.5, capped, 1e-9)
	assert.Greater(t, full, capped)
}
