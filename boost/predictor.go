package boost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tabml/tabprep/core/parallel"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// predictParallelThreshold is the row count below which batch
// prediction stays on a single goroutine.
const predictParallelThreshold = 1000

// Predictor runs batch prediction over a fitted model. Rows are
// independent, so batches are chunked across goroutines unless the
// model was trained in deterministic mode, which pins prediction to a
// single goroutine.
type Predictor struct {
	model *Model
}

// NewPredictor wraps a fitted model for batch prediction.
func NewPredictor(m *Model) *Predictor {
	return &Predictor{model: m}
}

// Predict returns an n×1 matrix of outputs for every row of x. The
// input width must match the width the model was trained on.
func (p *Predictor) Predict(x mat.Matrix) (*mat.Dense, error) {
	if p.model == nil || p.model.NumFeatures == 0 {
		return nil, tabErrors.NewNotFittedError("Model", "Predict")
	}
	rows, cols := x.Dims()
	if cols != p.model.NumFeatures {
		return nil, tabErrors.NewInputShapeError("predict",
			[]int{rows, p.model.NumFeatures}, []int{rows, cols})
	}
	if rows == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "boost.Predict")
	}

	out := mat.NewDense(rows, 1, nil)
	predictRange := func(start, end int) {
		buf := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(buf, i, x)
			out.Set(i, 0, p.predictRow(buf))
		}
	}
	if p.model.Deterministic {
		predictRange(0, rows)
	} else {
		parallel.ParallelizeWithThreshold(rows, predictParallelThreshold, predictRange)
	}
	return out, nil
}

func (p *Predictor) predictRow(features []float64) float64 {
	raw := p.model.InitScore
	for i := 0; i < p.model.usedTrees(); i++ {
		raw += p.model.Trees[i].Predict(features)
	}
	return p.model.transform(raw)
}
