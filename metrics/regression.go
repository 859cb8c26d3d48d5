// Package metrics provides regression evaluation metrics over gonum vectors.
// Degenerate inputs that make a metric undefined raise an
// UndefinedMetricWarning instead of failing, matching how the rest of the
// module reports recoverable data issues.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// MSE computes the mean squared error between two vectors.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, tabErrors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, tabErrors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE computes the root mean squared error between two vectors.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error between two vectors.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, tabErrors.NewValueError("MAE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, tabErrors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination. When yTrue has no
// variance the score is undefined; an UndefinedMetricWarning is raised and 0
// is returned.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, tabErrors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, tabErrors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)
		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	if tss == 0 {
		tabErrors.Warn(tabErrors.NewUndefinedMetricWarning("r2", "zero variance in y_true", 0))
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// MAPE computes the mean absolute percentage error, skipping rows where
// yTrue is zero. When every row is zero the metric is undefined; an
// UndefinedMetricWarning is raised and 0 is returned.
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, tabErrors.NewValueError("MAPE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, tabErrors.NewDimensionError("MAPE", n, yPred.Len(), 0)
	}

	var sum float64
	valid := 0
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		if yTrueVal == 0 {
			continue
		}
		sum += math.Abs(yTrueVal-yPred.AtVec(i)) / math.Abs(yTrueVal)
		valid++
	}

	if valid == 0 {
		tabErrors.Warn(tabErrors.NewUndefinedMetricWarning("mape", "all y_true values are zero", 0))
		return 0, nil
	}
	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore computes 1 - Var(yTrue-yPred)/Var(yTrue). When
// yTrue has no variance an UndefinedMetricWarning is raised and 0 is
// returned.
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, tabErrors.NewValueError("ExplainedVarianceScore", "empty vector")
	}
	if yPred.Len() != n {
		return 0, tabErrors.NewDimensionError("ExplainedVarianceScore", n, yPred.Len(), 0)
	}

	var yTrueMean, diffMean float64
	for i := 0; i < n; i++ {
		yTrueMean += yTrue.AtVec(i)
		diffMean += yTrue.AtVec(i) - yPred.AtVec(i)
	}
	yTrueMean /= float64(n)
	diffMean /= float64(n)

	var varYTrue, varDiff float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		diff := yTrueVal - yPred.AtVec(i)
		varYTrue += (yTrueVal - yTrueMean) * (yTrueVal - yTrueMean)
		varDiff += (diff - diffMean) * (diff - diffMean)
	}

	if varYTrue == 0 {
		tabErrors.Warn(tabErrors.NewUndefinedMetricWarning("explained_variance", "zero variance in y_true", 0))
		return 0, nil
	}
	return 1 - varDiff/varYTrue, nil
}

// vecFromColumn validates that m is a single-column matrix and copies it
// into a vector.
func vecFromColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, tabErrors.NewValueError(op, "empty matrix")
	}
	if c != 1 {
		return nil, tabErrors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}

// MSEMatrix computes MSE for n×1 matrix inputs.
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	tv, err := vecFromColumn("MSEMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	pv, err := vecFromColumn("MSEMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return MSE(tv, pv)
}

// R2ScoreMatrix computes the coefficient of determination for n×1 matrix
// inputs.
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	tv, err := vecFromColumn("R2ScoreMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	pv, err := vecFromColumn("R2ScoreMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return R2Score(tv, pv)
}
