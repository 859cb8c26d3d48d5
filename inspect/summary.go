// Package inspect summarizes fitted models: residual statistics,
// diagnostic plots and plain-text reports of cross-validation runs.
package inspect

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// ResidualSummary holds the five-number summary of a residual vector
// plus its moments. Quantiles are empirical (no interpolation).
type ResidualSummary struct {
	N      int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Mean   float64
	Std    float64
	RMSE   float64
}

// Summarize computes the residual summary.
func Summarize(residuals []float64) (*ResidualSummary, error) {
	if len(residuals) == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "inspect.Summarize")
	}
	for i, r := range residuals {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, tabErrors.NewValueError("inspect.Summarize",
				fmt.Sprintf("residual %d is not finite", i))
		}
	}

	sorted := make([]float64, len(residuals))
	copy(sorted, residuals)
	sort.Float64s(sorted)

	sumSquares := 0.0
	for _, r := range residuals {
		sumSquares += r * r
	}

	s := &ResidualSummary{
		N:      len(residuals),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(residuals, nil),
		RMSE:   math.Sqrt(sumSquares / float64(len(residuals))),
	}
	if len(residuals) > 1 {
		s.Std = stat.StdDev(residuals, nil)
	}
	return s, nil
}

// String renders the summary in two aligned lines.
func (s *ResidualSummary) String() string {
	return fmt.Sprintf(
		"residuals (n=%d):\n  min %.4g  q1 %.4g  median %.4g  q3 %.4g  max %.4g\n  mean %.4g  std %.4g  rmse %.4g",
		s.N, s.Min, s.Q1, s.Median, s.Q3, s.Max, s.Mean, s.Std, s.RMSE)
}
