package boost

import (
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// Residuals returns label minus prediction for every row of the
// dataset, in row order. The usual callers retrain on the full data
// after cross-validation and inspect these for structure the model
// missed.
func Residuals(m *Model, ds *Dataset) ([]float64, error) {
	if ds == nil || ds.NumRows() == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "boost.Residuals")
	}
	preds, err := m.Predict(ds.Features())
	if err != nil {
		return nil, tabErrors.Wrap(err, "boost.Residuals")
	}
	residuals := make([]float64, ds.NumRows())
	for i := range residuals {
		residuals[i] = ds.Label(i) - preds.At(i, 0)
	}
	return residuals, nil
}
