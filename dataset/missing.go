package dataset

import (
	"math"
	"math/rand/v2"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// InjectMissing returns a new frame where a fraction of the cells in the
// named columns (all columns when none are named) have been replaced with
// NaN. For each target column, round(frac*NumRows) distinct rows are chosen
// from a PCG stream seeded with seed, so the same arguments always blank the
// same cells. The returned count is the number of cells that changed; cells
// that were already missing are not counted again.
func (f *Frame) InjectMissing(frac float64, seed uint64, cols ...string) (*Frame, int, error) {
	if frac < 0 || frac > 1 {
		return nil, 0, tabErrors.NewValidationError("frac", "must be in [0, 1]", frac)
	}
	if len(cols) == 0 {
		cols = f.Names()
	}
	for _, name := range cols {
		if !f.HasColumn(name) {
			return nil, 0, tabErrors.NewValueError("dataset.InjectMissing", "unknown column: "+name)
		}
	}

	out := f.clone()
	rng := rand.New(rand.NewPCG(seed, seed))
	perCol := int(math.Round(frac * float64(f.nrows)))

	injected := 0
	for _, name := range cols {
		col := &out.cols[out.index[name]]
		for _, row := range rng.Perm(f.nrows)[:perCol] {
			if !math.IsNaN(col.Values[row]) {
				col.Values[row] = math.NaN()
				injected++
			}
		}
	}

	return out, injected, nil
}
