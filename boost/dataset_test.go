package boost

import (
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

func motorTrendMatrix(t *testing.T, formulaStr string) *design.Matrix {
	t.Helper()
	frame, err := dataset.SampleMotorTrend().Drop("model")
	require.NoError(t, err)
	builder, err := design.NewBuilder("numeric", encoding.NAPropagate)
	require.NoError(t, err)
	m, err := builder.Build(frame, formula.MustParse(formulaStr))
	require.NoError(t, err)
	return m
}

func TestNewDataset(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	ds, err := NewDataset(x, []float64{10, 20, 30}, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, 2, ds.NumFeatures())
	assert.Equal(t, []string{"a", "b"}, ds.FeatureNames())
	assert.Equal(t, 20.0, ds.Label(1))

	row := make([]float64, 2)
	ds.Row(2, row)
	assert.Equal(t, []float64{5, 6}, row)
}

func TestNewDatasetValidation(t *testing.T) {
	x := mat.NewDense(3, 2, nil)

	_, err := NewDataset(nil, []float64{1}, []string{"a"})
	assert.Error(t, err)

	_, err = NewDataset(x, []float64{1, 2}, []string{"a", "b"})
	var dimErr *tabErrors.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 0, dimErr.Axis)

	_, err = NewDataset(x, []float64{1, 2, 3}, []string{"a"})
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 1, dimErr.Axis)
}

func TestFromDesign(t *testing.T) {
	m := motorTrendMatrix(t, "mpg ~ wt + hp - 1")
	ds, err := FromDesign(m)
	require.NoError(t, err)

	assert.Equal(t, 32, ds.NumRows())
	assert.Equal(t, 2, ds.NumFeatures())
	assert.Equal(t, []string{"wt", "hp"}, ds.FeatureNames())
	assert.Equal(t, m.SourceFingerprint, ds.SourceFingerprint())
	assert.InDelta(t, 21.0, ds.Label(0), 1e-12)
}

func TestFromDesignNil(t *testing.T) {
	_, err := FromDesign(nil)
	assert.Error(t, err)
}

func TestDatasetLabelsIsCopy(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})
	ds, err := NewDataset(x, []float64{10, 20}, []string{"a"})
	require.NoError(t, err)

	labels := ds.Labels()
	labels[0] = -99
	assert.Equal(t, 10.0, ds.Label(0))
}

func TestDatasetSubset(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})
	ds, err := NewDataset(x, []float64{100, 200, 300, 400}, []string{"a", "b"})
	require.NoError(t, err)

	sub, err := ds.Subset([]int{3, 1})
	require.NoError(t, err)

	assert.Equal(t, 2, sub.NumRows())
	assert.Equal(t, 400.0, sub.Label(0))
	assert.Equal(t, 200.0, sub.Label(1))

	row := make([]float64, 2)
	sub.Row(0, row)
	assert.Equal(t, []float64{4, 40}, row)

	// Subset rows are copies, mutating them leaves the parent intact.
	sub.Features().Set(0, 0, -1)
	assert.Equal(t, 4.0, ds.Features().At(3, 0))
}

func TestDatasetSubsetValidation(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})
	ds, err := NewDataset(x, []float64{1, 2}, []string{"a"})
	require.NoError(t, err)

	_, err = ds.Subset(nil)
	assert.ErrorIs(t, err, tabErrors.ErrEmptyData)

	_, err = ds.Subset([]int{5})
	assert.Error(t, err)
}
