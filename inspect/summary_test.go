package inspect

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{2, -1, 0, 1, -2})
	require.NoError(t, err)

	assert.Equal(t, 5, s.N)
	assert.Equal(t, -2.0, s.Min)
	assert.Equal(t, -1.0, s.Q1)
	assert.Equal(t, 0.0, s.Median)
	assert.Equal(t, 1.0, s.Q3)
	assert.Equal(t, 2.0, s.Max)
	assert.InDelta(t, 0.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), s.Std, 1e-12)
	assert.InDelta(t, math.Sqrt(2.0), s.RMSE, 1e-12)
}

func TestSummarizeDoesNotReorderInput(t *testing.T) {
	residuals := []float64{3, 1, 2}
	_, err := Summarize(residuals)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, residuals)
}

func TestSummarizeSingleResidual(t *testing.T) {
	s, err := Summarize([]float64{3})
	require.NoError(t, err)

	assert.Equal(t, 1, s.N)
	assert.Equal(t, 3.0, s.Min)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 3.0, s.Max)
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 0.0, s.Std)
	assert.InDelta(t, 3.0, s.RMSE, 1e-12)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, tabErrors.ErrEmptyData)
}

func TestSummarizeRejectsNonFinite(t *testing.T) {
	_, err := Summarize([]float64{1, math.NaN(), 2})
	require.Error(t, err)

	var ve *tabErrors.ValueError
	assert.ErrorAs(t, err, &ve)

	_, err = Summarize([]float64{1, math.Inf(1)})
	assert.Error(t, err)
}

func TestSummaryString(t *testing.T) {
	s, err := Summarize([]float64{2, -1, 0, 1, -2})
	require.NoError(t, err)

	out := s.String()
	assert.True(t, strings.HasPrefix(out, "residuals (n=5):"))
	assert.Contains(t, out, "min -2")
	assert.Contains(t, out, "median 0")
	assert.Contains(t, out, "rmse 1.414")
}
