package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

func TestLoadBasic(t *testing.T) {
	csv := `name,score,group
alpha,1.5,a
beta,2.5,b
gamma,3.5,a
`
	f, err := Load(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, f.NumRows())
	assert.Equal(t, 3, f.NumCols())
	assert.Equal(t, []string{"name", "score", "group"}, f.Names())

	score, err := f.Column("score")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, score.Kind)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, score.Values)

	group, err := f.Column("group")
	require.NoError(t, err)
	assert.Equal(t, KindCategorical, group.Kind)
	assert.Equal(t, []string{"a", "b"}, group.Levels)
	assert.Equal(t, []float64{0, 1, 0}, group.Values)
}

func TestLoadMissingValues(t *testing.T) {
	csv := `x,label
1.0,yes
NA,no
3.0,NA
,yes
`
	f, err := Load(strings.NewReader(csv))
	require.NoError(t, err)

	x, err := f.Column("x")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, x.Kind)
	assert.True(t, math.IsNaN(x.Values[1]))
	assert.True(t, math.IsNaN(x.Values[3]))
	assert.Equal(t, 2, x.CountMissing())

	label, err := f.Column("label")
	require.NoError(t, err)
	assert.Equal(t, KindCategorical, label.Kind)
	assert.Equal(t, []string{"no", "yes"}, label.Levels)
	assert.True(t, label.IsMissing(2))
	assert.Equal(t, "yes", label.LevelName(0))
	assert.Equal(t, "", label.LevelName(2))
}

func TestLoadEmptyInput(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, tabErrors.Is(err, tabErrors.ErrEmptyData))

	_, err = Load(strings.NewReader("a,b,c\n"))
	require.Error(t, err)
	assert.True(t, tabErrors.Is(err, tabErrors.ErrEmptyData))
}

func TestLoadRaggedRows(t *testing.T) {
	csv := `a,b,c
1,2,3
4,5
`
	_, err := Load(strings.NewReader(csv))
	require.Error(t, err)

	var dimErr *tabErrors.DimensionError
	require.True(t, tabErrors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestLoadDuplicateColumns(t *testing.T) {
	csv := `a,b,a
1,2,3
`
	_, err := Load(strings.NewReader(csv))
	require.Error(t, err)

	var valErr *tabErrors.ValidationError
	require.True(t, tabErrors.As(err, &valErr))
	assert.Contains(t, valErr.Error(), "duplicate column name")
}

func TestLoadWithCategorical(t *testing.T) {
	csv := `gear,wt
3,2.6
4,3.2
3,1.8
5,2.1
`
	f, err := Load(strings.NewReader(csv), WithCategorical("gear"))
	require.NoError(t, err)

	gear, err := f.Column("gear")
	require.NoError(t, err)
	assert.Equal(t, KindCategorical, gear.Kind)
	assert.Equal(t, []string{"3", "4", "5"}, gear.Levels)

	wt, err := f.Column("wt")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, wt.Kind)
}

func TestLoadWithNAValues(t *testing.T) {
	csv := `x
1.0
missing
3.0
`
	f, err := Load(strings.NewReader(csv), WithNAValues("missing"))
	require.NoError(t, err)

	x, err := f.Column("x")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, x.Kind)
	assert.True(t, math.IsNaN(x.Values[1]))
}

func TestLoadWithNAValuesCategorical(t *testing.T) {
	csv := `group
a
missing
b
`
	f, err := Load(strings.NewReader(csv), WithNAValues("missing"))
	require.NoError(t, err)

	group, err := f.Column("group")
	require.NoError(t, err)
	assert.Equal(t, KindCategorical, group.Kind)
	assert.Equal(t, []string{"a", "b"}, group.Levels)
	assert.True(t, group.IsMissing(1))
	assert.Equal(t, 1, group.CountMissing())
}

func TestFromDataFrame(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"species", "width"},
		{"setosa", "3.5"},
		{"virginica", "3.0"},
		{"setosa", "3.1"},
	})
	require.NoError(t, df.Err)

	f, err := FromDataFrame(df)
	require.NoError(t, err)
	assert.Equal(t, 3, f.NumRows())

	species, err := f.Column("species")
	require.NoError(t, err)
	assert.Equal(t, KindCategorical, species.Kind)
	assert.Equal(t, []string{"setosa", "virginica"}, species.Levels)

	width, err := f.Column("width")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, width.Kind)
}
