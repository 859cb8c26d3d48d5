package inspect

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tabml/tabprep/boost"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// SaveResidualPlot writes a residuals-versus-fitted scatter with a
// dashed zero line to path. The image format follows the file
// extension (.png, .svg, .pdf).
func SaveResidualPlot(fitted, residuals []float64, path string) error {
	if len(fitted) == 0 {
		return tabErrors.Wrap(tabErrors.ErrEmptyData, "inspect.SaveResidualPlot")
	}
	if len(fitted) != len(residuals) {
		return tabErrors.NewDimensionError("inspect.SaveResidualPlot", len(fitted), len(residuals), 0)
	}

	pts := make(plotter.XYs, len(fitted))
	minX, maxX := fitted[0], fitted[0]
	for i := range fitted {
		pts[i].X = fitted[i]
		pts[i].Y = residuals[i]
		if fitted[i] < minX {
			minX = fitted[i]
		}
		if fitted[i] > maxX {
			maxX = fitted[i]
		}
	}

	p := plot.New()
	p.Title.Text = "Residuals vs Fitted"
	p.X.Label.Text = "Fitted value"
	p.Y.Label.Text = "Residual"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return tabErrors.Wrap(err, "inspect.SaveResidualPlot")
	}
	scatter.Color = plotter.DefaultLineStyle.Color
	p.Add(scatter)

	zero, err := plotter.NewLine(plotter.XYs{{X: minX, Y: 0}, {X: maxX, Y: 0}})
	if err != nil {
		return tabErrors.Wrap(err, "inspect.SaveResidualPlot")
	}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(zero)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return tabErrors.Wrap(err, "inspect.SaveResidualPlot")
	}
	return nil
}

// SaveImportancePlot writes a bar chart of feature importances to
// path, in the given order. Pair it with Model.RankedFeatures for a
// sorted chart.
func SaveImportancePlot(features []boost.FeatureImportance, path string) error {
	if len(features) == 0 {
		return tabErrors.Wrap(tabErrors.ErrEmptyData, "inspect.SaveImportancePlot")
	}

	values := make(plotter.Values, len(features))
	names := make([]string, len(features))
	for i, f := range features {
		values[i] = f.Value
		names[i] = f.Name
	}

	p := plot.New()
	p.Title.Text = "Feature Importance"
	p.Y.Label.Text = "Normalized importance"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return tabErrors.Wrap(err, "inspect.SaveImportancePlot")
	}
	bars.Color = plotter.DefaultLineStyle.Color
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return tabErrors.Wrap(err, "inspect.SaveImportancePlot")
	}
	return nil
}
