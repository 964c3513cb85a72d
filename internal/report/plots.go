package report

import (
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ResidualScatter writes a predicted-vs-residual scatter for one variant.
func ResidualScatter(path, title string, predicted, actual []float64) error {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return eris.Errorf("report: %d predictions vs %d actuals", len(predicted), len(actual))
	}

	pts := make(plotter.XYs, len(predicted))
	for i := range predicted {
		pts[i].X = predicted[i]
		pts[i].Y = actual[i] - predicted[i]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "predicted sale price"
	p.Y.Label.Text = "residual"

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return eris.Wrap(err, "report: build scatter")
	}
	p.Add(plotter.NewGrid(), s)

	minX, maxX := predicted[0], predicted[0]
	for _, v := range predicted {
		if v < minX {
			minX = v
		}
		if v > maxX {
			maxX = v
		}
	}
	zero := plotter.XYs{{X: minX, Y: 0}, {X: maxX, Y: 0}}
	line, err := plotter.NewLine(zero)
	if err == nil {
		p.Add(line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// PriceBoxplot writes a sale-price-by-neighborhood boxplot, keys sorted.
func PriceBoxplot(path string, prices map[string][]float64) error {
	if len(prices) == 0 {
		return eris.New("report: no prices to plot")
	}

	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := plot.New()
	p.Title.Text = "Sale price by neighborhood"
	p.Y.Label.Text = "sale price"

	for i, k := range keys {
		box, err := plotter.NewBoxPlot(vg.Points(15), float64(i), plotter.Values(prices[k]))
		if err != nil {
			return eris.Wrapf(err, "report: boxplot for %s", k)
		}
		p.Add(box)
	}
	p.NominalX(keys...)
	p.X.Tick.Label.Rotation = 0.9
	p.X.Tick.Label.XAlign = -0.9

	if err := p.Save(12*vg.Inch, 5*vg.Inch, path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// ValidationCurves writes every variant's per-round validation RMSE.
func ValidationCurves(path string, curves map[string][]float64) error {
	if len(curves) == 0 {
		return eris.New("report: no curves to plot")
	}

	names := make([]string, 0, len(curves))
	for k := range curves {
		names = append(names, k)
	}
	sort.Strings(names)

	p := plot.New()
	p.Title.Text = "Validation RMSE by boosting round"
	p.X.Label.Text = "round"
	p.Y.Label.Text = "rmse"
	p.Legend.Top = true

	for i, name := range names {
		curve := curves[name]
		pts := make(plotter.XYs, len(curve))
		for j, v := range curve {
			pts[j].X = float64(j + 1)
			pts[j].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return eris.Wrapf(err, "report: curve for %s", name)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}
