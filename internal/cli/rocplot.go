package cli

import (
	"fmt"

	"github.com/YuminosukeSato/churnguard/metrics"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// saveROCPlot draws the ROC curve with the chance diagonal. The image
// format follows the file extension (.png, .svg, .pdf).
func saveROCPlot(path string, points []metrics.ROCPoint, auc float64) error {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i].X = p.FPR
		xys[i].Y = p.TPR
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("ROC curve (AUC %.3f)", auc)
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	curve, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrap(err, "failed to build ROC line")
	}
	chance := plotter.NewFunction(func(x float64) float64 { return x })
	chance.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(plotter.NewGrid(), chance, curve)
	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save ROC plot to %s", path)
	}
	return nil
}
