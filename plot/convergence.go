// Package plot renders an SL1QP solve's convergence history (objective
// value and infeasibility measure per outer iteration) as a PNG, using
// gonum/plot - an optional diagnostic surface, not part of the driver's
// core contract.
package plot

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Sample is one outer iteration's recorded history point.
type Sample struct {
	Iteration int
	Objective float64
	Infeasibility float64
}

// RenderConvergence writes a two-series (objective, infeasibility) line
// chart of samples to path as a PNG.
func RenderConvergence(path string, samples []Sample) error {
	p := plot.New()
	p.Title.Text = "SL1QP convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "value"

	objPts := make(plotter.XYs, len(samples))
	infeaPts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		objPts[i].X, objPts[i].Y = float64(s.Iteration), s.Objective
		infeaPts[i].X, infeaPts[i].Y = float64(s.Iteration), s.Infeasibility
	}

	objLine, err := plotter.NewLine(objPts)
	if err != nil {
		return err
	}
	objLine.Color = plotter.DefaultLineStyle.Color

	infeaLine, err := plotter.NewLine(infeaPts)
	if err != nil {
		return err
	}
	infeaLine.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(objLine, infeaLine)
	p.Legend.Add("objective", objLine)
	p.Legend.Add("infeasibility", infeaLine)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
