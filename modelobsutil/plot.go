/*
Copyright © 2020 the ModelObs authors.
This file is part of ModelObs.

ModelObs is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ModelObs is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ModelObs.  If not, see <http://www.gnu.org/licenses/>.
*/

package modelobsutil

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ScatterPlot writes a scatter plot of paired observation and model
// values, with a 1:1 reference line, to fname. The output format is
// chosen from the file extension.
func ScatterPlot(obs, model []float64, obsLabel, modelLabel, fname string) error {
	if len(obs) != len(model) {
		return fmt.Errorf("modelobs: %d observation values but %d model values", len(obs), len(model))
	}
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.X.Label.Text = obsLabel
	p.Y.Label.Text = modelLabel

	pts := make(plotter.XYs, len(obs))
	for i := range obs {
		pts[i].X = obs[i]
		pts[i].Y = model[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(s)

	oneToOne := plotter.NewFunction(func(x float64) float64 { return x })
	p.Add(oneToOne)

	return p.Save(4*vg.Inch, 4*vg.Inch, fname)
}
