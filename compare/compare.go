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

// Package compare calculates statistical comparison metrics between
// paired observation and model values.
package compare

import (
	"fmt"
	"math"
	"sort"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/atmos/evalstats"
	"gonum.org/v1/gonum/stat"

	"github.com/spacemodel/modelobs/match"
)

// A Metric reduces paired observation and model slices to one number.
type Metric func(obs, model []float64) float64

// metrics is the by-name metric registry.
var metrics = map[string]Metric{
	"meanBias":     evalstats.MB,
	"meanErr":      evalstats.ME,
	"meanFracBias": evalstats.MFB,
	"meanFracErr":  evalstats.MFE,
	"meanRatio":    evalstats.MR,
	"RMSE":         rmse,
	"nRMSE":        nrmse,
	"meanAbsErr":   meanAbsErr,
	"medAbsErr":    medAbsErr,
	"corr": func(obs, model []float64) float64 {
		return stat.Correlation(obs, model, nil)
	},
	"slope": func(obs, model []float64) float64 {
		slope, _, _, _, _, _ := stats.LinearRegression(obs, model)
		return slope
	},
	"R2": func(obs, model []float64) float64 {
		_, _, r2, _, _, _ := stats.LinearRegression(obs, model)
		return r2
	},
}

// Metrics returns the names of all available metrics.
func Metrics() []string {
	var names []string
	for n := range metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Compare calculates the named metrics over the paired slices. Pairs
// where either value is NaN are excluded. An unknown metric name is
// an error.
func Compare(obs, model []float64, methods []string) (map[string]float64, error) {
	if len(obs) != len(model) {
		return nil, fmt.Errorf("compare: %d observation values but %d model values", len(obs), len(model))
	}
	o, m := match.DropNaN(obs, model)
	if len(o) == 0 {
		return nil, fmt.Errorf("compare: no valid pairs")
	}
	out := make(map[string]float64, len(methods))
	for _, name := range methods {
		f, ok := metrics[name]
		if !ok {
			return nil, fmt.Errorf("compare: unknown metric %q; available metrics are %v", name, Metrics())
		}
		out[name] = f(o, m)
	}
	return out, nil
}

func rmse(obs, model []float64) float64 {
	var sum float64
	for i := range obs {
		d := model[i] - obs[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(obs)))
}

// nrmse is the RMSE normalized by the mean observed value.
func nrmse(obs, model []float64) float64 {
	return rmse(obs, model) / stat.Mean(obs, nil)
}

func meanAbsErr(obs, model []float64) float64 {
	var sum float64
	for i := range obs {
		sum += math.Abs(model[i] - obs[i])
	}
	return sum / float64(len(obs))
}

func medAbsErr(obs, model []float64) float64 {
	diffs := make([]float64, len(obs))
	for i := range obs {
		diffs[i] = math.Abs(model[i] - obs[i])
	}
	sort.Float64s(diffs)
	return stat.Quantile(0.5, stat.Empirical, diffs, nil)
}
