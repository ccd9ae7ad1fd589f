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

// Package extract samples gridded model output at observation
// locations, producing an instrument-like view of a model run.
package extract

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/spacemodel/modelobs"
)

// Method selects how model values are sampled at observation
// locations.
type Method string

const (
	// Nearest takes the model value at the closest grid point.
	Nearest Method = "nearest"
	// Linear interpolates multilinearly between surrounding grid
	// points and yields NaN outside the model domain.
	Linear Method = "linear"
)

// A Coord pairs a model coordinate axis variable with the positions
// of each observation along that axis. Name must refer to a 1-D
// monotonic model variable, and Values must have one entry per
// observation.
type Coord struct {
	Name   string
	Values []float64
}

// View samples the model variable varName at each observation, given
// the observation times and one Coord per non-time dimension of the
// variable, in dimension order. The returned slice is aligned with
// obsTimes. Observations outside the model time range clamp to the
// first or last model step; callers that want them excluded filter by
// time window first. For Linear, observations outside the spatial
// domain are NaN.
func View(model *modelobs.Dataset, varName string, obsTimes []time.Time, coords []Coord, method Method) ([]float64, error) {
	v := model.Var(varName)
	if v == nil {
		return nil, fmt.Errorf("extract: no model variable %s", varName)
	}
	if len(model.Time) == 0 {
		return nil, fmt.Errorf("extract: model dataset has no time coordinate")
	}
	spatialDims := v.Dims
	if len(v.Dims) > 0 && v.Dims[0] == model.TimeDim {
		spatialDims = v.Dims[1:]
	}
	if len(coords) != len(spatialDims) {
		return nil, fmt.Errorf("extract: variable %s has %d non-time dimensions but %d coordinates were given",
			varName, len(spatialDims), len(coords))
	}
	axes := make([][]float64, len(coords))
	for i, c := range coords {
		av := model.Var(c.Name)
		if av == nil {
			return nil, fmt.Errorf("extract: no model coordinate variable %s", c.Name)
		}
		if len(av.Data.Shape) != 1 {
			return nil, fmt.Errorf("extract: coordinate variable %s is not one-dimensional", c.Name)
		}
		if av.Data.Shape[0] != axisLen(model, spatialDims[i]) {
			return nil, fmt.Errorf("extract: coordinate variable %s does not span dimension %s",
				c.Name, spatialDims[i])
		}
		axes[i] = av.Data.Elements
	}
	for i, c := range coords {
		if len(c.Values) != len(obsTimes) {
			return nil, fmt.Errorf("extract: coordinate %s has %d values for %d observations",
				c.Name, len(c.Values), len(obsTimes))
		}
		if !monotonic(axes[i]) {
			return nil, fmt.Errorf("extract: model axis %s is not monotonic", c.Name)
		}
	}

	out := make([]float64, len(obsTimes))
	for j := range obsTimes {
		it := NearestTime(model.Time, obsTimes[j])
		slice, err := model.At(varName, it)
		if err != nil {
			return nil, err
		}
		point := make([]float64, len(coords))
		for i, c := range coords {
			point[i] = c.Values[j]
		}
		switch method {
		case Nearest:
			idx := make([]int, len(axes))
			for i, axis := range axes {
				idx[i] = nearestIndex(axis, point[i])
			}
			out[j] = slice.Get(idx...)
		case Linear:
			out[j] = interpolate(slice.Elements, slice.Shape, axes, point)
		default:
			return nil, fmt.Errorf("extract: unknown method %q", method)
		}
	}
	return out, nil
}

func axisLen(model *modelobs.Dataset, dim string) int {
	l, _ := model.Dim(dim)
	return l
}

// NearestTime returns the index of the time in times closest to t.
// times must be sorted.
func NearestTime(times []time.Time, t time.Time) int {
	i := sort.Search(len(times), func(i int) bool { return !times[i].Before(t) })
	if i == 0 {
		return 0
	}
	if i == len(times) {
		return len(times) - 1
	}
	if t.Sub(times[i-1]) <= times[i].Sub(t) {
		return i - 1
	}
	return i
}

func monotonic(axis []float64) bool {
	if len(axis) < 2 {
		return true
	}
	asc := axis[len(axis)-1] >= axis[0]
	for i := 1; i < len(axis); i++ {
		if asc && axis[i] < axis[i-1] {
			return false
		}
		if !asc && axis[i] > axis[i-1] {
			return false
		}
	}
	return true
}

// nearestIndex returns the index of the axis value closest to v. The
// axis may be ascending or descending.
func nearestIndex(axis []float64, v float64) int {
	lo, frac := bracket(axis, v)
	if frac > 0.5 {
		return lo + 1
	}
	return lo
}

// bracket locates v within the axis, returning the lower index of the
// surrounding interval and the fractional position within it. The
// fraction is negative below the axis and greater than one above it.
func bracket(axis []float64, v float64) (int, float64) {
	n := len(axis)
	if n == 1 {
		return 0, 0
	}
	asc := axis[n-1] >= axis[0]
	cmp := func(i int) bool {
		if asc {
			return axis[i] >= v
		}
		return axis[i] <= v
	}
	i := sort.Search(n, cmp)
	if i == 0 {
		i = 1
	}
	if i == n {
		i = n - 1
	}
	lo := i - 1
	den := axis[i] - axis[lo]
	if den == 0 {
		return lo, 0
	}
	return lo, (v - axis[lo]) / den
}

// interpolate performs multilinear interpolation of a flattened
// row-major array at the given point. Points outside the axis ranges
// yield NaN.
func interpolate(elements []float64, shape []int, axes [][]float64, point []float64) float64 {
	ndim := len(axes)
	los := make([]int, ndim)
	fracs := make([]float64, ndim)
	for i, axis := range axes {
		lo, frac := bracket(axis, point[i])
		if frac < 0 || frac > 1 {
			return math.NaN()
		}
		los[i] = lo
		fracs[i] = frac
	}
	// Accumulate over the 2^ndim corners of the surrounding cell.
	var sum float64
	for corner := 0; corner < 1<<uint(ndim); corner++ {
		w := 1.0
		flat := 0
		for i := 0; i < ndim; i++ {
			idx := los[i]
			if corner&(1<<uint(i)) != 0 {
				if los[i]+1 < shape[i] {
					idx = los[i] + 1
				}
				w *= fracs[i]
			} else {
				w *= 1 - fracs[i]
			}
			flat = flat*shape[i] + idx
		}
		if w != 0 {
			sum += w * elements[flat]
		}
	}
	return sum
}

// Levels converts target values into fractional indices along a
// monotonic axis, for translating observation altitudes into model
// level positions. Targets outside the axis range are NaN.
func Levels(axis []float64, targets []float64) []float64 {
	out := make([]float64, len(targets))
	for j, v := range targets {
		lo, frac := bracket(axis, v)
		if frac < 0 || frac > 1 {
			out[j] = math.NaN()
			continue
		}
		out[j] = float64(lo) + frac
	}
	return out
}
