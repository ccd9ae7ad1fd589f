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

// Package match pairs observations with temporally and spatially
// co-located model output.
package match

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/sparse"

	"github.com/spacemodel/modelobs"
	"github.com/spacemodel/modelobs/extract"
)

// A PairSet holds observation values and the model values matched to
// them. Slices in Obs and Model are aligned with Times.
type PairSet struct {
	Times []time.Time
	Obs   map[string][]float64
	Model map[string][]float64
}

// Len returns the number of matched pairs.
func (p *PairSet) Len() int { return len(p.Times) }

// Dataset converts the pair set into a dataset with an "index"
// dimension, with observation variables prefixed "obs_" and model
// variables prefixed "model_".
func (p *PairSet) Dataset() (*modelobs.Dataset, error) {
	ds := modelobs.NewDataset()
	if err := ds.AddDim("index", p.Len()); err != nil {
		return nil, err
	}
	add := func(prefix string, vars map[string][]float64) error {
		for _, name := range sortedKeys(vars) {
			arr := sparseFrom(vars[name])
			err := ds.AddVar(prefix+name, &modelobs.Variable{Data: arr, Dims: []string{"index"}})
			if err != nil {
				return err
			}
		}
		return nil
	}
	epoch := make([]float64, p.Len())
	for i, t := range p.Times {
		epoch[i] = float64(t.Unix())
	}
	err := ds.AddVar("time", &modelobs.Variable{
		Data: sparseFrom(epoch),
		Dims: []string{"index"},
		Attrs: modelobs.Attrs{
			"units": "seconds since 1970-01-01 00:00:00 UTC",
		},
	})
	if err != nil {
		return nil, err
	}
	if err := add("obs_", p.Obs); err != nil {
		return nil, err
	}
	if err := add("model_", p.Model); err != nil {
		return nil, err
	}
	if err := ds.SetTime("index", p.Times); err != nil {
		return nil, err
	}
	return ds, nil
}

// Pairs matches each observation in obs to the nearest model time
// within the given window and samples the model there. varMap maps
// observation variable names to the model variables they are compared
// with; coordNames maps each model coordinate axis (in the order of
// the model variables' non-time dimensions) to the observation
// variable holding positions along it. Observations with no model
// time within the window are dropped.
func Pairs(obs, model *modelobs.Dataset, varMap map[string]string, coordNames map[string]string,
	window time.Duration, method extract.Method) (*PairSet, error) {
	if len(obs.Time) == 0 {
		return nil, fmt.Errorf("match: observation dataset has no time coordinate")
	}
	if len(model.Time) == 0 {
		return nil, fmt.Errorf("match: model dataset has no time coordinate")
	}
	// Select the observations with a model time inside the window.
	var keep []int
	for j, t := range obs.Time {
		it := extract.NearestTime(model.Time, t)
		d := model.Time[it].Sub(t)
		if d < 0 {
			d = -d
		}
		if d <= window {
			keep = append(keep, j)
		}
	}
	ps := &PairSet{
		Obs:   make(map[string][]float64),
		Model: make(map[string][]float64),
	}
	for _, j := range keep {
		ps.Times = append(ps.Times, obs.Time[j])
	}
	for obsVar, modelVar := range varMap {
		ov := obs.Var(obsVar)
		if ov == nil {
			return nil, fmt.Errorf("match: no observation variable %s", obsVar)
		}
		if len(ov.Data.Shape) != 1 {
			return nil, fmt.Errorf("match: observation variable %s is not a time series", obsVar)
		}
		mv := model.Var(modelVar)
		if mv == nil {
			return nil, fmt.Errorf("match: no model variable %s", modelVar)
		}
		spatialDims := mv.Dims
		if len(mv.Dims) > 0 && mv.Dims[0] == model.TimeDim {
			spatialDims = mv.Dims[1:]
		}
		coords := make([]extract.Coord, len(spatialDims))
		for i, dim := range spatialDims {
			axisVar, ok := coordNames[dim]
			if !ok {
				return nil, fmt.Errorf("match: no observation coordinate given for model dimension %s", dim)
			}
			pos := obs.Var(axisVar)
			if pos == nil {
				return nil, fmt.Errorf("match: no observation variable %s for model dimension %s", axisVar, dim)
			}
			modelAxis, err := axisVarFor(model, dim)
			if err != nil {
				return nil, err
			}
			coords[i] = extract.Coord{Name: modelAxis, Values: subset(pos.Data.Elements, keep)}
		}
		times := ps.Times
		sampled, err := extract.View(model, modelVar, times, coords, method)
		if err != nil {
			return nil, err
		}
		ps.Obs[obsVar] = subset(ov.Data.Elements, keep)
		ps.Model[modelVar] = sampled
	}
	return ps, nil
}

// axisVarFor finds the model variable serving as the coordinate axis
// of dim: the variable named after the dimension if there is one,
// otherwise the only 1-D variable spanning it.
func axisVarFor(model *modelobs.Dataset, dim string) (string, error) {
	if v := model.Var(dim); v != nil && len(v.Dims) == 1 && v.Dims[0] == dim {
		return dim, nil
	}
	var found []string
	for _, name := range model.VarNames() {
		v := model.Var(name)
		if len(v.Dims) == 1 && v.Dims[0] == dim {
			found = append(found, name)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", fmt.Errorf("match: no coordinate axis variable for model dimension %s", dim)
	}
	return "", fmt.Errorf("match: ambiguous coordinate axis for model dimension %s: %v", dim, found)
}

func subset(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

// A Cell is one horizontal model column footprint, carrying the index
// of the column in the model grid.
type Cell struct {
	geom.Polygonal
	Index int
}

// A CellMatcher matches horizontal locations to unstructured model
// columns using a spatial index of their footprints.
type CellMatcher struct {
	index *rtree.Rtree
}

// NewCellMatcher indexes the given cells.
func NewCellMatcher(cells []*Cell) *CellMatcher {
	m := &CellMatcher{index: rtree.NewTree(25, 50)}
	for _, c := range cells {
		m.index.Insert(c)
	}
	return m
}

// Match returns the index of the cell containing the given location,
// or false if no cell contains it.
func (m *CellMatcher) Match(x, y float64) (int, bool) {
	p := geom.Point{X: x, Y: y}
	for _, cI := range m.index.SearchIntersect(p.Bounds()) {
		c := cI.(*Cell)
		if p.Within(c.Polygonal) != geom.Outside {
			return c.Index, true
		}
	}
	return -1, false
}

func sparseFrom(vals []float64) *sparse.DenseArray {
	arr := sparse.ZerosDense(len(vals))
	copy(arr.Elements, vals)
	return arr
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DropNaN removes pairs where either value is NaN, for metric
// calculations that require complete pairs.
func DropNaN(obs, model []float64) (o, m []float64) {
	for i := range obs {
		if math.IsNaN(obs[i]) || math.IsNaN(model[i]) {
			continue
		}
		o = append(o, obs[i])
		m = append(m, model[i])
	}
	return o, m
}
