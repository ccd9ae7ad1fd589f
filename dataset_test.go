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

package modelobs

import (
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

func testTimes(n int, step time.Duration) []time.Time {
	t0 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = t0.Add(time.Duration(i) * step)
	}
	return out
}

func TestDatasetShapeChecks(t *testing.T) {
	ds := NewDataset()
	if err := ds.AddDim("time", 2); err != nil {
		t.Fatal(err)
	}
	if err := ds.AddDim("alt", 3); err != nil {
		t.Fatal(err)
	}
	if err := ds.AddDim("time", 5); err == nil {
		t.Error("redefining a dimension with a different length should fail")
	}

	good := &Variable{Data: sparse.ZerosDense(2, 3), Dims: []string{"time", "alt"}}
	if err := ds.AddVar("dene", good); err != nil {
		t.Fatal(err)
	}
	if err := ds.AddVar("dene", good); err == nil {
		t.Error("adding a variable twice should fail")
	}
	bad := &Variable{Data: sparse.ZerosDense(3, 2), Dims: []string{"time", "alt"}}
	if err := ds.AddVar("flipped", bad); err == nil {
		t.Error("mismatched shape should fail")
	}
	unknown := &Variable{Data: sparse.ZerosDense(2), Dims: []string{"lat"}}
	if err := ds.AddVar("stray", unknown); err == nil {
		t.Error("unregistered dimension should fail")
	}
	if want := []string{"dene"}; !reflect.DeepEqual(ds.VarNames(), want) {
		t.Errorf("have variables %v, want %v", ds.VarNames(), want)
	}
}

func TestDatasetTime(t *testing.T) {
	ds := NewDataset()
	if err := ds.AddDim("time", 3); err != nil {
		t.Fatal(err)
	}
	if err := ds.SetTime("time", testTimes(2, time.Hour)); err == nil {
		t.Error("wrong-length time coordinate should fail")
	}
	if err := ds.SetTime("time", testTimes(3, time.Hour)); err != nil {
		t.Fatal(err)
	}
	if !ds.TimeMonotonic() {
		t.Error("time coordinate should be monotonic")
	}
	ds.Time[1], ds.Time[2] = ds.Time[2], ds.Time[1]
	if ds.TimeMonotonic() {
		t.Error("shuffled time coordinate should not be monotonic")
	}
}

func TestDatasetAt(t *testing.T) {
	ds := NewDataset()
	if err := ds.AddDim("time", 2); err != nil {
		t.Fatal(err)
	}
	if err := ds.AddDim("alt", 2); err != nil {
		t.Fatal(err)
	}
	data := sparse.ZerosDense(2, 2)
	copy(data.Elements, []float64{1, 2, 3, 4})
	if err := ds.AddVar("dene", &Variable{Data: data, Dims: []string{"time", "alt"}}); err != nil {
		t.Fatal(err)
	}
	if err := ds.SetTime("time", testTimes(2, time.Hour)); err != nil {
		t.Fatal(err)
	}
	slice, err := ds.At("dene", 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{3, 4}; !reflect.DeepEqual(slice.Elements, want) {
		t.Errorf("have %v, want %v", slice.Elements, want)
	}
	if _, err := ds.At("dene", 2); err == nil {
		t.Error("out-of-range time index should fail")
	}
	if _, err := ds.At("missing", 0); err == nil {
		t.Error("missing variable should fail")
	}
}

func TestConcatTime(t *testing.T) {
	mk := func(t0 time.Time, vals []float64) *Dataset {
		ds := NewDataset()
		if err := ds.AddDim("time", len(vals)); err != nil {
			t.Fatal(err)
		}
		if err := ds.AddDim("alt", 1); err != nil {
			t.Fatal(err)
		}
		data := sparse.ZerosDense(len(vals), 1)
		copy(data.Elements, vals)
		if err := ds.AddVar("dene", &Variable{Data: data, Dims: []string{"time", "alt"}}); err != nil {
			t.Fatal(err)
		}
		glat := sparse.ZerosDense(1)
		glat.Elements[0] = 65
		if err := ds.AddVar("glat", &Variable{Data: glat, Dims: []string{"alt"}}); err != nil {
			t.Fatal(err)
		}
		times := make([]time.Time, len(vals))
		for i := range times {
			times[i] = t0.Add(time.Duration(i) * time.Hour)
		}
		if err := ds.SetTime("time", times); err != nil {
			t.Fatal(err)
		}
		return ds
	}
	t0 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	a := mk(t0, []float64{1, 2})
	b := mk(t0.Add(2*time.Hour), []float64{3})

	out, err := ConcatTime(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if l, _ := out.Dim("time"); l != 3 {
		t.Errorf("have time length %d, want 3", l)
	}
	if want := []float64{1, 2, 3}; !reflect.DeepEqual(out.Var("dene").Data.Elements, want) {
		t.Errorf("have %v, want %v", out.Var("dene").Data.Elements, want)
	}
	if len(out.Time) != 3 || !out.TimeMonotonic() {
		t.Errorf("bad concatenated time coordinate: %v", out.Time)
	}
	if out.Var("glat").Data.Elements[0] != 65 {
		t.Error("static variable should be carried through")
	}
}
