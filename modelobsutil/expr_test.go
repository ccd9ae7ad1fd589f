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
	"math"
	"testing"

	"github.com/ctessum/sparse"

	"github.com/spacemodel/modelobs"
)

func exprTestDataset(t *testing.T) *modelobs.Dataset {
	ds := modelobs.NewDataset()
	if err := ds.AddDim("time", 3); err != nil {
		t.Fatal(err)
	}
	add := func(name string, vals []float64) {
		arr := sparse.ZerosDense(len(vals))
		copy(arr.Elements, vals)
		if err := ds.AddVar(name, &modelobs.Variable{Data: arr, Dims: []string{"time"}}); err != nil {
			t.Fatal(err)
		}
	}
	add("dene", []float64{1e5, 2e5, 4e5})
	add("ti", []float64{800, 900, 1000})
	return ds
}

func TestDerive(t *testing.T) {
	ds := exprTestDataset(t)
	if err := Derive(ds, "logDene", "log10(dene)"); err != nil {
		t.Fatal(err)
	}
	v := ds.Var("logDene")
	if v == nil {
		t.Fatal("no derived variable")
	}
	want := []float64{5, math.Log10(2e5), math.Log10(4e5)}
	for i := range want {
		if math.Abs(v.Data.Elements[i]-want[i]) > 1e-12 {
			t.Errorf("element %d: have %g, want %g", i, v.Data.Elements[i], want[i])
		}
	}

	// Repeated references to one variable evaluate once per element.
	if err := Derive(ds, "ratio", "dene / (dene + ti)"); err != nil {
		t.Fatal(err)
	}
	r := ds.Var("ratio")
	if have, want := r.Data.Elements[0], 1e5/(1e5+800); math.Abs(have-want) > 1e-12 {
		t.Errorf("have %g, want %g", have, want)
	}
}

func TestDeriveErrors(t *testing.T) {
	ds := exprTestDataset(t)
	if err := Derive(ds, "bad", "log10(missing)"); err == nil {
		t.Error("unknown variable should fail")
	}
	if err := Derive(ds, "bad", "log10(dene"); err == nil {
		t.Error("unparseable expression should fail")
	}
	if err := Derive(ds, "bad", "1 + 2"); err == nil {
		t.Error("expression with no variables should fail")
	}
	if err := Derive(ds, "dene", "ti * 2"); err == nil {
		t.Error("overwriting an existing variable should fail")
	}
}
