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

package compare

import (
	"math"
	"testing"
)

func TestCompareIdentical(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	out, err := Compare(vals, vals, []string{"meanBias", "RMSE", "meanAbsErr", "medAbsErr", "corr", "slope", "R2"})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"meanBias", "RMSE", "meanAbsErr", "medAbsErr"} {
		if out[name] != 0 {
			t.Errorf("%s: have %g, want 0", name, out[name])
		}
	}
	for _, name := range []string{"corr", "slope", "R2"} {
		if math.Abs(out[name]-1) > 1e-12 {
			t.Errorf("%s: have %g, want 1", name, out[name])
		}
	}
}

func TestCompareValues(t *testing.T) {
	obs := []float64{1, 2, 3, 4}
	model := []float64{2, 2, 2, 6}
	out, err := Compare(obs, model, []string{"meanBias", "meanErr", "RMSE", "nRMSE", "meanAbsErr", "medAbsErr"})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name string
		want float64
	}{
		{"meanBias", 0.5},                     // (1 + 0 - 1 + 2) / 4
		{"meanErr", 1},                        // (1 + 0 + 1 + 2) / 4
		{"RMSE", math.Sqrt(6.0 / 4.0)},        // sqrt((1 + 0 + 1 + 4) / 4)
		{"nRMSE", math.Sqrt(6.0/4.0) / 2.5},   // RMSE over the mean observation
		{"meanAbsErr", 1},
		{"medAbsErr", 1},
	}
	for _, c := range cases {
		if math.Abs(out[c.name]-c.want) > 1e-12 {
			t.Errorf("%s: have %g, want %g", c.name, out[c.name], c.want)
		}
	}
}

func TestCompareDropsNaN(t *testing.T) {
	obs := []float64{1, math.NaN(), 3}
	model := []float64{1, 2, math.NaN()}
	out, err := Compare(obs, model, []string{"meanBias"})
	if err != nil {
		t.Fatal(err)
	}
	if out["meanBias"] != 0 {
		t.Errorf("have %g, want 0", out["meanBias"])
	}

	allNaN := []float64{math.NaN()}
	if _, err := Compare(allNaN, allNaN, []string{"meanBias"}); err == nil {
		t.Error("all-NaN input should fail")
	}
}

func TestCompareErrors(t *testing.T) {
	if _, err := Compare([]float64{1}, []float64{1, 2}, []string{"meanBias"}); err == nil {
		t.Error("mismatched lengths should fail")
	}
	if _, err := Compare([]float64{1}, []float64{1}, []string{"bogus"}); err == nil {
		t.Error("unknown metric should fail")
	}
}

func TestMetrics(t *testing.T) {
	names := Metrics()
	if len(names) != len(metrics) {
		t.Fatalf("have %d names, want %d", len(names), len(metrics))
	}
	for i := 1; i < len(names); i++ {
		if names[i] <= names[i-1] {
			t.Errorf("names should be sorted: %v", names)
		}
	}
}
