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

package extract

import (
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/spacemodel/modelobs"
)

// testModel builds a two-step model dataset on a 3x2 (lat, lon) grid
// where dene = 100*step + 10*lat + lon, which is linear in each
// coordinate.
func testModel(t *testing.T) *modelobs.Dataset {
	ds := modelobs.NewDataset()
	for _, d := range []struct {
		name string
		len  int
	}{{"time", 2}, {"lat", 3}, {"lon", 2}} {
		if err := ds.AddDim(d.name, d.len); err != nil {
			t.Fatal(err)
		}
	}
	lat := sparse.ZerosDense(3)
	copy(lat.Elements, []float64{60, 62, 64})
	if err := ds.AddVar("glat", &modelobs.Variable{Data: lat, Dims: []string{"lat"}}); err != nil {
		t.Fatal(err)
	}
	lon := sparse.ZerosDense(2)
	copy(lon.Elements, []float64{-150, -148})
	if err := ds.AddVar("glon", &modelobs.Variable{Data: lon, Dims: []string{"lon"}}); err != nil {
		t.Fatal(err)
	}
	dene := sparse.ZerosDense(2, 3, 2)
	for it := 0; it < 2; it++ {
		for ilat := 0; ilat < 3; ilat++ {
			for ilon := 0; ilon < 2; ilon++ {
				dene.Set(float64(100*it+10*ilat+ilon), it, ilat, ilon)
			}
		}
	}
	err := ds.AddVar("dene", &modelobs.Variable{Data: dene, Dims: []string{"time", "lat", "lon"}})
	if err != nil {
		t.Fatal(err)
	}
	t0 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := ds.SetTime("time", []time.Time{t0, t0.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestViewNearest(t *testing.T) {
	ds := testModel(t)
	t0 := ds.Time[0]
	obsTimes := []time.Time{
		t0.Add(time.Minute),             // closest to step 0
		t0.Add(50 * time.Minute),        // closest to step 1
		t0.Add(3 * time.Hour),           // past the end; clamps to step 1
	}
	coords := []Coord{
		{Name: "glat", Values: []float64{60.4, 63.9, 62}},
		{Name: "glon", Values: []float64{-150, -148.2, -149.5}},
	}
	have, err := View(ds, "dene", obsTimes, coords, Nearest)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 121, 110}
	for j := range want {
		if have[j] != want[j] {
			t.Errorf("observation %d: have %g, want %g", j, have[j], want[j])
		}
	}
}

// The test field is linear in both coordinates, so linear
// interpolation must be exact everywhere inside the domain.
func TestViewLinear(t *testing.T) {
	ds := testModel(t)
	t0 := ds.Time[0]
	obsTimes := []time.Time{t0, t0, t0}
	lats := []float64{61, 62.5, 60}
	lons := []float64{-149, -148.5, -150}
	coords := []Coord{
		{Name: "glat", Values: lats},
		{Name: "glon", Values: lons},
	}
	have, err := View(ds, "dene", obsTimes, coords, Linear)
	if err != nil {
		t.Fatal(err)
	}
	for j := range have {
		want := 10*(lats[j]-60)/2 + (lons[j]+150)/2
		if math.Abs(have[j]-want) > 1e-12 {
			t.Errorf("observation %d: have %g, want %g", j, have[j], want)
		}
	}
}

func TestViewLinearOutOfDomain(t *testing.T) {
	ds := testModel(t)
	t0 := ds.Time[0]
	coords := []Coord{
		{Name: "glat", Values: []float64{59}}, // below the grid
		{Name: "glon", Values: []float64{-149}},
	}
	have, err := View(ds, "dene", []time.Time{t0}, coords, Linear)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(have[0]) {
		t.Errorf("have %g, want NaN outside the domain", have[0])
	}
}

func TestViewErrors(t *testing.T) {
	ds := testModel(t)
	t0 := ds.Time[0]
	if _, err := View(ds, "missing", []time.Time{t0}, nil, Nearest); err == nil {
		t.Error("missing variable should fail")
	}
	short := []Coord{{Name: "glat", Values: []float64{61}}}
	if _, err := View(ds, "dene", []time.Time{t0}, short, Nearest); err == nil {
		t.Error("wrong coordinate count should fail")
	}
	mismatched := []Coord{
		{Name: "glat", Values: []float64{61, 62}},
		{Name: "glon", Values: []float64{-149}},
	}
	if _, err := View(ds, "dene", []time.Time{t0}, mismatched, Nearest); err == nil {
		t.Error("coordinate length mismatch should fail")
	}
}

func TestNearestTime(t *testing.T) {
	t0 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{t0, t0.Add(time.Hour), t0.Add(2 * time.Hour)}
	cases := []struct {
		t    time.Time
		want int
	}{
		{t0.Add(-time.Hour), 0},
		{t0, 0},
		{t0.Add(29 * time.Minute), 0},
		{t0.Add(31 * time.Minute), 1},
		{t0.Add(90 * time.Minute), 1}, // ties break low
		{t0.Add(5 * time.Hour), 2},
	}
	for _, c := range cases {
		if have := NearestTime(times, c.t); have != c.want {
			t.Errorf("NearestTime(%v): have %d, want %d", c.t, have, c.want)
		}
	}
}

func TestLevels(t *testing.T) {
	axis := []float64{100, 200, 300}
	have := Levels(axis, []float64{100, 150, 300, 50, 350})
	want := []float64{0, 0.5, 2, math.NaN(), math.NaN()}
	for j := range want {
		if math.IsNaN(want[j]) {
			if !math.IsNaN(have[j]) {
				t.Errorf("target %d: have %g, want NaN", j, have[j])
			}
			continue
		}
		if have[j] != want[j] {
			t.Errorf("target %d: have %g, want %g", j, have[j], want[j])
		}
	}
}

// Descending axes occur in pressure coordinates.
func TestLevelsDescending(t *testing.T) {
	axis := []float64{1000, 500, 100}
	have := Levels(axis, []float64{750, 100})
	want := []float64{0.5, 2}
	for j := range want {
		if have[j] != want[j] {
			t.Errorf("target %d: have %g, want %g", j, have[j], want[j])
		}
	}
}
