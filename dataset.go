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
	"fmt"
	"sort"
	"time"

	"github.com/ctessum/sparse"
)

// Attrs holds free-form attribute metadata for a variable or a whole
// file. Values keep the types the underlying file format reported
// (strings or numeric slices).
type Attrs map[string]interface{}

// String returns the attribute named k as a string, or "" if it is
// missing or not string-typed.
func (a Attrs) String(k string) string {
	if a == nil {
		return ""
	}
	if s, ok := a[k].(string); ok {
		return s
	}
	return ""
}

// A Variable is one labeled array in a Dataset.
type Variable struct {
	// Data holds the variable values, converted to float64.
	Data *sparse.DenseArray

	// Dims names the dimension of each axis of Data, in order.
	Dims []string

	// Attrs holds the variable attributes (units, description, ...).
	Attrs Attrs
}

// A Dataset is the in-memory form of one or more model output files:
// a collection of variables sharing named dimensions, global
// attributes, and an absolute time coordinate. A Dataset is created
// fresh by every load and is owned by the caller.
type Dataset struct {
	dims     map[string]int
	dimOrder []string
	vars     map[string]*Variable
	varOrder []string

	// Attrs holds the file's global attributes.
	Attrs Attrs

	// Time is the absolute time coordinate. TimeDim names the
	// dimension it spans.
	Time    []time.Time
	TimeDim string
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		dims:  make(map[string]int),
		vars:  make(map[string]*Variable),
		Attrs: make(Attrs),
	}
}

// AddDim registers a dimension. Re-registering an existing dimension
// with a different length is an error.
func (d *Dataset) AddDim(name string, length int) error {
	if l, ok := d.dims[name]; ok {
		if l != length {
			return fmt.Errorf("modelobs: dimension %s redefined: have length %d, want %d", name, l, length)
		}
		return nil
	}
	d.dims[name] = length
	d.dimOrder = append(d.dimOrder, name)
	return nil
}

// Dim returns the length of the named dimension.
func (d *Dataset) Dim(name string) (int, bool) {
	l, ok := d.dims[name]
	return l, ok
}

// DimNames returns the dimension names in registration order.
func (d *Dataset) DimNames() []string { return d.dimOrder }

// AddVar adds a variable, checking its shape against the registered
// dimensions.
func (d *Dataset) AddVar(name string, v *Variable) error {
	if _, ok := d.vars[name]; ok {
		return fmt.Errorf("modelobs: variable %s added twice", name)
	}
	if len(v.Dims) != len(v.Data.Shape) {
		return fmt.Errorf("modelobs: variable %s has %d dimension names but %d axes",
			name, len(v.Dims), len(v.Data.Shape))
	}
	for i, dim := range v.Dims {
		l, ok := d.dims[dim]
		if !ok {
			return fmt.Errorf("modelobs: variable %s uses unregistered dimension %s", name, dim)
		}
		if l != v.Data.Shape[i] {
			return fmt.Errorf("modelobs: variable %s axis %d has length %d; dimension %s has length %d",
				name, i, v.Data.Shape[i], dim, l)
		}
	}
	if v.Attrs == nil {
		v.Attrs = make(Attrs)
	}
	d.vars[name] = v
	d.varOrder = append(d.varOrder, name)
	return nil
}

// Var returns the named variable, or nil if it does not exist.
func (d *Dataset) Var(name string) *Variable { return d.vars[name] }

// VarNames returns the variable names in the order they were added.
func (d *Dataset) VarNames() []string { return d.varOrder }

// SetTime sets the time coordinate and the dimension it spans. The
// coordinate length must match the dimension length.
func (d *Dataset) SetTime(dim string, t []time.Time) error {
	l, ok := d.dims[dim]
	if !ok {
		return fmt.Errorf("modelobs: time dimension %s not registered", dim)
	}
	if l != len(t) {
		return fmt.Errorf("modelobs: time coordinate has %d values; dimension %s has length %d", len(t), dim, l)
	}
	d.Time = t
	d.TimeDim = dim
	return nil
}

// TimeMonotonic reports whether the time coordinate is monotonically
// non-decreasing.
func (d *Dataset) TimeMonotonic() bool {
	for i := 1; i < len(d.Time); i++ {
		if d.Time[i].Before(d.Time[i-1]) {
			return false
		}
	}
	return true
}

// At returns the values of the named variable at time index it,
// with the leading time axis removed. If the variable does not span
// the time dimension its full array is returned.
func (d *Dataset) At(name string, it int) (*sparse.DenseArray, error) {
	v := d.vars[name]
	if v == nil {
		return nil, fmt.Errorf("modelobs: no variable %s", name)
	}
	if len(v.Dims) == 0 || v.Dims[0] != d.TimeDim {
		return v.Data, nil
	}
	if it < 0 || it >= v.Data.Shape[0] {
		return nil, fmt.Errorf("modelobs: time index %d out of range for variable %s", it, name)
	}
	shape := v.Data.Shape[1:]
	out := sparse.ZerosDense(shape...)
	n := len(out.Elements)
	copy(out.Elements, v.Data.Elements[it*n:(it+1)*n])
	return out, nil
}

// ConcatTime combines datasets loaded from consecutive files into
// one, appending the time coordinate and every variable whose leading
// dimension is the time dimension. Variables that do not span time
// are taken from the first dataset and must have matching shapes in
// the rest.
func ConcatTime(ds ...*Dataset) (*Dataset, error) {
	if len(ds) == 0 {
		return nil, fmt.Errorf("modelobs: no datasets to concatenate")
	}
	if len(ds) == 1 {
		return ds[0], nil
	}
	first := ds[0]
	ntime := 0
	for _, d := range ds {
		if d.TimeDim != first.TimeDim {
			return nil, fmt.Errorf("modelobs: concatenating datasets with time dimensions %s and %s",
				first.TimeDim, d.TimeDim)
		}
		ntime += len(d.Time)
	}
	out := NewDataset()
	for k, v := range first.Attrs {
		out.Attrs[k] = v
	}
	for _, dim := range first.dimOrder {
		l := first.dims[dim]
		if dim == first.TimeDim {
			l = ntime
		}
		if err := out.AddDim(dim, l); err != nil {
			return nil, err
		}
	}
	times := make([]time.Time, 0, ntime)
	for _, d := range ds {
		times = append(times, d.Time...)
	}
	for _, name := range first.varOrder {
		v := first.vars[name]
		if len(v.Dims) == 0 || v.Dims[0] != first.TimeDim {
			for _, d := range ds[1:] {
				o := d.Var(name)
				if o == nil || len(o.Data.Elements) != len(v.Data.Elements) {
					return nil, fmt.Errorf("modelobs: static variable %s differs between files", name)
				}
			}
			if err := out.AddVar(name, v); err != nil {
				return nil, err
			}
			continue
		}
		shape := append([]int{ntime}, v.Data.Shape[1:]...)
		data := sparse.ZerosDense(shape...)
		i := 0
		for _, d := range ds {
			o := d.Var(name)
			if o == nil {
				return nil, fmt.Errorf("modelobs: variable %s missing from one of the files", name)
			}
			copy(data.Elements[i:], o.Data.Elements)
			i += len(o.Data.Elements)
		}
		err := out.AddVar(name, &Variable{Data: data, Dims: v.Dims, Attrs: v.Attrs})
		if err != nil {
			return nil, err
		}
	}
	if err := out.SetTime(first.TimeDim, times); err != nil {
		return nil, err
	}
	return out, nil
}

// Meta carries the variable and model-run metadata that accompanies a
// loaded dataset.
type Meta struct {
	// Acknowledgements and References describe the model run's
	// provenance.
	Acknowledgements string
	References       string

	// Global holds file-level attributes moved out of the dataset.
	Global Attrs

	vars map[string]Attrs
}

// NewMeta returns an empty metadata record.
func NewMeta() *Meta {
	return &Meta{Global: make(Attrs), vars: make(map[string]Attrs)}
}

// Set records the attributes for the named variable.
func (m *Meta) Set(name string, attrs Attrs) { m.vars[name] = attrs }

// Get returns the attributes recorded for the named variable.
func (m *Meta) Get(name string) Attrs { return m.vars[name] }

// Vars returns the names of all variables with recorded attributes.
func (m *Meta) Vars() []string {
	var names []string
	for n := range m.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
