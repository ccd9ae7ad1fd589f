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
	"os"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// ReadCDFFile reads every numeric variable in a classic netCDF
// (CDF-1/CDF-2) file into a dataset. Character variables are skipped.
func ReadCDFFile(fname string) (*Dataset, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("modelobs: opening %s: %v", fname, err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("modelobs: reading netCDF header of %s: %v", fname, err)
	}
	ds := NewDataset()
	for _, a := range ff.Header.Attributes("") {
		ds.Attrs[a] = ff.Header.GetAttribute("", a)
	}
	for _, v := range ff.Header.Variables() {
		r := ff.Reader(v, nil, nil)
		buf := r.Zero(-1)
		switch buf.(type) {
		case []float64, []float32, []int32, []int16, []int8:
		default:
			continue
		}
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("modelobs: reading variable %s from %s: %v", v, fname, err)
		}
		data, _ := toFloat64s(buf)
		dims := ff.Header.Dimensions(v)
		lengths := ff.Header.Lengths(v)
		for i, dim := range dims {
			if err := ds.AddDim(dim, lengths[i]); err != nil {
				return nil, err
			}
		}
		arr := sparse.ZerosDense(lengths...)
		copy(arr.Elements, data)
		attrs := make(Attrs)
		for _, a := range ff.Header.Attributes(v) {
			attrs[a] = ff.Header.GetAttribute(v, a)
		}
		err := ds.AddVar(v, &Variable{Data: arr, Dims: dims, Attrs: attrs})
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// toFloat64s converts a numeric slice read from a file into float64
// values. The second return is false for non-numeric payloads.
func toFloat64s(buf interface{}) ([]float64, bool) {
	switch b := buf.(type) {
	case []float64:
		return b, true
	case []float32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, true
	case []int32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, true
	case []int16:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, true
	case []int8:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, true
	}
	return nil, false
}

// ReadNetCDF4File reads a netCDF4 file (HDF5- or CDF-backed; the
// reader dispatches on the file magic) into a dataset. Non-numeric
// variables are skipped.
func ReadNetCDF4File(fname string) (*Dataset, error) {
	nc, err := netcdf.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("modelobs: opening %s: %v", fname, err)
	}
	defer nc.Close()
	ds := NewDataset()
	ga := nc.Attributes()
	for _, k := range ga.Keys() {
		if v, ok := ga.Get(k); ok {
			ds.Attrs[k] = v
		}
	}
	for _, name := range nc.ListVariables() {
		vr, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("modelobs: reading variable %s from %s: %v", name, fname, err)
		}
		data, shape, ok := flattenNumeric(vr.Values)
		if !ok {
			continue
		}
		dims := vr.Dimensions
		if len(dims) != len(shape) {
			// Dimension names can be absent for scalars.
			if len(shape) == 0 {
				shape = []int{1}
			}
			if len(dims) != len(shape) {
				return nil, fmt.Errorf("modelobs: variable %s in %s has %d dimension names for %d axes",
					name, fname, len(dims), len(shape))
			}
		}
		for i, dim := range dims {
			if err := ds.AddDim(dim, shape[i]); err != nil {
				return nil, err
			}
		}
		arr := sparse.ZerosDense(shape...)
		copy(arr.Elements, data)
		attrs := make(Attrs)
		am := vr.Attributes
		for _, k := range am.Keys() {
			if v, ok := am.Get(k); ok {
				attrs[k] = v
			}
		}
		err = ds.AddVar(name, &Variable{Data: arr, Dims: dims, Attrs: attrs})
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// flattenNumeric converts the possibly nested slices returned by the
// netCDF4 reader into a flat float64 slice plus its shape. The
// element kind is taken from the type so that zero-length axes still
// yield a shaped, empty result.
func flattenNumeric(values interface{}) ([]float64, []int, bool) {
	rt := reflect.TypeOf(values)
	if rt == nil {
		return nil, nil, false
	}
	ndim := 0
	for rt.Kind() == reflect.Slice {
		ndim++
		rt = rt.Elem()
	}
	switch rt.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, nil, false
	}
	shape := make([]int, ndim)
	rv := reflect.ValueOf(values)
	for i := 0; i < ndim; i++ {
		shape[i] = rv.Len()
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	out := make([]float64, 0, n)
	out = appendFlat(out, reflect.ValueOf(values))
	return out, shape, true
}

func appendFlat(out []float64, rv reflect.Value) []float64 {
	if rv.Kind() != reflect.Slice {
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return append(out, rv.Float())
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return append(out, float64(rv.Int()))
		default:
			return append(out, float64(rv.Uint()))
		}
	}
	for i := 0; i < rv.Len(); i++ {
		out = appendFlat(out, rv.Index(i))
	}
	return out
}

// WriteCDFFile writes the dataset to fname as a classic netCDF file
// with float32 variables. Only string attributes are written.
func WriteCDFFile(ds *Dataset, fname string) error {
	dims := ds.DimNames()
	lengths := make([]int, len(dims))
	for i, dim := range dims {
		lengths[i], _ = ds.Dim(dim)
	}
	h := cdf.NewHeader(dims, lengths)
	for k, v := range ds.Attrs {
		if s, ok := v.(string); ok {
			h.AddAttribute("", k, s)
		}
	}
	for _, name := range ds.VarNames() {
		v := ds.Var(name)
		h.AddVariable(name, v.Dims, []float32{0})
		for k, av := range v.Attrs {
			if s, ok := av.(string); ok {
				h.AddAttribute(name, k, s)
			}
		}
	}
	h.Define()
	ff, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("modelobs: creating %s: %v", fname, err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return fmt.Errorf("modelobs: writing netCDF header to %s: %v", fname, err)
	}
	for _, name := range ds.VarNames() {
		v := ds.Var(name)
		data32 := make([]float32, len(v.Data.Elements))
		for i, e := range v.Data.Elements {
			data32[i] = float32(e)
		}
		end := f.Header.Lengths(name)
		start := make([]int, len(end))
		w := f.Writer(name, start, end)
		if _, err := w.Write(data32); err != nil {
			ff.Close()
			return fmt.Errorf("modelobs: writing variable %s to %s: %v", name, fname, err)
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		ff.Close()
		return fmt.Errorf("modelobs: updating record count in %s: %v", fname, err)
	}
	return ff.Close()
}

// BuildMeta collects variable attributes from ds into a metadata
// record. If moveGlobal is true the dataset's global attributes are
// moved into the record and cleared from the dataset.
func BuildMeta(ds *Dataset, moveGlobal bool) *Meta {
	m := NewMeta()
	for _, name := range ds.VarNames() {
		m.Set(name, ds.Var(name).Attrs)
	}
	if moveGlobal {
		for k, v := range ds.Attrs {
			m.Global[k] = v
		}
		ds.Attrs = make(Attrs)
	}
	return m
}
