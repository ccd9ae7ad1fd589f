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

// Package sami2 loads output files generated by the SAMI2 ionosphere
// model through the sami2py interface. sami2py writes a netCDF file
// with multiple dimensions for some variables.
package sami2

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/spacemodel/modelobs"
)

const (
	// Platform and Name identify this instrument in the registry.
	Platform = "sami2py"
	Name     = "sami2"

	acknowledgements = "This work uses the SAMI2 ionosphere model " +
		"written and developed by the Naval Research Laboratory."

	references = "Huba, J.D., G. Joyce, and J.A. Fedder, Sami2 is " +
		"Another Model of the Ionosphere (SAMI2): A new low-latitude " +
		"ionosphere model, J. Geophys. Res., 105, Pages 23035-23053, " +
		"https://doi.org/10.1029/2000JA000035, 2000.\n" +
		"Klenzing, J., Jonathon Smith, Michael Hirsch, & Angeline G. " +
		"Burrell. (2020, July 17). sami2py/sami2py: Version 0.2.2 " +
		"(Version v0.2.2). Zenodo. http://doi.org/10.5281/zenodo.3950564"
)

// testURL locates the benchmark output file for the "test" tag.
var testURL = "https://github.com/sami2py/sami2py/blob/main/sami2py/tests/test_data/sami2py_output.nc?raw=true"

var supportedTags = modelobs.SupportedTags{
	"": {
		"":     filePattern,
		"test": filePattern,
	},
}

var filePattern = modelobs.FilePattern{
	Template:   "sami2py_output_[DATE].nc",
	DateFormat: "2006-01-02",
}

// Inst is the SAMI2 instrument plugin.
type Inst struct {
	log *logrus.Logger
}

func init() {
	modelobs.Register(&Inst{})
}

func (s *Inst) Platform() string { return Platform }

func (s *Inst) Name() string { return Name }

func (s *Inst) Tags() map[string]string {
	return map[string]string{
		"":     "sami2py output file",
		"test": "Standard output of sami2py for benchmarking",
	}
}

func (s *Inst) InstIDs() map[string][]string {
	return map[string][]string{"": {"", "test"}}
}

// Init logs the model acknowledgements. It runs once, before any
// other call.
func (s *Inst) Init(log *logrus.Logger) error {
	s.log = log
	s.logger().Info(acknowledgements)
	return nil
}

func (s *Inst) logger() *logrus.Logger {
	if s.log == nil {
		return logrus.StandardLogger()
	}
	return s.log
}

// Clean is a no-op: no cleaning is defined for SAMI2 output.
func (s *Inst) Clean(level string, ds *modelobs.Dataset) error {
	if err := modelobs.CheckCleanLevel(level); err != nil {
		return err
	}
	s.logger().Info("Cleaning not supported for SAMI2")
	return nil
}

// ListFiles returns the sami2py output files in dir in chronological
// order.
func (s *Inst) ListFiles(dir, tag, instID string) ([]string, error) {
	p, err := supportedTags.Pattern(instID, tag)
	if err != nil {
		return nil, err
	}
	return modelobs.ListFiles(dir, p)
}

// Load reads the named netCDF files into a single dataset. sami2py
// writes through xarray, which may produce either classic or
// HDF5-backed netCDF, so the format-dispatching reader is used. The
// ut variable holds fractional hours of universal time; it is
// combined with the run date taken from each file name to form the
// absolute time coordinate. Global file attributes are moved into the
// returned metadata.
func (s *Inst) Load(ctx context.Context, fnames []string, tag, instID string) (*modelobs.Dataset, *modelobs.Meta, error) {
	if !modelobs.ValidTag(s, tag, instID) {
		return nil, nil, fmt.Errorf("sami2: unsupported tag %q, inst_id %q", tag, instID)
	}
	var parts []*modelobs.Dataset
	for _, fname := range fnames {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		ds, err := modelobs.ReadNetCDF4File(fname)
		if err != nil {
			return nil, nil, err
		}
		day, err := filePattern.ParseTime(fname)
		if err != nil {
			return nil, nil, err
		}
		if err := setTime(ds, day); err != nil {
			return nil, nil, fmt.Errorf("sami2: %s: %v", filepath.Base(fname), err)
		}
		parts = append(parts, ds)
	}
	ds, err := modelobs.ConcatTime(parts...)
	if err != nil {
		return nil, nil, err
	}
	meta := modelobs.BuildMeta(ds, true)
	meta.Acknowledgements = acknowledgements
	meta.References = references
	return ds, meta, nil
}

// setTime renames the ut coordinate to an absolute time coordinate
// anchored at the run date.
func setTime(ds *modelobs.Dataset, day time.Time) error {
	ut := ds.Var("ut")
	if ut == nil {
		return fmt.Errorf("no ut variable in file")
	}
	if len(ut.Dims) != 1 {
		return fmt.Errorf("ut variable has %d dimensions; want 1", len(ut.Dims))
	}
	times := make([]time.Time, len(ut.Data.Elements))
	for i, val := range ut.Data.Elements {
		times[i] = day.Add(time.Duration(int64(val*float64(time.Hour))) * time.Nanosecond)
	}
	return ds.SetTime(ut.Dims[0], times)
}

// Download retrieves the sami2py benchmark file for the first
// requested date. Only the "test" tag has downloadable data; other
// tags log a warning and perform no network call. A 404 response is
// skipped silently.
func (s *Inst) Download(ctx context.Context, dates []time.Time, tag, instID, dataPath string) error {
	if tag != "test" {
		s.logger().Warn("sami2: downloads are only supported for test files")
		return nil
	}
	if len(dates) == 0 {
		return fmt.Errorf("sami2: no dates requested for download")
	}
	p, err := supportedTags.Pattern(instID, tag)
	if err != nil {
		return err
	}
	dest := filepath.Join(dataPath, p.Format(dates[0]))
	_, err = modelobs.DownloadFile(ctx, testURL, dest)
	return err
}
