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

// Package gemini3d loads output files generated by the Gemini3D
// ionosphere model through its PyGemini interface. Gemini3D writes
// HDF5 files with multiple dimensions for most variables.
package gemini3d

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
	Platform = "pygemini"
	Name     = "gemini3d"

	acknowledgements = "The Gemini3D model and PyGemini interface were " +
		"developed by Matthew Zettergren and Michael Hirsch under NSF " +
		"CAREER and NASA HDEE funding along with PI Joshua Semeter and " +
		"Co-I Jeffrey Klenzing."
)

// testURL locates the benchmark run archive for the "test" tag.
var testURL = "https://www.zenodo.org/record/4043048/files/test2dew_fang.zip?download=1"

// Epoch is the reference time of the benchmark model run; the ut
// variable in each file counts fractional hours from this time.
var Epoch = time.Date(2012, 2, 20, 5, 0, 0, 0, time.UTC)

var supportedTags = modelobs.SupportedTags{
	"": {
		"":     filePattern,
		"test": filePattern,
	},
}

var filePattern = modelobs.FilePattern{
	Template:   "[DATE]_[SOD].[USEC].h5",
	DateFormat: "20060102",
}

// Inst is the Gemini3D instrument plugin.
type Inst struct {
	log *logrus.Logger
}

func init() {
	modelobs.Register(&Inst{})
}

func (g *Inst) Platform() string { return Platform }

func (g *Inst) Name() string { return Name }

func (g *Inst) Tags() map[string]string {
	return map[string]string{
		"":     "pygemini output file",
		"test": "Standard output of pygemini for benchmarking",
	}
}

func (g *Inst) InstIDs() map[string][]string {
	return map[string][]string{"": {"", "test"}}
}

// Init logs the model acknowledgements. It runs once, before any
// other call.
func (g *Inst) Init(log *logrus.Logger) error {
	g.log = log
	g.logger().Info(acknowledgements)
	return nil
}

func (g *Inst) logger() *logrus.Logger {
	if g.log == nil {
		return logrus.StandardLogger()
	}
	return g.log
}

// Clean is a no-op: no cleaning is defined for Gemini3D output.
func (g *Inst) Clean(level string, ds *modelobs.Dataset) error {
	if err := modelobs.CheckCleanLevel(level); err != nil {
		return err
	}
	g.logger().Info("Cleaning not supported for Gemini3D")
	return nil
}

// ListFiles returns the Gemini3D output files in dir in chronological
// order.
func (g *Inst) ListFiles(dir, tag, instID string) ([]string, error) {
	p, err := supportedTags.Pattern(instID, tag)
	if err != nil {
		return nil, err
	}
	return modelobs.ListFiles(dir, p)
}

// Load reads the named HDF5 files into a single dataset. The time
// coordinate is synthesized by adding the ut variable, in hours, to
// the model epoch.
func (g *Inst) Load(ctx context.Context, fnames []string, tag, instID string) (*modelobs.Dataset, *modelobs.Meta, error) {
	if !modelobs.ValidTag(g, tag, instID) {
		return nil, nil, fmt.Errorf("gemini3d: unsupported tag %q, inst_id %q", tag, instID)
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
		if err := setTime(ds); err != nil {
			return nil, nil, fmt.Errorf("gemini3d: %s: %v", filepath.Base(fname), err)
		}
		parts = append(parts, ds)
	}
	ds, err := modelobs.ConcatTime(parts...)
	if err != nil {
		return nil, nil, err
	}
	meta := modelobs.BuildMeta(ds, false)
	meta.Acknowledgements = acknowledgements
	return ds, meta, nil
}

// setTime derives the absolute time coordinate from the ut variable.
func setTime(ds *modelobs.Dataset) error {
	ut := ds.Var("ut")
	if ut == nil {
		return fmt.Errorf("no ut variable in file")
	}
	if len(ut.Dims) != 1 {
		return fmt.Errorf("ut variable has %d dimensions; want 1", len(ut.Dims))
	}
	times := make([]time.Time, len(ut.Data.Elements))
	for i, val := range ut.Data.Elements {
		times[i] = Epoch.Add(time.Duration(int64(val*3600)) * time.Second)
	}
	return ds.SetTime(ut.Dims[0], times)
}

// Download retrieves the benchmark run archive for the first
// requested date. Only the "test" tag has downloadable data; other
// tags log a warning and perform no network call. A 404 response is
// skipped silently.
func (g *Inst) Download(ctx context.Context, dates []time.Time, tag, instID, dataPath string) error {
	if tag != "test" {
		g.logger().Warn("gemini3d: downloads are only supported for test files")
		return nil
	}
	if len(dates) == 0 {
		return fmt.Errorf("gemini3d: no dates requested for download")
	}
	p, err := supportedTags.Pattern(instID, tag)
	if err != nil {
		return err
	}
	dest := filepath.Join(dataPath, p.Format(dates[0]))
	_, err = modelobs.DownloadFile(ctx, testURL, dest)
	return err
}
