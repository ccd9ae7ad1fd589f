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
	"context"
	"fmt"
	"time"

	"github.com/spacemodel/modelobs"
	"github.com/spacemodel/modelobs/compare"
	"github.com/spacemodel/modelobs/extract"
	"github.com/spacemodel/modelobs/match"
)

// Pair implements the pair command: it loads the configured model
// files and the observation file, matches them in time, samples the
// model at the observation locations, and writes the pairs to
// outputFile as netCDF.
func Pair(obsFile, obsTimeVar string, varMap, coordMap, derived map[string]string,
	window, method, outputFile string) error {
	ctx := context.Background()

	inst, err := lookupInstrument()
	if err != nil {
		return err
	}
	tag, instID := Cfg.GetString("Tag"), Cfg.GetString("InstID")
	files, err := inst.ListFiles(Cfg.GetString("DataPath"), tag, instID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("modelobs: no model files found in %s", Cfg.GetString("DataPath"))
	}
	model, _, err := inst.Load(ctx, files, tag, instID)
	if err != nil {
		return err
	}
	for name, expression := range derived {
		if err := Derive(model, name, expression); err != nil {
			return err
		}
	}

	obs, err := loadObs(ctx, obsFile, obsTimeVar)
	if err != nil {
		return err
	}

	w, err := time.ParseDuration(window)
	if err != nil {
		return fmt.Errorf("modelobs: parsing Window: %v", err)
	}
	ps, err := match.Pairs(obs, model, varMap, coordMap, w, extract.Method(method))
	if err != nil {
		return err
	}
	logger.Infof("matched %d of %d observations", ps.Len(), len(obs.Time))
	ds, err := ps.Dataset()
	if err != nil {
		return err
	}
	return modelobs.WriteCDFFile(ds, outputFile)
}

// loadObs reads the observation file, which may be a URL, and
// synthesizes its time coordinate from the named variable of Unix
// epoch seconds.
func loadObs(ctx context.Context, obsFile, timeVar string) (*modelobs.Dataset, error) {
	if obsFile == "" {
		return nil, fmt.Errorf("modelobs: no ObsFile specified")
	}
	local, err := modelobs.MaybeDownload(ctx, obsFile)
	if err != nil {
		return nil, err
	}
	obs, err := modelobs.ReadNetCDF4File(local)
	if err != nil {
		return nil, err
	}
	tv := obs.Var(timeVar)
	if tv == nil {
		return nil, fmt.Errorf("modelobs: no time variable %s in %s", timeVar, obsFile)
	}
	if len(tv.Dims) != 1 {
		return nil, fmt.Errorf("modelobs: time variable %s in %s is not one-dimensional", timeVar, obsFile)
	}
	times := make([]time.Time, len(tv.Data.Elements))
	for i, v := range tv.Data.Elements {
		times[i] = time.Unix(int64(v), 0).UTC()
	}
	if err := obs.SetTime(tv.Dims[0], times); err != nil {
		return nil, err
	}
	return obs, nil
}

// CompareFile implements the compare command: it reads a pair file,
// calculates the requested metrics for one variable pair, and
// optionally writes a scatter plot.
func CompareFile(pairFile, obsVar, modelVar string, methods []string, plotFile string) (map[string]float64, error) {
	ds, err := modelobs.ReadNetCDF4File(pairFile)
	if err != nil {
		return nil, err
	}
	ov := ds.Var(obsVar)
	if ov == nil {
		return nil, fmt.Errorf("modelobs: no variable %s in %s", obsVar, pairFile)
	}
	mv := ds.Var(modelVar)
	if mv == nil {
		return nil, fmt.Errorf("modelobs: no variable %s in %s", modelVar, pairFile)
	}
	report, err := compare.Compare(ov.Data.Elements, mv.Data.Elements, methods)
	if err != nil {
		return nil, err
	}
	if plotFile != "" {
		o, m := match.DropNaN(ov.Data.Elements, mv.Data.Elements)
		if err := ScatterPlot(o, m, obsVar, modelVar, plotFile); err != nil {
			return nil, err
		}
	}
	return report, nil
}
