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

// Package modelobs loads output from upper-atmosphere models and
// matches and compares it against observational data. Each supported
// model is represented by an Instrument that knows how to list, load,
// and download that model's output files.
package modelobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Version gives the version number.
const Version = "0.1.0"

// Data cleaning levels accepted by Instrument.Clean, from least to
// most stringent.
const (
	CleanNone  = "none"
	CleanDirty = "dirty"
	CleanDusty = "dusty"
	CleanClean = "clean"
)

// An Instrument provides access to the output of one model. Lookup
// keys follow the (platform, name) convention of the instruments
// these models are compared against, and the optional tag and inst_id
// identifiers select dataset variants within an instrument.
type Instrument interface {
	// Platform is the model program or project name.
	Platform() string

	// Name identifies the model within the platform.
	Name() string

	// Tags maps each supported tag to its description.
	Tags() map[string]string

	// InstIDs maps each supported inst_id to the tags allowed with it.
	InstIDs() map[string][]string

	// Init prepares the instrument for use and logs its
	// acknowledgements. It runs once, before any other call.
	Init(log *logrus.Logger) error

	// Clean adjusts ds to the given cleaning level.
	Clean(level string, ds *Dataset) error

	// ListFiles returns the files in dir that belong to the given
	// tag and inst_id, in chronological order.
	ListFiles(dir, tag, instID string) ([]string, error)

	// Load reads the named files into a single dataset with an
	// absolute time coordinate.
	Load(ctx context.Context, fnames []string, tag, instID string) (*Dataset, *Meta, error)

	// Download retrieves data for the given dates into dataPath.
	Download(ctx context.Context, dates []time.Time, tag, instID, dataPath string) error
}

var (
	registryMx sync.Mutex
	registry   = make(map[string]Instrument)
)

func registryKey(platform, name string) string { return platform + "/" + name }

// Register adds an instrument to the package registry. It is meant
// to be called from the init function of each instrument package and
// panics if the same (platform, name) pair is registered twice.
func Register(inst Instrument) {
	registryMx.Lock()
	defer registryMx.Unlock()
	k := registryKey(inst.Platform(), inst.Name())
	if _, ok := registry[k]; ok {
		panic(fmt.Sprintf("modelobs: instrument %s registered twice", k))
	}
	registry[k] = inst
}

// Lookup returns the registered instrument with the given platform
// and name.
func Lookup(platform, name string) (Instrument, error) {
	registryMx.Lock()
	defer registryMx.Unlock()
	inst, ok := registry[registryKey(platform, name)]
	if !ok {
		return nil, fmt.Errorf("modelobs: no instrument registered for platform %s, name %s", platform, name)
	}
	return inst, nil
}

// Instruments returns the registry keys (platform/name) of all
// registered instruments in lexical order.
func Instruments() []string {
	registryMx.Lock()
	defer registryMx.Unlock()
	var keys []string
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidTag reports whether the given tag and inst_id combination is
// supported by inst.
func ValidTag(inst Instrument, tag, instID string) bool {
	tags, ok := inst.InstIDs()[instID]
	if !ok {
		return false
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CheckCleanLevel returns an error if level is not one of the
// recognized cleaning levels.
func CheckCleanLevel(level string) error {
	switch level {
	case CleanNone, CleanDirty, CleanDusty, CleanClean:
		return nil
	}
	return fmt.Errorf("modelobs: invalid cleaning level %q", level)
}
