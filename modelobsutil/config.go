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
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// inDateFormat specifies the format to use when inputting dates.
const inDateFormat = "20060102"

// GetStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a json
// object if it was set from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(err)
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for GetStringMapString variable %s: %#v", varName, i))
	}
}

// dateRange expands start and end dates in YYYYMMDD format into one
// date per day, inclusive of both ends. An empty end date means a
// single day.
func dateRange(start, end string) ([]time.Time, error) {
	if start == "" {
		return nil, fmt.Errorf("modelobs: no StartDate specified")
	}
	s, err := time.ParseInLocation(inDateFormat, start, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("modelobs: parsing StartDate: %v", err)
	}
	e := s
	if end != "" {
		e, err = time.ParseInLocation(inDateFormat, end, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("modelobs: parsing EndDate: %v", err)
		}
	}
	if e.Before(s) {
		return nil, fmt.Errorf("modelobs: EndDate %s is before StartDate %s", end, start)
	}
	var dates []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}
