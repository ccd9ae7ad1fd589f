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

// Command modelobs is a command-line interface for loading ionosphere
// model output and comparing it against observational data.
package main

import (
	"fmt"
	"os"

	"github.com/spacemodel/modelobs/modelobsutil"
)

func main() {
	if err := modelobsutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
