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
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DownloadFile fetches url and writes the response body to dest. A
// 404 response means no data is available: nothing is written and no
// error is returned. The boolean reports whether dest was written.
func DownloadFile(ctx context.Context, url, dest string) (bool, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return false, fmt.Errorf("modelobs: requesting %s: %v", url, err)
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("modelobs: downloading %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	w, err := os.Create(dest)
	if err != nil {
		return false, fmt.Errorf("modelobs: creating %s: %v", dest, err)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		w.Close()
		return false, fmt.Errorf("modelobs: writing %s: %v", dest, err)
	}
	return true, w.Close()
}

// MaybeDownload checks whether path is an existing local file and
// returns it unchanged if so. If path is an HTTP or HTTPS URL the
// file is downloaded to a temporary directory and the local copy is
// returned.
func MaybeDownload(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return path, nil
	}
	dir, err := ioutil.TempDir("", "modelobs")
	if err != nil {
		return path, fmt.Errorf("modelobs: creating temporary download directory: %v", err)
	}
	local := filepath.Join(dir, filepath.Base(strings.SplitN(path, "?", 2)[0]))
	written, err := DownloadFile(ctx, path, local)
	if err != nil {
		return path, err
	}
	if !written {
		return path, fmt.Errorf("modelobs: no data available at %s", path)
	}
	return local, nil
}
