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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.nc":
			w.Write([]byte("model output"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	dir, err := ioutil.TempDir("", "modelobs")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	dest := filepath.Join(dir, "data.nc")
	written, err := DownloadFile(context.Background(), ts.URL+"/data.nc", dest)
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Fatal("file should have been written")
	}
	b, err := ioutil.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "model output" {
		t.Errorf("have %q, want %q", b, "model output")
	}

	missing := filepath.Join(dir, "missing.nc")
	written, err = DownloadFile(context.Background(), ts.URL+"/missing.nc", missing)
	if err != nil {
		t.Fatal(err)
	}
	if written {
		t.Error("a 404 response should not report a written file")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("a 404 response should not write a file")
	}
}

func TestMaybeDownload(t *testing.T) {
	dir, err := ioutil.TempDir("", "modelobs")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	local := filepath.Join(dir, "obs.nc")
	if err := ioutil.WriteFile(local, []byte("obs"), 0644); err != nil {
		t.Fatal(err)
	}
	if have, err := MaybeDownload(context.Background(), local); err != nil || have != local {
		t.Errorf("have (%s, %v), want (%s, nil)", have, err, local)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/remote.nc" {
			w.Write([]byte("remote obs"))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	have, err := MaybeDownload(context.Background(), ts.URL+"/remote.nc?raw=true")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(filepath.Dir(have))
	if filepath.Base(have) != "remote.nc" {
		t.Errorf("have %s, want a local remote.nc", have)
	}
	b, err := ioutil.ReadFile(have)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "remote obs" {
		t.Errorf("have %q, want %q", b, "remote obs")
	}

	if _, err := MaybeDownload(context.Background(), ts.URL+"/gone.nc"); err == nil {
		t.Error("a 404 response should be an error when the file is required")
	}
}
