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
	"io/ioutil"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// A FilePattern describes the names of one kind of model output file.
// The [DATE] wildcard in Template is replaced by the file date
// formatted with DateFormat. The optional [SOD] and [USEC] wildcards
// hold the zero-padded seconds of day and microseconds.
type FilePattern struct {
	Template   string
	DateFormat string
}

// Format returns the file name for the given time.
func (p FilePattern) Format(t time.Time) string {
	sod := t.Hour()*3600 + t.Minute()*60 + t.Second()
	name := strings.Replace(p.Template, "[DATE]", t.Format(p.DateFormat), -1)
	name = strings.Replace(name, "[SOD]", fmt.Sprintf("%05d", sod), -1)
	name = strings.Replace(name, "[USEC]", fmt.Sprintf("%06d", t.Nanosecond()/1000), -1)
	return name
}

// dateRegexp converts a reference-time date format into a regular
// expression matching dates written in that format.
func dateRegexp(format string) string {
	var b strings.Builder
	for _, r := range format {
		if r >= '0' && r <= '9' {
			b.WriteString(`\d`)
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

func (p FilePattern) regexp() (*regexp.Regexp, error) {
	expr := regexp.QuoteMeta(p.Template)
	expr = strings.Replace(expr, regexp.QuoteMeta("[DATE]"), "("+dateRegexp(p.DateFormat)+")", 1)
	expr = strings.Replace(expr, regexp.QuoteMeta("[SOD]"), `(\d{5})`, 1)
	expr = strings.Replace(expr, regexp.QuoteMeta("[USEC]"), `(\d{6})`, 1)
	return regexp.Compile("^" + expr + "$")
}

// wildcards returns the wildcards present in the template in the
// order they occur, which is also the order of their submatch groups.
func (p FilePattern) wildcards() []string {
	type loc struct {
		name string
		pos  int
	}
	var locs []loc
	for _, w := range []string{"[DATE]", "[SOD]", "[USEC]"} {
		if i := strings.Index(p.Template, w); i >= 0 {
			locs = append(locs, loc{w, i})
		}
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].pos < locs[j].pos })
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.name
	}
	return out
}

// ParseTime extracts the file time from a file name matching the
// pattern. The wildcards may occur in any order in the template.
func (p FilePattern) ParseTime(fname string) (time.Time, error) {
	re, err := p.regexp()
	if err != nil {
		return time.Time{}, fmt.Errorf("modelobs: compiling pattern %s: %v", p.Template, err)
	}
	m := re.FindStringSubmatch(filepath.Base(fname))
	if m == nil {
		return time.Time{}, fmt.Errorf("modelobs: file %s does not match pattern %s", fname, p.Template)
	}
	var t time.Time
	var sod, usec int
	for i, w := range p.wildcards() {
		switch w {
		case "[DATE]":
			t, err = time.ParseInLocation(p.DateFormat, m[i+1], time.UTC)
			if err != nil {
				return time.Time{}, fmt.Errorf("modelobs: parsing date in %s: %v", fname, err)
			}
		case "[SOD]":
			sod, _ = strconv.Atoi(m[i+1])
		case "[USEC]":
			usec, _ = strconv.Atoi(m[i+1])
		}
	}
	return t.Add(time.Duration(sod)*time.Second + time.Duration(usec)*time.Microsecond), nil
}

// Match reports whether the base name of fname matches the pattern.
func (p FilePattern) Match(fname string) bool {
	re, err := p.regexp()
	if err != nil {
		return false
	}
	return re.MatchString(filepath.Base(fname))
}

// SupportedTags maps inst_id, then tag, to the file pattern used for
// that dataset variant.
type SupportedTags map[string]map[string]FilePattern

// Pattern returns the file pattern for the given inst_id and tag.
func (s SupportedTags) Pattern(instID, tag string) (FilePattern, error) {
	tags, ok := s[instID]
	if !ok {
		return FilePattern{}, fmt.Errorf("modelobs: unsupported inst_id %q", instID)
	}
	p, ok := tags[tag]
	if !ok {
		return FilePattern{}, fmt.Errorf("modelobs: unsupported tag %q for inst_id %q", tag, instID)
	}
	return p, nil
}

// ListFiles returns the full paths of the files in dir matching the
// pattern, sorted chronologically.
func ListFiles(dir string, p FilePattern) ([]string, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("modelobs: listing %s: %v", dir, err)
	}
	type datedFile struct {
		path string
		t    time.Time
	}
	var files []datedFile
	for _, e := range entries {
		if e.IsDir() || !p.Match(e.Name()) {
			continue
		}
		t, err := p.ParseTime(e.Name())
		if err != nil {
			continue
		}
		files = append(files, datedFile{filepath.Join(dir, e.Name()), t})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].t.Equal(files[j].t) {
			return files[i].path < files[j].path
		}
		return files[i].t.Before(files[j].t)
	})
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}
