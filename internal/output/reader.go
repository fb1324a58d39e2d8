// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/googlegenomics/labelgen/internal/bgzip"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

// ErrUnknownChrom is returned when a chromosome is not present in the
// label file index.
var ErrUnknownChrom = errors.New("unknown chromosome")

// Row is one bin of a label file.
type Row struct {
	Start, End uint32
	// Labels holds one label per task, in header order.
	Labels []int8
}

// Indexed reads single chromosomes out of an indexed label file.
type Indexed struct {
	f       *os.File
	cfg     tiling.Config
	tasks   []string
	entries map[string]Entry
	order   []string
}

// OpenIndexed opens a label file and its sidecar index.
func OpenIndexed(labels, index string) (*Indexed, error) {
	indexFile, err := os.Open(index)
	if err != nil {
		return nil, fmt.Errorf("opening index: %v", err)
	}
	defer indexFile.Close()
	cfg, entries, err := ReadIndex(indexFile)
	if err != nil {
		return nil, fmt.Errorf("reading index: %v", err)
	}

	f, err := os.Open(labels)
	if err != nil {
		return nil, fmt.Errorf("opening labels: %v", err)
	}
	header, err := bgzip.ReadMemberAt(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header: %v", err)
	}
	fields := strings.Split(strings.TrimSuffix(string(header), "\n"), "\t")
	if len(fields) < 4 || fields[0] != "chrom" {
		f.Close()
		return nil, fmt.Errorf("malformed header %q", string(header))
	}

	ix := &Indexed{f: f, cfg: cfg, tasks: fields[3:], entries: make(map[string]Entry)}
	for _, entry := range entries {
		ix.entries[entry.Chrom] = entry
		ix.order = append(ix.order, entry.Chrom)
	}
	return ix, nil
}

// Close releases the underlying label file.
func (ix *Indexed) Close() error {
	return ix.f.Close()
}

// Tiling returns the tiling configuration recorded in the index.
func (ix *Indexed) Tiling() tiling.Config {
	return ix.cfg
}

// Tasks returns the task names from the label file header.
func (ix *Indexed) Tasks() []string {
	return ix.tasks
}

// Chroms returns the chromosome names in file order.
func (ix *Indexed) Chroms() []string {
	return ix.order
}

// Bins returns the number of bins recorded for chrom.
func (ix *Indexed) Bins(chrom string) (uint32, error) {
	entry, ok := ix.entries[chrom]
	if !ok {
		return 0, ErrUnknownChrom
	}
	return entry.Bins, nil
}

// ReadChrom reads all rows of one chromosome.
func (ix *Indexed) ReadChrom(chrom string) ([]Row, error) {
	entry, ok := ix.entries[chrom]
	if !ok {
		return nil, ErrUnknownChrom
	}
	if entry.Bins == 0 {
		return nil, nil
	}

	data, err := bgzip.ReadMemberAt(ix.f, entry.Offset)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", chrom, err)
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if got, want := uint32(len(lines)), entry.Bins; got != want {
		return nil, fmt.Errorf("%s: got %d rows, index records %d", chrom, got, want)
	}
	rows := make([]Row, len(lines))
	for i, line := range lines {
		row, err := parseRow(line, len(ix.tasks))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %v", chrom, i, err)
		}
		rows[i] = row
	}
	return rows, nil
}

func parseRow(line string, tasks int) (Row, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3+tasks {
		return Row{}, fmt.Errorf("got %d fields, want %d", len(fields), 3+tasks)
	}
	start, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Row{}, fmt.Errorf("parsing start: %v", err)
	}
	end, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Row{}, fmt.Errorf("parsing end: %v", err)
	}
	row := Row{Start: uint32(start), End: uint32(end), Labels: make([]int8, tasks)}
	for t := 0; t < tasks; t++ {
		label, err := strconv.ParseInt(fields[3+t], 10, 8)
		if err != nil {
			return Row{}, fmt.Errorf("parsing label: %v", err)
		}
		row.Labels[t] = int8(label)
	}
	return row, nil
}
