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

// Package tracks exports label files as genome browser tracks: a BED
// file of positive regions and a bedGraph of label values per task.
package tracks

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/googlegenomics/labelgen/internal/output"
)

// Export writes the browser tracks for the selected tasks into dir.
// An empty task list selects every task in the label file.
func Export(ix *output.Indexed, dir string, only []string) error {
	selected, err := selectTasks(ix.Tasks(), only)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating track directory: %v", err)
	}

	for task, column := range selected {
		if err := exportTask(ix, dir, task, column); err != nil {
			return fmt.Errorf("task %s: %v", task, err)
		}
	}
	return nil
}

func selectTasks(available, only []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, task := range available {
		columns[task] = i
	}
	if len(only) == 0 {
		return columns, nil
	}
	selected := make(map[string]int)
	for _, task := range only {
		column, ok := columns[task]
		if !ok {
			return nil, fmt.Errorf("task %q not in label file", task)
		}
		selected[task] = column
	}
	return selected, nil
}

func exportTask(ix *output.Indexed, dir, task string, column int) error {
	bedPath := filepath.Join(dir, task+".positives.bed.gz")
	graphPath := filepath.Join(dir, task+".labels.bedgraph.gz")

	bed, err := newTrackFile(bedPath)
	if err != nil {
		return err
	}
	defer bed.Close()
	graph, err := newTrackFile(graphPath)
	if err != nil {
		return err
	}
	defer graph.Close()

	fmt.Fprintf(graph, "track type=bedGraph name=\"%s labels\"\n", task)

	for _, chrom := range ix.Chroms() {
		rows, err := ix.ReadChrom(chrom)
		if err != nil {
			return fmt.Errorf("reading %s: %v", chrom, err)
		}
		if err := writePositives(bed, chrom, rows, column); err != nil {
			return err
		}
		if err := writeRuns(graph, chrom, rows, column); err != nil {
			return err
		}
	}

	if err := bed.Close(); err != nil {
		return fmt.Errorf("closing %s: %v", bedPath, err)
	}
	if err := graph.Close(); err != nil {
		return fmt.Errorf("closing %s: %v", graphPath, err)
	}
	return nil
}

// writePositives merges overlapping or adjacent positive bins into
// maximal regions and writes them as BED3 rows.
func writePositives(w io.Writer, chrom string, rows []output.Row, column int) error {
	var (
		start, end uint32
		open       bool
	)
	flush := func() error {
		if !open {
			return nil
		}
		open = false
		_, err := fmt.Fprintf(w, "%s\t%d\t%d\n", chrom, start, end)
		return err
	}
	for _, row := range rows {
		if row.Labels[column] != 1 {
			continue
		}
		if open && row.Start <= end {
			if row.End > end {
				end = row.End
			}
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		start, end, open = row.Start, row.End, true
	}
	return flush()
}

// writeRuns merges consecutive bins with equal labels and writes one
// bedGraph interval per run.  Because bins can overlap, each interval
// ends where the next run begins; only the final run keeps its last
// bin's full extent.
func writeRuns(w io.Writer, chrom string, rows []output.Row, column int) error {
	if len(rows) == 0 {
		return nil
	}
	runStart := rows[0].Start
	runLabel := rows[0].Labels[column]
	for _, row := range rows[1:] {
		if row.Labels[column] == runLabel {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", chrom, runStart, row.Start, runLabel); err != nil {
			return err
		}
		runStart, runLabel = row.Start, row.Labels[column]
	}
	_, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", chrom, runStart, rows[len(rows)-1].End, runLabel)
	return err
}

// trackFile is a gzip-compressed track being written to disk.
type trackFile struct {
	f      *os.File
	gz     *gzip.Writer
	closed bool
}

func newTrackFile(path string) (*trackFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %v", path, err)
	}
	return &trackFile{f: f, gz: gzip.NewWriter(f)}, nil
}

func (t *trackFile) Write(p []byte) (int, error) {
	return t.gz.Write(p)
}

func (t *trackFile) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.gz.Close(); err != nil {
		t.f.Close()
		return err
	}
	return t.f.Close()
}
