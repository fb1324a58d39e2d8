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

// Package output writes and reads the gzipped, indexed label files
// produced by a genome-wide labeling run.  The file is a plain .tsv.gz
// to ordinary readers; internally the header and every chromosome get
// their own gzip member so the sidecar index can seek to one
// chromosome directly.
package output

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/googlegenomics/labelgen/internal/bgzip"
	"github.com/googlegenomics/labelgen/internal/genomics"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

// IndexPath returns the path of the sidecar index for a label file.
func IndexPath(labels string) string {
	return labels + ".idx"
}

// Writer writes a label file one chromosome at a time.  It implements
// the labels.Sink interface.
type Writer struct {
	f       *os.File
	gz      *bgzip.Writer
	cfg     tiling.Config
	tasks   []string
	entries []Entry
}

// NewWriter creates the label file at path and writes its header row.
func NewWriter(path string, cfg tiling.Config, tasks []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %v", path, err)
	}
	w := &Writer{f: f, gz: bgzip.NewWriter(f), cfg: cfg, tasks: tasks}

	header := "chrom\tstart\tend\t" + strings.Join(tasks, "\t") + "\n"
	if _, err := w.gz.WriteMember([]byte(header)); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %v", err)
	}
	return w, nil
}

// WriteChrom writes one chromosome of labels.  The labels are
// task-major, in the task order passed to NewWriter, and chromosomes
// must arrive in the order they should appear in the file.
func (w *Writer) WriteChrom(chrom genomics.Chromosome, bins tiling.Bins, labels [][]int8) error {
	if len(labels) != len(w.tasks) {
		return fmt.Errorf("%s: got %d label columns, want %d", chrom.Name, len(labels), len(w.tasks))
	}
	entry := Entry{Chrom: chrom.Name, Offset: w.gz.Offset(), Bins: bins.Count()}
	if bins.Count() == 0 {
		w.entries = append(w.entries, entry)
		return nil
	}

	var buffer bytes.Buffer
	for i := uint32(0); i < bins.Count(); i++ {
		start, end := bins.Bin(i)
		buffer.WriteString(chrom.Name)
		buffer.WriteByte('\t')
		buffer.WriteString(strconv.FormatUint(uint64(start), 10))
		buffer.WriteByte('\t')
		buffer.WriteString(strconv.FormatUint(uint64(end), 10))
		for t := range labels {
			buffer.WriteByte('\t')
			buffer.WriteString(strconv.Itoa(int(labels[t][i])))
		}
		buffer.WriteByte('\n')
	}

	if _, err := w.gz.WriteMember(buffer.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %v", chrom.Name, err)
	}
	w.entries = append(w.entries, entry)
	return nil
}

// Close flushes the label file and writes the sidecar index.
func (w *Writer) Close() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("closing label file: %v", err)
	}

	index, err := os.Create(IndexPath(w.f.Name()))
	if err != nil {
		return fmt.Errorf("creating index: %v", err)
	}
	if err := WriteIndex(index, w.cfg, w.entries); err != nil {
		index.Close()
		return fmt.Errorf("writing index: %v", err)
	}
	return index.Close()
}
