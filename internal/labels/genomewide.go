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

package labels

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/googlegenomics/labelgen/internal/bed"
	"github.com/googlegenomics/labelgen/internal/genomics"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

// Sink receives one chromosome of labels at a time, in chromosome
// order.  The labels are task-major: labels[t][i] is the label of bin
// i for task t.
type Sink interface {
	WriteChrom(chrom genomics.Chromosome, bins tiling.Bins, labels [][]int8) error
}

// Run describes one genome-wide labeling run.
type Run struct {
	Tiling    tiling.Config
	Approach  Approach
	Threshold float64
	Tasks     []Task
	Chroms    []genomics.Chromosome

	// TaskWorkers bounds the number of peak files loaded concurrently
	// and ChromWorkers the number of chromosomes labeled concurrently.
	// Zero means one worker.
	TaskWorkers  int
	ChromWorkers int

	// Open opens an input path.  When nil, paths are opened as local
	// files.
	Open func(ctx context.Context, name string) (io.ReadCloser, error)
}

// TaskNames returns the task names in run order.
func (r *Run) TaskNames() []string {
	names := make([]string, len(r.Tasks))
	for i, task := range r.Tasks {
		names[i] = task.Name
	}
	return names
}

// Execute labels the whole genome and hands each chromosome to sink in
// the order the chromosomes were configured, regardless of the order
// in which workers finish them.
func (r *Run) Execute(ctx context.Context, sink Sink) error {
	if err := r.Tiling.Validate(); err != nil {
		return fmt.Errorf("validating tiling: %v", err)
	}
	if len(r.Tasks) == 0 {
		return fmt.Errorf("no tasks to label")
	}
	if len(r.Chroms) == 0 {
		return fmt.Errorf("no chromosomes to label")
	}

	labelers, err := r.loadLabelers(ctx)
	if err != nil {
		return err
	}

	matrices := make([][][]int8, len(r.Chroms))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers(r.ChromWorkers))
	for i, chrom := range r.Chroms {
		i, chrom := i, chrom
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			bins := r.Tiling.Bins(chrom.Size)
			matrix := make([][]int8, len(labelers))
			for t, labeler := range labelers {
				matrix[t] = labeler.LabelBins(chrom.Name, bins)
			}
			matrices[i] = matrix
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("labeling chromosomes: %v", err)
	}

	for i, chrom := range r.Chroms {
		if err := sink.WriteChrom(chrom, r.Tiling.Bins(chrom.Size), matrices[i]); err != nil {
			return fmt.Errorf("writing %s: %v", chrom.Name, err)
		}
	}
	return nil
}

func (r *Run) loadLabelers(ctx context.Context) ([]*Labeler, error) {
	labelers := make([]*Labeler, len(r.Tasks))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers(r.TaskWorkers))
	for i, task := range r.Tasks {
		i, task := i, task
		group.Go(func() error {
			peaks, err := r.readPeaks(groupCtx, task.Peaks)
			if err != nil {
				return fmt.Errorf("task %s: %v", task.Name, err)
			}
			var ambiguous []bed.Peak
			if task.Ambiguous != "" {
				ambiguous, err = r.readPeaks(groupCtx, task.Ambiguous)
				if err != nil {
					return fmt.Errorf("task %s: %v", task.Name, err)
				}
			}
			labelers[i] = NewLabeler(r.Approach, r.Threshold, peaks, ambiguous)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("loading peaks: %v", err)
	}
	return labelers, nil
}

func (r *Run) readPeaks(ctx context.Context, name string) ([]bed.Peak, error) {
	open := r.Open
	if open == nil {
		open = func(_ context.Context, name string) (io.ReadCloser, error) {
			return os.Open(name)
		}
	}
	f, err := open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v", name, err)
	}
	defer f.Close()

	peaks, err := bed.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", name, err)
	}
	return peaks, nil
}

func workers(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
