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
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/googlegenomics/labelgen/internal/tiling"
)

// Task names one labeling task: the peak calls that define its
// positives and, optionally, a second peak set marking regions whose
// status is uncertain.
type Task struct {
	Name string `yaml:"name"`
	// Peaks is the path (or gs:// URL) of the task's peak file.
	Peaks string `yaml:"peaks"`
	// Ambiguous optionally points at a peak file of uncertain regions.
	Ambiguous string `yaml:"ambiguous,omitempty"`
}

// ReadTaskTable parses the tab-separated task table: task name, peak
// file, and an optional ambiguous peak file per line.  Lines starting
// with '#' are skipped.
func ReadTaskTable(r io.Reader) ([]Task, error) {
	var (
		tasks []Task
		seen  = make(map[string]bool)
	)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected task name and peak file, got %q", line, text)
		}
		task := Task{Name: fields[0], Peaks: fields[1]}
		if len(fields) > 2 && fields[2] != "" {
			task.Ambiguous = fields[2]
		}
		if seen[task.Name] {
			return nil, fmt.Errorf("line %d: duplicate task %q", line, task.Name)
		}
		seen[task.Name] = true
		tasks = append(tasks, task)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading task table: %v", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks defined")
	}
	return tasks, nil
}

// Manifest is the YAML form of a labeling run: the tasks plus the
// tiling and labeling parameters they share.
type Manifest struct {
	Tiling           tiling.Config `yaml:"tiling"`
	Approach         string        `yaml:"approach"`
	OverlapThreshold float64       `yaml:"overlap_threshold"`
	Tasks            []Task        `yaml:"tasks"`
}

// ReadManifest parses a YAML run manifest, applying defaults for any
// omitted tiling or labeling parameters.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest: %v", err)
	}
	if manifest.Tiling == (tiling.Config{}) {
		manifest.Tiling = tiling.Default
	}
	if manifest.Approach == "" {
		manifest.Approach = ApproachSummit.String()
	}
	if manifest.OverlapThreshold == 0 {
		manifest.OverlapThreshold = DefaultOverlapThreshold
	}
	if len(manifest.Tasks) == 0 {
		return nil, fmt.Errorf("manifest defines no tasks")
	}
	seen := make(map[string]bool)
	for _, task := range manifest.Tasks {
		if task.Name == "" || task.Peaks == "" {
			return nil, fmt.Errorf("task %+v: name and peaks are required", task)
		}
		if seen[task.Name] {
			return nil, fmt.Errorf("duplicate task %q", task.Name)
		}
		seen[task.Name] = true
	}
	return &manifest, nil
}
