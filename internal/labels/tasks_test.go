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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlegenomics/labelgen/internal/tiling"
)

func TestReadTaskTable(t *testing.T) {
	input := strings.Join([]string{
		"# task\tpeaks\tambiguous",
		"CTCF\tctcf.narrowPeak.gz\tctcf.ambig.bed",
		"POL2\tpol2.narrowPeak.gz",
	}, "\n")

	tasks, err := ReadTaskTable(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, Task{Name: "CTCF", Peaks: "ctcf.narrowPeak.gz", Ambiguous: "ctcf.ambig.bed"}, tasks[0])
	assert.Equal(t, Task{Name: "POL2", Peaks: "pol2.narrowPeak.gz"}, tasks[1])
}

func TestReadTaskTable_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing peaks column", "CTCF"},
		{"duplicate task", "CTCF\ta.bed\nCTCF\tb.bed"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTaskTable(strings.NewReader(tc.input))
			assert.Error(t, err)
		})
	}
}

func TestReadManifest(t *testing.T) {
	input := `
approach: bin-overlap
tasks:
  - name: CTCF
    peaks: gs://peaks/ctcf.narrowPeak.gz
    ambiguous: gs://peaks/ctcf.ambig.bed.gz
  - name: POL2
    peaks: pol2.narrowPeak
`
	manifest, err := ReadManifest(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "bin-overlap", manifest.Approach)
	assert.Equal(t, tiling.Default, manifest.Tiling)
	assert.Equal(t, DefaultOverlapThreshold, manifest.OverlapThreshold)
	require.Len(t, manifest.Tasks, 2)
	assert.Equal(t, "gs://peaks/ctcf.narrowPeak.gz", manifest.Tasks[0].Peaks)
}

func TestReadManifest_ExplicitTiling(t *testing.T) {
	input := `
tiling:
  bin_size: 1000
  bin_stride: 1000
tasks:
  - name: DNASE
    peaks: dnase.bed
`
	manifest, err := ReadManifest(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, tiling.Config{BinSize: 1000, Stride: 1000}, manifest.Tiling)
	assert.Equal(t, "summit", manifest.Approach)
}

func TestReadManifest_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"no tasks", "approach: summit"},
		{"task without peaks", "tasks:\n  - name: CTCF"},
		{"duplicate tasks", "tasks:\n  - {name: A, peaks: a.bed}\n  - {name: A, peaks: b.bed}"},
		{"not yaml", "\t:::"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadManifest(strings.NewReader(tc.input))
			assert.Error(t, err)
		})
	}
}
