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

package bed

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"
)

const narrowPeakLine = "chr1\t100\t600\tpeak_1\t0\t.\t5.5\t-1\t-1\t250"

func TestRead_NarrowPeak(t *testing.T) {
	input := strings.Join([]string{
		"track name=peaks",
		"# called by macs2",
		narrowPeakLine,
		"chr2\t0\t200\tpeak_2\t0\t.\t2.25\t-1\t-1\t-1",
	}, "\n")

	peaks, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got, want := len(peaks), 2; got != want {
		t.Fatalf("Wrong peak count: got %d, want %d", got, want)
	}

	first := peaks[0]
	if got, want := first.Chrom, "chr1"; got != want {
		t.Errorf("Wrong chromosome: got %q, want %q", got, want)
	}
	if got, want := first.SignalValue, 5.5; got != want {
		t.Errorf("Wrong signal value: got %v, want %v", got, want)
	}
	if got, want := first.Summit(), uint32(350); got != want {
		t.Errorf("Wrong summit: got %d, want %d", got, want)
	}
	// No summit called: fall back to the midpoint.
	if got, want := peaks[1].Summit(), uint32(100); got != want {
		t.Errorf("Wrong midpoint summit: got %d, want %d", got, want)
	}
}

func TestRead_Gzip(t *testing.T) {
	var buffer bytes.Buffer
	gzw := gzip.NewWriter(&buffer)
	if _, err := gzw.Write([]byte(narrowPeakLine + "\n")); err != nil {
		t.Fatalf("Writing compressed input: %v", err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatalf("Closing gzip writer: %v", err)
	}

	peaks, err := Read(&buffer)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got, want := len(peaks), 1; got != want {
		t.Fatalf("Wrong peak count: got %d, want %d", got, want)
	}
	if got, want := peaks[0].End, uint32(600); got != want {
		t.Errorf("Wrong end: got %d, want %d", got, want)
	}
}

func TestRead_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"too few fields", "chr1\t100"},
		{"non-numeric start", "chr1\tabc\t200"},
		{"start after end", "chr1\t300\t200"},
		{"summit outside peak", "chr1\t100\t200\tp\t0\t.\t1\t-1\t-1\t500"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got, err := Read(strings.NewReader(tc.input)); err == nil {
				t.Errorf("Unexpected success: got %v, wanted error", got)
			}
		})
	}
}
