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
	"testing"

	"github.com/googlegenomics/labelgen/internal/bed"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

func TestParseApproach(t *testing.T) {
	for _, name := range []string{"summit", "bin-overlap", "peak-overlap"} {
		approach, err := ParseApproach(name)
		if err != nil {
			t.Errorf("ParseApproach(%q) returned error: %v", name, err)
		}
		if got := approach.String(); got != name {
			t.Errorf("Wrong round trip: got %q, want %q", got, name)
		}
	}
	if got, err := ParseApproach("nearest"); err == nil {
		t.Errorf("Unexpected success: got %v, wanted error", got)
	}
}

func TestLabel_Summit(t *testing.T) {
	peaks := []bed.Peak{{Chrom: "chr1", Start: 100, End: 600, SummitOffset: 250}}
	labeler := NewLabeler(ApproachSummit, 0, peaks, nil)

	testCases := []struct {
		name       string
		start, end uint32
		want       int8
	}{
		{"summit inside bin", 300, 500, Positive},
		{"overlap without summit", 400, 600, Ambiguous},
		{"touching bin end", 600, 800, Negative},
		{"far away", 0, 100, Negative},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := labeler.Label("chr1", tc.start, tc.end); got != tc.want {
				t.Errorf("Wrong label for [%d, %d): got %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}

	if got, want := labeler.Label("chr2", 300, 500), Negative; got != want {
		t.Errorf("Wrong label on empty chromosome: got %d, want %d", got, want)
	}
}

func TestLabel_BinOverlap(t *testing.T) {
	peaks := []bed.Peak{{Chrom: "chr1", Start: 100, End: 600, SummitOffset: -1}}
	labeler := NewLabeler(ApproachBinOverlap, 0.5, peaks, nil)

	testCases := []struct {
		name       string
		start, end uint32
		want       int8
	}{
		{"half covered", 500, 700, Positive},
		{"fully covered", 200, 400, Positive},
		{"quarter covered", 550, 750, Ambiguous},
		{"no overlap", 700, 900, Negative},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := labeler.Label("chr1", tc.start, tc.end); got != tc.want {
				t.Errorf("Wrong label for [%d, %d): got %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestLabel_PeakOverlap(t *testing.T) {
	// A 20bp peak entirely inside a 200bp bin: positive under the
	// peak-overlap rule, ambiguous under the bin-overlap rule.
	peaks := []bed.Peak{{Chrom: "chr1", Start: 1000, End: 1020, SummitOffset: -1}}

	byPeak := NewLabeler(ApproachPeakOverlap, 0.5, peaks, nil)
	if got, want := byPeak.Label("chr1", 900, 1100), Positive; got != want {
		t.Errorf("Wrong peak-overlap label: got %d, want %d", got, want)
	}

	byBin := NewLabeler(ApproachBinOverlap, 0.5, peaks, nil)
	if got, want := byBin.Label("chr1", 900, 1100), Ambiguous; got != want {
		t.Errorf("Wrong bin-overlap label: got %d, want %d", got, want)
	}
}

func TestLabel_AmbiguousSet(t *testing.T) {
	peaks := []bed.Peak{{Chrom: "chr1", Start: 100, End: 600, SummitOffset: 250}}
	ambiguous := []bed.Peak{{Chrom: "chr1", Start: 2000, End: 2100, SummitOffset: -1}}
	labeler := NewLabeler(ApproachSummit, 0, peaks, ambiguous)

	if got, want := labeler.Label("chr1", 1900, 2100), Ambiguous; got != want {
		t.Errorf("Wrong label over ambiguous region: got %d, want %d", got, want)
	}
	// A met positive criterion outranks the ambiguous set.
	withOverlap := NewLabeler(ApproachSummit, 0,
		peaks, []bed.Peak{{Chrom: "chr1", Start: 300, End: 400, SummitOffset: -1}})
	if got, want := withOverlap.Label("chr1", 300, 500), Positive; got != want {
		t.Errorf("Wrong label for positive bin over ambiguous region: got %d, want %d", got, want)
	}
}

func TestLabelBins(t *testing.T) {
	cfg := tiling.Config{BinSize: 200, Stride: 200}
	peaks := []bed.Peak{{Chrom: "chr1", Start: 250, End: 350, SummitOffset: 50}}
	labeler := NewLabeler(ApproachSummit, 0, peaks, nil)

	got := labeler.LabelBins("chr1", cfg.Bins(1000))
	want := []int8{Negative, Positive, Negative, Negative, Negative}
	if len(got) != len(want) {
		t.Fatalf("Wrong bin count: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Wrong label for bin %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestOverlapping_LongPeakBeforeShortOnes(t *testing.T) {
	// A long early peak must still be found when later peaks start
	// closer to the queried bin.
	set := newIntervalSet([]bed.Peak{
		{Chrom: "chr1", Start: 0, End: 10000},
		{Chrom: "chr1", Start: 5000, End: 5100},
	})
	got := set.overlapping("chr1", 8000, 8200)
	if len(got) != 1 || got[0].End != 10000 {
		t.Errorf("Wrong overlapping peaks: got %v, want the long peak only", got)
	}
}
