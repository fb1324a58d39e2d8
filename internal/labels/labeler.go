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

// Package labels assigns classification labels to genome bins from
// peak calls.  Each bin receives 1 (positive), 0 (negative) or -1
// (ambiguous) per task.
package labels

import (
	"fmt"
	"sort"

	"github.com/googlegenomics/labelgen/internal/bed"
	"github.com/googlegenomics/labelgen/internal/genomics"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

// Label values written to the output matrix.
const (
	Positive  int8 = 1
	Negative  int8 = 0
	Ambiguous int8 = -1
)

// DefaultOverlapThreshold is the fraction of a bin (or peak) that must
// be covered before an overlap counts as positive.
const DefaultOverlapThreshold = 0.5

// Approach selects the rule that decides whether a bin is positive for
// a peak.
type Approach int

const (
	// ApproachSummit marks a bin positive when a peak summit falls
	// inside it.
	ApproachSummit Approach = iota
	// ApproachBinOverlap marks a bin positive when at least the
	// threshold fraction of the bin is covered by a single peak.
	ApproachBinOverlap
	// ApproachPeakOverlap marks a bin positive when the overlap reaches
	// the threshold fraction of the shorter of bin and peak.
	ApproachPeakOverlap
)

func (a Approach) String() string {
	switch a {
	case ApproachSummit:
		return "summit"
	case ApproachBinOverlap:
		return "bin-overlap"
	case ApproachPeakOverlap:
		return "peak-overlap"
	}
	return fmt.Sprintf("approach(%d)", int(a))
}

// ParseApproach maps the command line spelling of an approach to its
// value.
func ParseApproach(name string) (Approach, error) {
	switch name {
	case "summit":
		return ApproachSummit, nil
	case "bin-overlap":
		return ApproachBinOverlap, nil
	case "peak-overlap":
		return ApproachPeakOverlap, nil
	}
	return 0, fmt.Errorf("unknown labeling approach %q", name)
}

// intervalSet holds peaks grouped by chromosome and sorted by start,
// with the longest peak length per chromosome retained so that
// overlap queries can bound their backward scan.
type intervalSet struct {
	byChrom map[string][]bed.Peak
	maxLen  map[string]uint32
}

func newIntervalSet(peaks []bed.Peak) *intervalSet {
	set := &intervalSet{
		byChrom: make(map[string][]bed.Peak),
		maxLen:  make(map[string]uint32),
	}
	for _, peak := range peaks {
		set.byChrom[peak.Chrom] = append(set.byChrom[peak.Chrom], peak)
		if length := peak.End - peak.Start; length > set.maxLen[peak.Chrom] {
			set.maxLen[peak.Chrom] = length
		}
	}
	for _, chromPeaks := range set.byChrom {
		sort.Slice(chromPeaks, func(i, j int) bool {
			return chromPeaks[i].Start < chromPeaks[j].Start
		})
	}
	return set
}

// overlapping returns the peaks that share at least one base with
// [start, end) on chrom.
func (s *intervalSet) overlapping(chrom string, start, end uint32) []bed.Peak {
	chromPeaks := s.byChrom[chrom]
	if len(chromPeaks) == 0 {
		return nil
	}

	// Peaks are sorted by start, so candidates lie between the first
	// peak that could still reach start and the first peak at or past
	// end.
	var earliest uint32
	if maxLen := s.maxLen[chrom]; start > maxLen {
		earliest = start - maxLen
	}
	lo := sort.Search(len(chromPeaks), func(i int) bool {
		return chromPeaks[i].Start >= earliest
	})
	hi := sort.Search(len(chromPeaks), func(i int) bool {
		return chromPeaks[i].Start >= end
	})

	var overlapping []bed.Peak
	for i := lo; i < hi; i++ {
		if chromPeaks[i].End > start {
			overlapping = append(overlapping, chromPeaks[i])
		}
	}
	return overlapping
}

// Labeler labels bins for one task.
type Labeler struct {
	approach  Approach
	threshold float64
	peaks     *intervalSet
	ambiguous *intervalSet
}

// NewLabeler returns a Labeler for the given peak calls.  The
// ambiguous set may be nil.
func NewLabeler(approach Approach, threshold float64, peaks, ambiguous []bed.Peak) *Labeler {
	if threshold <= 0 {
		threshold = DefaultOverlapThreshold
	}
	return &Labeler{
		approach:  approach,
		threshold: threshold,
		peaks:     newIntervalSet(peaks),
		ambiguous: newIntervalSet(ambiguous),
	}
}

// Label returns the label for the bin [start, end) on chrom.  A bin
// that meets the positive criterion is positive even when it also
// touches the ambiguous set; a bin that only touches peaks without
// meeting the criterion, or that touches the ambiguous set at all, is
// ambiguous.
func (l *Labeler) Label(chrom string, start, end uint32) int8 {
	overlapping := l.peaks.overlapping(chrom, start, end)
	for _, peak := range overlapping {
		if l.positive(peak, start, end) {
			return Positive
		}
	}
	if len(overlapping) > 0 {
		return Ambiguous
	}
	if len(l.ambiguous.overlapping(chrom, start, end)) > 0 {
		return Ambiguous
	}
	return Negative
}

func (l *Labeler) positive(peak bed.Peak, start, end uint32) bool {
	switch l.approach {
	case ApproachSummit:
		summit := peak.Summit()
		return summit >= start && summit < end
	case ApproachBinOverlap:
		overlap := overlap(peak, start, end)
		return float64(overlap) >= l.threshold*float64(end-start)
	case ApproachPeakOverlap:
		shorter := end - start
		if length := peak.End - peak.Start; length < shorter {
			shorter = length
		}
		return float64(overlap(peak, start, end)) >= l.threshold*float64(shorter)
	}
	return false
}

func overlap(peak bed.Peak, start, end uint32) uint32 {
	region := genomics.Region{Chrom: peak.Chrom, Start: peak.Start, End: peak.End}
	return region.Overlap(start, end)
}

// LabelBins labels every bin of one chromosome.
func (l *Labeler) LabelBins(chrom string, bins tiling.Bins) []int8 {
	result := make([]int8, bins.Count())
	for i := uint32(0); i < bins.Count(); i++ {
		start, end := bins.Bin(i)
		result[i] = l.Label(chrom, start, end)
	}
	return result
}
