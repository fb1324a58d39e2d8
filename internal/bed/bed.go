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

// Package bed provides support for parsing BED and ENCODE narrowPeak
// files describing genomic peak calls.
package bed

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Peak describes one interval from a BED or narrowPeak file.
type Peak struct {
	Chrom string
	// Start and End specify the half-open range [Start, End) in base
	// pairs, using the zero-based BED coordinate convention.
	Start, End uint32
	Name       string
	// SignalValue is narrowPeak column 7 (overall enrichment), zero for
	// plain BED input.
	SignalValue float64
	// SummitOffset is narrowPeak column 10: the peak summit position
	// relative to Start, or -1 when no summit was called.  Plain BED
	// input always yields -1.
	SummitOffset int32
}

// Summit returns the absolute summit position, falling back to the
// interval midpoint when no summit was called.
func (p Peak) Summit() uint32 {
	if p.SummitOffset >= 0 {
		return p.Start + uint32(p.SummitOffset)
	}
	return p.Start + (p.End-p.Start)/2
}

// Read parses BED3+ or narrowPeak records from r.  Gzip-compressed
// input is detected from the stream magic and decompressed
// transparently.  Lines starting with "#", "track" or "browser" are
// skipped.
func Read(r io.Reader) ([]Peak, error) {
	buffered := bufio.NewReader(r)
	if magic, err := buffered.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gzr, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("initializing gzip reader: %v", err)
		}
		defer gzr.Close()
		return readLines(gzr)
	}
	return readLines(buffered)
}

func readLines(r io.Reader) ([]Peak, error) {
	var peaks []Peak
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if skippable(text) {
			continue
		}
		peak, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		peaks = append(peaks, peak)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading peaks: %v", err)
	}
	return peaks, nil
}

func skippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "track") ||
		strings.HasPrefix(trimmed, "browser")
}

func parseLine(line string) (Peak, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return Peak{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	start, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Peak{}, fmt.Errorf("parsing start: %v", err)
	}
	end, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Peak{}, fmt.Errorf("parsing end: %v", err)
	}
	if start >= end {
		return Peak{}, fmt.Errorf("start %d is not before end %d", start, end)
	}

	peak := Peak{
		Chrom:        fields[0],
		Start:        uint32(start),
		End:          uint32(end),
		SummitOffset: -1,
	}
	if len(fields) > 3 {
		peak.Name = fields[3]
	}
	if len(fields) > 6 {
		if v, err := strconv.ParseFloat(fields[6], 64); err == nil {
			peak.SignalValue = v
		}
	}
	if len(fields) > 9 {
		offset, err := strconv.ParseInt(fields[9], 10, 32)
		if err != nil {
			return Peak{}, fmt.Errorf("parsing summit offset: %v", err)
		}
		if offset >= 0 && uint64(offset) >= end-start {
			return Peak{}, fmt.Errorf("summit offset %d outside peak of length %d", offset, end-start)
		}
		peak.SummitOffset = int32(offset)
	}
	return peak, nil
}
