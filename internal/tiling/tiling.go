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

// Package tiling computes the fixed-size bins that tile a chromosome
// at a fixed stride.
package tiling

import "fmt"

// Config describes a whole-genome tiling.  Each bin covers BinSize
// base pairs and consecutive bins start Stride base pairs apart, so
// bins overlap whenever Stride < BinSize.  LeftFlank and RightFlank
// reserve sequence context around each bin: a bin is only emitted when
// the flanked window around it lies entirely inside the chromosome.
type Config struct {
	BinSize    uint32 `yaml:"bin_size"`
	Stride     uint32 `yaml:"bin_stride"`
	LeftFlank  uint32 `yaml:"left_flank"`
	RightFlank uint32 `yaml:"right_flank"`
}

// Default mirrors the tiling commonly used for classification models:
// 200bp bins every 50bp with 400bp of flanking context on either side.
var Default = Config{BinSize: 200, Stride: 50, LeftFlank: 400, RightFlank: 400}

// Validate reports configurations that cannot tile any chromosome.
func (c Config) Validate() error {
	if c.BinSize == 0 {
		return fmt.Errorf("bin size must be positive")
	}
	if c.Stride == 0 {
		return fmt.Errorf("bin stride must be positive")
	}
	return nil
}

// Bins enumerates the eligible bins for one chromosome.
type Bins struct {
	cfg   Config
	first uint32
	count uint32
}

// Bins returns the eligible bins for a chromosome of the given size.
func (c Config) Bins(size uint32) Bins {
	first := (c.LeftFlank + c.Stride - 1) / c.Stride
	need := uint64(c.BinSize) + uint64(c.RightFlank)
	if uint64(size) < need {
		return Bins{cfg: c}
	}
	last := (size - c.BinSize - c.RightFlank) / c.Stride
	if last < first {
		return Bins{cfg: c}
	}
	return Bins{cfg: c, first: first, count: last - first + 1}
}

// Count returns the number of eligible bins.
func (b Bins) Count() uint32 {
	return b.count
}

// Bin returns the half-open interval covered by the i-th eligible bin.
// Bins are ordered by ascending start position.
func (b Bins) Bin(i uint32) (start, end uint32) {
	start = (b.first + i) * b.cfg.Stride
	return start, start + b.cfg.BinSize
}

// Covering returns the indices [from, to) of the eligible bins that
// overlap the half-open interval [start, end).  When end is zero the
// range extends to the last bin.
func (b Bins) Covering(start, end uint32) (from, to uint32) {
	if b.count == 0 || (end > 0 && end <= start) {
		return 0, 0
	}
	// First bin whose end exceeds start.
	if start >= b.cfg.BinSize {
		wanted := start - b.cfg.BinSize + 1
		idx := (wanted + b.cfg.Stride - 1) / b.cfg.Stride
		if idx > b.first {
			from = idx - b.first
		}
	}
	if from > b.count {
		return b.count, b.count
	}
	to = b.count
	if end > 0 {
		// First bin whose start is at or past end.
		idx := (end + b.cfg.Stride - 1) / b.cfg.Stride
		if idx <= b.first {
			to = 0
		} else if idx-b.first < b.count {
			to = idx - b.first
		}
	}
	if to < from {
		to = from
	}
	return from, to
}
