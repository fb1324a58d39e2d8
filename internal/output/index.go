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

package output

import (
	"fmt"
	"io"

	"github.com/googlegenomics/labelgen/internal/binary"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

var indexMagic = []byte("LBIX\x01")

// Entry locates one chromosome inside a label file: the byte offset of
// the gzip member holding its rows and the number of bins it contains.
type Entry struct {
	Chrom  string
	Offset uint64
	Bins   uint32
}

// WriteIndex writes the offset index for a label file.  The tiling
// configuration is stored alongside the offsets so that readers can
// reconstruct bin coordinates without the original command line.
func WriteIndex(w io.Writer, cfg tiling.Config, entries []Entry) error {
	if _, err := w.Write(indexMagic); err != nil {
		return fmt.Errorf("writing magic: %v", err)
	}
	for _, v := range []uint32{cfg.BinSize, cfg.Stride, cfg.LeftFlank, cfg.RightFlank} {
		if err := binary.Write(w, v); err != nil {
			return fmt.Errorf("writing tiling: %v", err)
		}
	}
	if err := binary.Write(w, uint32(len(entries))); err != nil {
		return fmt.Errorf("writing entry count: %v", err)
	}
	for _, entry := range entries {
		if err := binary.WriteString(w, entry.Chrom); err != nil {
			return fmt.Errorf("writing chromosome name: %v", err)
		}
		if err := binary.Write(w, entry.Offset); err != nil {
			return fmt.Errorf("writing offset: %v", err)
		}
		if err := binary.Write(w, entry.Bins); err != nil {
			return fmt.Errorf("writing bin count: %v", err)
		}
	}
	return nil
}

// ReadIndex reads an index written by WriteIndex.
func ReadIndex(r io.Reader) (tiling.Config, []Entry, error) {
	if err := binary.ExpectBytes(r, indexMagic); err != nil {
		return tiling.Config{}, nil, err
	}
	var cfg tiling.Config
	for _, v := range []*uint32{&cfg.BinSize, &cfg.Stride, &cfg.LeftFlank, &cfg.RightFlank} {
		if err := binary.Read(r, v); err != nil {
			return tiling.Config{}, nil, fmt.Errorf("reading tiling: %v", err)
		}
	}
	var count uint32
	if err := binary.Read(r, &count); err != nil {
		return tiling.Config{}, nil, fmt.Errorf("reading entry count: %v", err)
	}
	// Entries are appended as they decode so that a corrupt count
	// cannot size an allocation beyond what the file actually holds.
	var entries []Entry
	for i := uint32(0); i < count; i++ {
		var entry Entry
		chrom, err := binary.ReadString(r)
		if err != nil {
			return tiling.Config{}, nil, fmt.Errorf("reading chromosome name: %v", err)
		}
		entry.Chrom = chrom
		if err := binary.Read(r, &entry.Offset); err != nil {
			return tiling.Config{}, nil, fmt.Errorf("reading offset: %v", err)
		}
		if err := binary.Read(r, &entry.Bins); err != nil {
			return tiling.Config{}, nil, fmt.Errorf("reading bin count: %v", err)
		}
		entries = append(entries, entry)
	}
	return cfg, entries, nil
}
