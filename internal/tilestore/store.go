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

// Package tilestore stores dense per-bin label arrays on disk, one
// file per task and chromosome, as gzip-compressed fixed-size tiles
// behind a tile directory.  Readers decompress only the tiles covering
// a requested bin range, which gives data loaders random access by
// genome coordinate.
package tilestore

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/googlegenomics/labelgen/internal/binary"
	"github.com/googlegenomics/labelgen/internal/genomics"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

var tileMagic = []byte("TILE\x01")

// DefaultTileBins is the number of bins stored per compressed tile.
const DefaultTileBins = 10000

const manifestName = "manifest.yaml"

// Meta describes the contents of a store.
type Meta struct {
	Tiling tiling.Config         `yaml:"tiling"`
	Tasks  []string              `yaml:"tasks"`
	Chroms []genomics.Chromosome `yaml:"chromosomes"`
}

// Store is a directory of label arrays plus the manifest describing
// them.
type Store struct {
	dir  string
	meta Meta
}

// Create makes a new store directory.  An existing store is only
// replaced when overwrite is set.
func Create(dir string, meta Meta, overwrite bool) (*Store, error) {
	if _, err := os.Stat(filepath.Join(dir, manifestName)); err == nil {
		if !overwrite {
			return nil, fmt.Errorf("store %s already exists (use overwrite to replace it)", dir)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %v", err)
	}

	encoded, err := yaml.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %v", err)
	}
	if err := ioutil.WriteFile(filepath.Join(dir, manifestName), encoded, 0644); err != nil {
		return nil, fmt.Errorf("writing manifest: %v", err)
	}
	return &Store{dir: dir, meta: meta}, nil
}

// Open opens an existing store.
func Open(dir string) (*Store, error) {
	encoded, err := ioutil.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %v", err)
	}
	var meta Meta
	if err := yaml.Unmarshal(encoded, &meta); err != nil {
		return nil, fmt.Errorf("decoding manifest: %v", err)
	}
	return &Store{dir: dir, meta: meta}, nil
}

// Meta returns the store manifest.
func (s *Store) Meta() Meta {
	return s.meta
}

// Bins returns the bin layout for one chromosome of the store.
func (s *Store) Bins(chrom string) (tiling.Bins, error) {
	for _, c := range s.meta.Chroms {
		if c.Name == chrom {
			return s.meta.Tiling.Bins(c.Size), nil
		}
	}
	return tiling.Bins{}, fmt.Errorf("chromosome %q not in store", chrom)
}

// HasTask reports whether the store holds labels for task.
func (s *Store) HasTask(task string) bool {
	for _, name := range s.meta.Tasks {
		if name == task {
			return true
		}
	}
	return false
}

func (s *Store) arrayPath(task, chrom string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.%s.tile", task, chrom))
}

// WriteArray stores the labels of one task and chromosome.  tileBins
// controls how many bins each compressed tile holds; zero selects
// DefaultTileBins.
func (s *Store) WriteArray(task, chrom string, labels []int8, tileBins uint32) error {
	if tileBins == 0 {
		tileBins = DefaultTileBins
	}

	tileCount := (uint32(len(labels)) + tileBins - 1) / tileBins
	tiles := make([][]byte, tileCount)
	for i := uint32(0); i < tileCount; i++ {
		lo := i * tileBins
		hi := lo + tileBins
		if hi > uint32(len(labels)) {
			hi = uint32(len(labels))
		}
		raw := make([]byte, hi-lo)
		for j, label := range labels[lo:hi] {
			raw[j] = byte(label)
		}
		var buffer bytes.Buffer
		gzw := gzip.NewWriter(&buffer)
		if _, err := gzw.Write(raw); err != nil {
			return fmt.Errorf("compressing tile %d: %v", i, err)
		}
		if err := gzw.Close(); err != nil {
			return fmt.Errorf("closing tile %d: %v", i, err)
		}
		tiles[i] = buffer.Bytes()
	}

	var header bytes.Buffer
	header.Write(tileMagic)
	for _, v := range []uint32{uint32(len(labels)), tileBins, tileCount} {
		if err := binary.Write(&header, v); err != nil {
			return fmt.Errorf("writing header: %v", err)
		}
	}
	offset := uint64(header.Len()) + uint64(tileCount)*12
	for _, tile := range tiles {
		if err := binary.Write(&header, offset); err != nil {
			return fmt.Errorf("writing tile directory: %v", err)
		}
		if err := binary.Write(&header, uint32(len(tile))); err != nil {
			return fmt.Errorf("writing tile directory: %v", err)
		}
		offset += uint64(len(tile))
	}

	f, err := os.Create(s.arrayPath(task, chrom))
	if err != nil {
		return fmt.Errorf("creating array file: %v", err)
	}
	defer f.Close()
	if _, err := f.Write(header.Bytes()); err != nil {
		return fmt.Errorf("writing array header: %v", err)
	}
	for _, tile := range tiles {
		if _, err := f.Write(tile); err != nil {
			return fmt.Errorf("writing tile: %v", err)
		}
	}
	return f.Close()
}

type arrayHeader struct {
	bins, tileBins, tileCount uint32
	offsets                   []uint64
	lengths                   []uint32
}

func readHeader(f io.Reader) (*arrayHeader, error) {
	if err := binary.ExpectBytes(f, tileMagic); err != nil {
		return nil, err
	}
	var header arrayHeader
	for _, v := range []*uint32{&header.bins, &header.tileBins, &header.tileCount} {
		if err := binary.Read(f, v); err != nil {
			return nil, fmt.Errorf("reading header: %v", err)
		}
	}
	if header.tileBins == 0 {
		return nil, fmt.Errorf("invalid header: zero bins per tile")
	}
	if want := uint32((uint64(header.bins) + uint64(header.tileBins) - 1) / uint64(header.tileBins)); header.tileCount != want {
		return nil, fmt.Errorf("invalid header: got %d tiles for %d bins, want %d", header.tileCount, header.bins, want)
	}
	for i := uint32(0); i < header.tileCount; i++ {
		var (
			offset uint64
			length uint32
		)
		if err := binary.Read(f, &offset); err != nil {
			return nil, fmt.Errorf("reading tile directory: %v", err)
		}
		if err := binary.Read(f, &length); err != nil {
			return nil, fmt.Errorf("reading tile directory: %v", err)
		}
		header.offsets = append(header.offsets, offset)
		header.lengths = append(header.lengths, length)
	}
	return &header, nil
}

// ReadRange reads the labels of bins [from, to) for one task and
// chromosome, touching only the tiles that cover the range.
func (s *Store) ReadRange(task, chrom string, from, to uint32) ([]int8, error) {
	if !s.HasTask(task) {
		return nil, fmt.Errorf("task %q not in store", task)
	}
	if from >= to {
		return nil, nil
	}

	f, err := os.Open(s.arrayPath(task, chrom))
	if err != nil {
		return nil, fmt.Errorf("opening array: %v", err)
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %v", task, chrom, err)
	}
	if to > header.bins {
		return nil, fmt.Errorf("bin range [%d, %d) outside array of %d bins", from, to, header.bins)
	}

	labels := make([]int8, to-from)
	for tile := from / header.tileBins; tile*header.tileBins < to; tile++ {
		raw, err := readTile(f, header, tile)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %v", task, chrom, err)
		}
		base := tile * header.tileBins
		for j, b := range raw {
			bin := base + uint32(j)
			if bin >= from && bin < to {
				labels[bin-from] = int8(b)
			}
		}
	}
	return labels, nil
}

func readTile(f io.ReaderAt, header *arrayHeader, tile uint32) ([]byte, error) {
	section := io.NewSectionReader(f, int64(header.offsets[tile]), int64(header.lengths[tile]))
	gzr, err := gzip.NewReader(section)
	if err != nil {
		return nil, fmt.Errorf("tile %d: initializing gzip reader: %v", tile, err)
	}
	defer gzr.Close()
	raw, err := ioutil.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("tile %d: decompressing: %v", tile, err)
	}
	return raw, nil
}
