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

package tilestore

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlegenomics/labelgen/internal/binary"
	"github.com/googlegenomics/labelgen/internal/genomics"
	"github.com/googlegenomics/labelgen/internal/tiling"
)

func testMeta() Meta {
	return Meta{
		Tiling: tiling.Config{BinSize: 200, Stride: 50},
		Tasks:  []string{"CTCF"},
		Chroms: []genomics.Chromosome{{Name: "chr1", Size: 100000}},
	}
}

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir, err := ioutil.TempDir("", "tilestore")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := Create(filepath.Join(dir, "store"), testMeta(), false)
	require.NoError(t, err)
	return store, filepath.Join(dir, "store")
}

func TestCreateOpenRoundTrip(t *testing.T) {
	_, dir := tempStore(t)

	store, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, testMeta(), store.Meta())
	assert.True(t, store.HasTask("CTCF"))
	assert.False(t, store.HasTask("POL2"))
}

func TestCreate_OverwriteGuard(t *testing.T) {
	_, dir := tempStore(t)

	_, err := Create(dir, testMeta(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = Create(dir, testMeta(), true)
	assert.NoError(t, err)
}

func TestReadRange(t *testing.T) {
	store, _ := tempStore(t)

	labels := make([]int8, 2500)
	labels[0] = 1
	labels[999] = -1
	labels[1000] = 1
	labels[2499] = -1
	// Small tiles force the range reads below to cross tile boundaries.
	require.NoError(t, store.WriteArray("CTCF", "chr1", labels, 1000))

	testCases := []struct {
		name     string
		from, to uint32
		want     map[uint32]int8
	}{
		{"first tile", 0, 10, map[uint32]int8{0: 1, 5: 0}},
		{"tile boundary", 990, 1010, map[uint32]int8{999 - 990: -1, 1000 - 990: 1}},
		{"last partial tile", 2400, 2500, map[uint32]int8{99: -1}},
		{"whole array", 0, 2500, map[uint32]int8{0: 1, 999: -1, 1000: 1, 2499: -1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.ReadRange("CTCF", "chr1", tc.from, tc.to)
			require.NoError(t, err)
			require.Len(t, got, int(tc.to-tc.from))
			for offset, want := range tc.want {
				assert.Equal(t, want, got[offset], "bin %d", tc.from+offset)
			}
		})
	}
}

func TestReadRange_Errors(t *testing.T) {
	store, _ := tempStore(t)
	require.NoError(t, store.WriteArray("CTCF", "chr1", make([]int8, 100), 0))

	_, err := store.ReadRange("POL2", "chr1", 0, 10)
	assert.Error(t, err)

	_, err = store.ReadRange("CTCF", "chr1", 0, 101)
	assert.Error(t, err)

	got, err := store.ReadRange("CTCF", "chr1", 10, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadRange_CorruptArray(t *testing.T) {
	store, dir := tempStore(t)
	require.NoError(t, store.WriteArray("CTCF", "chr1", make([]int8, 100), 0))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "CTCF.chr1.tile"), []byte("junk"), 0644))

	_, err := store.ReadRange("CTCF", "chr1", 0, 10)
	assert.Error(t, err)
}

// A header with valid magic but broken geometry must be rejected as a
// parse error rather than crashing later range arithmetic or sizing
// allocations from the unread tile directory.
func TestReadRange_InvalidHeader(t *testing.T) {
	testCases := []struct {
		name                      string
		bins, tileBins, tileCount uint32
		wantErr                   string
	}{
		{"zero bins per tile", 5, 0, 0, "invalid header"},
		{"too many tiles", 5, 1000, 4000000000, "invalid header"},
		{"too few tiles", 2500, 1000, 1, "invalid header"},
		{"missing tile directory", 4000000, 1, 4000000, "tile directory"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, dir := tempStore(t)

			var buffer bytes.Buffer
			buffer.Write(tileMagic)
			for _, v := range []uint32{tc.bins, tc.tileBins, tc.tileCount} {
				require.NoError(t, binary.Write(&buffer, v))
			}
			require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "CTCF.chr1.tile"), buffer.Bytes(), 0644))

			_, err := store.ReadRange("CTCF", "chr1", 0, 5)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestBins(t *testing.T) {
	store, _ := tempStore(t)

	bins, err := store.Bins("chr1")
	require.NoError(t, err)
	assert.NotZero(t, bins.Count())

	_, err = store.Bins("chrZ")
	assert.Error(t, err)
}
