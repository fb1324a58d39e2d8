package genomics

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseRegion(t *testing.T) {
	testCases := []struct {
		name              string
		chrom, start, end string
		want              Region
	}{
		{"whole chromosome", "chr1", "", "", Region{Chrom: "chr1"}},
		{"start only", "chr2", "1000", "", Region{Chrom: "chr2", Start: 1000}},
		{"start and end", "chrX", "500", "1500", Region{Chrom: "chrX", Start: 500, End: 1500}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRegion(tc.chrom, tc.start, tc.end)
			if err != nil {
				t.Fatalf("ParseRegion(%q, %q, %q) returned error: %v", tc.chrom, tc.start, tc.end, err)
			}
			if got != tc.want {
				t.Errorf("Wrong region: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseRegion_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name              string
		chrom, start, end string
	}{
		{"missing chromosome", "", "0", "100"},
		{"start after end", "chr1", "200", "100"},
		{"non-numeric start", "chr1", "abc", ""},
		{"negative end", "chr1", "0", "-5"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got, err := ParseRegion(tc.chrom, tc.start, tc.end); err == nil {
				t.Errorf("Unexpected success: got %v, wanted error", got)
			}
		})
	}
}

func TestRegionOverlap(t *testing.T) {
	region := Region{Chrom: "chr1", Start: 100, End: 200}
	testCases := []struct {
		name       string
		start, end uint32
		want       uint32
	}{
		{"disjoint left", 0, 100, 0},
		{"disjoint right", 200, 300, 0},
		{"contained", 120, 180, 60},
		{"spanning", 0, 1000, 100},
		{"left edge", 50, 150, 50},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := region.Overlap(tc.start, tc.end); got != tc.want {
				t.Errorf("Wrong overlap: got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReadChromSizes(t *testing.T) {
	input := strings.Join([]string{
		"# assembly: test",
		"chr1\t1000",
		"",
		"chr2\t500",
	}, "\n")
	got, err := ReadChromSizes(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadChromSizes returned error: %v", err)
	}
	want := []Chromosome{{"chr1", 1000}, {"chr2", 500}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wrong chromosomes: got %v, want %v", got, want)
	}
}

func TestReadChromSizes_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"missing size", "chr1"},
		{"non-numeric size", "chr1\tbig"},
		{"duplicate name", "chr1\t100\nchr1\t200"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got, err := ReadChromSizes(strings.NewReader(tc.input)); err == nil {
				t.Errorf("Unexpected success: got %v, wanted error", got)
			}
		})
	}
}
