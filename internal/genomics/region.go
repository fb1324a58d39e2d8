// Package genomics contains definitions related to genomic data.
package genomics

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Region defines a region of genomic interest.
type Region struct {
	// Chrom names the chromosome (reference sequence) the region lies on.
	Chrom string
	// Start and End specify the half-open range [Start, End) in base
	// pairs.  If End is zero, it is treated as though it was set to the
	// last position on the chromosome.
	Start, End uint32
}

func (region Region) String() string {
	return fmt.Sprintf("[chrom:%s, start:%d, end:%d]", region.Chrom, region.Start, region.End)
}

// Overlap returns the number of bases shared by the half-open interval
// [start, end) and the receiver.
func (region Region) Overlap(start, end uint32) uint32 {
	lo := region.Start
	if start > lo {
		lo = start
	}
	hi := region.End
	if end < hi {
		hi = end
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// ParseRegion builds a Region from the string forms used in query
// parameters and on the command line.  Empty start and end select the
// whole chromosome.
func ParseRegion(chrom, start, end string) (Region, error) {
	if chrom == "" {
		return Region{}, fmt.Errorf("no chromosome specified")
	}
	region := Region{Chrom: chrom}

	if start != "" {
		n, err := strconv.ParseUint(start, 10, 32)
		if err != nil {
			return Region{}, fmt.Errorf("parsing start: %v", err)
		}
		region.Start = uint32(n)
	}
	if end != "" {
		n, err := strconv.ParseUint(end, 10, 32)
		if err != nil {
			return Region{}, fmt.Errorf("parsing end: %v", err)
		}
		region.End = uint32(n)
	}
	if region.End > 0 && region.Start > region.End {
		return Region{}, fmt.Errorf("%s: start > end", region)
	}
	return region, nil
}

// Chromosome describes a single reference sequence.
type Chromosome struct {
	Name string
	Size uint32
}

// ReadChromSizes parses a standard two-column chrom.sizes file: the
// chromosome name and its length in base pairs, tab separated.  Blank
// lines and lines starting with '#' are skipped.
func ReadChromSizes(r io.Reader) ([]Chromosome, error) {
	var (
		chroms []Chromosome
		seen   = make(map[string]bool)
	)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected name and size, got %q", line, text)
		}
		size, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing size: %v", line, err)
		}
		if seen[fields[0]] {
			return nil, fmt.Errorf("line %d: duplicate chromosome %q", line, fields[0])
		}
		seen[fields[0]] = true
		chroms = append(chroms, Chromosome{Name: fields[0], Size: uint32(size)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading chromosome sizes: %v", err)
	}
	return chroms, nil
}
