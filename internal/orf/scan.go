package orf

import (
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultMinLength is the minimum ORF length (in bases) used when none is given.
const DefaultMinLength = 50

const startCodon = "ATG"

// Strand identifies the DNA strand an ORF was read from.
type Strand int8

const (
	Forward Strand = 1
	Reverse Strand = -1
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// StrandSet selects which strands a scan covers. The zero value scans both.
type StrandSet int

const (
	BothStrands StrandSet = iota
	ForwardOnly
	ReverseOnly
)

// ORF is one open reading frame located on a sequence.
type ORF struct {
	// Sequence is the ORF in original-strand orientation. For reverse-strand
	// ORFs this is the reverse complement of Coding.
	Sequence string
	// Coding reads 5'->3' on the ORF's own strand: ATG ... stop.
	Coding string
	Strand Strand
	// Frame is 1, 2 or 3, counted from the 5' end of the scanned strand.
	Frame int
	// Start and End are 0-based, end-exclusive forward-strand coordinates.
	Start int
	End   int
}

// Len returns the ORF length in bases.
func (o ORF) Len() int { return len(o.Coding) }

// SignedFrame returns the frame with the strand sign, e.g. +2 or -1.
func (o ORF) SignedFrame() int { return int(o.Strand) * o.Frame }

// Pos returns the 1-based forward-strand position of the ORF's first base.
func (o ORF) Pos() int { return o.Start + 1 }

// Options controls Scan.
type Options struct {
	MinLength int
	// Overlapping reports an ORF for every start codon, including starts
	// that fall inside an ORF already reported. When false, scanning resumes
	// after the end of each ORF found.
	Overlapping bool
	Strands     StrandSet
	// Concurrent scans the two strands in separate goroutines.
	Concurrent bool
}

// FindORFs returns the ORFs of seq that are at least minLength bases long:
// forward-strand ORFs in scan order, then reverse-strand ORFs converted back
// to original-strand orientation, in reverse-strand scan order.
func FindORFs(seq string, minLength int) ([]string, error) {
	orfs, err := Scan(seq, Options{MinLength: minLength})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(orfs))
	for _, o := range orfs {
		out = append(out, o.Sequence)
	}
	return out, nil
}

// Scan locates ORFs on seq and annotates them with strand, frame and
// position. The result ordering matches FindORFs.
func Scan(seq string, opts Options) ([]ORF, error) {
	rc, err := ReverseComplement(seq)
	if err != nil {
		return nil, err
	}

	var fwd, rev []ORF
	scanForward := func() {
		if opts.Strands != ReverseOnly {
			fwd = forwardORFs(seq, opts)
		}
	}
	scanReverse := func() {
		if opts.Strands != ForwardOnly {
			rev = reverseORFs(seq, rc, opts)
		}
	}

	if opts.Concurrent {
		var g errgroup.Group
		g.Go(func() error { scanForward(); return nil })
		g.Go(func() error { scanReverse(); return nil })
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		scanForward()
		scanReverse()
	}

	out := make([]ORF, 0, len(fwd)+len(rev))
	out = append(out, fwd...)
	return append(out, rev...), nil
}

func forwardORFs(seq string, opts Options) []ORF {
	var out []ORF
	for _, sp := range spans(seq, opts.Overlapping) {
		if sp.end-sp.start < opts.MinLength {
			continue
		}
		s := seq[sp.start:sp.end]
		out = append(out, ORF{
			Sequence: s,
			Coding:   s,
			Strand:   Forward,
			Frame:    sp.start%3 + 1,
			Start:    sp.start,
			End:      sp.end,
		})
	}
	return out
}

func reverseORFs(seq, rc string, opts Options) []ORF {
	n := len(seq)
	var out []ORF
	for _, sp := range spans(rc, opts.Overlapping) {
		if sp.end-sp.start < opts.MinLength {
			continue
		}
		start, end := n-sp.end, n-sp.start
		out = append(out, ORF{
			Sequence: seq[start:end],
			Coding:   rc[sp.start:sp.end],
			Strand:   Reverse,
			Frame:    sp.start%3 + 1,
			Start:    start,
			End:      end,
		})
	}
	return out
}

type span struct{ start, end int }

// spans walks strand left to right. From each start codon it advances one
// codon at a time and stops at the first in-frame stop codon. A start codon
// with no downstream in-frame stop yields nothing.
func spans(strand string, overlapping bool) []span {
	var out []span
	i := 0
	for {
		s := indexFrom(strand, startCodon, i)
		if s < 0 {
			return out
		}
		end := stopAfter(strand, s)
		switch {
		case end < 0, overlapping:
			i = s + 1
		default:
			i = end
		}
		if end >= 0 {
			out = append(out, span{s, end})
		}
	}
}

// stopAfter returns the end (exclusive) of the first in-frame stop codon
// following the start codon at s, or -1.
func stopAfter(strand string, s int) int {
	for j := s + 3; j+3 <= len(strand); j += 3 {
		if isStop(strand[j : j+3]) {
			return j + 3
		}
	}
	return -1
}

func isStop(codon string) bool {
	switch codon {
	case "TAG", "TGA", "TAA":
		return true
	}
	return false
}

func indexFrom(s, sub string, from int) int {
	if from >= len(s) {
		return -1
	}
	if k := strings.Index(s[from:], sub); k >= 0 {
		return from + k
	}
	return -1
}
