package orf

// Package orf finds open reading frames on both strands of a DNA sequence.

import (
	"errors"
	"fmt"
)

// ErrInvalidBase is matched by every *InvalidBaseError via errors.Is.
var ErrInvalidBase = errors.New("invalid base")

// InvalidBaseError reports a character outside {A,C,G,T}.
type InvalidBaseError struct {
	Base byte
	Pos  int
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base %q at position %d", e.Base, e.Pos)
}

func (e *InvalidBaseError) Is(target error) bool { return target == ErrInvalidBase }

var complementBase = [256]byte{'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C'}

// ReverseComplement returns the reverse complement of seq. Only upper-case
// A, C, G and T are accepted; the first other character is reported as an
// *InvalidBaseError with its position in seq.
func ReverseComplement(seq string) (string, error) {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complementBase[seq[i]]
		if c == 0 {
			return "", &InvalidBaseError{Base: seq[i], Pos: i}
		}
		out[n-1-i] = c
	}
	return string(out), nil
}
