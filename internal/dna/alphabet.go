// Package dna holds sequence primitives shared by every engine: the
// {A,C,G,T,N} alphabet, IUPAC pattern matching, reverse complement, GC
// arithmetic, and mismatch-tolerant search.
package dna

import (
	"fmt"
	"strings"

	"genelab/internal/simerr"
)

// Bases is the canonical order used whenever a random base is drawn.
const Bases = "ACGT"

// IsBase reports whether c is in {A,C,G,T,N}, either case.
func IsBase(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		return true
	}
	return false
}

// Validate upper-cases s and checks it against {A,C,G,T,N}.
func Validate(s string) (string, error) {
	for i := 0; i < len(s); i++ {
		if !IsBase(s[i]) {
			return "", fmt.Errorf("%w: base %q at %d; allowed: A C G T N", simerr.ErrInvalidSequence, s[i], i+1)
		}
	}
	return strings.ToUpper(s), nil
}

// GCCount counts G and C (either case).
func GCCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'G', 'C', 'g', 'c':
			n++
		}
	}
	return n
}

// GCContent is GCCount/len, or 0 for an empty sequence.
func GCContent(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	return float64(GCCount(s)) / float64(len(s))
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Clamp clamps v into [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
