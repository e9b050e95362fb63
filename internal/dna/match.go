// internal/dna/match.go
package dna

import "strings"

/* ----------------------- types --------------------- */

type Match struct {
	Pos         int
	Mismatches  int
	MismatchIdx []int // 0-based positions in the pattern (5'→3') that mismatched
}

/* --------------------------- FindMatches (cap) -------------------------- */

// FindMatches scans seq for windows matching pattern with at most maxMM
// mismatched bases. Pattern bytes are IUPAC codes; seq bytes are bases.
// capHits == 0 ➜ unlimited.
func FindMatches(seq, pattern string, maxMM, capHits int) []Match {
	pl := len(pattern)
	if pl == 0 || len(seq) < pl {
		return nil
	}

	// Exact-match fast path.
	if maxMM == 0 && isUnambiguous(pattern) {
		out := make([]Match, 0, 8)
		for i := 0; ; {
			j := strings.Index(seq[i:], pattern)
			if j < 0 {
				break
			}
			pos := i + j
			out = append(out, Match{Pos: pos})
			if capHits > 0 && len(out) >= capHits {
				break
			}
			i = pos + 1
		}
		return out
	}

	end := len(seq) - pl
	out := make([]Match, 0, 8)

window:
	for pos := 0; pos <= end; pos++ {
		mm := 0
		var idx []int
		for j := 0; j < pl; j++ {
			if !MatchesIUPAC(seq[pos+j], pattern[j]) {
				mm++
				idx = append(idx, j)
				if mm > maxMM {
					continue window
				}
			}
		}
		out = append(out, Match{Pos: pos, Mismatches: mm, MismatchIdx: idx})
		if capHits > 0 && len(out) >= capHits {
			break // early stop to cap memory
		}
	}
	return out
}

// MismatchCount counts positions where g fails to satisfy p. Lengths must match.
func MismatchCount(g, p string) int {
	if len(g) != len(p) {
		panic("MismatchCount: length mismatch")
	}
	mm := 0
	for i := 0; i < len(p); i++ {
		if !MatchesIUPAC(g[i], p[i]) {
			mm++
		}
	}
	return mm
}

func isUnambiguous(p string) bool {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}
