// internal/dna/iupac.go
package dna

/* -------------------------- IUPAC lookup table -------------------------- */

var iupacMask [256]byte // bit0=A bit1=C bit2=G bit3=T

func init() {
	set := func(c byte, bits byte) {
		iupacMask[c] = bits
		iupacMask[c|0x20] = bits // lower case mirrors upper
	}
	set('A', 1)       // 0001
	set('C', 2)       // 0010
	set('G', 4)       // 0100
	set('T', 8)       // 1000
	set('R', 1|4)     // A/G
	set('Y', 2|8)     // C/T
	set('S', 2|4)     // C/G
	set('W', 1|8)     // A/T
	set('K', 4|8)     // G/T
	set('M', 1|2)     // A/C
	set('B', 2|4|8)   // C/G/T
	set('D', 1|4|8)   // A/G/T
	set('H', 1|2|8)   // A/C/T
	set('V', 1|2|4)   // A/C/G
	set('N', 1|2|4|8) // any
}

// IsIUPAC reports whether c is a recognised nucleotide code (either case).
func IsIUPAC(c byte) bool { return iupacMask[c] != 0 }

// MatchesIUPAC reports whether genome base `base` satisfies pattern code `code`.
//
// Pattern N matches anything, including a genome N. Every other code needs
// an unambiguous genome base whose bit intersects the code's mask, so a
// genome N is a hard mismatch and N-blocks never produce spurious sites.
func MatchesIUPAC(base, code byte) bool {
	if code == 'N' || code == 'n' {
		return true
	}
	switch base {
	case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
	default:
		return false
	}
	return iupacMask[code]&iupacMask[base] != 0
}

// MatchesPattern reports whether seq matches the IUPAC pattern position by position.
func MatchesPattern(seq, pattern string) bool {
	if len(seq) != len(pattern) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if !MatchesIUPAC(seq[i], pattern[i]) {
			return false
		}
	}
	return true
}
