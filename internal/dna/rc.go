// internal/dna/rc.go
package dna

var complement [256]byte

func init() {
	pairs := [][2]byte{
		{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'},
		{'R', 'Y'}, {'Y', 'R'}, {'S', 'S'}, {'W', 'W'},
		{'K', 'M'}, {'M', 'K'}, {'B', 'V'}, {'V', 'B'},
		{'D', 'H'}, {'H', 'D'}, {'N', 'N'},
	}
	for _, p := range pairs {
		complement[p[0]] = p[1]
		complement[p[0]|0x20] = p[1] // output is always upper case
	}
}

// RevComp returns the reverse complement of seq. Unknown bytes become 'N'.
func RevComp(seq string) string {
	n := len(seq)
	if n == 0 {
		return ""
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[seq[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}

// Complement returns the complement of a single base ('N' if unknown).
func Complement(b byte) byte {
	if c := complement[b]; c != 0 {
		return c
	}
	return 'N'
}
