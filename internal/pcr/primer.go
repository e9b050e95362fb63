// internal/pcr/primer.go
package pcr

import (
	"strings"

	"genelab/internal/dna"
	"genelab/internal/simerr"
)

// Primer is an oligo with its derived thermodynamic and risk properties.
type Primer struct {
	Sequence          string  `json:"sequence"`
	Forward           bool    `json:"forward"`
	Tm                float64 `json:"tm"`
	GC                float64 `json:"gc"`
	Specificity       float64 `json:"specificity"`
	SelfComplementary bool    `json:"selfComplementary"`
	DimerRisk         bool    `json:"dimerRisk"`
	Position          int     `json:"position"` // genome coordinate of the designed window; -1 when unknown
}

// NewPrimer validates seq and derives the primer's properties.
func NewPrimer(seq string, forward bool) (Primer, error) {
	s, err := dna.Validate(strings.TrimSpace(seq))
	if err != nil {
		return Primer{}, err
	}
	if s == "" {
		return Primer{}, simerr.Input("zero-length primer")
	}
	return Primer{
		Sequence:          s,
		Forward:           forward,
		Tm:                MeltingTemp(s),
		GC:                dna.GCContent(s),
		Specificity:       specificity(s),
		SelfComplementary: selfComplementary(s),
		DimerRisk:         dimerRisk(s),
		Position:          -1,
	}, nil
}

// MeltingTemp is the salt-adjusted GC formula
// Tm = 64.9 + 0.41·(GC−16.4)·100/N − 600/N.
func MeltingTemp(seq string) float64 {
	n := float64(len(seq))
	if n == 0 {
		return 0
	}
	gc := float64(dna.GCCount(seq))
	return 64.9 + 0.41*(gc-16.4)*100/n - 600/n
}

// Acceptable reports whether p passes the design filters.
func (p Primer) Acceptable() bool {
	if p.Tm < 55 || p.Tm > 65 {
		return false
	}
	if !gcInRange(p.GC) {
		return false
	}
	return !(p.SelfComplementary && p.Specificity < 0.5)
}

func gcInRange(gc float64) bool { return gc >= 0.4 && gc <= 0.6 }

func specificity(seq string) float64 {
	score := 0.8
	if hasRepeats(seq) {
		score -= 0.2
	}
	if distinctBases(seq) < 4 {
		score -= 0.1
	}
	return dna.Clamp01(score)
}

// hasRepeats: the k-base prefix (3 <= k <= len/2) reappears later in seq.
func hasRepeats(seq string) bool {
	for k := 3; k <= len(seq)/2; k++ {
		if strings.Contains(seq[k:], seq[:k]) {
			return true
		}
	}
	return false
}

func distinctBases(seq string) int {
	var seen [256]bool
	n := 0
	for i := 0; i < len(seq); i++ {
		if !seen[seq[i]] {
			seen[seq[i]] = true
			n++
		}
	}
	return n
}

// selfComplementary: the 3' hexamer can anneal to the primer's own reverse complement.
func selfComplementary(seq string) bool {
	if len(seq) < 6 {
		return false
	}
	return strings.Contains(dna.RevComp(seq), seq[len(seq)-6:])
}

func dimerRisk(seq string) bool {
	if len(seq) < 4 {
		return false
	}
	return strings.Contains(seq, dna.RevComp(seq[len(seq)-4:]))
}

// CrossDimer reports whether a's sequence can pair with b's 3' end.
func CrossDimer(a, b string) bool {
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	bEnd := dna.RevComp(b[len(b)-4:])
	return strings.Contains(a, bEnd) || a[len(a)-4:] == bEnd
}
