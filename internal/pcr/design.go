// internal/pcr/design.go
package pcr

import (
	"math"

	"genelab/internal/dna"
	"genelab/internal/genome"
	"genelab/internal/simerr"
)

/* -------------------------------------------------------------------------- */
/*                               DesignPrimers                                */
/* -------------------------------------------------------------------------- */

// DesignPrimers slides a primerLength window over the flanks of
// [targetStart, targetEnd) and returns the best [forward, reverse] pair, or
// an empty slice when either flank yields no acceptable candidate.
// Reverse candidates are reverse-complemented downstream windows.
func (e *Engine) DesignPrimers(g genome.Accessor, targetStart, targetEnd, primerLength int) ([]Primer, error) {
	switch {
	case primerLength <= 0:
		return nil, simerr.Input("primer length %d", primerLength)
	case targetStart < 0 || targetEnd < 0:
		return nil, simerr.Input("negative target coordinate [%d,%d)", targetStart, targetEnd)
	case targetEnd < targetStart:
		return nil, simerr.Input("target end %d before start %d", targetEnd, targetStart)
	case targetEnd > g.TotalLength():
		return nil, simerr.Region(targetStart, targetEnd-targetStart, g.TotalLength())
	}

	flank := primerLength + e.cfg.FlankPadding
	upStart := targetStart - flank
	if upStart < 0 {
		upStart = 0
	}
	upstream := g.Sequence(upStart, targetStart-upStart)
	downstream := g.Sequence(targetEnd, flank)

	var fwd, rev []Primer
	for i := 0; i+primerLength <= len(upstream); i++ {
		p, err := NewPrimer(upstream[i:i+primerLength], true)
		if err != nil {
			return nil, err
		}
		p.Position = upStart + i
		if p.Acceptable() {
			fwd = append(fwd, p)
		}
	}
	for i := 0; i+primerLength <= len(downstream); i++ {
		p, err := NewPrimer(dna.RevComp(downstream[i:i+primerLength]), false)
		if err != nil {
			return nil, err
		}
		p.Position = targetEnd + i
		if p.Acceptable() {
			rev = append(rev, p)
		}
	}

	if len(fwd) == 0 || len(rev) == 0 {
		return []Primer{}, nil
	}

	// first candidates win unless a pair scores strictly above zero
	bestF, bestR := fwd[0], rev[0]
	best := 0.0
	for _, f := range fwd {
		for _, r := range rev {
			if s := PairScore(f, r); s > best {
				best, bestF, bestR = s, f, r
			}
		}
	}
	return []Primer{bestF, bestR}, nil
}

// PairScore rewards matched Tm, balanced GC and specificity, and penalises
// self-complementarity (−5 each) and dimer risk (−3 each).
func PairScore(f, r Primer) float64 {
	score := math.Max(0, 10-math.Abs(f.Tm-r.Tm))
	score += (1 - math.Abs(f.GC-0.5)) * 5
	score += (1 - math.Abs(r.GC-0.5)) * 5
	score += f.Specificity*10 + r.Specificity*10
	for _, p := range [...]Primer{f, r} {
		if p.SelfComplementary {
			score -= 5
		}
		if p.DimerRisk {
			score -= 3
		}
	}
	return score
}
