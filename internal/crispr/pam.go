// internal/crispr/pam.go
package crispr

import (
	"fmt"
	"strings"

	"genelab/internal/dna"
	"genelab/internal/genome"
	"genelab/internal/rng"
	"genelab/internal/simerr"
)

// TargetSite is a candidate guide target found by FindPamSites.
type TargetSite struct {
	Position      int     `json:"position"` // absolute coordinate of the PAM's first base
	Protospacer   string  `json:"protospacer"`
	PamSequence   string  `json:"pam_sequence"`
	OnTargetScore float64 `json:"on_target_score"`
	OffTargetRisk float64 `json:"off_target_risk"`
}

// repetitive motifs that raise off-target risk
var offTargetMotifs = [...]string{"AAAA", "TTTT", "GGGG", "CCCC", "ATAT", "GCGC"}

// ValidatePAM upper-cases pattern and checks it is 3–6 IUPAC symbols.
func ValidatePAM(pattern string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(pattern))
	if len(p) < 3 || len(p) > 6 {
		return "", fmt.Errorf("%w: %q must be 3-6 bases", simerr.ErrUnsupportedPamPattern, pattern)
	}
	for i := 0; i < len(p); i++ {
		if !dna.IsIUPAC(p[i]) {
			return "", fmt.Errorf("%w: %q has non-IUPAC symbol %q", simerr.ErrUnsupportedPamPattern, pattern, p[i])
		}
	}
	return p, nil
}

// FindPamSites scans [start, start+length) for PAM matches with a full
// protospacer upstream, scoring each site. One jitter draw is taken per site,
// in ascending position order.
func (e *Engine) FindPamSites(r rng.Source, g genome.Accessor, start, length int, pam string) ([]TargetSite, error) {
	pat, err := ValidatePAM(pam)
	if err != nil {
		return nil, err
	}
	if err := genome.CheckWindow(g, start, length); err != nil {
		return nil, err
	}

	seq := strings.ToUpper(g.Sequence(start, length))
	psl := e.cfg.ProtospacerLength
	pl := len(pat)

	var sites []TargetSite
	for i := psl; i+pl <= len(seq); i++ {
		cand := seq[i : i+pl]
		if !dna.MatchesPattern(cand, pat) {
			continue
		}
		proto := seq[i-psl : i]
		sites = append(sites, TargetSite{
			Position:      start + i,
			Protospacer:   proto,
			PamSequence:   cand,
			OnTargetScore: onTargetScore(r, proto, cand),
			OffTargetRisk: OffTargetRisk(proto),
		})
	}
	return sites, nil
}

// onTargetScore is a simplified Doench-style heuristic plus up to 0.1 jitter.
func onTargetScore(r rng.Source, proto, pam string) float64 {
	score := 0.5
	if strings.HasSuffix(proto, "G") {
		score += 0.1
	}
	seed := proto
	if len(seed) > seedRegion {
		seed = seed[:seedRegion]
	}
	if gc := dna.GCContent(seed); gc >= 0.4 && gc <= 0.7 {
		score += 0.15
	}
	if !strings.Contains(proto, "TTTT") {
		score += 0.1
	}
	if pam == "AGG" || pam == "TGG" {
		score += 0.05
	}
	return dna.Clamp01(score + r.Float64()*0.1)
}

// OffTargetRisk scores low complexity and repetitive motifs; deterministic.
func OffTargetRisk(proto string) float64 {
	risk := 0.1
	if lowComplexity(proto) {
		risk += 0.2
	}
	for _, m := range offTargetMotifs {
		if strings.Contains(proto, m) {
			risk += 0.05
		}
	}
	return dna.Clamp01(risk)
}

// lowComplexity: fewer than 8 distinct dinucleotides.
func lowComplexity(s string) bool {
	seen := make(map[string]struct{}, 16)
	for i := 0; i+2 <= len(s); i++ {
		seen[s[i:i+2]] = struct{}{}
	}
	return len(seen) < 8
}
