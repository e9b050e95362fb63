// internal/crispr/repair.go
package crispr

import (
	"fmt"
	"strings"

	"genelab/internal/dna"
	"genelab/internal/genome"
	"genelab/internal/rng"
	"genelab/internal/simerr"
)

// Repair pathway labels.
const (
	PathwayNone = "NONE"
	PathwayNHEJ = "NHEJ"
	PathwayHDR  = "HDR"
)

// EditingResult is the outcome of one editing attempt on a cell population.
type EditingResult struct {
	Primary             EditOutcome
	Byproducts          []EditOutcome
	Efficiency          float64
	HasOffTargetEffects bool
	RepairPathway       string
	Quality             QualityMetrics
}

// Outcomes returns the primary outcome followed by the byproducts.
func (r EditingResult) Outcomes() []EditOutcome {
	return append([]EditOutcome{r.Primary}, r.Byproducts...)
}

// QualityMetrics summarises the outcome population.
type QualityMetrics struct {
	IndelFrequency      float64
	FrameshiftFraction  float64
	AverageIndelSize    float64
	Mosaicism           float64
	OutcomeDistribution map[string]float64
}

// PerformEditing cuts at site and simulates repair. hdrTemplate == "" means
// no donor template is available.
//
// Draw order: pathway roll, primary outcome, byproducts, off-target roll.
func (e *Engine) PerformEditing(r rng.Source, g genome.Accessor, site TargetSite, hdrTemplate string) (EditingResult, error) {
	tmpl, err := dna.Validate(hdrTemplate)
	if err != nil {
		return EditingResult{}, fmt.Errorf("hdr template: %w", err)
	}
	if site.Position < 0 || site.Position > g.TotalLength() {
		return EditingResult{}, simerr.Region(site.Position, 1, g.TotalLength())
	}

	var (
		pathway string
		primary EditOutcome
		dist    map[string]float64
	)
	roll := r.Float64()
	switch {
	case roll < e.cfg.NoEditProbability:
		pathway = PathwayNone
		primary = NewNoChange(site.Position, "No double-strand break induced")
		dist = map[string]float64{"no_edit": 1.0}
	case tmpl != "" && roll < e.cfg.NoEditProbability+e.cfg.HDRProbability:
		pathway = PathwayHDR
		primary = e.hdr(g, site, tmpl)
		dist = map[string]float64{"hdr_success": 0.10, "partial_hdr": 0.05, "nhej_background": 0.85}
	default:
		pathway = PathwayNHEJ
		primary = e.nhej(r, g, site)
		dist = map[string]float64{
			"deletion_1bp":    0.25,
			"deletion_2-5bp":  0.30,
			"deletion_6-20bp": 0.20,
			"insertion_1bp":   0.15,
			"insertion_2-5bp": 0.05,
			"complex_indel":   0.05,
		}
	}

	// population mosaicism: extra NHEJ alleles regardless of the primary pathway
	byproducts := make([]EditOutcome, 0, e.cfg.Byproducts)
	for i := 0; i < e.cfg.Byproducts; i++ {
		byproducts = append(byproducts, e.nhej(r, g, site))
	}

	offTarget := r.Float64() < site.OffTargetRisk

	return EditingResult{
		Primary:             primary,
		Byproducts:          byproducts,
		Efficiency:          site.OnTargetScore,
		HasOffTargetEffects: offTarget,
		RepairPathway:       pathway,
		Quality:             qualityMetrics(primary, byproducts, dist),
	}, nil
}

func cutSite(site TargetSite) int {
	c := site.Position - CutOffset
	if c < 0 {
		return 0
	}
	return c
}

func (e *Engine) nhej(r rng.Source, g genome.Accessor, site TargetSite) EditOutcome {
	cut := cutSite(site)
	if r.Float64() < e.cfg.DeletionProbability {
		size := e.indelSize(r, true)
		removed := strings.ToUpper(g.Sequence(cut, size))
		return NewDeletion(cut, len(removed), removed, fmt.Sprintf("NHEJ-mediated deletion of %dbp", size))
	}
	size := e.indelSize(r, false)
	ins := RandomSequence(r, size)
	return NewInsertion(cut, ins, fmt.Sprintf("NHEJ-mediated insertion of %dbp", size))
}

func (e *Engine) hdr(g genome.Accessor, site TargetSite, tmpl string) EditOutcome {
	cut := cutSite(site)
	replaced := len(tmpl)
	if rest := g.TotalLength() - cut; replaced > rest {
		replaced = rest
	}
	return NewReplacement(cut, replaced, tmpl, "HDR-mediated precise integration")
}

// indelSize samples the empirical histogram: 40% 1bp, 30% 2–5bp, 20% 6–15bp,
// 10% 16..max.
func (e *Engine) indelSize(r rng.Source, deletion bool) int {
	maxSize := e.cfg.MaxInsertion
	if deletion {
		maxSize = e.cfg.MaxDeletion
	}
	roll := r.Float64()
	switch {
	case roll < 0.4:
		return 1
	case roll < 0.7:
		return r.IntN(4) + 2
	case roll < 0.9:
		return r.IntN(10) + 6
	}
	if maxSize <= 15 {
		// no room above the 6–15 bucket (MaxInsertion=10): tail is 6..max
		if maxSize < 6 {
			return maxSize
		}
		return r.IntN(maxSize-5) + 6
	}
	return r.IntN(maxSize-15) + 16
}

// RandomSequence draws n uniform bases from ACGT.
func RandomSequence(r rng.Source, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = dna.Bases[r.IntN(4)]
	}
	return string(b)
}

func qualityMetrics(primary EditOutcome, byproducts []EditOutcome, dist map[string]float64) QualityMetrics {
	all := append([]EditOutcome{primary}, byproducts...)
	n := float64(len(all))

	total, frameshift, indels := 0, 0, 0
	sizes := make(map[int]struct{}, len(all))
	for _, o := range all {
		total += o.Size
		if o.Size%3 != 0 {
			frameshift++
		}
		if o.Kind == Deletion || o.Kind == Insertion {
			indels++
		}
		sizes[o.Size] = struct{}{}
	}
	return QualityMetrics{
		IndelFrequency:      float64(indels) / n,
		FrameshiftFraction:  float64(frameshift) / n,
		AverageIndelSize:    float64(total) / n,
		Mosaicism:           float64(len(sizes)) / n,
		OutcomeDistribution: dist,
	}
}
