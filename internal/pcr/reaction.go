// internal/pcr/reaction.go
package pcr

import (
	"fmt"
	"math"
	"strings"

	"genelab/internal/dna"
	"genelab/internal/genome"
	"genelab/internal/rng"
	"genelab/internal/simerr"
)

// Quality summarises how clean the reaction is expected to run.
type Quality struct {
	Efficiency          float64 `json:"efficiency"`
	Specificity         float64 `json:"specificity"`
	HasPrimerDimers     bool    `json:"hasPrimerDimers"`
	HasNonSpecificBands bool    `json:"hasNonSpecificBands"`
	EstimatedPurity     float64 `json:"estimatedPurity"`
}

// Result is the outcome of RunPCR. Mutations are "index:original>new" with
// index relative to the amplicon.
type Result struct {
	Success      bool             `json:"success"`
	Amplicon     string           `json:"amplicon"`
	Length       int              `json:"length"`
	Yield        float64          `json:"yield"`
	CopyEstimate float64          `json:"copyEstimate"`
	ErrorRate    float64          `json:"errorRate"`
	Mutations    []string         `json:"mutations"`
	Warnings     []simerr.Warning `json:"warnings"`
	Quality      Quality          `json:"quality"`
	ForwardSite  int              `json:"forwardSite"`
	ReverseSite  int              `json:"reverseSite"`
}

/* -------------------------------------------------------------------------- */
/*                                   RunPCR                                   */
/* -------------------------------------------------------------------------- */

// MaxCycles bounds ReactionParameters.Cycles; past it the copy estimate
// overflows and the per-base error probability exceeds 1.
const MaxCycles = 100

// RunPCR locates both primers, amplifies the product and injects polymerase
// errors. A missing binding site yields Success=false with a warning.
//
// Draw order: one uniform per amplicon base (plus one IntN over the other
// bases for each substitution), then the non-specific-band roll.
func (e *Engine) RunPCR(r rng.Source, g genome.Accessor, fwd, rev Primer, params ReactionParameters) (Result, error) {
	if fwd.Sequence == "" || rev.Sequence == "" {
		return Result{}, simerr.Input("zero-length primer")
	}
	if params.Cycles < 0 || params.Cycles > MaxCycles {
		return Result{}, simerr.Input("cycle count %d outside [0,%d]", params.Cycles, MaxCycles)
	}
	if math.IsNaN(params.AnnealingTemp) || math.IsInf(params.AnnealingTemp, 0) {
		return Result{}, simerr.Input("annealing temperature %g", params.AnnealingTemp)
	}

	var warns []simerr.Warning
	if d := math.Abs(fwd.Tm - rev.Tm); d > 5 {
		warns = append(warns, simerr.Warn(simerr.PrimerTmMismatch, fmt.Sprintf("Primer Tm difference too large: %.1f°C", d)))
	}
	if CrossDimer(fwd.Sequence, rev.Sequence) {
		warns = append(warns, simerr.Warn(simerr.PrimerDimer, "Primers may form dimers with each other"))
	}

	total := g.TotalLength()
	fSite := e.findBindingSite(g, fwd, 0, total)
	if fSite < 0 {
		return failed(append(warns, simerr.Warn(simerr.PrimerBindingNotFound, "Forward primer binding site not found"))), nil
	}
	rSite := e.findBindingSite(g, rev, fSite, total)
	if rSite < 0 {
		return failed(append(warns, simerr.Warn(simerr.PrimerBindingNotFound, "Reverse primer binding site not found"))), nil
	}

	length := rSite - fSite + len(rev.Sequence)
	if length > e.cfg.MaxAmpliconLength {
		warns = append(warns, simerr.Warn(simerr.AmpliconTooLong, fmt.Sprintf("Amplicon too long for standard PCR: %dbp", length)))
	}
	template := strings.ToUpper(g.Sequence(fSite, length))

	eff := Efficiency(fwd, rev, params)
	rate := e.ErrorRate(params)
	amplicon, mutations := injectErrors(r, template, rate, params.Cycles)

	spec := (fwd.Specificity + rev.Specificity) / 2
	dimers := fwd.DimerRisk || rev.DimerRisk
	nonSpecific := r.Float64() < 1-spec
	purity := 0.95
	if dimers || nonSpecific {
		purity = 0.7
	}

	if dimers {
		warns = append(warns, simerr.Warn(simerr.PrimerDimer, "Primer dimers detected"))
	}
	if nonSpecific {
		warns = append(warns, simerr.Warn(simerr.NonSpecificAmplification, "Non-specific amplification detected"))
	}
	if len(mutations) > 0 {
		warns = append(warns, simerr.Warn(simerr.PolymeraseErrors, fmt.Sprintf("PCR errors introduced: %d", len(mutations))))
	}

	return Result{
		Success:      true,
		Amplicon:     amplicon,
		Length:       len(template),
		Yield:        eff,
		CopyEstimate: math.Pow(1+eff, float64(params.Cycles)),
		ErrorRate:    rate,
		Mutations:    mutations,
		Warnings:     warns,
		Quality: Quality{
			Efficiency:          eff,
			Specificity:         spec,
			HasPrimerDimers:     dimers,
			HasNonSpecificBands: nonSpecific,
			EstimatedPurity:     purity,
		},
		ForwardSite: fSite,
		ReverseSite: rSite,
	}, nil
}

func failed(w []simerr.Warning) Result {
	return Result{Mutations: []string{}, Warnings: w, ForwardSite: -1, ReverseSite: -1}
}

// Efficiency is the per-cycle efficiency, clamped to [0.5, 1].
func Efficiency(fwd, rev Primer, params ReactionParameters) float64 {
	eff := 0.95
	if math.Abs(fwd.Tm-rev.Tm) > 5 {
		eff -= 0.1
	}
	optimal := (fwd.Tm+rev.Tm)/2 - 5
	if math.Abs(params.AnnealingTemp-optimal) > 5 {
		eff -= 0.15
	}
	for _, p := range [...]Primer{fwd, rev} {
		if !gcInRange(p.GC) {
			eff -= 0.05
		}
		if p.SelfComplementary {
			eff -= 0.1
		}
	}
	return dna.Clamp(eff, 0.5, 1)
}

// findBindingSite scans [start,end) in overlapping chunks; within a chunk an
// exact hit beats a mismatch-tolerant one. Returns -1 when absent.
func (e *Engine) findBindingSite(g genome.Accessor, p Primer, start, end int) int {
	target := p.Sequence
	if !p.Forward {
		target = dna.RevComp(target)
	}
	chunk := e.cfg.SearchChunk
	if chunk < len(target) {
		chunk = len(target)
	}
	step := chunk - len(target)
	if step < 1 {
		step = 1
	}

	for pos := start; pos < end; pos += step {
		n := chunk
		if end-pos < n {
			n = end - pos
		}
		window := strings.ToUpper(g.Sequence(pos, n))
		if i := strings.Index(window, target); i >= 0 {
			return pos + i
		}
		if hits := dna.FindMatches(window, target, e.cfg.MaxBindingMismatches, 1); len(hits) > 0 {
			return pos + hits[0].Pos
		}
	}
	return -1
}

func injectErrors(r rng.Source, template string, rate float64, cycles int) (string, []string) {
	out := []byte(template)
	mutations := []string{}
	p := rate * float64(cycles)
	for i := range out {
		if r.Float64() >= p {
			continue
		}
		orig := out[i]
		others := strings.Replace(dna.Bases, string(orig), "", 1)
		nb := others[r.IntN(len(others))]
		out[i] = nb
		mutations = append(mutations, fmt.Sprintf("%d:%c>%c", i, orig, nb))
	}
	return string(out), mutations
}
