// internal/sequencing/run.go
package sequencing

import (
	"fmt"
	"math"

	"genelab/internal/genome"
	"genelab/internal/rng"
	"genelab/internal/simerr"
)

// Region selects the sequenced window. Length <= 0 means the whole genome.
type Region struct {
	Start  int `json:"start" yaml:"start"`
	Length int `json:"length" yaml:"length"`
}

// Result is the outcome of RunSequencing.
type Result struct {
	Success  bool             `json:"success"`
	Reads    []Read           `json:"reads"`
	Stats    Stats            `json:"stats"`
	Profile  Profile          `json:"profile"`
	Region   Region           `json:"region"`
	Warnings []simerr.Warning `json:"warnings"`
}

// Quality thresholds behind the run warnings.
const (
	lowCoverage = 10.0
	lowQ30      = 80.0
	gcLow       = 0.35
	gcHigh      = 0.65
)

// Limits on a single run. Coverage past MaxCoverage, or a run needing more
// than MaxReads reads, is rejected as ErrInvalidInput.
const (
	MaxCoverage = 10000.0
	MaxReads    = 1 << 24
)

// Paired-end insert size is drawn uniformly from [insertMin, insertMin+insertSpan).
const (
	insertMin  = 300
	insertSpan = 200
)

/* -------------------------------------------------------------------------- */
/*                               RunSequencing                                */
/* -------------------------------------------------------------------------- */

// RunSequencing samples reads over region until the target coverage is
// reached in expectation. Paired-end runs emit a second, reversed mate when it
// fits inside the genome; single-end reads are reversed with probability 1/2.
func (e *Engine) RunSequencing(r rng.Source, g genome.Accessor, p Profile, coverage float64, region Region) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if math.IsNaN(coverage) || coverage < 0 || coverage > MaxCoverage {
		return Result{}, simerr.Input("coverage %g outside [0,%g]", coverage, MaxCoverage)
	}
	total := g.TotalLength()
	if region.Length <= 0 {
		region = Region{Start: 0, Length: total}
	}
	if region.Start < 0 || region.Start >= total {
		return Result{}, simerr.Region(region.Start, region.Length, total)
	}
	if rest := total - region.Start; region.Length > rest {
		region.Length = rest
	}

	rl := p.ReadLength
	want := float64(region.Length) * coverage / float64(rl)
	if want > MaxReads {
		return Result{}, simerr.Input("run needs %.0f reads, limit is %d", want, MaxReads)
	}
	numReads := int(want)
	if p.PairedEnd {
		numReads /= 2
	}

	reads := make([]Read, 0, numReads)
	lastStart := region.Start + region.Length - rl
	for i := 0; i < numReads; i++ {
		pos := region.Start + int(r.Float64()*float64(region.Length-rl))
		if pos > lastStart {
			pos = lastStart
		}
		if pos < region.Start {
			pos = region.Start
		}

		if p.PairedEnd {
			insert := insertMin + r.IntN(insertSpan)
			id1 := fmt.Sprintf("READ_%08d/1", i)
			id2 := fmt.Sprintf("READ_%08d/2", i)
			reads = append(reads, generateRead(r, g, p, pos, id1, false, id2))
			if m := pos + insert - rl; m > 0 && m+rl <= total {
				reads = append(reads, generateRead(r, g, p, m, id2, true, id1))
			}
			continue
		}
		reversed := r.IntN(2) == 1
		reads = append(reads, generateRead(r, g, p, pos, fmt.Sprintf("READ_%08d", i), reversed, ""))
	}

	st := computeStats(reads, region.Length)
	var warns []simerr.Warning
	if len(reads) == 0 {
		warns = append(warns, simerr.Warn(simerr.LowCoverage, "No reads generated: region shorter than coverage requires"))
	}
	if st.CoverageDepth < lowCoverage {
		warns = append(warns, simerr.Warn(simerr.LowCoverage, "Low coverage: <10x may miss variants"))
	}
	if st.Q30Percentage < lowQ30 {
		warns = append(warns, simerr.Warn(simerr.LowQuality, "Low quality: <80% bases at Q30"))
	}
	if st.GCContent < gcLow || st.GCContent > gcHigh {
		warns = append(warns, simerr.Warn(simerr.UnusualGcContent, "Unusual GC content may indicate contamination or bias"))
	}

	return Result{
		Success:  len(reads) > 0,
		Reads:    reads,
		Stats:    st,
		Profile:  p,
		Region:   region,
		Warnings: warns,
	}, nil
}
