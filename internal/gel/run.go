// internal/gel/run.go
package gel

import (
	"fmt"
	"math"
	"sort"

	"genelab/internal/dna"
	"genelab/internal/rng"
	"genelab/internal/simerr"
)

// Band is one visible band. EstimatedSize is the size of the fragment that
// produced it; ladder-based estimates come from EstimateSize.
type Band struct {
	Migration     float64 `json:"migration"` // fraction of gel length, 0 at the wells
	EstimatedSize int     `json:"estimatedSize"`
	Intensity     float64 `json:"intensity"`
	Sharp         bool    `json:"sharp"`
	Annotation    string  `json:"annotation,omitempty"`
}

// Quality summarises the run.
type Quality struct {
	Resolution    float64 `json:"resolution"`
	BandSharpness float64 `json:"bandSharpness"`
	Smearing      bool    `json:"smearing"`
	Overloading   bool    `json:"overloading"`
	Overall       float64 `json:"overall"`
}

// Result is the outcome of RunGel; Lanes[i] holds the bands of samples[i]
// ordered by migration.
type Result struct {
	Success         bool             `json:"success"`
	Lanes           [][]Band         `json:"lanes"`
	LaneNames       []string         `json:"laneNames"`
	GelLengthMM     int              `json:"gelLengthMM"`
	Concentration   Concentration    `json:"concentration"`
	RunTime         float64          `json:"runTime"`
	Voltage         float64          `json:"voltage"`
	Interpretations []string         `json:"interpretations"`
	Quality         Quality          `json:"quality"`
	Warnings        []simerr.Warning `json:"warnings"`
}

// overloadNgPerUL is the loading concentration above which bands smear.
const overloadNgPerUL = 500

/* -------------------------------------------------------------------------- */
/*                                   RunGel                                   */
/* -------------------------------------------------------------------------- */

// RunGel runs every sample in its own lane; lane 0 is treated as the ladder
// for annotations and interpretations. Per fragment it draws one uniform for
// migration noise and one for intensity noise.
func (e *Engine) RunGel(r rng.Source, samples []Sample, conc Concentration, runTime, voltage float64) (Result, error) {
	if conc.Percent <= 0 {
		return Result{}, simerr.Input("gel concentration %.2f%%", conc.Percent)
	}
	if runTime < 0 || voltage < 0 {
		return Result{}, simerr.Input("negative run time %.1f or voltage %.1f", runTime, voltage)
	}
	for _, s := range samples {
		for _, f := range s.Fragments {
			if f.Size <= 0 {
				return Result{}, simerr.Input("sample %q: fragment size %d", s.Name, f.Size)
			}
		}
	}

	res := Result{
		GelLengthMM:   e.cfg.GelLengthMM,
		Concentration: conc,
		RunTime:       runTime,
		Voltage:       voltage,
		Lanes:         make([][]Band, 0, len(samples)),
		LaneNames:     make([]string, 0, len(samples)),
	}
	if len(samples) == 0 {
		res.Warnings = []simerr.Warning{simerr.Warn(simerr.NoSamples, "No samples loaded")}
		return res, nil
	}

	maxMig := MaxMigration(conc, runTime, voltage)
	for lane, s := range samples {
		bands := make([]Band, 0, len(s.Fragments))
		for _, f := range s.Fragments {
			mig := Migration(f.Size, conc, maxMig)
			intensity := f.Abundance * (s.Concentration / 100) * (math.Log10(float64(f.Size)) / 4)
			sharp := conc.Optimal(f.Size) && s.Concentration < overloadNgPerUL

			mig += (r.Float64() - 0.5) * 0.02
			intensity *= 0.9 + r.Float64()*0.2

			if mig <= 0 || mig >= 1 {
				res.Warnings = append(res.Warnings, simerr.Warn(simerr.FragmentDropped,
					fmt.Sprintf("Lane %d (%s): %d bp fragment left the gel", lane+1, s.Name, f.Size)))
				continue
			}
			b := Band{Migration: mig, EstimatedSize: f.Size, Intensity: dna.Clamp01(intensity), Sharp: sharp}
			if lane == 0 {
				b.Annotation = fmt.Sprintf("%d bp", f.Size)
			}
			bands = append(bands, b)
		}
		sort.SliceStable(bands, func(i, j int) bool { return bands[i].Migration < bands[j].Migration })
		res.Lanes = append(res.Lanes, bands)
		res.LaneNames = append(res.LaneNames, s.Name)
	}

	res.Success = true
	res.Interpretations = interpret(samples, res.Lanes, conc)
	res.Quality = assess(samples, res.Lanes)
	return res, nil
}

// MaxMigration is the furthest a band can travel for the run settings.
func MaxMigration(conc Concentration, runTime, voltage float64) float64 {
	base := 0.5 + runTime/60*0.3 + voltage/150*0.2
	return math.Min(0.95, base/conc.Percent)
}

// Migration is the noise-free distance travelled by a fragment of size bp.
func Migration(size int, conc Concentration, maxMig float64) float64 {
	sizeFactor := 1 / math.Log10(math.Max(10, float64(size)))
	return math.Min(maxMig, sizeFactor*(1/conc.Percent)*0.5)
}
