package workbench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"genelab/internal/config"
	"genelab/internal/crispr"
	"genelab/internal/gel"
	"genelab/internal/genome"
	"genelab/internal/logging"
	"genelab/internal/metrics"
	"genelab/internal/pcr"
	"genelab/internal/rng"
	"genelab/internal/sequencing"
	"genelab/internal/simerr"
)

// ErrNoTargetSite is reported when an edit finds no PAM in its window.
var ErrNoTargetSite = errors.New("no PAM site in region")

// Workbench owns one instance of each engine. Engines are immutable, so a
// Workbench is safe for concurrent use.
type Workbench struct {
	CRISPR     *crispr.Engine
	PCR        *pcr.Engine
	Sequencing *sequencing.Engine
	Gel        *gel.Engine

	seed    uint64
	workers int
	rec     *metrics.Recorder

	mu      sync.Mutex
	genomes map[GenomeSource]*genome.Memory
}

// New builds the engines from cfg. rec may be nil.
func New(cfg config.Config, rec *metrics.Recorder) *Workbench {
	w := cfg.Workers
	if w < 1 {
		w = 1
	}
	return &Workbench{
		CRISPR:     crispr.New(cfg.CRISPR),
		PCR:        pcr.New(cfg.PCR),
		Sequencing: sequencing.New(cfg.Sequencing),
		Gel:        gel.New(cfg.Gel),
		seed:       cfg.Seed,
		workers:    w,
		rec:        rec,
		genomes:    make(map[GenomeSource]*genome.Memory),
	}
}

// SeedFor returns the seed job i of a batch runs with.
func (w *Workbench) SeedFor(j Job, i int) uint64 {
	if j.Seed != nil {
		return *j.Seed
	}
	return rng.Derive(w.seed, i)
}

// Run executes a single job on a PRNG seeded with seed. Errors (bad input,
// unreadable genome) are reported in Outcome.Err, never panicked.
func (w *Workbench) Run(ctx context.Context, j Job, seed uint64) Outcome {
	start := time.Now()
	out := Outcome{RunID: uuid.NewString(), JobID: j.ID, Kind: j.Kind, Seed: seed}
	log := logging.FromContext(ctx).WithValues("job", j.ID, "kind", j.Kind, "seed", seed, "run", out.RunID)
	log.V(logging.TRACE).Info("job started")

	if err := ctx.Err(); err != nil {
		out.Err = err
	} else if err := j.Validate(); err != nil {
		out.Err = err
	} else {
		out.Err = w.dispatch(logging.IntoContext(ctx, log), j, rng.New(seed), &out)
	}
	out.Duration = time.Since(start)

	w.observe(out)
	if out.Err != nil {
		log.Error(out.Err, "job error")
	} else {
		log.V(logging.DEBUG).Info("job finished", "status", out.Status(), "warnings", len(out.Warnings()), "duration", out.Duration)
	}
	return out
}

func (w *Workbench) observe(o Outcome) {
	w.rec.ObserveJob(string(o.Kind), o.Status(), o.Duration)
	w.rec.AddWarnings(o.Warnings())
	if o.Sequencing != nil {
		w.rec.AddReads(len(o.Sequencing.Reads))
	}
	if o.PCR != nil && o.PCR.Success && o.PCR.CopyEstimate > 0 {
		w.rec.ObserveCopies(math.Log10(o.PCR.CopyEstimate))
	}
}

func (w *Workbench) dispatch(ctx context.Context, j Job, r rng.Source, out *Outcome) error {
	if j.Kind == KindGel {
		return w.runGel(r, *j.Gel, nil, out)
	}
	g, err := w.Genome(j.Genome)
	if err != nil {
		return err
	}
	switch j.Kind {
	case KindSites:
		return w.runSites(r, g, *j.Sites, out)
	case KindEdit:
		return w.runEdit(r, g, *j.Edit, out)
	case KindPrimers:
		return w.runPrimers(g, *j.Primers, out)
	case KindPCR:
		return w.runPCR(r, g, *j.PCR, out)
	case KindSequence:
		return w.runSequence(r, g, *j.Sequence, out)
	case KindWorkflow:
		return w.runWorkflow(ctx, r, g, *j.Workflow, out)
	}
	return simerr.Input("unknown kind %q", j.Kind)
}

// Genome resolves src, caching FASTA loads for the Workbench's lifetime.
func (w *Workbench) Genome(src GenomeSource) (*genome.Memory, error) {
	if src.Sequence != "" {
		return genome.New(src.Record, src.Sequence)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if g, ok := w.genomes[src]; ok {
		return g, nil
	}
	g, err := genome.LoadFASTA(src.FASTA, src.Record)
	if err != nil {
		return nil, fmt.Errorf("load genome: %w", err)
	}
	w.genomes[src] = g
	return g, nil
}

/* -------------------------------------------------------------------------- */
/*                                 single ops                                 */
/* -------------------------------------------------------------------------- */

func window(g genome.Accessor, start, length int) (int, int) {
	if length <= 0 {
		length = g.TotalLength() - start
	}
	return start, length
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// valueOr dereferences an optional knob.
func valueOr[T int | float64](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func (w *Workbench) runSites(r rng.Source, g genome.Accessor, p SitesParams, out *Outcome) error {
	start, length := window(g, p.Start, p.Length)
	sites, err := w.CRISPR.FindPamSites(r, g, start, length, orDefault(p.PAM, crispr.SpCas9PAM))
	if err != nil {
		return err
	}
	out.Sites = sites
	return nil
}

// bestSite is the highest on-target score; ties go to the leftmost site.
func bestSite(sites []crispr.TargetSite) (crispr.TargetSite, bool) {
	if len(sites) == 0 {
		return crispr.TargetSite{}, false
	}
	best := sites[0]
	for _, s := range sites[1:] {
		if s.OnTargetScore > best.OnTargetScore {
			best = s
		}
	}
	return best, true
}

func (w *Workbench) runEdit(r rng.Source, g genome.Accessor, p EditParams, out *Outcome) error {
	if err := w.runSites(r, g, p.SitesParams, out); err != nil {
		return err
	}
	site, ok := bestSite(out.Sites)
	if !ok {
		return ErrNoTargetSite
	}
	res, err := w.CRISPR.PerformEditing(r, g, site, p.Template)
	if err != nil {
		return err
	}
	out.Site = &site
	out.Editing = &res
	return nil
}

func (w *Workbench) runPrimers(g genome.Accessor, p PrimersParams, out *Outcome) error {
	ps, err := w.PCR.DesignPrimers(g, p.TargetStart, p.TargetEnd, valueOr(p.PrimerLength, DefaultPrimerLength))
	if err != nil {
		return err
	}
	out.Primers = ps
	return nil
}

// Reaction resolves p against its preset.
func Reaction(p PCRParams) pcr.ReactionParameters {
	rp := pcr.StandardReaction()
	if p.HighFidelity {
		rp = pcr.HighFidelityReaction()
	}
	rp.Cycles = valueOr(p.Cycles, rp.Cycles)
	rp.AnnealingTemp = valueOr(p.AnnealingTemp, rp.AnnealingTemp)
	return rp
}

func (w *Workbench) runPCR(r rng.Source, g genome.Accessor, p PCRParams, out *Outcome) error {
	fwd, err := pcr.NewPrimer(p.Forward, true)
	if err != nil {
		return fmt.Errorf("forward primer: %w", err)
	}
	rev, err := pcr.NewPrimer(p.Reverse, false)
	if err != nil {
		return fmt.Errorf("reverse primer: %w", err)
	}
	out.Primers = []pcr.Primer{fwd, rev}
	res, err := w.PCR.RunPCR(r, g, fwd, rev, Reaction(p))
	if err != nil {
		return err
	}
	out.PCR = &res
	return nil
}

func (w *Workbench) runSequence(r rng.Source, g genome.Accessor, p SequenceParams, out *Outcome) error {
	prof, err := w.Sequencing.Profile(orDefault(p.Technology, DefaultTechnology))
	if err != nil {
		return err
	}
	res, err := w.Sequencing.RunSequencing(r, g, prof, valueOr(p.Coverage, DefaultCoverage),
		sequencing.Region{Start: p.Start, Length: p.Length})
	if err != nil {
		return err
	}
	out.Sequencing = &res
	if p.CallVariants {
		vs, err := sequencing.CallVariants(res.Reads, g,
			valueOr(p.MinDepth, DefaultMinDepth), valueOr(p.MinQuality, DefaultMinQuality))
		if err != nil {
			return err
		}
		out.Variants = vs
	}
	return nil
}

// runGel loads the ladder (if any) into lane 0, then extra and p.Samples.
func (w *Workbench) runGel(r rng.Source, p GelParams, extra []gel.Sample, out *Outcome) error {
	conc, err := w.Gel.Concentration(valueOr(p.Percent, DefaultGelPercent))
	if err != nil {
		return err
	}
	var samples []gel.Sample
	if p.Ladder != "" {
		sizes, err := w.Gel.Ladder(p.Ladder)
		if err != nil {
			return err
		}
		samples = append(samples, gel.LadderSample(p.Ladder, sizes))
	}
	samples = append(samples, extra...)
	samples = append(samples, p.Samples...)
	res, err := w.Gel.RunGel(r, samples, conc, valueOr(p.RunTime, DefaultRunTime), valueOr(p.Voltage, DefaultVoltage))
	if err != nil {
		return err
	}
	out.Gel = &res
	return nil
}
