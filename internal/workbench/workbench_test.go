package workbench

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"genelab/internal/config"
	"genelab/internal/gel"
	"genelab/internal/metrics"
	"genelab/internal/pcr"
	"genelab/internal/simerr"
)

const (
	upUnit   = "GACTGCATCGATGCCTCGAA"
	downUnit = "TTGCACGGTACCAGTCGTGA"
	pamOnly  = "ACGTACGTACGTACGTACGTAGG"
)

// locusGenome has primer-friendly repeats on both sides of an A-rich
// middle holding a single AGG PAM at 153, so the cut falls at 150.
func locusGenome() string {
	mid := strings.Repeat("A", 33) + "AGG" + strings.Repeat("A", 24)
	return strings.Repeat(upUnit, 6) + mid + strings.Repeat(downUnit, 6)
}

func seed(v uint64) *uint64 { return &v }

func ptr[T any](v T) *T { return &v }

func workflowJob(id string, s uint64) Job {
	return Job{
		ID:     id,
		Kind:   KindWorkflow,
		Seed:   seed(s),
		Genome: GenomeSource{Sequence: locusGenome()},
		Workflow: &WorkflowParams{
			Start:        130,
			Length:       30,
			PrimerLength: ptr(40),
		},
	}
}

func sumCounter(rec *metrics.Recorder, name string) float64 {
	mfs, err := rec.Registry().Gather()
	Expect(err).NotTo(HaveOccurred())
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

var ignoreRunFields = cmp.Options{
	cmpopts.IgnoreFields(Outcome{}, "RunID", "Duration"),
	cmp.Comparer(func(a, b error) bool { return fmt.Sprint(a) == fmt.Sprint(b) }),
}

var _ = Describe("LoadJobs", func() {
	It("decodes every kind and names unnamed jobs", func() {
		jobs, err := LoadJobs(strings.NewReader(`
jobs:
  - id: scan
    kind: sites
    seed: 7
    genome: {sequence: ` + pamOnly + `}
    sites: {pam: NGG}
  - kind: edit
    genome: {sequence: ` + pamOnly + `}
    edit: {start: 0, pam: NGG, template: ACGT}
  - kind: gel
    gel:
      ladder: 1kb
      samples:
        - name: product
          concentration: 50
          fragments: [{size: 1000, abundance: 1}]
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(jobs).To(HaveLen(3))

		Expect(jobs[0].ID).To(Equal("scan"))
		Expect(*jobs[0].Seed).To(Equal(uint64(7)))
		Expect(jobs[0].Sites.PAM).To(Equal("NGG"))

		Expect(jobs[1].ID).To(Equal("job-2"))
		Expect(jobs[1].Edit.PAM).To(Equal("NGG"))
		Expect(jobs[1].Edit.Template).To(Equal("ACGT"))

		Expect(jobs[2].Gel.Samples).To(Equal([]gel.Sample{{
			Name:          "product",
			Concentration: 50,
			Fragments:     []gel.Fragment{{Size: 1000, Abundance: 1}},
		}}))
	})

	It("rejects unknown kinds, missing blocks, missing genomes and duplicate ids", func() {
		_, err := LoadJobs(strings.NewReader(`
jobs:
  - {id: a, kind: blot}
  - {id: b, kind: pcr, genome: {sequence: ACGT}}
  - {id: c, kind: sites, sites: {}}
  - {id: c, kind: gel, gel: {}}
`))
		Expect(err).To(MatchError(simerr.ErrInvalidInput))
		Expect(err.Error()).To(ContainSubstring(`unknown kind "blot"`))
		Expect(err.Error()).To(ContainSubstring(`needs a "pcr" block`))
		Expect(err.Error()).To(ContainSubstring("no genome"))
		Expect(err.Error()).To(ContainSubstring(`duplicate job id "c"`))
	})

	It("rejects unknown fields", func() {
		_, err := LoadJobs(strings.NewReader("jobs:\n  - {id: a, kind: gel, gel: {}, colour: blue}\n"))
		Expect(err).To(HaveOccurred())
	})

	It("accepts an empty file", func() {
		jobs, err := LoadJobs(strings.NewReader(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(jobs).To(BeEmpty())
	})
})

var _ = Describe("Workbench.Run", func() {
	var (
		wb  *Workbench
		rec *metrics.Recorder
	)

	BeforeEach(func() {
		rec = metrics.New()
		wb = New(config.Default(), rec)
	})

	It("finds the trailing AGG site", func() {
		out := wb.Run(testCtx, Job{
			ID: "scan", Kind: KindSites,
			Genome: GenomeSource{Sequence: pamOnly},
			Sites:  &SitesParams{},
		}, 1)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.RunID).NotTo(BeEmpty())
		Expect(out.Sites).To(HaveLen(1))
		Expect(out.Sites[0].Position).To(Equal(20))
		Expect(out.Sites[0].PamSequence).To(Equal("AGG"))
		Expect(out.Status()).To(Equal(metrics.StatusOK))
	})

	It("edits at the best site", func() {
		out := wb.Run(testCtx, Job{
			ID: "edit", Kind: KindEdit,
			Genome: GenomeSource{Sequence: pamOnly},
			Edit:   &EditParams{},
		}, 3)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Site).NotTo(BeNil())
		Expect(out.Editing).NotTo(BeNil())
		Expect(out.Editing.Byproducts).To(HaveLen(config.Default().CRISPR.Byproducts))
		Expect(out.Editing.Efficiency).To(Equal(out.Site.OnTargetScore))
	})

	It("reports a window without PAM sites", func() {
		out := wb.Run(testCtx, Job{
			ID: "edit", Kind: KindEdit,
			Genome: GenomeSource{Sequence: strings.Repeat("ACT", 20)},
			Edit:   &EditParams{},
		}, 3)
		Expect(out.Err).To(MatchError(ErrNoTargetSite))
		Expect(out.Status()).To(Equal(metrics.StatusError))
	})

	It("surfaces engine errors on the outcome", func() {
		out := wb.Run(testCtx, Job{
			ID: "bad", Kind: KindSites,
			Genome: GenomeSource{Sequence: "ACGTX"},
			Sites:  &SitesParams{},
		}, 1)
		Expect(out.Err).To(MatchError(simerr.ErrInvalidSequence))

		out = wb.Run(testCtx, Job{
			ID: "pam", Kind: KindSites,
			Genome: GenomeSource{Sequence: pamOnly},
			Sites:  &SitesParams{PAM: "NG"},
		}, 1)
		Expect(out.Err).To(MatchError(simerr.ErrUnsupportedPamPattern))
	})

	It("runs a PCR with preset parameters", func() {
		out := wb.Run(testCtx, Job{
			ID: "pcr", Kind: KindPCR,
			Genome: GenomeSource{Sequence: locusGenome()},
			PCR: &PCRParams{
				Forward:      strings.Repeat(upUnit, 2),
				Reverse:      "TCACGACTGGTACCGTGCAATCACGACTGGTACCGTGCAA",
				HighFidelity: true,
			},
		}, 11)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Primers).To(HaveLen(2))
		Expect(out.PCR.Success).To(BeTrue())
		Expect(out.PCR.ForwardSite).To(Equal(0))
		Expect(out.PCR.Length).To(BeNumerically(">", 180))
	})

	It("treats a missing binding site as a failed, not errored, job", func() {
		out := wb.Run(testCtx, Job{
			ID: "pcr", Kind: KindPCR,
			Genome: GenomeSource{Sequence: strings.Repeat("A", 200)},
			PCR:    &PCRParams{Forward: strings.Repeat(upUnit, 2), Reverse: strings.Repeat(downUnit, 2)},
		}, 11)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Status()).To(Equal(metrics.StatusFailed))
		Expect(simerr.Has(out.Warnings(), simerr.PrimerBindingNotFound)).To(BeTrue())
	})

	It("sequences and calls variants", func() {
		out := wb.Run(testCtx, Job{
			ID: "seq", Kind: KindSequence,
			Genome:   GenomeSource{Sequence: locusGenome()},
			Sequence: &SequenceParams{Technology: "illumina_se50", Coverage: ptr(40.0), CallVariants: true},
		}, 5)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Sequencing.Success).To(BeTrue())
		Expect(out.Sequencing.Profile.Name).To(Equal("ILLUMINA_SE50"))
		Expect(out.Sequencing.Reads).NotTo(BeEmpty())
		for _, v := range out.Variants {
			Expect(v.AlleleFrequency).To(BeNumerically(">=", 0.1))
		}
		Expect(sumCounter(rec, "genelab_sequencing_reads_total")).To(BeNumerically("==", len(out.Sequencing.Reads)))
	})

	It("honours an explicit zero coverage instead of the default", func() {
		jobs, err := LoadJobs(strings.NewReader("jobs:\n  - {id: z, kind: sequence, genome: {sequence: " + pamOnly + "}, sequence: {coverage: 0}}\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(jobs[0].Sequence.Coverage).To(Equal(ptr(0.0)))

		out := wb.Run(testCtx, jobs[0], 5)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Sequencing.Reads).To(BeEmpty())
		Expect(simerr.Has(out.Warnings(), simerr.LowCoverage)).To(BeTrue())
		Expect(out.Status()).To(Equal(metrics.StatusFailed))
	})

	It("rejects non-finite coverage from a job file", func() {
		jobs, err := LoadJobs(strings.NewReader("jobs:\n  - {id: n, kind: sequence, genome: {sequence: " + pamOnly + "}, sequence: {coverage: .nan}}\n"))
		Expect(err).NotTo(HaveOccurred())
		out := wb.Run(testCtx, jobs[0], 5)
		Expect(out.Err).To(MatchError(simerr.ErrInvalidInput))
		Expect(out.Status()).To(Equal(metrics.StatusError))
	})

	It("takes presets for unset reaction knobs and keeps explicit zeros", func() {
		Expect(Reaction(PCRParams{})).To(Equal(pcr.StandardReaction()))
		rp := Reaction(PCRParams{HighFidelity: true, Cycles: ptr(0), AnnealingTemp: ptr(0.0)})
		Expect(rp.Cycles).To(BeZero())
		Expect(rp.AnnealingTemp).To(BeZero())
		Expect(rp.HighFidelity).To(BeTrue())
	})

	It("honours an explicit zero gel run time", func() {
		out := wb.Run(testCtx, Job{
			ID: "gel", Kind: KindGel,
			Gel: &GelParams{
				RunTime: ptr(0.0),
				Samples: []gel.Sample{gel.SingleSample("product", 1000, 50)},
			},
		}, 2)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Gel.RunTime).To(BeZero())
		Expect(out.Gel.Voltage).To(Equal(float64(DefaultVoltage)))
	})

	It("rejects an unknown sequencing technology", func() {
		out := wb.Run(testCtx, Job{
			ID: "seq", Kind: KindSequence,
			Genome:   GenomeSource{Sequence: locusGenome()},
			Sequence: &SequenceParams{Technology: "SOLEXA"},
		}, 5)
		Expect(out.Err).To(MatchError(simerr.ErrInvalidInput))
	})

	It("loads the ladder into lane 0", func() {
		out := wb.Run(testCtx, Job{
			ID: "gel", Kind: KindGel,
			Gel: &GelParams{
				Ladder:  gel.Ladder1kb,
				Samples: []gel.Sample{gel.SingleSample("product", 1000, 50)},
			},
		}, 2)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Gel.Success).To(BeTrue())
		Expect(out.Gel.LaneNames).To(Equal([]string{gel.Ladder1kb, "product"}))
		Expect(out.Gel.Lanes[0]).To(HaveLen(len(gel.DefaultLadders()[gel.Ladder1kb])))
		Expect(out.Gel.Concentration.Percent).To(Equal(DefaultGelPercent))
	})

	It("reports unreadable FASTA files", func() {
		out := wb.Run(testCtx, Job{
			ID: "fa", Kind: KindSites,
			Genome: GenomeSource{FASTA: "/nonexistent/genome.fa"},
			Sites:  &SitesParams{},
		}, 1)
		Expect(out.Err).To(HaveOccurred())
		Expect(out.Err.Error()).To(ContainSubstring("load genome"))
	})

	It("does not start work on a cancelled context", func() {
		ctx, cancel := context.WithCancel(testCtx)
		cancel()
		out := wb.Run(ctx, Job{ID: "x", Kind: KindSites, Genome: GenomeSource{Sequence: pamOnly}, Sites: &SitesParams{}}, 1)
		Expect(out.Err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Workflow", func() {
	var wb *Workbench

	BeforeEach(func() {
		wb = New(config.Default(), nil)
	})

	It("runs edit, PCR, sequencing and gel end to end", func() {
		for s := uint64(1); s <= 5; s++ {
			out := wb.Run(testCtx, workflowJob("wf", s), s)
			Expect(out.Err).NotTo(HaveOccurred(), "seed %d", s)
			Expect(out.Stage).To(Equal(StageDone), "seed %d", s)
			Expect(out.Status()).To(Equal(metrics.StatusOK))

			Expect(out.Site.Position).To(Equal(153))
			Expect(out.Editing).NotTo(BeNil())
			Expect(out.EditedLength).To(BeNumerically(">", 0))
			Expect(out.Primers).To(HaveLen(2))

			Expect(out.PCR.Success).To(BeTrue())
			Expect(out.Sequencing.Success).To(BeTrue())
			for _, r := range out.Sequencing.Reads {
				Expect(r.Position).To(BeNumerically("<", out.PCR.Length))
			}

			Expect(out.Gel.LaneNames).To(Equal([]string{DefaultLadder, "amplicon"}))
			Expect(out.Gel.Lanes[1]).To(HaveLen(1))
			Expect(out.Gel.Lanes[1][0].EstimatedSize).To(Equal(out.PCR.Length))
		}
	})

	It("stops after the site search when the window has no PAM", func() {
		job := workflowJob("wf", 1)
		job.Workflow.Start, job.Workflow.Length = 0, 100
		out := wb.Run(testCtx, job, 1)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Stage).To(Equal(StageSites))
		Expect(out.Status()).To(Equal(metrics.StatusFailed))
		Expect(out.Editing).To(BeNil())
	})

	It("stops at primer design when no primer passes", func() {
		job := workflowJob("wf", 1)
		job.Workflow.PrimerLength = ptr(20)
		out := wb.Run(testCtx, job, 1)
		Expect(out.Err).NotTo(HaveOccurred())
		Expect(out.Stage).To(Equal(StagePrimers))
		Expect(out.Primers).To(BeEmpty())
		Expect(out.PCR).To(BeNil())
	})
})

var _ = Describe("RunBatch", func() {
	jobs := func() []Job {
		return []Job{
			{ID: "a", Kind: KindSites, Genome: GenomeSource{Sequence: pamOnly}, Sites: &SitesParams{}},
			workflowJob("b", 9),
			{ID: "c", Kind: KindEdit, Genome: GenomeSource{Sequence: pamOnly}, Edit: &EditParams{}},
			{ID: "d", Kind: KindSequence, Genome: GenomeSource{Sequence: locusGenome()}, Sequence: &SequenceParams{}},
			{ID: "e", Kind: KindGel, Gel: &GelParams{Ladder: gel.Ladder100bp}},
			{ID: "f", Kind: KindSites, Genome: GenomeSource{Sequence: "NOPE"}, Sites: &SitesParams{}},
		}
	}

	collect := func(workers int, rec *metrics.Recorder) []Outcome {
		cfg := config.Default()
		cfg.Workers = workers
		wb := New(cfg, rec)
		var got []Outcome
		Expect(wb.RunBatch(testCtx, jobs(), func(o Outcome) error {
			got = append(got, o)
			return nil
		})).To(Succeed())
		return got
	}

	It("visits outcomes in job order", func() {
		got := collect(3, nil)
		ids := make([]string, len(got))
		for i, o := range got {
			ids[i] = o.JobID
		}
		Expect(ids).To(Equal([]string{"a", "b", "c", "d", "e", "f"}))
		Expect(got[5].Err).To(HaveOccurred())
	})

	It("is reproducible regardless of worker count", func() {
		one := collect(1, nil)
		four := collect(4, nil)
		Expect(cmp.Diff(one, four, ignoreRunFields)).To(BeEmpty())
	})

	It("derives per-job seeds from the base seed", func() {
		got := collect(2, nil)
		wb := New(config.Default(), nil)
		Expect(got[0].Seed).To(Equal(wb.SeedFor(jobs()[0], 0)))
		Expect(got[1].Seed).To(Equal(uint64(9)))
		Expect(got[0].Seed).NotTo(Equal(got[2].Seed))
	})

	It("counts every job in the metrics", func() {
		rec := metrics.New()
		collect(2, rec)
		Expect(sumCounter(rec, "genelab_jobs_total")).To(BeNumerically("==", 6))
	})

	It("stops on a visit error", func() {
		wb := New(config.Default(), nil)
		stop := errors.New("stop")
		n := 0
		err := wb.RunBatch(testCtx, jobs(), func(Outcome) error {
			n++
			if n == 2 {
				return stop
			}
			return nil
		})
		Expect(err).To(MatchError(stop))
		Expect(n).To(Equal(2))
	})

	It("returns the context error when cancelled", func() {
		wb := New(config.Default(), nil)
		ctx, cancel := context.WithCancel(testCtx)
		cancel()
		err := wb.RunBatch(ctx, jobs(), func(Outcome) error { return nil })
		Expect(err).To(MatchError(context.Canceled))
	})
})
