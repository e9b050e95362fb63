package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"genelab/internal/crispr"
	"genelab/internal/gel"
	"genelab/internal/workbench"
)

func genomeFlags(fs *pflag.FlagSet, src *workbench.GenomeSource) {
	fs.StringVar(&src.Sequence, "sequence", "", "template DNA given inline")
	fs.StringVar(&src.FASTA, "fasta", "", "template DNA from a FASTA file")
	fs.StringVar(&src.Record, "record", "", "FASTA record ID (default: first record)")
}

func windowFlags(fs *pflag.FlagSet, start, length *int, pam *string) {
	fs.IntVar(start, "start", 0, "0-based window start")
	fs.IntVar(length, "length", 0, "window length (0 = to the end)")
	fs.StringVar(pam, "pam", crispr.SpCas9PAM, "PAM pattern (IUPAC)")
}

// single runs *j, as filled in by the flags, as a one-job batch.
func single(e *env, j *workbench.Job) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		job := *j
		if job.ID == "" {
			job.ID = string(job.Kind)
		}
		return e.runJobs(cmd.Context(), []workbench.Job{job})
	}
}

func sitesCmd(e *env) *cobra.Command {
	j := workbench.Job{Kind: workbench.KindSites, Sites: &workbench.SitesParams{}}
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Scan a window for CRISPR target sites",
		Args:  cobra.NoArgs,
	}
	genomeFlags(cmd.Flags(), &j.Genome)
	windowFlags(cmd.Flags(), &j.Sites.Start, &j.Sites.Length, &j.Sites.PAM)
	cmd.RunE = single(e, &j)
	return cmd
}

func editCmd(e *env) *cobra.Command {
	p := &workbench.EditParams{}
	j := workbench.Job{Kind: workbench.KindEdit, Edit: p}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Cut at the best target site and simulate DNA repair",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	genomeFlags(fs, &j.Genome)
	windowFlags(fs, &p.Start, &p.Length, &p.PAM)
	fs.StringVar(&p.Template, "template", "", "HDR donor template")
	cmd.RunE = single(e, &j)
	return cmd
}

func primersCmd(e *env) *cobra.Command {
	p := &workbench.PrimersParams{PrimerLength: new(int)}
	j := workbench.Job{Kind: workbench.KindPrimers, Primers: p}
	cmd := &cobra.Command{
		Use:   "primers",
		Short: "Design a primer pair around a target region",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	genomeFlags(fs, &j.Genome)
	fs.IntVar(&p.TargetStart, "target-start", 0, "0-based target start")
	fs.IntVar(&p.TargetEnd, "target-end", 0, "target end (exclusive)")
	fs.IntVar(p.PrimerLength, "primer-length", workbench.DefaultPrimerLength, "primer length")
	cmd.RunE = single(e, &j)
	return cmd
}

func pcrCmd(e *env) *cobra.Command {
	p := &workbench.PCRParams{}
	j := workbench.Job{Kind: workbench.KindPCR, PCR: p}
	cmd := &cobra.Command{
		Use:   "pcr",
		Short: "Simulate a PCR reaction",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	genomeFlags(fs, &j.Genome)
	fs.StringVar(&p.Forward, "forward", "", "forward primer (5'->3')")
	fs.StringVar(&p.Reverse, "reverse", "", "reverse primer (5'->3')")
	fs.BoolVar(&p.HighFidelity, "high-fidelity", false, "use the high-fidelity polymerase preset")
	var cycles int
	var anneal float64
	fs.IntVar(&cycles, "cycles", 0, "thermal cycles (default from the preset)")
	fs.Float64Var(&anneal, "annealing-temp", 0, "annealing temperature in °C (default from the preset)")
	_ = cmd.MarkFlagRequired("forward")
	_ = cmd.MarkFlagRequired("reverse")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		p.Cycles, p.AnnealingTemp = nil, nil
		if fs.Changed("cycles") {
			p.Cycles = &cycles
		}
		if fs.Changed("annealing-temp") {
			p.AnnealingTemp = &anneal
		}
		return single(e, &j)(c, args)
	}
	return cmd
}

func sequenceCmd(e *env) *cobra.Command {
	p := &workbench.SequenceParams{Coverage: new(float64), MinDepth: new(int), MinQuality: new(float64)}
	j := workbench.Job{Kind: workbench.KindSequence, Sequence: p}
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Simulate a sequencing run and optionally call variants",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	genomeFlags(fs, &j.Genome)
	fs.StringVarP(&p.Technology, "technology", "t", workbench.DefaultTechnology, "sequencing technology")
	fs.Float64Var(p.Coverage, "coverage", workbench.DefaultCoverage, "target mean coverage")
	fs.IntVar(&p.Start, "start", 0, "0-based region start")
	fs.IntVar(&p.Length, "length", 0, "region length (0 = to the end)")
	fs.BoolVar(&p.CallVariants, "call-variants", false, "call variants against the reference")
	fs.IntVar(p.MinDepth, "min-depth", workbench.DefaultMinDepth, "minimum depth for a variant call")
	fs.Float64Var(p.MinQuality, "min-quality", workbench.DefaultMinQuality, "minimum mean base quality for a variant call")
	cmd.RunE = single(e, &j)
	return cmd
}

func gelCmd(e *env) *cobra.Command {
	p := &workbench.GelParams{Percent: new(float64), RunTime: new(float64), Voltage: new(float64)}
	j := workbench.Job{Kind: workbench.KindGel, Gel: p}
	var samples []string
	cmd := &cobra.Command{
		Use:   "gel",
		Short: "Run samples on an agarose gel",
		Example: `  genelab gel --sample amplicon:520@40 --sample digest:300,220
  genelab gel --ladder 100bp --percent 2 --sample pcr:180`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			p.Samples = p.Samples[:0]
			for _, s := range samples {
				smp, err := parseSample(s)
				if err != nil {
					return err
				}
				p.Samples = append(p.Samples, smp)
			}
			return single(e, &j)(c, args)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&p.Ladder, "ladder", workbench.DefaultLadder, "ladder for lane 0 (empty for none)")
	fs.Float64Var(p.Percent, "percent", workbench.DefaultGelPercent, "agarose percentage")
	fs.Float64Var(p.RunTime, "run-time", workbench.DefaultRunTime, "run time in minutes")
	fs.Float64Var(p.Voltage, "voltage", workbench.DefaultVoltage, "voltage")
	fs.StringArrayVar(&samples, "sample", nil, "lane as name:size[,size...][@ng/µL] (repeatable)")
	return cmd
}

// parseSample reads name:size[,size...][@conc]. Fragments share the lane
// equally; concentration defaults to 50 ng/µL.
func parseSample(s string) (gel.Sample, error) {
	name, rest, ok := strings.Cut(s, ":")
	if !ok || name == "" || rest == "" {
		return gel.Sample{}, fmt.Errorf("sample %q: want name:size[,size...][@conc]", s)
	}
	conc := 50.0
	if sizes, c, ok := strings.Cut(rest, "@"); ok {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil || v <= 0 {
			return gel.Sample{}, fmt.Errorf("sample %q: bad concentration %q", s, c)
		}
		rest, conc = sizes, v
	}
	parts := strings.Split(rest, ",")
	smp := gel.Sample{Name: name, Concentration: conc}
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return gel.Sample{}, fmt.Errorf("sample %q: bad fragment size %q", s, p)
		}
		smp.Fragments = append(smp.Fragments, gel.Fragment{Size: n, Abundance: 1 / float64(len(parts))})
	}
	return smp, nil
}

func workflowCmd(e *env) *cobra.Command {
	p := &workbench.WorkflowParams{PrimerLength: new(int), Flank: new(int), Coverage: new(float64), Percent: new(float64)}
	j := workbench.Job{Kind: workbench.KindWorkflow, Workflow: p}
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Edit, amplify, sequence and gel-check a locus end to end",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	genomeFlags(fs, &j.Genome)
	windowFlags(fs, &p.Start, &p.Length, &p.PAM)
	fs.StringVar(&p.Template, "template", "", "HDR donor template")
	fs.IntVar(p.PrimerLength, "primer-length", workbench.DefaultPrimerLength, "primer length")
	fs.IntVar(p.Flank, "flank", workbench.DefaultFlank, "bases around the cut site to amplify")
	fs.BoolVar(&p.HighFidelity, "high-fidelity", false, "use the high-fidelity polymerase preset")
	fs.StringVarP(&p.Technology, "technology", "t", workbench.DefaultTechnology, "sequencing technology")
	fs.Float64Var(p.Coverage, "coverage", workbench.DefaultCoverage, "target mean coverage")
	fs.StringVar(&p.Ladder, "ladder", workbench.DefaultLadder, "gel ladder")
	fs.Float64Var(p.Percent, "percent", workbench.DefaultGelPercent, "agarose percentage")
	cmd.RunE = single(e, &j)
	return cmd
}
