package workbench

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"genelab/internal/gel"
	"genelab/internal/simerr"
)

// Kind selects the operation a Job runs.
type Kind string

const (
	KindSites    Kind = "sites"
	KindEdit     Kind = "edit"
	KindPrimers  Kind = "primers"
	KindPCR      Kind = "pcr"
	KindSequence Kind = "sequence"
	KindGel      Kind = "gel"
	KindWorkflow Kind = "workflow"
)

// Kinds lists every job kind in pipeline order.
func Kinds() []Kind {
	return []Kind{KindSites, KindEdit, KindPrimers, KindPCR, KindSequence, KindGel, KindWorkflow}
}

// GenomeSource names the template DNA: an inline sequence or a FASTA record.
type GenomeSource struct {
	Sequence string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	FASTA    string `json:"fasta,omitempty" yaml:"fasta,omitempty"`
	Record   string `json:"record,omitempty" yaml:"record,omitempty"`
}

func (s GenomeSource) empty() bool { return s.Sequence == "" && s.FASTA == "" }

// Job is one unit of batch work. Exactly the params block matching Kind is
// read; the others are ignored. Seed, when set, overrides the batch-derived
// seed.
type Job struct {
	ID     string       `json:"id" yaml:"id"`
	Kind   Kind         `json:"kind" yaml:"kind"`
	Seed   *uint64      `json:"seed,omitempty" yaml:"seed,omitempty"`
	Genome GenomeSource `json:"genome" yaml:"genome"`

	Sites    *SitesParams    `json:"sites,omitempty" yaml:"sites,omitempty"`
	Edit     *EditParams     `json:"edit,omitempty" yaml:"edit,omitempty"`
	Primers  *PrimersParams  `json:"primers,omitempty" yaml:"primers,omitempty"`
	PCR      *PCRParams      `json:"pcr,omitempty" yaml:"pcr,omitempty"`
	Sequence *SequenceParams `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Gel      *GelParams      `json:"gel,omitempty" yaml:"gel,omitempty"`
	Workflow *WorkflowParams `json:"workflow,omitempty" yaml:"workflow,omitempty"`
}

// SitesParams: Length <= 0 scans to the end of the genome; PAM defaults to NGG.
type SitesParams struct {
	Start  int    `json:"start" yaml:"start"`
	Length int    `json:"length" yaml:"length"`
	PAM    string `json:"pam" yaml:"pam"`
}

// EditParams edits at the highest-scoring site found in the window.
type EditParams struct {
	SitesParams `yaml:",inline"`
	Template    string `json:"template,omitempty" yaml:"template,omitempty"`
}

// Numeric knobs held by pointer are optional: nil takes the Default*
// value (or the reaction preset), while an explicit zero is passed through
// to the engine as given.

type PrimersParams struct {
	TargetStart  int  `json:"targetStart" yaml:"targetStart"`
	TargetEnd    int  `json:"targetEnd" yaml:"targetEnd"`
	PrimerLength *int `json:"primerLength,omitempty" yaml:"primerLength,omitempty"`
}

// PCRParams: unset Cycles and AnnealingTemp take the preset's values.
type PCRParams struct {
	Forward       string   `json:"forward" yaml:"forward"`
	Reverse       string   `json:"reverse" yaml:"reverse"`
	HighFidelity  bool     `json:"highFidelity" yaml:"highFidelity"`
	Cycles        *int     `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	AnnealingTemp *float64 `json:"annealingTemp,omitempty" yaml:"annealingTemp,omitempty"`
}

type SequenceParams struct {
	Technology   string   `json:"technology" yaml:"technology"`
	Coverage     *float64 `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	Start        int      `json:"start" yaml:"start"`
	Length       int      `json:"length" yaml:"length"`
	CallVariants bool     `json:"callVariants" yaml:"callVariants"`
	MinDepth     *int     `json:"minDepth,omitempty" yaml:"minDepth,omitempty"`
	MinQuality   *float64 `json:"minQuality,omitempty" yaml:"minQuality,omitempty"`
}

// GelParams: the ladder, when named, is loaded into lane 0.
type GelParams struct {
	Ladder  string       `json:"ladder" yaml:"ladder"`
	Percent *float64     `json:"percent,omitempty" yaml:"percent,omitempty"`
	RunTime *float64     `json:"runTime,omitempty" yaml:"runTime,omitempty"`
	Voltage *float64     `json:"voltage,omitempty" yaml:"voltage,omitempty"`
	Samples []gel.Sample `json:"samples" yaml:"samples"`
}

// WorkflowParams drives the full edit → PCR → sequencing → gel chain.
type WorkflowParams struct {
	Start        int      `json:"start" yaml:"start"`
	Length       int      `json:"length" yaml:"length"`
	PAM          string   `json:"pam" yaml:"pam"`
	Template     string   `json:"template,omitempty" yaml:"template,omitempty"`
	PrimerLength *int     `json:"primerLength,omitempty" yaml:"primerLength,omitempty"`
	Flank        *int     `json:"flank,omitempty" yaml:"flank,omitempty"`
	HighFidelity bool     `json:"highFidelity" yaml:"highFidelity"`
	Technology   string   `json:"technology" yaml:"technology"`
	Coverage     *float64 `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	Ladder       string   `json:"ladder" yaml:"ladder"`
	Percent      *float64 `json:"percent,omitempty" yaml:"percent,omitempty"`
}

// Defaults shared by the params blocks.
const (
	DefaultPrimerLength = 20
	DefaultTechnology   = "ILLUMINA_PE150"
	DefaultCoverage     = 30
	DefaultMinDepth     = 10
	DefaultMinQuality   = 20
	DefaultLadder       = gel.Ladder1kb
	DefaultGelPercent   = 1.0
	DefaultRunTime      = 60
	DefaultVoltage      = 100
	DefaultFlank        = 150
)

// Validate checks that the job names a known kind, a genome when one is
// needed, and the params block for its kind.
func (j Job) Validate() error {
	missing := func() error { return simerr.Input("job %q: kind %s needs a %q block", j.ID, j.Kind, j.Kind) }
	switch j.Kind {
	case KindSites:
		if j.Sites == nil {
			return missing()
		}
	case KindEdit:
		if j.Edit == nil {
			return missing()
		}
	case KindPrimers:
		if j.Primers == nil {
			return missing()
		}
	case KindPCR:
		if j.PCR == nil {
			return missing()
		}
	case KindSequence:
		if j.Sequence == nil {
			return missing()
		}
	case KindGel:
		if j.Gel == nil {
			return missing()
		}
		return nil // gels need no genome
	case KindWorkflow:
		if j.Workflow == nil {
			return missing()
		}
	default:
		return simerr.Input("job %q: unknown kind %q", j.ID, j.Kind)
	}
	if j.Genome.empty() {
		return simerr.Input("job %q: no genome sequence or fasta given", j.ID)
	}
	return nil
}

// jobFile is the on-disk batch layout.
type jobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadJobs decodes a YAML batch file (a top-level "jobs" list), assigns
// "job-<n>" IDs to unnamed jobs and validates each one.
func LoadJobs(r io.Reader) ([]Job, error) {
	var f jobFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	var errs []error
	seen := make(map[string]bool, len(f.Jobs))
	for i := range f.Jobs {
		if f.Jobs[i].ID == "" {
			f.Jobs[i].ID = fmt.Sprintf("job-%d", i+1)
		}
		if seen[f.Jobs[i].ID] {
			errs = append(errs, simerr.Input("duplicate job id %q", f.Jobs[i].ID))
		}
		seen[f.Jobs[i].ID] = true
		if err := f.Jobs[i].Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return f.Jobs, nil
}
