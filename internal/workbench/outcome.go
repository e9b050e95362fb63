package workbench

import (
	"time"

	"genelab/internal/crispr"
	"genelab/internal/gel"
	"genelab/internal/metrics"
	"genelab/internal/pcr"
	"genelab/internal/sequencing"
	"genelab/internal/simerr"
)

// Workflow stages, in execution order.
const (
	StageSites      = "sites"
	StageEdit       = "edit"
	StagePrimers    = "primers"
	StagePCR        = "pcr"
	StageSequencing = "sequencing"
	StageGel        = "gel"
	StageDone       = "done"
)

// Outcome carries everything one job produced. Only the fields relevant to
// the job's kind are set; a workflow sets every stage it reached.
type Outcome struct {
	RunID    string
	JobID    string
	Kind     Kind
	Seed     uint64
	Duration time.Duration
	Err      error

	// Stage is where a workflow stopped (StageDone when it ran through).
	Stage string

	Sites        []crispr.TargetSite
	Site         *crispr.TargetSite
	Editing      *crispr.EditingResult
	EditedLength int
	Primers      []pcr.Primer
	PCR          *pcr.Result
	Sequencing   *sequencing.Result
	Variants     []sequencing.Variant
	Gel          *gel.Result
}

// Status reports metrics.StatusError when the job could not run,
// metrics.StatusFailed when a simulated step did not succeed, and
// metrics.StatusOK otherwise.
func (o Outcome) Status() string {
	switch {
	case o.Err != nil:
		return metrics.StatusError
	case o.Kind == KindWorkflow && o.Stage != StageDone:
		return metrics.StatusFailed
	case o.Kind == KindSites && len(o.Sites) == 0,
		o.Kind == KindPrimers && len(o.Primers) == 0,
		o.PCR != nil && !o.PCR.Success,
		o.Sequencing != nil && !o.Sequencing.Success,
		o.Gel != nil && !o.Gel.Success:
		return metrics.StatusFailed
	}
	return metrics.StatusOK
}

// Warnings collects the warnings of every result the job produced.
func (o Outcome) Warnings() []simerr.Warning {
	var ws []simerr.Warning
	if o.PCR != nil {
		ws = append(ws, o.PCR.Warnings...)
	}
	if o.Sequencing != nil {
		ws = append(ws, o.Sequencing.Warnings...)
	}
	if o.Gel != nil {
		ws = append(ws, o.Gel.Warnings...)
	}
	return ws
}
