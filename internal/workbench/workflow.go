package workbench

import (
	"context"
	"fmt"

	"genelab/internal/crispr"
	"genelab/internal/gel"
	"genelab/internal/genome"
	"genelab/internal/logging"
	"genelab/internal/rng"
)

// ampliconLoad is the gel loading concentration of the PCR product, ng/µL.
const ampliconLoad = 50

// runWorkflow chains the engines the way a bench scientist would: pick the
// best guide in the window, edit, amplify the edited locus, sequence the
// amplicon and check its size on a gel. A stage that produces nothing usable
// stops the chain; out.Stage records where.
func (w *Workbench) runWorkflow(ctx context.Context, r rng.Source, g genome.Accessor, p WorkflowParams, out *Outcome) error {
	log := logging.FromContext(ctx)
	stage := func(s string, kv ...any) {
		out.Stage = s
		log.V(logging.TRACE).Info("workflow stage", append([]any{"stage", s}, kv...)...)
	}

	stage(StageSites)
	edit := EditParams{SitesParams: SitesParams{Start: p.Start, Length: p.Length, PAM: p.PAM}, Template: p.Template}
	if err := w.runSites(r, g, edit.SitesParams, out); err != nil {
		return err
	}
	site, ok := bestSite(out.Sites)
	if !ok {
		return nil
	}

	stage(StageEdit, "position", site.Position, "score", site.OnTargetScore)
	res, err := w.CRISPR.PerformEditing(r, g, site, p.Template)
	if err != nil {
		return err
	}
	out.Site = &site
	out.Editing = &res
	edited, err := applyOutcome(g, res.Primary)
	if err != nil {
		return err
	}
	out.EditedLength = edited.TotalLength()

	cut := max(0, site.Position-crispr.CutOffset)
	flank := valueOr(p.Flank, DefaultFlank)
	stage(StagePrimers, "pathway", res.RepairPathway, "outcome", res.Primary.Summary())
	primers, err := w.PCR.DesignPrimers(edited,
		max(0, cut-flank/2), min(edited.TotalLength(), cut+flank/2),
		valueOr(p.PrimerLength, DefaultPrimerLength))
	if err != nil {
		return err
	}
	out.Primers = primers
	if len(primers) < 2 {
		return nil
	}

	stage(StagePCR, "forward", primers[0].Sequence, "reverse", primers[1].Sequence)
	amp, err := w.PCR.RunPCR(r, edited, primers[0], primers[1], Reaction(PCRParams{HighFidelity: p.HighFidelity}))
	if err != nil {
		return err
	}
	out.PCR = &amp
	if !amp.Success {
		return nil
	}

	stage(StageSequencing, "amplicon", amp.Length)
	product, err := genome.New("amplicon", amp.Amplicon)
	if err != nil {
		return fmt.Errorf("amplicon: %w", err)
	}
	if err := w.runSequence(r, product, SequenceParams{
		Technology: p.Technology,
		Coverage:   p.Coverage,
	}, out); err != nil {
		return err
	}

	stage(StageGel)
	if err := w.runGel(r, GelParams{
		Ladder:  orDefault(p.Ladder, DefaultLadder),
		Percent: p.Percent,
	}, []gel.Sample{gel.SingleSample("amplicon", amp.Length, ampliconLoad)}, out); err != nil {
		return err
	}
	out.Stage = StageDone
	return nil
}

// applyOutcome returns g with o applied; NoChange returns g's bases as is.
// A deletion drawn past the end of the genome is truncated there.
func applyOutcome(g genome.Accessor, o crispr.EditOutcome) (*genome.Memory, error) {
	e, ok := o.Edit()
	if !ok {
		return genome.Apply(g)
	}
	if over := e.Position + e.Delete - g.TotalLength(); over > 0 {
		e.Delete -= over
	}
	return genome.Apply(g, e)
}
