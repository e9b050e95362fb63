package writers

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"genelab/internal/gel"
	"genelab/internal/sequencing"
	"genelab/internal/workbench"
)

func init() {
	Register("text", writeText)
	Register("fastq", writeFASTQ)
}

// writeText streams a human-readable block per outcome.
func writeText(out io.Writer, in <-chan workbench.Outcome, opt Options) error {
	return buffered(out, func(w io.Writer) error {
		first := true
		for o := range in {
			if !first {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			first = false
			if _, err := io.WriteString(w, RenderText(o, opt)); err != nil {
				return err
			}
		}
		return nil
	})
}

// RenderText renders one outcome as plain text.
func RenderText(o workbench.Outcome, opt Options) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s  kind=%s  seed=%d  status=%s", o.JobID, o.Kind, o.Seed, o.Status())
	if o.Stage != "" {
		fmt.Fprintf(&sb, "  stage=%s", o.Stage)
	}
	sb.WriteString("\n")
	if o.Err != nil {
		fmt.Fprintf(&sb, "error: %v\n", o.Err)
	}

	switch {
	case o.Kind == workbench.KindSites:
		fmt.Fprintf(&sb, "sites: %d\n", len(o.Sites))
		if len(o.Sites) > 0 {
			tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "position\tpam\tprotospacer\ton_target\toff_target")
			for _, s := range o.Sites {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.3f\t%.3f\n", s.Position, s.PamSequence, s.Protospacer, s.OnTargetScore, s.OffTargetRisk)
			}
			_ = tw.Flush()
		}
	case len(o.Sites) > 0:
		fmt.Fprintf(&sb, "sites: %d candidates\n", len(o.Sites))
	}
	if o.Editing != nil && o.Site != nil {
		e := o.Editing
		fmt.Fprintf(&sb, "edit: site %d (%s%s) pathway=%s efficiency=%.3f off_target=%t\n",
			o.Site.Position, o.Site.Protospacer, o.Site.PamSequence, e.RepairPathway, e.Efficiency, e.HasOffTargetEffects)
		fmt.Fprintf(&sb, "  primary: %s\n", e.Primary.Summary())
		for _, b := range e.Byproducts {
			fmt.Fprintf(&sb, "  byproduct: %s\n", b.Summary())
		}
		fmt.Fprintf(&sb, "  indel_freq=%.2f frameshift=%.2f avg_indel=%.2f mosaicism=%.2f\n",
			e.Quality.IndelFrequency, e.Quality.FrameshiftFraction, e.Quality.AverageIndelSize, e.Quality.Mosaicism)
	}
	if o.Kind == workbench.KindPrimers && len(o.Primers) == 0 {
		sb.WriteString("primers: no acceptable pair\n")
	}
	for _, p := range o.Primers {
		dir := "reverse"
		if p.Forward {
			dir = "forward"
		}
		fmt.Fprintf(&sb, "primer %-7s %s  pos=%d tm=%.1f gc=%.2f specificity=%.2f\n", dir, p.Sequence, p.Position, p.Tm, p.GC, p.Specificity)
	}
	if r := o.PCR; r != nil {
		fmt.Fprintf(&sb, "pcr: success=%t length=%d sites=%d..%d copies=%.3g efficiency=%.2f purity=%.2f mutations=%d\n",
			r.Success, r.Length, r.ForwardSite, r.ReverseSite, r.CopyEstimate, r.Quality.Efficiency, r.Quality.EstimatedPurity, len(r.Mutations))
		if opt.Amplicon && r.Amplicon != "" {
			fmt.Fprintf(&sb, "amplicon: %s\n", r.Amplicon)
		}
	}
	if s := o.Sequencing; s != nil {
		sb.WriteString(sequencing.Report(*s))
	}
	if len(o.Variants) > 0 {
		fmt.Fprintf(&sb, "variants: %d\n", len(o.Variants))
		for _, v := range o.Variants {
			fmt.Fprintf(&sb, "  %d %s>%s %s depth=%d af=%.2f q=%.1f\n", v.Position, v.Ref, v.Alt, v.Type, v.Depth, v.AlleleFrequency, v.Quality)
		}
	}
	if g := o.Gel; g != nil {
		sb.WriteString(gel.Render(*g))
		for _, line := range g.Interpretations {
			fmt.Fprintf(&sb, "%s\n", line)
		}
	}
	if o.Sequencing == nil {
		for _, w := range o.Warnings() {
			fmt.Fprintf(&sb, "warning: %s\n", w)
		}
	}
	return sb.String()
}

// writeFASTQ streams the reads of every sequencing outcome. Read IDs are
// prefixed with the job ID so that batch output stays unique.
func writeFASTQ(out io.Writer, in <-chan workbench.Outcome, _ Options) error {
	return buffered(out, func(w io.Writer) error {
		for o := range in {
			if o.Sequencing == nil {
				continue
			}
			for _, r := range o.Sequencing.Reads {
				r.ID = o.JobID + ":" + r.ID
				if r.MateID != "" {
					r.MateID = o.JobID + ":" + r.MateID
				}
				if _, err := io.WriteString(w, r.FASTQ()+"\n"); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
