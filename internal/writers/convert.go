package writers

import (
	"genelab/internal/crispr"
	"genelab/internal/pcr"
	"genelab/internal/workbench"
	"genelab/pkg/api"
)

// ToAPI converts an outcome to the stable wire schema (v1).
func ToAPI(o workbench.Outcome, opt Options) api.OutcomeV1 {
	v := api.OutcomeV1{
		RunID:        o.RunID,
		JobID:        o.JobID,
		Kind:         string(o.Kind),
		Seed:         o.Seed,
		Status:       o.Status(),
		Stage:        o.Stage,
		DurationMS:   float64(o.Duration.Microseconds()) / 1000,
		EditedLength: o.EditedLength,
	}
	if o.Err != nil {
		v.Error = o.Err.Error()
	}
	for _, w := range o.Warnings() {
		v.Warnings = append(v.Warnings, api.WarningV1{Code: string(w.Code), Message: w.Message})
	}
	for _, s := range o.Sites {
		v.Sites = append(v.Sites, toAPISite(s))
	}
	if o.Editing != nil && o.Site != nil {
		v.Editing = toAPIEditing(*o.Site, *o.Editing)
	}
	for _, p := range o.Primers {
		v.Primers = append(v.Primers, toAPIPrimer(p))
	}
	if o.PCR != nil {
		r := o.PCR
		v.PCR = &api.PCRV1{
			Success:             r.Success,
			Length:              r.Length,
			ForwardSite:         r.ForwardSite,
			ReverseSite:         r.ReverseSite,
			Yield:               r.Yield,
			CopyEstimate:        r.CopyEstimate,
			ErrorRate:           r.ErrorRate,
			Mutations:           append([]string(nil), r.Mutations...),
			Specificity:         r.Quality.Specificity,
			HasPrimerDimers:     r.Quality.HasPrimerDimers,
			HasNonSpecificBands: r.Quality.HasNonSpecificBands,
			EstimatedPurity:     r.Quality.EstimatedPurity,
		}
		if opt.Amplicon {
			v.PCR.Amplicon = r.Amplicon
		}
	}
	if s := o.Sequencing; s != nil {
		st := s.Stats
		v.Sequencing = &api.SequencingV1{
			Success:     s.Success,
			Technology:  s.Profile.Name,
			RegionStart: s.Region.Start,
			RegionLen:   s.Region.Length,
			Stats: api.SequencingStatsV1{
				TotalReads:        st.TotalReads,
				TotalBases:        st.TotalBases,
				MeanReadLength:    st.MeanReadLength,
				MeanQuality:       st.MeanQuality,
				MedianReadQuality: st.MedianReadQuality,
				Q30Percentage:     st.Q30Percentage,
				CoverageDepth:     st.CoverageDepth,
				GCContent:         st.GCContent,
				EstimatedVariants: st.EstimatedVariants,
				N50:               st.N50,
			},
		}
		if opt.Reads {
			for _, r := range s.Reads {
				v.Sequencing.Reads = append(v.Sequencing.Reads, api.ReadV1{
					ID:       r.ID,
					Position: r.Position,
					Reversed: r.Reversed,
					MateID:   r.MateID,
					Sequence: r.Sequence,
					Quality:  r.QualityString(),
				})
			}
		}
	}
	for _, x := range o.Variants {
		v.Variants = append(v.Variants, api.VariantV1{
			Position:        x.Position,
			Ref:             x.Ref,
			Alt:             x.Alt,
			Type:            x.Type.String(),
			Depth:           x.Depth,
			AlleleFrequency: x.AlleleFrequency,
			Quality:         x.Quality,
		})
	}
	if g := o.Gel; g != nil {
		v.Gel = &api.GelV1{
			Success:         g.Success,
			Percent:         g.Concentration.Percent,
			RunTime:         g.RunTime,
			Voltage:         g.Voltage,
			GelLengthMM:     g.GelLengthMM,
			Interpretations: append([]string(nil), g.Interpretations...),
			Sharpness:       g.Quality.BandSharpness,
			Smearing:        g.Quality.Smearing,
			Overloading:     g.Quality.Overloading,
			OverallQuality:  g.Quality.Overall,
			Lanes:           make([]api.LaneV1, len(g.Lanes)),
		}
		for i, lane := range g.Lanes {
			l := api.LaneV1{Name: g.LaneNames[i], Bands: make([]api.BandV1, len(lane))}
			for j, b := range lane {
				l.Bands[j] = api.BandV1{
					Migration:     b.Migration,
					EstimatedSize: b.EstimatedSize,
					Intensity:     b.Intensity,
					Sharp:         b.Sharp,
					Annotation:    b.Annotation,
				}
			}
			v.Gel.Lanes[i] = l
		}
	}
	return v
}

func toAPISite(s crispr.TargetSite) api.TargetSiteV1 {
	return api.TargetSiteV1{
		Position:      s.Position,
		Protospacer:   s.Protospacer,
		PAM:           s.PamSequence,
		OnTargetScore: s.OnTargetScore,
		OffTargetRisk: s.OffTargetRisk,
	}
}

func toAPIOutcome(e crispr.EditOutcome) api.EditOutcomeV1 {
	return api.EditOutcomeV1{
		Kind:        e.Kind.String(),
		Position:    e.Position,
		Size:        e.Size,
		Sequence:    e.Sequence,
		Description: e.Description,
		Frameshift:  e.Frameshift(),
	}
}

func toAPIEditing(site crispr.TargetSite, r crispr.EditingResult) *api.EditingV1 {
	v := &api.EditingV1{
		Site:                toAPISite(site),
		RepairPathway:       r.RepairPathway,
		Efficiency:          r.Efficiency,
		HasOffTargetEffects: r.HasOffTargetEffects,
		Primary:             toAPIOutcome(r.Primary),
		Byproducts:          make([]api.EditOutcomeV1, len(r.Byproducts)),
		IndelFrequency:      r.Quality.IndelFrequency,
		FrameshiftFraction:  r.Quality.FrameshiftFraction,
		AverageIndelSize:    r.Quality.AverageIndelSize,
		Mosaicism:           r.Quality.Mosaicism,
		OutcomeDistribution: r.Quality.OutcomeDistribution,
	}
	for i, b := range r.Byproducts {
		v.Byproducts[i] = toAPIOutcome(b)
	}
	return v
}

func toAPIPrimer(p pcr.Primer) api.PrimerV1 {
	return api.PrimerV1{
		Sequence:          p.Sequence,
		Forward:           p.Forward,
		Position:          p.Position,
		Tm:                p.Tm,
		GC:                p.GC,
		Specificity:       p.Specificity,
		SelfComplementary: p.SelfComplementary,
		DimerRisk:         p.DimerRisk,
	}
}
