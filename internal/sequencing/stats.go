package sequencing

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Stats aggregates a run. Percentages are 0–100; GCContent is a fraction.
type Stats struct {
	TotalReads        int     `json:"totalReads"`
	TotalBases        int     `json:"totalBases"`
	MeanReadLength    float64 `json:"meanReadLength"`
	MeanQuality       float64 `json:"meanQuality"`
	MedianReadQuality float64 `json:"medianReadQuality"`
	Q30Percentage     float64 `json:"q30Percentage"`
	CoverageDepth     float64 `json:"coverageDepth"`
	GCContent         float64 `json:"gcContent"`
	EstimatedVariants int     `json:"estimatedVariants"`
	N50               int     `json:"n50"`
}

func computeStats(reads []Read, regionLength int) Stats {
	if len(reads) == 0 {
		return Stats{}
	}
	var bases, q30, gc, qsum int
	perRead := make([]float64, len(reads))
	for i, rd := range reads {
		bases += len(rd.Sequence)
		for j := 0; j < len(rd.Sequence); j++ {
			q := rd.Quality[j]
			qsum += q
			if q >= 30 {
				q30++
			}
			switch rd.Sequence[j] {
			case 'G', 'C':
				gc++
			}
		}
		perRead[i] = rd.MeanQuality()
	}
	if bases == 0 {
		return Stats{TotalReads: len(reads)}
	}
	sort.Float64s(perRead)

	cov := float64(bases) / float64(regionLength)
	return Stats{
		TotalReads:        len(reads),
		TotalBases:        bases,
		MeanReadLength:    float64(bases) / float64(len(reads)),
		MeanQuality:       float64(qsum) / float64(bases),
		MedianReadQuality: stat.Quantile(0.5, stat.Empirical, perRead, nil),
		Q30Percentage:     float64(q30) / float64(bases) * 100,
		CoverageDepth:     cov,
		GCContent:         float64(gc) / float64(bases),
		EstimatedVariants: int(float64(regionLength) * 0.001 * (cov / 30)),
		N50:               N50(reads),
	}
}

// N50 is the length L such that reads of length >= L hold at least half of
// all sequenced bases.
func N50(reads []Read) int {
	lengths := make([]int, len(reads))
	total := 0
	for i, rd := range reads {
		lengths[i] = len(rd.Sequence)
		total += lengths[i]
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	half := total / 2
	cum := 0
	for _, l := range lengths {
		cum += l
		if cum >= half {
			return l
		}
	}
	return 0
}

// Report renders a plain-text quality report for res.
func Report(res Result) string {
	st := res.Stats
	var sb strings.Builder
	sb.WriteString("=== SEQUENCING QUALITY REPORT ===\n\n")
	fmt.Fprintf(&sb, "Technology: %s\n", res.Profile.Description)
	fmt.Fprintf(&sb, "Total Reads: %s\n", thousands(st.TotalReads))
	fmt.Fprintf(&sb, "Total Bases: %s\n", thousands(st.TotalBases))
	fmt.Fprintf(&sb, "Mean Read Length: %.1f bp\n", st.MeanReadLength)
	fmt.Fprintf(&sb, "Mean Quality Score: Q%.1f\n", st.MeanQuality)
	fmt.Fprintf(&sb, "Q30 Bases: %.1f%%\n", st.Q30Percentage)
	fmt.Fprintf(&sb, "Coverage Depth: %.1fx\n", st.CoverageDepth)
	fmt.Fprintf(&sb, "GC Content: %.1f%%\n", st.GCContent*100)
	fmt.Fprintf(&sb, "N50: %d bp\n", st.N50)
	fmt.Fprintf(&sb, "Estimated Variants: ~%d\n", st.EstimatedVariants)

	if len(res.Warnings) > 0 {
		sb.WriteString("\n--- WARNINGS ---\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&sb, "! %s\n", w.Message)
		}
	}

	sb.WriteString("\n--- QUALITY ASSESSMENT ---\n")
	switch {
	case st.Q30Percentage >= 90 && st.CoverageDepth >= 30:
		sb.WriteString("High quality data suitable for variant calling\n")
	case st.Q30Percentage >= 80 && st.CoverageDepth >= 15:
		sb.WriteString("Moderate quality data - may miss some variants\n")
	default:
		sb.WriteString("Low quality data - consider re-sequencing\n")
	}
	return sb.String()
}

func thousands(n int) string {
	s := fmt.Sprint(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
