package gel

import (
	"fmt"
	"strings"
)

func interpret(samples []Sample, lanes [][]Band, conc Concentration) []string {
	var out []string
	if len(lanes) > 0 && len(lanes[0]) > 0 {
		ladder := lanes[0]
		for i := 1; i < len(lanes); i++ {
			lane, name := lanes[i], samples[i].Name
			switch len(lane) {
			case 0:
				out = append(out, fmt.Sprintf("Lane %d (%s): No visible bands - possible failed reaction or degradation", i+1, name))
			case 1:
				out = append(out, fmt.Sprintf("Lane %d (%s): Single band at ~%d bp - clean amplification",
					i+1, name, EstimateSize(lane[0].Migration, ladder)))
			default:
				sizes := make([]string, len(lane))
				for j, b := range lane {
					sizes[j] = fmt.Sprintf("%d bp", EstimateSize(b.Migration, ladder))
				}
				out = append(out, fmt.Sprintf("Lane %d (%s): Multiple bands at %s - possible non-specific amplification",
					i+1, name, strings.Join(sizes, ", ")))
			}
			if smeared(lane) {
				out = append(out, fmt.Sprintf("Lane %d: Band smearing detected - possible DNA degradation or overloading", i+1))
			}
		}
	}

	for i := 1; i < len(samples); i++ {
		for _, f := range samples[i].Fragments {
			switch {
			case f.Size < conc.MinOptimal:
				out = append(out, fmt.Sprintf("Warning: %d bp fragment may be poorly resolved in %.1f%% gel (recommend higher concentration)", f.Size, conc.Percent))
			case f.Size > conc.MaxOptimal:
				out = append(out, fmt.Sprintf("Warning: %d bp fragment may be poorly resolved in %.1f%% gel (recommend lower concentration)", f.Size, conc.Percent))
			}
		}
	}
	return out
}

func smeared(lane []Band) bool {
	for _, b := range lane {
		if !b.Sharp {
			return true
		}
	}
	return false
}

func assess(samples []Sample, lanes [][]Band) Quality {
	var total float64
	n := 0
	smear := false
	for _, lane := range lanes {
		for _, b := range lane {
			if b.Sharp {
				total += 1
			} else {
				total += 0.5
				smear = true
			}
			n++
		}
	}
	avg := 0.0
	if n > 0 {
		avg = total / float64(n)
	}
	overload := false
	for _, s := range samples {
		if s.Concentration > overloadNgPerUL {
			overload = true
		}
	}

	q := 0.7
	if !smear {
		q += 0.15
	}
	if !overload {
		q += 0.1
	}
	q *= avg
	if q > 1 {
		q = 1
	}
	return Quality{Resolution: 0.8, BandSharpness: avg, Smearing: smear, Overloading: overload, Overall: q}
}
