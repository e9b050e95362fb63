package sequencing

import (
	"strings"

	"genelab/internal/dna"
	"genelab/internal/genome"
	"genelab/internal/rng"
)

// Read is one sequenced fragment. Sequence is as read off the instrument,
// so a reversed read holds the reverse complement of the reference window
// starting at Position.
type Read struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
	Quality  []int  `json:"quality"`
	Position int    `json:"position"`
	Reversed bool   `json:"reversed"`
	MateID   string `json:"mateId,omitempty"`
}

// QualityString encodes Quality as Phred+33.
func (r Read) QualityString() string {
	b := make([]byte, len(r.Quality))
	for i, q := range r.Quality {
		b[i] = byte(q + 33)
	}
	return string(b)
}

// FASTQ renders the four-line record without a trailing newline.
func (r Read) FASTQ() string {
	var sb strings.Builder
	sb.Grow(len(r.ID) + 2*len(r.Sequence) + 6)
	sb.WriteByte('@')
	sb.WriteString(r.ID)
	sb.WriteByte('\n')
	sb.WriteString(r.Sequence)
	sb.WriteString("\n+\n")
	sb.WriteString(r.QualityString())
	return sb.String()
}

func (r Read) MeanQuality() float64 {
	if len(r.Quality) == 0 {
		return 0
	}
	sum := 0
	for _, q := range r.Quality {
		sum += q
	}
	return float64(sum) / float64(len(r.Quality))
}

const (
	minPhred = 2
	maxPhred = 41
	// errorPhred caps the quality of a base hit by a substitution.
	errorPhred = 10
)

// generateRead samples one read. Per base: a normal draw for quality noise,
// a uniform error roll, and on error a second uniform for the error type
// followed by one IntN for the substituted base.
func generateRead(r rng.Source, g genome.Accessor, p Profile, pos int, id string, reversed bool, mate string) Read {
	seq := strings.ToUpper(g.Sequence(pos, p.ReadLength))
	if reversed {
		seq = dna.RevComp(seq)
	}
	bases := []byte(seq)
	quals := make([]int, len(bases))
	n := float64(p.ReadLength)

	for i := range bases {
		q := int(float64(p.AvgQuality) * (1 - float64(i)/n*0.3))
		q = int(float64(q) + r.NormFloat64()*5)
		if q < minPhred {
			q = minPhred
		} else if q > maxPhred {
			q = maxPhred
		}

		if r.Float64() < p.ErrorRate {
			// 90% substitutions; the rest would be indels, not modelled
			if r.Float64() < 0.9 {
				bases[i] = substitute(r, bases[i])
				if q > errorPhred {
					q = errorPhred
				}
			}
		}
		quals[i] = q
	}
	return Read{ID: id, Sequence: string(bases), Quality: quals, Position: pos, Reversed: reversed, MateID: mate}
}

func substitute(r rng.Source, b byte) byte {
	others := strings.Replace(dna.Bases, string(b), "", 1)
	return others[r.IntN(len(others))]
}
