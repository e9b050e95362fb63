package sequencing

import (
	"sort"
	"strings"

	"genelab/internal/dna"
	"genelab/internal/genome"
	"genelab/internal/simerr"
)

type VariantType int

const (
	SNP VariantType = iota
	Insertion
	Deletion
	Complex
)

func (t VariantType) String() string {
	switch t {
	case SNP:
		return "SNP"
	case Insertion:
		return "INSERTION"
	case Deletion:
		return "DELETION"
	default:
		return "COMPLEX"
	}
}

// Variant is one called allele. Only SNPs are produced by CallVariants.
type Variant struct {
	Position        int         `json:"position"`
	Ref             string      `json:"ref"`
	Alt             string      `json:"alt"`
	Type            VariantType `json:"type"`
	Depth           int         `json:"depth"`
	AlleleFrequency float64     `json:"alleleFrequency"`
	Quality         float64     `json:"quality"`
}

type column struct {
	counts  [256]int
	depth   int
	qualSum int
}

// CallVariants piles reads up on the forward strand and emits a SNP for each
// non-reference allele seen at least minDepth/3 times, at allele frequency
// >= 0.1, at a position with depth >= minDepth and mean base quality >=
// minQuality. Output is ordered by position, then alt allele.
func CallVariants(reads []Read, ref genome.Accessor, minDepth int, minQuality float64) ([]Variant, error) {
	if minDepth < 0 {
		return nil, simerr.Input("negative minimum depth %d", minDepth)
	}

	pile := make(map[int]*column)
	add := func(pos int, b byte, q int) {
		c := pile[pos]
		if c == nil {
			c = &column{}
			pile[pos] = c
		}
		c.counts[b]++
		c.depth++
		c.qualSum += q
	}
	for _, rd := range reads {
		n := len(rd.Sequence)
		if len(rd.Quality) < n {
			return nil, simerr.Input("read %s: %d qualities for %d bases", rd.ID, len(rd.Quality), n)
		}
		for i := 0; i < n; i++ {
			if rd.Reversed {
				add(rd.Position+n-1-i, dna.Complement(rd.Sequence[i]), rd.Quality[i])
			} else {
				add(rd.Position+i, rd.Sequence[i]&^0x20, rd.Quality[i])
			}
		}
	}

	positions := make([]int, 0, len(pile))
	for p := range pile {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	var out []Variant
	for _, pos := range positions {
		c := pile[pos]
		if c.depth < minDepth {
			continue
		}
		rs := strings.ToUpper(ref.Sequence(pos, 1))
		if rs == "" {
			continue
		}
		refBase := rs[0]
		avgQ := float64(c.qualSum) / float64(c.depth)
		for i := 0; i < len(dna.Bases); i++ {
			alt := dna.Bases[i]
			n := c.counts[alt]
			if alt == refBase || n == 0 || n < minDepth/3 {
				continue
			}
			af := float64(n) / float64(c.depth)
			if avgQ < minQuality || af < 0.1 {
				continue
			}
			out = append(out, Variant{
				Position:        pos,
				Ref:             string(refBase),
				Alt:             string(alt),
				Type:            SNP,
				Depth:           c.depth,
				AlleleFrequency: af,
				Quality:         avgQ,
			})
		}
	}
	return out, nil
}
