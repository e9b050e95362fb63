package genome

import (
	"fmt"
	"sort"
	"strings"

	"genelab/internal/dna"
	"genelab/internal/simerr"
)

// Edit is a single modification expressed against unedited coordinates:
// Delete bases are removed starting at Position, then Insert is placed there.
// A point mutation is Delete=1 with a one-base Insert.
type Edit struct {
	Position int
	Delete   int
	Insert   string
}

// Apply returns a new genome with edits applied to g. Edits may not overlap.
func Apply(g Accessor, edits ...Edit) (*Memory, error) {
	total := g.TotalLength()
	sorted := append([]Edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	prevEnd := 0
	for i, e := range sorted {
		if e.Position < 0 || e.Delete < 0 || e.Position+e.Delete > total {
			return nil, fmt.Errorf("edit %d: %w", i, simerr.Region(e.Position, e.Delete, total))
		}
		if e.Position < prevEnd {
			return nil, simerr.Input("edit at %d overlaps previous edit ending at %d", e.Position, prevEnd)
		}
		if _, err := dna.Validate(e.Insert); err != nil {
			return nil, fmt.Errorf("edit %d insert: %w", i, err)
		}
		prevEnd = e.Position + e.Delete
	}

	var b strings.Builder
	b.Grow(total)
	cur := 0
	for _, e := range sorted {
		b.WriteString(g.Sequence(cur, e.Position-cur))
		b.WriteString(strings.ToUpper(e.Insert))
		cur = e.Position + e.Delete
	}
	b.WriteString(g.Sequence(cur, total-cur))

	id := ""
	if m, ok := g.(*Memory); ok {
		id = m.id
	}
	return &Memory{id: id, seq: strings.ToUpper(b.String())}, nil
}
