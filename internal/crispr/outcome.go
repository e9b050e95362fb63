package crispr

import (
	"fmt"

	"genelab/internal/genome"
)

// Kind tags an EditOutcome.
type Kind int

const (
	NoChange Kind = iota
	Deletion
	Insertion
	Replacement
	PointMutation
	ComplexIndel
)

var kindNames = [...]string{"NO_CHANGE", "DELETION", "INSERTION", "REPLACEMENT", "POINT_MUTATION", "COMPLEX_INDEL"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// EditOutcome is the molecular result of a repair event at one locus.
//
// Sequence holds inserted bases (Insertion, Replacement, PointMutation),
// the removed reference bases (Deletion), or "<removed count>><inserted>" for
// ComplexIndel.
// Values are built only through the constructors below.
type EditOutcome struct {
	Kind        Kind
	Position    int
	Size        int
	Sequence    string
	Description string
	Removed     int // reference bases removed; Size counts the outcome's own length
}

func NewNoChange(pos int, why string) EditOutcome {
	return EditOutcome{Kind: NoChange, Position: pos, Description: why}
}

func NewDeletion(pos, size int, removed, why string) EditOutcome {
	return EditOutcome{Kind: Deletion, Position: pos, Size: size, Sequence: removed, Description: why, Removed: size}
}

func NewInsertion(pos int, inserted, why string) EditOutcome {
	return EditOutcome{Kind: Insertion, Position: pos, Size: len(inserted), Sequence: inserted, Description: why}
}

// NewReplacement swaps `replaced` reference bases for seq.
func NewReplacement(pos, replaced int, seq, why string) EditOutcome {
	return EditOutcome{Kind: Replacement, Position: pos, Size: len(seq), Sequence: seq, Description: why, Removed: replaced}
}

func NewPointMutation(pos int, base byte, why string) EditOutcome {
	return EditOutcome{Kind: PointMutation, Position: pos, Size: 1, Sequence: string(base), Description: why, Removed: 1}
}

// NewComplexIndel removes `deleted` bases and inserts seq at pos.
func NewComplexIndel(pos, deleted int, seq, why string) EditOutcome {
	return EditOutcome{
		Kind: ComplexIndel, Position: pos, Size: deleted + len(seq),
		Sequence: fmt.Sprintf("%d>%s", deleted, seq), Description: why, Removed: deleted,
	}
}

// Frameshift reports whether the indel length is not a multiple of three.
func (o EditOutcome) Frameshift() bool {
	switch o.Kind {
	case Deletion, Insertion:
		return o.Size%3 != 0
	case ComplexIndel:
		return (o.Size-2*o.Removed)%3 != 0
	}
	return false
}

// Summary is a one-line human description.
func (o EditOutcome) Summary() string {
	switch o.Kind {
	case NoChange:
		return "No modification"
	case Deletion:
		return fmt.Sprintf("%dbp deletion at position %d", o.Size, o.Position)
	case Insertion:
		return fmt.Sprintf("%dbp insertion at position %d", o.Size, o.Position)
	case Replacement:
		return fmt.Sprintf("%dbp replacement at position %d", o.Size, o.Position)
	case PointMutation:
		return fmt.Sprintf("Point mutation at position %d", o.Position)
	default:
		return fmt.Sprintf("Complex indel at position %d", o.Position)
	}
}

// Edit converts the outcome to a genome patch. ok is false for NoChange.
func (o EditOutcome) Edit() (e genome.Edit, ok bool) {
	switch o.Kind {
	case NoChange:
		return genome.Edit{}, false
	case Deletion:
		return genome.Edit{Position: o.Position, Delete: o.Size}, true
	case Insertion, Replacement, PointMutation:
		return genome.Edit{Position: o.Position, Delete: o.Removed, Insert: o.Sequence}, true
	default:
		ins := o.Sequence
		for i := 0; i < len(ins); i++ {
			if ins[i] == '>' {
				ins = ins[i+1:]
				break
			}
		}
		return genome.Edit{Position: o.Position, Delete: o.Removed, Insert: ins}, true
	}
}
