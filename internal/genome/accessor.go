// Package genome provides the read-only sequence store the engines consume.
//
// Engines only see Accessor. Memory is the in-process implementation; hosts
// with their own storage (packed, patched, remote) implement Accessor directly.
package genome

import (
	"genelab/internal/dna"
	"genelab/internal/simerr"
)

// Accessor is the Sequence Accessor contract: random access to bases in
// {A,C,G,T,N}, either case.
type Accessor interface {
	// Sequence returns bases in [position, position+length) clipped to the
	// genome; "" when length <= 0 or position >= TotalLength().
	Sequence(position, length int) string
	TotalLength() int
}

// Memory is an immutable, upper-case, in-memory genome.
type Memory struct {
	id  string
	seq string
}

var _ Accessor = (*Memory)(nil)

// FromString validates s and wraps it as a Memory genome.
func FromString(s string) (*Memory, error) {
	return New("", s)
}

// New is FromString with a record identifier.
func New(id, s string) (*Memory, error) {
	norm, err := dna.Validate(s)
	if err != nil {
		return nil, err
	}
	return &Memory{id: id, seq: norm}, nil
}

// MustFromString panics on invalid input; for tests and literals.
func MustFromString(s string) *Memory {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Memory) ID() string { return m.id }

func (m *Memory) TotalLength() int { return len(m.seq) }

func (m *Memory) Sequence(position, length int) string {
	return clip(m.seq, position, length)
}

// String returns the whole sequence.
func (m *Memory) String() string { return m.seq }

func clip(s string, position, length int) string {
	if length <= 0 || position >= len(s) {
		return ""
	}
	if position < 0 {
		length += position
		position = 0
		if length <= 0 {
			return ""
		}
	}
	end := position + length
	if end > len(s) {
		end = len(s)
	}
	return s[position:end]
}

// CheckWindow fails with ErrInvalidRegion unless [start, start+length) lies
// inside g and length > 0.
func CheckWindow(g Accessor, start, length int) error {
	total := g.TotalLength()
	if start < 0 || length <= 0 || start+length > total {
		return simerr.Region(start, length, total)
	}
	return nil
}
