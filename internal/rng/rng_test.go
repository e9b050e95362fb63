package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SameSeedSameStream(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64())
		require.Equal(t, a.IntN(1000), b.IntN(1000))
		require.Equal(t, a.NormFloat64(), b.NormFloat64())
	}
}

func TestNew_DifferentSeedsDiverge(t *testing.T) {
	a, b := New(1), New(2)
	same := 0
	for i := 0; i < 32; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 32)
}

func TestDerive_Distinct(t *testing.T) {
	seen := map[uint64]bool{}
	for i := 0; i < 1000; i++ {
		s := Derive(7, i)
		require.False(t, seen[s], "duplicate derived seed at %d", i)
		seen[s] = true
	}
	assert.Equal(t, Derive(7, 3), Derive(7, 3))
}

func TestScripted(t *testing.T) {
	s := &Scripted{Floats: []float64{0.1, 0.2}, Ints: []int{5, -1}, FallbackFloat: 0.9, FallbackInt: 2}
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.2, s.Float64())
	assert.Equal(t, 0.9, s.Float64())
	assert.Equal(t, 1, s.IntN(4))
	assert.Equal(t, 3, s.IntN(4))
	assert.Equal(t, 2, s.IntN(4))
	assert.Equal(t, 0.0, s.NormFloat64())
}
