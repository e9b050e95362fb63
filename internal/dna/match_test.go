package dna

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMatches(t *testing.T) {
	seq := "ACGTACGTACGT"

	tests := []struct {
		name         string
		pattern      string
		maxMM        int
		wantCount    int
		wantFirstPos int
	}{
		{name: "perfect match", pattern: "ACG", maxMM: 0, wantCount: 3, wantFirstPos: 0},
		{name: "one mismatch allowed", pattern: "AGG", maxMM: 1, wantCount: 3, wantFirstPos: 0},
		{name: "exceed mismatch threshold", pattern: "AGG", maxMM: 0, wantCount: 0, wantFirstPos: -1},
		{name: "IUPAC degeneracy", pattern: "ACN", maxMM: 0, wantCount: 3, wantFirstPos: 0},
		{name: "pattern longer than seq", pattern: "ACGTACGTACGTA", maxMM: 2, wantCount: 0, wantFirstPos: -1},
	}

	for _, tc := range tests {
		hits := FindMatches(seq, tc.pattern, tc.maxMM, 0)
		assert.Len(t, hits, tc.wantCount, tc.name)
		if tc.wantCount > 0 && tc.wantFirstPos != -1 {
			assert.Equal(t, tc.wantFirstPos, hits[0].Pos, tc.name)
		}
	}
}

func TestFindMatches_CapAndIndices(t *testing.T) {
	hits := FindMatches("AAAAAAAA", "AAT", 1, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Mismatches)
	assert.Equal(t, []int{2}, hits[0].MismatchIdx)
}

func TestMismatchCount(t *testing.T) {
	tests := []struct {
		window, pattern string
		want            int
	}{
		{"ACGT", "ACGT", 0},
		{"ACGT", "NNNN", 0},
		{"ACGT", "RRRR", 2},
		{"ACGT", "TTTT", 3},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MismatchCount(tc.window, tc.pattern), "%s/%s", tc.window, tc.pattern)
	}
	assert.Panics(t, func() { MismatchCount("AAA", "AA") })
}

func TestValidateAndGC(t *testing.T) {
	s, err := Validate("acgtn")
	require.NoError(t, err)
	assert.Equal(t, "ACGTN", s)

	_, err = Validate("ACGU")
	require.Error(t, err)

	assert.Equal(t, 2, GCCount("AcGT"))
	assert.InDelta(t, 0.5, GCContent("ACGT"), 1e-12)
	assert.Equal(t, 0.0, GCContent(""))
	assert.Equal(t, 1.0, Clamp01(3))
	assert.Equal(t, 0.0, Clamp01(-1))
}
