package crispr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genelab/internal/genome"
	"genelab/internal/rng"
	"genelab/internal/simerr"
)

func TestFindPamSites_TrailingAGG(t *testing.T) {
	g := genome.MustFromString("ACGTACGTACGTACGTACGTAGG")
	e := New(DefaultConfig())

	sites, err := e.FindPamSites(rng.Constant(0.5), g, 0, g.TotalLength(), SpCas9PAM)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	s := sites[0]
	assert.Equal(t, 20, s.Position)
	assert.Equal(t, "AGG", s.PamSequence)
	assert.Equal(t, "ACGTACGTACGTACGTACGT", s.Protospacer)
	// 0.5 + seed GC 0.15 + no TTTT 0.1 + AGG 0.05 + jitter 0.05
	assert.InDelta(t, 0.85, s.OnTargetScore, 1e-9)
	// four distinct dinucleotides
	assert.InDelta(t, 0.3, s.OffTargetRisk, 1e-9)
}

func TestFindPamSites_WindowOffset(t *testing.T) {
	g := genome.MustFromString(strings.Repeat("C", 10) + "acgtacgtacgtacgtacgtagg" + strings.Repeat("C", 5))
	e := New(DefaultConfig())

	sites, err := e.FindPamSites(rng.Constant(0), g, 5, 28, "ngg")
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, 30, sites[0].Position)
	assert.Equal(t, "AGG", sites[0].PamSequence)
}

func TestFindPamSites_Errors(t *testing.T) {
	g := genome.MustFromString(strings.Repeat("ACGT", 10))
	e := New(DefaultConfig())

	tests := []struct {
		name   string
		start  int
		length int
		pam    string
		want   error
	}{
		{"too short", 0, 40, "GG", simerr.ErrUnsupportedPamPattern},
		{"too long", 0, 40, "NNGRRTT", simerr.ErrUnsupportedPamPattern},
		{"bad symbol", 0, 40, "NGX", simerr.ErrUnsupportedPamPattern},
		{"empty", 0, 40, "", simerr.ErrUnsupportedPamPattern},
		{"past end", 10, 40, "NGG", simerr.ErrInvalidRegion},
		{"negative start", -1, 10, "NGG", simerr.ErrInvalidRegion},
		{"zero length", 0, 0, "NGG", simerr.ErrInvalidRegion},
	}
	for _, tc := range tests {
		_, err := e.FindPamSites(rng.Constant(0), g, tc.start, tc.length, tc.pam)
		assert.ErrorIs(t, err, tc.want, tc.name)
	}
}

func TestFindPamSites_IUPACPatterns(t *testing.T) {
	proto := "GATCGATCGATCGATCGATC"
	g := genome.MustFromString(proto + "TTTA" + proto + "CAGAAT")
	e := New(DefaultConfig())

	sites, err := e.FindPamSites(rng.Constant(0), g, 0, g.TotalLength(), SaCas9PAM)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "CAGAAT", sites[0].PamSequence)
	assert.Equal(t, proto, sites[0].Protospacer)
}

func TestFindPamSites_GenomeNOnlyMatchesN(t *testing.T) {
	g := genome.MustFromString(strings.Repeat("A", 20) + "ANG")
	e := New(DefaultConfig())

	sites, err := e.FindPamSites(rng.Constant(0), g, 0, g.TotalLength(), "NGG")
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestScoresStayInUnitInterval(t *testing.T) {
	r := rng.New(7)
	g := genome.MustFromString(randomGenome(r, 5000))
	e := New(DefaultConfig())

	sites, err := e.FindPamSites(rng.New(8), g, 0, g.TotalLength(), SpCas9PAM)
	require.NoError(t, err)
	require.NotEmpty(t, sites)
	for _, s := range sites {
		assert.GreaterOrEqual(t, s.OnTargetScore, 0.0)
		assert.LessOrEqual(t, s.OnTargetScore, 1.0)
		assert.GreaterOrEqual(t, s.OffTargetRisk, 0.1)
		assert.LessOrEqual(t, s.OffTargetRisk, 1.0)
		assert.Len(t, s.Protospacer, 20)
	}
}

func TestOffTargetRisk_Motifs(t *testing.T) {
	// low complexity plus AAAA and TTTT
	assert.InDelta(t, 0.4, OffTargetRisk("AAAAAAAAAATTTTTTTTTT"), 1e-9)
	assert.InDelta(t, 0.1, OffTargetRisk("ACGATCAGTCCGTAGCTTGA"), 1e-9)
}

func randomGenome(r rng.Source, n int) string {
	return RandomSequence(r, n)
}
