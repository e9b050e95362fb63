package gel

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genelab/internal/rng"
	"genelab/internal/simerr"
)

func standardGel(t *testing.T, e *Engine) Concentration {
	t.Helper()
	c, err := e.Concentration(1.0)
	require.NoError(t, err)
	return c
}

func TestRunGel_SizesSampleAgainstLadder(t *testing.T) {
	e := New(DefaultConfig())
	sizes, err := e.Ladder(Ladder1kb)
	require.NoError(t, err)
	samples := []Sample{LadderSample("1kb ladder", sizes), SingleSample("amplicon", 1000, 50)}

	// uniform 0.5 zeroes both noise terms
	res, err := e.RunGel(rng.Constant(0.5), samples, standardGel(t, e), 100, 100)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Lanes, 2)
	require.Len(t, res.Lanes[0], len(sizes))
	require.Len(t, res.Lanes[1], 1)

	est := EstimateSize(res.Lanes[1][0].Migration, res.Lanes[0])
	assert.InDelta(t, 1000, est, 100)
	assert.Contains(t, res.Interpretations, "Lane 2 (amplicon): Single band at ~1000 bp - clean amplification")

	for i := 1; i < len(res.Lanes[0]); i++ {
		assert.Less(t, res.Lanes[0][i-1].Migration, res.Lanes[0][i].Migration)
	}
	assert.Equal(t, "10000 bp", res.Lanes[0][0].Annotation)
	assert.Empty(t, res.Lanes[1][0].Annotation)

	// 250 bp ladder band sits below the 1% optimal range
	q := res.Quality
	assert.True(t, q.Smearing)
	assert.False(t, q.Overloading)
	assert.InDelta(t, 13.5/14, q.BandSharpness, 1e-12)
	assert.InDelta(t, 0.8*13.5/14, q.Overall, 1e-12)
	assert.Equal(t, 100, res.GelLengthMM)
}

func TestRunGel_NoisySeededRunStaysNearLadder(t *testing.T) {
	e := New(DefaultConfig())
	sizes, _ := e.Ladder(Ladder1kbPlus)
	samples := []Sample{LadderSample("ladder", sizes), SingleSample("a", 500, 80), SingleSample("b", 3000, 80)}

	a, err := e.RunGel(rng.New(17), samples, standardGel(t, e), 60, 120)
	require.NoError(t, err)
	b, err := e.RunGel(rng.New(17), samples, standardGel(t, e), 60, 120)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed diverged (-a +b):\n%s", diff)
	}

	for _, lane := range a.Lanes {
		for _, band := range lane {
			assert.Greater(t, band.Migration, 0.0)
			assert.Less(t, band.Migration, 1.0)
			assert.GreaterOrEqual(t, band.Intensity, 0.0)
			assert.LessOrEqual(t, band.Intensity, 1.0)
		}
	}
}

func TestMigrationModel(t *testing.T) {
	c := Concentration{Percent: 1.0, MinOptimal: 500, MaxOptimal: 10000}
	assert.InDelta(t, 0.95, MaxMigration(c, 100, 100), 1e-12)
	assert.InDelta(t, (0.5+0.15+0.1)/2, MaxMigration(Concentration{Percent: 2}, 30, 75), 1e-12)

	assert.InDelta(t, 0.5/3, Migration(1000, c, 0.95), 1e-12)
	// sizes below 10 bp are treated as 10 bp
	assert.InDelta(t, 0.5, Migration(5, c, 0.95), 1e-12)
	assert.InDelta(t, 0.3, Migration(5, c, 0.3), 1e-12)

	prev := 1.0
	for _, s := range []int{50, 100, 500, 1000, 5000, 20000} {
		m := Migration(s, c, 0.95)
		assert.Less(t, m, prev, "larger fragments migrate less")
		prev = m
	}
}

func TestEstimateSize(t *testing.T) {
	ladder := []Band{{Migration: 0.2, EstimatedSize: 1000}, {Migration: 0.4, EstimatedSize: 100}}

	assert.Equal(t, 1000, EstimateSize(0.2, ladder))
	assert.Equal(t, 100, EstimateSize(0.4, ladder))
	// log-midpoint of 100 and 1000
	assert.Equal(t, 316, EstimateSize(0.3, ladder))
	// extrapolated along log10(size) = 4 − 5·migration
	assert.Equal(t, 31, EstimateSize(0.5, ladder))
	assert.Equal(t, 3162, EstimateSize(0.1, ladder))

	assert.Equal(t, -1, EstimateSize(0.3, nil))
	assert.Equal(t, -1, EstimateSize(0.5, ladder[:1]))
	flat := []Band{{Migration: 0.3, EstimatedSize: 500}, {Migration: 0.3, EstimatedSize: 600}}
	assert.Equal(t, -1, EstimateSize(0.6, flat))
}

func TestEstimateSize_ExactOnLadderBands(t *testing.T) {
	e := New(DefaultConfig())
	for name, sizes := range DefaultLadders() {
		res, err := e.RunGel(rng.Constant(0.5), []Sample{LadderSample(name, sizes)}, standardGel(t, e), 45, 100)
		require.NoError(t, err)
		ladder := res.Lanes[0]
		for _, b := range ladder {
			assert.Equal(t, b.EstimatedSize, EstimateSize(b.Migration, ladder), name)
		}
	}
}

func TestRunGel_Interpretations(t *testing.T) {
	e := New(DefaultConfig())
	sizes, _ := e.Ladder(Ladder100bp)
	samples := []Sample{
		LadderSample("ladder", sizes),
		{Name: "mix", Fragments: []Fragment{{Size: 100, Abundance: 0.5}, {Size: 20000, Abundance: 0.5}}, Concentration: 600},
		{Name: "empty", Concentration: 50},
	}

	res, err := e.RunGel(rng.Constant(0.5), samples, standardGel(t, e), 60, 100)
	require.NoError(t, err)

	text := strings.Join(res.Interpretations, "\n")
	assert.Contains(t, text, "Lane 2 (mix): Multiple bands at")
	assert.Contains(t, text, "Lane 2: Band smearing detected")
	assert.Contains(t, text, "Lane 3 (empty): No visible bands")
	assert.Contains(t, text, "Warning: 100 bp fragment may be poorly resolved in 1.0% gel (recommend higher concentration)")
	assert.Contains(t, text, "Warning: 20000 bp fragment may be poorly resolved in 1.0% gel (recommend lower concentration)")
	assert.True(t, res.Quality.Overloading)
}

func TestRunGel_Errors(t *testing.T) {
	e := New(DefaultConfig())
	c := standardGel(t, e)
	ok := []Sample{SingleSample("x", 500, 50)}

	_, err := e.RunGel(rng.Constant(0.5), ok, Concentration{}, 60, 100)
	assert.ErrorIs(t, err, simerr.ErrInvalidInput)
	_, err = e.RunGel(rng.Constant(0.5), ok, c, -1, 100)
	assert.ErrorIs(t, err, simerr.ErrInvalidInput)
	_, err = e.RunGel(rng.Constant(0.5), []Sample{SingleSample("bad", 0, 50)}, c, 60, 100)
	assert.ErrorIs(t, err, simerr.ErrInvalidInput)

	res, err := e.RunGel(rng.Constant(0.5), nil, c, 60, 100)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, simerr.Has(res.Warnings, simerr.NoSamples))
}

func TestEngineLookups(t *testing.T) {
	e := New(Config{})
	_, err := e.Concentration(4.0)
	assert.ErrorIs(t, err, simerr.ErrInvalidInput)
	c, err := e.Concentration(2.0)
	require.NoError(t, err)
	assert.Equal(t, Concentration{Percent: 2, MinOptimal: 100, MaxOptimal: 2000}, c)

	_, err = e.Ladder("50bp")
	assert.ErrorIs(t, err, simerr.ErrInvalidInput)
	sizes, err := e.Ladder(Ladder100bp)
	require.NoError(t, err)
	sizes[0] = 1
	again, _ := e.Ladder(Ladder100bp)
	assert.Equal(t, 100, again[0])
}

func TestLadderSample(t *testing.T) {
	s := LadderSample("l", []int{100, 200, 400, 800})
	assert.Equal(t, 100.0, s.Concentration)
	for _, f := range s.Fragments {
		assert.Equal(t, 0.25, f.Abundance)
	}
}

func TestRender(t *testing.T) {
	e := New(DefaultConfig())
	sizes, _ := e.Ladder(Ladder1kb)
	res, err := e.RunGel(rng.Constant(0.5), []Sample{LadderSample("l", sizes), SingleSample("s", 1000, 400)}, standardGel(t, e), 100, 100)
	require.NoError(t, err)

	out := Render(res)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 25)
	assert.Equal(t, "| L1     L2     |", lines[1])
	assert.Contains(t, out, "░░░░░░")
	assert.Contains(t, out, "Bands: ██=strong")
}

func TestNew_MergesConfiguredLadders(t *testing.T) {
	e := New(Config{Ladders: map[string][]int{"tiny": {50, 100}, Ladder100bp: {100, 200}}})
	tiny, err := e.Ladder("tiny")
	require.NoError(t, err)
	assert.Equal(t, []int{50, 100}, tiny)

	over, err := e.Ladder(Ladder100bp)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200}, over)

	_, err = e.Ladder(Ladder1kb)
	assert.NoError(t, err)
}
