package gel

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// EstimateSize converts a migration distance to a size using ladder bands.
// Inside the ladder range it interpolates log10(size) between the flanking
// bands; outside it extrapolates a least-squares fit of log10(size) on
// migration. Returns -1 when the ladder cannot support an estimate.
func EstimateSize(migration float64, ladder []Band) int {
	if len(ladder) == 0 {
		return -1
	}

	upper, lower := -1, -1 // nearest band at/above and at/below the query
	for i, b := range ladder {
		if b.Migration <= migration && (upper < 0 || b.Migration > ladder[upper].Migration) {
			upper = i
		}
		if b.Migration >= migration && (lower < 0 || b.Migration < ladder[lower].Migration) {
			lower = i
		}
	}
	if upper < 0 || lower < 0 {
		return extrapolate(migration, ladder)
	}
	u, l := ladder[upper], ladder[lower]
	if upper == lower || u.Migration == l.Migration {
		return u.EstimatedSize
	}

	logU := math.Log10(float64(u.EstimatedSize))
	logL := math.Log10(float64(l.EstimatedSize))
	frac := (migration - u.Migration) / (l.Migration - u.Migration)
	return int(math.Pow(10, logU+frac*(logL-logU)))
}

func extrapolate(migration float64, ladder []Band) int {
	if len(ladder) < 2 {
		return -1
	}
	xs := make([]float64, len(ladder))
	ys := make([]float64, len(ladder))
	for i, b := range ladder {
		xs[i] = b.Migration
		ys[i] = math.Log10(float64(b.EstimatedSize))
	}
	if stat.Variance(xs, nil) == 0 {
		return -1
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	v := math.Pow(10, alpha+beta*migration)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return -1
	}
	return int(v)
}
