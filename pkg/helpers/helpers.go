// Package helpers collects the small numeric routines shared by the
// cluster-building and search algorithms: arg-min/arg-max, mean/standard
// deviation, and the two forms of the local-fractal-dimension estimator.
package helpers

import (
	"math"
	"sort"

	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// ArgMin returns the index and value of the smallest element. Ties break
// on the first (smallest-index) occurrence. Panics on an empty slice.
func ArgMin[T numeric.Number](values []T) (int, T) {
	iMin, vMin := 0, values[0]
	for i, v := range values[1:] {
		if v < vMin {
			iMin, vMin = i+1, v
		}
	}
	return iMin, vMin
}

// ArgMax returns the index and value of the largest element. Ties break
// on the first (smallest-index) occurrence. Panics on an empty slice.
func ArgMax[T numeric.Number](values []T) (int, T) {
	iMax, vMax := 0, values[0]
	for i, v := range values[1:] {
		if v > vMax {
			iMax, vMax = i+1, v
		}
	}
	return iMax, vMax
}

// Mean returns the arithmetic mean of values as a float64.
func Mean[T numeric.Number](values []T) float64 {
	var sum float64
	for _, v := range values {
		sum += numeric.AsFloat64(v)
	}
	return sum / float64(len(values))
}

// SD returns the (population) standard deviation of values given a
// precomputed mean.
func SD[T numeric.Number](values []T, mean float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := numeric.AsFloat64(v) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// EstimateLFD computes the local fractal dimension at scale radius from a
// set of distances measured from a cluster's center: log2(n_r / n_{r/2}).
// Returns 1.0 when radius is zero or when no distance falls within
// radius/2 (both degenerate cases named in spec §4.5/§4.12).
func EstimateLFD[T numeric.Number](distances []T, radius T) float64 {
	if radius == numeric.Zero[T]() {
		return 1.0
	}
	half := radius / 2
	count := 0
	for _, d := range distances {
		if d <= half {
			count++
		}
	}
	if count == 0 {
		return 1.0
	}
	return math.Log2(float64(len(distances)) / float64(count))
}

// EstimateLFDFromSorted computes the alternative LFD estimate used by the
// adaptive KNN loop: the mean, over all i < n, of the per-point estimate
// log(i/n) / log(d_i/r), where dists is sorted ascending and r is the
// reference scale (typically the current search radius). Divisions by
// zero (i == 0, d_i == r, or d_i == 0) are skipped.
func EstimateLFDFromSorted(dists []float64, r float64) float64 {
	n := len(dists)
	if n == 0 || r <= 0 {
		return 1.0
	}
	sorted := make([]float64, n)
	copy(sorted, dists)
	sort.Float64s(sorted)

	var sum float64
	var count int
	for i, d := range sorted {
		if i == 0 || d <= 0 || d == r {
			continue
		}
		num := math.Log(float64(i) / float64(n))
		den := math.Log(d / r)
		if den == 0 {
			continue
		}
		sum += num / den
		count++
	}
	if count == 0 {
		return 1.0
	}
	return sum / float64(count)
}
