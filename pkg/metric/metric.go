// Package metric provides concrete distance functions satisfying the
// Metric capability named in the engine's design: a pure function
// (x, y) -> distance plus a declared expense flag. Concrete Dataset
// backings (pkg/dataset) fold one of these into their distance fan-outs;
// the core clustering and search packages never import this package
// directly, only the Dataset capability it feeds.
package metric

import (
	"fmt"
	"math"

	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// Func is a pure distance function between two instances of type T,
// producing a non-negative value of type U. The core never checks
// non-negativity, identity, symmetry, or the triangle inequality: results
// are undefined if the caller's function violates them.
type Func[T any, U numeric.Number] func(x, y T) U

// Metric pairs a distance function with its name and an is-expensive
// declaration used by batched fan-outs to pick a parallel or serial path.
type Metric[T any, U numeric.Number] struct {
	Name      string
	Distance  Func[T, U]
	Expensive bool
}

// IsExpensive reports whether the metric is expensive to evaluate.
func (m Metric[T, U]) IsExpensive() bool {
	return m.Expensive
}

// Wrap adapts a bare distance function into a named Metric, letting a
// caller mark any function cheap or expensive regardless of its origin.
func Wrap[T any, U numeric.Number](name string, fn Func[T, U], expensive bool) Metric[T, U] {
	return Metric[T, U]{Name: name, Distance: fn, Expensive: expensive}
}

// Euclidean is the L2-norm between two float64 vectors of equal length.
func Euclidean(x, y []float64) float64 {
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// EuclideanSquared is the squared L2-norm, cheaper than Euclidean when
// only relative ordering of distances matters.
func EuclideanSquared(x, y []float64) float64 {
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return sum
}

// Manhattan is the L1-norm between two float64 vectors of equal length.
func Manhattan(x, y []float64) float64 {
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// Cosine is 1 minus the cosine similarity between two float64 vectors.
// Returns 1 (maximally dissimilar) if either vector is zero or the
// similarity is non-positive.
func Cosine(x, y []float64) float64 {
	var xx, yy, xy float64
	for i := range x {
		xx += x[i] * x[i]
		yy += y[i] * y[i]
		xy += x[i] * y[i]
	}
	if xx == 0 || yy == 0 || xy <= 0 {
		return 1
	}
	return 1 - xy/math.Sqrt(xx*yy)
}

// Hamming counts the positions at which two equal-length comparable
// slices differ. Not normalized by slice length.
func Hamming[T comparable](x, y []T) float64 {
	var diff float64
	for i := range x {
		if x[i] != y[i] {
			diff++
		}
	}
	return diff
}

// Levenshtein is the classic edit-distance between two strings: the
// minimum number of single-character insertions, deletions, and
// substitutions needed to turn x into y. Costs O(n*m) per pair; whether
// a Metric wrapping it is marked expensive is up to the caller of
// StringMetric or Wrap.
func Levenshtein(x, y string) float64 {
	xr, yr := []rune(x), []rune(y)
	n, m := len(xr), len(yr)
	if n == 0 {
		return float64(m)
	}
	if m == 0 {
		return float64(n)
	}

	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}

	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if xr[i-1] == yr[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = minInt(del, minInt(ins, sub))
		}
		prev, curr = curr, prev
	}
	return float64(prev[m])
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// VectorMetric resolves a named metric over float64 vectors, mirroring
// the original implementation's cheap/expensive name dispatch.
func VectorMetric(name string, expensive bool) (Metric[[]float64, float64], error) {
	switch name {
	case "euclidean":
		return Wrap("euclidean", Euclidean, expensive), nil
	case "euclideansq":
		return Wrap("euclideansq", EuclideanSquared, expensive), nil
	case "manhattan":
		return Wrap("manhattan", Manhattan, expensive), nil
	case "cosine":
		return Wrap("cosine", Cosine, expensive), nil
	case "hamming":
		return Wrap("hamming", Hamming[float64], expensive), nil
	default:
		return Metric[[]float64, float64]{}, fmt.Errorf("metric: unknown vector metric %q", name)
	}
}

// StringMetric resolves a named metric over strings.
func StringMetric(name string, expensive bool) (Metric[string, float64], error) {
	switch name {
	case "levenshtein":
		return Wrap("levenshtein", Levenshtein, expensive), nil
	default:
		return Metric[string, float64]{}, fmt.Errorf("metric: unknown string metric %q", name)
	}
}
