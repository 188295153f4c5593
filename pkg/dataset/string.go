package dataset

import (
	"github.com/TobiSchelling/cakes/pkg/metric"
	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// StringDataset is an in-memory Dataset backing over strings, the
// backing used for edit-distance workloads (DNA/protein sequences, free
// text) under the Levenshtein metric.
type StringDataset[U numeric.Number] struct {
	vals       []string
	metric     metric.Metric[string, U]
	toCurrent  []int // toCurrent[original] = current location
	toOriginal []int // toOriginal[current] = original index
	cache      *distanceCache[U]
}

// NewStringDataset wraps vals under m. If withCache is true, one_to_one
// results are memoized behind a sync.RWMutex — worthwhile here since
// Levenshtein costs O(n*m) per pair.
func NewStringDataset[U numeric.Number](vals []string, m metric.Metric[string, U], withCache bool) *StringDataset[U] {
	toCurrent := make([]int, len(vals))
	toOriginal := make([]int, len(vals))
	for i := range toCurrent {
		toCurrent[i] = i
		toOriginal[i] = i
	}
	var cache *distanceCache[U]
	if withCache {
		cache = newDistanceCache[U]()
	}
	return &StringDataset[U]{vals: vals, metric: m, toCurrent: toCurrent, toOriginal: toOriginal, cache: cache}
}

func (d *StringDataset[U]) Cardinality() int { return len(d.vals) }

// Dimensionality is meaningless for variable-length strings.
func (d *StringDataset[U]) Dimensionality() int { return 0 }

func (d *StringDataset[U]) Get(i int) string { return d.vals[i] }

func (d *StringDataset[U]) IsMetricExpensive() bool { return d.metric.IsExpensive() }

func (d *StringDataset[U]) OneToOne(i, j int) U {
	if i == j {
		return numeric.Zero[U]()
	}
	if d.cache != nil {
		if v, ok := d.cache.get(i, j); ok {
			return v
		}
	}
	v := d.metric.Distance(d.vals[i], d.vals[j])
	if d.cache != nil {
		d.cache.put(i, j, v)
	}
	return v
}

func (d *StringDataset[U]) OneToMany(i int, js []int) []U {
	out := make([]U, len(js))
	for k, j := range js {
		out[k] = d.OneToOne(i, j)
	}
	return out
}

func (d *StringDataset[U]) QueryToOne(q string, i int) U {
	return d.metric.Distance(q, d.vals[i])
}

func (d *StringDataset[U]) QueryToMany(q string, is []int) []U {
	out := make([]U, len(is))
	for k, i := range is {
		out[k] = d.metric.Distance(q, d.vals[i])
	}
	return out
}

func (d *StringDataset[U]) Swap(i, j int) {
	d.vals[i], d.vals[j] = d.vals[j], d.vals[i]
	oi, oj := d.toOriginal[i], d.toOriginal[j]
	d.toOriginal[i], d.toOriginal[j] = oj, oi
	d.toCurrent[oi], d.toCurrent[oj] = j, i
	if d.cache != nil {
		d.cache.invalidate()
	}
}

// SetPermutation rewrites the backing so that the instance currently at
// perm[newIdx] moves to newIdx, and composes the original-index tracking
// accordingly.
func (d *StringDataset[U]) SetPermutation(perm []int) {
	newVals := make([]string, len(perm))
	newToOriginal := make([]int, len(perm))
	for newIdx, oldIdx := range perm {
		newVals[newIdx] = d.vals[oldIdx]
		newToOriginal[newIdx] = d.toOriginal[oldIdx]
	}
	d.vals = newVals
	d.toOriginal = newToOriginal

	newToCurrent := make([]int, len(perm))
	for newIdx, original := range newToOriginal {
		newToCurrent[original] = newIdx
	}
	d.toCurrent = newToCurrent

	if d.cache != nil {
		d.cache.invalidate()
	}
}

func (d *StringDataset[U]) GetReorderedIndex(i int) int { return d.toCurrent[i] }

func (d *StringDataset[U]) ChooseUnique(n int, pool []int, seed int64) []int {
	return chooseUnique(n, pool, seed, func(i, j int) bool {
		return d.OneToOne(i, j) == numeric.Zero[U]()
	})
}

func (d *StringDataset[U]) Median(is []int) int {
	return median(is, func(i, j int) U { return d.OneToOne(i, j) })
}
