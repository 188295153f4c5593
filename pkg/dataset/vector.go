package dataset

import (
	"github.com/TobiSchelling/cakes/pkg/metric"
	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// VectorDataset is an in-memory Dataset backing over fixed-length float64
// vectors. Swap is an O(1) row-pointer swap; SetPermutation is an O(N)
// rewrite, matching the Dataset capability's complexity contract.
type VectorDataset[U numeric.Number] struct {
	rows       [][]float64
	metric     metric.Metric[[]float64, U]
	toCurrent  []int // toCurrent[original] = current location
	toOriginal []int // toOriginal[current] = original index
	cache      *distanceCache[U]
}

// NewVectorDataset wraps rows under m. If withCache is true, one_to_one
// results are memoized behind a sync.RWMutex.
func NewVectorDataset[U numeric.Number](rows [][]float64, m metric.Metric[[]float64, U], withCache bool) *VectorDataset[U] {
	toCurrent := make([]int, len(rows))
	toOriginal := make([]int, len(rows))
	for i := range toCurrent {
		toCurrent[i] = i
		toOriginal[i] = i
	}
	var cache *distanceCache[U]
	if withCache {
		cache = newDistanceCache[U]()
	}
	return &VectorDataset[U]{rows: rows, metric: m, toCurrent: toCurrent, toOriginal: toOriginal, cache: cache}
}

func (d *VectorDataset[U]) Cardinality() int { return len(d.rows) }

func (d *VectorDataset[U]) Dimensionality() int {
	if len(d.rows) == 0 {
		return 0
	}
	return len(d.rows[0])
}

func (d *VectorDataset[U]) Get(i int) []float64 { return d.rows[i] }

func (d *VectorDataset[U]) IsMetricExpensive() bool { return d.metric.IsExpensive() }

func (d *VectorDataset[U]) OneToOne(i, j int) U {
	if i == j {
		return numeric.Zero[U]()
	}
	if d.cache != nil {
		if v, ok := d.cache.get(i, j); ok {
			return v
		}
	}
	v := d.metric.Distance(d.rows[i], d.rows[j])
	if d.cache != nil {
		d.cache.put(i, j, v)
	}
	return v
}

func (d *VectorDataset[U]) OneToMany(i int, js []int) []U {
	out := make([]U, len(js))
	for k, j := range js {
		out[k] = d.OneToOne(i, j)
	}
	return out
}

func (d *VectorDataset[U]) QueryToOne(q []float64, i int) U {
	return d.metric.Distance(q, d.rows[i])
}

func (d *VectorDataset[U]) QueryToMany(q []float64, is []int) []U {
	out := make([]U, len(is))
	for k, i := range is {
		out[k] = d.metric.Distance(q, d.rows[i])
	}
	return out
}

func (d *VectorDataset[U]) Swap(i, j int) {
	d.rows[i], d.rows[j] = d.rows[j], d.rows[i]
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
func (d *VectorDataset[U]) SetPermutation(perm []int) {
	newRows := make([][]float64, len(perm))
	newToOriginal := make([]int, len(perm))
	for newIdx, oldIdx := range perm {
		newRows[newIdx] = d.rows[oldIdx]
		newToOriginal[newIdx] = d.toOriginal[oldIdx]
	}
	d.rows = newRows
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

func (d *VectorDataset[U]) GetReorderedIndex(i int) int { return d.toCurrent[i] }

func (d *VectorDataset[U]) ChooseUnique(n int, pool []int, seed int64) []int {
	return chooseUnique(n, pool, seed, func(i, j int) bool {
		return d.OneToOne(i, j) == numeric.Zero[U]()
	})
}

func (d *VectorDataset[U]) Median(is []int) int {
	return median(is, func(i, j int) U { return d.OneToOne(i, j) })
}
