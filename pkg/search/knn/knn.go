// Package knn implements k-nearest-neighbor search: an exhaustive linear
// baseline, an adaptive-radius loop built on repeated range search, and a
// best-first sieve over a priority queue of clusters. All three are
// exact under a true distance metric and agree up to ties at the kth
// distance (§4.11); this implementation resolves that tie ambiguity the
// same way in all three algorithms — keep every element tied with the
// kth distance, never an arbitrary subset of them.
package knn

import (
	"container/heap"
	"math"
	"sort"

	"github.com/TobiSchelling/cakes/internal/cakeserr"
	"github.com/TobiSchelling/cakes/pkg/cluster"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/helpers"
	"github.com/TobiSchelling/cakes/pkg/numeric"
	"github.com/TobiSchelling/cakes/pkg/search/rnn"
)

// Algorithm selects which KNN strategy Search runs.
type Algorithm int

const (
	Linear Algorithm = iota
	RepeatedRnn
	Sieve
)

// Hit is one (index, distance) result pair.
type Hit[U numeric.Number] struct {
	Index    int
	Distance U
}

// Search dispatches to LinearSearch, RepeatedRnnSearch, or SieveSearch.
// k must be positive; k > cardinality returns all instances sorted by
// distance.
func Search[T any, U numeric.Number](d dataset.Dataset[T, U], root *cluster.Cluster[T, U], q T, k int, algo Algorithm) ([]Hit[U], error) {
	if k <= 0 {
		return nil, cakeserr.Argument("knn: k must be positive, got %d", k)
	}
	n := d.Cardinality()
	if k >= n {
		return allSorted(d, q), nil
	}

	switch algo {
	case Linear:
		return LinearSearch(d, q, k), nil
	case RepeatedRnn:
		return RepeatedRnnSearch(d, root, q, k), nil
	case Sieve:
		return SieveSearch(d, root, q, k), nil
	default:
		return nil, cakeserr.Argument("knn: unknown algorithm %d", int(algo))
	}
}

func allSorted[T any, U numeric.Number](d dataset.Dataset[T, U], q T) []Hit[U] {
	n := d.Cardinality()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	dists := dataset.ParallelQueryToMany(d, q, indices)
	hits := make([]Hit[U], n)
	for i, dist := range dists {
		hits[i] = Hit[U]{Index: i, Distance: dist}
	}
	sortHits(hits)
	return hits
}

func sortHits[U numeric.Number](hits []Hit[U]) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Index < hits[j].Index
	})
}

// tieCutoff sorts hits ascending by (distance, index) and keeps the
// smallest k, extending the cut to include every further element tied
// with the kth distance.
func tieCutoff[U numeric.Number](hits []Hit[U], k int) []Hit[U] {
	sortHits(hits)
	if k >= len(hits) {
		return hits
	}
	end := k
	cutoff := hits[k-1].Distance
	for end < len(hits) && hits[end].Distance == cutoff {
		end++
	}
	return hits[:end]
}

// LinearSearch computes the distance from q to every instance and keeps
// the k smallest (with tie expansion at the cutoff).
func LinearSearch[T any, U numeric.Number](d dataset.Dataset[T, U], q T, k int) []Hit[U] {
	n := d.Cardinality()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	dists := dataset.ParallelQueryToMany(d, q, indices)
	hits := make([]Hit[U], n)
	for i, dist := range dists {
		hits[i] = Hit[U]{Index: i, Distance: dist}
	}
	return tieCutoff(hits, k)
}

const epsilon = 1e-9

// RepeatedRnnSearch grows a range-search radius until it captures at
// least k hits, re-estimating local fractal dimension from the current
// hits after every shortfall (§4.11/§4.12).
func RepeatedRnnSearch[T any, U numeric.Number](d dataset.Dataset[T, U], root *cluster.Cluster[T, U], q T, k int) []Hit[U] {
	n := d.Cardinality()
	f := 100.0
	if n >= 1_000_000 {
		f = 1000.0
	}
	r := math.Max(numeric.AsFloat64(root.Radius())/f, epsilon)

	for {
		rnnHits := rnn.ClusteredSearch(d, root, q, numeric.FromFloat64[U](r))
		if len(rnnHits) >= k {
			hits := make([]Hit[U], len(rnnHits))
			for i, h := range rnnHits {
				hits[i] = Hit[U]{Index: h.Index, Distance: h.Distance}
			}
			return tieCutoff(hits, k)
		}

		dists := make([]float64, len(rnnHits))
		for i, h := range rnnHits {
			dists[i] = numeric.AsFloat64(h.Distance)
		}
		lfd := helpers.EstimateLFDFromSorted(dists, r)

		factor := math.Pow(float64(k)/math.Max(float64(len(rnnHits)), 1), 1.0/lfd)
		if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 1 {
			factor = 1 + 1e-6
		}
		if factor > 2 {
			factor = 2
		}
		r *= factor
	}
}

type clusterEntry[T any, U numeric.Number] struct {
	c     *cluster.Cluster[T, U]
	bound U
}

// clusterHeap is a min-heap over clusterEntry by lower bound.
type clusterHeap[T any, U numeric.Number] []*clusterEntry[T, U]

func (h clusterHeap[T, U]) Len() int            { return len(h) }
func (h clusterHeap[T, U]) Less(i, j int) bool  { return h[i].bound < h[j].bound }
func (h clusterHeap[T, U]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *clusterHeap[T, U]) Push(x interface{}) { *h = append(*h, x.(*clusterEntry[T, U])) }
func (h *clusterHeap[T, U]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// candHeap is a max-heap over Hit by distance, used only to cheaply track
// the current k-th-best upper bound during the sieve.
type candHeap[U numeric.Number] []Hit[U]

func (h candHeap[U]) Len() int            { return len(h) }
func (h candHeap[U]) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h candHeap[U]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candHeap[U]) Push(x interface{}) { *h = append(*h, x.(Hit[U])) }
func (h *candHeap[U]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// SieveSearch is the best-first sieve: a priority queue over clusters
// keyed by an optimistic lower bound, expanding the smallest bound first
// and tracking a size-k max-heap of the best candidates found so far
// purely to know when no unexpanded cluster can beat or tie the current
// k-th best (§4.11).
func SieveSearch[T any, U numeric.Number](d dataset.Dataset[T, U], root *cluster.Cluster[T, U], q T, k int) []Hit[U] {
	bound := func(c *cluster.Cluster[T, U]) U {
		dist := c.DistanceToInstance(d, q)
		b := dist - c.Radius()
		if b < numeric.Zero[U]() {
			return numeric.Zero[U]()
		}
		return b
	}

	pq := &clusterHeap[T, U]{&clusterEntry[T, U]{c: root, bound: bound(root)}}
	heap.Init(pq)

	best := &candHeap[U]{}
	var all []Hit[U]

	for pq.Len() > 0 {
		top := (*pq)[0]
		if best.Len() >= k && (*best)[0].Distance < top.bound {
			break
		}
		entry := heap.Pop(pq).(*clusterEntry[T, U])
		c := entry.c

		if c.IsLeaf() {
			members := c.Indices()
			dists := d.QueryToMany(q, members)
			for i, m := range members {
				h := Hit[U]{Index: m, Distance: dists[i]}
				all = append(all, h)
				heap.Push(best, h)
				if best.Len() > k {
					heap.Pop(best)
				}
			}
			continue
		}

		left, right := c.Children()
		heap.Push(pq, &clusterEntry[T, U]{c: left, bound: bound(left)})
		heap.Push(pq, &clusterEntry[T, U]{c: right, bound: bound(right)})
	}

	return tieCutoff(all, k)
}
