// Package cakes is the thin façade over a Tree named in the design: it
// owns construction (build + partition + reorder) and exposes the
// rnn_search/knn_search entry points, including their batch,
// fork-join-parallel forms over a query list.
package cakes

import (
	"sync"

	"github.com/TobiSchelling/cakes/pkg/criteria"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/numeric"
	"github.com/TobiSchelling/cakes/pkg/search/knn"
	"github.com/TobiSchelling/cakes/pkg/search/rnn"
	"github.com/TobiSchelling/cakes/pkg/tree"
)

// Facade owns a built, partitioned, and reordered Tree and exposes the
// range and k-nearest search entry points over it.
type Facade[T any, U numeric.Number] struct {
	tree *tree.Tree[T, U]
}

// New builds a Tree over d, partitions it under criteria (parallelizing
// the partition when parallel is true), and depth-first reorders it so
// every cluster's members occupy a contiguous dataset range.
func New[T any, U numeric.Number](d dataset.Dataset[T, U], seed int64, c criteria.PartitionCriteria[T, U], parallel bool) (*Facade[T, U], error) {
	t, err := tree.New[T, U](d, seed)
	if err != nil {
		return nil, err
	}
	t.Partition(c, parallel)
	t.DepthFirstReorder()
	return &Facade[T, U]{tree: t}, nil
}

// Tree returns the underlying Tree.
func (f *Facade[T, U]) Tree() *tree.Tree[T, U] { return f.tree }

// Depth is the tree's maximum leaf depth.
func (f *Facade[T, U]) Depth() int { return f.tree.Depth() }

// Radius is the root cluster's radius.
func (f *Facade[T, U]) Radius() U { return f.tree.Radius() }

// Data returns the underlying dataset.
func (f *Facade[T, U]) Data() dataset.Dataset[T, U] { return f.tree.Data() }

// RnnSearch runs a range search for query within radius using algo.
func (f *Facade[T, U]) RnnSearch(query T, radius U, algo rnn.Algorithm) ([]rnn.Hit[U], error) {
	return rnn.Search(f.tree.Data(), f.tree.Root(), query, radius, algo)
}

// KnnSearch runs a k-nearest-neighbor search for query using algo.
func (f *Facade[T, U]) KnnSearch(query T, k int, algo knn.Algorithm) ([]knn.Hit[U], error) {
	return knn.Search(f.tree.Data(), f.tree.Root(), query, k, algo)
}

// BatchRnnSearch runs RnnSearch for every query, fanning out one
// goroutine per query and joining with a WaitGroup (§5's fork-join batch
// entry point). Results align index-for-index with queries.
func (f *Facade[T, U]) BatchRnnSearch(queries []T, radius U, algo rnn.Algorithm) ([][]rnn.Hit[U], []error) {
	results := make([][]rnn.Hit[U], len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	wg.Add(len(queries))
	for i, q := range queries {
		go func(i int, q T) {
			defer wg.Done()
			results[i], errs[i] = f.RnnSearch(q, radius, algo)
		}(i, q)
	}
	wg.Wait()

	return results, errs
}

// BatchKnnSearch runs KnnSearch for every query, fanning out one
// goroutine per query and joining with a WaitGroup. Results align
// index-for-index with queries.
func (f *Facade[T, U]) BatchKnnSearch(queries []T, k int, algo knn.Algorithm) ([][]knn.Hit[U], []error) {
	results := make([][]knn.Hit[U], len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	wg.Add(len(queries))
	for i, q := range queries {
		go func(i int, q T) {
			defer wg.Done()
			results[i], errs[i] = f.KnnSearch(q, k, algo)
		}(i, q)
	}
	wg.Wait()

	return results, errs
}
