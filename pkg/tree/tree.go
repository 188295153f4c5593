// Package tree owns a Dataset and its root Cluster, and orchestrates the
// depth-first reorder that gives the reordered dataset cache-friendly
// contiguous subtree ranges.
package tree

import (
	"github.com/TobiSchelling/cakes/internal/cakeserr"
	"github.com/TobiSchelling/cakes/pkg/cluster"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// Tree owns a Dataset and the root of its partition.
type Tree[T any, U numeric.Number] struct {
	data dataset.Dataset[T, U]
	root *cluster.Cluster[T, U]
}

// New validates that d is non-empty, builds an unpartitioned root over
// all of its members, and returns the owning Tree. Partition must be
// called before the tree is searched.
func New[T any, U numeric.Number](d dataset.Dataset[T, U], seed int64) (*Tree[T, U], error) {
	n := d.Cardinality()
	if n == 0 {
		return nil, cakeserr.Argument("tree: dataset is empty")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	root := cluster.NewRoot[T, U](indices, seed)
	root.Build(d)

	return &Tree[T, U]{data: d, root: root}, nil
}

// Partition recursively partitions the tree's root under criteria. When
// parallel is true, subtrees are partitioned concurrently.
func (t *Tree[T, U]) Partition(criteria cluster.Criteria[T, U], parallel bool) {
	t.root.Partition(t.data, criteria, true, parallel)
}

// Root returns the tree's root cluster.
func (t *Tree[T, U]) Root() *cluster.Cluster[T, U] { return t.root }

// Data returns the tree's underlying dataset.
func (t *Tree[T, U]) Data() dataset.Dataset[T, U] { return t.data }

// Depth is the root's maximum leaf depth.
func (t *Tree[T, U]) Depth() int {
	return maxLeafDepth(t.root)
}

func maxLeafDepth[T any, U numeric.Number](c *cluster.Cluster[T, U]) int {
	if c.IsLeaf() {
		return c.Depth()
	}
	left, right := c.Children()
	ld, rd := maxLeafDepth(left), maxLeafDepth(right)
	if ld > rd {
		return ld
	}
	return rd
}

// Radius is the root cluster's radius.
func (t *Tree[T, U]) Radius() U { return t.root.Radius() }

// Indices returns the tree's member indices in their current order
// (depth-first pre-reorder, or the contiguous [0, N) range post-reorder).
func (t *Tree[T, U]) Indices() []int { return t.root.Indices() }

// DepthFirstReorder walks the tree's leaves left-to-right to build a
// permutation of [0, N), applies it to the dataset, and transitions every
// cluster to the Offset index representation (§4.8). A no-op if the tree
// has already been reordered.
func (t *Tree[T, U]) DepthFirstReorder() {
	if t.root.IsReordered() {
		return
	}
	perm := t.root.Indices()
	t.data.SetPermutation(perm)
	t.root.ApplyReorder(t.data, 0)
}
