// Package dataset provides concrete Dataset capability backings — ordered,
// permutable collections of instances with one-to-one, one-to-many, and
// query-to-many distance fan-outs. The cluster and tree packages depend
// only on the Dataset interface defined here; VectorDataset and
// StringDataset are two concrete instances used by the CLI, the demo
// server, and the test suite.
package dataset

import (
	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// Dataset is the capability the core clustering and search packages
// require: indexed access to instances, the four distance fan-outs,
// permutation support, and the sampling primitives used by Cluster.Build.
type Dataset[T any, U numeric.Number] interface {
	// Cardinality is the number of instances, N.
	Cardinality() int
	// Dimensionality is the per-instance dimensionality, or 0 when
	// meaningless for the backing (e.g. variable-length strings).
	Dimensionality() int
	// Get returns the instance at index i, i ∈ [0, Cardinality()).
	Get(i int) T

	OneToOne(i, j int) U
	OneToMany(i int, js []int) []U
	QueryToOne(q T, i int) U
	QueryToMany(q T, is []int) []U

	// IsMetricExpensive hints whether fan-outs should parallelize.
	IsMetricExpensive() bool

	// Swap exchanges the instances at i and j in the backing storage.
	// Must be O(1) on in-memory backings.
	Swap(i, j int)
	// SetPermutation rewrites the backing storage so that instance
	// formerly at perm[i] is now at i. Must be O(N) on in-memory
	// backings.
	SetPermutation(perm []int)
	// GetReorderedIndex maps an original (pre-reorder) index to its
	// current location after SetPermutation has been applied.
	GetReorderedIndex(i int) int

	// ChooseUnique returns up to n indices drawn from pool, skipping
	// duplicates under zero-distance equivalence, deterministic under
	// seed.
	ChooseUnique(n int, pool []int, seed int64) []int
	// Median returns the index within is whose instance minimizes the
	// sum of distances to the other members of is. Ties break on the
	// smallest index.
	Median(is []int) int
}
