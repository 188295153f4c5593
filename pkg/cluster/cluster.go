// Package cluster implements the hierarchical divisive clustering node at
// the heart of the engine: build (center/radius/local-fractal-dimension),
// two-pole partition, depth-first traversal, and the triangle-inequality
// overlap test that the range and k-nearest search algorithms drive.
package cluster

import (
	"sync"

	"github.com/TobiSchelling/cakes/internal/cakeserr"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/helpers"
	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// indexState is the sum type named in the design: a cluster's member set
// is reachable one of three ways depending on lifecycle stage.
type indexState int

const (
	// stateIndices: a leaf, pre-reorder, owns its explicit member list.
	stateIndices indexState = iota
	// stateEmpty: an internal node, pre-reorder; members are reachable
	// only by descending into children.
	stateEmpty
	// stateOffset: any node, post-reorder; members occupy a contiguous
	// range [offset, offset+cardinality) of the reordered dataset.
	stateOffset
)

// Criteria decides whether a cluster may split. Defined here (rather than
// imported from pkg/criteria) so that pkg/criteria can depend on
// pkg/cluster without a cycle.
type Criteria[T any, U numeric.Number] interface {
	Check(c *Cluster[T, U]) bool
}

// Cluster is a node in the binary partition tree over a Dataset.
type Cluster[T any, U numeric.Number] struct {
	history     History
	cardinality int

	built     bool
	argCenter int
	argRadius int
	radius    U
	lfd       float64
	seed      int64

	state   indexState
	indices []int
	offset  int

	polarDistance U
	leftPoleIdx   int
	rightPoleIdx  int
	left          *Cluster[T, U]
	right         *Cluster[T, U]
}

// NewRoot creates the unbuilt root cluster owning the full index set.
// Build must be called before Partition or any geometric query.
func NewRoot[T any, U numeric.Number](indices []int, seed int64) *Cluster[T, U] {
	owned := make([]int, len(indices))
	copy(owned, indices)
	return &Cluster[T, U]{
		history:     RootHistory(),
		cardinality: len(owned),
		state:       stateIndices,
		indices:     owned,
		seed:        seed,
	}
}

func newChild[T any, U numeric.Number](h History, indices []int, seed int64) *Cluster[T, U] {
	return &Cluster[T, U]{
		history:     h,
		cardinality: len(indices),
		state:       stateIndices,
		indices:     indices,
		seed:        seed,
	}
}

// Build picks the cluster's center from a sample of its members (all of
// them below the sampling threshold S = 100), then computes the radius
// and local fractal dimension from the distances of every member to that
// center. Panics if called twice, or if the cluster is not in the
// Indices state (i.e. already partitioned).
func (c *Cluster[T, U]) Build(d dataset.Dataset[T, U]) {
	if c.built {
		panic(cakeserr.Lifecycle("cluster %s: Build called twice", c.Name()))
	}
	if c.state != stateIndices {
		panic(cakeserr.Lifecycle("cluster %s: Build called outside the Indices state", c.Name()))
	}
	if len(c.indices) == 0 {
		panic(cakeserr.State("cluster %s: Build called with an empty index set", c.Name()))
	}

	const sampleThreshold = 100
	var sample []int
	if len(c.indices) < sampleThreshold {
		sample = c.indices
	} else {
		n := isqrt(len(c.indices))
		sample = d.ChooseUnique(n, c.indices, c.seed)
	}

	c.argCenter = d.Median(sample)
	dists := d.OneToMany(c.argCenter, c.indices)
	k, radius := helpers.ArgMax(dists)
	c.argRadius = c.indices[k]
	c.radius = radius
	c.lfd = helpers.EstimateLFD(dists, radius)
	c.built = true
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	r := 0
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// Cardinality is the number of instances owned by this cluster.
func (c *Cluster[T, U]) Cardinality() int { return c.cardinality }

// ArgCenter is the dataset index of the cluster's center instance.
func (c *Cluster[T, U]) ArgCenter() int { return c.argCenter }

// ArgRadius is the dataset index of the instance farthest from the center.
func (c *Cluster[T, U]) ArgRadius() int { return c.argRadius }

// Radius is the distance from the center to ArgRadius.
func (c *Cluster[T, U]) Radius() U { return c.radius }

// LFD is the local fractal dimension estimated at the cluster's radius.
func (c *Cluster[T, U]) LFD() float64 { return c.lfd }

// History is the cluster's bit-string name.
func (c *Cluster[T, U]) History() History { return c.history }

// Name is the hex rendering of History.
func (c *Cluster[T, U]) Name() string { return c.history.Name() }

// Depth is the cluster's depth in the tree; the root has depth 0.
func (c *Cluster[T, U]) Depth() int { return c.history.Depth() }

// IsLeaf reports whether the cluster has no children.
func (c *Cluster[T, U]) IsLeaf() bool { return c.left == nil }

// Children returns the left and right children. Panics if called on a
// leaf.
func (c *Cluster[T, U]) Children() (left, right *Cluster[T, U]) {
	if c.IsLeaf() {
		panic(cakeserr.Lifecycle("cluster %s: Children called on a leaf", c.Name()))
	}
	return c.left, c.right
}

// PolarDistance is the distance between the two poles recorded at
// partition time. Panics if called on a leaf.
func (c *Cluster[T, U]) PolarDistance() U {
	if c.IsLeaf() {
		panic(cakeserr.Lifecycle("cluster %s: PolarDistance called on a leaf", c.Name()))
	}
	return c.polarDistance
}

// Indices returns the cluster's member indices. For a pre-reorder
// internal node this performs a depth-first traversal concatenating
// descendants; after reorder it reconstructs the contiguous offset
// range.
func (c *Cluster[T, U]) Indices() []int {
	switch c.state {
	case stateIndices:
		out := make([]int, len(c.indices))
		copy(out, c.indices)
		return out
	case stateOffset:
		out := make([]int, c.cardinality)
		for i := range out {
			out[i] = c.offset + i
		}
		return out
	case stateEmpty:
		if c.IsLeaf() {
			panic(cakeserr.State("cluster %s: Empty state but no children", c.Name()))
		}
		left := c.left.Indices()
		right := c.right.Indices()
		return append(left, right...)
	default:
		panic(cakeserr.State("cluster %s: unrecognized index state", c.Name()))
	}
}

// DistanceToInstance is the distance from the cluster's center to an
// arbitrary query instance.
func (c *Cluster[T, U]) DistanceToInstance(d dataset.Dataset[T, U], q T) U {
	return d.QueryToOne(q, c.argCenter)
}

// DistanceToOther is the distance between this cluster's center and
// another cluster's center.
func (c *Cluster[T, U]) DistanceToOther(d dataset.Dataset[T, U], other *Cluster[T, U]) U {
	return d.OneToOne(c.argCenter, other.argCenter)
}

// OverlappingChildren applies the triangle-inequality pruning test of
// §4.9: given the query's distance to each pole and the polar distance,
// it returns either both children or only the one ("near") whose pole is
// closer to the query. Panics if called on a leaf.
func (c *Cluster[T, U]) OverlappingChildren(d dataset.Dataset[T, U], q T, radius U) []*Cluster[T, U] {
	if c.IsLeaf() {
		panic(cakeserr.Lifecycle("cluster %s: OverlappingChildren called on a leaf", c.Name()))
	}

	dL := d.QueryToOne(q, c.leftPoleIdx)
	dR := d.QueryToOne(q, c.rightPoleIdx)

	var near *Cluster[T, U]
	var dNear, dFar U
	if dL <= dR {
		near, dNear = c.left, dL
		dFar = dR
	} else {
		near, dNear = c.right, dR
		dFar = dL
	}

	lhs := (dNear + dFar) * (dFar - dNear)
	rhs := 2 * c.polarDistance * radius
	if lhs <= rhs {
		return []*Cluster[T, U]{c.left, c.right}
	}
	return []*Cluster[T, U]{near}
}

// Partition runs the two-pole split (§4.6) if criteria allows it,
// otherwise the cluster remains a leaf. A degenerate cluster (cardinality
// < 2 or radius 0) can never split regardless of criteria, matching the
// singleton/duplicate boundary case. When recursive, both children are
// partitioned under the same criteria; when parallel, the two subtrees
// are partitioned concurrently via fork-join. Panics if Build has not
// been called, or if the cluster has already been partitioned.
func (c *Cluster[T, U]) Partition(d dataset.Dataset[T, U], criteria Criteria[T, U], recursive, parallel bool) {
	if !c.built {
		panic(cakeserr.Lifecycle("cluster %s: Partition called before Build", c.Name()))
	}
	if c.state != stateIndices {
		panic(cakeserr.Lifecycle("cluster %s: Partition called on an already-partitioned cluster", c.Name()))
	}
	if !criteria.Check(c) {
		return
	}
	if c.cardinality < 2 || c.radius == numeric.Zero[U]() {
		return
	}

	c.partitionOnce(d)

	if !recursive {
		return
	}
	if parallel {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.left.Partition(d, criteria, true, true)
		}()
		go func() {
			defer wg.Done()
			c.right.Partition(d, criteria, true, true)
		}()
		wg.Wait()
		return
	}
	c.left.Partition(d, criteria, true, false)
	c.right.Partition(d, criteria, true, false)
}

func (c *Cluster[T, U]) partitionOnce(d dataset.Dataset[T, U]) {
	members := c.indices

	leftPole := c.argRadius
	L := d.OneToMany(leftPole, members)
	kRight, polarDistance := helpers.ArgMax(L)
	rightPole := members[kRight]
	R := d.OneToMany(rightPole, members)

	var leftBucket, rightBucket []int
	for i, member := range members {
		if member == leftPole || member == rightPole {
			continue
		}
		if L[i] <= R[i] {
			leftBucket = append(leftBucket, member)
		} else {
			rightBucket = append(rightBucket, member)
		}
	}
	leftBucket = append(leftBucket, leftPole)
	rightBucket = append(rightBucket, rightPole)

	if len(leftBucket) < len(rightBucket) {
		leftBucket, rightBucket = rightBucket, leftBucket
		leftPole, rightPole = rightPole, leftPole
	}

	c.leftPoleIdx = leftPole
	c.rightPoleIdx = rightPole
	c.polarDistance = polarDistance

	c.left = newChild[T, U](c.history.Child(false), leftBucket, c.seed)
	c.right = newChild[T, U](c.history.Child(true), rightBucket, c.seed)
	c.left.Build(d)
	c.right.Build(d)

	c.state = stateEmpty
	c.indices = nil
}

// ApplyReorder transitions the cluster (and, recursively, its
// descendants) to the Offset state: arg_center and arg_radius (and the
// poles, for internal nodes) are remapped through d.GetReorderedIndex,
// and the explicit index list is dropped. Intended to be called once, on
// the root, by the owning Tree after it computes and applies the
// depth-first permutation.
func (c *Cluster[T, U]) ApplyReorder(d dataset.Dataset[T, U], offset int) {
	c.argCenter = d.GetReorderedIndex(c.argCenter)
	c.argRadius = d.GetReorderedIndex(c.argRadius)

	if !c.IsLeaf() {
		c.leftPoleIdx = d.GetReorderedIndex(c.leftPoleIdx)
		c.rightPoleIdx = d.GetReorderedIndex(c.rightPoleIdx)
	}

	c.offset = offset
	c.state = stateOffset
	c.indices = nil

	if !c.IsLeaf() {
		c.left.ApplyReorder(d, offset)
		c.right.ApplyReorder(d, offset+c.left.cardinality)
	}
}

// IsReordered reports whether ApplyReorder has run on this cluster.
func (c *Cluster[T, U]) IsReordered() bool { return c.state == stateOffset }

// Offset is the cluster's starting position in the reordered dataset.
// Only meaningful once IsReordered is true.
func (c *Cluster[T, U]) Offset() int { return c.offset }
