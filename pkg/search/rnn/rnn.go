// Package rnn implements range-search (radius-bounded nearest neighbors):
// an exhaustive linear baseline and a tree-guided clustered search that
// prunes subtrees via the triangle inequality (§4.9) before falling back
// to a linear filter only over clusters straddling the query ball.
package rnn

import (
	"github.com/TobiSchelling/cakes/internal/cakeserr"
	"github.com/TobiSchelling/cakes/pkg/cluster"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// Algorithm selects which RNN strategy Search runs.
type Algorithm int

const (
	Linear Algorithm = iota
	Clustered
)

// Hit is one (index, distance) result pair.
type Hit[U numeric.Number] struct {
	Index    int
	Distance U
}

// Search dispatches to LinearSearch or ClusteredSearch. radius must be
// non-negative.
func Search[T any, U numeric.Number](d dataset.Dataset[T, U], root *cluster.Cluster[T, U], q T, radius U, algo Algorithm) ([]Hit[U], error) {
	if radius < numeric.Zero[U]() {
		return nil, cakeserr.Argument("rnn: radius %v is negative", radius)
	}
	switch algo {
	case Linear:
		return LinearSearch(d, q, radius), nil
	case Clustered:
		return ClusteredSearch(d, root, q, radius), nil
	default:
		return nil, cakeserr.Argument("rnn: unknown algorithm %d", int(algo))
	}
}

// LinearSearch computes the distance from q to every instance and keeps
// those within radius. The distances come from dataset.ParallelQueryToMany,
// which fans out across goroutines only when the dataset's metric is
// expensive and the dataset holds at least 2000 instances (§4.10).
func LinearSearch[T any, U numeric.Number](d dataset.Dataset[T, U], q T, radius U) []Hit[U] {
	n := d.Cardinality()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	dists := dataset.ParallelQueryToMany(d, q, indices)

	var hits []Hit[U]
	for i, dist := range dists {
		if dist <= radius {
			hits = append(hits, Hit[U]{Index: i, Distance: dist})
		}
	}
	return hits
}

type confirmedEntry[T any, U numeric.Number] struct {
	c    *cluster.Cluster[T, U]
	dist U
}

// ClusteredSearch implements the two-phase tree+leaf search of §4.10.
func ClusteredSearch[T any, U numeric.Number](d dataset.Dataset[T, U], root *cluster.Cluster[T, U], q T, radius U) []Hit[U] {
	var confirmed []confirmedEntry[T, U]
	var straddlers []*cluster.Cluster[T, U]

	queue := []*cluster.Cluster[T, U]{root}
	for len(queue) > 0 {
		var next []*cluster.Cluster[T, U]
		for _, c := range queue {
			dist := c.DistanceToInstance(d, q)
			if dist > c.Radius()+radius {
				continue // disjoint
			}
			if c.Radius()+dist <= radius {
				confirmed = append(confirmed, confirmedEntry[T, U]{c: c, dist: dist})
				continue
			}
			if c.IsLeaf() {
				straddlers = append(straddlers, c)
				continue
			}
			next = append(next, c.OverlappingChildren(d, q, radius)...)
		}
		queue = next
	}

	var hits []Hit[U]
	for _, entry := range confirmed {
		members := entry.c.Indices()
		if entry.c.Radius() == numeric.Zero[U]() {
			for _, m := range members {
				hits = append(hits, Hit[U]{Index: m, Distance: entry.dist})
			}
			continue
		}
		dists := d.QueryToMany(q, members)
		for i, m := range members {
			hits = append(hits, Hit[U]{Index: m, Distance: dists[i]})
		}
	}

	if len(straddlers) > 0 {
		var members []int
		for _, c := range straddlers {
			members = append(members, c.Indices()...)
		}
		dists := d.QueryToMany(q, members)
		for i, m := range members {
			if dists[i] <= radius {
				hits = append(hits, Hit[U]{Index: m, Distance: dists[i]})
			}
		}
	}

	return hits
}
