package dataset

import (
	"math/rand"

	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// chooseUnique draws up to n indices from pool, skipping members that are
// zero-distance equivalent (per eq) to one already chosen, deterministic
// under seed. Shared by VectorDataset and StringDataset so both honor the
// same "skip duplicates under zero-distance equivalence" contract with one
// implementation.
func chooseUnique(n int, pool []int, seed int64, eq func(i, j int) bool) []int {
	if n > len(pool) {
		n = len(pool)
	}

	order := make([]int, len(pool))
	copy(order, pool)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })

	chosen := make([]int, 0, n)
	for _, candidate := range order {
		dup := false
		for _, c := range chosen {
			if eq(candidate, c) {
				dup = true
				break
			}
		}
		if !dup {
			chosen = append(chosen, candidate)
		}
		if len(chosen) == n {
			break
		}
	}
	return chosen
}

// median returns the index within is whose instance minimizes the sum of
// distances to the other members of is, ties breaking on the smallest
// index. dist computes the distance between two members of is by index.
func median[U numeric.Number](is []int, dist func(i, j int) U) int {
	best := is[0]
	bestSum := numeric.Zero[U]()
	first := true

	for _, i := range is {
		var sum U
		for _, j := range is {
			if i == j {
				continue
			}
			sum += dist(i, j)
		}
		if first || sum < bestSum || (sum == bestSum && i < best) {
			best, bestSum, first = i, sum, false
		}
	}
	return best
}
