package dataset

import (
	"runtime"
	"sync"

	"github.com/TobiSchelling/cakes/pkg/numeric"
)

// serialThreshold is the batch size below which a fan-out runs serially
// even over an expensive metric, and above which a cheap metric still
// runs serially (per §4.3, "a few thousand").
const serialThreshold = 2000

// ParallelQueryToMany computes d.QueryToMany(q, is) for large batches
// over an expensive metric by splitting is into per-CPU chunks and
// fanning them out across goroutines, joining with a WaitGroup; small
// batches or cheap metrics run the single-shot serial path instead.
func ParallelQueryToMany[T any, U numeric.Number](d Dataset[T, U], q T, is []int) []U {
	if !d.IsMetricExpensive() || len(is) < serialThreshold {
		return d.QueryToMany(q, is)
	}

	workers := runtime.NumCPU()
	if workers > len(is) {
		workers = len(is)
	}
	out := make([]U, len(is))
	chunk := (len(is) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(is); start += chunk {
		end := start + chunk
		if end > len(is) {
			end = len(is)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			part := d.QueryToMany(q, is[start:end])
			copy(out[start:end], part)
		}(start, end)
	}
	wg.Wait()
	return out
}
