package knn_test

import (
	"sort"
	"testing"

	"github.com/TobiSchelling/cakes/pkg/criteria"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/metric"
	"github.com/TobiSchelling/cakes/pkg/search/knn"
	"github.com/TobiSchelling/cakes/pkg/tree"
)

func buildTree(t *testing.T, rows [][]float64) *tree.Tree[[]float64, float64] {
	t.Helper()
	m, err := metric.VectorMetric("euclidean", false)
	if err != nil {
		t.Fatalf("metric setup: %v", err)
	}
	d := dataset.NewVectorDataset(rows, m, false)
	tr, err := tree.New[[]float64, float64](d, 3)
	if err != nil {
		t.Fatalf("tree.New: %v", err)
	}
	c := criteria.New[[]float64, float64](false).WithMinCardinality(1)
	tr.Partition(c, false)
	return tr
}

func indexSet(hits []knn.Hit[float64]) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Index
	}
	sort.Ints(out)
	return out
}

func TestKGreaterThanNReturnsAllSorted(t *testing.T) {
	tr := buildTree(t, [][]float64{{0}, {1}, {2}})
	hits, err := knn.Search(tr.Data(), tr.Root(), []float64{0}, 10, knn.Linear)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("len(hits) = %d, want 3", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i-1].Distance > hits[i].Distance {
			t.Errorf("hits not sorted ascending: %v", hits)
		}
	}
}

func TestNonPositiveKIsInvalidArgument(t *testing.T) {
	tr := buildTree(t, [][]float64{{0}, {1}})
	if _, err := knn.Search(tr.Data(), tr.Root(), []float64{0}, 0, knn.Linear); err == nil {
		t.Error("expected an error for k=0")
	}
	if _, err := knn.Search(tr.Data(), tr.Root(), []float64{0}, -1, knn.Linear); err == nil {
		t.Error("expected an error for k=-1")
	}
}

func TestAllThreeAlgorithmsAgreeOnLine(t *testing.T) {
	var rows [][]float64
	for x := -50; x <= 50; x++ {
		rows = append(rows, []float64{float64(x)})
	}
	tr := buildTree(t, rows)

	for _, k := range []int{1, 3, 7, 20} {
		for _, q := range [][]float64{{0}, {25}, {-40}} {
			linear, err := knn.Search(tr.Data(), tr.Root(), q, k, knn.Linear)
			if err != nil {
				t.Fatalf("Linear: %v", err)
			}
			repeated, err := knn.Search(tr.Data(), tr.Root(), q, k, knn.RepeatedRnn)
			if err != nil {
				t.Fatalf("RepeatedRnn: %v", err)
			}
			sieve, err := knn.Search(tr.Data(), tr.Root(), q, k, knn.Sieve)
			if err != nil {
				t.Fatalf("Sieve: %v", err)
			}

			lIdx, rIdx, sIdx := indexSet(linear), indexSet(repeated), indexSet(sieve)
			if len(lIdx) != len(rIdx) || len(lIdx) != len(sIdx) {
				t.Fatalf("k=%d q=%v: length mismatch linear=%d repeated=%d sieve=%d", k, q, len(lIdx), len(rIdx), len(sIdx))
			}
			for i := range lIdx {
				if lIdx[i] != rIdx[i] || lIdx[i] != sIdx[i] {
					t.Fatalf("k=%d q=%v: index sets differ: linear=%v repeated=%v sieve=%v", k, q, lIdx, rIdx, sIdx)
				}
			}
		}
	}
}

func TestKnnTieExpansionIncludesAllTiedAtCutoff(t *testing.T) {
	// Two points equidistant from the query at the k-th position must
	// both be kept, not an arbitrary one.
	rows := [][]float64{{0}, {-1}, {1}, {5}}
	tr := buildTree(t, rows)

	hits, err := knn.Search(tr.Data(), tr.Root(), []float64{0}, 2, knn.Linear)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Index 0 at distance 0, then indices 1 and 2 tied at distance 1: k=2
	// should expand to include both ties, returning 3 hits.
	if len(hits) != 3 {
		t.Fatalf("len(hits) = %d, want 3 (tie expansion at k=2)", len(hits))
	}
}

func TestSingletonDatasetKnn(t *testing.T) {
	tr := buildTree(t, [][]float64{{42}})
	hits, err := knn.Search(tr.Data(), tr.Root(), []float64{0}, 1, knn.Linear)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Index != 0 {
		t.Fatalf("hits = %v, want a single hit at index 0", hits)
	}
}
