package tree

import (
	"sort"
	"testing"

	"github.com/TobiSchelling/cakes/pkg/criteria"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/metric"
)

func newFixtureTree(t *testing.T) *Tree[[]float64, float64] {
	t.Helper()
	rows := [][]float64{{10}, {1}, {-5}, {8}, {3}, {2}, {0.5}, {0}}
	m, err := metric.VectorMetric("euclidean", false)
	if err != nil {
		t.Fatalf("metric setup: %v", err)
	}
	d := dataset.NewVectorDataset(rows, m, false)
	tr, err := New[[]float64, float64](d, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestNewRejectsEmptyDataset(t *testing.T) {
	m, _ := metric.VectorMetric("euclidean", false)
	d := dataset.NewVectorDataset(nil, m, false)
	if _, err := New[[]float64, float64](d, 1); err == nil {
		t.Error("expected an error for an empty dataset")
	}
}

func TestDepthFirstReorderProducesIdentityIndices(t *testing.T) {
	tr := newFixtureTree(t)
	c := criteria.New[[]float64, float64](false).WithMaxDepth(3).WithMinCardinality(1)
	tr.Partition(c, false)

	tr.DepthFirstReorder()

	got := tr.Indices()
	for i, idx := range got {
		if idx != i {
			t.Fatalf("Indices()[%d] = %d, want %d (identity after reorder)", i, idx, i)
		}
	}
}

func TestDepthFirstReorderIsIdempotent(t *testing.T) {
	tr := newFixtureTree(t)
	c := criteria.New[[]float64, float64](false).WithMaxDepth(3).WithMinCardinality(1)
	tr.Partition(c, false)

	tr.DepthFirstReorder()
	first := tr.Indices()
	tr.DepthFirstReorder()
	second := tr.Indices()

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second DepthFirstReorder changed indices at %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestPreReorderIndicesPartitionFullRange(t *testing.T) {
	tr := newFixtureTree(t)
	c := criteria.New[[]float64, float64](false).WithMaxDepth(3).WithMinCardinality(1)
	tr.Partition(c, false)

	got := tr.Indices()
	sort.Ints(got)
	for i := range got {
		if got[i] != i {
			t.Fatalf("pre-reorder Indices() sorted = %v, want [0..8)", got)
		}
	}
}

func TestTreeDepthRespectsMaxDepth(t *testing.T) {
	tr := newFixtureTree(t)
	c := criteria.New[[]float64, float64](false).WithMaxDepth(3).WithMinCardinality(1)
	tr.Partition(c, false)

	if d := tr.Depth(); d > 3 {
		t.Errorf("tree depth = %d, want <= 3", d)
	}
}
