package cluster

import (
	"sort"
	"testing"

	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/metric"
)

// alwaysCriteria is the trivial Criteria that always allows a split,
// relying on Cluster.Partition's own degenerate-cluster guard to stop
// recursion.
type alwaysCriteria[T any, U any] struct{}

func (alwaysCriteria[T, U]) Check(_ *Cluster[T, float64]) bool { return true }

func newFixtureDataset(t *testing.T) *dataset.VectorDataset[float64] {
	t.Helper()
	rows := [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	m, err := metric.VectorMetric("euclidean", false)
	if err != nil {
		t.Fatalf("metric setup: %v", err)
	}
	return dataset.NewVectorDataset(rows, m, false)
}

func TestBuildComputesCenterRadiusLFD(t *testing.T) {
	d := newFixtureDataset(t)
	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	root.Build(d)

	if root.Cardinality() != 4 {
		t.Fatalf("Cardinality = %d, want 4", root.Cardinality())
	}
	if root.Radius() <= 0 {
		t.Errorf("Radius = %v, want > 0", root.Radius())
	}
	if root.LFD() == 0 {
		t.Errorf("LFD should not be exactly zero for a non-degenerate cluster")
	}
}

func TestBuildTwiceGivesLifecyclePanic(t *testing.T) {
	d := newFixtureDataset(t)
	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	root.Build(d)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected a panic on second Build")
		}
	}()
	root.Build(d)
}

func TestPartitionBeforeBuildPanics(t *testing.T) {
	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected a panic on Partition before Build")
		}
	}()
	root.Partition(nil, alwaysCriteria[[]float64, float64]{}, false, false)
}

func TestPartitionCreatesBalancedChildren(t *testing.T) {
	d := newFixtureDataset(t)
	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	root.Build(d)
	root.Partition(d, alwaysCriteria[[]float64, float64]{}, false, false)

	if root.IsLeaf() {
		t.Fatal("expected root to have split")
	}
	left, right := root.Children()
	if left.Cardinality() < right.Cardinality() {
		t.Errorf("left cardinality %d < right cardinality %d, want left >= right", left.Cardinality(), right.Cardinality())
	}
	if left.Cardinality()+right.Cardinality() != 4 {
		t.Errorf("children cardinalities sum to %d, want 4", left.Cardinality()+right.Cardinality())
	}
}

func TestPartitionIsSingleLevelWithoutRecursion(t *testing.T) {
	d := newFixtureDataset(t)
	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	root.Build(d)
	root.Partition(d, alwaysCriteria[[]float64, float64]{}, false, false)

	left, right := root.Children()
	if !left.IsLeaf() || !right.IsLeaf() {
		t.Error("expected children to remain leaves when recursive=false")
	}
}

func TestPartitionRecursiveSplitsToSingletons(t *testing.T) {
	d := newFixtureDataset(t)
	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	root.Build(d)
	root.Partition(d, alwaysCriteria[[]float64, float64]{}, true, false)

	var leaves []*Cluster[[]float64, float64]
	var walk func(c *Cluster[[]float64, float64])
	walk = func(c *Cluster[[]float64, float64]) {
		if c.IsLeaf() {
			leaves = append(leaves, c)
			return
		}
		left, right := c.Children()
		walk(left)
		walk(right)
	}
	walk(root)

	for _, leaf := range leaves {
		if leaf.Cardinality() != 1 {
			t.Errorf("leaf %s has cardinality %d, want 1", leaf.Name(), leaf.Cardinality())
		}
	}

	got := root.Indices()
	sort.Ints(got)
	want := []int{0, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Indices() = %v, want %v", got, want)
		}
	}
}

func TestPartitionParallelMatchesSerialStructure(t *testing.T) {
	d := newFixtureDataset(t)

	serial := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	serial.Build(d)
	serial.Partition(d, alwaysCriteria[[]float64, float64]{}, true, false)

	d2 := newFixtureDataset(t)
	parallel := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	parallel.Build(d2)
	parallel.Partition(d2, alwaysCriteria[[]float64, float64]{}, true, true)

	if serial.Name() != parallel.Name() {
		t.Fatalf("root names differ: %q vs %q", serial.Name(), parallel.Name())
	}
	sl, sr := serial.Children()
	pl, pr := parallel.Children()
	if sl.Cardinality() != pl.Cardinality() || sr.Cardinality() != pr.Cardinality() {
		t.Error("parallel partition produced a structurally different tree")
	}
}

func TestSingletonClusterCannotSplit(t *testing.T) {
	d := newFixtureDataset(t)
	root := NewRoot[[]float64, float64]([]int{2}, 1)
	root.Build(d)
	if root.Radius() != 0 {
		t.Fatalf("singleton radius = %v, want 0", root.Radius())
	}
	if root.LFD() != 1.0 {
		t.Errorf("singleton LFD = %v, want 1.0", root.LFD())
	}

	root.Partition(d, alwaysCriteria[[]float64, float64]{}, true, false)
	if !root.IsLeaf() {
		t.Error("expected a singleton cluster to remain a leaf")
	}
}

func TestDuplicateMembersBehaveAsSingleton(t *testing.T) {
	rows := [][]float64{{1, 1}, {1, 1}, {1, 1}}
	m, _ := metric.VectorMetric("euclidean", false)
	d := dataset.NewVectorDataset(rows, m, false)

	root := NewRoot[[]float64, float64]([]int{0, 1, 2}, 1)
	root.Build(d)
	if root.Radius() != 0 {
		t.Fatalf("duplicate-member radius = %v, want 0", root.Radius())
	}

	root.Partition(d, alwaysCriteria[[]float64, float64]{}, true, false)
	if !root.IsLeaf() {
		t.Error("expected a zero-radius cluster of duplicates to remain a leaf")
	}
}

func TestOverlappingChildrenPrunesFarChild(t *testing.T) {
	// Colinear points far apart so a query near one pole clearly excludes
	// the other side under a small search radius.
	rows := [][]float64{{0}, {1}, {100}, {101}}
	m, _ := metric.VectorMetric("euclidean", false)
	d := dataset.NewVectorDataset(rows, m, false)

	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	root.Build(d)
	root.Partition(d, alwaysCriteria[[]float64, float64]{}, false, false)

	kids := root.OverlappingChildren(d, []float64{0.5}, 1.0)
	if len(kids) != 1 {
		t.Fatalf("OverlappingChildren = %d children, want 1 (far side pruned)", len(kids))
	}
}

func TestOverlappingChildrenKeepsBothWhenAmbiguous(t *testing.T) {
	rows := [][]float64{{0}, {1}, {100}, {101}}
	m, _ := metric.VectorMetric("euclidean", false)
	d := dataset.NewVectorDataset(rows, m, false)

	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	root.Build(d)
	root.Partition(d, alwaysCriteria[[]float64, float64]{}, false, false)

	kids := root.OverlappingChildren(d, []float64{50}, 1000.0)
	if len(kids) != 2 {
		t.Fatalf("OverlappingChildren = %d children, want 2 with a huge radius", len(kids))
	}
}

func TestChildrenOnLeafPanics(t *testing.T) {
	d := newFixtureDataset(t)
	root := NewRoot[[]float64, float64]([]int{0}, 1)
	root.Build(d)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected a panic calling Children on a leaf")
		}
	}()
	root.Children()
}

func TestApplyReorderRemapsCenterAndOffsets(t *testing.T) {
	d := newFixtureDataset(t)
	root := NewRoot[[]float64, float64]([]int{0, 1, 2, 3}, 1)
	root.Build(d)
	root.Partition(d, alwaysCriteria[[]float64, float64]{}, true, false)

	perm := root.Indices() // depth-first leaf order
	d.SetPermutation(perm)
	root.ApplyReorder(d, 0)

	if !root.IsReordered() {
		t.Fatal("expected root to be reordered")
	}
	if root.Offset() != 0 {
		t.Errorf("root offset = %d, want 0", root.Offset())
	}

	got := root.Indices()
	want := []int{0, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("post-reorder Indices() = %v, want %v", got, want)
		}
	}
}
