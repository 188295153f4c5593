package dataset

import (
	"testing"

	"github.com/TobiSchelling/cakes/pkg/metric"
)

func newTestStringDataset(t *testing.T) *StringDataset[float64] {
	t.Helper()
	m, err := metric.StringMetric("levenshtein", true)
	if err != nil {
		t.Fatalf("metric setup: %v", err)
	}
	return NewStringDataset([]string{"kitten", "sitting", "kitten", "bitten"}, m, true)
}

func TestStringDatasetBasics(t *testing.T) {
	d := newTestStringDataset(t)
	if d.Cardinality() != 4 {
		t.Fatalf("Cardinality = %d, want 4", d.Cardinality())
	}
	if d.Dimensionality() != 0 {
		t.Errorf("Dimensionality = %d, want 0", d.Dimensionality())
	}
	if !d.IsMetricExpensive() {
		t.Error("expected levenshtein-backed dataset to report metric expensive")
	}
	if dist := d.OneToOne(0, 1); dist != 3 {
		t.Errorf("OneToOne(kitten,sitting) = %v, want 3", dist)
	}
	if dist := d.OneToOne(0, 2); dist != 0 {
		t.Errorf("OneToOne(kitten,kitten) = %v, want 0", dist)
	}
}

func TestStringDatasetSwapPreservesReorderTracking(t *testing.T) {
	d := newTestStringDataset(t)
	d.Swap(0, 3)
	if d.Get(0) != "bitten" {
		t.Errorf("Get(0) after swap = %q, want bitten", d.Get(0))
	}
	if idx := d.GetReorderedIndex(0); idx != 3 {
		t.Errorf("GetReorderedIndex(0) = %d, want 3", idx)
	}
	if idx := d.GetReorderedIndex(3); idx != 0 {
		t.Errorf("GetReorderedIndex(3) = %d, want 0", idx)
	}
}

func TestStringDatasetSetPermutationComposesWithPriorSwap(t *testing.T) {
	d := newTestStringDataset(t)
	d.Swap(0, 1) // original 0 now at location 1, original 1 now at location 0.
	d.SetPermutation([]int{1, 0, 2, 3})

	// Location 1 held original 0's content; after swapping positions 0 and
	// 1 again, original 0 should be back at location 0.
	if idx := d.GetReorderedIndex(0); idx != 0 {
		t.Errorf("GetReorderedIndex(0) after swap+permutation = %d, want 0", idx)
	}
	if d.Get(0) != "kitten" {
		t.Errorf("Get(0) = %q, want kitten", d.Get(0))
	}
}

func TestStringDatasetChooseUniqueSkipsDuplicates(t *testing.T) {
	d := newTestStringDataset(t)
	chosen := d.ChooseUnique(4, []int{0, 1, 2, 3}, 7)
	kittenCount := 0
	for _, i := range chosen {
		if d.Get(i) == "kitten" {
			kittenCount++
		}
	}
	if kittenCount > 1 {
		t.Errorf("ChooseUnique kept %d equivalent \"kitten\" entries, want at most 1", kittenCount)
	}
}
