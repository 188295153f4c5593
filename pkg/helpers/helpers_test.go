package helpers

import "testing"

func TestArgMinArgMax(t *testing.T) {
	values := []float64{5, 2, 2, 9, 0, 9}

	if i, v := ArgMin(values); i != 4 || v != 0 {
		t.Errorf("ArgMin = (%d, %v), want (4, 0)", i, v)
	}
	if i, v := ArgMax(values); i != 3 || v != 9 {
		t.Errorf("ArgMax = (%d, %v), want (3, 9)", i, v)
	}
}

func TestArgMinArgMaxTieBreaksOnFirstOccurrence(t *testing.T) {
	values := []int{3, 1, 1, 3}
	if i, _ := ArgMin(values); i != 1 {
		t.Errorf("ArgMin tie break: got index %d, want 1", i)
	}
	if i, _ := ArgMax(values); i != 0 {
		t.Errorf("ArgMax tie break: got index %d, want 0", i)
	}
}

func TestMeanSD(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := Mean(values)
	if mean != 5 {
		t.Errorf("Mean = %v, want 5", mean)
	}
	if sd := SD(values, mean); sd != 2 {
		t.Errorf("SD = %v, want 2", sd)
	}
}

func TestEstimateLFDZeroRadius(t *testing.T) {
	if lfd := EstimateLFD([]float64{1, 2, 3}, 0.0); lfd != 1.0 {
		t.Errorf("EstimateLFD with radius 0 = %v, want 1.0", lfd)
	}
}

func TestEstimateLFDEmptyHalf(t *testing.T) {
	// No distance falls within radius/2 = 5.
	dists := []float64{6, 7, 8, 9}
	if lfd := EstimateLFD(dists, 10.0); lfd != 1.0 {
		t.Errorf("EstimateLFD with empty half-count = %v, want 1.0", lfd)
	}
}

func TestEstimateLFDTypical(t *testing.T) {
	// 8 points total, 2 within radius/2=5: log2(8/2) = 2.
	dists := []float64{1, 4, 6, 7, 8, 9, 10, 10}
	if lfd := EstimateLFD(dists, 10.0); lfd != 2.0 {
		t.Errorf("EstimateLFD = %v, want 2.0", lfd)
	}
}

func TestEstimateLFDFromSortedDegenerate(t *testing.T) {
	if lfd := EstimateLFDFromSorted(nil, 1.0); lfd != 1.0 {
		t.Errorf("EstimateLFDFromSorted(nil) = %v, want 1.0", lfd)
	}
	if lfd := EstimateLFDFromSorted([]float64{1, 2, 3}, 0); lfd != 1.0 {
		t.Errorf("EstimateLFDFromSorted with r=0 = %v, want 1.0", lfd)
	}
}

func TestEstimateLFDFromSortedTypical(t *testing.T) {
	dists := []float64{0.1, 0.2, 0.4, 0.8, 1.6}
	lfd := EstimateLFDFromSorted(dists, 2.0)
	if lfd <= 0 {
		t.Errorf("EstimateLFDFromSorted = %v, want a positive estimate", lfd)
	}
}
