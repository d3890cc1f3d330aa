package detectors

import (
	"math"
	"math/rand"
	"testing"
)

// clusterWithOutlier builds n tightly clustered 2D points plus one far point
func clusterWithOutlier(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	matrix := make([][]float64, 0, n+1)
	for i := 0; i < n; i++ {
		matrix = append(matrix, []float64{rng.NormFloat64() * 0.1, rng.NormFloat64() * 0.1})
	}
	matrix = append(matrix, []float64{10, 10})
	return matrix
}

func TestKNNDetector_OutlierScoresHighest(t *testing.T) {
	matrix := clusterWithOutlier(40, 7)
	scores := NewKNNDetector(5).Score(matrix)

	outlier := len(matrix) - 1
	for i, s := range scores {
		if i != outlier && s >= scores[outlier] {
			t.Errorf("row %d scored %v, not below outlier score %v", i, s, scores[outlier])
		}
	}
}

func TestKNNDetector_TinyMatrix(t *testing.T) {
	scores := NewKNNDetector(5).Score([][]float64{{1, 2}})
	if len(scores) != 1 || scores[0] != 0 {
		t.Errorf("single-row matrix should score zero, got %v", scores)
	}
}

func TestIsolationDetector_OutlierScoresHighest(t *testing.T) {
	matrix := clusterWithOutlier(60, 11)
	scores := NewIsolationDetector(100, 256, 1).Score(matrix)

	outlier := len(matrix) - 1
	higher := 0
	for i, s := range scores {
		if i != outlier && s >= scores[outlier] {
			higher++
		}
	}
	if higher > 0 {
		t.Errorf("%d inliers scored at or above the outlier", higher)
	}
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("row %d: isolation score %v outside [0,1]", i, s)
		}
	}
}

func TestIsolationDetector_Deterministic(t *testing.T) {
	matrix := clusterWithOutlier(30, 3)
	a := NewIsolationDetector(50, 256, 42).Score(matrix)
	b := NewIsolationDetector(50, 256, 42).Score(matrix)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d: %v != %v with identical seeds", i, a[i], b[i])
		}
	}
}

func TestDetectorCalibration(t *testing.T) {
	if NewKNNDetector(5).Calibrated() {
		t.Error("knn distances are unbounded and must be rescaled")
	}
	if !NewIsolationDetector(100, 256, 1).Calibrated() {
		t.Error("isolation scores are already on an absolute [0,1] scale")
	}
}

func TestMinMaxNormalize(t *testing.T) {
	norm := minMaxNormalize([]float64{2, 4, 6})
	want := []float64{0, 0.5, 1}
	for i := range norm {
		if math.Abs(norm[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: got %v, want %v", i, norm[i], want[i])
		}
	}

	flat := minMaxNormalize([]float64{3, 3, 3})
	for i, v := range flat {
		if v != 0 {
			t.Errorf("constant scores should normalize to zero, index %d = %v", i, v)
		}
	}
}
