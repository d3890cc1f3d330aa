package detectors

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KNNDetector scores rows by local density: the mean Euclidean distance to
// the k nearest neighbors. Isolated rows sit far from their neighbors and
// score high.
type KNNDetector struct {
	k int
}

// NewKNNDetector creates a distance-based detector; k defaults to 5
func NewKNNDetector(k int) *KNNDetector {
	if k <= 0 {
		k = 5
	}
	return &KNNDetector{k: k}
}

// Name returns the detector name
func (d *KNNDetector) Name() string {
	return "knn_distance"
}

// Calibrated is false: mean neighbor distances are unbounded
func (d *KNNDetector) Calibrated() bool {
	return false
}

// Score computes each row's mean distance to its k nearest neighbors
func (d *KNNDetector) Score(matrix [][]float64) []float64 {
	n := len(matrix)
	scores := make([]float64, n)
	if n < 2 {
		return scores
	}

	k := d.k
	if k > n-1 {
		k = n - 1
	}

	dists := make([]float64, n-1)
	for i := range matrix {
		dists = dists[:0]
		for j := range matrix {
			if i == j {
				continue
			}
			dists = append(dists, floats.Distance(matrix[i], matrix[j], 2))
		}
		sort.Float64s(dists)
		sum := 0.0
		for _, dist := range dists[:k] {
			sum += dist
		}
		scores[i] = sum / float64(k)
	}
	return scores
}
