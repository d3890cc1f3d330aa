package detectors

import (
	"math"
	"math/rand"
)

// IsolationDetector scores rows by expected isolation depth: random
// axis-aligned splits isolate outliers in fewer partitions than inliers.
// The random source is seeded so scoring a table twice gives identical
// results.
type IsolationDetector struct {
	trees      int
	sampleSize int
	seed       int64
}

// NewIsolationDetector creates a partitioning-based detector.
// Defaults: 100 trees over subsamples of 256 rows.
func NewIsolationDetector(trees, sampleSize int, seed int64) *IsolationDetector {
	if trees <= 0 {
		trees = 100
	}
	if sampleSize <= 0 {
		sampleSize = 256
	}
	return &IsolationDetector{trees: trees, sampleSize: sampleSize, seed: seed}
}

// Name returns the detector name
func (d *IsolationDetector) Name() string {
	return "isolation_depth"
}

// Calibrated is true: 2^(-E(h)/c(psi)) is an absolute [0,1] scale where
// 0.5 marks an average path length
func (d *IsolationDetector) Calibrated() bool {
	return true
}

type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
}

// Score builds an isolation forest and converts mean path lengths into the
// standard anomaly score 2^(-E(h)/c(psi)).
func (d *IsolationDetector) Score(matrix [][]float64) []float64 {
	n := len(matrix)
	scores := make([]float64, n)
	if n < 2 {
		return scores
	}

	psi := d.sampleSize
	if psi > n {
		psi = n
	}
	depthLimit := int(math.Ceil(math.Log2(float64(psi))))
	rng := rand.New(rand.NewSource(d.seed))

	pathSums := make([]float64, n)
	for t := 0; t < d.trees; t++ {
		sample := rng.Perm(n)[:psi]
		root := buildIsoTree(matrix, sample, 0, depthLimit, rng)
		for i, row := range matrix {
			pathSums[i] += pathLength(row, root, 0)
		}
	}

	norm := avgPathLength(psi)
	for i := range scores {
		mean := pathSums[i] / float64(d.trees)
		scores[i] = math.Pow(2, -mean/norm)
	}
	return scores
}

func buildIsoTree(matrix [][]float64, rows []int, depth, limit int, rng *rand.Rand) *isoNode {
	if len(rows) <= 1 || depth >= limit {
		return &isoNode{size: len(rows)}
	}

	features := len(matrix[rows[0]])
	feature := rng.Intn(features)

	min, max := matrix[rows[0]][feature], matrix[rows[0]][feature]
	for _, r := range rows[1:] {
		v := matrix[r][feature]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return &isoNode{size: len(rows)}
	}

	split := min + rng.Float64()*(max-min)
	var left, right []int
	for _, r := range rows {
		if matrix[r][feature] < split {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildIsoTree(matrix, left, depth+1, limit, rng),
		right:   buildIsoTree(matrix, right, depth+1, limit, rng),
		size:    len(rows),
	}
}

func pathLength(row []float64, node *isoNode, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if row[node.feature] < node.split {
		return pathLength(row, node.left, depth+1)
	}
	return pathLength(row, node.right, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful BST
// search, used to normalize isolation depths.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649015329
	return 2*h - 2*float64(n-1)/float64(n)
}
