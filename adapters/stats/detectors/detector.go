package detectors

// Detector is one unsupervised outlier scorer. Score fits and scores in a
// single pass over a standardized feature matrix (row-major) and returns one
// raw score per row, higher meaning more anomalous. The detector set is
// closed: new detectors join the ensemble by being added to its constructor,
// not through open-ended registration.
type Detector interface {
	Name() string
	Score(matrix [][]float64) []float64

	// Calibrated reports whether Score already returns values in [0,1]
	// on an absolute scale. Calibrated scores are compared against the
	// cutoff as-is; uncalibrated ones are min-max rescaled first.
	// Rescaling a score that is already absolute would stretch a narrow
	// inlier band across the whole unit interval and manufacture
	// anomalies on unremarkable rows.
	Calibrated() bool
}

// minMaxNormalize rescales raw detector scores to [0,1]. A degenerate
// detector that scores every row identically normalizes to all zeros.
func minMaxNormalize(raw []float64) []float64 {
	if len(raw) == 0 {
		return nil
	}
	min, max := raw[0], raw[0]
	for _, v := range raw[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	norm := make([]float64, len(raw))
	if max == min {
		return norm
	}
	for i, v := range raw {
		norm[i] = (v - min) / (max - min)
	}
	return norm
}
