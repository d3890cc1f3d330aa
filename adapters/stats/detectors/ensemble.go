package detectors

import (
	"datapulse/domain/analysis"
	"datapulse/domain/core"
	"datapulse/domain/table"

	"gonum.org/v1/gonum/stat"
)

// Ensemble runs the closed detector set over a table's numeric feature
// matrix and combines the normalized scores per row. The combined score is
// the maximum across detectors: a row flagged strongly by either detector
// counts as anomalous, trading precision for recall.
type Ensemble struct {
	cfg       EnsembleConfig
	detectors []Detector
}

// EnsembleConfig defines the ensemble cutoffs
type EnsembleConfig struct {
	ScoreCutoff float64 // combined score above which a row is anomalous
	MinRows     int     // minimum valid rows after null exclusion
	KNeighbors  int     // k for the distance detector
	Trees       int     // tree count for the isolation detector
	Seed        int64   // isolation detector seed
}

// DefaultEnsembleConfig returns the standard cutoffs
func DefaultEnsembleConfig() EnsembleConfig {
	return EnsembleConfig{
		ScoreCutoff: 0.7,
		MinRows:     20,
		KNeighbors:  5,
		Trees:       100,
		Seed:        1,
	}
}

// NewEnsemble creates the two-detector ensemble
func NewEnsemble(cfg EnsembleConfig) *Ensemble {
	def := DefaultEnsembleConfig()
	if cfg.ScoreCutoff <= 0 {
		cfg.ScoreCutoff = def.ScoreCutoff
	}
	if cfg.MinRows <= 0 {
		cfg.MinRows = def.MinRows
	}
	return &Ensemble{
		cfg: cfg,
		detectors: []Detector{
			NewKNNDetector(cfg.KNeighbors),
			NewIsolationDetector(cfg.Trees, 256, cfg.Seed),
		},
	}
}

// Detectors returns the detector names in execution order
func (e *Ensemble) Detectors() []string {
	names := make([]string, len(e.detectors))
	for i, d := range e.detectors {
		names[i] = d.Name()
	}
	return names
}

// FitAndScore builds the feature matrix from the given numeric columns (all
// numeric columns when nil), fits both detectors in one pass, and returns one
// score per table row. Rows with a null in any selected column are excluded
// from fitting and come back with VerdictIndeterminate rather than a silent
// zero. Refuses to score when fewer valid rows remain than the minimum.
func (e *Ensemble) FitAndScore(t *table.NormalizedTable, numericCols []string) ([]analysis.AnomalyScore, error) {
	if numericCols == nil {
		numericCols = t.NumericColumns()
	}

	rows := t.RowCount()
	features := make([][]float64, 0, len(numericCols))
	masks := make([][]bool, 0, len(numericCols))
	for _, name := range numericCols {
		values, nulls, ok := t.NumericColumn(name)
		if !ok {
			return nil, core.NewColumnNotFoundError(name)
		}
		features = append(features, values)
		masks = append(masks, nulls)
	}

	if len(features) == 0 {
		return nil, core.NewInsufficientDataError(analysis.StageAnomaly, 0, e.cfg.MinRows)
	}

	// Rows with any null are excluded from fitting but still scored
	// indeterminate below.
	valid := make([]int, 0, rows)
	for r := 0; r < rows; r++ {
		ok := true
		for _, nulls := range masks {
			if nulls[r] {
				ok = false
				break
			}
		}
		if ok {
			valid = append(valid, r)
		}
	}

	if len(valid) < e.cfg.MinRows {
		return nil, core.NewInsufficientDataError(analysis.StageAnomaly, len(valid), e.cfg.MinRows)
	}

	matrix := standardize(features, valid)

	normalized := make(map[string][]float64, len(e.detectors))
	for _, d := range e.detectors {
		raw := d.Score(matrix)
		if !d.Calibrated() {
			raw = minMaxNormalize(raw)
		}
		normalized[d.Name()] = raw
	}

	scores := make([]analysis.AnomalyScore, rows)
	for r := range scores {
		scores[r] = analysis.AnomalyScore{Row: r, Verdict: analysis.VerdictIndeterminate}
	}
	for i, r := range valid {
		perDetector := make(map[string]float64, len(e.detectors))
		combined := 0.0
		for name, norm := range normalized {
			perDetector[name] = norm[i]
			if norm[i] > combined {
				combined = norm[i]
			}
		}
		verdict := analysis.VerdictNormal
		if combined > e.cfg.ScoreCutoff {
			verdict = analysis.VerdictAnomalous
		}
		scores[r] = analysis.AnomalyScore{
			Row:            r,
			DetectorScores: perDetector,
			Combined:       combined,
			Verdict:        verdict,
		}
	}
	return scores, nil
}

// standardize builds a row-major matrix of z-scored features over the valid
// rows. Constant features stay at zero instead of dividing by zero.
func standardize(features [][]float64, valid []int) [][]float64 {
	cols := make([][]float64, len(features))
	for f, col := range features {
		selected := make([]float64, len(valid))
		for i, r := range valid {
			selected[i] = col[r]
		}
		mean, std := stat.MeanStdDev(selected, nil)
		if std == 0 {
			cols[f] = make([]float64, len(valid))
			continue
		}
		for i, v := range selected {
			selected[i] = (v - mean) / std
		}
		cols[f] = selected
	}

	matrix := make([][]float64, len(valid))
	for i := range matrix {
		row := make([]float64, len(features))
		for f := range features {
			row[f] = cols[f][i]
		}
		matrix[i] = row
	}
	return matrix
}
