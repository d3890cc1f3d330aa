package stats

import (
	"fmt"
	"math"
	"sort"

	"datapulse/domain/analysis"
	"datapulse/domain/table"

	"github.com/montanaflynn/stats"
)

// ConcentrationAnalyzer flags columns where one value or bin dominates the
// distribution. It recomputes every metric from scratch on each run and
// never mutates the table it reads.
type ConcentrationAnalyzer struct {
	cfg ConcentrationConfig
}

// ConcentrationConfig defines the imbalance thresholds
type ConcentrationConfig struct {
	Threshold   float64 // top-share above which a column is flagged
	MinDistinct int     // minimum distinct values/bins for a flag
	MinRows     int     // columns with fewer non-null rows are skipped
	NumericBins int     // equal-width bins for numeric columns
}

// DefaultConcentrationConfig returns the standard cutoffs
func DefaultConcentrationConfig() ConcentrationConfig {
	return ConcentrationConfig{
		Threshold:   0.8,
		MinDistinct: 2,
		MinRows:     10,
		NumericBins: 10,
	}
}

// NewConcentrationAnalyzer creates an analyzer with the given config
func NewConcentrationAnalyzer(cfg ConcentrationConfig) *ConcentrationAnalyzer {
	def := DefaultConcentrationConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.MinDistinct <= 0 {
		cfg.MinDistinct = def.MinDistinct
	}
	if cfg.MinRows <= 0 {
		cfg.MinRows = def.MinRows
	}
	if cfg.NumericBins <= 0 {
		cfg.NumericBins = def.NumericBins
	}
	return &ConcentrationAnalyzer{cfg: cfg}
}

// Analyze computes one metric per eligible target column. A nil target list
// means every column. Columns below the minimum row count produce no metric
// at all: insufficient evidence, not a zero score.
func (a *ConcentrationAnalyzer) Analyze(t *table.NormalizedTable, targets []string) []analysis.ConcentrationMetric {
	if targets == nil {
		targets = make([]string, len(t.Schemas))
		for i, s := range t.Schemas {
			targets[i] = s.Name
		}
	}

	metrics := make([]analysis.ConcentrationMetric, 0, len(targets))
	for _, name := range targets {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			continue
		}
		s := t.Schemas[idx]
		var m *analysis.ConcentrationMetric
		switch {
		case s.Type == table.TypeCategorical || s.Type == table.TypeBoolean:
			m = a.analyzeCategorical(name, t.Columns[idx])
		case s.Type.IsNumeric():
			m = a.analyzeNumeric(name, t.Columns[idx])
		default:
			// datetime and free text carry no meaningful top-share signal
			continue
		}
		if m != nil {
			metrics = append(metrics, *m)
		}
	}
	return metrics
}

func (a *ConcentrationAnalyzer) analyzeCategorical(name string, cells []table.Value) *analysis.ConcentrationMetric {
	freq := make(map[string]int)
	total := 0
	for _, cell := range cells {
		if cell.Null {
			continue
		}
		freq[cell.Label()]++
		total++
	}
	if total < a.cfg.MinRows {
		return nil
	}

	topLabel, topCount := "", 0
	hhi := 0.0
	for label, count := range freq {
		share := float64(count) / float64(total)
		hhi += share * share
		if count > topCount || (count == topCount && label < topLabel) {
			topLabel, topCount = label, count
		}
	}

	share := float64(topCount) / float64(total)
	return &analysis.ConcentrationMetric{
		Column:        name,
		Kind:          analysis.MetricTopValueShare,
		Value:         share,
		TopLabel:      topLabel,
		TopCount:      topCount,
		DistinctCount: len(freq),
		RowCount:      total,
		Flagged:       share > a.cfg.Threshold && len(freq) >= a.cfg.MinDistinct,
		HHI:           hhi,
	}
}

func (a *ConcentrationAnalyzer) analyzeNumeric(name string, cells []table.Value) *analysis.ConcentrationMetric {
	values := make([]float64, 0, len(cells))
	for _, cell := range cells {
		if f, ok := cell.AsFloat(); ok {
			values = append(values, f)
		}
	}
	if len(values) < a.cfg.MinRows {
		return nil
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	bins := a.cfg.NumericBins
	counts := make([]int, bins)
	width := (max - min) / float64(bins)
	if width == 0 {
		// Constant column: everything lands in one bin
		counts[0] = len(values)
	} else {
		for _, v := range values {
			b := int((v - min) / width)
			if b >= bins {
				b = bins - 1
			}
			counts[b]++
		}
	}

	topBin, topCount, occupied := 0, 0, 0
	for b, count := range counts {
		if count == 0 {
			continue
		}
		occupied++
		if count > topCount {
			topBin, topCount = b, count
		}
	}

	share := float64(topCount) / float64(len(values))
	return &analysis.ConcentrationMetric{
		Column:        name,
		Kind:          analysis.MetricTopBinShare,
		Value:         share,
		TopLabel:      binLabel(min, width, topBin),
		TopCount:      topCount,
		DistinctCount: occupied,
		RowCount:      len(values),
		Flagged:       share > a.cfg.Threshold && occupied >= a.cfg.MinDistinct,
		Gini:          giniCoefficient(values),
	}
}

func binLabel(min, width float64, bin int) string {
	if width == 0 {
		return fmt.Sprintf("[%g]", min)
	}
	lo := min + float64(bin)*width
	return fmt.Sprintf("[%g, %g)", lo, lo+width)
}

// giniCoefficient measures inequality of non-negative magnitudes; values are
// shifted to zero before computing so negative columns stay well-defined.
func giniCoefficient(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	shift := 0.0
	if sorted[0] < 0 {
		shift = -sorted[0]
	}

	n := float64(len(sorted))
	sum, weighted := 0.0, 0.0
	for i, v := range sorted {
		v += shift
		sum += v
		weighted += (2*float64(i+1) - n - 1) * v
	}
	if sum == 0 {
		return 0
	}
	g := weighted / (n * sum)
	return math.Max(0, g)
}
