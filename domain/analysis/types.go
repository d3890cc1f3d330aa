package analysis

import (
	"datapulse/domain/core"
	"datapulse/domain/table"
	"time"
)

// Stage names used in errors and degraded-result markers
const (
	StageSchema        = "schema_inference"
	StageConcentration = "concentration_analysis"
	StageAnomaly       = "anomaly_detection"
	StageCompose       = "insight_composition"
)

// MetricKind identifies the concentration metric computed for a column
type MetricKind string

const (
	MetricTopValueShare MetricKind = "top_value_share"
	MetricTopBinShare   MetricKind = "top_bin_share"
)

// ConcentrationMetric is the per-column output of the concentration analyzer.
// Value is the share of rows held by the most frequent value or bin.
type ConcentrationMetric struct {
	Column        string     `json:"column"`
	Kind          MetricKind `json:"kind"`
	Value         float64    `json:"value"`
	TopLabel      string     `json:"top_label"`
	TopCount      int        `json:"top_count"`
	DistinctCount int        `json:"distinct_count"`
	RowCount      int        `json:"row_count"`
	Flagged       bool       `json:"flagged"`

	// Supplemental imbalance measures, populated where they apply
	Gini float64 `json:"gini,omitempty"` // numeric columns
	HHI  float64 `json:"hhi,omitempty"`  // categorical/boolean columns
}

// Verdict classifies a row's anomaly status
type Verdict string

const (
	VerdictNormal        Verdict = "normal"
	VerdictAnomalous     Verdict = "anomalous"
	VerdictIndeterminate Verdict = "indeterminate"
)

// AnomalyScore is the per-row output of the detector ensemble. Row is a
// positional reference into the NormalizedTable, never a copy of row data.
type AnomalyScore struct {
	Row            int                `json:"row"`
	DetectorScores map[string]float64 `json:"detector_scores"`
	Combined       float64            `json:"combined"`
	Verdict        Verdict            `json:"verdict"`
}

// FindingKind distinguishes the two finding families
type FindingKind string

const (
	FindingConcentration FindingKind = "concentration"
	FindingAnomaly       FindingKind = "anomaly"
)

// Finding is an immutable, ranked insight derived from one metric or one
// anomalous row. Severity is a linear function of the underlying score so
// two violations at different scores always rank differently.
type Finding struct {
	Kind     FindingKind        `json:"kind"`
	Column   string             `json:"column,omitempty"`
	Row      int                `json:"row"`
	Severity float64            `json:"severity"`
	Detail   string             `json:"detail"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// Summary describes the run outcome so an empty finding list is
// distinguishable from a failed or degraded run.
type Summary struct {
	Rows                 int `json:"rows"`
	Columns              int `json:"columns"`
	NumericColumns       int `json:"numeric_columns"`
	ConcentrationMetrics int `json:"concentration_metrics"`
	ScoredRows           int `json:"scored_rows"`
	AnomalousRows        int `json:"anomalous_rows"`
	FindingCount         int `json:"finding_count"`
}

// Report is the complete output of one pipeline run
type Report struct {
	RunID     core.RunID             `json:"run_id"`
	Filename  string                 `json:"filename,omitempty"`
	Table     *table.NormalizedTable `json:"-"`
	Schemas   []table.ColumnSchema   `json:"schemas"`
	Metrics   []ConcentrationMetric  `json:"metrics"`
	Scores    []AnomalyScore         `json:"scores"`
	Findings  []Finding              `json:"findings"`
	Degraded  map[string]string      `json:"degraded,omitempty"`
	Summary   Summary                `json:"summary"`
	Narrative string                 `json:"narrative,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// IsDegraded reports whether any analyzer was skipped for lack of data
func (r *Report) IsDegraded() bool {
	return len(r.Degraded) > 0
}
