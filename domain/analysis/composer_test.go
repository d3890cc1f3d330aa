package analysis

import (
	"testing"
)

func TestCompose_OnlyFlaggedAndAnomalous(t *testing.T) {
	metrics := []ConcentrationMetric{
		{Column: "a", Value: 0.95, Flagged: true},
		{Column: "b", Value: 0.5, Flagged: false},
	}
	scores := []AnomalyScore{
		{Row: 0, Combined: 0.9, Verdict: VerdictAnomalous},
		{Row: 1, Combined: 0.2, Verdict: VerdictNormal},
		{Row: 2, Verdict: VerdictIndeterminate},
	}

	findings := Compose(metrics, scores)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
}

func TestCompose_SeverityOrdering(t *testing.T) {
	metrics := []ConcentrationMetric{
		{Column: "low", Value: 0.85, Flagged: true},
		{Column: "high", Value: 0.99, Flagged: true},
	}
	scores := []AnomalyScore{
		{Row: 4, Combined: 0.92, Verdict: VerdictAnomalous},
	}

	findings := Compose(metrics, scores)
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(findings))
	}

	// Two concentration violations at different scores must rank differently
	if findings[0].Column != "high" || findings[0].Severity != 0.99 {
		t.Errorf("first finding should be the 0.99 concentration, got %+v", findings[0])
	}
	if findings[1].Kind != FindingAnomaly || findings[1].Row != 4 {
		t.Errorf("second finding should be the 0.92 anomaly, got %+v", findings[1])
	}
	if findings[2].Column != "low" {
		t.Errorf("third finding should be the 0.85 concentration, got %+v", findings[2])
	}
}

func TestCompose_ConcentrationBeforeAnomalyOnTies(t *testing.T) {
	metrics := []ConcentrationMetric{
		{Column: "tied", Value: 0.9, Flagged: true},
	}
	scores := []AnomalyScore{
		{Row: 7, Combined: 0.9, Verdict: VerdictAnomalous},
	}

	findings := Compose(metrics, scores)
	if findings[0].Kind != FindingConcentration {
		t.Errorf("on equal severity, concentration must come first, got %s", findings[0].Kind)
	}
	if findings[1].Kind != FindingAnomaly {
		t.Errorf("anomaly should follow, got %s", findings[1].Kind)
	}
}

func TestCompose_Empty(t *testing.T) {
	findings := Compose(nil, nil)
	if len(findings) != 0 {
		t.Errorf("no inputs should compose to no findings, got %d", len(findings))
	}
}

func TestCompose_AnomalyMetricsRetainDetectorScores(t *testing.T) {
	scores := []AnomalyScore{
		{
			Row:            3,
			Combined:       0.95,
			Verdict:        VerdictAnomalous,
			DetectorScores: map[string]float64{"knn_distance": 0.95, "isolation_depth": 0.6},
		},
	}

	findings := Compose(nil, scores)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	m := findings[0].Metrics
	if m["knn_distance"] != 0.95 || m["isolation_depth"] != 0.6 || m["combined"] != 0.95 {
		t.Errorf("both raw detector scores must be retained for traceability, got %v", m)
	}
}
