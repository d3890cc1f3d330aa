package analysis

import (
	"fmt"
	"sort"
)

// Compose maps flagged concentration metrics and anomalous rows into a ranked
// finding list. Severity is the underlying score itself, a linear mapping, so
// a 0.99 violation always outranks a 0.85 one. Findings are sorted severity
// descending; on ties concentration findings come before anomaly findings,
// then discovery order. Compose holds no state and does no cross-referencing
// between the two finding families.
func Compose(metrics []ConcentrationMetric, scores []AnomalyScore) []Finding {
	findings := make([]Finding, 0, len(metrics)+len(scores))

	for _, m := range metrics {
		if !m.Flagged {
			continue
		}
		extra := map[string]float64{"share": m.Value}
		if m.Gini > 0 {
			extra["gini"] = m.Gini
		}
		if m.HHI > 0 {
			extra["hhi"] = m.HHI
		}
		findings = append(findings, Finding{
			Kind:     FindingConcentration,
			Column:   m.Column,
			Row:      -1,
			Severity: m.Value,
			Detail: fmt.Sprintf("%.0f%% of %d rows in column %q fall on %s",
				m.Value*100, m.RowCount, m.Column, m.TopLabel),
			Metrics: extra,
		})
	}

	for _, s := range scores {
		if s.Verdict != VerdictAnomalous {
			continue
		}
		extra := make(map[string]float64, len(s.DetectorScores)+1)
		extra["combined"] = s.Combined
		for name, v := range s.DetectorScores {
			extra[name] = v
		}
		findings = append(findings, Finding{
			Kind:     FindingAnomaly,
			Row:      s.Row,
			Severity: s.Combined,
			Detail:   fmt.Sprintf("row %d scored %.2f across the detector ensemble", s.Row, s.Combined),
			Metrics:  extra,
		})
	}

	// Stable sort keeps discovery order within equal severity and kind
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity > findings[j].Severity
		}
		return kindRank(findings[i].Kind) < kindRank(findings[j].Kind)
	})
	return findings
}

func kindRank(k FindingKind) int {
	if k == FindingConcentration {
		return 0
	}
	return 1
}
