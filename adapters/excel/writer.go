package excel

import (
	"fmt"

	"datapulse/domain/analysis"
	"datapulse/ports"

	"github.com/xuri/excelize/v2"
)

// ReportWriter renders a completed run to an xlsx workbook: one sheet with
// the normalized data plus per-row anomaly annotations, one sheet with the
// ranked findings.
type ReportWriter struct{}

// NewReportWriter creates a report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

var _ ports.ReportRenderer = (*ReportWriter)(nil)

const (
	dataSheet     = "data"
	findingsSheet = "findings"
)

// Render writes the report to path
func (w *ReportWriter) Render(report *analysis.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", dataSheet)
	if err := w.writeData(f, report); err != nil {
		return err
	}
	if _, err := f.NewSheet(findingsSheet); err != nil {
		return err
	}
	if err := w.writeFindings(f, report); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report workbook: %w", err)
	}
	return nil
}

func (w *ReportWriter) writeData(f *excelize.File, report *analysis.Report) error {
	t := report.Table

	header := make([]interface{}, 0, len(t.Schemas)+2)
	for _, s := range t.Schemas {
		header = append(header, s.Name)
	}
	header = append(header, "anomaly_score", "is_anomaly")
	if err := setRow(f, dataSheet, 1, header); err != nil {
		return err
	}

	scoreByRow := make(map[int]analysis.AnomalyScore, len(report.Scores))
	for _, s := range report.Scores {
		scoreByRow[s.Row] = s
	}

	for r := 0; r < t.RowCount(); r++ {
		row := make([]interface{}, 0, len(header))
		for c := range t.Schemas {
			cell := t.Columns[c][r]
			if cell.Null {
				row = append(row, nil)
			} else {
				row = append(row, cell.Label())
			}
		}
		if s, ok := scoreByRow[r]; ok && s.Verdict != analysis.VerdictIndeterminate {
			row = append(row, s.Combined, s.Verdict == analysis.VerdictAnomalous)
		} else {
			row = append(row, nil, nil)
		}
		if err := setRow(f, dataSheet, r+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *ReportWriter) writeFindings(f *excelize.File, report *analysis.Report) error {
	if err := setRow(f, findingsSheet, 1, []interface{}{"rank", "kind", "subject", "severity", "detail"}); err != nil {
		return err
	}
	for i, finding := range report.Findings {
		subject := finding.Column
		if finding.Kind == analysis.FindingAnomaly {
			subject = fmt.Sprintf("row %d", finding.Row)
		}
		row := []interface{}{i + 1, string(finding.Kind), subject, finding.Severity, finding.Detail}
		if err := setRow(f, findingsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
