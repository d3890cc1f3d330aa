package ports

import (
	"datapulse/domain/analysis"
)

// ReportRenderer exports a completed run to a spreadsheet-format file with
// per-row anomaly annotations. Cell formatting and file layout belong to
// the renderer.
type ReportRenderer interface {
	Render(report *analysis.Report, path string) error
}
