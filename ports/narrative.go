package ports

import (
	"context"

	"datapulse/domain/analysis"
)

// NarrativeGenerator turns a finding list into free-text commentary.
// Narrative text is optional enrichment: a failing generator must never
// gate the availability of findings.
type NarrativeGenerator interface {
	Generate(ctx context.Context, report *analysis.Report) (string, error)
}
