package ports

import (
	"context"

	"datapulse/domain/analysis"
	"datapulse/domain/core"
)

// ResultStore persists completed runs: the normalized table, the finding
// list and the run summary. Key scheme and durability are the store's
// business, not the pipeline's.
type ResultStore interface {
	SaveRun(ctx context.Context, report *analysis.Report) error
	GetRun(ctx context.Context, id core.RunID) (*analysis.Report, error)
	ListRuns(ctx context.Context, limit int) ([]analysis.Report, error)
}
