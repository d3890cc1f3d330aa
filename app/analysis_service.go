package app

import (
	"context"

	"datapulse/domain/analysis"
	"datapulse/domain/core"
	"datapulse/domain/table"
	"datapulse/internal"
	"datapulse/internal/pipeline"
	"datapulse/ports"
)

// AnalysisService runs the pipeline and hands the results to the external
// collaborators: result store, narrative generator. Both are optional and
// neither gates the availability of findings.
type AnalysisService struct {
	orchestrator *pipeline.Orchestrator
	store        ports.ResultStore
	narrative    ports.NarrativeGenerator
	log          *internal.Logger
}

// NewAnalysisService wires the service; store and narrative may be nil
func NewAnalysisService(orch *pipeline.Orchestrator, store ports.ResultStore, narrative ports.NarrativeGenerator, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		orchestrator: orch,
		store:        store,
		narrative:    narrative,
		log:          logger,
	}
}

// Run analyzes one raw table end to end. Narrative generation and
// persistence failures are logged and swallowed; the report is returned
// as long as the pipeline itself succeeded.
func (s *AnalysisService) Run(ctx context.Context, raw *table.RawTable, filename string, opts pipeline.Options) (*analysis.Report, error) {
	report, err := s.orchestrator.Analyze(ctx, raw, opts)
	if err != nil {
		return nil, err
	}
	report.Filename = filename

	if s.narrative != nil {
		text, err := s.narrative.Generate(ctx, report)
		if err != nil {
			s.log.Warn("narrative generation failed for run %s: %v", report.RunID, err)
		} else {
			report.Narrative = text
		}
	}

	if s.store != nil {
		if err := s.store.SaveRun(ctx, report); err != nil {
			s.log.Warn("failed to persist run %s: %v", report.RunID, err)
		}
	}

	return report, nil
}

// GetRun loads a persisted run
func (s *AnalysisService) GetRun(ctx context.Context, id core.RunID) (*analysis.Report, error) {
	if s.store == nil {
		return nil, core.ErrRunNotFound
	}
	return s.store.GetRun(ctx, id)
}

// ListRuns lists persisted runs, newest first
func (s *AnalysisService) ListRuns(ctx context.Context, limit int) ([]analysis.Report, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListRuns(ctx, limit)
}
