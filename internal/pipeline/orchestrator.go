package pipeline

import (
	"context"
	"sync"
	"time"

	"datapulse/adapters/schema"
	"datapulse/adapters/stats"
	"datapulse/adapters/stats/detectors"
	"datapulse/domain/analysis"
	"datapulse/domain/core"
	"datapulse/domain/table"
	"datapulse/internal"
	"datapulse/internal/config"

	"golang.org/x/sync/errgroup"
)

// Options is the immutable per-run configuration. Zero fields fall back to
// the documented defaults; there is no process-wide mutable default state.
type Options struct {
	ConcentrationThreshold      float64
	ConcentrationMinDistinct    int
	ConcentrationMinRows        int
	NumericBins                 int
	AnomalyScoreCutoff          float64
	AnomalyMinRows              int
	CategoricalCardinalityRatio float64
	OverallTimeout              time.Duration
	Seed                        int64
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		ConcentrationThreshold:      0.8,
		ConcentrationMinDistinct:    2,
		ConcentrationMinRows:        10,
		NumericBins:                 10,
		AnomalyScoreCutoff:          0.7,
		AnomalyMinRows:              20,
		CategoricalCardinalityRatio: 0.5,
		OverallTimeout:              2 * time.Minute,
		Seed:                        1,
	}
}

// OptionsFromConfig maps the environment configuration onto run options
func OptionsFromConfig(cfg config.AnalysisConfig) Options {
	return Options{
		ConcentrationThreshold:      cfg.ConcentrationThreshold,
		ConcentrationMinDistinct:    cfg.ConcentrationMinDistinct,
		ConcentrationMinRows:        cfg.ConcentrationMinRows,
		NumericBins:                 cfg.NumericBins,
		AnomalyScoreCutoff:          cfg.AnomalyScoreCutoff,
		AnomalyMinRows:              cfg.AnomalyMinRows,
		CategoricalCardinalityRatio: cfg.CategoricalCardinalityRatio,
		OverallTimeout:              cfg.OverallTimeout,
		Seed:                        1,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ConcentrationThreshold <= 0 {
		o.ConcentrationThreshold = def.ConcentrationThreshold
	}
	if o.ConcentrationMinDistinct <= 0 {
		o.ConcentrationMinDistinct = def.ConcentrationMinDistinct
	}
	if o.ConcentrationMinRows <= 0 {
		o.ConcentrationMinRows = def.ConcentrationMinRows
	}
	if o.NumericBins <= 0 {
		o.NumericBins = def.NumericBins
	}
	if o.AnomalyScoreCutoff <= 0 {
		o.AnomalyScoreCutoff = def.AnomalyScoreCutoff
	}
	if o.AnomalyMinRows <= 0 {
		o.AnomalyMinRows = def.AnomalyMinRows
	}
	if o.CategoricalCardinalityRatio <= 0 {
		o.CategoricalCardinalityRatio = def.CategoricalCardinalityRatio
	}
	if o.OverallTimeout <= 0 {
		o.OverallTimeout = def.OverallTimeout
	}
	if o.Seed == 0 {
		o.Seed = def.Seed
	}
	return o
}

// Orchestrator sequences schema inference, the two analyzers and insight
// composition over one in-memory table. Each Analyze call owns its own
// state, so independent calls over different tables can run concurrently.
type Orchestrator struct {
	log *internal.Logger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(logger *internal.Logger) *Orchestrator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Orchestrator{log: logger}
}

// Analyze runs the full pipeline: infer + apply the schema, run the
// concentration analyzer and the anomaly ensemble in parallel over the
// read-only normalized table, then compose ranked findings.
//
// A schema failure aborts the run. An analyzer refusing for lack of data is
// recorded as a degraded-result marker and the other analyzer's output is
// still composed. Exceeding the overall timeout discards whatever partial
// results exist and surfaces core.ErrTimeout: a run either completes
// (possibly degraded) or is reported timed out, never silently partial.
func (o *Orchestrator) Analyze(ctx context.Context, raw *table.RawTable, opts Options) (*analysis.Report, error) {
	opts = opts.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.OverallTimeout)
	defer cancel()

	started := time.Now()

	inferencer := schema.NewInferencer(schema.Config{
		CategoricalCardinalityRatio: opts.CategoricalCardinalityRatio,
	})
	schemas, err := inferencer.Infer(raw)
	if err != nil {
		return nil, err
	}
	normalized, err := inferencer.Apply(raw, schemas)
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, core.NewTimeoutError(analysis.StageSchema)
	}

	var (
		mu       sync.Mutex
		metrics  []analysis.ConcentrationMetric
		scores   []analysis.AnomalyScore
		degraded = make(map[string]string)
	)

	// The analyzers share the normalized table read-only and write disjoint
	// outputs, so they run as two independent tasks without locking.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if gctx.Err() != nil {
			return gctx.Err()
		}
		analyzer := stats.NewConcentrationAnalyzer(stats.ConcentrationConfig{
			Threshold:   opts.ConcentrationThreshold,
			MinDistinct: opts.ConcentrationMinDistinct,
			MinRows:     opts.ConcentrationMinRows,
			NumericBins: opts.NumericBins,
		})
		m := analyzer.Analyze(normalized, nil)
		mu.Lock()
		metrics = m
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		if gctx.Err() != nil {
			return gctx.Err()
		}
		ensemble := detectors.NewEnsemble(detectors.EnsembleConfig{
			ScoreCutoff: opts.AnomalyScoreCutoff,
			MinRows:     opts.AnomalyMinRows,
			Seed:        opts.Seed,
		})
		s, err := ensemble.FitAndScore(normalized, nil)
		if core.IsInsufficientDataError(err) {
			mu.Lock()
			degraded[analysis.StageAnomaly] = err.Error()
			mu.Unlock()
			return nil
		}
		if err != nil {
			return err
		}
		mu.Lock()
		scores = s
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, core.NewTimeoutError(analysis.StageAnomaly)
		}
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, core.NewTimeoutError(analysis.StageCompose)
	}

	findings := analysis.Compose(metrics, scores)

	anomalous, scored := 0, 0
	for _, s := range scores {
		if s.Verdict != analysis.VerdictIndeterminate {
			scored++
		}
		if s.Verdict == analysis.VerdictAnomalous {
			anomalous++
		}
	}

	report := &analysis.Report{
		RunID:    core.RunID(core.NewID()),
		Table:    normalized,
		Schemas:  schemas,
		Metrics:  metrics,
		Scores:   scores,
		Findings: findings,
		Degraded: degraded,
		Summary: analysis.Summary{
			Rows:                 normalized.RowCount(),
			Columns:              normalized.ColumnCount(),
			NumericColumns:       len(normalized.NumericColumns()),
			ConcentrationMetrics: len(metrics),
			ScoredRows:           scored,
			AnomalousRows:        anomalous,
			FindingCount:         len(findings),
		},
		CreatedAt: time.Now().UTC(),
	}

	o.log.Info("analysis completed in %s: %d findings, %d degraded stages",
		time.Since(started).Round(time.Millisecond), len(findings), len(degraded))
	return report, nil
}
