package llm

import (
	"context"
	"fmt"
	"strings"

	"datapulse/domain/analysis"
	"datapulse/internal"
	"datapulse/ports"
)

// NarrativeAdapter generates free-text commentary for a report through an
// LLM. When no API key is configured it falls back to a deterministic
// heuristic writer so narrative text stays available offline.
type NarrativeAdapter struct {
	client LLMClient
	cfg    Config
	log    *internal.Logger
}

// NewNarrativeGenerator wires the adapter; without an API key the heuristic
// fallback serves every request.
func NewNarrativeGenerator(cfg Config, logger *internal.Logger) ports.NarrativeGenerator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	client, err := newLLMClient(cfg)
	if err != nil {
		logger.Info("narrative generator running heuristically: %v", err)
		return &HeuristicNarrative{}
	}
	return &NarrativeAdapter{client: client, cfg: cfg, log: logger}
}

// NewNarrativeAdapterWithClient injects a client directly, used in tests
func NewNarrativeAdapterWithClient(client LLMClient, cfg Config) *NarrativeAdapter {
	return &NarrativeAdapter{client: client, cfg: cfg, log: internal.DefaultLogger}
}

// Generate builds a compact prompt from the report and asks for commentary
func (a *NarrativeAdapter) Generate(ctx context.Context, report *analysis.Report) (string, error) {
	prompt := buildPrompt(report)
	text, err := a.client.ChatCompletion(ctx, a.cfg.Model, prompt, a.cfg.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("narrative completion: %w", err)
	}
	return text, nil
}

// buildPrompt summarizes the run compactly; only the top findings are sent
func buildPrompt(report *analysis.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %d rows, %d columns (%d numeric).\n",
		report.Summary.Rows, report.Summary.Columns, report.Summary.NumericColumns)
	fmt.Fprintf(&b, "Findings: %d total, %d anomalous rows out of %d scored.\n",
		report.Summary.FindingCount, report.Summary.AnomalousRows, report.Summary.ScoredRows)
	for stage, reason := range report.Degraded {
		fmt.Fprintf(&b, "Skipped stage %s: %s\n", stage, reason)
	}

	b.WriteString("\nTop findings:\n")
	for i, f := range report.Findings {
		if i >= 10 {
			fmt.Fprintf(&b, "... and %d more\n", len(report.Findings)-i)
			break
		}
		fmt.Fprintf(&b, "- [%s] severity %.2f: %s\n", f.Kind, f.Severity, f.Detail)
	}

	b.WriteString("\nWrite exactly 3 short insights about these results, each citing a concrete number, followed by one recommendation.")
	return b.String()
}

// HeuristicNarrative writes deterministic markdown commentary straight from
// the findings, no model involved.
type HeuristicNarrative struct{}

// Generate renders the report as short markdown bullets
func (h *HeuristicNarrative) Generate(ctx context.Context, report *analysis.Report) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "## Analysis summary\n\n")
	fmt.Fprintf(&b, "Analyzed %d rows across %d columns.\n\n", report.Summary.Rows, report.Summary.Columns)

	if len(report.Findings) == 0 {
		b.WriteString("No concentration imbalances or anomalous rows were detected.\n")
	}
	for i, f := range report.Findings {
		if i >= 5 {
			fmt.Fprintf(&b, "- %d further findings omitted.\n", len(report.Findings)-i)
			break
		}
		fmt.Fprintf(&b, "- **%s** (severity %.2f): %s\n", f.Kind, f.Severity, f.Detail)
	}
	for stage, reason := range report.Degraded {
		fmt.Fprintf(&b, "\n_%s was skipped: %s_\n", stage, reason)
	}
	return b.String(), nil
}
