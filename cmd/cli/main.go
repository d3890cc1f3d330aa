package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"datapulse/adapters/excel"
	"datapulse/adapters/llm"
	"datapulse/app"
	"datapulse/domain/analysis"
	"datapulse/internal"
	"datapulse/internal/pipeline"
	"datapulse/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "datapulse",
		Short: "DataPulse CLI for analyzing tabular business data",
	}
	rootCmd.AddCommand(newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		input   string
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a spreadsheet for concentration imbalances and anomalies",
		Long: `Analyze reads an xlsx or csv file, infers a schema, runs the
concentration analyzer and the anomaly ensemble, and prints the ranked
findings. With --output it also writes a JSON report and an annotated
xlsx workbook.

Example: datapulse analyze --input sales.xlsx --output ./results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewDefaultLogger()

			reader := excel.NewTableReader()
			raw, err := reader.Read(input)
			if err != nil {
				return err
			}

			opts := pipeline.DefaultOptions()
			if timeout > 0 {
				opts.OverallTimeout = timeout
			}

			service := app.NewAnalysisService(
				pipeline.NewOrchestrator(logger),
				nil,
				&llm.HeuristicNarrative{},
				logger,
			)

			report, err := service.Run(context.Background(), raw, filepath.Base(input), opts)
			if err != nil {
				return err
			}

			if output == "" {
				return printReport(report)
			}
			return writeArtifacts(report, input, output)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input xlsx or csv file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory for results")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall analysis timeout")
	cmd.MarkFlagRequired("input")

	return cmd
}

func printReport(report *analysis.Report) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func writeArtifacts(report *analysis.Report, input, output string) error {
	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	stamp := time.Now().Format("20060102_150405")

	jsonPath := filepath.Join(output, fmt.Sprintf("%s_%s_analysis.json", stamp, stem))
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, out, 0o644); err != nil {
		return err
	}

	xlsxPath := filepath.Join(output, fmt.Sprintf("%s_%s_analysis.xlsx", stamp, stem))
	var renderer ports.ReportRenderer = excel.NewReportWriter()
	if err := renderer.Render(report, xlsxPath); err != nil {
		return err
	}

	fmt.Println("Results saved to:")
	fmt.Printf("- JSON:  %s\n", jsonPath)
	fmt.Printf("- Excel: %s\n", xlsxPath)
	return nil
}
