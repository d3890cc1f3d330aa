package config

import (
	"testing"
	"time"

	"datapulse/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Analysis.ConcentrationThreshold != 0.8 {
		t.Errorf("concentration threshold = %v, want 0.8", cfg.Analysis.ConcentrationThreshold)
	}
	if cfg.Analysis.AnomalyMinRows != 20 {
		t.Errorf("anomaly min rows = %d, want 20", cfg.Analysis.AnomalyMinRows)
	}
	if cfg.Analysis.OverallTimeout != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m", cfg.Analysis.OverallTimeout)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("model = %s", cfg.LLM.Model)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CONCENTRATION_THRESHOLD", "0.9")
	t.Setenv("ANOMALY_MIN_ROWS", "50")
	t.Setenv("ANALYSIS_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Analysis.ConcentrationThreshold != 0.9 {
		t.Errorf("threshold = %v, want 0.9", cfg.Analysis.ConcentrationThreshold)
	}
	if cfg.Analysis.AnomalyMinRows != 50 {
		t.Errorf("anomaly min rows = %d, want 50", cfg.Analysis.AnomalyMinRows)
	}
	if cfg.Analysis.OverallTimeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Analysis.OverallTimeout)
	}
}

func TestLoad_InvalidThresholdRejected(t *testing.T) {
	t.Setenv("CONCENTRATION_THRESHOLD", "1.5")

	_, err := Load()
	if err == nil {
		t.Fatal("threshold above 1 must fail validation")
	}
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.CodeConfigInvalid)
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("ANOMALY_MIN_ROWS", "many")
	t.Setenv("ANALYSIS_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.AnomalyMinRows != 20 {
		t.Errorf("unparsable int should fall back to 20, got %d", cfg.Analysis.AnomalyMinRows)
	}
	if cfg.Analysis.OverallTimeout != 2*time.Minute {
		t.Errorf("unparsable duration should fall back to 2m, got %v", cfg.Analysis.OverallTimeout)
	}
}
