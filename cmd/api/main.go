package main

import (
	"context"
	"log"

	"datapulse/adapters/excel"
	"datapulse/adapters/llm"
	"datapulse/adapters/postgres"
	"datapulse/api"
	"datapulse/app"
	"datapulse/internal"
	"datapulse/internal/config"
	"datapulse/internal/ops"
	"datapulse/internal/pipeline"
	"datapulse/ports"

	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := internal.NewDefaultLogger()

	var store ports.ResultStore
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		runStore := postgres.NewRunStore(db)
		if err := runStore.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("database schema: %v", err)
		}
		store = runStore
	} else {
		logger.Warn("DATABASE_URL not set, runs will not be persisted")
	}

	narrative := llm.NewNarrativeGenerator(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	service := app.NewAnalysisService(
		pipeline.NewOrchestrator(logger),
		store,
		narrative,
		logger,
	)

	if cfg.Profiling.Enabled {
		go func() {
			if err := ops.NewServer(logger).Start(cfg.Profiling.Port); err != nil {
				logger.Error("ops listener: %v", err)
			}
		}()
	}

	server := api.NewServer(service, excel.NewTableReader(), pipeline.OptionsFromConfig(cfg.Analysis), logger)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
