package main

import (
	"context"
	"flag"
	"os"

	"lotcli/internal/config"
	"lotcli/internal/ensemble"
	"lotcli/internal/infrastructure"
	"lotcli/internal/ingest"
	"lotcli/internal/lots"
)

func main() {
	inputPath := flag.String("input", "", "path to the labeled lot batch document (JSON)")
	modelsDir := flag.String("models", "", "directory for model artifacts (defaults to configured models dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		infrastructure.GetLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := infrastructure.InitializeLogger(cfg.Logging)
	ctx := infrastructure.EnsureTraceID(context.Background())

	if *inputPath == "" {
		logger.ErrorContext(ctx, "no input file given", "hint", "use -input to point at a lot batch document")
		os.Exit(1)
	}
	if *modelsDir == "" {
		*modelsDir = cfg.Paths.ModelsDir
	}

	loader := ingest.NewLoader(logger)
	batch, err := loader.LoadFile(ctx, *inputPath)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load training batch", "path", *inputPath, "error", err)
		os.Exit(1)
	}
	if len(batch) == 0 {
		logger.ErrorContext(ctx, "training batch is empty", "path", *inputPath)
		os.Exit(1)
	}

	pipeline := lots.NewPipeline(logger)
	enriched := pipeline.Enrich(ctx, batch)
	labels := lots.DeriveWeakLabels(enriched)
	features := lots.AssembleFeatures(enriched)

	positives := 0
	for _, y := range labels.Suspicious {
		positives += y
	}
	logger.InfoContext(ctx, "training labels derived",
		"lots", len(batch),
		"suspicious", positives,
		"high_price", sum(labels.HighPrice),
		"split", sum(labels.Split),
		"round_amount", sum(labels.RoundAmount))

	trainer := ensemble.NewTrainer(ensemble.TrainingConfig{
		Seed:            cfg.Training.Seed,
		Estimators:      cfg.Training.Estimators,
		MaxDepth:        cfg.Training.MaxDepth,
		LearningRate:    cfg.Training.LearningRate,
		HoldoutFraction: cfg.Training.HoldoutFraction,
	}, logger)

	predictor, err := trainer.Train(ctx, features, labels.Suspicious)
	if err != nil {
		logger.ErrorContext(ctx, "training failed", "error", err)
		os.Exit(1)
	}

	if err := predictor.Save(*modelsDir); err != nil {
		logger.ErrorContext(ctx, "failed to save artifacts", "dir", *modelsDir, "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "artifacts saved", "dir", *modelsDir)
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
