package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"sort"

	"lotcli/internal/config"
	"lotcli/internal/ensemble"
	apperrors "lotcli/internal/errors"
	"lotcli/internal/exporter"
	"lotcli/internal/infrastructure"
	"lotcli/internal/ingest"
	"lotcli/internal/lots"
	"lotcli/internal/services"
)

func main() {
	inputPath := flag.String("input", "", "path to a lot batch document; empty reads stdin and writes results to stdout")
	modelsDir := flag.String("models", "", "directory with model artifacts (defaults to configured models dir)")
	csvOut := flag.String("csv", "", "write scored lots to this CSV file under the reports dir")
	xlsxOut := flag.String("xlsx", "", "write the analysis workbook to this file under the reports dir")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		infrastructure.GetLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := infrastructure.InitializeLogger(cfg.Logging)
	ctx := infrastructure.EnsureTraceID(context.Background())

	if *modelsDir == "" {
		*modelsDir = cfg.Paths.ModelsDir
	}
	stdinMode := *inputPath == ""

	predictor, err := ensemble.Load(*modelsDir)
	if err != nil {
		fail(ctx, logger, stdinMode, err)
	}
	service := services.NewAnalysisService(predictor, nil, logger)
	loader := ingest.NewLoader(logger)

	var batch []lots.Lot
	if stdinMode {
		batch, err = loader.Read(ctx, os.Stdin)
	} else {
		batch, err = loader.LoadFile(ctx, *inputPath)
	}
	if err != nil {
		fail(ctx, logger, stdinMode, err)
	}

	result, err := service.Score(ctx, batch)
	if err != nil {
		fail(ctx, logger, stdinMode, err)
	}

	if stdinMode {
		if err := writeResult(os.Stdout, result); err != nil {
			fail(ctx, logger, true, err)
		}
		return
	}

	logReport(ctx, logger, result)

	reports := cfg.Paths.ReportsDir
	if *csvOut != "" {
		if _, err := exporter.NewCSVWriter(reports, logger).Write(*csvOut, result.Lots); err != nil {
			fail(ctx, logger, false, err)
		}
	}
	if *xlsxOut != "" {
		if _, err := exporter.NewXLSXWriter(reports, logger).Write(*xlsxOut, result); err != nil {
			fail(ctx, logger, false, err)
		}
	}
}

// logReport prints the human-readable run summary: every lot ordered by
// descending suspicion, then the level counts and distribution.
func logReport(ctx context.Context, logger *slog.Logger, result *services.AnalysisResult) {
	ranked := append([]lots.ScoredLot(nil), result.Lots...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].SuspicionProbability > ranked[b].SuspicionProbability
	})
	for _, lot := range ranked {
		logger.InfoContext(ctx, "lot scored",
			"lot_id", lot.LotID,
			"announcement", lot.Announcement,
			"subject", lot.Subject,
			"probability", lot.SuspicionProbability,
			"level", lot.SuspicionLevel)
	}

	summary := result.Summary
	logger.InfoContext(ctx, "analysis complete",
		"lots", summary.TotalLots,
		"suspicious", summary.SuspiciousCount,
		"low", summary.LevelCounts[lots.LevelLow],
		"medium", summary.LevelCounts[lots.LevelMedium],
		"high", summary.LevelCounts[lots.LevelHigh])
	for _, bucket := range summary.Distribution {
		logger.InfoContext(ctx, "probability range", "range", bucket.Label, "count", bucket.Count)
	}
}

// writeResult emits the stdout payload: a JSON array of scored lots. The
// summary stays out of it; reports and the HTTP response carry that.
func writeResult(w io.Writer, result *services.AnalysisResult) error {
	scored := result.Lots
	if scored == nil {
		scored = []lots.ScoredLot{}
	}
	return json.NewEncoder(w).Encode(scored)
}

// errorPayload is the machine-readable error object written to stdout in
// stdin mode.
func errorPayload(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
		"type":  apperrors.Kind(err),
	}
}

// fail reports the error in the mode's format and exits non-zero. In stdin
// mode the JSON error object goes to stdout so callers always get a machine
// readable response.
func fail(ctx context.Context, logger *slog.Logger, stdinMode bool, err error) {
	if stdinMode {
		if encErr := json.NewEncoder(os.Stdout).Encode(errorPayload(err)); encErr != nil {
			logger.ErrorContext(ctx, "failed to write error payload", "error", encErr)
		}
	}
	logger.ErrorContext(ctx, "scoring failed", "error", err, "type", apperrors.Kind(err))
	os.Exit(1)
}
