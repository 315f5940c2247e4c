package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"lotcli/internal/ensemble"
	"lotcli/internal/infrastructure"
	"lotcli/internal/lots"
)

// topSuspiciousCount bounds the highlighted lots in the summary.
const topSuspiciousCount = 10

// AnalysisService orchestrates a scoring run: feature pipeline in, scored
// lots and a batch summary out.
type AnalysisService struct {
	pipeline  *lots.Pipeline
	predictor *ensemble.Predictor
	metrics   *infrastructure.AnalysisMetrics
	logger    *slog.Logger
}

// NewAnalysisService creates the analysis service. metrics may be nil for
// CLI use.
func NewAnalysisService(predictor *ensemble.Predictor, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		pipeline:  lots.NewPipeline(logger),
		predictor: predictor,
		metrics:   metrics,
		logger:    logger,
	}
}

// AnalysisResult is one scored batch.
type AnalysisResult struct {
	Lots    []lots.ScoredLot `json:"lots"`
	Summary Summary          `json:"summary"`
}

// Summary aggregates a scored batch for reports and the API response.
type Summary struct {
	TotalLots       int                          `json:"total_lots"`
	SuspiciousCount int                          `json:"suspicious_count"`
	LevelCounts     map[lots.SuspicionLevel]int  `json:"level_counts"`
	Distribution    []DistributionBucket         `json:"distribution"`
	TopSuspicious   []lots.ScoredLot             `json:"top_suspicious"`
}

// DistributionBucket is one probability-range count.
type DistributionBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Score runs the full analysis over a raw batch.
func (s *AnalysisService) Score(ctx context.Context, batch []lots.Lot) (*AnalysisResult, error) {
	start := time.Now()

	enriched := s.pipeline.Enrich(ctx, batch)
	features := lots.AssembleFeatures(enriched)

	var scores []float64
	if len(features) > 0 {
		var err error
		scores, err = s.predictor.Predict(features)
		if err != nil {
			return nil, fmt.Errorf("scoring batch: %w", err)
		}
	}

	scored := make([]lots.ScoredLot, len(enriched))
	for i, row := range enriched {
		probability := math.Round(scores[i]*100) / 100
		scored[i] = lots.ScoredLot{
			LotID:                row.Lot.ID,
			Announcement:         row.Lot.Announcement,
			Customer:             row.Lot.Customer,
			Subject:              row.Lot.Subject,
			Quantity:             row.Quantity,
			Amount:               row.Amount,
			UnitPrice:            row.UnitPrice,
			SuspicionProbability: probability,
			SuspicionLevel:       lots.LevelFor(probability),
		}
		if probability >= lots.SuspiciousThreshold {
			scored[i].IsSuspicious = 1
		}
	}

	summary := buildSummary(scored)
	duration := time.Since(start)

	s.metrics.RecordBatch(ctx, summary.TotalLots, summary.SuspiciousCount, duration)
	s.logger.InfoContext(ctx, "batch scored",
		"lots", summary.TotalLots,
		"suspicious", summary.SuspiciousCount,
		"duration", duration)

	return &AnalysisResult{Lots: scored, Summary: summary}, nil
}

// buildSummary computes level counts, the probability histogram and the
// most suspicious lots.
func buildSummary(scored []lots.ScoredLot) Summary {
	summary := Summary{
		TotalLots: len(scored),
		LevelCounts: map[lots.SuspicionLevel]int{
			lots.LevelLow:    0,
			lots.LevelMedium: 0,
			lots.LevelHigh:   0,
		},
		Distribution: []DistributionBucket{
			{Label: "0-25"},
			{Label: "25-50"},
			{Label: "50-75"},
			{Label: "75-100"},
		},
	}

	for _, lot := range scored {
		summary.LevelCounts[lot.SuspicionLevel]++
		summary.SuspiciousCount += lot.IsSuspicious

		switch {
		case lot.SuspicionProbability < 25:
			summary.Distribution[0].Count++
		case lot.SuspicionProbability < 50:
			summary.Distribution[1].Count++
		case lot.SuspicionProbability < 75:
			summary.Distribution[2].Count++
		default:
			summary.Distribution[3].Count++
		}
	}

	ranked := append([]lots.ScoredLot(nil), scored...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].SuspicionProbability > ranked[b].SuspicionProbability
	})
	if len(ranked) > topSuspiciousCount {
		ranked = ranked[:topSuspiciousCount]
	}
	summary.TopSuspicious = ranked

	return summary
}
