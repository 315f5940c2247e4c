package exporter

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lotcli/internal/lots"
	"lotcli/internal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() *services.AnalysisResult {
	scored := []lots.ScoredLot{
		{
			LotID:                "lot-1",
			Announcement:         "ann-1",
			Customer:             "city hospital",
			Subject:              "paper",
			Quantity:             lots.Valid(10),
			Amount:               lots.Valid(150000),
			UnitPrice:            lots.Valid(15000),
			SuspicionProbability: 82.5,
			SuspicionLevel:       lots.LevelHigh,
			IsSuspicious:         1,
		},
		{
			LotID:                "lot-2",
			Announcement:         "ann-1",
			Subject:              "toner",
			Quantity:             lots.Null(),
			Amount:               lots.Valid(5000),
			UnitPrice:            lots.Valid(5000),
			SuspicionProbability: 12.0,
			SuspicionLevel:       lots.LevelLow,
		},
	}
	return &services.AnalysisResult{
		Lots: scored,
		Summary: services.Summary{
			TotalLots:       2,
			SuspiciousCount: 1,
			LevelCounts: map[lots.SuspicionLevel]int{
				lots.LevelLow:    1,
				lots.LevelMedium: 0,
				lots.LevelHigh:   1,
			},
			Distribution: []services.DistributionBucket{
				{Label: "0-25", Count: 1},
				{Label: "25-50"},
				{Label: "50-75"},
				{Label: "75-100", Count: 1},
			},
			TopSuspicious: scored[:1],
		},
	}
}

func TestCSVWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, discardLogger())

	path, err := writer.Write("suspicious_lots.csv", sampleResult().Lots)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "suspicious_lots.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// BOM prefix, then regular CSV.
	require.True(t, strings.HasPrefix(string(data), "\xef\xbb\xbf"))
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\xef\xbb\xbf"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, resultColumns, records[0])
	assert.Equal(t, "lot-1", records[1][0])
	assert.Equal(t, "82.50", records[1][7])
	assert.Equal(t, "high", records[1][8])
	assert.Equal(t, "1", records[1][9])
	// Undefined quantity stays empty, not zero.
	assert.Equal(t, "", records[2][4])
}

func TestXLSXWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewXLSXWriter(dir, discardLogger())

	path, err := writer.Write("analysis.xlsx", sampleResult())
	require.NoError(t, err)

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()

	sheets := book.GetSheetList()
	assert.Contains(t, sheets, "Results")
	assert.Contains(t, sheets, "Summary")

	rows, err := book.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "lot_id", rows[0][0])
	assert.Equal(t, "lot-1", rows[1][0])
	assert.Equal(t, "high", rows[1][8])

	summary, err := book.GetRows("Summary")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 6)
	assert.Equal(t, []string{"metric", "value"}, summary[0][:2])
	assert.Equal(t, "total_lots", summary[1][0])
	assert.Equal(t, "2", summary[1][1])
}
