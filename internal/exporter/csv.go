// Package exporter writes scored batches as CSV and XLSX reports.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"lotcli/internal/lots"
	"lotcli/internal/services"
)

// resultColumns is the column order of every exported report.
var resultColumns = []string{
	"lot_id",
	"announcement",
	"customer",
	"subject",
	"quantity",
	"amount",
	"unit_price",
	"suspicion_probability",
	"suspicion_level",
	"is_suspicious",
}

// CSVWriter exports scored lots as CSV reports.
type CSVWriter struct {
	reportsDir string
	logger     *slog.Logger
}

// NewCSVWriter creates a CSV exporter rooted at reportsDir.
func NewCSVWriter(reportsDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{reportsDir: reportsDir, logger: logger}
}

// Write exports the scored lots to the named file under the reports
// directory. The UTF-8 BOM keeps Excel happy with non-ASCII subjects.
func (w *CSVWriter) Write(fileName string, scored []lots.ScoredLot) (string, error) {
	fullPath := resolvePath(w.reportsDir, fileName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("writing BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(resultColumns); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	for i, lot := range scored {
		if err := writer.Write(resultRecord(lot)); err != nil {
			return "", fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flushing report: %w", err)
	}

	w.logger.Info("CSV report written",
		"path", fullPath,
		"lots", len(scored))
	return fullPath, nil
}

func resultRecord(lot lots.ScoredLot) []string {
	return []string{
		lot.LotID,
		lot.Announcement,
		lot.Customer,
		lot.Subject,
		formatNullFloat(lot.Quantity),
		formatNullFloat(lot.Amount),
		formatNullFloat(lot.UnitPrice),
		strconv.FormatFloat(lot.SuspicionProbability, 'f', 2, 64),
		string(lot.SuspicionLevel),
		strconv.Itoa(lot.IsSuspicious),
	}
}

func formatNullFloat(v lots.NullFloat) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func resolvePath(dir, fileName string) string {
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(dir, fileName)
}

// summaryRows flattens a batch summary into label/value pairs shared by the
// CSV and XLSX summary outputs.
func summaryRows(summary services.Summary) [][2]string {
	rows := [][2]string{
		{"total_lots", strconv.Itoa(summary.TotalLots)},
		{"suspicious_count", strconv.Itoa(summary.SuspiciousCount)},
		{"level_low", strconv.Itoa(summary.LevelCounts[lots.LevelLow])},
		{"level_medium", strconv.Itoa(summary.LevelCounts[lots.LevelMedium])},
		{"level_high", strconv.Itoa(summary.LevelCounts[lots.LevelHigh])},
	}
	for _, bucket := range summary.Distribution {
		rows = append(rows, [2]string{"range_" + bucket.Label, strconv.Itoa(bucket.Count)})
	}
	return rows
}
