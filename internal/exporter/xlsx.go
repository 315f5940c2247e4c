package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"lotcli/internal/lots"
	"lotcli/internal/services"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// XLSXWriter exports a scored batch as an Excel workbook with a results
// sheet and a summary sheet.
type XLSXWriter struct {
	reportsDir string
	logger     *slog.Logger
}

// NewXLSXWriter creates an XLSX exporter rooted at reportsDir.
func NewXLSXWriter(reportsDir string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{reportsDir: reportsDir, logger: logger}
}

// Write exports the analysis result to the named workbook under the reports
// directory.
func (w *XLSXWriter) Write(fileName string, result *services.AnalysisResult) (string, error) {
	fullPath := resolvePath(w.reportsDir, fileName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}

	book := excelize.NewFile()
	defer book.Close()

	book.SetSheetName(book.GetSheetName(0), resultsSheet)
	if err := w.writeResults(book, result.Lots); err != nil {
		return "", err
	}
	if err := w.writeSummary(book, result.Summary); err != nil {
		return "", err
	}

	if err := book.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}

	w.logger.Info("XLSX report written",
		"path", fullPath,
		"lots", len(result.Lots))
	return fullPath, nil
}

func (w *XLSXWriter) writeResults(book *excelize.File, scored []lots.ScoredLot) error {
	header := make([]interface{}, len(resultColumns))
	for i, col := range resultColumns {
		header[i] = col
	}
	if err := setRow(book, resultsSheet, 1, header); err != nil {
		return err
	}

	for i, lot := range scored {
		row := []interface{}{
			lot.LotID,
			lot.Announcement,
			lot.Customer,
			lot.Subject,
			cellValue(lot.Quantity),
			cellValue(lot.Amount),
			cellValue(lot.UnitPrice),
			lot.SuspicionProbability,
			string(lot.SuspicionLevel),
			lot.IsSuspicious,
		}
		if err := setRow(book, resultsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeSummary(book *excelize.File, summary services.Summary) error {
	if _, err := book.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	if err := setRow(book, summarySheet, 1, []interface{}{"metric", "value"}); err != nil {
		return err
	}
	for i, row := range summaryRows(summary) {
		if err := setRow(book, summarySheet, i+2, []interface{}{row[0], row[1]}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(book *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("building cell reference: %w", err)
	}
	if err := book.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", rowNum, err)
	}
	return nil
}

// cellValue keeps undefined numerics as empty cells rather than zeros.
func cellValue(v lots.NullFloat) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
