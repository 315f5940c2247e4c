package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"

	"lotcli/internal/errors"
	"lotcli/internal/lots"
)

// RequiredColumns are the input fields a batch document must carry. A column
// counts as present when at least one record has the key; per-record gaps
// are recovered downstream as undefined values.
var RequiredColumns = []string{"amount", "quantity", "subject", "announcement"}

// Loader decodes lot batch documents. Accepted shapes: an object with a
// "lots" array, or a bare array of lot records.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewLoader creates a batch loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:   logger,
		validate: validator.New(),
	}
}

// LoadFile reads and parses a batch document from disk.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]lots.Lot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}
	return l.Parse(ctx, data)
}

// Read parses a batch document from a stream.
func (l *Loader) Read(ctx context.Context, r io.Reader) ([]lots.Lot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return l.Parse(ctx, data)
}

// Parse decodes a batch document. Structural problems are fatal for the
// batch: an undecodable document yields MalformedInputError, required
// columns absent from every record yield MissingColumnError.
func (l *Loader) Parse(ctx context.Context, data []byte) ([]lots.Lot, error) {
	array, err := lotArray(data)
	if err != nil {
		return nil, err
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(array, &records); err != nil {
		return nil, &errors.MalformedInputError{Reason: "lots is not an array of records", Err: err}
	}

	if len(records) > 0 {
		if missing := missingColumns(records); len(missing) > 0 {
			return nil, &errors.MissingColumnError{Columns: missing}
		}
	}

	var batch []lots.Lot
	if err := json.Unmarshal(array, &batch); err != nil {
		return nil, &errors.MalformedInputError{Reason: "lot records could not be decoded", Err: err}
	}

	l.warnInvalidRecords(ctx, batch)

	l.logger.DebugContext(ctx, "batch loaded", "lots", len(batch))
	return batch, nil
}

// lotArray extracts the raw lot array from either accepted document shape.
func lotArray(data []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &errors.MalformedInputError{Reason: "empty input"}
	}

	switch trimmed[0] {
	case '{':
		var doc struct {
			Lots json.RawMessage `json:"lots"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, &errors.MalformedInputError{Reason: "input is not valid JSON", Err: err}
		}
		if len(doc.Lots) == 0 {
			return nil, &errors.MalformedInputError{Reason: `document has no "lots" key`}
		}
		return doc.Lots, nil
	case '[':
		return json.RawMessage(trimmed), nil
	default:
		return nil, &errors.MalformedInputError{Reason: "input is neither an object nor an array"}
	}
}

// missingColumns returns the required columns no record carries.
func missingColumns(records []map[string]json.RawMessage) []string {
	var missing []string
	for _, col := range RequiredColumns {
		found := false
		for _, record := range records {
			if _, ok := record[col]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	return missing
}

// recordCheck is the per-record validation surface. Failures are logged, not
// fatal: a lot with a blank subject still participates in the batch (it
// forms its own grouping key).
type recordCheck struct {
	Subject      string `validate:"required"`
	Announcement string `validate:"required"`
}

func (l *Loader) warnInvalidRecords(ctx context.Context, batch []lots.Lot) {
	invalid := 0
	for _, lot := range batch {
		check := recordCheck{Subject: lot.Subject, Announcement: lot.Announcement}
		if err := l.validate.Struct(check); err != nil {
			invalid++
		}
	}
	if invalid > 0 {
		l.logger.WarnContext(ctx, "batch contains records with blank identity fields",
			"count", invalid,
			"total", len(batch))
	}
}
