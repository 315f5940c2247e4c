package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lotcli/internal/errors"
)

func testLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const validDoc = `{
	"lots": [
		{"announcement": "a1", "subject": "paper", "amount": "1 234,56", "quantity": 2},
		{"announcement": "a1", "subject": "toner", "amount": 5000, "quantity": "3"}
	]
}`

func TestParseWrappedDocument(t *testing.T) {
	batch, err := testLoader().Parse(context.Background(), []byte(validDoc))
	require.NoError(t, err)
	require.Len(t, batch, 2)

	assert.Equal(t, "a1", batch[0].Announcement)
	assert.Equal(t, "paper", batch[0].Subject)
	require.True(t, batch[0].Amount.Value.Valid)
	assert.InDelta(t, 1234.56, batch[0].Amount.Value.Float64, 1e-9)
	assert.InDelta(t, 3.0, batch[1].Quantity.Value.Float64, 1e-9)
}

func TestParseBareArray(t *testing.T) {
	doc := `[{"announcement": "a1", "subject": "paper", "amount": 100, "quantity": 1}]`

	batch, err := testLoader().Parse(context.Background(), []byte(doc))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "paper", batch[0].Subject)
}

func TestParseEmptyArray(t *testing.T) {
	batch, err := testLoader().Parse(context.Background(), []byte(`{"lots": []}`))
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"whitespace", "   \n"},
		{"not json", "hello"},
		{"truncated", `{"lots": [`},
		{"object without lots key", `{"records": []}`},
		{"lots not an array", `{"lots": 42}`},
		{"array of scalars", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testLoader().Parse(context.Background(), []byte(tt.input))
			require.Error(t, err)

			var malformed *apperrors.MalformedInputError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestParseMissingColumns(t *testing.T) {
	doc := `{"lots": [
		{"subject": "paper", "announcement": "a1"},
		{"subject": "toner", "announcement": "a1"}
	]}`

	_, err := testLoader().Parse(context.Background(), []byte(doc))
	require.Error(t, err)

	var missing *apperrors.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"amount", "quantity"}, missing.Columns)
}

func TestParseColumnPresentOnAnyRecord(t *testing.T) {
	// Per-record gaps are fine as long as each column appears somewhere.
	doc := `{"lots": [
		{"subject": "paper", "announcement": "a1", "amount": 100},
		{"subject": "toner", "announcement": "a1", "quantity": 2}
	]}`

	batch, err := testLoader().Parse(context.Background(), []byte(doc))
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.False(t, batch[0].Quantity.Value.Valid)
	assert.False(t, batch[1].Amount.Value.Valid)
}

func TestParseUnparseableNumericRecovered(t *testing.T) {
	doc := `{"lots": [
		{"subject": "paper", "announcement": "a1", "amount": "n/a", "quantity": 1}
	]}`

	batch, err := testLoader().Parse(context.Background(), []byte(doc))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.False(t, batch[0].Amount.Value.Valid)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lots.json")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))

	batch, err := testLoader().LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	_, err = testLoader().LoadFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	batch, err := testLoader().Read(context.Background(), strings.NewReader(validDoc))
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}
