package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"missing column", &MissingColumnError{Columns: []string{"amount"}}, KindMissingColumn},
		{"missing artifact", &MissingArtifactError{Name: "scaler", Path: "/models/scaler.json"}, KindMissingArtifact},
		{"malformed input", &MalformedInputError{Reason: "not a JSON document"}, KindMalformedInput},
		{"wrapped malformed input", fmt.Errorf("loading batch: %w", &MalformedInputError{Reason: "empty body"}), KindMalformedInput},
		{"plain error", fmt.Errorf("disk full"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Kind(tt.err))
		})
	}
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"missing column maps to 400", &MissingColumnError{Columns: []string{"subject", "announcement"}}, http.StatusBadRequest, "MISSING_COLUMN"},
		{"malformed input maps to 400", &MalformedInputError{Reason: "unexpected shape"}, http.StatusBadRequest, "MALFORMED_INPUT"},
		{"missing artifact maps to 503", &MissingArtifactError{Name: "random_forest", Path: "/models"}, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE"},
		{"wrapped artifact error keeps mapping", fmt.Errorf("scoring: %w", &MissingArtifactError{Name: "scaler", Path: "/models"}), http.StatusServiceUnavailable, "MODEL_UNAVAILABLE"},
		{"unknown error maps to 500", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"api error passes through", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := FromDomain(tt.err)
			assert.Equal(t, tt.expectedStatus, api.StatusCode)
			assert.Equal(t, tt.expectedCode, api.ErrorCode)
		})
	}
}

func TestWithDetailsLeavesCatalogEntryUntouched(t *testing.T) {
	derived := ErrModelUnavailable.WithDetails("scaler.json not found")

	assert.Equal(t, "scaler.json not found", derived.Details)
	assert.Equal(t, ErrModelUnavailable.StatusCode, derived.StatusCode)
	assert.Equal(t, ErrModelUnavailable.ErrorCode, derived.ErrorCode)
	assert.Nil(t, ErrModelUnavailable.Details)
}

func TestErrPanic(t *testing.T) {
	api := ErrPanic("boom")

	assert.Equal(t, http.StatusInternalServerError, api.StatusCode)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", api.ErrorCode)
	assert.Equal(t, PanicRecovery{Message: "boom"}, api.Details)
}

func TestMissingColumnErrorMessage(t *testing.T) {
	err := &MissingColumnError{Columns: []string{"amount", "quantity"}}
	assert.Equal(t, "input is missing required columns: amount, quantity", err.Error())
}
