package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Domain error kinds. Kind strings appear verbatim in the JSON error object
// emitted on the stdin/stdout scoring path, so they are part of the output
// contract.
const (
	KindMissingColumn   = "missing_column"
	KindMissingArtifact = "missing_artifact"
	KindMalformedInput  = "malformed_input"
	KindInternal        = "internal"
)

// MissingColumnError reports required input fields absent from every record
// of a batch. Fatal for the batch; row-level parse failures are not.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("input is missing required columns: %s", strings.Join(e.Columns, ", "))
}

// MissingArtifactError reports a model or scaler artifact that could not be
// loaded. Scoring must fail before producing any result.
type MissingArtifactError struct {
	Name string
	Path string
	Err  error
}

func (e *MissingArtifactError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("artifact %q not available at %s: %v", e.Name, e.Path, e.Err)
	}
	return fmt.Sprintf("artifact %q not available at %s", e.Name, e.Path)
}

func (e *MissingArtifactError) Unwrap() error {
	return e.Err
}

// MalformedInputError reports an input document that could not be decoded as
// a lot batch at all.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Kind classifies any error into one of the domain kind strings.
func Kind(err error) string {
	var (
		missingColumn   *MissingColumnError
		missingArtifact *MissingArtifactError
		malformed       *MalformedInputError
	)
	switch {
	case errors.As(err, &missingColumn):
		return KindMissingColumn
	case errors.As(err, &missingArtifact):
		return KindMissingArtifact
	case errors.As(err, &malformed):
		return KindMalformedInput
	default:
		return KindInternal
	}
}

// FromDomain maps a domain error onto the structured API error rendered by
// the HTTP surface.
func FromDomain(err error) *APIError {
	var (
		missingColumn   *MissingColumnError
		missingArtifact *MissingArtifactError
		malformed       *MalformedInputError
		api             *APIError
	)
	switch {
	case errors.As(err, &api):
		return api
	case errors.As(err, &missingColumn):
		return NewWithDetails(http.StatusBadRequest, "MISSING_COLUMN", err.Error(), missingColumn.Columns)
	case errors.As(err, &malformed):
		return New(http.StatusBadRequest, "MALFORMED_INPUT", err.Error())
	case errors.As(err, &missingArtifact):
		return ErrModelUnavailable.WithDetails(err.Error())
	default:
		return ErrInternalServer.WithDetails(err.Error())
	}
}
