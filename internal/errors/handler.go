package errors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"lotcli/internal/infrastructure"
)

// ErrorHandler provides centralized error handling for the HTTP surface:
// log the failure with request context, map it to an APIError, render the
// standard envelope.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: infrastructure.WithComponent(logger, "error_handler"),
	}
}

// HandleError maps any error onto the structured response and writes it.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	apiErr := FromDomain(err)

	infrastructure.WithError(h.logger, err).ErrorContext(r.Context(), "request failed",
		slog.String("error_code", apiErr.ErrorCode),
		slog.Int("status", apiErr.StatusCode),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if renderErr := render.Render(w, r, NewErrorResponse(apiErr)); renderErr != nil {
		WriteError(w, apiErr)
	}
}

// NotFound is the router's fallback handler.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, ErrNotFound)
}

// MethodNotAllowed rejects unsupported methods on known routes.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"))
}
