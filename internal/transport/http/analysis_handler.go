package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "lotcli/internal/errors"
	"lotcli/internal/infrastructure"
	"lotcli/internal/ingest"
	"lotcli/internal/services"
)

// maxRequestBody caps analysis request bodies at 32 MiB.
const maxRequestBody = 32 << 20

// AnalysisHandler handles lot-analysis HTTP requests
type AnalysisHandler struct {
	service      *services.AnalysisService
	loader       *ingest.Loader
	metrics      *infrastructure.AnalysisMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		loader:       ingest.NewLoader(logger),
		metrics:      metrics,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger),
	}
}

// RegisterRoutes registers the analysis routes
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analysis", h.Analyze)
}

// Analyze scores a batch document and returns the scored lots with a
// summary. The body is either {"lots": [...]} or a bare array.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	batch, err := h.loader.Read(ctx, http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		h.metrics.RecordFailure(ctx, apierrors.Kind(err))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "analysis requested", slog.Int("lots", len(batch)))

	result, err := h.service.Score(ctx, batch)
	if err != nil {
		h.metrics.RecordFailure(ctx, apierrors.Kind(err))
		// Scoring failures without a domain mapping are analysis errors,
		// not generic internal ones.
		if apierrors.Kind(err) == apierrors.KindInternal {
			h.errorHandler.HandleError(w, r, apierrors.ErrAnalysisFailed.WithDetails(err.Error()))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}
