package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/pkg/httputil"
)

// RatingService is the aggregation surface the handler depends on.
type RatingService interface {
	ProviderRatingSummary(ctx context.Context, providerID string) (*domain.RatingSummary, error)
	SolutionRatingSummary(ctx context.Context, solutionID string) (*domain.RatingSummary, error)
}

// RatingHandler serves the rating summary endpoints.
type RatingHandler struct {
	service RatingService
	logger  *slog.Logger
}

// NewRatingHandler creates a rating handler.
func NewRatingHandler(service RatingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{service: service, logger: logger}
}

// ProviderSummary handles GET /api/v1/providers/{id}/rating-summary.
func (h *RatingHandler) ProviderSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	summary, err := h.service.ProviderRatingSummary(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// SolutionSummary handles GET /api/v1/solutions/{id}/rating-summary.
func (h *RatingHandler) SolutionSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	summary, err := h.service.SolutionRatingSummary(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}
