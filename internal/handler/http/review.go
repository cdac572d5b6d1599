package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/internal/repository"
	"github.com/solavalia/reviews-service/internal/service"
	apperrors "github.com/solavalia/reviews-service/pkg/errors"
	"github.com/solavalia/reviews-service/pkg/httputil"
	"github.com/solavalia/reviews-service/pkg/middleware"
	"github.com/solavalia/reviews-service/pkg/pagination"
	"github.com/solavalia/reviews-service/pkg/validator"
)

// ReviewService is the review use-case surface the handler depends on.
type ReviewService interface {
	SubmitReview(ctx context.Context, input service.SubmitReviewInput) (*domain.Review, error)
	GetReview(ctx context.Context, id string, moderator bool) (*domain.Review, error)
	ListReviews(ctx context.Context, filter repository.ReviewFilter, moderator bool) ([]domain.Review, int, error)
	Moderate(ctx context.Context, id, action, changedBy string) (*domain.Review, error)
	SetFeatured(ctx context.Context, id string, featured bool, changedBy string) (*domain.Review, error)
}

// ReviewHandler serves the review endpoints.
type ReviewHandler struct {
	service ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(service ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: service, logger: logger}
}

type submitReviewRequest struct {
	ProviderID     *string        `json:"provider_id" validate:"omitempty,uuid"`
	SolutionID     *string        `json:"solution_id" validate:"omitempty,uuid"`
	OverallScore   *float64       `json:"overall_score"`
	CriteriaScores map[string]int `json:"criteria_scores"`
	Title          *string        `json:"title"`
	Comment        string         `json:"comment" validate:"required"`
}

type moderateReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject hide"`
}

type featureReviewRequest struct {
	Featured *bool `json:"featured" validate:"required"`
}

// Submit handles POST /api/v1/reviews.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	var req submitReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.SubmitReview(r.Context(), service.SubmitReviewInput{
		ProviderID:     req.ProviderID,
		SolutionID:     req.SolutionID,
		UserID:         userID,
		OverallScore:   req.OverallScore,
		CriteriaScores: req.CriteriaScores,
		Title:          req.Title,
		Comment:        req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// Get handles GET /api/v1/reviews/{id}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id.String(), middleware.IsModerator(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// List handles GET /api/v1/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	query := r.URL.Query()

	filter := repository.ReviewFilter{
		Sort:    query.Get("sort"),
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	if v := query.Get("provider_id"); v != "" {
		filter.ProviderID = &v
	}
	if v := query.Get("solution_id"); v != "" {
		filter.SolutionID = &v
	}
	if v := query.Get("status"); v != "" {
		status := domain.Status(v)
		filter.Status = &status
	}
	if v := query.Get("min_rating"); v != "" {
		minRating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("min_rating must be a number"), h.logger)
			return
		}
		filter.MinRating = &minRating
	}
	if v := query.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("featured must be a boolean"), h.logger)
			return
		}
		filter.Featured = &featured
	}

	reviews, total, err := h.service.ListReviews(r.Context(), filter, middleware.IsModerator(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: reviews,
		Meta: httputil.ListMeta{
			Total:      total,
			Page:       params.Page,
			PerPage:    params.PerPage,
			TotalPages: params.TotalPages(total),
		},
	})
}

// UpdateStatus handles PATCH /api/v1/reviews/{id}/status.
func (h *ReviewHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req moderateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.Moderate(r.Context(), id.String(), req.Action, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// UpdateFeatured handles PATCH /api/v1/reviews/{id}/feature.
func (h *ReviewHandler) UpdateFeatured(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req featureReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.SetFeatured(r.Context(), id.String(), *req.Featured, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}
