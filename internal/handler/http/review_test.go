package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/internal/repository"
	"github.com/solavalia/reviews-service/internal/service"
	apperrors "github.com/solavalia/reviews-service/pkg/errors"
	"github.com/solavalia/reviews-service/pkg/health"
	"github.com/solavalia/reviews-service/pkg/middleware"
)

// =============================================================================
// Mock services
// =============================================================================

type mockReviewService struct {
	mock.Mock
}

func (m *mockReviewService) SubmitReview(ctx context.Context, input service.SubmitReviewInput) (*domain.Review, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewService) GetReview(ctx context.Context, id string, moderator bool) (*domain.Review, error) {
	args := m.Called(ctx, id, moderator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewService) ListReviews(ctx context.Context, filter repository.ReviewFilter, moderator bool) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter, moderator)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewService) Moderate(ctx context.Context, id, action, changedBy string) (*domain.Review, error) {
	args := m.Called(ctx, id, action, changedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewService) SetFeatured(ctx context.Context, id string, featured bool, changedBy string) (*domain.Review, error) {
	args := m.Called(ctx, id, featured, changedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

type mockRatingService struct {
	mock.Mock
}

func (m *mockRatingService) ProviderRatingSummary(ctx context.Context, providerID string) (*domain.RatingSummary, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

func (m *mockRatingService) SolutionRatingSummary(ctx context.Context, solutionID string) (*domain.RatingSummary, error) {
	args := m.Called(ctx, solutionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

const (
	reviewID   = "5f6c2f64-9c4e-4a6b-9a2e-0d6de4f3a111"
	providerID = "5f6c2f64-9c4e-4a6b-9a2e-0d6de4f3a222"
	solutionID = "5f6c2f64-9c4e-4a6b-9a2e-0d6de4f3a333"
)

func newTestRouter(reviews *mockReviewService, ratings *mockRatingService) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRouter(RouterConfig{
		ReviewHandler: NewReviewHandler(reviews, logger),
		RatingHandler: NewRatingHandler(ratings, logger),
		Health:        health.NewHandler(),
		Logger:        logger,
		ServiceName:   "reviews-service-test",
		CORS:          middleware.DefaultCORSConfig(),
	})
}

func doRequest(router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func userHeaders() map[string]string {
	return map[string]string{"X-User-ID": "user-1", "X-User-Role": middleware.RoleUser}
}

func moderatorHeaders() map[string]string {
	return map[string]string{"X-User-ID": "mod-1", "X-User-Role": middleware.RoleModerator}
}

// =============================================================================
// Submit
// =============================================================================

func TestSubmitReview_Created(t *testing.T) {
	reviews := new(mockReviewService)
	ratings := new(mockRatingService)
	router := newTestRouter(reviews, ratings)

	created := &domain.Review{ID: reviewID, ProviderID: providerID, Status: domain.StatusPending}
	reviews.On("SubmitReview", mock.Anything, mock.MatchedBy(func(in service.SubmitReviewInput) bool {
		return in.UserID == "user-1" && in.ProviderID != nil && *in.ProviderID == providerID
	})).Return(created, nil)

	body := map[string]any{
		"provider_id": providerID,
		"comment":     "The crew was fast, tidy and explained the monitoring setup well.",
		"criteria_scores": map[string]int{
			domain.CriterionAtendimento: 5,
		},
	}

	rec := doRequest(router, http.MethodPost, "/api/v1/reviews", body, userHeaders())

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, reviewID, resp.Data.ID)
	assert.Equal(t, domain.StatusPending, resp.Data.Status)

	reviews.AssertExpectations(t)
}

func TestSubmitReview_Unauthenticated(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	rec := doRequest(router, http.MethodPost, "/api/v1/reviews", map[string]any{
		"provider_id": providerID,
		"comment":     "The crew was fast, tidy and explained the monitoring setup well.",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	reviews.AssertNotCalled(t, "SubmitReview", mock.Anything, mock.Anything)
}

func TestSubmitReview_ValidationFailure(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	reviews.On("SubmitReview", mock.Anything, mock.Anything).
		Return(nil, apperrors.Validation(map[string]string{"comment": "comment must be at least 30 characters"}))

	rec := doRequest(router, http.MethodPost, "/api/v1/reviews", map[string]any{
		"provider_id": providerID,
		"comment":     "short",
	}, userHeaders())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "comment")
}

// =============================================================================
// Get / List
// =============================================================================

func TestGetReview_InvalidUUID(t *testing.T) {
	router := newTestRouter(new(mockReviewService), new(mockRatingService))

	rec := doRequest(router, http.MethodGet, "/api/v1/reviews/not-a-uuid", nil, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReviews_ReturnsMeta(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	reviews.On("ListReviews", mock.Anything, mock.MatchedBy(func(f repository.ReviewFilter) bool {
		return f.ProviderID != nil && *f.ProviderID == providerID && f.Page == 2 && f.PerPage == 10
	}), false).Return([]domain.Review{{ID: reviewID, Status: domain.StatusApproved}}, 25, nil)

	rec := doRequest(router, http.MethodGet, "/api/v1/reviews?provider_id="+providerID+"&page=2&per_page=10", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Review `json:"data"`
		Meta struct {
			Total      int `json:"total"`
			Page       int `json:"page"`
			PerPage    int `json:"per_page"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 25, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestListReviews_InvalidMinRating(t *testing.T) {
	router := newTestRouter(new(mockReviewService), new(mockRatingService))

	rec := doRequest(router, http.MethodGet, "/api/v1/reviews?min_rating=abc", nil, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Moderation
// =============================================================================

func TestUpdateStatus_RequiresModeratorRole(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	rec := doRequest(router, http.MethodPatch, "/api/v1/reviews/"+reviewID+"/status",
		map[string]string{"action": "approve"}, userHeaders())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	reviews.AssertNotCalled(t, "Moderate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_Approve(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	approved := &domain.Review{ID: reviewID, Status: domain.StatusApproved}
	reviews.On("Moderate", mock.Anything, reviewID, "approve", "mod-1").Return(approved, nil)

	rec := doRequest(router, http.MethodPatch, "/api/v1/reviews/"+reviewID+"/status",
		map[string]string{"action": "approve"}, moderatorHeaders())

	assert.Equal(t, http.StatusOK, rec.Code)
	reviews.AssertExpectations(t)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	reviews.On("Moderate", mock.Anything, reviewID, "approve", "mod-1").
		Return(nil, apperrors.InvalidTransition("rejected", "approved"))

	rec := doRequest(router, http.MethodPatch, "/api/v1/reviews/"+reviewID+"/status",
		map[string]string{"action": "approve"}, moderatorHeaders())

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	reviews.On("Moderate", mock.Anything, reviewID, "approve", "mod-1").
		Return(nil, apperrors.NotFound("review", reviewID))

	rec := doRequest(router, http.MethodPatch, "/api/v1/reviews/"+reviewID+"/status",
		map[string]string{"action": "approve"}, moderatorHeaders())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatus_UnknownAction(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	rec := doRequest(router, http.MethodPatch, "/api/v1/reviews/"+reviewID+"/status",
		map[string]string{"action": "publish"}, moderatorHeaders())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	reviews.AssertNotCalled(t, "Moderate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateFeatured(t *testing.T) {
	reviews := new(mockReviewService)
	router := newTestRouter(reviews, new(mockRatingService))

	featured := &domain.Review{ID: reviewID, Status: domain.StatusApproved, Featured: true}
	reviews.On("SetFeatured", mock.Anything, reviewID, true, "mod-1").Return(featured, nil)

	rec := doRequest(router, http.MethodPatch, "/api/v1/reviews/"+reviewID+"/feature",
		map[string]bool{"featured": true}, moderatorHeaders())

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Featured)
}
