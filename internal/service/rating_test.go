package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/solavalia/reviews-service/internal/cache"
	"github.com/solavalia/reviews-service/internal/domain"
	apperrors "github.com/solavalia/reviews-service/pkg/errors"
)

func newTestRatingService(reviews *mockReviewRepository, providers *mockProviderRepository, summaryCache SummaryCache) *RatingService {
	return NewRatingService(reviews, providers, summaryCache, newTestLogger())
}

func approvedReview(id, providerID string, solutionID *string, overall float64) domain.Review {
	return domain.Review{
		ID:           id,
		ProviderID:   providerID,
		SolutionID:   solutionID,
		OverallScore: overall,
		Status:       domain.StatusApproved,
	}
}

func TestProviderRatingSummary_RollsUpBothPaths(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	summaryCache := newFakeSummaryCache()
	svc := newTestRatingService(reviews, providers, summaryCache)
	ctx := context.Background()

	solID := "sol-1"
	providers.On("GetByID", ctx, "prov-1").Return(&domain.Provider{ID: "prov-1"}, nil)
	providers.On("SolutionIDs", ctx, "prov-1").Return([]string{solID}, nil)
	reviews.On("ListCountableDirect", ctx, "prov-1").Return([]domain.Review{
		approvedReview("r1", "prov-1", nil, 5.0),
	}, nil)
	reviews.On("ListCountableBySolutions", ctx, []string{solID}).Return([]domain.Review{
		approvedReview("r2", "prov-1", &solID, 3.0),
	}, nil)

	summary, err := svc.ProviderRatingSummary(ctx, "prov-1")

	require.NoError(t, err)
	assert.Equal(t, 2, summary.ReviewCount)
	assert.InDelta(t, 4.0, summary.OverallRating, 1e-9)

	// Computed summaries land in the cache.
	cached, cacheErr := summaryCache.Get(ctx, cache.ProviderKey("prov-1"))
	require.NoError(t, cacheErr)
	require.NotNil(t, cached)
	assert.Equal(t, 2, cached.ReviewCount)
}

func TestProviderRatingSummary_DedupesAcrossPaths(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	svc := newTestRatingService(reviews, providers, newFakeSummaryCache())
	ctx := context.Background()

	solID := "sol-1"
	shared := approvedReview("r1", "prov-1", &solID, 4.0)

	providers.On("GetByID", ctx, "prov-1").Return(&domain.Provider{ID: "prov-1"}, nil)
	providers.On("SolutionIDs", ctx, "prov-1").Return([]string{solID}, nil)
	reviews.On("ListCountableDirect", ctx, "prov-1").Return([]domain.Review{shared}, nil)
	reviews.On("ListCountableBySolutions", ctx, []string{solID}).Return([]domain.Review{shared}, nil)

	summary, err := svc.ProviderRatingSummary(ctx, "prov-1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ReviewCount)
	assert.InDelta(t, 4.0, summary.OverallRating, 1e-9)
}

func TestProviderRatingSummary_EmptySetIsZero(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	svc := newTestRatingService(reviews, providers, newFakeSummaryCache())
	ctx := context.Background()

	providers.On("GetByID", ctx, "prov-1").Return(&domain.Provider{ID: "prov-1"}, nil)
	providers.On("SolutionIDs", ctx, "prov-1").Return([]string{}, nil)
	reviews.On("ListCountableDirect", ctx, "prov-1").Return([]domain.Review{}, nil)
	reviews.On("ListCountableBySolutions", ctx, []string{}).Return([]domain.Review{}, nil)

	summary, err := svc.ProviderRatingSummary(ctx, "prov-1")

	require.NoError(t, err)
	assert.Equal(t, 0, summary.ReviewCount)
	assert.Equal(t, domain.EmptySetRating, summary.OverallRating)
	assert.Len(t, summary.CriteriaAverages, 13)
}

func TestProviderRatingSummary_CacheHitSkipsDatastore(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	summaryCache := newFakeSummaryCache()
	svc := newTestRatingService(reviews, providers, summaryCache)
	ctx := context.Background()

	cached := &domain.RatingSummary{OverallRating: 4.2, ReviewCount: 7}
	require.NoError(t, summaryCache.Set(ctx, cache.ProviderKey("prov-1"), cached))
	providers.On("GetByID", ctx, "prov-1").Return(&domain.Provider{ID: "prov-1"}, nil)

	summary, err := svc.ProviderRatingSummary(ctx, "prov-1")

	require.NoError(t, err)
	assert.Equal(t, cached, summary)
	reviews.AssertNotCalled(t, "ListCountableDirect", mock.Anything, mock.Anything)
	reviews.AssertNotCalled(t, "ListCountableBySolutions", mock.Anything, mock.Anything)
}

func TestProviderRatingSummary_DeletedProviderIgnoresCache(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	summaryCache := newFakeSummaryCache()
	svc := newTestRatingService(reviews, providers, summaryCache)
	ctx := context.Background()

	// A warm cache entry must not outlive the provider.
	stale := &domain.RatingSummary{OverallRating: 4.2, ReviewCount: 7}
	require.NoError(t, summaryCache.Set(ctx, cache.ProviderKey("prov-1"), stale))
	providers.On("GetByID", ctx, "prov-1").Return(nil, apperrors.NotFound("provider", "prov-1"))

	summary, err := svc.ProviderRatingSummary(ctx, "prov-1")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProviderRatingSummary_NotFound(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	svc := newTestRatingService(reviews, providers, newFakeSummaryCache())
	ctx := context.Background()

	providers.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("provider", "missing"))

	summary, err := svc.ProviderRatingSummary(ctx, "missing")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProviderRatingSummary_DatastoreFailure(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	svc := newTestRatingService(reviews, providers, newFakeSummaryCache())
	ctx := context.Background()

	providers.On("GetByID", ctx, "prov-1").Return(&domain.Provider{ID: "prov-1"}, nil)
	providers.On("SolutionIDs", ctx, "prov-1").Return([]string{}, nil)
	reviews.On("ListCountableDirect", ctx, "prov-1").Return(nil, errors.New("connection refused"))

	summary, err := svc.ProviderRatingSummary(ctx, "prov-1")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrAggregation)
}

func TestSolutionRatingSummary(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	summaryCache := newFakeSummaryCache()
	svc := newTestRatingService(reviews, providers, summaryCache)
	ctx := context.Background()

	solID := "sol-1"
	providers.On("GetSolution", ctx, solID).Return(&domain.Solution{ID: solID, ProviderID: "prov-1"}, nil)
	reviews.On("ListCountableBySolution", ctx, solID).Return([]domain.Review{
		approvedReview("r1", "prov-1", &solID, 5.0),
		approvedReview("r2", "prov-1", &solID, 4.0),
	}, nil)

	summary, err := svc.SolutionRatingSummary(ctx, solID)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.ReviewCount)
	assert.InDelta(t, 4.5, summary.OverallRating, 1e-9)
}

func TestSolutionRatingSummary_NotFound(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	svc := newTestRatingService(reviews, providers, newFakeSummaryCache())
	ctx := context.Background()

	providers.On("GetSolution", ctx, "missing").Return(nil, apperrors.NotFound("solution", "missing"))

	summary, err := svc.SolutionRatingSummary(ctx, "missing")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSolutionRatingSummary_DatastoreFailure(t *testing.T) {
	reviews := new(mockReviewRepository)
	providers := new(mockProviderRepository)
	svc := newTestRatingService(reviews, providers, newFakeSummaryCache())
	ctx := context.Background()

	providers.On("GetSolution", ctx, "sol-1").Return(&domain.Solution{ID: "sol-1", ProviderID: "prov-1"}, nil)
	reviews.On("ListCountableBySolution", ctx, "sol-1").Return(nil, errors.New("connection refused"))

	summary, err := svc.SolutionRatingSummary(ctx, "sol-1")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrAggregation)
}
