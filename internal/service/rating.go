package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/solavalia/reviews-service/internal/cache"
	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/internal/repository"
	apperrors "github.com/solavalia/reviews-service/pkg/errors"
)

// RatingService computes rating summaries at read time. Aggregates are never
// stored on the parent row; the datastore remains the single source of truth
// and the Redis layer is only a TTL cache in front of it.
type RatingService struct {
	reviews   repository.ReviewRepository
	providers repository.ProviderRepository
	cache     SummaryCache
	logger    *slog.Logger
}

// NewRatingService creates a rating service.
func NewRatingService(
	reviews repository.ReviewRepository,
	providers repository.ProviderRepository,
	summaryCache SummaryCache,
	logger *slog.Logger,
) *RatingService {
	return &RatingService{
		reviews:   reviews,
		providers: providers,
		cache:     summaryCache,
		logger:    logger,
	}
}

// ProviderRatingSummary returns the aggregate rating for a provider, rolling
// up reviews attached directly to it and reviews attached to its solutions.
// A review reachable through both paths counts once.
func (s *RatingService) ProviderRatingSummary(ctx context.Context, providerID string) (*domain.RatingSummary, error) {
	// Existence is checked before the cache so a removed provider stops
	// answering immediately instead of serving a stale summary until the
	// TTL expires.
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}

	key := cache.ProviderKey(providerID)
	if summary := s.cached(ctx, key); summary != nil {
		return summary, nil
	}

	solutionIDs, err := s.providers.SolutionIDs(ctx, providerID)
	if err != nil {
		return nil, apperrors.AggregationUnavailable(fmt.Errorf("list solutions for provider %s: %w", providerID, err))
	}

	direct, err := s.reviews.ListCountableDirect(ctx, providerID)
	if err != nil {
		return nil, apperrors.AggregationUnavailable(fmt.Errorf("list direct reviews for provider %s: %w", providerID, err))
	}

	bySolutions, err := s.reviews.ListCountableBySolutions(ctx, solutionIDs)
	if err != nil {
		return nil, apperrors.AggregationUnavailable(fmt.Errorf("list solution reviews for provider %s: %w", providerID, err))
	}

	summary := domain.Summarize(domain.DedupeByID(direct, bySolutions))

	s.store(ctx, key, &summary)

	return &summary, nil
}

// SolutionRatingSummary returns the aggregate rating for one solution.
func (s *RatingService) SolutionRatingSummary(ctx context.Context, solutionID string) (*domain.RatingSummary, error) {
	if _, err := s.providers.GetSolution(ctx, solutionID); err != nil {
		return nil, err
	}

	key := cache.SolutionKey(solutionID)
	if summary := s.cached(ctx, key); summary != nil {
		return summary, nil
	}

	reviews, err := s.reviews.ListCountableBySolution(ctx, solutionID)
	if err != nil {
		return nil, apperrors.AggregationUnavailable(fmt.Errorf("list reviews for solution %s: %w", solutionID, err))
	}

	summary := domain.Summarize(reviews)

	s.store(ctx, key, &summary)

	return &summary, nil
}

// cached returns a cached summary or nil. Cache errors degrade to a miss.
func (s *RatingService) cached(ctx context.Context, key string) *domain.RatingSummary {
	summary, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "rating cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return summary
}

func (s *RatingService) store(ctx context.Context, key string, summary *domain.RatingSummary) {
	if err := s.cache.Set(ctx, key, summary); err != nil {
		s.logger.WarnContext(ctx, "rating cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
