package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/solavalia/reviews-service/internal/cache"
	"github.com/solavalia/reviews-service/internal/config"
	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/internal/repository"
	apperrors "github.com/solavalia/reviews-service/pkg/errors"
)

// overallScoreTolerance is the maximum allowed gap between a client-supplied
// overall score and the score derived from the criteria. Anything within half
// a rounding step of the stored precision is accepted.
const overallScoreTolerance = 0.005

// SummaryCache is the subset of the rating cache the services need.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*domain.RatingSummary, error)
	Set(ctx context.Context, key string, summary *domain.RatingSummary) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher publishes review lifecycle events. Publish failures are
// logged but never fail the originating request.
type EventPublisher interface {
	PublishReviewSubmitted(ctx context.Context, review *domain.Review) error
	PublishStatusChanged(ctx context.Context, review *domain.Review, oldStatus domain.Status, changedBy string) error
	PublishFeatured(ctx context.Context, reviewID string, featured bool, changedBy string, changedAt time.Time) error
}

// SubmitReviewInput carries a review submission. Exactly one parent is
// named: ProviderID for a direct provider review, or SolutionID for a
// solution review (the owning provider is derived).
type SubmitReviewInput struct {
	ProviderID     *string
	SolutionID     *string
	UserID         string
	OverallScore   *float64
	CriteriaScores domain.CriteriaScores
	Title          *string
	Comment        string
}

// ReviewService implements review submission, listing and moderation.
type ReviewService struct {
	reviews   repository.ReviewRepository
	providers repository.ProviderRepository
	events    EventPublisher
	cache     SummaryCache
	cfg       config.ReviewConfig
	logger    *slog.Logger
}

// NewReviewService creates a review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	providers repository.ProviderRepository,
	events EventPublisher,
	summaryCache SummaryCache,
	cfg config.ReviewConfig,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		providers: providers,
		events:    events,
		cache:     summaryCache,
		cfg:       cfg,
		logger:    logger,
	}
}

// SubmitReview validates and stores a new review in pending status.
func (s *ReviewService) SubmitReview(ctx context.Context, input SubmitReviewInput) (*domain.Review, error) {
	fields := make(map[string]string)

	if input.ProviderID == nil && input.SolutionID == nil {
		fields["provider_id"] = "either provider_id or solution_id is required"
	}
	if input.ProviderID != nil && input.SolutionID != nil {
		fields["solution_id"] = "provide only one of provider_id and solution_id"
	}
	if input.UserID == "" {
		fields["user_id"] = "user_id is required"
	}

	// Length limits count characters, not bytes; accented text is common
	// in this domain.
	comment := strings.TrimSpace(input.Comment)
	if commentLen := utf8.RuneCountInString(comment); commentLen < s.cfg.MinCommentLength {
		fields["comment"] = fmt.Sprintf("comment must be at least %d characters", s.cfg.MinCommentLength)
	} else if commentLen > s.cfg.MaxCommentLength {
		fields["comment"] = fmt.Sprintf("comment must be at most %d characters", s.cfg.MaxCommentLength)
	}

	if input.Title != nil && utf8.RuneCountInString(*input.Title) > s.cfg.MaxTitleLength {
		fields["title"] = fmt.Sprintf("title must be at most %d characters", s.cfg.MaxTitleLength)
	}

	for key, problem := range input.CriteriaScores.Invalid() {
		fields["criteria_scores."+key] = problem
	}

	overall, overallFields := resolveOverallScore(input.OverallScore, input.CriteriaScores)
	for key, problem := range overallFields {
		fields[key] = problem
	}

	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	providerID, solutionID, err := s.resolveParent(ctx, input.ProviderID, input.SolutionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:             uuid.New().String(),
		ProviderID:     providerID,
		SolutionID:     solutionID,
		UserID:         input.UserID,
		OverallScore:   overall,
		CriteriaScores: input.CriteriaScores,
		Title:          input.Title,
		Comment:        comment,
		Status:         domain.StatusPending,
		Featured:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.events.PublishReviewSubmitted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review submitted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateSummaries(ctx, review)

	return review, nil
}

// resolveParent validates the named parent exists and returns the owning
// provider id plus the solution id for solution-parented reviews.
func (s *ReviewService) resolveParent(ctx context.Context, providerID, solutionID *string) (string, *string, error) {
	if solutionID != nil {
		solution, err := s.providers.GetSolution(ctx, *solutionID)
		if err != nil {
			return "", nil, err
		}
		return solution.ProviderID, solutionID, nil
	}

	provider, err := s.providers.GetByID(ctx, *providerID)
	if err != nil {
		return "", nil, err
	}
	return provider.ID, nil, nil
}

// resolveOverallScore applies the score contract: with criteria present the
// stored score is derived from their mean, and a client-supplied score must
// agree within tolerance; without criteria the client score is required.
func resolveOverallScore(clientScore *float64, scores domain.CriteriaScores) (float64, map[string]string) {
	fields := make(map[string]string)

	derived, hasCriteria := domain.DeriveOverallScore(scores)
	if hasCriteria {
		if clientScore != nil && math.Abs(*clientScore-derived) > overallScoreTolerance {
			fields["overall_score"] = fmt.Sprintf("overall_score %.2f does not match criteria mean %.2f", *clientScore, derived)
		}
		return derived, fields
	}

	if clientScore == nil {
		fields["overall_score"] = "overall_score is required when no criteria scores are provided"
		return 0, fields
	}
	if *clientScore < float64(domain.MinCriterionScore) || *clientScore > float64(domain.MaxCriterionScore) {
		fields["overall_score"] = "overall_score must be between 1 and 5"
		return 0, fields
	}

	return domain.Round2(*clientScore), fields
}

// GetReview retrieves one review. Non-moderators only see approved reviews;
// anything else reads as not found so moderation state is not leaked.
func (s *ReviewService) GetReview(ctx context.Context, id string, moderator bool) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !moderator && review.Status != domain.StatusApproved {
		return nil, apperrors.NotFound("review", id)
	}

	return review, nil
}

// ListReviews returns a page of reviews. Non-moderators are always served
// the approved subset regardless of the requested status filter.
func (s *ReviewService) ListReviews(ctx context.Context, filter repository.ReviewFilter, moderator bool) ([]domain.Review, int, error) {
	if filter.Status != nil && !domain.IsValidStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *filter.Status))
	}

	if !moderator {
		approved := domain.StatusApproved
		filter.Status = &approved
	}

	switch filter.Sort {
	case "", repository.SortNewest:
		filter.Sort = repository.SortNewest
	case repository.SortRating:
	default:
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid sort %q", filter.Sort))
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	return s.reviews.List(ctx, filter)
}

// Moderate applies a moderation action to a review. Invalid transitions are
// rejected and leave the stored status untouched. Concurrent moderation of
// the same review is last write wins.
func (s *ReviewService) Moderate(ctx context.Context, id, action, changedBy string) (*domain.Review, error) {
	target, ok := domain.StatusForAction(action)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid moderation action %q", action))
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !review.CanTransitionTo(target) {
		return nil, apperrors.InvalidTransition(string(review.Status), string(target))
	}

	now := time.Now().UTC()
	if err := s.reviews.UpdateStatus(ctx, id, target, now); err != nil {
		return nil, fmt.Errorf("update review status: %w", err)
	}

	oldStatus := review.Status
	review.Status = target
	review.UpdatedAt = now

	if err := s.events.PublishStatusChanged(ctx, review, oldStatus, changedBy); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish status changed event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateSummaries(ctx, review)

	s.logger.InfoContext(ctx, "review moderated",
		slog.String("review_id", review.ID),
		slog.String("old_status", string(oldStatus)),
		slog.String("new_status", string(target)),
		slog.String("changed_by", changedBy),
	)

	return review, nil
}

// SetFeatured toggles the moderator-curated featured flag. The flag is
// independent of moderation status and does not affect aggregates.
func (s *ReviewService) SetFeatured(ctx context.Context, id string, featured bool, changedBy string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.reviews.SetFeatured(ctx, id, featured, now); err != nil {
		return nil, fmt.Errorf("set review featured: %w", err)
	}

	review.Featured = featured
	review.UpdatedAt = now

	if err := s.events.PublishFeatured(ctx, review.ID, featured, changedBy, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish featured event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateSummaries(ctx, review)

	return review, nil
}

// invalidateSummaries drops cached rating summaries affected by the review.
// Cache failures are logged only; the datastore remains the source of truth.
func (s *ReviewService) invalidateSummaries(ctx context.Context, review *domain.Review) {
	keys := []string{cache.ProviderKey(review.ProviderID)}
	if review.SolutionID != nil {
		keys = append(keys, cache.SolutionKey(*review.SolutionID))
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate rating cache",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
}
