package repository

import (
	"context"
	"time"

	"github.com/solavalia/reviews-service/internal/domain"
)

// Sort orders accepted by review listings. Both orders break ties by id
// ascending so pagination stays deterministic.
const (
	SortNewest = "newest"
	SortRating = "rating"
)

// ReviewFilter defines filter criteria for listing reviews.
type ReviewFilter struct {
	ProviderID *string
	SolutionID *string
	Status     *domain.Status
	MinRating  *float64
	Featured   *bool
	Sort       string
	Page       int
	PerPage    int
}

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	// Create inserts a new review.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// List returns reviews matching the filter along with the total count.
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)

	// UpdateStatus sets the moderation status of a review. Last write wins;
	// concurrent moderation of the same review is not coordinated.
	UpdateStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error

	// SetFeatured toggles the moderator-only featured flag.
	SetFeatured(ctx context.Context, id string, featured bool, updatedAt time.Time) error

	// ListCountableDirect returns the approved reviews attached directly to
	// the provider (solution-parented reviews excluded).
	ListCountableDirect(ctx context.Context, providerID string) ([]domain.Review, error)

	// ListCountableBySolution returns the approved reviews of one solution.
	ListCountableBySolution(ctx context.Context, solutionID string) ([]domain.Review, error)

	// ListCountableBySolutions returns the approved reviews across the given
	// solutions. An empty id list yields an empty result.
	ListCountableBySolutions(ctx context.Context, solutionIDs []string) ([]domain.Review, error)
}

// ProviderRepository defines the persistence operations for providers and
// their solutions.
type ProviderRepository interface {
	// GetByID retrieves a provider by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Provider, error)

	// GetSolution retrieves a solution by its identifier.
	GetSolution(ctx context.Context, id string) (*domain.Solution, error)

	// SolutionIDs returns the ids of all solutions owned by the provider.
	SolutionIDs(ctx context.Context, providerID string) ([]string, error)
}
