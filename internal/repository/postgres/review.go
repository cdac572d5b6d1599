package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/internal/repository"
	"github.com/solavalia/reviews-service/pkg/database"
	apperrors "github.com/solavalia/reviews-service/pkg/errors"
)

const reviewColumns = "id, provider_id, solution_id, user_id, overall_score, criteria_scores, title, comment, status, featured, created_at, updated_at"

// ReviewRepository implements review persistence using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	criteriaJSON, err := json.Marshal(review.CriteriaScores)
	if err != nil {
		return fmt.Errorf("marshal criteria scores: %w", err)
	}

	query := `
		INSERT INTO reviews (id, provider_id, solution_id, user_id, overall_score, criteria_scores, title, comment, status, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	_, err = r.pool.Exec(ctx, query,
		review.ID,
		review.ProviderID,
		review.SolutionID,
		review.UserID,
		review.OverallScore,
		criteriaJSON,
		review.Title,
		review.Comment,
		review.Status,
		review.Featured,
		review.CreatedAt,
		review.UpdatedAt,
	)
	end(err)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its id.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReview", query)
	row := r.pool.QueryRow(ctx, query, id)

	review, err := scanReview(row)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return review, nil
}

// List returns reviews matching the filter with the total count, ordered
// deterministically (ties broken by id ascending).
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ProviderID != nil {
		conditions = append(conditions, fmt.Sprintf("provider_id = $%d", argIndex))
		args = append(args, *filter.ProviderID)
		argIndex++
	}

	if filter.SolutionID != nil {
		conditions = append(conditions, fmt.Sprintf("solution_id = $%d", argIndex))
		args = append(args, *filter.SolutionID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("overall_score >= $%d", argIndex))
		args = append(args, *filter.MinRating)
		argIndex++
	}

	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", argIndex))
		args = append(args, *filter.Featured)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := "ORDER BY created_at DESC, id ASC"
	if filter.Sort == repository.SortRating {
		orderClause = "ORDER BY overall_score DESC, id ASC"
	}

	query := fmt.Sprintf(`
		SELECT `+reviewColumns+`,
			   count(*) OVER() AS total_count
		FROM reviews
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		whereClause, orderClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var (
			rv           domain.Review
			criteriaJSON []byte
		)

		if err := rows.Scan(
			&rv.ID,
			&rv.ProviderID,
			&rv.SolutionID,
			&rv.UserID,
			&rv.OverallScore,
			&criteriaJSON,
			&rv.Title,
			&rv.Comment,
			&rv.Status,
			&rv.Featured,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			end(err)
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		if criteriaJSON != nil {
			if err := json.Unmarshal(criteriaJSON, &rv.CriteriaScores); err != nil {
				end(err)
				return nil, 0, fmt.Errorf("unmarshal criteria scores: %w", err)
			}
		}

		reviews = append(reviews, rv)
	}

	err = rows.Err()
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// UpdateStatus sets the moderation status of a review.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error {
	query := `
		UPDATE reviews
		SET status = $2, updated_at = $3
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "UpdateReviewStatus", query)
	ct, err := r.pool.Exec(ctx, query, id, status, updatedAt)
	end(err)
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// SetFeatured toggles the moderator-only featured flag.
func (r *ReviewRepository) SetFeatured(ctx context.Context, id string, featured bool, updatedAt time.Time) error {
	query := `
		UPDATE reviews
		SET featured = $2, updated_at = $3
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "SetReviewFeatured", query)
	ct, err := r.pool.Exec(ctx, query, id, featured, updatedAt)
	end(err)
	if err != nil {
		return fmt.Errorf("set review featured: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// ListCountableDirect returns the approved reviews attached directly to the
// provider, excluding solution-parented reviews.
func (r *ReviewRepository) ListCountableDirect(ctx context.Context, providerID string) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE provider_id = $1 AND solution_id IS NULL AND status = $2`

	return r.listCountable(ctx, "ListCountableDirect", query, providerID, domain.StatusApproved)
}

// ListCountableBySolution returns the approved reviews of one solution.
func (r *ReviewRepository) ListCountableBySolution(ctx context.Context, solutionID string) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE solution_id = $1 AND status = $2`

	return r.listCountable(ctx, "ListCountableBySolution", query, solutionID, domain.StatusApproved)
}

// ListCountableBySolutions returns the approved reviews across the given
// solutions.
func (r *ReviewRepository) ListCountableBySolutions(ctx context.Context, solutionIDs []string) ([]domain.Review, error) {
	if len(solutionIDs) == 0 {
		return []domain.Review{}, nil
	}

	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE solution_id = ANY($1) AND status = $2`

	return r.listCountable(ctx, "ListCountableBySolutions", query, solutionIDs, domain.StatusApproved)
}

func (r *ReviewRepository) listCountable(ctx context.Context, operation, query string, args ...any) ([]domain.Review, error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var (
			rv           domain.Review
			criteriaJSON []byte
		)

		if err := rows.Scan(
			&rv.ID,
			&rv.ProviderID,
			&rv.SolutionID,
			&rv.UserID,
			&rv.OverallScore,
			&criteriaJSON,
			&rv.Title,
			&rv.Comment,
			&rv.Status,
			&rv.Featured,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			end(err)
			return nil, fmt.Errorf("scan review row: %w", err)
		}

		if criteriaJSON != nil {
			if err := json.Unmarshal(criteriaJSON, &rv.CriteriaScores); err != nil {
				end(err)
				return nil, fmt.Errorf("unmarshal criteria scores: %w", err)
			}
		}

		reviews = append(reviews, rv)
	}

	err = rows.Err()
	end(err)
	if err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		rv           domain.Review
		criteriaJSON []byte
	)

	if err := row.Scan(
		&rv.ID,
		&rv.ProviderID,
		&rv.SolutionID,
		&rv.UserID,
		&rv.OverallScore,
		&criteriaJSON,
		&rv.Title,
		&rv.Comment,
		&rv.Status,
		&rv.Featured,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if criteriaJSON != nil {
		if err := json.Unmarshal(criteriaJSON, &rv.CriteriaScores); err != nil {
			return nil, fmt.Errorf("unmarshal criteria scores: %w", err)
		}
	}

	return &rv, nil
}
