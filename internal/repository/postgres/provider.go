package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/solavalia/reviews-service/internal/domain"
	"github.com/solavalia/reviews-service/pkg/database"
	apperrors "github.com/solavalia/reviews-service/pkg/errors"
)

// ProviderRepository implements provider and solution lookups using
// PostgreSQL.
type ProviderRepository struct {
	pool database.DBTX
}

// NewProviderRepository creates a new PostgreSQL-backed provider repository.
func NewProviderRepository(pool database.DBTX) *ProviderRepository {
	return &ProviderRepository{pool: pool}
}

// GetByID retrieves a provider by its id.
func (r *ProviderRepository) GetByID(ctx context.Context, id string) (*domain.Provider, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM providers
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProvider", query)
	row := r.pool.QueryRow(ctx, query, id)

	var p domain.Provider
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.CreatedAt, &p.UpdatedAt)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("provider", id)
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}

	return &p, nil
}

// GetSolution retrieves a solution by its id.
func (r *ProviderRepository) GetSolution(ctx context.Context, id string) (*domain.Solution, error) {
	query := `
		SELECT id, provider_id, name, created_at, updated_at
		FROM solutions
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetSolution", query)
	row := r.pool.QueryRow(ctx, query, id)

	var s domain.Solution
	err := row.Scan(&s.ID, &s.ProviderID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("solution", id)
		}
		return nil, fmt.Errorf("get solution: %w", err)
	}

	return &s, nil
}

// SolutionIDs returns the ids of all solutions owned by the provider.
func (r *ProviderRepository) SolutionIDs(ctx context.Context, providerID string) ([]string, error) {
	query := `
		SELECT id
		FROM solutions
		WHERE provider_id = $1
		ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListSolutionIDs", query)
	rows, err := r.pool.Query(ctx, query, providerID)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list solution ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			end(err)
			return nil, fmt.Errorf("scan solution id: %w", err)
		}
		ids = append(ids, id)
	}

	err = rows.Err()
	end(err)
	if err != nil {
		return nil, fmt.Errorf("iterate solution ids: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}
