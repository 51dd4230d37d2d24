package driven

import (
	"context"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

// ProblemRepository provides access to the platform's stored problems.
// Candidate retrieval is a black box to the matching core: results arrive
// in the engine's own relevance order and the core only reorders them
// after scoring. Candidates are fetched fresh per segment, never cached.
type ProblemRepository interface {
	// Search returns up to limit problems relevant to the query text,
	// scoped to the given tenant, in the engine's relevance order.
	// An empty result is a valid outcome, not an error.
	Search(ctx context.Context, query string, scope domain.TenantScope, limit int) ([]domain.Problem, error)

	// Get retrieves a problem by ID.
	// Returns domain.ErrNotFound if the problem does not exist.
	Get(ctx context.Context, id string) (*domain.Problem, error)

	// Save stores or updates a problem. An empty ID is assigned on insert.
	// The scan pipeline never calls this; it exists for seeding tools and
	// the manual-entry flow.
	Save(ctx context.Context, problem *domain.Problem) error

	// List returns up to limit problems for the given tenant, most recent
	// first.
	List(ctx context.Context, scope domain.TenantScope, limit int) ([]domain.Problem, error)

	// Close releases resources.
	Close() error
}
