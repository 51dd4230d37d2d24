// Package postgres provides a PostgreSQL-backed problem repository for
// deployments sharing one problem bank across services. Candidate
// retrieval uses websearch full-text queries ranked by ts_rank.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
)

// Ensure ProblemStore implements the interface.
var _ driven.ProblemRepository = (*ProblemStore)(nil)

// connectTimeout bounds the initial pool connection check.
const connectTimeout = 10 * time.Second

// ProblemStore is a PostgreSQL implementation of driven.ProblemRepository.
type ProblemStore struct {
	pool *pgxpool.Pool
}

// schema is applied on startup. The simple text search configuration is
// deliberate: OCR text is multilingual worksheet fragments, not prose, so
// language stemming does more harm than good.
const schema = `
CREATE TABLE IF NOT EXISTS problems (
    id         TEXT PRIMARY KEY,
    tenant_id  TEXT NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    content    TEXT NOT NULL,
    subject    TEXT NOT NULL DEFAULT '',
    category   TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    search_vec TSVECTOR GENERATED ALWAYS AS (
        to_tsvector('simple', title || ' ' || content)
    ) STORED
);

CREATE INDEX IF NOT EXISTS idx_problems_tenant ON problems (tenant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_problems_search ON problems USING GIN (search_vec);
`

// NewProblemStore connects to PostgreSQL and ensures the schema exists.
func NewProblemStore(ctx context.Context, connString string) (*ProblemStore, error) {
	if connString == "" {
		return nil, fmt.Errorf("postgres: connection string is required")
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &ProblemStore{pool: pool}, nil
}

// Search returns up to limit problems matching the query text, scoped to
// the tenant, strongest rank first.
func (s *ProblemStore) Search(ctx context.Context, query string, scope domain.TenantScope, limit int) ([]domain.Problem, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, title, content, subject, category
		FROM problems
		WHERE tenant_id = $1
		  AND search_vec @@ websearch_to_tsquery('simple', $2)
		ORDER BY ts_rank(search_vec, websearch_to_tsquery('simple', $2)) DESC
		LIMIT $3
	`, scope.TenantID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching problems: %w", err)
	}
	defer rows.Close()

	return collectProblems(rows)
}

// Get retrieves a problem by ID.
func (s *ProblemStore) Get(ctx context.Context, id string) (*domain.Problem, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, title, content, subject, category
		FROM problems WHERE id = $1
	`, id)

	var p domain.Problem
	err := row.Scan(&p.ID, &p.TenantID, &p.Title, &p.Content, &p.Subject, &p.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting problem: %w", err)
	}
	return &p, nil
}

// Save stores or updates a problem, assigning an ID on insert.
func (s *ProblemStore) Save(ctx context.Context, problem *domain.Problem) error {
	if problem.ID == "" {
		problem.ID = uuid.NewString()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO problems (id, tenant_id, title, content, subject, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			title = excluded.title,
			content = excluded.content,
			subject = excluded.subject,
			category = excluded.category,
			updated_at = now()
	`, problem.ID, problem.TenantID, problem.Title, problem.Content, problem.Subject, problem.Category)

	if err != nil {
		return fmt.Errorf("saving problem: %w", err)
	}
	return nil
}

// List returns up to limit problems for the tenant, most recent first.
func (s *ProblemStore) List(ctx context.Context, scope domain.TenantScope, limit int) ([]domain.Problem, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, title, content, subject, category
		FROM problems
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, scope.TenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing problems: %w", err)
	}
	defer rows.Close()

	return collectProblems(rows)
}

// Close releases the connection pool.
func (s *ProblemStore) Close() error {
	s.pool.Close()
	return nil
}

// collectProblems collects problem rows.
func collectProblems(rows pgx.Rows) ([]domain.Problem, error) {
	var problems []domain.Problem
	for rows.Next() {
		var p domain.Problem
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Title, &p.Content, &p.Subject, &p.Category); err != nil {
			return nil, fmt.Errorf("scanning problem: %w", err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating problems: %w", err)
	}
	return problems, nil
}
