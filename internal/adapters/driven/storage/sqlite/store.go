package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scanprep-labs/scanprep/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ProblemRepository = (*Store)(nil)

// Store is a SQLite-backed problem repository. Search uses an FTS5 index
// over title and content, ranked by bm25.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.scanprep/data/problems.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".scanprep", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "problems.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_problems.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Search returns up to limit problems matching the query text, scoped to
// the tenant, strongest bm25 rank first. A query with no indexable tokens
// returns no results.
func (s *Store) Search(ctx context.Context, query string, scope domain.TenantScope, limit int) ([]domain.Problem, error) {
	match := ftsQuery(query)
	if match == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.tenant_id, p.title, p.content, p.subject, p.category
		FROM problems_fts f
		JOIN problems p ON p.rowid = f.rowid
		WHERE problems_fts MATCH ? AND p.tenant_id = ?
		ORDER BY bm25(problems_fts)
		LIMIT ?
	`, match, scope.TenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("searching problems: %w", err)
	}
	defer rows.Close()

	return scanProblems(rows)
}

// Get retrieves a problem by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Problem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, title, content, subject, category
		FROM problems WHERE id = ?
	`, id)

	var p domain.Problem
	err := row.Scan(&p.ID, &p.TenantID, &p.Title, &p.Content, &p.Subject, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting problem: %w", err)
	}
	return &p, nil
}

// Save stores or updates a problem, assigning an ID on insert.
func (s *Store) Save(ctx context.Context, problem *domain.Problem) error {
	if problem.ID == "" {
		problem.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO problems (id, tenant_id, title, content, subject, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			title = excluded.title,
			content = excluded.content,
			subject = excluded.subject,
			category = excluded.category,
			updated_at = excluded.updated_at
	`, problem.ID, problem.TenantID, problem.Title, problem.Content,
		problem.Subject, problem.Category, now, now)

	if err != nil {
		return fmt.Errorf("saving problem: %w", err)
	}
	return nil
}

// List returns up to limit problems for the tenant, most recent first.
func (s *Store) List(ctx context.Context, scope domain.TenantScope, limit int) ([]domain.Problem, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unlimited
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, title, content, subject, category
		FROM problems
		WHERE tenant_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, scope.TenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing problems: %w", err)
	}
	defer rows.Close()

	return scanProblems(rows)
}

// scanProblems collects problem rows.
func scanProblems(rows *sql.Rows) ([]domain.Problem, error) {
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

// ftsQuery converts free text into an FTS5 OR-query of quoted tokens.
// Quoting disarms FTS operators ("NOT", "-", parentheses) that would
// otherwise make OCR text a syntax error.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.Trim(field, `"'`)
		token = strings.ReplaceAll(token, `"`, "")
		if token == "" {
			continue
		}
		tokens = append(tokens, `"`+token+`"`)
	}
	return strings.Join(tokens, " OR ")
}
