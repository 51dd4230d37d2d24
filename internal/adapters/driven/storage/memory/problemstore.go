package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
)

// Ensure ProblemStore implements the interface.
var _ driven.ProblemRepository = (*ProblemStore)(nil)

// ProblemStore is an in-memory implementation of driven.ProblemRepository.
// Search ranks by shared-token count against the problem content, which is
// a rough stand-in for the SQL engines' full-text relevance. Intended for
// tests and for running the pipeline without a database.
type ProblemStore struct {
	mu       sync.RWMutex
	problems map[string]domain.Problem
	order    []string // insertion order, newest last
}

// NewProblemStore creates a new in-memory problem store.
func NewProblemStore() *ProblemStore {
	return &ProblemStore{
		problems: make(map[string]domain.Problem),
	}
}

// Search returns up to limit problems sharing tokens with the query,
// most-shared first.
func (s *ProblemStore) Search(_ context.Context, query string, scope domain.TenantScope, limit int) ([]domain.Problem, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		problem domain.Problem
		shared  int
	}

	var hits []scored
	for _, id := range s.order {
		problem := s.problems[id]
		if problem.TenantID != scope.TenantID {
			continue
		}
		shared := overlap(queryTokens, tokenize(problem.Title+" "+problem.Content))
		if shared == 0 {
			continue
		}
		hits = append(hits, scored{problem: problem, shared: shared})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].shared > hits[j].shared
	})

	if limit < len(hits) {
		hits = hits[:limit]
	}
	result := make([]domain.Problem, len(hits))
	for i, h := range hits {
		result[i] = h.problem
	}
	return result, nil
}

// Get retrieves a problem by ID.
func (s *ProblemStore) Get(_ context.Context, id string) (*domain.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	problem, ok := s.problems[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &problem, nil
}

// Save stores or updates a problem, assigning an ID on insert.
func (s *ProblemStore) Save(_ context.Context, problem *domain.Problem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if problem.ID == "" {
		problem.ID = uuid.NewString()
	}
	if _, exists := s.problems[problem.ID]; !exists {
		s.order = append(s.order, problem.ID)
	}
	s.problems[problem.ID] = *problem
	return nil
}

// List returns up to limit problems for the tenant, most recent first.
func (s *ProblemStore) List(_ context.Context, scope domain.TenantScope, limit int) ([]domain.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Problem
	for i := len(s.order) - 1; i >= 0 && (limit <= 0 || len(result) < limit); i-- {
		problem := s.problems[s.order[i]]
		if problem.TenantID == scope.TenantID {
			result = append(result, problem)
		}
	}
	return result, nil
}

// Close releases resources.
func (s *ProblemStore) Close() error {
	return nil
}

// tokenize splits text into a set of lowercased alphanumeric tokens of
// three or more runes.
func tokenize(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, field)
		if utf8.RuneCountInString(token) < 3 {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// overlap counts tokens present in both sets.
func overlap(a, b map[string]struct{}) int {
	count := 0
	for token := range a {
		if _, ok := b[token]; ok {
			count++
		}
	}
	return count
}
