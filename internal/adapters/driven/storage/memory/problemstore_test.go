package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

func scope() domain.TenantScope {
	return domain.TenantScope{TenantID: "tenant-1"}
}

func seedProblems(t *testing.T, store *ProblemStore) {
	t.Helper()
	ctx := context.Background()

	problems := []domain.Problem{
		{TenantID: "tenant-1", Title: "Quadratics", Content: "Solve the quadratic equation x^2 - 5x + 6 = 0", Subject: "Mathematics", Category: "Algebra"},
		{TenantID: "tenant-1", Title: "Derivatives", Content: "Find the derivative of the polynomial function", Subject: "Mathematics", Category: "Calculus"},
		{TenantID: "tenant-2", Title: "Other tenant", Content: "Solve the quadratic equation x^2 - 1 = 0", Subject: "Mathematics", Category: "Algebra"},
	}
	for i := range problems {
		require.NoError(t, store.Save(ctx, &problems[i]))
		require.NotEmpty(t, problems[i].ID, "Save assigns an ID")
	}
}

func TestProblemStore_SearchRanksByOverlap(t *testing.T) {
	store := NewProblemStore()
	seedProblems(t, store)

	results, err := store.Search(context.Background(), "solve the quadratic equation", scope(), 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Quadratics", results[0].Title, "strongest overlap first")
	assert.Equal(t, "Derivatives", results[1].Title)
}

func TestProblemStore_SearchScopedToTenant(t *testing.T) {
	store := NewProblemStore()
	seedProblems(t, store)

	results, err := store.Search(context.Background(), "quadratic equation",
		domain.TenantScope{TenantID: "tenant-2"}, 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Other tenant", results[0].Title)
}

func TestProblemStore_SearchRespectsLimit(t *testing.T) {
	store := NewProblemStore()
	seedProblems(t, store)

	results, err := store.Search(context.Background(), "solve the quadratic equation", scope(), 1)

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestProblemStore_SearchNoHits(t *testing.T) {
	store := NewProblemStore()
	seedProblems(t, store)

	results, err := store.Search(context.Background(), "photosynthesis chloroplast", scope(), 10)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProblemStore_GetAndUpdate(t *testing.T) {
	store := NewProblemStore()
	ctx := context.Background()

	problem := domain.Problem{TenantID: "tenant-1", Title: "Original", Content: "Compute the area of the triangle"}
	require.NoError(t, store.Save(ctx, &problem))

	got, err := store.Get(ctx, problem.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)

	problem.Title = "Renamed"
	require.NoError(t, store.Save(ctx, &problem))

	got, err = store.Get(ctx, problem.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestProblemStore_GetMissing(t *testing.T) {
	store := NewProblemStore()

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProblemStore_ListNewestFirst(t *testing.T) {
	store := NewProblemStore()
	seedProblems(t, store)

	results, err := store.List(context.Background(), scope(), 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Derivatives", results[0].Title, "most recent insert first")
	assert.Equal(t, "Quadratics", results[1].Title)
}
