package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	problems := []domain.Problem{
		{TenantID: "tenant-1", Title: "Quadratics", Content: "Solve the quadratic equation x squared minus five x plus six equals zero", Subject: "Mathematics", Category: "Algebra"},
		{TenantID: "tenant-1", Title: "Dice", Content: "Compute the probability of rolling two dice and getting seven", Subject: "Mathematics", Category: "Probability & Statistics"},
		{TenantID: "tenant-2", Title: "Foreign", Content: "Solve the quadratic equation for the other tenant", Subject: "Mathematics", Category: "Algebra"},
	}
	for i := range problems {
		require.NoError(t, store.Save(ctx, &problems[i]))
	}
}

func TestStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening must not re-run applied migrations.
	second, err := NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestStore_SearchMatchesContent(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	results, err := store.Search(context.Background(), "solve the quadratic equation", domain.TenantScope{TenantID: "tenant-1"}, 10)

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Quadratics", results[0].Title)
	for _, p := range results {
		assert.Equal(t, "tenant-1", p.TenantID)
	}
}

func TestStore_SearchScopedToTenant(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	results, err := store.Search(context.Background(), "quadratic equation", domain.TenantScope{TenantID: "tenant-2"}, 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Foreign", results[0].Title)
}

func TestStore_SearchSurvivesNoisyOCRText(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	// Raw OCR text carrying characters that are FTS5 operators.
	results, err := store.Search(context.Background(),
		`1. Solve "the" (quadratic) equation - NOT by guessing`,
		domain.TenantScope{TenantID: "tenant-1"}, 10)

	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestStore_SearchEmptyQuery(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	results, err := store.Search(context.Background(), "   ", domain.TenantScope{TenantID: "tenant-1"}, 10)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_SaveAssignsIDAndGetRoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	problem := domain.Problem{TenantID: "tenant-1", Title: "Area", Content: "Find the area of the triangle"}
	require.NoError(t, store.Save(ctx, &problem))
	require.NotEmpty(t, problem.ID)

	got, err := store.Get(ctx, problem.ID)
	require.NoError(t, err)
	assert.Equal(t, problem, *got)
}

func TestStore_UpdateReindexes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := domain.TenantScope{TenantID: "tenant-1"}

	problem := domain.Problem{TenantID: "tenant-1", Content: "original wording about polynomials"}
	require.NoError(t, store.Save(ctx, &problem))

	problem.Content = "replacement wording about trigonometry"
	require.NoError(t, store.Save(ctx, &problem))

	hits, err := store.Search(ctx, "trigonometry", scope, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	stale, err := store.Search(ctx, "polynomials", scope, 10)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)

	results, err := store.List(context.Background(), domain.TenantScope{TenantID: "tenant-1"}, 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Dice", results[0].Title, "most recent first")
}
