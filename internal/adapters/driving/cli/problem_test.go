package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemAddCmd_SavesWithTenant(t *testing.T) {
	repo := setupTestServices(t)

	out, err := executeCommand(t, "problem", "add",
		"--title", "Fractions", "--subject", "Mathematics", "--category", "Arithmetic",
		"Simplify the fraction 6/8.")

	require.NoError(t, err)
	assert.Contains(t, out, "Added problem ")

	problems, err := repo.List(context.Background(), testScope("local"), 10)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "Fractions", problems[0].Title)
	assert.Equal(t, "local", problems[0].TenantID)
	assert.NotEmpty(t, problems[0].ID)
}

func TestProblemListCmd_ListsSeeded(t *testing.T) {
	repo := setupTestServices(t)
	seedProblem(t, repo, "local", "Quadratics", "Solve x^2 = 4.")
	seedProblem(t, repo, "local", "", "A very long untitled problem content that should be shortened for the one-line listing output.")

	out, err := executeCommand(t, "problem", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Quadratics")
	assert.Contains(t, out, "...")
}

func TestProblemListCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "problem", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No problems stored.")
}

func TestProblemListCmd_JSON(t *testing.T) {
	repo := setupTestServices(t)
	seedProblem(t, repo, "local", "Quadratics", "Solve x^2 = 4.")

	out, err := executeCommand(t, "problem", "list", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"Title": "Quadratics"`)
}

func TestExcerptContent(t *testing.T) {
	assert.Equal(t, "short", excerptContent("short"))

	long := excerptContent(strings.Repeat("x", 70))
	assert.Len(t, long, 63)
	assert.True(t, strings.HasSuffix(long, "..."))
}
