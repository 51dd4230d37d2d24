package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scanprep-labs/scanprep/internal/adapters/driven/config/file"
	"github.com/scanprep-labs/scanprep/internal/adapters/driven/storage/memory"
	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/services"
)

// setupTestServices wires the command tree to in-memory services so tests
// never touch ~/.scanprep or the network. Returns a cleanup that unwires.
func setupTestServices(t *testing.T) *memory.ProblemStore {
	t.Helper()

	repo := memory.NewProblemStore()

	configStore, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	segmenter := services.NewAISegmenter(nil, services.NewSegmenter(), domain.LLMSettings{})
	matcher := services.NewMatcher(repo, nil, domain.DefaultMatcherSettings(), domain.LLMSettings{})
	suggester := services.NewSuggester()

	SetServices(&Services{
		Scan:     services.NewScanner(nil, segmenter, matcher, suggester),
		Match:    matcher,
		Suggest:  suggester,
		Settings: services.NewSettingsService(configStore),
		Problems: repo,
	})

	t.Cleanup(func() {
		SetServices(&Services{})
	})

	return repo
}

// executeCommand runs the root command with the given args and returns the
// combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag-bound globals between tests; cobra keeps flag
// values across Execute calls.
func resetFlags() {
	verbose = false
	tenantID = "local"
	scanText = ""
	scanJSON = false
	matchJSON = false
	suggestJSON = false
	problemJSON = false
	problemLimit = 20
	problemTitle = ""
	problemSubject = ""
	problemCategory = ""
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func testScope(tenant string) domain.TenantScope {
	return domain.TenantScope{TenantID: tenant}
}

func seedProblem(t *testing.T, repo *memory.ProblemStore, tenant, title, content string) {
	t.Helper()
	err := repo.Save(context.Background(), &domain.Problem{
		TenantID: tenant,
		Title:    title,
		Content:  content,
	})
	require.NoError(t, err)
}
