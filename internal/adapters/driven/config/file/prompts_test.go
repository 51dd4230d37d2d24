package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
)

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestPromptStore_LoadDefaults(t *testing.T) {
	store, _ := newTestPromptStore(t)

	seg, err := store.Load(driven.PromptSegmentation)
	require.NoError(t, err)
	assert.Contains(t, seg, "JSON array")
	assert.Contains(t, seg, "%s")

	rank, err := store.Load(driven.PromptRanking)
	require.NoError(t, err)
	assert.Contains(t, rank, "similarity_score")
	assert.Equal(t, 2, strings.Count(rank, "%s"))
}

func TestPromptStore_LazyInitialisation(t *testing.T) {
	store, dir := newTestPromptStore(t)

	// Nothing is created until the first Load.
	_, err := os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(err))

	_, err = store.Load(driven.PromptSegmentation)
	require.NoError(t, err)

	// Default files and README appear after initialisation.
	assert.FileExists(t, filepath.Join(dir, "prompts", "segmentation.txt"))
	assert.FileExists(t, filepath.Join(dir, "prompts", "ranking.txt"))
	assert.FileExists(t, filepath.Join(dir, "prompts", "README.md"))
}

func TestPromptStore_CustomPromptPreserved(t *testing.T) {
	store, dir := newTestPromptStore(t)

	promptDir := filepath.Join(dir, "prompts")
	require.NoError(t, os.MkdirAll(promptDir, 0700))
	custom := "my custom segmentation prompt: %s"
	require.NoError(t, os.WriteFile(filepath.Join(promptDir, "segmentation.txt"), []byte(custom), 0600))

	// Initialisation must not overwrite a file the user already created.
	got, err := store.Load(driven.PromptSegmentation)
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newTestPromptStore(t)

	first, err := store.Load(driven.PromptSegmentation)
	require.NoError(t, err)

	// Edit the file behind the cache; the cached copy is still served.
	path := filepath.Join(dir, "prompts", "segmentation.txt")
	require.NoError(t, os.WriteFile(path, []byte("edited prompt %s"), 0600))

	cached, err := store.Load(driven.PromptSegmentation)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	// Reload picks up the edit.
	store.Reload()
	fresh, err := store.Load(driven.PromptSegmentation)
	require.NoError(t, err)
	assert.Equal(t, "edited prompt %s", fresh)
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("no-such-prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown prompt")
}

func TestPromptStore_DeletedFileFallsBackToDefault(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := store.Load(driven.PromptRanking)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "prompts", "ranking.txt")))
	store.Reload()

	got, err := store.Load(driven.PromptRanking)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(defaultPrompts[driven.PromptRanking]), strings.TrimSpace(got))
}

func TestPromptStore_EmptyPromptRejected(t *testing.T) {
	store, dir := newTestPromptStore(t)

	promptDir := filepath.Join(dir, "prompts")
	require.NoError(t, os.MkdirAll(promptDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(promptDir, "ranking.txt"), []byte("   \n"), 0600))

	_, err := store.Load(driven.PromptRanking)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestPromptStore_WatchClosesCleanly(t *testing.T) {
	store, _ := newTestPromptStore(t)

	require.NoError(t, store.Watch())
	// Second call is a no-op rather than a second watcher.
	require.NoError(t, store.Watch())
	require.NoError(t, store.Close())
	// Close is idempotent once the watcher is gone.
	require.NoError(t, store.Close())
}
