package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCmd_TextRunsPipeline(t *testing.T) {
	repo := setupTestServices(t)
	seedProblem(t, repo, "local", "Addition drill", "What is 2+2? Show your work.")

	out, err := executeCommand(t, "scan", "--text",
		"1. What is 2+2? Show your work.\n2. Sketch the graph of a parabola opening upward.")

	require.NoError(t, err)
	assert.Contains(t, out, "Problem 1")
	assert.Contains(t, out, "Problem 2")
	assert.Contains(t, out, "Addition drill")
}

func TestScanCmd_TextInOtherTenantFindsNothing(t *testing.T) {
	repo := setupTestServices(t)
	seedProblem(t, repo, "other-tenant", "Addition drill", "What is 2+2? Show your work.")

	out, err := executeCommand(t, "scan", "--text", "What is 2+2? Show your work.")

	require.NoError(t, err)
	assert.Contains(t, out, "No matches.")
}

func TestScanCmd_RejectsMissingInput(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "scan")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image file or --text")
}

func TestScanCmd_ImageWithoutOCRFails(t *testing.T) {
	setupTestServices(t)

	path := t.TempDir() + "/sheet.png"
	writeFile(t, path, []byte("not really a png"))

	_, err := executeCommand(t, "scan", path)

	require.Error(t, err)
}

func TestScanCmd_MissingImageFile(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "scan", "/nonexistent/sheet.jpg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading image")
}

func TestScanCmd_JSONOutput(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "scan", "--json", "--text", "1. What is 2+2? Show me.\n2. What is 3+3? Explain it.")

	require.NoError(t, err)
	assert.Contains(t, out, `"Segments"`)
	assert.Contains(t, out, `"What is 2+2? Show me."`)
}

func TestMimeFromPath(t *testing.T) {
	assert.Equal(t, "image/png", mimeFromPath("/tmp/scan.PNG"))
	assert.Equal(t, "image/webp", mimeFromPath("sheet.webp"))
	assert.Equal(t, "image/jpeg", mimeFromPath("photo.jpg"))
	assert.Equal(t, "image/jpeg", mimeFromPath("no-extension"))
}
