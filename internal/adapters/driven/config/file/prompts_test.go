package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".plagcheck", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAIScore)
	require.NoError(t, err)

	for _, f := range []string{"ai_score.txt", "search_queries.txt", "adjudicate.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_DefaultsFormatCleanly(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	aiScore, err := store.Load(driven.PromptAIScore)
	require.NoError(t, err)
	assert.NotContains(t, fmt.Sprintf(aiScore, "passage"), "%!")

	queries, err := store.Load(driven.PromptSearchQueries)
	require.NoError(t, err)
	assert.NotContains(t, fmt.Sprintf(queries, "passage"), "%!")

	adjudicate, err := store.Load(driven.PromptAdjudicate)
	require.NoError(t, err)
	out := fmt.Sprintf(adjudicate, "passage", "https://example.com", "source", 87.5)
	assert.NotContains(t, out, "%!")
	assert.Contains(t, out, "87.5")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "評分這段文字: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai_score.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAIScore)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptAdjudicate)
	require.NoError(t, os.Remove(filepath.Join(dir, "adjudicate.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptAdjudicate)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptAdjudicate], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptSearchQueries)
	require.NoError(t, err)

	modified := "modified: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "search_queries.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptSearchQueries)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	reloaded, err := store.Load(driven.PromptSearchQueries)
	require.NoError(t, err)
	assert.Equal(t, modified, reloaded)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "pre-existing custom prompt"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "adjudicate.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptAIScore)

	data, err := os.ReadFile(filepath.Join(dir, "adjudicate.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai_score.txt"), []byte("\n\n  prompt content  \n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAIScore)
	require.NoError(t, err)
	assert.Equal(t, "prompt content", prompt)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)

	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = store.Load(driven.PromptAIScore)
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}
