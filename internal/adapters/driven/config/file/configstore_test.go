package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("chunk.size", 200))
	assert.FileExists(t, store.Path())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[chunk]
size = 400
overlap = 40

[similarity]
threshold = 0.9

[search]
delay = "1500ms"
results_per_query = 5

[section]
fallback_whole_document = true
start_phrases = ["文獻探討", "related work"]

[embedding]
provider = "gemini"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 400, store.GetInt("chunk.size"))
	assert.Equal(t, 40, store.GetInt("chunk.overlap"))
	assert.Equal(t, 0.9, store.GetFloat("similarity.threshold"))
	assert.Equal(t, 1500*time.Millisecond, store.GetDuration("search.delay"))
	assert.Equal(t, 5, store.GetInt("search.results_per_query"))
	assert.True(t, store.GetBool("section.fallback_whole_document"))
	assert.Equal(t, []string{"文獻探討", "related work"}, store.GetStringSlice("section.start_phrases"))
	assert.Equal(t, "gemini", store.GetString("embedding.provider"))
}

func TestConfigStore_TypedGettersConvert(t *testing.T) {
	tmpDir := t.TempDir()
	content := "threshold = 1\ndelay = 3\nname = \"x\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 1.0, store.GetFloat("threshold"))
	assert.Equal(t, 3*time.Second, store.GetDuration("delay"))
	assert.Zero(t, store.GetInt("name"))
	assert.Zero(t, store.GetDuration("name"))
	assert.False(t, store.GetBool("name"))
	assert.Nil(t, store.GetStringSlice("name"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_SaveWritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))
	require.NoError(t, store.Set("chunk.size", 250))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "[chunk]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "openai", reloaded.GetString("llm.provider"))
	assert.Equal(t, "gpt-4o-mini", reloaded.GetString("llm.model"))
	assert.Equal(t, 250, reloaded.GetInt("chunk.size"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Load())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("chunk.size", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("chunk.size")
		}()
	}
	wg.Wait()

	_, ok := store.Get("chunk.size")
	assert.True(t, ok)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"a.b":   1,
		"a.c":   "x",
		"top":   true,
		"d.e.f": 2.5,
	})

	assert.Equal(t, map[string]any{
		"a":   map[string]any{"b": 1, "c": "x"},
		"top": true,
		"d":   map[string]any{"e": map[string]any{"f": 2.5}},
	}, nested)
}

func TestFlattenNestRoundTrip(t *testing.T) {
	flat := map[string]any{"a.b": 1, "a.c.d": "x", "e": false}
	assert.Equal(t, flat, flattenMap(nestMap(flat), ""))
}
