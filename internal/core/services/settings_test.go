package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/storage/memory"
	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// newTestSettings returns a service reading env from the given map.
func newTestSettings(store *memory.ConfigStore, env map[string]string) *SettingsService {
	svc := NewSettingsService(store, nil)
	svc.getenv = func(k string) string { return env[k] }
	return svc
}

// mockValidator records validation calls.
type mockValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newTestSettings(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultConfig(), settings.Processing)
	assert.Empty(t, settings.Embedding.Provider)
	assert.Empty(t, settings.LLM.Provider)
	assert.False(t, settings.Search.IsConfigured())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"chunk.size":               int64(200),
		"chunk.overlap":            int64(0),
		"similarity.threshold":     0.9,
		"search.results_per_query": int64(5),
		"search.delay":             "500ms",
		"section.max_chars":        int64(5000),
		"section.whole_document":   true,
		"cache.dir":                "/tmp/c",
		"embedding.provider":       "openai",
		"embedding.model":          "text-embedding-3-large",
		"embedding.api_key":        "file-key",
		"search.api_key":           "search-key",
		"search.engine_id":         "cx",
	})
	service := newTestSettings(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	p := settings.Processing
	assert.Equal(t, 200, p.ChunkSize)
	assert.Equal(t, 0, p.ChunkOverlap)
	assert.InDelta(t, 0.9, p.SimilarityThreshold, 1e-9)
	assert.Equal(t, 5, p.SearchResultsPerQuery)
	assert.Equal(t, 500*time.Millisecond, p.SearchDelay)
	assert.Equal(t, 5000, p.MaxSectionChars)
	assert.True(t, p.WholeDocumentFallback)
	assert.Equal(t, "/tmp/c", p.CacheDir)
	assert.Equal(t, domain.DefaultReportDir, p.ReportDir)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "file-key", settings.Embedding.APIKey)
	assert.True(t, settings.Search.IsConfigured())
}

func TestSettingsService_Get_InvalidProviderIgnored(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{"embedding.provider": "invalid"})
	service := newTestSettings(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Empty(t, settings.Embedding.Provider)
}

func TestSettingsService_Get_GoogleKeySelectsGemini(t *testing.T) {
	service := newTestSettings(memory.NewConfigStore(), map[string]string{
		EnvGoogleAPIKey: "g-key",
		EnvGoogleCSEID:  "cse",
	})

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderGemini, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-004", settings.Embedding.Model)
	assert.Equal(t, "g-key", settings.Embedding.APIKey)
	assert.Equal(t, domain.AIProviderGemini, settings.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", settings.LLM.Model)

	// The search key falls back to the general Google key.
	assert.Equal(t, "g-key", settings.Search.APIKey)
	assert.Equal(t, "cse", settings.Search.EngineID)
}

func TestSettingsService_Get_EnvPrecedence(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"embedding.provider": "ollama",
		"llm.provider":       "anthropic",
	})
	service := newTestSettings(store, map[string]string{
		EnvGoogleAPIKey:       "g-key",
		EnvGoogleSearchAPIKey: "s-key",
		EnvAnthropicAPIKey:    "a-key",
		EnvOllamaBaseURL:      "http://gpu:11434",
	})

	settings, err := service.Get()
	require.NoError(t, err)

	// Configured providers win over env selection.
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "http://gpu:11434", settings.Embedding.BaseURL)
	assert.Empty(t, settings.Embedding.APIKey)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "a-key", settings.LLM.APIKey)
	assert.Equal(t, "s-key", settings.Search.APIKey)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := newTestSettings(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Processing.ChunkSize = 400
	settings.Processing.SearchDelay = 3 * time.Second
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small", APIKey: "sk"}
	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 400, got.Processing.ChunkSize)
	assert.Equal(t, 3*time.Second, got.Processing.SearchDelay)
	assert.Equal(t, "sk", got.Embedding.APIKey)
}

func TestSettingsService_SaveSkipsEnvSecrets(t *testing.T) {
	store := memory.NewConfigStore()
	service := newTestSettings(store, map[string]string{EnvGoogleAPIKey: "g-key"})

	settings, err := service.Get()
	require.NoError(t, err)
	require.NoError(t, service.Save(settings))

	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists)
	_, exists = store.Get("search.api_key")
	assert.False(t, exists)
	assert.Equal(t, "gemini", store.GetString("embedding.provider"))
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, s *domain.AppSettings)
	}{
		{
			name: "int", key: "chunk.size", value: "120",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, 120, s.Processing.ChunkSize) },
		},
		{
			name: "float", key: "similarity.threshold", value: "0.75",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.InDelta(t, 0.75, s.Processing.SimilarityThreshold, 1e-9)
			},
		},
		{
			name: "duration", key: "search.delay", value: "1500ms",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.Equal(t, 1500*time.Millisecond, s.Processing.SearchDelay)
			},
		},
		{
			name: "bool", key: "section.whole_document", value: "true",
			check: func(t *testing.T, s *domain.AppSettings) { assert.True(t, s.Processing.WholeDocumentFallback) },
		},
		{
			name: "provider", key: "llm.provider", value: "ollama",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.Equal(t, domain.AIProviderOllama, s.LLM.Provider)
			},
		},
		{name: "unknown key", key: "search.mode", value: "hybrid", wantErr: true},
		{name: "bad int", key: "chunk.size", value: "big", wantErr: true},
		{name: "bad duration", key: "search.delay", value: "soon", wantErr: true},
		{name: "bad provider", key: "embedding.provider", value: "cohere", wantErr: true},
		{name: "overlap not below size", key: "chunk.overlap", value: "300", wantErr: true},
		{name: "too many results", key: "search.results_per_query", value: "11", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := newTestSettings(store, nil)

			err := service.Set(tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				_, exists := store.Get(tt.key)
				assert.False(t, exists, "rejected value must not be stored")
				return
			}
			require.NoError(t, err)

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	t.Run("ollama gets local base url and default model", func(t *testing.T) {
		service := newTestSettings(memory.NewConfigStore(), nil)

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
		assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
		assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	})

	t.Run("anthropic rejected", func(t *testing.T) {
		service := newTestSettings(memory.NewConfigStore(), nil)

		err := service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not support embeddings")
	})

	t.Run("cloud provider requires key", func(t *testing.T) {
		service := newTestSettings(memory.NewConfigStore(), nil)

		err := service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key required")
	})

	t.Run("env key satisfies requirement", func(t *testing.T) {
		store := memory.NewConfigStore()
		service := newTestSettings(store, map[string]string{EnvGoogleAPIKey: "g-key"})

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderGemini, "", ""))
		assert.Equal(t, "gemini", store.GetString("embedding.provider"))
		_, exists := store.Get("embedding.api_key")
		assert.False(t, exists)
	})
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service := newTestSettings(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "a-key"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Equal(t, "a-key", settings.LLM.APIKey)
	assert.Empty(t, settings.LLM.BaseURL)

	assert.Error(t, service.SetLLMProvider("bogus", "", ""))
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("no embedding provider", func(t *testing.T) {
		service := newTestSettings(memory.NewConfigStore(), nil)
		assert.ErrorIs(t, service.Validate(), domain.ErrEmbeddingUnavailable)
	})

	t.Run("configured", func(t *testing.T) {
		service := newTestSettings(memory.NewConfigStore(), map[string]string{EnvOpenAIAPIKey: "sk"})
		assert.NoError(t, service.Validate())
	})

	t.Run("bad processing config", func(t *testing.T) {
		store := memory.NewConfigStoreWith(map[string]any{"chunk.overlap": int64(500)})
		service := newTestSettings(store, map[string]string{EnvOpenAIAPIKey: "sk"})
		assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
	})
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	validator := &mockValidator{llmErr: errors.New("unreachable")}
	service := NewSettingsService(memory.NewConfigStoreWith(map[string]any{
		"embedding.provider": "ollama",
		"llm.provider":       "ollama",
	}), validator)
	service.getenv = func(string) string { return "" }

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, domain.AIProviderOllama, validator.embedding.Provider)

	assert.EqualError(t, service.ValidateLLMConfig(), "unreachable")
}

func TestSettingsService_ValidateWithoutValidator(t *testing.T) {
	service := newTestSettings(memory.NewConfigStore(), nil)

	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.NoError(t, service.ValidateLLMConfig())
}

func TestSettableKeys_Sorted(t *testing.T) {
	keys := SettableKeys()
	require.NotEmpty(t, keys)
	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "chunk.size")
}
