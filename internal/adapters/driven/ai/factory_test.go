package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// newOllamaServer answers the tags endpoint used by Ping.
func newOllamaServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
	}{
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "gemini provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
				Model:    "text-embedding-004",
			},
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name: "unknown provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
			},
			wantErr:     true,
			errContains: "unsupported embedding provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			assert.Positive(t, svc.Dimensions())
		})
	}
}

func TestCreateEmbeddingService_OllamaUnknownModelUsesDefaultDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "some-custom-model",
	})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, 768, svc.Dimensions())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantErr  bool
	}{
		{
			name:     "ollama",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"},
		},
		{
			name:     "openai",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"},
		},
		{
			name:     "anthropic",
			settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-3-5-sonnet-latest"},
		},
		{
			name:     "gemini",
			settings: &domain.LLMSettings{Provider: domain.AIProviderGemini, APIKey: "k", Model: "gemini-2.5-flash"},
		},
		{
			name:     "unknown",
			settings: &domain.LLMSettings{Provider: "unknown"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported LLM provider")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.settings.Model, svc.ModelName())
		})
	}
}

func TestCreateAndValidateEmbeddingService_Unconfigured(t *testing.T) {
	svc, err := CreateAndValidateEmbeddingService(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, svc)

	svc, err = CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
	})
	assert.NoError(t, err)
	assert.Nil(t, svc)
}

func TestCreateAndValidateEmbeddingService_Reachable(t *testing.T) {
	srv := newOllamaServer(t, http.StatusOK)

	svc, err := CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
		Model:    "nomic-embed-text",
	})
	require.NoError(t, err)
	require.NotNil(t, svc)
	svc.Close()
}

func TestCreateAndValidateEmbeddingService_Unreachable(t *testing.T) {
	srv := newOllamaServer(t, http.StatusInternalServerError)

	svc, err := CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
		Model:    "nomic-embed-text",
	})
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "plagcheck settings")
}

func TestCreateAndValidateLLMService_Unreachable(t *testing.T) {
	srv := newOllamaServer(t, http.StatusServiceUnavailable)

	svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
		Model:    "llama3.2",
	})
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestInit(t *testing.T) {
	t.Run("missing embedding is an error", func(t *testing.T) {
		settings := domain.DefaultAppSettings()

		result, err := Init(context.Background(), &settings)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("missing llm is a warning", func(t *testing.T) {
		srv := newOllamaServer(t, http.StatusOK)
		settings := domain.DefaultAppSettings()
		settings.Embedding = domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
			Model:    "nomic-embed-text",
		}

		result, err := Init(context.Background(), &settings)
		require.NoError(t, err)
		defer result.Close()

		assert.NotNil(t, result.EmbeddingService)
		assert.Nil(t, result.LLMService)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "heuristic")
	})

	t.Run("unreachable llm is a warning", func(t *testing.T) {
		ok := newOllamaServer(t, http.StatusOK)
		down := newOllamaServer(t, http.StatusBadGateway)
		settings := domain.DefaultAppSettings()
		settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: ok.URL, Model: "nomic-embed-text"}
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL, Model: "llama3.2"}

		result, err := Init(context.Background(), &settings)
		require.NoError(t, err)
		defer result.Close()

		assert.Nil(t, result.LLMService)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "unreachable")
	})

	t.Run("both configured", func(t *testing.T) {
		srv := newOllamaServer(t, http.StatusOK)
		settings := domain.DefaultAppSettings()
		settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "nomic-embed-text"}
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "llama3.2"}

		result, err := Init(context.Background(), &settings)
		require.NoError(t, err)
		defer result.Close()

		assert.NotNil(t, result.LLMService)
		assert.Empty(t, result.Warnings)
	})
}
