package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize         = "chunk.size"
	keyChunkOverlap      = "chunk.overlap"
	keySimilarity        = "similarity.threshold"
	keyResultsPerQuery   = "search.results_per_query"
	keySearchDelay       = "search.delay"
	keySearchAPIKey      = "search.api_key"
	keySearchEngineID    = "search.engine_id"
	keySectionMaxChars   = "section.max_chars"
	keySectionWholeDoc   = "section.whole_document"
	keyAIFlagThreshold   = "ai.flag_threshold"
	keyFetchTimeout      = "fetch.timeout"
	keyCacheDir          = "cache.dir"
	keyReportDir         = "report.dir"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// Environment variables that supply secrets.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvGoogleAPIKey       = "GOOGLE_API_KEY"
	EnvGoogleSearchAPIKey = "GOOGLE_API_KEY_SEARCH"
	EnvGoogleCSEID        = "GOOGLE_CSE_ID"
	EnvOpenAIAPIKey       = "OPENAI_API_KEY"
	EnvAnthropicAPIKey    = "ANTHROPIC_API_KEY"
	EnvOllamaBaseURL      = "OLLAMA_BASE_URL"
)

// keyKind is the value type of a settable key.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindProvider
)

// settableKeys lists the keys accepted by Set.
var settableKeys = map[string]keyKind{
	keyChunkSize:       kindInt,
	keyChunkOverlap:    kindInt,
	keySimilarity:      kindFloat,
	keyResultsPerQuery: kindInt,
	keySearchDelay:     kindDuration,
	keySearchAPIKey:    kindString,
	keySearchEngineID:  kindString,
	keySectionMaxChars: kindInt,
	keySectionWholeDoc: kindBool,
	keyAIFlagThreshold: kindFloat,
	keyFetchTimeout:    kindDuration,
	keyCacheDir:        kindString,
	keyReportDir:       kindString,
	keyEmbedProvider:   kindProvider,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyLLMProvider:     kindProvider,
	keyLLMModel:        kindString,
	keyLLMBaseURL:      kindString,
	keyLLMAPIKey:       kindString,
}

// SettableKeys returns the keys accepted by Set, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
// Values come from the config file; API keys missing from the file are taken
// from the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Keys returns the keys accepted by Set, sorted.
func (s *SettingsService) Keys() []string {
	return SettableKeys()
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	d := defaults.Processing

	settings := &domain.AppSettings{
		Processing: domain.Config{
			ChunkSize:             s.getInt(keyChunkSize, d.ChunkSize),
			ChunkOverlap:          s.getIntAllowZero(keyChunkOverlap, d.ChunkOverlap),
			SimilarityThreshold:   s.getFloat(keySimilarity, d.SimilarityThreshold),
			SearchResultsPerQuery: s.getInt(keyResultsPerQuery, d.SearchResultsPerQuery),
			MaxSectionChars:       s.getInt(keySectionMaxChars, d.MaxSectionChars),
			WholeDocumentFallback: s.getBool(keySectionWholeDoc, d.WholeDocumentFallback),
			AIFlagThreshold:       s.getFloat(keyAIFlagThreshold, d.AIFlagThreshold),
			SearchDelay:           s.getDuration(keySearchDelay, d.SearchDelay),
			FetchTimeout:          s.getDuration(keyFetchTimeout, d.FetchTimeout),
			CacheDir:              s.getString(keyCacheDir, d.CacheDir),
			ReportDir:             s.getString(keyReportDir, d.ReportDir),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.configStore.GetString(keyEmbedModel),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Search: domain.SearchSettings{
			APIKey:   s.configStore.GetString(keySearchAPIKey),
			EngineID: s.configStore.GetString(keySearchEngineID),
		},
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv fills providers and secrets the config file leaves empty.
// With no provider configured, a GOOGLE_API_KEY selects Gemini, then
// OPENAI_API_KEY selects OpenAI (and ANTHROPIC_API_KEY for the LLM).
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	google := s.getenv(EnvGoogleAPIKey)
	openai := s.getenv(EnvOpenAIAPIKey)
	anthropic := s.getenv(EnvAnthropicAPIKey)

	if settings.Embedding.Provider == "" {
		switch {
		case google != "":
			settings.Embedding.Provider = domain.AIProviderGemini
		case openai != "":
			settings.Embedding.Provider = domain.AIProviderOpenAI
		}
	}
	if settings.LLM.Provider == "" {
		switch {
		case google != "":
			settings.LLM.Provider = domain.AIProviderGemini
		case openai != "":
			settings.LLM.Provider = domain.AIProviderOpenAI
		case anthropic != "":
			settings.LLM.Provider = domain.AIProviderAnthropic
		}
	}

	keys := map[domain.AIProvider]string{
		domain.AIProviderGemini:    google,
		domain.AIProviderOpenAI:    openai,
		domain.AIProviderAnthropic: anthropic,
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = keys[settings.Embedding.Provider]
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = keys[settings.LLM.Provider]
	}

	if ollama := s.getenv(EnvOllamaBaseURL); ollama != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = ollama
		}
		if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = ollama
		}
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	if settings.Search.APIKey == "" {
		settings.Search.APIKey = s.getenv(EnvGoogleSearchAPIKey)
	}
	if settings.Search.APIKey == "" {
		settings.Search.APIKey = google
	}
	if settings.Search.EngineID == "" {
		settings.Search.EngineID = s.getenv(EnvGoogleCSEID)
	}
}

// Save persists application settings.
// API keys are written only when set, so environment secrets never leak
// into the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	p := settings.Processing
	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, p.ChunkSize},
		{keyChunkOverlap, p.ChunkOverlap},
		{keySimilarity, p.SimilarityThreshold},
		{keyResultsPerQuery, p.SearchResultsPerQuery},
		{keySectionMaxChars, p.MaxSectionChars},
		{keySectionWholeDoc, p.WholeDocumentFallback},
		{keyAIFlagThreshold, p.AIFlagThreshold},
		{keySearchDelay, p.SearchDelay.String()},
		{keyFetchTimeout, p.FetchTimeout.String()},
		{keyCacheDir, p.CacheDir},
		{keyReportDir, p.ReportDir},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keySearchEngineID, settings.Search.EngineID},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyLLMAPIKey:    settings.LLM.APIKey,
		keySearchAPIKey: settings.Search.APIKey,
	}
	for key, value := range secrets {
		if value == "" || s.isEnvSecret(value) {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// isEnvSecret reports whether value came from a secret environment variable.
func (s *SettingsService) isEnvSecret(value string) bool {
	for _, name := range []string{EnvGoogleAPIKey, EnvGoogleSearchAPIKey, EnvOpenAIAPIKey, EnvAnthropicAPIKey} {
		if s.getenv(name) == value {
			return true
		}
	}
	return false
}

// Set stores a single key after parsing value for the key's type.
// Processing keys are checked against the rest of the processing config
// before anything is written.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(SettableKeys(), ", "))
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, key, value)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number: %q", domain.ErrInvalidInput, key, value)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false: %q", domain.ErrInvalidInput, key, value)
		}
		parsed = b
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a duration like 2s: %q", domain.ErrInvalidInput, key, value)
		}
		parsed = d.String()
	case kindProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() {
			return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	default:
		parsed = value
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if applyProcessing(&settings.Processing, key, parsed) {
		if err := settings.Processing.Validate(); err != nil {
			return err
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// applyProcessing copies a parsed processing value into cfg and reports
// whether key is a processing key.
func applyProcessing(cfg *domain.Config, key string, v any) bool {
	switch key {
	case keyChunkSize:
		cfg.ChunkSize = v.(int)
	case keyChunkOverlap:
		cfg.ChunkOverlap = v.(int)
	case keySimilarity:
		cfg.SimilarityThreshold = v.(float64)
	case keyResultsPerQuery:
		cfg.SearchResultsPerQuery = v.(int)
	case keySectionMaxChars:
		cfg.MaxSectionChars = v.(int)
	default:
		return false
	}
	return true
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Fall back to the environment key for the provider
	if apiKey == "" && provider == settings.Embedding.Provider {
		apiKey = settings.Embedding.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" && provider == settings.LLM.Provider {
		apiKey = settings.LLM.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings can run a check.
// Only the processing parameters and the embedding provider are required;
// without an LLM or web search the check degrades instead of failing.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Processing.Validate(); err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: configure an embedding provider or set %s",
			domain.ErrEmbeddingUnavailable, EnvGoogleAPIKey)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats an explicit zero as a value, not a missing key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
