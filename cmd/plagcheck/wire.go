package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/ai"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/config/file"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/fetch"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/report"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/scorer/heuristic"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/search/google"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/storage"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/tokenizer"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driving/cli"
	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driving"
	"github.com/h24486064/plagiarism-detection/internal/core/services"
	"github.com/h24486064/plagiarism-detection/internal/logger"
	"github.com/h24486064/plagiarism-detection/internal/normalisers"
	"github.com/h24486064/plagiarism-detection/internal/postprocessors"
)

// wiring builds runtimes from the current settings.
type wiring struct {
	settings driving.SettingsService

	// promptDir overrides the prompt directory; empty uses ~/.plagcheck/prompts.
	promptDir string

	// tokenizer names the tokenizer used to size windows.
	tokenizer string
}

// runtime builds the services for one command invocation.
//
//nolint:gocyclo // Composition root: one branch per optional component.
func (w *wiring) runtime(ctx context.Context, opts cli.RunOptions) (*cli.Runtime, error) {
	app, err := w.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cfg := app.Processing
	if opts.ReportDir != "" {
		cfg.ReportDir = opts.ReportDir
	}
	if opts.WholeDocument {
		cfg.WholeDocumentFallback = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	writers, err := newWriters(cfg.ReportDir, opts.Formats)
	if err != nil {
		return nil, err
	}

	store := storage.OpenMemory()
	if !opts.NoCache {
		store, err = storage.Open(cfg)
		if err != nil {
			return nil, err
		}
	}

	var closers []func() error
	closers = append(closers, store.Close)
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	documents := normalisers.NewDefaultRegistry()
	locator := services.NewSectionLocator(services.DefaultHeadingTable(), cfg)
	cache := services.NewCacheService(store.Queries, store.Content)

	chunker, err := w.newChunker(cfg)
	if err != nil {
		closeAll() //nolint:errcheck // Already failing.
		return nil, err
	}

	scorer := heuristic.New(0)

	if opts.Offline {
		analysis := services.NewAnalysisService(nil, nil, scorer, cfg.AIFlagThreshold)
		check := services.NewCheckService(documents, locator, chunker, analysis, nil, nil)
		return cli.NewRuntime(check, cache, closeAll), nil
	}

	embedder, llm, closeAI := initAI(ctx, app)
	closers = append(closers, closeAI)

	prompts, err := file.NewPromptStore(w.promptDir)
	if err != nil {
		closeAll() //nolint:errcheck // Already failing.
		return nil, err
	}
	analysis := services.NewAnalysisService(llm, prompts, scorer, cfg.AIFlagThreshold)

	retrieval, similarity, err := newRetrieval(ctx, app, cfg, store, documents, embedder)
	if err != nil {
		closeAll() //nolint:errcheck // Already failing.
		return nil, err
	}

	check := services.NewCheckService(documents, locator, chunker, analysis, retrieval, similarity, writers...)
	return cli.NewRuntime(check, cache, closeAll), nil
}

// newChunker builds the window chunker from the registry.
func (w *wiring) newChunker(cfg domain.Config) (driven.Chunker, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, tokenizer.New(w.tokenizer))

	chunker, err := registry.Build("chunker", postprocessors.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("build chunker: %w", err)
	}
	return chunker, nil
}

// initAI creates the embedding and LLM services. Either may be nil: without
// an embedder there is no web comparison, without an LLM analysis falls back
// to heuristics.
func initAI(ctx context.Context, app *domain.AppSettings) (driven.EmbeddingService, driven.LLMService, func() error) {
	result, err := ai.Init(ctx, app)
	if err == nil {
		return result.EmbeddingService, result.LLMService, func() error {
			result.Close()
			return nil
		}
	}
	logger.Warn("%v; web comparison disabled", err)

	llm, err := ai.CreateAndValidateLLMService(ctx, &app.LLM)
	if err != nil {
		logger.Warn("%v", err)
		return nil, nil, func() error { return nil }
	}
	if llm == nil {
		logger.Warn("No LLM configured, using heuristic scoring")
		return nil, nil, func() error { return nil }
	}
	return nil, llm, llm.Close
}

// newRetrieval creates the web search and similarity services. Both are nil
// when there is no embedder or no search credentials.
func newRetrieval(
	ctx context.Context,
	app *domain.AppSettings,
	cfg domain.Config,
	store *storage.Store,
	documents driven.NormaliserRegistry,
	embedder driven.EmbeddingService,
) (*services.RetrievalService, *services.SimilarityService, error) {
	if embedder == nil {
		return nil, nil, nil
	}
	if !app.Search.IsConfigured() {
		logger.Warn("Google search needs GOOGLE_API_KEY_SEARCH and GOOGLE_CSE_ID; web comparison disabled")
		return nil, nil, nil
	}

	searcher, err := google.NewSearcher(ctx, google.Config{
		APIKey:   app.Search.APIKey,
		EngineID: app.Search.EngineID,
		BaseURL:  app.Search.BaseURL,
		Delay:    cfg.SearchDelay,
	})
	if err != nil {
		return nil, nil, err
	}

	fetcher := fetch.New(fetch.Config{
		Timeout:   cfg.FetchTimeout,
		Documents: documents,
	})

	retrieval := services.NewRetrievalService(searcher, fetcher, store.Queries, store.Content, cfg.SearchResultsPerQuery)
	similarity := services.NewSimilarityService(embedder, store.Content, cfg.SimilarityThreshold)
	return retrieval, similarity, nil
}

// newWriters returns a report writer per format. No formats means all.
func newWriters(dir string, formats []string) ([]driven.ReportWriter, error) {
	if len(formats) == 0 {
		formats = []string{"html", "json"}
	}

	var writers []driven.ReportWriter
	seen := make(map[string]bool)
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true

		switch f {
		case "html":
			writers = append(writers, report.NewHTMLWriter(dir))
		case "json":
			writers = append(writers, report.NewJSONWriter(dir))
		default:
			return nil, fmt.Errorf("report format %q: %w", f, domain.ErrInvalidInput)
		}
	}
	return writers, nil
}
