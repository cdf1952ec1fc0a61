package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAIScore: `You are an expert reviewer of academic theses who detects text written by large language models.
Rate how likely the passage below was generated by an AI model, from 0 (certainly human) to 100 (certainly AI).
Consider uniform sentence rhythm, generic transitions, hedging without citations and summary-like phrasing.
Respond with JSON only: {"score": <number>}

Passage:
%s`,

	driven.PromptSearchQueries: `The passage below comes from the literature review of a thesis. Write up to 3 web search queries that would find the sources it may have been copied or paraphrased from.
Use distinctive phrases, author names, terms and claims from the passage, in the passage's language.
Respond with JSON only: {"queries": ["...", "..."]}

Passage:
%s`,

	driven.PromptAdjudicate: `You compare a passage from a thesis with the most similar web source found for it.

Suspect passage:
%s

Source URL: %s
Source text (truncated):
%s

An automated detector gave the passage an AI-generation score of %.1f out of 100.

Decide whether the passage was copied or closely paraphrased from the source without attribution, and whether it was likely generated by AI.
Write the justification in the language of the suspect passage, in at most three sentences.
Respond with JSON only:
{"ai_generated": <true|false>, "web_plagiarism": <true|false>, "confidence": <0-100>, "justification": "<text>"}`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.plagcheck/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".plagcheck", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# plagcheck Prompts

This directory contains the prompts plagcheck sends to the configured LLM.

## Files

- ` + "`ai_score.txt`" + ` - Scores a window for AI authorship (JSON {"score"})
- ` + "`search_queries.txt`" + ` - Generates web search queries for a window (JSON {"queries"})
- ` + "`adjudicate.txt`" + ` - Judges a window against its most similar source (JSON verdict)

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next run.
Delete a file to restore its default.

## Format Placeholders

Prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (the passage, source URL or source text)
- ` + "`%.1f`" + ` - Number (the AI score, adjudicate only)

Keep the placeholders, in the same order, in customised prompts.
Answers must stay JSON; prose around the JSON object is tolerated.
`
	return os.WriteFile(path, []byte(content), 0600)
}
