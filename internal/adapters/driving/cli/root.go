// Package cli implements the plagcheck command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/h24486064/plagiarism-detection/internal/core/ports/driving"
	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// RunOptions are the per-invocation overrides taken from command flags.
// Flags take precedence over the environment and the config file.
type RunOptions struct {
	// NoCache keeps caches in memory for this run only.
	NoCache bool

	// Offline skips AI providers and web search. Used by commands that
	// only read, locate or chunk documents.
	Offline bool

	// ReportDir overrides the report directory when non-empty.
	ReportDir string

	// Formats selects report writers ("html", "json"). Empty means all.
	Formats []string

	// WholeDocument analyses the whole text when no heading is found.
	WholeDocument bool
}

// Runtime holds the services one command invocation works with.
type Runtime struct {
	Check driving.CheckService
	Cache driving.CacheService

	close func() error
}

// NewRuntime creates a runtime. closeFn releases its resources and may be nil.
func NewRuntime(check driving.CheckService, cache driving.CacheService, closeFn func() error) *Runtime {
	return &Runtime{Check: check, Cache: cache, close: closeFn}
}

// Close releases the runtime's resources.
func (r *Runtime) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// RuntimeFactory builds the runtime for one command invocation.
type RuntimeFactory func(ctx context.Context, opts RunOptions) (*Runtime, error)

var errRuntimeNotConfigured = errors.New("runtime not configured")

var (
	settingsService driving.SettingsService
	newRuntime      RuntimeFactory
)

// Persistent flags.
var (
	verboseFlag bool
	envFile     string
)

var rootCmd = &cobra.Command{
	Use:   "plagcheck",
	Short: "Detect web plagiarism and AI-generated text in literature reviews",
	Long: `plagcheck finds the literature review section of a paper, splits it into
overlapping token windows, searches the web for each window, compares the
results by embedding similarity and asks an LLM to judge the closest source.

Secrets are read from the environment or a .env file:
  GOOGLE_API_KEY, GOOGLE_API_KEY_SEARCH, GOOGLE_CSE_ID,
  OPENAI_API_KEY, ANTHROPIC_API_KEY, OLLAMA_BASE_URL`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file of environment variables to load")
}

func persistentPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)
	return loadEnv(envFile, cmd.Flags().Changed("env-file"))
}

// loadEnv loads path into the environment without overriding variables that
// are already set. A missing file is only an error when it was asked for.
func loadEnv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		logger.Debug("Loaded environment from %s", path)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("load env file: %w", err)
}

// SetSettingsService sets the settings service used by the settings command.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetRuntimeFactory sets the factory used by commands that run checks.
func SetRuntimeFactory(f RuntimeFactory) {
	newRuntime = f
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openRuntime builds a runtime for cmd. Callers must Close it.
func openRuntime(cmd *cobra.Command, opts RunOptions) (*Runtime, error) {
	if newRuntime == nil {
		return nil, errRuntimeNotConfigured
	}
	return newRuntime(commandContext(cmd), opts)
}

// commandContext returns the command's context, or Background when the
// command runs without one (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
