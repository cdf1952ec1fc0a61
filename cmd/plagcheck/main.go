// Command plagcheck checks the literature review of a paper for web
// plagiarism and AI-generated text.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/ai"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/config/file"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driving/cli"
	"github.com/h24486064/plagiarism-detection/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	w := &wiring{
		settings:  settings,
		tokenizer: tiktoken.DefaultEncoding,
	}

	cli.SetVersion(version)
	cli.SetSettingsService(settings)
	cli.SetRuntimeFactory(w.runtime)

	return cli.Execute(ctx)
}
