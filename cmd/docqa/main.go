// Command docqa ingests documents and answers questions about them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/services"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	if _, err := file.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	settingsService := services.NewSettingsService(openConfigStore(""), ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger.SetVerbose(settings.Logging.Verbose)
	if settings.Logging.File != "" {
		logger.SetFile(settings.Logging.File)
	}
	defer logger.Sync()

	app, initErr := buildApp(ctx, settings)
	defer app.Close()

	cli.SetVersion(version)
	svc := app.cliServices()
	svc.Settings = settingsService
	svc.ServerAddr = settings.Server.Addr
	svc.ServerToken = settings.Server.AuthToken
	svc.InitErr = initErr
	cli.SetServices(svc)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// openConfigStore opens the TOML config in dir (~/.docqa when empty). When
// the file cannot be read, settings come from the environment and defaults
// and `settings set` lasts only for the current process.
func openConfigStore(dir string) driven.ConfigStore {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config unavailable, using defaults: %v\n", err)
		return memory.NewConfigStore()
	}
	return store
}
