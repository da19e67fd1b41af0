// Package main is the entry point for the pigpen CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/pigpen/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pigpen/internal/adapters/driven/lock"
	"github.com/custodia-labs/pigpen/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pigpen/internal/adapters/driving/cli"
	"github.com/custodia-labs/pigpen/internal/connectors/filesystem"
	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	cli.SetServices(&cli.Services{
		Settings: services.NewSettingsService(configStore),
		Open:     openEngine,
	})
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// openEngine opens the SQLite store and assembles the engine over it.
func openEngine(settings *domain.Settings) (*cli.Backend, error) {
	dbPath, err := databasePath(settings)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	search := services.NewSearchService(store.DocumentStore(), store.UsageStore(), settings.Search)
	search.SetGenerationSource(store)

	usage := services.NewUsageService(store.UsageStore())
	usage.SetOnRecord(search.Invalidate)

	scanner := filesystem.NewScanner(filesystem.ScanOptions{
		Extensions:    settings.Index.Extensions,
		IncludeHidden: settings.Index.IncludeHidden,
		MaxFileBytes:  settings.Index.MaxFileBytes,
	})
	index := services.NewIndexService(
		scanner,
		store.DocumentStore(),
		store.IndexRunStore(),
		lock.NewFileLock(filepath.Dir(store.Path())),
	)
	index.SetPrune(settings.Index.Prune)
	index.SetOnIndexed(search.Invalidate)

	return &cli.Backend{
		Engine:  services.NewEngine(index, search, usage, store),
		Actions: services.NewResultActionService(store.DocumentStore(), usage),
	}, nil
}

// databasePath returns the configured database path, or the default
// under the pigpen home directory.
func databasePath(settings *domain.Settings) (string, error) {
	if settings.Storage.DBPath != "" {
		return settings.Storage.DBPath, nil
	}
	home, err := file.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return filepath.Join(home, "data", sqlite.DefaultDBName), nil
}
