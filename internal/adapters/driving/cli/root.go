package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// version is overridden at build time with -ldflags.
var version = "dev"

var verbose bool

// Backend is the store-backed half of the application.
type Backend struct {
	Engine  driving.VaultEngine
	Actions driving.ResultActionService
}

// EngineOpener opens the document store described by settings and builds
// the engine over it.
type EngineOpener func(settings *domain.Settings) (*Backend, error)

// Services holds the dependencies injected by the binary.
type Services struct {
	Settings driving.SettingsService
	Open     EngineOpener
}

// Services used by the commands. The engine is opened on first use so that
// config and version never touch the store.
var (
	settingsService driving.SettingsService
	engineOpener    EngineOpener
	vaultEngine     driving.VaultEngine
	actionService   driving.ResultActionService
)

var rootCmd = &cobra.Command{
	Use:   "pigpen",
	Short: "Index and search a vault of plain-text notes",
	Long: `pigpen indexes a folder of Markdown notes into a local SQLite full-text
store and answers ranked queries with highlighted previews.

Start with 'pigpen index <vault>' and then 'pigpen search <query>'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices installs the services the commands run against.
func SetServices(s *Services) {
	settingsService = s.Settings
	engineOpener = s.Open
}

// SetVersion sets the version reported by 'pigpen version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and closes the engine if it was opened.
func Execute() error {
	defer closeEngine()
	return rootCmd.Execute()
}

// openBackend builds a fresh backend from the current settings.
func openBackend() (*Backend, error) {
	if settingsService == nil || engineOpener == nil {
		return nil, errors.New("engine not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return engineOpener(settings)
}

// requireEngine returns the engine, opening it on first use.
func requireEngine() (driving.VaultEngine, error) {
	if vaultEngine != nil {
		return vaultEngine, nil
	}

	backend, err := openBackend()
	if err != nil {
		return nil, err
	}

	vaultEngine = backend.Engine
	actionService = backend.Actions
	return vaultEngine, nil
}

func closeEngine() {
	if vaultEngine == nil {
		return
	}
	if err := vaultEngine.Close(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "closing store: %v\n", err)
	}
	vaultEngine = nil
	actionService = nil
}

// resolveVaultPath picks the path argument or falls back to vault.path.
func resolveVaultPath(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}

	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return "", fmt.Errorf("failed to load settings: %w", err)
		}
		if settings.Vault.Path != "" {
			return settings.Vault.Path, nil
		}
	}

	return "", errors.New("no vault path: pass one or run 'pigpen config set vault.path <dir>'")
}
