package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pigpen/internal/adapters/driving/tui"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// runProgram runs the bubbletea program for app. Tests replace it.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [path]",
	Short: "Launch the search-as-you-type HUD",
	Long: `Launch the interactive search HUD.

Results update as you type. The vault root used for re-indexing is the
path argument, or vault.path when omitted.

Controls:
  ↑/↓, ctrl+p/ctrl+n - Move the selection
  Enter              - Open the selected note
  ctrl+y             - Copy the selected note
  ctrl+r             - Re-index the vault
  Esc                - Clear the query, or quit when empty
  F1                 - Toggle help
  ctrl+c             - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	engine, err := requireEngine()
	if err != nil {
		return err
	}

	ports := tui.NewPorts(engine, actionService)
	ports.Settings = settingsService
	if path, pathErr := resolveVaultPath(args); pathErr == nil {
		ports.VaultPath = path
	} else {
		logger.Debug("Re-index disabled: %v", pathErr)
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
