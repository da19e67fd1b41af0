package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pigpen/internal/connectors/filesystem"
	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// watchMinInterval is the shortest gap between two re-index passes.
const watchMinInterval = 2 * time.Second

var watchSkipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-index the vault whenever it changes",
	Long: `Indexes the vault once and then watches it, running a full re-index after
each burst of changes settles (see watch.debounce_ms). Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipInitial, "no-initial", false, "skip the index pass on start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := resolveVaultPath(args)
	if err != nil {
		return err
	}

	settings := domain.DefaultSettings()
	if settingsService != nil {
		loaded, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		settings = *loaded
	}

	engine, err := requireEngine()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := filesystem.NewWatcher(path, filesystem.WatchOptions{
		Debounce:      settings.Watch.Debounce,
		MinInterval:   watchMinInterval,
		Extensions:    settings.Index.Extensions,
		IncludeHidden: settings.Index.IncludeHidden,
	})
	if err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}
	defer watcher.Close()

	out := cmd.OutOrStdout()
	reindex := func(ctx context.Context) error {
		n, err := engine.IndexVault(ctx, watcher.Root())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[%s] Indexed %d documents\n", time.Now().Format(time.TimeOnly), n)
		return nil
	}

	if !watchSkipInitial {
		if err := reindex(ctx); err != nil {
			return fmt.Errorf("index failed: %w", err)
		}
	}

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", watcher.Root())

	if err := watcher.Run(ctx, reindex); err != nil && !errors.Is(err, filesystem.ErrWatcherClosed) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
