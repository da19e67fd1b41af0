package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

var (
	statsTop  int
	statsJSON bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long:  `Shows the number of indexed documents, the last index pass and the most opened notes.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 5, "number of most opened documents to list")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

type statsOutput struct {
	Documents    int               `json:"documents"`
	UsageRecords int               `json:"usage_records"`
	LastRun      *indexOutput      `json:"last_run,omitempty"`
	LastRunAt    *time.Time        `json:"last_run_at,omitempty"`
	Top          []topUsedDocument `json:"top,omitempty"`
}

type topUsedDocument struct {
	ID           string    `json:"id"`
	UsageCount   int64     `json:"usage_count"`
	LastAccessed time.Time `json:"last_accessed"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	engine, err := requireEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	stats, err := engine.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	var top []domain.UsageRecord
	if statsTop > 0 {
		top, err = engine.TopUsed(ctx, statsTop)
		if err != nil {
			return fmt.Errorf("failed to read usage: %w", err)
		}
	}

	if statsJSON {
		return outputStatsJSON(cmd, stats, top)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Documents:     %d\n", stats.Documents)
	fmt.Fprintf(w, "Opened notes:  %d\n", stats.UsageRecords)

	if stats.LastRun == nil {
		fmt.Fprintln(w, "Last index:    never")
	} else {
		run := stats.LastRun
		fmt.Fprintf(w, "Last index:    %s (%s)\n", run.FinishedAt.Local().Format(time.DateTime), run.Root)
		fmt.Fprintf(w, "               %d indexed, %d skipped, %d removed in %s\n",
			run.Indexed, run.Skipped, run.Removed, run.Duration().Round(time.Millisecond))
	}

	if len(top) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Most opened:")
		for i := range top {
			fmt.Fprintf(w, "  %4d  %s\n", top[i].UsageCount, top[i].ItemID)
		}
	}

	return nil
}

func outputStatsJSON(cmd *cobra.Command, stats domain.StoreStats, top []domain.UsageRecord) error {
	out := statsOutput{
		Documents:    stats.Documents,
		UsageRecords: stats.UsageRecords,
	}
	if run := stats.LastRun; run != nil {
		out.LastRun = &indexOutput{
			RunID:        run.RunID,
			Root:         run.Root,
			Indexed:      run.Indexed,
			Skipped:      run.Skipped,
			ReadFailures: run.ReadFailures,
			Removed:      run.Removed,
			DurationMS:   run.Duration().Milliseconds(),
		}
		finished := run.FinishedAt
		out.LastRunAt = &finished
	}
	for i := range top {
		out.Top = append(out.Top, topUsedDocument{
			ID:           top[i].ItemID,
			UsageCount:   top[i].UsageCount,
			LastAccessed: top[i].LastAccessed,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
