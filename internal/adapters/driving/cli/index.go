package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a vault",
	Long: `Scans the vault directory and writes every qualifying note to the store.
Each pass is a full re-scan. Files that disappeared since the last pass are
removed unless index.prune is false.

Without a path argument the configured vault.path is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output the index report as JSON")
	rootCmd.AddCommand(indexCmd)
}

// indexOutput is the JSON form of an index report.
type indexOutput struct {
	RunID        string          `json:"run_id"`
	Root         string          `json:"root"`
	Indexed      int             `json:"indexed"`
	Skipped      int             `json:"skipped"`
	ReadFailures int             `json:"read_failures"`
	Removed      int             `json:"removed"`
	DurationMS   int64           `json:"duration_ms"`
	Items        []scanItemEntry `json:"items,omitempty"`
}

type scanItemEntry struct {
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	path, err := resolveVaultPath(args)
	if err != nil {
		return err
	}

	engine, err := requireEngine()
	if err != nil {
		return err
	}

	report, err := engine.IndexVaultReport(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	if indexJSON {
		return outputIndexJSON(cmd, report)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents\n", report.Indexed)
	if verbose {
		printIndexDetails(cmd, report)
	}
	return nil
}

func outputIndexJSON(cmd *cobra.Command, report domain.IndexReport) error {
	out := indexOutput{
		RunID:        report.RunID,
		Root:         report.Root,
		Indexed:      report.Indexed,
		Skipped:      report.Skipped,
		ReadFailures: report.ReadFailures,
		Removed:      report.Removed,
		DurationMS:   report.Duration().Milliseconds(),
		Items:        scanEntries(report.Items),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printIndexDetails(cmd *cobra.Command, report domain.IndexReport) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  Root:          %s\n", report.Root)
	fmt.Fprintf(w, "  Skipped:       %d\n", report.Skipped)
	fmt.Fprintf(w, "  Read failures: %d\n", report.ReadFailures)
	fmt.Fprintf(w, "  Removed:       %d\n", report.Removed)
	fmt.Fprintf(w, "  Took:          %s\n", report.Duration().Round(time.Millisecond))

	for _, entry := range scanEntries(report.Items) {
		line := fmt.Sprintf("  %-11s %s", entry.Reason, entry.Path)
		if entry.Error != "" {
			line += ": " + entry.Error
		}
		fmt.Fprintln(w, line)
	}
}

func scanEntries(items []domain.ScanItem) []scanItemEntry {
	if len(items) == 0 {
		return nil
	}

	entries := make([]scanItemEntry, 0, len(items))
	for i := range items {
		entry := scanItemEntry{
			Path:    items[i].Path,
			Outcome: items[i].Outcome.String(),
			Reason:  string(items[i].Reason),
		}
		if items[i].Err != nil {
			entry.Error = items[i].Err.Error()
		}
		entries = append(entries, entry)
	}
	return entries
}
