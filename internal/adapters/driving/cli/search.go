package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchRanking string
)

var matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Runs a full-text query against the indexed vault.
Matching uses trigrams, so any substring of three or more characters matches.
At most 25 results are returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (1-25, default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchRanking, "ranking", "",
		"ranking strategy: relevance or relevance_usage (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	opts := domain.SearchOptions{
		Limit:   searchLimit,
		Ranking: domain.RankingStrategy(searchRanking),
	}
	if opts.Ranking != "" && !opts.Ranking.IsValid() {
		return fmt.Errorf("%w: unknown ranking %q", domain.ErrInvalidInput, searchRanking)
	}

	engine, err := requireEngine()
	if err != nil {
		return err
	}

	results, err := engine.SearchVaultWith(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	w := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	styled := isTerminal(w)
	open, closing := highlightMarkers()

	fmt.Fprintln(w, "Results:")
	fmt.Fprintln(w)
	for i := range results {
		// Format: [N] Title (Score)
		title := results[i].Title
		if title == "" {
			title = results[i].ID
		}

		fmt.Fprintf(w, "  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		fmt.Fprintf(w, "      %s\n", results[i].Path)
		if results[i].Preview != "" {
			preview := strings.Join(strings.Fields(results[i].Preview), " ")
			fmt.Fprintf(w, "      %s\n", renderPreview(preview, open, closing, styled))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// highlightMarkers returns the configured match markers.
func highlightMarkers() (string, string) {
	if settingsService == nil {
		return domain.DefaultHighlightOpen, domain.DefaultHighlightClose
	}
	settings, err := settingsService.Get()
	if err != nil {
		return domain.DefaultHighlightOpen, domain.DefaultHighlightClose
	}
	return settings.Search.HighlightOpen, settings.Search.HighlightClose
}

// renderPreview replaces highlight markers with terminal styling when styled
// is set. Unbalanced markers are left as they are.
func renderPreview(preview, open, closing string, styled bool) string {
	if !styled {
		return preview
	}

	var b strings.Builder
	for _, span := range domain.SplitPreview(preview, open, closing) {
		if span.Match {
			b.WriteString(matchStyle.Render(span.Text))
		} else {
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

// isTerminal reports whether w is the terminal the command writes to.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
