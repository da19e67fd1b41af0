package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

var openCopy bool

var openCmd = &cobra.Command{
	Use:   "open [id|path]",
	Short: "Open a document in its default application",
	Long: `Opens the document with the operating system's default handler and records
the access, which feeds the relevance_usage ranking.

Use --copy to copy the document content to the clipboard instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().BoolVar(&openCopy, "copy", false, "copy the document content to the clipboard")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	id, err := domain.DocumentID(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if _, err := requireEngine(); err != nil {
		return err
	}
	if actionService == nil {
		return errors.New("result actions not configured")
	}

	result := &domain.SearchResult{ID: id, Path: id}

	if openCopy {
		if err := actionService.CopyToClipboard(cmd.Context(), result); err != nil {
			return fmt.Errorf("failed to copy document: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to clipboard.\n", id)
		return nil
	}

	if err := actionService.OpenDocument(cmd.Context(), result); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s in default application.\n", id)
	return nil
}
