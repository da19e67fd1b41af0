package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the pigpen build",
	Long: `Shows the release pigpen was built from together with the Go toolchain
and platform of the binary. Development builds report "dev".`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the release")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if versionShort {
		fmt.Fprintln(w, version)
		return nil
	}
	fmt.Fprintf(w, "pigpen %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
