package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/refgraph/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show CLI version information",
		Long: `Display version information for the refgraph CLI.

Shows the CLI version, build information, and the versions of the embedded
esbuild and CUE engines.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			fmt.Fprintln(c.OutOrStdout(), version.GetInfo().String())
			return nil
		},
	}
}
