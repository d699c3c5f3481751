// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/refgraph/internal/cmdtypes"
	"github.com/opmodel/refgraph/internal/output"
	"github.com/opmodel/refgraph/internal/version"
)

// NewRootCmd creates the root command for the refgraph CLI.
func NewRootCmd() *cobra.Command {
	var (
		configFlag     string
		verboseFlag    bool
		timestampsFlag bool
	)

	g := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "refgraph",
		Short: "Client reference manifest builder",
		Long: `refgraph compiles server component routes and routed pages, finds every
client boundary in their module graphs and emits the manifests a server
renderer needs to load client modules.

It provides commands to:
  - Build routes and write chunks and manifests
  - Compare the manifests of two builds
  - Initialize and validate project configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			g.ConfigFlag = configFlag
			g.Verbose = verboseFlag
			if c.Flags().Changed("timestamps") {
				g.Timestamps = output.BoolPtr(timestampsFlag)
			}

			output.SetupLogging(g.LogConfig(nil))

			info := version.GetInfo()
			output.Debug("refgraph started",
				"version", info.Version,
				"esbuild", info.EsbuildVersion,
			)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to config file (env: REFGRAPH_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "increase output verbosity")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "show timestamps in log output")

	rootCmd.AddCommand(NewBuildCmd(g))
	rootCmd.AddCommand(NewDiffCmd(g))
	rootCmd.AddCommand(NewConfigCmd(g))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
