package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/refgraph/internal/build"
	"github.com/opmodel/refgraph/internal/cmdtypes"
	"github.com/opmodel/refgraph/internal/cmdutil"
	"github.com/opmodel/refgraph/internal/output"
)

// NewBuildCmd creates the build command.
func NewBuildCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var bf cmdutil.BuildFlags

	c := &cobra.Command{
		Use:   "build [path]",
		Short: "Build routes and emit manifests",
		Long: `Build the app routes and routed pages of a project.

Every configured entry is compiled, client boundaries are discovered in the
resulting module graph, and their chunks are folded into the manifests:

  server/client-reference-manifest.json   client and SSR module ids per export
  server/pages-manifest.json              page route to server entry chunk
  build-manifest.json                     page route to client chunks
  dynamic-manifest.json                   lazily loaded module to client chunks

Arguments:
  path    Path to the project directory (default: current directory)

Examples:
  # Build the project in the current directory
  refgraph build

  # Build with numeric module ids for the edge runtime
  refgraph build ./site --module-ids numeric --edge

  # Print the manifests as YAML instead of writing them
  refgraph build ./site -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(c, args, g, &bf)
		},
	}

	bf.AddTo(c)

	return c
}

func runBuild(c *cobra.Command, args []string, g *cmdtypes.GlobalConfig, bf *cmdutil.BuildFlags) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format := bf.Format()

	run, err := cmdutil.RunBuild(ctx, cmdutil.RunBuildOpts{
		Args:    args,
		Flags:   bf,
		Global:  g,
		Spinner: format == output.FormatDir && output.IsTTY(),
	})
	if err != nil {
		return err
	}

	if format != output.FormatDir {
		if err := output.WriteDocuments(c.OutOrStdout(), run.Result.Manifests.Documents(), format); err != nil {
			return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("writing manifests: %w", err)}
		}
		return nil
	}

	chunks, err := build.WriteChunks(run.Options.ProjectRoot, run.Result.Chunks)
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("writing chunks: %w", err)}
	}

	manifests, err := build.WriteManifests(run.Options.ProjectRoot, run.Options.DistDir, run.Result)
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("writing manifests: %w", err)}
	}
	for _, p := range manifests {
		output.Debug("wrote manifest", "path", p)
	}

	cmdutil.WriteRouteSummary(run.Result, g.Verbose)

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark(fmt.Sprintf(
		"Built %d routes: %d chunks, %d manifests in %s",
		len(run.Result.Routes), chunks, len(manifests), run.Options.DistDir)))

	return nil
}
