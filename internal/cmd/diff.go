package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/refgraph/internal/cmdtypes"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/manifest"
	"github.com/opmodel/refgraph/internal/output"
)

// diffOptions holds the flags for the diff command.
type diffOptions struct {
	noColor  bool
	exitCode bool
}

// NewDiffCmd creates the diff command.
func NewDiffCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	opts := &diffOptions{}

	c := &cobra.Command{
		Use:   "diff <old-dist> <new-dist>",
		Short: "Compare the manifests of two builds",
		Long: `Compare the manifests written by two builds entry by entry.

Client reference manifests are compared per module export, the other
manifests per route:
  - Added entries (only in the new build)
  - Removed entries (only in the old build)
  - Modified entries (in both, with a YAML-aware diff of the value)

Exit codes:
  0 - Comparison completed (or no differences with --exit-code)
  1 - Differences exist (with --exit-code) or an error occurred
  2 - A manifest could not be decoded
  5 - Neither directory contains manifests

Examples:
  # Compare two dist directories
  refgraph diff ./before/.next ./.next

  # Fail when the manifests differ
  refgraph diff ./before/.next ./.next --exit-code`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runDiff(c, args[0], args[1], opts)
		},
	}

	c.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	c.Flags().BoolVar(&opts.exitCode, "exit-code", false, "Exit with 1 when the manifests differ")

	return c
}

// runDiff executes the diff logic.
func runDiff(c *cobra.Command, oldDir, newDir string, opts *diffOptions) error {
	useColor := !opts.noColor && output.IsTTY()
	styles := output.NoColorStyles()
	if useColor {
		styles = output.GetStyles()
	}

	var (
		added    []string
		removed  []string
		modified []output.ModifiedItem
		found    bool
	)

	for _, rel := range manifest.Paths() {
		oldEntries, oldFound, err := manifest.ReadEntries(oldDir, rel)
		if err != nil {
			return &cmdtypes.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err}
		}
		newEntries, newFound, err := manifest.ReadEntries(newDir, rel)
		if err != nil {
			return &cmdtypes.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err}
		}
		if !oldFound && !newFound {
			output.Debug("manifest missing in both builds", "manifest", rel)
			continue
		}
		found = true

		changes, err := manifest.Compare(oldEntries, newEntries, yamlDiffer(useColor))
		if err != nil {
			return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("diffing %s: %w", rel, err)}
		}
		for _, k := range changes.Added {
			added = append(added, entryName(rel, k))
		}
		for _, k := range changes.Removed {
			removed = append(removed, entryName(rel, k))
		}
		for _, m := range changes.Modified {
			modified = append(modified, output.ModifiedItem{Name: entryName(rel, m.Key), Diff: m.Diff})
		}
	}

	if !found {
		return &cmdtypes.ExitError{
			Code: cmdtypes.ExitNotFound,
			Err: oerrors.NewNotFoundError(
				fmt.Sprintf("no manifests found in %s or %s", oldDir, newDir), "",
				"Pass the dist directories of two builds (e.g. .next)"),
		}
	}

	rendered := output.RenderDiff(added, removed, modified, styles)
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	fmt.Fprint(c.OutOrStdout(), rendered)

	if n := len(added) + len(removed) + len(modified); opts.exitCode && n > 0 {
		return &cmdtypes.ExitError{
			Code:    cmdtypes.ExitGeneralError,
			Err:     fmt.Errorf("%d manifest entries differ", n),
			Printed: true,
		}
	}

	return nil
}

func entryName(manifestPath, key string) string {
	return manifestPath + " " + key
}

// yamlDiffer compares entry values by their YAML encoding with dyff.
func yamlDiffer(useColor bool) manifest.Differ {
	return func(old, new any) (string, error) {
		oldData, err := output.EncodeYAML(old)
		if err != nil {
			return "", err
		}
		newData, err := output.EncodeYAML(new)
		if err != nil {
			return "", err
		}
		return output.DiffYAML("old", oldData, "new", newData, useColor)
	}
}
