package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opmodel/refgraph/internal/cmdtypes"
	"github.com/opmodel/refgraph/internal/cmdutil"
	"github.com/opmodel/refgraph/internal/config"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/output"
)

// configHeader starts every generated config file.
const configHeader = `# refgraph project configuration.
# Validate with: refgraph config vet
`

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize default configuration",
		Long: `Initialize the refgraph configuration of a project.

Writes refgraph.yaml with every default value into the project directory,
or to the path given by --config.

Examples:
  # Initialize configuration in the current directory
  refgraph config init

  # Overwrite existing configuration
  refgraph config init ./site --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runConfigInit(c, args, g, force)
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false,
		"Overwrite existing configuration")

	return c
}

func runConfigInit(c *cobra.Command, args []string, g *cmdtypes.GlobalConfig, force bool) error {
	resolved := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue:   g.ConfigFlag,
		ProjectRoot: cmdutil.ResolveProjectPath(args),
	})
	path, err := config.ExpandPath(resolved.ConfigPath)
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("expanding config path: %w", err)}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		}
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitInternalError, Err: fmt.Errorf("encoding default config: %w", err)}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not create "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not write "+path)
	}

	output.Debug("wrote config", "path", path, "source", resolved.Source)
	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Configuration initialized at "+path))
	fmt.Fprintln(c.OutOrStdout(), "Validate with: refgraph config vet")

	return nil
}
