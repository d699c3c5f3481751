package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/refgraph/internal/cmdtypes"
	"github.com/opmodel/refgraph/internal/cmdutil"
	"github.com/opmodel/refgraph/internal/config"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet [path]",
		Short: "Validate configuration",
		Long: `Validate the refgraph configuration file against the embedded schema.

Checks performed:
  1. Config file exists at the resolved path
  2. Config file is valid YAML
  3. Every key is known and every value satisfies its constraint

The config path is resolved using precedence:
  --config flag > REFGRAPH_CONFIG env > <path>/refgraph.yaml

Examples:
  # Validate the configuration of the current directory
  refgraph config vet

  # Validate a custom config path
  refgraph config vet --config ./configs/refgraph.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runConfigVet(c, args, g)
		},
	}
}

func runConfigVet(c *cobra.Command, args []string, g *cmdtypes.GlobalConfig) error {
	resolved := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue:   g.ConfigFlag,
		ProjectRoot: cmdutil.ResolveProjectPath(args),
	})
	config.LogResolvedValues([]config.ResolvedValue{resolved.Value()})

	path, err := config.ExpandPath(resolved.ConfigPath)
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("expanding config path: %w", err)}
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("checking config file: %w", err)}
	}
	if !exists {
		return &cmdtypes.ExitError{
			Code: cmdtypes.ExitNotFound,
			Err:  oerrors.NewNotFoundError("configuration file not found", path, "Run 'refgraph config init' to create default configuration"),
		}
	}

	validator, err := config.NewValidator()
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitInternalError, Err: err}
	}

	if err := validator.ValidateFile(path); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			cmdutil.PrintValidationErrors(path, verrs)
			return &cmdtypes.ExitError{Code: cmdtypes.ExitValidationError, Err: err, Printed: true}
		}
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("validating config: %w", err)}
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Configuration is valid: "+path))
	return nil
}
