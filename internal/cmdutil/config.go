package cmdutil

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/opmodel/refgraph/internal/cmdtypes"
	"github.com/opmodel/refgraph/internal/config"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/output"
)

// LoadedConfig is a validated project configuration.
type LoadedConfig struct {
	Config *config.Config

	// Path is the config file path, which need not exist.
	Path string

	// Source records how Path was chosen.
	Source config.ConfigSource
}

// LoadConfig resolves, loads and validates the configuration of the project
// at projectPath, then reapplies logging with the loaded settings.
//
// On failure it returns an *ExitError with the appropriate exit code.
func LoadConfig(g *cmdtypes.GlobalConfig, projectPath string) (*LoadedConfig, error) {
	resolved := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue:   g.ConfigFlag,
		ProjectRoot: projectPath,
	})
	config.LogResolvedValues([]config.ResolvedValue{resolved.Value()})

	if resolved.Source != config.SourceDefault {
		exists, err := config.ConfigFileExists(resolved.ConfigPath)
		if err != nil {
			return nil, &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("checking config file: %w", err)}
		}
		if !exists {
			return nil, &cmdtypes.ExitError{
				Code: cmdtypes.ExitNotFound,
				Err: oerrors.NewNotFoundError("configuration file not found", resolved.ConfigPath,
					"Run 'refgraph config init' to create a default configuration"),
			}
		}
	}

	cfg, err := config.NewLoader().LoadWithDefaults(resolved.ConfigPath)
	if err != nil {
		return nil, &cmdtypes.ExitError{Code: cmdtypes.ExitValidationError, Err: err}
	}

	validator, err := config.NewValidator()
	if err != nil {
		return nil, &cmdtypes.ExitError{Code: cmdtypes.ExitInternalError, Err: err}
	}
	if err := validator.Validate(cfg); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			PrintValidationErrors(resolved.ConfigPath, verrs)
			return nil, &cmdtypes.ExitError{Code: cmdtypes.ExitValidationError, Err: err, Printed: true}
		}
		return nil, &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: err}
	}

	output.SetupLogging(g.LogConfig(cfg))

	return &LoadedConfig{Config: cfg, Path: resolved.ConfigPath, Source: resolved.Source}, nil
}

// ProjectRoot returns the source root: the configured projectRoot, resolved
// against projectPath when relative, or projectPath itself.
func ProjectRoot(cfg *config.Config, projectPath string) string {
	switch {
	case cfg.ProjectRoot == "":
		return projectPath
	case filepath.IsAbs(cfg.ProjectRoot):
		return cfg.ProjectRoot
	default:
		return filepath.Join(projectPath, cfg.ProjectRoot)
	}
}
