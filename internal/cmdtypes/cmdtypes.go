// Package cmdtypes provides shared types for the cmd package and cmdutil.
// It is separate from internal/cmd to avoid import cycles between the command
// constructors and the helpers they call.
package cmdtypes

import (
	"github.com/opmodel/refgraph/internal/config"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/output"
)

// GlobalConfig holds CLI-wide flag values resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every command
// constructor.
type GlobalConfig struct {
	// ConfigFlag is the raw --config value.
	ConfigFlag string

	// Verbose enables debug logging.
	Verbose bool

	// Timestamps is set only when --timestamps was given explicitly.
	Timestamps *bool
}

// LogConfig returns the logger setup with precedence flag > config > default.
// cfg may be nil.
func (g *GlobalConfig) LogConfig(cfg *config.Config) output.LogConfig {
	logCfg := output.LogConfig{Verbose: g.Verbose}
	switch {
	case g.Timestamps != nil:
		logCfg.Timestamps = g.Timestamps
	case cfg != nil && cfg.Log.Timestamps != nil:
		logCfg.Timestamps = cfg.Log.Timestamps
	}
	return logCfg
}

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess          = oerrors.ExitSuccess
	ExitGeneralError     = oerrors.ExitGeneralError
	ExitValidationError  = oerrors.ExitValidationError
	ExitInternalError    = oerrors.ExitInternalError
	ExitPermissionDenied = oerrors.ExitPermissionDenied
	ExitNotFound         = oerrors.ExitNotFound
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError
