// Package cmdutil provides shared command utilities. It centralizes flag
// groups, config loading, build pipeline orchestration and output helpers.
package cmdutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/refgraph/internal/chunk"
	"github.com/opmodel/refgraph/internal/output"
)

// BuildFlags holds the flags of commands that run the build pipeline.
// Set flags override config file values.
type BuildFlags struct {
	Output      string
	DistDir     string
	Concurrency int
	ModuleIDs   string
	Edge        bool
}

// AddTo registers the build flags on the given cobra command.
func (f *BuildFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Output, "output", "o", "dir",
		"Output format: dir, json, yaml")
	cmd.Flags().StringVar(&f.DistDir, "dist-dir", "",
		"Output directory relative to the project (default: from config)")
	cmd.Flags().IntVar(&f.Concurrency, "concurrency", 0,
		"Parallel resolution limit (default: from config)")
	cmd.Flags().StringVar(&f.ModuleIDs, "module-ids", "",
		"Module id strategy: string, numeric (default: from config)")
	cmd.Flags().BoolVar(&f.Edge, "edge", false,
		"Compile server components for the edge worker runtime")
}

// Validate checks flag values that cobra cannot.
func (f *BuildFlags) Validate() error {
	if f.Output != "" && f.Format() == output.FormatDir && !strings.EqualFold(f.Output, string(output.FormatDir)) {
		return fmt.Errorf("invalid output format %q (valid: %s)", f.Output, strings.Join(output.ValidFormats(), ", "))
	}
	if f.Concurrency < 0 {
		return fmt.Errorf("--concurrency must not be negative")
	}
	switch chunk.IDStrategy(f.ModuleIDs) {
	case "", chunk.IDsString, chunk.IDsNumeric:
	default:
		return fmt.Errorf("invalid module id strategy %q (valid: string, numeric)", f.ModuleIDs)
	}
	return nil
}

// Format returns the parsed output format.
func (f *BuildFlags) Format() output.OutputFormat {
	return output.ParseOutputFormat(f.Output)
}

// ResolveProjectPath returns the project path from command args,
// defaulting to the current directory.
func ResolveProjectPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}
