// Package version provides version information for the refgraph CLI.
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Versions of the embedded engines, kept in sync with go.mod.
const (
	// EsbuildVersion is the esbuild API used to analyze sources.
	EsbuildVersion = "v0.27.2"

	// CUESDKVersion is the CUE SDK used to validate configuration.
	CUESDKVersion = "v0.15.4"
)

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// EsbuildVersion is the embedded esbuild version.
	EsbuildVersion string `json:"esbuildVersion"`

	// CUESDKVersion is the embedded CUE SDK version.
	CUESDKVersion string `json:"cueSDKVersion"`
}

// GetInfo returns the current version information.
func GetInfo() Info {
	return Info{
		Version:        Version,
		GitCommit:      GitCommit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		EsbuildVersion: EsbuildVersion,
		CUESDKVersion:  CUESDKVersion,
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("refgraph:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s\n\nEngines:\n  esbuild:  %s\n  CUE SDK:  %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.EsbuildVersion, i.CUESDKVersion)
}
