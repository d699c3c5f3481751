// Package build resolves the boundaries of a compiled module graph into chunk
// groups and folds them into the build manifests.
//
// Aggregation runs in two phases. The first resolves chunk groups for every
// boundary in parallel and writes nothing shared. The second folds the
// resolved, immutable results into an Accumulator on a single goroutine.
package build

import (
	"context"
	"errors"

	"github.com/opmodel/refgraph/internal/chunk"
	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/manifest"
)

// Pipeline defines the contract for build pipelines.
type Pipeline interface {
	// Build compiles the configured entries and returns the manifests and
	// chunks. Any failure aborts the build; no partial result is returned.
	Build(ctx context.Context, opts Options) (*Result, error)
}

// Options configures a build.
type Options struct {
	// ProjectRoot is the directory sources are resolved against.
	// Required.
	ProjectRoot string

	// DistDir is the output directory relative to ProjectRoot.
	// Required.
	DistDir string

	// SSR compiles legacy client components for server rendering too.
	SSR bool

	// Edge compiles server components for the edge worker target.
	Edge bool

	// LegacyClientComponents uses the server-to-client transition for
	// "use client" modules.
	LegacyClientComponents bool

	// Concurrency bounds the parallel phases. Zero is unbounded.
	Concurrency int

	// ModuleIDs selects how chunk item ids are rendered.
	ModuleIDs chunk.IDStrategy

	// AppEntries lists server component route files.
	AppEntries []string

	// PagesDir is the routed pages directory.
	PagesDir string

	// PageRoutes lists page files relative to PagesDir.
	PageRoutes []string

	// ClientRuntime and ServerRuntime list the runtime entry files evaluated
	// before every page.
	ClientRuntime []string
	ServerRuntime []string

	// ProxyModule overrides the createProxy runtime request.
	ProxyModule string
}

// Validate checks that required options are set.
func (o Options) Validate() error {
	if o.ProjectRoot == "" {
		return errors.New("ProjectRoot is required")
	}
	if o.DistDir == "" {
		return errors.New("DistDir is required")
	}
	if o.Concurrency < 0 {
		return errors.New("Concurrency must not be negative")
	}
	return nil
}

// Result is the output of a build.
type Result struct {
	// Manifests holds every manifest of the build.
	Manifests *manifest.Set

	// Chunks lists every chunk of the build once, in fold order.
	Chunks []core.Chunk

	// Routes summarizes the built routes in build order.
	Routes []Route
}

// Route summarizes one built route.
type Route struct {
	Name string

	// Kind is "app" for server component routes and "page" for routed pages.
	Kind string

	// ClientChunks counts the client chunks the route loads.
	ClientChunks int

	// CSSFiles counts the stylesheet chunks the route loads.
	CSSFiles int

	// ServerChunk is the route's server entry chunk relative to the server
	// output root.
	ServerChunk string
}
