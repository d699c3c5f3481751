package cmdutil

import (
	"context"
	"fmt"

	"github.com/opmodel/refgraph/internal/build"
	"github.com/opmodel/refgraph/internal/chunk"
	"github.com/opmodel/refgraph/internal/cmdtypes"
	"github.com/opmodel/refgraph/internal/config"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/loader"
	"github.com/opmodel/refgraph/internal/output"
)

// RunBuildOpts holds the inputs for RunBuild.
type RunBuildOpts struct {
	// Args from the cobra command (first arg is the project path).
	Args []string

	// Flags are the command's build flags.
	Flags *BuildFlags

	// Global is the CLI-wide configuration.
	Global *cmdtypes.GlobalConfig

	// Spinner shows progress while the pipeline runs on a terminal.
	Spinner bool
}

// BuildRun is the outcome of RunBuild.
type BuildRun struct {
	Result  *build.Result
	Options build.Options
	Config  *LoadedConfig
}

// BuildOptions merges the config with flag overrides into pipeline options.
func BuildOptions(cfg *config.Config, projectRoot string, f *BuildFlags) build.Options {
	opts := build.Options{
		ProjectRoot:            projectRoot,
		DistDir:                cfg.DistDir,
		SSR:                    cfg.SSREnabled(),
		Edge:                   cfg.Edge,
		LegacyClientComponents: cfg.App.LegacyClientComponents,
		Concurrency:            cfg.Concurrency,
		ModuleIDs:              chunk.IDStrategy(cfg.ModuleIDs),
		AppEntries:             cfg.App.Entries,
		PagesDir:               cfg.Pages.Dir,
		PageRoutes:             cfg.Pages.Routes,
		ClientRuntime:          cfg.Pages.ClientRuntime,
		ServerRuntime:          cfg.Pages.ServerRuntime,
		ProxyModule:            cfg.Runtime.ProxyModule,
	}
	if f == nil {
		return opts
	}
	if f.DistDir != "" {
		opts.DistDir = f.DistDir
	}
	if f.Concurrency > 0 {
		opts.Concurrency = f.Concurrency
	}
	if f.ModuleIDs != "" {
		opts.ModuleIDs = chunk.IDStrategy(f.ModuleIDs)
	}
	if f.Edge {
		opts.Edge = true
	}
	return opts
}

// RunBuild executes the build preamble shared by commands that build: it
// resolves the project path, loads config, creates the loader and pipeline,
// and runs the build.
//
// On failure it returns an *ExitError with the appropriate exit code and
// Printed flag.
func RunBuild(ctx context.Context, opts RunBuildOpts) (*BuildRun, error) {
	if opts.Global == nil {
		return nil, &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: fmt.Errorf("global configuration not initialized")}
	}
	if opts.Flags == nil {
		opts.Flags = &BuildFlags{}
	}
	if err := opts.Flags.Validate(); err != nil {
		return nil, &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: err}
	}

	projectPath := ResolveProjectPath(opts.Args)
	loaded, err := LoadConfig(opts.Global, projectPath)
	if err != nil {
		return nil, err
	}

	buildOpts := BuildOptions(loaded.Config, ProjectRoot(loaded.Config, projectPath), opts.Flags)
	if err := buildOpts.Validate(); err != nil {
		return nil, &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: err}
	}

	ld, err := loader.New(loader.Options{Root: buildOpts.ProjectRoot})
	if err != nil {
		PrintBuildError("loading project", err)
		return nil, &cmdtypes.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err, Printed: true}
	}
	buildOpts.ProjectRoot = ld.Root()

	output.Debug("building project",
		"root", buildOpts.ProjectRoot,
		"dist", buildOpts.DistDir,
		"app-entries", len(buildOpts.AppEntries),
		"pages", len(buildOpts.PageRoutes),
		"edge", buildOpts.Edge,
		"concurrency", buildOpts.Concurrency,
	)

	pipeline := build.NewPipeline(ld, nil)

	var result *build.Result
	action := func(ctx context.Context) error {
		var err error
		result, err = pipeline.Build(ctx, buildOpts)
		return err
	}
	if opts.Spinner {
		err = output.RunWithSpinner(ctx, action, output.WithTitle("Building routes..."))
	} else {
		err = action(ctx)
	}
	if err != nil {
		PrintBuildError("build failed", err)
		return nil, &cmdtypes.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err, Printed: true}
	}

	return &BuildRun{Result: result, Options: buildOpts, Config: loaded}, nil
}
