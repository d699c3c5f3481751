// Package config provides configuration loading and management.
package config

// Defaults applied by WithDefaults.
const (
	DefaultDistDir     = ".next"
	DefaultPagesDir    = "pages"
	DefaultConcurrency = 8
	DefaultModuleIDs   = "string"
)

// AppConfig contains app router settings.
type AppConfig struct {
	// Entries lists the server component route files, relative to the
	// project root (e.g. "app/page.tsx").
	Entries []string `json:"entries,omitempty" yaml:"entries,omitempty"`

	// LegacyClientComponents compiles "use client" modules through the
	// server-to-client transition instead of client references.
	LegacyClientComponents bool `json:"legacyClientComponents,omitempty" yaml:"legacyClientComponents,omitempty"`
}

// PagesConfig contains routed pages settings.
type PagesConfig struct {
	// Dir is the pages directory relative to the project root.
	// Default: "pages"
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Routes lists the page files relative to Dir. Routes are not discovered.
	Routes []string `json:"routes,omitempty" yaml:"routes,omitempty"`

	// ClientRuntime lists entry files evaluated before every page in the browser.
	ClientRuntime []string `json:"clientRuntime,omitempty" yaml:"clientRuntime,omitempty"`

	// ServerRuntime lists entry files included in every page SSR entry.
	ServerRuntime []string `json:"serverRuntime,omitempty" yaml:"serverRuntime,omitempty"`
}

// RuntimeConfig contains settings of generated runtime code.
type RuntimeConfig struct {
	// ProxyModule is the request client proxies import createProxy from.
	ProxyModule string `json:"proxyModule,omitempty" yaml:"proxyModule,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// Config represents the refgraph configuration.
// Loaded from refgraph.yaml, validated against the embedded CUE schema.
type Config struct {
	// ProjectRoot is the directory sources are resolved against.
	// Default: the directory passed to the command.
	ProjectRoot string `json:"projectRoot,omitempty" yaml:"projectRoot,omitempty"`

	// DistDir is the output directory relative to ProjectRoot.
	// Env: REFGRAPH_DIST_DIR, Default: ".next"
	DistDir string `json:"distDir,omitempty" yaml:"distDir,omitempty"`

	// SSR compiles legacy client components for server rendering too.
	// Env: REFGRAPH_SSR, Default: true
	SSR *bool `json:"ssr,omitempty" yaml:"ssr,omitempty"`

	// Edge compiles server components for the edge worker target.
	// Env: REFGRAPH_EDGE
	Edge bool `json:"edge,omitempty" yaml:"edge,omitempty"`

	// Concurrency bounds the parallel build phases.
	// Env: REFGRAPH_CONCURRENCY, Default: 8
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// ModuleIDs selects how module ids are rendered: "string" or "numeric".
	// Env: REFGRAPH_MODULE_IDS, Default: "string"
	ModuleIDs string `json:"moduleIds,omitempty" yaml:"moduleIds,omitempty"`

	App     AppConfig     `json:"app,omitempty" yaml:"app,omitempty"`
	Pages   PagesConfig   `json:"pages,omitempty" yaml:"pages,omitempty"`
	Runtime RuntimeConfig `json:"runtime,omitempty" yaml:"runtime,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `refgraph config init` to generate the initial config file.
func DefaultConfig() *Config {
	ssr := true
	timestamps := true
	return &Config{
		DistDir:     DefaultDistDir,
		SSR:         &ssr,
		Concurrency: DefaultConcurrency,
		ModuleIDs:   DefaultModuleIDs,
		App: AppConfig{
			Entries: []string{"app/page.tsx"},
		},
		Pages: PagesConfig{
			Dir: DefaultPagesDir,
		},
		Log: LogConfig{
			Timestamps: &timestamps,
		},
	}
}

// WithDefaults returns a copy of c with unset values replaced by defaults.
func (c *Config) WithDefaults() *Config {
	cp := *c
	if cp.DistDir == "" {
		cp.DistDir = DefaultDistDir
	}
	if cp.SSR == nil {
		ssr := true
		cp.SSR = &ssr
	}
	if cp.Concurrency == 0 {
		cp.Concurrency = DefaultConcurrency
	}
	if cp.ModuleIDs == "" {
		cp.ModuleIDs = DefaultModuleIDs
	}
	if cp.Pages.Dir == "" {
		cp.Pages.Dir = DefaultPagesDir
	}
	if cp.Log.Timestamps == nil {
		timestamps := true
		cp.Log.Timestamps = &timestamps
	}
	return &cp
}

// SSREnabled reports whether SSR is enabled. Unset means enabled.
func (c *Config) SSREnabled() bool {
	return c.SSR == nil || *c.SSR
}
