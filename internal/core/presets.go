package core

// Context names used by the presets. They double as ident modifiers.
const (
	ClientContextName = "client"
	SSRContextName    = "ssr"
	ServerContextName = "rsc"
	EdgeContextName   = "edge"
)

// ClientContext returns the browser compilation context.
func ClientContext(opts ...ContextOption) *Context {
	base := []ContextOption{
		WithResolve(ResolveOptions{
			Conditions: []string{"browser", "import", "default"},
			Extensions: DefaultExtensions,
			Browser:    true,
			Module:     true,
		}),
		WithDefines(map[string]any{
			"process.turbopack":        true,
			"process.browser":          true,
			"typeof window":            "object",
			"process.env.NEXT_RUNTIME": "",
		}),
	}
	return NewContext(ClientContextName, TargetBrowser, append(base, opts...)...)
}

// SSRContext returns the server-rendering compilation context.
func SSRContext(opts ...ContextOption) *Context {
	base := []ContextOption{
		WithResolve(ResolveOptions{
			Conditions: []string{"node", "import", "default"},
			Extensions: DefaultExtensions,
			Module:     true,
		}),
		WithDefines(map[string]any{
			"process.turbopack":        true,
			"typeof window":            "undefined",
			"process.env.NEXT_RUNTIME": "nodejs",
		}),
	}
	return NewContext(SSRContextName, TargetServerRender, append(base, opts...)...)
}

// ServerContext returns the server component compilation context.
func ServerContext(opts ...ContextOption) *Context {
	base := []ContextOption{
		WithResolve(ResolveOptions{
			Conditions: []string{"react-server", "node", "import", "default"},
			Extensions: DefaultExtensions,
			Module:     true,
		}),
		WithDefines(map[string]any{
			"process.turbopack":        true,
			"typeof window":            "undefined",
			"process.env.NEXT_RUNTIME": "nodejs",
		}),
	}
	return NewContext(ServerContextName, TargetServer, append(base, opts...)...)
}

// EdgeContext returns the edge worker compilation context.
func EdgeContext(opts ...ContextOption) *Context {
	base := []ContextOption{
		WithResolve(ResolveOptions{
			Conditions: []string{"edge-light", "worker", "development"},
			Extensions: DefaultExtensions,
			Browser:    true,
			Module:     true,
		}),
		WithDefines(map[string]any{
			"process.turbopack":                               true,
			"process.env.NODE_ENV":                            "development",
			"process.env.__NEXT_CLIENT_ROUTER_FILTER_ENABLED": false,
			"process.env.NEXT_RUNTIME":                        "edge",
		}),
	}
	return NewContext(EdgeContextName, TargetEdgeWorker, append(base, opts...)...)
}
