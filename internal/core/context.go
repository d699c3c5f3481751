package core

import (
	"fmt"
	"sort"
)

// Target is the runtime environment a Context compiles for.
type Target int

const (
	// TargetBrowser compiles for the browser bundle.
	TargetBrowser Target = iota

	// TargetServerRender compiles the server-rendering (SSR) bundle.
	TargetServerRender

	// TargetEdgeWorker compiles for an edge worker runtime.
	TargetEdgeWorker

	// TargetServer compiles pure server modules (server components).
	TargetServer
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetBrowser:
		return "browser"
	case TargetServerRender:
		return "server-render"
	case TargetEdgeWorker:
		return "edge-worker"
	case TargetServer:
		return "server"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// IsServer reports whether code compiled for the target runs on the server
// as server components (the side client boundaries are crossed from).
func (t Target) IsServer() bool {
	return t == TargetServer || t == TargetEdgeWorker
}

// ResolveOptions holds the module resolution rules of a Context.
type ResolveOptions struct {
	// Conditions are the package.json export conditions, in priority order.
	Conditions []string

	// Extensions are tried in order when a request has no extension.
	Extensions []string

	// Browser enables the package.json "browser" field.
	Browser bool

	// Module enables the package.json "module" field.
	Module bool
}

// DefaultExtensions are the extensions tried for extension-less requests.
var DefaultExtensions = []string{".tsx", ".ts", ".jsx", ".js", ".mjs", ".cjs", ".css"}

// Context is an immutable compilation environment.
//
// Contexts are created once per build and shared by reference. Every With*
// method returns a modified copy; none mutates the receiver.
type Context struct {
	name        string
	target      Target
	resolve     ResolveOptions
	defines     map[string]any
	importMap   map[string]string
	transitions *Transitions
	transition  string
}

// ContextOption configures a Context under construction.
type ContextOption func(*Context)

// WithResolve sets the resolve options.
func WithResolve(opts ResolveOptions) ContextOption {
	return func(c *Context) {
		c.resolve = opts
	}
}

// WithDefines sets compile-time defines.
func WithDefines(defines map[string]any) ContextOption {
	return func(c *Context) {
		c.defines = copyMap(defines)
	}
}

// WithImportMap sets request aliases applied before resolution.
func WithImportMap(importMap map[string]string) ContextOption {
	return func(c *Context) {
		c.importMap = copyMap(importMap)
	}
}

// WithTransitionRegistry sets the transitions available by name.
func WithTransitionRegistry(t *Transitions) ContextOption {
	return func(c *Context) {
		c.transitions = t
	}
}

// NewContext creates a Context. The name becomes the ident modifier of every
// module compiled under it, so it must be unique per build.
func NewContext(name string, target Target, opts ...ContextOption) *Context {
	c := &Context{
		name:    name,
		target:  target,
		resolve: ResolveOptions{Extensions: DefaultExtensions},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transitions == nil {
		c.transitions = NewTransitions(nil)
	}
	return c
}

// Name returns the context name.
func (c *Context) Name() string { return c.name }

// Target returns the compilation target.
func (c *Context) Target() Target { return c.target }

// Resolve returns the resolve options.
func (c *Context) Resolve() ResolveOptions { return c.resolve }

// Transitions returns the transition registry.
func (c *Context) Transitions() *Transitions { return c.transitions }

// Transition returns the name of the transition applied when processing
// through this context, or "" when none is set.
func (c *Context) Transition() string { return c.transition }

// ModuleIdent returns the ident a source gets when compiled under c.
func (c *Context) ModuleIdent(src Ident) Ident {
	return src.WithModifier(c.name)
}

// Define returns a compile-time define.
func (c *Context) Define(key string) (any, bool) {
	v, ok := c.defines[key]
	return v, ok
}

// DefineKeys returns the define keys in sorted order.
func (c *Context) DefineKeys() []string {
	return sortedKeys(c.defines)
}

// ImportAlias returns the aliased request for request, if mapped.
func (c *Context) ImportAlias(request string) (string, bool) {
	v, ok := c.importMap[request]
	return v, ok
}

// WithTransition returns a copy that routes processing through the named
// transition.
func (c *Context) WithTransition(name string) *Context {
	cp := *c
	cp.transition = name
	return &cp
}

// WithoutTransition returns a copy with the applied transition cleared.
func (c *Context) WithoutTransition() *Context {
	if c.transition == "" {
		return c
	}
	cp := *c
	cp.transition = ""
	return &cp
}

// WithTransitions returns a copy using registry t.
func (c *Context) WithTransitions(t *Transitions) *Context {
	cp := *c
	cp.transitions = t
	return &cp
}

// String implements fmt.Stringer.
func (c *Context) String() string {
	if c.transition != "" {
		return c.name + "+" + c.transition
	}
	return c.name
}

func copyMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	cp := make(map[string]V, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
