// Package transition implements the transitions that re-compile a source under
// another context at a server/client boundary and splice a marker or proxy node
// into the origin graph.
package transition

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/marker"
	"github.com/opmodel/refgraph/internal/output"
	"github.com/opmodel/refgraph/internal/proxy"
)

// Registry names. Processors look transitions up by these names.
const (
	ClientReference    = "client-reference"
	CssClientReference = "css-client-reference"
	Dynamic            = "dynamic"
	ServerComponent    = "server-component"
	ClientChunks       = "client-chunks"
	SSRClientModule    = "ssr-client-module"
)

// ContextTransition re-processes a source under a fixed context. The origin's
// transition registry is kept.
type ContextTransition struct {
	name    string
	context *core.Context
}

// NewContextTransition creates a transition into c.
func NewContextTransition(name string, c *core.Context) *ContextTransition {
	return &ContextTransition{name: name, context: c}
}

// Name implements core.Transition.
func (t *ContextTransition) Name() string { return t.name }

// Context returns the target context.
func (t *ContextTransition) Context() *core.Context { return t.context }

// Process implements core.Transition.
func (t *ContextTransition) Process(ctx context.Context, p core.Processor, src core.Source, origin *core.Context, kind core.ReferenceKind) (core.Node, error) {
	return p.Process(ctx, src, t.context.WithTransitions(origin.Transitions()), kind)
}

// EcmascriptClientReferenceTransition compiles a client component for the
// browser and for server rendering, and replaces it in the server graph with a
// proxy node.
type EcmascriptClientReferenceTransition struct {
	client core.Transition
	ssr    core.Transition
	proxy  proxy.Options
}

// NewEcmascriptClientReferenceTransition creates the transition.
func NewEcmascriptClientReferenceTransition(client, ssr core.Transition, opts proxy.Options) *EcmascriptClientReferenceTransition {
	return &EcmascriptClientReferenceTransition{client: client, ssr: ssr, proxy: opts}
}

// Name implements core.Transition.
func (t *EcmascriptClientReferenceTransition) Name() string { return ClientReference }

// Process implements core.Transition.
func (t *EcmascriptClientReferenceTransition) Process(ctx context.Context, p core.Processor, src core.Source, origin *core.Context, kind core.ReferenceKind) (core.Node, error) {
	var client, ssr core.Node

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := t.client.Process(gctx, p, src, origin, kind)
		client = n
		return err
	})
	g.Go(func() error {
		n, err := t.ssr.Process(gctx, p, src, origin, kind)
		ssr = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	clientModule, err := asEcmascript(client, t.client.Name())
	if err != nil {
		return nil, err
	}
	ssrModule, err := asEcmascript(ssr, t.ssr.Name())
	if err != nil {
		return nil, err
	}

	ref := marker.NewEcmascriptClientReference(origin.ModuleIdent(src.Ident), clientModule, ssrModule)
	output.Debug("client reference", "module", src.Ident.Path, "from", origin.Name())

	return proxy.New(ctx, p, origin, ref, t.proxy)
}

// CssClientReferenceTransition compiles a stylesheet imported from server code
// for the browser.
type CssClientReferenceTransition struct {
	client core.Transition
}

// NewCssClientReferenceTransition creates the transition.
func NewCssClientReferenceTransition(client core.Transition) *CssClientReferenceTransition {
	return &CssClientReferenceTransition{client: client}
}

// Name implements core.Transition.
func (t *CssClientReferenceTransition) Name() string { return CssClientReference }

// Process implements core.Transition.
func (t *CssClientReferenceTransition) Process(ctx context.Context, p core.Processor, src core.Source, origin *core.Context, kind core.ReferenceKind) (core.Node, error) {
	n, err := t.client.Process(ctx, p, src, origin, kind)
	if err != nil {
		return nil, err
	}
	css, err := core.AsCss(n)
	if err != nil {
		return nil, withContext(err, t.client.Name())
	}
	return marker.NewCssClientReference(css), nil
}

// DynamicTransition compiles a lazily loaded module for the browser.
type DynamicTransition struct {
	client core.Transition
}

// NewDynamicTransition creates the transition.
func NewDynamicTransition(client core.Transition) *DynamicTransition {
	return &DynamicTransition{client: client}
}

// Name implements core.Transition.
func (t *DynamicTransition) Name() string { return Dynamic }

// Process implements core.Transition.
func (t *DynamicTransition) Process(ctx context.Context, p core.Processor, src core.Source, origin *core.Context, kind core.ReferenceKind) (core.Node, error) {
	n, err := t.client.Process(ctx, p, src, origin, kind)
	if err != nil {
		return nil, err
	}
	chunkable, err := core.AsChunkable(n)
	if err != nil {
		return nil, withContext(err, t.client.Name())
	}
	return marker.NewDynamicEntry(chunkable), nil
}

// ServerComponentTransition wraps a route entry compiled under the origin
// context.
type ServerComponentTransition struct{}

// NewServerComponentTransition creates the transition.
func NewServerComponentTransition() *ServerComponentTransition {
	return &ServerComponentTransition{}
}

// Name implements core.Transition.
func (t *ServerComponentTransition) Name() string { return ServerComponent }

// Process implements core.Transition.
func (t *ServerComponentTransition) Process(ctx context.Context, p core.Processor, src core.Source, origin *core.Context, kind core.ReferenceKind) (core.Node, error) {
	n, err := p.Process(ctx, src, origin, kind)
	if err != nil {
		return nil, err
	}
	m, err := asEcmascript(n, origin.Name())
	if err != nil {
		return nil, err
	}
	return marker.NewServerComponent(m), nil
}

func asEcmascript(n core.Node, contextName string) (core.EcmascriptModule, error) {
	m, err := core.AsEcmascript(n)
	if err != nil {
		return core.EcmascriptModule{}, withContext(err, contextName)
	}
	return m, nil
}

func withContext(err error, contextName string) error {
	var mismatch *core.CapabilityMismatchError
	if errors.As(err, &mismatch) {
		cp := *mismatch
		cp.Context = contextName
		return &cp
	}
	return fmt.Errorf("%s: %w", contextName, err)
}
