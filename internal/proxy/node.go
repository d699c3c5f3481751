package proxy

import (
	"context"
	"fmt"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/marker"
	"github.com/opmodel/refgraph/internal/output"
)

// Modifier is appended to the server ident to form the proxy ident.
const Modifier = "client proxy"

// Node is the server-side stand-in for a client component. Its chunk item is
// the compiled proxy source; its references also reach the client reference
// marker so the boundary is discoverable from the server graph.
type Node struct {
	ident      core.Ident
	module     *core.Module
	reference  *marker.EcmascriptClientReference
	references []core.Reference
}

// Options configures proxy generation.
type Options struct {
	// RuntimeModule is the request createProxy is imported from.
	RuntimeModule string
}

// New generates and compiles the proxy for ref under the server context origin.
func New(ctx context.Context, p core.Processor, origin *core.Context, ref *marker.EcmascriptClientReference, opts Options) (*Node, error) {
	runtime := opts.RuntimeModule
	if runtime == "" {
		runtime = DefaultRuntimeModule
	}

	serverIdent := ref.ServerIdent()
	client := ref.ClientModule()

	code, err := Code(serverIdent, serverIdent.Path, runtime, client.Exports)
	if err != nil {
		return nil, err
	}

	src := core.NewSource(serverIdent.Path+"/proxy.ts", []byte(code))
	compiled, err := p.Process(ctx, src, origin, core.ReferenceKind{})
	if err != nil {
		return nil, fmt.Errorf("compiling client proxy for %s: %w", serverIdent.Path, err)
	}
	module, ok := compiled.(*core.Module)
	if !ok {
		return nil, &core.CapabilityMismatchError{Ident: compiled.Ident(), Capability: core.CapEcmascript, Context: origin.Name()}
	}
	if _, err := core.AsEcmascript(module); err != nil {
		return nil, err
	}

	refs := make([]core.Reference, 0, len(module.References())+1)
	refs = append(refs, module.References()...)
	refs = append(refs, core.Reference{
		Target:      ref,
		Description: "client references",
		Chunking:    core.ChunkNone,
	})

	output.Debug("generated client proxy", "module", serverIdent.Path, "exports", len(client.Exports.Names))

	return &Node{
		ident:      serverIdent.WithModifier(Modifier),
		module:     module,
		reference:  ref,
		references: refs,
	}, nil
}

// Ident implements core.Node.
func (n *Node) Ident() core.Ident { return n.ident }

// References implements core.Node.
func (n *Node) References() []core.Reference { return n.references }

// Capabilities implements core.Capable with the compiled proxy's capabilities.
func (n *Node) Capabilities() core.Capabilities { return n.module.Capabilities() }

// Delegate implements core.Delegating.
func (n *Node) Delegate() *core.Module { return n.module }

// ClientReference returns the boundary marker the proxy stands in for.
func (n *Node) ClientReference() *marker.EcmascriptClientReference { return n.reference }
