package transition

import (
	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/proxy"
)

// Options configures the server registry.
type Options struct {
	// SSR compiles client components for server rendering too. Only consulted
	// by the server-to-client transition.
	SSR bool

	// LegacyClientComponents routes "use client" modules through the
	// server-to-client transition instead of client reference proxies.
	LegacyClientComponents bool

	// ClientChunking computes client chunk lists for the server-to-client
	// transition. Required with LegacyClientComponents.
	ClientChunking core.ChunkingContext

	// Proxy configures client reference proxy generation.
	Proxy proxy.Options
}

// ServerTransitions returns the registry of server component contexts.
func ServerTransitions(client, ssr *core.Context, opts Options) *core.Transitions {
	clientT := NewContextTransition(client.Name(), client)
	ssrT := NewContextTransition(ssr.Name(), ssr)

	byName := map[string]core.Transition{
		CssClientReference: NewCssClientReferenceTransition(clientT),
		Dynamic:            NewDynamicTransition(clientT),
		ServerComponent:    NewServerComponentTransition(),
		SSRClientModule:    ssrT,
	}
	if opts.LegacyClientComponents {
		byName[ClientReference] = NewServerToClientTransition(opts.SSR)
		byName[ClientChunks] = NewClientChunksTransition(clientT, opts.ClientChunking)
	} else {
		byName[ClientReference] = NewEcmascriptClientReferenceTransition(clientT, ssrT, opts.Proxy)
	}
	return core.NewTransitions(byName)
}

// PageTransitions returns the registry of routed page contexts.
func PageTransitions(client *core.Context) *core.Transitions {
	return core.NewTransitions(map[string]core.Transition{
		Dynamic: NewDynamicTransition(NewContextTransition(client.Name(), client)),
	})
}
