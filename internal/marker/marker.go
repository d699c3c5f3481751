// Package marker provides the content-less graph nodes that tag boundary edges
// of the module graph.
//
// Marker nodes implement only core.Node: they carry an ident and references and
// nothing else. They are not chunkable, so chunking never materializes them,
// and core.Content reports core.ErrMarkerHasNoContent for them.
package marker

import "github.com/opmodel/refgraph/internal/core"

// Ident modifiers appended by the marker nodes.
const (
	EcmascriptClientReferenceModifier = "ecmascript client reference"
	CssClientReferenceModifier        = "css client reference"
	DynamicModifier                   = "dynamic"
	ServerComponentModifier           = "Next.js server component"
)

// EcmascriptClientReference marks a server to client boundary of a script
// module compiled for both the browser and server rendering.
type EcmascriptClientReference struct {
	serverIdent core.Ident
	client      core.EcmascriptModule
	ssr         core.EcmascriptModule
}

// NewEcmascriptClientReference creates the marker for the module compiled as
// client and ssr, reached from the server module identified by serverIdent.
func NewEcmascriptClientReference(serverIdent core.Ident, client, ssr core.EcmascriptModule) *EcmascriptClientReference {
	return &EcmascriptClientReference{serverIdent: serverIdent, client: client, ssr: ssr}
}

// Ident implements core.Node.
func (r *EcmascriptClientReference) Ident() core.Ident {
	return r.serverIdent.WithModifier(EcmascriptClientReferenceModifier)
}

// References implements core.Node.
func (r *EcmascriptClientReference) References() []core.Reference { return nil }

// ServerIdent returns the ident of the server module the boundary replaces.
func (r *EcmascriptClientReference) ServerIdent() core.Ident { return r.serverIdent }

// ClientModule returns the browser compiled module.
func (r *EcmascriptClientReference) ClientModule() core.EcmascriptModule { return r.client }

// SSRModule returns the server-rendering compiled module.
func (r *EcmascriptClientReference) SSRModule() core.EcmascriptModule { return r.ssr }

// CssClientReference marks a stylesheet imported from server code. It only has
// a client form.
type CssClientReference struct {
	client core.CssModule
}

// NewCssClientReference creates the marker for a client compiled stylesheet.
func NewCssClientReference(client core.CssModule) *CssClientReference {
	return &CssClientReference{client: client}
}

// Ident implements core.Node.
func (r *CssClientReference) Ident() core.Ident {
	return r.client.Ident().WithModifier(CssClientReferenceModifier)
}

// References implements core.Node.
func (r *CssClientReference) References() []core.Reference { return nil }

// ClientModule returns the client compiled stylesheet.
func (r *CssClientReference) ClientModule() core.CssModule { return r.client }

// DynamicEntry marks a module reached through a lazy-load boundary.
type DynamicEntry struct {
	client core.ChunkableModule
}

// NewDynamicEntry creates the marker for a client compiled lazy module.
func NewDynamicEntry(client core.ChunkableModule) *DynamicEntry {
	return &DynamicEntry{client: client}
}

// Ident implements core.Node.
func (d *DynamicEntry) Ident() core.Ident {
	return d.client.Ident().WithModifier(DynamicModifier)
}

// References implements core.Node.
func (d *DynamicEntry) References() []core.Reference { return nil }

// ClientModule returns the client compiled module.
func (d *DynamicEntry) ClientModule() core.ChunkableModule { return d.client }

// ServerComponent wraps a route entry so client references found below it can
// be attributed to the route.
type ServerComponent struct {
	inner core.EcmascriptModule
}

// NewServerComponent wraps the server compiled route module.
func NewServerComponent(inner core.EcmascriptModule) *ServerComponent {
	return &ServerComponent{inner: inner}
}

// Ident implements core.Node.
func (s *ServerComponent) Ident() core.Ident {
	return s.inner.Ident().WithModifier(ServerComponentModifier)
}

// References implements core.Node. The single edge leads into the route's
// module graph.
func (s *ServerComponent) References() []core.Reference {
	return []core.Reference{{
		Target:      s.inner.Node,
		Description: "server component",
		Chunking:    core.ChunkIsolatedParallel,
	}}
}

// Inner returns the wrapped route module.
func (s *ServerComponent) Inner() core.EcmascriptModule { return s.inner }

// ServerPath returns the path of the wrapped route module.
func (s *ServerComponent) ServerPath() string { return s.inner.Ident().Path }
