package core

// Node is a vertex of the module graph.
//
// Nodes come in two shapes. *Module carries compiled content and is produced
// by a Processor. Marker nodes (see internal/marker) and proxy nodes carry
// only identity and references; they have no Content method at all, and the
// Content helper reports ErrMarkerHasNoContent for them.
type Node interface {
	// Ident returns the stable identity of the node.
	Ident() Ident

	// References returns the outgoing edges of the node, in order.
	References() []Reference
}

// ChunkingType describes how a reference participates in chunking.
type ChunkingType int

const (
	// ChunkParallel places the target in the same chunk group.
	ChunkParallel ChunkingType = iota

	// ChunkIsolatedParallel places the target in the same chunk group but in
	// chunks of its own.
	ChunkIsolatedParallel

	// ChunkAsync starts a new chunk group loaded on demand.
	ChunkAsync

	// ChunkNone is not followed when computing chunk groups.
	ChunkNone
)

// Reference is a directed edge of the module graph.
type Reference struct {
	// Target is the referenced node.
	Target Node

	// Description is a human readable label (the import request, usually).
	Description string

	// Chunking controls how chunking follows the edge.
	Chunking ChunkingType
}

// Source is an unprocessed unit of code: a file on disk or a virtual module.
type Source struct {
	Ident   Ident
	Content []byte
}

// NewSource creates a Source for path with content.
func NewSource(path string, content []byte) Source {
	return Source{Ident: NewIdent(path), Content: content}
}

// Module is a compiled, content-bearing node produced by a Processor.
//
// A Module is immutable once the producing Processor has linked its
// references and published it.
type Module struct {
	ident        Ident
	content      []byte
	capabilities Capabilities
	references   []Reference
	linked       bool
}

// NewModule creates a compiled module. References are attached with Link.
func NewModule(ident Ident, content []byte, caps Capabilities) *Module {
	return &Module{
		ident:        ident,
		content:      content,
		capabilities: caps,
	}
}

// Ident implements Node.
func (m *Module) Ident() Ident { return m.ident }

// References implements Node.
func (m *Module) References() []Reference { return m.references }

// Content returns the compiled source of the module.
func (m *Module) Content() []byte { return m.content }

// Capabilities returns the capability set of the module.
func (m *Module) Capabilities() Capabilities { return m.capabilities }

// Link attaches the outgoing references. It is called exactly once by the
// producing Processor before the module is shared; later calls are ignored.
func (m *Module) Link(refs []Reference) {
	if m.linked {
		return
	}
	m.references = refs
	m.linked = true
}

// Content returns the content of a node. Marker and proxy nodes have none;
// asking for it is a contract violation reported as ErrMarkerHasNoContent.
func Content(n Node) ([]byte, error) {
	if m, ok := n.(*Module); ok {
		return m.Content(), nil
	}
	return nil, &MarkerContentError{Ident: n.Ident()}
}

// Delegating is implemented by synthetic nodes whose chunk item is produced by
// a content-bearing module they own (the client proxy, for instance).
type Delegating interface {
	Node
	Delegate() *Module
}
