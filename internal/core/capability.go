package core

import "fmt"

// Capability names a behavior a node may support.
type Capability string

const (
	// CapChunkable marks nodes that can be the root of a chunk.
	CapChunkable Capability = "chunkable"

	// CapEcmascript marks nodes exporting ECMAScript bindings.
	CapEcmascript Capability = "ecmascript"

	// CapCss marks nodes exporting stylesheets.
	CapCss Capability = "css"
)

// ExportType tags the shape of an ECMAScript export surface.
type ExportType int

const (
	// ExportsEsm is a statically analyzable export list.
	ExportsEsm ExportType = iota

	// ExportsCommonJs is a dynamic (module.exports) export surface.
	ExportsCommonJs

	// ExportsValue is a module evaluating to a single value.
	ExportsValue

	// ExportsNone is a module with no export surface.
	ExportsNone
)

// String returns the export type name.
func (t ExportType) String() string {
	switch t {
	case ExportsEsm:
		return "esm"
	case ExportsCommonJs:
		return "commonjs"
	case ExportsValue:
		return "value"
	case ExportsNone:
		return "none"
	default:
		return fmt.Sprintf("exports(%d)", int(t))
	}
}

// ExportKind describes what a module exports.
type ExportKind struct {
	Type ExportType

	// Names lists the ESM export names in declaration order. Only set for
	// ExportsEsm.
	Names []string

	// HasStarExport reports an `export * from` re-export. Only set for
	// ExportsEsm.
	HasStarExport bool
}

// EsmExports returns an ESM export kind.
func EsmExports(names []string, hasStar bool) ExportKind {
	return ExportKind{Type: ExportsEsm, Names: names, HasStarExport: hasStar}
}

// CommonJsExports returns a CommonJS export kind.
func CommonJsExports() ExportKind {
	return ExportKind{Type: ExportsCommonJs}
}

// NamedExports returns the ESM export names other than "default".
// It returns nil for non-ESM kinds.
func (k ExportKind) NamedExports() []string {
	if k.Type != ExportsEsm {
		return nil
	}
	var names []string
	for _, n := range k.Names {
		if n != "default" {
			names = append(names, n)
		}
	}
	return names
}

// Capabilities is the closed capability set of a node.
type Capabilities struct {
	// Chunkable is set when the node can be placed in chunks.
	Chunkable bool

	// Ecmascript is non-nil when the node exports ECMAScript bindings.
	Ecmascript *ExportKind

	// Css is set when the node exports a stylesheet.
	Css bool
}

// EcmascriptCapabilities returns the capabilities of a chunkable ECMAScript
// module with the given exports.
func EcmascriptCapabilities(exports ExportKind) Capabilities {
	return Capabilities{Chunkable: true, Ecmascript: &exports}
}

// CssCapabilities returns the capabilities of a chunkable stylesheet.
func CssCapabilities() Capabilities {
	return Capabilities{Chunkable: true, Css: true}
}

// Capable is implemented by nodes exposing a capability set. Marker nodes do
// not implement it and therefore support no capability.
type Capable interface {
	Node
	Capabilities() Capabilities
}

// EcmascriptModule is a node viewed through its ECMAScript capability.
type EcmascriptModule struct {
	Node
	Exports ExportKind
}

// CssModule is a node viewed through its stylesheet capability.
type CssModule struct {
	Node
}

// ChunkableModule is a node viewed through its chunkable capability.
type ChunkableModule struct {
	Node
}

func capabilitiesOf(n Node) Capabilities {
	if c, ok := n.(Capable); ok {
		return c.Capabilities()
	}
	return Capabilities{}
}

// AsEcmascript downcasts n to an ECMAScript module. The node must be chunkable
// and ECMAScript-exporting.
func AsEcmascript(n Node) (EcmascriptModule, error) {
	caps := capabilitiesOf(n)
	if caps.Ecmascript == nil || !caps.Chunkable {
		return EcmascriptModule{}, &CapabilityMismatchError{Ident: n.Ident(), Capability: CapEcmascript}
	}
	return EcmascriptModule{Node: n, Exports: *caps.Ecmascript}, nil
}

// AsCss downcasts n to a stylesheet module.
func AsCss(n Node) (CssModule, error) {
	caps := capabilitiesOf(n)
	if !caps.Css || !caps.Chunkable {
		return CssModule{}, &CapabilityMismatchError{Ident: n.Ident(), Capability: CapCss}
	}
	return CssModule{Node: n}, nil
}

// AsChunkable downcasts n to a chunkable module.
func AsChunkable(n Node) (ChunkableModule, error) {
	if !capabilitiesOf(n).Chunkable {
		return ChunkableModule{}, &CapabilityMismatchError{Ident: n.Ident(), Capability: CapChunkable}
	}
	return ChunkableModule{Node: n}, nil
}
