// Package clientref discovers the client boundaries of a server module graph.
//
// A walk starts at route entries (server component markers) and page modules
// and records every client reference marker it reaches, attributed to the
// nearest enclosing server component, plus every lazy-load marker.
package clientref

import (
	"fmt"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/marker"
)

// Tag discriminates the kinds of client reference.
type Tag int

const (
	// TagEcmascript is a script boundary with client and SSR forms.
	TagEcmascript Tag = iota

	// TagCss is a stylesheet imported from server code.
	TagCss
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagEcmascript:
		return "ecmascript"
	case TagCss:
		return "css"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Type is one distinct client boundary. Exactly one of Ecmascript and Css is
// set, as selected by Tag.
type Type struct {
	Tag        Tag
	Ecmascript *marker.EcmascriptClientReference
	Css        *marker.CssClientReference
}

// EcmascriptType returns the type of a script boundary.
func EcmascriptType(ref *marker.EcmascriptClientReference) Type {
	return Type{Tag: TagEcmascript, Ecmascript: ref}
}

// CssType returns the type of a stylesheet boundary.
func CssType(ref *marker.CssClientReference) Type {
	return Type{Tag: TagCss, Css: ref}
}

// Ident returns the ident of the marker node behind the type.
func (t Type) Ident() core.Ident {
	if t.Tag == TagCss {
		return t.Css.Ident()
	}
	return t.Ecmascript.Ident()
}

// Key identifies the type in sets and maps.
func (t Type) Key() string {
	return t.Tag.String() + "|" + t.Ident().Key()
}

// ClientModule returns the browser compiled node of the boundary.
func (t Type) ClientModule() core.Node {
	if t.Tag == TagCss {
		return t.Css.ClientModule().Node
	}
	return t.Ecmascript.ClientModule().Node
}

// Reference is one occurrence of a boundary in the server graph.
type Reference struct {
	// ServerComponent is the route the boundary was reached from, or nil.
	ServerComponent *marker.ServerComponent

	Type Type
}

// Route returns the route name the reference is attributed to.
func (r Reference) Route() (string, bool) {
	if r.ServerComponent == nil {
		return "", false
	}
	return r.ServerComponent.Inner().Ident().WithoutExt(), true
}

// TypeSet is an insertion-ordered set of client reference types.
type TypeSet struct {
	order []Type
	index map[string]int
}

// NewTypeSet creates an empty set.
func NewTypeSet() *TypeSet {
	return &TypeSet{index: make(map[string]int)}
}

// Add inserts t unless an equal type is present. It reports whether t was new.
func (s *TypeSet) Add(t Type) bool {
	key := t.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.order)
	s.order = append(s.order, t)
	return true
}

// Has reports whether a type with key is present.
func (s *TypeSet) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Len returns the number of types.
func (s *TypeSet) Len() int { return len(s.order) }

// Types returns the types in insertion order.
func (s *TypeSet) Types() []Type {
	return append([]Type(nil), s.order...)
}
