package core

import (
	"context"
	"sort"
	"strings"
)

// ReferenceType tags how a source was reached.
type ReferenceType int

const (
	// RefUndefined is a reference of unknown kind.
	RefUndefined ReferenceType = iota

	// RefEntry is a build entry (a route or page file).
	RefEntry

	// RefImport is a static import or require.
	RefImport

	// RefDynamicImport is an import() expression.
	RefDynamicImport

	// RefCSSImport is a stylesheet @import.
	RefCSSImport

	// RefInternal is a generated module whose named requests are bound to
	// already-processed nodes (its inner assets).
	RefInternal
)

// String returns the reference type name.
func (t ReferenceType) String() string {
	switch t {
	case RefEntry:
		return "entry"
	case RefImport:
		return "import"
	case RefDynamicImport:
		return "dynamic-import"
	case RefCSSImport:
		return "css-import"
	case RefInternal:
		return "internal"
	default:
		return "undefined"
	}
}

// ReferenceKind describes how a source is being processed.
type ReferenceKind struct {
	Type ReferenceType

	// InnerAssets binds request names to nodes. Only used with RefInternal.
	InnerAssets map[string]Node
}

// EntryKind returns the reference kind of a build entry.
func EntryKind() ReferenceKind { return ReferenceKind{Type: RefEntry} }

// InternalKind returns an internal reference kind with inner assets.
func InternalKind(inner map[string]Node) ReferenceKind {
	return ReferenceKind{Type: RefInternal, InnerAssets: inner}
}

// Key returns a stable cache key for the kind. Inner assets contribute their
// request names and idents.
func (k ReferenceKind) Key() string {
	if len(k.InnerAssets) == 0 {
		return k.Type.String()
	}
	names := make([]string, 0, len(k.InnerAssets))
	for name := range k.InnerAssets {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(k.Type.String())
	for _, name := range names {
		b.WriteString("|")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(k.InnerAssets[name].Ident().Key())
	}
	return b.String()
}

// Processor compiles a source under a context into a module graph node.
//
// Implementations must be deterministic: equal (source ident, context, kind)
// yield nodes with equal idents. Contexts carrying a transition name must be
// dispatched to that transition with the transition stripped.
type Processor interface {
	Process(ctx context.Context, src Source, c *Context, kind ReferenceKind) (Node, error)
}

// Transition re-processes a source under an alternate context and returns
// the node that replaces it in the origin graph.
type Transition interface {
	// Name identifies the transition in logs and errors.
	Name() string

	// Process runs the transition. origin is the context the source was
	// reached from, with the transition already stripped.
	Process(ctx context.Context, p Processor, src Source, origin *Context, kind ReferenceKind) (Node, error)
}

// Transitions is an immutable registry of transitions by name.
type Transitions struct {
	byName map[string]Transition
}

// NewTransitions creates a registry. The map is copied.
func NewTransitions(byName map[string]Transition) *Transitions {
	return &Transitions{byName: copyMap(byName)}
}

// Get returns the transition registered under name.
func (t *Transitions) Get(name string) (Transition, bool) {
	if t == nil {
		return nil, false
	}
	tr, ok := t.byName[name]
	return tr, ok
}

// Names returns the registered names in sorted order.
func (t *Transitions) Names() []string {
	if t == nil {
		return nil
	}
	return sortedKeys(t.byName)
}

// With returns a copy of the registry with name bound to tr.
func (t *Transitions) With(name string, tr Transition) *Transitions {
	var m map[string]Transition
	if t != nil {
		m = copyMap(t.byName)
	}
	if m == nil {
		m = make(map[string]Transition, 1)
	}
	m[name] = tr
	return &Transitions{byName: m}
}
