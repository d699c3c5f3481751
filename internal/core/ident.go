package core

import (
	"path"
	"strconv"
	"strings"
)

// Ident identifies a node of the module graph.
//
// Two nodes with equal idents are the same logical entity for caching and
// deduplication. An Ident is a pure value: it is derived only from its path and
// the ordered modifiers appended to it, never from process state.
type Ident struct {
	// Path is the forward-slash, project-relative path of the source the node
	// was produced from. Virtual sources use a path below their owner
	// (e.g. "app/button.tsx/proxy.ts").
	Path string

	// Modifiers are appended in order by contexts, transitions and wrappers.
	Modifiers []string
}

// NewIdent returns an Ident for a path without modifiers.
func NewIdent(p string) Ident {
	return Ident{Path: p}
}

// WithModifier returns a copy of the ident with modifier appended.
// The receiver is never mutated.
func (i Ident) WithModifier(modifier string) Ident {
	mods := make([]string, len(i.Modifiers), len(i.Modifiers)+1)
	copy(mods, i.Modifiers)
	return Ident{Path: i.Path, Modifiers: append(mods, modifier)}
}

// HasModifier reports whether modifier was applied to the ident.
func (i Ident) HasModifier(modifier string) bool {
	for _, m := range i.Modifiers {
		if m == modifier {
			return true
		}
	}
	return false
}

// Equal reports whether both idents address the same entity.
func (i Ident) Equal(o Ident) bool {
	if i.Path != o.Path || len(i.Modifiers) != len(o.Modifiers) {
		return false
	}
	for n := range i.Modifiers {
		if i.Modifiers[n] != o.Modifiers[n] {
			return false
		}
	}
	return true
}

// String renders the ident as "path (modifier) (modifier)" for display.
func (i Ident) String() string {
	if len(i.Modifiers) == 0 {
		return i.Path
	}
	var b strings.Builder
	b.WriteString(i.Path)
	for _, m := range i.Modifiers {
		b.WriteString(" (")
		b.WriteString(m)
		b.WriteString(")")
	}
	return b.String()
}

// Key returns a comparable key for the ident. Path and modifiers are quoted,
// so idents that render alike in String still get distinct keys.
func (i Ident) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Quote(i.Path))
	for _, m := range i.Modifiers {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(m))
	}
	return b.String()
}

// Ext returns the extension of the ident path, without the leading dot.
func (i Ident) Ext() string {
	return strings.TrimPrefix(path.Ext(i.Path), ".")
}

// WithoutExt returns the ident path with its extension removed.
func (i Ident) WithoutExt() string {
	return strings.TrimSuffix(i.Path, path.Ext(i.Path))
}
