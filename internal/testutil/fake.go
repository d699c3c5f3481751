package testutil

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/opmodel/refgraph/internal/core"
)

// Call records one Processor.Process invocation.
type Call struct {
	Path    string
	Context string
	Kind    core.ReferenceType
}

// FakeProcessor compiles sources without parsing them. Export surfaces and
// static imports are scripted by source path. It dispatches contexts that
// carry a transition the way a real processor must.
type FakeProcessor struct {
	// Exports scripts the export surface per source path. Unlisted scripts
	// export only "default"; .css sources are stylesheets.
	Exports map[string]core.ExportKind

	// Imports scripts static imports per source path. Imported sources are
	// compiled under the importing context.
	Imports map[string][]string

	// Transitions routes imports of a source path through the named
	// transition of the importing context.
	Transitions map[string]string

	// Errors fails processing of a source path under a context name,
	// keyed "path|context".
	Errors map[string]error

	mu    sync.Mutex
	calls []Call
	cache map[string]*core.Module
}

// Calls returns the recorded invocations in order.
func (f *FakeProcessor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Process implements core.Processor.
func (f *FakeProcessor) Process(ctx context.Context, src core.Source, c *core.Context, kind core.ReferenceKind) (core.Node, error) {
	if name := c.Transition(); name != "" {
		t, ok := c.Transitions().Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown transition %q", name)
		}
		return t.Process(ctx, f, src, c.WithoutTransition(), kind)
	}

	ident := c.ModuleIdent(src.Ident)
	key := ident.Key() + "|" + kind.Key()

	f.mu.Lock()
	f.calls = append(f.calls, Call{Path: src.Ident.Path, Context: c.Name(), Kind: kind.Type})
	if err := f.Errors[src.Ident.Path+"|"+c.Name()]; err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if m, ok := f.cache[key]; ok {
		f.mu.Unlock()
		return m, nil
	}
	m := core.NewModule(ident, src.Content, f.capabilities(src.Ident.Path))
	if f.cache == nil {
		f.cache = make(map[string]*core.Module)
	}
	f.cache[key] = m
	imports := f.Imports[src.Ident.Path]
	f.mu.Unlock()

	var refs []core.Reference
	names := make([]string, 0, len(kind.InnerAssets))
	for name := range kind.InnerAssets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		refs = append(refs, core.Reference{Target: kind.InnerAssets[name], Description: name})
	}
	for _, imp := range imports {
		ic := c
		if name, ok := f.Transitions[imp]; ok {
			ic = c.WithTransition(name)
		}
		n, err := f.Process(ctx, core.NewSource(imp, nil), ic, core.ReferenceKind{Type: core.RefImport})
		if err != nil {
			return nil, err
		}
		refs = append(refs, core.Reference{Target: n, Description: imp})
	}
	m.Link(refs)
	return m, nil
}

func (f *FakeProcessor) capabilities(p string) core.Capabilities {
	if path.Ext(p) == ".css" {
		return core.CssCapabilities()
	}
	if exports, ok := f.Exports[p]; ok {
		return core.EcmascriptCapabilities(exports)
	}
	return core.EcmascriptCapabilities(core.EsmExports([]string{"default"}, false))
}

// FakeChunk is a chunk with a fixed path.
type FakeChunk struct {
	ChunkPath  string
	ChunkIdent core.Ident
}

// Path implements core.Chunk.
func (c FakeChunk) Path() string { return c.ChunkPath }

// Ident implements core.Chunk.
func (c FakeChunk) Ident() core.Ident { return c.ChunkIdent }

// FakeChunking is a scripted core.EntryChunkingContext. Chunk groups and ids
// are keyed by module ident string.
type FakeChunking struct {
	Root core.FileSystemPath

	// Groups lists chunk paths per root module ident.
	Groups map[string][]string

	// IDs sets the chunk item id per module ident. Unlisted modules use
	// their ident string.
	IDs map[string]core.ModuleID

	// Errors fails chunk group computation per root module ident.
	Errors map[string]error

	mu         sync.Mutex
	groupCalls int
}

// GroupCalls returns how many chunk groups were computed.
func (f *FakeChunking) GroupCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupCalls
}

// OutputRoot implements core.ChunkingContext.
func (f *FakeChunking) OutputRoot() core.FileSystemPath { return f.Root }

// RootChunk implements core.ChunkingContext.
func (f *FakeChunking) RootChunk(_ context.Context, m core.ChunkableModule) (core.Chunk, error) {
	return FakeChunk{ChunkIdent: m.Ident()}, nil
}

// ChunkGroup implements core.ChunkingContext.
func (f *FakeChunking) ChunkGroup(_ context.Context, root core.Chunk) ([]core.Chunk, error) {
	f.mu.Lock()
	f.groupCalls++
	f.mu.Unlock()

	key := root.Ident().String()
	if err := f.Errors[key]; err != nil {
		return nil, err
	}
	return f.chunks(key), nil
}

// ChunkItemID implements core.ChunkingContext.
func (f *FakeChunking) ChunkItemID(_ context.Context, n core.Node) (core.ModuleID, error) {
	if id, ok := f.IDs[n.Ident().String()]; ok {
		return id, nil
	}
	return core.StringID(n.Ident().String()), nil
}

// EntryChunk implements core.EntryChunkingContext.
func (f *FakeChunking) EntryChunk(_ context.Context, p string, m core.ChunkableModule, _ []core.Node) (core.Chunk, error) {
	if err := f.Errors[m.Ident().String()]; err != nil {
		return nil, err
	}
	return FakeChunk{ChunkPath: p, ChunkIdent: m.Ident()}, nil
}

// EvaluatedChunkGroup implements core.EntryChunkingContext.
func (f *FakeChunking) EvaluatedChunkGroup(ctx context.Context, m core.ChunkableModule, _ []core.Node) ([]core.Chunk, error) {
	return f.ChunkGroup(ctx, FakeChunk{ChunkIdent: m.Ident()})
}

func (f *FakeChunking) chunks(key string) []core.Chunk {
	paths := f.Groups[key]
	out := make([]core.Chunk, 0, len(paths))
	for _, p := range paths {
		out = append(out, FakeChunk{ChunkPath: p, ChunkIdent: core.NewIdent(p)})
	}
	return out
}
