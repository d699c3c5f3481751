package chunk

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/opmodel/refgraph/internal/core"
)

// IDStrategy selects how chunk item ids are rendered.
type IDStrategy string

const (
	// IDsString uses the module ident as its id.
	IDsString IDStrategy = "string"

	// IDsNumeric uses a hash of the module ident as its id.
	IDsNumeric IDStrategy = "numeric"
)

// maxSafeInteger keeps numeric ids exact in JavaScript.
const maxSafeInteger = 1<<53 - 1

// Options configures a chunking context.
type Options struct {
	// Root is the output root chunk paths are relative to.
	Root core.FileSystemPath

	// Dir is the chunk directory below Root.
	Dir string

	// IDs selects the chunk item id strategy.
	IDs IDStrategy
}

// Context implements core.EntryChunkingContext.
type Context struct {
	opts Options

	mu     sync.Mutex
	groups map[string][]core.Chunk
}

// New creates a chunking context.
func New(opts Options) *Context {
	if opts.IDs == "" {
		opts.IDs = IDsString
	}
	return &Context{opts: opts, groups: make(map[string][]core.Chunk)}
}

// OutputRoot implements core.ChunkingContext.
func (c *Context) OutputRoot() core.FileSystemPath { return c.opts.Root }

// RootChunk implements core.ChunkingContext.
func (c *Context) RootChunk(_ context.Context, m core.ChunkableModule) (core.Chunk, error) {
	return rootChunk{module: m}, nil
}

// ChunkGroup implements core.ChunkingContext. Groups are computed once per
// root module.
func (c *Context) ChunkGroup(ctx context.Context, root core.Chunk) ([]core.Chunk, error) {
	r, ok := root.(rootChunk)
	if !ok {
		return nil, fmt.Errorf("chunk %s was not created by this chunking context", root.Ident())
	}
	return c.group(ctx, r.module.Ident(), nil, r.module)
}

// EvaluatedChunkGroup implements core.EntryChunkingContext.
func (c *Context) EvaluatedChunkGroup(ctx context.Context, m core.ChunkableModule, runtimeEntries []core.Node) ([]core.Chunk, error) {
	return c.group(ctx, m.Ident().WithModifier("evaluated"), runtimeEntries, m)
}

// EntryChunk implements core.EntryChunkingContext. The entry chunk holds every
// script item; stylesheets are not evaluated on the server.
func (c *Context) EntryChunk(ctx context.Context, p string, m core.ChunkableModule, runtimeEntries []core.Node) (core.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	js, _ := split(collect(append(append([]core.Node(nil), runtimeEntries...), m.Node)))
	return &Chunk{path: p, ident: m.Ident().WithModifier("entry"), kind: KindJS, items: js}, nil
}

// ChunkItemID implements core.ChunkingContext.
func (c *Context) ChunkItemID(_ context.Context, n core.Node) (core.ModuleID, error) {
	ident := n.Ident().String()
	if c.opts.IDs == IDsNumeric {
		return core.NumberID(xxhash.Sum64String(ident) & maxSafeInteger), nil
	}
	return core.StringID(ident), nil
}

func (c *Context) group(ctx context.Context, id core.Ident, runtimeEntries []core.Node, m core.ChunkableModule) ([]core.Chunk, error) {
	key := id.Key()

	c.mu.Lock()
	cached, ok := c.groups[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	js, css := split(collect(append(append([]core.Node(nil), runtimeEntries...), m.Node)))

	var group []core.Chunk
	if len(js) > 0 {
		group = append(group, c.chunk(id, KindJS, js))
	}
	if len(css) > 0 {
		group = append(group, c.chunk(id, KindCSS, css))
	}

	c.mu.Lock()
	if existing, ok := c.groups[key]; ok {
		group = existing
	} else {
		c.groups[key] = group
	}
	c.mu.Unlock()
	return group, nil
}

func (c *Context) chunk(id core.Ident, kind Kind, items []core.Node) *Chunk {
	h := xxhash.New()
	for _, item := range items {
		_, _ = h.WriteString(item.Ident().Key())
		_, _ = h.WriteString("\x00")
		if content, err := itemContent(item); err == nil {
			_, _ = h.Write(content)
		}
	}
	name := fmt.Sprintf("%s-%08x%s", chunkBase(id.Path), uint32(h.Sum64()), kind.Ext())
	p := c.opts.Root.Join(c.opts.Dir, name)
	return &Chunk{path: string(p), ident: id.WithModifier(kind.String()), kind: kind, items: items}
}

// chunkBase flattens a module path into a file name.
func chunkBase(p string) string {
	p = strings.TrimPrefix(path.Clean(p), "./")
	return strings.NewReplacer("/", "_", ".", "_", "[", "", "]", "").Replace(p)
}

// collect walks the graph from roots in depth-first pre-order and returns the
// chunkable nodes reachable over parallel edges. Marker nodes are not
// chunkable and end the walk.
func collect(roots []core.Node) []core.Node {
	var items []core.Node
	seen := make(map[string]bool)

	var visit func(n core.Node)
	visit = func(n core.Node) {
		key := n.Ident().Key()
		if seen[key] {
			return
		}
		seen[key] = true
		if _, err := core.AsChunkable(n); err != nil {
			return
		}
		items = append(items, n)
		for _, ref := range n.References() {
			if ref.Chunking == core.ChunkParallel || ref.Chunking == core.ChunkIsolatedParallel {
				visit(ref.Target)
			}
		}
	}

	for _, r := range roots {
		visit(r)
	}
	return items
}

func split(items []core.Node) (js, css []core.Node) {
	for _, item := range items {
		if _, err := core.AsCss(item); err == nil {
			css = append(css, item)
			continue
		}
		if _, err := core.AsEcmascript(item); err == nil {
			js = append(js, item)
		}
	}
	return js, css
}
