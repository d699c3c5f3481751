package build

import (
	"context"
	"path"

	"github.com/opmodel/refgraph/internal/chunk"
	"github.com/opmodel/refgraph/internal/clientref"
	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/marker"
	"github.com/opmodel/refgraph/internal/output"
	"github.com/opmodel/refgraph/internal/pages"
	"github.com/opmodel/refgraph/internal/proxy"
	"github.com/opmodel/refgraph/internal/transition"
)

// Chunk directories below the output roots.
const (
	ClientChunkDir = "static/chunks"
	ServerChunkDir = "chunks"
)

// ChunkingFactory creates the chunking context of an output root.
type ChunkingFactory func(root core.FileSystemPath, dir string, ids chunk.IDStrategy) core.EntryChunkingContext

// DefaultChunking creates chunk.Context values.
func DefaultChunking(root core.FileSystemPath, dir string, ids chunk.IDStrategy) core.EntryChunkingContext {
	return chunk.New(chunk.Options{Root: root, Dir: dir, IDs: ids})
}

// pipeline implements the Pipeline interface.
type pipeline struct {
	processor core.Processor
	chunking  ChunkingFactory
}

// NewPipeline creates a Pipeline compiling sources with p. A nil chunking
// factory uses DefaultChunking.
func NewPipeline(p core.Processor, chunking ChunkingFactory) Pipeline {
	if chunking == nil {
		chunking = DefaultChunking
	}
	return &pipeline{processor: p, chunking: chunking}
}

// contexts are the compilation contexts of one build.
type contexts struct {
	client *core.Context
	ssr    *core.Context
	server *core.Context
}

// Build executes the pipeline.
//
// The build follows these phases:
//  1. Set up contexts, transition registries and chunking contexts
//  2. Compile app route entries as server components
//  3. Compile routed pages and their runtime entries
//  4. Discover client references and lazy-load entries
//  5. Resolve and fold client references, pages, dynamic entries and app routes
func (p *pipeline) Build(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Phase 1: contexts
	dist := core.FileSystemPath(path.Clean(opts.DistDir))
	clientChunking := p.chunking(dist, ClientChunkDir, opts.ModuleIDs)
	serverChunking := p.chunking(dist.Join("server"), ServerChunkDir, opts.ModuleIDs)
	cs := newContexts(opts, clientChunking)

	resolver := &Resolver{
		Client:   clientChunking,
		Server:   serverChunking,
		Executor: NewExecutor(opts.Concurrency),
	}

	output.Debug("build contexts ready",
		"server", cs.server.Name(),
		"target", cs.server.Target(),
		"transitions", cs.server.Transitions().Names())

	// Phase 2: app routes
	routes, err := p.compileApp(ctx, resolver.Executor, cs.server, opts.AppEntries)
	if err != nil {
		return nil, err
	}

	// Phase 3: pages
	entries, err := pages.Compile(ctx, p.processor, pages.Options{
		Dir:         opts.PagesDir,
		Routes:      opts.PageRoutes,
		SSR:         cs.ssr,
		Client:      cs.client,
		Concurrency: opts.Concurrency,
	})
	if err != nil {
		return nil, err
	}
	runtime, err := p.compileRuntime(ctx, cs, opts)
	if err != nil {
		return nil, err
	}

	// Phase 4: discovery
	roots := make([]core.Node, 0, len(routes)+len(entries))
	for _, sc := range routes {
		roots = append(roots, sc)
	}
	for _, e := range entries {
		roots = append(roots, e.SSRModule.Node)
	}
	graph := clientref.Discover(roots)

	// Phase 5: aggregation
	acc := NewAccumulator()
	resolved, err := resolver.ResolveClientReferences(ctx, graph.Types.Types())
	if err != nil {
		return nil, err
	}
	if err := resolver.FoldClientReferences(ctx, acc, graph, resolved); err != nil {
		return nil, err
	}
	if err := resolver.Pages(ctx, acc, entries, runtime); err != nil {
		return nil, err
	}
	if err := resolver.Dynamic(ctx, acc, graph.Dynamic); err != nil {
		return nil, err
	}
	appChunks, err := resolver.ResolveApp(ctx, routes)
	if err != nil {
		return nil, err
	}
	acc.AddChunks(appChunks)

	result := &Result{
		Manifests: acc.Manifests,
		Chunks:    acc.Chunks(),
		Routes:    summarize(resolver, acc, graph, resolved, routes, appChunks, entries),
	}

	output.Debug("build complete",
		"routes", len(result.Routes),
		"chunks", len(result.Chunks),
		"clientReferences", graph.Types.Len())
	return result, nil
}

func newContexts(opts Options, clientChunking core.ChunkingContext) contexts {
	base := core.ClientContext()
	pageTransitions := transition.PageTransitions(base)

	client := base.WithTransitions(pageTransitions)
	ssr := core.SSRContext(core.WithTransitionRegistry(pageTransitions))

	serverTransitions := transition.ServerTransitions(client, ssr, transition.Options{
		SSR:                    opts.SSR,
		LegacyClientComponents: opts.LegacyClientComponents,
		ClientChunking:         clientChunking,
		Proxy:                  proxy.Options{RuntimeModule: opts.ProxyModule},
	})

	var server *core.Context
	if opts.Edge {
		server = core.EdgeContext(core.WithTransitionRegistry(serverTransitions))
	} else {
		server = core.ServerContext(core.WithTransitionRegistry(serverTransitions))
	}
	return contexts{client: client, ssr: ssr, server: server}
}

func (p *pipeline) compileApp(ctx context.Context, e *Executor, server *core.Context, entries []string) ([]*marker.ServerComponent, error) {
	c := server.WithTransition(transition.ServerComponent)
	return execute(ctx, e, "app entries", entries, func(ctx context.Context, entry string) (*marker.ServerComponent, error) {
		n, err := p.processor.Process(ctx, core.NewSource(entry, nil), c, core.EntryKind())
		if err != nil {
			return nil, &EntryError{Entry: entry, Context: server.Name(), Err: err}
		}
		sc, ok := n.(*marker.ServerComponent)
		if !ok {
			return nil, &EntryError{
				Entry:   entry,
				Context: server.Name(),
				Err:     &core.CapabilityMismatchError{Ident: n.Ident(), Capability: core.CapEcmascript, Context: server.Name()},
			}
		}
		return sc, nil
	})
}

func (p *pipeline) compileRuntime(ctx context.Context, cs contexts, opts Options) (pages.Runtime, error) {
	ssr, err := pages.CompileRuntime(ctx, p.processor, opts.ServerRuntime, cs.ssr)
	if err != nil {
		return pages.Runtime{}, err
	}
	client, err := pages.CompileRuntime(ctx, p.processor, opts.ClientRuntime, cs.client)
	if err != nil {
		return pages.Runtime{}, err
	}
	return pages.Runtime{SSR: ssr, Client: client}, nil
}

func summarize(r *Resolver, acc *Accumulator, g *clientref.Graph, resolved map[string]ClientReferenceChunks, routes []*marker.ServerComponent, appChunks []core.Chunk, entries []pages.Entry) []Route {
	crm := acc.Manifests.ClientReferences
	out := make([]Route, 0, len(routes)+len(entries))

	// Distinct client chunks per route over its attributed references.
	clientChunks := make(map[string]map[string]bool)
	for _, ref := range g.References {
		route, ok := ref.Route()
		if !ok {
			continue
		}
		if clientChunks[route] == nil {
			clientChunks[route] = make(map[string]bool)
		}
		for _, c := range resolved[ref.Type.Key()].Client {
			clientChunks[route][c.Path()] = true
		}
	}

	for i, sc := range routes {
		name := sc.Inner().Ident().WithoutExt()
		server, _ := r.Server.OutputRoot().RelativePath(appChunks[i].Path())
		out = append(out, Route{
			Name:         name,
			Kind:         "app",
			ClientChunks: len(clientChunks[name]),
			CSSFiles:     len(crm.EntryCSSFiles[name]),
			ServerChunk:  server,
		})
	}

	for _, e := range entries {
		client := acc.Manifests.Build[e.Pathname]
		css := 0
		for _, p := range client {
			if isStylesheet(p) {
				css++
			}
		}
		out = append(out, Route{
			Name:         e.Pathname,
			Kind:         "page",
			ClientChunks: len(client),
			CSSFiles:     css,
			ServerChunk:  acc.Manifests.Pages[e.Pathname],
		})
	}
	return out
}
