package build

import (
	"context"
	"fmt"
	"path"

	"github.com/opmodel/refgraph/internal/clientref"
	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/manifest"
	"github.com/opmodel/refgraph/internal/output"
)

// Resolver resolves boundaries into chunk groups. Client chunks are placed
// under the Client output root and server chunks under the Server one.
type Resolver struct {
	Client   core.EntryChunkingContext
	Server   core.EntryChunkingContext
	Executor *Executor
}

// ClientReferenceChunks are the resolved chunk groups of one client reference
// type. SSR is empty for stylesheets.
type ClientReferenceChunks struct {
	Client []core.Chunk
	SSR    []core.Chunk
}

// ResolveClientReferences computes the chunk groups of every type in
// parallel. The result is keyed by type key.
func (r *Resolver) ResolveClientReferences(ctx context.Context, types []clientref.Type) (map[string]ClientReferenceChunks, error) {
	results, err := execute(ctx, r.Executor, "client references", types, r.resolveClientReference)
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]ClientReferenceChunks, len(types))
	for i, t := range types {
		resolved[t.Key()] = results[i]
	}
	return resolved, nil
}

func (r *Resolver) resolveClientReference(ctx context.Context, t clientref.Type) (ClientReferenceChunks, error) {
	client, err := chunkGroup(ctx, r.Client, t.ClientModule())
	if err != nil {
		return ClientReferenceChunks{}, fmt.Errorf("client chunks of %s: %w", t.Ident(), err)
	}
	if t.Tag == clientref.TagCss {
		return ClientReferenceChunks{Client: client}, nil
	}
	ssr, err := chunkGroup(ctx, r.Server, t.Ecmascript.SSRModule().Node)
	if err != nil {
		return ClientReferenceChunks{}, fmt.Errorf("ssr chunks of %s: %w", t.Ident(), err)
	}
	return ClientReferenceChunks{Client: client, SSR: ssr}, nil
}

// FoldClientReferences folds resolved chunk groups into acc, once per type in
// set order, then attributes stylesheet chunks to routes in discovery order.
func (r *Resolver) FoldClientReferences(ctx context.Context, acc *Accumulator, g *clientref.Graph, resolved map[string]ClientReferenceChunks) error {
	m := acc.Manifests.ClientReferences

	for _, t := range g.Types.Types() {
		res, ok := resolved[t.Key()]
		if !ok {
			return &core.LookupInvariantError{Key: t.Key()}
		}
		acc.AddChunks(res.Client)
		acc.AddChunks(res.SSR)

		if t.Tag != clientref.TagEcmascript {
			continue
		}
		if err := r.foldEcmascript(ctx, m, t, res); err != nil {
			return err
		}
	}

	for _, ref := range g.References {
		route, ok := ref.Route()
		if !ok {
			continue
		}
		res, ok := resolved[ref.Type.Key()]
		if !ok {
			return &core.LookupInvariantError{Key: ref.Type.Key()}
		}
		for _, p := range relativePaths(r.Client.OutputRoot(), res.Client) {
			if ref.Type.Tag == clientref.TagCss || isStylesheet(p) {
				m.AddEntryCSSFile(route, p)
			}
		}
	}

	output.Debug("folded client references",
		"modules", len(m.ClientModules),
		"routes", len(m.EntryCSSFiles))
	return nil
}

func (r *Resolver) foldEcmascript(ctx context.Context, m *manifest.ClientReferenceManifest, t clientref.Type, res ClientReferenceChunks) error {
	ref := t.Ecmascript

	clientPaths := relativePaths(r.Client.OutputRoot(), res.Client)
	ssrPaths := relativePaths(r.Server.OutputRoot(), res.SSR)

	clientID, err := r.Client.ChunkItemID(ctx, ref.ClientModule().Node)
	if err != nil {
		return fmt.Errorf("client module id of %s: %w", ref.ServerIdent(), err)
	}
	ssrID, err := r.Server.ChunkItemID(ctx, ref.SSRModule().Node)
	if err != nil {
		return fmt.Errorf("ssr module id of %s: %w", ref.ServerIdent(), err)
	}

	serverPath := ref.ServerIdent().Path
	names := append(ref.ClientModule().Exports.NamedExports(), manifest.WholeModule)
	for _, name := range names {
		m.AddClientModule(serverPath, manifest.NewNodeEntry(name, clientID, clientPaths))
		m.AddSSRModule(clientID, manifest.NewNodeEntry(name, ssrID, ssrPaths))
	}
	return nil
}

// ClientReferences runs both phases for the boundaries of g.
func (r *Resolver) ClientReferences(ctx context.Context, acc *Accumulator, g *clientref.Graph) error {
	resolved, err := r.ResolveClientReferences(ctx, g.Types.Types())
	if err != nil {
		return err
	}
	return r.FoldClientReferences(ctx, acc, g, resolved)
}

func chunkGroup(ctx context.Context, c core.ChunkingContext, n core.Node) ([]core.Chunk, error) {
	m, err := core.AsChunkable(n)
	if err != nil {
		return nil, err
	}
	root, err := c.RootChunk(ctx, m)
	if err != nil {
		return nil, err
	}
	return c.ChunkGroup(ctx, root)
}

func isStylesheet(p string) bool {
	return path.Ext(p) == ".css"
}
