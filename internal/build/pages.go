package build

import (
	"context"
	"fmt"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/pages"
)

// PageChunks are the resolved chunks of one page entry.
type PageChunks struct {
	// SSR is the server entry chunk.
	SSR core.Chunk

	// Client is the evaluated client chunk group, in load order.
	Client []core.Chunk
}

// ResolvePages computes the entry chunks of every page in parallel. Results
// are in entry order.
func (r *Resolver) ResolvePages(ctx context.Context, entries []pages.Entry, runtime pages.Runtime) ([]PageChunks, error) {
	return execute(ctx, r.Executor, "pages", entries, func(ctx context.Context, e pages.Entry) (PageChunks, error) {
		p := string(r.Server.OutputRoot().Join("pages", pages.ChunkName(e.Pathname)+".js"))
		ssr, err := r.Server.EntryChunk(ctx, p, e.SSRModule, runtime.SSR)
		if err != nil {
			return PageChunks{}, fmt.Errorf("server entry of %s: %w", e.Pathname, err)
		}
		client, err := r.Client.EvaluatedChunkGroup(ctx, e.ClientModule, runtime.Client)
		if err != nil {
			return PageChunks{}, fmt.Errorf("client entry of %s: %w", e.Pathname, err)
		}
		return PageChunks{SSR: ssr, Client: client}, nil
	})
}

// FoldPages records resolved page chunks in the pages and build manifests.
func (r *Resolver) FoldPages(acc *Accumulator, entries []pages.Entry, resolved []PageChunks) error {
	if len(resolved) != len(entries) {
		return &core.LookupInvariantError{Key: fmt.Sprintf("pages (%d resolved, %d entries)", len(resolved), len(entries))}
	}
	for i, e := range entries {
		res := resolved[i]
		acc.AddChunks([]core.Chunk{res.SSR})
		acc.AddChunks(res.Client)

		if rel, ok := r.Server.OutputRoot().RelativePath(res.SSR.Path()); ok {
			acc.Manifests.Pages[e.Pathname] = rel
		}
		acc.Manifests.Build[e.Pathname] = relativePaths(r.Client.OutputRoot(), res.Client)
	}
	return nil
}

// Pages runs both phases for the page entries.
func (r *Resolver) Pages(ctx context.Context, acc *Accumulator, entries []pages.Entry, runtime pages.Runtime) error {
	resolved, err := r.ResolvePages(ctx, entries, runtime)
	if err != nil {
		return err
	}
	return r.FoldPages(acc, entries, resolved)
}
