package build

import (
	"context"
	"fmt"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/marker"
)

// ResolveApp computes the server entry chunk of every server component route
// in parallel. Chunks are placed at "<route>.js" below the server root.
func (r *Resolver) ResolveApp(ctx context.Context, routes []*marker.ServerComponent) ([]core.Chunk, error) {
	return execute(ctx, r.Executor, "app", routes, func(ctx context.Context, sc *marker.ServerComponent) (core.Chunk, error) {
		inner, err := core.AsChunkable(sc.Inner().Node)
		if err != nil {
			return nil, err
		}
		p := string(r.Server.OutputRoot().Join(sc.Inner().Ident().WithoutExt() + ".js"))
		c, err := r.Server.EntryChunk(ctx, p, inner, nil)
		if err != nil {
			return nil, fmt.Errorf("server entry of %s: %w", sc.ServerPath(), err)
		}
		return c, nil
	})
}
