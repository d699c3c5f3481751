package build

import (
	"context"
	"fmt"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/marker"
)

// ResolveDynamic computes the client chunk group of every lazy-load entry in
// parallel. Results are in entry order.
func (r *Resolver) ResolveDynamic(ctx context.Context, entries []*marker.DynamicEntry) ([][]core.Chunk, error) {
	return execute(ctx, r.Executor, "dynamic", entries, func(ctx context.Context, d *marker.DynamicEntry) ([]core.Chunk, error) {
		chunks, err := chunkGroup(ctx, r.Client, d.ClientModule().Node)
		if err != nil {
			return nil, fmt.Errorf("chunks of %s: %w", d.Ident(), err)
		}
		return chunks, nil
	})
}

// FoldDynamic records resolved lazy-load chunk groups in the dynamic manifest,
// keyed by client module path.
func (r *Resolver) FoldDynamic(acc *Accumulator, entries []*marker.DynamicEntry, resolved [][]core.Chunk) error {
	if len(resolved) != len(entries) {
		return &core.LookupInvariantError{Key: fmt.Sprintf("dynamic (%d resolved, %d entries)", len(resolved), len(entries))}
	}
	for i, d := range entries {
		acc.AddChunks(resolved[i])
		acc.Manifests.Dynamic[d.ClientModule().Ident().Path] = relativePaths(r.Client.OutputRoot(), resolved[i])
	}
	return nil
}

// Dynamic runs both phases for the lazy-load entries.
func (r *Resolver) Dynamic(ctx context.Context, acc *Accumulator, entries []*marker.DynamicEntry) error {
	resolved, err := r.ResolveDynamic(ctx, entries)
	if err != nil {
		return err
	}
	return r.FoldDynamic(acc, entries, resolved)
}
