package build

import (
	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/manifest"
)

// Accumulator collects the manifests and output chunks of a build. It is
// owned by the sequential fold and is not safe for concurrent use.
type Accumulator struct {
	Manifests *manifest.Set

	chunks []core.Chunk
	seen   map[string]bool
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		Manifests: manifest.NewSet(),
		seen:      make(map[string]bool),
	}
}

// AddChunks adds chunks to the output set. Chunks already present by path are
// skipped.
func (a *Accumulator) AddChunks(chunks []core.Chunk) {
	for _, c := range chunks {
		key := c.Path()
		if key == "" {
			key = c.Ident().Key()
		}
		if a.seen[key] {
			continue
		}
		a.seen[key] = true
		a.chunks = append(a.chunks, c)
	}
}

// Chunks returns the output set in insertion order.
func (a *Accumulator) Chunks() []core.Chunk {
	return append([]core.Chunk(nil), a.chunks...)
}

// relativePaths returns the paths of chunks below root, in order. Chunks
// outside root are dropped.
func relativePaths(root core.FileSystemPath, chunks []core.Chunk) []string {
	paths := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if rel, ok := root.RelativePath(c.Path()); ok {
			paths = append(paths, rel)
		}
	}
	return paths
}
