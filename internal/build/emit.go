package build

import (
	"fmt"
	"path/filepath"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/output"
)

// contentChunk is a chunk that can render its file content.
type contentChunk interface {
	core.Chunk
	Content() ([]byte, error)
}

// WriteChunks writes every renderable chunk below projectRoot and returns the
// number written. Chunk paths are relative to projectRoot.
func WriteChunks(projectRoot string, chunks []core.Chunk) (int, error) {
	written := 0
	for _, c := range chunks {
		cc, ok := c.(contentChunk)
		if !ok || c.Path() == "" {
			continue
		}
		data, err := cc.Content()
		if err != nil {
			return written, fmt.Errorf("rendering chunk %s: %w", c.Path(), err)
		}
		if err := output.WriteFile(projectRoot, c.Path(), data); err != nil {
			return written, err
		}
		written++
	}
	output.Debug("wrote chunks", "count", written)
	return written, nil
}

// WriteManifests writes the manifests of r as JSON below the dist directory.
func WriteManifests(projectRoot, distDir string, r *Result) ([]string, error) {
	return output.WriteDir(filepath.Join(projectRoot, filepath.FromSlash(distDir)), r.Manifests.Documents())
}
