package core

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// ModuleID is the runtime id of a chunk item: either a string or a number.
type ModuleID struct {
	str     string
	num     uint64
	numeric bool
}

// StringID returns a string module id.
func StringID(s string) ModuleID { return ModuleID{str: s} }

// NumberID returns a numeric module id.
func NumberID(n uint64) ModuleID { return ModuleID{num: n, numeric: true} }

// IsNumber reports whether the id is numeric.
func (id ModuleID) IsNumber() bool { return id.numeric }

// String renders the id. It is also the JSON object key used for the id.
func (id ModuleID) String() string {
	if id.numeric {
		return strconv.FormatUint(id.num, 10)
	}
	return id.str
}

// MarshalJSON encodes numeric ids as JSON numbers and others as strings.
func (id ModuleID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(strconv.FormatUint(id.num, 10)), nil
	}
	return json.Marshal(id.str)
}

// UnmarshalJSON accepts a JSON string or number.
func (id *ModuleID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("module id %s: %w", data, err)
	}
	*id = NumberID(n)
	return nil
}

// FileSystemPath is a forward-slash output location.
type FileSystemPath string

// Join appends path elements.
func (p FileSystemPath) Join(elem ...string) FileSystemPath {
	return FileSystemPath(path.Join(append([]string{string(p)}, elem...)...))
}

// RelativePath returns target relative to p. It reports false when target is
// not inside p.
func (p FileSystemPath) RelativePath(target string) (string, bool) {
	root := path.Clean(string(p))
	target = path.Clean(target)
	if root == "." {
		if strings.HasPrefix(target, "../") || target == ".." || path.IsAbs(target) {
			return "", false
		}
		return target, true
	}
	if !strings.HasPrefix(target, root+"/") {
		return "", false
	}
	return strings.TrimPrefix(target, root+"/"), true
}

// Chunk is a physical output unit.
type Chunk interface {
	// Path is the output location of the chunk.
	Path() string

	// Ident identifies the chunk for deduplication.
	Ident() Ident
}

// ChunkingContext turns modules into chunks for one output root.
type ChunkingContext interface {
	// OutputRoot is the directory chunk paths are made relative to.
	OutputRoot() FileSystemPath

	// RootChunk returns the chunk rooted at m.
	RootChunk(ctx context.Context, m ChunkableModule) (Chunk, error)

	// ChunkGroup returns every chunk needed to load root, in load order.
	ChunkGroup(ctx context.Context, root Chunk) ([]Chunk, error)

	// ChunkItemID returns the runtime id of n's chunk item.
	ChunkItemID(ctx context.Context, n Node) (ModuleID, error)
}

// EntryChunkingContext additionally produces evaluated entry chunks.
type EntryChunkingContext interface {
	ChunkingContext

	// EntryChunk returns a single chunk at path that evaluates the runtime
	// entries and then m.
	EntryChunk(ctx context.Context, path string, m ChunkableModule, runtimeEntries []Node) (Chunk, error)

	// EvaluatedChunkGroup returns the chunk group that evaluates the runtime
	// entries and then m.
	EvaluatedChunkGroup(ctx context.Context, m ChunkableModule, runtimeEntries []Node) ([]Chunk, error)
}
