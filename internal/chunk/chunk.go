// Package chunk is the reference chunking context: it walks the module graph
// from a root module and splits the reachable chunk items into one script and
// one stylesheet chunk with content-hashed paths.
package chunk

import (
	"bytes"
	"fmt"

	"github.com/opmodel/refgraph/internal/core"
)

// Kind is the output type of a chunk.
type Kind int

const (
	// KindJS is a script chunk.
	KindJS Kind = iota

	// KindCSS is a stylesheet chunk.
	KindCSS
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindCSS {
		return "css"
	}
	return "js"
}

// Ext returns the file extension of the kind.
func (k Kind) Ext() string {
	if k == KindCSS {
		return ".css"
	}
	return ".js"
}

// Chunk is an output chunk.
type Chunk struct {
	path  string
	ident core.Ident
	kind  Kind
	items []core.Node
}

// Path implements core.Chunk.
func (c *Chunk) Path() string { return c.path }

// Ident implements core.Chunk.
func (c *Chunk) Ident() core.Ident { return c.ident }

// Kind returns the output type of the chunk.
func (c *Chunk) Kind() Kind { return c.kind }

// Items returns the chunk items in evaluation order.
func (c *Chunk) Items() []core.Node { return c.items }

// Content renders the chunk: each item's compiled source under a comment
// naming its ident.
func (c *Chunk) Content() ([]byte, error) {
	var buf bytes.Buffer
	for _, item := range c.items {
		content, err := itemContent(item)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.path, err)
		}
		fmt.Fprintf(&buf, "/* %s */\n", item.Ident())
		buf.Write(content)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

func itemContent(n core.Node) ([]byte, error) {
	if d, ok := n.(core.Delegating); ok {
		return d.Delegate().Content(), nil
	}
	return core.Content(n)
}

// rootChunk is the not yet materialized chunk rooted at one module.
type rootChunk struct {
	module core.ChunkableModule
}

func (r rootChunk) Path() string { return "" }

func (r rootChunk) Ident() core.Ident { return r.module.Ident() }
