package transition

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opmodel/refgraph/internal/core"
)

//go:embed templates/*.tsx
var templates embed.FS

// Inner asset names bound in the server-to-client entry templates.
const (
	innerClientModule = "CLIENT_MODULE"
	innerClientChunks = "CLIENT_CHUNKS"
)

// ServerToClientTransition compiles a client component reached from server
// code into a runtime entry. The entry imports the client chunk list and, when
// SSR is enabled, the server-rendering compiled module.
type ServerToClientTransition struct {
	SSR bool
}

// NewServerToClientTransition creates the transition.
func NewServerToClientTransition(ssr bool) *ServerToClientTransition {
	return &ServerToClientTransition{SSR: ssr}
}

// Name implements core.Transition.
func (t *ServerToClientTransition) Name() string { return "server-to-client" }

// Process implements core.Transition.
func (t *ServerToClientTransition) Process(ctx context.Context, p core.Processor, src core.Source, origin *core.Context, kind core.ReferenceKind) (core.Node, error) {
	chunks, err := p.Process(ctx, src, origin.WithTransition(ClientChunks), core.EntryKind())
	if err != nil {
		return nil, err
	}

	template := "server-to-client.tsx"
	inner := map[string]core.Node{innerClientChunks: chunks}
	if t.SSR {
		template = "server-to-client-ssr.tsx"
		clientModule, err := p.Process(ctx, src, origin.WithTransition(SSRClientModule), core.EntryKind())
		if err != nil {
			return nil, err
		}
		inner[innerClientModule] = clientModule
	}

	content, err := templates.ReadFile("templates/" + template)
	if err != nil {
		return nil, fmt.Errorf("reading entry template %s: %w", template, err)
	}

	entry := core.NewSource(strings.TrimSuffix(src.Ident.Path, "/")+"/"+template, content)
	return p.Process(ctx, entry, origin, core.InternalKind(inner))
}

// ClientChunksTransition compiles a module for the browser and returns a
// module whose default export is the module's client chunk list.
type ClientChunksTransition struct {
	client   core.Transition
	chunking core.ChunkingContext
}

// ClientChunksModifier is appended to the client module ident.
const ClientChunksModifier = "client chunks"

// NewClientChunksTransition creates the transition.
func NewClientChunksTransition(client core.Transition, chunking core.ChunkingContext) *ClientChunksTransition {
	return &ClientChunksTransition{client: client, chunking: chunking}
}

// Name implements core.Transition.
func (t *ClientChunksTransition) Name() string { return ClientChunks }

// Process implements core.Transition.
func (t *ClientChunksTransition) Process(ctx context.Context, p core.Processor, src core.Source, origin *core.Context, kind core.ReferenceKind) (core.Node, error) {
	n, err := t.client.Process(ctx, p, src, origin, kind)
	if err != nil {
		return nil, err
	}
	chunkable, err := core.AsChunkable(n)
	if err != nil {
		return nil, withContext(err, t.client.Name())
	}

	root, err := t.chunking.RootChunk(ctx, chunkable)
	if err != nil {
		return nil, err
	}
	group, err := t.chunking.ChunkGroup(ctx, root)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(group))
	for _, c := range group {
		if rel, ok := t.chunking.OutputRoot().RelativePath(c.Path()); ok {
			paths = append(paths, rel)
		}
	}

	code, err := chunkListCode(paths)
	if err != nil {
		return nil, err
	}

	m := core.NewModule(n.Ident().WithModifier(ClientChunksModifier), code,
		core.EcmascriptCapabilities(core.EsmExports([]string{"default"}, false)))
	m.Link([]core.Reference{{Target: n, Description: "client chunks", Chunking: core.ChunkNone}})
	return m, nil
}

func chunkListCode(paths []string) ([]byte, error) {
	data, err := json.Marshal(paths)
	if err != nil {
		return nil, fmt.Errorf("encoding chunk list: %w", err)
	}
	return []byte(fmt.Sprintf("export default %s;\n", data)), nil
}
