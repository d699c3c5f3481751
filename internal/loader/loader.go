// Package loader is the reference core.Processor. It compiles project sources
// with esbuild, resolves their imports under the compiling context and
// applies the boundary transitions of the context's registry.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/opmodel/refgraph/internal/core"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/output"
	"github.com/opmodel/refgraph/internal/transition"
)

// ExternalsPrefix prefixes the ident path of modules left to the runtime.
const ExternalsPrefix = "[externals]/"

// Options configures a Loader.
type Options struct {
	// Root is the project root. Source paths are relative to it.
	Root string
}

// Loader implements core.Processor.
type Loader struct {
	root string

	mu         sync.Mutex
	cache      map[string]*entry
	boundaries map[string]bool
}

// entry is one cached compilation. ready is closed once node or err is set;
// references may still be linking at that point, which lets import cycles
// resolve to the module under construction.
type entry struct {
	ready chan struct{}
	node  core.Node
	err   error
}

// New creates a Loader for the project at opts.Root.
func New(opts Options) (*Loader, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if !isDir(root) {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("project root %s is not a directory", root), root, "Pass the project directory to build")
	}
	return &Loader{
		root:       root,
		cache:      make(map[string]*entry),
		boundaries: make(map[string]bool),
	}, nil
}

// Root returns the absolute project root.
func (l *Loader) Root() string { return l.root }

// Process implements core.Processor.
//
// Processing follows these steps:
//  1. A context carrying a transition is dispatched to that transition with
//     the transition stripped.
//  2. Compilations are cached by (module ident, context). Internal kinds
//     also key on their inner assets. Concurrent callers of the same key
//     share one compilation.
//  3. The source is read from disk when it has no content, then compiled
//     and analyzed by esbuild.
//  4. The module is published, then its imports are resolved and processed
//     by the boundary rules of the context, and the module is linked.
func (l *Loader) Process(ctx context.Context, src core.Source, c *core.Context, kind core.ReferenceKind) (core.Node, error) {
	if name := c.Transition(); name != "" {
		t, ok := c.Transitions().Get(name)
		if !ok {
			return nil, fmt.Errorf("context %s: unknown transition %q", c, name)
		}
		return t.Process(ctx, l, src, c.WithoutTransition(), kind)
	}

	ident := c.ModuleIdent(src.Ident)
	key := ident.Key() + "|" + c.String()
	if len(kind.InnerAssets) > 0 {
		key += "|" + kind.Key()
	}

	l.mu.Lock()
	if e, ok := l.cache[key]; ok {
		l.mu.Unlock()
		select {
		case <-e.ready:
			return e.node, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &entry{ready: make(chan struct{})}
	l.cache[key] = e
	l.mu.Unlock()

	m, a, err := l.compile(src, ident, c, kind)
	if err != nil {
		e.err = err
		close(e.ready)
		return nil, err
	}
	e.node = m
	close(e.ready)

	refs, err := l.references(ctx, src, c, kind, a)
	if err != nil {
		return nil, err
	}
	m.Link(refs)

	output.Debug("processed module", "module", ident, "references", len(refs))
	return m, nil
}

func (l *Loader) compile(src core.Source, ident core.Ident, c *core.Context, kind core.ReferenceKind) (*core.Module, *analysis, error) {
	if src.Content == nil {
		data, err := l.read(src.Ident.Path)
		if err != nil {
			return nil, nil, err
		}
		src.Content = data
	}
	a, err := analyze(l.root, src, c, kind.InnerAssets)
	if err != nil {
		return nil, nil, err
	}
	return core.NewModule(ident, a.code, a.caps), a, nil
}

func (l *Loader) read(rel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("source %s does not exist", rel), rel, "Check the entry paths in the configuration")
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	return data, nil
}

// references processes the imports of a compiled source.
func (l *Loader) references(ctx context.Context, src core.Source, c *core.Context, kind core.ReferenceKind, a *analysis) ([]core.Reference, error) {
	var refs []core.Reference
	for _, imp := range a.imports {
		if n, ok := kind.InnerAssets[imp.request]; ok {
			refs = append(refs, core.Reference{Target: n, Description: imp.request, Chunking: core.ChunkParallel})
			continue
		}

		rel, ok := l.relative(imp.resolved)
		if !ok {
			if isRelativeRequest(imp.request) {
				return nil, oerrors.NewNotFoundError(
					fmt.Sprintf("cannot resolve %q", imp.request), src.Ident.Path, "")
			}
			refs = append(refs, core.Reference{
				Target:      l.external(imp.request),
				Description: imp.request,
				Chunking:    core.ChunkNone,
			})
			continue
		}

		r, err := l.reference(ctx, c, imp, rel)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Ident.Path, err)
		}
		refs = append(refs, r...)
	}
	return refs, nil
}

// reference applies the boundary rules to one resolved import.
//
// In server component contexts a stylesheet becomes a css client reference, a
// module starting with a "use client" directive becomes a client reference,
// and a dynamic import adds a lazy-load marker next to its async edge. Server
// rendering contexts mark dynamic imports too.
func (l *Loader) reference(ctx context.Context, c *core.Context, imp importRecord, rel string) ([]core.Reference, error) {
	target := core.NewSource(rel, nil)
	refKind := core.ReferenceKind{Type: imp.kind}

	process := func(tc *core.Context, chunking core.ChunkingType) (core.Reference, error) {
		n, err := l.Process(ctx, target, tc, refKind)
		if err != nil {
			return core.Reference{}, err
		}
		return core.Reference{Target: n, Description: imp.request, Chunking: chunking}, nil
	}
	has := func(name string) bool {
		_, ok := c.Transitions().Get(name)
		return ok
	}

	server := c.Target().IsServer()

	if server && path.Ext(rel) == ".css" && has(transition.CssClientReference) {
		r, err := process(c.WithTransition(transition.CssClientReference), core.ChunkNone)
		return []core.Reference{r}, err
	}

	if imp.kind == core.RefDynamicImport {
		async, err := process(c, core.ChunkAsync)
		if err != nil {
			return nil, err
		}
		refs := []core.Reference{async}
		if (server || c.Target() == core.TargetServerRender) && has(transition.Dynamic) {
			marker, err := process(c.WithTransition(transition.Dynamic), core.ChunkNone)
			if err != nil {
				return nil, err
			}
			refs = append(refs, marker)
		}
		return refs, nil
	}

	if server && has(transition.ClientReference) {
		boundary, err := l.isClientBoundary(rel)
		if err != nil {
			return nil, err
		}
		if boundary {
			r, err := process(c.WithTransition(transition.ClientReference), core.ChunkParallel)
			return []core.Reference{r}, err
		}
	}

	r, err := process(c, core.ChunkParallel)
	return []core.Reference{r}, err
}

// isClientBoundary reports whether the source at rel starts with a
// "use client" directive.
func (l *Loader) isClientBoundary(rel string) (bool, error) {
	l.mu.Lock()
	v, ok := l.boundaries[rel]
	l.mu.Unlock()
	if ok {
		return v, nil
	}

	loader, ok := esbuildLoader(rel)
	if !ok || loader == api.LoaderCSS || loader == api.LoaderJSON {
		return false, nil
	}
	data, err := l.read(rel)
	if err != nil {
		return false, err
	}
	result := api.Transform(string(data), api.TransformOptions{
		Loader:     loader,
		Sourcefile: rel,
		JSX:        api.JSXPreserve,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return false, messageError(rel, result.Errors)
	}
	v = hasUseClient(result.Code)

	l.mu.Lock()
	l.boundaries[rel] = v
	l.mu.Unlock()
	return v, nil
}

// relative returns the project-relative path of a resolution inside the root.
func (l *Loader) relative(r resolution) (string, bool) {
	if r.path == "" || r.external || !filepath.IsAbs(r.path) {
		return "", false
	}
	rel, err := filepath.Rel(l.root, r.path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// external returns the shared node of a request left to the runtime. It has
// no capabilities, so chunking never includes it.
func (l *Loader) external(request string) core.Node {
	key := ExternalsPrefix + request

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[key]; ok {
		return e.node
	}
	m := core.NewModule(core.NewIdent(key), nil, core.Capabilities{})
	m.Link(nil)
	e := &entry{ready: make(chan struct{}), node: m}
	close(e.ready)
	l.cache[key] = e
	return m
}

func isRelativeRequest(request string) bool {
	return strings.HasPrefix(request, "./") || strings.HasPrefix(request, "../") || strings.HasPrefix(request, "/")
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
