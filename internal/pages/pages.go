// Package pages turns filesystem-routed page files into page entries compiled
// for both server rendering and the browser.
package pages

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/output"
)

// Special pages are rendered around every other page and listed first.
var specialPages = []string{"/_app", "/_document", "/_error"}

// Entry is a routed page compiled twice.
type Entry struct {
	// Pathname is the URL path the page is served at ("/", "/about").
	Pathname string

	// SSRModule is the page compiled for server rendering.
	SSRModule core.ChunkableModule

	// ClientModule is the page compiled for the browser.
	ClientModule core.ChunkableModule
}

// Runtime holds the modules evaluated before every page.
type Runtime struct {
	SSR    []core.Node
	Client []core.Node
}

// Pathname derives the route of a page file given its path relative to the
// pages directory. "index" segments map to their parent route.
func Pathname(rel string) string {
	rel = strings.TrimPrefix(path.Clean(rel), "./")
	route := strings.TrimSuffix(rel, path.Ext(rel))
	if route == "index" {
		return "/"
	}
	route = strings.TrimSuffix(route, "/index")
	return "/" + route
}

// ChunkName returns the entry chunk name of a route, without extension.
func ChunkName(pathname string) string {
	if pathname == "/" {
		return "index"
	}
	return strings.TrimPrefix(pathname, "/")
}

// Sort orders entries with the special pages first, in their fixed order,
// followed by the remaining pages by pathname.
func Sort(entries []Entry) {
	rank := func(p string) int {
		for i, s := range specialPages {
			if p == s {
				return i
			}
		}
		return len(specialPages)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := rank(entries[i].Pathname), rank(entries[j].Pathname)
		if ri != rj {
			return ri < rj
		}
		return entries[i].Pathname < entries[j].Pathname
	})
}

// Options configures page compilation.
type Options struct {
	// Dir is the pages directory, relative to the project root.
	Dir string

	// Routes lists page files relative to Dir.
	Routes []string

	// SSR and Client are the compilation contexts of the two forms.
	SSR    *core.Context
	Client *core.Context

	// Concurrency bounds parallel compilation. Zero is unbounded.
	Concurrency int
}

// Compile compiles every configured page for server rendering and the
// browser and returns the entries in Sort order.
func Compile(ctx context.Context, p core.Processor, opts Options) ([]Entry, error) {
	entries := make([]Entry, len(opts.Routes))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, route := range opts.Routes {
		g.Go(func() error {
			src := core.NewSource(path.Join(opts.Dir, route), nil)
			ssr, err := compile(gctx, p, src, opts.SSR)
			if err != nil {
				return err
			}
			client, err := compile(gctx, p, src, opts.Client)
			if err != nil {
				return err
			}
			entries[i] = Entry{Pathname: Pathname(route), SSRModule: ssr, ClientModule: client}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Sort(entries)
	output.Debug("compiled pages", "count", len(entries))
	return entries, nil
}

// CompileRuntime compiles runtime entry files under c.
func CompileRuntime(ctx context.Context, p core.Processor, files []string, c *core.Context) ([]core.Node, error) {
	nodes := make([]core.Node, 0, len(files))
	for _, f := range files {
		m, err := compile(ctx, p, core.NewSource(f, nil), c)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, m.Node)
	}
	return nodes, nil
}

func compile(ctx context.Context, p core.Processor, src core.Source, c *core.Context) (core.ChunkableModule, error) {
	n, err := p.Process(ctx, src, c, core.EntryKind())
	if err != nil {
		return core.ChunkableModule{}, fmt.Errorf("compiling page %s for %s: %w", src.Ident.Path, c.Name(), err)
	}
	m, err := core.AsChunkable(n)
	if err != nil {
		var mismatch *core.CapabilityMismatchError
		if errors.As(err, &mismatch) {
			mismatch.Context = c.Name()
		}
		return core.ChunkableModule{}, err
	}
	return m, nil
}
