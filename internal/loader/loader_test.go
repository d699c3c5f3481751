package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/refgraph/internal/core"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/marker"
	"github.com/opmodel/refgraph/internal/proxy"
	"github.com/opmodel/refgraph/internal/testutil"
	"github.com/opmodel/refgraph/internal/transition"
)

func newLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	l, err := New(Options{Root: testutil.WriteProject(t, files)})
	require.NoError(t, err)
	return l
}

func serverContext() *core.Context {
	client := core.ClientContext()
	ssr := core.SSRContext()
	return core.ServerContext(core.WithTransitionRegistry(
		transition.ServerTransitions(client, ssr, transition.Options{})))
}

func process(t *testing.T, l *Loader, p string, c *core.Context) core.Node {
	t.Helper()
	n, err := l.Process(context.Background(), core.NewSource(p, nil), c, core.EntryKind())
	require.NoError(t, err)
	return n
}

func exportsOf(t *testing.T, n core.Node) core.ExportKind {
	t.Helper()
	m, err := core.AsEcmascript(n)
	require.NoError(t, err)
	return m.Exports
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(Options{Root: "/does/not/exist"})
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}

func TestProcess_EsmExports(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/a.ts": "export const foo: number = 1;\nexport function bar() {}\nexport default 42;\n",
	})

	n := process(t, l, "lib/a.ts", core.ServerContext())

	assert.Equal(t, "lib/a.ts (rsc)", n.Ident().String())
	exports := exportsOf(t, n)
	assert.Equal(t, core.ExportsEsm, exports.Type)
	assert.ElementsMatch(t, []string{"default", "foo", "bar"}, exports.Names)
	assert.False(t, exports.HasStarExport)
}

func TestProcess_CommonJs(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/legacy.js": "module.exports = { a: 1 };\n",
	})

	n := process(t, l, "lib/legacy.js", core.ClientContext())

	assert.Equal(t, core.ExportsCommonJs, exportsOf(t, n).Type)
}

func TestProcess_StarExport(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/index.ts": "export * from \"./b\";\nexport const own = 1;\n",
		"lib/b.ts":     "export const b = 1;\n",
	})

	n := process(t, l, "lib/index.ts", core.ClientContext())

	exports := exportsOf(t, n)
	assert.True(t, exports.HasStarExport)
	assert.Contains(t, exports.Names, "own")
}

func TestProcess_StaticImports(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/a.ts": "import { b } from \"./b\";\nexport const a = b;\n",
		"lib/b.ts": "export const b = 1;\n",
	})

	n := process(t, l, "lib/a.ts", core.ClientContext())

	refs := n.References()
	require.Len(t, refs, 1)
	assert.Equal(t, "./b", refs[0].Description)
	assert.Equal(t, core.ChunkParallel, refs[0].Chunking)
	assert.Equal(t, "lib/b.ts (client)", refs[0].Target.Ident().String())
}

func TestProcess_Cached(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/a.ts": "export const a = 1;\n",
	})

	first := process(t, l, "lib/a.ts", core.ClientContext())
	second := process(t, l, "lib/a.ts", core.ClientContext())
	assert.Same(t, first, second)

	ssr := process(t, l, "lib/a.ts", core.SSRContext())
	assert.NotSame(t, first, ssr)
}

func TestProcess_Cycle(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/a.ts": "import { b } from \"./b\";\nexport const a = () => b;\n",
		"lib/b.ts": "import { a } from \"./a\";\nexport const b = () => a;\n",
	})

	n := process(t, l, "lib/a.ts", core.ClientContext())

	b := n.References()[0].Target
	require.Len(t, b.References(), 1)
	assert.Same(t, n, b.References()[0].Target)
}

func TestProcess_EntryAndImportShareCompilation(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/a.ts": "import { b } from \"./b\";\nexport const a = b;\n",
		"lib/b.ts": "export const b = 1;\n",
	})

	b := process(t, l, "lib/b.ts", core.ClientContext())
	a := process(t, l, "lib/a.ts", core.ClientContext())

	require.Len(t, a.References(), 1)
	assert.Same(t, b, a.References()[0].Target)
}

func TestProcess_DroppedImports(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "unused import",
			files: map[string]string{
				"lib/a.ts": "import { b } from \"./b\";\nexport const a = 1;\n",
			},
		},
		{
			name: "import used only as a type",
			files: map[string]string{
				"lib/a.ts":     "import { Size } from \"./types\";\nexport const a: Size = 1;\n",
				"lib/types.ts": "export type Size = number;\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLoader(t, tt.files)

			n := process(t, l, "lib/a.ts", core.ClientContext())

			assert.Empty(t, n.References())
			assert.Equal(t, []string{"a"}, exportsOf(t, n).Names)
		})
	}
}

func TestProcess_ExternalRequest(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/a.ts": "import React from \"react\";\nexport default React;\n",
	})

	n := process(t, l, "lib/a.ts", core.ClientContext())

	refs := n.References()
	require.Len(t, refs, 1)
	assert.Equal(t, ExternalsPrefix+"react", refs[0].Target.Ident().Path)
	_, err := core.AsChunkable(refs[0].Target)
	assert.Error(t, err)
}

func TestProcess_MissingRelativeImport(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/a.ts": "import { x } from \"./missing\";\nexport default x;\n",
	})

	_, err := l.Process(context.Background(), core.NewSource("lib/a.ts", nil), core.ClientContext(), core.EntryKind())
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}

func TestProcess_MissingSource(t *testing.T) {
	l := newLoader(t, map[string]string{})

	_, err := l.Process(context.Background(), core.NewSource("nope.ts", nil), core.ClientContext(), core.EntryKind())
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}

func TestProcess_SyntaxError(t *testing.T) {
	l := newLoader(t, map[string]string{
		"lib/bad.ts": "export const = ;\n",
	})

	_, err := l.Process(context.Background(), core.NewSource("lib/bad.ts", nil), core.ClientContext(), core.EntryKind())
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrValidation)

	var detail *oerrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Contains(t, detail.Location, "lib/bad.ts")
}

func TestProcess_UnknownTransition(t *testing.T) {
	l := newLoader(t, map[string]string{"a.ts": "export default 1;\n"})

	_, err := l.Process(context.Background(), core.NewSource("a.ts", nil), core.ClientContext().WithTransition("nope"), core.EntryKind())
	assert.ErrorContains(t, err, `unknown transition "nope"`)
}

func TestProcess_ClientBoundary(t *testing.T) {
	l := newLoader(t, map[string]string{
		"app/page.ts":   "import Button, { variant } from \"./button\";\nexport default function Page() { return [Button, variant]; }\n",
		"app/button.ts": "\"use client\";\nexport const variant = \"primary\";\nexport default function Button() { return null; }\n",
	})

	page := process(t, l, "app/page.ts", serverContext())

	refs := page.References()
	require.Len(t, refs, 1)
	p, ok := refs[0].Target.(*proxy.Node)
	require.True(t, ok, "expected client proxy, got %T", refs[0].Target)
	assert.Equal(t, "app/button.ts (rsc) (client proxy)", p.Ident().String())

	ref := p.ClientReference()
	assert.Equal(t, "app/button.ts (client)", ref.ClientModule().Ident().String())
	assert.Equal(t, "app/button.ts (ssr)", ref.SSRModule().Ident().String())
	assert.ElementsMatch(t, []string{"default", "variant"}, ref.ClientModule().Exports.Names)

	code, err := core.Content(p.Delegate())
	require.NoError(t, err)
	assert.Contains(t, string(code), "createProxy")
}

func TestProcess_ClientBoundaryStarExport(t *testing.T) {
	l := newLoader(t, map[string]string{
		"app/page.ts":   "import * as ui from \"./ui\";\nexport default ui;\n",
		"app/ui.ts":     "\"use client\";\nexport * from \"./button\";\n",
		"app/button.ts": "export const Button = 1;\n",
	})

	_, err := l.Process(context.Background(), core.NewSource("app/page.ts", nil), serverContext(), core.EntryKind())

	var pattern *core.UnsupportedExportPatternError
	require.ErrorAs(t, err, &pattern)
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

func TestProcess_CssFromServer(t *testing.T) {
	l := newLoader(t, map[string]string{
		"app/page.ts":     "import \"./globals.css\";\nexport default 1;\n",
		"app/globals.css": "body { margin: 0; }\n",
	})

	page := process(t, l, "app/page.ts", serverContext())

	refs := page.References()
	require.Len(t, refs, 1)
	css, ok := refs[0].Target.(*marker.CssClientReference)
	require.True(t, ok, "expected css client reference, got %T", refs[0].Target)
	assert.Equal(t, core.ChunkNone, refs[0].Chunking)
	assert.Equal(t, "app/globals.css (client)", css.ClientModule().Ident().String())
}

func TestProcess_CssFromClient(t *testing.T) {
	l := newLoader(t, map[string]string{
		"app/widget.ts":  "import \"./widget.css\";\nexport default 1;\n",
		"app/widget.css": ".w { color: red; }\n",
	})

	n := process(t, l, "app/widget.ts", core.ClientContext())

	refs := n.References()
	require.Len(t, refs, 1)
	_, err := core.AsCss(refs[0].Target)
	assert.NoError(t, err)
}

func TestProcess_DynamicImportFromSSR(t *testing.T) {
	client := core.ClientContext()
	ssr := core.SSRContext(core.WithTransitionRegistry(transition.PageTransitions(client)))
	l := newLoader(t, map[string]string{
		"pages/about.ts":      "export default () => import(\"../components/chart\");\n",
		"components/chart.ts": "export default 1;\n",
	})

	page := process(t, l, "pages/about.ts", ssr)

	refs := page.References()
	require.Len(t, refs, 2)
	assert.Equal(t, core.ChunkAsync, refs[0].Chunking)
	assert.Equal(t, "components/chart.ts (ssr)", refs[0].Target.Ident().String())

	dyn, ok := refs[1].Target.(*marker.DynamicEntry)
	require.True(t, ok, "expected dynamic entry, got %T", refs[1].Target)
	assert.Equal(t, "components/chart.ts (client)", dyn.ClientModule().Ident().String())
}

func TestProcess_InnerAssets(t *testing.T) {
	l := newLoader(t, map[string]string{})
	asset := core.NewModule(core.NewIdent("asset.js"), nil, core.EcmascriptCapabilities(core.EsmExports([]string{"default"}, false)))

	src := core.NewSource("virtual/entry.ts", []byte("import x from \"ASSET\";\nexport default x;\n"))
	n, err := l.Process(context.Background(), src, core.ClientContext(), core.InternalKind(map[string]core.Node{"ASSET": asset}))
	require.NoError(t, err)

	refs := n.References()
	require.Len(t, refs, 1)
	assert.Same(t, asset, refs[0].Target)
}

func TestDefines(t *testing.T) {
	c := core.NewContext("test", core.TargetBrowser, core.WithDefines(map[string]any{
		"process.env.NODE_ENV": "production",
		"typeof window":        "object",
		"process.browser":      true,
	}))

	assert.Equal(t, map[string]string{
		"process.env.NODE_ENV": `"production"`,
		"process.browser":      "true",
	}, defines(c))
}

func TestHasUseClient(t *testing.T) {
	assert.True(t, hasUseClient([]byte("\"use client\";\nexport default 1;")))
	assert.True(t, hasUseClient([]byte("\n'use client'\n")))
	assert.False(t, hasUseClient([]byte("export default \"use client\";")))
}

func TestImportRecords(t *testing.T) {
	imports := []metafileImport{
		{Path: "./b", Kind: "import-statement", External: true},
		{Path: "./types", Kind: "import-statement", External: true},
		{Path: "./b", Kind: "import-statement", External: true},
		{Path: "./lazy", Kind: "dynamic-import", External: true},
		{Path: "./c", Kind: "url-token", External: true},
	}
	resolved := map[string]resolution{
		"./b":    {path: "/root/lib/b.ts"},
		"./lazy": {path: "/root/lib/lazy.ts"},
		"./c":    {path: "/root/lib/c.png"},
	}

	records := importRecords(imports, resolved)

	assert.Equal(t, []importRecord{
		{request: "./b", kind: core.RefImport, resolved: resolution{path: "/root/lib/b.ts"}},
		{request: "./lazy", kind: core.RefDynamicImport, resolved: resolution{path: "/root/lib/lazy.ts"}},
	}, records)
}
