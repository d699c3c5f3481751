package build

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/refgraph/internal/clientref"
	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/manifest"
	"github.com/opmodel/refgraph/internal/marker"
	"github.com/opmodel/refgraph/internal/testutil"
)

func esmModule(t *testing.T, ident core.Ident, names ...string) core.EcmascriptModule {
	t.Helper()
	m := core.NewModule(ident, nil, core.EcmascriptCapabilities(core.EsmExports(names, false)))
	em, err := core.AsEcmascript(m)
	require.NoError(t, err)
	return em
}

func buttonReference(t *testing.T, names ...string) *marker.EcmascriptClientReference {
	t.Helper()
	id := core.NewIdent("app/button.tsx")
	return marker.NewEcmascriptClientReference(
		id.WithModifier("rsc"),
		esmModule(t, id.WithModifier("client"), names...),
		esmModule(t, id.WithModifier("ssr"), names...),
	)
}

func cssReference(t *testing.T, p string) *marker.CssClientReference {
	t.Helper()
	m := core.NewModule(core.NewIdent(p).WithModifier("client"), nil, core.CssCapabilities())
	cm, err := core.AsCss(m)
	require.NoError(t, err)
	return marker.NewCssClientReference(cm)
}

func route(t *testing.T, p string, refs ...core.Node) *marker.ServerComponent {
	t.Helper()
	m := core.NewModule(core.NewIdent(p).WithModifier("rsc"), nil,
		core.EcmascriptCapabilities(core.EsmExports([]string{"default"}, false)))
	var links []core.Reference
	for _, r := range refs {
		links = append(links, core.Reference{Target: r})
	}
	m.Link(links)
	em, err := core.AsEcmascript(m)
	require.NoError(t, err)
	return marker.NewServerComponent(em)
}

func newResolver(client, server *testutil.FakeChunking) *Resolver {
	if client.Root == "" {
		client.Root = ".next"
	}
	if server.Root == "" {
		server.Root = ".next/server"
	}
	return &Resolver{Client: client, Server: server, Executor: NewExecutor(4)}
}

func TestClientReferences_Manifest(t *testing.T) {
	ref := buttonReference(t, "default", "foo")
	client := &testutil.FakeChunking{
		Groups: map[string][]string{"app/button.tsx (client)": {".next/static/b.js"}},
		IDs:    map[string]core.ModuleID{"app/button.tsx (client)": core.NumberID(3)},
	}
	server := &testutil.FakeChunking{
		Groups: map[string][]string{"app/button.tsx (ssr)": {".next/server/chunks/a.js"}},
		IDs:    map[string]core.ModuleID{"app/button.tsx (ssr)": core.NumberID(7)},
	}
	r := newResolver(client, server)

	acc := NewAccumulator()
	g := clientref.Discover([]core.Node{route(t, "app/page.tsx", ref)})
	require.NoError(t, r.ClientReferences(context.Background(), acc, g))

	m := acc.Manifests.ClientReferences
	clientEntry := func(name string) manifest.NodeEntry {
		return manifest.NodeEntry{Name: name, ID: core.NumberID(3), Chunks: []string{"static/b.js"}}
	}
	ssrEntry := func(name string) manifest.NodeEntry {
		return manifest.NodeEntry{Name: name, ID: core.NumberID(7), Chunks: []string{"chunks/a.js"}}
	}

	assert.Equal(t, map[string]manifest.NodeEntry{
		"app/button.tsx":     clientEntry("*"),
		"app/button.tsx#foo": clientEntry("foo"),
	}, m.ClientModules)
	assert.Equal(t, map[string]map[string]manifest.NodeEntry{
		"3": {"*": ssrEntry("*"), "foo": ssrEntry("foo")},
	}, m.SSRModuleMapping)

	paths := make([]string, 0)
	for _, c := range acc.Chunks() {
		paths = append(paths, c.Path())
	}
	assert.Equal(t, []string{".next/static/b.js", ".next/server/chunks/a.js"}, paths)
}

func TestClientReferences_SSRMirrorsClientModules(t *testing.T) {
	ref := buttonReference(t, "default", "a", "b", "c")
	r := newResolver(&testutil.FakeChunking{}, &testutil.FakeChunking{})

	acc := NewAccumulator()
	g := clientref.Discover([]core.Node{route(t, "app/page.tsx", ref)})
	require.NoError(t, r.ClientReferences(context.Background(), acc, g))

	m := acc.Manifests.ClientReferences
	require.Len(t, m.SSRModuleMapping, 1)
	for clientID, exports := range m.SSRModuleMapping {
		assert.Contains(t, exports, manifest.WholeModule)
		for key, entry := range m.ClientModules {
			path, name := manifest.SplitKey(key)
			assert.Equal(t, "app/button.tsx", path)
			assert.Equal(t, clientID, entry.ID.String())
			assert.Contains(t, exports, name)
		}
	}
	assert.Len(t, m.ClientModules, 4)
}

func TestClientReferences_CssHasNoSSRChunks(t *testing.T) {
	styles := cssReference(t, "app/page.css")
	client := &testutil.FakeChunking{
		Groups: map[string][]string{"app/page.css (client)": {".next/static/page.css"}},
	}
	server := &testutil.FakeChunking{}
	r := newResolver(client, server)

	types := []clientref.Type{clientref.CssType(styles)}
	resolved, err := r.ResolveClientReferences(context.Background(), types)
	require.NoError(t, err)

	res := resolved[types[0].Key()]
	assert.Empty(t, res.SSR)
	assert.Len(t, res.Client, 1)
	assert.Zero(t, server.GroupCalls())

	acc := NewAccumulator()
	g := clientref.Discover([]core.Node{route(t, "app/page.tsx", styles)})
	require.NoError(t, r.FoldClientReferences(context.Background(), acc, g, resolved))

	m := acc.Manifests.ClientReferences
	assert.Empty(t, m.ClientModules)
	assert.Empty(t, m.SSRModuleMapping)
	assert.Equal(t, []string{"static/page.css"}, m.EntryCSSFiles["app/page"])
}

func TestClientReferences_EntryCSSFilesFiltersScripts(t *testing.T) {
	ref := buttonReference(t, "default")
	client := &testutil.FakeChunking{
		Groups: map[string][]string{"app/button.tsx (client)": {".next/static/b.js", ".next/static/b.css"}},
	}
	r := newResolver(client, &testutil.FakeChunking{})

	acc := NewAccumulator()
	g := clientref.Discover([]core.Node{route(t, "app/page.tsx", ref)})
	require.NoError(t, r.ClientReferences(context.Background(), acc, g))

	assert.Equal(t, map[string][]string{"app/page": {"static/b.css"}}, acc.Manifests.ClientReferences.EntryCSSFiles)
}

func TestClientReferences_DropsChunksOutsideRoot(t *testing.T) {
	ref := buttonReference(t, "default")
	client := &testutil.FakeChunking{
		Groups: map[string][]string{"app/button.tsx (client)": {"elsewhere/x.js", ".next/static/b.js"}},
	}
	r := newResolver(client, &testutil.FakeChunking{})

	acc := NewAccumulator()
	g := clientref.Discover([]core.Node{route(t, "app/page.tsx", ref)})
	require.NoError(t, r.ClientReferences(context.Background(), acc, g))

	assert.Equal(t, []string{"static/b.js"}, acc.Manifests.ClientReferences.ClientModules["app/button.tsx"].Chunks)
	assert.Len(t, acc.Chunks(), 2)
}

func TestClientReferences_Idempotent(t *testing.T) {
	ref := buttonReference(t, "default", "foo")
	client := &testutil.FakeChunking{
		Groups: map[string][]string{"app/button.tsx (client)": {".next/static/b.js", ".next/static/c.js"}},
	}
	server := &testutil.FakeChunking{
		Groups: map[string][]string{"app/button.tsx (ssr)": {".next/server/chunks/a.js"}},
	}
	r := newResolver(client, server)
	g := clientref.Discover([]core.Node{route(t, "app/page.tsx", ref)})

	first := NewAccumulator()
	require.NoError(t, r.ClientReferences(context.Background(), first, g))
	second := NewAccumulator()
	require.NoError(t, r.ClientReferences(context.Background(), second, g))

	assert.Equal(t, first.Manifests.ClientReferences.ClientModules, second.Manifests.ClientReferences.ClientModules)
	assert.Equal(t, first.Manifests.ClientReferences.SSRModuleMapping, second.Manifests.ClientReferences.SSRModuleMapping)
}

func TestClientReferences_BranchFailure(t *testing.T) {
	boom := errors.New("chunking failed")
	ref := buttonReference(t, "default")
	server := &testutil.FakeChunking{
		Errors: map[string]error{"app/button.tsx (ssr)": boom},
	}
	r := newResolver(&testutil.FakeChunking{}, server)

	types := []clientref.Type{
		clientref.EcmascriptType(ref),
		clientref.CssType(cssReference(t, "app/page.css")),
	}
	resolved, err := r.ResolveClientReferences(context.Background(), types)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, resolved)
}

func TestFoldClientReferences_LookupInvariant(t *testing.T) {
	ref := buttonReference(t, "default")
	r := newResolver(&testutil.FakeChunking{}, &testutil.FakeChunking{})
	g := clientref.Discover([]core.Node{route(t, "app/page.tsx", ref)})

	err := r.FoldClientReferences(context.Background(), NewAccumulator(), g, map[string]ClientReferenceChunks{})

	var lookup *core.LookupInvariantError
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, clientref.EcmascriptType(ref).Key(), lookup.Key)
}

func TestClientReferences_CommonJsOnlyWholeModule(t *testing.T) {
	id := core.NewIdent("lib/widget.js")
	cjs := func(mod string) core.EcmascriptModule {
		m := core.NewModule(id.WithModifier(mod), nil, core.EcmascriptCapabilities(core.CommonJsExports()))
		em, err := core.AsEcmascript(m)
		require.NoError(t, err)
		return em
	}
	ref := marker.NewEcmascriptClientReference(id.WithModifier("rsc"), cjs("client"), cjs("ssr"))
	r := newResolver(&testutil.FakeChunking{}, &testutil.FakeChunking{})

	acc := NewAccumulator()
	g := clientref.Discover([]core.Node{route(t, "app/page.tsx", ref)})
	require.NoError(t, r.ClientReferences(context.Background(), acc, g))

	m := acc.Manifests.ClientReferences
	assert.Len(t, m.ClientModules, 1)
	assert.Contains(t, m.ClientModules, "lib/widget.js")
}
