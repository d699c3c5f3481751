package build

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/pages"
	"github.com/opmodel/refgraph/internal/testutil"
)

func pageEntry(t *testing.T, pathname, file string) pages.Entry {
	t.Helper()
	ssr, err := core.AsChunkable(esmModule(t, core.NewIdent(file).WithModifier("ssr"), "default").Node)
	require.NoError(t, err)
	client, err := core.AsChunkable(esmModule(t, core.NewIdent(file).WithModifier("client"), "default").Node)
	require.NoError(t, err)
	return pages.Entry{Pathname: pathname, SSRModule: ssr, ClientModule: client}
}

func TestPages_Manifests(t *testing.T) {
	client := &testutil.FakeChunking{
		Groups: map[string][]string{
			"pages/about.tsx (client)": {".next/static/chunks/runtime.js", ".next/static/chunks/about.js"},
		},
	}
	r := newResolver(client, &testutil.FakeChunking{})

	acc := NewAccumulator()
	entries := []pages.Entry{pageEntry(t, "/about", "pages/about.tsx")}
	require.NoError(t, r.Pages(context.Background(), acc, entries, pages.Runtime{}))

	assert.Equal(t, map[string]string{"/about": "pages/about.js"}, map[string]string(acc.Manifests.Pages))
	assert.Equal(t, map[string][]string{
		"/about": {"static/chunks/runtime.js", "static/chunks/about.js"},
	}, map[string][]string(acc.Manifests.Build))
	assert.Len(t, acc.Chunks(), 3)
}

func TestPages_IndexRoute(t *testing.T) {
	r := newResolver(&testutil.FakeChunking{}, &testutil.FakeChunking{})

	acc := NewAccumulator()
	entries := []pages.Entry{pageEntry(t, "/", "pages/index.tsx")}
	require.NoError(t, r.Pages(context.Background(), acc, entries, pages.Runtime{}))

	assert.Equal(t, "pages/index.js", acc.Manifests.Pages["/"])
	assert.Equal(t, []string{}, acc.Manifests.Build["/"])
}

func TestPages_Failure(t *testing.T) {
	boom := errors.New("boom")
	server := &testutil.FakeChunking{Errors: map[string]error{"pages/about.tsx (ssr)": boom}}
	r := newResolver(&testutil.FakeChunking{}, server)

	acc := NewAccumulator()
	entries := []pages.Entry{
		pageEntry(t, "/", "pages/index.tsx"),
		pageEntry(t, "/about", "pages/about.tsx"),
	}
	err := r.Pages(context.Background(), acc, entries, pages.Runtime{})

	require.ErrorIs(t, err, boom)
	assert.Empty(t, acc.Manifests.Pages)
	assert.Empty(t, acc.Chunks())
}

func TestFoldPages_LengthMismatch(t *testing.T) {
	r := newResolver(&testutil.FakeChunking{}, &testutil.FakeChunking{})
	err := r.FoldPages(NewAccumulator(), []pages.Entry{pageEntry(t, "/", "pages/index.tsx")}, nil)

	var lookup *core.LookupInvariantError
	assert.ErrorAs(t, err, &lookup)
}
