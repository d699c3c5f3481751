package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedTransition string

func (n namedTransition) Name() string { return string(n) }

func (n namedTransition) Process(_ context.Context, _ Processor, src Source, _ *Context, _ ReferenceKind) (Node, error) {
	return NewModule(src.Ident.WithModifier(string(n)), nil, Capabilities{}), nil
}

func TestContext_WithTransition_ReturnsCopy(t *testing.T) {
	c := ServerContext()
	withT := c.WithTransition("client-reference")

	assert.Equal(t, "", c.Transition())
	assert.Equal(t, "client-reference", withT.Transition())
	assert.Equal(t, "rsc+client-reference", withT.String())

	stripped := withT.WithoutTransition()
	assert.Equal(t, "", stripped.Transition())
	assert.Equal(t, "client-reference", withT.Transition())
	assert.Equal(t, c.Name(), stripped.Name())
	assert.Equal(t, c.Target(), stripped.Target())
}

func TestContext_WithoutTransition_NoTransitionIsIdentity(t *testing.T) {
	c := ClientContext()
	assert.Same(t, c, c.WithoutTransition())
}

func TestContext_DefinesAreCopied(t *testing.T) {
	defines := map[string]any{"process.env.FOO": "bar"}
	c := NewContext("custom", TargetBrowser, WithDefines(defines))
	defines["process.env.FOO"] = "changed"

	v, ok := c.Define("process.env.FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestContext_Presets(t *testing.T) {
	tests := []struct {
		name       string
		ctx        *Context
		target     Target
		conditions []string
		runtime    any
	}{
		{"client", ClientContext(), TargetBrowser, []string{"browser", "import", "default"}, ""},
		{"ssr", SSRContext(), TargetServerRender, []string{"node", "import", "default"}, "nodejs"},
		{"rsc", ServerContext(), TargetServer, []string{"react-server", "node", "import", "default"}, "nodejs"},
		{"edge", EdgeContext(), TargetEdgeWorker, []string{"edge-light", "worker", "development"}, "edge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.ctx.Name())
			assert.Equal(t, tt.target, tt.ctx.Target())
			assert.Equal(t, tt.conditions, tt.ctx.Resolve().Conditions)
			v, ok := tt.ctx.Define("process.env.NEXT_RUNTIME")
			require.True(t, ok)
			assert.Equal(t, tt.runtime, v)
		})
	}
}

func TestContext_EdgeDefines(t *testing.T) {
	c := EdgeContext()

	assert.Equal(t, []string{
		"process.env.NEXT_RUNTIME",
		"process.env.NODE_ENV",
		"process.env.__NEXT_CLIENT_ROUTER_FILTER_ENABLED",
		"process.turbopack",
	}, c.DefineKeys())
	assert.True(t, c.Resolve().Browser)
	assert.True(t, c.Target().IsServer())
}

func TestTransitions_Registry(t *testing.T) {
	reg := NewTransitions(map[string]Transition{"a": namedTransition("a")})
	extended := reg.With("b", namedTransition("b"))

	_, ok := reg.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, extended.Names())

	tr, ok := extended.Get("b")
	require.True(t, ok)
	n, err := tr.Process(context.Background(), nil, NewSource("x.js", nil), ClientContext(), EntryKind())
	require.NoError(t, err)
	assert.Equal(t, "x.js (b)", n.Ident().String())

	var nilReg *Transitions
	_, ok = nilReg.Get("a")
	assert.False(t, ok)
}

func TestReferenceKind_Key(t *testing.T) {
	inner := map[string]Node{
		"CLIENT_MODULE": NewModule(NewIdent("a.js").WithModifier("ssr"), nil, Capabilities{}),
		"CLIENT_CHUNKS": NewModule(NewIdent("a.js").WithModifier("client chunks"), nil, Capabilities{}),
	}

	assert.Equal(t, "entry", EntryKind().Key())
	assert.Equal(t,
		`internal|CLIENT_CHUNKS="a.js" "client chunks"|CLIENT_MODULE="a.js" "ssr"`,
		InternalKind(inner).Key())
}
