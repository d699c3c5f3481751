package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contentless struct{ ident Ident }

func (c contentless) Ident() Ident            { return c.ident }
func (c contentless) References() []Reference { return nil }

func TestAsEcmascript(t *testing.T) {
	esm := NewModule(NewIdent("a.tsx"), []byte("export default 1"),
		EcmascriptCapabilities(EsmExports([]string{"default", "foo"}, false)))

	m, err := AsEcmascript(esm)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, m.Exports.NamedExports())

	css := NewModule(NewIdent("a.css"), nil, CssCapabilities())
	_, err = AsEcmascript(css)
	var mismatch *CapabilityMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, CapEcmascript, mismatch.Capability)
	assert.Equal(t, "a.css", mismatch.Ident.Path)
}

func TestAsCss(t *testing.T) {
	_, err := AsCss(NewModule(NewIdent("a.css"), nil, CssCapabilities()))
	assert.NoError(t, err)

	_, err = AsCss(contentless{NewIdent("a.css")})
	assert.Error(t, err)
}

func TestAsChunkable_MarkerIsNotChunkable(t *testing.T) {
	_, err := AsChunkable(contentless{NewIdent("a.tsx").WithModifier("dynamic")})

	var mismatch *CapabilityMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, CapChunkable, mismatch.Capability)
}

func TestExportKind_NamedExports(t *testing.T) {
	assert.Nil(t, CommonJsExports().NamedExports())
	assert.Nil(t, EsmExports([]string{"default"}, false).NamedExports())
	assert.Equal(t, []string{"a", "b"}, EsmExports([]string{"a", "default", "b"}, true).NamedExports())
}
