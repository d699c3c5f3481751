package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/refgraph/internal/errors"
)

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	var out []string
	for _, e := range verrs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidator_Validate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(DefaultConfig()))
	})

	t.Run("empty config is valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(&Config{}))
	})

	t.Run("unknown module id strategy", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ModuleIDs = "hashed"

		err := v.Validate(cfg)

		require.Error(t, err)
		assert.Contains(t, fields(t, err), "moduleIds")
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
	})

	t.Run("dist dir escaping the project", func(t *testing.T) {
		for _, dir := range []string{"/abs/out", "../out", "a/../../out"} {
			cfg := DefaultConfig()
			cfg.DistDir = dir

			err := v.Validate(cfg)

			require.Error(t, err, dir)
			assert.Contains(t, fields(t, err), "distDir", dir)
		}
	})

	t.Run("negative concurrency", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Concurrency = -1

		assert.Contains(t, fields(t, v.Validate(cfg)), "concurrency")
	})

	t.Run("entry without script extension", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.App.Entries = []string{"app/page.css"}

		err := v.Validate(cfg)

		require.Error(t, err)
		assert.Contains(t, fields(t, err), "app.entries.0")
	})
}

func TestValidator_ValidateFile(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "refgraph.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("valid file", func(t *testing.T) {
		path := write(t, "distDir: .next\nmoduleIds: numeric\napp:\n  entries: [app/page.tsx]\n")
		assert.NoError(t, v.ValidateFile(path))
	})

	t.Run("unknown key", func(t *testing.T) {
		path := write(t, "distDir: .next\nkubeconfig: ~/.kube/config\n")

		err := v.ValidateFile(path)

		require.Error(t, err)
		assert.Contains(t, fields(t, err), "kubeconfig")
	})

	t.Run("wrong type", func(t *testing.T) {
		path := write(t, "ssr: maybe\n")

		err := v.ValidateFile(path)

		require.Error(t, err)
		assert.Contains(t, fields(t, err), "ssr")
	})

	t.Run("missing file", func(t *testing.T) {
		err := v.ValidateFile(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "distDir", Message: "invalid value"},
		{Field: "moduleIds", Message: "conflicting values"},
	}

	assert.Equal(t, "config validation failed:\n  distDir: invalid value\n  moduleIds: conflicting values\n", errs.Error())
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
}
