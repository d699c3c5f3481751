package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/refgraph/internal/cmdtypes"
	"github.com/opmodel/refgraph/internal/config"
	"github.com/opmodel/refgraph/internal/manifest"
	"github.com/opmodel/refgraph/internal/output"
	"github.com/opmodel/refgraph/internal/testutil"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.ConfigEnv, "")
	output.SetOutput(io.Discard)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *cmdtypes.ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	return exitErr.Code
}

var boundaryProject = map[string]string{
	config.DefaultFileName: "app:\n  entries:\n    - app/page.ts\n",
	"app/page.ts":          "import Button, { variant } from \"./button\";\nexport default function Page() { return [Button, variant]; }\n",
	"app/button.ts":        "\"use client\";\nexport const variant = \"primary\";\nexport default function Button() { return null; }\n",
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"build", "diff", "config", "version"})
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, root.PersistentFlags().Lookup("timestamps"))
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "refgraph:")
	assert.Contains(t, out, "esbuild:")
}

func TestBuildCmd_WritesManifests(t *testing.T) {
	dir := testutil.WriteProject(t, boundaryProject)

	out, err := execute(t, "build", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "Built 1 routes")

	for _, rel := range manifest.Paths() {
		assert.FileExists(t, filepath.Join(dir, ".next", filepath.FromSlash(rel)))
	}

	data, err := os.ReadFile(filepath.Join(dir, ".next", filepath.FromSlash(manifest.ClientReferenceManifestPath)))
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc["clientModules"], "app/button.ts#variant")
	assert.Contains(t, doc["clientModules"], "app/button.ts")
}

func TestBuildCmd_JSONToStdout(t *testing.T) {
	dir := testutil.WriteProject(t, boundaryProject)

	out, err := execute(t, "build", dir, "-o", "json")

	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, manifest.ClientReferenceManifestPath)
	assert.NoDirExists(t, filepath.Join(dir, ".next"))
}

func TestBuildCmd_InvalidOutput(t *testing.T) {
	dir := testutil.WriteProject(t, boundaryProject)

	_, err := execute(t, "build", dir, "-o", "table")

	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitGeneralError, exitCode(t, err))
}

func TestBuildCmd_MissingEntry(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		config.DefaultFileName: "app:\n  entries:\n    - app/missing.ts\n",
	})

	_, err := execute(t, "build", dir)

	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitNotFound, exitCode(t, err))
}

func TestConfigInitAndVet(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized")
	require.FileExists(t, filepath.Join(dir, config.DefaultFileName))

	_, err = execute(t, "config", "init", dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, "configuration already exists")

	_, err = execute(t, "config", "init", dir, "--force")
	require.NoError(t, err)

	out, err = execute(t, "config", "vet", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}

func TestConfigVet_Invalid(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		config.DefaultFileName: "moduleIds: hashed\n",
	})

	_, err := execute(t, "config", "vet", dir)

	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitValidationError, exitCode(t, err))
}

func TestConfigVet_NotFound(t *testing.T) {
	_, err := execute(t, "config", "vet", t.TempDir())

	require.Error(t, err)
	assert.Equal(t, cmdtypes.ExitNotFound, exitCode(t, err))
}

func TestDiffCmd(t *testing.T) {
	clientRefs := func(chunk string) string {
		return `{"clientModules":{"app/button.ts":{"id":"b","name":"*","chunks":["` + chunk + `"]}},"ssrModuleMapping":{},"entryCSSFiles":{}}`
	}

	oldDir := testutil.WriteProject(t, map[string]string{
		manifest.ClientReferenceManifestPath: clientRefs("static/chunks/a.js"),
		manifest.BuildManifestPath:           `{"/about":["static/chunks/about.js"]}`,
	})
	newDir := testutil.WriteProject(t, map[string]string{
		manifest.ClientReferenceManifestPath: clientRefs("static/chunks/b.js"),
		manifest.BuildManifestPath:           `{"/":["static/chunks/index.js"]}`,
	})

	t.Run("reports changes", func(t *testing.T) {
		out, err := execute(t, "diff", oldDir, newDir)

		require.NoError(t, err)
		assert.Contains(t, out, manifest.BuildManifestPath+" /about")
		assert.Contains(t, out, manifest.BuildManifestPath+" /")
		assert.Contains(t, out, "clientModules:app/button.ts")
	})

	t.Run("exit code on changes", func(t *testing.T) {
		_, err := execute(t, "diff", oldDir, newDir, "--exit-code")

		require.Error(t, err)
		assert.Equal(t, cmdtypes.ExitGeneralError, exitCode(t, err))
	})

	t.Run("no changes", func(t *testing.T) {
		out, err := execute(t, "diff", oldDir, oldDir, "--exit-code")

		require.NoError(t, err)
		assert.Contains(t, out, "No changes detected.")
	})

	t.Run("no manifests", func(t *testing.T) {
		_, err := execute(t, "diff", t.TempDir(), t.TempDir())

		require.Error(t, err)
		assert.Equal(t, cmdtypes.ExitNotFound, exitCode(t, err))
	})
}

func TestYAMLDiffer(t *testing.T) {
	diff := yamlDiffer(false)
	entry := func(chunk string) any {
		return map[string]any{"id": "b", "name": "*", "chunks": []any{chunk}}
	}

	d, err := diff(entry("static/chunks/a.js"), entry("static/chunks/a.js"))
	require.NoError(t, err)
	assert.Empty(t, d)

	d, err = diff(entry("static/chunks/a.js"), entry("static/chunks/b.js"))
	require.NoError(t, err)
	assert.NotEmpty(t, d)
}
