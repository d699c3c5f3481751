package loader

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/opmodel/refgraph/internal/core"
	oerrors "github.com/opmodel/refgraph/internal/errors"
)

// stdinInput is the metafile key of the analyzed source.
const stdinInput = "<stdin>"

var starExport = regexp.MustCompile(`(?m)^export \* from`)

// metafile is the subset of the esbuild metafile the analysis reads.
type metafile struct {
	Inputs  map[string]metafileInput  `json:"inputs"`
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileInput struct {
	Imports []metafileImport `json:"imports"`
	Format  string           `json:"format,omitempty"`
}

type metafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
	Original string `json:"original,omitempty"`
}

type metafileOutput struct {
	Exports []string `json:"exports"`
}

// resolution is the outcome of resolving one request.
type resolution struct {
	// path is the absolute resolved file, empty when unresolved.
	path string

	// external is set for requests esbuild keeps external (node builtins).
	external bool
}

// importRecord is one import of an analyzed source, in source order.
type importRecord struct {
	request  string
	kind     core.ReferenceType
	resolved resolution
}

// analysis describes a compiled source.
type analysis struct {
	code      []byte
	caps      core.Capabilities
	useClient bool
	imports   []importRecord
}

// resolvingKey marks resolve calls issued by the analysis plugin itself.
type resolvingKey struct{}

func esbuildLoader(p string) (api.Loader, bool) {
	switch path.Ext(p) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS, true
	case ".tsx":
		return api.LoaderTSX, true
	case ".jsx":
		return api.LoaderJSX, true
	case ".js", ".mjs", ".cjs":
		return api.LoaderJS, true
	case ".css":
		return api.LoaderCSS, true
	case ".json":
		return api.LoaderJSON, true
	default:
		return api.LoaderNone, false
	}
}

func platform(t core.Target) api.Platform {
	switch t {
	case core.TargetBrowser, core.TargetEdgeWorker:
		return api.PlatformBrowser
	default:
		return api.PlatformNode
	}
}

func mainFields(r core.ResolveOptions) []string {
	var fields []string
	if r.Browser {
		fields = append(fields, "browser")
	}
	if r.Module {
		fields = append(fields, "module")
	}
	return append(fields, "main")
}

// defines renders the context defines esbuild accepts: dotted identifiers
// with JSON values.
func defines(c *core.Context) map[string]string {
	out := make(map[string]string)
	for _, key := range c.DefineKeys() {
		if strings.ContainsAny(key, " \t") {
			continue
		}
		v, _ := c.Define(key)
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[key] = string(data)
	}
	return out
}

func referenceType(kind string) (core.ReferenceType, bool) {
	switch kind {
	case "import-statement", "require-call", "require-resolve":
		return core.RefImport, true
	case "dynamic-import":
		return core.RefDynamicImport, true
	case "import-rule", "composes-from":
		return core.RefCSSImport, true
	default:
		return core.RefUndefined, false
	}
}

// analyze compiles src with esbuild under c. Every import is resolved by the
// analysis plugin and kept external so only src itself is parsed.
func analyze(root string, src core.Source, c *core.Context, inner map[string]core.Node) (*analysis, error) {
	loader, ok := esbuildLoader(src.Ident.Path)
	if !ok {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("no loader for %s", src.Ident.Path),
			src.Ident.Path, "", "Only script, stylesheet and JSON sources can be part of the module graph")
	}

	abs := filepath.Join(root, filepath.FromSlash(src.Ident.Path))
	defs := defines(c)

	transformed := api.Transform(string(src.Content), api.TransformOptions{
		Loader:     loader,
		Sourcefile: src.Ident.Path,
		Define:     defs,
		JSX:        api.JSXAutomatic,
		LogLevel:   api.LogLevelSilent,
	})
	if len(transformed.Errors) > 0 {
		return nil, messageError(src.Ident.Path, transformed.Errors)
	}

	if loader == api.LoaderJSON {
		return &analysis{
			code: transformed.Code,
			caps: core.Capabilities{Chunkable: true, Ecmascript: &core.ExportKind{Type: core.ExportsValue}},
		}, nil
	}

	var (
		mu       sync.Mutex
		resolved = make(map[string]resolution)
	)
	plugin := api.Plugin{
		Name: "refgraph-resolve",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if _, ok := args.PluginData.(resolvingKey); ok || args.Kind == api.ResolveEntryPoint {
						return api.OnResolveResult{}, nil
					}

					request := args.Path
					if alias, ok := c.ImportAlias(request); ok {
						request = alias
					}

					var r resolution
					if _, ok := inner[request]; !ok {
						res := build.Resolve(request, api.ResolveOptions{
							ResolveDir: args.ResolveDir,
							Kind:       args.Kind,
							PluginData: resolvingKey{},
						})
						if len(res.Errors) == 0 {
							r = resolution{path: res.Path, external: res.External}
						}
					}

					mu.Lock()
					resolved[args.Path] = r
					mu.Unlock()
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				})
		},
	}

	outfile := "out.js"
	if loader == api.LoaderCSS {
		outfile = "out.css"
	}
	result := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   string(src.Content),
			ResolveDir: existingDir(root, filepath.Dir(abs)),
			Sourcefile: src.Ident.Path,
			Loader:     loader,
		},
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		Format:            api.FormatESModule,
		Platform:          platform(c.Target()),
		Target:            api.ESNext,
		Define:            defs,
		JSX:               api.JSXAutomatic,
		Conditions:        c.Resolve().Conditions,
		MainFields:        mainFields(c.Resolve()),
		ResolveExtensions: c.Resolve().Extensions,
		AbsWorkingDir:     root,
		Outfile:           outfile,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{plugin},
	})
	if len(result.Errors) > 0 {
		return nil, messageError(src.Ident.Path, result.Errors)
	}

	var meta metafile
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return nil, fmt.Errorf("parsing metafile of %s: %w", src.Ident.Path, err)
	}
	input := stdinMeta(meta, src.Ident.Path)

	a := &analysis{
		code:      transformed.Code,
		useClient: hasUseClient(transformed.Code),
		imports:   importRecords(input.Imports, resolved),
	}

	if loader == api.LoaderCSS {
		a.caps = core.CssCapabilities()
		return a, nil
	}

	if input.Format == "cjs" {
		a.caps = core.EcmascriptCapabilities(core.CommonJsExports())
		return a, nil
	}

	var exports []string
	for name, out := range meta.Outputs {
		if strings.HasSuffix(name, ".js") {
			exports = out.Exports
			break
		}
	}
	hasStar := false
	for _, f := range result.OutputFiles {
		if strings.HasSuffix(f.Path, ".js") && starExport.Match(f.Contents) {
			hasStar = true
		}
	}
	a.caps = core.EcmascriptCapabilities(core.EsmExports(exports, hasStar))
	return a, nil
}

// stdinMeta returns the metafile input of the analyzed source. Imports are
// all external, so it is the only input.
func stdinMeta(meta metafile, sourcefile string) metafileInput {
	if in, ok := meta.Inputs[stdinInput]; ok {
		return in
	}
	if in, ok := meta.Inputs[sourcefile]; ok {
		return in
	}
	for _, in := range meta.Inputs {
		return in
	}
	return metafileInput{}
}

func importRecords(imports []metafileImport, resolved map[string]resolution) []importRecord {
	var records []importRecord
	seen := make(map[string]bool)
	for _, imp := range imports {
		kind, ok := referenceType(imp.Kind)
		if !ok {
			continue
		}
		request := imp.Path
		if imp.Original != "" {
			request = imp.Original
		}
		// Imports esbuild dropped (unused or type-only) never reach the
		// resolve plugin.
		r, ok := resolved[request]
		if !ok {
			continue
		}
		key := imp.Kind + "|" + request
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, importRecord{request: request, kind: kind, resolved: r})
	}
	return records
}

func hasUseClient(code []byte) bool {
	s := strings.TrimLeft(string(code), " \t\r\n")
	return strings.HasPrefix(s, `"use client"`) || strings.HasPrefix(s, `'use client'`)
}

// existingDir returns dir, or its nearest existing ancestor below root.
// Virtual sources live below their owner file, which is not a directory.
func existingDir(root, dir string) string {
	for dir != root && len(dir) > len(root) {
		if isDir(dir) {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return root
}

func messageError(file string, msgs []api.Message) error {
	m := msgs[0]
	location := file
	if m.Location != nil {
		location = fmt.Sprintf("%s:%d:%d", m.Location.File, m.Location.Line, m.Location.Column)
	}
	err := &oerrors.DetailError{
		Type:     "syntax error",
		Message:  m.Text,
		Location: location,
		Cause:    oerrors.ErrValidation,
	}
	if len(msgs) > 1 {
		err.Context = map[string]string{"errors": fmt.Sprint(len(msgs))}
	}
	return err
}
