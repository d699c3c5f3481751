// Package proxy generates the module that stands in for a client component
// inside the server compiled graph.
package proxy

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/opmodel/refgraph/internal/core"
)

// DefaultRuntimeModule is the request the generated code imports createProxy from.
const DefaultRuntimeModule = "next/dist/build/webpack/loaders/next-flight-loader/module-proxy"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Code returns the proxy source for the client module exports. serverPath is
// the path the runtime uses to locate the client implementation; id is only
// used in errors.
func Code(id core.Ident, serverPath, runtimeModule string, exports core.ExportKind) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "import { createProxy } from %s;\n", quote(runtimeModule))
	fmt.Fprintf(&b, "const proxy = createProxy(%s);\n\n", quote(serverPath))
	// __esModule forces the proxy target to create the default export. $$typeof
	// tells the renderer the module is a client boundary.
	b.WriteString("const { __esModule, $$typeof } = proxy;\n")
	b.WriteString("const __default__ = proxy.default;\n")

	switch exports.Type {
	case core.ExportsEsm:
		if exports.HasStarExport {
			return "", &core.UnsupportedExportPatternError{Ident: id}
		}
		cnt := 0
		for _, name := range exports.Names {
			if name == "default" {
				writeDefault(&b)
				continue
			}
			fmt.Fprintf(&b, "\nconst e%d = proxy[%s];\n", cnt, quote(name))
			fmt.Fprintf(&b, "export { e%d as %s };\n", cnt, exportName(name))
			cnt++
		}
	case core.ExportsCommonJs:
		writeDefault(&b)
	default:
		return "", &core.UnsupportedExportKindError{Ident: id, Kind: exports.Type}
	}

	return b.String(), nil
}

func writeDefault(b *strings.Builder) {
	b.WriteString("\nexport { __esModule, $$typeof };\n")
	b.WriteString("export default __default__;\n")
}

func quote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func exportName(name string) string {
	if identifierPattern.MatchString(name) {
		return name
	}
	return quote(name)
}
