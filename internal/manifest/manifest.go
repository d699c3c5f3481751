// Package manifest defines the serialized manifests consumed by the runtime
// loader: the client reference manifest, the pages manifest, the build
// manifest and the dynamic import manifest.
package manifest

import (
	"strings"

	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/output"
)

// Output locations relative to the dist directory.
const (
	ClientReferenceManifestPath = "server/client-reference-manifest.json"
	PagesManifestPath           = "server/pages-manifest.json"
	BuildManifestPath           = "build-manifest.json"
	DynamicManifestPath         = "dynamic-manifest.json"
)

// WholeModule is the export name that stands for the whole module.
const WholeModule = "*"

// Key returns the client manifest key of an export of the module at path.
func Key(path, name string) string {
	if name == WholeModule {
		return path
	}
	return path + "#" + name
}

// SplitKey recovers the module path and export name from a manifest key.
func SplitKey(key string) (path, name string) {
	path, name, ok := strings.Cut(key, "#")
	if !ok {
		return key, WholeModule
	}
	return path, name
}

// NodeEntry locates one export of a compiled module at runtime.
type NodeEntry struct {
	Name   string        `json:"name"`
	ID     core.ModuleID `json:"id"`
	Chunks []string      `json:"chunks"`
	Async  bool          `json:"async"`
}

// NewNodeEntry creates an entry. chunks is copied and never nil.
func NewNodeEntry(name string, id core.ModuleID, chunks []string) NodeEntry {
	return NodeEntry{Name: name, ID: id, Chunks: append(make([]string, 0, len(chunks)), chunks...)}
}

// ClientReferenceManifest maps server module exports to their client and
// server-rendering compiled forms.
type ClientReferenceManifest struct {
	// ClientModules is keyed by manifest key.
	ClientModules map[string]NodeEntry `json:"clientModules"`

	// SSRModuleMapping is keyed by client module id, then export name.
	SSRModuleMapping map[string]map[string]NodeEntry `json:"ssrModuleMapping"`

	// EntryCSSFiles lists the stylesheet chunks of each route in discovery
	// order.
	EntryCSSFiles map[string][]string `json:"entryCSSFiles"`

	cssSeen map[string]map[string]bool
}

// NewClientReferenceManifest returns an empty manifest.
func NewClientReferenceManifest() *ClientReferenceManifest {
	return &ClientReferenceManifest{
		ClientModules:    make(map[string]NodeEntry),
		SSRModuleMapping: make(map[string]map[string]NodeEntry),
		EntryCSSFiles:    make(map[string][]string),
		cssSeen:          make(map[string]map[string]bool),
	}
}

// AddClientModule records entry under Key(serverPath, entry.Name).
func (m *ClientReferenceManifest) AddClientModule(serverPath string, entry NodeEntry) {
	m.ClientModules[Key(serverPath, entry.Name)] = entry
}

// AddSSRModule records the server-rendering entry for an export of the client
// module clientID.
func (m *ClientReferenceManifest) AddSSRModule(clientID core.ModuleID, entry NodeEntry) {
	key := clientID.String()
	exports, ok := m.SSRModuleMapping[key]
	if !ok {
		exports = make(map[string]NodeEntry)
		m.SSRModuleMapping[key] = exports
	}
	exports[entry.Name] = entry
}

// AddEntryCSSFile appends a stylesheet path to a route. A path already listed
// for the route keeps its first position.
func (m *ClientReferenceManifest) AddEntryCSSFile(route, path string) {
	if m.cssSeen == nil {
		m.cssSeen = make(map[string]map[string]bool)
	}
	seen, ok := m.cssSeen[route]
	if !ok {
		seen = make(map[string]bool)
		m.cssSeen[route] = seen
		if _, listed := m.EntryCSSFiles[route]; !listed {
			m.EntryCSSFiles[route] = []string{}
		}
	}
	if seen[path] {
		return
	}
	seen[path] = true
	m.EntryCSSFiles[route] = append(m.EntryCSSFiles[route], path)
}

// PagesManifest maps a page route to its server entry chunk.
type PagesManifest map[string]string

// BuildManifest maps a page route to its client chunks in load order.
type BuildManifest map[string][]string

// DynamicManifest maps a lazily loaded module path to its client chunks.
type DynamicManifest map[string][]string

// Set is every manifest produced by one build.
type Set struct {
	ClientReferences *ClientReferenceManifest
	Pages            PagesManifest
	Build            BuildManifest
	Dynamic          DynamicManifest
}

// NewSet returns a set of empty manifests.
func NewSet() *Set {
	return &Set{
		ClientReferences: NewClientReferenceManifest(),
		Pages:            make(PagesManifest),
		Build:            make(BuildManifest),
		Dynamic:          make(DynamicManifest),
	}
}

// Paths lists the manifest output paths in emission order.
func Paths() []string {
	return []string{ClientReferenceManifestPath, PagesManifestPath, BuildManifestPath, DynamicManifestPath}
}

// Documents returns the manifests with their output paths, in Paths order.
func (s *Set) Documents() []output.Document {
	return []output.Document{
		{Path: ClientReferenceManifestPath, Value: s.ClientReferences},
		{Path: PagesManifestPath, Value: s.Pages},
		{Path: BuildManifestPath, Value: s.Build},
		{Path: DynamicManifestPath, Value: s.Dynamic},
	}
}
