package clientref

import (
	"github.com/opmodel/refgraph/internal/core"
	"github.com/opmodel/refgraph/internal/marker"
	"github.com/opmodel/refgraph/internal/output"
)

// Graph is the result of a discovery walk.
type Graph struct {
	// References lists every boundary occurrence in discovery order. A
	// boundary reached from two routes appears once per route.
	References []Reference

	// Types holds the distinct boundaries.
	Types *TypeSet

	// Dynamic lists the distinct lazy-load entries in discovery order.
	Dynamic []*marker.DynamicEntry
}

// Discover walks the graph from roots depth-first in reference order.
func Discover(roots []core.Node) *Graph {
	g := &Graph{Types: NewTypeSet()}
	w := walker{
		graph:   g,
		visited: make(map[string]bool),
		dynamic: make(map[string]bool),
	}
	for _, root := range roots {
		w.visit(root, nil)
	}
	output.Debug("discovered client references",
		"references", len(g.References),
		"types", g.Types.Len(),
		"dynamic", len(g.Dynamic))
	return g
}

type walker struct {
	graph   *Graph
	visited map[string]bool
	dynamic map[string]bool
}

func (w *walker) visit(n core.Node, sc *marker.ServerComponent) {
	if s, ok := n.(*marker.ServerComponent); ok {
		sc = s
	}

	// Nodes are visited once per attributed route.
	key := n.Ident().Key()
	if sc != nil {
		key = sc.Ident().Key() + "|" + key
	}
	if w.visited[key] {
		return
	}
	w.visited[key] = true

	switch m := n.(type) {
	case *marker.EcmascriptClientReference:
		w.record(EcmascriptType(m), sc)
		return
	case *marker.CssClientReference:
		w.record(CssType(m), sc)
		return
	case *marker.DynamicEntry:
		if k := m.Ident().Key(); !w.dynamic[k] {
			w.dynamic[k] = true
			w.graph.Dynamic = append(w.graph.Dynamic, m)
		}
		return
	}

	for _, ref := range n.References() {
		w.visit(ref.Target, sc)
	}
}

func (w *walker) record(t Type, sc *marker.ServerComponent) {
	w.graph.Types.Add(t)
	w.graph.References = append(w.graph.References, Reference{ServerComponent: sc, Type: t})
}
