// Package linker implements the Dependency Linker: a single pass over a loaded
// Model that inserts "A requires B" edges into a generic internal/graph.Graph, the same graph type
// internal/scheduler reuses for the SQL emission order.
package linker

import (
	"github.com/dbsync/dbsync/internal/graph"
	"github.com/dbsync/dbsync/internal/model"
)

// Vertex wraps a model.Key so model.Object values of any kind can sit in a single graph.Graph.
type Vertex struct {
	Key model.Key
}

func (v Vertex) GetId() string { return v.Key.String() }

// Graph is the dependency graph produced by Link: vertex IDs are model.Key.String() values, an
// edge A->B means "A requires B to exist before A can be created, and B must not be dropped while
// A still exists."
type Graph = graph.Graph[Vertex]

// Link walks m once, adding a vertex for every object and the edges enumerates. It
// never mutates m; callers needing per-object dependency lists can read them back off the returned
// graph with Dependencies.
func Link(m *model.Model) *Graph {
	g := graph.NewGraph[Vertex]()

	for _, k := range allKeys(m) {
		g.AddVertex(Vertex{Key: k})
	}

	linkTables(g, m)
	linkColumnsTypes(g, m)
	linkForeignKeys(g, m)
	linkIndexes(g, m)
	linkViews(g, m)
	linkTriggers(g, m)
	linkFunctions(g, m)
	linkAggregates(g, m)
	linkOperators(g, m)
	linkRules(g, m)
	linkExtensions(g, m)
	linkDomains(g, m)
	linkSequences(g, m)
	linkForeignTables(g, m)

	return g
}

// Requires reports whether from has a direct "requires" edge to to in g, for callers (the
// scheduler) that need to ask the dependency graph about one pair at a time rather than walking it.
func Requires(g *Graph, from, to model.Key) bool {
	return g.HasEdge(from.String(), to.String())
}

// addEdge inserts "from requires to" if to actually exists in the model (builtin Postgres types,
// e.g. "integer", are never modeled as vertices and are silently skipped -- they always exist).
func addEdge(g *Graph, from, to model.Key) {
	toID := to.String()
	if !g.HasVertexWithId(toID) {
		return
	}
	fromID := from.String()
	if !g.HasVertexWithId(fromID) {
		return
	}
	_ = g.AddEdge(fromID, toID)
}

func allKeys(m *model.Model) []model.Key {
	var keys []model.Key
	for _, s := range m.NamedSchemas {
		keys = append(keys, s.Key())
	}
	for _, o := range m.Extensions {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Languages {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Collations {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Conversions {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Types {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Tables {
		keys = append(keys, o.Key())
		for _, idx := range o.Indexes {
			keys = append(keys, idx.Key())
		}
		for _, trg := range o.Triggers {
			keys = append(keys, trg.Key())
		}
		for _, rule := range o.Rules {
			keys = append(keys, rule.Key())
		}
	}
	for _, o := range m.Views {
		keys = append(keys, o.Key())
	}
	for _, o := range m.MaterializedViews {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Sequences {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Functions {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Aggregates {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Operators {
		keys = append(keys, o.Key())
	}
	for _, o := range m.OperatorClasses {
		keys = append(keys, o.Key())
	}
	for _, o := range m.OperatorFamilies {
		keys = append(keys, o.Key())
	}
	for _, o := range m.EventTriggers {
		keys = append(keys, o.Key())
	}
	for _, o := range m.Casts {
		keys = append(keys, o.Key())
	}
	for _, o := range m.TSParsers {
		keys = append(keys, o.Key())
	}
	for _, o := range m.TSDictionaries {
		keys = append(keys, o.Key())
	}
	for _, o := range m.TSTemplates {
		keys = append(keys, o.Key())
	}
	for _, o := range m.TSConfigs {
		keys = append(keys, o.Key())
	}
	for _, o := range m.FDWs {
		keys = append(keys, o.Key())
	}
	for _, o := range m.ForeignServers {
		keys = append(keys, o.Key())
	}
	for _, o := range m.UserMappings {
		keys = append(keys, o.Key())
	}
	for _, o := range m.ForeignTables {
		keys = append(keys, o.Key())
	}
	return keys
}

func typeKey(schema, name string) model.Key {
	return model.Key{"type", schema, name}
}

func tableKey(schema, name string) model.Key {
	return model.Key{"table", schema, name}
}

func functionKey(schema, name string, argTypes []string) model.Key {
	return model.Key{"function", schema, name, joinArgTypes(argTypes)}
}

// joinArgTypes mirrors model.joinTypes (unexported in that package) so function/aggregate keys
// built here match the ones model.Function.Key/model.Aggregate.Key produce.
func joinArgTypes(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}
