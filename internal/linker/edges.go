package linker

import "github.com/dbsync/dbsync/internal/model"

// linkTables adds table -> schema edges (and table -> tablespace, once tablespace objects exist
// in the model; until then the schema edge alone anchors the table in its namespace).
func linkTables(g *Graph, m *model.Model) {
	for _, t := range m.Tables {
		addEdge(g, t.Key(), model.Key{"schema", t.SchemaName})
		if t.ParentTable != nil {
			addEdge(g, t.Key(), tableKey(t.ParentTable.SchemaName, t.ParentTable.Name))
		}
		for _, inh := range t.Inherits {
			addEdge(g, t.Key(), tableKey(inh.SchemaName, inh.Name))
		}
	}
}

// linkColumnsTypes adds column-type edges: a table depends on every user-defined type or domain
// used by one of its columns.
func linkColumnsTypes(g *Graph, m *model.Model) {
	for _, t := range m.Tables {
		for _, c := range t.Columns {
			if schema, name, ok := resolveUserType(m, c.Type); ok {
				addEdge(g, t.Key(), typeKey(schema, name))
			}
		}
	}
	for _, ft := range m.ForeignTables {
		for _, c := range ft.Columns {
			if schema, name, ok := resolveUserType(m, c.Type); ok {
				addEdge(g, ft.Key(), typeKey(schema, name))
			}
		}
	}
}

// resolveUserType reports whether typeName (as stored on a Column, already schema-qualified or
// bare) names one of the model's own types/domains, so builtin types (integer, text,...) are
// silently skipped rather than producing a dangling edge.
func resolveUserType(m *model.Model, typeName string) (schema, name string, ok bool) {
	for _, t := range m.Types {
		if t.Name == typeName || t.SchemaName+"."+t.Name == typeName {
			return t.SchemaName, t.Name, true
		}
	}
	return "", "", false
}

// linkForeignKeys adds foreign key -> referenced table edges.
func linkForeignKeys(g *Graph, m *model.Model) {
	for _, t := range m.Tables {
		for _, fk := range t.ForeignKeys {
			addEdge(g, t.Key(), tableKey(fk.RefSchema, fk.RefTable))
		}
	}
}

// linkIndexes adds index -> table edges. Expression indexes additionally depend on whatever
// functions their expressions call, but we don't re-parse index expressions, so that half of the edge source is a
// documented gap rather than a guess.
func linkIndexes(g *Graph, m *model.Model) {
	for _, t := range m.Tables {
		for _, idx := range t.Indexes {
			addEdge(g, model.Key{"index", idx.OwningTable.SchemaName, idx.Name}, t.Key())
		}
	}
}

// linkViews adds view/matview -> underlying table edges, sourced from the catalog's pg_depend scan
// (internal/catalog.fetchRelationDependencies) rather than re-parsing the view's SQL.
func linkViews(g *Graph, m *model.Model) {
	for _, v := range m.Views {
		for _, dep := range v.TableDependencies {
			addEdge(g, v.Key(), tableKey(dep.SchemaName, dep.Name))
		}
	}
	for _, v := range m.MaterializedViews {
		for _, dep := range v.TableDependencies {
			addEdge(g, v.Key(), tableKey(dep.SchemaName, dep.Name))
		}
	}
}

// linkTriggers adds trigger -> table and trigger -> function edges.
func linkTriggers(g *Graph, m *model.Model) {
	for _, t := range m.Tables {
		for _, trg := range t.Triggers {
			trgKey := model.Key{"trigger", trg.OwningTable.SchemaName, trg.OwningTable.Name, trg.Name}
			addEdge(g, trgKey, t.Key())
			addEdge(g, trgKey, functionKeyNoArgs(m, trg.Function))
		}
	}
}

// functionKeyNoArgs finds the Key of the model's Function matching fn by schema-qualified name,
// disambiguating overloads is unnecessary here since triggers always bind to exactly one function.
func functionKeyNoArgs(m *model.Model, fn model.SchemaQualifiedName) model.Key {
	for _, f := range m.Functions {
		if f.SchemaName == fn.SchemaName && f.Name == fn.Name {
			return f.Key()
		}
	}
	return functionKey(fn.SchemaName, fn.Name, nil)
}

// linkFunctions adds function -> argument/return type and function -> language edges.
func linkFunctions(g *Graph, m *model.Model) {
	for _, f := range m.Functions {
		addEdge(g, f.Key(), model.Key{"language", f.Language})
		if schema, name, ok := resolveUserType(m, f.ReturnType); ok {
			addEdge(g, f.Key(), typeKey(schema, name))
		}
		for _, arg := range f.ArgTypes {
			if schema, name, ok := resolveUserType(m, arg); ok {
				addEdge(g, f.Key(), typeKey(schema, name))
			}
		}
	}
}

// linkAggregates adds aggregate -> state/final/combine function and aggregate -> state type edges.
func linkAggregates(g *Graph, m *model.Model) {
	for _, a := range m.Aggregates {
		addEdge(g, a.Key(), functionKeyNoArgs(m, a.StateFunction))
		if !a.FinalFunction.IsEmpty() {
			addEdge(g, a.Key(), functionKeyNoArgs(m, a.FinalFunction))
		}
		if !a.CombineFunction.IsEmpty() {
			addEdge(g, a.Key(), functionKeyNoArgs(m, a.CombineFunction))
		}
		if schema, name, ok := resolveUserType(m, a.StateType); ok {
			addEdge(g, a.Key(), typeKey(schema, name))
		}
	}
}

// linkOperators adds operator -> operand type and operator -> underlying function edges.
func linkOperators(g *Graph, m *model.Model) {
	for _, o := range m.Operators {
		addEdge(g, o.Key(), functionKeyNoArgs(m, o.Function))
		if schema, name, ok := resolveUserType(m, o.LeftType); ok {
			addEdge(g, o.Key(), typeKey(schema, name))
		}
		if schema, name, ok := resolveUserType(m, o.RightType); ok {
			addEdge(g, o.Key(), typeKey(schema, name))
		}
	}
}

// linkRules adds rule -> owning table edges. Relations referenced inside the rule's definition are
// not linked.
func linkRules(g *Graph, m *model.Model) {
	for _, t := range m.Tables {
		for _, rule := range t.Rules {
			addEdge(g, model.Key{"rule", rule.OwningTable.SchemaName, rule.OwningTable.Name, rule.Name}, t.Key())
		}
	}
}

// linkExtensions records which objects an extension implicitly provides. The catalog reader
// already excludes extension-owned rows from the model entirely, so by the time the model reaches the linker there is nothing left to exclude --
// this function is a no-op placeholder documenting that the exclusion already happened upstream.
func linkExtensions(_ *Graph, _ *model.Model) {}

// linkDomains adds domain -> base type edges. Functions called by the domain's constraint checks
// are not linked.
func linkDomains(g *Graph, m *model.Model) {
	for _, t := range m.Types {
		if t.TKind != model.TypeKindDomain {
			continue
		}
		if schema, name, ok := resolveUserType(m, t.BaseType); ok {
			addEdge(g, t.Key(), typeKey(schema, name))
		}
	}
}

// linkSequences adds owned-sequence -> owning table edges (a sequence nested under a column via
// Owner_ is not modeled as a separate top-level vertex by yamlmap, but standalone sequences still
// need their OWNED BY edge recorded for scheduling).
func linkSequences(g *Graph, m *model.Model) {
	for _, s := range m.Sequences {
		if s.Owner_ != nil {
			addEdge(g, s.Key(), tableKey(s.Owner_.TableName.SchemaName, s.Owner_.TableName.Name))
		}
	}
}

// linkForeignTables adds foreign table -> server edges; a foreign table's column-type edges are
// added by linkColumnsTypes.
func linkForeignTables(g *Graph, m *model.Model) {
	for _, ft := range m.ForeignTables {
		addEdge(g, ft.Key(), model.Key{"foreign_server", ft.ServerName})
	}
}
