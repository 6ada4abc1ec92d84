package model

import "sort"

// Model is the complete in-memory representation of a database schema. It is
// immutable once constructed: the Catalog Reader, the YAML loader, and
// the Augmenter all produce a fresh Model rather than mutating one in place.
type Model struct {
	NamedSchemas []NamedSchema
	Extensions []Extension
	Languages []Language
	Collations []Collation
	Conversions []Conversion
	Types []Type
	Tables []Table
	Views []View
	MaterializedViews []MaterializedView
	Sequences []Sequence
	Functions []Function
	Aggregates []Aggregate
	Operators []Operator
	OperatorClasses []OperatorClass
	OperatorFamilies []OperatorFamily
	EventTriggers []EventTrigger
	Casts []Cast
	TSParsers []TSParser
	TSDictionaries []TSDictionary
	TSTemplates []TSTemplate
	TSConfigs []TSConfig
	FDWs []FDW
	ForeignServers []ForeignServer
	UserMappings []UserMapping
	ForeignTables []ForeignTable
}

// ByKey indexes every top-level object in the model by its Key(), for O(1) lookups during linking
// and diffing.
func (m Model) ByKey() map[string]Object {
	out := make(map[string]Object)
	for _, o := range m.AllObjects() {
		out[o.Key().String()] = o
	}
	return out
}

// AllObjects returns every top-level object in the model, i.e. every object that is a direct
// member of Model's fields. Objects nested inside a Table (columns, constraints, indexes,
// triggers, rules) are not included; callers that need those should walk Table.Columns etc.
// directly, since those are diffed in the context of their owning table.
func (m Model) AllObjects() []Object {
	var out []Object
	for _, o := range m.NamedSchemas {
		out = append(out, o)
	}
	for _, o := range m.Extensions {
		out = append(out, o)
	}
	for _, o := range m.Languages {
		out = append(out, o)
	}
	for _, o := range m.Collations {
		out = append(out, o)
	}
	for _, o := range m.Conversions {
		out = append(out, o)
	}
	for _, o := range m.Types {
		out = append(out, o)
	}
	for _, o := range m.Tables {
		out = append(out, o)
	}
	for _, o := range m.Views {
		out = append(out, o)
	}
	for _, o := range m.MaterializedViews {
		out = append(out, o)
	}
	for _, o := range m.Sequences {
		out = append(out, o)
	}
	for _, o := range m.Functions {
		out = append(out, o)
	}
	for _, o := range m.Aggregates {
		out = append(out, o)
	}
	for _, o := range m.Operators {
		out = append(out, o)
	}
	for _, o := range m.OperatorClasses {
		out = append(out, o)
	}
	for _, o := range m.OperatorFamilies {
		out = append(out, o)
	}
	for _, o := range m.EventTriggers {
		out = append(out, o)
	}
	for _, o := range m.Casts {
		out = append(out, o)
	}
	for _, o := range m.TSParsers {
		out = append(out, o)
	}
	for _, o := range m.TSDictionaries {
		out = append(out, o)
	}
	for _, o := range m.TSTemplates {
		out = append(out, o)
	}
	for _, o := range m.TSConfigs {
		out = append(out, o)
	}
	for _, o := range m.FDWs {
		out = append(out, o)
	}
	for _, o := range m.ForeignServers {
		out = append(out, o)
	}
	for _, o := range m.UserMappings {
		out = append(out, o)
	}
	for _, o := range m.ForeignTables {
		out = append(out, o)
	}
	return out
}

// FindTable returns the table with the given schema-qualified name, if present.
func (m Model) FindTable(schema, name string) (Table, bool) {
	for _, t := range m.Tables {
		if t.SchemaName == schema && t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// ReplaceTable returns a copy of m with the table matching t's key replaced (or appended, if
// absent). Used by the Augmenter to inject columns/triggers into a desired model without mutating
// the original.
func (m Model) ReplaceTable(t Table) Model {
	out := m
	out.Tables = append([]Table{}, m.Tables...)
	for i, existing := range out.Tables {
		if existing.SchemaName == t.SchemaName && existing.Name == t.Name {
			out.Tables[i] = t
			return out
		}
	}
	out.Tables = append(out.Tables, t)
	return out
}

func sortByName[S Object](vals []S) []S {
	out := make([]S, len(vals))
	copy(out, vals)
	sort.Slice(out, func(i, j int) bool {
			return out[i].Key().String() < out[j].Key().String()
	})
	return out
}
