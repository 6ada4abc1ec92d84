package model

import "sort"

// Normalize returns a copy of m with every collection sorted into the deterministic order
// described by ("schemas sorted by name; within each schema, sub-objects sorted by
// (kind, name); within a table, columns preserve catalog order while all other child collections
// are sorted"). It is used for hashing and for round-trip/idempotence testing.
func (m Model) Normalize() Model {
	m.NamedSchemas = sortByName(m.NamedSchemas)
	m.Extensions = sortByName(m.Extensions)
	m.Languages = sortByName(m.Languages)
	m.Collations = sortByName(m.Collations)
	m.Conversions = sortByName(m.Conversions)
	m.Types = sortByName(m.Types)
	m.Sequences = sortByName(m.Sequences)
	m.Functions = sortByName(m.Functions)
	m.Aggregates = sortByName(m.Aggregates)
	m.Operators = sortByName(m.Operators)
	m.OperatorClasses = sortByName(m.OperatorClasses)
	m.OperatorFamilies = sortByName(m.OperatorFamilies)
	m.EventTriggers = sortByName(m.EventTriggers)
	m.Casts = sortByName(m.Casts)
	m.TSParsers = sortByName(m.TSParsers)
	m.TSDictionaries = sortByName(m.TSDictionaries)
	m.TSTemplates = sortByName(m.TSTemplates)
	m.TSConfigs = sortByName(m.TSConfigs)
	m.FDWs = sortByName(m.FDWs)
	m.ForeignServers = sortByName(m.ForeignServers)
	m.UserMappings = sortByName(m.UserMappings)
	m.ForeignTables = sortByName(m.ForeignTables)

	tables := make([]Table, len(m.Tables))
	for i, t := range sortByName(m.Tables) {
		tables[i] = normalizeTable(t)
	}
	m.Tables = tables

	views := make([]View, len(m.Views))
	for i, v := range sortByName(m.Views) {
		v.TableDependencies = sortTableDeps(v.TableDependencies)
		views[i] = v
	}
	m.Views = views

	matviews := make([]MaterializedView, len(m.MaterializedViews))
	for i, v := range sortByName(m.MaterializedViews) {
		v.TableDependencies = sortTableDeps(v.TableDependencies)
		v.Indexes = sortByKeyStr(v.Indexes, func(idx Index) string { return idx.Name })
		matviews[i] = v
	}
	m.MaterializedViews = matviews

	return m
}

func normalizeTable(t Table) Table {
	// Column order is NOT re-sorted: it is derived from, and significant in, the catalog
	//
	t.CheckConstraints = sortByKeyStr(t.CheckConstraints, func(c CheckConstraint) string { return c.Name })
	t.UniqueKeys = sortByKeyStr(t.UniqueKeys, func(u UniqueKey) string { return u.Name })
	t.ForeignKeys = sortByKeyStr(t.ForeignKeys, func(f ForeignKeyConstraint) string { return f.Name })
	t.Indexes = sortByKeyStr(t.Indexes, func(i Index) string { return i.Name })
	t.Triggers = sortByKeyStr(t.Triggers, func(tr Trigger) string { return tr.Name })
	t.Rules = sortByKeyStr(t.Rules, func(r Rule) string { return r.Name })
	return t
}

func sortTableDeps(deps []TableDependency) []TableDependency {
	out := append([]TableDependency{}, deps...)
	sort.Slice(out, func(i, j int) bool {
			return out[i].GetName() < out[j].GetName()
	})
	return out
}

func sortByKeyStr[S any](vals []S, getKey func(S) string) []S {
	out := make([]S, len(vals))
	copy(out, vals)
	sort.Slice(out, func(i, j int) bool {
			return getKey(out[i]) < getKey(out[j])
	})
	return out
}
