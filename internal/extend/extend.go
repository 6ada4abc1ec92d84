package extend

import (
	"fmt"
	"strings"

	"github.com/dbsync/dbsync/internal/model"
)

// ColumnSpec names one denormalized column to maintain on a child table: Name is the column to
// add (or that already exists) on the child, Copy is the column to mirror on the table the named
// ForeignKey references, and Type overrides the copied column's type if the two sides intentionally
// differ (left empty, the parent column's type is reused verbatim).
type ColumnSpec struct {
	Name string
	Copy string
	Type string
	ForeignKey string
}

// TableSpec is the list of denormalized columns to maintain on one child table.
type TableSpec struct {
	Columns []ColumnSpec
}

// Spec names, for each child table, the denormalized columns to add and keep in sync. Table keys
// are "schema.table", matching internal/augment's Spec convention.
type Spec struct {
	Tables map[string]TableSpec
}

// Apply returns a copy of m with every denormalized column spec.Tables names applied: the column
// is appended to the child table if missing, and the copy_denorm/copy_cascade trigger-function
// pairs are created on the child and parent tables respectively if not already present. Applying
// the same spec twice is a no-op the second time, the same guarantee internal/augment.Apply gives.
func Apply(m model.Model, spec Spec) (model.Model, error) {
	for tableKey, tableSpec := range spec.Tables {
		childSchema, childName, ok := splitTableKey(tableKey)
		if !ok {
			return model.Model{}, fmt.Errorf("extend: invalid table key %q, want \"schema.table\"", tableKey)
		}
		child, ok := m.FindTable(childSchema, childName)
		if !ok {
			return model.Model{}, fmt.Errorf("extend: table %q not found", tableKey)
		}

		for _, colSpec := range tableSpec.Columns {
			fk, ok := findForeignKey(child, colSpec.ForeignKey)
			if !ok {
				return model.Model{}, fmt.Errorf("extend: table %q has no foreign key %q", tableKey, colSpec.ForeignKey)
			}
			parent, ok := m.FindTable(fk.RefSchema, fk.RefTable)
			if !ok {
				return model.Model{}, fmt.Errorf("extend: foreign key %q references missing table %s.%s", fk.Name, fk.RefSchema, fk.RefTable)
			}
			parentCol, ok := findColumn(parent, colSpec.Copy)
			if !ok {
				return model.Model{}, fmt.Errorf("extend: denorm column %q: copy column %q not found on %s.%s", colSpec.Name, colSpec.Copy, parent.SchemaName, parent.Name)
			}
			if len(fk.Columns) == 0 || len(fk.RefColumns) == 0 {
				return model.Model{}, fmt.Errorf("extend: foreign key %q has no key columns", fk.Name)
			}

			colType := colSpec.Type
			if colType == "" {
				colType = parentCol.Type
			}
			child = applyDenormColumn(child, colSpec.Name, colType, parentCol.IsNullable)

			tr := translation{
				parentSchema: parent.SchemaName, parentTable: parent.Name,
				parentColumn: colSpec.Copy, parentKey: fk.RefColumns[0],
				childSchema: child.SchemaName, childTable: child.Name,
				childColumn: colSpec.Name, childFKey: fk.Columns[0],
			}

			child = applyCopyDenormTrigger(child, tr)
			m = applyCopyDenormFunction(m, child.SchemaName, tr)

			parent = applyCopyCascadeTrigger(parent, tr)
			m = applyCopyCascadeFunction(m, parent.SchemaName, tr)
			m = m.ReplaceTable(parent)
		}

		m = m.ReplaceTable(child)
	}
	return m, nil
}

func splitTableKey(key string) (schema, name string, ok bool) {
	idx := strings.IndexByte(key, '.')
	if idx < 0 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

func findForeignKey(t model.Table, name string) (model.ForeignKeyConstraint, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.Name == name {
			return fk, true
		}
	}
	return model.ForeignKeyConstraint{}, false
}

func findColumn(t model.Table, name string) (model.Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return model.Column{}, false
}

func applyDenormColumn(t model.Table, name, colType string, nullable bool) model.Table {
	if _, ok := findColumn(t, name); ok {
		return t
	}
	t.Columns = append(t.Columns, model.Column{Name: name, Type: colType, IsNullable: nullable})
	return t
}

func applyCopyDenormTrigger(child model.Table, tr translation) model.Table {
	triggerName := "copy_denorm_" + child.Name + "_" + tr.childColumn
	for _, existing := range child.Triggers {
		if existing.Name == triggerName {
			return child
		}
	}
	owning := model.SchemaQualifiedName{SchemaName: child.SchemaName, Name: child.Name}
	function := model.SchemaQualifiedName{SchemaName: child.SchemaName, Name: tr.copyDenormFunctionName()}
	child.Triggers = append(child.Triggers, model.Trigger{
		Name: triggerName,
		OwningTable: owning,
		Function: function,
		Timing: "BEFORE",
		Events: []string{"INSERT", "UPDATE"},
		Level: "ROW",
		GetTriggerDefStmt: triggerDefStmt(triggerName, owning, function, "BEFORE", []string{"INSERT", "UPDATE"}, "ROW"),
	})
	return child
}

func applyCopyCascadeTrigger(parent model.Table, tr translation) model.Table {
	triggerName := "copy_cascade_" + parent.Name + "_" + tr.childTable + "_" + tr.childColumn
	for _, existing := range parent.Triggers {
		if existing.Name == triggerName {
			return parent
		}
	}
	owning := model.SchemaQualifiedName{SchemaName: parent.SchemaName, Name: parent.Name}
	function := model.SchemaQualifiedName{SchemaName: parent.SchemaName, Name: tr.copyCascadeFunctionName()}
	parent.Triggers = append(parent.Triggers, model.Trigger{
		Name: triggerName,
		OwningTable: owning,
		Function: function,
		Timing: "AFTER",
		Events: []string{"UPDATE"},
		Level: "ROW",
		GetTriggerDefStmt: triggerDefStmt(triggerName, owning, function, "AFTER", []string{"UPDATE"}, "ROW"),
	})
	return parent
}

func applyCopyDenormFunction(m model.Model, schema string, tr translation) model.Model {
	name := tr.copyDenormFunctionName()
	if hasFunction(m, schema, name) {
		return m
	}
	m.Functions = append(m.Functions, model.Function{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		ReturnType: "trigger",
		Language: "plpgsql",
		FunctionDef: tr.replacer().Replace(copyDenormSource),
		Volatility: "VOLATILE",
	})
	return addLanguageIfMissing(m, "plpgsql")
}

func applyCopyCascadeFunction(m model.Model, schema string, tr translation) model.Model {
	name := tr.copyCascadeFunctionName()
	if hasFunction(m, schema, name) {
		return m
	}
	m.Functions = append(m.Functions, model.Function{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name},
		ReturnType: "trigger",
		Language: "plpgsql",
		FunctionDef: tr.replacer().Replace(copyCascadeSource),
		Volatility: "VOLATILE",
	})
	return addLanguageIfMissing(m, "plpgsql")
}

func hasFunction(m model.Model, schema, name string) bool {
	for _, f := range m.Functions {
		if f.SchemaName == schema && f.Name == name {
			return true
		}
	}
	return false
}

func addLanguageIfMissing(m model.Model, name string) model.Model {
	for _, l := range m.Languages {
		if l.Name == name {
			return m
		}
	}
	m.Languages = append(m.Languages, model.Language{Name: name, IsTrusted: true})
	return m
}

// triggerDefStmt builds the CREATE TRIGGER DDL by hand, the same way internal/augment does for its
// synthetic triggers: a generated trigger has no catalog row for pg_get_triggerdef to report.
func triggerDefStmt(name string, owning, function model.SchemaQualifiedName, timing string, events []string, level string) string {
	return fmt.Sprintf("CREATE TRIGGER %s %s %s ON %s FOR EACH %s EXECUTE FUNCTION %s()",
		model.EscapeIdentifier(name), timing, strings.Join(events, " OR "),
		owning.QualifiedSQL(), level, function.QualifiedSQL())
}
