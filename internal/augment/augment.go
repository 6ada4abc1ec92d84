package augment

import (
	"fmt"
	"strings"

	"github.com/dbsync/dbsync/internal/model"
)

// Spec names, for each table to augment, which Template to apply. Table keys are
// "schema.table", matching model.Table's SchemaQualifiedName.QualifiedSQL() minus the quoting.
type Spec struct {
	Tables map[string]string
}

// Apply returns a copy of m with every table named in spec augmented per its named Template:
// missing columns appended, and if the template carries a trigger, the trigger (and its
// function, and the function's language, if not already present) created alongside it.
// Column/trigger/function names that already exist on the table are left untouched, so Apply is
// safe to run repeatedly.
func Apply(m model.Model, spec Spec) (model.Model, error) {
	for tableKey, templateName := range spec.Tables {
		schema, name, ok := splitTableKey(tableKey)
		if !ok {
			return model.Model{}, fmt.Errorf("augment: invalid table key %q, want \"schema.table\"", tableKey)
		}
		tmpl, ok := Lookup(templateName)
		if !ok {
			return model.Model{}, fmt.Errorf("augment: unknown template %q for table %q", templateName, tableKey)
		}
		table, ok := m.FindTable(schema, name)
		if !ok {
			return model.Model{}, fmt.Errorf("augment: table %q not found", tableKey)
		}

		table = applyColumns(table, tmpl)

		if tmpl.Function != nil && !hasFunction(m, schema, tmpl.Function.Name) {
			m = addFunction(m, schema, *tmpl.Function)
		}
		if tmpl.Trigger != nil {
			table = applyTrigger(table, *tmpl.Trigger)
		}

		m = m.ReplaceTable(table)
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

func applyColumns(table model.Table, tmpl Template) model.Table {
	existing := make(map[string]bool, len(table.Columns))
	for _, c := range table.Columns {
		existing[c.Name] = true
	}
	for _, colName := range tmpl.Columns {
		if existing[colName] {
			continue
		}
		proto, ok := columnCatalog[colName]
		if !ok {
			continue
		}
		table.Columns = append(table.Columns, proto.toColumn())
	}
	return table
}

func applyTrigger(table model.Table, proto TriggerPrototype) model.Table {
	triggerName := substituteTableName(proto.NamePattern, table.Name)
	for _, tr := range table.Triggers {
		if tr.Name == triggerName {
			return table
		}
	}

	owning := model.SchemaQualifiedName{SchemaName: table.SchemaName, Name: table.Name}
	function := model.SchemaQualifiedName{SchemaName: table.SchemaName, Name: proto.Procedure}

	trigger := model.Trigger{
		Name: triggerName,
		OwningTable: owning,
		Function: function,
		Timing: proto.Timing,
		Events: proto.Events,
		Level: proto.Level,
		GetTriggerDefStmt: triggerDefStmt(triggerName, owning, function, proto),
	}
	table.Triggers = append(table.Triggers, trigger)
	return table
}

// triggerDefStmt builds the CREATE TRIGGER DDL by hand, in the same shape pg_get_triggerdef
// would report for this trigger, since a synthetic trigger has no catalog row to read it from.
func triggerDefStmt(name string, owning, function model.SchemaQualifiedName, proto TriggerPrototype) string {
	return fmt.Sprintf("CREATE TRIGGER %s %s %s ON %s FOR EACH %s EXECUTE FUNCTION %s()",
		model.EscapeIdentifier(name), proto.Timing, strings.Join(proto.Events, " OR "),
		owning.QualifiedSQL(), proto.Level, function.QualifiedSQL())
}

// substituteTableName implements trigger.py's "{{table_name}}" placeholder, single-pass
// left-to-right via strings.Replace rather than text/template -- the only substitution this
// package ever needs is one literal token, so pulling in a template engine for it would be
// over-engineering.
func substituteTableName(pattern, tableName string) string {
	return strings.Replace(pattern, "{{table_name}}", tableName, -1)
}

func hasFunction(m model.Model, schema, name string) bool {
	for _, f := range m.Functions {
		if f.SchemaName == schema && f.Name == name {
			return true
		}
	}
	return false
}

func addFunction(m model.Model, schema string, proto FunctionPrototype) model.Model {
	m.Functions = append(m.Functions, proto.toFunction(schema))
	if !hasLanguage(m, proto.Language) {
		m.Languages = append(m.Languages, model.Language{Name: proto.Language, IsTrusted: true})
	}
	return m
}

func hasLanguage(m model.Model, name string) bool {
	for _, l := range m.Languages {
		if l.Name == name {
			return true
		}
	}
	return false
}
