// Package extend implements the denormalized-column extender: given a foreign key from a child
// table to a parent table, it adds a column to the child that mirrors one of the parent's columns,
// and wires up the trigger pair that keeps the copy in sync in both directions -- forward on
// child insert/update, and cascaded back out to every child row when the parent's column changes.
//
// Grounded on original_source/pyrseas/extend/denorm.py's ExtCopyDenormColumn: add_trigger_func
// creates one trigger+function per direction (copy_denorm on the child, copy_cascade on the
// parent), substituting the same eight placeholders denorm.py's trans_tbl computes from the
// foreign key. This package renders those two function bodies directly instead of building a
// generic template-substitution engine, since denorm.py only ever has these two bodies.
package extend

import "strings"

// copyDenormSource is copy_denorm: fired BEFORE INSERT OR UPDATE on the child table, it pulls the
// current parent value across the foreign key into the new row.
const copyDenormSource = "BEGIN\n" +
" SELECT {{parent_column}} INTO NEW.{{child_column}}\n" +
" FROM {{parent_schema}}.{{parent_table}}\n" +
" WHERE {{parent_key}} = NEW.{{child_fkey}};\n" +
" RETURN NEW;\n" +
"END;"

// copyCascadeSource is copy_cascade: fired AFTER UPDATE on the parent table, it pushes a changed
// value out to every child row referencing it.
const copyCascadeSource = "BEGIN\n" +
" UPDATE {{child_schema}}.{{child_table}}\n" +
" SET {{child_column}} = NEW.{{parent_column}}\n" +
" WHERE {{child_fkey}} = NEW.{{parent_key}};\n" +
" RETURN NEW;\n" +
"END;"

// translation holds denorm.py's eight trans_tbl entries for one copy-denorm column.
type translation struct {
	parentSchema, parentTable, parentColumn, parentKey string
	childSchema, childTable, childColumn, childFKey string
}

func (tr translation) replacer() *strings.Replacer {
	return strings.NewReplacer(
		"{{parent_schema}}", tr.parentSchema,
		"{{parent_table}}", tr.parentTable,
		"{{parent_column}}", tr.parentColumn,
		"{{parent_key}}", tr.parentKey,
		"{{child_schema}}", tr.childSchema,
		"{{child_table}}", tr.childTable,
		"{{child_column}}", tr.childColumn,
		"{{child_fkey}}", tr.childFKey,
	)
}

func (tr translation) copyDenormFunctionName() string {
	return "copy_denorm_" + tr.childTable + "_" + tr.childColumn
}

func (tr translation) copyCascadeFunctionName() string {
	return "copy_cascade_" + tr.parentTable + "_" + tr.childTable + "_" + tr.childColumn
}
