// Package augment implements the Augmenter: injecting named, pre-defined column,
// trigger and function prototypes into tables listed in an augmenter spec, without needing the
// user to hand-write the SQL every time they want an audit trail on a table.
//
// Grounded on original_source/pyrseas/augment/{column,function,trigger,audit}.py: CFG_COLUMNS,
// CFG_FUNCTIONS/CFG_FUNC_TEMPLATES and CFG_AUDIT_COLUMNS are the exact prototypes carried over
// here (renamed from Python dict literals to Go values); modified_only and full are supplements
// built from the same catalog, since the original only ever wires together "default" and
// "created_date_only".
package augment

import "github.com/dbsync/dbsync/internal/model"

// ColumnPrototype is one entry of CFG_COLUMNS: a column definition that can be appended to any
// table named in an augmenter spec.
type ColumnPrototype struct {
	Name string
	Type string
	NotNull bool
	HasDflt bool
	Default string
}

// columnCatalog mirrors column.py's CFG_COLUMNS verbatim.
var columnCatalog = map[string]ColumnPrototype{
	"created_by_user": {
		Name: "created_by_user", Type: "character varying(63)", NotNull: true,
		HasDflt: true, Default: "CURRENT_USER",
	},
	"created_by_ip_addr": {
		Name: "created_by_ip_addr", Type: "inet",
	},
	"created_date": {
		Name: "created_date", Type: "date", NotNull: true,
		HasDflt: true, Default: "CURRENT_DATE",
	},
	"created_timestamp": {
		Name: "created_timestamp", Type: "timestamp with time zone", NotNull: true,
		HasDflt: true, Default: "CURRENT_TIMESTAMP",
	},
	"modified_by_ip_addr": {
		Name: "modified_by_ip_addr", Type: "inet",
	},
	"modified_by_user": {
		Name: "modified_by_user", Type: "character varying(63)", NotNull: true,
		HasDflt: true, Default: "CURRENT_USER",
	},
	"modified_timestamp": {
		Name: "modified_timestamp", Type: "timestamp with time zone", NotNull: true,
		HasDflt: true, Default: "CURRENT_TIMESTAMP",
	},
}

// toColumn renders a prototype as a model.Column ready to append to a table.
func (p ColumnPrototype) toColumn() model.Column {
	c := model.Column{Name: p.Name, Type: p.Type, IsNullable: !p.NotNull}
	if p.HasDflt {
		c.Default = p.Default
	}
	return c
}

// FunctionPrototype is a schema-unqualified trigger function that gets created once per schema
// it's used in, grounded on function.py's CFG_FUNCTIONS/CFG_FUNC_TEMPLATES.
type FunctionPrototype struct {
	Name string
	Language string
	Returns string
	SecurityDefiner bool
	Source string
}

// functionAudDflt is function.py's aud_dflt(): a plpgsql trigger function that stamps
// modified_by_user/modified_timestamp on every row update.
var functionAudDflt = FunctionPrototype{
	Name: "aud_dflt",
	Language: "plpgsql",
	Returns: "trigger",
	SecurityDefiner: true,
	Source: "BEGIN\n" +
	" NEW.modified_by_user := CURRENT_USER;\n" +
	" NEW.modified_timestamp := CURRENT_TIMESTAMP;\n" +
	" RETURN NEW;\n" +
	"END;",
}

func (p FunctionPrototype) toFunction(schema string) model.Function {
	return model.Function{
		SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: p.Name},
		ReturnType: p.Returns,
		Language: p.Language,
		FunctionDef: p.Source,
		Volatility: "VOLATILE",
		IsSecurityDefiner: p.SecurityDefiner,
	}
}

// TriggerPrototype is a BEFORE/AFTER trigger bound to a function, with "{{table_name}}"
// substituted into its name at apply time, grounded on trigger.py's CfgTrigger.apply.
type TriggerPrototype struct {
	NamePattern string
	Procedure string
	Timing string
	Events []string
	Level string
}

var triggerAuditColumnsDefault = TriggerPrototype{
	NamePattern: "audit_columns_default_{{table_name}}",
	Procedure: "aud_dflt",
	Timing: "BEFORE",
	Events: []string{"INSERT", "UPDATE"},
	Level: "ROW",
}

// Template names a reusable bundle of columns plus, optionally, a trigger and the function it
// calls. "default" and "created_date_only" are audit.py's CFG_AUDIT_COLUMNS entries verbatim;
// "modified_only" and "full" are supplements assembled from the same column catalog (see
// DESIGN.md's Open Question decision on this package).
type Template struct {
	Name string
	Columns []string
	Trigger *TriggerPrototype
	Function *FunctionPrototype
}

var templates = map[string]Template{
	"default": {
		Name: "default",
		Columns: []string{"modified_by_user", "modified_timestamp"},
		Trigger: &triggerAuditColumnsDefault,
		Function: &functionAudDflt,
	},
	"created_date_only": {
		Name: "created_date_only",
		Columns: []string{"created_date"},
	},
	"modified_only": {
		Name: "modified_only",
		Columns: []string{"modified_by_user", "modified_timestamp"},
	},
	"full": {
		Name: "full",
		Columns: []string{
			"created_by_user", "created_by_ip_addr", "created_date", "created_timestamp",
			"modified_by_ip_addr", "modified_by_user", "modified_timestamp",
		},
		Trigger: &triggerAuditColumnsDefault,
		Function: &functionAudDflt,
	},
}

// Lookup returns the named template, grounded on audit.py's cfg_section(config, 'audit_columns').
func Lookup(name string) (Template, bool) {
	t, ok := templates[name]
	return t, ok
}
