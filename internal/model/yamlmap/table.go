package yamlmap

import (
	"github.com/dbsync/dbsync/internal/model"
)

func tableToMap(t model.Table) map[string]any {
	out := map[string]any{}
	setIf(out, "owner", t.OwnerName)
	setIf(out, "description", t.DescrText)
	setIf(out, "tablespace", t.Tablespace)
	setMapStr(out, "options", t.Options)
	if privs := privilegesToMap(t.Privs); len(privs) > 0 {
		out["privileges"] = privs
	}
	if t.OldName != "" {
		out["oldname"] = t.OldName
	}

	if t.PartitionKeyDef != "" {
		out["partition_by"] = t.PartitionKeyDef
	}
	if t.ParentTable != nil {
		out["inherits"] = []any{map[string]any{"schema": t.ParentTable.SchemaName, "table": t.ParentTable.Name}}
		setIf(out, "partition_bound", t.PartitionBound)
	}

	if len(t.Columns) > 0 {
		var cols []any
		for _, c := range t.Columns {
			cols = append(cols, map[string]any{c.Name: columnAttrsToMap(c)})
		}
		out["columns"] = cols
	}

	if t.PrimaryKey != nil {
		out["primary_key"] = map[string]any{
			t.PrimaryKey.Name: map[string]any{"columns": strList(t.PrimaryKey.Columns)},
		}
	}

	if len(t.UniqueKeys) > 0 {
		uk := map[string]any{}
		for _, u := range t.UniqueKeys {
			uk[u.Name] = map[string]any{"columns": strList(u.Columns)}
		}
		out["unique_constraints"] = uk
	}

	if len(t.CheckConstraints) > 0 {
		ck := map[string]any{}
		for _, c := range t.CheckConstraints {
			attrs := map[string]any{"expression": c.Expression}
			if len(c.KeyColumns) > 0 {
				attrs["columns"] = strList(c.KeyColumns)
			}
			if !c.IsValid {
				attrs["is_valid"] = false
			}
			setIf(attrs, "description", c.Descr)
			ck[c.Name] = attrs
		}
		out["check_constraints"] = ck
	}

	if len(t.ForeignKeys) > 0 {
		fk := map[string]any{}
		for _, f := range t.ForeignKeys {
			attrs := map[string]any{
				"columns": strList(f.Columns),
				"references": map[string]any{
					"schema": f.RefSchema,
					"table": f.RefTable,
					"columns": strList(f.RefColumns),
				},
			}
			setIf(attrs, "on_delete", f.OnDelete)
			setIf(attrs, "on_update", f.OnUpdate)
			setIf(attrs, "description", f.Descr)
			fk[f.Name] = attrs
		}
		out["foreign_keys"] = fk
	}

	if len(t.Indexes) > 0 {
		idx := map[string]any{}
		for _, i := range t.Indexes {
			idx[i.Name] = indexAttrsToMap(i)
		}
		out["indexes"] = idx
	}

	if len(t.Triggers) > 0 {
		trg := map[string]any{}
		for _, tr := range t.Triggers {
			trg[tr.Name] = triggerAttrsToMap(tr)
		}
		out["triggers"] = trg
	}

	if len(t.Rules) > 0 {
		r := map[string]any{}
		for _, ru := range t.Rules {
			r[ru.Name] = map[string]any{
				"event": ru.Event,
				"definition": ru.Definition,
			}
		}
		out["rules"] = r
	}

	return out
}

func columnAttrsToMap(c model.Column) map[string]any {
	attrs := map[string]any{"type": c.Type}
	if !c.IsNullable {
		attrs["not_null"] = true
	}
	setIf(attrs, "default", c.Default)
	setIf(attrs, "collation", c.Collation)
	setIf(attrs, "storage", c.Storage)
	setIf(attrs, "description", c.Descr)
	if c.Statistics != nil {
		attrs["statistics"] = *c.Statistics
	}
	if c.Identity != nil {
		idAttrs := map[string]any{
			"always": c.Identity.IsAlways,
			"start": c.Identity.StartValue,
			"increment": c.Identity.Increment,
			"cycle": c.Identity.Cycle,
		}
		attrs["identity"] = idAttrs
	}
	if privs := privilegesToMap(c.Privs); len(privs) > 0 {
		attrs["privileges"] = privs
	}
	return attrs
}

func indexAttrsToMap(i model.Index) map[string]any {
	attrs := map[string]any{}
	if i.IsExpression && i.GetIndexDefStmt != "" {
		attrs["definition"] = i.GetIndexDefStmt
	} else {
		attrs["columns"] = strList(i.Columns)
	}
	if i.IsUnique {
		attrs["unique"] = true
	}
	setIf(attrs, "where", i.WhereClause)
	setIf(attrs, "access_method", i.Method)
	setIf(attrs, "tablespace", i.Tablespace)
	setIf(attrs, "description", i.Descr)
	return attrs
}

func triggerAttrsToMap(t model.Trigger) map[string]any {
	attrs := map[string]any{
		"timing": t.Timing,
		"events": strList(t.Events),
		"level": t.Level,
		"function": map[string]any{"schema": t.Function.SchemaName, "name": t.Function.Name},
	}
	setIf(attrs, "condition", t.Condition)
	if t.IsConstraint {
		attrs["constraint"] = true
	}
	setIf(attrs, "description", t.Descr)
	return attrs
}

func strList(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func tableFromMap(schema, name string, val map[string]any) model.Table {
	t := model.Table{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: schema, Name: name}}
	t.OwnerName = getStr(val, "owner")
	t.DescrText = getStr(val, "description")
	t.Tablespace = getStr(val, "tablespace")
	t.Options = getMapStr(val, "options")
	t.Privs = privilegesFromMap(val["privileges"])
	t.OldName = getStr(val, "oldname")
	t.PartitionKeyDef = getStr(val, "partition_by")
	t.PartitionBound = getStr(val, "partition_bound")

	if inh, ok := val["inherits"].([]any); ok && len(inh) > 0 {
		if first, ok := inh[0].(map[string]any); ok {
			t.ParentTable = &model.SchemaQualifiedName{SchemaName: getStr(first, "schema"), Name: getStr(first, "table")}
		}
	}

	if colsRaw, ok := val["columns"].([]any); ok {
		for _, colRaw := range colsRaw {
			colMap, ok := colRaw.(map[string]any)
			if !ok {
				continue
			}
			for cname, attrsRaw := range colMap {
				attrs, _ := attrsRaw.(map[string]any)
				t.Columns = append(t.Columns, columnFromMap(cname, attrs))
			}
		}
	}

	if pkRaw, ok := val["primary_key"].(map[string]any); ok {
		for pkName, attrsRaw := range pkRaw {
			attrs, _ := attrsRaw.(map[string]any)
			pk := model.PrimaryKey{Name: pkName, Columns: getStrList(attrs, "columns")}
			t.PrimaryKey = &pk
		}
	}

	for ukName, attrsRaw := range getMap(val, "unique_constraints") {
		attrs, _ := attrsRaw.(map[string]any)
		t.UniqueKeys = append(t.UniqueKeys, model.UniqueKey{Name: ukName, Columns: getStrList(attrs, "columns")})
	}

	for ckName, attrsRaw := range getMap(val, "check_constraints") {
		attrs, _ := attrsRaw.(map[string]any)
		t.CheckConstraints = append(t.CheckConstraints, model.CheckConstraint{
				Name: ckName,
				KeyColumns: getStrList(attrs, "columns"),
				Expression: getStr(attrs, "expression"),
				IsValid: !hasFalse(attrs, "is_valid"),
				Descr: getStr(attrs, "description"),
		})
	}

	for fkName, attrsRaw := range getMap(val, "foreign_keys") {
		attrs, _ := attrsRaw.(map[string]any)
		refs := getMap(attrs, "references")
		t.ForeignKeys = append(t.ForeignKeys, model.ForeignKeyConstraint{
				Name: fkName,
				Columns: getStrList(attrs, "columns"),
				RefSchema: getStr(refs, "schema"),
				RefTable: getStr(refs, "table"),
				RefColumns: getStrList(refs, "columns"),
				OnDelete: getStr(attrs, "on_delete"),
				OnUpdate: getStr(attrs, "on_update"),
				IsValid: true,
				Descr: getStr(attrs, "description"),
		})
	}

	for idxName, attrsRaw := range getMap(val, "indexes") {
		attrs, _ := attrsRaw.(map[string]any)
		idx := model.Index{
			Name: idxName,
			OwningTable: model.SchemaQualifiedName{SchemaName: schema, Name: name},
			Columns: getStrList(attrs, "columns"),
			IsUnique: getBool(attrs, "unique"),
			WhereClause: getStr(attrs, "where"),
			Method: getStr(attrs, "access_method"),
			Tablespace: getStr(attrs, "tablespace"),
			Descr: getStr(attrs, "description"),
		}
		if def := getStr(attrs, "definition"); def != "" {
			idx.IsExpression = true
			idx.GetIndexDefStmt = def
		}
		t.Indexes = append(t.Indexes, idx)
	}

	for trgName, attrsRaw := range getMap(val, "triggers") {
		attrs, _ := attrsRaw.(map[string]any)
		fn := getMap(attrs, "function")
		t.Triggers = append(t.Triggers, model.Trigger{
				Name: trgName,
				OwningTable: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				Function: model.SchemaQualifiedName{SchemaName: getStr(fn, "schema"), Name: getStr(fn, "name")},
				Timing: getStr(attrs, "timing"),
				Events: getStrList(attrs, "events"),
				Level: getStr(attrs, "level"),
				Condition: getStr(attrs, "condition"),
				IsConstraint: getBool(attrs, "constraint"),
				Descr: getStr(attrs, "description"),
		})
	}

	for ruleName, attrsRaw := range getMap(val, "rules") {
		attrs, _ := attrsRaw.(map[string]any)
		t.Rules = append(t.Rules, model.Rule{
				Name: ruleName,
				OwningTable: model.SchemaQualifiedName{SchemaName: schema, Name: name},
				Event: getStr(attrs, "event"),
				Definition: getStr(attrs, "definition"),
		})
	}

	return t
}

func hasFalse(m map[string]any, key string) bool {
	v, ok := m[key].(bool)
	return ok && !v
}

func columnFromMap(name string, attrs map[string]any) model.Column {
	c := model.Column{
		Name: name,
		Type: getStr(attrs, "type"),
		Collation: getStr(attrs, "collation"),
		Default: getStr(attrs, "default"),
		IsNullable: !getBool(attrs, "not_null"),
		Storage: getStr(attrs, "storage"),
		Descr: getStr(attrs, "description"),
		Privs: privilegesFromMap(attrs["privileges"]),
	}
	if stat, ok := attrs["statistics"]; ok {
		n := int(toInt(stat))
		c.Statistics = &n
	}
	if idRaw, ok := attrs["identity"].(map[string]any); ok {
		c.Identity = &model.ColumnIdentity{
			IsAlways: getBool(idRaw, "always"),
			StartValue: getInt64(idRaw, "start"),
			Increment: getInt64(idRaw, "increment"),
			Cycle: getBool(idRaw, "cycle"),
		}
	}
	return c
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}
